package mocks

import (
	"github.com/celestiaorg/pitests/config"
	"github.com/celestiaorg/pitests/internal/constants"
)

// Settings returns a settings store pointing the harness at this server, with the
// credentials encrypted the way a deployment stores them.
func (s *PIWebAPI) Settings() config.MapStore {
	o := s.opts
	store := config.MapStore{
		constants.SettingPIWebAPI:                      s.URL(),
		constants.SettingPIWebAPIConfigurationInstance: o.ConfigInstance,
		constants.SettingAFServer:                      o.AFServer,
		constants.SettingAFDatabase:                    o.AFDatabase,
		constants.SettingPIDataArchive:                 o.DataArchive,
		constants.SettingPIAnalysisService:             o.AFServer,
		constants.SettingPIPointName:                   o.LivePoint,
	}
	if o.VisionVersion != "" {
		store[constants.SettingPIVisionServer] = s.VisionURL()
	}
	if o.Username == "" {
		return store
	}

	key, err := config.NewKey()
	if err != nil {
		panic(err)
	}
	user, err := config.Encrypt(o.Username, key)
	if err != nil {
		panic(err)
	}
	password, err := config.Encrypt(o.Password, key)
	if err != nil {
		panic(err)
	}
	store[constants.SettingEncryptionKey] = key
	store[constants.SettingPIWebAPIUser] = user
	store[constants.SettingPIWebAPIPassword] = password
	return store
}
