// Package constants provides centralized definitions of constants used throughout the application
package constants

// Setting names, as they appear in the settings file
const (
	// SettingPIDataArchive is the PI Data Archive server name
	SettingPIDataArchive = "PIDataArchive"

	// SettingAFServer is the PI AF server name
	SettingAFServer = "AFServer"

	// SettingAFDatabase is the AF database the tests create objects in
	SettingAFDatabase = "AFDatabase"

	// SettingPIAnalysisService is the machine running PI Analysis Service
	SettingPIAnalysisService = "PIAnalysisService"

	// SettingPINotificationsService is the machine running PI Notifications Service
	SettingPINotificationsService = "PINotificationsService"

	// SettingPIWebAPI is the PI Web API host name or base URL
	SettingPIWebAPI = "PIWebAPI"

	// SettingPIWebAPIConfigurationInstance overrides the PI Web API configuration element name
	SettingPIWebAPIConfigurationInstance = "PIWebAPIConfigurationInstance"

	// SettingPIWebAPIUser is the encrypted basic authentication user
	SettingPIWebAPIUser = "PIWebAPIUser"

	// SettingPIWebAPIPassword is the encrypted basic authentication password
	SettingPIWebAPIPassword = "PIWebAPIPassword"

	// SettingEncryptionKey is the key used to decrypt encrypted settings
	SettingEncryptionKey = "PIWebAPIEncryptionID"

	// SettingPIVisionServer is the PI Vision site URL
	SettingPIVisionServer = "PIVisionServer"

	// SettingPIManualLogger is the PI Manual Logger Web server
	SettingPIManualLogger = "PIManualLogger"

	// SettingPIPointName is an existing point that receives live data
	SettingPIPointName = "PIPointName"

	// SettingSkipCertificateValidation disables TLS verification
	SettingSkipCertificateValidation = "SkipCertificateValidation"
)

// Environment variable names
const (
	// EnvLogLevel selects the logrus level
	EnvLogLevel = "LOG_LEVEL"

	// EnvDBDriver selects the check history database driver: postgres or sqlite
	EnvDBDriver = "PITESTS_DB_DRIVER"

	// EnvDBHost is the check history database host
	EnvDBHost = "PITESTS_DB_HOST"

	// EnvDBPort is the check history database port
	EnvDBPort = "PITESTS_DB_PORT"

	// EnvDBUser is the check history database user
	EnvDBUser = "PITESTS_DB_USER"

	// EnvDBPassword is the check history database password
	EnvDBPassword = "PITESTS_DB_PASSWORD"

	// EnvDBName is the check history database name
	EnvDBName = "PITESTS_DB_NAME"

	// EnvDBSSLEnabled enables TLS to the check history database
	EnvDBSSLEnabled = "PITESTS_DB_SSL"

	// EnvPushgateway is the Prometheus Pushgateway the CLI pushes check metrics to
	EnvPushgateway = "PITESTS_PUSHGATEWAY"

	// EnvLive runs the acceptance tests against the PI System named by the settings file
	// instead of the fake PI Web API
	EnvLive = "PITESTS_LIVE"
)
