package skip

import (
	"fmt"
	"strings"

	"github.com/celestiaorg/pitests/config"
)

// Kind is the value kind a gating setting must have.
type Kind int

const (
	// KindString requires the setting to be present and not blank
	KindString Kind = iota
	// KindBool requires the setting to parse as true
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "String"
	case KindBool:
		return "Boolean"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ForSetting decides whether a test gated on a single setting can run.
func ForSetting(store config.Store, name string, kind Kind) Decision {
	settings := config.NewSettings(store)

	switch kind {
	case KindBool:
		ok, err := settings.Bool(name, false)
		if err != nil {
			return Skip("%s", err.Error())
		}
		if !ok {
			return Skip("Test skipped because '%s' setting is missing or its value is 'False' in the settings file.", name)
		}
		return Run()
	case KindString:
		v, _ := settings.Value(name, false)
		if strings.TrimSpace(v) == "" {
			return Skip("Test skipped because '%s' setting is missing or its value is empty in the settings file.", name)
		}
		return Run()
	default:
		return Skip("%s is not a supported setting type.", kind).Strict()
	}
}
