package test

import (
	"fmt"
	"strconv"

	"github.com/celestiaorg/pitests/config"
	"github.com/celestiaorg/pitests/internal/constants"
)

// Live reports whether PITESTS_LIVE selects a real deployment
func Live() bool {
	live, err := strconv.ParseBool(config.GetEnv(constants.EnvLive, "false"))
	return err == nil && live
}

// liveSettings loads the settings file of the live deployment
func liveSettings() (config.Store, error) {
	store, err := config.Load("")
	if err != nil {
		return nil, fmt.Errorf("failed to load live settings: %w", err)
	}
	return store, nil
}
