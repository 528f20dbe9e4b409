// Package mocks provides an in-memory PI Web API for the harness and its tests.
//
// PIWebAPI serves the same routes as a real instance over an httptest server, with
// configurable behavior through PIWebAPIOptions:
//   - Lag delays the visibility of created objects and written values
//   - Username and Password enforce basic authentication
//   - DisableWrites, DisableOMF and DisableSearch remove capabilities
//   - the product versions reported by every component
//
// Example usage:
//
//	opts := mocks.DefaultPIWebAPIOptions()
//	opts.Lag = 250 * time.Millisecond
//	server := mocks.NewPIWebAPI(opts)
//	defer server.Close()
//	settings := config.NewSettings(server.Settings())
package mocks
