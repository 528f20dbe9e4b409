package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/celestiaorg/pitests/pkg/piwebapi/routes"
)

// Home retrieves the PI Web API home page
func (c *APIClient) Home(ctx context.Context) (Home, error) {
	var response Home
	if err := c.executeRequest(ctx, http.MethodGet, routes.HomeURL(), nil, &response); err != nil {
		return Home{}, fmt.Errorf("failed to get home page: %w", err)
	}
	return response, nil
}

// System retrieves the product title and version
func (c *APIClient) System(ctx context.Context) (SystemInfo, error) {
	var response SystemInfo
	if err := c.executeRequest(ctx, http.MethodGet, routes.SystemURL(), nil, &response); err != nil {
		return SystemInfo{}, fmt.Errorf("failed to get system information: %w", err)
	}
	return response, nil
}

// SystemConfiguration retrieves the configuration page. Only administrators can read it,
// so an anonymous client gets 401 when anonymous authentication is disabled.
func (c *APIClient) SystemConfiguration(ctx context.Context) (map[string]interface{}, error) {
	var response map[string]interface{}
	if err := c.executeRequest(ctx, http.MethodGet, routes.SystemConfigurationURL(), nil, &response); err != nil {
		return nil, fmt.Errorf("failed to get system configuration: %w", err)
	}
	return response, nil
}

// InstanceConfiguration retrieves where OMF creates its objects
func (c *APIClient) InstanceConfiguration(ctx context.Context) (InstanceConfiguration, error) {
	var response InstanceConfiguration
	if err := c.executeRequest(ctx, http.MethodGet, routes.InstanceConfigurationURL(), nil, &response); err != nil {
		return InstanceConfiguration{}, fmt.Errorf("failed to get instance configuration: %w", err)
	}
	return response, nil
}
