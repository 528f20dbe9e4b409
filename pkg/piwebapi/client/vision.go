package client

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// visionVersionPath answers the installed PI Vision version as plain text
const visionVersionPath = "/Utility/permissions/read"

// VisionClient reads product information from a PI Vision server
type VisionClient struct {
	api *APIClient
}

// NewVisionClient creates a client for the PI Vision server at opts.BaseURL.
// A trailing "/#/" copied from the browser address bar is ignored.
func NewVisionClient(opts *Options) (*VisionClient, error) {
	if opts == nil {
		return nil, fmt.Errorf("PI Vision options are required")
	}
	o := *opts
	o.BaseURL = strings.TrimSuffix(strings.TrimSuffix(o.BaseURL, "/#/"), "/")
	api, err := newAPIClient(&o)
	if err != nil {
		return nil, err
	}
	return &VisionClient{api: api}, nil
}

// ProductVersion returns the installed PI Vision version
func (v *VisionClient) ProductVersion(ctx context.Context) (string, error) {
	agent, err := v.api.createAgent(ctx, http.MethodGet, visionVersionPath, nil)
	if err != nil {
		return "", err
	}
	agent.Set("Accept", "text/plain, application/json")

	body, err := v.api.sendRaw(agent)
	if err != nil {
		return "", fmt.Errorf("failed to read PI Vision version: %w", err)
	}
	raw := strings.Trim(strings.TrimSpace(body), `"`)
	if raw == "" {
		return "", fmt.Errorf("could not retrieve PI Vision version from server %s", v.api.baseURL)
	}
	return raw, nil
}
