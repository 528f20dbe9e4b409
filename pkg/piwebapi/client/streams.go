package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/celestiaorg/pitests/pkg/piwebapi/routes"
)

// GetValue retrieves the current value of a point or attribute stream
func (c *APIClient) GetValue(ctx context.Context, webID string) (TimedValue, error) {
	var response TimedValue
	if err := c.executeRequest(ctx, http.MethodGet, routes.StreamValueURL(webID), nil, &response); err != nil {
		return TimedValue{}, fmt.Errorf("failed to get stream value: %w", err)
	}
	return response, nil
}

// UpdateValue writes a single value to a stream
func (c *APIClient) UpdateValue(ctx context.Context, webID string, value TimedValue) error {
	if err := c.executeRequest(ctx, http.MethodPost, routes.StreamValueURL(webID), value, nil); err != nil {
		return fmt.Errorf("failed to update stream value: %w", err)
	}
	return nil
}

// GetRecorded retrieves archived values between two PI time expressions
func (c *APIClient) GetRecorded(ctx context.Context, webID string, start, end string, maxCount int) ([]TimedValue, error) {
	query := url.Values{}
	if start != "" {
		query.Set("startTime", start)
	}
	if end != "" {
		query.Set("endTime", end)
	}
	if maxCount > 0 {
		query.Set("maxCount", strconv.Itoa(maxCount))
	}

	var response ItemsResponse[TimedValue]
	if err := c.executeRequest(ctx, http.MethodGet, routes.StreamRecordedURL(webID, query), nil, &response); err != nil {
		return nil, fmt.Errorf("failed to get recorded values: %w", err)
	}
	return response.Items, nil
}

// UpdateRecorded writes several values to a stream
func (c *APIClient) UpdateRecorded(ctx context.Context, webID string, values []TimedValue) error {
	if err := c.executeRequest(ctx, http.MethodPost, routes.StreamRecordedURL(webID, nil), values, nil); err != nil {
		return fmt.Errorf("failed to update recorded values: %w", err)
	}
	return nil
}

// RegisterStreamUpdates registers a stream for incremental updates and returns the first marker
func (c *APIClient) RegisterStreamUpdates(ctx context.Context, webID string) (StreamUpdatesRegistration, error) {
	var response StreamUpdatesRegistration
	if err := c.executeRequest(ctx, http.MethodPost, routes.StreamUpdatesRegisterURL(webID), nil, &response); err != nil {
		return StreamUpdatesRegistration{}, fmt.Errorf("failed to register stream updates: %w", err)
	}
	if response.LatestMarker == "" {
		return response, fmt.Errorf("stream updates registration returned no marker (status %q)", response.Status)
	}
	return response, nil
}

// GetStreamUpdates retrieves the events recorded after a marker
func (c *APIClient) GetStreamUpdates(ctx context.Context, marker string) (StreamUpdates, error) {
	var response StreamUpdates
	if err := c.executeRequest(ctx, http.MethodGet, routes.StreamUpdatesURL(marker), nil, &response); err != nil {
		return StreamUpdates{}, fmt.Errorf("failed to get stream updates: %w", err)
	}
	return response, nil
}
