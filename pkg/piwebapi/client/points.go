package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/celestiaorg/pitests/pkg/piwebapi/routes"
)

// DataServerPath returns the PI Web API path of a Data Archive
func DataServerPath(name string) string {
	return `\\PIServers[` + name + `]`
}

// GetDataServerByPath retrieves a Data Archive by path, see DataServerPath
func (c *APIClient) GetDataServerByPath(ctx context.Context, path string) (DataServer, error) {
	var response DataServer
	if err := c.executeRequest(ctx, http.MethodGet, routes.DataServerByPathURL(path), nil, &response); err != nil {
		return DataServer{}, fmt.Errorf("failed to get data server %s: %w", path, err)
	}
	return response, nil
}

// CreatePoint creates a PI Point and returns its WebID
func (c *APIClient) CreatePoint(ctx context.Context, dataServerWebID string, point Point) (string, error) {
	webID, err := c.executeCreate(ctx, routes.DataServerPointsURL(dataServerWebID, nil), point)
	if err != nil {
		return "", fmt.Errorf("failed to create point %s: %w", point.Name, err)
	}
	return webID, nil
}

// FindPoints lists the points of a Data Archive matching a name filter
func (c *APIClient) FindPoints(ctx context.Context, dataServerWebID, nameFilter string) ([]Point, error) {
	var query url.Values
	if nameFilter != "" {
		query = url.Values{"nameFilter": []string{nameFilter}}
	}

	var response ItemsResponse[Point]
	if err := c.executeRequest(ctx, http.MethodGet, routes.DataServerPointsURL(dataServerWebID, query), nil, &response); err != nil {
		return nil, fmt.Errorf("failed to find points matching %q: %w", nameFilter, err)
	}
	return response.Items, nil
}

// GetPoint retrieves a point by WebID
func (c *APIClient) GetPoint(ctx context.Context, webID string) (Point, error) {
	var response Point
	if err := c.executeRequest(ctx, http.MethodGet, routes.PointURL(webID), nil, &response); err != nil {
		return Point{}, fmt.Errorf("failed to get point: %w", err)
	}
	return response, nil
}

// GetPointByPath retrieves a point by path, e.g. \\DATAARCHIVE\sinusoid
func (c *APIClient) GetPointByPath(ctx context.Context, path string) (Point, error) {
	var response Point
	if err := c.executeRequest(ctx, http.MethodGet, routes.PointByPathURL(path), nil, &response); err != nil {
		return Point{}, fmt.Errorf("failed to get point %s: %w", path, err)
	}
	return response, nil
}

// UpdatePoint patches the non-empty fields of a point
func (c *APIClient) UpdatePoint(ctx context.Context, webID string, point Point) error {
	if err := c.executeRequest(ctx, http.MethodPatch, routes.PointURL(webID), point, nil); err != nil {
		return fmt.Errorf("failed to update point: %w", err)
	}
	return nil
}

// DeletePoint deletes a point and its archived data
func (c *APIClient) DeletePoint(ctx context.Context, webID string) error {
	if err := c.executeRequest(ctx, http.MethodDelete, routes.PointURL(webID), nil, nil); err != nil {
		return fmt.Errorf("failed to delete point: %w", err)
	}
	return nil
}
