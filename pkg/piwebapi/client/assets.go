package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/celestiaorg/pitests/pkg/piwebapi/routes"
)

// GetAssetServerByPath retrieves an AF server by path, e.g. \\AFSERVER
func (c *APIClient) GetAssetServerByPath(ctx context.Context, path string) (AssetServer, error) {
	var response AssetServer
	if err := c.executeRequest(ctx, http.MethodGet, routes.AssetServerByPathURL(path), nil, &response); err != nil {
		return AssetServer{}, fmt.Errorf("failed to get asset server %s: %w", path, err)
	}
	return response, nil
}

// ListAnalysisRulePlugIns lists the analysis rule plug-ins of an AF server
func (c *APIClient) ListAnalysisRulePlugIns(ctx context.Context, assetServerWebID string) ([]AnalysisRulePlugIn, error) {
	var response ItemsResponse[AnalysisRulePlugIn]
	if err := c.executeRequest(ctx, http.MethodGet, routes.AnalysisRulePlugInsURL(assetServerWebID), nil, &response); err != nil {
		return nil, fmt.Errorf("failed to list analysis rule plug-ins: %w", err)
	}
	return response.Items, nil
}

// GetAssetDatabaseByPath retrieves an AF database by path, e.g. \\AFSERVER\Database
func (c *APIClient) GetAssetDatabaseByPath(ctx context.Context, path string) (AssetDatabase, error) {
	var response AssetDatabase
	if err := c.executeRequest(ctx, http.MethodGet, routes.AssetDatabaseByPathURL(path), nil, &response); err != nil {
		return AssetDatabase{}, fmt.Errorf("failed to get asset database %s: %w", path, err)
	}
	return response, nil
}

// CreateElement creates a root element in a database and returns its WebID
func (c *APIClient) CreateElement(ctx context.Context, databaseWebID string, element Element) (string, error) {
	webID, err := c.executeCreate(ctx, routes.DatabaseElementsURL(databaseWebID), element)
	if err != nil {
		return "", fmt.Errorf("failed to create element %s: %w", element.Name, err)
	}
	return webID, nil
}

// GetElement retrieves an element by WebID
func (c *APIClient) GetElement(ctx context.Context, webID string) (Element, error) {
	var response Element
	if err := c.executeRequest(ctx, http.MethodGet, routes.ElementURL(webID), nil, &response); err != nil {
		return Element{}, fmt.Errorf("failed to get element: %w", err)
	}
	return response, nil
}

// GetElementByPath retrieves an element by path
func (c *APIClient) GetElementByPath(ctx context.Context, path string) (Element, error) {
	var response Element
	if err := c.executeRequest(ctx, http.MethodGet, routes.ElementByPathURL(path), nil, &response); err != nil {
		return Element{}, fmt.Errorf("failed to get element %s: %w", path, err)
	}
	return response, nil
}

// UpdateElement patches the non-empty fields of an element
func (c *APIClient) UpdateElement(ctx context.Context, webID string, element Element) error {
	if err := c.executeRequest(ctx, http.MethodPatch, routes.ElementURL(webID), element, nil); err != nil {
		return fmt.Errorf("failed to update element: %w", err)
	}
	return nil
}

// DeleteElement deletes an element and its children
func (c *APIClient) DeleteElement(ctx context.Context, webID string) error {
	if err := c.executeRequest(ctx, http.MethodDelete, routes.ElementURL(webID), nil, nil); err != nil {
		return fmt.Errorf("failed to delete element: %w", err)
	}
	return nil
}

// CreateAttribute creates an attribute on an element and returns its WebID
func (c *APIClient) CreateAttribute(ctx context.Context, elementWebID string, attribute Attribute) (string, error) {
	webID, err := c.executeCreate(ctx, routes.ElementAttributesURL(elementWebID), attribute)
	if err != nil {
		return "", fmt.Errorf("failed to create attribute %s: %w", attribute.Name, err)
	}
	return webID, nil
}

// ListAttributes lists the attributes of an element
func (c *APIClient) ListAttributes(ctx context.Context, elementWebID string) ([]Attribute, error) {
	var response ItemsResponse[Attribute]
	if err := c.executeRequest(ctx, http.MethodGet, routes.ElementAttributesURL(elementWebID), nil, &response); err != nil {
		return nil, fmt.Errorf("failed to list attributes: %w", err)
	}
	return response.Items, nil
}

// GetAttributeByPath retrieves an attribute by path, e.g. \\AF\DB\Element|Attribute
func (c *APIClient) GetAttributeByPath(ctx context.Context, path string) (Attribute, error) {
	var response Attribute
	if err := c.executeRequest(ctx, http.MethodGet, routes.AttributeByPathURL(path), nil, &response); err != nil {
		return Attribute{}, fmt.Errorf("failed to get attribute %s: %w", path, err)
	}
	return response, nil
}

// GetElementTemplateByPath retrieves an element template by path
func (c *APIClient) GetElementTemplateByPath(ctx context.Context, path string) (ElementTemplate, error) {
	var response ElementTemplate
	if err := c.executeRequest(ctx, http.MethodGet, routes.ElementTemplateByPathURL(path), nil, &response); err != nil {
		return ElementTemplate{}, fmt.Errorf("failed to get element template %s: %w", path, err)
	}
	return response, nil
}

// DeleteElementTemplate deletes an element template
func (c *APIClient) DeleteElementTemplate(ctx context.Context, webID string) error {
	if err := c.executeRequest(ctx, http.MethodDelete, routes.ElementTemplateURL(webID), nil, nil); err != nil {
		return fmt.Errorf("failed to delete element template: %w", err)
	}
	return nil
}

// CreateEventFrame creates an event frame in a database and returns its WebID
func (c *APIClient) CreateEventFrame(ctx context.Context, databaseWebID string, frame EventFrame) (string, error) {
	webID, err := c.executeCreate(ctx, routes.DatabaseEventFramesURL(databaseWebID), frame)
	if err != nil {
		return "", fmt.Errorf("failed to create event frame %s: %w", frame.Name, err)
	}
	return webID, nil
}

// GetEventFrame retrieves an event frame by WebID
func (c *APIClient) GetEventFrame(ctx context.Context, webID string) (EventFrame, error) {
	var response EventFrame
	if err := c.executeRequest(ctx, http.MethodGet, routes.EventFrameURL(webID), nil, &response); err != nil {
		return EventFrame{}, fmt.Errorf("failed to get event frame: %w", err)
	}
	return response, nil
}

// GetEventFrameByPath retrieves an event frame by path
func (c *APIClient) GetEventFrameByPath(ctx context.Context, path string) (EventFrame, error) {
	var response EventFrame
	if err := c.executeRequest(ctx, http.MethodGet, routes.EventFrameByPathURL(path), nil, &response); err != nil {
		return EventFrame{}, fmt.Errorf("failed to get event frame %s: %w", path, err)
	}
	return response, nil
}

// UpdateEventFrame patches the non-empty fields of an event frame
func (c *APIClient) UpdateEventFrame(ctx context.Context, webID string, frame EventFrame) error {
	if err := c.executeRequest(ctx, http.MethodPatch, routes.EventFrameURL(webID), frame, nil); err != nil {
		return fmt.Errorf("failed to update event frame: %w", err)
	}
	return nil
}

// DeleteEventFrame deletes an event frame
func (c *APIClient) DeleteEventFrame(ctx context.Context, webID string) error {
	if err := c.executeRequest(ctx, http.MethodDelete, routes.EventFrameURL(webID), nil, nil); err != nil {
		return fmt.Errorf("failed to delete event frame: %w", err)
	}
	return nil
}
