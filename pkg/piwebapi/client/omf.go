package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/celestiaorg/pitests/pkg/piwebapi/routes"
)

// OMFVersion is the OMF specification version the harness speaks
const OMFVersion = "1.1"

// PostOMF sends an OMF message. Every accepted message is answered with an operation id.
func (c *APIClient) PostOMF(ctx context.Context, messageType, action string, body json.RawMessage) (OMFResponse, error) {
	var response OMFResponse
	err := c.executeRequest(ctx, http.MethodPost, routes.OMFURL(), body, &response,
		withHeader("messagetype", messageType),
		withHeader("messageformat", "json"),
		withHeader("omfversion", OMFVersion),
		withHeader("action", action),
	)
	if err != nil {
		return OMFResponse{}, fmt.Errorf("failed to post OMF %s %s message: %w", action, messageType, err)
	}
	if response.OperationID == "" {
		return response, fmt.Errorf("OMF %s %s message was not answered with an operation id", action, messageType)
	}
	return response, nil
}
