// Package client provides the client for interacting with PI Web API and the PI Vision utility endpoint
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	fiber "github.com/gofiber/fiber/v2"

	"github.com/celestiaorg/pitests/pkg/piwebapi/routes"
)

// DefaultTimeout is the default timeout for API requests
const DefaultTimeout = 30 * time.Second

// DefaultBaseURL is the PI Web API address used when no host is configured
var DefaultBaseURL = "https://localhost" + routes.DefaultPath

// Client is the interface for the PI Web API client
type Client interface {
	// System
	Home(ctx context.Context) (Home, error)
	System(ctx context.Context) (SystemInfo, error)
	SystemConfiguration(ctx context.Context) (map[string]interface{}, error)
	InstanceConfiguration(ctx context.Context) (InstanceConfiguration, error)

	// Asset servers and databases
	GetAssetServerByPath(ctx context.Context, path string) (AssetServer, error)
	ListAnalysisRulePlugIns(ctx context.Context, assetServerWebID string) ([]AnalysisRulePlugIn, error)
	GetAssetDatabaseByPath(ctx context.Context, path string) (AssetDatabase, error)

	// Elements and attributes
	CreateElement(ctx context.Context, databaseWebID string, element Element) (string, error)
	GetElement(ctx context.Context, webID string) (Element, error)
	GetElementByPath(ctx context.Context, path string) (Element, error)
	UpdateElement(ctx context.Context, webID string, element Element) error
	DeleteElement(ctx context.Context, webID string) error
	CreateAttribute(ctx context.Context, elementWebID string, attribute Attribute) (string, error)
	ListAttributes(ctx context.Context, elementWebID string) ([]Attribute, error)
	GetAttributeByPath(ctx context.Context, path string) (Attribute, error)

	// Element templates
	GetElementTemplateByPath(ctx context.Context, path string) (ElementTemplate, error)
	DeleteElementTemplate(ctx context.Context, webID string) error

	// Event frames
	CreateEventFrame(ctx context.Context, databaseWebID string, frame EventFrame) (string, error)
	GetEventFrame(ctx context.Context, webID string) (EventFrame, error)
	GetEventFrameByPath(ctx context.Context, path string) (EventFrame, error)
	UpdateEventFrame(ctx context.Context, webID string, frame EventFrame) error
	DeleteEventFrame(ctx context.Context, webID string) error

	// Data servers and points
	GetDataServerByPath(ctx context.Context, path string) (DataServer, error)
	CreatePoint(ctx context.Context, dataServerWebID string, point Point) (string, error)
	FindPoints(ctx context.Context, dataServerWebID, nameFilter string) ([]Point, error)
	GetPoint(ctx context.Context, webID string) (Point, error)
	GetPointByPath(ctx context.Context, path string) (Point, error)
	UpdatePoint(ctx context.Context, webID string, point Point) error
	DeletePoint(ctx context.Context, webID string) error

	// Streams
	GetValue(ctx context.Context, webID string) (TimedValue, error)
	UpdateValue(ctx context.Context, webID string, value TimedValue) error
	GetRecorded(ctx context.Context, webID string, start, end string, maxCount int) ([]TimedValue, error)
	UpdateRecorded(ctx context.Context, webID string, values []TimedValue) error
	RegisterStreamUpdates(ctx context.Context, webID string) (StreamUpdatesRegistration, error)
	GetStreamUpdates(ctx context.Context, marker string) (StreamUpdates, error)

	// OMF
	PostOMF(ctx context.Context, messageType, action string, body json.RawMessage) (OMFResponse, error)
}

var _ Client = &APIClient{}

// Options contains configuration options for the API client
type Options struct {
	// BaseURL is the base URL of the API, including the /piwebapi path
	BaseURL string

	// Timeout is the request timeout
	Timeout time.Duration

	// Username and Password enable basic authentication when Username is set
	Username string
	Password string

	// SkipCertificateValidation disables TLS certificate verification
	SkipCertificateValidation bool
}

// DefaultOptions returns the default client options
func DefaultOptions() *Options {
	return &Options{
		BaseURL: DefaultBaseURL,
		Timeout: DefaultTimeout,
	}
}

// APIClient implements the Client interface
type APIClient struct {
	baseURL  string
	timeout  time.Duration
	username string
	password string
	insecure bool
}

// NewClient creates a new API client with the given options
func NewClient(opts *Options) (Client, error) {
	c, err := newAPIClient(opts)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func newAPIClient(opts *Options) (*APIClient, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	u, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: scheme and host are required", opts.BaseURL)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &APIClient{
		baseURL:  strings.TrimSuffix(opts.BaseURL, "/"),
		timeout:  timeout,
		username: opts.Username,
		password: opts.Password,
		insecure: opts.SkipCertificateValidation,
	}, nil
}

// BaseURLFor turns a configured PI Web API host or URL into the API base URL.
// A bare host name gets the https scheme and the /piwebapi path.
func BaseURLFor(hostOrURL string) string {
	s := strings.TrimSpace(hostOrURL)
	if s == "" {
		return ""
	}
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}
	s = strings.TrimSuffix(s, "/")
	if !strings.HasSuffix(strings.ToLower(s), routes.DefaultPath) {
		s += routes.DefaultPath
	}
	return s
}

type agentOption func(*fiber.Agent)

func withHeader(key, value string) agentOption {
	return func(a *fiber.Agent) { a.Set(key, value) }
}

// createAgent creates a new Fiber Agent for the given method and endpoint
func (c *APIClient) createAgent(ctx context.Context, method, endpoint string, body interface{}, opts ...agentOption) (*fiber.Agent, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, endpoint, err)
	}
	fullURL := c.baseURL + endpoint

	var agent *fiber.Agent
	switch method {
	case http.MethodGet:
		agent = fiber.Get(fullURL)
	case http.MethodPost:
		agent = fiber.Post(fullURL)
	case http.MethodPut:
		agent = fiber.Put(fullURL)
	case http.MethodDelete:
		agent = fiber.Delete(fullURL)
	case http.MethodPatch:
		agent = fiber.Patch(fullURL)
	default:
		return nil, fmt.Errorf("unsupported HTTP method: %s", method)
	}

	// Set timeout from context or client default
	if deadline, ok := ctx.Deadline(); ok {
		agent.Timeout(time.Until(deadline))
	} else {
		agent.Timeout(c.timeout)
	}

	if c.insecure {
		agent.InsecureSkipVerify()
	}
	if c.username != "" {
		agent.BasicAuth(c.username, c.password)
	}

	agent.Set("Accept", "application/json")
	// PI Web API rejects writes without this header when CSRF defense is enabled
	agent.Set("X-Requested-With", "XMLHttpRequest")

	if body != nil {
		agent.JSON(body)
	}

	for _, opt := range opts {
		opt(agent)
	}

	return agent, nil
}

// doRequest sends the HTTP request and processes the response
func (c *APIClient) doRequest(agent *fiber.Agent, v interface{}) error {
	_, err := c.send(agent, v)
	return err
}

// send executes the request and returns the Location header of the response
func (c *APIClient) send(agent *fiber.Agent, v interface{}) (string, error) {
	body, location, err := c.exchange(agent)
	if err != nil {
		return "", err
	}

	if v != nil && len(body) > 0 {
		if err := json.Unmarshal(body, v); err != nil {
			return "", fmt.Errorf("error decoding response: %w", err)
		}
	}

	return location, nil
}

// sendRaw executes the request and returns the undecoded body
func (c *APIClient) sendRaw(agent *fiber.Agent) (string, error) {
	body, _, err := c.exchange(agent)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func (c *APIClient) exchange(agent *fiber.Agent) ([]byte, string, error) {
	resp := fiber.AcquireResponse()
	defer fiber.ReleaseResponse(resp)
	agent.SetResponse(resp)

	statusCode, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return nil, "", fmt.Errorf("error sending request: %w", errs[0])
	}

	if statusCode < 200 || statusCode >= 300 {
		return nil, "", &fiber.Error{
			Code:    statusCode,
			Message: string(body),
		}
	}

	return body, string(resp.Header.Peek(fiber.HeaderLocation)), nil
}

// executeRequest creates an agent, sends the request, and processes the response
func (c *APIClient) executeRequest(ctx context.Context, method, endpoint string, body, response interface{}, opts ...agentOption) error {
	agent, err := c.createAgent(ctx, method, endpoint, body, opts...)
	if err != nil {
		return err
	}

	return c.doRequest(agent, response)
}

// executeCreate posts the body and returns the WebID of the created object
func (c *APIClient) executeCreate(ctx context.Context, endpoint string, body interface{}) (string, error) {
	agent, err := c.createAgent(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return "", err
	}

	location, err := c.send(agent, nil)
	if err != nil {
		return "", err
	}
	webID := WebIDFromLocation(location)
	if webID == "" {
		return "", fmt.Errorf("response to %s carried no Location header", endpoint)
	}
	return webID, nil
}

// WebIDFromLocation extracts the WebID from the Location header of a created object
func WebIDFromLocation(location string) string {
	if location == "" {
		return ""
	}
	if u, err := url.Parse(location); err == nil {
		location = u.Path
	}
	id := path.Base(strings.TrimSuffix(location, "/"))
	if id == "." || id == "/" {
		return ""
	}
	return id
}

// StatusCode returns the HTTP status of a failed request, or 0 when the error is not an HTTP error
func StatusCode(err error) int {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code
	}
	return 0
}

// IsNotFound reports whether the request failed with 404
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// IsUnauthorized reports whether the request failed with 401
func IsUnauthorized(err error) bool {
	return StatusCode(err) == http.StatusUnauthorized
}
