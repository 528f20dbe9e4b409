// Package routes defines the PI Web API endpoints used by the harness
package routes

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	fiber "github.com/gofiber/fiber/v2"
)

/*

Routes are listed the way the PI Web API reference groups them:

1. System and discovery endpoints first, then asset, data and stream endpoints.
2. Within a controller, order routes in GET, POST, PATCH, DELETE order.
	a. Literal segments (ie /streams/updates) go before param segments (ie /streams/:webId),
	   otherwise fiber will interpret the literal as the param.
3. Naming matches the action (i.e. GetElement, DeleteElement).

*/

// DefaultPath is the path PI Web API is served under on its host
const DefaultPath = "/piwebapi"

// Route names for lookup
const (
	// System
	Home                  = "Home"
	System                = "System"
	SystemConfiguration   = "SystemConfiguration"
	InstanceConfiguration = "InstanceConfiguration"

	// Asset servers and databases
	GetAssetServerByPath    = "GetAssetServerByPath"
	ListAnalysisRulePlugIns = "ListAnalysisRulePlugIns"
	GetAssetDatabaseByPath  = "GetAssetDatabaseByPath"
	CreateElement           = "CreateElement"
	CreateEventFrame        = "CreateEventFrame"

	// Elements and attributes
	GetElementByPath   = "GetElementByPath"
	GetElement         = "GetElement"
	ListAttributes     = "ListAttributes"
	CreateAttribute    = "CreateAttribute"
	UpdateElement      = "UpdateElement"
	DeleteElement      = "DeleteElement"
	GetAttributeByPath = "GetAttributeByPath"

	// Element templates
	GetElementTemplateByPath = "GetElementTemplateByPath"
	DeleteElementTemplate    = "DeleteElementTemplate"

	// Event frames
	GetEventFrameByPath = "GetEventFrameByPath"
	GetEventFrame       = "GetEventFrame"
	UpdateEventFrame    = "UpdateEventFrame"
	DeleteEventFrame    = "DeleteEventFrame"

	// Data servers and points
	GetDataServerByPath = "GetDataServerByPath"
	ListPoints          = "ListPoints"
	CreatePoint         = "CreatePoint"
	GetPointByPath      = "GetPointByPath"
	GetPoint            = "GetPoint"
	UpdatePoint         = "UpdatePoint"
	DeletePoint         = "DeletePoint"

	// Streams
	GetStreamUpdates      = "GetStreamUpdates"
	GetValue              = "GetValue"
	GetRecorded           = "GetRecorded"
	UpdateValue           = "UpdateValue"
	UpdateRecorded        = "UpdateRecorded"
	RegisterStreamUpdates = "RegisterStreamUpdates"

	// OMF
	PostOMF = "PostOMF"
)

// Route is a named PI Web API endpoint
type Route struct {
	Name   string
	Method string
	Path   string
}

// Routes is the endpoint table in registration order
var Routes = []Route{
	{Home, http.MethodGet, "/"},
	{System, http.MethodGet, "/system"},
	{SystemConfiguration, http.MethodGet, "/system/configuration"},
	{InstanceConfiguration, http.MethodGet, "/system/instanceconfiguration"},

	{GetAssetServerByPath, http.MethodGet, "/assetservers"},
	{ListAnalysisRulePlugIns, http.MethodGet, "/assetservers/:webId/analysisruleplugins"},
	{GetAssetDatabaseByPath, http.MethodGet, "/assetdatabases"},
	{CreateElement, http.MethodPost, "/assetdatabases/:webId/elements"},
	{CreateEventFrame, http.MethodPost, "/assetdatabases/:webId/eventframes"},

	{GetElementByPath, http.MethodGet, "/elements"},
	{GetElement, http.MethodGet, "/elements/:webId"},
	{ListAttributes, http.MethodGet, "/elements/:webId/attributes"},
	{CreateAttribute, http.MethodPost, "/elements/:webId/attributes"},
	{UpdateElement, http.MethodPatch, "/elements/:webId"},
	{DeleteElement, http.MethodDelete, "/elements/:webId"},
	{GetAttributeByPath, http.MethodGet, "/attributes"},

	{GetElementTemplateByPath, http.MethodGet, "/elementtemplates"},
	{DeleteElementTemplate, http.MethodDelete, "/elementtemplates/:webId"},

	{GetEventFrameByPath, http.MethodGet, "/eventframes"},
	{GetEventFrame, http.MethodGet, "/eventframes/:webId"},
	{UpdateEventFrame, http.MethodPatch, "/eventframes/:webId"},
	{DeleteEventFrame, http.MethodDelete, "/eventframes/:webId"},

	{GetDataServerByPath, http.MethodGet, "/dataservers"},
	{ListPoints, http.MethodGet, "/dataservers/:webId/points"},
	{CreatePoint, http.MethodPost, "/dataservers/:webId/points"},
	{GetPointByPath, http.MethodGet, "/points"},
	{GetPoint, http.MethodGet, "/points/:webId"},
	{UpdatePoint, http.MethodPatch, "/points/:webId"},
	{DeletePoint, http.MethodDelete, "/points/:webId"},

	{GetStreamUpdates, http.MethodGet, "/streams/updates/:marker"},
	{GetValue, http.MethodGet, "/streams/:webId/value"},
	{GetRecorded, http.MethodGet, "/streams/:webId/recorded"},
	{UpdateValue, http.MethodPost, "/streams/:webId/value"},
	{UpdateRecorded, http.MethodPost, "/streams/:webId/recorded"},
	{RegisterStreamUpdates, http.MethodPost, "/streams/:webId/updates"},

	{PostOMF, http.MethodPost, "/omf"},
}

var routeIndex = func() map[string]Route {
	idx := make(map[string]Route, len(Routes))
	for _, r := range Routes {
		idx[r.Name] = r
	}
	return idx
}()

// RegisterRoutes mounts the handlers on the router. Routes without a handler answer 501.
func RegisterRoutes(router fiber.Router, handlers map[string]fiber.Handler) {
	for _, r := range Routes {
		h, ok := handlers[r.Name]
		if !ok {
			h = notImplemented
		}
		router.Add(r.Method, r.Path, h).Name(r.Name)
	}
}

func notImplemented(c *fiber.Ctx) error {
	return fiber.NewError(fiber.StatusNotImplemented, "not implemented")
}

// GetRoute returns the route pattern for the given route name
func GetRoute(name string) string {
	return routeIndex[name].Path
}

// BuildURL builds a URL for the given route name and parameters
func BuildURL(routeName string, params map[string]string, queryParams url.Values) string {
	route := GetRoute(routeName)
	if route == "" {
		return ""
	}

	for param, value := range params {
		route = strings.ReplaceAll(route, ":"+param, url.PathEscape(value))
	}

	if strings.HasSuffix(route, "/") && !strings.Contains(route, ":") {
		route = strings.TrimSuffix(route, "/")
	}

	if len(queryParams) > 0 {
		route = fmt.Sprintf("%s?%s", route, queryParams.Encode())
	}

	return route
}

func byWebID(name, webID string) string {
	return BuildURL(name, map[string]string{"webId": webID}, nil)
}

func byPath(name, path string) string {
	return BuildURL(name, nil, url.Values{"path": []string{path}})
}

// HomeURL returns the URL of the PI Web API home page
func HomeURL() string { return BuildURL(Home, nil, nil) }

// SystemURL returns the URL of the product information endpoint
func SystemURL() string { return BuildURL(System, nil, nil) }

// SystemConfigurationURL returns the URL of the configuration page
func SystemConfigurationURL() string { return BuildURL(SystemConfiguration, nil, nil) }

// InstanceConfigurationURL returns the URL of the instance configuration
func InstanceConfigurationURL() string { return BuildURL(InstanceConfiguration, nil, nil) }

// AssetServerByPathURL returns the URL for looking up an asset server by path
func AssetServerByPathURL(path string) string { return byPath(GetAssetServerByPath, path) }

// AnalysisRulePlugInsURL returns the URL listing the analysis rule plug-ins of an asset server
func AnalysisRulePlugInsURL(webID string) string { return byWebID(ListAnalysisRulePlugIns, webID) }

// AssetDatabaseByPathURL returns the URL for looking up an asset database by path
func AssetDatabaseByPathURL(path string) string { return byPath(GetAssetDatabaseByPath, path) }

// DatabaseElementsURL returns the URL for creating elements in a database
func DatabaseElementsURL(webID string) string { return byWebID(CreateElement, webID) }

// DatabaseEventFramesURL returns the URL for creating event frames in a database
func DatabaseEventFramesURL(webID string) string { return byWebID(CreateEventFrame, webID) }

// ElementByPathURL returns the URL for looking up an element by path
func ElementByPathURL(path string) string { return byPath(GetElementByPath, path) }

// ElementURL returns the URL of an element
func ElementURL(webID string) string { return byWebID(GetElement, webID) }

// ElementAttributesURL returns the URL of the attributes of an element
func ElementAttributesURL(webID string) string { return byWebID(ListAttributes, webID) }

// AttributeByPathURL returns the URL for looking up an attribute by path
func AttributeByPathURL(path string) string { return byPath(GetAttributeByPath, path) }

// ElementTemplateByPathURL returns the URL for looking up an element template by path
func ElementTemplateByPathURL(path string) string { return byPath(GetElementTemplateByPath, path) }

// ElementTemplateURL returns the URL of an element template
func ElementTemplateURL(webID string) string { return byWebID(DeleteElementTemplate, webID) }

// EventFrameByPathURL returns the URL for looking up an event frame by path
func EventFrameByPathURL(path string) string { return byPath(GetEventFrameByPath, path) }

// EventFrameURL returns the URL of an event frame
func EventFrameURL(webID string) string { return byWebID(GetEventFrame, webID) }

// DataServerByPathURL returns the URL for looking up a data server by path
func DataServerByPathURL(path string) string { return byPath(GetDataServerByPath, path) }

// DataServerPointsURL returns the URL of the points of a data server
func DataServerPointsURL(webID string, query url.Values) string {
	return BuildURL(ListPoints, map[string]string{"webId": webID}, query)
}

// PointByPathURL returns the URL for looking up a point by path
func PointByPathURL(path string) string { return byPath(GetPointByPath, path) }

// PointURL returns the URL of a point
func PointURL(webID string) string { return byWebID(GetPoint, webID) }

// StreamValueURL returns the URL of the current value of a stream
func StreamValueURL(webID string) string { return byWebID(GetValue, webID) }

// StreamRecordedURL returns the URL of the recorded values of a stream
func StreamRecordedURL(webID string, query url.Values) string {
	return BuildURL(GetRecorded, map[string]string{"webId": webID}, query)
}

// StreamUpdatesRegisterURL returns the URL registering a stream for updates
func StreamUpdatesRegisterURL(webID string) string { return byWebID(RegisterStreamUpdates, webID) }

// StreamUpdatesURL returns the URL retrieving the updates after a marker
func StreamUpdatesURL(marker string) string {
	return BuildURL(GetStreamUpdates, map[string]string{"marker": marker}, nil)
}

// OMFURL returns the URL of the OMF endpoint
func OMFURL() string { return BuildURL(PostOMF, nil, nil) }
