package client

// Links maps link relation names to URLs
type Links map[string]string

// Has reports whether the relation is present
func (l Links) Has(rel string) bool {
	_, ok := l[rel]
	return ok
}

// Home is the PI Web API landing page
type Home struct {
	Links Links `json:"Links"`
}

// SystemInfo describes the installed PI Web API product
type SystemInfo struct {
	ProductTitle   string `json:"ProductTitle"`
	ProductVersion string `json:"ProductVersion"`
	Links          Links  `json:"Links,omitempty"`
}

// InstanceConfiguration lists where OMF writes its objects
type InstanceConfiguration struct {
	OmfAssetServerName   string `json:"OmfAssetServerName"`
	OmfAssetDatabaseName string `json:"OmfAssetDatabaseName"`
	OmfDataArchiveName   string `json:"OmfDataArchiveName"`
}

// AssetServer is an AF server
type AssetServer struct {
	WebID         string `json:"WebId"`
	ID            string `json:"Id,omitempty"`
	Name          string `json:"Name"`
	Path          string `json:"Path"`
	IsConnected   bool   `json:"IsConnected"`
	ServerVersion string `json:"ServerVersion"`
}

// AnalysisRulePlugIn is an analysis rule plug-in registered on an AF server
type AnalysisRulePlugIn struct {
	WebID   string `json:"WebId"`
	Name    string `json:"Name"`
	Version string `json:"Version"`
}

// AssetDatabase is an AF database
type AssetDatabase struct {
	WebID       string `json:"WebId"`
	ID          string `json:"Id,omitempty"`
	Name        string `json:"Name"`
	Description string `json:"Description,omitempty"`
	Path        string `json:"Path"`
}

// Element is an AF element
type Element struct {
	WebID        string `json:"WebId,omitempty"`
	ID           string `json:"Id,omitempty"`
	Name         string `json:"Name,omitempty"`
	Description  string `json:"Description,omitempty"`
	Path         string `json:"Path,omitempty"`
	TemplateName string `json:"TemplateName,omitempty"`
	HasChildren  bool   `json:"HasChildren,omitempty"`
}

// Attribute is an AF attribute
type Attribute struct {
	WebID               string `json:"WebId,omitempty"`
	Name                string `json:"Name,omitempty"`
	Description         string `json:"Description,omitempty"`
	Path                string `json:"Path,omitempty"`
	Type                string `json:"Type,omitempty"`
	DataReferencePlugIn string `json:"DataReferencePlugIn,omitempty"`
	ConfigString        string `json:"ConfigString,omitempty"`
	DefaultUnitsName    string `json:"DefaultUnitsName,omitempty"`
}

// ElementTemplate is an AF element template
type ElementTemplate struct {
	WebID string `json:"WebId"`
	Name  string `json:"Name"`
	Path  string `json:"Path"`
}

// EventFrame is an AF event frame
type EventFrame struct {
	WebID       string `json:"WebId,omitempty"`
	Name        string `json:"Name,omitempty"`
	Description string `json:"Description,omitempty"`
	Path        string `json:"Path,omitempty"`
	StartTime   string `json:"StartTime,omitempty"`
	EndTime     string `json:"EndTime,omitempty"`
}

// DataServer is a PI Data Archive
type DataServer struct {
	WebID         string `json:"WebId"`
	ID            string `json:"Id,omitempty"`
	Name          string `json:"Name"`
	Path          string `json:"Path"`
	IsConnected   bool   `json:"IsConnected"`
	ServerVersion string `json:"ServerVersion"`
}

// Point classes and types used by the harness
const (
	PointClassClassic = "classic"
	PointTypeFloat32  = "Float32"
	PointTypeInt32    = "Int32"
)

// Point is a PI Point
type Point struct {
	WebID            string `json:"WebId,omitempty"`
	ID               int    `json:"Id,omitempty"`
	Name             string `json:"Name,omitempty"`
	Path             string `json:"Path,omitempty"`
	Descriptor       string `json:"Descriptor,omitempty"`
	PointClass       string `json:"PointClass,omitempty"`
	PointType        string `json:"PointType,omitempty"`
	EngineeringUnits string `json:"EngineeringUnits,omitempty"`
	Future           bool   `json:"Future,omitempty"`
}

// TimedValue is a value of a stream at a timestamp
type TimedValue struct {
	Timestamp         string      `json:"Timestamp,omitempty"`
	Value             interface{} `json:"Value"`
	UnitsAbbreviation string      `json:"UnitsAbbreviation,omitempty"`
	Good              bool        `json:"Good"`
	Questionable      bool        `json:"Questionable,omitempty"`
	Substituted       bool        `json:"Substituted,omitempty"`
}

// Float reports the value as a float64 when it is numeric
func (v TimedValue) Float() (float64, bool) {
	switch n := v.Value.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// StreamUpdatesRegistration is the answer to registering a stream for updates
type StreamUpdatesRegistration struct {
	Source       string `json:"Source"`
	Status       string `json:"Status"`
	LatestMarker string `json:"LatestMarker"`
}

// StreamUpdateEvent is an event delivered through stream updates
type StreamUpdateEvent struct {
	TimedValue
	Action string `json:"Action,omitempty"`
}

// StreamUpdates are the events of a stream after a marker
type StreamUpdates struct {
	Source       string              `json:"Source"`
	Status       string              `json:"Status"`
	Events       []StreamUpdateEvent `json:"Events"`
	LatestMarker string              `json:"LatestMarker"`
}

// OMF message types and actions
const (
	OMFMessageType      = "type"
	OMFMessageContainer = "container"
	OMFMessageData      = "data"

	OMFActionCreate = "create"
	OMFActionDelete = "delete"
)

// OMFResponse is the answer to an OMF message
type OMFResponse struct {
	OperationID string `json:"OperationId"`
}

// ItemsResponse wraps list responses
type ItemsResponse[T any] struct {
	Items []T `json:"Items"`
}
