package mocks

import (
	"encoding/base64"
	"math"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	fiber "github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/google/uuid"

	"github.com/celestiaorg/pitests/internal/middleware"
	"github.com/celestiaorg/pitests/pkg/piwebapi/client"
	"github.com/celestiaorg/pitests/pkg/piwebapi/routes"
)

// Defaults of the fake PI Web API
const (
	DefaultAFServer          = "AFSERVER"
	DefaultAFDatabase        = "DeploymentTests"
	DefaultOMFDatabase       = "OMF"
	DefaultDataArchive       = "DATAARCHIVE"
	DefaultLivePoint         = "SINUSOID"
	DefaultConfigInstance    = "PIWEBAPI"
	DefaultWebAPIVersion     = "1.13.0.6518"
	DefaultAFServerVersion   = "2.10.9.593"
	DefaultDataArchiveVer    = "3.4.440.477"
	DefaultAnalysisVersion   = "2.10.6.195"
	DefaultVisionVersion     = "3.5.0.0"
	configurationDatabase    = "Configuration"
	systemConfigurationName  = "System Configuration"
	visionVersionRoute       = "/Utility/permissions/read"
	webIDPrefixElement       = "F1Em"
	webIDPrefixAttribute     = "F1Ab"
	webIDPrefixEventFrame    = "F1Fm"
	webIDPrefixPoint         = "F1DP"
	webIDPrefixTemplate      = "F1ET"
	webIDPrefixDatabase      = "F1RD"
	webIDPrefixAssetServer   = "F1RS"
	webIDPrefixDataServer    = "F1DS"
	webIDPrefixStreamsMarker = "1a"
)

// PIWebAPIOptions configures the fake PI Web API
type PIWebAPIOptions struct {
	// Lag delays the visibility of created objects and written values
	Lag time.Duration

	// Username and Password are the only accepted basic credentials when Username is set
	Username string
	Password string
	// AllowAnonymous lets requests without credentials through
	AllowAnonymous bool

	AFServer           string
	AFDatabase         string
	OMFDatabase        string
	DataArchive        string
	WebAPIVersion      string
	AFServerVersion    string
	DataArchiveVersion string
	AnalysisVersion    string
	VisionVersion      string
	// AnalysisPlugIns overrides the analysis rule plug-ins by name and version. By default
	// the standard plug-ins all report AnalysisVersion.
	AnalysisPlugIns map[string]string

	// ConfigInstance seeds the System Configuration element of this instance when set
	ConfigInstance        string
	DisableWrites         bool
	AuthenticationMethods []string

	DisableOMF    bool
	DisableSearch bool

	// LivePoint is a point whose value is regenerated on every read, like an analysis output
	LivePoint string
}

// DefaultPIWebAPIOptions returns options describing a current, fully featured deployment
func DefaultPIWebAPIOptions() *PIWebAPIOptions {
	return &PIWebAPIOptions{
		Username:              "piadmin",
		Password:              "secret",
		AFServer:              DefaultAFServer,
		AFDatabase:            DefaultAFDatabase,
		OMFDatabase:           DefaultOMFDatabase,
		DataArchive:           DefaultDataArchive,
		WebAPIVersion:         DefaultWebAPIVersion,
		AFServerVersion:       DefaultAFServerVersion,
		DataArchiveVersion:    DefaultDataArchiveVer,
		AnalysisVersion:       DefaultAnalysisVersion,
		VisionVersion:         DefaultVisionVersion,
		ConfigInstance:        DefaultConfigInstance,
		AuthenticationMethods: []string{"Basic", "Kerberos"},
		LivePoint:             DefaultLivePoint,
	}
}

type fakeElement struct {
	client.Element
	databaseWebID string
	visibleAt     time.Time
}

type fakeAttribute struct {
	client.Attribute
	elementWebID string
	visibleAt    time.Time
}

type fakeEventFrame struct {
	client.EventFrame
	databaseWebID string
	visibleAt     time.Time
}

type fakeTemplate struct {
	client.ElementTemplate
	visibleAt time.Time
}

type fakePoint struct {
	client.Point
	visibleAt time.Time
}

type fakeValue struct {
	client.TimedValue
	at        time.Time
	visibleAt time.Time
}

type fakeMarker struct {
	webID string
	since time.Time
}

// PIWebAPI is an in-memory PI Web API served over HTTP
type PIWebAPI struct {
	App    *fiber.App
	Server *httptest.Server

	opts *PIWebAPIOptions

	mu          sync.Mutex
	now         func() time.Time
	assetServer client.AssetServer
	dataServer  client.DataServer
	databases   map[string]client.AssetDatabase
	elements    map[string]*fakeElement
	attributes  map[string]*fakeAttribute
	eventFrames map[string]*fakeEventFrame
	templates   map[string]*fakeTemplate
	points      map[string]*fakePoint
	values      map[string][]fakeValue
	markers     map[string]fakeMarker
	omfTypes    map[string]omfType
	omfStreams  map[string]string
}

// NewPIWebAPI starts a fake PI Web API. Close it when done.
func NewPIWebAPI(opts *PIWebAPIOptions) *PIWebAPI {
	if opts == nil {
		opts = DefaultPIWebAPIOptions()
	}

	s := &PIWebAPI{
		opts:        opts,
		now:         time.Now,
		databases:   make(map[string]client.AssetDatabase),
		elements:    make(map[string]*fakeElement),
		attributes:  make(map[string]*fakeAttribute),
		eventFrames: make(map[string]*fakeEventFrame),
		templates:   make(map[string]*fakeTemplate),
		points:      make(map[string]*fakePoint),
		values:      make(map[string][]fakeValue),
		markers:     make(map[string]fakeMarker),
		omfTypes:    make(map[string]omfType),
		omfStreams:  make(map[string]string),
	}
	s.seed()

	s.App = fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	s.App.Use(middleware.Logger())
	api := s.App.Group(routes.DefaultPath, s.authenticate)
	routes.RegisterRoutes(api, s.handlers())
	s.App.Get(visionVersionRoute, s.visionVersion)

	s.Server = httptest.NewServer(adaptor.FiberApp(s.App))
	return s
}

// URL returns the PI Web API base URL
func (s *PIWebAPI) URL() string {
	return s.Server.URL + routes.DefaultPath
}

// VisionURL returns the PI Vision address served next to the API
func (s *PIWebAPI) VisionURL() string {
	return s.Server.URL + "/#/"
}

// Options returns the options the server was started with
func (s *PIWebAPI) Options() PIWebAPIOptions {
	return *s.opts
}

// Close stops the server
func (s *PIWebAPI) Close() {
	if s.Server != nil {
		s.Server.Close()
	}
}

// SetLag changes the propagation lag of later writes
func (s *PIWebAPI) SetLag(lag time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opts.Lag = lag
}

// HasElement reports whether an element exists at the path, visible or not
func (s *PIWebAPI) HasElement(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.elements {
		if strings.EqualFold(e.Path, path) {
			return true
		}
	}
	return false
}

// HasPoint reports whether a point with the name exists, visible or not
func (s *PIWebAPI) HasPoint(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pointByName(name) != nil
}

// ObjectCount returns the number of elements, event frames, points and templates created
// after startup.
func (s *PIWebAPI) ObjectCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.eventFrames) + len(s.templates)
	for _, e := range s.elements {
		if !strings.EqualFold(s.databaseName(e.databaseWebID), configurationDatabase) {
			n++
		}
	}
	for _, p := range s.points {
		if !strings.EqualFold(p.Name, s.opts.LivePoint) {
			n++
		}
	}
	return n
}

func newWebID(prefix string) string {
	return prefix + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
}

func (s *PIWebAPI) seed() {
	o := s.opts
	s.assetServer = client.AssetServer{
		WebID:         newWebID(webIDPrefixAssetServer),
		Name:          o.AFServer,
		Path:          `\\` + o.AFServer,
		IsConnected:   true,
		ServerVersion: o.AFServerVersion,
	}
	s.dataServer = client.DataServer{
		WebID:         newWebID(webIDPrefixDataServer),
		Name:          o.DataArchive,
		Path:          client.DataServerPath(o.DataArchive),
		IsConnected:   true,
		ServerVersion: o.DataArchiveVersion,
	}

	for _, name := range []string{o.AFDatabase, o.OMFDatabase, configurationDatabase} {
		if name == "" {
			continue
		}
		db := client.AssetDatabase{
			WebID: newWebID(webIDPrefixDatabase),
			Name:  name,
			Path:  `\\` + o.AFServer + `\` + name,
		}
		s.databases[db.WebID] = db
	}

	if o.ConfigInstance != "" {
		s.seedConfiguration()
	}
	if o.LivePoint != "" {
		p := &fakePoint{Point: client.Point{
			WebID:      newWebID(webIDPrefixPoint),
			Name:       o.LivePoint,
			Path:       `\\` + o.DataArchive + `\` + o.LivePoint,
			PointClass: client.PointClassClassic,
			PointType:  client.PointTypeFloat32,
		}}
		s.points[p.WebID] = p
	}
}

func (s *PIWebAPI) seedConfiguration() {
	o := s.opts
	db := s.databaseByName(configurationDatabase)
	path := db.Path + `\OSIsoft\PI Web API\` + o.ConfigInstance + `\` + systemConfigurationName
	elem := &fakeElement{
		Element:       client.Element{WebID: newWebID(webIDPrefixElement), Name: systemConfigurationName, Path: path},
		databaseWebID: db.WebID,
	}
	s.elements[elem.WebID] = elem

	methods := make([]interface{}, 0, len(o.AuthenticationMethods))
	for _, m := range o.AuthenticationMethods {
		methods = append(methods, m)
	}
	for name, value := range map[string]interface{}{
		"DisableWrites":         o.DisableWrites,
		"AuthenticationMethods": methods,
	} {
		attr := &fakeAttribute{
			Attribute:    client.Attribute{WebID: newWebID(webIDPrefixAttribute), Name: name, Path: path + "|" + name},
			elementWebID: elem.WebID,
		}
		s.attributes[attr.WebID] = attr
		s.values[attr.WebID] = []fakeValue{{TimedValue: client.TimedValue{Value: value, Good: true}}}
	}
}

// authenticate enforces basic authentication when credentials are configured
func (s *PIWebAPI) authenticate(c *fiber.Ctx) error {
	if s.opts.Username == "" {
		return c.Next()
	}

	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		if s.opts.AllowAnonymous {
			return c.Next()
		}
		return unauthorized(c)
	}

	user, pass, ok := parseBasicAuth(header)
	if !ok || user != s.opts.Username || pass != s.opts.Password {
		return unauthorized(c)
	}
	return c.Next()
}

func unauthorized(c *fiber.Ctx) error {
	c.Set(fiber.HeaderWWWAuthenticate, `Basic realm="PI Web API"`)
	return fiber.NewError(fiber.StatusUnauthorized, "Authorization has been denied for this request.")
}

func parseBasicAuth(header string) (string, string, bool) {
	const prefix = "Basic "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", "", false
	}
	decoded, err := base64.StdEncoding.DecodeString(header[len(prefix):])
	if err != nil {
		return "", "", false
	}
	user, pass, ok := strings.Cut(string(decoded), ":")
	return user, pass, ok
}

func (s *PIWebAPI) visionVersion(c *fiber.Ctx) error {
	if s.opts.VisionVersion == "" {
		return fiber.ErrNotFound
	}
	return c.SendString(s.opts.VisionVersion)
}

func (s *PIWebAPI) visibleAt() time.Time {
	return s.now().Add(s.opts.Lag)
}

func (s *PIWebAPI) visible(at time.Time) bool {
	return !s.now().Before(at)
}

func (s *PIWebAPI) databaseByName(name string) client.AssetDatabase {
	for _, db := range s.databases {
		if strings.EqualFold(db.Name, name) {
			return db
		}
	}
	return client.AssetDatabase{}
}

func (s *PIWebAPI) databaseName(webID string) string {
	return s.databases[webID].Name
}

func (s *PIWebAPI) pointByName(name string) *fakePoint {
	for _, p := range s.points {
		if strings.EqualFold(p.Name, name) {
			return p
		}
	}
	return nil
}

// liveValue is the value of the live point at t
func liveValue(t time.Time) float64 {
	return math.Round(100*math.Sin(float64(t.Unix())/60)) / 100
}
