package client_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/celestiaorg/pitests/pkg/piwebapi/client"
	"github.com/celestiaorg/pitests/test/mocks"
)

type PIWebAPIClientTestSuite struct {
	suite.Suite
	server *mocks.PIWebAPI
	client client.Client
	ctx    context.Context
}

func (s *PIWebAPIClientTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.server = mocks.NewPIWebAPI(nil)
	opts := s.server.Options()

	c, err := client.NewClient(&client.Options{
		BaseURL:  s.server.URL(),
		Timeout:  5 * time.Second,
		Username: opts.Username,
		Password: opts.Password,
	})
	s.Require().NoError(err)
	s.client = c
}

func (s *PIWebAPIClientTestSuite) TearDownTest() {
	s.server.Close()
}

func TestPIWebAPIClientSuite(t *testing.T) {
	suite.Run(t, new(PIWebAPIClientTestSuite))
}

func (s *PIWebAPIClientTestSuite) TestHomeAndSystem() {
	home, err := s.client.Home(s.ctx)
	s.Require().NoError(err)
	s.True(home.Links.Has("Self"))
	s.True(home.Links.Has("Search"))
	s.True(home.Links.Has("Omf"))

	info, err := s.client.System(s.ctx)
	s.Require().NoError(err)
	s.Equal(mocks.DefaultWebAPIVersion, info.ProductVersion)
}

func (s *PIWebAPIClientTestSuite) TestSystemConfigurationRequiresCredentials() {
	_, err := s.client.SystemConfiguration(s.ctx)
	s.Require().NoError(err)

	anonymous, err := client.NewClient(&client.Options{BaseURL: s.server.URL()})
	s.Require().NoError(err)
	_, err = anonymous.SystemConfiguration(s.ctx)
	s.Require().Error(err)
	s.True(client.IsUnauthorized(err))
}

func (s *PIWebAPIClientTestSuite) TestWrongCredentials() {
	c, err := client.NewClient(&client.Options{BaseURL: s.server.URL(), Username: "piadmin", Password: "wrong"})
	s.Require().NoError(err)
	_, err = c.Home(s.ctx)
	s.Equal(http.StatusUnauthorized, client.StatusCode(err))
}

func (s *PIWebAPIClientTestSuite) TestElementLifecycle() {
	opts := s.server.Options()
	db, err := s.client.GetAssetDatabaseByPath(s.ctx, `\\`+opts.AFServer+`\`+opts.AFDatabase)
	s.Require().NoError(err)

	webID, err := s.client.CreateElement(s.ctx, db.WebID, client.Element{Name: "Pump01", Description: "feed pump"})
	s.Require().NoError(err)

	elem, err := s.client.GetElementByPath(s.ctx, db.Path+`\Pump01`)
	s.Require().NoError(err)
	s.Equal(webID, elem.WebID)
	s.Equal("feed pump", elem.Description)

	attrID, err := s.client.CreateAttribute(s.ctx, webID, client.Attribute{Name: "Speed", Type: "Double"})
	s.Require().NoError(err)
	s.Require().NoError(s.client.UpdateValue(s.ctx, attrID, client.TimedValue{Value: 1450.0}))

	value, err := s.client.GetValue(s.ctx, attrID)
	s.Require().NoError(err)
	speed, ok := value.Float()
	s.True(ok)
	s.Equal(1450.0, speed)

	s.Require().NoError(s.client.UpdateElement(s.ctx, webID, client.Element{Name: "Pump02"}))
	attr, err := s.client.GetAttributeByPath(s.ctx, db.Path+`\Pump02|Speed`)
	s.Require().NoError(err)
	s.Equal(attrID, attr.WebID)

	attrs, err := s.client.ListAttributes(s.ctx, webID)
	s.Require().NoError(err)
	s.Len(attrs, 1)

	s.Require().NoError(s.client.DeleteElement(s.ctx, webID))
	_, err = s.client.GetElement(s.ctx, webID)
	s.True(client.IsNotFound(err))
}

func (s *PIWebAPIClientTestSuite) TestEventFrameLifecycle() {
	opts := s.server.Options()
	db, err := s.client.GetAssetDatabaseByPath(s.ctx, `\\`+opts.AFServer+`\`+opts.AFDatabase)
	s.Require().NoError(err)

	webID, err := s.client.CreateEventFrame(s.ctx, db.WebID, client.EventFrame{Name: "Trip", StartTime: "2024-01-01T00:00:00Z"})
	s.Require().NoError(err)

	s.Require().NoError(s.client.UpdateEventFrame(s.ctx, webID, client.EventFrame{EndTime: "2024-01-01T01:00:00Z"}))
	frame, err := s.client.GetEventFrameByPath(s.ctx, db.Path+`\EventFrames[Trip]`)
	s.Require().NoError(err)
	s.Equal("2024-01-01T01:00:00Z", frame.EndTime)

	s.Require().NoError(s.client.DeleteEventFrame(s.ctx, webID))
	_, err = s.client.GetEventFrame(s.ctx, webID)
	s.True(client.IsNotFound(err))
}

func (s *PIWebAPIClientTestSuite) TestPointLifecycle() {
	opts := s.server.Options()
	server, err := s.client.GetDataServerByPath(s.ctx, client.DataServerPath(opts.DataArchive))
	s.Require().NoError(err)
	s.Equal(mocks.DefaultDataArchiveVer, server.ServerVersion)

	webID, err := s.client.CreatePoint(s.ctx, server.WebID, client.Point{
		Name:       "pitests.flow",
		PointClass: client.PointClassClassic,
		PointType:  client.PointTypeFloat32,
	})
	s.Require().NoError(err)

	found, err := s.client.FindPoints(s.ctx, server.WebID, "pitests.*")
	s.Require().NoError(err)
	s.Require().Len(found, 1)
	s.Equal(webID, found[0].WebID)

	s.Require().NoError(s.client.UpdateRecorded(s.ctx, webID, []client.TimedValue{
		{Timestamp: "2024-01-01T00:00:00Z", Value: 1.0},
		{Timestamp: "2024-01-01T00:01:00Z", Value: 2.0},
	}))
	recorded, err := s.client.GetRecorded(s.ctx, webID, "*-10y", "*", 10)
	s.Require().NoError(err)
	s.Len(recorded, 2)

	s.Require().NoError(s.client.UpdatePoint(s.ctx, webID, client.Point{Name: "pitests.flow2"}))
	point, err := s.client.GetPointByPath(s.ctx, `\\`+opts.DataArchive+`\pitests.flow2`)
	s.Require().NoError(err)
	s.Equal(webID, point.WebID)

	s.Require().NoError(s.client.DeletePoint(s.ctx, webID))
	s.False(s.server.HasPoint("pitests.flow2"))
}

func (s *PIWebAPIClientTestSuite) TestStreamUpdates() {
	opts := s.server.Options()
	point, err := s.client.GetPointByPath(s.ctx, `\\`+opts.DataArchive+`\`+opts.LivePoint)
	s.Require().NoError(err)

	reg, err := s.client.RegisterStreamUpdates(s.ctx, point.WebID)
	s.Require().NoError(err)
	s.NotEmpty(reg.LatestMarker)

	updates, err := s.client.GetStreamUpdates(s.ctx, reg.LatestMarker)
	s.Require().NoError(err)
	s.NotEmpty(updates.Events)
	s.NotEqual(reg.LatestMarker, updates.LatestMarker)
}

func (s *PIWebAPIClientTestSuite) TestOMFRoundTrip() {
	typeMsg := json.RawMessage(`[{"id": "Tank", "type": "object", "classification": "dynamic",
		"properties": {"Time": {"type": "string", "format": "date-time", "isindex": true},
		"Pressure": {"type": "number"}}}]`)
	containerMsg := json.RawMessage(`[{"id": "Tank1", "typeid": "Tank"}]`)
	dataMsg := json.RawMessage(`[{"containerid": "Tank1", "values": [{"Time": "2017-01-11T22:24:23.430Z", "Pressure": 11.5}]}]`)

	for _, step := range []struct {
		kind string
		body json.RawMessage
	}{
		{client.OMFMessageType, typeMsg},
		{client.OMFMessageContainer, containerMsg},
		{client.OMFMessageData, dataMsg},
	} {
		resp, err := s.client.PostOMF(s.ctx, step.kind, client.OMFActionCreate, step.body)
		s.Require().NoError(err, step.kind)
		s.NotEmpty(resp.OperationID)
	}

	cfg, err := s.client.InstanceConfiguration(s.ctx)
	s.Require().NoError(err)
	_, err = s.client.GetElementTemplateByPath(s.ctx, `\\`+cfg.OmfAssetServerName+`\`+cfg.OmfAssetDatabaseName+`\ElementTemplates[Tank]`)
	s.Require().NoError(err)

	point, err := s.client.GetPointByPath(s.ctx, `\\`+cfg.OmfDataArchiveName+`\Tank1.Pressure`)
	s.Require().NoError(err)
	value, err := s.client.GetValue(s.ctx, point.WebID)
	s.Require().NoError(err)
	pressure, _ := value.Float()
	s.Equal(11.5, pressure)

	_, err = s.client.PostOMF(s.ctx, client.OMFMessageContainer, client.OMFActionDelete, containerMsg)
	s.Require().NoError(err)
	s.False(s.server.HasPoint("Tank1.Pressure"))
}

func (s *PIWebAPIClientTestSuite) TestAnalysisRulePlugIns() {
	opts := s.server.Options()
	af, err := s.client.GetAssetServerByPath(s.ctx, `\\`+opts.AFServer)
	s.Require().NoError(err)
	s.Equal(mocks.DefaultAFServerVersion, af.ServerVersion)

	plugins, err := s.client.ListAnalysisRulePlugIns(s.ctx, af.WebID)
	s.Require().NoError(err)
	s.NotEmpty(plugins)
	s.Equal(mocks.DefaultAnalysisVersion, plugins[0].Version)
}

func TestDisableWrites(t *testing.T) {
	opts := mocks.DefaultPIWebAPIOptions()
	opts.DisableWrites = true
	server := mocks.NewPIWebAPI(opts)
	defer server.Close()

	c, err := client.NewClient(&client.Options{BaseURL: server.URL(), Username: opts.Username, Password: opts.Password})
	require.NoError(t, err)

	db, err := c.GetAssetDatabaseByPath(context.Background(), `\\`+opts.AFServer+`\`+opts.AFDatabase)
	require.NoError(t, err)
	_, err = c.CreateElement(context.Background(), db.WebID, client.Element{Name: "x"})
	assert.Equal(t, http.StatusForbidden, client.StatusCode(err))
}

func TestPropagationLag(t *testing.T) {
	opts := mocks.DefaultPIWebAPIOptions()
	opts.Lag = 200 * time.Millisecond
	server := mocks.NewPIWebAPI(opts)
	defer server.Close()

	c, err := client.NewClient(&client.Options{BaseURL: server.URL(), Username: opts.Username, Password: opts.Password})
	require.NoError(t, err)
	ctx := context.Background()

	db, err := c.GetAssetDatabaseByPath(ctx, `\\`+opts.AFServer+`\`+opts.AFDatabase)
	require.NoError(t, err)
	webID, err := c.CreateElement(ctx, db.WebID, client.Element{Name: "Lagging"})
	require.NoError(t, err)

	_, err = c.GetElement(ctx, webID)
	assert.True(t, client.IsNotFound(err), "element should not be visible before the lag elapses")

	time.Sleep(250 * time.Millisecond)
	_, err = c.GetElement(ctx, webID)
	assert.NoError(t, err)
}

func TestVisionClient(t *testing.T) {
	server := mocks.NewPIWebAPI(nil)
	defer server.Close()

	v, err := client.NewVisionClient(&client.Options{BaseURL: server.VisionURL()})
	require.NoError(t, err)
	version, err := v.ProductVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, mocks.DefaultVisionVersion, version)

	_, err = client.NewVisionClient(nil)
	assert.Error(t, err)
}
