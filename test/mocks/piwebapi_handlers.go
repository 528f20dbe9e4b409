package mocks

import (
	"sort"
	"strconv"
	"strings"
	"time"

	fiber "github.com/gofiber/fiber/v2"

	"github.com/celestiaorg/pitests/pkg/piwebapi/client"
	"github.com/celestiaorg/pitests/pkg/piwebapi/routes"
)

func (s *PIWebAPI) handlers() map[string]fiber.Handler {
	return map[string]fiber.Handler{
		routes.Home:                  s.home,
		routes.System:                s.system,
		routes.SystemConfiguration:   s.systemConfiguration,
		routes.InstanceConfiguration: s.instanceConfiguration,

		routes.GetAssetServerByPath:    s.getAssetServerByPath,
		routes.ListAnalysisRulePlugIns: s.listAnalysisRulePlugIns,
		routes.GetAssetDatabaseByPath:  s.getAssetDatabaseByPath,
		routes.CreateElement:           s.writes(s.createElement),
		routes.CreateEventFrame:        s.writes(s.createEventFrame),

		routes.GetElementByPath:   s.getElementByPath,
		routes.GetElement:         s.getElement,
		routes.ListAttributes:     s.listAttributes,
		routes.CreateAttribute:    s.writes(s.createAttribute),
		routes.UpdateElement:      s.writes(s.updateElement),
		routes.DeleteElement:      s.writes(s.deleteElement),
		routes.GetAttributeByPath: s.getAttributeByPath,

		routes.GetElementTemplateByPath: s.getElementTemplateByPath,
		routes.DeleteElementTemplate:    s.writes(s.deleteElementTemplate),

		routes.GetEventFrameByPath: s.getEventFrameByPath,
		routes.GetEventFrame:       s.getEventFrame,
		routes.UpdateEventFrame:    s.writes(s.updateEventFrame),
		routes.DeleteEventFrame:    s.writes(s.deleteEventFrame),

		routes.GetDataServerByPath: s.getDataServerByPath,
		routes.ListPoints:          s.listPoints,
		routes.CreatePoint:         s.writes(s.createPoint),
		routes.GetPointByPath:      s.getPointByPath,
		routes.GetPoint:            s.getPoint,
		routes.UpdatePoint:         s.writes(s.updatePoint),
		routes.DeletePoint:         s.writes(s.deletePoint),

		routes.GetStreamUpdates:      s.getStreamUpdates,
		routes.GetValue:              s.getValue,
		routes.GetRecorded:           s.getRecorded,
		routes.UpdateValue:           s.writes(s.updateValue),
		routes.UpdateRecorded:        s.writes(s.updateRecorded),
		routes.RegisterStreamUpdates: s.registerStreamUpdates,

		routes.PostOMF: s.writes(s.postOMF),
	}
}

// writes rejects the request when the instance has writes disabled
func (s *PIWebAPI) writes(h fiber.Handler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if s.opts.DisableWrites {
			return fiber.NewError(fiber.StatusForbidden, "Write operations are disabled on this instance.")
		}
		return h(c)
	}
}

func (s *PIWebAPI) location(c *fiber.Ctx, endpoint string) error {
	c.Location(c.BaseURL() + routes.DefaultPath + endpoint)
	return c.SendStatus(fiber.StatusCreated)
}

func notFound(what, key string) error {
	return fiber.NewError(fiber.StatusNotFound, what+" '"+key+"' not found.")
}

func (s *PIWebAPI) home(c *fiber.Ctx) error {
	base := c.BaseURL() + routes.DefaultPath
	links := client.Links{
		"Self":         base,
		"AssetServers": base + "/assetservers",
		"DataServers":  base + "/dataservers",
		"System":       base + routes.SystemURL(),
	}
	if !s.opts.DisableSearch {
		links["Search"] = base + "/search"
	}
	if !s.opts.DisableOMF {
		links["Omf"] = base + routes.OMFURL()
	}
	return c.JSON(client.Home{Links: links})
}

func (s *PIWebAPI) system(c *fiber.Ctx) error {
	return c.JSON(client.SystemInfo{
		ProductTitle:   "PI Web API 2019 SP1",
		ProductVersion: s.opts.WebAPIVersion,
	})
}

func (s *PIWebAPI) systemConfiguration(c *fiber.Ctx) error {
	if s.opts.Username != "" && c.Get(fiber.HeaderAuthorization) == "" {
		return unauthorized(c)
	}
	return c.JSON(fiber.Map{
		"AuthenticationMethods": s.opts.AuthenticationMethods,
		"DisableWrites":         s.opts.DisableWrites,
	})
}

func (s *PIWebAPI) instanceConfiguration(c *fiber.Ctx) error {
	return c.JSON(client.InstanceConfiguration{
		OmfAssetServerName:   s.opts.AFServer,
		OmfAssetDatabaseName: s.opts.OMFDatabase,
		OmfDataArchiveName:   s.opts.DataArchive,
	})
}

func (s *PIWebAPI) getAssetServerByPath(c *fiber.Ctx) error {
	path := c.Query("path")
	if !strings.EqualFold(path, s.assetServer.Path) {
		return notFound("Asset server", path)
	}
	return c.JSON(s.assetServer)
}

func (s *PIWebAPI) listAnalysisRulePlugIns(c *fiber.Ctx) error {
	if c.Params("webId") != s.assetServer.WebID {
		return notFound("Asset server", c.Params("webId"))
	}
	items := []client.AnalysisRulePlugIn{}
	if s.opts.AnalysisPlugIns != nil {
		for name, v := range s.opts.AnalysisPlugIns {
			items = append(items, client.AnalysisRulePlugIn{WebID: newWebID("F1AP"), Name: name, Version: v})
		}
		sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	} else if s.opts.AnalysisVersion != "" {
		for _, name := range []string{"PerformanceEquation", "Rollup", "EventFrame", "SQC"} {
			items = append(items, client.AnalysisRulePlugIn{
				WebID:   newWebID("F1AP"),
				Name:    name,
				Version: s.opts.AnalysisVersion,
			})
		}
	}
	return c.JSON(client.ItemsResponse[client.AnalysisRulePlugIn]{Items: items})
}

func (s *PIWebAPI) getAssetDatabaseByPath(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := c.Query("path")
	for _, db := range s.databases {
		if strings.EqualFold(db.Path, path) {
			return c.JSON(db)
		}
	}
	return notFound("Asset database", path)
}

func (s *PIWebAPI) createElement(c *fiber.Ctx) error {
	var in client.Element
	if err := c.BodyParser(&in); err != nil || in.Name == "" {
		return fiber.NewError(fiber.StatusBadRequest, "An element name is required.")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	db, ok := s.databases[c.Params("webId")]
	if !ok {
		return notFound("Asset database", c.Params("webId"))
	}
	path := db.Path + `\` + in.Name
	for _, e := range s.elements {
		if strings.EqualFold(e.Path, path) {
			return fiber.NewError(fiber.StatusConflict, "Element '"+in.Name+"' already exists.")
		}
	}

	e := &fakeElement{
		Element: client.Element{
			WebID:        newWebID(webIDPrefixElement),
			ID:           newWebID(""),
			Name:         in.Name,
			Description:  in.Description,
			Path:         path,
			TemplateName: in.TemplateName,
		},
		databaseWebID: db.WebID,
		visibleAt:     s.visibleAt(),
	}
	s.elements[e.WebID] = e
	return s.location(c, routes.ElementURL(e.WebID))
}

func (s *PIWebAPI) lookupElement(webID string) (*fakeElement, bool) {
	e, ok := s.elements[webID]
	if !ok || !s.visible(e.visibleAt) {
		return nil, false
	}
	return e, true
}

func (s *PIWebAPI) getElement(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.lookupElement(c.Params("webId"))
	if !ok {
		return notFound("Element", c.Params("webId"))
	}
	return c.JSON(e.Element)
}

func (s *PIWebAPI) getElementByPath(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := c.Query("path")
	for _, e := range s.elements {
		if strings.EqualFold(e.Path, path) && s.visible(e.visibleAt) {
			return c.JSON(e.Element)
		}
	}
	return notFound("Element", path)
}

func (s *PIWebAPI) updateElement(c *fiber.Ctx) error {
	var in client.Element
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.lookupElement(c.Params("webId"))
	if !ok {
		return notFound("Element", c.Params("webId"))
	}
	if in.Description != "" {
		e.Description = in.Description
	}
	if in.Name != "" && in.Name != e.Name {
		oldPath := e.Path
		e.Path = strings.TrimSuffix(e.Path, e.Name) + in.Name
		e.Name = in.Name
		for _, a := range s.attributes {
			if a.elementWebID == e.WebID {
				a.Path = e.Path + strings.TrimPrefix(a.Path, oldPath)
			}
		}
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *PIWebAPI) deleteElement(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.lookupElement(c.Params("webId"))
	if !ok {
		return notFound("Element", c.Params("webId"))
	}
	for id, a := range s.attributes {
		if a.elementWebID == e.WebID {
			delete(s.attributes, id)
			delete(s.values, id)
		}
	}
	delete(s.elements, e.WebID)
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *PIWebAPI) createAttribute(c *fiber.Ctx) error {
	var in client.Attribute
	if err := c.BodyParser(&in); err != nil || in.Name == "" {
		return fiber.NewError(fiber.StatusBadRequest, "An attribute name is required.")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.lookupElement(c.Params("webId"))
	if !ok {
		return notFound("Element", c.Params("webId"))
	}
	a := &fakeAttribute{
		Attribute: client.Attribute{
			WebID:            newWebID(webIDPrefixAttribute),
			Name:             in.Name,
			Description:      in.Description,
			Path:             e.Path + "|" + in.Name,
			Type:             in.Type,
			DefaultUnitsName: in.DefaultUnitsName,
		},
		elementWebID: e.WebID,
		visibleAt:    s.visibleAt(),
	}
	s.attributes[a.WebID] = a
	return s.location(c, "/attributes/"+a.WebID)
}

func (s *PIWebAPI) listAttributes(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.lookupElement(c.Params("webId"))
	if !ok {
		return notFound("Element", c.Params("webId"))
	}
	items := []client.Attribute{}
	for _, a := range s.attributes {
		if a.elementWebID == e.WebID && s.visible(a.visibleAt) {
			items = append(items, a.Attribute)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return c.JSON(client.ItemsResponse[client.Attribute]{Items: items})
}

func (s *PIWebAPI) getAttributeByPath(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := c.Query("path")
	for _, a := range s.attributes {
		if strings.EqualFold(a.Path, path) && s.visible(a.visibleAt) {
			return c.JSON(a.Attribute)
		}
	}
	return notFound("Attribute", path)
}

func (s *PIWebAPI) getElementTemplateByPath(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := c.Query("path")
	for _, t := range s.templates {
		if strings.EqualFold(t.Path, path) && s.visible(t.visibleAt) {
			return c.JSON(t.ElementTemplate)
		}
	}
	return notFound("Element template", path)
}

func (s *PIWebAPI) deleteElementTemplate(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.templates[c.Params("webId")]; !ok {
		return notFound("Element template", c.Params("webId"))
	}
	delete(s.templates, c.Params("webId"))
	return c.SendStatus(fiber.StatusNoContent)
}

func eventFramePath(db client.AssetDatabase, name string) string {
	return db.Path + `\EventFrames[` + name + `]`
}

func (s *PIWebAPI) createEventFrame(c *fiber.Ctx) error {
	var in client.EventFrame
	if err := c.BodyParser(&in); err != nil || in.Name == "" {
		return fiber.NewError(fiber.StatusBadRequest, "An event frame name is required.")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	db, ok := s.databases[c.Params("webId")]
	if !ok {
		return notFound("Asset database", c.Params("webId"))
	}
	start := in.StartTime
	if start == "" {
		start = s.now().UTC().Format(time.RFC3339Nano)
	}
	f := &fakeEventFrame{
		EventFrame: client.EventFrame{
			WebID:       newWebID(webIDPrefixEventFrame),
			Name:        in.Name,
			Description: in.Description,
			Path:        eventFramePath(db, in.Name),
			StartTime:   start,
			EndTime:     in.EndTime,
		},
		databaseWebID: db.WebID,
		visibleAt:     s.visibleAt(),
	}
	s.eventFrames[f.WebID] = f
	return s.location(c, routes.EventFrameURL(f.WebID))
}

func (s *PIWebAPI) lookupEventFrame(webID string) (*fakeEventFrame, bool) {
	f, ok := s.eventFrames[webID]
	if !ok || !s.visible(f.visibleAt) {
		return nil, false
	}
	return f, true
}

func (s *PIWebAPI) getEventFrame(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.lookupEventFrame(c.Params("webId"))
	if !ok {
		return notFound("Event frame", c.Params("webId"))
	}
	return c.JSON(f.EventFrame)
}

func (s *PIWebAPI) getEventFrameByPath(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := c.Query("path")
	for _, f := range s.eventFrames {
		if strings.EqualFold(f.Path, path) && s.visible(f.visibleAt) {
			return c.JSON(f.EventFrame)
		}
	}
	return notFound("Event frame", path)
}

func (s *PIWebAPI) updateEventFrame(c *fiber.Ctx) error {
	var in client.EventFrame
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.lookupEventFrame(c.Params("webId"))
	if !ok {
		return notFound("Event frame", c.Params("webId"))
	}
	if in.Name != "" {
		f.Name = in.Name
		f.Path = eventFramePath(s.databases[f.databaseWebID], in.Name)
	}
	if in.Description != "" {
		f.Description = in.Description
	}
	if in.EndTime != "" {
		f.EndTime = in.EndTime
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *PIWebAPI) deleteEventFrame(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.lookupEventFrame(c.Params("webId")); !ok {
		return notFound("Event frame", c.Params("webId"))
	}
	delete(s.eventFrames, c.Params("webId"))
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *PIWebAPI) getDataServerByPath(c *fiber.Ctx) error {
	path := c.Query("path")
	if !strings.EqualFold(path, s.dataServer.Path) {
		return notFound("Data server", path)
	}
	return c.JSON(s.dataServer)
}

func (s *PIWebAPI) newPoint(in client.Point) *fakePoint {
	pointType := in.PointType
	if pointType == "" {
		pointType = client.PointTypeFloat32
	}
	pointClass := in.PointClass
	if pointClass == "" {
		pointClass = client.PointClassClassic
	}
	p := &fakePoint{
		Point: client.Point{
			WebID:            newWebID(webIDPrefixPoint),
			ID:               len(s.points) + 1,
			Name:             in.Name,
			Path:             `\\` + s.dataServer.Name + `\` + in.Name,
			Descriptor:       in.Descriptor,
			PointClass:       pointClass,
			PointType:        pointType,
			EngineeringUnits: in.EngineeringUnits,
			Future:           in.Future,
		},
		visibleAt: s.visibleAt(),
	}
	s.points[p.WebID] = p
	return p
}

func (s *PIWebAPI) createPoint(c *fiber.Ctx) error {
	var in client.Point
	if err := c.BodyParser(&in); err != nil || in.Name == "" {
		return fiber.NewError(fiber.StatusBadRequest, "A point name is required.")
	}
	if c.Params("webId") != s.dataServer.WebID {
		return notFound("Data server", c.Params("webId"))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pointByName(in.Name) != nil {
		return fiber.NewError(fiber.StatusConflict, "Point '"+in.Name+"' already exists.")
	}
	p := s.newPoint(in)
	return s.location(c, routes.PointURL(p.WebID))
}

// matchFilter matches PI name filters where * is any run of characters and ? is one character
func matchFilter(filter, name string) bool {
	filter, name = strings.ToLower(filter), strings.ToLower(name)
	if filter == "" {
		return true
	}
	switch filter[0] {
	case '*':
		for i := 0; i <= len(name); i++ {
			if matchFilter(filter[1:], name[i:]) {
				return true
			}
		}
		return false
	case '?':
		return name != "" && matchFilter(filter[1:], name[1:])
	default:
		return name != "" && filter[0] == name[0] && matchFilter(filter[1:], name[1:])
	}
}

func (s *PIWebAPI) listPoints(c *fiber.Ctx) error {
	if c.Params("webId") != s.dataServer.WebID {
		return notFound("Data server", c.Params("webId"))
	}
	filter := c.Query("nameFilter", "*")

	s.mu.Lock()
	defer s.mu.Unlock()

	items := []client.Point{}
	for _, p := range s.points {
		if s.visible(p.visibleAt) && matchFilter(filter, p.Name) {
			items = append(items, p.Point)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return c.JSON(client.ItemsResponse[client.Point]{Items: items})
}

func (s *PIWebAPI) lookupPoint(webID string) (*fakePoint, bool) {
	p, ok := s.points[webID]
	if !ok || !s.visible(p.visibleAt) {
		return nil, false
	}
	return p, true
}

func (s *PIWebAPI) getPoint(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.lookupPoint(c.Params("webId"))
	if !ok {
		return notFound("Point", c.Params("webId"))
	}
	return c.JSON(p.Point)
}

func (s *PIWebAPI) getPointByPath(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := c.Query("path")
	for _, p := range s.points {
		if strings.EqualFold(p.Path, path) && s.visible(p.visibleAt) {
			return c.JSON(p.Point)
		}
	}
	return notFound("Point", path)
}

func (s *PIWebAPI) updatePoint(c *fiber.Ctx) error {
	var in client.Point
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.lookupPoint(c.Params("webId"))
	if !ok {
		return notFound("Point", c.Params("webId"))
	}
	if in.Name != "" {
		if other := s.pointByName(in.Name); other != nil && other != p {
			return fiber.NewError(fiber.StatusConflict, "Point '"+in.Name+"' already exists.")
		}
		p.Name = in.Name
		p.Path = `\\` + s.dataServer.Name + `\` + in.Name
	}
	if in.Descriptor != "" {
		p.Descriptor = in.Descriptor
	}
	if in.EngineeringUnits != "" {
		p.EngineeringUnits = in.EngineeringUnits
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *PIWebAPI) deletePoint(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.lookupPoint(c.Params("webId")); !ok {
		return notFound("Point", c.Params("webId"))
	}
	delete(s.points, c.Params("webId"))
	delete(s.values, c.Params("webId"))
	return c.SendStatus(fiber.StatusNoContent)
}

// stream reports whether a webID names a visible point or attribute, and whether it is the live point
func (s *PIWebAPI) stream(webID string) (exists, live bool) {
	if p, ok := s.lookupPoint(webID); ok {
		return true, s.opts.LivePoint != "" && strings.EqualFold(p.Name, s.opts.LivePoint)
	}
	if a, ok := s.attributes[webID]; ok && s.visible(a.visibleAt) {
		return true, false
	}
	return false, false
}

func (s *PIWebAPI) visibleValues(webID string) []fakeValue {
	var out []fakeValue
	for _, v := range s.values[webID] {
		if s.visible(v.visibleAt) {
			out = append(out, v)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].at.Before(out[j].at) })
	return out
}

func (s *PIWebAPI) liveTimedValue() client.TimedValue {
	now := s.now().UTC()
	return client.TimedValue{
		Timestamp: now.Format(time.RFC3339Nano),
		Value:     liveValue(now),
		Good:      true,
	}
}

func (s *PIWebAPI) getValue(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	webID := c.Params("webId")
	exists, live := s.stream(webID)
	if !exists {
		return notFound("Stream", webID)
	}
	if live {
		return c.JSON(s.liveTimedValue())
	}

	values := s.visibleValues(webID)
	if len(values) == 0 {
		return c.JSON(client.TimedValue{
			Timestamp: "1970-01-01T00:00:00Z",
			Value:     fiber.Map{"Name": "Pt Created", "Value": -65536, "IsSystem": true},
		})
	}
	return c.JSON(values[len(values)-1].TimedValue)
}

func (s *PIWebAPI) getRecorded(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	webID := c.Params("webId")
	if exists, _ := s.stream(webID); !exists {
		return notFound("Stream", webID)
	}

	items := []client.TimedValue{}
	for _, v := range s.visibleValues(webID) {
		items = append(items, v.TimedValue)
	}
	if maxCount, err := strconv.Atoi(c.Query("maxCount")); err == nil && maxCount > 0 && len(items) > maxCount {
		items = items[:maxCount]
	}
	return c.JSON(client.ItemsResponse[client.TimedValue]{Items: items})
}

// appendValue records a value under the lock
func (s *PIWebAPI) appendValue(webID string, v client.TimedValue) {
	at := s.now().UTC()
	if v.Timestamp != "" {
		if parsed, err := time.Parse(time.RFC3339Nano, v.Timestamp); err == nil {
			at = parsed
		}
	} else {
		v.Timestamp = at.Format(time.RFC3339Nano)
	}
	v.Good = true
	s.values[webID] = append(s.values[webID], fakeValue{TimedValue: v, at: at, visibleAt: s.visibleAt()})
}

func (s *PIWebAPI) updateValue(c *fiber.Ctx) error {
	var in client.TimedValue
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	webID := c.Params("webId")
	if exists, _ := s.stream(webID); !exists {
		return notFound("Stream", webID)
	}
	s.appendValue(webID, in)
	return c.SendStatus(fiber.StatusAccepted)
}

func (s *PIWebAPI) updateRecorded(c *fiber.Ctx) error {
	var in []client.TimedValue
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	webID := c.Params("webId")
	if exists, _ := s.stream(webID); !exists {
		return notFound("Stream", webID)
	}
	for _, v := range in {
		s.appendValue(webID, v)
	}
	return c.SendStatus(fiber.StatusAccepted)
}

func (s *PIWebAPI) newMarker(webID string) string {
	marker := newWebID(webIDPrefixStreamsMarker)
	s.markers[marker] = fakeMarker{webID: webID, since: s.now()}
	return marker
}

func (s *PIWebAPI) registerStreamUpdates(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	webID := c.Params("webId")
	if exists, _ := s.stream(webID); !exists {
		return notFound("Stream", webID)
	}
	return c.JSON(client.StreamUpdatesRegistration{
		Source:       webID,
		Status:       "Succeeded",
		LatestMarker: s.newMarker(webID),
	})
}

func (s *PIWebAPI) getStreamUpdates(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.markers[c.Params("marker")]
	if !ok {
		return notFound("Marker", c.Params("marker"))
	}
	exists, live := s.stream(m.webID)
	if !exists {
		return notFound("Stream", m.webID)
	}

	events := []client.StreamUpdateEvent{}
	if live {
		if !s.now().Before(m.since.Add(s.opts.Lag)) {
			events = append(events, client.StreamUpdateEvent{TimedValue: s.liveTimedValue(), Action: "Add"})
		}
	} else {
		for _, v := range s.visibleValues(m.webID) {
			if v.visibleAt.After(m.since) {
				events = append(events, client.StreamUpdateEvent{TimedValue: v.TimedValue, Action: "Add"})
			}
		}
	}

	return c.JSON(client.StreamUpdates{
		Source:       m.webID,
		Status:       "Succeeded",
		Events:       events,
		LatestMarker: s.newMarker(m.webID),
	})
}
