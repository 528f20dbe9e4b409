package mocks

import (
	"encoding/json"
	"strings"

	fiber "github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/celestiaorg/pitests/pkg/piwebapi/client"
)

type omfProperty struct {
	Type    string `json:"type"`
	Format  string `json:"format"`
	IsIndex bool   `json:"isindex"`
	Name    string `json:"name"`
}

type omfType struct {
	ID         string                 `json:"id"`
	Properties map[string]omfProperty `json:"properties"`
}

type omfContainer struct {
	ID     string `json:"id"`
	TypeID string `json:"typeid"`
}

type omfData struct {
	ContainerID string                   `json:"containerid"`
	Values      []map[string]interface{} `json:"values"`
}

// postOMF applies type, container and data messages the way PI Web API maps them to AF and PI:
// types become element templates of the OMF database, numeric container properties become
// points named <container>.<property>, and data values are written to those points.
func (s *PIWebAPI) postOMF(c *fiber.Ctx) error {
	if s.opts.DisableOMF {
		return fiber.ErrNotFound
	}

	action := strings.ToLower(c.Get("action", client.OMFActionCreate))
	if action != client.OMFActionCreate && action != client.OMFActionDelete {
		return fiber.NewError(fiber.StatusBadRequest, "Unsupported OMF action '"+action+"'.")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	switch strings.ToLower(c.Get("messagetype")) {
	case client.OMFMessageType:
		err = s.omfTypeMessages(c.Body(), action)
	case client.OMFMessageContainer:
		err = s.omfContainerMessages(c.Body(), action)
	case client.OMFMessageData:
		err = s.omfDataMessages(c.Body(), action)
	default:
		err = fiber.NewError(fiber.StatusBadRequest, "The messagetype header is missing or invalid.")
	}
	if err != nil {
		return err
	}

	c.Status(fiber.StatusAccepted)
	return c.JSON(client.OMFResponse{OperationID: uuid.NewString()})
}

func badOMF(err error) error {
	return fiber.NewError(fiber.StatusBadRequest, "Invalid OMF message: "+err.Error())
}

func (s *PIWebAPI) omfTemplatePath(typeID string) string {
	db := s.databaseByName(s.opts.OMFDatabase)
	return db.Path + `\ElementTemplates[` + typeID + `]`
}

func (s *PIWebAPI) omfTypeMessages(body []byte, action string) error {
	var types []omfType
	if err := json.Unmarshal(body, &types); err != nil {
		return badOMF(err)
	}
	for _, t := range types {
		path := s.omfTemplatePath(t.ID)
		switch action {
		case client.OMFActionCreate:
			s.omfTypes[t.ID] = t
			tmpl := &fakeTemplate{
				ElementTemplate: client.ElementTemplate{WebID: newWebID(webIDPrefixTemplate), Name: t.ID, Path: path},
				visibleAt:       s.visibleAt(),
			}
			s.templates[tmpl.WebID] = tmpl
		case client.OMFActionDelete:
			delete(s.omfTypes, t.ID)
			for id, tmpl := range s.templates {
				if strings.EqualFold(tmpl.Path, path) {
					delete(s.templates, id)
				}
			}
		}
	}
	return nil
}

func omfPointType(p omfProperty) string {
	if p.Type == "integer" {
		return client.PointTypeInt32
	}
	return client.PointTypeFloat32
}

func (s *PIWebAPI) omfContainerMessages(body []byte, action string) error {
	var containers []omfContainer
	if err := json.Unmarshal(body, &containers); err != nil {
		return badOMF(err)
	}
	for _, ct := range containers {
		t, ok := s.omfTypes[ct.TypeID]
		if !ok {
			return fiber.NewError(fiber.StatusBadRequest, "OMF type '"+ct.TypeID+"' is not defined.")
		}
		for name, prop := range t.Properties {
			if prop.IsIndex || (prop.Type != "number" && prop.Type != "integer") {
				continue
			}
			pointName := ct.ID + "." + name
			switch action {
			case client.OMFActionCreate:
				if s.pointByName(pointName) == nil {
					s.newPoint(client.Point{Name: pointName, PointType: omfPointType(prop)})
				}
			case client.OMFActionDelete:
				if p := s.pointByName(pointName); p != nil {
					delete(s.points, p.WebID)
					delete(s.values, p.WebID)
				}
			}
		}
		if action == client.OMFActionCreate {
			s.omfStreams[ct.ID] = ct.TypeID
		} else {
			delete(s.omfStreams, ct.ID)
		}
	}
	return nil
}

func (s *PIWebAPI) omfDataMessages(body []byte, action string) error {
	var data []omfData
	if err := json.Unmarshal(body, &data); err != nil {
		return badOMF(err)
	}
	for _, d := range data {
		typeID, ok := s.omfStreams[d.ContainerID]
		if !ok {
			return fiber.NewError(fiber.StatusBadRequest, "OMF container '"+d.ContainerID+"' is not defined.")
		}
		index := ""
		for name, prop := range s.omfTypes[typeID].Properties {
			if prop.IsIndex {
				index = name
			}
		}
		for _, values := range d.Values {
			ts, _ := values[index].(string)
			for name, v := range values {
				if name == index {
					continue
				}
				p := s.pointByName(d.ContainerID + "." + name)
				if p == nil {
					continue
				}
				if action == client.OMFActionCreate {
					s.appendValue(p.WebID, client.TimedValue{Timestamp: ts, Value: v})
					continue
				}
				kept := s.values[p.WebID][:0]
				for _, existing := range s.values[p.WebID] {
					if existing.Timestamp != ts {
						kept = append(kept, existing)
					}
				}
				s.values[p.WebID] = kept
			}
		}
	}
	return nil
}
