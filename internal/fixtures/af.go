package fixtures

import (
	"context"
	"fmt"

	"github.com/celestiaorg/pitests/config"
	"github.com/celestiaorg/pitests/internal/logger"
	"github.com/celestiaorg/pitests/pkg/piwebapi/client"
)

// AFFixture works against the AF server and database named by the settings
type AFFixture struct {
	Client       client.Client
	ServerName   string
	DatabaseName string
	Server       client.AssetServer
	Database     client.AssetDatabase

	cleanup *Cleanup
}

// NewAFFixture resolves the configured AF server and database
func NewAFFixture(ctx context.Context, api client.Client, settings *config.Settings) (*AFFixture, error) {
	serverName, err := settings.AFServer()
	if err != nil {
		return nil, err
	}
	databaseName, err := settings.AFDatabase()
	if err != nil {
		return nil, err
	}

	server, err := api.GetAssetServerByPath(ctx, `\\`+serverName)
	if err != nil {
		return nil, fmt.Errorf("AF Server [%s] could not be found: %w", serverName, err)
	}
	database, err := api.GetAssetDatabaseByPath(ctx, server.Path+`\`+databaseName)
	if err != nil {
		return nil, fmt.Errorf("AF Database [%s] could not be found on [%s]: %w", databaseName, serverName, err)
	}

	return &AFFixture{
		Client:       api,
		ServerName:   serverName,
		DatabaseName: databaseName,
		Server:       server,
		Database:     database,
		cleanup:      NewCleanup(),
	}, nil
}

// ElementPath returns the path of a root element of the test database
func (f *AFFixture) ElementPath(name string) string {
	return f.Database.Path + `\` + name
}

// EventFramePath returns the path of an event frame of the test database
func (f *AFFixture) EventFramePath(name string) string {
	return f.Database.Path + `\EventFrames[` + name + `]`
}

// CreateElement creates a uniquely named root element that is removed on Close
func (f *AFFixture) CreateElement(ctx context.Context, prefix, description string) (client.Element, error) {
	name := UniqueName(prefix)
	webID, err := f.Client.CreateElement(ctx, f.Database.WebID, client.Element{Name: name, Description: description})
	if err != nil {
		return client.Element{}, err
	}
	f.cleanup.Push("delete element "+name, ignoreNotFound(func(ctx context.Context) error {
		return f.Client.DeleteElement(ctx, webID)
	}))

	logger.Debugf("created AF element %s", f.ElementPath(name))
	return client.Element{WebID: webID, Name: name, Description: description, Path: f.ElementPath(name)}, nil
}

// CreateAttribute adds an attribute to an element created by this fixture
func (f *AFFixture) CreateAttribute(ctx context.Context, element client.Element, name, valueType string) (client.Attribute, error) {
	webID, err := f.Client.CreateAttribute(ctx, element.WebID, client.Attribute{Name: name, Type: valueType})
	if err != nil {
		return client.Attribute{}, err
	}
	return client.Attribute{WebID: webID, Name: name, Type: valueType, Path: element.Path + "|" + name}, nil
}

// CreateEventFrame creates a uniquely named event frame starting now that is removed on Close
func (f *AFFixture) CreateEventFrame(ctx context.Context, prefix string) (client.EventFrame, error) {
	name := UniqueName(prefix)
	frame := client.EventFrame{Name: name, StartTime: "*"}
	webID, err := f.Client.CreateEventFrame(ctx, f.Database.WebID, frame)
	if err != nil {
		return client.EventFrame{}, err
	}
	f.cleanup.Push("delete event frame "+name, ignoreNotFound(func(ctx context.Context) error {
		return f.Client.DeleteEventFrame(ctx, webID)
	}))

	frame.WebID = webID
	frame.Path = f.EventFramePath(name)
	return frame, nil
}

// FindElement looks up a root element of the test database by name
func (f *AFFixture) FindElement(ctx context.Context, name string) (client.Element, error) {
	return f.Client.GetElementByPath(ctx, f.ElementPath(name))
}

// RenameElement renames an element
func (f *AFFixture) RenameElement(ctx context.Context, webID, newName string) error {
	return f.Client.UpdateElement(ctx, webID, client.Element{Name: newName})
}

// RemoveElementIfExists deletes a root element by name. A missing element is not an error.
func (f *AFFixture) RemoveElementIfExists(ctx context.Context, name string) error {
	elem, err := f.FindElement(ctx, name)
	if client.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return err
	}
	return ignoreNotFound(func(ctx context.Context) error {
		return f.Client.DeleteElement(ctx, elem.WebID)
	})(ctx)
}

// RemoveEventFrameIfExists deletes an event frame by name. A missing event frame is not an error.
func (f *AFFixture) RemoveEventFrameIfExists(ctx context.Context, name string) error {
	frame, err := f.Client.GetEventFrameByPath(ctx, f.EventFramePath(name))
	if client.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return err
	}
	return ignoreNotFound(func(ctx context.Context) error {
		return f.Client.DeleteEventFrame(ctx, frame.WebID)
	})(ctx)
}

// Defer registers an extra teardown action run on Close
func (f *AFFixture) Defer(name string, fn func(ctx context.Context) error) {
	f.cleanup.Push(name, fn)
}

// Close removes every entity created by the fixture
func (f *AFFixture) Close(ctx context.Context) {
	f.cleanup.Run(ctx)
}

func ignoreNotFound(fn func(ctx context.Context) error) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if err := fn(ctx); err != nil && !client.IsNotFound(err) {
			return err
		}
		return nil
	}
}
