package fixtures

import (
	"context"
	"fmt"
	"time"

	"github.com/celestiaorg/pitests/config"
	"github.com/celestiaorg/pitests/internal/logger"
	"github.com/celestiaorg/pitests/pkg/piwebapi/client"
)

// PIFixture works against the Data Archive named by the settings
type PIFixture struct {
	Client     client.Client
	ServerName string
	Server     client.DataServer

	cleanup *Cleanup
}

// NewPIFixture resolves the configured Data Archive
func NewPIFixture(ctx context.Context, api client.Client, settings *config.Settings) (*PIFixture, error) {
	serverName, err := settings.PIDataArchive()
	if err != nil {
		return nil, err
	}

	server, err := api.GetDataServerByPath(ctx, client.DataServerPath(serverName))
	if err != nil {
		return nil, fmt.Errorf("PI Server [%s] could not be found: %w", serverName, err)
	}

	return &PIFixture{
		Client:     api,
		ServerName: serverName,
		Server:     server,
		cleanup:    NewCleanup(),
	}, nil
}

// PointPath returns the path of a point of the Data Archive
func (f *PIFixture) PointPath(name string) string {
	return `\\` + f.ServerName + `\` + name
}

// CreatePoint creates a uniquely named classic point that is removed on Close
func (f *PIFixture) CreatePoint(ctx context.Context, prefix, pointType string) (client.Point, error) {
	point := client.Point{
		Name:       UniqueName(prefix),
		PointClass: client.PointClassClassic,
		PointType:  pointType,
	}
	webID, err := f.Client.CreatePoint(ctx, f.Server.WebID, point)
	if err != nil {
		return client.Point{}, err
	}
	f.cleanup.Push("delete point "+point.Name, ignoreNotFound(func(ctx context.Context) error {
		return f.Client.DeletePoint(ctx, webID)
	}))

	logger.Debugf("created PI Point %s", f.PointPath(point.Name))
	point.WebID = webID
	point.Path = f.PointPath(point.Name)
	return point, nil
}

// CreatePoints creates count uniquely named points sharing a prefix
func (f *PIFixture) CreatePoints(ctx context.Context, prefix, pointType string, count int) ([]client.Point, error) {
	points := make([]client.Point, 0, count)
	for i := 0; i < count; i++ {
		p, err := f.CreatePoint(ctx, prefix, pointType)
		if err != nil {
			return points, err
		}
		points = append(points, p)
	}
	return points, nil
}

// FindPoint looks up a point by name
func (f *PIFixture) FindPoint(ctx context.Context, name string) (client.Point, error) {
	return f.Client.GetPointByPath(ctx, f.PointPath(name))
}

// FindPoints lists the points matching a name filter
func (f *PIFixture) FindPoints(ctx context.Context, nameFilter string) ([]client.Point, error) {
	return f.Client.FindPoints(ctx, f.Server.WebID, nameFilter)
}

// RenamePoint renames a point
func (f *PIFixture) RenamePoint(ctx context.Context, webID, newName string) error {
	return f.Client.UpdatePoint(ctx, webID, client.Point{Name: newName})
}

// WriteValue writes a value at a timestamp
func (f *PIFixture) WriteValue(ctx context.Context, webID string, value interface{}, at time.Time) error {
	return f.Client.UpdateValue(ctx, webID, client.TimedValue{
		Timestamp: at.UTC().Format(time.RFC3339Nano),
		Value:     value,
	})
}

// ReadValue reads the current value of a point
func (f *PIFixture) ReadValue(ctx context.Context, webID string) (client.TimedValue, error) {
	return f.Client.GetValue(ctx, webID)
}

// RemovePointIfExists deletes a point by name. A missing point is not an error.
func (f *PIFixture) RemovePointIfExists(ctx context.Context, name string) error {
	point, err := f.FindPoint(ctx, name)
	if client.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return err
	}
	return ignoreNotFound(func(ctx context.Context) error {
		return f.Client.DeletePoint(ctx, point.WebID)
	})(ctx)
}

// Defer registers an extra teardown action run on Close
func (f *PIFixture) Defer(name string, fn func(ctx context.Context) error) {
	f.cleanup.Push(name, fn)
}

// Close removes every point created by the fixture
func (f *PIFixture) Close(ctx context.Context) {
	f.cleanup.Run(ctx)
}
