package fixtures

import (
	"context"
	"time"

	"github.com/celestiaorg/pitests/config"
	"github.com/celestiaorg/pitests/internal/constants"
	"github.com/celestiaorg/pitests/pkg/piwebapi/client"
)

// VisionFixture reads product information from the configured PI Vision server
type VisionFixture struct {
	Client *client.VisionClient
	URL    string
}

// NewVisionFixture creates a fixture for the PIVisionServer setting
func NewVisionFixture(settings *config.Settings, timeout time.Duration) (*VisionFixture, error) {
	server := settings.PIVisionServer()
	if server == "" {
		return nil, &config.MissingSettingError{Name: constants.SettingPIVisionServer}
	}
	insecure, err := settings.SkipCertificateValidation()
	if err != nil {
		return nil, err
	}

	c, err := client.NewVisionClient(&client.Options{
		BaseURL:                   server,
		Timeout:                   timeout,
		SkipCertificateValidation: insecure,
	})
	if err != nil {
		return nil, err
	}
	return &VisionFixture{Client: c, URL: server}, nil
}

// ProductVersion returns the installed PI Vision version
func (f *VisionFixture) ProductVersion(ctx context.Context) (string, error) {
	return f.Client.ProductVersion(ctx)
}
