package fixtures

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/celestiaorg/pitests/config"
	"github.com/celestiaorg/pitests/internal/constants"
	"github.com/celestiaorg/pitests/internal/skip"
	"github.com/celestiaorg/pitests/internal/version"
	"github.com/celestiaorg/pitests/pkg/piwebapi/client"
)

var _ skip.Environment = (*Environment)(nil)

// Environment reports product versions of the deployment under test through PI Web API
// and the PI Vision utility endpoint.
type Environment struct {
	WebAPI      client.Client
	AFServer    string
	DataArchive string
	Vision      *VisionFixture
}

// NewEnvironment builds an Environment from whatever the settings configure. Products whose
// host is not configured report an error when queried.
func NewEnvironment(settings *config.Settings, timeout time.Duration) (*Environment, error) {
	env := &Environment{}

	if settings.PIWebAPI() != "" {
		api, _, err := NewPIWebAPIClient(settings, timeout)
		if err != nil {
			return nil, err
		}
		env.WebAPI = api
	}
	env.AFServer, _ = settings.Value(constants.SettingAFServer, false)
	env.DataArchive, _ = settings.Value(constants.SettingPIDataArchive, false)

	if settings.PIVisionServer() != "" {
		vision, err := NewVisionFixture(settings, timeout)
		if err != nil {
			return nil, err
		}
		env.Vision = vision
	}
	return env, nil
}

var errNoWebAPI = errors.New("the PIWebAPI setting is required to query product versions")

// ProductVersion implements skip.Environment
func (e *Environment) ProductVersion(ctx context.Context, product skip.Product) (string, error) {
	switch product {
	case skip.ProductVision:
		if e.Vision == nil {
			return "", errors.New("the PIVisionServer setting is required to query the PI Vision version")
		}
		return e.Vision.ProductVersion(ctx)
	case skip.ProductWebAPI, skip.ProductAFServer, skip.ProductDataArchive, skip.ProductAnalysis:
	default:
		return "", skip.ErrNoVersionSource
	}

	if e.WebAPI == nil {
		return "", errNoWebAPI
	}

	switch product {
	case skip.ProductWebAPI:
		info, err := e.WebAPI.System(ctx)
		if err != nil {
			return "", err
		}
		return info.ProductVersion, nil
	case skip.ProductAFServer:
		server, err := e.WebAPI.GetAssetServerByPath(ctx, `\\`+e.AFServer)
		if err != nil {
			return "", err
		}
		return server.ServerVersion, nil
	case skip.ProductDataArchive:
		server, err := e.WebAPI.GetDataServerByPath(ctx, client.DataServerPath(e.DataArchive))
		if err != nil {
			return "", err
		}
		return server.ServerVersion, nil
	default:
		return e.analysisVersion(ctx)
	}
}

// analysisPlugIn is the analysis rule plug-in whose version identifies PI Analysis Service
const analysisPlugIn = "PerformanceEquation"

// analysisVersion is the version of the PerformanceEquation analysis rule plug-in, or the
// highest plug-in version when that plug-in is not registered
func (e *Environment) analysisVersion(ctx context.Context) (string, error) {
	server, err := e.WebAPI.GetAssetServerByPath(ctx, `\\`+e.AFServer)
	if err != nil {
		return "", err
	}
	plugins, err := e.WebAPI.ListAnalysisRulePlugIns(ctx, server.WebID)
	if err != nil {
		return "", err
	}

	var best version.Version
	for _, p := range plugins {
		v, err := version.Parse(p.Version)
		if err != nil {
			continue
		}
		if strings.EqualFold(p.Name, analysisPlugIn) {
			return v.String(), nil
		}
		if best.IsZero() || best.Less(v) {
			best = v
		}
	}
	if best.IsZero() {
		return "", fmt.Errorf("no analysis rule plug-ins are registered on AF server %s", e.AFServer)
	}
	return best.String(), nil
}
