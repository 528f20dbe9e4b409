package fixtures

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/celestiaorg/pitests/config"
	"github.com/celestiaorg/pitests/internal/constants"
	"github.com/celestiaorg/pitests/internal/logger"
	"github.com/celestiaorg/pitests/internal/skip"
	"github.com/celestiaorg/pitests/pkg/piwebapi/client"
)

// Condition names a PI Web API precondition
type Condition string

// PI Web API preconditions
const (
	// Authenticate requires anonymous authentication to be disabled
	Authenticate Condition = "Authenticate"
	// IndexedSearch requires the Search endpoint
	IndexedSearch Condition = "IndexedSearch"
	// Omf requires the OMF endpoint
	Omf Condition = "Omf"
)

// Options configures fixture construction
type Options struct {
	// Timeout is the per-request timeout of the PI Web API client
	Timeout time.Duration
	// Evaluator memoizes preconditions. Defaults to a process-wide evaluator over the settings.
	Evaluator *skip.Evaluator
}

// Option modifies fixture options
type Option func(*Options)

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(o *Options) { o.Timeout = d }
}

// WithEvaluator sets the evaluator used to memoize preconditions
func WithEvaluator(e *skip.Evaluator) Option {
	return func(o *Options) { o.Evaluator = e }
}

// ConfigurationElementPath returns the path of the System Configuration element of a PI Web API instance
func ConfigurationElementPath(afServer, instance string) string {
	return `\\` + afServer + `\Configuration\OSIsoft\PI Web API\` + instance + `\System Configuration`
}

// PIWebAPIFixture is the shared context of the PI Web API tests
type PIWebAPIFixture struct {
	Client   client.Client
	BaseURL  string
	Settings *config.Settings

	AF *AFFixture
	PI *PIFixture

	// ConfigElement is the System Configuration element, nil when the instance has none
	ConfigElement           *client.Element
	DisableWrites           bool
	AuthenticationMethods   []string
	AnonymousAuthentication bool

	evaluator *skip.Evaluator
}

// NewPIWebAPIFixture connects to the PI Web API named by the settings and reads its
// configuration element.
func NewPIWebAPIFixture(ctx context.Context, settings *config.Settings, opts ...Option) (*PIWebAPIFixture, error) {
	o := &Options{Timeout: client.DefaultTimeout}
	for _, opt := range opts {
		opt(o)
	}

	api, baseURL, err := NewPIWebAPIClient(settings, o.Timeout)
	if err != nil {
		return nil, err
	}

	evaluator := o.Evaluator
	if evaluator == nil {
		evaluator = skip.NewEvaluator(settings.Store(), nil, nil)
	}

	f := &PIWebAPIFixture{
		Client:    api,
		BaseURL:   baseURL,
		Settings:  settings,
		evaluator: evaluator,
	}

	if f.AF, err = NewAFFixture(ctx, api, settings); err != nil {
		return nil, err
	}
	if f.PI, err = NewPIFixture(ctx, api, settings); err != nil {
		return nil, err
	}
	if err := f.loadConfiguration(ctx); err != nil {
		return nil, err
	}

	logger.InfoWithFields("PI Web API fixture ready", map[string]interface{}{
		"base_url":       baseURL,
		"config_element": f.ConfigElement != nil,
		"disable_writes": f.DisableWrites,
		"anonymous":      f.AnonymousAuthentication,
	})
	return f, nil
}

// NewPIWebAPIClient builds a client from the PIWebAPI, credential and certificate settings
func NewPIWebAPIClient(settings *config.Settings, timeout time.Duration) (client.Client, string, error) {
	host := settings.PIWebAPI()
	if host == "" {
		return nil, "", &config.MissingSettingError{Name: constants.SettingPIWebAPI}
	}
	user, err := settings.PIWebAPIUser()
	if err != nil {
		return nil, "", err
	}
	password, err := settings.PIWebAPIPassword()
	if err != nil {
		return nil, "", err
	}
	insecure, err := settings.SkipCertificateValidation()
	if err != nil {
		return nil, "", err
	}

	baseURL := client.BaseURLFor(host)
	api, err := client.NewClient(&client.Options{
		BaseURL:                   baseURL,
		Timeout:                   timeout,
		Username:                  user,
		Password:                  password,
		SkipCertificateValidation: insecure,
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to create PI Web API client: %w", err)
	}
	return api, baseURL, nil
}

// ConfigurationInstance returns the configuration element name: the explicit setting, or the
// first label of the PI Web API host name.
func (f *PIWebAPIFixture) ConfigurationInstance() string {
	if instance := f.Settings.PIWebAPIConfigurationInstance(); instance != "" {
		return instance
	}
	host := f.Settings.PIWebAPI()
	if u, err := url.Parse(f.BaseURL); err == nil && u.Hostname() != "" {
		host = u.Hostname()
	}
	return strings.Split(host, ".")[0]
}

func (f *PIWebAPIFixture) loadConfiguration(ctx context.Context) error {
	path := ConfigurationElementPath(f.AF.ServerName, f.ConfigurationInstance())
	elem, err := f.Client.GetElementByPath(ctx, path)
	if client.IsNotFound(err) {
		logger.Debugf("PI Web API configuration element %s not found", path)
		return nil
	}
	if err != nil {
		return err
	}
	f.ConfigElement = &elem

	attrs, err := f.Client.ListAttributes(ctx, elem.WebID)
	if err != nil {
		return err
	}
	for _, attr := range attrs {
		switch attr.Name {
		case "DisableWrites":
			v, err := f.Client.GetValue(ctx, attr.WebID)
			if err != nil {
				return err
			}
			f.DisableWrites, _ = v.Value.(bool)
		case "AuthenticationMethods":
			v, err := f.Client.GetValue(ctx, attr.WebID)
			if err != nil {
				return err
			}
			f.AuthenticationMethods = stringSlice(v.Value)
		}
	}

	if len(f.AuthenticationMethods) == 0 {
		return fmt.Errorf("PI Web API Authentication Methods are not specified in the Configuration database")
	}
	f.AnonymousAuthentication = strings.EqualFold(f.AuthenticationMethods[0], "Anonymous")
	return nil
}

func stringSlice(v interface{}) []string {
	items, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// SkipReason decides a PI Web API precondition once per evaluator
func (f *PIWebAPIFixture) SkipReason(ctx context.Context, cond Condition) skip.Decision {
	return f.evaluator.Check(ctx, "piwebapi:"+string(cond), func(ctx context.Context) skip.Decision {
		switch cond {
		case Authenticate:
			if f.AnonymousAuthentication {
				return skip.Skip("Test skipped because Anonymous Authentication is allowed.")
			}
			return skip.Run()
		case IndexedSearch:
			return f.homeLink(ctx, "Search")
		case Omf:
			return f.homeLink(ctx, "Omf")
		default:
			return skip.Skip("Unknown PI Web API condition %q.", cond).Strict()
		}
	})
}

func (f *PIWebAPIFixture) homeLink(ctx context.Context, rel string) skip.Decision {
	home, err := f.Client.Home(ctx)
	if err != nil {
		return skip.Skip("Test skipped because PI Web API could not be loaded: [%s].", err.Error())
	}
	if !home.Links.Has(rel) {
		endpoint := rel
		if rel == "Omf" {
			endpoint = "OMF"
		}
		return skip.Skip("Test skipped because the %s endpoint was not found at [%s].", endpoint, f.BaseURL)
	}
	return skip.Run()
}

// Close removes every entity the AF and PI fixtures created
func (f *PIWebAPIFixture) Close(ctx context.Context) {
	if f.AF != nil {
		f.AF.Close(ctx)
	}
	if f.PI != nil {
		f.PI.Close(ctx)
	}
}
