// Package checks runs the preliminary checks: a one-shot report on whether the PI System
// under test is configured and reachable well enough for the acceptance tests to run.
package checks

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/celestiaorg/pitests/config"
	"github.com/celestiaorg/pitests/internal/constants"
	"github.com/celestiaorg/pitests/internal/fixtures"
	"github.com/celestiaorg/pitests/internal/skip"
	"github.com/celestiaorg/pitests/pkg/piwebapi/client"
)

// Func performs one check and returns a human readable summary of what it found
type Func func(ctx context.Context) (string, error)

// Check is a named preliminary check
type Check struct {
	Name string
	Run  Func
}

// Resolver looks up the addresses of a host
type Resolver func(ctx context.Context, host string) ([]string, error)

type skippedError struct {
	reason string
}

func (e *skippedError) Error() string {
	return e.reason
}

// Skipped returns an error that marks a check as skipped rather than failed
func Skipped(format string, args ...interface{}) error {
	return &skippedError{reason: fmt.Sprintf(format, args...)}
}

// IsSkipped reports whether err marks a skipped check
func IsSkipped(err error) bool {
	var s *skippedError
	return errors.As(err, &s)
}

// target is the state shared by the checks of one run. The PI Web API client and the
// fixtures are built on first use.
type target struct {
	settings  *config.Settings
	timeout   time.Duration
	resolve   Resolver
	evaluator *skip.Evaluator

	api    client.Client
	apiErr error
	built  bool

	af *fixtures.AFFixture
}

func (t *target) client() (client.Client, error) {
	if !t.built {
		t.built = true
		t.api, _, t.apiErr = fixtures.NewPIWebAPIClient(t.settings, t.timeout)
	}
	return t.api, t.apiErr
}

// afFixture resolves the AF server and database once per run. Failures are not kept, so a
// check that timed out does not fail the checks after it.
func (t *target) afFixture(ctx context.Context) (*fixtures.AFFixture, error) {
	if t.af != nil {
		return t.af, nil
	}
	api, err := t.client()
	if err != nil {
		return nil, err
	}
	af, err := fixtures.NewAFFixture(ctx, api, t.settings)
	if err != nil {
		return nil, err
	}
	t.af = af
	return af, nil
}

func (t *target) checks() []Check {
	list := []Check{
		{Name: "settings", Run: t.checkSettings},
	}
	for _, setting := range []string{
		constants.SettingPIDataArchive,
		constants.SettingAFServer,
		constants.SettingPIAnalysisService,
		constants.SettingPIWebAPI,
		constants.SettingPIVisionServer,
	} {
		setting := setting
		list = append(list, Check{
			Name: "connection:" + setting,
			Run:  func(ctx context.Context) (string, error) { return t.checkConnection(ctx, setting) },
		})
	}
	list = append(list,
		Check{Name: "piwebapi-home", Run: t.checkHome},
		Check{Name: "piwebapi-configuration", Run: t.checkConfiguration},
		Check{Name: "af-server", Run: t.checkAFServer},
		Check{Name: "data-archive", Run: t.checkDataArchive},
		Check{Name: "analysis-service", Run: t.checkAnalysis},
		Check{Name: "vision-home", Run: t.checkVision},
	)
	for _, th := range t.evaluator.Thresholds() {
		if !th.Current {
			continue
		}
		th := th
		list = append(list, Check{
			Name: "latest-patch:" + string(th.Product),
			Run:  func(ctx context.Context) (string, error) { return t.checkLatestPatch(ctx, th) },
		})
	}
	return list
}

func (t *target) checkSettings(context.Context) (string, error) {
	var missing []string
	for _, name := range []string{
		constants.SettingPIWebAPI,
		constants.SettingAFServer,
		constants.SettingAFDatabase,
		constants.SettingPIDataArchive,
	} {
		if v, _ := t.settings.Value(name, false); strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return "", fmt.Errorf("required settings are missing or empty: %s", strings.Join(missing, ", "))
	}
	return "all required settings are present", nil
}

func (t *target) checkConnection(ctx context.Context, setting string) (string, error) {
	value, _ := t.settings.Value(setting, false)
	machine := hostOf(value)
	if machine == "" {
		return "", Skipped("[%s] setting value is not set. Check if [%s] machine is connectible was skipped.", setting, setting)
	}
	addrs, err := t.resolve(ctx, machine)
	if err != nil {
		return "", fmt.Errorf("can't resolve [%s]. Check DNS and firewall settings for [%s] running [%s]: %w", machine, machine, setting, err)
	}
	return fmt.Sprintf("[%s] resolves to %s", machine, strings.Join(addrs, ", ")), nil
}

func (t *target) checkHome(ctx context.Context) (string, error) {
	if t.settings.PIWebAPI() == "" {
		return "", Skipped("'PIWebAPI' setting value is not set. Check if home page loads was skipped.")
	}
	api, err := t.client()
	if err != nil {
		return "", err
	}
	home, err := api.Home(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load PI Web API home page: %w", err)
	}
	return fmt.Sprintf("loaded PI Web API home page with %d links", len(home.Links)), nil
}

func (t *target) checkConfiguration(ctx context.Context) (string, error) {
	if t.settings.PIWebAPI() == "" {
		return "", Skipped("'PIWebAPI' setting value is not set. Configuration check was skipped.")
	}
	f, err := fixtures.NewPIWebAPIFixture(ctx, t.settings, fixtures.WithTimeout(t.timeout), fixtures.WithEvaluator(t.evaluator))
	if err != nil {
		return "", err
	}
	if f.ConfigElement == nil {
		return "no System Configuration element, PI Web API runs with its defaults", nil
	}
	if f.DisableWrites {
		return "", fmt.Errorf("PI Web API at [%s] has DisableWrites set, write tests cannot run", f.BaseURL)
	}
	return fmt.Sprintf("writes enabled, authentication methods: %s", strings.Join(f.AuthenticationMethods, ", ")), nil
}

func (t *target) checkAFServer(ctx context.Context) (string, error) {
	af, err := t.afFixture(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("AF Server [%s] version %s, database [%s] found", af.ServerName, af.Server.ServerVersion, af.DatabaseName), nil
}

func (t *target) checkDataArchive(ctx context.Context) (string, error) {
	api, err := t.client()
	if err != nil {
		return "", err
	}
	pi, err := fixtures.NewPIFixture(ctx, api, t.settings)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("PI Data Archive [%s] version %s found", pi.ServerName, pi.Server.ServerVersion), nil
}

func (t *target) checkAnalysis(ctx context.Context) (string, error) {
	service, _ := t.settings.Value(constants.SettingPIAnalysisService, false)
	if service == "" {
		return "", Skipped("'PIAnalysisService' setting value is not set. Check if the analysis service is running was skipped.")
	}
	af, err := t.afFixture(ctx)
	if err != nil {
		return "", err
	}
	plugins, err := af.Client.ListAnalysisRulePlugIns(ctx, af.Server.WebID)
	if err != nil {
		return "", err
	}
	if len(plugins) == 0 {
		return "", fmt.Errorf("AF Server [%s] reports no analysis rule plug-ins", af.ServerName)
	}
	return fmt.Sprintf("%d analysis rule plug-ins registered", len(plugins)), nil
}

func (t *target) checkVision(ctx context.Context) (string, error) {
	if t.settings.PIVisionServer() == "" {
		return "", Skipped("'PIVisionServer' setting value is not set. Check if PI Vision loads was skipped.")
	}
	vision, err := fixtures.NewVisionFixture(t.settings, t.timeout)
	if err != nil {
		return "", err
	}
	v, err := vision.ProductVersion(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load PI Vision at [%s]: %w", vision.URL, err)
	}
	return fmt.Sprintf("PI Vision version %s", v), nil
}

func (t *target) checkLatestPatch(ctx context.Context, th skip.Threshold) (string, error) {
	kind, err := th.SettingKind()
	if err != nil {
		return "", err
	}
	if d := t.evaluator.Setting(th.Setting, kind); d.Skipped() {
		return "", Skipped("%s", d.Reason)
	}
	d := t.evaluator.Feature(ctx, th.Feature, false)
	switch {
	case !d.Skipped():
		return fmt.Sprintf("%s or later is installed", th.Label), nil
	case strings.Contains(d.Reason, skip.ErrNoVersionSource.Error()):
		return "", Skipped("%s", d.Reason)
	default:
		return "", errors.New(d.Reason)
	}
}

// hostOf extracts the machine name of a setting that holds a host name or a URL
func hostOf(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if strings.Contains(value, "://") {
		if u, err := url.Parse(value); err == nil {
			return u.Hostname()
		}
	}
	value = strings.TrimPrefix(value, `\\`)
	if i := strings.IndexAny(value, `/\`); i >= 0 {
		value = value[:i]
	}
	if host, _, err := net.SplitHostPort(value); err == nil {
		return host
	}
	return value
}
