package checks

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"github.com/celestiaorg/pitests/config"
	"github.com/celestiaorg/pitests/internal/db"
	"github.com/celestiaorg/pitests/internal/db/models"
	"github.com/celestiaorg/pitests/internal/db/repos"
	"github.com/celestiaorg/pitests/test/mocks"
)

func stubResolver(_ context.Context, host string) ([]string, error) {
	if host == "unreachable" {
		return nil, errors.New("no such host")
	}
	return []string{"127.0.0.1"}, nil
}

func resultsByName(run *models.CheckRun) map[string]models.CheckResult {
	out := make(map[string]models.CheckResult, len(run.Results))
	for _, r := range run.Results {
		out[r.Name] = r
	}
	return out
}

func newMockRunner(t *testing.T, opts *mocks.PIWebAPIOptions, extra ...Option) (*Runner, *mocks.PIWebAPI) {
	t.Helper()
	server := mocks.NewPIWebAPI(opts)
	t.Cleanup(server.Close)

	settings := config.NewSettings(server.Settings())
	options := append([]Option{WithTimeout(5 * time.Second), WithResolver(stubResolver)}, extra...)
	return NewRunner(settings, options...), server
}

func TestRunner_HealthyDeployment(t *testing.T) {
	runner, _ := newMockRunner(t, nil)

	run, err := runner.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", run.Host)
	assert.True(t, run.Succeeded(), "%+v", run.Results)
	assert.Equal(t, len(runner.Checks()), len(run.Results))
	assert.False(t, run.FinishedAt.Before(run.StartedAt))

	results := resultsByName(run)
	for _, name := range []string{
		"settings",
		"connection:PIWebAPI",
		"connection:AFServer",
		"piwebapi-home",
		"piwebapi-configuration",
		"af-server",
		"data-archive",
		"analysis-service",
		"vision-home",
		"latest-patch:web-api",
		"latest-patch:af-server",
		"latest-patch:data-archive",
		"latest-patch:analysis",
		"latest-patch:vision",
	} {
		assert.Equal(t, models.OutcomePassed, results[name].Outcome, "%s: %s", name, results[name].Message)
	}
	assert.Contains(t, results["af-server"].Message, mocks.DefaultAFServerVersion)
	assert.Contains(t, results["vision-home"].Message, mocks.DefaultVisionVersion)
	assert.Contains(t, results["piwebapi-configuration"].Message, "Basic, Kerberos")

	// products reachable only through Windows components have no version source
	assert.Equal(t, models.OutcomeSkipped, results["latest-patch:rtqp"].Outcome)
	assert.Equal(t, models.OutcomeSkipped, results["latest-patch:notifications"].Outcome)
	assert.Equal(t, models.OutcomeSkipped, results["latest-patch:manual-logger-web"].Outcome)
}

func TestRunner_OutdatedAndReadOnly(t *testing.T) {
	opts := mocks.DefaultPIWebAPIOptions()
	opts.WebAPIVersion = "1.12.0.6145"
	opts.DisableWrites = true
	runner, _ := newMockRunner(t, opts)

	run, err := runner.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, run.Failed)

	results := resultsByName(run)
	assert.Equal(t, models.OutcomeFailed, results["latest-patch:web-api"].Outcome)
	assert.Contains(t, results["latest-patch:web-api"].Message, "PI Web API 2019 SP1")
	assert.Contains(t, results["latest-patch:web-api"].Message, "1.12.0.6145")
	assert.Equal(t, models.OutcomeFailed, results["piwebapi-configuration"].Outcome)
	assert.Contains(t, results["piwebapi-configuration"].Message, "DisableWrites")
}

func TestRunner_NoVision(t *testing.T) {
	opts := mocks.DefaultPIWebAPIOptions()
	opts.VisionVersion = ""
	runner, _ := newMockRunner(t, opts)

	run, err := runner.Run(context.Background())
	require.NoError(t, err)

	results := resultsByName(run)
	assert.Equal(t, models.OutcomeSkipped, results["vision-home"].Outcome)
	assert.Equal(t, models.OutcomeSkipped, results["connection:PIVisionServer"].Outcome)
	assert.Equal(t, models.OutcomeSkipped, results["latest-patch:vision"].Outcome)
	assert.Contains(t, results["latest-patch:vision"].Message, "'PIVisionServer'")
}

func TestRunner_EmptySettings(t *testing.T) {
	runner := NewRunner(config.NewSettings(config.MapStore{}), WithResolver(stubResolver), WithTimeout(time.Second))

	run, err := runner.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, UnconfiguredHost, run.Host)
	assert.False(t, run.Succeeded())

	results := resultsByName(run)
	assert.Equal(t, models.OutcomeFailed, results["settings"].Outcome)
	assert.Contains(t, results["settings"].Message, "PIWebAPI, AFServer, AFDatabase, PIDataArchive")
	assert.Equal(t, models.OutcomeSkipped, results["connection:AFServer"].Outcome)
	assert.Equal(t, models.OutcomeSkipped, results["piwebapi-home"].Outcome)
	assert.Equal(t, models.OutcomeFailed, results["af-server"].Outcome)
	assert.Equal(t, models.OutcomeSkipped, results["latest-patch:web-api"].Outcome)
}

func TestCheckConnection(t *testing.T) {
	store := config.MapStore{"AFServer": "unreachable", "PIWebAPI": "https://piwebapi.lab/piwebapi"}
	runner := NewRunner(config.NewSettings(store), WithResolver(stubResolver))

	_, err := runner.target.checkConnection(context.Background(), "AFServer")
	assert.ErrorContains(t, err, "can't resolve [unreachable]")
	assert.False(t, IsSkipped(err))

	msg, err := runner.target.checkConnection(context.Background(), "PIWebAPI")
	require.NoError(t, err)
	assert.Equal(t, "[piwebapi.lab] resolves to 127.0.0.1", msg)

	_, err = runner.target.checkConnection(context.Background(), "PIVisionServer")
	assert.True(t, IsSkipped(err))
}

type fakeRecorder struct {
	runs []*models.CheckRun
	err  error
}

func (f *fakeRecorder) Create(_ context.Context, run *models.CheckRun) error {
	if f.err != nil {
		return f.err
	}
	f.runs = append(f.runs, run)
	return nil
}

func TestRunner_CustomChecksAndRecorder(t *testing.T) {
	rec := &fakeRecorder{}
	runner := NewRunner(config.NewSettings(config.MapStore{"PIWebAPI": "https://piwebapi.lab/piwebapi"}),
		WithRecorder(rec),
		WithChecks(
			Check{Name: "ok", Run: func(context.Context) (string, error) { return "fine", nil }},
			Check{Name: "skip", Run: func(context.Context) (string, error) { return "", Skipped("not configured") }},
			Check{Name: "fail", Run: func(context.Context) (string, error) { return "", errors.New("broken") }},
			Check{Name: "panic", Run: func(context.Context) (string, error) { panic("nil fixture") }},
			Check{Name: "deadline", Run: func(ctx context.Context) (string, error) {
				_, ok := ctx.Deadline()
				if !ok {
					return "", errors.New("no deadline")
				}
				return "bounded", nil
			}},
		))

	run, err := runner.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, rec.runs, 1)
	assert.Same(t, run, rec.runs[0])
	assert.Equal(t, "piwebapi.lab", run.Host)
	assert.Equal(t, 2, run.Passed)
	assert.Equal(t, 2, run.Failed)
	assert.Equal(t, 1, run.Skipped)

	results := resultsByName(run)
	assert.Equal(t, "fine", results["ok"].Message)
	assert.Equal(t, "not configured", results["skip"].Message)
	assert.Contains(t, results["panic"].Message, "nil fixture")

	rec.err = errors.New("disk full")
	run, err = runner.Run(context.Background())
	assert.ErrorContains(t, err, "failed to record check run")
	assert.NotNil(t, run)
}

func TestRunner_RecordsToDatabase(t *testing.T) {
	database, err := db.New(db.Options{
		Driver:   db.DriverSQLite,
		DBName:   filepath.Join(t.TempDir(), "history.db"),
		LogLevel: logger.Silent,
	})
	require.NoError(t, err)
	defer func() { _ = db.Close(database) }()

	repo := repos.NewCheckRunRepository(database)
	runner, _ := newMockRunner(t, nil, WithRecorder(repo))

	run, err := runner.Run(context.Background())
	require.NoError(t, err)

	stored, err := repo.Latest(context.Background(), run.Host)
	require.NoError(t, err)
	assert.Equal(t, run.ID, stored.ID)
	assert.Len(t, stored.Results, len(run.Results))
	assert.Equal(t, run.Passed, stored.Passed)
}

func TestHostOf(t *testing.T) {
	tests := []struct {
		value string
		want  string
	}{
		{value: "", want: ""},
		{value: "piwebapi.lab", want: "piwebapi.lab"},
		{value: "https://piwebapi.lab/piwebapi", want: "piwebapi.lab"},
		{value: "http://127.0.0.1:8080/#/", want: "127.0.0.1"},
		{value: `\\AFSERVER`, want: "AFSERVER"},
		{value: "vision.lab:443", want: "vision.lab"},
		{value: "  padded  ", want: "padded"},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, hostOf(tt.value))
		})
	}
}

func TestRunner_BoolGatedPatches(t *testing.T) {
	server := mocks.NewPIWebAPI(nil)
	t.Cleanup(server.Close)

	store := server.Settings()
	store["PISqlClientTests"] = "False"
	store["PIDataLinkTests"] = "false"
	runner := NewRunner(config.NewSettings(store), WithTimeout(5*time.Second), WithResolver(stubResolver))

	run, err := runner.Run(context.Background())
	require.NoError(t, err)

	results := resultsByName(run)
	for name, setting := range map[string]string{
		"latest-patch:sql-client-odbc":  "PISqlClientTests",
		"latest-patch:sql-client-oledb": "PISqlClientTests",
		"latest-patch:data-link":        "PIDataLinkTests",
	} {
		assert.Equal(t, models.OutcomeSkipped, results[name].Outcome, name)
		assert.Contains(t, results[name].Message, "'"+setting+"' setting is missing or its value is 'False'", name)
	}
}

func TestTarget_AFFixtureNotKeptOnFailure(t *testing.T) {
	server := mocks.NewPIWebAPI(nil)
	t.Cleanup(server.Close)

	tgt := &target{
		settings: config.NewSettings(server.Settings()),
		timeout:  5 * time.Second,
		resolve:  stubResolver,
	}

	canceled, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := tgt.afFixture(canceled)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled), "%v", err)

	af, err := tgt.afFixture(context.Background())
	require.NoError(t, err)
	assert.Equal(t, mocks.DefaultAFServer, af.ServerName)

	again, err := tgt.afFixture(canceled)
	require.NoError(t, err, "a resolved fixture is reused")
	assert.Same(t, af, again)

	msg, err := tgt.checkAFServer(context.Background())
	require.NoError(t, err)
	assert.Contains(t, msg, mocks.DefaultAFServerVersion)
}
