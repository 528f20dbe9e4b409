package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObservers(t *testing.T) {
	Init()

	before := testutil.ToFloat64(pollAttempts.WithLabelValues(OutcomeSuccess))
	ObservePoll(OutcomeSuccess, 3, 200*time.Millisecond)
	assert.Equal(t, before+3, testutil.ToFloat64(pollAttempts.WithLabelValues(OutcomeSuccess)))

	before = testutil.ToFloat64(skipDecisions.WithLabelValues("web-api-current-patch", DecisionSkip))
	IncSkipDecision("web-api-current-patch", DecisionSkip)
	assert.Equal(t, before+1, testutil.ToFloat64(skipDecisions.WithLabelValues("web-api-current-patch", DecisionSkip)))

	before = testutil.ToFloat64(checkResults.WithLabelValues("settings", "pass"))
	ObserveCheck("settings", "pass", time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(checkResults.WithLabelValues("settings", "pass")))
}

func TestPush(t *testing.T) {
	Init()
	ObservePoll(OutcomeTimeout, 1, time.Second)

	var gotPath string
	var gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	require.NoError(t, Push(server.URL, "pitests", "lab01"))
	assert.Equal(t, "/metrics/job/pitests/instance/lab01", gotPath)
	assert.NotEmpty(t, gotBody)

	server.Close()
	assert.Error(t, Push(server.URL, "pitests", ""))
}
