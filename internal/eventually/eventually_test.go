package eventually

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingT captures failures reported through require.TestingT
type recordingT struct {
	messages []string
	failed   bool
}

func (r *recordingT) Errorf(format string, args ...interface{}) {
	r.messages = append(r.messages, fmt.Sprintf(format, args...))
}

func (r *recordingT) FailNow() {
	r.failed = true
}

func TestPoll_SucceedsOnThirdCall(t *testing.T) {
	calls := 0
	probe := FromBool(func() bool {
		calls++
		return calls >= 3
	})

	start := time.Now()
	err := Poll(probe, Cadence{Timeout: time.Second, Interval: 100 * time.Millisecond}, "third call")
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.GreaterOrEqual(t, elapsed, 200*time.Millisecond)
	assert.Less(t, elapsed, 600*time.Millisecond)
}

func TestPoll_InvocationBounds(t *testing.T) {
	cadence := Cadence{Timeout: 500 * time.Millisecond, Interval: 100 * time.Millisecond}
	maxCalls := int(math.Ceil(float64(cadence.Timeout)/float64(cadence.Interval))) + 1

	t.Run("becomes true", func(t *testing.T) {
		calls := 0
		err := Poll(FromBool(func() bool {
			calls++
			return calls == 2
		}), cadence, "")
		require.NoError(t, err)
		assert.GreaterOrEqual(t, calls, 1)
		assert.LessOrEqual(t, calls, maxCalls)
	})

	t.Run("never true", func(t *testing.T) {
		calls := 0
		err := Poll(FromBool(func() bool {
			calls++
			return false
		}), cadence, "")
		require.Error(t, err)
		assert.LessOrEqual(t, calls, maxCalls)

		var timeout *TimeoutError
		require.ErrorAs(t, err, &timeout)
		assert.Equal(t, calls, timeout.Attempts)
	})
}

func TestPoll_TimesOutDeterministically(t *testing.T) {
	cadence := Cadence{Timeout: 300 * time.Millisecond, Interval: 100 * time.Millisecond}

	start := time.Now()
	err := Poll(func() Result { return Retry("still waiting") }, cadence, "never converges")
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.GreaterOrEqual(t, elapsed, cadence.Timeout)
	// generous slack for slow CI machines
	assert.Less(t, elapsed, cadence.Timeout+cadence.Interval+100*time.Millisecond)

	var timeout *TimeoutError
	require.ErrorAs(t, err, &timeout)
	assert.Equal(t, cadence.Timeout, timeout.Timeout)
	assert.Equal(t, "still waiting", timeout.LastReason)
}

func TestPoll_FatalPropagatesImmediately(t *testing.T) {
	boom := errors.New("connection refused")
	calls := 0

	start := time.Now()
	err := Poll(func() Result {
		calls++
		return Fatal(boom)
	}, Cadence{Timeout: 5 * time.Second, Interval: time.Second}, "")

	assert.Same(t, boom, err)
	assert.Equal(t, 1, calls)
	assert.Less(t, time.Since(start), time.Second)
}

func TestPoll_ReportsLastReason(t *testing.T) {
	calls := 0
	err := Poll(func() Result {
		calls++
		return Retry("attempt %d", calls)
	}, Cadence{Timeout: 200 * time.Millisecond, Interval: 50 * time.Millisecond}, "value never arrived.")

	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, fmt.Sprintf("attempt %d", calls))
	assert.NotContains(t, msg, "attempt 1 ")
	assert.Contains(t, msg, "Waited for 200ms. value never arrived.")

	host, herr := os.Hostname()
	if herr == nil && host != "" {
		assert.True(t, strings.HasPrefix(msg, strings.ToUpper(host)+": "), msg)
	}
}

func TestTimeoutError_NoMessage(t *testing.T) {
	err := &TimeoutError{Host: "LAB01", Timeout: time.Second}
	assert.Equal(t, "LAB01: No Message", err.Error())
}

func TestPollContext_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	err := PollContext(ctx, func() Result { return Retry("") }, Cadence{Timeout: 5 * time.Second, Interval: 20 * time.Millisecond}, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestFromCheck(t *testing.T) {
	boom := errors.New("boom")
	assert.Equal(t, outcomeFatal, FromCheck(func() (bool, error) { return false, boom })().outcome)
	assert.Equal(t, outcomeSuccess, FromCheck(func() (bool, error) { return true, nil })().outcome)
	assert.Equal(t, outcomeRetry, FromCheck(func() (bool, error) { return false, nil })().outcome)
	assert.Error(t, Fatal(nil).err)
}

func TestTrue(t *testing.T) {
	cadence := Cadence{Timeout: 150 * time.Millisecond, Interval: 50 * time.Millisecond}

	rt := &recordingT{}
	True(rt, func() bool { return true }, cadence, "ok")
	assert.False(t, rt.failed)

	rt = &recordingT{}
	True(rt, func() bool { return false }, cadence, "element %s not found", "Tank1")
	assert.True(t, rt.failed)
	require.NotEmpty(t, rt.messages)
	assert.Contains(t, rt.messages[0], "element Tank1 not found")
}

func TestEqual(t *testing.T) {
	cadence := Cadence{Timeout: 300 * time.Millisecond, Interval: 50 * time.Millisecond}

	values := []float64{1, 2, 42}
	i := 0
	rt := &recordingT{}
	Equal(rt, 42.0, func() (float64, error) {
		v := values[i]
		if i < len(values)-1 {
			i++
		}
		return v, nil
	}, cadence)
	assert.False(t, rt.failed)

	rt = &recordingT{}
	Equal(rt, "expected", func() (string, error) { return "actual", nil }, cadence, "point %s", "sinusoid")
	assert.True(t, rt.failed)
	require.NotEmpty(t, rt.messages)
	assert.Contains(t, rt.messages[0], "Expected: expected, Actual: actual")
	assert.Contains(t, rt.messages[0], "point sinusoid")

	calls := 0
	rt = &recordingT{}
	Equal(rt, 1, func() (int, error) {
		calls++
		return 0, errors.New("unreachable")
	}, cadence)
	assert.True(t, rt.failed)
	assert.Equal(t, 1, calls)
}
