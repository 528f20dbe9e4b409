package test

import (
	"context"

	"github.com/celestiaorg/pitests/internal/eventually"
	"github.com/celestiaorg/pitests/pkg/piwebapi/client"
)

// Found probes a lookup until it stops answering 404. Any other error is fatal.
func Found(lookup func() error) eventually.Probe {
	return func() eventually.Result {
		err := lookup()
		switch {
		case err == nil:
			return eventually.Succeed()
		case client.IsNotFound(err):
			return eventually.Retry("not found yet: %v", err)
		default:
			return eventually.Fatal(err)
		}
	}
}

// Gone probes a lookup until it answers 404. Any other error is fatal.
func Gone(lookup func() error) eventually.Probe {
	return func() eventually.Result {
		err := lookup()
		switch {
		case client.IsNotFound(err):
			return eventually.Succeed()
		case err == nil:
			return eventually.Retry("still present")
		default:
			return eventually.Fatal(err)
		}
	}
}

// FloatValue probes a stream until its snapshot equals want. A missing stream is retried.
func FloatValue(ctx context.Context, api client.Client, webID string, want float64) eventually.Probe {
	return func() eventually.Result {
		v, err := api.GetValue(ctx, webID)
		if client.IsNotFound(err) {
			return eventually.Retry("stream not found yet")
		}
		if err != nil {
			return eventually.Fatal(err)
		}
		got, ok := v.Float()
		if !ok {
			return eventually.Retry("value %v is not numeric", v.Value)
		}
		if got != want {
			return eventually.Retry("Expected: %v, Actual: %v", want, got)
		}
		return eventually.Succeed()
	}
}
