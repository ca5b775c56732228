package geocode

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"
)

// CreateCircuitBreaker trips after at least 3 requests with a 60% failure
// ratio and probes again after openTimeout. A caller giving up on a request
// says nothing about the provider and is not counted as a failure.
func CreateCircuitBreaker(name string, openTimeout time.Duration) *gobreaker.CircuitBreaker[[]byte] {
	var st gobreaker.Settings
	st.Name = name
	st.Timeout = openTimeout
	st.ReadyToTrip = func(counts gobreaker.Counts) bool {
		failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
		return counts.Requests >= 3 && failureRatio >= 0.6
	}
	st.IsSuccessful = func(err error) bool {
		return err == nil || errors.Is(err, context.Canceled)
	}

	return gobreaker.NewCircuitBreaker[[]byte](st)
}
