// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/pdiddy/paper-search/pkg/types"
)

// newBreaker returns a circuit breaker that opens after failures
// consecutive errors and probes again after cooldown. Caller mistakes
// (empty query, unsupported suggestions) do not count as failures.
func newBreaker(api types.API, failures uint32, cooldown time.Duration, log logrus.FieldLogger) *gobreaker.CircuitBreaker {
	if failures == 0 {
		failures = 5
	}
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        string(api),
		MaxRequests: 1,
		Timeout:     cooldown,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= failures
		},
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, ErrEmptyQuery) ||
				errors.Is(err, ErrSuggestionsUnsupported)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.WithFields(logrus.Fields{
				"api":  name,
				"from": from.String(),
				"to":   to.String(),
			}).Warn("provider circuit breaker changed state")
		},
	})
}

// guard runs fn through cb and returns its typed result.
func guard[T any](cb *gobreaker.CircuitBreaker, fn func() (T, error)) (T, error) {
	var zero T
	v, err := cb.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		return zero, err
	}
	return v.(T), nil
}
