package health

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Checker represents a dependency health check.
type Checker interface {
	Name() string
	Check(ctx context.Context) error
}

// Report is the readiness state of every registered dependency.
type Report struct {
	Ready  bool              `json:"ready"`
	Checks map[string]string `json:"checks"` // name -> "ok" or error text
}

// ReadinessUseCase describes readiness verification.
type ReadinessUseCase interface {
	Ready(ctx context.Context) (Report, error)
}

type service struct {
	checkers []Checker
	timeout  time.Duration
}

// NewService aggregates dependency checkers. Each checker gets its own
// timeout; all of them run even if an earlier one fails.
func NewService(timeout time.Duration, checkers ...Checker) ReadinessUseCase {
	if timeout <= 0 {
		timeout = time.Second
	}
	return &service{checkers: checkers, timeout: timeout}
}

func (s *service) Ready(ctx context.Context) (Report, error) {
	rep := Report{Ready: true, Checks: make(map[string]string, len(s.checkers))}
	var errs []error
	for _, ch := range s.checkers {
		if err := s.run(ctx, ch); err != nil {
			rep.Ready = false
			rep.Checks[ch.Name()] = err.Error()
			errs = append(errs, fmt.Errorf("%s: %w", ch.Name(), err))
			continue
		}
		rep.Checks[ch.Name()] = "ok"
	}
	return rep, errors.Join(errs...)
}

func (s *service) run(ctx context.Context, ch Checker) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return ch.Check(ctx)
}
