package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const (
	// DefaultMaxAttempts is the attempt ceiling applied when none is configured.
	DefaultMaxAttempts = 3
	// DefaultBaseDelay is multiplied by the attempt number to compute the wait after a failure.
	DefaultBaseDelay = 500 * time.Millisecond

	exhaustedErrorTemplateConstant = "%s failed after %d attempts: %v"
	unknownFailureMessageConstant  = "unknown error"
	permanentErrorMessageConstant  = "permanent failure"
)

// Policy configures the attempt ceiling and the backoff base.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// DefaultPolicy returns the standard three-attempt policy.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: DefaultMaxAttempts, BaseDelay: DefaultBaseDelay}
}

// Sanitize replaces non-positive values with defaults.
func (policy Policy) Sanitize() Policy {
	sanitized := policy
	if sanitized.MaxAttempts <= 0 {
		sanitized.MaxAttempts = DefaultMaxAttempts
	}
	if sanitized.BaseDelay < 0 {
		sanitized.BaseDelay = 0
	}
	return sanitized
}

// DelayAfter returns the wait following the given failed attempt (1-based).
func (policy Policy) DelayAfter(attempt int) time.Duration {
	return policy.BaseDelay * time.Duration(attempt)
}

// Sleeper waits for the given duration or until the context ends.
type Sleeper func(executionContext context.Context, duration time.Duration) error

// AttemptObserver is notified about every failed attempt.
type AttemptObserver interface {
	AttemptFailed(label string, attempt int, maxAttempts int, failure error)
}

// ExhaustedError reports that every attempt of a labelled action failed.
type ExhaustedError struct {
	Label    string
	Attempts int
	Cause    error
}

// Error describes the exhausted action and its last failure.
func (exhaustedError ExhaustedError) Error() string {
	cause := any(unknownFailureMessageConstant)
	if exhaustedError.Cause != nil {
		cause = exhaustedError.Cause
	}
	return fmt.Sprintf(exhaustedErrorTemplateConstant, exhaustedError.Label, exhaustedError.Attempts, cause)
}

// Unwrap exposes the last underlying failure.
func (exhaustedError ExhaustedError) Unwrap() error {
	return exhaustedError.Cause
}

type permanentError struct {
	cause error
}

func (failure permanentError) Error() string {
	if failure.cause == nil {
		return permanentErrorMessageConstant
	}
	return failure.cause.Error()
}

func (failure permanentError) Unwrap() error {
	return failure.cause
}

// Permanent marks a failure that must not be retried. Run returns the wrapped cause unchanged.
func Permanent(cause error) error {
	if cause == nil {
		return nil
	}
	return permanentError{cause: cause}
}

// Executor runs actions under a retry policy.
type Executor struct {
	policy   Policy
	observer AttemptObserver
	sleeper  Sleeper
}

// NewExecutor constructs an Executor. A nil sleeper waits on real timers.
func NewExecutor(policy Policy, observer AttemptObserver, sleeper Sleeper) *Executor {
	if sleeper == nil {
		sleeper = SleepWithContext
	}
	return &Executor{policy: policy.Sanitize(), observer: observer, sleeper: sleeper}
}

// Policy returns the sanitized policy in effect.
func (executor *Executor) Policy() Policy {
	if executor == nil {
		return DefaultPolicy()
	}
	return executor.policy
}

// Do runs an action that produces no value.
func (executor *Executor) Do(executionContext context.Context, label string, action func(context.Context) error) error {
	_, runError := Run(executionContext, executor, label, func(attemptContext context.Context) (struct{}, error) {
		return struct{}{}, action(attemptContext)
	})
	return runError
}

// Run invokes action until it succeeds or the attempt ceiling is reached.
func Run[T any](executionContext context.Context, executor *Executor, label string, action func(context.Context) (T, error)) (T, error) {
	if executor == nil {
		executor = NewExecutor(DefaultPolicy(), nil, nil)
	}

	var zeroValue T
	var lastError error
	maxAttempts := executor.policy.MaxAttempts

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if contextError := executionContext.Err(); contextError != nil {
			return zeroValue, contextError
		}

		value, actionError := action(executionContext)
		if actionError == nil {
			return value, nil
		}

		var permanentFailure permanentError
		if errors.As(actionError, &permanentFailure) {
			return zeroValue, permanentFailure.cause
		}

		lastError = actionError
		if executor.observer != nil {
			executor.observer.AttemptFailed(label, attempt, maxAttempts, actionError)
		}

		if contextError := executionContext.Err(); contextError != nil {
			return zeroValue, contextError
		}

		if attempt == maxAttempts {
			break
		}

		if sleepError := executor.sleeper(executionContext, executor.policy.DelayAfter(attempt)); sleepError != nil {
			return zeroValue, sleepError
		}
	}

	return zeroValue, ExhaustedError{Label: label, Attempts: maxAttempts, Cause: lastError}
}

// SleepWithContext blocks for the given duration, returning early if the context is cancelled.
func SleepWithContext(executionContext context.Context, duration time.Duration) error {
	if duration <= 0 {
		return executionContext.Err()
	}
	timer := time.NewTimer(duration)
	defer timer.Stop()
	select {
	case <-executionContext.Done():
		return executionContext.Err()
	case <-timer.C:
		return nil
	}
}
