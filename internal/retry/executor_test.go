package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/agonielv/agonielv-bilibili-Sort/internal/retry"
)

const (
	testActionLabelConstant = "move item 1/1"
)

type recordedAttempt struct {
	label       string
	attempt     int
	maxAttempts int
	failure     error
}

type recordingAttemptObserver struct {
	attempts []recordedAttempt
}

func (observer *recordingAttemptObserver) AttemptFailed(label string, attempt int, maxAttempts int, failure error) {
	observer.attempts = append(observer.attempts, recordedAttempt{label: label, attempt: attempt, maxAttempts: maxAttempts, failure: failure})
}

type recordingSleeper struct {
	durations []time.Duration
}

func (sleeper *recordingSleeper) Sleep(_ context.Context, duration time.Duration) error {
	sleeper.durations = append(sleeper.durations, duration)
	return nil
}

func TestRunRetriesUntilCeiling(testInstance *testing.T) {
	testCases := []struct {
		name              string
		policy            retry.Policy
		failuresBeforeOK  int
		expectError       bool
		expectedCalls     int
		expectedDurations []time.Duration
	}{
		{
			name:              "succeeds_first_attempt",
			policy:            retry.DefaultPolicy(),
			failuresBeforeOK:  0,
			expectedCalls:     1,
			expectedDurations: nil,
		},
		{
			name:              "succeeds_after_two_failures",
			policy:            retry.DefaultPolicy(),
			failuresBeforeOK:  2,
			expectedCalls:     3,
			expectedDurations: []time.Duration{500 * time.Millisecond, time.Second},
		},
		{
			name:              "exhausts_default_ceiling",
			policy:            retry.DefaultPolicy(),
			failuresBeforeOK:  10,
			expectError:       true,
			expectedCalls:     3,
			expectedDurations: []time.Duration{500 * time.Millisecond, time.Second},
		},
		{
			name:              "exhausts_custom_ceiling",
			policy:            retry.Policy{MaxAttempts: 5, BaseDelay: 10 * time.Millisecond},
			failuresBeforeOK:  10,
			expectError:       true,
			expectedCalls:     5,
			expectedDurations: []time.Duration{10 * time.Millisecond, 20 * time.Millisecond, 30 * time.Millisecond, 40 * time.Millisecond},
		},
		{
			name:              "non_positive_ceiling_uses_default",
			policy:            retry.Policy{MaxAttempts: 0, BaseDelay: 0},
			failuresBeforeOK:  10,
			expectError:       true,
			expectedCalls:     3,
			expectedDurations: []time.Duration{0, 0},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			observer := &recordingAttemptObserver{}
			sleeper := &recordingSleeper{}
			executor := retry.NewExecutor(testCase.policy, observer, sleeper.Sleep)

			callCount := 0
			var lastFailure error
			value, runError := retry.Run(context.Background(), executor, testActionLabelConstant, func(context.Context) (int, error) {
				callCount++
				if callCount <= testCase.failuresBeforeOK {
					lastFailure = errors.New("attempt failed")
					return 0, lastFailure
				}
				return 42, nil
			})

			require.Equal(testInstance, testCase.expectedCalls, callCount)
			require.Equal(testInstance, testCase.expectedDurations, sleeper.durations)
			require.Len(testInstance, observer.attempts, min(testCase.failuresBeforeOK, testCase.expectedCalls))

			if !testCase.expectError {
				require.NoError(testInstance, runError)
				require.Equal(testInstance, 42, value)
				return
			}

			require.Error(testInstance, runError)
			var exhaustedError retry.ExhaustedError
			require.ErrorAs(testInstance, runError, &exhaustedError)
			require.Equal(testInstance, testActionLabelConstant, exhaustedError.Label)
			require.Equal(testInstance, testCase.expectedCalls, exhaustedError.Attempts)
			require.ErrorIs(testInstance, runError, lastFailure)
			require.Contains(testInstance, runError.Error(), testActionLabelConstant)
		})
	}
}

func TestRunSurfacesLastUnderlyingError(testInstance *testing.T) {
	sleeper := &recordingSleeper{}
	executor := retry.NewExecutor(retry.DefaultPolicy(), nil, sleeper.Sleep)

	failures := []error{errors.New("first"), errors.New("second"), errors.New("third")}
	callCount := 0
	runError := executor.Do(context.Background(), testActionLabelConstant, func(context.Context) error {
		failure := failures[callCount]
		callCount++
		return failure
	})

	require.ErrorIs(testInstance, runError, failures[2])
	require.NotErrorIs(testInstance, runError, failures[0])
}

func TestRunObserverReceivesEveryFailedAttempt(testInstance *testing.T) {
	observer := &recordingAttemptObserver{}
	sleeper := &recordingSleeper{}
	executor := retry.NewExecutor(retry.DefaultPolicy(), observer, sleeper.Sleep)

	_ = executor.Do(context.Background(), testActionLabelConstant, func(context.Context) error {
		return errors.New("remote unavailable")
	})

	require.Len(testInstance, observer.attempts, 3)
	for attemptIndex, attempt := range observer.attempts {
		require.Equal(testInstance, testActionLabelConstant, attempt.label)
		require.Equal(testInstance, attemptIndex+1, attempt.attempt)
		require.Equal(testInstance, 3, attempt.maxAttempts)
		require.EqualError(testInstance, attempt.failure, "remote unavailable")
	}
}

func TestRunDoesNotRetryPermanentFailures(testInstance *testing.T) {
	sleeper := &recordingSleeper{}
	executor := retry.NewExecutor(retry.DefaultPolicy(), nil, sleeper.Sleep)

	permanentCause := errors.New("pagination ceiling reached")
	callCount := 0
	runError := executor.Do(context.Background(), testActionLabelConstant, func(context.Context) error {
		callCount++
		return retry.Permanent(permanentCause)
	})

	require.Equal(testInstance, 1, callCount)
	require.Same(testInstance, permanentCause, runError)
	require.Empty(testInstance, sleeper.durations)
}

func TestRunStopsWhenContextCancelled(testInstance *testing.T) {
	executionContext, cancel := context.WithCancel(context.Background())
	executor := retry.NewExecutor(retry.DefaultPolicy(), nil, func(sleepContext context.Context, _ time.Duration) error {
		cancel()
		return sleepContext.Err()
	})

	callCount := 0
	runError := executor.Do(executionContext, testActionLabelConstant, func(context.Context) error {
		callCount++
		return errors.New("temporary")
	})

	require.Equal(testInstance, 1, callCount)
	require.ErrorIs(testInstance, runError, context.Canceled)
	var exhaustedError retry.ExhaustedError
	require.False(testInstance, errors.As(runError, &exhaustedError))
}

func TestSleepWithContextReturnsEarlyOnCancellation(testInstance *testing.T) {
	executionContext, cancel := context.WithCancel(context.Background())
	cancel()

	sleepError := retry.SleepWithContext(executionContext, time.Hour)
	require.ErrorIs(testInstance, sleepError, context.Canceled)
	require.NoError(testInstance, retry.SleepWithContext(context.Background(), 0))
}
