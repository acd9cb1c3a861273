package common

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithRetry(t *testing.T) {
	fast := RetryOptions{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}

	tests := []struct {
		failures  int
		err       error
		name      string
		wantCalls int
		wantErr   bool
		wantIs    error
	}{
		{name: "succeeds first time", failures: 0, err: errors.New("boom"), wantCalls: 1},
		{name: "succeeds after transient failures", failures: 2, err: errors.New("boom"), wantCalls: 3},
		{name: "exhausts attempts", failures: 5, err: errors.New("boom"), wantCalls: 3, wantErr: true, wantIs: ErrMaxRetries},
		{name: "invalid input is not retried", failures: 5, err: fmt.Errorf("%w: bad", ErrInvalidInput), wantCalls: 1, wantErr: true, wantIs: ErrInvalidInput},
		{name: "non-retryable error stops", failures: 5, err: &RetryableError{Err: errors.New("fatal"), Retryable: false}, wantCalls: 1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := WithRetry(context.Background(), func() error {
				calls++
				if calls <= tt.failures {
					return tt.err
				}
				return nil
			}, fast)

			assert.Equal(t, tt.wantCalls, calls)
			if tt.wantErr {
				require.Error(t, err)
				if tt.wantIs != nil {
					assert.ErrorIs(t, err, tt.wantIs)
				}
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestWithRetry_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WithRetry(ctx, func() error { return errors.New("boom") },
		RetryOptions{MaxAttempts: 3, InitialDelay: time.Second})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsRetryable(t *testing.T) {
	assert.False(t, IsRetryable(nil))
	assert.False(t, IsRetryable(fmt.Errorf("%w: negative", ErrInvalidInput)))
	assert.True(t, IsRetryable(fmt.Errorf("sheets: %w", ErrRateLimit)))
	assert.True(t, IsRetryable(&RetryableError{Err: errors.New("503"), Retryable: true}))
	assert.False(t, IsRetryable(errors.New("plain")))
}

func TestUserError(t *testing.T) {
	err := NewUserError("Could not save", ErrNotFound)
	assert.Equal(t, "Could not save: not found", err.Error())
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, "Just a message", NewUserError("Just a message", nil).Error())
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    slog.Level
		wantErr bool
	}{
		{input: "debug", want: slog.LevelDebug},
		{input: "", want: slog.LevelInfo},
		{input: "WARN", want: slog.LevelWarn},
		{input: "error", want: slog.LevelError},
		{input: "loud", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSetupLoggerTo(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	require.NoError(t, SetupLoggerTo(&buf, slog.LevelInfo, "json"))

	slog.Info("loan registered", "installments", 12)
	slog.Debug("hidden")

	assert.Contains(t, buf.String(), `"msg":"loan registered"`)
	assert.Contains(t, buf.String(), `"installments":12`)
	assert.NotContains(t, buf.String(), "hidden")

	assert.ErrorIs(t, SetupLoggerTo(&buf, slog.LevelInfo, "xml"), ErrInvalidConfig)
}
