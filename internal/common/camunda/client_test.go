package camunda

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rlecomte1929/rolec/internal/common/config"
	apperrors "github.com/rlecomte1929/rolec/internal/common/errors"
	"github.com/rlecomte1929/rolec/internal/common/logger"
)

func createTestClient() *Client {
	return &Client{config: &ClientConfig{
		ConnectionTimeout: time.Second,
		RetryConfig:       &RetryConfig{MaxRetries: 2, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond},
	}}
}

func TestExecuteWithRetry(t *testing.T) {
	tests := []struct {
		name      string
		errs      []error
		wantCalls int
		wantCode  apperrors.ErrorCode
	}{
		{
			name:      "succeeds first time",
			errs:      []error{nil},
			wantCalls: 1,
		},
		{
			name:      "transient then success",
			errs:      []error{fmt.Errorf("rpc error: code = Unavailable"), nil},
			wantCalls: 2,
		},
		{
			name:      "permanent error is not retried",
			errs:      []error{fmt.Errorf("permission denied")},
			wantCalls: 1,
			wantCode:  apperrors.ErrCodeInternal,
		},
		{
			name:      "retries exhausted on timeout",
			errs:      []error{fmt.Errorf("timeout"), fmt.Errorf("timeout"), fmt.Errorf("deadline exceeded")},
			wantCalls: 3,
			wantCode:  apperrors.ErrCodeTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			_, err := createTestClient().ExecuteWithRetry(context.Background(), func(context.Context) (interface{}, error) {
				err := tt.errs[calls]
				calls++
				return "ok", err
			}, "topology", logger.NewTestLogger(t))

			assert.Equal(t, tt.wantCalls, calls)
			if tt.wantCode == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, apperrors.IsCode(err, tt.wantCode))
			stdErr, _ := apperrors.AsStandardError(err)
			assert.Contains(t, stdErr.Details, "zeebe operation 'topology' failed")
		})
	}
}

func TestExecuteWithRetry_Cancelled(t *testing.T) {
	c := createTestClient()
	c.config.RetryConfig.BaseDelay = time.Hour
	c.config.RetryConfig.MaxDelay = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	_, err := c.ExecuteWithRetry(ctx, func(context.Context) (interface{}, error) {
		cancel()
		return nil, fmt.Errorf("connection refused")
	}, "connect", logger.NewNoOpLogger())

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsRetryableZeebeError(t *testing.T) {
	assert.True(t, isRetryableZeebeError(fmt.Errorf("dial tcp: Connection Refused")))
	assert.True(t, isRetryableZeebeError(fmt.Errorf("context deadline exceeded")))
	assert.False(t, isRetryableZeebeError(fmt.Errorf("NOT_FOUND: job 1")))
}

func TestConfigFromApp(t *testing.T) {
	cc := ConfigFromApp(config.CamundaConfig{BrokerAddress: "zeebe:26500", RequestTimeout: 1500})
	assert.Equal(t, "zeebe:26500", cc.GatewayAddress)
	assert.True(t, cc.UsePlaintextConnection)
	assert.Equal(t, 1500*time.Millisecond, cc.RequestTimeout)
	assert.Same(t, DefaultRetryConfig, cc.RetryConfig)
}

func TestHealthCheck_NotConnected(t *testing.T) {
	assert.Error(t, createTestClient().HealthCheck(context.Background()))
}
