// internal/common/camunda/client_test.go
package camunda

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"listing-unitmix/internal/common/config"
)

func TestIsRetryableZeebeError(t *testing.T) {
	tests := []struct {
		err  string
		want bool
	}{
		{"rpc error: code = Unavailable desc = connection refused", true},
		{"context deadline exceeded", true},
		{"read: connection reset by peer", true},
		{"rpc error: code = PermissionDenied desc = unauthorized", false},
		{"invalid gateway address", false},
	}
	for _, tt := range tests {
		t.Run(tt.err, func(t *testing.T) {
			assert.Equal(t, tt.want, isRetryableZeebeError(errors.New(tt.err)))
		})
	}
}

func TestBackoff(t *testing.T) {
	rc := &RetryConfig{BaseDelay: time.Second, MaxDelay: 10 * time.Second}

	assert.Equal(t, time.Second, backoff(rc, 0))
	assert.Equal(t, 4*time.Second, backoff(rc, 2))
	assert.Equal(t, 10*time.Second, backoff(rc, 5))
	assert.Equal(t, 10*time.Second, backoff(rc, 60))
}

func TestConfigFromApp(t *testing.T) {
	cfg := ConfigFromApp(config.CamundaConfig{
		BrokerAddress:  "zeebe:26500",
		Plaintext:      true,
		RequestTimeout: 15000,
	})

	assert.Equal(t, "zeebe:26500", cfg.GatewayAddress)
	assert.True(t, cfg.UsePlaintextConnection)
	assert.Equal(t, 15*time.Second, cfg.ConnectionTimeout)
	assert.Same(t, DefaultRetryConfig, cfg.RetryConfig)
}
