package health

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func ok(context.Context) error   { return nil }
func down(context.Context) error { return errors.New("connection refused") }

func TestCheckReady(t *testing.T) {
	tests := []struct {
		name  string
		build func() *HealthChecker
		want  string
	}{
		{"all up", func() *HealthChecker { return NewHealthChecker().Require("database", ok).Optional("cache", ok) }, "healthy"},
		{"cache down", func() *HealthChecker { return NewHealthChecker().Require("database", ok).Optional("cache", down) }, "degraded"},
		{"database down", func() *HealthChecker { return NewHealthChecker().Require("database", down).Optional("cache", down) }, "unhealthy"},
		{"nothing to check", NewHealthChecker, "healthy"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.build().CheckReady(context.Background())
			assert.Equal(t, tt.want, got.Status)
		})
	}

	st := NewHealthChecker().Require("database", down).CheckReady(context.Background())
	assert.Equal(t, "connection refused", st.Components["database"].Error)
}
