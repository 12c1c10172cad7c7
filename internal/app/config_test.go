package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyPlatformDefaults(t *testing.T) {
	t.Setenv("PORT", "9090")

	cfg := &Config{Addr: "127.0.0.1:8080"}
	cfg.applyPlatformDefaults()
	assert.Equal(t, "127.0.0.1:9090", cfg.Addr)

	// An explicit address wins over PORT.
	cfg = &Config{Addr: "0.0.0.0:3000"}
	cfg.applyPlatformDefaults()
	assert.Equal(t, "0.0.0.0:3000", cfg.Addr)
}

func TestApplyPlatformDefaults_NoPort(t *testing.T) {
	t.Setenv("PORT", "")

	cfg := &Config{Addr: "127.0.0.1:8080"}
	cfg.applyPlatformDefaults()
	assert.Equal(t, "127.0.0.1:8080", cfg.Addr)
}
