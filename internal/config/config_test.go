package config

import (
	"testing"
	"time"
)

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("CAROUSEL_TEST_INT", "42")
	t.Setenv("CAROUSEL_TEST_BAD_INT", "forty-two")
	t.Setenv("CAROUSEL_TEST_DURATION", "750ms")

	if got := getEnvAsInt("CAROUSEL_TEST_INT", 1); got != 42 {
		t.Errorf("getEnvAsInt = %d, want 42", got)
	}
	if got := getEnvAsInt("CAROUSEL_TEST_BAD_INT", 7); got != 7 {
		t.Errorf("getEnvAsInt with bad value = %d, want default 7", got)
	}
	if got := getEnvAsDuration("CAROUSEL_TEST_DURATION", time.Second); got != 750*time.Millisecond {
		t.Errorf("getEnvAsDuration = %v, want 750ms", got)
	}
	if got := getEnv("CAROUSEL_TEST_MISSING", "fallback"); got != "fallback" {
		t.Errorf("getEnv = %q, want fallback", got)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("STORAGE_BACKEND", "local")

	LoadConfig()

	if AppConfig.JWTSecret != "test-secret" {
		t.Errorf("JWTSecret = %q", AppConfig.JWTSecret)
	}
	if AppConfig.HTTPPort == "" {
		t.Error("HTTPPort should default to a value")
	}
	if AppConfig.AIRateInterval <= 0 {
		t.Errorf("AIRateInterval = %v, want positive", AppConfig.AIRateInterval)
	}
}
