package utils

import (
	"testing"
	"time"
)

func TestGetEnvDefault(t *testing.T) {
	t.Setenv("SIMMER_TEST_ADDR", "")
	if got := GetEnvDefault("SIMMER_TEST_ADDR", "localhost"); got != "localhost" {
		t.Errorf("got %q, want localhost", got)
	}
	t.Setenv("SIMMER_TEST_ADDR", "0.0.0.0")
	if got := GetEnvDefault("SIMMER_TEST_ADDR", "localhost"); got != "0.0.0.0" {
		t.Errorf("got %q, want 0.0.0.0", got)
	}
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("SIMMER_TEST_COUNT", "7")
	n, err := GetEnvInt("SIMMER_TEST_COUNT", 3)
	if err != nil || n != 7 {
		t.Errorf("GetEnvInt = %d, %v; want 7", n, err)
	}
	t.Setenv("SIMMER_TEST_COUNT", "seven")
	if _, err := GetEnvInt("SIMMER_TEST_COUNT", 3); err == nil {
		t.Errorf("non-numeric value accepted")
	}
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("SIMMER_TEST_TICK", "250ms")
	d, err := GetEnvDuration("SIMMER_TEST_TICK", time.Second)
	if err != nil || d != 250*time.Millisecond {
		t.Errorf("GetEnvDuration = %v, %v; want 250ms", d, err)
	}
}
