package main

import (
	"net/http"
	"testing"
	"time"
)

func TestConfigureExternalHTTPClient(t *testing.T) {
	prev := http.DefaultClient.Timeout
	t.Cleanup(func() { http.DefaultClient.Timeout = prev })

	if got := ConfigureExternalHTTPClient(5); got != 5*time.Second {
		t.Fatalf("unexpected timeout: %s", got)
	}
	// The shared default client is what the outbound API clients are built
	// on, so the timeout must land there.
	if http.DefaultClient.Timeout != 5*time.Second {
		t.Fatalf("timeout not applied to http.DefaultClient: %s", http.DefaultClient.Timeout)
	}

	if got := ConfigureExternalHTTPClient(0); got != defaultExternalHTTPTimeout {
		t.Fatalf("expected default timeout for 0, got %s", got)
	}
	if http.DefaultClient.Timeout != defaultExternalHTTPTimeout {
		t.Fatalf("default timeout not applied: %s", http.DefaultClient.Timeout)
	}
}
