package main

import (
	"log"
	"net/http"
	"time"
)

const defaultExternalHTTPTimeout = 30 * time.Second

// ConfigureExternalHTTPClient sets the timeout on http.DefaultClient. The
// Anthropic SDK uses it by default; the Slack client must be handed the same
// client explicitly via slack.OptionHTTPClient.
func ConfigureExternalHTTPClient(seconds int) time.Duration {
	timeout := defaultExternalHTTPTimeout
	if seconds > 0 {
		timeout = time.Duration(seconds) * time.Second
	}
	http.DefaultClient.Timeout = timeout
	log.Printf("External HTTP timeout set to %s", timeout)
	return timeout
}
