package main

import (
	"math/rand"
	"net/http"
	"time"
)

// userAgents is a pool of fixed browser signatures. One is picked per session
// so that a run does not present a uniform identity to the remote hosts.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:125.0) Gecko/20100101 Firefox/125.0",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Ubuntu; Linux x86_64; rv:124.0) Gecko/20100101 Firefox/124.0",
}

func randomUserAgent() string {
	return userAgents[rand.Intn(len(userAgents))]
}

// uaTransport stamps the session's User-Agent onto every outgoing request.
type uaTransport struct {
	agent string
	base  http.RoundTripper
}

func (t *uaTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.Header.Set("User-Agent", t.agent)
	return t.base.RoundTrip(clone)
}

// newSession creates an HTTP client with a randomized User-Agent and a
// per-request timeout. A session is shared by every worker of one fan-out
// call; creating one per request is wasteful and must be avoided in hot
// paths. http.Client is safe for concurrent use.
func newSession(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &uaTransport{
			agent: randomUserAgent(),
			base:  http.DefaultTransport,
		},
	}
}
