// Package network builds the tuned HTTP client used to talk to the media server.
package network

import (
	"net/http"
	"time"
)

// Client is shared by every media server request made by the process.
var Client = NewClient(time.Minute)

// NewClient returns a client with pooled connections and the given overall timeout.
func NewClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: newTransport(),
	}
}

func newTransport() *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 20
	t.MaxIdleConnsPerHost = 10
	t.IdleConnTimeout = 90 * time.Second
	t.ResponseHeaderTimeout = 30 * time.Second
	t.ExpectContinueTimeout = time.Second
	return t
}
