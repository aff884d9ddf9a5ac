// Package server is the HTTP client for a Plex-compatible media server. It resolves
// playable items, manages play queues, persists stream preferences and reports progress.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/marquee-cli/marquee/auth"
	"github.com/marquee-cli/marquee/constant"
	"github.com/marquee-cli/marquee/key"
	"github.com/marquee-cli/marquee/log"
	"github.com/marquee-cli/marquee/network"
	"github.com/spf13/viper"
	"golang.org/x/time/rate"
)

const maxResponseBody = 10 << 20

// ErrNotFound is matched by StatusError values carrying a 404.
var ErrNotFound = errors.New("not found")

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Method string
	Path   string
	Code   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: server returned status %d", e.Method, e.Path, e.Code)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.Code == http.StatusNotFound
}

// Options configures a Client.
type Options struct {
	BaseURL    string
	Token      string
	ClientID   string
	RateLimit  float64
	HTTPClient *http.Client
}

// Client talks to one media server.
type Client struct {
	base     string
	token    string
	clientID string
	http     *http.Client
	limiter  *rate.Limiter
}

// New creates a client. A zero rate limit disables limiting.
func New(opts Options) *Client {
	c := &Client{
		base:     strings.TrimRight(opts.BaseURL, "/"),
		token:    opts.Token,
		clientID: opts.ClientID,
		http:     opts.HTTPClient,
	}

	if c.http == nil {
		c.http = network.Client
	}

	if c.clientID == "" {
		c.clientID = uuid.NewString()
	}

	if opts.RateLimit > 0 {
		burst := max(1, int(math.Ceil(opts.RateLimit)))
		c.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	return c
}

// FromConfig builds a client from viper settings and the keyring token. The client
// identifier is generated and saved on first use.
func FromConfig() (*Client, error) {
	base := viper.GetString(key.ServerURL)
	if err := checkURL(base, viper.GetBool(key.ServerInsecureOK)); err != nil {
		return nil, err
	}

	token, err := auth.GetToken()
	if err != nil {
		return nil, err
	}

	clientID := viper.GetString(key.ServerClientID)
	if clientID == "" {
		clientID = uuid.NewString()
		viper.Set(key.ServerClientID, clientID)
		if err := viper.WriteConfig(); err != nil {
			log.Warnf("could not persist client identifier: %v", err)
		}
	}

	return New(Options{
		BaseURL:    base,
		Token:      token,
		ClientID:   clientID,
		RateLimit:  viper.GetFloat64(key.ServerRateLimit),
		HTTPClient: network.NewClient(time.Duration(viper.GetInt(key.ServerTimeout)) * time.Second),
	}), nil
}

// checkURL refuses plain http to public hosts unless explicitly allowed.
func checkURL(raw string, insecureOK bool) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid server url: %w", err)
	}

	switch u.Scheme {
	case "https":
		return nil
	case "http":
	default:
		return fmt.Errorf("invalid server url %q: scheme must be http or https", raw)
	}

	if insecureOK || u.Hostname() == "localhost" {
		return nil
	}

	ip := net.ParseIP(u.Hostname())
	if ip != nil && (ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast()) {
		return nil
	}
	return fmt.Errorf("refusing plain http to %s, set %s to allow it", u.Host, key.ServerInsecureOK)
}

// BaseURL returns the server root without a trailing slash.
func (c *Client) BaseURL() string {
	return c.base
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Plex-Token", c.token)
	req.Header.Set("X-Plex-Client-Identifier", c.clientID)
	req.Header.Set("X-Plex-Product", constant.Product)
	req.Header.Set("X-Plex-Version", constant.Version)
	req.Header.Set("User-Agent", constant.UserAgent)
}

// do issues a request and decodes a JSON body into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	target := c.base + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return err
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer drainBody(resp)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Method: method, Path: path, Code: resp.StatusCode}
	}

	if out == nil {
		return nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return fmt.Errorf("%s %s: read body: %w", method, path, err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s %s: decode: %w", method, path, err)
	}
	return nil
}

func drainBody(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}
