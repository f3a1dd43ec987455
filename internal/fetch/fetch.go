// Package fetch downloads pages through an ordered chain of transport
// policies. Several regional news sites present broken certificate chains;
// the first policy verifies TLS normally, the second relaxes verification.
// A policy that fails for any reason hands over to the next one, so a TLS
// failure and a generic transport failure both end up on the relaxed tier
// before the source is given up on.
package fetch

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/egysentiment/collector/internal/identity"
	"github.com/egysentiment/collector/internal/logger"
)

// Policy is one transport tier in the fallback chain.
type Policy struct {
	Name   string
	Client *http.Client
}

// Chain tries its policies in order until one succeeds.
type Chain struct {
	policies []Policy
	ua       identity.Provider
}

func NewChain(ua identity.Provider, policies ...Policy) *Chain {
	return &Chain{policies: policies, ua: ua}
}

// DefaultChain builds the standard two-tier chain: verified TLS, then
// relaxed verification.
func DefaultChain(timeout time.Duration, ua identity.Provider) *Chain {
	insecure := &http.Transport{
		Proxy:           http.ProxyFromEnvironment,
		TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec
	}
	return NewChain(ua,
		Policy{Name: "verified", Client: &http.Client{Timeout: timeout}},
		Policy{Name: "relaxed", Client: &http.Client{Timeout: timeout, Transport: insecure}},
	)
}

// Get fetches rawURL, walking the policy chain. The accept header hints the
// expected content type (feeds vs listing pages).
func (c *Chain) Get(ctx context.Context, rawURL, accept string) ([]byte, error) {
	var lastErr error

	for _, p := range c.policies {
		body, err := c.getOnce(ctx, p.Client, rawURL, accept)
		if err == nil {
			return body, nil
		}
		lastErr = err

		if isCertError(err) {
			logger.Debug("certificate verification failed, trying next policy",
				"url", rawURL, "policy", p.Name, "error", err)
		} else {
			logger.Debug("fetch failed, trying next policy",
				"url", rawURL, "policy", p.Name, "error", err)
		}
	}

	return nil, fmt.Errorf("all transport policies exhausted for %s: %w", rawURL, lastErr)
}

func (c *Chain) getOnce(ctx context.Context, client *http.Client, rawURL, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", c.ua.Next())
	req.Header.Set("Accept", accept)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9,ar;q=0.8")
	req.Header.Set("Connection", "keep-alive")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, rawURL)
	}

	return io.ReadAll(resp.Body)
}

func isCertError(err error) bool {
	var certErr *tls.CertificateVerificationError
	return errors.As(err, &certErr)
}

// Accept header values used by the acquisition channels.
const (
	AcceptFeed = "application/rss+xml, application/xml, text/xml, */*"
	AcceptHTML = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
)
