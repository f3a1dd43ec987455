package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/egysentiment/collector/internal/identity"
)

func TestChainFirstPolicyWins(t *testing.T) {
	var gotUA, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		fmt.Fprint(w, "payload")
	}))
	defer srv.Close()

	chain := DefaultChain(5*time.Second, identity.Static("browser-ua"))
	body, err := chain.Get(context.Background(), srv.URL, AcceptHTML)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(body))
	assert.Equal(t, "browser-ua", gotUA)
	assert.Equal(t, AcceptHTML, gotAccept)
}

func TestChainFallsThroughOnFailure(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, "second tier")
	}))
	defer srv.Close()

	failing := Policy{Name: "broken", Client: &http.Client{
		Timeout:   time.Second,
		Transport: roundTripperFunc(func(*http.Request) (*http.Response, error) {
			return nil, fmt.Errorf("simulated transport failure")
		}),
	}}
	working := Policy{Name: "working", Client: &http.Client{Timeout: 5 * time.Second}}

	chain := NewChain(identity.Static("ua"), failing, working)
	body, err := chain.Get(context.Background(), srv.URL, AcceptFeed)
	require.NoError(t, err)
	assert.Equal(t, "second tier", string(body))
	assert.Equal(t, 1, calls, "only the working tier reaches the server")
}

func TestChainAllPoliciesExhausted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	chain := DefaultChain(5*time.Second, identity.Static("ua"))
	_, err := chain.Get(context.Background(), srv.URL, AcceptHTML)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all transport policies exhausted")
	assert.Contains(t, err.Error(), "HTTP 502")
}

func TestChainRelaxedTierAcceptsSelfSigned(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "tls payload")
	}))
	defer srv.Close()

	// The verified tier rejects the self-signed certificate; the relaxed
	// tier must still deliver.
	chain := DefaultChain(5*time.Second, identity.Static("ua"))
	body, err := chain.Get(context.Background(), srv.URL, AcceptHTML)
	require.NoError(t, err)
	assert.Equal(t, "tls payload", string(body))
}

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }
