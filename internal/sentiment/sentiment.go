// Package sentiment wraps the external inference service that labels
// article text. Model output is never trusted to be well-formed JSON and
// every failure mode degrades to a neutral verdict instead of aborting the
// batch.
package sentiment

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/generative-ai-go/genai"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"

	"github.com/egysentiment/collector/internal/cache"
	"github.com/egysentiment/collector/internal/logger"
	"github.com/egysentiment/collector/internal/ratelimit"
)

// Canonical sentiment labels.
const (
	Positive = "positive"
	Negative = "negative"
	Neutral  = "neutral"
)

// Result is the outcome of one classification. Degraded results carry the
// default neutral verdict plus a diagnostic so callers and tests can tell a
// real neutral from a swallowed failure.
type Result struct {
	Sentiment string
	Reasoning string
	Degraded  bool
}

func ok(sentiment, reasoning string) Result {
	return Result{Sentiment: sentiment, Reasoning: reasoning}
}

func degraded(diagnostic string) Result {
	return Result{Sentiment: Neutral, Reasoning: diagnostic, Degraded: true}
}

// Score maps a sentiment label to its numeric feature value. Unrecognized
// labels score zero.
func Score(sentiment string) int {
	switch Normalize(sentiment) {
	case Positive:
		return 1
	case Negative:
		return -1
	default:
		return 0
	}
}

// Normalize folds a raw model label onto the canonical set; anything
// unrecognized becomes neutral.
func Normalize(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case Positive:
		return Positive
	case Negative:
		return Negative
	default:
		return Neutral
	}
}

type Options struct {
	Model          string
	RateLimitDelay time.Duration
	CallTimeout    time.Duration
	MaxPromptChars int
	Budget         *ratelimit.Budget
	CacheTTL       time.Duration
}

// Client calls the inference service, pacing requests to stay under the
// service's 30 RPM ceiling. The pacer is a single shared slot: even if
// callers ever run in parallel, calls to the service stay serialized at the
// configured spacing.
type Client struct {
	client  *genai.Client
	model   *genai.GenerativeModel
	pacer   *rate.Limiter
	budget  *ratelimit.Budget
	cache   *cache.Cache
	timeout time.Duration
	ttl     time.Duration
	maxLen  int
}

func NewClient(ctx context.Context, apiKey string, opts Options) (*Client, error) {
	gc, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create inference client: %w", err)
	}

	model := gc.GenerativeModel(opts.Model)
	model.SetTemperature(0.3)
	model.SetMaxOutputTokens(150)

	return &Client{
		client:  gc,
		model:   model,
		pacer:   rate.NewLimiter(rate.Every(opts.RateLimitDelay), 1),
		budget:  opts.Budget,
		cache:   cache.New(),
		timeout: opts.CallTimeout,
		ttl:     opts.CacheTTL,
		maxLen:  opts.MaxPromptChars,
	}, nil
}

func (c *Client) Close() {
	if c.client != nil {
		c.client.Close()
	}
}

// Classify labels one article text. It never returns an error: any failure
// (budget, transport, timeout, unparseable output) comes back as a Degraded
// neutral result.
func (c *Client) Classify(ctx context.Context, text string) Result {
	key := cache.Key(text)
	if v, hit := c.cache.Get(key); hit {
		if res, isResult := v.(Result); isResult {
			return res
		}
	}

	if c.budget != nil {
		if err := c.budget.Use(); err != nil {
			return degraded(err.Error())
		}
	}

	// The spacing is enforced unconditionally; a fast response does not buy
	// back quota.
	if err := c.pacer.Wait(ctx); err != nil {
		return degraded(fmt.Sprintf("rate limiter interrupted: %v", err))
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.model.GenerateContent(callCtx, genai.Text(Prompt(text, c.maxLen)))
	if err != nil {
		logger.Warn("inference call failed", "error", err)
		return degraded(fmt.Sprintf("inference error: %v", err))
	}

	raw, err := responseText(resp)
	if err != nil {
		return degraded(err.Error())
	}

	label, reasoning, err := RecoverJSON(raw)
	if err != nil {
		logger.Warn("unparseable model output", "error", err)
		return degraded("parsing_error")
	}

	res := ok(Normalize(label), reasoning)
	c.cache.Set(key, res, c.ttl)
	return res
}

// Prompt builds the single-message analysis prompt, truncating the article
// to maxChars runes.
func Prompt(text string, maxChars int) string {
	if utf8.RuneCountInString(text) > maxChars {
		text = string([]rune(text)[:maxChars])
	}

	return fmt.Sprintf(`Analyze the sentiment of this Egyptian financial news article.

Article: %s

Respond ONLY with valid JSON in this exact format:
{"sentiment": "positive/negative/neutral", "reasoning": "brief explanation"}`, text)
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from inference service")
	}
	if txt, isText := resp.Candidates[0].Content.Parts[0].(genai.Text); isText {
		return string(txt), nil
	}
	return fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0]), nil
}
