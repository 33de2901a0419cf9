package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"golang.org/x/time/rate"
)

const defaultMaxRetries = 2

type options struct {
	limiter     *rate.Limiter
	httpClient  *http.Client
	maxRetries  int
	temperature float64
	maxTokens   int
	batchSize   int
}

// Option configures a Client or EmbeddingsClient.
type Option func(*options)

// WithRateLimiter shares a request budget across clients. Each API call waits
// for one token.
func WithRateLimiter(limiter *rate.Limiter) Option {
	return func(o *options) { o.limiter = limiter }
}

// WithHTTPClient overrides the HTTP client used for API calls.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) { o.httpClient = client }
}

// WithMaxRetries sets how many times a failed call is retried by the SDK.
func WithMaxRetries(n int) Option {
	return func(o *options) { o.maxRetries = n }
}

// WithTemperature sets the default sampling temperature.
func WithTemperature(t float64) Option {
	return func(o *options) { o.temperature = t }
}

// WithMaxTokens sets the default completion token limit.
func WithMaxTokens(n int) Option {
	return func(o *options) { o.maxTokens = n }
}

// WithBatchSize caps how many texts are sent per embeddings request.
func WithBatchSize(n int) Option {
	return func(o *options) { o.batchSize = n }
}

func buildOptions(opts []Option) options {
	o := options{
		maxRetries:  defaultMaxRetries,
		temperature: 0.5,
		batchSize:   64,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// newAPIClient builds an OpenAI-compatible client. baseURL is the API root
// including its version segment, e.g. "http://localhost:8080/v1".
func newAPIClient(baseURL, apiKey string, o options) openai.Client {
	reqOpts := []option.RequestOption{
		option.WithBaseURL(strings.TrimRight(baseURL, "/") + "/"),
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(o.maxRetries),
	}
	if o.httpClient != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(o.httpClient))
	}
	return openai.NewClient(reqOpts...)
}

func wait(ctx context.Context, limiter *rate.Limiter) error {
	if limiter == nil {
		return nil
	}
	if err := limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	return nil
}

// wrapAPIError adds the HTTP status to SDK errors.
func wrapAPIError(op string, err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s: bad status %d: %w", op, apiErr.StatusCode, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
