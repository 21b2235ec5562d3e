package crawler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/wato-stats/internal/platform/logging"
	"github.com/riskibarqy/wato-stats/internal/platform/resilience"
	"github.com/riskibarqy/wato-stats/internal/usecase"
	"github.com/valyala/bytebufferpool"
	"github.com/valyala/fasthttp"
)

const (
	defaultUserAgent    = "Mozilla/5.0 (compatible; wato-stats/1.0)"
	defaultFetchTimeout = 15 * time.Second
	defaultRetryBackoff = time.Second
	defaultMaxBodyBytes = 4 << 20
)

var errFetchTransient = crerr.New("crawl fetch transient failure")

// IsTransient reports whether a fetch failure is worth retrying later.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, errFetchTransient)
}

type FetcherConfig struct {
	Client         *fasthttp.Client
	UserAgent      string
	Timeout        time.Duration
	MaxRetries     int
	RetryBackoff   time.Duration
	MaxBodyBytes   int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Fetcher downloads HTML pages from the forum. Concurrent requests for the
// same URL share one round trip.
type Fetcher struct {
	client       *fasthttp.Client
	userAgent    string
	timeout      time.Duration
	maxRetries   int
	retryBackoff time.Duration
	logger       *logging.Logger
	breaker      *resilience.CircuitBreaker
	flight       resilience.SingleFlight[[]byte]
}

func NewFetcher(cfg FetcherConfig) *Fetcher {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBodyBytes
	}
	client := cfg.Client
	if client == nil {
		client = &fasthttp.Client{
			Name:                     defaultUserAgent,
			MaxResponseBodySize:      maxBody,
			NoDefaultUserAgentHeader: true,
		}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	backoff := cfg.RetryBackoff
	if backoff <= 0 {
		backoff = defaultRetryBackoff
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	return &Fetcher{
		client:       client,
		userAgent:    userAgent,
		timeout:      timeout,
		maxRetries:   max(cfg.MaxRetries, 0),
		retryBackoff: backoff,
		logger:       logger,
		breaker:      resilience.NewCircuitBreakerFromConfig(resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)),
	}
}

func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	body, err, _ := f.flight.Do(rawURL, func() ([]byte, error) {
		var out []byte
		guardErr := f.breaker.Guard(func() error {
			var reqErr error
			out, reqErr = f.executeRequest(ctx, rawURL)
			return reqErr
		}, IsTransient)
		return out, guardErr
	})
	if err != nil {
		if errors.Is(err, resilience.ErrCircuitOpen) {
			f.logger.WarnContext(ctx, "crawl circuit breaker rejected request", "url", rawURL, "state", f.breaker.State())
			return nil, fmt.Errorf("%w: source site is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
		return nil, err
	}

	return body, nil
}

func (f *Fetcher) executeRequest(ctx context.Context, rawURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= f.maxRetries; attempt++ {
		body, status, err := f.doOnce(ctx, rawURL)
		switch {
		case err != nil:
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			if errors.Is(err, fasthttp.ErrBodyTooLarge) {
				return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
			}
			lastErr = fmt.Errorf("%w: send request: %v", errFetchTransient, err)
		case status >= 200 && status < 300:
			return body, nil
		case isRetryableStatus(status):
			lastErr = fmt.Errorf("%w: source status=%d url=%s", errFetchTransient, status, rawURL)
		default:
			return nil, fmt.Errorf("source status=%d url=%s", status, rawURL)
		}

		if attempt == f.maxRetries {
			break
		}
		timer := time.NewTimer(time.Duration(attempt+1) * f.retryBackoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("%w: fetch failed", errFetchTransient)
	}
	f.logger.WarnContext(ctx, "crawl fetch failed", "url", rawURL, "retries", f.maxRetries, "error", lastErr)
	return nil, lastErr
}

func (f *Fetcher) doOnce(ctx context.Context, rawURL string) ([]byte, int, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(rawURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.SetUserAgent(f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	deadline := time.Now().Add(f.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	if err := f.client.DoDeadline(req, resp, deadline); err != nil {
		return nil, 0, err
	}

	status := resp.StatusCode()
	if status < 200 || status >= 300 {
		return nil, status, nil
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	if err := resp.BodyWriteTo(buf); err != nil {
		return nil, status, fmt.Errorf("read response body: %w", err)
	}
	body := make([]byte, buf.Len())
	copy(body, buf.B)
	return body, status, nil
}

func isRetryableStatus(code int) bool {
	return code == fasthttp.StatusRequestTimeout ||
		code == fasthttp.StatusTooManyRequests ||
		code >= fasthttp.StatusInternalServerError
}
