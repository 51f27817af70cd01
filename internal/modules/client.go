package modules

import (
	"context"
	"errors"
	"fmt"
	neturl "net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/GriffinCanCode/modulekit/internal/infrastructure/resilience"
)

// ClientConfig configures the HTTP client shared by remote modules.
type ClientConfig struct {
	Timeout      time.Duration
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	// RateLimit is requests per second; 0 is unlimited.
	RateLimit float64
	UserAgent string
	Breaker   resilience.Settings
	Logger    *zap.Logger
}

// DefaultClientConfig returns production defaults.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Timeout:      10 * time.Second,
		RetryMax:     3,
		RetryWaitMin: 500 * time.Millisecond,
		RetryWaitMax: 5 * time.Second,
		UserAgent:    "modulekit/1.0",
		Breaker: resilience.Settings{
			MaxRequests: 5,
			Interval:    60 * time.Second,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts resilience.Counts) bool {
				// Trip on 10+ consecutive failures or >70% failures over 20+ requests
				return counts.ConsecutiveFailures >= 10 ||
					(counts.Requests >= 20 && float64(counts.TotalFailures)/float64(counts.Requests) > 0.7)
			},
		},
	}
}

// Client wraps resty with retries, rate limiting, and circuit breaking
type Client struct {
	resty    *resty.Client
	limiter  *rate.Limiter
	breakers *resilience.Group
}

// NewClient creates an HTTP client. Retries happen in the retryablehttp
// transport; each host gets its own circuit breaker.
func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = cfg.RetryMax
	retryClient.RetryWaitMin = cfg.RetryWaitMin
	retryClient.RetryWaitMax = cfg.RetryWaitMax
	retryClient.Logger = leveledLogger{logger.Sugar()}

	restyClient := resty.NewWithClient(retryClient.StandardClient()).
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", cfg.UserAgent)

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RateLimit > 0 {
		burst := int(cfg.RateLimit)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	return &Client{
		resty:    restyClient,
		limiter:  limiter,
		breakers: resilience.NewGroup(cfg.Breaker),
	}
}

// Fetch GETs url and returns the body decoded to UTF-8. Non-2xx responses
// and non-text bodies are errors.
func (c *Client) Fetch(ctx context.Context, url string, headers map[string]string) (string, error) {
	req, err := c.request(ctx)
	if err != nil {
		return "", err
	}
	req.SetHeaders(headers)

	var resp *resty.Response
	err = c.breakers.Get(hostOf(url)).Do(func() error {
		var err error
		resp, err = req.Get(url)
		if err != nil {
			return err
		}
		if resp.IsError() {
			return fmt.Errorf("unexpected status %s", resp.Status())
		}
		return nil
	})
	if errors.Is(err, resilience.ErrCircuitOpen) {
		return "", fmt.Errorf("remote unavailable: %w", err)
	}
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}

	body, err := decodeBody(resp.Body(), resp.Header().Get("Content-Type"))
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	return body, nil
}

// BreakerStates returns the state of every host breaker.
func (c *Client) BreakerStates() map[string]resilience.State {
	return c.breakers.States()
}

// request creates a request after waiting for the rate limiter
func (c *Client) request(ctx context.Context) (*resty.Request, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit error: %w", err)
	}
	return c.resty.R().SetContext(ctx), nil
}

func hostOf(rawURL string) string {
	u, err := neturl.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return u.Host
}

// leveledLogger adapts zap to retryablehttp.LeveledLogger.
type leveledLogger struct {
	s *zap.SugaredLogger
}

func (l leveledLogger) Error(msg string, kv ...interface{}) { l.s.Errorw(msg, kv...) }
func (l leveledLogger) Info(msg string, kv ...interface{})  { l.s.Debugw(msg, kv...) }
func (l leveledLogger) Debug(msg string, kv ...interface{}) { l.s.Debugw(msg, kv...) }
func (l leveledLogger) Warn(msg string, kv ...interface{})  { l.s.Warnw(msg, kv...) }
