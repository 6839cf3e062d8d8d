// Package fetch implements the resilient page fetcher: retry with jittered
// exponential backoff, per-attempt header rotation, optional proxying, a
// TTL response cache, and a browser-automation mode for script-rendered
// pages.
package fetch

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/adscout/scrape/internal/cache"
	"github.com/adscout/scrape/internal/proxy"
	"github.com/adscout/scrape/internal/ratelimit"
	"github.com/adscout/scrape/internal/retry"
	"github.com/adscout/scrape/internal/urlutil"
	"github.com/adscout/scrape/pkg/models"
	"github.com/rs/zerolog/log"
)

// DeniedMarker is the body of the synthetic response returned after retry
// exhaustion. Callers branch on status, not on errors.
const DeniedMarker = "access denied"

const defaultTimeout = 30 * time.Second

// Fetcher issues single HTTP(S) requests under adversarial conditions.
// All collaborators are injected; Limiter and Proxies may be nil.
type Fetcher struct {
	client  *http.Client
	cache   *cache.Store
	limiter ratelimit.Limiter
	proxies *proxy.Pool
	retry   retry.Config
	browser BrowserOptions
}

// New creates a Fetcher. A nil client gets a default with sane transport
// limits; a nil store disables caching.
func New(client *http.Client, store *cache.Store, limiter ratelimit.Limiter, proxies *proxy.Pool, retryCfg retry.Config, browser BrowserOptions) *Fetcher {
	if client == nil {
		client = &http.Client{
			Timeout: defaultTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}
	if retryCfg.MaxAttempts <= 0 {
		retryCfg = retry.DefaultConfig()
	}
	return &Fetcher{
		client:  client,
		cache:   store,
		limiter: limiter,
		proxies: proxies,
		retry:   retryCfg,
		browser: browser,
	}
}

// Fetch retrieves urlStr with retries. The error return is reserved for
// caller-input problems (malformed URL); every target-side failure mode
// resolves to a response, with retry exhaustion producing a synthetic 403
// whose body is DeniedMarker.
func (f *Fetcher) Fetch(ctx context.Context, urlStr string, opts models.RequestOptions) (*models.FetchResponse, error) {
	if err := urlutil.Validate(urlStr); err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	// Cache short-circuits the network entirely, including attempt 0.
	if method == http.MethodGet && f.cache != nil {
		if cached, ok := f.cache.Get(method, urlStr); ok {
			cached.FromCache = true
			return cached, nil
		}
	}

	var lastStatus int
	for attempt := 0; attempt < f.retry.MaxAttempts; attempt++ {
		if f.limiter != nil {
			if err := f.limiter.Wait(ctx, urlStr); err != nil {
				break // context cancelled; fall through to synthetic denial
			}
		}

		resp, err := f.attempt(ctx, method, urlStr, opts)
		if err != nil {
			log.Debug().
				Err(err).
				Int("attempt", attempt+1).
				Int("max_attempts", f.retry.MaxAttempts).
				Str("url", urlStr).
				Msg("Fetch attempt failed")
		} else if resp.Status == http.StatusForbidden {
			// Blocked; retry under a freshly rotated user agent.
			lastStatus = resp.Status
			log.Debug().
				Int("attempt", attempt+1).
				Str("url", urlStr).
				Msg("Received 403, rotating identity")
		} else {
			resp.Attempts = attempt + 1
			if method == http.MethodGet && f.cache != nil && resp.OK() {
				f.cache.Set(method, urlStr, *resp)
			}
			return resp, nil
		}

		if attempt < f.retry.MaxAttempts-1 {
			if err := retry.Sleep(ctx, f.retry.Backoff(attempt)); err != nil {
				break
			}
		}
	}

	log.Warn().
		Str("url", urlStr).
		Int("attempts", f.retry.MaxAttempts).
		Int("last_status", lastStatus).
		Msg("Retries exhausted, returning synthetic denial")

	return &models.FetchResponse{
		Status:    http.StatusForbidden,
		Headers:   map[string]string{},
		Body:      DeniedMarker,
		Attempts:  f.retry.MaxAttempts,
		FetchedAt: time.Now(),
	}, nil
}

// attempt performs one request with a rotated identity. Network errors are
// returned for the retry loop to classify.
func (f *Fetcher) attempt(ctx context.Context, method, urlStr string, opts models.RequestOptions) (*models.FetchResponse, error) {
	ua := randomUserAgent()
	referrer := randomReferrer()

	if opts.UseBrowser {
		return f.fetchBrowser(ctx, urlStr, opts, ua)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = f.client.Timeout
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, method, urlStr, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", ua)
	req.Header.Set("Referer", referrer)
	for key, value := range browserHeaders {
		req.Header.Set(key, value)
	}
	for key, value := range opts.Headers {
		req.Header.Set(key, value)
	}

	client := f.client
	proxyURL := opts.Proxy
	if proxyURL == "" && f.proxies != nil {
		proxyURL = f.proxies.Next()
	}
	if proxyURL != "" {
		p, perr := url.Parse(proxyURL)
		if perr == nil {
			client = &http.Client{
				Timeout:   timeout,
				Transport: &http.Transport{Proxy: http.ProxyURL(p)},
			}
		}
	}

	httpResp, err := client.Do(req)
	if err != nil {
		if f.proxies != nil {
			f.proxies.MarkFailed(proxyURL)
		}
		return nil, err
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, err
	}
	if f.proxies != nil {
		f.proxies.MarkHealthy(proxyURL)
	}

	headers := make(map[string]string, len(httpResp.Header))
	for key, values := range httpResp.Header {
		if len(values) > 0 {
			headers[key] = values[0]
		}
	}

	return &models.FetchResponse{
		Status:    httpResp.StatusCode,
		Headers:   headers,
		Body:      string(body),
		FetchedAt: time.Now(),
	}, nil
}
