package fetch

import (
	"context"
	"net/http"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"

	"github.com/adscout/scrape/pkg/models"
)

// BrowserOptions configures the browser-automation fetch mode.
type BrowserOptions struct {
	Headless       bool
	ChromePath     string
	WaitTimeout    time.Duration // bound on waiting for the content selector
	ScrollDelay    time.Duration // pause between scroll-and-wait cycles
	MaxScrolls     int           // default cap when the caller does not set one
	ViewportWidth  int64
	ViewportHeight int64
}

// DefaultBrowserOptions mirrors the plain-HTTP identity: same headers, a
// desktop viewport, headless by default.
func DefaultBrowserOptions() BrowserOptions {
	return BrowserOptions{
		Headless:       true,
		WaitTimeout:    10 * time.Second,
		ScrollDelay:    1500 * time.Millisecond,
		MaxScrolls:     10,
		ViewportWidth:  1920,
		ViewportHeight: 1080,
	}
}

// stealthScript suppresses the automation signals page scripts check for.
const stealthScript = `
Object.defineProperty(navigator, 'webdriver', {get: () => undefined});
Object.defineProperty(navigator, 'languages', {get: () => ['en-US', 'en']});
Object.defineProperty(navigator, 'plugins', {get: () => [1, 2, 3, 4, 5]});
window.chrome = window.chrome || {runtime: {}};
`

// fetchBrowser drives one headless browser session: navigate, wait for a
// content-bearing selector (non-fatal on timeout), then scroll until the
// page height stabilizes or the scroll budget runs out. Each call owns its
// own browser context; sessions are never shared across concurrent
// fetches.
func (f *Fetcher) fetchBrowser(ctx context.Context, urlStr string, opts models.RequestOptions, ua string) (*models.FetchResponse, error) {
	cfg := f.browser
	if cfg.ViewportWidth == 0 {
		cfg = DefaultBrowserOptions()
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	allocOpts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-infobars", true),
		chromedp.Flag("mute-audio", true),
		chromedp.WindowSize(int(cfg.ViewportWidth), int(cfg.ViewportHeight)),
		chromedp.UserAgent(ua),
	}
	if cfg.ChromePath != "" {
		allocOpts = append([]chromedp.ExecAllocatorOption{chromedp.ExecPath(cfg.ChromePath)}, allocOpts...)
	}
	if cfg.Headless {
		allocOpts = append(allocOpts, chromedp.Flag("headless", "new"))
	}
	if opts.Proxy != "" {
		allocOpts = append(allocOpts, chromedp.ProxyServer(opts.Proxy))
	}

	runCtx, cancelTimeout := context.WithTimeout(ctx, timeout)
	defer cancelTimeout()

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(runCtx, allocOpts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	pageData := &models.FetchResponse{
		Headers:   make(map[string]string),
		FetchedAt: time.Now(),
	}

	var statusCode int64
	chromedp.ListenTarget(browserCtx, func(ev interface{}) {
		if resp, ok := ev.(*network.EventResponseReceived); ok && resp.Response.URL == urlStr {
			statusCode = resp.Response.Status
			for key, value := range resp.Response.Headers {
				if s, ok := value.(string); ok {
					pageData.Headers[key] = s
				}
			}
		}
	})

	headers := network.Headers{"Referer": randomReferrer()}
	for key, value := range browserHeaders {
		headers[key] = value
	}
	for key, value := range opts.Headers {
		headers[key] = value
	}

	var htmlContent string
	tasks := chromedp.Tasks{
		network.Enable(),
		network.SetExtraHTTPHeaders(headers),
		chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := page.AddScriptToEvaluateOnNewDocument(stealthScript).Do(ctx)
			return err
		}),
		chromedp.EmulateViewport(cfg.ViewportWidth, cfg.ViewportHeight),
		chromedp.Navigate(urlStr),
	}

	if opts.WaitSelector != "" {
		tasks = append(tasks, waitForSelector(opts.WaitSelector, cfg.WaitTimeout))
	}
	scrolls := opts.ScrollPages
	if scrolls <= 0 {
		scrolls = cfg.MaxScrolls
	}
	if scrolls > 0 {
		tasks = append(tasks, scrollUntilStable(scrolls, cfg.ScrollDelay))
	}

	tasks = append(tasks, chromedp.OuterHTML("html", &htmlContent, chromedp.ByQuery))

	if err := chromedp.Run(browserCtx, tasks...); err != nil {
		return nil, err
	}

	pageData.Body = htmlContent
	pageData.Status = int(statusCode)
	if pageData.Status == 0 {
		pageData.Status = http.StatusOK
	}
	return pageData, nil
}

// waitForSelector blocks until the selector appears or the bound elapses.
// A timeout is not an error: script-rendered pages sometimes render the
// content under a different container, and the caller still wants whatever
// markup is present.
func waitForSelector(selector string, bound time.Duration) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		waitCtx, cancel := context.WithTimeout(ctx, bound)
		defer cancel()

		err := chromedp.WaitVisible(selector, chromedp.ByQuery).Do(waitCtx)
		if err != nil {
			log.Debug().Str("selector", selector).Err(err).Msg("Content selector did not appear within bound")
		}
		return nil
	})
}

// scrollUntilStable performs repeated scroll-and-wait cycles, stopping
// early once document height is unchanged across two consecutive scrolls.
func scrollUntilStable(maxScrolls int, delay time.Duration) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		var prevHeight int64 = -1

		for i := 0; i < maxScrolls; i++ {
			if err := chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil).Do(ctx); err != nil {
				return err
			}

			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}

			var height int64
			if err := chromedp.Evaluate(`document.body.scrollHeight`, &height).Do(ctx); err != nil {
				return err
			}

			if height == prevHeight {
				log.Debug().Int("scrolls", i+1).Int64("height", height).Msg("Page height stabilized")
				return nil
			}
			prevHeight = height
		}
		return nil
	})
}
