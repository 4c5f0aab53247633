package renderer

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"

	"sjmori/vacancywatcher/logger"
	"sjmori/vacancywatcher/pkg/errors"
)

// ChromeOptions configures the headless browser session
type ChromeOptions struct {
	Headless    bool
	UserAgent   string
	PageTimeout time.Duration
}

// DefaultChromeOptions returns the options used in production
func DefaultChromeOptions(headless bool) ChromeOptions {
	return ChromeOptions{
		Headless:    headless,
		UserAgent:   "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		PageTimeout: 60 * time.Second,
	}
}

// ChromeSession implements Session on a shared chromedp browser; each
// NewPage call yields an independent tab context
type ChromeSession struct {
	opts       ChromeOptions
	browserCtx context.Context
	cancels    []context.CancelFunc
}

var _ Session = (*ChromeSession)(nil)

// NewChromeSession launches a headless browser for one check cycle
func NewChromeSession(ctx context.Context, opts ChromeOptions) (*ChromeSession, error) {
	execOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", false),
		chromedp.Flag("no-sandbox", true),
		chromedp.UserAgent(opts.UserAgent),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, execOpts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	// Start the browser eagerly so that session acquisition failures
	// surface as cycle-level errors, not as the first pair's error.
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, errors.NewRendering("session", "failed to start browser", err)
	}

	logger.ForRenderer().Debug().Bool("headless", opts.Headless).Msg("Browser session started")

	return &ChromeSession{
		opts:       opts,
		browserCtx: browserCtx,
		cancels:    []context.CancelFunc{cancelBrowser, cancelAlloc},
	}, nil
}

// NewPage opens an independent tab in the shared browser
func (s *ChromeSession) NewPage(ctx context.Context) (Page, error) {
	tabCtx, cancelTab := chromedp.NewContext(s.browserCtx)
	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, s.opts.PageTimeout)
	return &chromePage{
		ctx:     tabCtx,
		cancels: []context.CancelFunc{cancelTimeout, cancelTab},
	}, nil
}

// Close tears down the browser
func (s *ChromeSession) Close() error {
	for _, cancel := range s.cancels {
		cancel()
	}
	return nil
}

type chromePage struct {
	ctx     context.Context
	cancels []context.CancelFunc
}

var _ Page = (*chromePage)(nil)

func (p *chromePage) Navigate(ctx context.Context, url string) error {
	err := chromedp.Run(p.ctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
	)
	if err != nil {
		return errors.NewRendering("page", fmt.Sprintf("failed to navigate to %s", url), err)
	}
	return nil
}

func (p *chromePage) Content(ctx context.Context) (string, error) {
	var html string
	if err := chromedp.Run(p.ctx, chromedp.OuterHTML("html", &html)); err != nil {
		return "", errors.NewRendering("page", "failed to read page content", err)
	}
	return html, nil
}

// ClickNext clicks the first visible anchor or button whose text contains
// label. The booking engine renders its week-forward control as a plain
// text link, so matching on text is the only stable hook.
func (p *chromePage) ClickNext(ctx context.Context, label string) (bool, error) {
	script := fmt.Sprintf(`(() => {
		const label = %q;
		const candidates = document.querySelectorAll('a, button, input[type="button"]');
		for (const el of candidates) {
			const text = (el.innerText || el.value || '').trim();
			if (!text.includes(label)) continue;
			const rect = el.getBoundingClientRect();
			if (rect.width === 0 && rect.height === 0) continue;
			el.click();
			return true;
		}
		return false;
	})()`, label)

	var clicked bool
	if err := chromedp.Run(p.ctx, chromedp.Evaluate(script, &clicked)); err != nil {
		return false, errors.NewRendering("page", "failed to click pagination control", err)
	}
	return clicked, nil
}

func (p *chromePage) Close() error {
	for _, cancel := range p.cancels {
		cancel()
	}
	return nil
}
