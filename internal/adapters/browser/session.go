package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"review_scraper/internal/adapters/observability"
	"review_scraper/internal/domain"
)

type Options struct {
	Headless         bool
	ExecPath         string // empty: chromedp looks up Chrome itself
	NavTimeout       time.Duration
	ActionsPerSecond int
	UserAgent        string
}

// Session is one Chrome tab driven over the DevTools protocol.
// It implements domain.Browser.
type Session struct {
	tab         context.Context
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc
	rl          *rate.Limiter
	navTimeout  time.Duration
	log         zerolog.Logger
}

// New starts Chrome and opens a blank tab. Close releases both.
func New(ctx context.Context, o Options, log zerolog.Logger) (*Session, error) {
	if o.ActionsPerSecond <= 0 {
		o.ActionsPerSecond = 5
	}
	if o.NavTimeout <= 0 {
		o.NavTimeout = 30 * time.Second
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", o.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.WindowSize(1366, 900),
	)
	if o.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(o.ExecPath))
	}
	if o.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(o.UserAgent))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	tab, cancelTab := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(format string, args ...any) {
		log.Debug().Msgf(format, args...)
	}))

	// first Run launches the browser
	if err := chromedp.Run(tab); err != nil {
		cancelTab()
		cancelAlloc()
		return nil, fmt.Errorf("start chrome: %w", err)
	}
	log.Info().Bool("headless", o.Headless).Msg("browser started")

	return &Session{
		tab:         tab,
		cancelTab:   cancelTab,
		cancelAlloc: cancelAlloc,
		rl:          rate.NewLimiter(rate.Limit(o.ActionsPerSecond), o.ActionsPerSecond),
		navTimeout:  o.NavTimeout,
		log:         log,
	}, nil
}

func (s *Session) Close() error {
	s.cancelTab()
	s.cancelAlloc()
	s.log.Info().Msg("browser closed")
	return nil
}

// Open navigates and waits for the body. A page that is still loading when
// the navigation timeout fires is kept as is.
func (s *Session) Open(ctx context.Context, url string) error {
	err := s.run(ctx, "open", s.navTimeout,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		s.log.Warn().Str("url", url).Dur("timeout", s.navTimeout).Msg("page load timed out, continuing")
		return nil
	}
	return err
}

func (s *Session) WaitPresent(ctx context.Context, sel string, timeout time.Duration) error {
	return s.run(ctx, "wait", timeout, chromedp.WaitReady(sel, chromedp.ByQuery))
}

func (s *Session) Exists(ctx context.Context, sel string) (bool, error) {
	var n int
	err := s.run(ctx, "exists", 0,
		chromedp.EvaluateAsDevTools(fmt.Sprintf(`document.querySelectorAll(%s).length`, jsString(sel)), &n),
	)
	return n > 0, err
}

func (s *Session) OuterHTML(ctx context.Context, sel string) (string, error) {
	var out *string
	js := fmt.Sprintf(`(()=>{const el=document.querySelector(%s); return el ? el.outerHTML : null;})()`, jsString(sel))
	if err := s.run(ctx, "outer_html", 0, chromedp.EvaluateAsDevTools(js, &out)); err != nil {
		return "", err
	}
	if out == nil {
		return "", fmt.Errorf("%w: %s", domain.ErrNotFound, sel)
	}
	return *out, nil
}

func (s *Session) OuterHTMLAll(ctx context.Context, sel string) ([]string, error) {
	var out []string
	js := fmt.Sprintf(`Array.from(document.querySelectorAll(%s)).map(el=>el.outerHTML)`, jsString(sel))
	if err := s.run(ctx, "outer_html_all", 0, chromedp.EvaluateAsDevTools(js, &out)); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Session) SendKeys(ctx context.Context, sel, text string) error {
	return s.run(ctx, "send_keys", 0, chromedp.SendKeys(sel, text, chromedp.ByQuery))
}

func (s *Session) Submit(ctx context.Context, sel string) error {
	return s.run(ctx, "submit", s.navTimeout, chromedp.Submit(sel, chromedp.ByQuery))
}

// interactableJS rejects disabled controls and controls that are not rendered.
const interactableJS = `(el)=>!!el && !el.disabled && el.getClientRects().length>0 && getComputedStyle(el).visibility!=='hidden'`

// Click activates the first match through the DOM, which also reaches
// controls that are covered by overlays. A missing or non-interactable
// match yields domain.ErrNotFound.
func (s *Session) Click(ctx context.Context, sel string) error {
	js := fmt.Sprintf(`(()=>{
		const el=document.querySelector(%s);
		if(!(%s)(el)) return false;
		el.scrollIntoView({block:'center'});
		el.click();
		return true;
	})()`, jsString(sel), interactableJS)
	return s.clickJS(ctx, "click", sel, js)
}

func (s *Session) ClickNth(ctx context.Context, sel string, n int, inner string) error {
	js := fmt.Sprintf(`(()=>{
		const host=document.querySelectorAll(%s)[%d];
		if(!host) return false;
		const inner=%s;
		const el=inner ? host.querySelector(inner) : host;
		if(!(%s)(el)) return false;
		el.scrollIntoView({block:'center'});
		el.click();
		return true;
	})()`, jsString(sel), n, jsString(inner), interactableJS)
	return s.clickJS(ctx, "click_nth", fmt.Sprintf("%s[%d] %s", sel, n, inner), js)
}

func (s *Session) Back(ctx context.Context) error {
	err := s.run(ctx, "back", s.navTimeout,
		chromedp.NavigateBack(),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		s.log.Warn().Dur("timeout", s.navTimeout).Msg("back navigation timed out, continuing")
		return nil
	}
	return err
}

func (s *Session) clickJS(ctx context.Context, action, target, js string) error {
	var ok bool
	if err := s.run(ctx, action, 0, chromedp.EvaluateAsDevTools(js, &ok)); err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s missing or not interactable", domain.ErrNotFound, target)
	}
	return nil
}

// run executes actions on the tab. A timeout only bounds this call; the tab
// stays open. Cancelling ctx aborts the call as well.
func (s *Session) run(ctx context.Context, action string, timeout time.Duration, actions ...chromedp.Action) error {
	if err := s.rl.Wait(ctx); err != nil {
		return err
	}

	var (
		runCtx context.Context
		cancel context.CancelFunc
	)
	if timeout > 0 {
		runCtx, cancel = context.WithTimeout(s.tab, timeout)
	} else {
		runCtx, cancel = context.WithCancel(s.tab)
	}
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	start := time.Now()
	err := chromedp.Run(runCtx, actions...)
	observability.ObserveBrowser(action, err, time.Since(start))
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("browser %s: %w", action, err)
	}
	return nil
}

func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
