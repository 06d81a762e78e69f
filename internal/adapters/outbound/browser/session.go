// Package browser hosts the live document in a headless Chrome tab driven by
// chromedp. Element handles are tokens into a registry kept inside the page,
// so a handle always refers to the node captured when it was resolved.
package browser

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/a11yfix/a11yfix/internal/domain"
	"github.com/a11yfix/a11yfix/internal/logging"
)

// Registry is the page global holding resolved elements.
const Registry = "__a11yfix"

// Session is one browser tab. It implements domain.LiveDocument and
// domain.Navigator.
type Session struct {
	ctx     context.Context
	cancel  context.CancelFunc
	timeout time.Duration
	log     *zap.Logger

	mu   sync.Mutex
	next int
}

// AllocatorOptions builds the Chrome flags for cfg.
func AllocatorOptions(cfg domain.BrowserConfig) []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.IsHeadless()),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
	)
	if cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ExecPath))
	}
	if cfg.ViewportWidth > 0 && cfg.ViewportHeight > 0 {
		opts = append(opts, chromedp.WindowSize(cfg.ViewportWidth, cfg.ViewportHeight))
	}
	return opts
}

// New starts a browser and opens a blank tab. Close releases both.
func New(ctx context.Context, cfg domain.BrowserConfig, log *zap.Logger) (*Session, error) {
	log = logging.OrNop(log)

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.WithoutCancel(ctx), AllocatorOptions(cfg)...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(log.Sugar().Debugf),
		chromedp.WithErrorf(log.Sugar().Debugf),
	)
	cancel := func() {
		tabCancel()
		allocCancel()
	}

	// The first Run starts the browser; it must use the long-lived tab context.
	if err := chromedp.Run(tabCtx); err != nil {
		cancel()
		return nil, fmt.Errorf("%w: starting browser: %w", domain.ErrValidationFailure, err)
	}

	log.Debug("browser started", zap.Bool("headless", cfg.IsHeadless()))
	return &Session{ctx: tabCtx, cancel: cancel, timeout: cfg.Timeout(), log: log}, nil
}

// Close shuts the browser down.
func (s *Session) Close() error {
	s.cancel()
	return nil
}

// Navigate loads url and waits for the body to be ready.
func (s *Session) Navigate(ctx context.Context, url string) error {
	return s.run(ctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
}

// Evaluate runs a JavaScript expression in the page, awaiting a returned
// promise, and decodes the result into out.
func (s *Session) Evaluate(ctx context.Context, expr string, out any) error {
	return s.run(ctx, chromedp.Evaluate(expr, out, func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
		return p.WithAwaitPromise(true)
	}))
}

func (s *Session) Resolve(ctx context.Context, selector string) (domain.ElementHandle, error) {
	s.mu.Lock()
	s.next++
	token := "h" + strconv.Itoa(s.next)
	s.mu.Unlock()

	expr, err := Call(resolveJS, selector, token)
	if err != nil {
		return "", err
	}
	var res struct {
		Found bool   `json:"found"`
		Error string `json:"error"`
	}
	if err := s.Evaluate(ctx, expr, &res); err != nil {
		return "", err
	}
	if res.Error != "" {
		return "", fmt.Errorf("%w: %s: %s", domain.ErrNotFound, selector, res.Error)
	}
	if !res.Found {
		return "", fmt.Errorf("%w: %s", domain.ErrNotFound, selector)
	}
	return domain.ElementHandle(token), nil
}

func (s *Session) Markup(ctx context.Context, h domain.ElementHandle) (string, error) {
	expr, err := Call(markupJS, string(h))
	if err != nil {
		return "", err
	}
	var out string
	if err := s.Evaluate(ctx, expr, &out); err != nil {
		return "", err
	}
	return out, nil
}

func (s *Session) Replace(ctx context.Context, h domain.ElementHandle, markup string) error {
	return s.mutate(ctx, replaceJS, string(h), markup)
}

func (s *Session) Restore(ctx context.Context, h domain.ElementHandle) error {
	return s.mutate(ctx, restoreJS, string(h))
}

func (s *Session) Release(ctx context.Context, h domain.ElementHandle) error {
	return s.mutate(ctx, releaseJS, string(h))
}

func (s *Session) mutate(ctx context.Context, fn string, args ...any) error {
	expr, err := Call(fn, args...)
	if err != nil {
		return err
	}
	var ok bool
	return s.Evaluate(ctx, expr, &ok)
}

// run executes actions on the tab, bounded by the session timeout and
// cancelled together with ctx.
func (s *Session) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if err := chromedp.Run(runCtx, actions...); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		var exc *runtime.ExceptionDetails
		if errors.As(err, &exc) {
			return fmt.Errorf("page script: %w", err)
		}
		return fmt.Errorf("browser: %w", err)
	}
	return nil
}

// Call renders a call of the JavaScript function source fn with args encoded
// as JSON literals.
func Call(fn string, args ...any) (string, error) {
	enc := make([]string, len(args))
	for i, a := range args {
		var buf bytes.Buffer
		e := json.NewEncoder(&buf)
		e.SetEscapeHTML(false)
		if err := e.Encode(a); err != nil {
			return "", fmt.Errorf("encoding script argument %d: %w", i, err)
		}
		enc[i] = strings.TrimSuffix(buf.String(), "\n")
	}
	return "(" + strings.TrimSpace(fn) + ")(" + strings.Join(enc, ", ") + ")", nil
}
