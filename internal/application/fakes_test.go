package application_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/a11yfix/a11yfix/internal/domain"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeDocument is an in-memory live document keyed by selector.
type fakeDocument struct {
	mu        sync.Mutex
	markup    map[string]string
	handles   map[domain.ElementHandle]string
	snapshots map[domain.ElementHandle]string
	next      int

	failReplace error
	failRestore error
	skipRestore bool

	inFlight    atomic.Int32
	maxInFlight atomic.Int32
	replaceHold time.Duration
	navigated   []string
	resolved    []string
}

func newFakeDocument(markup map[string]string) *fakeDocument {
	return &fakeDocument{
		markup:    markup,
		handles:   map[domain.ElementHandle]string{},
		snapshots: map[domain.ElementHandle]string{},
	}
}

func (d *fakeDocument) Navigate(_ context.Context, url string) error {
	d.navigated = append(d.navigated, url)
	return nil
}

func (d *fakeDocument) Resolve(_ context.Context, selector string) (domain.ElementHandle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.resolved = append(d.resolved, selector)
	m, ok := d.markup[selector]
	if !ok {
		return "", fmt.Errorf("%w: %s", domain.ErrNotFound, selector)
	}
	d.next++
	h := domain.ElementHandle(fmt.Sprintf("h%d", d.next))
	d.handles[h] = selector
	d.snapshots[h] = m
	return h, nil
}

func (d *fakeDocument) Markup(_ context.Context, h domain.ElementHandle) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	sel, ok := d.handles[h]
	if !ok {
		return "", errors.New("stale handle")
	}
	return d.markup[sel], nil
}

func (d *fakeDocument) Replace(_ context.Context, h domain.ElementHandle, markup string) error {
	n := d.inFlight.Add(1)
	defer d.inFlight.Add(-1)
	for {
		cur := d.maxInFlight.Load()
		if n <= cur || d.maxInFlight.CompareAndSwap(cur, n) {
			break
		}
	}
	if d.replaceHold > 0 {
		time.Sleep(d.replaceHold)
	}

	if d.failReplace != nil {
		return d.failReplace
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.markup[d.handles[h]] = markup
	return nil
}

func (d *fakeDocument) Restore(_ context.Context, h domain.ElementHandle) error {
	if d.failRestore != nil {
		return d.failRestore
	}
	if d.skipRestore {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.markup[d.handles[h]] = d.snapshots[h]
	return nil
}

func (d *fakeDocument) Release(_ context.Context, h domain.ElementHandle) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.handles, h)
	delete(d.snapshots, h)
	return nil
}

func (d *fakeDocument) get(selector string) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.markup[selector]
}

// altChecker reports image-alt for any <img> without an alt attribute in the
// element under check.
type altChecker struct {
	doc   *fakeDocument
	err   error
	panic bool
	extra []domain.Violation
	calls int
}

func (c *altChecker) Check(ctx context.Context, scope domain.ElementHandle) ([]domain.Violation, error) {
	c.calls++
	if c.panic {
		panic("checker exploded")
	}
	if c.err != nil {
		return nil, c.err
	}
	m, err := c.doc.Markup(ctx, scope)
	if err != nil {
		return nil, err
	}
	out := append([]domain.Violation{}, c.extra...)
	if strings.Contains(m, "<img") && !strings.Contains(m, "alt=") {
		out = append(out, domain.Violation{RuleID: "image-alt", Impact: "critical", Description: "Images must have alternate text"})
	}
	return out, nil
}

// scriptedConfirmer answers from a fixed list, then declines.
type scriptedConfirmer struct {
	answers []bool
	err     error
	prompts []domain.Prompt
	onAsk   func(p domain.Prompt)
}

func (c *scriptedConfirmer) Confirm(_ context.Context, p domain.Prompt) (bool, error) {
	c.prompts = append(c.prompts, p)
	if c.onAsk != nil {
		c.onAsk(p)
	}
	if c.err != nil {
		return false, c.err
	}
	if len(c.answers) == 0 {
		return false, nil
	}
	a := c.answers[0]
	c.answers = c.answers[1:]
	return a, nil
}

func always(answer bool) *scriptedConfirmer {
	answers := make([]bool, 100)
	for i := range answers {
		answers[i] = answer
	}
	return &scriptedConfirmer{answers: answers}
}

// memLedger is an in-memory domain.FixLedger.
type memLedger struct {
	entries map[string]domain.LedgerEntry
}

func (l *memLedger) Applied(string) (map[string]domain.LedgerEntry, error) {
	out := make(map[string]domain.LedgerEntry, len(l.entries))
	for k, v := range l.entries {
		out[k] = v
	}
	return out, nil
}

func (l *memLedger) Record(_ string, e domain.LedgerEntry) error {
	if l.entries == nil {
		l.entries = map[string]domain.LedgerEntry{}
	}
	l.entries[e.Fingerprint] = e
	return nil
}
