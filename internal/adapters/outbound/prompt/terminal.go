// Package prompt implements domain.Confirmer for operators and for
// unattended runs.
package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	term "github.com/charmbracelet/x/term"

	"github.com/a11yfix/a11yfix/internal/adapters/outbound/tui"
	"github.com/a11yfix/a11yfix/internal/domain"
)

var isTerminal = term.IsTerminal

// Interactive reports whether f is attached to a terminal.
func Interactive(f *os.File) bool {
	return f != nil && isTerminal(f.Fd())
}

// Terminal asks the operator on a line-oriented terminal. Accepted answers:
// y(es), n(o) or empty for no, a(ll) to accept every remaining prompt of the
// same kind, q(uit) to decline every remaining prompt.
type Terminal struct {
	in  *bufio.Reader
	out io.Writer

	mu   sync.Mutex
	all  map[domain.PromptKind]bool
	quit bool
}

func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{in: bufio.NewReader(in), out: out, all: map[domain.PromptKind]bool{}}
}

func (t *Terminal) Confirm(ctx context.Context, p domain.Prompt) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return false, err
	}
	if t.quit {
		return false, nil
	}
	if t.all[p.Kind] {
		return true, nil
	}

	fmt.Fprint(t.out, tui.RenderPrompt(p))
	for {
		fmt.Fprintf(t.out, "\n%s [y/N/a/q] ", question(p.Kind))
		line, err := t.in.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			if errors.Is(err, io.EOF) {
				// Input ran out: nothing else can be confirmed.
				fmt.Fprintln(t.out)
				t.quit = true
				return false, nil
			}
			return false, fmt.Errorf("reading answer: %w", err)
		}

		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true, nil
		case "", "n", "no":
			return false, nil
		case "a", "all":
			t.all[p.Kind] = true
			return true, nil
		case "q", "quit":
			t.quit = true
			return false, nil
		default:
			fmt.Fprintln(t.out, "please answer y, n, a or q")
		}
	}
}

func question(k domain.PromptKind) string {
	if k == domain.PromptApplyPatch {
		return "Apply this fix?"
	}
	return "Approve this fix?"
}
