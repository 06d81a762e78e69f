// Package axe runs the axe-core rule engine inside the live document.
package axe

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/a11yfix/a11yfix/internal/adapters/outbound/browser"
	"github.com/a11yfix/a11yfix/internal/domain"
	"github.com/a11yfix/a11yfix/internal/logging"
)

// DefaultScriptURL is loaded when no local script or URL is configured.
const DefaultScriptURL = "https://cdn.jsdelivr.net/npm/axe-core@4.10.2/axe.min.js"

// Page evaluates JavaScript in the live document, awaiting promises.
type Page interface {
	Evaluate(ctx context.Context, expr string, out any) error
}

// Checker implements domain.AccessibilityChecker with axe-core.
type Checker struct {
	page   Page
	source string
	url    string
	rules  []string
	log    *zap.Logger
}

// New creates a Checker. A configured script file is read once up front.
func New(page Page, cfg domain.CheckerConfig, log *zap.Logger) (*Checker, error) {
	c := &Checker{page: page, url: cfg.ScriptURL, rules: cfg.Rules, log: logging.OrNop(log)}
	if cfg.Script != "" {
		data, err := os.ReadFile(cfg.Script)
		if err != nil {
			return nil, fmt.Errorf("%w: reading axe script: %w", domain.ErrIOFailure, err)
		}
		c.source = string(data)
	}
	if c.source == "" && c.url == "" {
		c.url = DefaultScriptURL
	}
	return c, nil
}

type violation struct {
	ID          string   `json:"id"`
	Impact      string   `json:"impact"`
	Description string   `json:"description"`
	Help        string   `json:"help"`
	Targets     []string `json:"targets"`
}

// Check runs axe over the container of the scoped element and keeps the
// violations that touch the element's current nodes.
func (c *Checker) Check(ctx context.Context, scope domain.ElementHandle) ([]domain.Violation, error) {
	if err := c.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	container, err := browser.ContainerExpr(string(scope))
	if err != nil {
		return nil, err
	}
	nodes, err := browser.NodesExpr(string(scope))
	if err != nil {
		return nil, err
	}
	opts, err := json.Marshal(c.options())
	if err != nil {
		return nil, err
	}
	// container and nodes are live page values, so they are spliced in as
	// expressions rather than encoded.
	expr := fmt.Sprintf("(%s)(%s, %s, %s)", runJS, container, nodes, opts)

	var raw []violation
	if err := c.page.Evaluate(ctx, expr, &raw); err != nil {
		return nil, fmt.Errorf("running axe: %w", err)
	}

	out := make([]domain.Violation, 0, len(raw))
	for _, v := range raw {
		desc := v.Help
		if desc == "" {
			desc = v.Description
		}
		out = append(out, domain.Violation{
			RuleID:            v.ID,
			Impact:            v.Impact,
			Description:       desc,
			AffectedSelectors: v.Targets,
		})
	}
	c.log.Debug("axe check", zap.String("scope", string(scope)), zap.Int("violations", len(out)))
	return out, nil
}

func (c *Checker) options() map[string]any {
	opts := map[string]any{"resultTypes": []string{"violations"}, "elementRef": true}
	if len(c.rules) > 0 {
		opts["runOnly"] = map[string]any{"type": "rule", "values": c.rules}
	}
	return opts
}

// ensureLoaded injects axe-core unless the page already has it. Navigation
// discards it, so this runs before every check.
func (c *Checker) ensureLoaded(ctx context.Context) error {
	var present bool
	if err := c.page.Evaluate(ctx, `typeof window.axe !== "undefined" && typeof window.axe.run === "function"`, &present); err != nil {
		return fmt.Errorf("probing for axe: %w", err)
	}
	if present {
		return nil
	}

	var expr string
	var err error
	if c.source != "" {
		expr, err = browser.Call(injectSourceJS, c.source)
	} else {
		expr, err = browser.Call(injectURLJS, c.url)
	}
	if err != nil {
		return err
	}

	var ok bool
	if err := c.page.Evaluate(ctx, expr, &ok); err != nil {
		return fmt.Errorf("%w: loading axe-core: %w", domain.ErrValidationFailure, err)
	}
	if !ok {
		return fmt.Errorf("%w: axe-core did not initialize", domain.ErrValidationFailure)
	}
	c.log.Debug("axe-core injected")
	return nil
}
