package prompt

import (
	"context"

	"github.com/a11yfix/a11yfix/internal/domain"
)

// Policy answers every prompt the same way without asking.
type Policy bool

const (
	AutoApprove Policy = true
	AutoReject  Policy = false
)

func (p Policy) Confirm(ctx context.Context, _ domain.Prompt) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return bool(p), nil
}
