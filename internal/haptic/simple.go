package haptic

import (
	"context"
	"errors"
	"io"

	"github.com/hammamikhairi/deepwork/internal/domain"
	"github.com/hammamikhairi/deepwork/internal/logger"
)

// Compile-time interface checks.
var (
	_ domain.Haptics = (*NoOp)(nil)
	_ domain.Haptics = (*Bell)(nil)
	_ domain.Haptics = Multi(nil)
)

// NoOp discards the signal. Used when feedback is disabled and in tests.
type NoOp struct {
	log *logger.Logger
}

// NewNoOp creates a no-op notifier.
func NewNoOp(log *logger.Logger) *NoOp {
	return &NoOp{log: log}
}

// Buzz does nothing.
func (n *NoOp) Buzz(ctx context.Context) error {
	n.log.Debug("haptic no-op: phase complete")
	return nil
}

// Bell rings the terminal bell by writing BEL to w.
type Bell struct {
	w io.Writer
}

// NewBell creates a bell notifier writing to w.
func NewBell(w io.Writer) *Bell {
	return &Bell{w: w}
}

// Buzz writes a single BEL character.
func (b *Bell) Buzz(ctx context.Context) error {
	_, err := io.WriteString(b.w, "\a")
	return err
}

// Multi fans the signal out to every notifier and joins their errors.
type Multi []domain.Haptics

// Buzz calls each notifier in order, even after a failure.
func (m Multi) Buzz(ctx context.Context) error {
	var errs []error
	for _, h := range m {
		if err := h.Buzz(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
