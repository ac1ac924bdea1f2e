package notify

import (
	"context"
	"errors"

	"github.com/hammamikhairi/pomotech/internal/chime"
	"github.com/hammamikhairi/pomotech/internal/domain"
	"github.com/hammamikhairi/pomotech/internal/logger"
)

// Compile-time interface checks.
var (
	_ domain.Notifier = (*Chiming)(nil)
	_ domain.Notifier = Multi(nil)
)

// Chiming wraps a notifier and also rings the chime. Messages are
// delivered immediately; the chime plays in the background so the tick
// handler is never held up by audio.
type Chiming struct {
	inner  domain.Notifier
	ringer chime.Ringer
	log    *logger.Logger
}

// NewChiming creates a notifier that both delivers and rings.
func NewChiming(inner domain.Notifier, ringer chime.Ringer, log *logger.Logger) *Chiming {
	return &Chiming{inner: inner, ringer: ringer, log: log}
}

// Notify delivers the message and rings.
func (n *Chiming) Notify(ctx context.Context, message string) error {
	n.ring()
	return n.inner.Notify(ctx, message)
}

// NotifyUrgent delivers the message and rings.
func (n *Chiming) NotifyUrgent(ctx context.Context, message string) error {
	n.ring()
	return n.inner.NotifyUrgent(ctx, message)
}

func (n *Chiming) ring() {
	go func() {
		if err := n.ringer.Ring(); err != nil {
			n.log.Error("chime: %v", err)
		}
	}()
}

// Multi fans a message out to several notifiers. Every notifier is tried;
// the errors are joined.
type Multi []domain.Notifier

// Notify delivers to every notifier.
func (m Multi) Notify(ctx context.Context, message string) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, message); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NotifyUrgent delivers to every notifier.
func (m Multi) NotifyUrgent(ctx context.Context, message string) error {
	var errs []error
	for _, n := range m {
		if err := n.NotifyUrgent(ctx, message); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
