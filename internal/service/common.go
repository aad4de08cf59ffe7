package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/aw-admin-api/pkg/errors"
	"github.com/noah-isme/aw-admin-api/pkg/events"
)

type txManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type eventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// Notifier publishes domain events once a write has committed. Publish
// failures are logged and counted, never returned.
type Notifier struct {
	publisher eventPublisher
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewNotifier constructs a Notifier. A nil publisher drops events.
func NewNotifier(publisher eventPublisher, metrics *MetricsService, logger *zap.Logger) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{publisher: publisher, metrics: metrics, logger: logger}
}

// Emit publishes name with payload.
func (n *Notifier) Emit(ctx context.Context, name string, payload interface{}) {
	if n == nil || n.publisher == nil {
		return
	}
	event := events.New(name, payload)
	err := n.publisher.Publish(ctx, event)
	n.metrics.RecordEventPublish(name, err)
	if err != nil {
		n.logger.Warn("failed to publish event", zap.String("event", name), zap.String("event_id", event.ID), zap.Error(err))
	}
}

func invalid(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
}

func invalidField(field, message string) error {
	return appErrors.WithField(appErrors.ErrValidation, field, message)
}

func loadError(err error, entity string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, entity+" not found")
	}
	return appErrors.Internal(err, "failed to load "+entity)
}

// trimPtr trims *s and turns blank strings into nil.
func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
