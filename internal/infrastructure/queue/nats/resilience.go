package nats

import (
	"context"
	"errors"

	"github.com/kirillkom/context-store/internal/core/domain"
	"github.com/kirillkom/context-store/internal/infrastructure/resilience"
	"github.com/nats-io/nats.go"
)

// connectionErrors are the publish failures a reconnecting client recovers
// from on its own; a reindex request is small enough to simply resend.
var connectionErrors = []error{
	nats.ErrNoServers,
	nats.ErrTimeout,
	nats.ErrConnectionClosed,
	nats.ErrConnectionReconnecting,
	nats.ErrDisconnected,
	nats.ErrStaleConnection,
}

func classifyNATSError(err error) resilience.ErrorClassification {
	switch {
	case err == nil:
		return resilience.Ignored()
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return resilience.Ignored()
	case resilience.IsCircuitOpen(err):
		return resilience.Transient()
	case errors.Is(err, nats.ErrBadSubject), errors.Is(err, nats.ErrMaxPayload):
		// Misconfiguration on our side; the server is healthy.
		return resilience.Ignored()
	}
	for _, target := range connectionErrors {
		if errors.Is(err, target) {
			return resilience.Transient()
		}
	}
	return resilience.Permanent()
}

func wrapTemporaryIfNeeded(operation string, err error) error {
	if err == nil || domain.IsKind(err, domain.ErrTemporary) {
		return err
	}
	if classifyNATSError(err).Retryable {
		return domain.WrapError(domain.ErrTemporary, operation, err)
	}
	return err
}
