// Package audit writes the admin audit trail asynchronously so a slow or
// failing audit insert never delays an API response.
package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/toozhub/toozhub/internal/metrics"
	"github.com/toozhub/toozhub/internal/models"
	"github.com/toozhub/toozhub/internal/repo"
)

const queueSize = 256

// Dispatcher buffers audit entries and writes them from a single worker
// goroutine. When the queue is full the entry is dropped rather than
// blocking the caller.
type Dispatcher struct {
	repo          *repo.AuditRepo
	sourceProject string
	queue         chan models.AuditEntry
	done          chan struct{}
}

// NewDispatcher starts the worker. sourceProject tags every entry so a
// shared audit table can tell deployments apart.
func NewDispatcher(auditRepo *repo.AuditRepo, sourceProject string) *Dispatcher {
	d := &Dispatcher{
		repo:          auditRepo,
		sourceProject: sourceProject,
		queue:         make(chan models.AuditEntry, queueSize),
		done:          make(chan struct{}),
	}
	go d.worker()
	return d
}

func (d *Dispatcher) worker() {
	defer close(d.done)
	for e := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := d.repo.Insert(ctx, e); err != nil {
			slog.Error("audit insert failed", "action", e.Action, "error", err)
		}
		cancel()
	}
}

// Record enqueues one audit entry. Never blocks; drops when the queue is full.
func (d *Dispatcher) Record(actorEmail, action, entityType string, entityID int, details string) {
	e := models.AuditEntry{
		ActorEmail:    actorEmail,
		Action:        action,
		EntityType:    entityType,
		EntityID:      entityID,
		Details:       details,
		SourceProject: d.sourceProject,
	}
	select {
	case d.queue <- e:
	default:
		metrics.AuditDropped.Inc()
		slog.Warn("audit queue full, dropping entry", "action", action, "entity_type", entityType)
	}
}

// Close drains the queue and stops the worker. Call on shutdown.
func (d *Dispatcher) Close() {
	close(d.queue)
	<-d.done
}
