package upload

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"github.com/feniix/family-gallery-sub000/internal/core/domain"
	"github.com/feniix/family-gallery-sub000/internal/core/service/docstore"
)

// Registry holds in-flight and recently finished transactions in memory.
// Terminal transactions are pruned once their retention window passes; a
// process restart discards everything.
type Registry struct {
	mu        sync.Mutex
	txns      map[string]*domain.UploadTransaction
	retention time.Duration
}

// NewRegistry creates a transaction registry
func NewRegistry(retention time.Duration) *Registry {
	return &Registry{txns: make(map[string]*domain.UploadTransaction), retention: retention}
}

func (r *Registry) add(txn *domain.UploadTransaction) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for id, old := range r.txns {
		if old.Status.Terminal() && old.EndTime != nil && now.Sub(*old.EndTime) > r.retention {
			delete(r.txns, id)
		}
	}
	r.txns[txn.ID] = txn
}

// Get returns a retained transaction by id
func (r *Registry) Get(id string) (*domain.UploadTransaction, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	txn, ok := r.txns[id]
	return txn, ok
}

// transaction is the execution context of one ingestion saga
type transaction struct {
	txn *domain.UploadTransaction
	svc *Service
}

func (s *Service) newTransaction() *transaction {
	txn := &domain.UploadTransaction{
		ID:        uuid.NewString(),
		Status:    domain.TransactionStatusPending,
		StartTime: s.now(),
	}
	s.registry.add(txn)
	return &transaction{txn: txn, svc: s}
}

// isAbort reports whether err must short-circuit retries: business
// rejections and unrecoverable input errors never get a second attempt.
func isAbort(err error) bool {
	return errors.Is(err, domain.ErrDuplicateFile) || errors.Is(err, domain.ErrInvalidMedia)
}

// runStep appends a step of the given kind and executes fn under the
// retry policy. The step ends completed or failed; abort errors and the
// transaction deadline cut retries short.
func (t *transaction) runStep(ctx context.Context, kind domain.StepKind, fn func(step *domain.TransactionStep) error) error {
	step := &domain.TransactionStep{
		ID:     uuid.NewString(),
		Kind:   kind,
		Status: domain.StepStatusPending,
		Data:   map[string]string{},
	}
	t.txn.Steps = append(t.txn.Steps, step)

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = t.svc.cfg.RetryBaseDelay
	bo.MaxInterval = t.svc.cfg.RetryMaxDelay
	bo.Multiplier = 2
	bo.RandomizationFactor = 0.2

	attempts := 0
	err := backoff.Retry(func() error {
		attempts++
		err := fn(step)
		if err == nil {
			return nil
		}
		if isAbort(err) || attempts >= t.svc.cfg.RetryAttempts {
			return backoff.Permanent(err)
		}
		t.svc.logger.Warn("step attempt failed, retrying",
			"transaction", t.txn.ID, "step", kind, "attempt", attempts, "error", err)
		return err
	}, backoff.WithContext(bo, ctx))

	if err != nil {
		step.Status = domain.StepStatusFailed
		step.Error = err.Error()
		if isAbort(err) {
			return err
		}
		return &domain.StepError{Kind: kind, Attempts: attempts, Err: err}
	}

	step.Status = domain.StepStatusCompleted
	return nil
}

// skipStep records a step that cannot run because a prerequisite degraded
func (t *transaction) skipStep(kind domain.StepKind, reason string) {
	t.txn.Steps = append(t.txn.Steps, &domain.TransactionStep{
		ID:     uuid.NewString(),
		Kind:   kind,
		Status: domain.StepStatusSkipped,
		Data:   map[string]string{"reason": reason},
	})
}

// rollback runs the compensations of completed steps in reverse
// chronological order. Individual failures are logged and do not block
// the remaining compensations. Best effort only.
func (t *transaction) rollback(ctx context.Context) {
	// The transaction context may already be dead (timeout); give the
	// compensations their own bounded lease.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()

	for i := len(t.txn.Steps) - 1; i >= 0; i-- {
		step := t.txn.Steps[i]
		if step.Compensation == nil {
			continue
		}
		// Compensations are registered only once the side effect has
		// taken hold, so a failed step may still carry one: the
		// database-update step appends the record before the index
		// write, and a later failure must not leave the record behind.
		if step.Status != domain.StepStatusCompleted && step.Status != domain.StepStatusFailed {
			continue
		}
		if err := t.svc.compensate(ctx, step.Compensation); err != nil {
			t.svc.logger.Error("compensation failed",
				"transaction", t.txn.ID, "step", step.Kind, "compensation", step.Compensation.Kind, "error", err)
			continue
		}
		t.svc.logger.Info("compensation applied",
			"transaction", t.txn.ID, "step", step.Kind, "compensation", step.Compensation.Kind)
	}

	t.txn.Status = domain.TransactionStatusRolledBack
}

// compensate executes one typed undo operation
func (s *Service) compensate(ctx context.Context, c *domain.Compensation) error {
	switch c.Kind {
	case domain.CompensationNone:
		// Presigned credentials expire on their own. Extension point for
		// explicit revocation.
		return nil
	case domain.CompensationDeleteObject:
		return s.blobs.Delete(ctx, c.Path)
	case domain.CompensationRemoveRecord:
		_, err := docstore.Mutate(ctx, s.store, domain.PartitionKey(c.Year), domain.YearPartition{}, func(p *domain.YearPartition) error {
			kept := p.Media[:0]
			for _, rec := range p.Media {
				if rec.ID != c.RecordID {
					kept = append(kept, rec)
				}
			}
			p.Media = kept
			return nil
		})
		return err
	default:
		return nil
	}
}
