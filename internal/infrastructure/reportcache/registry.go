package reportcache

import (
	"sync"

	"github.com/kirillkom/compliance-audit/internal/core/domain"
)

// Registry is the API-side in-memory view of audit runs. Completed reports
// live only here for the process lifetime; they are intentionally not
// persisted anywhere.
type Registry struct {
	mu   sync.RWMutex
	runs map[string]domain.AuditRun
}

func New() *Registry {
	return &Registry{runs: make(map[string]domain.AuditRun)}
}

func (r *Registry) Register(run *domain.AuditRun) {
	if run == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs[run.ID] = *run
}

// Complete overwrites the pending entry with the finished run. A result
// for an unknown audit is stored anyway: the API may have restarted since
// scheduling and the report is still useful.
func (r *Registry) Complete(run *domain.AuditRun) {
	if run == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *run
	if existing, ok := r.runs[run.ID]; ok && stored.CreatedAt.IsZero() {
		stored.CreatedAt = existing.CreatedAt
	}
	r.runs[run.ID] = stored
}

func (r *Registry) Get(auditID string) (*domain.AuditRun, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	run, ok := r.runs[auditID]
	if !ok {
		return nil, domain.ErrAuditNotFound
	}
	out := run
	return &out, nil
}
