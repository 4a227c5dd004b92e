package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kirillkom/compliance-audit/internal/core/domain"
)

func TestScheduleRegistersPendingRunAndPublishesJob(t *testing.T) {
	repo := newFakeRepo()
	repo.docs["d1"] = &domain.Document{ID: "d1", Filename: "a.pdf"}
	repo.docs["d2"] = &domain.Document{ID: "d2", Filename: "b.pdf"}
	queue := &fakeQueue{}
	registry := newFakeRegistry()
	uc := NewScheduleAuditUseCase(repo, queue, registry, nil)

	run, err := uc.Schedule(context.Background(), []string{"d1", "d2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if run.Status != domain.AuditPending {
		t.Fatalf("expected pending status, got %s", run.Status)
	}
	if len(queue.jobs) != 1 {
		t.Fatalf("expected one job published, got %d", len(queue.jobs))
	}
	if queue.jobs[0].AuditID != run.ID {
		t.Fatalf("job audit id %q does not match run id %q", queue.jobs[0].AuditID, run.ID)
	}
	got, err := uc.GetAudit(context.Background(), run.ID)
	if err != nil {
		t.Fatalf("registered run not retrievable: %v", err)
	}
	if got.Status != domain.AuditPending {
		t.Fatalf("expected pending run in registry, got %s", got.Status)
	}
}

func TestScheduleRejectsEmptyDocumentList(t *testing.T) {
	uc := NewScheduleAuditUseCase(newFakeRepo(), &fakeQueue{}, newFakeRegistry(), nil)

	_, err := uc.Schedule(context.Background(), nil)
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input error, got %v", err)
	}
}

func TestScheduleRejectsUnknownDocument(t *testing.T) {
	repo := newFakeRepo()
	repo.docs["d1"] = &domain.Document{ID: "d1"}
	queue := &fakeQueue{}
	uc := NewScheduleAuditUseCase(repo, queue, newFakeRegistry(), nil)

	_, err := uc.Schedule(context.Background(), []string{"d1", "missing"})
	if !domain.IsKind(err, domain.ErrDocumentNotFound) {
		t.Fatalf("expected document not found error, got %v", err)
	}
	if len(queue.jobs) != 0 {
		t.Fatalf("no job must be published on validation failure")
	}
}

func TestScheduleMarksRunFailedWhenDispatchFails(t *testing.T) {
	repo := newFakeRepo()
	repo.docs["d1"] = &domain.Document{ID: "d1"}
	queue := &fakeQueue{publishJobErr: errors.New("queue down")}
	registry := newFakeRegistry()
	uc := NewScheduleAuditUseCase(repo, queue, registry, nil)

	_, err := uc.Schedule(context.Background(), []string{"d1"})
	if err == nil {
		t.Fatalf("expected error")
	}
	if len(registry.completed) != 1 {
		t.Fatalf("expected the run completed as failed, got %d completions", len(registry.completed))
	}
	if registry.completed[0].Status != domain.AuditFailed {
		t.Fatalf("expected failed status, got %s", registry.completed[0].Status)
	}
}

func TestHandleCompletedUpdatesRegistry(t *testing.T) {
	registry := newFakeRegistry()
	uc := NewScheduleAuditUseCase(newFakeRepo(), &fakeQueue{}, registry, nil)

	run := domain.AuditRun{
		ID:          "audit-1",
		Status:      domain.AuditCompleted,
		Report:      &domain.ComplianceReport{Score: 42.86},
		CompletedAt: time.Now().UTC(),
	}
	uc.HandleCompleted(context.Background(), run)

	got, err := registry.Get("audit-1")
	if err != nil {
		t.Fatalf("completed run not in registry: %v", err)
	}
	if got.Report == nil || got.Report.Score != 42.86 {
		t.Fatalf("report not carried through: %+v", got)
	}
}
