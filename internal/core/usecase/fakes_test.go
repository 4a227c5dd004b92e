package usecase

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/kirillkom/compliance-audit/internal/core/domain"
)

type fakeRepo struct {
	mu      sync.Mutex
	docs    map[string]*domain.Document
	created []*domain.Document
	updates []statusUpdate

	createErr error
	getErr    error
	updateErr error
}

type statusUpdate struct {
	id     string
	status domain.DocumentStatus
	errMsg string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{docs: make(map[string]*domain.Document)}
}

func (r *fakeRepo) Create(_ context.Context, doc *domain.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	copied := *doc
	r.docs[doc.ID] = &copied
	r.created = append(r.created, &copied)
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id string) (*domain.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	doc, ok := r.docs[id]
	if !ok {
		return nil, domain.ErrDocumentNotFound
	}
	copied := *doc
	return &copied, nil
}

func (r *fakeRepo) UpdateStatus(_ context.Context, id string, status domain.DocumentStatus, errMessage string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	r.updates = append(r.updates, statusUpdate{id: id, status: status, errMsg: errMessage})
	if doc, ok := r.docs[id]; ok {
		doc.Status = status
		doc.Error = errMessage
	}
	return nil
}

type fakeStorage struct {
	mu      sync.Mutex
	objects map[string][]byte

	saveErr error
	openErr error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string][]byte)}
}

func (s *fakeStorage) Save(_ context.Context, key string, data io.Reader) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	content, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	s.objects[key] = content
	return nil
}

func (s *fakeStorage) Open(_ context.Context, key string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.openErr != nil {
		return nil, s.openErr
	}
	content, ok := s.objects[key]
	if !ok {
		return nil, io.ErrUnexpectedEOF
	}
	return io.NopCloser(bytes.NewReader(content)), nil
}

type fakeQueue struct {
	mu        sync.Mutex
	jobs      []domain.AuditJob
	completed []domain.AuditRun

	publishJobErr error
	publishRunErr error
}

func (q *fakeQueue) PublishAuditRequested(_ context.Context, job domain.AuditJob) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.publishJobErr != nil {
		return q.publishJobErr
	}
	q.jobs = append(q.jobs, job)
	return nil
}

func (q *fakeQueue) SubscribeAuditRequested(context.Context, func(context.Context, domain.AuditJob) error) error {
	return nil
}

func (q *fakeQueue) PublishAuditCompleted(_ context.Context, run domain.AuditRun) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.publishRunErr != nil {
		return q.publishRunErr
	}
	q.completed = append(q.completed, run)
	return nil
}

func (q *fakeQueue) SubscribeAuditCompleted(context.Context, func(context.Context, domain.AuditRun)) error {
	return nil
}

type fakeRegistry struct {
	mu        sync.Mutex
	runs      map[string]domain.AuditRun
	completed []domain.AuditRun
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{runs: make(map[string]domain.AuditRun)}
}

func (r *fakeRegistry) Register(run *domain.AuditRun) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs[run.ID] = *run
}

func (r *fakeRegistry) Complete(run *domain.AuditRun) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs[run.ID] = *run
	r.completed = append(r.completed, *run)
}

func (r *fakeRegistry) Get(auditID string) (*domain.AuditRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	run, ok := r.runs[auditID]
	if !ok {
		return nil, domain.ErrAuditNotFound
	}
	copied := run
	return &copied, nil
}
