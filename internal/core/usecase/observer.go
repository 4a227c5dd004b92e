package usecase

import (
	"time"

	"github.com/kirillkom/compliance-audit/internal/core/domain"
)

// PipelineObserver receives pipeline progress signals. Implemented by the
// worker metrics; a nop is substituted when none is wired.
type PipelineObserver interface {
	StartAudit()
	FinishAudit(duration time.Duration, report *domain.ComplianceReport, err error)
	ObserveExtraction(method domain.ExtractionMethod)
	ObserveBatch(failed bool)
}

type nopObserver struct{}

func (nopObserver) StartAudit() {}

func (nopObserver) FinishAudit(time.Duration, *domain.ComplianceReport, error) {}

func (nopObserver) ObserveExtraction(domain.ExtractionMethod) {}

func (nopObserver) ObserveBatch(bool) {}
