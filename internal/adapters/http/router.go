package httpadapter

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/kirillkom/compliance-audit/internal/core/domain"
	"github.com/kirillkom/compliance-audit/internal/core/ports"
	"github.com/kirillkom/compliance-audit/internal/observability/metrics"
)

type Router struct {
	ingestUC  ports.DocumentIngestor
	repo      ports.DocumentReader
	scheduler ports.AuditScheduler
	exporter  ports.ReportExporter
	metrics   *metrics.HTTPServerMetrics
	service   string
}

func NewRouter(
	ingestUC ports.DocumentIngestor,
	repo ports.DocumentReader,
	scheduler ports.AuditScheduler,
	exporter ports.ReportExporter,
	httpMetrics *metrics.HTTPServerMetrics,
	service string,
) *Router {
	return &Router{
		ingestUC:  ingestUC,
		repo:      repo,
		scheduler: scheduler,
		exporter:  exporter,
		metrics:   httpMetrics,
		service:   service,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.healthz)
	mux.HandleFunc("POST /v1/documents", rt.uploadDocument)
	mux.HandleFunc("GET /v1/documents/{id}", rt.getDocumentByID)
	mux.HandleFunc("POST /v1/audits", rt.scheduleAudit)
	mux.HandleFunc("GET /v1/audits/{id}", rt.getAudit)
	mux.HandleFunc("GET /v1/audits/{id}/export", rt.exportAudit)
	if rt.metrics != nil {
		mux.Handle("GET /metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(rt.service, handler)
	}
	return requestIDMiddleware(accessLogMiddleware(handler))
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request) {
	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	doc, err := rt.ingestUC.Upload(
		r.Context(),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		file,
	)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, doc)
}

func (rt *Router) getDocumentByID(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	doc, err := rt.repo.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (rt *Router) scheduleAudit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DocumentIDs []string `json:"document_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	run, err := rt.scheduler.Schedule(r.Context(), req.DocumentIDs)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, run)
}

func (rt *Router) getAudit(w http.ResponseWriter, r *http.Request) {
	run, err := rt.scheduler.GetAudit(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (rt *Router) exportAudit(w http.ResponseWriter, r *http.Request) {
	run, err := rt.scheduler.GetAudit(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if run.Status != domain.AuditCompleted || run.Report == nil {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "audit is not completed yet"})
		return
	}

	workbook, err := rt.exporter.Export(run)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "audit-"+run.ID+".xlsx"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(workbook)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}
