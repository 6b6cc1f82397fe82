package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"ubs/internal/core"
	"ubs/internal/log"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	health := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	}
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(health)
}

// handleReady reports whether templates are loaded and the store answers.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]interface{})

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	if err := s.ledger.Ping(ctx); err != nil {
		checks["store"] = "failed: " + err.Error()
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["store"] = "ok"
	}
	checks["requests"] = s.trace.TotalRequests()

	response := map[string]interface{}{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	}
	w.WriteHeader(httpStatus)
	_ = json.NewEncoder(w).Encode(response)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		s.logger.ErrorContext(r.Context(), "Templates not loaded",
			log.FieldPath, r.URL.Path,
			log.FieldErrorType, log.ErrorTypeConfiguration)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	units, err := s.ledger.Units(r.Context())
	if err != nil {
		// The page still renders; the tables load their own partials.
		s.logger.ErrorContext(r.Context(), "Unit list error", log.FieldError, err)
	}

	data := struct {
		Units []unitRow
	}{Units: toUnitRows(units)}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		s.logger.ErrorContext(r.Context(), "Index template execution failed", log.FieldError, err, "template", "index.html")
		http.Error(w, "template error", http.StatusInternalServerError)
	}
}

// writeError maps a ledger error onto a status code and an HTMX notification.
// Validation problems are 422, an unknown unit is 404 and anything else is a
// 500 that gets logged.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	logger := log.FromContext(r.Context())
	switch {
	case core.IsValidation(err):
		logger.WarnContext(r.Context(), "Rejected input", log.NewFields().
			WithError(err).
			WithOperation(op).
			WithErrorType(log.ErrorTypeValidation).
			ToSlice()...)
		msg := "Invalid data: " + err.Error()
		UnprocessableEntityError(msg).TriggerErrorNotification(msg).Write(w)
	case core.IsNotFound(err):
		logger.WarnContext(r.Context(), "Unit not found", log.NewFields().
			WithError(err).
			WithOperation(op).
			WithErrorType(log.ErrorTypeNotFound).
			ToSlice()...)
		msg := "UBS not found."
		NotFoundError(msg).TriggerErrorNotification(msg).Write(w)
	default:
		logger.LogError(r.Context(), "Ledger operation failed", err, op, log.NewFields().WithErrorType(log.ErrorTypeDatabase))
		msg := "Could not complete the operation. Please try again."
		InternalServerError(msg).TriggerErrorNotification(msg).Write(w)
	}
}

// render executes a partial template into a response builder.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any, b *HTMXResponseBuilder) {
	if s.templates == nil {
		InternalServerError("templates not loaded").Write(w)
		return
	}
	html, err := executeTemplate(s.templates, name, data)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Template execution error", log.FieldError, err, "template", name)
		InternalServerError("Error rendering page").Write(w)
		return
	}
	b.BodyHTML(html).Write(w)
}
