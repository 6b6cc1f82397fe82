package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"ubs/internal/chart"
	"ubs/internal/core"
	"ubs/internal/log"
	"ubs/internal/middleware/security"
	"ubs/internal/middleware/trace"
	appweb "ubs/web"
)

// Ledger is what the handlers need from the service layer.
type Ledger interface {
	RegisterUnit(ctx context.Context, u core.Unit) (core.Unit, error)
	RegisterExpense(ctx context.Context, e core.Expense) (core.Expense, error)
	UnitReport(ctx context.Context, unitID int64) (core.UnitReport, error)
	OverallReport(ctx context.Context) ([]core.UnitTotal, error)
	Units(ctx context.Context) ([]core.Unit, error)
	Expenses(ctx context.Context, unitID int64) ([]core.Expense, error)
	Ping(ctx context.Context) error
}

type Server struct {
	http.Server
	templates *template.Template
	ledger    Ledger
	logger    *log.Logger
	trace     *trace.Middleware
	started   time.Time

	// One drawing surface per report panel.
	unitCanvas    *chart.Canvas
	overallCanvas *chart.Canvas
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(addr string, ledger Ledger, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Discard()
	}
	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		ledger:        ledger,
		logger:        logger.WithComponent(log.ComponentHTTP),
		trace:         trace.NewMiddleware(),
		started:       time.Now(),
		unitCanvas:    chart.NewCanvas(chart.UnitCanvas),
		overallCanvas: chart.NewCanvas(chart.OverallCanvas),
	}

	// Parse embedded templates at startup.
	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		s.logger.Warn("Failed parsing templates", log.FieldError, err)
	} else {
		s.templates = t
	}

	s.Handler = s.routes()
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(s.trace.Handler)
	r.Use(log.Middleware(s.logger, trace.FromRequest))
	r.Use(middleware.Recoverer)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NotFoundError("Page not found").Write(w)
	})

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	// Static assets (served from embedded FS)
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		r.With(security.StaticAssetMiddleware(3600)).Handle("/static/*", static)
	} else {
		s.logger.Warn("Failed to mount embedded static FS", log.FieldError, err)
	}

	r.Group(func(r chi.Router) {
		r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Handler)

		r.Get("/", s.handleIndex)
		r.Post("/units", s.handleCreateUnit)
		r.Post("/expenses", s.handleCreateExpense)

		// UI partials
		r.Route("/ui", func(r chi.Router) {
			r.Get("/units", s.handleUnitsTable)
			r.Get("/units/{id}/expenses", s.handleUnitExpenses)
			r.Get("/unit-report", s.handleUnitReport)
			r.Get("/overall-report", s.handleOverallReport)
		})
	})

	return r
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.InfoContext(ctx, "Shutting down HTTP server", log.FieldOperation, log.OpShutdown)
	return s.Server.Shutdown(ctx)
}
