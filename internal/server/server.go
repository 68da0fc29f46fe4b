package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"pricelens/internal/catalog"
	"pricelens/internal/config"
	"pricelens/internal/engine"
	"pricelens/internal/model"
	"pricelens/internal/pricing"
	"pricelens/internal/report"
)

// Server exposes the analytics engine over HTTP. Records rejected at load
// time are kept so responses can show what was excluded from the aggregates.
type Server struct {
	logger  *slog.Logger
	cfg     *config.Config
	engine  *engine.Engine
	skipped []catalog.SkippedRecord
}

// New creates an HTTP server around the engine.
func New(logger *slog.Logger, cfg *config.Config, eng *engine.Engine, skipped []catalog.SkippedRecord) *Server {
	return &Server{logger: logger, cfg: cfg, engine: eng, skipped: skipped}
}

// Router builds the route table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/products", s.handleProducts)
		r.Get("/channels", s.handleChannels)
		r.Get("/portfolio", s.handlePortfolio)
		r.Get("/optimizations", s.handleOptimizations)
		r.Get("/opportunities", s.handleOpportunities)
		r.Get("/export/csv", s.handleExportCSV)
		r.Get("/export/xlsx", s.handleExportXLSX)
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "ok")
}

func (s *Server) handleProducts(w http.ResponseWriter, r *http.Request) {
	channel := r.URL.Query().Get("channel")
	brand := r.URL.Query().Get("brand")

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"products": s.engine.Metrics(channel, brand),
		"warnings": s.engine.Warnings(),
		"excluded": s.skipped,
	})
}

func (s *Server) handleChannels(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"channels": s.engine.ChannelSummaries(),
	})
}

func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	channel := r.URL.Query().Get("channel")
	brand := r.URL.Query().Get("brand")
	s.writeJSON(w, http.StatusOK, s.engine.Portfolio(channel, brand))
}

func (s *Server) handleOptimizations(w http.ResponseWriter, r *http.Request) {
	target, err := s.targetMargin(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	results, err := s.engine.Optimize(r.Context(), target, r.URL.Query().Get("channel"))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, model.ErrInvalidInput) {
			status = http.StatusBadRequest
		}
		s.writeError(w, status, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"targetMarginPct": target,
		"results":         results,
	})
}

func (s *Server) handleOpportunities(w http.ResponseWriter, r *http.Request) {
	target, err := s.targetMargin(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	n := s.cfg.Pricing.TopOpportunities
	if raw := r.URL.Query().Get("n"); raw != "" {
		n, err = strconv.Atoi(raw)
		if err != nil || n < 1 {
			s.writeError(w, http.StatusBadRequest, fmt.Errorf("n must be a positive integer"))
			return
		}
	}

	results, err := s.engine.Optimize(r.Context(), target, r.URL.Query().Get("channel"))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, model.ErrInvalidInput) {
			status = http.StatusBadRequest
		}
		s.writeError(w, status, err)
		return
	}

	top := pricing.TopN(results, n, func(res model.OptimizationResult) float64 {
		return res.ProfitImpact
	})
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"targetMarginPct": target,
		"opportunities":   top,
	})
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	metrics := s.engine.Metrics(r.URL.Query().Get("channel"), r.URL.Query().Get("brand"))

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="channel-pricing.csv"`)
	if err := report.WriteCSV(w, metrics); err != nil {
		s.logger.Error("csv export failed", "error", err)
	}
}

func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	target, err := s.targetMargin(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	metrics := s.engine.Metrics("", "")
	channels := s.engine.ChannelSummaries()
	results, err := s.engine.Optimize(r.Context(), target, "")
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	f, err := report.BuildWorkbook(metrics, channels, results)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="channel-pricing.xlsx"`)
	if _, err := f.WriteTo(w); err != nil {
		s.logger.Error("xlsx export failed", "error", err)
	}
}

func (s *Server) targetMargin(r *http.Request) (float64, error) {
	raw := r.URL.Query().Get("target_margin")
	if raw == "" {
		return s.cfg.Pricing.DefaultTargetMarginPct, nil
	}
	target, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("target_margin is not a number: %q", raw)
	}
	return target, nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}
