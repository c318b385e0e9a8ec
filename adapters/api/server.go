package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"xlmhg/app"
	"xlmhg/domain/core"
	"xlmhg/domain/ranked"
	"xlmhg/domain/stats"
	"xlmhg/internal"
	"xlmhg/internal/errors"
)

const maxBodyBytes = 8 << 20

// Server exposes the XL-mHG test over HTTP
type Server struct {
	router *chi.Mux
	tests  *app.TestService
	logger *internal.Logger
}

// NewServer creates the router and registers all routes
func NewServer(tests *app.TestService, logger *internal.Logger) *Server {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	s := &Server{
		router: chi.NewRouter(),
		tests:  tests,
		logger: logger,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	s.router.Route("/v1", func(r chi.Router) {
		r.Post("/tests", s.handleTest)
		r.Post("/curves", s.handleCurve)
	})
}

// Handler returns the root handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves on addr until the listener fails
func (s *Server) Start(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("Starting XL-mHG API on %s (backend %s)", addr, s.tests.Engine().Name())
	return srv.ListenAndServe()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"backend": s.tests.Engine().Name(),
	})
}

func (s *Server) handleTest(w http.ResponseWriter, r *http.Request) {
	var req TestRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	list, err := req.list()
	if err != nil {
		s.writeError(w, err)
		return
	}
	opts, err := s.options(&req)
	if err != nil {
		s.writeError(w, err)
		return
	}

	result, err := s.tests.Test(list, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	resp := NewTestResponse(result)
	if req.EScore && result.Source != stats.SourceSkipped {
		e, err := s.tests.EScore(result)
		if err != nil {
			s.writeError(w, err)
			return
		}
		resp.EScore = optional(e)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCurve(w http.ResponseWriter, r *http.Request) {
	var req TestRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	list, err := req.list()
	if err != nil {
		s.writeError(w, err)
		return
	}
	curve, err := s.tests.Curve(list)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, NewCurveResponse(list.N, list.K(), curve))
}

func (s *Server) options(req *TestRequest) (app.TestOptions, error) {
	opts := s.tests.Options()
	opts.X, opts.L = req.X, req.L
	opts.PValueThresh = req.PValueThresh
	opts.SkipPValue = req.SkipPValue
	opts.EScorePValueThresh = req.EScorePValueThresh
	opts.EScoreTol = req.EScoreTol
	if req.Tol != nil {
		opts.Tol = req.Tol
	}
	if req.ExactPValue != "" {
		policy, err := stats.ParseExactPolicy(req.ExactPValue)
		if err != nil {
			return opts, errors.InvalidParameter("exact_pval", err)
		}
		opts.Policy = policy
	}
	if req.Algorithm != "" {
		alg, err := stats.ParseAlgorithm(req.Algorithm)
		if err != nil {
			return opts, errors.InvalidParameter("algorithm", err)
		}
		opts.Algorithm = alg
	}
	return opts, nil
}

func (req *TestRequest) list() (*ranked.List, error) {
	switch {
	case req.List != "":
		return ranked.Parse(req.List)
	case req.Vector != nil:
		v := make([]uint8, len(req.Vector))
		for i, x := range req.Vector {
			if x != 0 && x != 1 {
				return nil, core.NewParameterError("vector", x, "0 or 1")
			}
			v[i] = uint8(x)
		}
		return ranked.FromVector(v)
	case req.N > 0:
		return ranked.FromIndices(req.N, req.Indices)
	}
	return nil, core.ErrEmptyList
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.InvalidInput(fmt.Sprintf("malformed request body: %v", err))
	}
	return nil
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("Request failed: %v", err)
	}
	writeJSON(w, status, ErrorResponse{Error: ErrorBody{
		Code:    errors.GetCode(err),
		Message: err.Error(),
	}})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
