// SPDX-License-Identifier: MIT

// Package server exposes a trained model over HTTP: prediction for
// posted schema snapshots, model metadata, latest-run bookkeeping and a
// health probe.
package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ontoforge/schemamap/gcn"
	"github.com/ontoforge/schemamap/infer"
	"github.com/ontoforge/schemamap/schema"
	"github.com/ontoforge/schemamap/schemagraph"
	"github.com/ontoforge/schemamap/store"
)

// defaultTopK bounds predictions when a request does not name k.
const defaultTopK = 3

// Server wires the inference engine and the run store behind a router.
// The store is optional; without it /api/metrics reports no runs.
type Server struct {
	engine *infer.Engine
	snap   *gcn.Snapshot
	st     *store.Store
}

// New builds a server serving the given frozen snapshot.
func New(snap *gcn.Snapshot, st *store.Store) (*Server, error) {
	engine, err := infer.NewEngine(snap, schemagraph.DefaultOptions())
	if err != nil {
		return nil, err
	}

	return &Server{engine: engine, snap: snap, st: st}, nil
}

// Router assembles the chi router with logging, panic recovery and CORS.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Post("/api/predict", s.handlePredict)
	r.Get("/api/model", s.handleModel)
	r.Get("/api/metrics", s.handleMetrics)

	return r
}

// predictRequest is the POST /api/predict body.
type predictRequest struct {
	Fields        []schema.FieldDescriptor  `json:"fields"`
	Relationships []schema.RelationshipPair `json:"relationships,omitempty"`
	K             int                       `json:"k,omitempty"`
}

type predictResponse struct {
	Predictions []schema.Prediction `json:"predictions"`
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req predictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.K <= 0 {
		req.K = defaultTopK
	}

	preds, err := s.engine.Predict(req.Fields, req.Relationships, req.K)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, schemagraph.ErrNoFields) || errors.Is(err, infer.ErrBadK) {
			status = http.StatusBadRequest
		}
		writeError(w, status, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, predictResponse{Predictions: preds})
}

// modelResponse exposes snapshot metadata without the raw parameters;
// weight dumps stay in the artifact file.
type modelResponse struct {
	ID         string   `json:"id"`
	CreatedAt  string   `json:"created_at"`
	FeatureDim int      `json:"feature_dim"`
	LayerSizes []int    `json:"layer_sizes"`
	Vocabulary []string `json:"vocabulary"`
	NodeOrder  string   `json:"node_order"`
}

func (s *Server) handleModel(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, modelResponse{
		ID:         s.snap.ID,
		CreatedAt:  s.snap.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		FeatureDim: s.snap.FeatureDim,
		LayerSizes: s.snap.LayerSizes,
		Vocabulary: s.snap.Vocabulary,
		NodeOrder:  s.snap.NodeOrder,
	})
}

type metricsResponse struct {
	RunID        string  `json:"run_id"`
	BestEpoch    int     `json:"best_epoch"`
	BestValLoss  float64 `json:"best_val_loss"`
	StoppedEarly bool    `json:"stopped_early"`
	SnapshotPath string  `json:"snapshot_path"`
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if s.st == nil {
		writeError(w, http.StatusNotFound, "no run store configured")
		return
	}

	run, err := s.st.LatestRun(r.Context())
	if errors.Is(err, store.ErrNoRuns) {
		writeError(w, http.StatusNotFound, "no training runs recorded")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, metricsResponse{
		RunID:        run.ID,
		BestEpoch:    run.BestEpoch,
		BestValLoss:  run.BestValLoss,
		StoppedEarly: run.StoppedEarly,
		SnapshotPath: run.SnapshotPath,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
