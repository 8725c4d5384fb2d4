// Package server exposes mesh extraction over HTTP.
//
// POST /meshing accepts a JSON body
//
//	{"visualizationFunction": "x^2+y^2+z^2-25", "limits": 10, "algorithm": "dual_contour"}
//
// and responds with {"mesh": "<OBJ text>"}. Requests that are not JSON get 415,
// requests that cannot be meshed get 422 with a plain text reason.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"mime"
	"net/http"
	"time"

	"github.com/soypat/implicit"
	"github.com/soypat/implicit/expr"
	"github.com/soypat/implicit/render"
	"go.uber.org/zap"
)

// MaxLimits is the largest accepted limits value per algorithm.
var MaxLimits = map[implicit.Algorithm]float64{
	implicit.MarchingCubes: 40,
	implicit.DualContour:   10,
}

const maxBodyBytes = 64 << 10

// MeshRequest is the body of a meshing request.
type MeshRequest struct {
	VisualizationFunction string  `json:"visualizationFunction"`
	Limits                float64 `json:"limits"`
	Algorithm             string  `json:"algorithm"`
}

// MeshResponse is the body of a successful meshing response.
type MeshResponse struct {
	Mesh string `json:"mesh"`
}

// Server meshes formulas received over HTTP.
type Server struct {
	log     *zap.Logger
	cfg     implicit.Config
	timeout time.Duration
}

// New returns a server extracting meshes with cfg. Each extraction is
// aborted after timeout; zero means no limit.
func New(log *zap.Logger, cfg implicit.Config, timeout time.Duration) (*Server, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if timeout < 0 {
		return nil, fmt.Errorf("negative timeout %s", timeout)
	}
	return &Server{log: log, cfg: cfg, timeout: timeout}, nil
}

// Handler returns the HTTP handler serving the meshing endpoint.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/meshing", s.handleMeshing)
	return cors(mux)
}

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.log.Info("listening", zap.String("addr", addr))
		errc <- srv.ListenAndServe()
	}()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		<-errc
		return err
	}
}

// cors allows any origin, as browsers call the endpoint from a separately served frontend.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		if r.Method == http.MethodOptions {
			h.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requestError is a client error with the status code to report.
type requestError struct {
	status int
	msg    string
	err    error
}

func (e *requestError) Error() string {
	if e.err == nil {
		return e.msg
	}
	return e.msg + ": " + e.err.Error()
}

func (e *requestError) Unwrap() error { return e.err }

func unprocessable(msg string, err error) *requestError {
	return &requestError{status: http.StatusUnprocessableEntity, msg: msg, err: err}
}

func (s *Server) handleMeshing(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST, OPTIONS")
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	start := time.Now()
	req, mesh, err := s.mesh(w, r)
	log := s.log.With(
		zap.String("algorithm", req.Algorithm),
		zap.Float64("limits", req.Limits),
		zap.Duration("elapsed", time.Since(start)),
	)
	if err != nil {
		status := http.StatusInternalServerError
		var rerr *requestError
		if errors.As(err, &rerr) {
			status = rerr.status
		}
		log.Warn("meshing failed", zap.Int("status", status), zap.Error(err))
		http.Error(w, err.Error(), status)
		return
	}
	log.Info("meshed",
		zap.Int("vertices", len(mesh.Vertices)),
		zap.Int("faces", len(mesh.Faces)),
	)
	w.Header().Set("Content-Type", "application/json")
	err = json.NewEncoder(w).Encode(MeshResponse{Mesh: mesh.OBJ()})
	if err != nil {
		log.Error("writing response", zap.Error(err))
	}
}

// mesh decodes and validates the request and extracts the mesh.
func (s *Server) mesh(w http.ResponseWriter, r *http.Request) (MeshRequest, *render.Mesh, error) {
	var req MeshRequest
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		return req, nil, &requestError{status: http.StatusUnsupportedMediaType, msg: "Content-Type not supported!"}
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		return req, nil, unprocessable("Unprocessable Entity (Invalid request body)", err)
	}
	alg, err := implicit.ParseAlgorithm(req.Algorithm)
	if err != nil {
		return req, nil, unprocessable("Unprocessable Entity (Invalid algorithm)", err)
	}
	if err := checkLimits(req.Limits, alg); err != nil {
		return req, nil, unprocessable("Unprocessable Entity (Invalid limits)", err)
	}
	field, err := expr.Parse(req.VisualizationFunction)
	if err != nil {
		return req, nil, unprocessable("Unprocessable Entity (Invalid formula)", err)
	}
	ctx := r.Context()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	mesh, err := render.Extract(ctx, field, implicit.Cube(req.Limits), alg, s.cfg)
	if err != nil {
		return req, nil, unprocessable("Unprocessable Entity (Failed to process)", err)
	}
	return req, mesh, nil
}

func checkLimits(limits float64, alg implicit.Algorithm) error {
	if math.IsNaN(limits) || limits <= 0 {
		return fmt.Errorf("limits %g must be positive", limits)
	}
	if max, ok := MaxLimits[alg]; ok && limits > max {
		return fmt.Errorf("limits %g exceed maximum %g for %s", limits, max, alg)
	}
	return implicit.ValidateBounds(implicit.Cube(limits))
}
