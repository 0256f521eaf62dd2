// Package api serves generated datasets over HTTP for inspection.
//
// The server is read-only: it exposes the run log and the rendered files of
// one output directory so a browser or notebook can audit a dataset without
// copying it around.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/cobotgen/pkg/config"
	"github.com/matzehuels/cobotgen/pkg/runlog"
)

// Options configures the dataset server.
type Options struct {
	// OutputDir is the dataset directory holding images and the run log.
	OutputDir string

	// LogPath overrides the default run log location inside OutputDir.
	LogPath string

	Logger *log.Logger
}

// Server exposes one dataset directory.
type Server struct {
	outputDir string
	logPath   string
	logger    *log.Logger
	router    chi.Router
}

// New creates a dataset server.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.LogPath == "" {
		opts.LogPath = filepath.Join(opts.OutputDir, config.DefaultLogName)
	}

	s := &Server{
		outputDir: opts.OutputDir,
		logPath:   opts.LogPath,
		logger:    opts.Logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Get("/api/records", s.handleRecords)
	r.Get("/api/records/{index}", s.handleRecord)
	r.Get("/images/{name}", s.handleImage)

	s.router = r
	return s
}

// Handler returns the HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves until the context is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	s.logger.Info("serving dataset", "addr", addr, "dir", s.outputDir)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

// logRequests logs one line per request.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// records reloads the run log per request; datasets grow while a run is
// active and the log is the source of truth.
func (s *Server) records() ([]runlog.ImageRecord, error) {
	if _, err := os.Stat(s.logPath); os.IsNotExist(err) {
		return nil, nil
	}
	return runlog.ReadCSV(s.logPath)
}

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	records, err := s.records()
	if err != nil {
		s.logger.Error("read run log", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "run log unreadable"})
		return
	}
	if records == nil {
		records = []runlog.ImageRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleRecord(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "index must be an integer"})
		return
	}
	records, err := s.records()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "run log unreadable"})
		return
	}
	for _, rec := range records {
		if rec.Index == index {
			writeJSON(w, http.StatusOK, rec)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "no such record"})
}

func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	// Base strips any path traversal from the parameter.
	name := filepath.Base(chi.URLParam(r, "name"))
	path := filepath.Join(s.outputDir, name)
	if _, err := os.Stat(path); err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no such image"})
		return
	}
	http.ServeFile(w, r, path)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
