// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"carvel.dev/inputmodel/pkg/cmd/ui"
	"carvel.dev/inputmodel/pkg/document"
	"carvel.dev/inputmodel/pkg/files"
	"carvel.dev/inputmodel/pkg/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	ModelPath = "/api/v2/model"

	DefaultMaxBodyBytes = 32 << 20

	shutdownTimeout = 5 * time.Second
)

type ServerOpts struct {
	ListenAddr     string
	ModelDir       string
	RequestTimeout time.Duration
	// MaxBodyBytes limits POST bodies; larger ones get 413.
	MaxBodyBytes int64

	LoadOpts model.LoadOpts
	// WriteOpts.DryRun is set per request.
	WriteOpts model.WriteOpts

	UI ui.UI
	// Registry receives the server's metrics; a fresh one is used when nil.
	Registry *prometheus.Registry
}

type Server struct {
	opts    ServerOpts
	metrics *metrics
}

func NewServer(opts ServerOpts) *Server {
	if opts.UI == nil {
		opts.UI = ui.NewTTY(false)
	}
	if opts.Registry == nil {
		opts.Registry = prometheus.NewRegistry()
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	opts.LoadOpts.UI = opts.UI
	opts.WriteOpts.UI = opts.UI

	return &Server{opts, newMetrics(opts.Registry)}
}

func (s *Server) Mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc(ModelPath, s.noCacheHandler(s.corsHandler(s.timeoutHandler(s.modelHandler))))
	mux.HandleFunc("/health", s.healthHandler)
	mux.Handle("/metrics", promhttp.HandlerFor(s.opts.Registry, promhttp.HandlerOpts{}))
	return mux
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.opts.ListenAddr,
		Handler:           s.Mux(),
		ReadHeaderTimeout: s.opts.RequestTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.opts.UI.Printf("Listening on http://%s (model directory '%s')\n", server.Addr, s.opts.ModelDir)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}

func (s *Server) modelHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.getModel(w, r)
	case http.MethodPost:
		s.postModel(w, r)
	case http.MethodOptions:
		w.WriteHeader(http.StatusNoContent)
	default:
		w.Header().Set("Allow", "GET, POST, OPTIONS")
		s.logError(w, r, opUnknown, time.Now(),
			withStatus(http.StatusMethodNotAllowed, fmt.Errorf("Unsupported method '%s'", r.Method)))
	}
}

func (s *Server) getModel(w http.ResponseWriter, r *http.Request) {
	t1 := time.Now()

	unlock := dirs.Lock(s.opts.ModelDir)
	m, err := model.Load(s.opts.ModelDir, s.opts.LoadOpts)
	unlock()

	if err != nil {
		s.logError(w, r, opLoad, t1, err)
		return
	}

	s.writeJSON(w, r, opLoad, t1, m)
}

func (s *Server) postModel(w http.ResponseWriter, r *http.Request) {
	t1 := time.Now()
	op := opWrite

	dryRun, err := parseDryRun(r.URL.Query().Get("dryRun"))
	if err != nil {
		s.logError(w, r, op, t1, withStatus(http.StatusBadRequest, err))
		return
	}
	if dryRun {
		op = opDryRun
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.logError(w, r, op, t1, withStatus(http.StatusRequestEntityTooLarge, err))
			return
		}
		s.logError(w, r, op, t1, withStatus(http.StatusBadRequest, err))
		return
	}

	var m model.Model
	err = json.Unmarshal(data, &m)
	if err != nil {
		s.logError(w, r, op, t1, fmt.Errorf("Decoding request body: %s: %w", err, document.ErrMalformed))
		return
	}

	opts := s.opts.WriteOpts
	opts.DryRun = dryRun

	unlock := dirs.Lock(s.opts.ModelDir)
	changes, err := model.Write(&m, s.opts.ModelDir, opts)
	unlock()

	if err != nil {
		s.logError(w, r, op, t1, err)
		return
	}

	for _, change := range changes {
		s.metrics.changes.WithLabelValues(op, string(change.Status)).Inc()
	}

	s.writeJSON(w, r, op, t1, changes)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	s.write(w, []byte("ok"))
}

func parseDryRun(val string) (bool, error) {
	if len(val) == 0 {
		return false, nil
	}
	dryRun, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("Expected dryRun to be a boolean, but was '%s'", val)
	}
	return dryRun, nil
}

type errorResponse struct {
	Error string `json:"error"`
}

type statusError struct {
	status int
	err    error
}

func withStatus(status int, err error) error { return statusError{status, err} }

func (e statusError) Error() string { return e.err.Error() }
func (e statusError) Unwrap() error { return e.err }

// StatusFor maps engine errors to HTTP status codes.
func StatusFor(err error) int {
	var statusErr statusError
	switch {
	case errors.As(err, &statusErr):
		return statusErr.status
	case errors.Is(err, files.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, document.ErrMalformed):
		return http.StatusUnprocessableEntity
	case errors.Is(err, model.ErrLoadConflict), errors.Is(err, model.ErrUnsupportedVersion):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, op string, t1 time.Time, val interface{}) {
	bs, err := json.Marshal(val)
	if err != nil {
		s.logError(w, r, op, t1, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	s.write(w, bs)

	s.metrics.observe(op, http.StatusOK, time.Since(t1))
	s.opts.UI.Debugf("%s %s: %d (%s)\n", r.Method, r.URL.Path, http.StatusOK, time.Since(t1))
}

func (s *Server) logError(w http.ResponseWriter, r *http.Request, op string, t1 time.Time, err error) {
	status := StatusFor(err)
	s.opts.UI.Warnf("%s %s: %d: %s\n", r.Method, r.URL.Path, status, err)

	bs, marshalErr := json.Marshal(errorResponse{Error: err.Error()})
	if marshalErr != nil {
		bs = []byte(`{"error":"internal error"}`)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	s.write(w, bs)

	s.metrics.observe(op, status, time.Since(t1))
}

func (s *Server) write(w http.ResponseWriter, data []byte) {
	w.Write(data) // not fmt.Fprintf!
}

var (
	noCacheHeaders = map[string]string{
		"Expires":         time.Unix(0, 0).Format(time.RFC1123),
		"Cache-Control":   "no-cache, private, max-age=0",
		"Pragma":          "no-cache",
		"X-Accel-Expires": "0",
	}
)

func (s *Server) noCacheHandler(wrappedFunc func(http.ResponseWriter, *http.Request)) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		for k, v := range noCacheHeaders {
			w.Header().Set(k, v)
		}

		wrappedFunc(w, r)
	}
}

func (s *Server) corsHandler(wrappedFunc func(http.ResponseWriter, *http.Request)) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		wrappedFunc(w, r)
	}
}

const timeoutBody = `{"error":"request timed out"}`

func (s *Server) timeoutHandler(wrappedFunc func(http.ResponseWriter, *http.Request)) func(http.ResponseWriter, *http.Request) {
	handler := http.TimeoutHandler(http.HandlerFunc(wrappedFunc), s.opts.RequestTimeout, timeoutBody)
	return handler.ServeHTTP
}
