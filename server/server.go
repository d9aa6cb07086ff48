// Package server exposes the analysis pipeline over HTTP.
//
// Routes:
//
//	GET  /             upload form, with the last error if any
//	POST /             analyze the uploaded "file" and display the result page
//	POST /api/analyze  analyze the uploaded "file" (or the raw body) and return JSON
//	GET  /healthz      liveness
//
// Requests are independent: nothing is kept once the response is written.
package server

import (
	"bytes"
	"context"
	"embed"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log"
	"mime"
	"net/http"
	"time"

	"github.com/etnz/bourse"
	"github.com/etnz/bourse/analysis"
	"github.com/etnz/bourse/chart"
	"github.com/etnz/bourse/config"
	"github.com/google/uuid"
	"github.com/yuin/goldmark"
)

//go:embed templates/*.html
var templatesFS embed.FS

var pages = template.Must(template.ParseFS(templatesFS, "templates/*.html"))

// Analyzer runs an analysis of a price file.
type Analyzer interface {
	Run(ctx context.Context, r io.Reader) (*analysis.Result, error)
}

// Server is the HTTP front end of an Analyzer.
type Server struct {
	addr      string
	analyzer  Analyzer
	flash     flasher
	maxUpload int64
	mux       *http.ServeMux
}

// New creates a Server for a, configured by cfg.
//
// Without a configured secret key a random one is generated, flash messages
// then do not survive a restart.
func New(a Analyzer, cfg *config.Config) *Server {
	key := cfg.Server.SecretKey
	if key == "" {
		log.Println("server: no secret key configured, using a random one")
		key = uuid.NewString()
	}
	s := &Server{
		addr:      cfg.Server.Addr,
		analyzer:  a,
		flash:     flasher{key: []byte(key)},
		maxUpload: cfg.Server.MaxUploadMB << 20,
		mux:       http.NewServeMux(),
	}
	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.HandleFunc("POST /{$}", s.handleUpload)
	s.mux.HandleFunc("POST /api/analyze", s.handleAPI)
	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	return s
}

// ServeHTTP implements http.Handler, logging every request.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	s.mux.ServeHTTP(rec, r)
	log.Printf("%s %s %d %s", r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Millisecond))
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, "index.html", map[string]any{
		"Flash":       s.flash.pop(w, r),
		"MaxUploadMB": s.maxUpload >> 20,
	})
}

// uploaded returns the content of the "file" form field, or a message for the user.
func (s *Server) uploaded(w http.ResponseWriter, r *http.Request) ([]byte, string) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	f, _, err := r.FormFile("file")
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return nil, fmt.Sprintf("File too large, the limit is %d MB.", s.maxUpload>>20)
	case errors.Is(err, http.ErrMissingFile):
		return nil, "No file selected."
	case err != nil:
		return nil, "No file part in the request."
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Sprintf("Failed to read the uploaded file: %v", err)
	}
	return data, ""
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	data, msg := s.uploaded(w, r)
	if msg != "" {
		s.redirectWithFlash(w, r, msg)
		return
	}
	res, err := s.analyzer.Run(r.Context(), bytes.NewReader(data))
	if err != nil {
		log.Printf("analysis failed: %v", err)
		s.redirectWithFlash(w, r, err.Error())
		return
	}

	var insights bytes.Buffer
	if err := goldmark.Convert([]byte(res.Insights), &insights); err != nil {
		log.Printf("analysis %s: failed to convert insights: %v", res.ID, err)
		insights.Reset()
		template.HTMLEscape(&insights, []byte(res.Insights))
	}
	s.render(w, "result.html", map[string]any{
		"ID":       res.ID,
		"Symbol":   res.Series.Symbol,
		"Span":     res.Series.Span(),
		"Summary":  res.Summary.String(),
		"Insights": template.HTML(insights.String()),
		"Chart":    template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(res.Chart)),
	})
}

func (s *Server) redirectWithFlash(w http.ResponseWriter, r *http.Request, msg string) {
	s.flash.set(w, msg)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) render(w http.ResponseWriter, page string, data any) {
	var b bytes.Buffer
	if err := pages.ExecuteTemplate(&b, page, data); err != nil {
		log.Printf("failed to render %s: %v", page, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	b.WriteTo(w)
}

// apiResponse is the body of a successful /api/analyze call.
type apiResponse struct {
	ID       string         `json:"id"`
	Summary  bourse.Summary `json:"summary"`
	Text     string         `json:"text"`
	Insights string         `json:"insights,omitempty"`
	Series   *bourse.Series `json:"series"`
}

func (s *Server) handleAPI(w http.ResponseWriter, r *http.Request) {
	var input io.Reader
	if mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); mt == "multipart/form-data" {
		data, msg := s.uploaded(w, r)
		if msg != "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
			return
		}
		input = bytes.NewReader(data)
	} else {
		input = http.MaxBytesReader(w, r.Body, s.maxUpload)
	}

	res, err := s.analyzer.Run(r.Context(), input)
	if err != nil {
		log.Printf("analysis failed: %v", err)
		writeJSON(w, statusOf(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, apiResponse{
		ID:       res.ID.String(),
		Summary:  res.Summary,
		Text:     res.Summary.String(),
		Insights: res.Insights,
		Series:   res.Series,
	})
}

// statusOf maps an analysis error to an HTTP status.
func statusOf(err error) int {
	var (
		tooLarge    *http.MaxBytesError
		formatErr   *bourse.FormatError
		analysisErr *bourse.AnalysisError
		renderErr   *chart.RenderError
	)
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &formatErr), errors.As(err, &renderErr):
		return http.StatusBadRequest
	case errors.As(err, &analysisErr):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadGateway
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to write response: %v", err)
	}
}
