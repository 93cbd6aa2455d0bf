// Package webui serves a small HTTP front end for filling tables and probing
// samples.
//
// Routes:
//
//	GET  /          → form
//	POST /fill      → fills the table from the form text; renders it inline
//	POST /api/fill  → body is the input text; ?format=text|json|arrow|parquet
//	POST /api/probe → body is a sample; ?name=&comma= ; returns a YAML pipeline
package webui

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log"
	"net/http"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v2"

	"tablepipe/internal/output"
	"tablepipe/internal/probe"
	"tablepipe/internal/reference"
	"tablepipe/internal/schema"
	"tablepipe/internal/table"
)

// DefaultMaxBytes limits request bodies when Config.MaxBytes is zero.
const DefaultMaxBytes = 32 << 20

// Config controls server startup.
type Config struct {
	Addr string

	// Schema used by the fill routes; nil selects the cities schema.
	Schema *schema.Schema

	MaxBytes int64
}

// Server wraps an http.ServeMux with the routes above.
type Server struct {
	cfg  Config
	mux  *http.ServeMux
	tmpl *template.Template
}

// NewServer constructs a Server with routes and the embedded template.
func NewServer(cfg Config) *Server {
	if cfg.Schema == nil {
		cfg.Schema = reference.Schema()
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = DefaultMaxBytes
	}
	s := &Server{
		cfg:  cfg,
		mux:  http.NewServeMux(),
		tmpl: template.Must(template.New("index").Parse(indexHTML)),
	}
	s.routes()
	return s
}

// Handler exposes the routes, mainly for tests.
func (s *Server) Handler() http.Handler { return s.mux }

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	return http.ListenAndServe(s.cfg.Addr, s.mux)
}

func (s *Server) routes() {
	s.mux.HandleFunc("/", s.handleIndex)
	s.mux.HandleFunc("/fill", s.handleFill)
	s.mux.HandleFunc("/api/fill", s.handleAPIFill)
	s.mux.HandleFunc("/api/probe", s.handleAPIProbe)
}

type page struct {
	Data       string
	Header     bool
	ResultText string
	Error      string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	_ = s.tmpl.Execute(w, page{Data: strings.TrimSpace(reference.SampleData)})
}

func (s *Server) handleFill(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form: "+err.Error(), http.StatusBadRequest)
		return
	}

	data := page{Data: r.FormValue("data"), Header: r.FormValue("header") == "on"}
	var buf bytes.Buffer
	if err := s.fill(&buf, data.Data, output.Text{Header: data.Header}); err != nil {
		data.Error = err.Error()
	} else {
		data.ResultText = buf.String()
	}
	if err := s.tmpl.Execute(w, data); err != nil {
		log.Println("template error:", err)
	}
}

func (s *Server) handleAPIFill(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST only", http.StatusMethodNotAllowed)
		return
	}
	format := r.URL.Query().Get("format")
	wr, err := output.New(format)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if _, ok := wr.(output.Text); ok {
		wr = output.Text{Header: r.URL.Query().Get("header") == "1"}
	}

	body, err := s.readBody(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
		return
	}
	var buf bytes.Buffer
	if err := s.fill(&buf, body, wr); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	w.Header().Set("Content-Type", contentType(format))
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleAPIProbe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST only", http.StatusMethodNotAllowed)
		return
	}
	q := r.URL.Query()
	comma := ','
	if c := q.Get("comma"); c != "" {
		if utf8.RuneCountInString(c) != 1 {
			http.Error(w, fmt.Sprintf("comma must be a single character, got %q", c), http.StatusBadRequest)
			return
		}
		comma, _ = utf8.DecodeRuneInString(c)
	}

	body, err := s.readBody(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
		return
	}
	p, err := probe.FromSample([]byte(body), probe.Options{
		Comma: comma,
		Name:  strings.TrimSpace(q.Get("name")),
	})
	if err != nil {
		http.Error(w, "probe failed: "+err.Error(), http.StatusBadRequest)
		return
	}
	b, err := yaml.Marshal(p)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
	_, _ = w.Write(b)
}

// fill builds a fresh table per request so concurrent requests share nothing.
func (s *Server) fill(w io.Writer, text string, wr output.Writer) error {
	t, err := table.New(s.cfg.Schema)
	if err != nil {
		return err
	}
	if _, err := t.Fill(text); err != nil {
		return err
	}
	return wr.Write(w, t)
}

func (s *Server) readBody(w http.ResponseWriter, r *http.Request) (string, error) {
	b, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxBytes))
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return "", fmt.Errorf("body exceeds %d bytes", mbe.Limit)
		}
		return "", err
	}
	return string(b), nil
}

func contentType(format string) string {
	switch format {
	case output.FormatJSON:
		return "application/json"
	case output.FormatArrow:
		return "application/vnd.apache.arrow.stream"
	case output.FormatParquet:
		return "application/vnd.apache.parquet"
	default:
		return "text/plain; charset=utf-8"
	}
}

//go:embed index.tmpl.html
var indexHTML string
