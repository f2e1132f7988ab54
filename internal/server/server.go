package server

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/TobiSchelling/blogsmith/internal/content"
	"github.com/TobiSchelling/blogsmith/internal/database"
	"github.com/TobiSchelling/blogsmith/internal/output"
	"github.com/TobiSchelling/blogsmith/internal/seo"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

var slugRe = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

// Server is the HTTP server for previewing saved drafts.
type Server struct {
	db        *database.DB
	outputDir string
	pages     map[string]*template.Template
	mux       *http.ServeMux
	log       *slog.Logger
}

// New creates a new Server.
func New(db *database.DB, outputDir string, log *slog.Logger) (*Server, error) {
	funcMap := template.FuncMap{
		"markdown": renderMarkdown,
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
	}

	// Parse base template first
	base, err := template.New("base.html").Funcs(funcMap).ParseFS(templateFS, "templates/base.html")
	if err != nil {
		return nil, fmt.Errorf("parsing base template: %w", err)
	}

	// Each page gets its own clone of base so {{define "content"}} does not collide.
	pageNames := []string{"index.html", "draft.html"}
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("cloning base for %s: %w", name, err)
		}
		_, err = clone.ParseFS(templateFS, "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", name, err)
		}
		pages[name] = clone
	}

	s := &Server{db: db, outputDir: outputDir, pages: pages, mux: http.NewServeMux(), log: log}
	s.routes()
	return s, nil
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	staticSub, _ := fs.Sub(staticFS, "static")
	s.mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticSub))))

	imagesDir := filepath.Join(s.outputDir, "images")
	s.mux.Handle("/images/", http.StripPrefix("/images/", http.FileServer(http.Dir(imagesDir))))

	s.mux.HandleFunc("/", s.handleIndex)
	s.mux.HandleFunc("/draft/", s.handleDraft)
}

type draftRow struct {
	Run         database.Run
	Publication *database.Publication
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	runs, err := s.db.GetSavedRuns()
	if err != nil {
		s.log.Error("listing saved runs", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	rows := make([]draftRow, 0, len(runs))
	for _, run := range runs {
		pub, err := s.db.GetLatestPublication(run.Slug)
		if err != nil {
			s.log.Warn("loading publication", "slug", run.Slug, "error", err)
		}
		rows = append(rows, draftRow{Run: run, Publication: pub})
	}

	stats, err := s.db.GetStats()
	if err != nil {
		s.log.Warn("loading stats", "error", err)
	}

	s.render(w, "index.html", map[string]any{
		"Drafts": rows,
		"Stats":  stats,
	})
}

func (s *Server) handleDraft(w http.ResponseWriter, r *http.Request) {
	slug := strings.TrimPrefix(r.URL.Path, "/draft/")
	if slug == "" {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	if !slugRe.MatchString(slug) {
		http.NotFound(w, r)
		return
	}

	data, err := os.ReadFile(output.MarkdownPath(s.outputDir, slug))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	doc := content.Parse(string(data))

	keyword := strings.TrimSpace(r.URL.Query().Get("keyword"))
	if keyword == "" {
		keyword = doc.Field(content.FieldKeyword)
	}
	if keyword == "" {
		if run, _ := s.db.GetLatestRunBySlug(slug); run != nil {
			keyword = run.Keyword
		}
	}

	results := seo.Run(doc, keyword)
	pubs, err := s.db.GetPublications(slug, 10)
	if err != nil {
		s.log.Warn("loading publications", "slug", slug, "error", err)
	}

	s.render(w, "draft.html", map[string]any{
		"Slug":         slug,
		"Title":        doc.Field(content.FieldTitle),
		"Meta":         doc.Field(content.FieldMetaDescription),
		"Keyword":      keyword,
		"Body":         doc.Body,
		"Results":      results,
		"Tally":        seo.Summarize(results),
		"Words":        seo.WordCount(doc.Body),
		"Publications": pubs,
	})
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	tmpl, ok := s.pages[name]
	if !ok {
		s.log.Error("template not found", "name", name)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base.html", data); err != nil {
		s.log.Error("rendering template", "name", name, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}

// renderMarkdown converts a draft body to HTML. Image links are relative to
// the drafts directory, so they are rooted at /images/.
func renderMarkdown(text string) template.HTML {
	text = strings.ReplaceAll(text, "](images/", "](/images/")
	var buf bytes.Buffer
	if err := md.Convert([]byte(text), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(text))
	}
	return template.HTML(buf.String()) //nolint: gosec
}

// Serve starts the HTTP server on the given port.
func Serve(db *database.DB, outputDir string, port int, log *slog.Logger) error {
	srv, err := New(db, outputDir, log)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("127.0.0.1:%d", port)
	log.Info("preview server listening", "url", "http://"+addr)
	return http.ListenAndServe(addr, srv.Handler())
}
