// Package server is the HTTP frontend: the search pages, the htmx result
// partials, the authenticated image proxy, and opensearch discovery.
package server

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/vk/searchengine/internal/blocklist"
	"github.com/vk/searchengine/internal/ctxlog"
	"github.com/vk/searchengine/internal/i18n"
	"github.com/vk/searchengine/internal/search/query"
	"github.com/vk/searchengine/internal/search/result"
)

// maxAge is the Cache-Control lifetime of search pages in seconds. Proxied
// images get ten times as long.
const maxAge = 3600

//go:embed templates/*.html templates/opensearch.xml
var templateFS embed.FS

// Searcher is the search backend the server queries.
type Searcher interface {
	Search(ctx context.Context, q *query.ParsedQuery) ([]result.Rated, map[string]error)
}

// Config carries the server's collaborators.
type Config struct {
	Parser     *query.Parser
	Searcher   Searcher
	Blocklist  *blocklist.List
	Translator *i18n.Translator
	Signer     *Signer
	// Client fetches proxied images; http.DefaultClient when nil.
	Client *http.Client
	// StaticDir is served under /static/.
	StaticDir string
	// BaseURL is the external address used in opensearch.xml.
	BaseURL string
}

// Server handles the web frontend routes.
type Server struct {
	cfg    Config
	router *httprouter.Router
	tmpl   *template.Template
}

// New creates the server and its route table.
func New(cfg Config) (*Server, error) {
	if cfg.Client == nil {
		cfg.Client = http.DefaultClient
	}
	if cfg.Signer == nil {
		cfg.Signer = NewSigner("")
	}

	s := &Server{cfg: cfg}

	tmpl, err := template.New("").Funcs(template.FuncMap{
		"highlight": highlight,
		"proxyurl":  cfg.Signer.ProxyURL,
	}).ParseFS(templateFS, "templates/*.html", "templates/opensearch.xml")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}
	s.tmpl = tmpl

	router := httprouter.New()
	router.HandlerFunc(http.MethodGet, "/", s.handleIndex)
	router.HandlerFunc(http.MethodGet, "/search", s.handleSearch)
	router.HandlerFunc(http.MethodGet, "/results", s.handleResults)
	router.HandlerFunc(http.MethodGet, "/img", s.handleImage)
	router.HandlerFunc(http.MethodGet, "/opensearch.xml", s.handleOpenSearch)
	router.HandlerFunc(http.MethodGet, "/healthz", s.handleHealth)
	if cfg.StaticDir != "" {
		router.ServeFiles("/static/*filepath", http.Dir(cfg.StaticDir))
	}
	router.NotFound = http.HandlerFunc(s.handleNotFound)
	s.router = router

	return s, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// pageData is the template context shared by all pages.
type pageData struct {
	L       *i18n.Locale
	Title   string
	Partial bool

	// Search form state.
	Query string
	Mode  query.Mode
	Page  int

	// Results page.
	ParsedQuery  *query.ParsedQuery
	Results      []result.Rated
	EngineErrors map[string]error
	NextPage     int

	// Error page.
	ErrorMessage string

	BaseURL string
}

func (s *Server) locale(r *http.Request) *i18n.Locale {
	return s.cfg.Translator.Locale(r.Header.Get("Accept-Language"))
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") != ""
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data *pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.tmpl.ExecuteTemplate(w, name, data); err != nil {
		ctxlog.FromContext(r.Context()).Error("Template rendering failed.", "template", name, "error", err)
	}
}

// renderError mirrors content negotiation on errors: htmx clients get a
// retargeted partial, browsers an error page, everything else plain text.
func (s *Server) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	l := s.locale(r)
	if isHTMX(r) {
		w.Header().Set("HX-Retarget", "#target")
		w.Header().Set("HX-Reswap", "outerHTML")
		s.render(w, r, http.StatusOK, "error.html", &pageData{
			L: l, Title: l.T("Error"), Partial: true, ErrorMessage: message,
		})
		return
	}
	if strings.Contains(r.Header.Get("Accept"), "text/html") {
		s.render(w, r, status, "error.html", &pageData{
			L: l, Title: l.T("Error"), ErrorMessage: message,
		})
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	http.Error(w, message, status)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", fmt.Sprintf("max-age=%d", maxAge))
	l := s.locale(r)
	s.render(w, r, http.StatusOK, "index.html", &pageData{
		L: l, Title: l.T("Search"), Mode: query.ModeWeb, Page: 1,
	})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.renderError(w, r, http.StatusNotFound, s.locale(r).T("PageNotFound"))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok\n")
}

// searchParams validates q, mode, and page. The error message is already
// localized.
func (s *Server) searchParams(r *http.Request) (string, query.Mode, int, error) {
	l := s.locale(r)
	values := r.URL.Query()

	if !values.Has("q") {
		return "", "", 0, fmt.Errorf("%s", l.T("NoSearchTerm"))
	}
	q := strings.TrimSpace(values.Get("q"))
	if q == "" {
		return "", "", 0, fmt.Errorf("%s", l.T("EmptySearchTerm"))
	}

	mode, err := query.ParseMode(values.Get("mode"))
	if err != nil {
		return "", "", 0, fmt.Errorf("%s", l.T("InvalidSearchMode"))
	}

	page, err := strconv.Atoi(values.Get("page"))
	if err != nil || page < 1 {
		return "", "", 0, fmt.Errorf("%s", l.T("InvalidPageNumber"))
	}

	return q, mode, page, nil
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q, mode, page, err := s.searchParams(r)
	if err != nil {
		s.renderError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	w.Header().Set("Cache-Control", fmt.Sprintf("max-age=%d", maxAge))
	s.render(w, r, http.StatusOK, "search.html", &pageData{
		L: s.locale(r), Title: q, Partial: isHTMX(r),
		Query: q, Mode: mode, Page: page,
	})
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	raw, mode, page, err := s.searchParams(r)
	if err != nil {
		s.renderError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	parsed, err := s.cfg.Parser.Parse(raw, r.Header.Get("Accept-Language"), mode, page)
	if err != nil {
		s.renderError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	start := time.Now()
	rated, engineErrs := s.cfg.Searcher.Search(r.Context(), parsed)
	if s.cfg.Blocklist != nil {
		rated = result.Filter(rated, s.cfg.Blocklist.Blocked)
	}
	ctxlog.FromContext(r.Context()).Info("Search handled.",
		"query", raw, "mode", mode, "results", len(rated), "elapsed", time.Since(start))

	nextPage := 0
	if len(rated) > 0 {
		nextPage = page + 1
	}

	w.Header().Set("Vary", "Accept-Language")
	w.Header().Set("Cache-Control", fmt.Sprintf("max-age=%d", maxAge))
	s.render(w, r, http.StatusOK, "results.html", &pageData{
		L: s.locale(r), Title: raw, Partial: isHTMX(r),
		Query: raw, Mode: mode, Page: page,
		ParsedQuery: parsed, Results: rated, EngineErrors: engineErrs,
		NextPage: nextPage,
	})
}

// handleImage proxies an upstream image. The url parameter must carry a
// valid signature so the endpoint cannot fetch arbitrary URLs.
func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	rawURL := values.Get("url")
	if rawURL == "" {
		s.renderError(w, r, http.StatusNotFound, "Not Found")
		return
	}
	if !s.cfg.Signer.Verify(rawURL, values.Get("sha")) {
		s.renderError(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, rawURL, nil)
	if err != nil {
		s.renderError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	req.Header.Set("Accept", "image/*")

	resp, err := s.cfg.Client.Do(req)
	if err != nil {
		s.renderError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		s.renderError(w, r, resp.StatusCode, resp.Status)
		return
	}
	contentType := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		s.renderError(w, r, http.StatusInternalServerError, "Not an image")
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", fmt.Sprintf("max-age=%d", maxAge*10))
	_, _ = io.Copy(w, resp.Body)
}

func (s *Server) handleOpenSearch(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/xml")
	data := &pageData{L: s.locale(r), BaseURL: s.cfg.BaseURL}
	if err := s.tmpl.ExecuteTemplate(w, "opensearch.xml", data); err != nil {
		ctxlog.FromContext(r.Context()).Error("Template rendering failed.", "template", "opensearch.xml", "error", err)
	}
}
