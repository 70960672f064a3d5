package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/sadopc/schemadiff/internal/compare"
	"github.com/sadopc/schemadiff/internal/diff"
	"github.com/sadopc/schemadiff/internal/history"
	"github.com/sadopc/schemadiff/internal/i18n"
	"github.com/sadopc/schemadiff/internal/schema"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 500
)

type errorResponse struct {
	Success bool     `json:"success"`
	Error   string   `json:"error"`
	Trace   []string `json:"trace,omitempty"`
}

type compareResponse struct {
	Success bool        `json:"success"`
	Data    CompareData `json:"data"`
}

// CompareData is the payload of a successful comparison, shared by the HTTP
// API and the CLI's JSON output.
type CompareData struct {
	Local          schema.Tree     `json:"local"`
	Remote         schema.Tree     `json:"remote"`
	SchemaStatuses map[string]bool `json:"schemaStatuses"`
	Details        diff.Report     `json:"details"`
	Config         endpoints       `json:"config"`
	Meta           meta            `json:"meta"`
}

type endpoints struct {
	Local  compare.EndpointInfo `json:"local"`
	Remote compare.EndpointInfo `json:"remote"`
}

type meta struct {
	LocalVersion  string `json:"local_version"`
	RemoteVersion string `json:"remote_version"`
	DurationMS    int64  `json:"duration_ms"`
}

type langResponse struct {
	Success      bool              `json:"success"`
	Lang         string            `json:"lang"`
	Translations map[string]string `json:"translations"`
}

type historyResponse struct {
	Success bool          `json:"success"`
	Runs    []history.Run `json:"runs"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	res, err := s.comparer.Run(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, compareResponse{Success: true, Data: NewCompareData(res)})
}

// NewCompareData converts res to its wire form.
func NewCompareData(res *compare.Result) CompareData {
	return CompareData{
		Local:          res.Local,
		Remote:         res.Remote,
		SchemaStatuses: res.Statuses,
		Details:        res.Report,
		Config:         endpoints{Local: res.LocalInfo, Remote: res.RemoteInfo},
		Meta: meta{
			LocalVersion:  res.LocalVersion,
			RemoteVersion: res.RemoteVersion,
			DurationMS:    res.Duration.Milliseconds(),
		},
	}
}

func (s *Server) handleLang(w http.ResponseWriter, r *http.Request) {
	lang, translations := i18n.Lookup(r.URL.Query().Get("lang"))
	writeJSON(w, http.StatusOK, langResponse{Success: true, Lang: lang, Translations: translations})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			s.writeError(w, http.StatusBadRequest, errors.New("limit must be a positive integer"))
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	runs := []history.Run{}
	if s.history != nil {
		var err error
		if runs, err = s.history.Recent(r.Context(), limit); err != nil {
			s.writeError(w, http.StatusInternalServerError, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, historyResponse{Success: true, Runs: runs})
}

// writeError reports err to the client. The error chain is included as a
// trace outside production.
func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	resp := errorResponse{Error: err.Error()}
	if !s.cfg.IsProduction() {
		resp.Trace = errorChain(err)
	}
	writeJSON(w, status, resp)
}

// errorChain lists the messages of err and each error it wraps.
func errorChain(err error) []string {
	var chain []string
	for e := err; e != nil; e = errors.Unwrap(e) {
		chain = append(chain, e.Error())
	}
	return chain
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
