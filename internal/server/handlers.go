package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/debimpact/pkg/errors"
	"github.com/matzehuels/debimpact/pkg/pipeline"
	"github.com/matzehuels/debimpact/pkg/pkgdb"
	"github.com/matzehuels/debimpact/pkg/resolve"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"packages": s.cfg.Database.Len(),
		"digest":   s.cfg.Digest,
		"source":   s.cfg.Source,
	})
}

type packageResponse struct {
	Name          string   `json:"name"`
	Section       string   `json:"section"`
	Architecture  string   `json:"architecture"`
	Homepage      string   `json:"homepage,omitempty"`
	Binaries      []string `json:"binaries"`
	BuildDepends  string   `json:"build_depends,omitempty"`
	BuildDepIndep string   `json:"build_depends_indep,omitempty"`
}

// name reads and validates the {name} URL parameter.
func name(r *http.Request) (string, error) {
	n := chi.URLParam(r, "name")
	if err := errors.ValidatePackageName(n); err != nil {
		return "", err
	}
	return n, nil
}

func (s *Server) handlePackage(w http.ResponseWriter, r *http.Request) {
	n, err := name(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rec, ok := s.cfg.Database.Lookup(n)
	if !ok {
		s.writeError(w, r, errors.New(errors.ErrCodeNotFound, "source package %s is not in the corpus", n))
		return
	}
	writeJSON(w, http.StatusOK, packageResponse{
		Name:          rec.Name,
		Section:       rec.Section,
		Architecture:  rec.Architecture,
		Homepage:      rec.Homepage,
		Binaries:      rec.Binaries,
		BuildDepends:  rec.BuildDepends,
		BuildDepIndep: rec.BuildDependsIndep,
	})
}

func (s *Server) handleSourceOf(w http.ResponseWriter, r *http.Request) {
	n, err := name(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"binary": n,
		"source": s.cfg.Database.SourceOf(n),
	})
}

type dependentResponse struct {
	Package string `json:"package"`
	pkgdb.Metadata
}

func (s *Server) handleDependents(w http.ResponseWriter, r *http.Request) {
	n, err := name(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	filter := s.cfg.Resolve.FilterPureAll
	if v := r.URL.Query().Get("filter_pure_all"); v != "" {
		filter, err = strconv.ParseBool(v)
		if err != nil {
			s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "filter_pure_all must be a boolean"))
			return
		}
	}
	deps := s.cfg.Database.ReverseDependents(n, filter)
	out := make([]dependentResponse, len(deps))
	for i, d := range deps {
		out[i] = dependentResponse{Package: d.Name, Metadata: d.Metadata}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"binary":          n,
		"filter_pure_all": filter,
		"dependents":      out,
	})
}

// resolveRequest is the body of POST /v1/resolve. Omitted options take the
// server's defaults.
type resolveRequest struct {
	Mode          resolve.Mode `json:"mode"`
	Targets       []string     `json:"targets"`
	FilterPureAll *bool        `json:"filter_pure_all"`
	MaxDepth      int          `json:"max_depth"`
	Refresh       bool         `json:"refresh"`
	Save          bool         `json:"save"`
}

type resolveResponse struct {
	*resolve.Report
	Cached bool `json:"cached"`
	Saved  bool `json:"saved"`
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body"))
		return
	}

	opts := pipeline.Options{
		Mode:    req.Mode,
		Targets: req.Targets,
		Resolve: s.cfg.Resolve,
		Refresh: req.Refresh,
	}
	if req.FilterPureAll != nil {
		opts.Resolve.FilterPureAll = *req.FilterPureAll
	}
	if req.MaxDepth < 0 {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "max_depth must not be negative"))
		return
	}
	if req.MaxDepth > 0 {
		if req.Mode == resolve.ModeSource {
			opts.Resolve.SourceMaxDepth = req.MaxDepth
		} else {
			opts.Resolve.MaxDepth = req.MaxDepth
		}
	}

	report, hit, err := s.cfg.Runner.ResolveWithCacheInfo(r.Context(), s.cfg.Database, s.cfg.Digest, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp := resolveResponse{Report: report, Cached: hit}
	if req.Save {
		if s.cfg.Store == nil {
			s.writeError(w, r, errors.New(errors.ErrCodeUnsupported, "report history is not configured"))
			return
		}
		if err := s.cfg.Store.Save(r.Context(), report); err != nil {
			s.writeError(w, r, err)
			return
		}
		resp.Saved = true
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Store == nil {
		s.writeError(w, r, errors.New(errors.ErrCodeUnsupported, "report history is not configured"))
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "limit must be a non-negative integer"))
			return
		}
		limit = n
	}
	recent, err := s.cfg.Store.Recent(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reports": recent})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Store == nil {
		s.writeError(w, r, errors.New(errors.ErrCodeUnsupported, "report history is not configured"))
		return
	}
	report, err := s.cfg.Store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
