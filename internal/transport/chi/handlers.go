package chi

import (
	"fmt"
	"net/http"
	"net/url"

	gochi "github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kailas-cloud/schemefinder/internal/domain/eligibility"
	"github.com/kailas-cloud/schemefinder/internal/domain/profile"
	"github.com/kailas-cloud/schemefinder/internal/domain/scheme"
	domsub "github.com/kailas-cloud/schemefinder/internal/domain/submission"
	catalogus "github.com/kailas-cloud/schemefinder/internal/usecase/catalog"
	healthuc "github.com/kailas-cloud/schemefinder/internal/usecase/health"
	matchuc "github.com/kailas-cloud/schemefinder/internal/usecase/match"
)

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// ListSchemes handles GET /api/v1/schemes.
func (s *Server) ListSchemes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	schemes, err := s.catalog.List(r.Context(), catalogus.Filter{
		Category: scheme.Category(q.Get("category")),
		State:    q.Get("state"),
	})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	states, err := s.catalog.States(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	categories, err := s.catalog.Categories(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, SchemeListResponse{
		Schemes:    orEmpty(schemes),
		States:     orEmpty(states),
		Categories: orEmpty(categories),
	})
}

// GetScheme handles GET /api/v1/schemes/{idOrSlug}.
func (s *Server) GetScheme(w http.ResponseWriter, r *http.Request) {
	sc, err := s.catalog.Get(r.Context(), gochi.URLParam(r, "idOrSlug"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sc)
}

// ListStates handles GET /api/v1/states.
func (s *Server) ListStates(w http.ResponseWriter, r *http.Request) {
	states, err := s.catalog.States(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"states": orEmpty(states)})
}

// ListCategories handles GET /api/v1/categories.
func (s *Server) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.catalog.Categories(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]scheme.Category{"categories": orEmpty(categories)})
}

// Results handles GET /api/v1/results.
func (s *Server) Results(w http.ResponseWriter, r *http.Request) {
	params, err := bindResultsParams(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, err.Error())
		return
	}
	query, err := params.toQuery()
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	res, err := s.match.Results(r.Context(), query)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ResultsResponse{
		Profile:  res.Profile,
		Schemes:  orEmpty(res.Matches),
		Tags:     orEmpty(res.Tags),
		Total:    len(res.Matches),
		Eligible: res.Eligible,
		MaxScore: eligibility.MaxScore,
	})
}

// CreateSubmission handles POST /api/v1/submissions.
func (s *Server) CreateSubmission(w http.ResponseWriter, r *http.Request) {
	var req SubmissionRequest
	if !s.decode(w, r, &req) {
		return
	}
	sub, err := s.submissions.Submit(r.Context(), req.SchemeData.toDomain())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, CreatedResponse{ID: sub.ID})
}

// AdminListSchemes handles GET /api/v1/admin/schemes.
func (s *Server) AdminListSchemes(w http.ResponseWriter, r *http.Request) {
	status := scheme.Status(r.URL.Query().Get("status"))
	if status != "" && !status.IsValid() {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "status must be draft or published")
		return
	}
	items, err := s.admin.List(r.Context(), status)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SchemeItemsResponse{Items: orEmpty(items)})
}

// AdminGetScheme handles GET /api/v1/admin/schemes/{id}.
func (s *Server) AdminGetScheme(w http.ResponseWriter, r *http.Request) {
	sc, err := s.admin.Get(r.Context(), gochi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sc)
}

// AdminCreateScheme handles POST /api/v1/admin/schemes.
func (s *Server) AdminCreateScheme(w http.ResponseWriter, r *http.Request) {
	var req SchemeRequest
	if !s.decode(w, r, &req) {
		return
	}
	sc, err := s.admin.Create(r.Context(), req.toDomain(), actorFrom(r))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sc)
}

// AdminUpdateScheme handles PUT /api/v1/admin/schemes/{id}.
func (s *Server) AdminUpdateScheme(w http.ResponseWriter, r *http.Request) {
	var req SchemeRequest
	if !s.decode(w, r, &req) {
		return
	}
	sc, err := s.admin.Update(r.Context(), gochi.URLParam(r, "id"), req.toDomain(), actorFrom(r))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sc)
}

// AdminDeleteScheme handles DELETE /api/v1/admin/schemes/{id}.
func (s *Server) AdminDeleteScheme(w http.ResponseWriter, r *http.Request) {
	if err := s.admin.Delete(r.Context(), gochi.URLParam(r, "id"), actorFrom(r)); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AdminStats handles GET /api/v1/admin/stats.
func (s *Server) AdminStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.admin.Stats(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// AdminListSubmissions handles GET /api/v1/admin/submissions.
func (s *Server) AdminListSubmissions(w http.ResponseWriter, r *http.Request) {
	items, err := s.submissions.List(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SubmissionItemsResponse{Items: orEmpty(items)})
}

// AdminGetSubmission handles GET /api/v1/admin/submissions/{id}.
func (s *Server) AdminGetSubmission(w http.ResponseWriter, r *http.Request) {
	sub, err := s.submissions.Get(r.Context(), gochi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

// AdminReviewSubmission handles PATCH /api/v1/admin/submissions/{id}.
func (s *Server) AdminReviewSubmission(w http.ResponseWriter, r *http.Request) {
	var req ReviewRequest
	if !s.decode(w, r, &req) {
		return
	}
	res, err := s.submissions.Review(r.Context(),
		gochi.URLParam(r, "id"), domsub.Status(req.Status), actorFrom(r), req.Notes)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// AdminSummarizeSubmission handles POST /api/v1/admin/submissions/{id}/summary.
func (s *Server) AdminSummarizeSubmission(w http.ResponseWriter, r *http.Request) {
	sub, err := s.submissions.Summarize(r.Context(), gochi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func bindResultsParams(raw url.Values) (ResultsParams, error) {
	// Empty values mean "use the default", the way the results form submits them.
	q := make(url.Values, len(raw))
	for k, vs := range raw {
		if len(vs) > 0 && vs[0] != "" {
			q[k] = vs[:1]
		}
	}

	var p ResultsParams
	binds := []struct {
		name string
		dest any
	}{
		{"state", &p.State},
		{"category", &p.Category},
		{"gender", &p.Gender},
		{"age", &p.Age},
		{"income", &p.Income},
		{"q", &p.Q},
		{"tag", &p.Tag},
		{"sort", &p.Sort},
	}
	for _, b := range binds {
		if err := runtime.BindQueryParameter("form", true, false, b.name, q, b.dest); err != nil {
			return ResultsParams{}, fmt.Errorf("invalid format for parameter %s: %w", b.name, err)
		}
	}
	return p, nil
}

func (p *ResultsParams) toQuery() (matchuc.Query, error) {
	base := profile.Default()
	if p.State != nil {
		base.State = *p.State
	}
	if p.Category != nil {
		base.Category = scheme.Category(*p.Category)
	}
	if p.Gender != nil {
		base.Gender = scheme.Gender(*p.Gender)
	}
	if p.Age != nil {
		base.Age = *p.Age
	}
	if p.Income != nil {
		base.Income = *p.Income
	}

	prof, err := profile.New(base.State, base.Category, base.Gender, base.Age, base.Income)
	if err != nil {
		return matchuc.Query{}, err
	}

	var order matchuc.Sort
	if p.Sort != nil {
		if order, err = matchuc.ParseSort(*p.Sort); err != nil {
			return matchuc.Query{}, err
		}
	}

	q := matchuc.Query{Profile: prof, Sort: order}
	if p.Q != nil {
		q.Text = *p.Q
	}
	if p.Tag != nil {
		q.Tag = *p.Tag
	}
	return q, nil
}
