// Package chi is the JSON HTTP API.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/kailas-cloud/schemefinder/internal/domain/scheme"
	domsub "github.com/kailas-cloud/schemefinder/internal/domain/submission"
	logpkg "github.com/kailas-cloud/schemefinder/internal/logger"
	adminuc "github.com/kailas-cloud/schemefinder/internal/usecase/admin"
	catalogus "github.com/kailas-cloud/schemefinder/internal/usecase/catalog"
	healthuc "github.com/kailas-cloud/schemefinder/internal/usecase/health"
	matchuc "github.com/kailas-cloud/schemefinder/internal/usecase/match"
	subuc "github.com/kailas-cloud/schemefinder/internal/usecase/submission"
)

// CatalogService serves the published catalog.
type CatalogService interface {
	List(ctx context.Context, f catalogus.Filter) ([]scheme.Scheme, error)
	Get(ctx context.Context, idOrSlug string) (scheme.Scheme, error)
	States(ctx context.Context) ([]string, error)
	Categories(ctx context.Context) ([]scheme.Category, error)
}

// MatchService ranks the catalog for a profile.
type MatchService interface {
	Results(ctx context.Context, q matchuc.Query) (matchuc.Result, error)
}

// AdminService manages schemes.
type AdminService interface {
	List(ctx context.Context, status scheme.Status) ([]scheme.Scheme, error)
	Get(ctx context.Context, id string) (scheme.Scheme, error)
	Create(ctx context.Context, in scheme.Scheme, actor string) (scheme.Scheme, error)
	Update(ctx context.Context, id string, in scheme.Scheme, actor string) (scheme.Scheme, error)
	Delete(ctx context.Context, id, actor string) error
	Stats(ctx context.Context) (adminuc.Stats, error)
}

// SubmissionService handles visitor submissions and their review.
type SubmissionService interface {
	Submit(ctx context.Context, draft scheme.Scheme) (domsub.Submission, error)
	List(ctx context.Context) ([]domsub.Submission, error)
	Get(ctx context.Context, id string) (domsub.Submission, error)
	Review(ctx context.Context, id string, status domsub.Status, reviewer, notes string) (subuc.ReviewResult, error)
	Summarize(ctx context.Context, id string) (domsub.Submission, error)
}

// HealthService reports component health.
type HealthService interface {
	Check(ctx context.Context) healthuc.Report
}

// Services groups the use cases the API serves.
type Services struct {
	Catalog     CatalogService
	Match       MatchService
	Admin       AdminService
	Submissions SubmissionService
	Health      HealthService
}

// Server holds the HTTP handlers.
type Server struct {
	catalog       CatalogService
	match         MatchService
	admin         AdminService
	submissions   SubmissionService
	health        HealthService
	logger        *zap.Logger
	validate      *validator.Validate
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(svc Services, logger *zap.Logger) *Server {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	return &Server{
		catalog:       svc.Catalog,
		match:         svc.Match,
		admin:         svc.Admin,
		submissions:   svc.Submissions,
		health:        svc.Health,
		logger:        logger,
		validate:      v,
		errorHandlers: defaultErrorHandlers(),
	}
}

// log returns the request-scoped logger, falling back to the server logger.
func (s *Server) log(r *http.Request) *zap.Logger {
	if l := logpkg.FromContext(r.Context()); l.Core().Enabled(zap.ErrorLevel) {
		return l
	}
	return s.logger
}

// decode reads a JSON body into dst and validates it. It writes the error
// response itself and reports whether the handler may continue.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "invalid request body: "+err.Error())
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		writeValidationError(w, err)
		return false
	}
	return true
}

func writeValidationError(w http.ResponseWriter, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "validation failed")
		return
	}
	fe := verrs[0]
	field := fe.Namespace()
	if i := strings.IndexByte(field, '.'); i >= 0 {
		field = field[i+1:]
	}
	msg := fmt.Sprintf("%s: failed %q", field, fe.Tag())
	if fe.Param() != "" {
		msg = fmt.Sprintf("%s: failed %q (%s)", field, fe.Tag(), fe.Param())
	}
	writeJSON(w, http.StatusBadRequest, ErrorResponse{
		Code:    ErrorCodeValidationFailed,
		Message: msg,
		Field:   field,
	})
}
