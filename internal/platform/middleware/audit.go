package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/flourish/riskassess/internal/platform/auth"
)

// AuditEntry represents an access log entry produced by the middleware.
// It captures who touched which study's assessment data, when, from where,
// and the action type.
type AuditEntry struct {
	UserEmail  string
	UserRoles  []string
	Resource   string
	StudyID    string
	Action     string // read, create, update, delete
	IPAddress  string
	UserAgent  string
	Path       string
	Method     string
	Timestamp  time.Time
	RequestID  string
	StatusCode int
}

// AuditRecorder is the interface the audit middleware uses to persist
// entries. It decouples the middleware from the assessment audit store so
// that tests can provide a mock implementation.
type AuditRecorder interface {
	RecordAccess(entry AuditEntry) error
}

// AuditRecorderFunc is a function adapter for AuditRecorder.
type AuditRecorderFunc func(entry AuditEntry) error

func (f AuditRecorderFunc) RecordAccess(entry AuditEntry) error {
	return f(entry)
}

// Audit returns Echo middleware that logs access to /api/v1/* routes. The
// authenticated user comes from JWT claims on the request context, the study
// identifier from the path or query string. Entries always go to the
// structured log; an optional AuditRecorder persists them as well.
func Audit(logger zerolog.Logger, recorders ...AuditRecorder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			path := req.URL.Path

			if !isAuditablePath(path) {
				return next(c)
			}

			// Execute the handler first so we capture the response status
			err := next(c)

			entry := AuditEntry{
				Timestamp:  time.Now().UTC(),
				Path:       path,
				Method:     req.Method,
				IPAddress:  c.RealIP(),
				UserAgent:  req.UserAgent(),
				StatusCode: c.Response().Status,
			}

			ctx := req.Context()
			entry.UserEmail = auth.UserEmailFromContext(ctx)
			entry.UserRoles = auth.RolesFromContext(ctx)

			if rid, ok := c.Get("request_id").(string); ok {
				entry.RequestID = rid
			}

			entry.Action = httpMethodToAction(req.Method)
			entry.Resource = extractResource(path)
			entry.StudyID = extractStudyID(c)

			if len(recorders) > 0 && recorders[0] != nil {
				if recErr := recorders[0].RecordAccess(entry); recErr != nil {
					logger.Error().Err(recErr).
						Str("request_id", entry.RequestID).
						Msg("failed to record audit entry")
				}
			}

			logger.Info().
				Str("type", "access_audit").
				Str("request_id", entry.RequestID).
				Str("user_email", entry.UserEmail).
				Strs("user_roles", entry.UserRoles).
				Str("resource", entry.Resource).
				Str("study_id", entry.StudyID).
				Str("action", entry.Action).
				Str("method", entry.Method).
				Str("path", entry.Path).
				Str("remote_ip", entry.IPAddress).
				Int("status", entry.StatusCode).
				Msg("assessment_access")

			return err
		}
	}
}

// isAuditablePath returns true if the path is under /api/v1/.
func isAuditablePath(path string) bool {
	return strings.HasPrefix(path, "/api/v1/")
}

// httpMethodToAction maps HTTP methods to audit action codes.
func httpMethodToAction(method string) string {
	switch method {
	case http.MethodGet, http.MethodHead:
		return "read"
	case http.MethodPost:
		return "create"
	case http.MethodPut, http.MethodPatch:
		return "update"
	case http.MethodDelete:
		return "delete"
	default:
		return "read"
	}
}

// extractResource parses the first path segment after the API prefix.
//
//	/api/v1/assessments/...   -> assessments
//	/api/v1/studies/...       -> studies
//	/api/v1/notifications/... -> notifications
func extractResource(path string) string {
	segments := strings.Split(strings.TrimPrefix(path, "/api/v1/"), "/")
	if len(segments) > 0 && segments[0] != "" {
		return segments[0]
	}
	return "unknown"
}

// studyPathMarkers are path segments whose following segment is a study ID.
var studyPathMarkers = map[string]bool{
	"by-study":                    true,
	"assessment-audit":            true,
	"assessment-timeline":         true,
	"assessment-edit-permissions": true,
}

// extractStudyID attempts to find a study identifier in the request. It
// checks UUID-shaped path segments following a known marker segment, then
// falls back to the studyId query parameter.
func extractStudyID(c echo.Context) string {
	segments := strings.Split(strings.Trim(c.Request().URL.Path, "/"), "/")
	for i, seg := range segments {
		if studyPathMarkers[seg] && i+1 < len(segments) && isUUIDLike(segments[i+1]) {
			return segments[i+1]
		}
	}

	if studyID := c.QueryParam("studyId"); studyID != "" {
		return studyID
	}

	return ""
}

func isUUIDLike(s string) bool {
	if s == "" {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}
