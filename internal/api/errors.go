package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/nadmax/tasktracker/internal/httputil"
	"github.com/nadmax/tasktracker/internal/service"
)

// writeError maps a service error onto the JSON error envelope. Errors with
// no mapping are logged and reported as 500, carrying their message only when
// errors are exposed.
func (a *API) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *service.ValidationError

	switch {
	case errors.As(err, &verr):
		details := make([]httputil.ErrorDetail, 0, len(verr.Issues))
		for _, issue := range verr.Issues {
			details = append(details, httputil.ErrorDetail{Field: issue.Field, Issue: issue.Issue})
		}
		httputil.WriteJSONError(w, http.StatusBadRequest, httputil.CodeValidationError, verr.Message, details...)

	case errors.Is(err, service.ErrInvalidPage),
		errors.Is(err, service.ErrInvalidLimit),
		errors.Is(err, service.ErrInvalidAssignee):
		httputil.WriteJSONError(w, http.StatusBadRequest, httputil.CodeBadRequest, sentence(err.Error()))

	case errors.Is(err, service.ErrTaskNotFound),
		errors.Is(err, service.ErrEmployeeNotFound):
		httputil.WriteJSONError(w, http.StatusNotFound, httputil.CodeNotFound, sentence(err.Error()))

	case errors.Is(err, service.ErrDuplicateEmail):
		httputil.WriteJSONError(w, http.StatusConflict, httputil.CodeConflict, "email already exists",
			httputil.ErrorDetail{Field: "email", Issue: "must be unique"})

	default:
		a.logger.Error("Error occurred",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()))
		msg := "Internal Server Error"
		if a.exposeErrors {
			msg = err.Error()
		}
		httputil.WriteJSONError(w, http.StatusInternalServerError, httputil.CodeInternalError, msg)
	}
}

func sentence(msg string) string {
	if msg == "" {
		return msg
	}

	return strings.ToUpper(msg[:1]) + msg[1:]
}
