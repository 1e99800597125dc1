package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"ledger/internal/core"
	"ledger/internal/log"
)

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// pathID reads the {id} path segment. Anything but a positive integer
// cannot name a row, so callers answer 404.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// validationMessage drops the sentinel prefix so clients see the field
// problem only.
func validationMessage(err error) string {
	msg := err.Error()
	if i := strings.Index(msg, core.ErrValidation.Error()+": "); i >= 0 {
		return msg[i+len(core.ErrValidation.Error())+2:]
	}
	return msg
}

func referenceMessage(err error) string {
	var re *core.ReferenceError
	if errors.As(err, &re) {
		return strings.ToUpper(re.Error()[:1]) + re.Error()[1:]
	}
	return "Referenced entity not found"
}

// writeError maps a classified failure onto a status code and envelope.
// label names the entity the route serves, e.g. "Transaction".
func writeError(w http.ResponseWriter, r *http.Request, label, op string, err error) {
	ctx := r.Context()
	logger := log.FromContext(ctx)

	var (
		resp      *JSONResponseBuilder
		errorType string
	)
	switch {
	case errors.Is(err, errMalformedBody):
		resp, errorType = BadRequestError("Invalid JSON body"), log.ErrorTypeValidation
	case errors.Is(err, core.ErrNotFound):
		resp, errorType = NotFoundError(label+" not found"), log.ErrorTypeNotFound
	case errors.Is(err, core.ErrReferenceNotFound):
		resp, errorType = UnprocessableEntityError(referenceMessage(err)), log.ErrorTypeReference
	case errors.Is(err, core.ErrValidation):
		resp, errorType = UnprocessableEntityError(validationMessage(err)), log.ErrorTypeValidation
	case errors.Is(err, core.ErrConflict):
		resp, errorType = ErrorResponse(http.StatusConflict, label+" is still referenced and cannot be deleted"), log.ErrorTypeConflict
	default:
		id, _ := pathID(r)
		log.NewStructuredLogger(logger).LogError(ctx, "Request failed", err, log.ErrorTypeInternal, op,
			log.NewFields().
				WithEntity(label, id).
				WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.Header.Get("User-Agent")))
		InternalServerError("Internal server error").Write(w)
		return
	}

	logger.DebugContext(ctx, "Request rejected",
		log.FieldOperation, op,
		log.FieldErrorType, errorType,
		log.FieldError, err.Error())
	resp.Write(w)
}
