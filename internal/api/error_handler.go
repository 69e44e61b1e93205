package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/vytor/runview/internal/errors"
	"github.com/vytor/runview/internal/logger"
)

// feedbackPrefix starts every message shown in the feedback banner.
const feedbackPrefix = "Error: "

func feedbackMessage(appErr *errors.AppError) string {
	return feedbackPrefix + appErr.Message
}

func isAPIRequest(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/") || r.Header.Get("Accept") == "application/json"
}

func logAppError(r *http.Request, appErr *errors.AppError) {
	log := logger.FromContext(r.Context())
	if appErr.Status >= 500 {
		log.Error("server error: %v", appErr)
	} else if appErr.Status >= 400 {
		log.Warn("client error: %v", appErr)
	} else {
		log.Debug("error: %v", appErr)
	}
}

// handleError centralizes error handling for HTTP responses. API callers get
// a JSON body; pages get the feedback banner.
func (s *Server) handleError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := errors.AsAppError(err)
	logAppError(r, appErr)

	if isAPIRequest(r) {
		writeJSON(w, appErr.Status, map[string]any{
			"error": map[string]any{
				"code":    appErr.Code,
				"message": appErr.Message,
			},
		})
		return
	}

	s.renderStatus(w, r, appErr.Status, "pages/error.html", pageData{
		"feedback": feedbackMessage(appErr),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
