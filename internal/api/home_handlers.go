package api

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/vytor/runview/internal/analyzer"
	"github.com/vytor/runview/internal/errors"
	"github.com/vytor/runview/internal/logger"
)

// currentReport renders the report the session last produced. A report that
// has since been deleted or pruned is forgotten.
func (s *Server) currentReport(w http.ResponseWriter, r *http.Request, sess *Session) (*reportView, error) {
	if sess == nil || sess.ReportID == 0 {
		return nil, nil
	}
	log := logger.FromContext(r.Context()).WithField("report_id", sess.ReportID)

	report, payload, err := s.ReportService.GetReport(r.Context(), sess.ReportID)
	if err != nil {
		if errors.AsAppError(err).Code == errors.ErrCodeNotFound {
			log.Debug("session report is gone, clearing")
			sess.ReportID = 0
			if err := s.Sessions.Save(w, r, sess); err != nil {
				log.Error("failed to save session: %v", err)
			}
			return nil, nil
		}
		return nil, err
	}
	return s.renderReport(r, report, payload)
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	log.Debug("rendering home page")

	view, err := s.currentReport(w, r, sessionFromContext(r.Context()))
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.render(w, r, "pages/home.html", pageData{
		"report": view,
	})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)
	sess := sessionFromContext(ctx)

	if !s.uploads.acquire(sess.ID) {
		log.Warn("rejecting overlapping upload")
		s.uploadFailed(w, r, sess, errors.NewConflictError("an upload is already in progress"))
		return
	}
	defer s.uploads.release(sess.ID)

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes())
	file, header, err := r.FormFile(analyzer.FileField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			s.uploadFailed(w, r, sess, errors.NewBadRequestError(fmt.Sprintf("file is larger than %d bytes", tooLarge.Limit)))
			return
		}
		log.Debug("no file in upload: %v", err)
		s.uploadFailed(w, r, sess, errors.NewBadRequestError("Please select a file!"))
		return
	}
	defer file.Close()

	log = log.WithFields(map[string]any{"filename": header.Filename, "size": header.Size})
	log.Info("upload received")

	report, _, err := s.ReportService.Analyze(ctx, header.Filename, file)
	if err != nil {
		s.uploadFailed(w, r, sess, err)
		return
	}

	s.Metrics.observeUpload(nil)
	sess.ReportID = report.ID
	if err := s.Sessions.Save(w, r, sess); err != nil {
		log.Error("failed to save session: %v", err)
	}
	log.Info("upload analyzed as report %d", report.ID)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// uploadFailed shows exactly one feedback message above whatever report the
// session was already showing.
func (s *Server) uploadFailed(w http.ResponseWriter, r *http.Request, sess *Session, err error) {
	appErr := errors.AsAppError(err)
	logAppError(r, appErr)
	s.Metrics.observeUpload(appErr)

	data := pageData{"feedback": feedbackMessage(appErr)}
	view, verr := s.currentReport(w, r, sess)
	if verr != nil {
		logger.FromContext(r.Context()).Warn("failed to reload current report: %v", verr)
	}
	if view != nil {
		data["report"] = view
	}
	s.renderStatus(w, r, appErr.Status, "pages/home.html", data)
}
