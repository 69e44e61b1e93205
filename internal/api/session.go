package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"github.com/vytor/runview/internal/logger"
)

const (
	sessionCookieName = "runview-session"
	sessionMaxAge     = 30 * 24 * time.Hour

	sessionIDKey     = "id"
	sessionReportKey = "report_id"
)

// Session is the per-browser state carried in a signed cookie.
type Session struct {
	ID       string
	ReportID int64

	raw *sessions.Session
}

// SessionManager signs and verifies session cookies.
type SessionManager struct {
	store *sessions.CookieStore
	name  string
}

// NewSessionManager builds a manager around hashKey. An empty key gets a
// random one, which invalidates sessions on every restart.
func NewSessionManager(hashKey []byte, secure bool) *SessionManager {
	if len(hashKey) == 0 {
		hashKey = securecookie.GenerateRandomKey(32)
	}
	store := sessions.NewCookieStore(hashKey)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(sessionMaxAge.Seconds()),
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return &SessionManager{store: store, name: sessionCookieName}
}

// load returns the caller's session, starting a fresh one when the cookie is
// missing or fails verification. fresh reports whether that happened.
func (m *SessionManager) load(r *http.Request) (sess *Session, fresh bool, err error) {
	raw, err := m.store.Get(r, m.name)
	if err != nil {
		// Get still hands back a usable empty session on decode errors.
		raw, _ = m.store.New(r, m.name)
	}

	id, _ := raw.Values[sessionIDKey].(string)
	reportID, _ := raw.Values[sessionReportKey].(int64)
	if id == "" {
		return &Session{ID: uuid.NewString(), raw: raw}, true, err
	}
	return &Session{ID: id, ReportID: reportID, raw: raw}, false, err
}

// Save writes sess back to the client.
func (m *SessionManager) Save(w http.ResponseWriter, r *http.Request, sess *Session) error {
	if sess.raw == nil {
		sess.raw, _ = m.store.New(r, m.name)
	}
	sess.raw.Values[sessionIDKey] = sess.ID
	if sess.ReportID > 0 {
		sess.raw.Values[sessionReportKey] = sess.ReportID
	} else {
		delete(sess.raw.Values, sessionReportKey)
	}
	return sess.raw.Save(r, w)
}

const sessionContextKey contextKey = "session"

func sessionFromContext(ctx context.Context) *Session {
	if v := ctx.Value(sessionContextKey); v != nil {
		if sess, ok := v.(*Session); ok {
			return sess
		}
	}
	return nil
}

// sessionMiddleware attaches the caller's session to the request context.
func (s *Server) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		sess, fresh, err := s.Sessions.load(r)
		if err != nil {
			if scErr, ok := err.(securecookie.Error); ok && scErr.IsDecode() {
				log.Warn("discarding invalid session cookie: %v", err)
			} else {
				log.Debug("session cookie unreadable: %v", err)
			}
		}
		if fresh {
			if err := s.Sessions.Save(w, r, sess); err != nil {
				log.Error("failed to save session: %v", err)
			}
			log.Debug("started session %s", sess.ID)
		}

		ctx := context.WithValue(r.Context(), sessionContextKey, sess)
		ctx = logger.NewContext(ctx, log.WithField("session", sess.ID))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// uploadGuard allows one upload in flight per session.
type uploadGuard struct {
	mu     sync.Mutex
	active map[string]struct{}
}

func (g *uploadGuard) acquire(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.active == nil {
		g.active = make(map[string]struct{})
	}
	if _, busy := g.active[id]; busy {
		return false
	}
	g.active[id] = struct{}{}
	return true
}

func (g *uploadGuard) release(id string) {
	g.mu.Lock()
	delete(g.active, id)
	g.mu.Unlock()
}
