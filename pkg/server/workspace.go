package server

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-viewdef/pkg/configs"
	"github.com/goliatone/go-viewdef/pkg/history"
	"github.com/goliatone/go-viewdef/pkg/message"
	"github.com/goliatone/go-viewdef/pkg/toolbar"
)

// workspace is the page state of one browser: its toolbar, messages,
// history and the controller driving them.
type workspace struct {
	id   string
	ctrl *configs.Controller
	seen time.Time
}

func (s *Server) newWorkspace(id string) (*workspace, error) {
	bar, err := toolbar.New(toolbar.WithDisabledPolicy(s.policy))
	if err != nil {
		return nil, err
	}
	limit := s.history
	if limit <= 0 {
		limit = history.DefaultLimit
	}
	ctrl, err := configs.New(configs.Options{
		Service:    s.service,
		Toolbar:    bar,
		Messages:   message.NewCenter(message.WithClock(s.now)),
		History:    history.New(limit),
		Generators: s.generators,
		Logger:     s.logger.With("workspace", id),
		SlowAfter:  s.slow,
	})
	if err != nil {
		return nil, err
	}
	return &workspace{id: id, ctrl: ctrl, seen: s.now()}, nil
}

// workspaceFor returns the workspace named by the request cookie, creating
// one and setting the cookie when there is none.
func (s *Server) workspaceFor(w http.ResponseWriter, r *http.Request) (*workspace, error) {
	id := ""
	if c, err := r.Cookie(s.cookie); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			id = c.Value
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if ws, ok := s.workspaces[id]; ok && id != "" {
		ws.seen = s.now()
		return ws, nil
	}
	if id == "" {
		id = uuid.NewString()
	}
	ws, err := s.newWorkspace(id)
	if err != nil {
		return nil, err
	}
	s.workspaces[id] = ws
	s.sweepLocked()
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return ws, nil
}

// sweepLocked drops idle workspaces and sessions. Callers hold s.mu.
func (s *Server) sweepLocked() {
	cutoff := s.now().Add(-s.ttl)
	for id, ws := range s.workspaces {
		if ws.seen.Before(cutoff) {
			delete(s.workspaces, id)
		}
	}
	for id, sess := range s.sessions {
		if sess.lastSeen().Before(cutoff) {
			delete(s.sessions, id)
		}
	}
	s.metrics.sessions.Set(float64(len(s.sessions)))
}
