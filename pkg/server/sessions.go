package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/goliatone/go-viewdef/internal/ctxlog"
	"github.com/goliatone/go-viewdef/pkg/configs"
	"github.com/goliatone/go-viewdef/pkg/editor"
	"github.com/goliatone/go-viewdef/pkg/faults"
	"github.com/goliatone/go-viewdef/pkg/render"
)

const (
	socketReadWait  = 60 * time.Second
	socketWriteWait = 10 * time.Second
	socketPingEvery = 54 * time.Second
)

// ErrUnknownSession is returned for expired or made up session ids.
var ErrUnknownSession = faults.New(faults.KindNotFound, errors.New("server: unknown editing session"))

// session is one open editor form. The form is not safe for concurrent use,
// so every access goes through mu. seen is read by the sweeper without mu.
type session struct {
	id       string
	configID string
	ws       *workspace
	options  render.RenderOptions

	mu   sync.Mutex
	form *editor.Form
	seen atomic.Int64
}

func (s *session) touch(now time.Time) { s.seen.Store(now.UnixNano()) }

func (s *session) lastSeen() time.Time { return time.Unix(0, s.seen.Load()) }

// openSession registers form under a new id and points the page options at
// the session endpoints.
func (s *Server) openSession(ws *workspace, configID string, form *editor.Form, options render.RenderOptions) *session {
	sess := &session{
		id:       uuid.NewString(),
		configID: configID,
		ws:       ws,
		form:     form,
	}
	sess.touch(s.now())
	options.Session = sess.id
	options.Action = "/editor/sessions/" + sess.id + "/submit"
	sess.options = options

	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.sweepLocked()
	s.mu.Unlock()
	return sess
}

func (s *Server) session(id string) (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrUnknownSession
	}
	return sess, nil
}

// dispatch applies ev to the session form and renders the resulting patches.
func (s *Server) dispatch(ctx context.Context, sess *session, ev editor.Event) ([]render.WirePatch, error) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.touch(s.now())

	patches, err := sess.form.Dispatch(ev)
	s.metrics.event(string(ev.Action), outcome(err))
	if err != nil {
		ctxlog.FromContext(ctx).Debug("editor event rejected", "session", sess.id, "block", ev.Block, "action", ev.Action, "error", err)
		return nil, err
	}
	return render.EncodePatches(ctx, s.renderer, patches, sess.options)
}

// handleOpenSession loads a configuration into a new editing session for
// clients that drive the form without the page.
func (s *Server) handleOpenSession(w http.ResponseWriter, r *http.Request) {
	ws, err := s.workspaceFor(w, r)
	if err != nil {
		respondError(w, err)
		return
	}
	cfg, err := s.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	gen, ok := s.generators.Lookup(cfg.Type)
	if !ok || cfg.Deleted {
		respondError(w, faults.Newf(faults.KindPrecondition, "server: %s configurations have no editor", cfg.Type))
		return
	}
	form, err := gen(r.Context(), cfg)
	if err != nil {
		respondError(w, err)
		return
	}
	options := s.renderOptions()
	options.HiddenFields = render.ChromeFields(cfg.ID, cfg.Name, cfg.Version)
	sess := s.openSession(ws, cfg.ID, form, options)
	respondData(w, http.StatusCreated, map[string]any{
		"session": sess.id,
		"values":  form.Values(),
	})
}

func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(chi.URLParam(r, "sid"))
	if err != nil {
		respondError(w, err)
		return
	}
	var ev editor.Event
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&ev); err != nil {
		respondError(w, faults.Newf(faults.KindValidation, "server: decode event: %v", err))
		return
	}
	patches, err := s.dispatch(r.Context(), sess, ev)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, map[string]any{"patches": patches})
}

// handleSubmit saves the session form. Failures re-render the editor with
// the submitted values and the service's issues attached to their fields.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(chi.URLParam(r, "sid"))
	if err != nil {
		respondError(w, err)
		return
	}
	if err := r.ParseForm(); err != nil {
		respondError(w, faults.Newf(faults.KindValidation, "server: parse form: %v", err))
		return
	}
	values := make(map[string]string, len(r.PostForm))
	for key, vals := range r.PostForm {
		if len(vals) > 0 {
			values[key] = vals[len(vals)-1]
		}
	}

	ctx := r.Context()
	ctrl := sess.ws.ctrl
	sess.mu.Lock()
	sess.touch(s.now())
	_, err = ctrl.SaveForm(ctx, sess.configID, sess.form, values)
	s.metrics.save(outcome(err))
	if err == nil {
		sess.mu.Unlock()
		s.mu.Lock()
		delete(s.sessions, sess.id)
		s.metrics.sessions.Set(float64(len(s.sessions)))
		s.mu.Unlock()
		http.Redirect(w, r, ctrl.Path(configs.RuleLoadEditConfigs, configs.Args{ID: sess.configID}), http.StatusSeeOther)
		return
	}

	mapping := render.MapErrorPayload(sess.form, issuePayload(err))
	sess.mu.Unlock()

	options := sess.options
	options.Errors = mapping.Fields
	options.FormErrors = render.MergeFormErrors(mapping.Form)
	if len(mapping.Fields) == 0 && len(options.FormErrors) == 0 {
		options.FormErrors = []string{err.Error()}
	}
	listing, lerr := ctrl.Search(ctx, configs.Query{})
	if lerr != nil {
		ctxlog.FromContext(ctx).Warn("config search failed", "error", lerr)
	}

	sess.mu.Lock()
	page := render.Page{
		Kind:     render.PageEditor,
		Title:    sess.form.Document().Name,
		ConfigID: sess.configID,
		Toolbar:  ctrl.Toolbar().HTML(configs.LocationToolbar),
		History:  ctrl.History(),
		Listing:  listing,
		Form:     sess.form,
		Options:  options,
	}
	body, rerr := s.renderer.RenderPage(ctx, page)
	sess.mu.Unlock()
	if rerr != nil {
		respondError(w, rerr)
		return
	}
	writeHTML(w, faults.StatusCode(err), body)
}

type socketReply struct {
	Patches []render.WirePatch `json:"patches,omitempty"`
	Error   bool               `json:"error,omitempty"`
	Message string             `json:"message,omitempty"`
}

// handleSocket streams events and patches over a websocket. Each inbound
// event gets exactly one reply.
func (s *Server) handleSocket(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(chi.URLParam(r, "sid"))
	if err != nil {
		respondError(w, err)
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		ctxlog.FromContext(r.Context()).Warn("websocket upgrade failed", "error", err)
		return
	}
	ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
	defer cancel()
	logger := ctxlog.FromContext(ctx).With("session", sess.id)

	var writeMu sync.Mutex
	write := func(v any) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		_ = conn.SetWriteDeadline(time.Now().Add(socketWriteWait))
		return conn.WriteJSON(v)
	}
	defer func() {
		writeMu.Lock()
		_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
		writeMu.Unlock()
		conn.Close()
	}()

	go func() {
		ticker := time.NewTicker(socketPingEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				writeMu.Lock()
				_ = conn.SetWriteDeadline(time.Now().Add(socketWriteWait))
				err := conn.WriteMessage(websocket.PingMessage, nil)
				writeMu.Unlock()
				if err != nil {
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	_ = conn.SetReadDeadline(time.Now().Add(socketReadWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(socketReadWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("websocket read failed", "error", err)
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(socketReadWait))

		reply := socketReply{}
		var ev editor.Event
		if err := json.Unmarshal(data, &ev); err != nil {
			reply.Error = true
			reply.Message = "invalid message format"
		} else if patches, err := s.dispatch(ctx, sess, ev); err != nil {
			reply.Error = true
			reply.Message = err.Error()
		} else {
			reply.Patches = patches
		}
		if err := write(reply); err != nil {
			logger.Debug("websocket write failed", "error", err)
			return
		}
	}
}
