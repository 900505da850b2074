package server

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/goliatone/go-viewdef/internal/ctxlog"
	"github.com/goliatone/go-viewdef/pkg/configs"
	"github.com/goliatone/go-viewdef/pkg/faults"
	"github.com/goliatone/go-viewdef/pkg/render"
)

func writeHTML(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func queryOf(r *http.Request) configs.Query {
	q := r.URL.Query()
	return configs.Query{
		Name: strings.TrimSpace(q.Get("name")),
		Type: strings.TrimSpace(q.Get("type")),
	}
}

func formValues(r *http.Request) (map[string]string, error) {
	if err := r.ParseForm(); err != nil {
		return nil, faults.Newf(faults.KindValidation, "server: parse form: %v", err)
	}
	values := make(map[string]string, len(r.PostForm))
	for key, vals := range r.PostForm {
		if len(vals) > 0 {
			values[key] = vals[len(vals)-1]
		}
	}
	return values, nil
}

func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, status int, page render.Page) {
	if page.Options.Theme == nil {
		page.Options.Theme = s.theme
	}
	body, err := s.renderer.RenderPage(r.Context(), page)
	if err != nil {
		ctxlog.FromContext(r.Context()).Error("page render failed", "kind", page.Kind, "error", err)
		respondError(w, err)
		return
	}
	writeHTML(w, status, body)
}

// renderLanding shows the landing page, with err in the error dialog when
// set.
func (s *Server) renderLanding(w http.ResponseWriter, r *http.Request, ws *workspace, err error) {
	status := http.StatusOK
	if err != nil {
		ws.ctrl.Messages().Error(err.Error())
		status = faults.StatusCode(err)
	}
	page, perr := ws.ctrl.DefaultPage(r.Context(), queryOf(r))
	if perr != nil {
		respondError(w, perr)
		return
	}
	s.renderPage(w, r, status, page)
}

func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	ws, err := s.workspaceFor(w, r)
	if err != nil {
		respondError(w, err)
		return
	}
	s.renderLanding(w, r, ws, nil)
}

// handleRedirect serves the transitional rules.
func (s *Server) handleRedirect(rule string) http.HandlerFunc {
	rules := configs.Rules("/configs")
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		args := configs.Args{
			ID:   chi.URLParam(r, "id"),
			Name: q.Get("name"),
			Type: q.Get("type"),
		}
		if args.ID == "" {
			args.ID = q.Get("id")
		}
		target, ok := configs.Redirect(rules, rule, args)
		if !ok {
			http.NotFound(w, r)
			return
		}
		http.Redirect(w, r, target, http.StatusFound)
	}
}

func (s *Server) handleDetails(w http.ResponseWriter, r *http.Request) {
	ws, err := s.workspaceFor(w, r)
	if err != nil {
		respondError(w, err)
		return
	}
	page, err := ws.ctrl.Details(r.Context(), chi.URLParam(r, "id"), queryOf(r))
	if err != nil {
		s.renderLanding(w, r, ws, err)
		return
	}
	page.Options.Theme = s.theme
	if page.Kind == render.PageEditor && page.Form != nil {
		sess := s.openSession(ws, page.ConfigID, page.Form, page.Options)
		page.Options = sess.options
	}
	s.renderPage(w, r, http.StatusOK, page)
}

// handleSave saves the generic page.
func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	ws, err := s.workspaceFor(w, r)
	if err != nil {
		respondError(w, err)
		return
	}
	id := chi.URLParam(r, "id")
	values, err := formValues(r)
	if err != nil {
		respondError(w, err)
		return
	}
	chrome := render.ReadChrome(values)
	_, err = ws.ctrl.Save(r.Context(), configs.SaveRequest{
		ID:      id,
		Name:    chrome.Name,
		Data:    values["data"],
		Version: chrome.Version,
	})
	s.metrics.save(outcome(err))
	if err != nil {
		ws.ctrl.Messages().Error(err.Error())
		http.Redirect(w, r, ws.ctrl.Path(configs.RuleLoadConfigs, configs.Args{ID: id}), http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, ws.ctrl.Path(configs.RuleLoadEditConfigs, configs.Args{ID: id}), http.StatusSeeOther)
}

// handleCreate submits the new configuration dialog.
func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	ws, err := s.workspaceFor(w, r)
	if err != nil {
		respondError(w, err)
		return
	}
	values, err := formValues(r)
	if err != nil {
		respondError(w, err)
		return
	}
	cfg, err := ws.ctrl.Create(r.Context(), values["name"], values["xml"])
	if err != nil {
		if _, open := ws.ctrl.Messages().Dialog(); !open {
			ws.ctrl.Messages().Error(err.Error())
		}
		http.Redirect(w, r, s.backTo(ws), http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, ws.ctrl.Path(configs.RuleLoadNewConfigs, configs.Args{ID: cfg.ID}), http.StatusSeeOther)
}

// handleDelete submits the delete confirmation dialog.
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	ws, err := s.workspaceFor(w, r)
	if err != nil {
		respondError(w, err)
		return
	}
	id := chi.URLParam(r, "id")
	if err := ws.ctrl.Delete(r.Context(), id); err != nil {
		http.Redirect(w, r, ws.ctrl.Path(configs.RuleLoadConfigs, configs.Args{ID: id}), http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, ws.ctrl.Path(configs.RuleLoadDelete, configs.Args{}), http.StatusSeeOther)
}

// handleToolbar presses a toolbar button and returns to the page it was on,
// where any dialog the button opened is shown.
func (s *Server) handleToolbar(w http.ResponseWriter, r *http.Request) {
	ws, err := s.workspaceFor(w, r)
	if err != nil {
		respondError(w, err)
		return
	}
	values, err := formValues(r)
	if err != nil {
		respondError(w, err)
		return
	}
	if err := ws.ctrl.Press(r.Context(), chi.URLParam(r, "button")); err != nil {
		ctxlog.FromContext(r.Context()).Debug("toolbar press rejected", "button", chi.URLParam(r, "button"), "error", err)
		ws.ctrl.Messages().Error(err.Error())
	}
	target := ws.ctrl.Path(configs.RuleLoad, configs.Args{})
	if id := strings.TrimSpace(values["id"]); id != "" {
		target = ws.ctrl.Path(configs.RuleLoadConfigs, configs.Args{ID: id})
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (s *Server) backTo(ws *workspace) string {
	if id := ws.ctrl.Current(); id != "" {
		return ws.ctrl.Path(configs.RuleLoadConfigs, configs.Args{ID: id})
	}
	return ws.ctrl.Path(configs.RuleLoad, configs.Args{})
}
