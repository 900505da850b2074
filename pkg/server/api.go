package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/goliatone/go-viewdef/pkg/configs"
	"github.com/goliatone/go-viewdef/pkg/document/schema"
	"github.com/goliatone/go-viewdef/pkg/faults"
)

const maxBody = 4 << 20

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return faults.Newf(faults.KindValidation, "server: decode request: %v", err)
	}
	return nil
}

func (s *Server) handleSchema(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(schema.Raw())
}

func (s *Server) handleAPISearch(w http.ResponseWriter, r *http.Request) {
	items, err := s.service.Search(r.Context(), queryOf(r))
	if err != nil {
		respondError(w, err)
		return
	}
	if items == nil {
		items = []configs.Config{}
	}
	respondJSON(w, http.StatusOK, envelope{
		Data: items,
		Meta: map[string]any{"count": len(items)},
	})
}

func (s *Server) handleAPIGet(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, cfg)
}

func (s *Server) handleAPICreate(w http.ResponseWriter, r *http.Request) {
	var req configs.CreateRequest
	if err := decodeBody(w, r, &req); err != nil {
		respondError(w, err)
		return
	}
	if req.Name == "" {
		respondError(w, configs.ErrMissingName)
		return
	}
	cfg, err := s.service.Create(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, envelope{
		Data: cfg,
		Meta: map[string]any{"id": cfg.ID},
	})
}

func (s *Server) handleAPISave(w http.ResponseWriter, r *http.Request) {
	var req configs.SaveRequest
	if err := decodeBody(w, r, &req); err != nil {
		respondError(w, err)
		return
	}
	req.ID = chi.URLParam(r, "id")
	cfg, err := s.service.Save(r.Context(), req)
	s.metrics.save(outcome(err))
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, cfg)
}

func (s *Server) handleAPIDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
