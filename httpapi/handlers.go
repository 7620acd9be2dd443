package httpapi

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	slogcontext "github.com/veqryn/slog-context"

	"xdao.co/ledgerview/entity"
	"xdao.co/ledgerview/model"
	"xdao.co/ledgerview/view"
)

const maxBody = 4 << 10

type handlers struct {
	res  Resolver
	card view.Options
}

type draftRequest struct {
	Value string `json:"value"`
}

func (h *handlers) stateView() model.StateView {
	return model.FromState(h.res.State(), h.res.DraftInput())
}

func (h *handlers) getState(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.stateView())
}

func (h *handlers) getCard(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, view.Render(h.res.State(), h.res.DraftInput(), h.card))
}

func (h *handlers) putDraft(w http.ResponseWriter, r *http.Request) {
	var req draftRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		slogcontext.FromCtx(r.Context()).Debug("bad draft body", "err", err)
		respondError(w, http.StatusBadRequest, model.NewError(model.ErrInvalidRequest, "body must be {\"value\": string}"))
		return
	}
	h.res.UpdateDraftInput(req.Value)
	respondJSON(w, http.StatusOK, h.stateView())
}

func (h *handlers) fetch(w http.ResponseWriter, r *http.Request) {
	if q := r.URL.Query(); q.Has("id") {
		h.res.RequestExplicit(q.Get("id"))
	} else {
		h.res.SubmitDraft()
	}
	respondJSON(w, http.StatusAccepted, h.stateView())
}

func (h *handlers) random(w http.ResponseWriter, r *http.Request) {
	h.res.RequestRandom()
	respondJSON(w, http.StatusAccepted, h.stateView())
}

func (h *handlers) parent(w http.ResponseWriter, r *http.Request) {
	slot, err := entity.ParseSlot(chi.URLParam(r, "which"))
	if err != nil {
		respondError(w, http.StatusBadRequest, model.NewError(model.ErrInvalidRequest, err.Error()))
		return
	}
	if !h.res.RequestParent(slot) {
		respondError(w, http.StatusConflict, model.NewError(model.ErrNoParent, "no resolved entity with a parent in slot "+slot.String()))
		return
	}
	respondJSON(w, http.StatusAccepted, h.stateView())
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, err *model.CodedError) {
	respondJSON(w, status, struct {
		Error *model.CodedError `json:"error"`
	}{err})
}
