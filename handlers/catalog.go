package handlers

import (
	"net/http"

	"github.com/giygas/drugstore/logging"
	"github.com/giygas/drugstore/orchestrator"
	"github.com/giygas/drugstore/validation"
	"github.com/go-chi/chi/v5"
)

// CatalogHandler serves the /api routes.
type CatalogHandler struct {
	ctrl *orchestrator.Controller
}

func NewCatalogHandler(ctrl *orchestrator.Controller) *CatalogHandler {
	return &CatalogHandler{ctrl: ctrl}
}

// TransitionResponse answers every state transition.
type TransitionResponse struct {
	Changed bool                  `json:"changed"`
	State   orchestrator.Snapshot `json:"state"`
}

// Routes mounts the API on r.
func (h *CatalogHandler) Routes(r chi.Router) {
	r.Get("/state", h.State)
	r.Post("/refresh", h.Refresh)

	r.Get("/drugs", h.ListDrugs)
	r.Post("/drugs", h.CreateDrug)
	r.Delete("/drugs", h.DeleteSelected)
	r.Get("/drugs/{id}", h.GetDrug)
	r.Put("/drugs/{id}", h.UpdateDrug)
	r.Delete("/drugs/{id}", h.DeleteDrug)

	r.Get("/countries", h.ListCountries)
	r.Post("/countries", h.CreateCountry)
	r.Get("/countries/{id}", h.GetCountry)
	r.Put("/countries/{id}", h.UpdateCountry)
	r.Delete("/countries/{id}", h.DeleteCountry)

	r.Route("/view", func(r chi.Router) {
		r.Post("/all", h.transition(func(*http.Request) bool { return h.ctrl.SelectAll() }))
		r.Post("/country/{id}", h.withID(func(id string) bool { return h.ctrl.SelectCountry(id) }))
		r.Post("/similar/{id}", h.FindSimilar)
		r.Post("/favorite", h.transition(func(*http.Request) bool { return h.ctrl.ToggleFavoriteView() }))
	})

	r.Route("/selection", func(r chi.Router) {
		r.Delete("/", h.transition(func(*http.Request) bool { h.ctrl.ClearSelection(); return true }))
		r.Post("/favorite", h.transition(func(*http.Request) bool { h.ctrl.ToggleSelectionFavorite(); return true }))
		r.Put("/favorite", h.transition(func(*http.Request) bool { h.ctrl.BulkFavoriteSelected(); return true }))
		r.Delete("/favorite", h.transition(func(*http.Request) bool { h.ctrl.BulkUnfavoriteSelected(); return true }))
		r.Put("/{id}", h.withID(func(id string) bool { h.ctrl.Select(id); return true }))
		r.Delete("/{id}", h.withID(func(id string) bool { h.ctrl.Deselect(id); return true }))
	})
	r.Post("/favorites/{id}/toggle", h.withID(func(id string) bool { h.ctrl.ToggleFavorite(id); return true }))

	r.Post("/theme/toggle", h.transition(func(*http.Request) bool { h.ctrl.ToggleTheme(); return true }))
	r.Post("/readonly/toggle", h.transition(func(*http.Request) bool { h.ctrl.ToggleReadonly(); return true }))
	r.Put("/readonly", h.SetReadonly)

	r.Get("/notifications", h.ListNotifications)
	r.Delete("/notifications/{id}", h.DismissNotification)
}

// respondWithState answers a transition, waiting for fetches when asked.
func (h *CatalogHandler) respondWithState(w http.ResponseWriter, r *http.Request, code int, changed bool) {
	if wantsWait(r) {
		if err := h.ctrl.WaitContext(r.Context()); err != nil {
			logging.Debug("Gave up waiting for fetches", "error", err)
		}
	}
	RespondWithJSON(w, code, TransitionResponse{Changed: changed, State: h.ctrl.Snapshot()})
}

func (h *CatalogHandler) transition(fn func(*http.Request) bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.respondWithState(w, r, http.StatusOK, fn(r))
	}
}

// withID validates the {id} path parameter before running fn.
func (h *CatalogHandler) withID(fn func(id string) bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := validation.ValidateID(id); err != nil {
			RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.respondWithState(w, r, http.StatusOK, fn(id))
	}
}

// State returns the full snapshot.
func (h *CatalogHandler) State(w http.ResponseWriter, r *http.Request) {
	if wantsWait(r) {
		if err := h.ctrl.WaitContext(r.Context()); err != nil {
			logging.Debug("Gave up waiting for fetches", "error", err)
		}
	}
	RespondWithJSON(w, http.StatusOK, h.ctrl.Snapshot())
}

func (h *CatalogHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	h.ctrl.Refresh()
	h.respondWithState(w, r, http.StatusAccepted, true)
}

func (h *CatalogHandler) ListDrugs(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, h.ctrl.Drugs())
}

func (h *CatalogHandler) GetDrug(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := validation.ValidateID(id); err != nil {
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	drug, ok := h.ctrl.Drug(id)
	if !ok {
		RespondWithError(w, http.StatusNotFound, "Drug not loaded")
		return
	}
	RespondWithJSON(w, http.StatusOK, drug)
}

func (h *CatalogHandler) ListCountries(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, h.ctrl.Countries())
}

func (h *CatalogHandler) FindSimilar(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := validation.ValidateID(id); err != nil {
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	changed, err := h.ctrl.FindSimilar(id)
	if err != nil {
		respondWithFailure(w, err)
		return
	}
	h.respondWithState(w, r, http.StatusOK, changed)
}

func (h *CatalogHandler) CreateDrug(w http.ResponseWriter, r *http.Request) {
	var in validation.DrugInput
	if err := decodeJSON(r, &in); err != nil {
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	drug, err := h.ctrl.CreateDrug(r.Context(), in)
	if err != nil {
		respondWithFailure(w, err)
		return
	}
	RespondWithJSON(w, http.StatusCreated, drug)
}

func (h *CatalogHandler) UpdateDrug(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := validation.ValidateID(id); err != nil {
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	var in validation.DrugInput
	if err := decodeJSON(r, &in); err != nil {
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	drug, err := h.ctrl.UpdateDrug(r.Context(), id, in)
	if err != nil {
		respondWithFailure(w, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, drug)
}

func (h *CatalogHandler) DeleteDrug(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := validation.ValidateID(id); err != nil {
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.ctrl.DeleteDrug(r.Context(), id); err != nil {
		respondWithFailure(w, err)
		return
	}
	h.respondWithState(w, r, http.StatusOK, true)
}

// DeleteSelected deletes every selected drug.
func (h *CatalogHandler) DeleteSelected(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.ctrl.DeleteSelected(r.Context())
	if err != nil {
		respondWithFailure(w, err)
		return
	}
	h.respondWithState(w, r, http.StatusOK, len(deleted) > 0)
}

func (h *CatalogHandler) CreateCountry(w http.ResponseWriter, r *http.Request) {
	var in validation.CountryInput
	if err := decodeJSON(r, &in); err != nil {
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	country, err := h.ctrl.CreateCountry(r.Context(), in)
	if err != nil {
		respondWithFailure(w, err)
		return
	}
	RespondWithJSON(w, http.StatusCreated, country)
}

// GetCountry serves a loaded country, asking upstream for unknown ids.
func (h *CatalogHandler) GetCountry(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := validation.ValidateID(id); err != nil {
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	country, err := h.ctrl.Country(r.Context(), id)
	if err != nil {
		respondWithFailure(w, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, country)
}

func (h *CatalogHandler) UpdateCountry(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := validation.ValidateID(id); err != nil {
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	var in validation.CountryInput
	if err := decodeJSON(r, &in); err != nil {
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	country, err := h.ctrl.UpdateCountry(r.Context(), id, in)
	if err != nil {
		respondWithFailure(w, err)
		return
	}
	RespondWithJSON(w, http.StatusOK, country)
}

func (h *CatalogHandler) DeleteCountry(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := validation.ValidateID(id); err != nil {
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.ctrl.DeleteCountry(r.Context(), id); err != nil {
		respondWithFailure(w, err)
		return
	}
	h.respondWithState(w, r, http.StatusOK, true)
}

func (h *CatalogHandler) SetReadonly(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Readonly *bool `json:"readonly"`
	}
	if err := decodeJSON(r, &body); err != nil {
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if body.Readonly == nil {
		RespondWithError(w, http.StatusBadRequest, "readonly is required")
		return
	}
	h.ctrl.SetReadonly(*body.Readonly)
	h.respondWithState(w, r, http.StatusOK, true)
}

func (h *CatalogHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, h.ctrl.Notifications())
}

func (h *CatalogHandler) DismissNotification(w http.ResponseWriter, r *http.Request) {
	if err := h.ctrl.Dismiss(chi.URLParam(r, "id")); err != nil {
		respondWithFailure(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
