package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/incial/workhub-api/internal/application/crm"
	"github.com/incial/workhub-api/internal/domain"
	"github.com/incial/workhub-api/internal/pkg/validate"
)

// CRMHandler handles CRM record CRUD and filter endpoints.
type CRMHandler struct {
	svc crm.Service
}

func NewCRMHandler(svc crm.Service) *CRMHandler { return &CRMHandler{svc: svc} }

func (h *CRMHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateCRMRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	rec, err := h.svc.Create(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, CRMEnvelope{Record: rec, Message: "CRM entry created successfully"})
}

func (h *CRMHandler) List(w http.ResponseWriter, r *http.Request) {
	recs, err := h.svc.List(r.Context())
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, CRMListEnvelope{Records: recs})
}

func (h *CRMHandler) Get(w http.ResponseWriter, r *http.Request) {
	rec, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, CRMEnvelope{Record: rec})
}

func (h *CRMHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateCRMRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	rec, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, CRMEnvelope{Record: rec, Message: "CRM updated successfully"})
}

func (h *CRMHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "CRM deleted successfully"})
}

func (h *CRMHandler) GetByStatus(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, func() ([]domain.CRMRecord, error) {
		return h.svc.GetByStatus(r.Context(), chi.URLParam(r, "status"))
	})
}

func (h *CRMHandler) GetByAssigned(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, func() ([]domain.CRMRecord, error) {
		return h.svc.GetByAssignedTo(r.Context(), chi.URLParam(r, "user"))
	})
}

func (h *CRMHandler) GetByTag(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, func() ([]domain.CRMRecord, error) {
		return h.svc.GetByTag(r.Context(), chi.URLParam(r, "tag"))
	})
}

func (h *CRMHandler) GetByLeadSource(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, func() ([]domain.CRMRecord, error) {
		return h.svc.GetByLeadSource(r.Context(), chi.URLParam(r, "source"))
	})
}

func (h *CRMHandler) GetHighValueDeals(w http.ResponseWriter, r *http.Request) {
	minValue, err := strconv.ParseFloat(r.URL.Query().Get("min_value"), 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "min_value must be a number")
		return
	}
	h.list(w, r, func() ([]domain.CRMRecord, error) {
		return h.svc.GetHighValueDeals(r.Context(), minValue)
	})
}

func (h *CRMHandler) GetUpcomingFollowUps(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, func() ([]domain.CRMRecord, error) {
		return h.svc.GetUpcomingFollowUps(r.Context())
	})
}

func (h *CRMHandler) GetFollowUpsOnDate(w http.ResponseWriter, r *http.Request) {
	date, err := time.Parse("2006-01-02", r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be in YYYY-MM-DD format")
		return
	}
	h.list(w, r, func() ([]domain.CRMRecord, error) {
		return h.svc.GetFollowUpsOnDate(r.Context(), date)
	})
}

func (h *CRMHandler) list(w http.ResponseWriter, _ *http.Request, fetch func() ([]domain.CRMRecord, error)) {
	recs, err := fetch()
	if err != nil {
		httpError(w, err)
		return
	}
	if recs == nil {
		recs = []domain.CRMRecord{}
	}
	writeJSON(w, http.StatusOK, CRMListEnvelope{Records: recs})
}
