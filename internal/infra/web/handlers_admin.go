package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"inet-marketplace/internal/domain/model"
	"inet-marketplace/internal/domain/ports/repository"
	"inet-marketplace/internal/usecase"
)

func (s *Server) adminStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.statsUC.Dashboard(r.Context())
	if err != nil {
		writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) adminVerify(w http.ResponseWriter, r *http.Request) {
	p, err := s.reconcileUC.VerifyManual(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) adminFulfillment(w http.ResponseWriter, r *http.Request) {
	var req fulfillmentRequest
	if !decodeValid(w, r, &req) {
		return
	}

	upd := repository.FulfillmentUpdate{AdminNote: req.AdminNote}
	if req.Status != nil {
		st := model.FulfillmentStatus(*req.Status)
		upd.Status = &st
	}
	if req.Credentials != nil {
		upd.Credentials = &model.Credentials{
			Username:       req.Credentials.Username,
			Password:       req.Credentials.Password,
			AccountDetails: req.Credentials.AccountDetails,
		}
	}

	p, err := s.reconcileUC.UpdateFulfillment(r.Context(), chi.URLParam(r, "id"), upd)
	if err != nil {
		writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func promoInputFrom(req promoUpsertRequest) usecase.PromoCreateInput {
	return usecase.PromoCreateInput{
		Code:            req.Code,
		Description:     req.Description,
		Type:            model.PromoType(req.Type),
		DiscountPercent: req.DiscountPercent,
		FixedAmount:     req.FixedAmount,
		FreeAccessDays:  req.FreeAccessDays,
		MaxUses:         req.MaxUses,
		MaxUsesPerUser:  req.MaxUsesPerUser,
		ValidFrom:       req.ValidFrom,
		ValidUntil:      req.ValidUntil,
		IsActive:        req.IsActive,
	}
}

func (s *Server) adminListPromos(w http.ResponseWriter, r *http.Request) {
	promos, err := s.promoUC.List(r.Context())
	if err != nil {
		writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": promos})
}

func (s *Server) adminCreatePromo(w http.ResponseWriter, r *http.Request) {
	var req promoUpsertRequest
	if !decodeValid(w, r, &req) {
		return
	}
	pc, err := s.promoUC.Create(r.Context(), promoInputFrom(req))
	if err != nil {
		writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusCreated, pc)
}

func (s *Server) adminUpdatePromo(w http.ResponseWriter, r *http.Request) {
	var req promoUpsertRequest
	if !decodeValid(w, r, &req) {
		return
	}
	pc, err := s.promoUC.Update(r.Context(), chi.URLParam(r, "id"), promoInputFrom(req))
	if err != nil {
		writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, pc)
}

func (s *Server) adminDeletePromo(w http.ResponseWriter, r *http.Request) {
	if err := s.promoUC.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err, nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func planInputFrom(req planUpsertRequest) usecase.PlanInput {
	return usecase.PlanInput{
		Name:         req.Name,
		Description:  req.Description,
		DurationType: req.DurationType,
		Price:        req.Price,
		IsActive:     req.IsActive,
		SortOrder:    req.SortOrder,
	}
}

func (s *Server) adminListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := s.catalogUC.ListAllPlans(r.Context())
	if err != nil {
		writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": plans})
}

func (s *Server) adminCreatePlan(w http.ResponseWriter, r *http.Request) {
	var req planUpsertRequest
	if !decodeValid(w, r, &req) {
		return
	}
	plan, err := s.catalogUC.CreatePlan(r.Context(), planInputFrom(req))
	if err != nil {
		writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusCreated, plan)
}

func (s *Server) adminUpdatePlan(w http.ResponseWriter, r *http.Request) {
	var req planUpsertRequest
	if !decodeValid(w, r, &req) {
		return
	}
	plan, err := s.catalogUC.UpdatePlan(r.Context(), chi.URLParam(r, "id"), planInputFrom(req))
	if err != nil {
		writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (s *Server) adminDeletePlan(w http.ResponseWriter, r *http.Request) {
	if err := s.catalogUC.DeletePlan(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err, nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
