package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"inet-marketplace/internal/domain"
	"inet-marketplace/internal/domain/model"
	"inet-marketplace/internal/domain/ports/repository"
	"inet-marketplace/internal/infra/logging"
)

func decodeValid(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return false
	}
	if err := validate.Struct(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return false
	}
	return true
}

func (s *Server) listPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := s.catalogUC.ListActivePlans(r.Context())
	if err != nil {
		writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": plans})
}

func (s *Server) listServices(w http.ResponseWriter, r *http.Request) {
	services, err := s.catalogUC.ListServices(r.Context())
	if err != nil {
		writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": services})
}

func (s *Server) listVideos(w http.ResponseWriter, r *http.Request) {
	videos, err := s.catalogUC.ListVideos(r.Context(), UserID(r.Context()), r.URL.Query().Get("category"))
	if err != nil {
		writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": videos})
}

func (s *Server) recordView(w http.ResponseWriter, r *http.Request) {
	if err := s.catalogUC.RecordView(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err, nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) videoUnlock(w http.ResponseWriter, r *http.Request) {
	unlocked, err := s.purchaseUC.HasVideoUnlock(r.Context(), UserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"unlocked": unlocked})
}

func (s *Server) initiateService(w http.ResponseWriter, r *http.Request) {
	var req serviceOrderRequest
	if !decodeValid(w, r, &req) {
		return
	}
	p, err := s.purchaseUC.InitiateService(r.Context(), UserID(r.Context()), req.ServiceID, req.Phone, req.PayerName)
	if err != nil {
		writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) initiateManualService(w http.ResponseWriter, r *http.Request) {
	var req manualOrderRequest
	if !decodeValid(w, r, &req) {
		return
	}
	p, err := s.purchaseUC.InitiateManualService(r.Context(), UserID(r.Context()), req.ServiceID, req.Phone, req.Proof)
	if err != nil {
		writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) initiatePlan(w http.ResponseWriter, r *http.Request) {
	var req planPurchaseRequest
	if !decodeValid(w, r, &req) {
		return
	}
	p, err := s.purchaseUC.InitiatePlan(r.Context(), UserID(r.Context()), req.PlanID, req.Phone, req.PayerName, req.PromoCode)
	if err != nil {
		// The existing intent rides along on a subscription conflict so the
		// client can show what already covers the user.
		if errors.Is(err, domain.ErrAlreadySubscribed) {
			writeError(w, err, p)
			return
		}
		writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) initiateVideo(w http.ResponseWriter, r *http.Request) {
	var req videoPurchaseRequest
	if !decodeValid(w, r, &req) {
		return
	}
	p, err := s.purchaseUC.InitiateVideo(r.Context(), UserID(r.Context()), req.VideoID, req.Phone, req.PayerName)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyPurchased) {
			writeError(w, err, p)
			return
		}
		writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) listPurchases(w http.ResponseWriter, r *http.Request) {
	kind := model.ItemKind(r.URL.Query().Get("kind"))
	switch kind {
	case "", model.ItemKindService, model.ItemKindPlan, model.ItemKindVideo:
	default:
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unknown kind"})
		return
	}
	list, err := s.purchaseUC.ListMine(r.Context(), UserID(r.Context()), kind)
	if err != nil {
		writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": list})
}

func (s *Server) getPurchase(w http.ResponseWriter, r *http.Request) {
	p, err := s.purchaseUC.GetMine(r.Context(), UserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) pollPurchase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := UserID(ctx)
	if err := s.allowPoll(ctx, userID); err != nil {
		writeError(w, err, nil)
		return
	}

	intentID := chi.URLParam(r, "id")
	ctx = logging.WithIntentID(ctx, intentID)
	p, err := s.reconcileUC.PollStatus(ctx, userID, intentID)
	if err != nil {
		writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) timeoutPurchase(w http.ResponseWriter, r *http.Request) {
	p, err := s.reconcileUC.ForceTimeout(r.Context(), UserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) validatePromo(w http.ResponseWriter, r *http.Request) {
	var req promoValidateRequest
	if !decodeValid(w, r, &req) {
		return
	}
	quote, reason, err := s.promoUC.Quote(r.Context(), req.Code, UserID(r.Context()), req.PlanID)
	if err != nil {
		writeError(w, err, nil)
		return
	}
	if reason != "" {
		writeJSON(w, http.StatusOK, map[string]interface{}{"valid": false, "reason": reason})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"valid": true, "quote": quote})
}

func (s *Server) mySubscription(w http.ResponseWriter, r *http.Request) {
	sub, err := s.purchaseUC.MySubscription(r.Context(), UserID(r.Context()))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeJSON(w, http.StatusOK, map[string]interface{}{"subscribed": false})
			return
		}
		writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"subscribed": true, "subscription": sub})
}

func (s *Server) listNotifications(w http.ResponseWriter, r *http.Request) {
	list, err := s.notifs.ListByUser(r.Context(), repository.NoTX, UserID(r.Context()), 50)
	if err != nil {
		writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": list})
}
