package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/Emi00093522-cloud/sistema-gapc.com/internal/model"
	"github.com/Emi00093522-cloud/sistema-gapc.com/internal/service"
)

type SavingHandler struct {
	savingService  *service.SavingService
	balanceService *service.BalanceService
	accessService  *service.AccessService
	logger         *logrus.Logger
}

func NewSavingHandler(savingService *service.SavingService, balanceService *service.BalanceService, accessService *service.AccessService, logger *logrus.Logger) *SavingHandler {
	return &SavingHandler{
		savingService:  savingService,
		balanceService: balanceService,
		accessService:  accessService,
		logger:         logger,
	}
}

func (h *SavingHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("", h.RecordSaving).Methods("POST")
	router.HandleFunc("/members/{memberId}", h.ListMemberSavings).Methods("GET")
	router.HandleFunc("/members/{memberId}/total", h.GetMemberSavingsTotal).Methods("GET")
}

func (h *SavingHandler) RecordSaving(w http.ResponseWriter, r *http.Request) {
	scope, err := scopeFromRequest(r, h.accessService)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req model.RecordSavingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WithError(err).Error("Failed to decode record saving request")
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	entry, err := h.savingService.RecordSaving(r.Context(), scope, req)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, entry)
}

func (h *SavingHandler) ListMemberSavings(w http.ResponseWriter, r *http.Request) {
	scope, err := scopeFromRequest(r, h.accessService)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	memberID, err := uuid.Parse(mux.Vars(r)["memberId"])
	if err != nil {
		http.Error(w, "Invalid member ID", http.StatusBadRequest)
		return
	}

	entries, err := h.savingService.ListByMember(r.Context(), scope, memberID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, entries)
}

func (h *SavingHandler) GetMemberSavingsTotal(w http.ResponseWriter, r *http.Request) {
	scope, err := scopeFromRequest(r, h.accessService)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	memberID, err := uuid.Parse(mux.Vars(r)["memberId"])
	if err != nil {
		http.Error(w, "Invalid member ID", http.StatusBadRequest)
		return
	}

	total, err := h.balanceService.MemberSavingsTotal(r.Context(), scope, memberID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"member_id": memberID,
		"total":     total,
	})
}
