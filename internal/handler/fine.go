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

type FineHandler struct {
	fineService    *service.FineService
	balanceService *service.BalanceService
	accessService  *service.AccessService
	logger         *logrus.Logger
}

func NewFineHandler(fineService *service.FineService, balanceService *service.BalanceService, accessService *service.AccessService, logger *logrus.Logger) *FineHandler {
	return &FineHandler{
		fineService:    fineService,
		balanceService: balanceService,
		accessService:  accessService,
		logger:         logger,
	}
}

func (h *FineHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("", h.RecordFine).Methods("POST")
	router.HandleFunc("/{memberFineId}/payments", h.RecordFinePayment).Methods("POST")
	router.HandleFunc("/{memberFineId}/balance", h.GetFineBalance).Methods("GET")
	router.HandleFunc("/members/{memberId}", h.ListMemberFines).Methods("GET")
}

func (h *FineHandler) RecordFine(w http.ResponseWriter, r *http.Request) {
	scope, err := scopeFromRequest(r, h.accessService)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req model.RecordFineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WithError(err).Error("Failed to decode record fine request")
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	memberFine, err := h.fineService.RecordFine(r.Context(), scope, req)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, memberFine)
}

func (h *FineHandler) RecordFinePayment(w http.ResponseWriter, r *http.Request) {
	scope, err := scopeFromRequest(r, h.accessService)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	memberFineID, err := uuid.Parse(mux.Vars(r)["memberFineId"])
	if err != nil {
		http.Error(w, "Invalid fine ID", http.StatusBadRequest)
		return
	}

	var req model.FinePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WithError(err).Error("Failed to decode fine payment request")
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	req.MemberFineID = memberFineID

	memberFine, err := h.fineService.RecordFinePayment(r.Context(), scope, req)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, memberFine)
}

func (h *FineHandler) GetFineBalance(w http.ResponseWriter, r *http.Request) {
	scope, err := scopeFromRequest(r, h.accessService)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	memberFineID, err := uuid.Parse(mux.Vars(r)["memberFineId"])
	if err != nil {
		http.Error(w, "Invalid fine ID", http.StatusBadRequest)
		return
	}

	balance, err := h.balanceService.FineBalance(r.Context(), scope, memberFineID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"member_fine_id": memberFineID,
		"balance":        balance,
	})
}

func (h *FineHandler) ListMemberFines(w http.ResponseWriter, r *http.Request) {
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

	fines, err := h.fineService.ListByMember(r.Context(), scope, memberID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, fines)
}
