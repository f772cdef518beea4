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

type LoanHandler struct {
	loanService    *service.LoanService
	balanceService *service.BalanceService
	accessService  *service.AccessService
	logger         *logrus.Logger
}

func NewLoanHandler(loanService *service.LoanService, balanceService *service.BalanceService, accessService *service.AccessService, logger *logrus.Logger) *LoanHandler {
	return &LoanHandler{
		loanService:    loanService,
		balanceService: balanceService,
		accessService:  accessService,
		logger:         logger,
	}
}

func (h *LoanHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("", h.DisburseLoan).Methods("POST")
	router.HandleFunc("/{loanId}", h.GetLoan).Methods("GET")
	router.HandleFunc("/{loanId}/balance", h.GetLoanBalance).Methods("GET")
	router.HandleFunc("/{loanId}/payments", h.RecordPayment).Methods("POST")
	router.HandleFunc("/{loanId}/payments", h.ListPayments).Methods("GET")
	router.HandleFunc("/{loanId}/write-off", h.WriteOffLoan).Methods("POST")
	router.HandleFunc("/members/{memberId}", h.ListMemberLoans).Methods("GET")
}

func (h *LoanHandler) DisburseLoan(w http.ResponseWriter, r *http.Request) {
	scope, err := scopeFromRequest(r, h.accessService)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req model.DisburseLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WithError(err).Error("Failed to decode disburse loan request")
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	loan, err := h.loanService.DisburseLoan(r.Context(), scope, req)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, loan)
}

func (h *LoanHandler) GetLoan(w http.ResponseWriter, r *http.Request) {
	scope, err := scopeFromRequest(r, h.accessService)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	loanID, err := uuid.Parse(mux.Vars(r)["loanId"])
	if err != nil {
		http.Error(w, "Invalid loan ID", http.StatusBadRequest)
		return
	}

	loan, err := h.loanService.GetLoan(r.Context(), scope, loanID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, loan)
}

func (h *LoanHandler) GetLoanBalance(w http.ResponseWriter, r *http.Request) {
	scope, err := scopeFromRequest(r, h.accessService)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	loanID, err := uuid.Parse(mux.Vars(r)["loanId"])
	if err != nil {
		http.Error(w, "Invalid loan ID", http.StatusBadRequest)
		return
	}

	balance, err := h.balanceService.LoanBalance(r.Context(), scope, loanID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"loan_id":     loanID,
		"outstanding": balance,
	})
}

func (h *LoanHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	scope, err := scopeFromRequest(r, h.accessService)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	loanID, err := uuid.Parse(mux.Vars(r)["loanId"])
	if err != nil {
		http.Error(w, "Invalid loan ID", http.StatusBadRequest)
		return
	}

	var req model.RecordPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WithError(err).Error("Failed to decode payment request")
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	req.LoanID = loanID

	payment, err := h.loanService.RecordPayment(r.Context(), scope, req)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, payment)
}

func (h *LoanHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	scope, err := scopeFromRequest(r, h.accessService)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	loanID, err := uuid.Parse(mux.Vars(r)["loanId"])
	if err != nil {
		http.Error(w, "Invalid loan ID", http.StatusBadRequest)
		return
	}

	payments, err := h.loanService.ListPayments(r.Context(), scope, loanID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, payments)
}

func (h *LoanHandler) WriteOffLoan(w http.ResponseWriter, r *http.Request) {
	scope, err := scopeFromRequest(r, h.accessService)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	loanID, err := uuid.Parse(mux.Vars(r)["loanId"])
	if err != nil {
		http.Error(w, "Invalid loan ID", http.StatusBadRequest)
		return
	}

	if err := h.loanService.WriteOffLoan(r.Context(), scope, loanID); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListGroupLoans зарегистрирован под маршрутом групп
func (h *LoanHandler) ListGroupLoans(w http.ResponseWriter, r *http.Request) {
	scope, err := scopeFromRequest(r, h.accessService)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	groupID, err := uuid.Parse(mux.Vars(r)["groupId"])
	if err != nil {
		http.Error(w, "Invalid group ID", http.StatusBadRequest)
		return
	}

	loans, err := h.loanService.ListByGroup(r.Context(), scope, groupID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, loans)
}

func (h *LoanHandler) ListMemberLoans(w http.ResponseWriter, r *http.Request) {
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

	loans, err := h.loanService.ListByMember(r.Context(), scope, memberID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, loans)
}
