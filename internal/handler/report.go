package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/Emi00093522-cloud/sistema-gapc.com/internal/service"
)

type ReportHandler struct {
	reportService  *service.ReportService
	balanceService *service.BalanceService
	accessService  *service.AccessService
	logger         *logrus.Logger
}

func NewReportHandler(reportService *service.ReportService, balanceService *service.BalanceService, accessService *service.AccessService, logger *logrus.Logger) *ReportHandler {
	return &ReportHandler{
		reportService:  reportService,
		balanceService: balanceService,
		accessService:  accessService,
		logger:         logger,
	}
}

func (h *ReportHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/districts", h.GetDistrictSummaries).Methods("GET")
	router.HandleFunc("/system", h.GetSystemSummary).Methods("GET")
	router.HandleFunc("/groups/{groupId}", h.GetGroupStatistics).Methods("GET")
	router.HandleFunc("/groups/{groupId}/cash", h.GetGroupCashBalance).Methods("GET")
}

func (h *ReportHandler) GetDistrictSummaries(w http.ResponseWriter, r *http.Request) {
	scope, err := scopeFromRequest(r, h.accessService)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	summaries, err := h.reportService.DistrictSummaries(r.Context(), scope)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, summaries)
}

func (h *ReportHandler) GetSystemSummary(w http.ResponseWriter, r *http.Request) {
	scope, err := scopeFromRequest(r, h.accessService)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	summary, err := h.reportService.SystemSummary(r.Context(), scope)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

func (h *ReportHandler) GetGroupStatistics(w http.ResponseWriter, r *http.Request) {
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

	stats, err := h.reportService.GroupStatistics(r.Context(), scope, groupID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

func (h *ReportHandler) GetGroupCashBalance(w http.ResponseWriter, r *http.Request) {
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

	balance, err := h.balanceService.GroupCashBalance(r.Context(), scope, groupID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"group_id": groupID,
		"balance":  balance,
	})
}
