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

type GroupHandler struct {
	groupService  *service.GroupService
	accessService *service.AccessService
	logger        *logrus.Logger
}

func NewGroupHandler(groupService *service.GroupService, accessService *service.AccessService, logger *logrus.Logger) *GroupHandler {
	return &GroupHandler{
		groupService:  groupService,
		accessService: accessService,
		logger:        logger,
	}
}

func (h *GroupHandler) RegisterGroupRoutes(router *mux.Router) {
	router.HandleFunc("", h.CreateGroup).Methods("POST")
	router.HandleFunc("", h.ListGroups).Methods("GET")
	router.HandleFunc("/{groupId}", h.GetGroup).Methods("GET")
	router.HandleFunc("/{groupId}/close", h.CloseGroup).Methods("POST")
}

func (h *GroupHandler) RegisterDistrictRoutes(router *mux.Router) {
	router.HandleFunc("", h.CreateDistrict).Methods("POST")
	router.HandleFunc("", h.ListDistricts).Methods("GET")
}

func (h *GroupHandler) CreateDistrict(w http.ResponseWriter, r *http.Request) {
	scope, err := scopeFromRequest(r, h.accessService)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req model.CreateDistrictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WithError(err).Error("Failed to decode create district request")
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	district, err := h.groupService.CreateDistrict(r.Context(), scope, req)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, district)
}

func (h *GroupHandler) ListDistricts(w http.ResponseWriter, r *http.Request) {
	if _, err := scopeFromRequest(r, h.accessService); err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	districts, err := h.groupService.ListDistricts(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, districts)
}

func (h *GroupHandler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	scope, err := scopeFromRequest(r, h.accessService)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req model.CreateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WithError(err).Error("Failed to decode create group request")
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	group, err := h.groupService.CreateGroup(r.Context(), scope, req)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, group)
}

func (h *GroupHandler) ListGroups(w http.ResponseWriter, r *http.Request) {
	scope, err := scopeFromRequest(r, h.accessService)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	groups, err := h.groupService.ListGroups(r.Context(), scope)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, groups)
}

func (h *GroupHandler) GetGroup(w http.ResponseWriter, r *http.Request) {
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

	group, err := h.groupService.GetGroup(r.Context(), scope, groupID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, group)
}

func (h *GroupHandler) CloseGroup(w http.ResponseWriter, r *http.Request) {
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

	if err := h.groupService.CloseGroup(r.Context(), scope, groupID); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
