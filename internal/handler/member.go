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

type MemberHandler struct {
	memberService *service.MemberService
	accessService *service.AccessService
	logger        *logrus.Logger
}

func NewMemberHandler(memberService *service.MemberService, accessService *service.AccessService, logger *logrus.Logger) *MemberHandler {
	return &MemberHandler{
		memberService: memberService,
		accessService: accessService,
		logger:        logger,
	}
}

func (h *MemberHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("", h.CreateMember).Methods("POST")
	router.HandleFunc("/{memberId}", h.GetMember).Methods("GET")
	router.HandleFunc("/{memberId}/deactivate", h.DeactivateMember).Methods("POST")
	router.HandleFunc("/absences", h.AdjustAbsences).Methods("PUT")
}

func (h *MemberHandler) CreateMember(w http.ResponseWriter, r *http.Request) {
	scope, err := scopeFromRequest(r, h.accessService)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req model.CreateMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WithError(err).Error("Failed to decode create member request")
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	member, err := h.memberService.CreateMember(r.Context(), scope, req)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, member)
}

func (h *MemberHandler) GetMember(w http.ResponseWriter, r *http.Request) {
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

	member, err := h.memberService.GetMember(r.Context(), scope, memberID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, member)
}

// ListGroupMembers зарегистрирован под маршрутом групп
func (h *MemberHandler) ListGroupMembers(w http.ResponseWriter, r *http.Request) {
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

	members, err := h.memberService.ListByGroup(r.Context(), scope, groupID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, members)
}

func (h *MemberHandler) DeactivateMember(w http.ResponseWriter, r *http.Request) {
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

	if err := h.memberService.DeactivateMember(r.Context(), scope, memberID); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *MemberHandler) AdjustAbsences(w http.ResponseWriter, r *http.Request) {
	scope, err := scopeFromRequest(r, h.accessService)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req model.AdjustAbsencesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WithError(err).Error("Failed to decode adjust absences request")
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	if err := h.memberService.AdjustAbsences(r.Context(), scope, req); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
