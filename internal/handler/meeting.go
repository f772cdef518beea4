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

type MeetingHandler struct {
	meetingService *service.MeetingService
	accessService  *service.AccessService
	logger         *logrus.Logger
}

func NewMeetingHandler(meetingService *service.MeetingService, accessService *service.AccessService, logger *logrus.Logger) *MeetingHandler {
	return &MeetingHandler{
		meetingService: meetingService,
		accessService:  accessService,
		logger:         logger,
	}
}

func (h *MeetingHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("", h.ScheduleMeeting).Methods("POST")
	router.HandleFunc("/{meetingId}/hold", h.HoldMeeting).Methods("POST")
	router.HandleFunc("/{meetingId}/cancel", h.CancelMeeting).Methods("POST")
	router.HandleFunc("/{meetingId}/movements", h.RecordCashMovement).Methods("POST")
	router.HandleFunc("/{meetingId}/movements", h.ListCashMovements).Methods("GET")
}

// ListGroupMeetings зарегистрирован под маршрутом групп
func (h *MeetingHandler) ListGroupMeetings(w http.ResponseWriter, r *http.Request) {
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

	meetings, err := h.meetingService.ListMeetings(r.Context(), scope, groupID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, meetings)
}

func (h *MeetingHandler) ScheduleMeeting(w http.ResponseWriter, r *http.Request) {
	scope, err := scopeFromRequest(r, h.accessService)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req model.ScheduleMeetingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WithError(err).Error("Failed to decode schedule meeting request")
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	meeting, err := h.meetingService.ScheduleMeeting(r.Context(), scope, req)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, meeting)
}

func (h *MeetingHandler) HoldMeeting(w http.ResponseWriter, r *http.Request) {
	scope, err := scopeFromRequest(r, h.accessService)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	meetingID, err := uuid.Parse(mux.Vars(r)["meetingId"])
	if err != nil {
		http.Error(w, "Invalid meeting ID", http.StatusBadRequest)
		return
	}

	meeting, err := h.meetingService.HoldMeeting(r.Context(), scope, meetingID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, meeting)
}

func (h *MeetingHandler) CancelMeeting(w http.ResponseWriter, r *http.Request) {
	scope, err := scopeFromRequest(r, h.accessService)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	meetingID, err := uuid.Parse(mux.Vars(r)["meetingId"])
	if err != nil {
		http.Error(w, "Invalid meeting ID", http.StatusBadRequest)
		return
	}

	if err := h.meetingService.CancelMeeting(r.Context(), scope, meetingID); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *MeetingHandler) RecordCashMovement(w http.ResponseWriter, r *http.Request) {
	scope, err := scopeFromRequest(r, h.accessService)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	meetingID, err := uuid.Parse(mux.Vars(r)["meetingId"])
	if err != nil {
		http.Error(w, "Invalid meeting ID", http.StatusBadRequest)
		return
	}

	var req model.RecordMovementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WithError(err).Error("Failed to decode cash movement request")
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	req.MeetingID = meetingID

	movement, err := h.meetingService.RecordCashMovement(r.Context(), scope, req)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, movement)
}

func (h *MeetingHandler) ListCashMovements(w http.ResponseWriter, r *http.Request) {
	scope, err := scopeFromRequest(r, h.accessService)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	meetingID, err := uuid.Parse(mux.Vars(r)["meetingId"])
	if err != nil {
		http.Error(w, "Invalid meeting ID", http.StatusBadRequest)
		return
	}

	movements, err := h.meetingService.ListCashMovements(r.Context(), scope, meetingID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, movements)
}
