package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Emi00093522-cloud/sistema-gapc.com/internal/apperr"
	"github.com/Emi00093522-cloud/sistema-gapc.com/internal/model"
	"github.com/Emi00093522-cloud/sistema-gapc.com/internal/service"
)

// scopeFromRequest извлекает userID из контекста запроса и вычисляет
// зону доступа вызывающего
func scopeFromRequest(r *http.Request, accessService *service.AccessService) (*model.Scope, error) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok {
		return nil, errors.New("userID отсутствует в контексте запроса")
	}

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, err
	}

	return accessService.ResolveScope(r.Context(), userUUID)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// writeServiceError сопоставляет ошибки ядра HTTP-статусам
func writeServiceError(w http.ResponseWriter, logger *logrus.Logger, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, apperr.ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, apperr.ErrConstraint):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, apperr.ErrForbidden):
		http.Error(w, err.Error(), http.StatusForbidden)
	default:
		logger.WithError(err).Error("Internal server error")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
