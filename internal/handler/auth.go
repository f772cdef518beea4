package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/Emi00093522-cloud/sistema-gapc.com/internal/model"
	"github.com/Emi00093522-cloud/sistema-gapc.com/internal/service"
)

type AuthHandler struct {
	authService   *service.AuthService
	accessService *service.AccessService
	logger        *logrus.Logger
}

func NewAuthHandler(authService *service.AuthService, accessService *service.AccessService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		authService:   authService,
		accessService: accessService,
		logger:        logger,
	}
}

// RegisterPublicRoutes регистрирует маршруты, не требующие токена
func (h *AuthHandler) RegisterPublicRoutes(router *mux.Router) {
	router.HandleFunc("/signin", h.SignIn).Methods("POST")
}

// RegisterProtectedRoutes регистрирует маршруты под AuthMiddleware
func (h *AuthHandler) RegisterProtectedRoutes(router *mux.Router) {
	router.HandleFunc("", h.CreateUser).Methods("POST")
}

func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var input model.SignInInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.logger.WithError(err).Error("Failed to decode signin request")
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	token, err := h.authService.SignIn(r.Context(), input)
	if err != nil {
		// Любая ошибка входа намеренно сводится к 401 без деталей
		h.logger.WithError(err).Warn("Sign in failed")
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (h *AuthHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	scope, err := scopeFromRequest(r, h.accessService)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var input model.CreateUserInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.logger.WithError(err).Error("Failed to decode create user request")
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	user, err := h.authService.CreateUser(r.Context(), scope, input)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}
