package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Emi00093522-cloud/sistema-gapc.com/internal/service"
)

func newMiddlewareRouter(t *testing.T) (*mux.Router, *service.AuthService) {
	t.Helper()

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	authService := service.NewAuthService(nil, "test-secret", time.Hour, logger)

	router := mux.NewRouter()
	router.Use(AuthMiddleware(authService, logger))
	router.HandleFunc("/protected", func(w http.ResponseWriter, r *http.Request) {
		userID, ok := r.Context().Value("userID").(string)
		if !ok {
			http.Error(w, "no user", http.StatusInternalServerError)
			return
		}
		w.Write([]byte(userID))
	}).Methods("GET")

	return router, authService
}

func TestAuthMiddlewarePassesValidToken(t *testing.T) {
	router, authService := newMiddlewareRouter(t)

	userID := uuid.New().String()
	token, err := authService.GenerateJWTToken(userID)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, userID, rec.Body.String())
}

func TestAuthMiddlewareRejectsMissingHeader(t *testing.T) {
	router, _ := newMiddlewareRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddlewareRejectsMalformedHeader(t *testing.T) {
	router, authService := newMiddlewareRouter(t)

	token, err := authService.GenerateJWTToken(uuid.New().String())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Token "+token)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddlewareRejectsInvalidToken(t *testing.T) {
	router, _ := newMiddlewareRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer bogus.token.value")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
