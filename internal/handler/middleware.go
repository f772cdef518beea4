package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/Emi00093522-cloud/sistema-gapc.com/internal/service"
)

const bearerPrefix = "Bearer "

// AuthMiddleware пропускает запрос дальше только с валидным JWT токеном
// в заголовке Authorization и кладет идентификатор учетной записи в контекст
func AuthMiddleware(authService *service.AuthService, logger *logrus.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Warn("Запрос без заголовка Authorization")
				http.Error(w, "Требуется заголовок Authorization", http.StatusUnauthorized)
				return
			}

			if !strings.HasPrefix(authHeader, bearerPrefix) {
				logger.Warn("Заголовок Authorization не в формате Bearer")
				http.Error(w, "Ожидается схема Bearer", http.StatusUnauthorized)
				return
			}

			userID, err := authService.ParseToken(strings.TrimPrefix(authHeader, bearerPrefix))
			if err != nil {
				logger.WithError(err).Warn("Отклонен запрос с невалидным токеном")
				http.Error(w, "Невалидный токен", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), "userID", userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
