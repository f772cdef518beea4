package service

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/Emi00093522-cloud/sistema-gapc.com/internal/apperr"
	"github.com/Emi00093522-cloud/sistema-gapc.com/internal/model"
	"github.com/Emi00093522-cloud/sistema-gapc.com/internal/repository"
)

type AuthService struct {
	userRepo    *repository.UserRepository
	jwtSecret   string
	tokenExpiry time.Duration
	logger      *logrus.Logger
}

func NewAuthService(userRepo *repository.UserRepository, jwtSecret string, tokenExpiry time.Duration, logger *logrus.Logger) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		jwtSecret:   jwtSecret,
		tokenExpiry: tokenExpiry,
		logger:      logger,
	}
}

// CreateUser Создание учетной записи администратором.
// Пароль хранится только как bcrypt-хеш.
func (s *AuthService) CreateUser(ctx context.Context, scope *model.Scope, input model.CreateUserInput) (*model.User, error) {
	if !scope.IsAdmin() {
		s.logger.Warnf("Попытка создания учетной записи не администратором: %s", scope.UserID)
		return nil, fmt.Errorf("%w: создание учетных записей доступно только администратору", apperr.ErrForbidden)
	}

	s.logger.WithFields(logrus.Fields{
		"username": input.Username,
		"role":     input.Role,
	}).Info("Создание новой учетной записи")

	if err := input.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrValidation, err)
	}

	exists, err := s.userRepo.ExistsByUsernameOrEmail(ctx, input.Username, input.Email)
	if err != nil {
		s.logger.WithError(err).Error("Не удалось проверить существование пользователя")
		return nil, err
	}
	if exists {
		s.logger.Warn("Пользователь с таким username или email уже существует")
		return nil, fmt.Errorf("%w: пользователь с таким username или email уже существует", apperr.ErrConstraint)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.WithError(err).Error("Не удалось захешировать пароль")
		return nil, fmt.Errorf("ошибка хеширования пароля: %w", err)
	}

	now := time.Now()
	user := &model.User{
		ID:        uuid.New(),
		Username:  input.Username,
		Email:     input.Email,
		Password:  string(hashedPassword),
		Role:      input.Role,
		MemberID:  input.MemberID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		s.logger.WithError(err).Error("Не удалось создать пользователя в базе данных")
		return nil, err
	}

	s.logger.WithField("user_id", user.ID).Info("Учетная запись успешно создана")
	return user, nil
}

// SignIn Авторизация пользователя и генерация JWT токена
func (s *AuthService) SignIn(ctx context.Context, input model.SignInInput) (string, error) {
	s.logger.WithField("username", input.Username).Info("Попытка входа пользователя")

	user, err := s.userRepo.FindByUsername(ctx, input.Username)
	if err != nil {
		s.logger.WithError(err).Warn("Пользователь не найден или неверные учётные данные")
		return "", fmt.Errorf("%w: неверные учетные данные", apperr.ErrForbidden)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		s.logger.Warn("Неверный пароль при попытке входа")
		return "", fmt.Errorf("%w: неверные учетные данные", apperr.ErrForbidden)
	}

	token, err := s.GenerateJWTToken(user.ID.String())
	if err != nil {
		s.logger.WithError(err).Error("Не удалось сгенерировать JWT токен")
		return "", fmt.Errorf("ошибка генерации токена: %w", err)
	}

	s.logger.WithField("user_id", user.ID).Info("Пользователь успешно вошёл в систему")
	return token, nil
}

// GenerateJWTToken Генерация JWT токена
func (s *AuthService) GenerateJWTToken(userID string) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.tokenExpiry)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

// ParseToken Разбор и валидация JWT токена
func (s *AuthService) ParseToken(tokenString string) (string, error) {
	s.logger.Debug("Попытка парсинга JWT токена")

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.jwtSecret), nil
	})

	if err != nil || !token.Valid {
		s.logger.WithError(err).Warn("Невалидный JWT токен")
		return "", fmt.Errorf("невалидный токен: %w", err)
	}

	userID := claims.Subject
	if userID == "" {
		s.logger.Error("Не удалось извлечь идентификатор пользователя из токена")
		return "", fmt.Errorf("некорректные claims токена")
	}

	return userID, nil
}
