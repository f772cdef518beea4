package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config содержит настройки приложения
type Config struct {
	DBHost      string        // Хост базы данных
	DBPort      string        // Порт базы данных
	DBUser      string        // Пользователь базы данных
	DBPassword  string        // Пароль базы данных
	DBName      string        // Имя базы данных
	JWTSecret   string        // Секрет для JWT
	TokenExpiry time.Duration // Время жизни токена
	PGPKeyPath  string        // Путь к PGP ключу для шифрования DUI
}

// LoadConfig загружает конфигурацию из .env файла
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Warn("Файл .env не найден")
	}

	expiry, err := time.ParseDuration(os.Getenv("TOKEN_EXPIRY"))
	if err != nil {
		expiry = 24 * time.Hour // По умолчанию 24 часа
	}

	config := &Config{
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBPort:      getEnv("DB_PORT", "5432"),
		DBUser:      getEnv("DB_USER", "postgres"),
		DBPassword:  getEnv("DB_PASSWORD", "postgres"),
		DBName:      getEnv("DB_NAME", "gapc"),
		JWTSecret:   getEnv("JWT_SECRET", "default-secret-key"),
		TokenExpiry: expiry,
		PGPKeyPath:  getEnv("PGP_KEY_PATH", "config/pgp-key.asc"),
	}

	return config, nil
}

// getEnv получает значение переменной окружения или возвращает значение по умолчанию
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
