package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/Emi00093522-cloud/sistema-gapc.com/internal/config"
	"github.com/Emi00093522-cloud/sistema-gapc.com/internal/crypto"
	"github.com/Emi00093522-cloud/sistema-gapc.com/internal/handler"
	"github.com/Emi00093522-cloud/sistema-gapc.com/internal/repository"
	"github.com/Emi00093522-cloud/sistema-gapc.com/internal/service"
)

func main() {
	logger := logrus.New()
	// Уровень логирования (Debug для разработки, Info для продакшена)
	logger.SetLevel(logrus.DebugLevel)
	logger.SetFormatter(&logrus.JSONFormatter{})

	// Загрузка конфигурации приложения
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	// Подключение к PostgreSQL
	db, err := sql.Open("postgres", fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName,
	))
	if err != nil {
		logger.Fatalf("Ошибка подключения к базе данных: %v", err)
	}
	defer db.Close()

	// Проверка соединения с БД
	if err := db.Ping(); err != nil {
		logger.Fatalf("Ошибка проверки соединения с БД: %v", err)
	}

	// Инициализация PGP для шифрования DUI участниц
	pgpManager, err := crypto.NewPGPManager(cfg.PGPKeyPath)
	if err != nil {
		logger.Fatalf("Ошибка инициализации PGP: %v", err)
	}

	hmacSecret := os.Getenv("HMAC_SECRET")
	if hmacSecret == "" {
		logger.Fatal("Переменная окружения HMAC_SECRET не установлена")
	}
	if len(hmacSecret) < 32 {
		logger.Fatal("HMAC ключ должен быть длиной минимум 32 байта")
	}

	// Инициализация репозиториев
	logger.Info("Инициализация репозиториев...")
	userRepo := repository.NewUserRepository(db, logger)
	districtRepo := repository.NewDistrictRepository(db, logger)
	groupRepo := repository.NewGroupRepository(db, logger)
	memberRepo := repository.NewMemberRepository(db, logger)
	meetingRepo := repository.NewMeetingRepository(db, logger)
	savingRepo := repository.NewSavingRepository(db, logger)
	loanRepo := repository.NewLoanRepository(db, logger)
	fineRepo := repository.NewFineRepository(db, logger)
	cashRepo := repository.NewCashRepository(db, logger)
	reportRepo := repository.NewReportRepository(db, logger)
	emailSender := service.NewEmailSender(logger)

	// Инициализация сервисов
	logger.Info("Инициализация сервисов...")
	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.TokenExpiry, logger)
	accessService := service.NewAccessService(userRepo, groupRepo, memberRepo, logger)
	rateClient := service.NewReferenceRateClient(logger)
	groupService := service.NewGroupService(groupRepo, districtRepo, userRepo, rateClient, logger)
	memberService := service.NewMemberService(memberRepo, groupRepo, pgpManager, hmacSecret, logger)
	meetingService := service.NewMeetingService(meetingRepo, memberRepo, groupRepo, cashRepo, logger)
	savingService := service.NewSavingService(savingRepo, memberRepo, meetingRepo, cashRepo, logger)
	loanService := service.NewLoanService(
		loanRepo,
		memberRepo,
		groupRepo,
		meetingRepo,
		cashRepo,
		userRepo,
		emailSender,
		logger,
	)
	fineService := service.NewFineService(fineRepo, memberRepo, groupRepo, meetingRepo, logger)
	balanceService := service.NewBalanceService(loanRepo, savingRepo, fineRepo, cashRepo, memberRepo, logger)
	reportService := service.NewReportService(reportRepo, logger)

	// Инициализация HTTP обработчиков
	logger.Info("Инициализация обработчиков API...")
	authHandler := handler.NewAuthHandler(authService, accessService, logger)
	groupHandler := handler.NewGroupHandler(groupService, accessService, logger)
	memberHandler := handler.NewMemberHandler(memberService, accessService, logger)
	meetingHandler := handler.NewMeetingHandler(meetingService, accessService, logger)
	savingHandler := handler.NewSavingHandler(savingService, balanceService, accessService, logger)
	loanHandler := handler.NewLoanHandler(loanService, balanceService, accessService, logger)
	fineHandler := handler.NewFineHandler(fineService, balanceService, accessService, logger)
	reportHandler := handler.NewReportHandler(reportService, balanceService, accessService, logger)

	// Настройка маршрутизатора
	router := mux.NewRouter()

	// 1. Публичные маршруты для аутентификации
	publicRouter := router.PathPrefix("/auth").Subrouter()
	authHandler.RegisterPublicRoutes(publicRouter)

	// 2. Защищенные API маршруты (требуется JWT токен)
	apiRouter := router.PathPrefix("/api").Subrouter()
	apiRouter.Use(handler.AuthMiddleware(authService, logger))

	// Управление учетными записями (только администратор)
	userRouter := apiRouter.PathPrefix("/users").Subrouter()
	authHandler.RegisterProtectedRoutes(userRouter)

	// Округа
	districtRouter := apiRouter.PathPrefix("/districts").Subrouter()
	groupHandler.RegisterDistrictRoutes(districtRouter)

	// Группы и вложенные списки
	groupRouter := apiRouter.PathPrefix("/groups").Subrouter()
	groupHandler.RegisterGroupRoutes(groupRouter)
	groupRouter.HandleFunc("/{groupId}/members", memberHandler.ListGroupMembers).Methods("GET")
	groupRouter.HandleFunc("/{groupId}/meetings", meetingHandler.ListGroupMeetings).Methods("GET")
	groupRouter.HandleFunc("/{groupId}/loans", loanHandler.ListGroupLoans).Methods("GET")

	// Участницы
	memberRouter := apiRouter.PathPrefix("/members").Subrouter()
	memberHandler.RegisterRoutes(memberRouter)

	// Собрания и касса
	meetingRouter := apiRouter.PathPrefix("/meetings").Subrouter()
	meetingHandler.RegisterRoutes(meetingRouter)

	// Сбережения
	savingRouter := apiRouter.PathPrefix("/savings").Subrouter()
	savingHandler.RegisterRoutes(savingRouter)

	// Займы
	loanRouter := apiRouter.PathPrefix("/loans").Subrouter()
	loanHandler.RegisterRoutes(loanRouter)

	// Штрафы
	fineRouter := apiRouter.PathPrefix("/fines").Subrouter()
	fineHandler.RegisterRoutes(fineRouter)

	// Отчеты
	reportRouter := apiRouter.PathPrefix("/reports").Subrouter()
	reportHandler.RegisterRoutes(reportRouter)

	// Настройка планировщика для проверки просроченных займов
	logger.Info("Настройка планировщика проверки просрочки...")
	c := cron.New()
	_, err = c.AddFunc("0 6 * * *", func() {
		logger.Info("Запуск проверки просроченных займов")
		if err := loanService.MarkDelinquentLoans(context.Background()); err != nil {
			logger.WithError(err).Error("Ошибка проверки просроченных займов")
		} else {
			logger.Info("Проверка просроченных займов завершена успешно")
		}
	})
	if err != nil {
		logger.Fatalf("Ошибка настройки планировщика: %v", err)
	}
	c.Start()

	// Настройка и запуск HTTP сервера
	server := &http.Server{
		Addr:    ":8080",
		Handler: router,
	}

	go func() {
		logger.Info("Запуск сервера на порту :8080")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Ошибка сервера: %v", err)
		}
	}()

	// Ожидание сигналов для graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Завершение работы сервера...")
	if err := server.Shutdown(context.Background()); err != nil {
		logger.Errorf("Ошибка при завершении работы сервера: %v", err)
	}
	logger.Info("Сервер успешно остановлен")
}
