package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/Emi00093522-cloud/sistema-gapc.com/internal/apperr"
	"github.com/Emi00093522-cloud/sistema-gapc.com/internal/model"
	"github.com/Emi00093522-cloud/sistema-gapc.com/internal/repository"
)

// Надбавка группы к справочной ставке BCR и запасная ставка
// на случай недоступности веб-сервиса
var (
	rateMargin          = decimal.NewFromInt(2)
	fallbackAnnualRate  = decimal.NewFromInt(10)
	maxCycleLengthWeeks = 52
)

type GroupService struct {
	groupRepo    *repository.GroupRepository
	districtRepo *repository.DistrictRepository
	userRepo     *repository.UserRepository
	rateClient   *ReferenceRateClient
	logger       *logrus.Logger
}

func NewGroupService(
	groupRepo *repository.GroupRepository,
	districtRepo *repository.DistrictRepository,
	userRepo *repository.UserRepository,
	rateClient *ReferenceRateClient,
	logger *logrus.Logger,
) *GroupService {
	return &GroupService{
		groupRepo:    groupRepo,
		districtRepo: districtRepo,
		userRepo:     userRepo,
		rateClient:   rateClient,
		logger:       logger,
	}
}

// CreateDistrict Создание округа. Доступно только администратору.
func (s *GroupService) CreateDistrict(ctx context.Context, scope *model.Scope, req model.CreateDistrictRequest) (*model.District, error) {
	if !scope.IsAdmin() {
		return nil, fmt.Errorf("%w: создание округов доступно только администратору", apperr.ErrForbidden)
	}

	if len(req.Name) < 2 {
		return nil, fmt.Errorf("%w: название округа слишком короткое", apperr.ErrValidation)
	}

	district := &model.District{
		ID:        uuid.New(),
		Name:      req.Name,
		CreatedAt: time.Now(),
	}

	if err := s.districtRepo.Create(ctx, district); err != nil {
		s.logger.WithError(err).Error("Не удалось создать округ")
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"district_id": district.ID,
		"name":        district.Name,
	}).Info("Округ успешно создан")

	return district, nil
}

// ListDistricts Список округов доступен любой аутентифицированной роли
func (s *GroupService) ListDistricts(ctx context.Context) ([]model.District, error) {
	return s.districtRepo.List(ctx)
}

// CreateGroup Создание группы сбережений. Доступно только администратору.
// Если ставка не указана, берется справочная ставка BCR плюс надбавка.
func (s *GroupService) CreateGroup(ctx context.Context, scope *model.Scope, req model.CreateGroupRequest) (*model.Group, error) {
	if !scope.IsAdmin() {
		return nil, fmt.Errorf("%w: создание групп доступно только администратору", apperr.ErrForbidden)
	}

	s.logger.WithFields(logrus.Fields{
		"name":        req.Name,
		"district_id": req.DistrictID,
		"promoter_id": req.PromoterID,
	}).Info("Создание новой группы")

	if err := s.validateCreateGroup(ctx, req); err != nil {
		return nil, err
	}

	interestRate, err := s.resolveInterestRate(req.InterestRate)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	group := &model.Group{
		ID:           uuid.New(),
		DistrictID:   req.DistrictID,
		PromoterID:   req.PromoterID,
		Name:         req.Name,
		StartDate:    req.StartDate,
		CycleLength:  req.CycleLength,
		Periodicity:  req.Periodicity,
		InterestRate: interestRate,
		Rules:        req.Rules,
		Status:       model.GroupStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.groupRepo.Create(ctx, group); err != nil {
		s.logger.WithError(err).Error("Не удалось создать группу в базе данных")
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"group_id":      group.ID,
		"interest_rate": group.InterestRate,
	}).Info("Группа успешно создана")

	return group, nil
}

func (s *GroupService) validateCreateGroup(ctx context.Context, req model.CreateGroupRequest) error {
	if len(req.Name) < 2 {
		return fmt.Errorf("%w: название группы слишком короткое", apperr.ErrValidation)
	}

	if req.CycleLength < 1 || req.CycleLength > maxCycleLengthWeeks {
		return fmt.Errorf("%w: недопустимая длина цикла %d", apperr.ErrValidation, req.CycleLength)
	}

	switch req.Periodicity {
	case model.PeriodicityWeekly, model.PeriodicityBiweekly, model.PeriodicityMonthly:
	default:
		return fmt.Errorf("%w: неизвестная периодичность %q", apperr.ErrValidation, req.Periodicity)
	}

	if req.InterestRate != nil && req.InterestRate.IsNegative() {
		return fmt.Errorf("%w: процентная ставка не может быть отрицательной", apperr.ErrValidation)
	}

	if _, err := s.districtRepo.GetByID(ctx, req.DistrictID); err != nil {
		return err
	}

	promoter, err := s.userRepo.GetByID(ctx, req.PromoterID)
	if err != nil {
		return err
	}
	if promoter.Role != model.RolePromoter {
		return fmt.Errorf("%w: учетная запись %s не является промотором", apperr.ErrValidation, req.PromoterID)
	}

	return nil
}

// resolveInterestRate выбирает ставку группы: явная ставка из запроса,
// иначе справочная ставка BCR с надбавкой, иначе запасная ставка
func (s *GroupService) resolveInterestRate(explicit *decimal.Decimal) (decimal.Decimal, error) {
	if explicit != nil {
		return *explicit, nil
	}

	referenceRate, err := s.rateClient.GetReferenceRate()
	if err != nil {
		s.logger.WithError(err).Warnf("Справочная ставка BCR недоступна, используется запасная ставка %s%%", fallbackAnnualRate)
		return fallbackAnnualRate, nil
	}

	return referenceRate.Add(rateMargin), nil
}

// ListGroups Список групп в зоне доступа вызывающего
func (s *GroupService) ListGroups(ctx context.Context, scope *model.Scope) ([]model.Group, error) {
	if scope.AllGroups {
		return s.groupRepo.List(ctx)
	}

	if scope.Role == model.RolePromoter {
		return s.groupRepo.ListByPromoter(ctx, scope.UserID)
	}

	// Директива видит только собственную группу
	var groups []model.Group
	for _, id := range scope.GroupIDs {
		group, err := s.groupRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		groups = append(groups, *group)
	}
	return groups, nil
}

// GetGroup Получение группы с проверкой зоны доступа
func (s *GroupService) GetGroup(ctx context.Context, scope *model.Scope, groupID uuid.UUID) (*model.Group, error) {
	if !scope.AllowsGroup(groupID) {
		return nil, fmt.Errorf("%w: группа %s вне зоны доступа", apperr.ErrForbidden, groupID)
	}
	return s.groupRepo.GetByID(ctx, groupID)
}

// CloseGroup Завершение цикла группы. Доступно только администратору.
// Группа не удаляется: ее записи остаются в журнале навсегда.
func (s *GroupService) CloseGroup(ctx context.Context, scope *model.Scope, groupID uuid.UUID) error {
	if !scope.IsAdmin() {
		return fmt.Errorf("%w: закрытие групп доступно только администратору", apperr.ErrForbidden)
	}

	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return err
	}

	if group.Status == model.GroupStatusClosed {
		return fmt.Errorf("%w: группа %s уже закрыта", apperr.ErrConstraint, groupID)
	}

	if err := s.groupRepo.UpdateStatus(ctx, groupID, model.GroupStatusClosed); err != nil {
		return err
	}

	s.logger.WithField("group_id", groupID).Info("Группа закрыта")
	return nil
}
