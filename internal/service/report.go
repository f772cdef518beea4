package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/Emi00093522-cloud/sistema-gapc.com/internal/apperr"
	"github.com/Emi00093522-cloud/sistema-gapc.com/internal/model"
	"github.com/Emi00093522-cloud/sistema-gapc.com/internal/repository"
)

// ReportService строит сводки для администрации. Промотор видит только
// сводку по собственным группам, системная сводка доступна администратору.
type ReportService struct {
	reportRepo *repository.ReportRepository
	logger     *logrus.Logger
}

func NewReportService(reportRepo *repository.ReportRepository, logger *logrus.Logger) *ReportService {
	return &ReportService{
		reportRepo: reportRepo,
		logger:     logger,
	}
}

// DistrictSummaries Сводки по округам. Администратор видит все группы,
// промотор - только закрепленные за ним.
func (s *ReportService) DistrictSummaries(ctx context.Context, scope *model.Scope) ([]model.DistrictSummary, error) {
	switch scope.Role {
	case model.RoleAdministrator:
		return s.reportRepo.DistrictSummaries(ctx, nil)
	case model.RolePromoter:
		promoterID := scope.UserID
		return s.reportRepo.DistrictSummaries(ctx, &promoterID)
	default:
		return nil, fmt.Errorf("%w: сводки по округам недоступны роли %s", apperr.ErrForbidden, scope.Role)
	}
}

// SystemSummary Сводка по всем округам. Доступна только администратору.
func (s *ReportService) SystemSummary(ctx context.Context, scope *model.Scope) (*model.SystemSummary, error) {
	if !scope.IsAdmin() {
		return nil, fmt.Errorf("%w: системная сводка доступна только администратору", apperr.ErrForbidden)
	}

	summaries, err := s.reportRepo.DistrictSummaries(ctx, nil)
	if err != nil {
		s.logger.WithError(err).Error("Не удалось построить сводки по округам")
		return nil, err
	}

	system := &model.SystemSummary{
		TotalSavings:         decimal.Zero,
		OutstandingPrincipal: decimal.Zero,
	}

	for _, summary := range summaries {
		system.DistrictCount++
		system.GroupCount += summary.GroupCount
		system.ActiveMemberCount += summary.ActiveMemberCount
		system.TotalSavings = system.TotalSavings.Add(summary.TotalSavings)
		system.OutstandingPrincipal = system.OutstandingPrincipal.Add(summary.OutstandingPrincipal)
	}

	return system, nil
}

// GroupStatistics Показатели отдельной группы с проверкой зоны доступа
func (s *ReportService) GroupStatistics(ctx context.Context, scope *model.Scope, groupID uuid.UUID) (*model.GroupStatistics, error) {
	if !scope.AllowsGroup(groupID) {
		return nil, fmt.Errorf("%w: группа %s вне зоны доступа", apperr.ErrForbidden, groupID)
	}

	stats, err := s.reportRepo.GroupStatistics(ctx, groupID)
	if err != nil {
		s.logger.WithError(err).Errorf("Не удалось построить статистику группы %s", groupID)
		return nil, err
	}

	return stats, nil
}
