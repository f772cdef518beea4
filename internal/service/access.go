package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Emi00093522-cloud/sistema-gapc.com/internal/apperr"
	"github.com/Emi00093522-cloud/sistema-gapc.com/internal/model"
	"github.com/Emi00093522-cloud/sistema-gapc.com/internal/repository"
)

// AccessService сопоставляет проверенной учетной записи ее зону доступа:
// администратор - все округа, промотор - закрепленные группы,
// директива - единственная группа своей участницы.
type AccessService struct {
	userRepo   *repository.UserRepository
	groupRepo  *repository.GroupRepository
	memberRepo *repository.MemberRepository
	logger     *logrus.Logger
}

func NewAccessService(
	userRepo *repository.UserRepository,
	groupRepo *repository.GroupRepository,
	memberRepo *repository.MemberRepository,
	logger *logrus.Logger,
) *AccessService {
	return &AccessService{
		userRepo:   userRepo,
		groupRepo:  groupRepo,
		memberRepo: memberRepo,
		logger:     logger,
	}
}

// ResolveScope вычисляет зону доступа учетной записи.
// Зона передается явным аргументом в каждую операцию ядра.
func (s *AccessService) ResolveScope(ctx context.Context, userID uuid.UUID) (*model.Scope, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		s.logger.WithError(err).Warnf("Не удалось получить учетную запись %s", userID)
		return nil, err
	}

	scope := &model.Scope{
		UserID: user.ID,
		Role:   user.Role,
	}

	switch user.Role {
	case model.RoleAdministrator:
		scope.AllGroups = true

	case model.RolePromoter:
		groupIDs, err := s.groupRepo.GroupIDsByPromoter(ctx, user.ID)
		if err != nil {
			s.logger.WithError(err).Error("Не удалось получить группы промотора")
			return nil, err
		}
		scope.GroupIDs = groupIDs

	case model.RoleBoardMember:
		if user.MemberID == nil {
			s.logger.Errorf("Учетная запись директивы %s не привязана к участнице", user.ID)
			return nil, fmt.Errorf("%w: учетная запись не привязана к участнице", apperr.ErrValidation)
		}
		member, err := s.memberRepo.GetByID(ctx, *user.MemberID)
		if err != nil {
			return nil, err
		}
		scope.GroupIDs = []uuid.UUID{member.GroupID}

	default:
		return nil, fmt.Errorf("%w: неизвестная роль %q", apperr.ErrValidation, user.Role)
	}

	return scope, nil
}

// RequireGroup проверяет, что группа входит в зону доступа
func (s *AccessService) RequireGroup(scope *model.Scope, groupID uuid.UUID) error {
	if !scope.AllowsGroup(groupID) {
		s.logger.WithFields(logrus.Fields{
			"user_id":  scope.UserID,
			"group_id": groupID,
		}).Warn("Попытка операции вне зоны доступа")
		return fmt.Errorf("%w: группа %s вне зоны доступа", apperr.ErrForbidden, groupID)
	}
	return nil
}

// RequireAdmin проверяет, что вызывающий - администратор
func (s *AccessService) RequireAdmin(scope *model.Scope) error {
	if !scope.IsAdmin() {
		s.logger.WithField("user_id", scope.UserID).Warn("Операция требует прав администратора")
		return fmt.Errorf("%w: операция доступна только администратору", apperr.ErrForbidden)
	}
	return nil
}
