package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Emi00093522-cloud/sistema-gapc.com/internal/apperr"
	"github.com/Emi00093522-cloud/sistema-gapc.com/internal/crypto"
	"github.com/Emi00093522-cloud/sistema-gapc.com/internal/model"
	"github.com/Emi00093522-cloud/sistema-gapc.com/internal/repository"
)

// Формат сальвадорского DUI: восемь цифр, дефис, контрольная цифра
var duiRegex = regexp.MustCompile(`^\d{8}-\d$`)

// MemberService управляет реестром участниц. DUI никогда не хранится
// в открытом виде: в базе лежат PGP-шифртекст и HMAC для уникальности.
type MemberService struct {
	memberRepo *repository.MemberRepository
	groupRepo  *repository.GroupRepository
	pgpManager *crypto.PGPManager
	hmacSecret []byte
	logger     *logrus.Logger
}

func NewMemberService(
	memberRepo *repository.MemberRepository,
	groupRepo *repository.GroupRepository,
	pgpManager *crypto.PGPManager,
	hmacSecret string,
	logger *logrus.Logger,
) *MemberService {
	return &MemberService{
		memberRepo: memberRepo,
		groupRepo:  groupRepo,
		pgpManager: pgpManager,
		hmacSecret: []byte(hmacSecret),
		logger:     logger,
	}
}

// CreateMember Регистрация участницы в группе
func (s *MemberService) CreateMember(ctx context.Context, scope *model.Scope, req model.CreateMemberRequest) (*model.MemberResponse, error) {
	if err := s.requireGroupAccess(scope, req.GroupID); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"group_id": req.GroupID,
		"name":     req.Name,
	}).Info("Регистрация новой участницы")

	if err := validateCreateMember(req); err != nil {
		return nil, err
	}

	group, err := s.groupRepo.GetByID(ctx, req.GroupID)
	if err != nil {
		return nil, err
	}
	if group.Status != model.GroupStatusActive {
		return nil, fmt.Errorf("%w: группа %s закрыта", apperr.ErrConstraint, group.ID)
	}

	duiHMAC := s.computeDUIHMAC(req.DUI)

	exists, err := s.memberRepo.ExistsByDUIHMAC(ctx, duiHMAC)
	if err != nil {
		return nil, err
	}
	if exists {
		s.logger.Warn("Попытка повторной регистрации DUI")
		return nil, fmt.Errorf("%w: участница с таким DUI уже зарегистрирована", apperr.ErrConstraint)
	}

	encryptedDUI, err := s.pgpManager.Encrypt(req.DUI)
	if err != nil {
		s.logger.WithError(err).Error("Не удалось зашифровать DUI")
		return nil, fmt.Errorf("ошибка шифрования DUI: %w", err)
	}

	now := time.Now()
	member := &model.Member{
		ID:           uuid.New(),
		GroupID:      req.GroupID,
		Name:         req.Name,
		EncryptedDUI: encryptedDUI,
		DUIHMAC:      duiHMAC,
		Email:        req.Email,
		Phone:        req.Phone,
		Role:         req.Role,
		Status:       model.MemberStatusActive,
		AbsenceCount: 0,
		JoinedAt:     now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.memberRepo.Create(ctx, member); err != nil {
		s.logger.WithError(err).Error("Не удалось сохранить участницу в базе данных")
		return nil, err
	}

	s.logger.WithField("member_id", member.ID).Info("Участница успешно зарегистрирована")

	response := toMemberResponse(member, maskDUI(req.DUI))
	return &response, nil
}

// ListByGroup Список участниц группы с маскированными DUI
func (s *MemberService) ListByGroup(ctx context.Context, scope *model.Scope, groupID uuid.UUID) ([]model.MemberResponse, error) {
	if err := s.requireGroupAccess(scope, groupID); err != nil {
		return nil, err
	}

	members, err := s.memberRepo.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	responses := make([]model.MemberResponse, 0, len(members))
	for i := range members {
		masked, err := s.maskStoredDUI(&members[i])
		if err != nil {
			return nil, err
		}
		responses = append(responses, toMemberResponse(&members[i], masked))
	}

	return responses, nil
}

// GetMember Получение участницы с маскированным DUI
func (s *MemberService) GetMember(ctx context.Context, scope *model.Scope, memberID uuid.UUID) (*model.MemberResponse, error) {
	member, err := s.memberRepo.GetByID(ctx, memberID)
	if err != nil {
		return nil, err
	}

	if err := s.requireGroupAccess(scope, member.GroupID); err != nil {
		return nil, err
	}

	masked, err := s.maskStoredDUI(member)
	if err != nil {
		return nil, err
	}

	response := toMemberResponse(member, masked)
	return &response, nil
}

// DeactivateMember Деактивация участницы без удаления ее записей
func (s *MemberService) DeactivateMember(ctx context.Context, scope *model.Scope, memberID uuid.UUID) error {
	member, err := s.memberRepo.GetByID(ctx, memberID)
	if err != nil {
		return err
	}

	if err := s.requireGroupAccess(scope, member.GroupID); err != nil {
		return err
	}

	if member.Status == model.MemberStatusInactive {
		return fmt.Errorf("%w: участница %s уже деактивирована", apperr.ErrConstraint, memberID)
	}

	if err := s.memberRepo.UpdateStatus(ctx, memberID, model.MemberStatusInactive); err != nil {
		return err
	}

	s.logger.WithField("member_id", memberID).Info("Участница деактивирована")
	return nil
}

// AdjustAbsences Ручная корректировка счетчика пропусков.
// Доступна только администратору как исправление ошибок учета.
func (s *MemberService) AdjustAbsences(ctx context.Context, scope *model.Scope, req model.AdjustAbsencesRequest) error {
	if !scope.IsAdmin() {
		return fmt.Errorf("%w: корректировка пропусков доступна только администратору", apperr.ErrForbidden)
	}

	if req.Count < 0 {
		return fmt.Errorf("%w: число пропусков не может быть отрицательным", apperr.ErrValidation)
	}

	if _, err := s.memberRepo.GetByID(ctx, req.MemberID); err != nil {
		return err
	}

	if err := s.memberRepo.SetAbsenceCount(ctx, req.MemberID, req.Count); err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"member_id": req.MemberID,
		"count":     req.Count,
	}).Info("Счетчик пропусков скорректирован")

	return nil
}

func (s *MemberService) requireGroupAccess(scope *model.Scope, groupID uuid.UUID) error {
	if !scope.AllowsGroup(groupID) {
		return fmt.Errorf("%w: группа %s вне зоны доступа", apperr.ErrForbidden, groupID)
	}
	return nil
}

// computeDUIHMAC вычисляет HMAC-SHA256 от DUI для проверки уникальности
// без расшифровки всего реестра
func (s *MemberService) computeDUIHMAC(dui string) string {
	mac := hmac.New(sha256.New, s.hmacSecret)
	mac.Write([]byte(dui))
	return hex.EncodeToString(mac.Sum(nil))
}

// maskStoredDUI расшифровывает DUI участницы и возвращает маску
func (s *MemberService) maskStoredDUI(member *model.Member) (string, error) {
	dui, err := s.pgpManager.Decrypt(member.EncryptedDUI)
	if err != nil {
		s.logger.WithError(err).Errorf("Не удалось расшифровать DUI участницы %s", member.ID)
		return "", fmt.Errorf("ошибка расшифровки DUI: %w", err)
	}
	return maskDUI(dui), nil
}

func validateCreateMember(req model.CreateMemberRequest) error {
	if len(req.Name) < 2 {
		return fmt.Errorf("%w: имя участницы слишком короткое", apperr.ErrValidation)
	}

	if !duiRegex.MatchString(req.DUI) {
		return fmt.Errorf("%w: DUI должен иметь формат 00000000-0", apperr.ErrValidation)
	}

	switch req.Role {
	case model.MemberRolePresident, model.MemberRoleSecretary, model.MemberRoleTreasurer, model.MemberRoleOrdinary:
	default:
		return fmt.Errorf("%w: неизвестная роль участницы %q", apperr.ErrValidation, req.Role)
	}

	if req.Email != "" && !isValidMemberEmail(req.Email) {
		return fmt.Errorf("%w: некорректный email", apperr.ErrValidation)
	}

	return nil
}

var memberEmailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

func isValidMemberEmail(email string) bool {
	return memberEmailRegex.MatchString(email)
}

// maskDUI оставляет видимыми только последние две цифры
func maskDUI(dui string) string {
	if len(dui) != 10 {
		return "**********"
	}
	return "******" + dui[6:]
}

func toMemberResponse(member *model.Member, maskedDUI string) model.MemberResponse {
	return model.MemberResponse{
		ID:           member.ID,
		GroupID:      member.GroupID,
		Name:         member.Name,
		MaskedDUI:    maskedDUI,
		Email:        member.Email,
		Phone:        member.Phone,
		Role:         member.Role,
		Status:       member.Status,
		AbsenceCount: member.AbsenceCount,
	}
}
