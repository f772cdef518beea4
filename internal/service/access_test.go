package service

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Emi00093522-cloud/sistema-gapc.com/internal/apperr"
	"github.com/Emi00093522-cloud/sistema-gapc.com/internal/model"
)

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func TestScopeAllowsGroup(t *testing.T) {
	groupA := uuid.New()
	groupB := uuid.New()

	admin := &model.Scope{Role: model.RoleAdministrator, AllGroups: true}
	assert.True(t, admin.AllowsGroup(groupA))
	assert.True(t, admin.AllowsGroup(groupB))

	promoter := &model.Scope{Role: model.RolePromoter, GroupIDs: []uuid.UUID{groupA}}
	assert.True(t, promoter.AllowsGroup(groupA))
	assert.False(t, promoter.AllowsGroup(groupB))

	board := &model.Scope{Role: model.RoleBoardMember, GroupIDs: []uuid.UUID{groupB}}
	assert.False(t, board.AllowsGroup(groupA))
	assert.True(t, board.AllowsGroup(groupB))
}

func TestScopeIsAdmin(t *testing.T) {
	assert.True(t, (&model.Scope{Role: model.RoleAdministrator}).IsAdmin())
	assert.False(t, (&model.Scope{Role: model.RolePromoter}).IsAdmin())
	assert.False(t, (&model.Scope{Role: model.RoleBoardMember}).IsAdmin())
}

func TestRequireGroupForbidden(t *testing.T) {
	svc := NewAccessService(nil, nil, nil, newTestLogger())

	allowed := uuid.New()
	other := uuid.New()
	scope := &model.Scope{
		UserID:   uuid.New(),
		Role:     model.RolePromoter,
		GroupIDs: []uuid.UUID{allowed},
	}

	require.NoError(t, svc.RequireGroup(scope, allowed))

	err := svc.RequireGroup(scope, other)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrForbidden))
}

func TestRequireAdmin(t *testing.T) {
	svc := NewAccessService(nil, nil, nil, newTestLogger())

	admin := &model.Scope{UserID: uuid.New(), Role: model.RoleAdministrator, AllGroups: true}
	require.NoError(t, svc.RequireAdmin(admin))

	promoter := &model.Scope{UserID: uuid.New(), Role: model.RolePromoter}
	err := svc.RequireAdmin(promoter)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrForbidden))
}
