package service

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Emi00093522-cloud/sistema-gapc.com/internal/apperr"
	"github.com/Emi00093522-cloud/sistema-gapc.com/internal/model"
)

func TestMaskDUI(t *testing.T) {
	assert.Equal(t, "******34-5", maskDUI("01234534-5"))
	// Некорректная длина маскируется целиком
	assert.Equal(t, "**********", maskDUI("123"))
}

func TestValidateCreateMember(t *testing.T) {
	valid := model.CreateMemberRequest{
		GroupID: uuid.New(),
		Name:    "María López",
		DUI:     "01234567-8",
		Role:    model.MemberRoleOrdinary,
	}
	require.NoError(t, validateCreateMember(valid))

	badDUI := valid
	badDUI.DUI = "1234567-8"
	err := validateCreateMember(badDUI)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	badRole := valid
	badRole.Role = "chair"
	err = validateCreateMember(badRole)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	shortName := valid
	shortName.Name = "M"
	err = validateCreateMember(shortName)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	badEmail := valid
	badEmail.Email = "not-an-email"
	err = validateCreateMember(badEmail)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestComputeDUIHMACDeterministic(t *testing.T) {
	svc := NewMemberService(nil, nil, nil, "0123456789abcdef0123456789abcdef", newTestLogger())

	first := svc.computeDUIHMAC("01234567-8")
	second := svc.computeDUIHMAC("01234567-8")
	other := svc.computeDUIHMAC("87654321-0")

	assert.Equal(t, first, second)
	assert.NotEqual(t, first, other)
	assert.Len(t, first, 64)
}
