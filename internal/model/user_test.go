package model

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUserInputValidate(t *testing.T) {
	memberID := uuid.New()

	admin := CreateUserInput{
		Username: "admin",
		Email:    "admin@comunidad-ahorra.org",
		Password: "secret-password",
		Role:     RoleAdministrator,
	}
	require.NoError(t, admin.Validate())

	board := CreateUserInput{
		Username: "directiva1",
		Email:    "directiva@comunidad-ahorra.org",
		Password: "secret-password",
		Role:     RoleBoardMember,
		MemberID: &memberID,
	}
	require.NoError(t, board.Validate())

	boardWithoutMember := board
	boardWithoutMember.MemberID = nil
	assert.Error(t, boardWithoutMember.Validate())

	adminWithMember := admin
	adminWithMember.MemberID = &memberID
	assert.Error(t, adminWithMember.Validate())

	unknownRole := admin
	unknownRole.Role = "auditor"
	assert.Error(t, unknownRole.Validate())

	shortPassword := admin
	shortPassword.Password = "short"
	assert.Error(t, shortPassword.Validate())

	badEmail := admin
	badEmail.Email = "not-an-email"
	assert.Error(t, badEmail.Validate())
}
