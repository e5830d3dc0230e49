package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/elearn-be/internal/apperr"
	"github.com/hongminglow/elearn-be/internal/auth"
	"github.com/hongminglow/elearn-be/internal/logging"
	"github.com/hongminglow/elearn-be/internal/models"
	"github.com/hongminglow/elearn-be/internal/models/dto"
	"github.com/hongminglow/elearn-be/internal/storage/memory"
)

func newAccounts(t *testing.T) (*Accounts, *memory.Store, *auth.TokenManager) {
	t.Helper()
	store := memory.New()
	tokens := auth.NewTokenManager("test-secret", "test", time.Hour)
	return NewAccounts(store, tokens, auth.NewPasswordHasher(4), logging.Discard()), store, tokens
}

func validRegistration() dto.RegisterRequest {
	return dto.RegisterRequest{
		Email:       "Lan@Example.com",
		Password:    "secret123",
		FullName:    "Nguyễn Thị Lan",
		PhoneNumber: "0912345678",
	}
}

func TestAccounts_RegisterAndLogin(t *testing.T) {
	accounts, _, _ := newAccounts(t)
	ctx := context.Background()

	user, err := accounts.Register(ctx, validRegistration())
	require.NoError(t, err)
	assert.Equal(t, "Lan@Example.com", user.Email)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.Equal(t, models.StatusActive, user.Status)
	assert.NotEqual(t, "secret123", user.PasswordHash)

	session, err := accounts.Login(ctx, dto.LoginRequest{Email: " Lan@Example.com ", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, user.ID, session.User.ID)

	resolved, err := accounts.Authenticate(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, resolved.ID)
}

func TestAccounts_RegisterDuplicateEmail(t *testing.T) {
	accounts, _, _ := newAccounts(t)
	ctx := context.Background()

	_, err := accounts.Register(ctx, validRegistration())
	require.NoError(t, err)

	again := validRegistration()
	again.Email = " Lan@Example.com"
	_, err = accounts.Register(ctx, again)
	assert.Equal(t, apperr.ErrConflict, apperr.KindOf(err))
}

func TestAccounts_RegisterAdmin(t *testing.T) {
	accounts, store, _ := newAccounts(t)
	ctx := context.Background()

	admin, err := accounts.RegisterAdmin(ctx, validRegistration())
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, admin.Role)

	stored, err := store.FindUserByID(ctx, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, stored.Role)
	assert.Equal(t, models.StatusActive, stored.Status)

	_, err = accounts.RegisterAdmin(ctx, validRegistration())
	assert.Equal(t, apperr.ErrConflict, apperr.KindOf(err))
}

func TestAccounts_EmailIsCaseSensitive(t *testing.T) {
	accounts, _, _ := newAccounts(t)
	ctx := context.Background()

	first, err := accounts.Register(ctx, validRegistration())
	require.NoError(t, err)

	lower := validRegistration()
	lower.Email = "lan@example.com"
	second, err := accounts.Register(ctx, lower)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	session, err := accounts.Login(ctx, dto.LoginRequest{Email: "lan@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, second.ID, session.User.ID)

	_, err = accounts.Login(ctx, dto.LoginRequest{Email: "LAN@EXAMPLE.COM", Password: "secret123"})
	assert.Equal(t, apperr.ErrUnauthenticated, apperr.KindOf(err))
}

func TestAccounts_RegisterInvalid(t *testing.T) {
	accounts, _, _ := newAccounts(t)
	req := validRegistration()
	req.PhoneNumber = "12"

	_, err := accounts.Register(context.Background(), req)
	assert.Equal(t, apperr.ErrValidation, apperr.KindOf(err))
	assert.Equal(t, "Số điện thoại không hợp lệ", apperr.Message(err))
}

func TestAccounts_LoginFailuresLookAlike(t *testing.T) {
	accounts, store, _ := newAccounts(t)
	ctx := context.Background()

	user, err := accounts.Register(ctx, validRegistration())
	require.NoError(t, err)

	_, unknownErr := accounts.Login(ctx, dto.LoginRequest{Email: "nobody@example.com", Password: "secret123"})
	_, wrongErr := accounts.Login(ctx, dto.LoginRequest{Email: "Lan@Example.com", Password: "wrong-pass"})
	assert.Equal(t, apperr.ErrUnauthenticated, apperr.KindOf(unknownErr))
	assert.Equal(t, apperr.ErrUnauthenticated, apperr.KindOf(wrongErr))
	assert.Equal(t, apperr.Message(unknownErr), apperr.Message(wrongErr))

	require.NoError(t, store.UpdateStatus(ctx, user.ID, models.StatusBanned))
	_, err = accounts.Login(ctx, dto.LoginRequest{Email: "Lan@Example.com", Password: "secret123"})
	assert.Equal(t, apperr.ErrUnauthenticated, apperr.KindOf(err))
}

func TestAccounts_AuthenticateRejects(t *testing.T) {
	accounts, store, tokens := newAccounts(t)
	ctx := context.Background()

	user, err := accounts.Register(ctx, validRegistration())
	require.NoError(t, err)
	token, _, err := tokens.Issue(user)
	require.NoError(t, err)

	other := auth.NewTokenManager("other-secret", "test", time.Hour)
	foreign, _, err := other.Issue(user)
	require.NoError(t, err)

	ghost, _, err := tokens.Issue(models.User{ID: 999, Email: "ghost@example.com", Role: models.RoleUser, Status: models.StatusActive})
	require.NoError(t, err)

	for name, tok := range map[string]string{"empty": "", "garbage": "abc", "foreign": foreign, "deleted user": ghost} {
		t.Run(name, func(t *testing.T) {
			_, err := accounts.Authenticate(ctx, tok)
			assert.Equal(t, apperr.ErrUnauthenticated, apperr.KindOf(err))
		})
	}

	t.Run("banned after issue", func(t *testing.T) {
		require.NoError(t, store.UpdateStatus(ctx, user.ID, models.StatusBanned))
		_, err := accounts.Authenticate(ctx, token)
		assert.Equal(t, apperr.ErrUnauthenticated, apperr.KindOf(err))
	})
}

func TestAccounts_ChangePassword(t *testing.T) {
	accounts, store, _ := newAccounts(t)
	ctx := context.Background()

	user, err := accounts.Register(ctx, validRegistration())
	require.NoError(t, err)

	err = accounts.ChangePassword(ctx, user.ID, dto.ChangePasswordRequest{CurrentPassword: "nope", NewPassword: "another1"})
	assert.Equal(t, apperr.ErrUnauthenticated, apperr.KindOf(err))
	unchanged, err := store.FindUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.PasswordHash, unchanged.PasswordHash)

	err = accounts.ChangePassword(ctx, user.ID, dto.ChangePasswordRequest{CurrentPassword: "secret123", NewPassword: "secret123"})
	assert.Equal(t, apperr.ErrValidation, apperr.KindOf(err))

	require.NoError(t, accounts.ChangePassword(ctx, user.ID, dto.ChangePasswordRequest{CurrentPassword: "secret123", NewPassword: "another1"}))

	_, err = accounts.Login(ctx, dto.LoginRequest{Email: user.Email, Password: "secret123"})
	assert.Error(t, err)
	_, err = accounts.Login(ctx, dto.LoginRequest{Email: user.Email, Password: "another1"})
	assert.NoError(t, err)
}

func TestAccounts_UpdateProfile(t *testing.T) {
	accounts, _, _ := newAccounts(t)
	ctx := context.Background()

	user, err := accounts.Register(ctx, validRegistration())
	require.NoError(t, err)

	school := "  THPT Chu Văn An "
	updated, err := accounts.UpdateProfile(ctx, user.ID, dto.ProfileRequest{School: &school})
	require.NoError(t, err)
	assert.Equal(t, "THPT Chu Văn An", updated.School)
	assert.Equal(t, user.FullName, updated.FullName)

	_, err = accounts.UpdateProfile(ctx, 404, dto.ProfileRequest{School: &school})
	assert.Equal(t, apperr.ErrNotFound, apperr.KindOf(err))
}

func TestAccounts_AdminChanges(t *testing.T) {
	accounts, _, _ := newAccounts(t)
	ctx := context.Background()

	admin, err := accounts.Register(ctx, validRegistration())
	require.NoError(t, err)
	other := validRegistration()
	other.Email = "minh@example.com"
	student, err := accounts.Register(ctx, other)
	require.NoError(t, err)

	err = accounts.SetStatus(ctx, admin, admin.ID, dto.UpdateStatusRequest{Status: models.StatusBanned})
	assert.Equal(t, apperr.ErrValidation, apperr.KindOf(err))

	err = accounts.SetStatus(ctx, admin, student.ID, dto.UpdateStatusRequest{Status: "frozen"})
	assert.Equal(t, apperr.ErrValidation, apperr.KindOf(err))

	require.NoError(t, accounts.SetStatus(ctx, admin, student.ID, dto.UpdateStatusRequest{Status: models.StatusBanned}))
	require.NoError(t, accounts.SetRole(ctx, admin, student.ID, dto.UpdateRoleRequest{Role: models.RoleAdmin}))

	got, err := accounts.Profile(ctx, student.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusBanned, got.Status)
	assert.Equal(t, models.RoleAdmin, got.Role)

	err = accounts.SetRole(ctx, admin, 999, dto.UpdateRoleRequest{Role: models.RoleAdmin})
	assert.Equal(t, apperr.ErrNotFound, apperr.KindOf(err))

	users, err := accounts.ListUsers(ctx, 10, 0)
	require.NoError(t, err)
	assert.Len(t, users, 2)
}
