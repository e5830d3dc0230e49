// Package service holds the business rules behind the HTTP API: account
// lifecycle, token-backed authentication, the purchase ledger, and the
// preview gate.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/hongminglow/elearn-be/internal/apperr"
	"github.com/hongminglow/elearn-be/internal/auth"
	"github.com/hongminglow/elearn-be/internal/logging"
	"github.com/hongminglow/elearn-be/internal/models"
	"github.com/hongminglow/elearn-be/internal/models/dto"
	"github.com/hongminglow/elearn-be/internal/storage"
)

const (
	msgEmailTaken       = "Email đã được sử dụng"
	msgBadCredentials   = "Email hoặc mật khẩu không đúng"
	msgAccountLocked    = "Tài khoản đã bị khóa hoặc chưa được kích hoạt"
	msgLoginRequired    = "Vui lòng đăng nhập"
	msgWrongPassword    = "Mật khẩu hiện tại không đúng"
	msgSamePassword     = "Mật khẩu mới phải khác mật khẩu hiện tại"
	msgUserNotFound     = "Không tìm thấy người dùng"
	msgSelfModification = "Không thể thay đổi quyền hoặc trạng thái của chính bạn"
)

// Session is the result of a successful login.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      models.User
}

// Accounts implements registration, login, token resolution, and
// self-service and admin profile changes.
type Accounts struct {
	users  storage.UserStore
	tokens *auth.TokenManager
	hasher *auth.PasswordHasher
	logger logging.Logger
}

func NewAccounts(users storage.UserStore, tokens *auth.TokenManager, hasher *auth.PasswordHasher, logger logging.Logger) *Accounts {
	return &Accounts{
		users:  users,
		tokens: tokens,
		hasher: hasher,
		logger: logger.With("module", "accounts"),
	}
}

// Register creates an active user with the default role.
func (a *Accounts) Register(ctx context.Context, req dto.RegisterRequest) (models.User, error) {
	return a.register(ctx, req, models.RoleUser)
}

// RegisterAdmin creates an active administrator. The role is part of the
// insert, so a failure never leaves a half-provisioned account behind.
func (a *Accounts) RegisterAdmin(ctx context.Context, req dto.RegisterRequest) (models.User, error) {
	return a.register(ctx, req, models.RoleAdmin)
}

func (a *Accounts) register(ctx context.Context, req dto.RegisterRequest, role models.Role) (models.User, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return models.User{}, invalid(err)
	}

	hash, err := a.hasher.Hash(req.Password)
	if err != nil {
		return models.User{}, apperr.Internal(err)
	}

	created, err := a.users.CreateUser(ctx, models.User{
		Email:        req.Email,
		PasswordHash: hash,
		FullName:     req.FullName,
		PhoneNumber:  req.PhoneNumber,
		School:       req.School,
		Role:         role,
		Status:       models.StatusActive,
	})
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return models.User{}, apperr.Conflict(msgEmailTaken)
		}
		return models.User{}, apperr.Internal(err)
	}

	a.logger.Info(ctx, "user registered", "user_id", created.ID, "role", created.Role)
	return created, nil
}

// Login checks credentials and issues a token. Unknown email, wrong password,
// and an inactive account all fail as unauthenticated.
func (a *Accounts) Login(ctx context.Context, req dto.LoginRequest) (Session, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return Session{}, invalid(err)
	}

	user, err := a.users.FindUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			a.hasher.Burn(req.Password)
			a.logger.Info(ctx, "login failed", "reason", "unknown email")
			return Session{}, apperr.Unauthenticated(msgBadCredentials)
		}
		return Session{}, apperr.Internal(err)
	}

	if !a.hasher.Matches(user.PasswordHash, req.Password) {
		a.logger.Info(ctx, "login failed", "reason", "wrong password", "user_id", user.ID)
		return Session{}, apperr.Unauthenticated(msgBadCredentials)
	}
	if !user.Active() {
		a.logger.Info(ctx, "login failed", "reason", "inactive account", "user_id", user.ID, "status", user.Status)
		return Session{}, apperr.Unauthenticated(msgAccountLocked)
	}

	token, exp, err := a.tokens.Issue(user)
	if err != nil {
		return Session{}, apperr.Internal(err)
	}

	a.logger.Info(ctx, "user logged in", "user_id", user.ID)
	return Session{Token: token, ExpiresAt: exp, User: user}, nil
}

// Authenticate resolves a bearer token to the live user record. Every failure
// mode returns the same client-facing error; the precise reason is only logged.
func (a *Accounts) Authenticate(ctx context.Context, token string) (models.User, error) {
	if token == "" {
		return models.User{}, apperr.Unauthenticated(msgLoginRequired)
	}

	id, err := a.tokens.Verify(token)
	if err != nil {
		reason := "invalid token"
		if errors.Is(err, auth.ErrTokenExpired) {
			reason = "expired token"
		}
		a.logger.Info(ctx, "authentication failed", "reason", reason, "error", err)
		return models.User{}, apperr.Unauthenticated(msgLoginRequired)
	}

	user, err := a.users.FindUserByID(ctx, id.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			a.logger.Warn(ctx, "authentication failed", "reason", "user not found", "user_id", id.UserID)
			return models.User{}, apperr.Unauthenticated(msgLoginRequired)
		}
		return models.User{}, apperr.Internal(err)
	}
	if !user.Active() {
		a.logger.Info(ctx, "authentication failed", "reason", "inactive account", "user_id", user.ID, "status", user.Status)
		return models.User{}, apperr.Unauthenticated(msgLoginRequired)
	}
	return user, nil
}

func (a *Accounts) Profile(ctx context.Context, userID int64) (models.User, error) {
	user, err := a.users.FindUserByID(ctx, userID)
	if err != nil {
		return models.User{}, storageErr(err, msgUserNotFound)
	}
	return user, nil
}

func (a *Accounts) UpdateProfile(ctx context.Context, userID int64, req dto.ProfileRequest) (models.User, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return models.User{}, invalid(err)
	}
	user, err := a.users.UpdateProfile(ctx, userID, req.Update())
	if err != nil {
		return models.User{}, storageErr(err, msgUserNotFound)
	}
	return user, nil
}

// ChangePassword replaces the password only when the current one matches.
func (a *Accounts) ChangePassword(ctx context.Context, userID int64, req dto.ChangePasswordRequest) error {
	if err := req.Validate(); err != nil {
		return invalid(err)
	}

	user, err := a.users.FindUserByID(ctx, userID)
	if err != nil {
		return storageErr(err, msgUserNotFound)
	}
	if !a.hasher.Matches(user.PasswordHash, req.CurrentPassword) {
		a.logger.Info(ctx, "password change rejected", "user_id", userID)
		return apperr.Unauthenticated(msgWrongPassword)
	}
	if req.CurrentPassword == req.NewPassword {
		return apperr.Validation(msgSamePassword)
	}

	hash, err := a.hasher.Hash(req.NewPassword)
	if err != nil {
		return apperr.Internal(err)
	}
	if err := a.users.UpdatePassword(ctx, userID, hash); err != nil {
		return storageErr(err, msgUserNotFound)
	}

	a.logger.Info(ctx, "password changed", "user_id", userID)
	return nil
}

func (a *Accounts) ListUsers(ctx context.Context, limit, offset int) ([]models.User, error) {
	users, err := a.users.ListUsers(ctx, limit, offset)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return users, nil
}

// SetStatus activates or bans a user. Admins cannot change their own status.
func (a *Accounts) SetStatus(ctx context.Context, actor models.User, userID int64, req dto.UpdateStatusRequest) error {
	if err := req.Validate(); err != nil {
		return invalid(err)
	}
	if actor.ID == userID {
		return apperr.Validation(msgSelfModification)
	}
	if err := a.users.UpdateStatus(ctx, userID, req.Status); err != nil {
		return storageErr(err, msgUserNotFound)
	}
	a.logger.Info(ctx, "user status changed", "user_id", userID, "status", req.Status, "by", actor.ID)
	return nil
}

// SetRole changes a user's role. Admins cannot change their own role.
func (a *Accounts) SetRole(ctx context.Context, actor models.User, userID int64, req dto.UpdateRoleRequest) error {
	if err := req.Validate(); err != nil {
		return invalid(err)
	}
	if actor.ID == userID {
		return apperr.Validation(msgSelfModification)
	}
	if err := a.users.UpdateRole(ctx, userID, req.Role); err != nil {
		return storageErr(err, msgUserNotFound)
	}
	a.logger.Info(ctx, "user role changed", "user_id", userID, "role", req.Role, "by", actor.ID)
	return nil
}

// storageErr maps store errors onto the application taxonomy.
func storageErr(err error, notFoundMsg string) error {
	if errors.Is(err, storage.ErrNotFound) {
		return apperr.NotFound(notFoundMsg)
	}
	return apperr.Internal(err)
}
