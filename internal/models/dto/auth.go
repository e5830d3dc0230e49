package dto

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/nyaruka/phonenumbers"

	"github.com/hongminglow/elearn-be/internal/models"
)

const (
	minPasswordLength = 6
	maxPasswordLength = 72 // bcrypt ignores anything longer
)

type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	FullName    string `json:"full_name"`
	PhoneNumber string `json:"phone_number"`
	School      string `json:"school,omitempty"`
}

// Normalize trims surrounding whitespace from every field except the password.
// Email case is kept as entered.
func (r *RegisterRequest) Normalize() {
	r.Email = normalizeEmail(r.Email)
	r.FullName = strings.TrimSpace(r.FullName)
	r.PhoneNumber = strings.TrimSpace(r.PhoneNumber)
	r.School = strings.TrimSpace(r.School)
}

func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email,
			validation.Required.Error("Vui lòng nhập email"),
			validation.Length(3, 255).Error("Email quá dài"),
			is.Email.Error("Email không hợp lệ"),
		),
		validation.Field(&r.Password, passwordRules("Vui lòng nhập mật khẩu")...),
		validation.Field(&r.FullName,
			validation.Required.Error("Vui lòng nhập họ tên"),
			validation.Length(1, 200).Error("Họ tên quá dài"),
		),
		validation.Field(&r.PhoneNumber,
			validation.Required.Error("Vui lòng nhập số điện thoại"),
			validation.By(vietnamesePhone),
		),
		validation.Field(&r.School, validation.Length(0, 255).Error("Tên trường quá dài")),
	)
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Normalize() {
	r.Email = normalizeEmail(r.Email)
}

func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required.Error("Vui lòng nhập email")),
		validation.Field(&r.Password, validation.Required.Error("Vui lòng nhập mật khẩu")),
	)
}

type LoginResponse struct {
	Token     string      `json:"token"`
	ExpiresAt int64       `json:"expires_at"`
	User      models.User `json:"user"`
}

type ProfileRequest struct {
	FullName    *string `json:"full_name,omitempty"`
	PhoneNumber *string `json:"phone_number,omitempty"`
	School      *string `json:"school,omitempty"`
}

func (r *ProfileRequest) Normalize() {
	for _, f := range []*string{r.FullName, r.PhoneNumber, r.School} {
		if f != nil {
			*f = strings.TrimSpace(*f)
		}
	}
}

func (r ProfileRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FullName,
			validation.By(notEmptyIfSet("Họ tên không được để trống")),
			validation.Length(1, 200).Error("Họ tên quá dài"),
		),
		validation.Field(&r.PhoneNumber,
			validation.By(notEmptyIfSet("Số điện thoại không được để trống")),
			validation.By(vietnamesePhone),
		),
		validation.Field(&r.School, validation.Length(0, 255).Error("Tên trường quá dài")),
	)
}

// Update converts the request into a store-level profile update.
func (r ProfileRequest) Update() models.ProfileUpdate {
	return models.ProfileUpdate{FullName: r.FullName, PhoneNumber: r.PhoneNumber, School: r.School}
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (r ChangePasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.CurrentPassword, validation.Required.Error("Vui lòng nhập mật khẩu hiện tại")),
		validation.Field(&r.NewPassword, passwordRules("Vui lòng nhập mật khẩu mới")...),
	)
}

func passwordRules(requiredMsg string) []validation.Rule {
	return []validation.Rule{
		validation.Required.Error(requiredMsg),
		validation.Length(minPasswordLength, maxPasswordLength).Error("Mật khẩu phải từ 6 đến 72 ký tự"),
	}
}

func notEmptyIfSet(msg string) validation.RuleFunc {
	return func(value interface{}) error {
		v, isNil := validation.Indirect(value)
		if isNil {
			return nil
		}
		if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
			return errors.New(msg)
		}
		return nil
	}
}

func vietnamesePhone(value interface{}) error {
	v, isNil := validation.Indirect(value)
	if isNil {
		return nil
	}
	s, _ := v.(string)
	if strings.TrimSpace(s) == "" {
		return nil
	}
	num, err := phonenumbers.Parse(s, "VN")
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return errors.New("Số điện thoại không hợp lệ")
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(email)
}
