package dto

import (
	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/hongminglow/elearn-be/internal/models"
)

type UpdateStatusRequest struct {
	Status models.Status `json:"status"`
}

func (r UpdateStatusRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Status,
			validation.Required.Error("Vui lòng chọn trạng thái"),
			validation.In(models.StatusActive, models.StatusInactive, models.StatusBanned).
				Error("Trạng thái không hợp lệ"),
		),
	)
}

type UpdateRoleRequest struct {
	Role models.Role `json:"role"`
}

func (r UpdateRoleRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Role,
			validation.Required.Error("Vui lòng chọn vai trò"),
			validation.In(models.RoleUser, models.RoleAdmin).Error("Vai trò không hợp lệ"),
		),
	)
}
