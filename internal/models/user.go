package models

import (
	"strings"
	"time"

	"github.com/Ouakat/SaaS-Delivery-sub001/internal/services/access"
)

type User struct {
	ID               uint                    `gorm:"primaryKey" json:"id"`
	ClerkID          string                  `gorm:"uniqueIndex;size:64" json:"clerk_id"`
	Name             string                  `gorm:"size:255" json:"name"`
	Email            string                  `gorm:"uniqueIndex;not null;size:255" json:"email"`
	Phone            string                  `gorm:"size:32" json:"phone,omitempty"`
	UserType         access.UserType         `gorm:"size:20;not null;index" json:"user_type"`
	AccountStatus    access.AccountStatus    `gorm:"size:20;not null;default:'PENDING';index" json:"account_status"`
	ValidationStatus access.ValidationStatus `gorm:"size:20;not null;default:'PENDING'" json:"validation_status"`
	CityID           *uint                   `gorm:"index" json:"city_id,omitempty"`
	StoreName        string                  `gorm:"size:255" json:"store_name,omitempty"`
	Address          string                  `gorm:"type:text" json:"address,omitempty"`
	Roles            string                  `gorm:"type:text" json:"-"`
	Permissions      string                  `gorm:"type:text" json:"-"`
	ValidationNote   string                  `gorm:"type:text" json:"validation_note,omitempty"`
	StripeCustomerID string                  `gorm:"index;size:64" json:"-"`
	LastLoginAt      *time.Time              `json:"last_login_at,omitempty"`
	CreatedAt        time.Time               `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time               `gorm:"autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) RoleList() []string {
	return splitCSV(u.Roles)
}

func (u *User) PermissionList() []string {
	return splitCSV(u.Permissions)
}

// AccessLevel derives the coarse capability tier from the account lifecycle.
// INACTIVE accounts may only touch their own profile; a complete but not yet
// validated account gets the limited tier; only validated active accounts
// reach FULL.
func (u *User) AccessLevel() access.AccessLevel {
	switch u.AccountStatus {
	case access.AccountStatusInactive:
		return access.AccessLevelProfileOnly
	case access.AccountStatusPendingValidation:
		return access.AccessLevelLimited
	case access.AccountStatusActive:
		if u.ValidationStatus == access.ValidationStatusValidated {
			return access.AccessLevelFull
		}
		return access.AccessLevelLimited
	default:
		return access.AccessLevelNoAccess
	}
}

// Snapshot projects the user record into the read-only form the policy
// evaluator consumes.
func (u *User) Snapshot() access.SessionSnapshot {
	return access.SessionSnapshot{
		Authenticated:    true,
		UserID:           u.ClerkID,
		UserType:         u.UserType,
		AccountStatus:    u.AccountStatus,
		ValidationStatus: u.ValidationStatus,
		AccessLevel:      u.AccessLevel(),
		Permissions:      u.PermissionList(),
		Roles:            u.RoleList(),
	}
}

func splitCSV(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func JoinCSV(values []string) string {
	return strings.Join(values, ",")
}

type UserCreateRequest struct {
	ClerkID  string          `json:"clerk_id"`
	Name     string          `json:"name" validate:"required,min=1,max=255"`
	Email    string          `json:"email" validate:"required,email"`
	Phone    string          `json:"phone,omitempty"`
	UserType access.UserType `json:"user_type" validate:"required"`
	CityID   *uint           `json:"city_id,omitempty"`
}

type UserUpdateRequest struct {
	Name      string `json:"name,omitempty"`
	Phone     string `json:"phone,omitempty"`
	CityID    *uint  `json:"city_id,omitempty"`
	StoreName string `json:"store_name,omitempty"`
	Address   string `json:"address,omitempty"`
}

type CompleteProfileRequest struct {
	Phone     string `json:"phone" validate:"required"`
	CityID    uint   `json:"city_id" validate:"required"`
	StoreName string `json:"store_name,omitempty"`
	Address   string `json:"address" validate:"required"`
}

type AccountStatusChangeRequest struct {
	Status access.AccountStatus `json:"status" validate:"required"`
	Note   string               `json:"note,omitempty"`
}

type ValidationReviewRequest struct {
	Approve bool   `json:"approve"`
	Note    string `json:"note,omitempty"`
}

type GrantsUpdateRequest struct {
	Roles       []string `json:"roles,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
}

type UserResponse struct {
	ID               uint                    `json:"id"`
	ClerkID          string                  `json:"clerk_id"`
	Name             string                  `json:"name"`
	Email            string                  `json:"email"`
	Phone            string                  `json:"phone,omitempty"`
	UserType         access.UserType         `json:"user_type"`
	AccountStatus    access.AccountStatus    `json:"account_status"`
	ValidationStatus access.ValidationStatus `json:"validation_status"`
	AccessLevel      string                  `json:"access_level"`
	CityID           *uint                   `json:"city_id,omitempty"`
	StoreName        string                  `json:"store_name,omitempty"`
	Roles            []string                `json:"roles"`
	Permissions      []string                `json:"permissions"`
	CreatedAt        time.Time               `json:"created_at"`
}

func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:               u.ID,
		ClerkID:          u.ClerkID,
		Name:             u.Name,
		Email:            u.Email,
		Phone:            u.Phone,
		UserType:         u.UserType,
		AccountStatus:    u.AccountStatus,
		ValidationStatus: u.ValidationStatus,
		AccessLevel:      u.AccessLevel().String(),
		CityID:           u.CityID,
		StoreName:        u.StoreName,
		Roles:            u.RoleList(),
		Permissions:      u.PermissionList(),
		CreatedAt:        u.CreatedAt,
	}
}
