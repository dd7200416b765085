package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/Ouakat/SaaS-Delivery-sub001/internal/models"
	"github.com/Ouakat/SaaS-Delivery-sub001/internal/services/access"
	"github.com/Ouakat/SaaS-Delivery-sub001/internal/services/auth"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrDuplicateEmail    = errors.New("user with this email already exists")
	ErrInvalidStatus     = errors.New("invalid account status")
	ErrInvalidTransition = errors.New("account status transition not allowed")
	ErrNotReviewable     = errors.New("user is not awaiting validation")
)

// statusTransitions is the account lifecycle. Admins move accounts along
// these edges; everything else is rejected.
var statusTransitions = map[access.AccountStatus][]access.AccountStatus{
	access.AccountStatusPending:           {access.AccountStatusInactive, access.AccountStatusRejected},
	access.AccountStatusInactive:          {access.AccountStatusPendingValidation, access.AccountStatusSuspended},
	access.AccountStatusPendingValidation: {access.AccountStatusActive, access.AccountStatusRejected, access.AccountStatusSuspended},
	access.AccountStatusActive:            {access.AccountStatusSuspended},
	access.AccountStatusRejected:          {access.AccountStatusPending},
	access.AccountStatusSuspended:         {access.AccountStatusActive},
}

func CanTransition(from, to access.AccountStatus) bool {
	for _, allowed := range statusTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

type Service struct {
	db        *gorm.DB
	snapshots *auth.SnapshotService
}

func NewService(db *gorm.DB, snapshots *auth.SnapshotService) *Service {
	return &Service{db: db, snapshots: snapshots}
}

func (s *Service) CreateUser(ctx context.Context, req *models.UserCreateRequest) (*models.User, error) {
	user := &models.User{
		ClerkID:          req.ClerkID,
		Name:             req.Name,
		Email:            req.Email,
		Phone:            req.Phone,
		UserType:         req.UserType,
		AccountStatus:    access.AccountStatusPending,
		ValidationStatus: access.ValidationStatusPending,
		CityID:           req.CityID,
	}

	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

func (s *Service) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	return &user, nil
}

func (s *Service) GetUserByClerkID(ctx context.Context, clerkID string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("clerk_id = ?", clerkID).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	return &user, nil
}

func (s *Service) ListUsers(ctx context.Context, userType access.UserType, status access.AccountStatus) ([]models.User, error) {
	query := s.db.WithContext(ctx).Model(&models.User{})
	if userType != "" {
		query = query.Where("user_type = ?", userType)
	}
	if status != "" {
		query = query.Where("account_status = ?", status)
	}

	var users []models.User
	if err := query.Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (s *Service) UpdateUser(ctx context.Context, id uint, req *models.UserUpdateRequest) (*models.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]any)
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Phone != "" {
		updates["phone"] = req.Phone
	}
	if req.CityID != nil {
		updates["city_id"] = *req.CityID
	}
	if req.StoreName != "" {
		updates["store_name"] = req.StoreName
	}
	if req.Address != "" {
		updates["address"] = req.Address
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update user: %w", err)
		}
	}

	s.invalidateSnapshot(ctx, user)
	return user, nil
}

// CompleteProfile fills in the profile and moves an INACTIVE account to
// PENDING_VALIDATION, which unlocks the limited tier.
func (s *Service) CompleteProfile(ctx context.Context, id uint, req *models.CompleteProfileRequest) (*models.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{
		"phone":   req.Phone,
		"city_id": req.CityID,
		"address": req.Address,
	}
	if req.StoreName != "" {
		updates["store_name"] = req.StoreName
	}
	if user.AccountStatus == access.AccountStatusInactive {
		updates["account_status"] = access.AccountStatusPendingValidation
	}

	if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to complete profile: %w", err)
	}

	s.invalidateSnapshot(ctx, user)
	return s.GetUser(ctx, id)
}

// ChangeAccountStatus moves an account along the lifecycle. The transition
// table is authoritative; callers cannot jump states.
func (s *Service) ChangeAccountStatus(ctx context.Context, id uint, req *models.AccountStatusChangeRequest) (*models.User, error) {
	if !isKnownStatus(req.Status) {
		return nil, ErrInvalidStatus
	}

	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if !CanTransition(user.AccountStatus, req.Status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, user.AccountStatus, req.Status)
	}

	updates := map[string]any{"account_status": req.Status}
	if req.Note != "" {
		updates["validation_note"] = req.Note
	}
	if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to change account status: %w", err)
	}

	s.invalidateSnapshot(ctx, user)
	return s.GetUser(ctx, id)
}

// ReviewValidation resolves a pending profile review. Approval activates the
// account and marks it VALIDATED in one transaction.
func (s *Service) ReviewValidation(ctx context.Context, id uint, req *models.ValidationReviewRequest) (*models.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if user.AccountStatus != access.AccountStatusPendingValidation {
		return nil, ErrNotReviewable
	}

	updates := map[string]any{"validation_note": req.Note}
	if req.Approve {
		updates["validation_status"] = access.ValidationStatusValidated
		updates["account_status"] = access.AccountStatusActive
	} else {
		updates["validation_status"] = access.ValidationStatusRejected
		updates["account_status"] = access.AccountStatusRejected
	}

	if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to review validation: %w", err)
	}

	s.invalidateSnapshot(ctx, user)
	return s.GetUser(ctx, id)
}

func (s *Service) UpdateGrants(ctx context.Context, id uint, req *models.GrantsUpdateRequest) (*models.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]any)
	if req.Roles != nil {
		updates["roles"] = models.JoinCSV(req.Roles)
	}
	if req.Permissions != nil {
		updates["permissions"] = models.JoinCSV(req.Permissions)
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update grants: %w", err)
		}
	}

	s.invalidateSnapshot(ctx, user)
	return s.GetUser(ctx, id)
}

// SyncFromClerk upserts the local record for a Clerk user event. New users
// start INACTIVE: authenticated, profile not yet completed.
func (s *Service) SyncFromClerk(ctx context.Context, clerkID, email, name string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("clerk_id = ?", clerkID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user = models.User{
			ClerkID:          clerkID,
			Email:            email,
			Name:             name,
			UserType:         access.UserTypeSeller,
			AccountStatus:    access.AccountStatusInactive,
			ValidationStatus: access.ValidationStatusPending,
		}
		if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
			return nil, fmt.Errorf("failed to create synced user: %w", err)
		}
		return &user, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up synced user: %w", err)
	}

	updates := map[string]any{"email": email, "name": name}
	if err := s.db.WithContext(ctx).Model(&user).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update synced user: %w", err)
	}

	s.invalidateSnapshot(ctx, &user)
	return &user, nil
}

func (s *Service) DeleteByClerkID(ctx context.Context, clerkID string) error {
	result := s.db.WithContext(ctx).Where("clerk_id = ?", clerkID).Delete(&models.User{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete user: %w", result.Error)
	}
	if s.snapshots != nil {
		s.snapshots.Invalidate(ctx, clerkID)
	}
	return nil
}

func (s *Service) invalidateSnapshot(ctx context.Context, user *models.User) {
	if s.snapshots != nil && user.ClerkID != "" {
		s.snapshots.Invalidate(ctx, user.ClerkID)
	}
}

func isKnownStatus(status access.AccountStatus) bool {
	switch status {
	case access.AccountStatusPending, access.AccountStatusInactive,
		access.AccountStatusPendingValidation, access.AccountStatusActive,
		access.AccountStatusRejected, access.AccountStatusSuspended:
		return true
	}
	return false
}
