package actions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"pm-dashboard/internal/access"
	"pm-dashboard/internal/apperror"
	"pm-dashboard/internal/models"
)

const minPasswordLen = 6

// Admin: действия над пользователями, заявками и настройками.
// Каждое действие само перепроверяет, что вызывающий является админом.
type Admin struct {
	db     *gorm.DB
	logger *zap.Logger
	now    func() time.Time
}

func NewAdmin(db *gorm.DB, logger *zap.Logger) *Admin {
	return &Admin{db: db, logger: logger, now: time.Now}
}

// requireAdmin: свой профиль читаем из БД; любая ошибка здесь = без мутации
func (a *Admin) requireAdmin(ctx context.Context, auth access.AuthContext) (*models.Profile, error) {
	if !auth.Authenticated() {
		return nil, apperror.Unauthenticated()
	}
	var own models.Profile
	if err := a.db.WithContext(ctx).First(&own, "id = ?", auth.UserID()).Error; err != nil {
		a.logger.Warn("admin check: own profile lookup failed", zap.String("user_id", auth.UserID()), zap.Error(err))
		return nil, apperror.Denied("unable to verify permissions")
	}
	if !own.IsAdmin() {
		return nil, apperror.Denied("admin role required")
	}
	return &own, nil
}

func (a *Admin) ListProfiles(ctx context.Context, auth access.AuthContext) ([]models.Profile, error) {
	if _, err := a.requireAdmin(ctx, auth); err != nil {
		return nil, err
	}
	var profiles []models.Profile
	if err := a.db.WithContext(ctx).Order("created_at desc").Find(&profiles).Error; err != nil {
		return nil, apperror.Store(err)
	}
	return profiles, nil
}

func (a *Admin) ListRequests(ctx context.Context, auth access.AuthContext, status models.RequestStatus) ([]models.AccessRequest, error) {
	if _, err := a.requireAdmin(ctx, auth); err != nil {
		return nil, err
	}
	q := a.db.WithContext(ctx).Order("created_at desc")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var reqs []models.AccessRequest
	if err := q.Find(&reqs).Error; err != nil {
		return nil, apperror.Store(err)
	}
	return reqs, nil
}

func (a *Admin) ApproveUser(ctx context.Context, auth access.AuthContext, profileID string) (res Result) {
	defer guard(a.logger, "approve_user", &res)

	if _, err := a.requireAdmin(ctx, auth); err != nil {
		return fail(err)
	}
	if err := a.updateProfile(ctx, profileID, map[string]any{"is_approved": true}); err != nil {
		return fail(err)
	}

	a.logAction(ctx, auth.UserID(), profileID, "approve_user", nil)
	return ok(profileID)
}

func (a *Admin) SetRole(ctx context.Context, auth access.AuthContext, profileID, role string) (res Result) {
	defer guard(a.logger, "set_role", &res)

	if _, err := a.requireAdmin(ctx, auth); err != nil {
		return fail(err)
	}
	r := models.UserRole(strings.TrimSpace(role))
	if !r.Valid() {
		return fail(apperror.Invalid(fmt.Sprintf("unknown role %q", role)))
	}
	if profileID == auth.UserID() && r != models.RoleAdmin {
		return fail(apperror.Invalid("cannot remove your own admin role"))
	}
	if err := a.updateProfile(ctx, profileID, map[string]any{"role": string(r)}); err != nil {
		return fail(err)
	}

	a.logAction(ctx, auth.UserID(), profileID, "set_role", map[string]any{"role": r})
	return ok(profileID)
}

func (a *Admin) updateProfile(ctx context.Context, id string, fields map[string]any) error {
	res := a.db.WithContext(ctx).Model(&models.Profile{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return apperror.Store(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperror.New(apperror.NotFound, "profile not found")
	}
	return nil
}

// ApproveAccessRequest: pending -> processed. Уже обработанную заявку
// не трогаем и возвращаем ошибку.
func (a *Admin) ApproveAccessRequest(ctx context.Context, auth access.AuthContext, requestID string) (res Result) {
	defer guard(a.logger, "approve_request", &res)

	if _, err := a.requireAdmin(ctx, auth); err != nil {
		return fail(err)
	}
	if err := a.markProcessed(ctx, requestID); err != nil {
		return fail(err)
	}

	a.logAction(ctx, auth.UserID(), requestID, "approve_request", nil)
	return ok(requestID)
}

func (a *Admin) markProcessed(ctx context.Context, requestID string) error {
	db := a.db.WithContext(ctx)
	res := db.Model(&models.AccessRequest{}).
		Where("id = ? AND status = ?", requestID, models.RequestPending).
		Updates(map[string]any{
			"status":       models.RequestProcessed,
			"processed_at": a.now(),
		})
	if res.Error != nil {
		return apperror.Store(res.Error)
	}
	if res.RowsAffected == 1 {
		return nil
	}

	var req models.AccessRequest
	if err := db.First(&req, "id = ?", requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.New(apperror.NotFound, "access request not found")
		}
		return apperror.Store(err)
	}
	return apperror.New(apperror.AlreadyProcessed, "access request already processed")
}

// CreateAccountFromRequest: создаём подтверждённую учётку, потом закрываем
// заявку. Если второй шаг упал, учётка остаётся, а в результате ошибка.
func (a *Admin) CreateAccountFromRequest(ctx context.Context, auth access.AuthContext, requestID, email, password string) (res Result) {
	defer guard(a.logger, "create_account", &res)

	if _, err := a.requireAdmin(ctx, auth); err != nil {
		return fail(err)
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return fail(apperror.Invalid("a valid email is required"))
	}
	if len(password) < minPasswordLen {
		return fail(apperror.Invalid(fmt.Sprintf("password must be at least %d characters", minPasswordLen)))
	}

	var req models.AccessRequest
	if err := a.db.WithContext(ctx).First(&req, "id = ?", requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fail(apperror.New(apperror.NotFound, "access request not found"))
		}
		return fail(apperror.Store(err))
	}
	if req.Status == models.RequestProcessed {
		return fail(apperror.New(apperror.AlreadyProcessed, "access request already processed"))
	}

	identity, err := createIdentity(ctx, a.db, email, password, "", true, true)
	if err != nil {
		return fail(err)
	}
	a.logAction(ctx, auth.UserID(), identity.ID, "create_account", map[string]any{"email": email, "request_id": requestID})

	if err := a.markProcessed(ctx, requestID); err != nil {
		a.logger.Error("account created but request not marked processed",
			zap.String("request_id", requestID),
			zap.String("identity_id", identity.ID),
			zap.Error(err),
		)
		res := fail(fmt.Errorf("account created, but request status update failed: %w", err))
		res.ID = identity.ID
		return res
	}
	return ok(identity.ID)
}

// UpdateAppSetting: сохраняем настройку, старое/новое значение в журнал
func (a *Admin) UpdateAppSetting(ctx context.Context, auth access.AuthContext, key, value string) (res Result) {
	defer guard(a.logger, "update_setting", &res)

	if _, err := a.requireAdmin(ctx, auth); err != nil {
		return fail(err)
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return fail(apperror.Invalid("setting key is required"))
	}

	err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var old *string
		var cur models.AppSetting
		err := tx.Where(&models.AppSetting{Key: key}).First(&cur).Error
		switch {
		case err == nil:
			old = &cur.Value
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		if err := tx.Save(&models.AppSetting{Key: key, Value: value}).Error; err != nil {
			return err
		}
		return tx.Create(&models.AppSettingsLog{
			ChangedBy:  auth.UserID(),
			SettingKey: key,
			OldValue:   old,
			NewValue:   &value,
		}).Error
	})
	if err != nil {
		return fail(apperror.Store(err))
	}
	return ok(key)
}

// logAction: журнал действий администратора; ошибки только логируем.
func (a *Admin) logAction(ctx context.Context, performer, target, action string, details map[string]any) {
	entry := models.UserActionLog{
		PerformedBy: performer,
		TargetID:    target,
		Action:      action,
	}
	if details != nil {
		if raw, err := json.Marshal(details); err == nil {
			entry.Details = raw
		}
	}
	if err := a.db.WithContext(ctx).Create(&entry).Error; err != nil {
		a.logger.Warn("user action log write failed", zap.String("action", action), zap.Error(err))
	}
}
