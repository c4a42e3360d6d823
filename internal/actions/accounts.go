package actions

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"pm-dashboard/internal/apperror"
	"pm-dashboard/internal/models"
)

// Accounts: регистрация, заявки на доступ и проверка пароля.
type Accounts struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewAccounts(db *gorm.DB, logger *zap.Logger) *Accounts {
	return &Accounts{db: db, logger: logger}
}

// Signup: учётка с неодобренным профилем member. Войти можно, но до
// одобрения админом пользователь сидит на странице ожидания.
func (a *Accounts) Signup(ctx context.Context, email, password, fullName string) (res Result) {
	defer guard(a.logger, "signup", &res)

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return fail(apperror.Invalid("a valid email is required"))
	}
	if len(password) < minPasswordLen {
		return fail(apperror.Invalid(fmt.Sprintf("password must be at least %d characters", minPasswordLen)))
	}

	var count int64
	if err := a.db.WithContext(ctx).Model(&models.Identity{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return fail(apperror.Store(err))
	}
	if count > 0 {
		return fail(apperror.Invalid("user already exists"))
	}

	identity, err := createIdentity(ctx, a.db, email, password, fullName, false, false)
	if err != nil {
		return fail(err)
	}
	a.logger.Info("user signed up", zap.String("user_id", identity.ID))
	return ok(identity.ID)
}

// RequestAccess: заявка на доступ. Пока есть pending-заявка на этот email,
// возвращаем её же.
func (a *Accounts) RequestAccess(ctx context.Context, email string) (res Result) {
	defer guard(a.logger, "request_access", &res)

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return fail(apperror.Invalid("a valid email is required"))
	}

	db := a.db.WithContext(ctx)
	var existing models.AccessRequest
	err := db.Where("email = ? AND status = ?", email, models.RequestPending).First(&existing).Error
	if err == nil {
		return ok(existing.ID)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(apperror.Store(err))
	}

	req := models.AccessRequest{Email: email, Status: models.RequestPending}
	if err := db.Create(&req).Error; err != nil {
		return fail(apperror.Store(err))
	}
	return ok(req.ID)
}

func (a *Accounts) Authenticate(ctx context.Context, email, password string) (*models.Identity, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var identity models.Identity
	if err := a.db.WithContext(ctx).Where("email = ?", email).First(&identity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(apperror.AuthenticationMissing, "invalid email or password")
		}
		return nil, apperror.Store(err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(identity.PasswordHash), []byte(password)); err != nil {
		return nil, apperror.New(apperror.AuthenticationMissing, "invalid email or password")
	}
	return &identity, nil
}

// Profile: всегда свежий, между запросами не кэшировать
func (a *Accounts) Profile(ctx context.Context, id string) (*models.Profile, error) {
	var p models.Profile
	if err := a.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func createIdentity(ctx context.Context, db *gorm.DB, email, password, fullName string, confirmed, approved bool) (*models.Identity, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.Store(fmt.Errorf("hash password: %w", err))
	}

	identity := models.Identity{
		Email:          email,
		PasswordHash:   string(hash),
		EmailConfirmed: confirmed,
	}
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&identity).Error; err != nil {
			return err
		}
		profile := models.Profile{
			ID:         identity.ID,
			Email:      email,
			Role:       models.RoleMember,
			IsApproved: approved,
		}
		if name := strings.TrimSpace(fullName); name != "" {
			profile.FullName = &name
		}
		return tx.Create(&profile).Error
	})
	if err != nil {
		return nil, apperror.Store(err)
	}
	return &identity, nil
}
