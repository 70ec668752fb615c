package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"studiocrm-backend/models"
	"studiocrm-backend/notifications"
	"studiocrm-backend/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type RegisterInput struct {
	Name           string `json:"name" binding:"required"`
	Email          string `json:"email" binding:"required,email"`
	Mobile         string `json:"mobile" binding:"required"`
	Password       string `json:"password" binding:"required,min=8"`
	Address        string `json:"address"`
	StudioName     string `json:"studioName" binding:"required"`
	StudioLocation string `json:"studioLocation"`
}

type LoginInput struct {
	Identifier string `json:"identifier" binding:"required"` // Can be email or mobile
	Password   string `json:"password" binding:"required"`
}

type ProfileUpdate struct {
	Name              *string `json:"name"`
	Mobile            *string `json:"mobile"`
	Address           *string `json:"address"`
	StudioName        *string `json:"studioName"`
	StudioLocation    *string `json:"studioLocation"`
	GSTNumber         *string `json:"gstNumber"`
	InvoiceFooterNote *string `json:"invoiceFooterNote"`
}

type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type AccountService struct {
	db       *gorm.DB
	audit    *AuditService
	notifier Notifier
	log      *zap.Logger
}

func NewAccountService(db *gorm.DB, audit *AuditService, notifier Notifier, log *zap.Logger) *AccountService {
	return &AccountService{db: db, audit: audit, notifier: notifier, log: log}
}

func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	if !utils.ValidatePhone(in.Mobile) {
		return nil, ErrInvalidPhone
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	mobile := utils.NormalizePhone(in.Mobile)

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("email = ? OR mobile = ?", email, mobile).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrDuplicateUser
	}

	user := models.User{
		Name:           strings.TrimSpace(in.Name),
		Email:          email,
		Mobile:         mobile,
		Password:       in.Password, // Will be hashed in BeforeCreate hook
		Address:        in.Address,
		StudioName:     strings.TrimSpace(in.StudioName),
		StudioLocation: in.StudioLocation,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateUser
		}
		return nil, err
	}

	token, err := utils.GenerateToken(user.ID, user.Email, user.IsAdmin)
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, user.ID, AuditActionCreate, "user", user.ID.String(), "Account registered", nil)
	s.notify(user.Email, "Welcome to StudioCRM",
		fmt.Sprintf("Hi %s,\n\nYour studio %s is ready. You can now add customers, services and orders.", user.Name, user.StudioName))

	return &AuthResult{Token: token, User: &user}, nil
}

func (s *AccountService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	identifier := strings.TrimSpace(in.Identifier)

	var user models.User
	err := s.db.WithContext(ctx).
		Where("email = ? OR mobile = ?", strings.ToLower(identifier), utils.NormalizePhone(identifier)).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !utils.CheckPasswordHash(in.Password, user.Password) {
		return nil, ErrInvalidCredentials
	}

	token, err := utils.GenerateToken(user.ID, user.Email, user.IsAdmin)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.db.WithContext(ctx).Model(&user).Update("last_login", now).Error; err != nil {
		s.log.Warn("failed to record last login", zap.String("userId", user.ID.String()), zap.Error(err))
	}
	user.LastLogin = &now

	s.audit.Record(ctx, user.ID, AuditActionLogin, "user", user.ID.String(), "Signed in", nil)
	s.notify(user.Email, "New sign-in to your account",
		fmt.Sprintf("Hi %s,\n\nYour account was signed in at %s.", user.Name, now.Format(time.RFC1123)))

	return &AuthResult{Token: token, User: &user}, nil
}

func (s *AccountService) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *AccountService) UpdateProfile(ctx context.Context, id uuid.UUID, in ProfileUpdate) (*models.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Name != nil {
		updates["name"] = strings.TrimSpace(*in.Name)
	}
	if in.Mobile != nil {
		if !utils.ValidatePhone(*in.Mobile) {
			return nil, ErrInvalidPhone
		}
		mobile := utils.NormalizePhone(*in.Mobile)
		if mobile != user.Mobile {
			var count int64
			if err := s.db.WithContext(ctx).Model(&models.User{}).
				Where("mobile = ? AND id <> ?", mobile, id).Count(&count).Error; err != nil {
				return nil, err
			}
			if count > 0 {
				return nil, ErrDuplicateUser
			}
		}
		updates["mobile"] = mobile
	}
	if in.Address != nil {
		updates["address"] = *in.Address
	}
	if in.StudioName != nil {
		updates["studio_name"] = strings.TrimSpace(*in.StudioName)
	}
	if in.StudioLocation != nil {
		updates["studio_location"] = *in.StudioLocation
	}
	if in.GSTNumber != nil {
		updates["gst_number"] = strings.ToUpper(strings.TrimSpace(*in.GSTNumber))
	}
	if in.InvoiceFooterNote != nil {
		updates["invoice_footer_note"] = *in.InvoiceFooterNote
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
			return nil, err
		}
		s.audit.Record(ctx, id, AuditActionUpdate, "user", id.String(), "Profile updated", updates)
	}
	return s.Get(ctx, id)
}

func (s *AccountService) List(ctx context.Context, p utils.Pagination) ([]models.User, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var users []models.User
	err := s.db.WithContext(ctx).Order("created_at DESC").Offset(p.Offset()).Limit(p.Limit).Find(&users).Error
	return users, total, err
}

// Delete removes the account together with everything scoped to it.
func (s *AccountService) Delete(ctx context.Context, actorID, id uuid.UUID) error {
	if actorID == id {
		return ErrCannotDeleteSelf
	}
	user, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orderIDs := tx.Model(&models.Order{}).Select("id").Where("user_id = ?", id)
		if err := tx.Where("order_id IN (?)", orderIDs).Delete(&models.OrderLineItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("order_id IN (?)", orderIDs).Delete(&models.OrderHistory{}).Error; err != nil {
			return err
		}
		for _, m := range []interface{}{&models.Order{}, &models.Service{}, &models.Customer{}, &models.NotificationLog{}} {
			if err := tx.Where("user_id = ?", id).Delete(m).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.User{}, "id = ?", id).Error
	})
	if err != nil {
		return err
	}

	s.audit.Record(ctx, actorID, AuditActionDelete, "user", id.String(), "Account "+user.Email+" deleted", nil)
	s.notify(user.Email, "Your account has been removed",
		fmt.Sprintf("Hi %s,\n\nYour StudioCRM account and its data have been deleted by an administrator.", user.Name))
	return nil
}

func (s *AccountService) notify(to, subject, body string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(notifications.Message{
		Channel: notifications.ChannelEmail,
		To:      to,
		Subject: subject,
		Body:    body,
	})
}
