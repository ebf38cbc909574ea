package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/TicketsPartners/service-tickets/internal/database"
	userDomain "github.com/TicketsPartners/service-tickets/internal/domain/user"
)

// UserModel is the GORM model for the users table.
type UserModel struct {
	UserID     string     `gorm:"type:varchar(64);primaryKey"`
	Username   string     `gorm:"type:varchar(255);not null"`
	ChatID     int64      `gorm:"not null;default:0"`
	Subscribed bool       `gorm:"not null;default:false;index"`
	Verified   bool       `gorm:"not null;default:false"`
	VerifiedAt *time.Time `gorm:"type:timestamptz"`
	CreatedAt  time.Time  `gorm:"type:timestamptz;not null"`
	UpdatedAt  time.Time  `gorm:"type:timestamptz;not null"`
}

// TableName sets the table name.
func (UserModel) TableName() string { return "users" }

// GormUserRepository implements user.Repository using GORM.
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository.
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// FindByUserID returns a user by Telegram user id.
func (r *GormUserRepository) FindByUserID(ctx context.Context, userID string) (*userDomain.User, error) {
	var model UserModel
	if err := database.Conn(ctx, r.db).Where("user_id = ?", userID).First(&model).Error; err != nil {
		return nil, translate(err, "User", userID)
	}
	return toUserDomain(&model), nil
}

// ListSubscribed returns every user opted into announcements.
func (r *GormUserRepository) ListSubscribed(ctx context.Context) ([]*userDomain.User, error) {
	var models []UserModel
	if err := database.Conn(ctx, r.db).Where("subscribed = ?", true).Find(&models).Error; err != nil {
		return nil, err
	}
	users := make([]*userDomain.User, len(models))
	for i := range models {
		users[i] = toUserDomain(&models[i])
	}
	return users, nil
}

// Save upserts the user on user_id.
func (r *GormUserRepository) Save(ctx context.Context, u *userDomain.User) error {
	model := toUserModel(u)
	// Booleans are listed explicitly so false overwrites.
	return database.Conn(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"username", "chat_id", "subscribed", "verified", "verified_at", "updated_at"}),
	}).Create(&model).Error
}

func toUserModel(u *userDomain.User) UserModel {
	return UserModel{
		UserID: u.UserID(), Username: u.Username(), ChatID: u.ChatID(),
		Subscribed: u.Subscribed(), Verified: u.Verified(), VerifiedAt: u.VerifiedAt(),
		CreatedAt: u.CreatedAt(), UpdatedAt: u.UpdatedAt(),
	}
}

func toUserDomain(m *UserModel) *userDomain.User {
	return userDomain.Reconstruct(
		m.UserID, m.Username, m.ChatID,
		m.Subscribed, m.Verified, m.VerifiedAt,
		m.CreatedAt, m.UpdatedAt,
	)
}
