package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/bookshelf-labs/bookshelf-api/internal/domain"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
)

type UserRepository interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// FindByEmail matches email exactly. The password hash is only loaded when withPassword is set.
	FindByEmail(ctx context.Context, email string, withPassword bool) (*domain.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, user *domain.User) error
}

type GormUserRepository struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) UserRepository { return &GormUserRepository{db: db} }

func (r *GormUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).Omit("password_hash").Where("id = ?", id).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = ErrUserNotFound
	}
	recordOutcome(ctx, "user", "find_by_id", err)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *GormUserRepository) FindByEmail(ctx context.Context, email string, withPassword bool) (*domain.User, error) {
	var u domain.User
	q := r.db.WithContext(ctx)
	if !withPassword {
		q = q.Omit("password_hash")
	}
	err := q.Where("email = ?", email).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = ErrUserNotFound
	}
	recordOutcome(ctx, "user", "find_by_email", err)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *GormUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.User{}).Where("email = ?", email).Count(&count).Error
	recordOutcome(ctx, "user", "exists_by_email", err)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormUserRepository) Create(ctx context.Context, user *domain.User) error {
	err := r.db.WithContext(ctx).Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		err = ErrUserAlreadyExists
	}
	recordOutcome(ctx, "user", "create", err)
	return err
}
