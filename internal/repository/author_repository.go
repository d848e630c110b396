package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/bookshelf-labs/bookshelf-api/internal/domain"
)

var (
	ErrAuthorNotFound = errors.New("author not found")
	ErrAuthorHasBooks = errors.New("author has books")
)

type AuthorFilter struct {
	Name string
}

type AuthorRepository interface {
	Create(ctx context.Context, author *domain.Author) error
	FindByID(ctx context.Context, id string) (*domain.Author, error)
	Exists(ctx context.Context, id string) (bool, error)
	ListPaged(ctx context.Context, filter AuthorFilter, req PageRequest) (PageResult[domain.Author], error)
	Update(ctx context.Context, id string, updates map[string]any) error
	// Delete removes the author. With includeBooks the author's books go too;
	// without it an author that still has books is rejected with ErrAuthorHasBooks.
	Delete(ctx context.Context, id string, includeBooks bool) error
}

type GormAuthorRepository struct{ db *gorm.DB }

func NewAuthorRepository(db *gorm.DB) AuthorRepository {
	return &GormAuthorRepository{db: db}
}

func (r *GormAuthorRepository) Create(ctx context.Context, author *domain.Author) error {
	err := r.db.WithContext(ctx).Omit("Books").Create(author).Error
	recordOutcome(ctx, "author", "create", err)
	return err
}

func (r *GormAuthorRepository) FindByID(ctx context.Context, id string) (*domain.Author, error) {
	var author domain.Author
	err := r.db.WithContext(ctx).Preload("Books", orderNewestFirst).Where("id = ?", id).First(&author).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = ErrAuthorNotFound
	}
	recordOutcome(ctx, "author", "find_by_id", err)
	if err != nil {
		return nil, err
	}
	return &author, nil
}

func (r *GormAuthorRepository) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Author{}).Where("id = ?", id).Count(&count).Error
	recordOutcome(ctx, "author", "exists", err)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormAuthorRepository) ListPaged(ctx context.Context, filter AuthorFilter, req PageRequest) (PageResult[domain.Author], error) {
	normalized := normalizePageRequest(req)
	result := PageResult[domain.Author]{
		Page:     normalized.Page,
		PageSize: normalized.PageSize,
		Items:    []domain.Author{},
	}

	base := r.db.WithContext(ctx).Model(&domain.Author{})
	if filter.Name != "" {
		base = base.Where(`name LIKE ? ESCAPE '\'`, containsPattern(filter.Name))
	}
	base = base.Session(&gorm.Session{})
	if err := base.Count(&result.Total).Error; err != nil {
		recordOutcome(ctx, "author", "list_paged", err)
		return PageResult[domain.Author]{}, err
	}
	err := base.Preload("Books", orderNewestFirst).
		Scopes(orderNewestFirst).
		Offset(normalized.offset()).
		Limit(normalized.PageSize).
		Find(&result.Items).Error
	recordOutcome(ctx, "author", "list_paged", err)
	if err != nil {
		return PageResult[domain.Author]{}, err
	}
	result.TotalPages = calcTotalPages(result.Total, normalized.PageSize)
	return result, nil
}

func (r *GormAuthorRepository) Update(ctx context.Context, id string, updates map[string]any) error {
	res := r.db.WithContext(ctx).Model(&domain.Author{}).Where("id = ?", id).Updates(updates)
	err := res.Error
	if err == nil && res.RowsAffected == 0 {
		err = ErrAuthorNotFound
	}
	recordOutcome(ctx, "author", "update", err)
	return err
}

func (r *GormAuthorRepository) Delete(ctx context.Context, id string, includeBooks bool) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var books int64
		if err := tx.Model(&domain.Book{}).Where("author_id = ?", id).Count(&books).Error; err != nil {
			return err
		}
		if books > 0 {
			if !includeBooks {
				return ErrAuthorHasBooks
			}
			if err := tx.Where("author_id = ?", id).Delete(&domain.Book{}).Error; err != nil {
				return err
			}
		}
		res := tx.Where("id = ?", id).Delete(&domain.Author{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAuthorNotFound
		}
		return nil
	})
	recordOutcome(ctx, "author", "delete", err)
	return err
}

func orderNewestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("created_at desc").Order("id desc")
}
