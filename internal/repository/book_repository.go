package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/bookshelf-labs/bookshelf-api/internal/domain"
)

var ErrBookNotFound = errors.New("book not found")

type BookFilter struct {
	Title string
}

type BookRepository interface {
	Create(ctx context.Context, book *domain.Book) error
	FindByID(ctx context.Context, id string) (*domain.Book, error)
	ListPaged(ctx context.Context, filter BookFilter, req PageRequest) (PageResult[domain.Book], error)
	Update(ctx context.Context, id string, updates map[string]any) error
	Delete(ctx context.Context, id string) error
}

type GormBookRepository struct{ db *gorm.DB }

func NewBookRepository(db *gorm.DB) BookRepository {
	return &GormBookRepository{db: db}
}

func (r *GormBookRepository) Create(ctx context.Context, book *domain.Book) error {
	err := r.db.WithContext(ctx).Omit("Author").Create(book).Error
	recordOutcome(ctx, "book", "create", err)
	return err
}

func (r *GormBookRepository) FindByID(ctx context.Context, id string) (*domain.Book, error) {
	var book domain.Book
	err := r.db.WithContext(ctx).Preload("Author").Where("id = ?", id).First(&book).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = ErrBookNotFound
	}
	recordOutcome(ctx, "book", "find_by_id", err)
	if err != nil {
		return nil, err
	}
	return &book, nil
}

func (r *GormBookRepository) ListPaged(ctx context.Context, filter BookFilter, req PageRequest) (PageResult[domain.Book], error) {
	normalized := normalizePageRequest(req)
	result := PageResult[domain.Book]{
		Page:     normalized.Page,
		PageSize: normalized.PageSize,
		Items:    []domain.Book{},
	}

	base := r.db.WithContext(ctx).Model(&domain.Book{})
	if filter.Title != "" {
		base = base.Where(`title LIKE ? ESCAPE '\'`, containsPattern(filter.Title))
	}
	base = base.Session(&gorm.Session{})
	if err := base.Count(&result.Total).Error; err != nil {
		recordOutcome(ctx, "book", "list_paged", err)
		return PageResult[domain.Book]{}, err
	}
	err := base.Preload("Author").
		Scopes(orderNewestFirst).
		Offset(normalized.offset()).
		Limit(normalized.PageSize).
		Find(&result.Items).Error
	recordOutcome(ctx, "book", "list_paged", err)
	if err != nil {
		return PageResult[domain.Book]{}, err
	}
	result.TotalPages = calcTotalPages(result.Total, normalized.PageSize)
	return result, nil
}

func (r *GormBookRepository) Update(ctx context.Context, id string, updates map[string]any) error {
	res := r.db.WithContext(ctx).Model(&domain.Book{}).Where("id = ?", id).Updates(updates)
	err := res.Error
	if err == nil && res.RowsAffected == 0 {
		err = ErrBookNotFound
	}
	recordOutcome(ctx, "book", "update", err)
	return err
}

func (r *GormBookRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Book{})
	err := res.Error
	if err == nil && res.RowsAffected == 0 {
		err = ErrBookNotFound
	}
	recordOutcome(ctx, "book", "delete", err)
	return err
}
