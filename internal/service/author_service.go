package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bookshelf-labs/bookshelf-api/internal/apperr"
	"github.com/bookshelf-labs/bookshelf-api/internal/domain"
	"github.com/bookshelf-labs/bookshelf-api/internal/observability"
	"github.com/bookshelf-labs/bookshelf-api/internal/repository"
)

type AuthorService struct {
	repo  repository.AuthorRepository
	cache *ListCache
}

func NewAuthorService(repo repository.AuthorRepository, cache *ListCache) *AuthorService {
	return &AuthorService{repo: repo, cache: cache}
}

func (s *AuthorService) Create(ctx context.Context, in AuthorInput) (author *domain.Author, err error) {
	defer observeCatalog(ctx, "author", "create", time.Now(), &err)

	if err := ValidateAuthor(in, false); err != nil {
		return nil, err
	}
	author = &domain.Author{
		Name:     strings.TrimSpace(*in.Name),
		Birthday: *in.Birthday,
		Country:  strings.TrimSpace(*in.Country),
		Bio:      in.Bio,
	}
	if err := s.repo.Create(ctx, author); err != nil {
		return nil, apperr.Internal(err)
	}
	author.Books = []domain.Book{}
	s.cache.Invalidate(ctx, authorsNamespace)
	return author, nil
}

func (s *AuthorService) List(ctx context.Context, q ListQuery) (page *Page[domain.Author], err error) {
	defer observeCatalog(ctx, "author", "list", time.Now(), &err)
	observability.RecordCatalogPageSize(ctx, "author", q.Page.PageSize)

	return cachedList(ctx, s.cache, authorsNamespace, q, func(ctx context.Context) (*Page[domain.Author], error) {
		res, err := s.repo.ListPaged(ctx, repository.AuthorFilter{Name: q.Search}, q.Page)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		return newPage(res), nil
	})
}

func (s *AuthorService) Get(ctx context.Context, id string) (author *domain.Author, err error) {
	defer observeCatalog(ctx, "author", "get", time.Now(), &err)

	author, err = s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapAuthorError(err)
	}
	return author, nil
}

func (s *AuthorService) Update(ctx context.Context, id string, in AuthorInput) (author *domain.Author, err error) {
	defer observeCatalog(ctx, "author", "update", time.Now(), &err)

	if err := ValidateAuthor(in, true); err != nil {
		return nil, err
	}
	updates := map[string]any{}
	if in.Name != nil {
		updates["name"] = strings.TrimSpace(*in.Name)
	}
	if in.Birthday != nil {
		updates["birthday"] = *in.Birthday
	}
	if in.Country != nil {
		updates["country"] = strings.TrimSpace(*in.Country)
	}
	if in.Bio != nil {
		updates["bio"] = *in.Bio
	}
	if len(updates) > 0 {
		if err := s.repo.Update(ctx, id, updates); err != nil {
			return nil, mapAuthorError(err)
		}
		s.cache.Invalidate(ctx, authorsNamespace)
	}
	author, err = s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapAuthorError(err)
	}
	return author, nil
}

// Delete removes an author. Without includeBooks an author that still has books is a Conflict.
func (s *AuthorService) Delete(ctx context.Context, id string, includeBooks bool) (err error) {
	defer observeCatalog(ctx, "author", "delete", time.Now(), &err)

	if err := s.repo.Delete(ctx, id, includeBooks); err != nil {
		return mapAuthorError(err)
	}
	s.cache.Invalidate(ctx, authorsNamespace, booksNamespace)
	return nil
}

func mapAuthorError(err error) error {
	switch {
	case errors.Is(err, repository.ErrAuthorNotFound):
		return apperr.NotFound("Author not found")
	case errors.Is(err, repository.ErrAuthorHasBooks):
		return apperr.Conflict("Author has books")
	default:
		return apperr.Internal(err)
	}
}

func observeCatalog(ctx context.Context, resource, operation string, start time.Time, err *error) {
	outcome := "success"
	if *err != nil {
		outcome = string(apperr.KindOf(*err))
	}
	observability.RecordCatalogOperation(ctx, resource, operation, outcome, time.Since(start))
}
