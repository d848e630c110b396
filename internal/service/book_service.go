package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/bookshelf-labs/bookshelf-api/internal/apperr"
	"github.com/bookshelf-labs/bookshelf-api/internal/domain"
	"github.com/bookshelf-labs/bookshelf-api/internal/observability"
	"github.com/bookshelf-labs/bookshelf-api/internal/repository"
)

type BookService struct {
	repo    repository.BookRepository
	authors repository.AuthorRepository
	covers  CoverStorage
	cache   *ListCache
}

func NewBookService(repo repository.BookRepository, authors repository.AuthorRepository, covers CoverStorage, cache *ListCache) *BookService {
	if covers == nil {
		covers = DisabledCoverStorage{}
	}
	return &BookService{repo: repo, authors: authors, covers: covers, cache: cache}
}

func (s *BookService) Create(ctx context.Context, in BookInput) (book *domain.Book, err error) {
	defer observeCatalog(ctx, "book", "create", time.Now(), &err)

	if err := ValidateBook(in, false); err != nil {
		return nil, err
	}
	authorID := strings.TrimSpace(*in.AuthorID)
	if err := s.ensureAuthor(ctx, authorID); err != nil {
		return nil, err
	}
	book = &domain.Book{
		Title:       strings.TrimSpace(*in.Title),
		ISBN:        strings.TrimSpace(*in.ISBN),
		CoverURL:    in.CoverURL,
		Published:   *in.Published,
		Publisher:   strings.TrimSpace(*in.Publisher),
		Pages:       *in.Pages,
		Language:    strings.TrimSpace(*in.Language),
		Genres:      domain.StringList(in.Genres),
		Description: in.Description,
		AuthorID:    authorID,
	}
	if err := s.repo.Create(ctx, book); err != nil {
		return nil, apperr.Internal(err)
	}
	s.invalidate(ctx)
	return s.reload(ctx, book.ID)
}

func (s *BookService) List(ctx context.Context, q ListQuery) (page *Page[domain.Book], err error) {
	defer observeCatalog(ctx, "book", "list", time.Now(), &err)
	observability.RecordCatalogPageSize(ctx, "book", q.Page.PageSize)

	return cachedList(ctx, s.cache, booksNamespace, q, func(ctx context.Context) (*Page[domain.Book], error) {
		res, err := s.repo.ListPaged(ctx, repository.BookFilter{Title: q.Search}, q.Page)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		return newPage(res), nil
	})
}

func (s *BookService) Get(ctx context.Context, id string) (book *domain.Book, err error) {
	defer observeCatalog(ctx, "book", "get", time.Now(), &err)
	return s.reload(ctx, id)
}

func (s *BookService) Update(ctx context.Context, id string, in BookInput) (book *domain.Book, err error) {
	defer observeCatalog(ctx, "book", "update", time.Now(), &err)

	if err := ValidateBook(in, true); err != nil {
		return nil, err
	}
	updates := map[string]any{}
	setText := func(column string, v *string) {
		if v != nil {
			updates[column] = strings.TrimSpace(*v)
		}
	}
	setText("title", in.Title)
	setText("isbn", in.ISBN)
	setText("publisher", in.Publisher)
	setText("language", in.Language)
	if in.CoverURL != nil {
		updates["cover_url"] = *in.CoverURL
	}
	if in.Published != nil {
		updates["published"] = *in.Published
	}
	if in.Pages != nil {
		updates["pages"] = *in.Pages
	}
	if in.Genres != nil {
		updates["genres"] = domain.StringList(in.Genres)
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}
	if in.AuthorID != nil {
		authorID := strings.TrimSpace(*in.AuthorID)
		if err := s.ensureAuthor(ctx, authorID); err != nil {
			return nil, err
		}
		updates["author_id"] = authorID
	}
	if len(updates) > 0 {
		if err := s.repo.Update(ctx, id, updates); err != nil {
			return nil, mapBookError(err)
		}
		s.invalidate(ctx)
	}
	return s.reload(ctx, id)
}

func (s *BookService) Delete(ctx context.Context, id string) (err error) {
	defer observeCatalog(ctx, "book", "delete", time.Now(), &err)

	book, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return mapBookError(err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapBookError(err)
	}
	s.invalidate(ctx)
	s.dropCover(ctx, book.CoverKey)
	return nil
}

// UploadCover stores a new cover image and points the book at it. The previous
// object is removed on a best-effort basis.
func (s *BookService) UploadCover(ctx context.Context, id string, file io.Reader, size int64) (book *domain.Book, err error) {
	defer observeCatalog(ctx, "book", "upload_cover", time.Now(), &err)

	book, err = s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapBookError(err)
	}
	key, err := s.covers.UploadCover(ctx, id, file, size)
	if err != nil {
		return nil, mapStorageError(err)
	}
	coverURL := "/book/" + id + "/cover"
	if err := s.repo.Update(ctx, id, map[string]any{"cover_key": key, "cover_url": coverURL}); err != nil {
		s.dropCover(ctx, key)
		return nil, mapBookError(err)
	}
	s.invalidate(ctx)
	s.dropCover(ctx, book.CoverKey)
	return s.reload(ctx, id)
}

// CoverURL resolves where the cover of a book can be fetched from: a presigned
// object URL for uploaded covers, or the external URL the book was created with.
func (s *BookService) CoverURL(ctx context.Context, id string) (u string, err error) {
	defer observeCatalog(ctx, "book", "cover_url", time.Now(), &err)

	book, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return "", mapBookError(err)
	}
	if book.CoverKey != "" {
		u, err := s.covers.CoverURL(ctx, book.CoverKey)
		if err != nil {
			return "", mapStorageError(err)
		}
		return u, nil
	}
	if book.CoverURL != nil && strings.HasPrefix(*book.CoverURL, "http") {
		return *book.CoverURL, nil
	}
	return "", apperr.NotFound("Book cover not found")
}

func (s *BookService) ensureAuthor(ctx context.Context, authorID string) error {
	ok, err := s.authors.Exists(ctx, authorID)
	if err != nil {
		return apperr.Internal(err)
	}
	if !ok {
		return apperr.NotFound("Author not found")
	}
	return nil
}

func (s *BookService) reload(ctx context.Context, id string) (*domain.Book, error) {
	book, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapBookError(err)
	}
	return book, nil
}

// invalidate drops both namespaces since author listings embed their books.
func (s *BookService) invalidate(ctx context.Context) {
	s.cache.Invalidate(ctx, booksNamespace, authorsNamespace)
}

func (s *BookService) dropCover(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.covers.DeleteCover(ctx, key); err != nil {
		observability.Logger().WarnContext(ctx, "cover cleanup failed", "object_key", key, "error", err)
	}
}

func mapBookError(err error) error {
	if errors.Is(err, repository.ErrBookNotFound) {
		return apperr.NotFound("Book not found")
	}
	return apperr.Internal(err)
}

func mapStorageError(err error) error {
	switch {
	case errors.Is(err, ErrStorageDisabled):
		return apperr.Unavailable("Cover storage is disabled")
	case errors.Is(err, ErrFileTooBig):
		return apperr.New(apperr.KindTooLarge, "Cover must not be larger than 5MB")
	case errors.Is(err, ErrInvalidFileType):
		return apperr.Validation("Cover must be a JPEG or PNG image")
	default:
		return apperr.Internal(err)
	}
}
