package service

import (
	"context"
	"io"

	"github.com/bookshelf-labs/bookshelf-api/internal/domain"
)

type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

type TokenIssuer interface {
	SignAccessToken(userID, email string) (string, error)
}

// CoverStorage keeps book cover images in object storage.
type CoverStorage interface {
	UploadCover(ctx context.Context, bookID string, file io.Reader, size int64) (string, error)
	DeleteCover(ctx context.Context, objectKey string) error
	CoverURL(ctx context.Context, objectKey string) (string, error)
}

type AuthServiceInterface interface {
	SignIn(ctx context.Context, in SignInInput) (*SignInResult, error)
	SignUp(ctx context.Context, in SignUpInput) (*SignUpResult, error)
}

type AuthorServiceInterface interface {
	Create(ctx context.Context, in AuthorInput) (*domain.Author, error)
	List(ctx context.Context, q ListQuery) (*Page[domain.Author], error)
	Get(ctx context.Context, id string) (*domain.Author, error)
	Update(ctx context.Context, id string, in AuthorInput) (*domain.Author, error)
	Delete(ctx context.Context, id string, includeBooks bool) error
}

type BookServiceInterface interface {
	Create(ctx context.Context, in BookInput) (*domain.Book, error)
	List(ctx context.Context, q ListQuery) (*Page[domain.Book], error)
	Get(ctx context.Context, id string) (*domain.Book, error)
	Update(ctx context.Context, id string, in BookInput) (*domain.Book, error)
	Delete(ctx context.Context, id string) error
	UploadCover(ctx context.Context, id string, file io.Reader, size int64) (*domain.Book, error)
	CoverURL(ctx context.Context, id string) (string, error)
}
