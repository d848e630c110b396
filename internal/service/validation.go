package service

import (
	"net/mail"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/bookshelf-labs/bookshelf-api/internal/apperr"
	"github.com/bookshelf-labs/bookshelf-api/internal/repository"
)

const maxPasswordBytes = 72

type SignInInput struct {
	Email    string
	Password string
}

type SignUpInput struct {
	Name     string
	Email    string
	Password string
}

// AuthorInput carries create and update fields. Nil means the field was not sent.
type AuthorInput struct {
	Name     *string
	Birthday *time.Time
	Country  *string
	Bio      *string
}

type BookInput struct {
	Title       *string
	ISBN        *string
	CoverURL    *string
	Published   *time.Time
	Publisher   *string
	Pages       *int
	Language    *string
	Genres      []string
	Description *string
	AuthorID    *string
}

type ListQuery struct {
	Search string
	Page   repository.PageRequest
}

type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalItems int64 `json:"totalItems"`
	TotalPages int   `json:"totalPages"`
}

type Page[T any] struct {
	Items      []T        `json:"items"`
	Pagination Pagination `json:"pagination"`
}

func newPage[T any](res repository.PageResult[T]) *Page[T] {
	items := res.Items
	if items == nil {
		items = []T{}
	}
	return &Page[T]{
		Items: items,
		Pagination: Pagination{
			Page:       res.Page,
			PageSize:   res.PageSize,
			TotalItems: res.Total,
			TotalPages: res.TotalPages,
		},
	}
}

type messages []string

func (m *messages) add(msg string) { *m = append(*m, msg) }

func (m messages) err() error {
	if len(m) == 0 {
		return nil
	}
	return apperr.Validation(m...)
}

func ValidateSignIn(in SignInInput) error {
	var msgs messages
	validateEmail(&msgs, in.Email)
	if in.Password == "" {
		msgs.add("Password should not be empty")
	}
	return msgs.err()
}

func ValidateSignUp(in SignUpInput) error {
	var msgs messages
	if strings.TrimSpace(in.Name) == "" {
		msgs.add("Name should not be empty")
	}
	validateEmail(&msgs, in.Email)
	if in.Password == "" {
		msgs.add("Password should not be empty")
	}
	if !isStrongPassword(in.Password) {
		msgs.add("Password is too weak")
	}
	if len(in.Password) > maxPasswordBytes {
		msgs.add("Password must be shorter than or equal to 72 characters")
	}
	return msgs.err()
}

func validateEmail(msgs *messages, email string) {
	if email == "" {
		msgs.add("Email should not be empty")
	}
	if !isEmail(email) {
		msgs.add("Email is invalid")
	}
}

func isEmail(v string) bool {
	addr, err := mail.ParseAddress(v)
	if err != nil || addr.Address != v {
		return false
	}
	at := strings.LastIndex(v, "@")
	return at > 0 && strings.Contains(v[at+1:], ".")
}

// isStrongPassword requires at least 8 characters, 4 digits and 1 symbol.
func isStrongPassword(v string) bool {
	var length, digits, symbols int
	for _, r := range v {
		length++
		switch {
		case unicode.IsDigit(r):
			digits++
		case !unicode.IsLetter(r):
			symbols++
		}
	}
	return length >= 8 && digits >= 4 && symbols >= 1
}

func ValidateAuthor(in AuthorInput, partial bool) error {
	var msgs messages
	requireText(&msgs, in.Name, partial, "Name")
	if in.Birthday == nil && !partial {
		msgs.add("Birthday must be a date instance")
	}
	requireText(&msgs, in.Country, partial, "Country")
	return msgs.err()
}

func ValidateBook(in BookInput, partial bool) error {
	var msgs messages
	requireText(&msgs, in.Title, partial, "Title")
	requireText(&msgs, in.ISBN, partial, "Isbn")
	if in.Published == nil && !partial {
		msgs.add("Published must be a date instance")
	}
	requireText(&msgs, in.Publisher, partial, "Publisher")
	switch {
	case in.Pages == nil && !partial:
		msgs.add("Pages must be a number conforming to the specified constraints")
	case in.Pages != nil && *in.Pages < 1:
		msgs.add("Pages must not be less than 1")
	}
	requireText(&msgs, in.Language, partial, "Language")
	if in.Genres == nil && !partial {
		msgs.add("Genres must be an array")
	}
	requireText(&msgs, in.AuthorID, partial, "Authorid")
	return msgs.err()
}

func requireText(msgs *messages, v *string, partial bool, label string) {
	if v == nil && partial {
		return
	}
	if v == nil || strings.TrimSpace(*v) == "" {
		msgs.add(label + " should not be empty")
	}
}

// ParsePageQuery reads the page and size query values. Empty values fall back to defaults
// and sizes above repository.MaxPageSize are clamped.
func ParsePageQuery(page, size string, defaultSize int) (repository.PageRequest, error) {
	var msgs messages
	req := repository.PageRequest{Page: repository.DefaultPage, PageSize: defaultSize}
	if req.PageSize < 1 {
		req.PageSize = repository.DefaultPageSize
	}
	if n, ok := parsePositive(&msgs, page, "Page"); ok {
		req.Page = n
	}
	if n, ok := parsePositive(&msgs, size, "Size"); ok {
		req.PageSize = min(n, repository.MaxPageSize)
	}
	if err := msgs.err(); err != nil {
		return repository.PageRequest{}, err
	}
	return req, nil
}

func parsePositive(msgs *messages, raw, label string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		msgs.add(label + " must not be less than 1")
		msgs.add(label + " must be an integer number")
		return 0, false
	}
	if n < 1 {
		msgs.add(label + " must not be less than 1")
		return 0, false
	}
	return n, true
}
