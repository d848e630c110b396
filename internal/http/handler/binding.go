package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bookshelf-labs/bookshelf-api/internal/apperr"
	"github.com/bookshelf-labs/bookshelf-api/internal/http/middleware"
	"github.com/bookshelf-labs/bookshelf-api/internal/service"
)

// fields is a decoded JSON object whose members are type-checked one by one so a single
// response can report every bad field.
type fields struct {
	raw      map[string]json.RawMessage
	problems []string
}

func decodeFields(r *http.Request) (*fields, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return nil, apperr.New(apperr.KindTooLarge, "Request body is too large")
		}
		return nil, apperr.Validation("Request body could not be read")
	}
	f := &fields{raw: map[string]json.RawMessage{}}
	if len(bytes.TrimSpace(body)) == 0 {
		return f, nil
	}
	if err := json.Unmarshal(body, &f.raw); err != nil {
		return nil, apperr.Validation("Request body must be a JSON object")
	}
	return f, nil
}

// present reports whether key was sent with a non-null value.
func (f *fields) present(key string) (json.RawMessage, bool) {
	v, ok := f.raw[key]
	if !ok || string(v) == "null" {
		return nil, false
	}
	return v, true
}

func (f *fields) str(key, label string) *string {
	v, ok := f.present(key)
	if !ok {
		return nil
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		f.problems = append(f.problems, label+" must be a string")
		return nil
	}
	return &s
}

// requiredStr is str for fields a create must carry; absence reports the type problem too.
func (f *fields) requiredStr(key, label string, partial bool) *string {
	if _, ok := f.present(key); !ok && !partial {
		f.problems = append(f.problems, label+" must be a string")
		return nil
	}
	return f.str(key, label)
}

func (f *fields) date(key, label string) *time.Time {
	v, ok := f.present(key)
	if !ok {
		return nil
	}
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		if t, ok := parseDate(s); ok {
			return &t
		}
	}
	f.problems = append(f.problems, label+" must be a date instance")
	return nil
}

func (f *fields) integer(key, label string) *int {
	v, ok := f.present(key)
	if !ok {
		return nil
	}
	var n float64
	if err := json.Unmarshal(v, &n); err != nil || n != float64(int(n)) {
		f.problems = append(f.problems, label+" must be a number conforming to the specified constraints")
		return nil
	}
	i := int(n)
	return &i
}

func (f *fields) stringList(key, label string) []string {
	v, ok := f.present(key)
	if !ok {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(v, &items); err != nil {
		f.problems = append(f.problems, label+" must be an array")
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err != nil {
			f.problems = append(f.problems, "each value in "+strings.ToLower(label)+" must be a string")
			return nil
		}
		out = append(out, s)
	}
	return out
}

// merge joins type problems with the domain validation result, keeping first-seen order.
func (f *fields) merge(validationErr error) error {
	if len(f.problems) == 0 {
		return validationErr
	}
	msgs := append([]string(nil), f.problems...)
	if validationErr != nil {
		msgs = append(apperr.Messages(validationErr), msgs...)
	}
	seen := make(map[string]struct{}, len(msgs))
	out := msgs[:0]
	for _, m := range msgs {
		if _, dup := seen[m]; dup {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	return apperr.Validation(out...)
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func bindSignIn(r *http.Request) (service.SignInInput, error) {
	f, err := decodeFields(r)
	if err != nil {
		return service.SignInInput{}, err
	}
	in := service.SignInInput{
		Email:    deref(f.requiredStr("email", "Email", false)),
		Password: deref(f.requiredStr("password", "Password", false)),
	}
	return in, f.merge(service.ValidateSignIn(in))
}

func bindSignUp(r *http.Request) (service.SignUpInput, error) {
	f, err := decodeFields(r)
	if err != nil {
		return service.SignUpInput{}, err
	}
	in := service.SignUpInput{
		Name:     deref(f.requiredStr("name", "Name", false)),
		Email:    deref(f.requiredStr("email", "Email", false)),
		Password: deref(f.requiredStr("password", "Password", false)),
	}
	return in, f.merge(service.ValidateSignUp(in))
}

func bindAuthor(r *http.Request, partial bool) (service.AuthorInput, error) {
	f, err := decodeFields(r)
	if err != nil {
		return service.AuthorInput{}, err
	}
	in := service.AuthorInput{
		Name:     f.requiredStr("name", "Name", partial),
		Birthday: f.date("birthday", "Birthday"),
		Country:  f.requiredStr("country", "Country", partial),
		Bio:      f.str("bio", "Bio"),
	}
	if len(f.problems) > 0 {
		return in, f.merge(service.ValidateAuthor(in, partial))
	}
	return in, nil
}

func bindBook(r *http.Request, partial bool) (service.BookInput, error) {
	f, err := decodeFields(r)
	if err != nil {
		return service.BookInput{}, err
	}
	in := service.BookInput{
		Title:       f.requiredStr("title", "Title", partial),
		ISBN:        f.requiredStr("isbn", "Isbn", partial),
		CoverURL:    f.str("coverUrl", "Coverurl"),
		Published:   f.date("published", "Published"),
		Publisher:   f.requiredStr("publisher", "Publisher", partial),
		Pages:       f.integer("pages", "Pages"),
		Language:    f.requiredStr("language", "Language", partial),
		Genres:      f.stringList("genres", "Genres"),
		Description: f.str("description", "Description"),
		AuthorID:    f.requiredStr("authorId", "Authorid", partial),
	}
	if len(f.problems) > 0 {
		return in, f.merge(service.ValidateBook(in, partial))
	}
	return in, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func actorID(r *http.Request) string {
	if claims, ok := middleware.ClaimsFromContext(r.Context()); ok {
		return claims.UserID
	}
	return ""
}
