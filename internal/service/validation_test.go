package service

import (
	"strings"
	"testing"
	"time"

	"github.com/bookshelf-labs/bookshelf-api/internal/apperr"
	"github.com/bookshelf-labs/bookshelf-api/internal/repository"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestValidateSignIn(t *testing.T) {
	cases := []struct {
		name string
		in   SignInInput
		want []string
	}{
		{name: "valid", in: SignInInput{Email: "a@example.com", Password: "x"}},
		{name: "empty", in: SignInInput{}, want: []string{"Email should not be empty", "Email is invalid", "Password should not be empty"}},
		{name: "bad email", in: SignInInput{Email: "not-an-email", Password: "x"}, want: []string{"Email is invalid"}},
		{name: "display name form rejected", in: SignInInput{Email: "Jane <a@example.com>", Password: "x"}, want: []string{"Email is invalid"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateSignIn(tc.in)
			if tc.want == nil {
				require.NoError(t, err)
				return
			}
			require.Equal(t, apperr.KindValidation, apperr.KindOf(err))
			if diff := cmp.Diff(tc.want, apperr.Messages(err)); diff != "" {
				t.Fatalf("messages mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestValidateSignUpPasswordPolicy(t *testing.T) {
	cases := []struct {
		password string
		strong   bool
	}{
		{"pass1234!", true},
		{"1234!abc", true},
		{"password!", false},
		{"pass123!", false},
		{"pass12345", false},
		{"12!4", false},
		{"ab 1234cd", true},
	}
	for _, tc := range cases {
		err := ValidateSignUp(SignUpInput{Name: "A", Email: "a@example.com", Password: tc.password})
		if tc.strong {
			require.NoError(t, err, tc.password)
			continue
		}
		require.Error(t, err, tc.password)
		require.Contains(t, apperr.Messages(err), "Password is too weak")
	}
}

func TestValidateSignUpRejectsOverlongPassword(t *testing.T) {
	long := "!1234" + strings.Repeat("a", 70)
	err := ValidateSignUp(SignUpInput{Name: "A", Email: "a@example.com", Password: long})
	require.Error(t, err)
	require.Equal(t, []string{"Password must be shorter than or equal to 72 characters"}, apperr.Messages(err))
}

func TestValidateSignUpCollectsAllFields(t *testing.T) {
	err := ValidateSignUp(SignUpInput{Name: "  ", Email: "", Password: ""})
	want := []string{
		"Name should not be empty",
		"Email should not be empty",
		"Email is invalid",
		"Password should not be empty",
		"Password is too weak",
	}
	if diff := cmp.Diff(want, apperr.Messages(err)); diff != "" {
		t.Fatalf("messages mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateAuthor(t *testing.T) {
	birthday := time.Date(1970, 1, 2, 0, 0, 0, 0, time.UTC)

	require.NoError(t, ValidateAuthor(AuthorInput{Name: ptr("A"), Birthday: &birthday, Country: ptr("PT")}, false))

	err := ValidateAuthor(AuthorInput{}, false)
	require.Equal(t, []string{
		"Name should not be empty",
		"Birthday must be a date instance",
		"Country should not be empty",
	}, apperr.Messages(err))

	require.NoError(t, ValidateAuthor(AuthorInput{}, true), "partial update with no fields")
	err = ValidateAuthor(AuthorInput{Country: ptr(" ")}, true)
	require.Equal(t, []string{"Country should not be empty"}, apperr.Messages(err))
}

func TestValidateBook(t *testing.T) {
	err := ValidateBook(BookInput{}, false)
	want := []string{
		"Title should not be empty",
		"Isbn should not be empty",
		"Published must be a date instance",
		"Publisher should not be empty",
		"Pages must be a number conforming to the specified constraints",
		"Language should not be empty",
		"Genres must be an array",
		"Authorid should not be empty",
	}
	if diff := cmp.Diff(want, apperr.Messages(err)); diff != "" {
		t.Fatalf("messages mismatch (-want +got):\n%s", diff)
	}

	err = ValidateBook(BookInput{Pages: ptr(0)}, true)
	require.Equal(t, []string{"Pages must not be less than 1"}, apperr.Messages(err))
	require.NoError(t, ValidateBook(BookInput{Pages: ptr(1), Genres: []string{}}, true))
}

func TestParsePageQuery(t *testing.T) {
	cases := []struct {
		name       string
		page, size string
		want       repository.PageRequest
		wantMsgs   []string
	}{
		{name: "defaults", want: repository.PageRequest{Page: 1, PageSize: 10}},
		{name: "explicit", page: "3", size: "25", want: repository.PageRequest{Page: 3, PageSize: 25}},
		{name: "clamped", size: "1000", want: repository.PageRequest{Page: 1, PageSize: repository.MaxPageSize}},
		{name: "zero page", page: "0", wantMsgs: []string{"Page must not be less than 1"}},
		{name: "non integer", page: "abc", size: "1.5", wantMsgs: []string{
			"Page must not be less than 1",
			"Page must be an integer number",
			"Size must not be less than 1",
			"Size must be an integer number",
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParsePageQuery(tc.page, tc.size, 10)
			if tc.wantMsgs != nil {
				require.Error(t, err)
				require.Equal(t, tc.wantMsgs, apperr.Messages(err))
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}
