package service

import (
	"context"
	"errors"
	"time"

	"github.com/bookshelf-labs/bookshelf-api/internal/apperr"
	"github.com/bookshelf-labs/bookshelf-api/internal/domain"
	"github.com/bookshelf-labs/bookshelf-api/internal/observability"
	"github.com/bookshelf-labs/bookshelf-api/internal/repository"
)

type SignInResult struct {
	Token string `json:"token"`
}

type SignUpResult struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Token string `json:"token"`
}

type AuthService struct {
	users  repository.UserRepository
	hasher PasswordHasher
	tokens TokenIssuer
	guard  SignInGuard
}

func NewAuthService(users repository.UserRepository, hasher PasswordHasher, tokens TokenIssuer) *AuthService {
	return &AuthService{users: users, hasher: hasher, tokens: tokens, guard: NewNoopSignInGuard()}
}

// WithSignInGuard enables backoff after failed sign-ins.
func (s *AuthService) WithSignInGuard(guard SignInGuard) *AuthService {
	if guard != nil {
		s.guard = guard
	}
	return s
}

// SignIn checks the credentials and issues an access token. An unknown email is
// NotFound and a wrong password is Unauthorized.
func (s *AuthService) SignIn(ctx context.Context, in SignInInput) (res *SignInResult, err error) {
	ctx, end := observability.StartSpan(ctx, "auth.sign_in")
	start := time.Now()
	defer func() {
		observability.RecordAuthRequest(ctx, "sign_in", authOutcome(err), time.Since(start))
		end(err)
	}()

	ip := ClientIPFromContext(ctx)
	if retry := s.checkGuard(ctx, in.Email, ip); retry > 0 {
		return nil, apperr.Throttled("Too many sign-in attempts", retry)
	}

	user, err := s.users.FindByEmail(ctx, in.Email, true)
	if errors.Is(err, repository.ErrUserNotFound) {
		s.registerFailure(ctx, in.Email, ip)
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}

	verifyStart := time.Now()
	ok := s.hasher.Verify(in.Password, user.PasswordHash)
	observability.RecordPasswordHashDuration(ctx, "verify", time.Since(verifyStart))
	if !ok {
		s.registerFailure(ctx, in.Email, ip)
		return nil, apperr.Unauthorized("Invalid password")
	}

	token, err := s.tokens.SignAccessToken(user.ID, user.Email)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if err := s.guard.Reset(ctx, in.Email, ip); err != nil {
		observability.RecordSignInGuardEvent(ctx, "error")
		observability.Logger().WarnContext(ctx, "sign-in guard reset failed", "error", err)
	}
	return &SignInResult{Token: token}, nil
}

// Guard failures never block sign-in.
func (s *AuthService) checkGuard(ctx context.Context, email, ip string) time.Duration {
	retry, err := s.guard.Check(ctx, email, ip)
	if err != nil {
		observability.RecordSignInGuardEvent(ctx, "error")
		observability.Logger().WarnContext(ctx, "sign-in guard check failed", "error", err)
		return 0
	}
	if retry > 0 {
		observability.RecordSignInGuardEvent(ctx, "blocked")
	}
	return retry
}

func (s *AuthService) registerFailure(ctx context.Context, email, ip string) {
	delay, err := s.guard.RegisterFailure(ctx, email, ip)
	if err != nil {
		observability.RecordSignInGuardEvent(ctx, "error")
		observability.Logger().WarnContext(ctx, "sign-in guard update failed", "error", err)
		return
	}
	if delay > 0 {
		observability.RecordSignInGuardEvent(ctx, "cooldown")
	}
}

// SignUp creates the user and issues an access token. The existence check runs
// before anything else so a taken email is always a Conflict.
func (s *AuthService) SignUp(ctx context.Context, in SignUpInput) (res *SignUpResult, err error) {
	ctx, end := observability.StartSpan(ctx, "auth.sign_up")
	start := time.Now()
	defer func() {
		observability.RecordAuthRequest(ctx, "sign_up", authOutcome(err), time.Since(start))
		end(err)
	}()

	exists, err := s.users.ExistsByEmail(ctx, in.Email)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if exists {
		return nil, apperr.Conflict("User already exists")
	}

	hashStart := time.Now()
	hash, err := s.hasher.Hash(in.Password)
	observability.RecordPasswordHashDuration(ctx, "hash", time.Since(hashStart))
	if err != nil {
		return nil, apperr.Internal(err)
	}

	user := &domain.User{Name: in.Name, Email: in.Email, PasswordHash: hash}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUserAlreadyExists) {
			return nil, apperr.Conflict("User already exists")
		}
		return nil, apperr.Internal(err)
	}

	token, err := s.tokens.SignAccessToken(user.ID, user.Email)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &SignUpResult{ID: user.ID, Email: user.Email, Name: user.Name, Token: token}, nil
}

func authOutcome(err error) string {
	if err == nil {
		return "success"
	}
	return string(apperr.KindOf(err))
}
