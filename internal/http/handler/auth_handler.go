package handler

import (
	"net/http"

	"github.com/bookshelf-labs/bookshelf-api/internal/apperr"
	"github.com/bookshelf-labs/bookshelf-api/internal/http/response"
	"github.com/bookshelf-labs/bookshelf-api/internal/observability"
	"github.com/bookshelf-labs/bookshelf-api/internal/service"
)

type AuthHandler struct {
	authSvc service.AuthServiceInterface
}

func NewAuthHandler(authSvc service.AuthServiceInterface) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	in, err := bindSignIn(r)
	if err != nil {
		h.fail(w, r, "auth.sign_in", err)
		return
	}
	ctx := service.WithClientIP(r.Context(), observability.ClientIP(r))
	res, err := h.authSvc.SignIn(ctx, in)
	if err != nil {
		h.fail(w, r, "auth.sign_in", err)
		return
	}
	observability.EmitAudit(r, observability.AuditInput{
		EventName:  "auth.sign_in",
		TargetType: "user",
		Action:     "sign_in",
		Outcome:    "success",
		Reason:     "credentials_valid",
	})
	response.Success(w, r, http.StatusCreated, "User signed in", res)
}

func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	in, err := bindSignUp(r)
	if err != nil {
		h.fail(w, r, "auth.sign_up", err)
		return
	}
	res, err := h.authSvc.SignUp(r.Context(), in)
	if err != nil {
		h.fail(w, r, "auth.sign_up", err)
		return
	}
	observability.EmitAudit(r, observability.AuditInput{
		EventName:   "auth.sign_up",
		ActorUserID: res.ID,
		TargetType:  "user",
		TargetID:    res.ID,
		Action:      "sign_up",
		Outcome:     "success",
		Reason:      "user_created",
	})
	response.Success(w, r, http.StatusCreated, "User created", res)
}

func (h *AuthHandler) fail(w http.ResponseWriter, r *http.Request, event string, err error) {
	observability.EmitAudit(r, observability.AuditInput{
		EventName:  event,
		TargetType: "user",
		Action:     event[len("auth."):],
		Outcome:    "failure",
		Reason:     string(apperr.KindOf(err)),
	})
	response.Error(w, r, err)
}
