package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bookshelf-labs/bookshelf-api/internal/http/response"
	"github.com/bookshelf-labs/bookshelf-api/internal/observability"
	"github.com/bookshelf-labs/bookshelf-api/internal/service"
)

type AuthorHandler struct {
	svc             service.AuthorServiceInterface
	defaultPageSize int
}

func NewAuthorHandler(svc service.AuthorServiceInterface, defaultPageSize int) *AuthorHandler {
	return &AuthorHandler{svc: svc, defaultPageSize: defaultPageSize}
}

func (h *AuthorHandler) Create(w http.ResponseWriter, r *http.Request) {
	in, err := bindAuthor(r, false)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	created, err := h.svc.Create(r.Context(), in)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	h.audit(r, "create", created.ID)
	response.Success(w, r, http.StatusCreated, "Author created", created)
}

func (h *AuthorHandler) List(w http.ResponseWriter, r *http.Request) {
	q, err := listQuery(r, "name", h.defaultPageSize)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	page, err := h.svc.List(r.Context(), q)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.Success(w, r, http.StatusOK, "Authors found", page)
}

func (h *AuthorHandler) Get(w http.ResponseWriter, r *http.Request) {
	author, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.Success(w, r, http.StatusOK, "Author found", author)
}

func (h *AuthorHandler) Update(w http.ResponseWriter, r *http.Request) {
	in, err := bindAuthor(r, true)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	updated, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	h.audit(r, "update", updated.ID)
	response.Success(w, r, http.StatusOK, "Author updated", updated)
}

func (h *AuthorHandler) Delete(w http.ResponseWriter, r *http.Request) {
	includeBooks, err := parseIncludeBooks(r)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	id := chi.URLParam(r, "id")
	if err := h.svc.Delete(r.Context(), id, includeBooks); err != nil {
		response.Error(w, r, err)
		return
	}
	h.audit(r, "delete", id)
	response.Success(w, r, http.StatusOK, "Author deleted", nil)
}

func (h *AuthorHandler) audit(r *http.Request, action, id string) {
	observability.EmitAudit(r, observability.AuditInput{
		EventName:   "author." + action,
		ActorUserID: actorID(r),
		TargetType:  "author",
		TargetID:    id,
		Action:      action,
		Outcome:     "success",
	})
}
