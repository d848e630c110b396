package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bookshelf-labs/bookshelf-api/internal/apperr"
	"github.com/bookshelf-labs/bookshelf-api/internal/http/response"
	"github.com/bookshelf-labs/bookshelf-api/internal/observability"
	"github.com/bookshelf-labs/bookshelf-api/internal/service"
)

const coverFormField = "cover"

type BookHandler struct {
	svc             service.BookServiceInterface
	defaultPageSize int
}

func NewBookHandler(svc service.BookServiceInterface, defaultPageSize int) *BookHandler {
	return &BookHandler{svc: svc, defaultPageSize: defaultPageSize}
}

func (h *BookHandler) Create(w http.ResponseWriter, r *http.Request) {
	in, err := bindBook(r, false)
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
	response.Success(w, r, http.StatusCreated, "Book created", created)
}

func (h *BookHandler) List(w http.ResponseWriter, r *http.Request) {
	q, err := listQuery(r, "title", h.defaultPageSize)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	page, err := h.svc.List(r.Context(), q)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.Success(w, r, http.StatusOK, "Books found", page)
}

func (h *BookHandler) Get(w http.ResponseWriter, r *http.Request) {
	book, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.Success(w, r, http.StatusOK, "Book found", book)
}

func (h *BookHandler) Update(w http.ResponseWriter, r *http.Request) {
	in, err := bindBook(r, true)
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
	response.Success(w, r, http.StatusOK, "Book updated", updated)
}

func (h *BookHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.Delete(r.Context(), id); err != nil {
		response.Error(w, r, err)
		return
	}
	h.audit(r, "delete", id)
	response.Success(w, r, http.StatusOK, "Book deleted", nil)
}

// UploadCover stores the multipart "cover" file and points the book at it.
func (h *BookHandler) UploadCover(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile(coverFormField)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxBytesErr):
			response.Error(w, r, apperr.New(apperr.KindTooLarge, "Cover must not be larger than 5MB"))
		default:
			response.Error(w, r, apperr.Validation("Cover should not be empty"))
		}
		return
	}
	defer file.Close()

	updated, err := h.svc.UploadCover(r.Context(), chi.URLParam(r, "id"), file, header.Size)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	h.audit(r, "cover_upload", updated.ID)
	response.Success(w, r, http.StatusOK, "Book cover updated", updated)
}

// Cover redirects to a short-lived download URL for the book's cover.
func (h *BookHandler) Cover(w http.ResponseWriter, r *http.Request) {
	url, err := h.svc.CoverURL(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, r, err)
		return
	}
	http.Redirect(w, r, url, http.StatusFound)
}

func (h *BookHandler) audit(r *http.Request, action, id string) {
	observability.EmitAudit(r, observability.AuditInput{
		EventName:   "book." + action,
		ActorUserID: actorID(r),
		TargetType:  "book",
		TargetID:    id,
		Action:      action,
		Outcome:     "success",
	})
}
