package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/bookshelf-labs/bookshelf-api/internal/apperr"
	"github.com/bookshelf-labs/bookshelf-api/internal/service"
)

// listQuery reads the search filter and page window shared by the catalog list routes.
func listQuery(r *http.Request, searchKey string, defaultPageSize int) (service.ListQuery, error) {
	q := r.URL.Query()
	page, err := service.ParsePageQuery(q.Get("page"), q.Get("size"), defaultPageSize)
	if err != nil {
		return service.ListQuery{}, err
	}
	return service.ListQuery{Search: strings.TrimSpace(q.Get(searchKey)), Page: page}, nil
}

func parseIncludeBooks(r *http.Request) (bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("includeBooks"))
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, apperr.Validation("includeBooks must be a boolean value")
	}
	return v, nil
}
