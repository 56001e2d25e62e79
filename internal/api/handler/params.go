package handler

import (
	"net/http"
	"strconv"

	"ecommerce_api/internal/app/service"
	"ecommerce_api/internal/common"

	"github.com/go-chi/chi/v5"
)

func idParam(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, common.Invalid("%s must be a positive integer", name)
	}
	return id, nil
}

// pageParams reads skip and limit; range checks happen in the services.
func pageParams(r *http.Request) (skip, limit int, err error) {
	q := r.URL.Query()
	skip, limit = 0, service.DefaultPageLimit
	if v := q.Get("skip"); v != "" {
		if skip, err = strconv.Atoi(v); err != nil {
			return 0, 0, common.Invalid("skip must be an integer")
		}
	}
	if v := q.Get("limit"); v != "" {
		if limit, err = strconv.Atoi(v); err != nil {
			return 0, 0, common.Invalid("limit must be an integer")
		}
	}
	return skip, limit, nil
}

func boolParam(r *http.Request, name string) (bool, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, common.Invalid("%s must be a boolean", name)
	}
	return b, nil
}
