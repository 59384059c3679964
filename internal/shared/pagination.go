package shared

import (
	"math"
	"net/http"
	"strconv"
)

// Pagination carries listing metadata in the platform's response envelope.
type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"perPage"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// NewPagination computes pagination metadata.
func NewPagination(page, perPage, total int) Pagination {
	if perPage <= 0 {
		perPage = 20
	}
	if page <= 0 {
		page = 1
	}
	totalPages := int(math.Ceil(float64(total) / float64(perPage)))
	return Pagination{Page: page, PerPage: perPage, Total: total, TotalPages: totalPages}
}

// PageParams reads page/perPage query parameters with defaults.
func PageParams(r *http.Request) (page, perPage int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	if page <= 0 {
		page = 1
	}
	perPage, _ = strconv.Atoi(r.URL.Query().Get("perPage"))
	if perPage <= 0 || perPage > 100 {
		perPage = 20
	}
	return page, perPage
}

// Envelope is the paginated response body: {"data": ..., "meta": ...}.
type Envelope struct {
	Data any        `json:"data"`
	Meta Pagination `json:"meta"`
}
