package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"launchpad/internal/services"
)

// queryInt parses an optional integer query parameter. present is false when
// the parameter is absent or empty.
func queryInt(c *gin.Context, name string) (v int, present bool, ok bool) {
	raw, exists := c.GetQuery(name)
	if !exists || raw == "" {
		return 0, false, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		badRequest(c, name, "must be an integer")
		return 0, true, false
	}
	return n, true, true
}

// pageFromQuery reads page and page_size. Absent values fall back to the
// service defaults; explicit values must be in range.
func pageFromQuery(c *gin.Context) (services.PageRequest, bool) {
	page, present, ok := queryInt(c, "page")
	if !ok {
		return services.PageRequest{}, false
	}
	if present && page < 1 {
		badRequest(c, "page", "must be >= 1")
		return services.PageRequest{}, false
	}

	size, present, ok := queryInt(c, "page_size")
	if !ok {
		return services.PageRequest{}, false
	}
	if present && (size < 1 || size > services.MaxPageSize) {
		badRequest(c, "page_size", "must be between 1 and 100")
		return services.PageRequest{}, false
	}
	return services.PageRequest{Page: page, PageSize: size}, true
}
