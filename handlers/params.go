package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/hermione06/cafeteria-management-system/utils"
)

// parseIDParam reads a positive integer path parameter. On failure it
// writes a 400 response and returns false.
func parseIDParam(c *gin.Context, name, label string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + label})
		return 0, false
	}
	return uint(id), true
}

// parsePagination reads page and per_page query parameters. Out-of-range
// values are clamped later by the pagination helper.
func parsePagination(c *gin.Context) (page, perPage int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil {
		page = 1
	}
	perPage, err = strconv.Atoi(c.DefaultQuery("per_page", strconv.Itoa(utils.DefaultPerPage)))
	if err != nil {
		perPage = utils.DefaultPerPage
	}
	return page, perPage
}
