package handlers

import (
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/anonto42/groupnet/backend/internal/repositories"
	"github.com/anonto42/groupnet/backend/pkg/apperr"
	"github.com/labstack/echo/v4"
)

type SearchHandler struct {
	groupRepository repositories.GroupRepository
	perPage         int
}

func NewSearchHandler(groupRepo repositories.GroupRepository, perPage int) *SearchHandler {
	if perPage < 1 {
		perPage = 5
	}
	return &SearchHandler{groupRepository: groupRepo, perPage: perPage}
}

func (h *SearchHandler) RegisterSearchRoutes(g *echo.Group) {
	g.GET("/search", h.Search)
}

// Search finds groups by name, one page at a time, best match first
func (h *SearchHandler) Search(c echo.Context) error {
	q := strings.TrimSpace(c.QueryParam("q"))
	if q == "" {
		return apperr.InvalidArg("q is required")
	}
	page, err := strconv.Atoi(c.QueryParam("page"))
	if err != nil || page < 1 {
		page = 1
	}
	if page > math.MaxInt/h.perPage-1 {
		return apperr.InvalidArg("page is out of range")
	}

	groups, total, err := h.groupRepository.SearchGroups(c.Request().Context(), q, page, h.perPage)
	if err != nil {
		return err
	}

	var nextURL, prevURL *string
	if total > int64(page*h.perPage) {
		u := searchURL(q, page+1)
		nextURL = &u
	}
	if page > 1 {
		u := searchURL(q, page-1)
		prevURL = &u
	}

	return c.JSON(http.StatusOK, echo.Map{
		"query":    q,
		"groups":   groups,
		"total":    total,
		"page":     page,
		"next_url": nextURL,
		"prev_url": prevURL,
	})
}

func searchURL(q string, page int) string {
	v := url.Values{}
	v.Set("q", q)
	v.Set("page", strconv.Itoa(page))
	return "/search?" + v.Encode()
}
