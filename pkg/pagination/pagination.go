package pagination

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Params holds pagination parameters extracted from a request.
type Params struct {
	Page     int
	PageSize int
}

// FromContext extracts pagination parameters from the echo context.
// Both page/pageSize and limit/offset query parameters are accepted;
// page/pageSize wins when present.
func FromContext(c echo.Context) Params {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page <= 0 {
		page = 1
	}

	size, _ := strconv.Atoi(c.QueryParam("pageSize"))
	if size <= 0 {
		size, _ = strconv.Atoi(c.QueryParam("limit"))
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}

	if page == 1 {
		if offset, _ := strconv.Atoi(c.QueryParam("offset")); offset > 0 {
			page = offset/size + 1
		}
	}

	return Params{Page: page, PageSize: size}
}

// Limit returns the SQL LIMIT value for the page.
func (p Params) Limit() int { return p.PageSize }

// Offset returns the SQL OFFSET value for the page.
func (p Params) Offset() int { return (p.Page - 1) * p.PageSize }

// TotalPages returns the number of pages needed for total items.
func (p Params) TotalPages(total int) int {
	if total <= 0 {
		return 0
	}
	pages := total / p.PageSize
	if total%p.PageSize != 0 {
		pages++
	}
	return pages
}

// Response wraps a paginated API response.
type Response struct {
	Data       interface{} `json:"data"`
	Total      int         `json:"total"`
	TotalPages int         `json:"totalPages"`
	Page       int         `json:"currentPage"`
	PageSize   int         `json:"pageSize"`
	HasMore    bool        `json:"has_more"`
}

func NewResponse(data interface{}, total int, p Params) *Response {
	return &Response{
		Data:       data,
		Total:      total,
		TotalPages: p.TotalPages(total),
		Page:       p.Page,
		PageSize:   p.PageSize,
		HasMore:    p.Offset()+p.PageSize < total,
	}
}
