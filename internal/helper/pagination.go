package helper

import "github.com/gofiber/fiber/v2"

type Pagination struct {
	Page   int
	Limit  int
	Offset int
}

// ParsePagination - page default 1, limit default 10 (maks 100).
func ParsePagination(c *fiber.Ctx) Pagination {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 10)

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	return Pagination{Page: page, Limit: limit, Offset: (page - 1) * limit}
}

func (p Pagination) Meta(totalData int) fiber.Map {
	return fiber.Map{
		"page":        p.Page,
		"limit":       p.Limit,
		"total_data":  totalData,
		"total_pages": (totalData + p.Limit - 1) / p.Limit,
	}
}
