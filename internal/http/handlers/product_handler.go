package handlers

import (
	"github.com/gofiber/fiber/v2"

	"techhub/internal/log"
	"techhub/internal/services"
	"techhub/internal/validate"
)

type ProductHandler struct {
	Catalog  *services.CatalogService
	PageSize int
}

// List serves GET /products?q=&category=&page=&limit=.
func (h *ProductHandler) List(c *fiber.Ctx) error {
	q, ok := validate.Q(c.Query("q"))
	if !ok {
		return reject(c, fiber.StatusBadRequest, "validation.fail", map[string]any{"field": "q", "length": len(c.Query("q"))}, "invalid_query", "search text is too long or not valid UTF-8")
	}
	category, ok := validate.Category(c.Query("category"))
	if !ok {
		return reject(c, fiber.StatusBadRequest, "validation.fail", map[string]any{"field": "category"}, "invalid_category", "invalid category")
	}
	def := h.PageSize
	if def <= 0 {
		def = 10
	}
	page := validate.Int(c.Query("page"), 0)
	limit := validate.Limit(c.Query("limit"), def)

	res, err := h.Catalog.Search(q, category, page, limit)
	if err != nil {
		log.Error(c, "products.search.error", err, nil)
		return respondError(c, fiber.StatusInternalServerError, "internal_error", "could not load products")
	}
	return c.JSON(res)
}
