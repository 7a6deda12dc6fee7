package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"techhub/internal/domain"
	"techhub/internal/log"
	"techhub/internal/services"
)

type CartHandler struct {
	Cart *services.CartService
}

// Add serves POST /cart with a signed quantity delta and answers with the
// full cart snapshot.
func (h *CartHandler) Add(c *fiber.Ctx) error {
	sid := ensureSID(c)

	var req domain.CartMutation
	if err := c.BodyParser(&req); err != nil {
		return reject(c, fiber.StatusBadRequest, "validation.fail", map[string]any{"field": "body"}, "invalid_request", "invalid JSON body")
	}

	cart, err := h.Cart.Add(sid, req.ProductID, req.Quantity)
	switch {
	case errors.Is(err, services.ErrInvalidQuantity):
		return reject(c, fiber.StatusBadRequest, "validation.fail", map[string]any{"field": "quantity", "value": req.Quantity}, "invalid_quantity", err.Error())
	case errors.Is(err, services.ErrProductNotFound):
		return reject(c, fiber.StatusNotFound, "validation.fail", map[string]any{"field": "productId", "value": req.ProductID}, "not_found", err.Error())
	case err != nil:
		log.Error(c, "cart.add.error", err, nil)
		return respondError(c, fiber.StatusInternalServerError, "internal_error", "could not update cart")
	}
	log.Info(c, "cart.add", map[string]any{"product_id": req.ProductID, "delta": req.Quantity, "total_items": cart.TotalItems})
	return c.JSON(cart)
}

// View serves GET /cart.
func (h *CartHandler) View(c *fiber.Ctx) error {
	cart, err := h.Cart.View(ensureSID(c))
	if err != nil {
		log.Error(c, "cart.view.error", err, nil)
		return respondError(c, fiber.StatusInternalServerError, "internal_error", "could not load cart")
	}
	return c.JSON(cart)
}
