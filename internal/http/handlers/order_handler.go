package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"techhub/internal/domain"
	applog "techhub/internal/log"
	"techhub/internal/services"
)

type OrderHandler struct {
	Order *services.OrderService
}

// Place serves POST /orders. The body is optional; the Idempotency-Key
// header makes retries of one logical order safe.
func (h *OrderHandler) Place(c *fiber.Ctx) error {
	sid := ensureSID(c)
	key := c.Get("Idempotency-Key")

	var req domain.OrderRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return reject(c, fiber.StatusBadRequest, "validation.fail", map[string]any{"field": "body"}, "invalid_request", "invalid JSON body")
		}
	}

	p, err := h.Order.Place(sid, key, string(req.PaymentMethod), string(req.Shipping.DeliveryTime))
	switch {
	case errors.Is(err, services.ErrOrderRejected):
		return reject(c, fiber.StatusInternalServerError, "order.place.rejected", map[string]any{"idempotency_key": key}, "order_rejected", "Order could not be processed")
	case errors.Is(err, services.ErrEmptyCart):
		return reject(c, fiber.StatusConflict, "order.place.fail", map[string]any{"error": err.Error()}, "empty_cart", err.Error())
	case err != nil:
		applog.Error(c, "order.place.error", err, nil)
		return respondError(c, fiber.StatusInternalServerError, "internal_error", "could not place order")
	}

	applog.Audit(c, "order.place", map[string]any{
		"order_id":        p.OrderID,
		"replay":          p.Replay,
		"idempotency_key": key,
		"client_total":    req.Total.String(),
	})
	status := fiber.StatusCreated
	if p.Replay {
		status = fiber.StatusOK
	}
	return c.Status(status).JSON(domain.OrderReceipt{OrderID: p.OrderID})
}
