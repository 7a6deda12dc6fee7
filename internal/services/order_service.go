package services

import (
	"database/sql"
	"errors"
	"math/rand"
	"sync"

	"github.com/google/uuid"

	"techhub/internal/repos"
)

type OrderService struct {
	Carts  *repos.CartRepo
	Orders *repos.OrderRepo

	// FailureRate is the probability in [0,1] that a placement is rejected.
	FailureRate float64

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewOrderService(carts *repos.CartRepo, orders *repos.OrderRepo, failureRate float64, seed int64) *OrderService {
	return &OrderService{Carts: carts, Orders: orders, FailureRate: failureRate, rnd: rand.New(rand.NewSource(seed))}
}

func (s *OrderService) reject() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rnd.Float64() < s.FailureRate
}

// Placement describes an accepted order.
type Placement struct {
	OrderID string
	Replay  bool // the idempotency key had already been accepted
}

// Place turns the session cart into an order. A key that was already
// accepted returns the original order without side effects. Rejections
// leave the cart untouched so the client can retry.
func (s *OrderService) Place(sessionID, key, paymentMethod, deliveryTime string) (Placement, error) {
	if key != "" {
		id, err := s.Orders.FindByKey(key)
		if err == nil {
			return Placement{OrderID: id, Replay: true}, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return Placement{}, err
		}
	}

	if s.reject() {
		return Placement{}, ErrOrderRejected
	}

	items, err := s.Carts.Items(sessionID)
	if err != nil {
		return Placement{}, err
	}
	if len(items) == 0 {
		return Placement{}, ErrEmptyCart
	}

	row := repos.OrderRow{
		ID:             uuid.NewString(),
		SessionID:      sessionID,
		IdempotencyKey: key,
		PaymentMethod:  paymentMethod,
		DeliveryTime:   deliveryTime,
	}
	lines := make([]repos.OrderItemRow, 0, len(items))
	for _, it := range items {
		row.Total = row.Total.Add(it.LineTotal())
		lines = append(lines, repos.OrderItemRow{ProductID: it.Product.ID, Qty: it.Quantity, Price: it.Product.Price})
	}
	if err := s.Orders.Record(row, lines); err != nil {
		return Placement{}, err
	}
	return Placement{OrderID: row.ID}, nil
}
