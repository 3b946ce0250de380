package transport

import (
	"context"
	"net/http"

	"electro-shop/internal/domain"
	"electro-shop/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type OrderHandler struct {
	responder
	orders service.OrderService
}

func NewOrderHandler(orders service.OrderService, logger *zap.Logger, debug bool) *OrderHandler {
	return &OrderHandler{
		responder: responder{logger: logger, debug: debug},
		orders:    orders,
	}
}

func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/orders", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/user/{userNumber}/open", h.OpenByUser)
		r.Get("/user/{userNumber}/closed", h.ClosedByUser)

		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Patch("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)

		r.Post("/{id}/order", h.Place)
		r.Post("/{id}/cancel", h.Cancel)
		r.Post("/{id}/deliver", h.Deliver)
	})
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, orders)
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	order, err := h.orders.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, order)
}

func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.OrderInput
	if !h.decode(w, r, &req) {
		return
	}
	order, err := h.orders.Create(r.Context(), &req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.created(w, order)
}

func (h *OrderHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var req domain.OrderInput
	if !h.decode(w, r, &req) {
		return
	}
	order, err := h.orders.Update(r.Context(), id, &req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, order)
}

func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.orders.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	h.deleted(w)
}

// OpenByUser answers the cart, or null when the user has none.
func (h *OrderHandler) OpenByUser(w http.ResponseWriter, r *http.Request) {
	userNumber, ok := idParam(w, r, "userNumber")
	if !ok {
		return
	}
	order, err := h.orders.OpenByUser(r.Context(), userNumber)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, order)
}

func (h *OrderHandler) ClosedByUser(w http.ResponseWriter, r *http.Request) {
	userNumber, ok := idParam(w, r, "userNumber")
	if !ok {
		return
	}
	orders, err := h.orders.ClosedByUser(r.Context(), userNumber)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, orders)
}

// Place answers {ordered, newOpen}.
func (h *OrderHandler) Place(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	placed, err := h.orders.Place(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.logger.Info("Order placed",
		zap.Int64("order_number", placed.Ordered.OrderNumber),
		zap.Int64("user_number", placed.Ordered.UserNumber),
		zap.Int64("new_cart", placed.NewOpen.OrderNumber),
	)
	h.ok(w, placed)
}

func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.orders.Cancel)
}

func (h *OrderHandler) Deliver(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.orders.Deliver)
}

func (h *OrderHandler) transition(w http.ResponseWriter, r *http.Request, apply func(ctx context.Context, orderNumber int64) (*domain.Order, error)) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	order, err := apply(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.logger.Info("Order status changed",
		zap.Int64("order_number", order.OrderNumber),
		zap.String("status", string(order.OrderStatus)),
	)
	h.ok(w, order)
}
