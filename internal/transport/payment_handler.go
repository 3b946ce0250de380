package transport

import (
	"net/http"

	"electro-shop/internal/domain"
	"electro-shop/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// PaymentHandler serves stored cards under the single /api/payments path.
// Card numbers in every response are masked.
type PaymentHandler struct {
	responder
	payments service.PaymentService
}

func NewPaymentHandler(payments service.PaymentService, logger *zap.Logger, debug bool) *PaymentHandler {
	return &PaymentHandler{
		responder: responder{logger: logger, debug: debug},
		payments:  payments,
	}
}

func (h *PaymentHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/payments", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/user/{userNumber}", h.ListByUser)
		r.Get("/user/{userNumber}/default", h.DefaultByUser)

		r.Get("/{id}", h.Get)
		r.Patch("/{id}", h.Update)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
		r.Post("/{id}/default", h.SetDefault)
	})
}

func (h *PaymentHandler) List(w http.ResponseWriter, r *http.Request) {
	payments, err := h.payments.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, payments)
}

func (h *PaymentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	payment, err := h.payments.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, payment)
}

func (h *PaymentHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	userNumber, ok := idParam(w, r, "userNumber")
	if !ok {
		return
	}
	payments, err := h.payments.ListByUser(r.Context(), userNumber)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, payments)
}

// DefaultByUser answers the default card, or null when there is none.
func (h *PaymentHandler) DefaultByUser(w http.ResponseWriter, r *http.Request) {
	userNumber, ok := idParam(w, r, "userNumber")
	if !ok {
		return
	}
	payment, err := h.payments.DefaultByUser(r.Context(), userNumber)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, payment)
}

func (h *PaymentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.PaymentInput
	if !h.decode(w, r, &req) {
		return
	}
	payment, err := h.payments.Create(r.Context(), &req)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.logger.Info("Payment method added",
		zap.Int64("payment_id", payment.PaymentID),
		zap.Int64("user_number", payment.UserNumber),
		zap.Bool("default", payment.IsDefault == 1),
	)
	h.created(w, payment)
}

func (h *PaymentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var req domain.PaymentInput
	if !h.decode(w, r, &req) {
		return
	}
	payment, err := h.payments.Update(r.Context(), id, &req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, payment)
}

// Delete soft-deletes the card; a deleted default is replaced by the
// user's newest remaining card.
func (h *PaymentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.payments.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	h.deleted(w)
}

func (h *PaymentHandler) SetDefault(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	payment, err := h.payments.SetDefault(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, payment)
}
