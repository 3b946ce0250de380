package transport

import (
	"net/http"

	"electro-shop/internal/domain"
	"electro-shop/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type CreateDescriptionsRequest struct {
	ProductNumber int64                     `json:"productNumber" validate:"required,gt=0"`
	Descriptions  []domain.DescriptionInput `json:"descriptions" validate:"required,min=1,dive"`
}

type DescriptionHandler struct {
	responder
	descriptions service.DescriptionService
}

func NewDescriptionHandler(descriptions service.DescriptionService, logger *zap.Logger, debug bool) *DescriptionHandler {
	return &DescriptionHandler{
		responder:    responder{logger: logger, debug: debug},
		descriptions: descriptions,
	}
}

func (h *DescriptionHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/descriptions", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)

		for _, prefix := range []string{"/by-product", "/byProduct"} {
			r.Get(prefix+"/{productNumber}", h.ListByProduct)
			r.Delete(prefix+"/{productNumber}", h.DeleteByProduct)
		}

		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Patch("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}

func (h *DescriptionHandler) List(w http.ResponseWriter, r *http.Request) {
	descriptions, err := h.descriptions.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, descriptions)
}

func (h *DescriptionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	description, err := h.descriptions.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, description)
}

// Create inserts every description of the request in one transaction.
func (h *DescriptionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateDescriptionsRequest
	if !h.decode(w, r, &req) {
		return
	}
	descriptions, err := h.descriptions.CreateBatch(r.Context(), req.ProductNumber, req.Descriptions)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.created(w, descriptions)
}

func (h *DescriptionHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var req domain.DescriptionPatch
	if !h.decode(w, r, &req) {
		return
	}
	description, err := h.descriptions.Update(r.Context(), id, &req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, description)
}

func (h *DescriptionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.descriptions.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	h.deleted(w)
}

func (h *DescriptionHandler) ListByProduct(w http.ResponseWriter, r *http.Request) {
	productNumber, ok := idParam(w, r, "productNumber")
	if !ok {
		return
	}
	descriptions, err := h.descriptions.ListByProduct(r.Context(), productNumber)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, descriptions)
}

func (h *DescriptionHandler) DeleteByProduct(w http.ResponseWriter, r *http.Request) {
	productNumber, ok := idParam(w, r, "productNumber")
	if !ok {
		return
	}
	n, err := h.descriptions.DeleteByProduct(r.Context(), productNumber)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, DeletedResponse{OK: true, Deleted: n})
}
