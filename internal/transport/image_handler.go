package transport

import (
	"net/http"

	"electro-shop/internal/domain"
	"electro-shop/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// DeletedResponse reports how many rows a bulk delete removed.
type DeletedResponse struct {
	OK      bool  `json:"ok"`
	Deleted int64 `json:"deleted"`
}

type ImageHandler struct {
	responder
	images service.ImageService
}

func NewImageHandler(images service.ImageService, logger *zap.Logger, debug bool) *ImageHandler {
	return &ImageHandler{
		responder: responder{logger: logger, debug: debug},
		images:    images,
	}
}

func (h *ImageHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/product-images", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/by-product/{productNumber}", h.ListByProduct)
		r.Delete("/by-product/{productNumber}", h.DeleteByProduct)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Patch("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}

func (h *ImageHandler) List(w http.ResponseWriter, r *http.Request) {
	images, err := h.images.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, images)
}

func (h *ImageHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	image, err := h.images.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, image)
}

func (h *ImageHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.ProductImageInput
	if !h.decode(w, r, &req) {
		return
	}
	image, err := h.images.Create(r.Context(), &req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.created(w, image)
}

func (h *ImageHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var req domain.ProductImageInput
	if !h.decode(w, r, &req) {
		return
	}
	image, err := h.images.Update(r.Context(), id, &req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, image)
}

func (h *ImageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.images.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	h.deleted(w)
}

func (h *ImageHandler) ListByProduct(w http.ResponseWriter, r *http.Request) {
	productNumber, ok := idParam(w, r, "productNumber")
	if !ok {
		return
	}
	images, err := h.images.ListByProduct(r.Context(), productNumber)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, images)
}

func (h *ImageHandler) DeleteByProduct(w http.ResponseWriter, r *http.Request) {
	productNumber, ok := idParam(w, r, "productNumber")
	if !ok {
		return
	}
	n, err := h.images.DeleteByProduct(r.Context(), productNumber)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, DeletedResponse{OK: true, Deleted: n})
}
