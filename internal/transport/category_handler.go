package transport

import (
	"net/http"

	"electro-shop/internal/middleware"
	"electro-shop/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CategoryImageMaxBytes bounds the single category image upload.
const CategoryImageMaxBytes = 10 << 20

type CategoryRequest struct {
	CategoryName string `json:"categoryName" validate:"max=100"`
}

type UploadResponse struct {
	Uploaded bool   `json:"uploaded"`
	File     string `json:"file"`
}

type CategoryHandler struct {
	responder
	categories service.CategoryService
}

func NewCategoryHandler(categories service.CategoryService, logger *zap.Logger, debug bool) *CategoryHandler {
	return &CategoryHandler{
		responder:  responder{logger: logger, debug: debug},
		categories: categories,
	}
}

func (h *CategoryHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/categories", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Patch("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
		r.Post("/{id}/image", h.UploadImage)
	})
}

func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, categories)
}

func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	category, err := h.categories.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, category)
}

// Create answers 201 for a new category and 200 with the existing row when
// the normalized name is already taken.
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if !h.decode(w, r, &req) {
		return
	}

	category, created, err := h.categories.Create(r.Context(), req.CategoryName)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if !created {
		h.ok(w, category)
		return
	}
	h.created(w, category)
}

func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var req CategoryRequest
	if !h.decode(w, r, &req) {
		return
	}

	category, err := h.categories.Rename(r.Context(), id, req.CategoryName)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, category)
}

func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.categories.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	h.deleted(w)
}

// UploadImage expects the file in the multipart field "image".
func (h *CategoryHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	if !parseMultipart(w, r, CategoryImageMaxBytes+1<<20) {
		return
	}

	files := r.MultipartForm.File["image"]
	if len(files) == 0 {
		middleware.RespondWithError(w, http.StatusBadRequest, "no image uploaded")
		return
	}

	image, err := h.categories.UploadImage(r.Context(), id, files[0])
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.logger.Info("Category image uploaded",
		zap.Int64("category_number", id),
		zap.String("url", image.URL),
	)
	h.created(w, UploadResponse{Uploaded: true, File: image.URL})
}
