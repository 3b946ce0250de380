package transport

import (
	"net/http"

	"electro-shop/internal/domain"
	"electro-shop/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProductImageMaxBytes bounds each file of a product image upload.
const ProductImageMaxBytes = 20 << 20

type BarcodeRequest struct {
	Barcode string `json:"barcode" validate:"required,max=64"`
}

type PricesRequest struct {
	BuyingPrice  *decimal.Decimal `json:"buyingPrice" validate:"required,gte=0"`
	SellingPrice *decimal.Decimal `json:"sellingPrice" validate:"required,gte=0"`
}

type StockRequest struct {
	InStock *int `json:"inStock" validate:"required,gte=0"`
}

type DescriptionsRequest struct {
	Descriptions []domain.DescriptionInput `json:"descriptions" validate:"required,min=1,dive"`
}

type ProductHandler struct {
	responder
	products service.ProductService
}

func NewProductHandler(products service.ProductService, logger *zap.Logger, debug bool) *ProductHandler {
	return &ProductHandler{
		responder: responder{logger: logger, debug: debug},
		products:  products,
	}
}

func (h *ProductHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/full", h.ListFull)
		r.Get("/brand/{brand}", h.ListByBrand)
		r.Get("/category/{categoryNumber}", h.ListByCategory)

		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Patch("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)

		r.Patch("/{id}/barcode", h.UpdateBarcode)
		r.Patch("/{id}/prices", h.UpdatePrices)
		r.Patch("/{id}/stock", h.UpdateStock)
		r.Post("/{id}/stock/decrement", h.DecrementStock)

		r.Get("/{id}/images", h.ListImages)
		r.Post("/{id}/images", h.UploadImages)
		r.Get("/{id}/descriptions", h.ListDescriptions)
		r.Post("/{id}/descriptions", h.AddDescriptions)
	})
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, products)
}

func (h *ProductHandler) ListFull(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.ListFull(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, products)
}

func (h *ProductHandler) ListByBrand(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.ListByBrand(r.Context(), chi.URLParam(r, "brand"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, products)
}

func (h *ProductHandler) ListByCategory(w http.ResponseWriter, r *http.Request) {
	categoryNumber, ok := idParam(w, r, "categoryNumber")
	if !ok {
		return
	}
	products, err := h.products.ListByCategory(r.Context(), categoryNumber)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, products)
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	product, err := h.products.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, product)
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.ProductInput
	if !h.decode(w, r, &req) {
		return
	}

	product, err := h.products.Create(r.Context(), &req)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.logger.Info("Product created",
		zap.Int64("product_number", product.ProductNumber),
		zap.Int("descriptions", len(req.Descriptions)),
	)
	h.created(w, product)
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var req domain.ProductInput
	if !h.decode(w, r, &req) {
		return
	}

	product, err := h.products.Update(r.Context(), id, &req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, product)
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.products.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	h.deleted(w)
}

func (h *ProductHandler) UpdateBarcode(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var req BarcodeRequest
	if !h.decode(w, r, &req) {
		return
	}

	product, err := h.products.UpdateBarcode(r.Context(), id, req.Barcode)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, product)
}

func (h *ProductHandler) UpdatePrices(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var req PricesRequest
	if !h.decode(w, r, &req) {
		return
	}

	product, err := h.products.UpdatePrices(r.Context(), id, req.BuyingPrice, req.SellingPrice)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, product)
}

func (h *ProductHandler) UpdateStock(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var req StockRequest
	if !h.decode(w, r, &req) {
		return
	}

	product, err := h.products.UpdateStock(r.Context(), id, req.InStock)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, product)
}

// DecrementStock answers 409 when the product is sold out.
func (h *ProductHandler) DecrementStock(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	product, err := h.products.DecrementStock(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, product)
}

func (h *ProductHandler) ListImages(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	images, err := h.products.ListImages(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, images)
}

// UploadImages expects up to 8 files in the multipart field "images" and an
// optional "categoryName" field choosing the storage directory.
func (h *ProductHandler) UploadImages(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	if !parseMultipart(w, r, service.MaxProductImages*ProductImageMaxBytes+1<<20) {
		return
	}

	images, err := h.products.UploadImages(r.Context(), id, r.MultipartForm.File["images"], r.FormValue("categoryName"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.logger.Info("Product images uploaded",
		zap.Int64("product_number", id),
		zap.Int("count", len(images)),
	)
	h.created(w, images)
}

func (h *ProductHandler) ListDescriptions(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	descriptions, err := h.products.ListDescriptions(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, descriptions)
}

func (h *ProductHandler) AddDescriptions(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var req DescriptionsRequest
	if !h.decode(w, r, &req) {
		return
	}

	descriptions, err := h.products.AddDescriptions(r.Context(), id, req.Descriptions)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.created(w, descriptions)
}
