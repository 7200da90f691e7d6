package transport

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"catalog-api/internal/domain"
	"catalog-api/internal/middleware"
	"catalog-api/internal/repository"
	"catalog-api/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ProductResponse is the serialized form of a product. Category is the
// category's name, timestamps are ISO-8601.
type ProductResponse struct {
	ID         int64    `json:"id"`
	Name       string   `json:"name"`
	Category   *string  `json:"category"`
	SKU        *string  `json:"sku"`
	Price      *float64 `json:"price"`
	Quantity   int      `json:"quantity"`
	CreatedAt  string   `json:"created_at"`
	ModifiedAt *string  `json:"modified_at"`
}

func newProductResponse(p *domain.Product) ProductResponse {
	resp := ProductResponse{
		ID:        p.ID,
		Name:      p.Name,
		Category:  p.CategoryName(),
		SKU:       p.SKU,
		Price:     p.Price,
		Quantity:  p.Quantity,
		CreatedAt: formatTimestamp(p.CreatedAt),
	}
	if p.ModifiedAt != nil {
		modified := formatTimestamp(*p.ModifiedAt)
		resp.ModifiedAt = &modified
	}
	return resp
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// ProductHandler handles HTTP requests for product operations
type ProductHandler struct {
	productService service.ProductService
	logger         *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService service.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		logger:         logger,
	}
}

// RegisterRoutes registers all product routes
func (h *ProductHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)

		r.Route("/{id:[0-9]+}", func(r chi.Router) {
			r.Get("/", h.Get)
			r.Put("/", h.Update)
			r.Delete("/", h.Delete)
		})
	})
}

// List handles listing all products
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.productService.ListProducts(r.Context())
	if err != nil {
		h.logger.Error("Failed to list products", zap.Error(err))
		middleware.RespondError(w, http.StatusInternalServerError, "failed to list products")
		return
	}

	response := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		response = append(response, newProductResponse(p))
	}

	middleware.RespondSuccess(w, http.StatusOK, response)
}

// Get handles fetching a single product
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		middleware.RespondFail(w, http.StatusNotFound, "product not found")
		return
	}

	product, err := h.productService.GetProduct(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondFail(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("Failed to get product", zap.Int64("product_id", id), zap.Error(err))
		middleware.RespondError(w, http.StatusInternalServerError, "failed to get product")
		return
	}

	middleware.RespondSuccess(w, http.StatusOK, newProductResponse(product))
}

// Create handles product creation
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	fields, err := decodeFields(r)
	if err != nil || len(fields) == 0 {
		h.logger.Debug("Received empty product POST data")
		middleware.RespondFail(w, http.StatusBadRequest, "Cannot submit empty product")
		return
	}

	product, err := h.productService.CreateProduct(r.Context(), fields)
	if err != nil {
		h.respondBuildError(w, err)
		return
	}

	h.logger.Info("Product created", zap.Int64("product_id", product.ID), zap.String("name", product.Name))
	middleware.RespondSuccess(w, http.StatusCreated, newProductResponse(product))
}

// Update handles product updates
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		middleware.RespondFail(w, http.StatusNotFound, "product not found")
		return
	}

	fields, err := decodeFields(r)
	if err != nil || len(fields) == 0 {
		h.logger.Debug("Received empty product PUT data", zap.Int64("product_id", id))
		middleware.RespondFail(w, http.StatusBadRequest, "You must specify at least one product property value to update.")
		return
	}

	product, err := h.productService.UpdateProduct(r.Context(), id, fields)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondFail(w, http.StatusNotFound, "product not found")
			return
		}
		h.respondBuildError(w, err)
		return
	}

	h.logger.Info("Product updated", zap.Int64("product_id", product.ID))
	middleware.RespondSuccess(w, http.StatusOK, newProductResponse(product))
}

// Delete handles product deletion
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		middleware.RespondFail(w, http.StatusNotFound, "product not found")
		return
	}

	if err := h.productService.DeleteProduct(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondFail(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("Failed to delete product", zap.Int64("product_id", id), zap.Error(err))
		middleware.RespondError(w, http.StatusInternalServerError, "failed to delete product")
		return
	}

	h.logger.Info("Product deleted", zap.Int64("product_id", id))
	middleware.RespondSuccess(w, http.StatusOK, nil)
}

// respondBuildError translates a builder failure into the matching envelope:
// validation and uniqueness problems are 400 fails, everything else is an
// opaque 500.
func (h *ProductHandler) respondBuildError(w http.ResponseWriter, err error) {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		h.logger.Debug("Product validation failed", zap.Error(verr))
		middleware.RespondFail(w, http.StatusBadRequest, verr.FieldMessages())
		return
	}

	if errors.Is(err, repository.ErrProductNameTaken) || errors.Is(err, repository.ErrCategoryNameTaken) {
		h.logger.Debug("Product unique constraint violation", zap.Error(err))
		middleware.RespondFail(w, http.StatusBadRequest, err.Error())
		return
	}

	h.logger.Error("Failed to build product", zap.Error(err))
	middleware.RespondError(w, http.StatusInternalServerError, "failed to save product")
}

func parseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// decodeFields decodes the request body into a raw field map so the builder
// can distinguish an absent key from an explicit null.
func decodeFields(r *http.Request) (map[string]any, error) {
	var fields map[string]any
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		return nil, err
	}
	return fields, nil
}
