package handlers

import (
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ecommerce-backend/internal/application"
	"github.com/oksasatya/go-ecommerce-backend/internal/domain/entity"
	"github.com/oksasatya/go-ecommerce-backend/internal/interface/middleware"
	"github.com/oksasatya/go-ecommerce-backend/pkg/helpers"
	"github.com/oksasatya/go-ecommerce-backend/pkg/response"
)

// maxUploadBytes caps a product form including its images.
const maxUploadBytes = 64 << 20

type ProductHandler struct {
	Svc    *application.ProductService
	Logger *logrus.Logger
}

func NewProductHandler(svc *application.ProductService, logger *logrus.Logger) *ProductHandler {
	return &ProductHandler{Svc: svc, Logger: logger}
}

type productResponse struct {
	ID          string    `json:"_id"`
	Name        string    `json:"name"`
	Price       float64   `json:"price"`
	Colors      []string  `json:"colors"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	AvailableOn time.Time `json:"availableOn"`
	Images      []string  `json:"images"`
	Stock       int       `json:"stock"`
	User        string    `json:"user"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func toProductResponse(p *entity.Product) productResponse {
	return productResponse{
		ID:          p.ID,
		Name:        p.Name,
		Price:       p.Price,
		Colors:      p.Colors,
		Description: p.Description,
		Category:    p.Category,
		AvailableOn: p.AvailableOn,
		Images:      p.Images,
		Stock:       p.Stock,
		User:        p.CreatedBy,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func (h *ProductHandler) fail(c *gin.Context, err error, op string) {
	if e := application.AsError(err); e != nil && e.HTTPStatus() < http.StatusInternalServerError {
		response.Error[any](c, e.HTTPStatus(), e.Message, nil)
		return
	}
	helpers.LogError(h.Logger, "product operation failed", err, logrus.Fields{"op": op, "request_id": c.GetString("request_id")})
	response.Error[any](c, http.StatusInternalServerError, "internal server error", nil)
}

// parseColors accepts a JSON array string or repeated form fields.
func parseColors(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	if len(values) == 1 && strings.HasPrefix(strings.TrimSpace(values[0]), "[") {
		var out []string
		if err := json.Unmarshal([]byte(values[0]), &out); err == nil {
			return out
		}
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

// bindProduct reads the multipart form. Absent fields stay nil. The returned
// cleanup closes any opened files.
func bindProduct(c *gin.Context) (application.ProductInput, func(), string) {
	var in application.ProductInput
	noop := func() {}
	form, err := c.MultipartForm()
	if err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return in, noop, "invalid multipart form"
	}
	if form == nil {
		if err := c.Request.ParseForm(); err != nil {
			return in, noop, "invalid form"
		}
		form = &multipart.Form{Value: c.Request.PostForm}
	}
	first := func(k string) (string, bool) {
		v, ok := form.Value[k]
		if !ok || len(v) == 0 {
			return "", false
		}
		return v[0], true
	}

	if v, ok := first("name"); ok {
		in.Name = &v
	}
	if v, ok := first("price"); ok {
		price, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return in, noop, "Please enter product price"
		}
		in.Price = &price
	}
	if v, ok := form.Value["colors"]; ok {
		in.Colors = parseColors(v)
	}
	if v, ok := first("description"); ok {
		in.Description = &v
	}
	if v, ok := first("category"); ok {
		in.Category = &v
	}
	if v, ok := first("availableOn"); ok {
		t, err := parseDate(strings.TrimSpace(v))
		if err != nil {
			return in, noop, "Please enter product availability date"
		}
		in.AvailableOn = &t
	}
	if v, ok := first("stock"); ok {
		stock, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return in, noop, "Product stock must be a whole number"
		}
		in.Stock = &stock
	}

	var files []multipart.File
	cleanup := func() {
		for _, f := range files {
			_ = f.Close()
		}
	}
	for _, fh := range form.File["images"] {
		f, err := fh.Open()
		if err != nil {
			cleanup()
			return in, noop, "invalid image upload"
		}
		files = append(files, f)
		in.Images = append(in.Images, application.ImageUpload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Body:        f,
		})
	}
	return in, cleanup, ""
}

// List GET /api/v1/products
func (h *ProductHandler) List(c *gin.Context) {
	items, err := h.Svc.List(c.Request.Context())
	if err != nil {
		h.fail(c, err, "list_products")
		return
	}
	out := make([]productResponse, 0, len(items))
	for i := range items {
		out = append(out, toProductResponse(&items[i]))
	}
	response.Success(c, http.StatusOK, out, "products", map[string]any{"count": len(out)})
}

// Get GET /api/v1/products/:id
func (h *ProductHandler) Get(c *gin.Context) {
	p, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err, "get_product")
		return
	}
	response.Success(c, http.StatusOK, toProductResponse(p), "product", nil)
}

// Create POST /api/v1/products (admin)
func (h *ProductHandler) Create(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)
	in, cleanup, msg := bindProduct(c)
	defer cleanup()
	if msg != "" {
		response.Error[any](c, http.StatusBadRequest, msg, nil)
		return
	}
	var createdBy string
	if u := middleware.CurrentUser(c); u != nil {
		createdBy = u.ID
	}
	p, err := h.Svc.Create(c.Request.Context(), createdBy, in)
	if err != nil {
		h.fail(c, err, "create_product")
		return
	}
	response.Success(c, http.StatusCreated, toProductResponse(p), "product created", nil)
}

// Update PUT /api/v1/products/:id (admin)
func (h *ProductHandler) Update(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)
	in, cleanup, msg := bindProduct(c)
	defer cleanup()
	if msg != "" {
		response.Error[any](c, http.StatusBadRequest, msg, nil)
		return
	}
	p, err := h.Svc.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		h.fail(c, err, "update_product")
		return
	}
	response.Success(c, http.StatusOK, toProductResponse(p), "product updated", nil)
}

// Delete DELETE /api/v1/products/:id (admin)
func (h *ProductHandler) Delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err, "delete_product")
		return
	}
	response.Success[any](c, http.StatusOK, map[string]any{"deleted": true}, "product deleted", nil)
}
