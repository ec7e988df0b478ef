package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/diewo77/pos-backoffice/internal/httpx"
	"github.com/diewo77/pos-backoffice/internal/models"
	"github.com/diewo77/pos-backoffice/internal/store"
	"github.com/diewo77/pos-backoffice/internal/validation"
	"github.com/shopspring/decimal"
)

// allowed image extensions for product uploads
var allowedImageExt = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".gif": true}

type ProductHandler struct {
	Products  *store.ProductsRepository
	UploadDir string
}

func NewProductHandler(products *store.ProductsRepository, uploadDir string) *ProductHandler {
	return &ProductHandler{Products: products, UploadDir: uploadDir}
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.Products.List()
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_products", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": products, "total": len(products)})
}

type productInput struct {
	Code    string
	Name    string
	Price   decimal.Decimal
	Cost    decimal.Decimal
	TaxRate *decimal.Decimal
	Qty     *decimal.Decimal
}

func parseOptionalDecimal(raw string) (*decimal.Decimal, bool) {
	if strings.TrimSpace(raw) == "" {
		return nil, true
	}
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return nil, false
	}
	return &d, true
}

func decodeProductInput(r *http.Request) (productInput, error) {
	var in productInput
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var body struct {
			Code    string           `json:"code"`
			Name    string           `json:"name"`
			Price   decimal.Decimal  `json:"price"`
			Cost    decimal.Decimal  `json:"cost"`
			TaxRate *decimal.Decimal `json:"tax_rate"`
			Qty     *decimal.Decimal `json:"qty"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return in, err
		}
		in = productInput{Code: body.Code, Name: body.Name, Price: body.Price, Cost: body.Cost, TaxRate: body.TaxRate, Qty: body.Qty}
		return in, nil
	}
	// multipart (image upload) or urlencoded form
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(5 << 20); err != nil {
			return in, err
		}
	} else if err := r.ParseForm(); err != nil {
		return in, err
	}
	in.Code = r.FormValue("code")
	in.Name = r.FormValue("name")
	for _, f := range []struct {
		key string
		dst *decimal.Decimal
	}{{"price", &in.Price}, {"cost", &in.Cost}} {
		if d, ok := parseOptionalDecimal(r.FormValue(f.key)); ok && d != nil {
			*f.dst = *d
		}
	}
	if d, ok := parseOptionalDecimal(r.FormValue("tax_rate")); ok {
		in.TaxRate = d
	}
	if d, ok := parseOptionalDecimal(r.FormValue("qty")); ok {
		in.Qty = d
	}
	return in, nil
}

// saveImage stores an uploaded product image and returns its filename.
// Content validation beyond the extension allow-list is out of scope.
func (h *ProductHandler) saveImage(r *http.Request) (string, error) {
	file, header, err := r.FormFile("image")
	if err != nil {
		return "", nil // no image submitted
	}
	defer file.Close()
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedImageExt[ext] {
		return "", errors.New("unsupported image type")
	}
	if err := os.MkdirAll(h.UploadDir, 0o755); err != nil {
		return "", err
	}
	name := filepath.Base(header.Filename)
	dst, err := os.Create(filepath.Join(h.UploadDir, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()
	if _, err := io.Copy(dst, file); err != nil {
		return "", err
	}
	return name, nil
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	in, err := decodeProductInput(r)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_input", nil)
		return
	}
	v := validation.Violations{}
	validation.Required("name", in.Name, v)
	validation.PositiveDecimal("price", in.Price, v)
	validation.NonNegativeDecimal("cost", in.Cost, v)
	taxRate := decimal.Zero
	if in.TaxRate != nil {
		taxRate = *in.TaxRate
	}
	validation.RangeDecimal("tax_rate", taxRate, decimal.Zero, decimal.NewFromInt(100), v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	imagePath := ""
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		imagePath, err = h.saveImage(r)
		if err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_image", nil)
			return
		}
	}
	p := models.Product{
		Code: in.Code, Name: strings.TrimSpace(in.Name),
		Price: in.Price, Cost: in.Cost, TaxRate: taxRate,
		ImagePath: imagePath, Status: 1,
	}
	initialQty := decimal.Zero
	if in.Qty != nil {
		initialQty = *in.Qty
	}
	if err := h.Products.Create(&p, initialQty); err != nil {
		if errors.Is(err, store.ErrDuplicateCode) {
			httpx.JSONError(w, http.StatusConflict, "code_already_exists", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "product_create_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, p)
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	p, err := h.Products.Get(id)
	if err != nil {
		if errors.Is(err, store.ErrProductNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_product", nil)
		return
	}
	in, err := decodeProductInput(r)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_input", nil)
		return
	}
	if strings.TrimSpace(in.Code) != "" {
		p.Code = strings.ToUpper(strings.TrimSpace(in.Code))
	}
	if strings.TrimSpace(in.Name) != "" {
		p.Name = strings.TrimSpace(in.Name)
	}
	if in.Price.Sign() > 0 {
		p.Price = in.Price
	}
	if in.Cost.Sign() > 0 {
		p.Cost = in.Cost
	}
	if in.TaxRate != nil && in.TaxRate.Sign() >= 0 && !in.TaxRate.GreaterThan(decimal.NewFromInt(100)) {
		p.TaxRate = *in.TaxRate
	}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if img, err := h.saveImage(r); err == nil && img != "" {
			p.ImagePath = img
		}
	}
	p.StockItems = nil // stock is written separately below
	if err := h.Products.Update(p, in.Qty); err != nil {
		if errors.Is(err, store.ErrDuplicateCode) {
			httpx.JSONError(w, http.StatusConflict, "code_already_exists", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "product_update_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	if err := h.Products.Delete(id); err != nil {
		switch {
		case errors.Is(err, store.ErrProductInUse):
			httpx.JSONError(w, http.StatusConflict, "referential_conflict", nil)
		case errors.Is(err, store.ErrProductNotFound):
			httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		default:
			httpx.JSONError(w, http.StatusInternalServerError, "delete_failed", nil)
		}
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": id})
}
