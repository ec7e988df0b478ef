package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/diewo77/pos-backoffice/internal/auth"
	"github.com/diewo77/pos-backoffice/internal/httpx"
	"github.com/diewo77/pos-backoffice/internal/pdf"
	"github.com/diewo77/pos-backoffice/internal/sales"
	"github.com/diewo77/pos-backoffice/internal/store"
)

type SaleHandler struct {
	Svc   *sales.Service
	Sales *store.SalesRepository
	Users *store.UsersRepository
}

func NewSaleHandler(svc *sales.Service, salesRepo *store.SalesRepository, users *store.UsersRepository) *SaleHandler {
	return &SaleHandler{Svc: svc, Sales: salesRepo, Users: users}
}

// List: GET /sales – paginated JSON
func (h *SaleHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	offset := 0
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 1 {
			offset = (n - 1) * limit
		}
	}
	items, total, err := h.Sales.List(limit, offset)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_sales", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": items, "total": total, "limit": limit, "offset": offset})
}

// Create: POST /sales – JSON body or form arrays (product_id / qty pairs).
// Quantities travel as raw text all the way to the coordinator, which owns
// the parse-and-filter policy.
func (h *SaleHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok || uid == 0 {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	in := sales.CreateSaleInput{UserID: uid}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var body struct {
			CustomerID string `json:"customer_id"`
			PaidWith   string `json:"paid_with"`
			Items      []struct {
				ProductID string `json:"product_id"`
				Qty       string `json:"qty"`
			} `json:"items"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
			return
		}
		in.CustomerID = body.CustomerID
		in.PaidWith = body.PaidWith
		for _, it := range body.Items {
			in.Lines = append(in.Lines, sales.LineInput{ProductID: it.ProductID, Quantity: it.Qty})
		}
	} else {
		if err := r.ParseForm(); err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
			return
		}
		in.CustomerID = r.Form.Get("customer_id")
		in.PaidWith = r.Form.Get("paid_with")
		ids := r.Form["product_id"]
		qtys := r.Form["qty"]
		for i, pid := range ids {
			qty := ""
			if i < len(qtys) {
				qty = qtys[i]
			}
			in.Lines = append(in.Lines, sales.LineInput{ProductID: pid, Quantity: qty})
		}
	}

	sale, err := h.Svc.Create(in)
	if err != nil {
		switch {
		case errors.Is(err, sales.ErrInvalidCustomer):
			httpx.JSONError(w, http.StatusBadRequest, "invalid_customer", nil)
		case errors.Is(err, sales.ErrEmptySale):
			httpx.JSONError(w, http.StatusBadRequest, "empty_sale", nil)
		case errors.Is(err, sales.ErrInvalidLine):
			httpx.JSONError(w, http.StatusBadRequest, "invalid_line", nil)
		default:
			httpx.JSONError(w, http.StatusInternalServerError, "sale_create_failed", nil)
		}
		return
	}
	httpx.JSON(w, http.StatusCreated, sale)
}

// Detail: GET /sales/{id}
func (h *SaleHandler) Detail(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	sale, err := h.Sales.Get(id)
	if err != nil {
		if errors.Is(err, store.ErrSaleNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_sale", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, sale)
}

// Delete: DELETE /sales/{id}
func (h *SaleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	if err := h.Svc.Delete(id); err != nil {
		if errors.Is(err, sales.ErrSaleNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "delete_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": id})
}

// PDF: GET /sales/{id}/pdf – renders the persisted values only; the document
// layer performs no arithmetic.
func (h *SaleHandler) PDF(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	sale, err := h.Sales.Get(id)
	if err != nil {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	issuedBy := ""
	if u, err := h.Users.Get(sale.UserID); err == nil {
		issuedBy = u.Username
	}
	doc := pdf.SaleDocument{
		Number:       sale.Number,
		Date:         sale.CreatedAt.Format("2006-01-02 15:04"),
		CustomerName: sale.Customer.Name,
		CustomerNIT:  sale.Customer.NIT,
		CustomerDUI:  sale.Customer.DUI,
		IssuedBy:     issuedBy,
		PaidWith:     sale.PaidWith,
		Subtotal:     sale.Subtotal.StringFixed(2),
		TaxTotal:     sale.TaxTotal.StringFixed(2),
		Total:        sale.Total.StringFixed(2),
	}
	for _, it := range sale.Items {
		doc.Lines = append(doc.Lines, pdf.Line{
			Code:     it.Product.Code,
			Name:     it.Product.Name,
			Qty:      it.Qty.String(),
			Price:    it.Price.StringFixed(2),
			Subtotal: it.Subtotal.StringFixed(2),
		})
	}
	data, err := pdf.Render(doc)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "pdf_generation_failed", nil)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=\""+sale.Number+".pdf\"")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
