package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/diewo77/pos-backoffice/internal/httpx"
	"github.com/diewo77/pos-backoffice/internal/models"
	"github.com/diewo77/pos-backoffice/internal/store"
	"github.com/diewo77/pos-backoffice/internal/validation"
	"github.com/gorilla/mux"
)

type CustomerHandler struct {
	Customers *store.CustomersRepository
}

func NewCustomerHandler(customers *store.CustomersRepository) *CustomerHandler {
	return &CustomerHandler{Customers: customers}
}

func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	customers, err := h.Customers.List()
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_customers", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": customers, "total": len(customers)})
}

type customerInput struct {
	Name    string `json:"name"`
	DUI     string `json:"dui"`
	NIT     string `json:"nit"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

func decodeCustomerInput(r *http.Request) (customerInput, error) {
	var in customerInput
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		err := json.NewDecoder(r.Body).Decode(&in)
		return in, err
	}
	if err := r.ParseForm(); err != nil {
		return in, err
	}
	in.Name = r.FormValue("name")
	in.DUI = r.FormValue("dui")
	in.NIT = r.FormValue("nit")
	in.Email = r.FormValue("email")
	in.Phone = r.FormValue("phone")
	in.Address = r.FormValue("address")
	return in, nil
}

func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	in, err := decodeCustomerInput(r)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_input", nil)
		return
	}
	v := validation.Violations{}
	validation.Required("name", in.Name, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	c := models.Customer{
		Name: strings.TrimSpace(in.Name), DUI: in.DUI, NIT: in.NIT,
		Email: in.Email, Phone: in.Phone, Address: in.Address, Status: 1,
	}
	if err := h.Customers.Create(&c); err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "customer_create_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, c)
}

func (h *CustomerHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	c, err := h.Customers.Get(id)
	if err != nil {
		if errors.Is(err, store.ErrCustomerNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_customer", nil)
		return
	}
	in, err := decodeCustomerInput(r)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_input", nil)
		return
	}
	v := validation.Violations{}
	validation.Required("name", in.Name, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	c.Name = strings.TrimSpace(in.Name)
	c.DUI, c.NIT = in.DUI, in.NIT
	c.Email, c.Phone, c.Address = in.Email, in.Phone, in.Address
	if err := h.Customers.Update(c); err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "customer_update_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *CustomerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	if err := h.Customers.Delete(id); err != nil {
		switch {
		case errors.Is(err, store.ErrCustomerInUse):
			httpx.JSONError(w, http.StatusConflict, "referential_conflict", nil)
		case errors.Is(err, store.ErrCustomerNotFound):
			httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		default:
			httpx.JSONError(w, http.StatusInternalServerError, "delete_failed", nil)
		}
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": id})
}

// pathID extracts the {id} route variable.
func pathID(r *http.Request) uint {
	idStr := mux.Vars(r)["id"]
	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		return 0
	}
	return uint(id)
}
