package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/diewo77/pos-backoffice/internal/auth"
	"github.com/diewo77/pos-backoffice/internal/models"
	"github.com/diewo77/pos-backoffice/internal/sales"
	"github.com/diewo77/pos-backoffice/internal/store"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupSaleTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Customer{}, &models.Product{}, &models.Stock{},
		&models.Sale{}, &models.SaleItem{},
	))
	return db
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func seedSaleFixtures(t *testing.T, db *gorm.DB) (models.User, models.Customer, models.Product) {
	t.Helper()
	user := models.User{Username: "cashier", PasswordHash: "x", Role: models.RoleEmployee, Status: 1}
	require.NoError(t, db.Create(&user).Error)
	customer := models.Customer{Name: "ClientCo"}
	require.NoError(t, db.Create(&customer).Error)
	product := models.Product{Code: "SKU1", Name: "Service", Price: dec("100"), TaxRate: dec("13"), Status: 1}
	require.NoError(t, db.Create(&product).Error)
	require.NoError(t, db.Create(&models.Stock{ProductID: product.ID, Qty: dec("20"), LocationID: 1}).Error)
	return user, customer, product
}

func newSaleHandler(db *gorm.DB) *SaleHandler {
	svc := sales.NewService(db, sales.DefaultOptions())
	return NewSaleHandler(svc, store.NewSalesRepository(db), store.NewUsersRepository(db))
}

func TestSaleCreateJSON(t *testing.T) {
	db := setupSaleTestDB(t)
	user, customer, product := seedSaleFixtures(t, db)
	h := newSaleHandler(db)

	body := fmt.Sprintf(`{"customer_id":"%d","items":[{"product_id":"%d","qty":"2"}]}`, customer.ID, product.ID)
	req := httptest.NewRequest(http.MethodPost, "/sales", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(auth.WithUserID(req.Context(), user.ID))
	w := httptest.NewRecorder()
	h.Create(w, req)
	require.Equal(t, http.StatusCreated, w.Code, "body=%s", w.Body.String())

	var created models.Sale
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "F-00001", created.Number)
	assert.Equal(t, "200", created.Subtotal.String())
	assert.Equal(t, "26", created.TaxTotal.String())
	assert.Equal(t, "226", created.Total.String())
}

func TestSaleCreateFormArraysWithFiltering(t *testing.T) {
	db := setupSaleTestDB(t)
	user, customer, product := seedSaleFixtures(t, db)
	h := newSaleHandler(db)

	form := url.Values{}
	form.Set("customer_id", fmt.Sprintf("%d", customer.ID))
	form.Set("paid_with", "card")
	form.Add("product_id", fmt.Sprintf("%d", product.ID))
	form.Add("qty", "2")
	form.Add("product_id", "999") // unknown: silently dropped
	form.Add("qty", "1")
	form.Add("product_id", fmt.Sprintf("%d", product.ID))
	form.Add("qty", "bananas") // unparseable: silently dropped
	req := httptest.NewRequest(http.MethodPost, "/sales", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req = req.WithContext(auth.WithUserID(req.Context(), user.ID))
	w := httptest.NewRecorder()
	h.Create(w, req)
	require.Equal(t, http.StatusCreated, w.Code, "body=%s", w.Body.String())

	var created models.Sale
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Len(t, created.Items, 1)
	assert.Equal(t, "card", created.PaidWith)
}

func TestSaleCreateEmpty(t *testing.T) {
	db := setupSaleTestDB(t)
	user, customer, _ := seedSaleFixtures(t, db)
	h := newSaleHandler(db)

	body := fmt.Sprintf(`{"customer_id":"%d","items":[{"product_id":"0","qty":"x"}]}`, customer.ID)
	req := httptest.NewRequest(http.MethodPost, "/sales", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(auth.WithUserID(req.Context(), user.ID))
	w := httptest.NewRecorder()
	h.Create(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "empty_sale")
}

func TestSaleCreateInvalidCustomer(t *testing.T) {
	db := setupSaleTestDB(t)
	user, _, product := seedSaleFixtures(t, db)
	h := newSaleHandler(db)

	body := fmt.Sprintf(`{"customer_id":"9999","items":[{"product_id":"%d","qty":"1"}]}`, product.ID)
	req := httptest.NewRequest(http.MethodPost, "/sales", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(auth.WithUserID(req.Context(), user.ID))
	w := httptest.NewRecorder()
	h.Create(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid_customer")
}

func TestSaleCreateUnauthenticated(t *testing.T) {
	db := setupSaleTestDB(t)
	_, customer, product := seedSaleFixtures(t, db)
	h := newSaleHandler(db)

	body := fmt.Sprintf(`{"customer_id":"%d","items":[{"product_id":"%d","qty":"1"}]}`, customer.ID, product.ID)
	req := httptest.NewRequest(http.MethodPost, "/sales", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.Create(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSaleDetailAndPDF(t *testing.T) {
	db := setupSaleTestDB(t)
	user, customer, product := seedSaleFixtures(t, db)
	h := newSaleHandler(db)

	body := fmt.Sprintf(`{"customer_id":"%d","items":[{"product_id":"%d","qty":"1"}]}`, customer.ID, product.ID)
	req := httptest.NewRequest(http.MethodPost, "/sales", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(auth.WithUserID(req.Context(), user.ID))
	w := httptest.NewRecorder()
	h.Create(w, req)
	require.Equal(t, http.StatusCreated, w.Code)
	var created models.Sale
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	idStr := fmt.Sprintf("%d", created.ID)
	detReq := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/sales/"+idStr, nil), map[string]string{"id": idStr})
	detW := httptest.NewRecorder()
	h.Detail(detW, detReq)
	require.Equal(t, http.StatusOK, detW.Code)
	assert.Contains(t, detW.Body.String(), `"F-00001"`)

	pdfReq := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/sales/"+idStr+"/pdf", nil), map[string]string{"id": idStr})
	pdfW := httptest.NewRecorder()
	h.PDF(pdfW, pdfReq)
	require.Equal(t, http.StatusOK, pdfW.Code)
	assert.Contains(t, pdfW.Header().Get("Content-Type"), "application/pdf")
	assert.NotEmpty(t, pdfW.Body.Bytes())
}
