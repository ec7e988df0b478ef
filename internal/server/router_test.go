package server

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/diewo77/pos-backoffice/internal/config"
	"github.com/diewo77/pos-backoffice/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupRouterTest(t *testing.T) (*gorm.DB, http.Handler) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Customer{}, &models.Product{}, &models.Stock{},
		&models.Sale{}, &models.SaleItem{},
	))
	cfg := config.Config{UploadDir: t.TempDir(), RestockOnDelete: true}
	return db, New(db, cfg)
}

func createUser(t *testing.T, db *gorm.DB, username, password, role string) models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	u := models.User{Username: username, PasswordHash: string(hash), Role: role, Status: 1}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func login(t *testing.T, app http.Handler, username, password string) *http.Cookie {
	t.Helper()
	form := url.Values{"username": {username}, "password": {password}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	app.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, "login body=%s", w.Body.String())
	for _, c := range w.Result().Cookies() {
		if c.Name == "session" {
			return c
		}
	}
	t.Fatal("no session cookie")
	return nil
}

func TestHealthEndpoints(t *testing.T) {
	_, app := setupRouterTest(t)
	for _, path := range []string{"/health", "/healthz"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		app.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestLoginAndAuthenticatedFlow(t *testing.T) {
	db, app := setupRouterTest(t)
	createUser(t, db, "admin", "secret", models.RoleAdmin)
	sess := login(t, app, "admin", "secret")

	// unauthenticated request is rejected
	req := httptest.NewRequest(http.MethodGet, "/customers", nil)
	w := httptest.NewRecorder()
	app.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// with session: create then list a customer
	form := url.Values{"name": {"ClientCo"}, "nit": {"0614-1234"}}
	req = httptest.NewRequest(http.MethodPost, "/customers", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(sess)
	w = httptest.NewRecorder()
	app.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, "body=%s", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/customers", nil)
	req.AddCookie(sess)
	w = httptest.NewRecorder()
	app.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ClientCo")
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	db, app := setupRouterTest(t)
	createUser(t, db, "admin", "secret", models.RoleAdmin)

	form := url.Values{"username": {"admin"}, "password": {"wrong"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	app.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDeleteRequiresAdminRole(t *testing.T) {
	db, app := setupRouterTest(t)
	createUser(t, db, "clerk", "pw", models.RoleEmployee)
	createUser(t, db, "boss", "pw", models.RoleAdmin)

	require.NoError(t, db.Create(&models.Customer{Name: "Target"}).Error)

	clerkSess := login(t, app, "clerk", "pw")
	req := httptest.NewRequest(http.MethodDelete, "/customers/1", nil)
	req.AddCookie(clerkSess)
	w := httptest.NewRecorder()
	app.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	bossSess := login(t, app, "boss", "pw")
	req = httptest.NewRequest(http.MethodDelete, "/customers/1", nil)
	req.AddCookie(bossSess)
	w = httptest.NewRecorder()
	app.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code, "body=%s", w.Body.String())
}

func TestDashboardStats(t *testing.T) {
	db, app := setupRouterTest(t)
	createUser(t, db, "admin", "pw", models.RoleAdmin)
	require.NoError(t, db.Create(&models.Customer{Name: "C1"}).Error)
	require.NoError(t, db.Create(&models.Product{Code: "X1", Name: "P1", Price: decimal.NewFromInt(1)}).Error)

	sess := login(t, app, "admin", "pw")
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(sess)
	w := httptest.NewRecorder()
	app.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"customers":1`)
	assert.Contains(t, w.Body.String(), `"products":1`)
	assert.Contains(t, w.Body.String(), `"sales":0`)
}
