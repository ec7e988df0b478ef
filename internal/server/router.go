package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/diewo77/pos-backoffice/internal/auth"
	"github.com/diewo77/pos-backoffice/internal/config"
	"github.com/diewo77/pos-backoffice/internal/handlers"
	"github.com/diewo77/pos-backoffice/internal/httpx"
	"github.com/diewo77/pos-backoffice/internal/models"
	"github.com/diewo77/pos-backoffice/internal/sales"
	"github.com/diewo77/pos-backoffice/internal/store"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

// New constructs the root http.Handler with all routes and middlewares applied.
func New(db *gorm.DB, cfg config.Config) http.Handler {
	users := store.NewUsersRepository(db)
	customers := store.NewCustomersRepository(db)
	products := store.NewProductsRepository(db)
	salesRepo := store.NewSalesRepository(db)
	saleSvc := sales.NewService(db, sales.Options{
		StrictLines:     cfg.StrictLines,
		RestockOnDelete: cfg.RestockOnDelete,
	})

	// RequireAuth verifies the session user still exists; RequireRole resolves
	// the role for admin-only routes. The core services never see either.
	auth.SetUserVerifier(func(_ context.Context, uid uint) bool {
		return users.Exists(uid)
	})
	auth.SetRoleResolver(func(_ context.Context, uid uint) (string, bool) {
		u, err := users.Get(uid)
		if err != nil {
			return "", false
		}
		return u.Role, true
	})

	r := mux.NewRouter()

	// --- Health endpoints ---
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if err := db.Exec("SELECT 1").Error; err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	// Auth endpoints
	ah := handlers.NewAuthHandler(users)
	r.HandleFunc("/login", ah.Login).Methods(http.MethodPost)
	r.HandleFunc("/logout", ah.Logout).Methods(http.MethodPost)

	authed := func(h http.HandlerFunc) http.Handler { return auth.RequireAuth(h) }
	adminOnly := func(h http.HandlerFunc) http.Handler { return auth.RequireRole(models.RoleAdmin, h) }

	// Customer endpoints
	ch := handlers.NewCustomerHandler(customers)
	r.Handle("/customers", authed(ch.List)).Methods(http.MethodGet)
	r.Handle("/customers", authed(ch.Create)).Methods(http.MethodPost)
	r.Handle("/customers/{id:[0-9]+}", authed(ch.Update)).Methods(http.MethodPost, http.MethodPut)
	r.Handle("/customers/{id:[0-9]+}", adminOnly(ch.Delete)).Methods(http.MethodDelete)

	// Product endpoints
	ph := handlers.NewProductHandler(products, cfg.UploadDir)
	r.Handle("/products", authed(ph.List)).Methods(http.MethodGet)
	r.Handle("/products", authed(ph.Create)).Methods(http.MethodPost)
	r.Handle("/products/{id:[0-9]+}", authed(ph.Update)).Methods(http.MethodPost, http.MethodPut)
	r.Handle("/products/{id:[0-9]+}", adminOnly(ph.Delete)).Methods(http.MethodDelete)

	// Sale endpoints
	sh := handlers.NewSaleHandler(saleSvc, salesRepo, users)
	r.Handle("/sales", authed(sh.List)).Methods(http.MethodGet)
	r.Handle("/sales", authed(sh.Create)).Methods(http.MethodPost)
	r.Handle("/sales/{id:[0-9]+}", authed(sh.Detail)).Methods(http.MethodGet)
	r.Handle("/sales/{id:[0-9]+}", adminOnly(sh.Delete)).Methods(http.MethodDelete)
	r.Handle("/sales/{id:[0-9]+}/pdf", authed(sh.PDF)).Methods(http.MethodGet)

	// Dashboard stats
	r.Handle("/dashboard", authed(func(w http.ResponseWriter, _ *http.Request) {
		var customerCount, productCount, saleCount int64
		db.Model(&models.Customer{}).Count(&customerCount)
		db.Model(&models.Product{}).Count(&productCount)
		db.Model(&models.Sale{}).Count(&saleCount)
		httpx.JSON(w, http.StatusOK, map[string]any{
			"customers": customerCount, "products": productCount, "sales": saleCount,
		})
	})).Methods(http.MethodGet)

	return auth.Middleware(withRecover(withLogging(r)))
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

func withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
