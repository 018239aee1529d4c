package www

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"b1bridge/config"
	"b1bridge/diapi"
	"b1bridge/orders"
	"b1bridge/store"
)

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	cfg      *config.Config
	cfgPath  string
	db       *store.DB
	dial     diapi.Dialer
	manager  *orders.Manager
	log      *zap.SugaredLogger
	sessions *sessionStore
}

// NewRouter creates the chi router for the bridge API.
func NewRouter(cfg *config.Config, cfgPath string, db *store.DB, dial diapi.Dialer, manager *orders.Manager, log *zap.SugaredLogger) http.Handler {
	h := &Handlers{
		cfg:      cfg,
		cfgPath:  cfgPath,
		db:       db,
		dial:     dial,
		manager:  manager,
		log:      log,
		sessions: newSessionStore(cfg.Web.SessionSecret),
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(h.logRequests)

	// Login/logout
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)

	r.Route("/api", func(r chi.Router) {
		r.Use(h.unitOfWork)

		r.Get("/info", h.apiInfo)

		// Reads
		r.Get("/orders", h.apiOrders)
		r.Get("/currency", h.apiMainCurrency)
		r.Get("/contacts", h.apiContacts)
		r.Get("/expense-names", h.apiExpenseNames)
		r.Get("/transport-names", h.apiTransportNames)
		r.Get("/payment-methods", h.apiPaymentMethods)
		r.Get("/tax-codes", h.apiTaxCodes)
		r.Get("/shipments", h.apiShipments)
		r.Get("/items", h.apiItems)
		r.Get("/prices", h.apiPrices)

		// Writes
		r.Post("/orders", h.apiInsertOrder)
		r.Post("/orders/cancel", h.apiCancelOrder)
		r.Post("/contacts", h.apiInsertContact)

		// Admin (config mutations)
		r.Group(func(r chi.Router) {
			r.Use(h.adminMiddleware)
			r.Put("/config/messaging", h.apiUpdateMessaging)
			r.Post("/config/password", h.apiChangePassword)
		})
	})

	return r
}

type ctxKey int

const sessionKey ctxKey = 0

// unitOfWork scopes one orders.Session to the request. The deferred Close
// runs on every exit path, panics included (Recoverer sits outside, so the
// session is torn down before the 500 is written).
func (h *Handlers) unitOfWork(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := orders.NewSession(h.cfg, h.db, h.dial, h.log)
		defer sess.Close()
		ctx := context.WithValue(r.Context(), sessionKey, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// session returns the request's unit of work.
func session(r *http.Request) *orders.Session {
	return r.Context().Value(sessionKey).(*orders.Session)
}

func (h *Handlers) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		h.log.Debugw("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"remote", r.RemoteAddr,
			"duration", time.Since(start),
		)
	})
}
