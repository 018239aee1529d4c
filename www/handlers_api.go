package www

import (
	"context"
	"net/http"

	"b1bridge/config"
	"b1bridge/orders"
	"b1bridge/store"
)

// apiInfo reports the live company connection details, opening the DI API
// session if this request hasn't yet.
func (h *Handlers) apiInfo(w http.ResponseWriter, r *http.Request) {
	com, err := session(r).Company()
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"company_name": com.CompanyName(),
		"server":       h.cfg.SAP.Server,
		"company_db":   h.cfg.SAP.CompanyDB,
		"prog_id":      h.cfg.SAP.ProgID,
	})
}

func (h *Handlers) apiOrders(w http.ResponseWriter, r *http.Request) {
	h.listRows(w, r, func(ctx context.Context, c *store.Conn) ([]store.Row, error) {
		filters, err := queryFilters(r)
		if err != nil {
			return nil, err
		}
		return c.Orders(ctx, queryLimit(r, 1), queryColumns(r), filters)
	})
}

func (h *Handlers) apiMainCurrency(w http.ResponseWriter, r *http.Request) {
	c, err := session(r).SQL(r.Context())
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	currency, err := c.MainCurrency(r.Context())
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"main_currency": currency})
}

func (h *Handlers) apiContacts(w http.ResponseWriter, r *http.Request) {
	h.listRows(w, r, func(ctx context.Context, c *store.Conn) ([]store.Row, error) {
		filters, err := queryFilters(r)
		if err != nil {
			return nil, err
		}
		return c.Contacts(ctx, queryLimit(r, 1), queryColumns(r), r.URL.Query().Get("card_code"), filters)
	})
}

func (h *Handlers) apiExpenseNames(w http.ResponseWriter, r *http.Request) {
	h.listRows(w, r, func(ctx context.Context, c *store.Conn) ([]store.Row, error) {
		return c.ExpenseNames(ctx)
	})
}

func (h *Handlers) apiTransportNames(w http.ResponseWriter, r *http.Request) {
	h.listRows(w, r, func(ctx context.Context, c *store.Conn) ([]store.Row, error) {
		return c.TransportNames(ctx)
	})
}

func (h *Handlers) apiPaymentMethods(w http.ResponseWriter, r *http.Request) {
	h.listRows(w, r, func(ctx context.Context, c *store.Conn) ([]store.Row, error) {
		return c.PaymentMethods(ctx)
	})
}

func (h *Handlers) apiTaxCodes(w http.ResponseWriter, r *http.Request) {
	h.listRows(w, r, func(ctx context.Context, c *store.Conn) ([]store.Row, error) {
		return c.TaxCodes(ctx)
	})
}

func (h *Handlers) apiShipments(w http.ResponseWriter, r *http.Request) {
	h.listRows(w, r, func(ctx context.Context, c *store.Conn) ([]store.Row, error) {
		filters, err := queryFilters(r)
		if err != nil {
			return nil, err
		}
		var itemColumns []string
		if v := r.URL.Query().Get("item_columns"); v != "" {
			itemColumns = splitColumns(v)
		}
		return c.Shipments(ctx, queryLimit(r, 1), queryColumns(r), filters, itemColumns)
	})
}

func (h *Handlers) apiItems(w http.ResponseWriter, r *http.Request) {
	h.listRows(w, r, func(ctx context.Context, c *store.Conn) ([]store.Row, error) {
		q := r.URL.Query()
		return c.Items(ctx, queryLimit(r, 1), queryColumns(r), q.Get("whs"), q.Get("code"))
	})
}

func (h *Handlers) apiPrices(w http.ResponseWriter, r *http.Request) {
	h.listRows(w, r, func(ctx context.Context, c *store.Conn) ([]store.Row, error) {
		q := r.URL.Query()
		return c.Prices(ctx, queryLimit(r, 1), queryColumns(r), q.Get("whs"), q.Get("code"))
	})
}

// listRows runs one read operation on the request's database session.
func (h *Handlers) listRows(w http.ResponseWriter, r *http.Request, read func(context.Context, *store.Conn) ([]store.Row, error)) {
	c, err := session(r).SQL(r.Context())
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	rows, err := read(r.Context(), c)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	if rows == nil {
		rows = []store.Row{}
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *Handlers) apiInsertOrder(w http.ResponseWriter, r *http.Request) {
	var in orders.OrderInput
	if err := decodeJSON(r, &in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed order payload"})
		return
	}
	docEntry, err := h.manager.InsertOrder(r.Context(), session(r), in)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"doc_entry": docEntry, "fe_order_id": in.ExternalID})
}

func (h *Handlers) apiCancelOrder(w http.ResponseWriter, r *http.Request) {
	var in orders.CancelInput
	if err := decodeJSON(r, &in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed cancel payload"})
		return
	}
	docEntry, err := h.manager.CancelOrder(r.Context(), session(r), in)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"doc_entry": docEntry, "fe_order_id": in.ExternalID})
}

type insertContactRequest struct {
	CardCode string              `json:"card_code"`
	Contact  orders.ContactInput `json:"contact"`
}

func (h *Handlers) apiInsertContact(w http.ResponseWriter, r *http.Request) {
	var req insertContactRequest
	if err := decodeJSON(r, &req); err != nil || req.CardCode == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed contact payload"})
		return
	}
	contactCode, err := h.manager.InsertContact(r.Context(), session(r), req.CardCode, req.Contact)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"cntct_code": contactCode, "card_code": req.CardCode})
}

// apiUpdateMessaging swaps the messaging section and persists the config.
// The running publisher picks the change up on restart.
func (h *Handlers) apiUpdateMessaging(w http.ResponseWriter, r *http.Request) {
	var mc config.MessagingConfig
	if err := decodeJSON(r, &mc); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed messaging config"})
		return
	}
	h.cfg.Lock()
	h.cfg.Messaging = mc
	h.cfg.Unlock()
	if err := h.cfg.Save(h.cfgPath); err != nil {
		h.respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type changePasswordRequest struct {
	Password string `json:"password"`
}

func (h *Handlers) apiChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "password required"})
		return
	}
	hash, err := hashPassword(req.Password)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.cfg.Lock()
	h.cfg.Web.AdminPasswordHash = hash
	h.cfg.Unlock()
	if err := h.cfg.Save(h.cfgPath); err != nil {
		h.respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
