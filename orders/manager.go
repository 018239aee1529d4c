package orders

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"b1bridge/diapi"
	"b1bridge/store"
)

// Contact names are unique per partner on the remote side; synthesized names
// are cut here before the timestamp suffix is appended.
const maxContactNameLen = 36

// Manager composes gateway commits and database lookups into the order sync
// use cases. It holds no connection state; every call runs inside the
// caller's Session.
type Manager struct {
	log     *zap.SugaredLogger
	emitter EventEmitter
	now     func() time.Time
}

// NewManager creates a sync manager.
func NewManager(log *zap.SugaredLogger, emitter EventEmitter) *Manager {
	return &Manager{
		log:     log,
		emitter: emitter,
		now:     time.Now,
	}
}

// InsertOrder translates the external order into an oOrders commit, creating
// the bill-to contact on the way when no matching one exists, and returns the
// generated document entry.
func (m *Manager) InsertOrder(ctx context.Context, sess *Session, in OrderInput) (int, error) {
	if err := in.Validate(); err != nil {
		return 0, err
	}
	in.BillToTelephone = diapi.Trim(in.BillToTelephone, diapi.MaxPhoneLen)
	in.BillToAddress = diapi.Trim(in.BillToAddress, diapi.MaxAddressLen)
	in.ShipToAddress = diapi.Trim(in.ShipToAddress, diapi.MaxAddressLen)

	sqlc, err := sess.SQL(ctx)
	if err != nil {
		return 0, err
	}
	currency, err := sqlc.MainCurrency(ctx)
	if err != nil {
		return 0, fmt.Errorf("resolve main currency: %w", err)
	}
	contactCode, err := m.contactPersonCode(ctx, sess, in)
	if err != nil {
		return 0, err
	}

	cardName := in.BillToFirstName + " " + in.BillToLastName
	if len(cardName) > diapi.MaxCardNameLen {
		cardName = cardName[:diapi.MaxCardNameLen]
	}
	doc := &diapi.OrderDocument{
		DocDueDate:        in.DocDueDate,
		CardCode:          in.CardCode,
		CardName:          cardName,
		DocCurrency:       currency,
		ContactPersonCode: contactCode,
		BillTo: diapi.Address{
			City:    in.BillToCity,
			Country: in.BillToCountry,
			County:  in.BillToCountry,
			State:   in.BillToState,
			Street:  in.BillToAddress,
			ZipCode: in.BillToZipCode,
		},
		ShipTo: diapi.Address{
			City:    in.ShipToCity,
			Country: in.ShipToCountry,
			County:  in.ShipToCounty,
			State:   in.ShipToState,
			Street:  in.ShipToAddress,
			ZipCode: in.ShipToZipCode,
		},
	}

	if in.ExpenseFreightName != nil {
		code, err := sqlc.ExpenseCode(ctx, *in.ExpenseFreightName)
		if err != nil {
			return 0, fmt.Errorf("resolve expense %q: %w", *in.ExpenseFreightName, err)
		}
		doc.Expenses = &diapi.ExpenseLine{
			ExpenseCode: code,
			LineTotal:   in.ExpenseLineTotal,
			TaxCode:     in.ExpenseTaxCode,
		}
	}
	if in.DiscountPercent != nil {
		doc.DiscountPercent = in.DiscountPercent
	}
	if in.TransportName != nil {
		code, err := sqlc.TransportCode(ctx, *in.TransportName)
		if err != nil {
			return 0, fmt.Errorf("resolve transport %q: %w", *in.TransportName, err)
		}
		doc.TransportCode = &code
	}
	if in.PaymentMethod != nil {
		doc.PaymentMethod = *in.PaymentMethod
	}
	if in.ExternalIDField != "" {
		doc.UserFields = map[string]string{in.ExternalIDField: in.ExternalID}
	} else {
		doc.NumAtCard = in.ExternalID
	}

	for _, item := range in.Items {
		doc.Lines = append(doc.Lines, diapi.Line{
			ItemCode:  item.ItemCode,
			Quantity:  item.Quantity,
			Price:     item.Price,
			TaxCode:   item.TaxCode,
			LineTotal: item.LineTotal,
		})
	}

	com, err := sess.Company()
	if err != nil {
		return 0, err
	}
	if err := com.AddOrder(doc); err != nil {
		m.log.Errorw("insert order failed", "session", sess.ID(), "fe_order_id", in.ExternalID, "error", err)
		return 0, err
	}

	docEntry, err := m.resolveDocEntry(ctx, sqlc, in.ExternalIDField, in.ExternalID)
	if err != nil {
		// The commit succeeded but the verifying re-query found nothing.
		return 0, fmt.Errorf("verify inserted order: %w", err)
	}
	m.log.Infow("order inserted", "session", sess.ID(), "fe_order_id", in.ExternalID, "doc_entry", docEntry)
	m.emitter.EmitOrderSynced(docEntry, in.ExternalID, in.CardCode)
	return docEntry, nil
}

// CancelOrder resolves the remote document entry for the external id and
// cancels it.
func (m *Manager) CancelOrder(ctx context.Context, sess *Session, in CancelInput) (int, error) {
	if in.ExternalID == "" {
		return 0, fmt.Errorf("%w: fe_order_id is required", ErrInvalidInput)
	}
	sqlc, err := sess.SQL(ctx)
	if err != nil {
		return 0, err
	}
	docEntry, err := m.resolveDocEntry(ctx, sqlc, in.ExternalIDField, in.ExternalID)
	if err != nil {
		return 0, err
	}
	com, err := sess.Company()
	if err != nil {
		return 0, err
	}
	if err := com.CancelOrder(docEntry); err != nil {
		m.log.Errorw("cancel order failed", "session", sess.ID(), "fe_order_id", in.ExternalID, "error", err)
		return 0, err
	}
	m.log.Infow("order cancelled", "session", sess.ID(), "fe_order_id", in.ExternalID, "doc_entry", docEntry)
	m.emitter.EmitOrderCancelled(docEntry, in.ExternalID)
	return docEntry, nil
}

// InsertContact creates a contact person under the business partner and
// returns the generated contact code from a correlated re-query.
func (m *Manager) InsertContact(ctx context.Context, sess *Session, cardCode string, c ContactInput) (int, error) {
	name := c.FirstName + " " + c.LastName
	if len(name) > maxContactNameLen {
		name = name[:maxContactNameLen]
	}
	name = name + " " + strconv.FormatInt(m.now().UnixMilli(), 10)

	contact := &diapi.ContactEmployee{
		Name:      name,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Phone1:    diapi.Trim(c.Telephone, diapi.MaxPhoneLen),
		Email:     c.Email,
		Address:   diapi.Trim(c.Address, diapi.MaxAddressLen),
	}
	com, err := sess.Company()
	if err != nil {
		return 0, err
	}
	if err := com.AddContactEmployee(cardCode, contact); err != nil {
		m.log.Errorw("insert contact failed", "session", sess.ID(), "card_code", cardCode, "error", err)
		return 0, err
	}

	sqlc, err := sess.SQL(ctx)
	if err != nil {
		return 0, err
	}
	rows, err := sqlc.Contacts(ctx, 2, []string{"CntctCode"}, cardCode, []store.Filter{
		{Col: "Name", Value: name},
		{Col: "FirstName", Value: c.FirstName},
		{Col: "LastName", Value: c.LastName},
		{Col: "E_MailL", Value: c.Email},
	})
	if err != nil {
		return 0, err
	}
	switch len(rows) {
	case 0:
		return 0, fmt.Errorf("verify inserted contact: %w", &NotFoundError{Kind: "contact", Key: name})
	case 1:
	default:
		return 0, ErrAmbiguousContact
	}
	contactCode, ok := rows[0].Int("CntctCode")
	if !ok {
		return 0, fmt.Errorf("contact %q: non-numeric CntctCode %v", name, rows[0]["CntctCode"])
	}
	m.log.Infow("contact created", "session", sess.ID(), "card_code", cardCode, "cntct_code", contactCode)
	m.emitter.EmitContactCreated(contactCode, cardCode)
	return contactCode, nil
}

// contactPersonCode finds the bill-to contact under the order's partner by
// (first name, last name, email). No match creates the contact as a side
// effect of the order insert; more than one match is an error.
func (m *Manager) contactPersonCode(ctx context.Context, sess *Session, in OrderInput) (int, error) {
	sqlc, err := sess.SQL(ctx)
	if err != nil {
		return 0, err
	}
	rows, err := sqlc.Contacts(ctx, 2, []string{"CntctCode"}, in.CardCode, []store.Filter{
		{Col: "FirstName", Value: in.BillToFirstName},
		{Col: "LastName", Value: in.BillToLastName},
		{Col: "E_MailL", Value: in.BillToEmail},
	})
	if err != nil {
		return 0, err
	}
	switch len(rows) {
	case 1:
		code, ok := rows[0].Int("CntctCode")
		if !ok {
			return 0, fmt.Errorf("contact for %s: non-numeric CntctCode %v", in.CardCode, rows[0]["CntctCode"])
		}
		return code, nil
	case 0:
		address := in.BillToAddress + ", " + in.BillToCity + ", " +
			in.BillToState + " " + in.BillToZipCode + ", " + in.BillToCountry
		return m.InsertContact(ctx, sess, in.CardCode, ContactInput{
			FirstName: in.BillToFirstName,
			LastName:  in.BillToLastName,
			Telephone: in.BillToTelephone,
			Email:     in.BillToEmail,
			Address:   diapi.Trim(address, diapi.MaxAddressLen),
		})
	default:
		return 0, ErrAmbiguousContact
	}
}

// resolveDocEntry looks up the remote document entry by whichever column
// carries the external order id.
func (m *Manager) resolveDocEntry(ctx context.Context, sqlc *store.Conn, field, externalID string) (int, error) {
	col := externalIDColumn(field)
	rows, err := sqlc.Orders(ctx, 1, []string{"DocEntry"}, []store.Filter{{Col: col, Value: externalID}})
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, &NotFoundError{Kind: "order", Key: externalID}
	}
	docEntry, ok := rows[0].Int("DocEntry")
	if !ok {
		return 0, fmt.Errorf("order %q: non-numeric DocEntry %v", externalID, rows[0]["DocEntry"])
	}
	return docEntry, nil
}
