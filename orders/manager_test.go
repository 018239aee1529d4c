package orders

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"b1bridge/config"
	"b1bridge/diapi"
	"b1bridge/store"
)

// fakeCompany records gateway commits for assertions.
type fakeCompany struct {
	addedOrders   []*diapi.OrderDocument
	addedContacts []*diapi.ContactEmployee
	contactCards  []string
	cancelled     []int
	addOrderErr   error
	disconnected  bool
}

func (f *fakeCompany) CompanyName() string { return "Test Company" }

func (f *fakeCompany) AddOrder(doc *diapi.OrderDocument) error {
	if f.addOrderErr != nil {
		return f.addOrderErr
	}
	f.addedOrders = append(f.addedOrders, doc)
	return nil
}

func (f *fakeCompany) CancelOrder(docEntry int) error {
	f.cancelled = append(f.cancelled, docEntry)
	return nil
}

func (f *fakeCompany) AddContactEmployee(cardCode string, contact *diapi.ContactEmployee) error {
	f.contactCards = append(f.contactCards, cardCode)
	f.addedContacts = append(f.addedContacts, contact)
	return nil
}

func (f *fakeCompany) Disconnect() { f.disconnected = true }

// recordingEmitter captures emitted sync events.
type recordingEmitter struct {
	synced    []string
	cancelled []int
	contacts  []int
}

func (e *recordingEmitter) EmitOrderSynced(docEntry int, externalID, cardCode string) {
	e.synced = append(e.synced, externalID)
}

func (e *recordingEmitter) EmitOrderCancelled(docEntry int, externalID string) {
	e.cancelled = append(e.cancelled, docEntry)
}

func (e *recordingEmitter) EmitContactCreated(contactCode int, cardCode string) {
	e.contacts = append(e.contacts, contactCode)
}

func newTestSession(t *testing.T) (*Session, sqlmock.Sqlmock, *fakeCompany) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	com := &fakeCompany{}
	dial := func(cfg config.SAPConfig) (diapi.Company, error) { return com, nil }
	sess := NewSession(config.Defaults(), store.NewDB(sqlDB), dial, zap.NewNop().Sugar())
	t.Cleanup(sess.Close)
	return sess, mock, com
}

func newTestManager(emitter EventEmitter) *Manager {
	m := NewManager(zap.NewNop().Sugar(), emitter)
	m.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return m
}

func validOrder() OrderInput {
	return OrderInput{
		ExternalID:      "FE-1001",
		CardCode:        "C100",
		DocDueDate:      "2026-09-15",
		BillToFirstName: "Ada",
		BillToLastName:  "Lovelace",
		BillToEmail:     "ada@example.com",
		BillToAddress:   "1 Analytical Way",
		BillToCity:      "London",
		BillToState:     "LN",
		BillToZipCode:   "E1 6AN",
		BillToCountry:   "GB",
		ShipToAddress:   "1 Analytical Way",
		ShipToCity:      "London",
		ShipToState:     "LN",
		ShipToZipCode:   "E1 6AN",
		ShipToCountry:   "GB",
		Items: []LineItem{
			{ItemCode: "A1", Quantity: 2, Price: decimal.NewFromFloat(9.99), TaxCode: "CA", LineTotal: decimal.NewFromFloat(19.98)},
			{ItemCode: "B2", Quantity: 1, Price: decimal.NewFromFloat(5), TaxCode: "CA", LineTotal: decimal.NewFromFloat(5)},
		},
	}
}

func expectMainCurrency(mock sqlmock.Sqlmock) {
	mock.ExpectQuery("SELECT TOP (1) MainCurncy FROM dbo.OADM").
		WillReturnRows(sqlmock.NewRows([]string{"MainCurncy"}).AddRow("USD"))
}

func expectContactLookup(mock sqlmock.Sqlmock, in OrderInput, codes ...int) {
	rows := sqlmock.NewRows([]string{"CntctCode"})
	for _, code := range codes {
		rows.AddRow(int64(code))
	}
	mock.ExpectQuery("SELECT TOP (2) CntctCode FROM dbo.OCPR WHERE FirstName = @p0 AND LastName = @p1 AND E_MailL = @p2 AND CardCode = @p3").
		WithArgs(in.BillToFirstName, in.BillToLastName, in.BillToEmail, in.CardCode).
		WillReturnRows(rows)
}

func expectDocEntryLookup(mock sqlmock.Sqlmock, externalID string, entries ...int) {
	rows := sqlmock.NewRows([]string{"DocEntry"})
	for _, entry := range entries {
		rows.AddRow(int64(entry))
	}
	mock.ExpectQuery("SELECT TOP (1) DocEntry FROM dbo.ORDR WHERE NumAtCard = @p0").
		WithArgs(externalID).
		WillReturnRows(rows)
}

func TestInsertOrder(t *testing.T) {
	sess, mock, com := newTestSession(t)
	emitter := &recordingEmitter{}
	m := newTestManager(emitter)
	in := validOrder()

	expectMainCurrency(mock)
	expectContactLookup(mock, in, 7)
	expectDocEntryLookup(mock, in.ExternalID, 42)

	docEntry, err := m.InsertOrder(context.Background(), sess, in)
	require.NoError(t, err)
	require.Equal(t, 42, docEntry)

	require.Len(t, com.addedOrders, 1)
	doc := com.addedOrders[0]
	require.Equal(t, "C100", doc.CardCode)
	require.Equal(t, "Ada Lovelace", doc.CardName)
	require.Equal(t, "USD", doc.DocCurrency)
	require.Equal(t, 7, doc.ContactPersonCode)
	require.Equal(t, "FE-1001", doc.NumAtCard, "no UDF configured, NumAtCard carries the id")
	require.Nil(t, doc.UserFields)
	require.Nil(t, doc.Expenses)
	require.Nil(t, doc.DiscountPercent)
	require.Nil(t, doc.TransportCode)
	require.Len(t, doc.Lines, 2)
	require.Equal(t, "A1", doc.Lines[0].ItemCode)
	require.Equal(t, "B2", doc.Lines[1].ItemCode)

	require.Equal(t, []string{"FE-1001"}, emitter.synced)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertOrder_UserFieldCarriesExternalID(t *testing.T) {
	sess, mock, com := newTestSession(t)
	m := newTestManager(&recordingEmitter{})
	in := validOrder()
	in.ExternalIDField = "U_WebOrderID"

	expectMainCurrency(mock)
	expectContactLookup(mock, in, 7)
	mock.ExpectQuery("SELECT TOP (1) DocEntry FROM dbo.ORDR WHERE U_WebOrderID = @p0").
		WithArgs(in.ExternalID).
		WillReturnRows(sqlmock.NewRows([]string{"DocEntry"}).AddRow(int64(42)))

	_, err := m.InsertOrder(context.Background(), sess, in)
	require.NoError(t, err)

	doc := com.addedOrders[0]
	require.Equal(t, map[string]string{"U_WebOrderID": "FE-1001"}, doc.UserFields)
	require.Empty(t, doc.NumAtCard)
}

func TestInsertOrder_TruncatesLongFields(t *testing.T) {
	sess, mock, com := newTestSession(t)
	m := newTestManager(&recordingEmitter{})
	in := validOrder()
	in.BillToFirstName = strings.Repeat("A", 30)
	in.BillToLastName = strings.Repeat("B", 30)
	in.BillToTelephone = strings.Repeat("5", 30)
	in.BillToAddress = strings.Repeat("a", 150)

	expectMainCurrency(mock)
	expectContactLookup(mock, in, 7)
	expectDocEntryLookup(mock, in.ExternalID, 42)

	_, err := m.InsertOrder(context.Background(), sess, in)
	require.NoError(t, err)

	doc := com.addedOrders[0]
	require.Len(t, doc.CardName, 50, "card name cut at exactly 50")
	require.Len(t, doc.BillTo.Street, 99, "over-long address keeps max-1 chars")
}

func TestInsertOrder_OptionalSections(t *testing.T) {
	sess, mock, com := newTestSession(t)
	m := newTestManager(&recordingEmitter{})
	in := validOrder()
	freight := "Freight"
	discount := 10.0
	transport := "UPS Ground"
	payment := "CC"
	in.ExpenseFreightName = &freight
	in.ExpenseLineTotal = decimal.NewFromFloat(12.50)
	in.ExpenseTaxCode = "CA"
	in.DiscountPercent = &discount
	in.TransportName = &transport
	in.PaymentMethod = &payment

	expectMainCurrency(mock)
	expectContactLookup(mock, in, 7)
	mock.ExpectQuery("SELECT TOP (1) ExpnsCode FROM dbo.OEXD WHERE ExpnsName = @p0").
		WithArgs("Freight").
		WillReturnRows(sqlmock.NewRows([]string{"ExpnsCode"}).AddRow(int64(1)))
	mock.ExpectQuery("SELECT TOP (1) TrnspCode FROM dbo.OSHP WHERE TrnspName = @p0").
		WithArgs("UPS Ground").
		WillReturnRows(sqlmock.NewRows([]string{"TrnspCode"}).AddRow(int64(3)))
	expectDocEntryLookup(mock, in.ExternalID, 42)

	_, err := m.InsertOrder(context.Background(), sess, in)
	require.NoError(t, err)

	doc := com.addedOrders[0]
	require.NotNil(t, doc.Expenses)
	require.Equal(t, 1, doc.Expenses.ExpenseCode)
	require.Equal(t, "CA", doc.Expenses.TaxCode)
	require.NotNil(t, doc.DiscountPercent)
	require.Equal(t, 10.0, *doc.DiscountPercent)
	require.NotNil(t, doc.TransportCode)
	require.Equal(t, 3, *doc.TransportCode)
	require.Equal(t, "CC", doc.PaymentMethod)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertOrder_CreatesMissingContact(t *testing.T) {
	sess, mock, com := newTestSession(t)
	emitter := &recordingEmitter{}
	m := newTestManager(emitter)
	in := validOrder()

	expectMainCurrency(mock)
	expectContactLookup(mock, in) // no match

	// InsertContact re-queries by the synthesized unique name.
	name := "Ada Lovelace 1700000000000"
	mock.ExpectQuery("SELECT TOP (2) CntctCode FROM dbo.OCPR WHERE Name = @p0 AND FirstName = @p1 AND LastName = @p2 AND E_MailL = @p3 AND CardCode = @p4").
		WithArgs(name, "Ada", "Lovelace", "ada@example.com", "C100").
		WillReturnRows(sqlmock.NewRows([]string{"CntctCode"}).AddRow(int64(9)))
	expectDocEntryLookup(mock, in.ExternalID, 42)

	docEntry, err := m.InsertOrder(context.Background(), sess, in)
	require.NoError(t, err)
	require.Equal(t, 42, docEntry)

	require.Len(t, com.addedContacts, 1)
	contact := com.addedContacts[0]
	require.Equal(t, name, contact.Name)
	require.Equal(t, "Ada", contact.FirstName)
	require.Equal(t, []string{"C100"}, com.contactCards)

	require.Equal(t, 9, com.addedOrders[0].ContactPersonCode)
	require.Equal(t, []int{9}, emitter.contacts)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertOrder_AmbiguousContact(t *testing.T) {
	sess, mock, com := newTestSession(t)
	m := newTestManager(&recordingEmitter{})
	in := validOrder()

	expectMainCurrency(mock)
	expectContactLookup(mock, in, 7, 8)

	_, err := m.InsertOrder(context.Background(), sess, in)
	require.ErrorIs(t, err, ErrAmbiguousContact)
	require.Empty(t, com.addedOrders, "nothing committed on ambiguity")
}

func TestInsertOrder_Validation(t *testing.T) {
	sess, _, com := newTestSession(t)
	m := newTestManager(&recordingEmitter{})

	cases := []struct {
		name   string
		mutate func(*OrderInput)
	}{
		{"missing external id", func(in *OrderInput) { in.ExternalID = "" }},
		{"missing card code", func(in *OrderInput) { in.CardCode = "" }},
		{"missing due date", func(in *OrderInput) { in.DocDueDate = "" }},
		{"no items", func(in *OrderInput) { in.Items = nil }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validOrder()
			tc.mutate(&in)
			_, err := m.InsertOrder(context.Background(), sess, in)
			require.ErrorIs(t, err, ErrInvalidInput)
		})
	}
	require.Empty(t, com.addedOrders)
}

func TestInsertOrder_VerifyFailureAfterCommit(t *testing.T) {
	sess, mock, com := newTestSession(t)
	emitter := &recordingEmitter{}
	m := newTestManager(emitter)
	in := validOrder()

	expectMainCurrency(mock)
	expectContactLookup(mock, in, 7)
	expectDocEntryLookup(mock, in.ExternalID) // commit lands, re-query finds nothing

	_, err := m.InsertOrder(context.Background(), sess, in)
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	require.Len(t, com.addedOrders, 1, "the commit itself went through")
	require.Empty(t, emitter.synced, "no event for an unverified order")
}

func TestCancelOrder(t *testing.T) {
	sess, mock, com := newTestSession(t)
	emitter := &recordingEmitter{}
	m := newTestManager(emitter)

	expectDocEntryLookup(mock, "FE-1001", 42)

	docEntry, err := m.CancelOrder(context.Background(), sess, CancelInput{ExternalID: "FE-1001"})
	require.NoError(t, err)
	require.Equal(t, 42, docEntry)
	require.Equal(t, []int{42}, com.cancelled)
	require.Equal(t, []int{42}, emitter.cancelled)
}

func TestCancelOrder_NotFound(t *testing.T) {
	sess, mock, com := newTestSession(t)
	m := newTestManager(&recordingEmitter{})

	expectDocEntryLookup(mock, "FE-MISSING")

	_, err := m.CancelOrder(context.Background(), sess, CancelInput{ExternalID: "FE-MISSING"})
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	require.Equal(t, "FE-MISSING", notFound.Key)
	require.Empty(t, com.cancelled)
}

func TestCancelOrder_RequiresExternalID(t *testing.T) {
	sess, _, _ := newTestSession(t)
	m := newTestManager(&recordingEmitter{})

	_, err := m.CancelOrder(context.Background(), sess, CancelInput{})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestInsertContact_TruncatesName(t *testing.T) {
	sess, mock, com := newTestSession(t)
	m := newTestManager(&recordingEmitter{})

	first := strings.Repeat("F", 20)
	last := strings.Repeat("L", 30)
	name := (first + " " + last)[:36] + " 1700000000000"

	mock.ExpectQuery("SELECT TOP (2) CntctCode FROM dbo.OCPR WHERE Name = @p0 AND FirstName = @p1 AND LastName = @p2 AND E_MailL = @p3 AND CardCode = @p4").
		WithArgs(name, first, last, "", "C100").
		WillReturnRows(sqlmock.NewRows([]string{"CntctCode"}).AddRow(int64(5)))

	code, err := m.InsertContact(context.Background(), sess, "C100", ContactInput{FirstName: first, LastName: last})
	require.NoError(t, err)
	require.Equal(t, 5, code)
	require.Equal(t, name, com.addedContacts[0].Name)
}

func TestInsertContact_AmbiguousAfterCommit(t *testing.T) {
	sess, mock, _ := newTestSession(t)
	m := newTestManager(&recordingEmitter{})

	mock.ExpectQuery("SELECT TOP (2) CntctCode FROM dbo.OCPR WHERE Name = @p0 AND FirstName = @p1 AND LastName = @p2 AND E_MailL = @p3 AND CardCode = @p4").
		WithArgs("Ada Lovelace 1700000000000", "Ada", "Lovelace", "ada@example.com", "C100").
		WillReturnRows(sqlmock.NewRows([]string{"CntctCode"}).AddRow(int64(5)).AddRow(int64(6)))

	_, err := m.InsertContact(context.Background(), sess, "C100", ContactInput{
		FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com",
	})
	require.ErrorIs(t, err, ErrAmbiguousContact)
}

func TestInsertOrder_RemoteFailure(t *testing.T) {
	sess, mock, com := newTestSession(t)
	emitter := &recordingEmitter{}
	m := newTestManager(emitter)
	in := validOrder()
	com.addOrderErr = &diapi.RemoteError{Op: "AddOrder", Code: -5002, Description: "invalid item code"}

	expectMainCurrency(mock)
	expectContactLookup(mock, in, 7)

	_, err := m.InsertOrder(context.Background(), sess, in)
	var remote *diapi.RemoteError
	require.True(t, errors.As(err, &remote))
	require.Equal(t, -5002, remote.Code)
	require.Empty(t, emitter.synced)
}
