package diapi

import "github.com/shopspring/decimal"

// Length caps enforced by the remote schema.
const (
	MaxPhoneLen    = 20
	MaxAddressLen  = 100
	MaxCardNameLen = 50
)

// Trim caps a text field for the remote schema. Over-long values keep max-1
// characters, leaving the truncation boundary free.
func Trim(v string, max int) string {
	if len(v) > max {
		return v[:max-1]
	}
	return v
}

// Address holds the bill-to or ship-to sub-fields of an order document.
type Address struct {
	City    string
	Country string
	County  string
	State   string
	Street  string
	ZipCode string
}

// Line is one order document line.
type Line struct {
	ItemCode  string
	Quantity  float64
	Price     decimal.Decimal
	TaxCode   string
	LineTotal decimal.Decimal
}

// ExpenseLine is the optional freight expense attached to an order document.
type ExpenseLine struct {
	ExpenseCode int
	LineTotal   decimal.Decimal
	TaxCode     string
}

// OrderDocument is the locally built representation of an oOrders business
// object. The gateway serializes it into one field assignment per set field
// followed by a single commit.
type OrderDocument struct {
	DocDueDate        string
	CardCode          string
	CardName          string
	DocCurrency       string
	ContactPersonCode int

	// Optional sections; nil means the field assignment is skipped entirely.
	Expenses        *ExpenseLine
	DiscountPercent *float64
	TransportCode   *int
	PaymentMethod   string

	// Exactly one of UserFields or NumAtCard carries the external order id.
	UserFields map[string]string
	NumAtCard  string

	BillTo Address
	ShipTo Address
	Lines  []Line
}

// ContactEmployee is one contact person line under a business partner.
type ContactEmployee struct {
	Name      string
	FirstName string
	LastName  string
	Phone1    string
	Email     string
	Address   string
}
