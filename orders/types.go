package orders

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// LineItem is one order line from the host platform. Price and LineTotal stay
// exact decimals until the gateway hands them to the DI API.
type LineItem struct {
	ItemCode  string          `json:"itemcode"`
	Quantity  float64         `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	TaxCode   string          `json:"taxcode"`
	LineTotal decimal.Decimal `json:"linetotal"`
}

// OrderInput is the external order representation received from the host
// platform. Pointer fields gate optional document sections on key presence,
// not on value.
type OrderInput struct {
	ExternalID string `json:"fe_order_id"`
	// ExternalIDField names the user-defined ORDR field carrying the
	// external id. Empty means the NumAtCard fallback field is used, so
	// exactly one carrier is ever populated.
	ExternalIDField string `json:"fe_order_id_udf,omitempty"`

	CardCode   string `json:"card_code"`
	DocDueDate string `json:"doc_due_date"`

	BillToFirstName string `json:"billto_firstname"`
	BillToLastName  string `json:"billto_lastname"`
	BillToEmail     string `json:"billto_email"`
	BillToTelephone string `json:"billto_telephone"`
	BillToAddress   string `json:"billto_address"`
	BillToCity      string `json:"billto_city"`
	BillToState     string `json:"billto_state"`
	BillToZipCode   string `json:"billto_zipcode"`
	BillToCountry   string `json:"billto_country"`

	ShipToAddress string `json:"shipto_address"`
	ShipToCity    string `json:"shipto_city"`
	ShipToState   string `json:"shipto_state"`
	ShipToZipCode string `json:"shipto_zipcode"`
	ShipToCountry string `json:"shipto_country"`
	ShipToCounty  string `json:"shipto_county"`

	ExpenseFreightName *string         `json:"expenses_freightname,omitempty"`
	ExpenseLineTotal   decimal.Decimal `json:"expenses_linetotal"`
	ExpenseTaxCode     string          `json:"expenses_taxcode"`
	DiscountPercent    *float64        `json:"discount_percent,omitempty"`
	TransportName      *string         `json:"transport_name,omitempty"`
	PaymentMethod      *string         `json:"payment_method,omitempty"`

	Items []LineItem `json:"items"`
}

// ErrInvalidInput is the base of all local payload validation failures.
var ErrInvalidInput = errors.New("orders: invalid input")

// Validate checks the fields every insert needs before any remote call.
func (in *OrderInput) Validate() error {
	switch {
	case in.ExternalID == "":
		return fmt.Errorf("%w: fe_order_id is required", ErrInvalidInput)
	case in.CardCode == "":
		return fmt.Errorf("%w: card_code is required", ErrInvalidInput)
	case in.DocDueDate == "":
		return fmt.Errorf("%w: doc_due_date is required", ErrInvalidInput)
	case len(in.Items) == 0:
		return fmt.Errorf("%w: at least one line item is required", ErrInvalidInput)
	}
	return nil
}

// CancelInput identifies an order by the external id recorded on it.
type CancelInput struct {
	ExternalID      string `json:"fe_order_id"`
	ExternalIDField string `json:"fe_order_id_udf,omitempty"`
}

// ContactInput is a contact person to create under a business partner.
type ContactInput struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Telephone string `json:"telephone"`
	Email     string `json:"email"`
	Address   string `json:"address"`
}

// externalIDColumn maps the external-id carrier to the ORDR column holding it.
func externalIDColumn(field string) string {
	if field != "" {
		return field
	}
	return "NumAtCard"
}

// NotFoundError reports a lookup that was expected to match exactly one row
// and matched none.
type NotFoundError struct {
	Kind string
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("orders: %s %q not found", e.Kind, e.Key)
}

// ErrAmbiguousContact reports a contact correlation that matched more than
// one row; the remote system does not make (CardCode, FirstName, LastName,
// E_MailL) unique.
var ErrAmbiguousContact = errors.New("orders: contact lookup matched more than one row")

// ErrSessionClosed reports use of a unit of work after teardown.
var ErrSessionClosed = errors.New("orders: session already closed")
