package diapi

import (
	"fmt"

	"b1bridge/config"
)

// DI API business object type constants (BoObjectTypes).
const (
	ObjectBusinessPartners = 2
	ObjectOrders           = 17
)

// Company is a live DI API session. Commit operations return nil on a zero
// remote return code; any non-zero code surfaces as a *RemoteError carrying
// the remote last-error description. The remote system owns transactional
// integrity: nothing here retries or rolls back.
type Company interface {
	CompanyName() string
	AddOrder(doc *OrderDocument) error
	CancelOrder(docEntry int) error
	AddContactEmployee(cardCode string, contact *ContactEmployee) error
	Disconnect()
}

// Dialer opens a Company session from config.
type Dialer func(cfg config.SAPConfig) (Company, error)

// RemoteError is a DI API call that returned a non-zero code.
type RemoteError struct {
	Op          string
	Code        int
	Description string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("diapi %s: code %d: %s", e.Op, e.Code, e.Description)
}
