//go:build windows

package diapi

import (
	"fmt"

	ole "github.com/go-ole/go-ole"
	"github.com/go-ole/go-ole/oleutil"

	"b1bridge/config"
)

// BoSuppLangs values the bridge knows about.
var languageCodes = map[string]int{
	"ln_English":    3,
	"ln_German":     7,
	"ln_Spanish":    23,
	"ln_SpanishLA":  25,
	"ln_French":     22,
	"ln_Portuguese": 19,
}

// BoDataServerTypes values.
var dbServerTypeCodes = map[string]int{
	"dst_MSSQL2005": 4,
	"dst_MSSQL2008": 6,
	"dst_MSSQL2012": 7,
	"dst_MSSQL2014": 8,
	"dst_HANADB":    9,
	"dst_MSSQL2016": 10,
	"dst_MSSQL2017": 11,
	"dst_MSSQL2019": 12,
}

// oleCompany drives the SAPbobsCOM.Company automation object.
type oleCompany struct {
	company *ole.IDispatch
	name    string
}

// Dial connects to the DI API company object through COM. One session per
// unit of work; the caller must Disconnect when done.
func Dial(cfg config.SAPConfig) (Company, error) {
	// CoInitialize reports S_FALSE when COM is already up on this thread;
	// either way CreateObject below is the call that matters.
	_ = ole.CoInitialize(0)
	unknown, err := oleutil.CreateObject(cfg.ProgID)
	if err != nil {
		return nil, fmt.Errorf("diapi: create %s: %w", cfg.ProgID, err)
	}
	company, err := unknown.QueryInterface(ole.IID_IDispatch)
	unknown.Release()
	if err != nil {
		return nil, fmt.Errorf("diapi: query dispatch: %w", err)
	}

	c := &oleCompany{company: company}
	d := &dispatcher{}
	d.put(company, "Server", cfg.Server)
	d.put(company, "UseTrusted", cfg.UseTrusted)
	d.put(company, "Language", languageCodes[cfg.Language])
	d.put(company, "DbServerType", dbServerTypeCodes[cfg.DBServerType])
	d.put(company, "CompanyDB", cfg.CompanyDB)
	d.put(company, "UserName", cfg.Username)
	d.put(company, "Password", cfg.Password)
	code := d.callInt(company, "Connect")
	if d.err != nil {
		company.Release()
		return nil, fmt.Errorf("diapi connect: %w", d.err)
	}
	if code != 0 {
		err := c.remoteErr("connect", code)
		company.Release()
		return nil, err
	}
	if v, err := oleutil.GetProperty(company, "CompanyName"); err == nil {
		c.name = v.ToString()
		v.Clear()
	}
	return c, nil
}

func (c *oleCompany) CompanyName() string { return c.name }

// Disconnect closes the remote session and releases the COM object.
func (c *oleCompany) Disconnect() {
	if c.company == nil {
		return
	}
	oleutil.CallMethod(c.company, "Disconnect")
	c.company.Release()
	c.company = nil
}

// AddOrder serializes the document into field assignments on a fresh oOrders
// object and commits it.
func (c *oleCompany) AddOrder(doc *OrderDocument) error {
	d := &dispatcher{}
	order := d.getObject(c.company, ObjectOrders)
	defer release(order)

	d.put(order, "DocDueDate", doc.DocDueDate)
	d.put(order, "CardCode", doc.CardCode)
	d.put(order, "CardName", doc.CardName)
	d.put(order, "DocCurrency", doc.DocCurrency)
	d.put(order, "ContactPersonCode", doc.ContactPersonCode)

	if doc.Expenses != nil {
		expenses := d.get(order, "Expenses")
		d.put(expenses, "ExpenseCode", doc.Expenses.ExpenseCode)
		lineTotal, _ := doc.Expenses.LineTotal.Float64()
		d.put(expenses, "LineTotal", lineTotal)
		d.put(expenses, "TaxCode", doc.Expenses.TaxCode)
		release(expenses)
	}
	if doc.DiscountPercent != nil {
		d.put(order, "DiscountPercent", *doc.DiscountPercent)
	}
	if doc.TransportCode != nil {
		d.put(order, "TransportationCode", *doc.TransportCode)
	}
	if doc.PaymentMethod != "" {
		d.put(order, "PaymentMethod", doc.PaymentMethod)
	}

	if len(doc.UserFields) > 0 {
		userFields := d.get(order, "UserFields")
		fields := d.get(userFields, "Fields")
		for name, value := range doc.UserFields {
			item := d.callDispatch(fields, "Item", name)
			d.put(item, "Value", value)
			release(item)
		}
		release(fields)
		release(userFields)
	} else {
		d.put(order, "NumAtCard", doc.NumAtCard)
	}

	ext := d.get(order, "AddressExtension")
	d.put(ext, "BillToCity", doc.BillTo.City)
	d.put(ext, "BillToCountry", doc.BillTo.Country)
	d.put(ext, "BillToCounty", doc.BillTo.County)
	d.put(ext, "BillToState", doc.BillTo.State)
	d.put(ext, "BillToStreet", doc.BillTo.Street)
	d.put(ext, "BillToZipCode", doc.BillTo.ZipCode)
	d.put(ext, "ShipToCity", doc.ShipTo.City)
	d.put(ext, "ShipToCountry", doc.ShipTo.Country)
	d.put(ext, "ShipToCounty", doc.ShipTo.County)
	d.put(ext, "ShipToState", doc.ShipTo.State)
	d.put(ext, "ShipToStreet", doc.ShipTo.Street)
	d.put(ext, "ShipToZipCode", doc.ShipTo.ZipCode)
	release(ext)

	lines := d.get(order, "Lines")
	for i, line := range doc.Lines {
		d.call(lines, "Add")
		d.call(lines, "SetCurrentLine", i)
		d.put(lines, "ItemCode", line.ItemCode)
		d.put(lines, "Quantity", line.Quantity)
		// The DI API line price and total properties are doubles.
		price, _ := line.Price.Float64()
		d.put(lines, "Price", price)
		d.put(lines, "TaxCode", line.TaxCode)
		lineTotal, _ := line.LineTotal.Float64()
		d.put(lines, "LineTotal", lineTotal)
	}
	release(lines)

	code := d.callInt(order, "Add")
	if d.err != nil {
		return fmt.Errorf("diapi add order: %w", d.err)
	}
	if code != 0 {
		return c.remoteErr("add order", code)
	}
	return nil
}

// CancelOrder fetches an order by its document entry and cancels it.
func (c *oleCompany) CancelOrder(docEntry int) error {
	d := &dispatcher{}
	order := d.getObject(c.company, ObjectOrders)
	defer release(order)

	d.call(order, "GetByKey", docEntry)
	code := d.callInt(order, "Cancel")
	if d.err != nil {
		return fmt.Errorf("diapi cancel order: %w", d.err)
	}
	if code != 0 {
		return c.remoteErr("cancel order", code)
	}
	return nil
}

// AddContactEmployee appends a contact line to the business partner and
// commits the partner update.
func (c *oleCompany) AddContactEmployee(cardCode string, contact *ContactEmployee) error {
	d := &dispatcher{}
	partner := d.getObject(c.company, ObjectBusinessPartners)
	defer release(partner)

	d.call(partner, "GetByKey", cardCode)
	employees := d.get(partner, "ContactEmployees")
	defer release(employees)

	// A partner with no contacts yet reports a phantom line with internal
	// code 0; the next line index is 0 in that case, not Count.
	nextLine := d.getInt(employees, "Count")
	if d.getInt(employees, "InternalCode") == 0 {
		nextLine = 0
	}
	d.call(employees, "Add")
	d.call(employees, "SetCurrentLine", nextLine)
	d.put(employees, "Name", contact.Name)
	d.put(employees, "FirstName", contact.FirstName)
	d.put(employees, "LastName", contact.LastName)
	d.put(employees, "Phone1", contact.Phone1)
	d.put(employees, "E_Mail", contact.Email)
	d.put(employees, "Address", contact.Address)

	code := d.callInt(partner, "Update")
	if d.err != nil {
		return fmt.Errorf("diapi add contact: %w", d.err)
	}
	if code != 0 {
		return c.remoteErr("add contact", code)
	}
	return nil
}

func (c *oleCompany) remoteErr(op string, code int) error {
	desc := ""
	if v, err := oleutil.CallMethod(c.company, "GetLastErrorDescription"); err == nil {
		desc = v.ToString()
		v.Clear()
	}
	return &RemoteError{Op: op, Code: code, Description: desc}
}

// dispatcher sequences COM calls and keeps the first error; once set, every
// later call is a no-op so call sites stay flat.
type dispatcher struct {
	err error
}

func (d *dispatcher) put(obj *ole.IDispatch, name string, value any) {
	if d.err != nil || obj == nil {
		return
	}
	if _, err := oleutil.PutProperty(obj, name, value); err != nil {
		d.err = fmt.Errorf("set %s: %w", name, err)
	}
}

func (d *dispatcher) get(obj *ole.IDispatch, name string) *ole.IDispatch {
	if d.err != nil || obj == nil {
		return nil
	}
	v, err := oleutil.GetProperty(obj, name)
	if err != nil {
		d.err = fmt.Errorf("get %s: %w", name, err)
		return nil
	}
	return v.ToIDispatch()
}

func (d *dispatcher) getInt(obj *ole.IDispatch, name string) int {
	if d.err != nil || obj == nil {
		return 0
	}
	v, err := oleutil.GetProperty(obj, name)
	if err != nil {
		d.err = fmt.Errorf("get %s: %w", name, err)
		return 0
	}
	defer v.Clear()
	return int(v.Val)
}

func (d *dispatcher) call(obj *ole.IDispatch, name string, args ...any) {
	if d.err != nil || obj == nil {
		return
	}
	if _, err := oleutil.CallMethod(obj, name, args...); err != nil {
		d.err = fmt.Errorf("call %s: %w", name, err)
	}
}

func (d *dispatcher) callInt(obj *ole.IDispatch, name string, args ...any) int {
	if d.err != nil || obj == nil {
		return 0
	}
	v, err := oleutil.CallMethod(obj, name, args...)
	if err != nil {
		d.err = fmt.Errorf("call %s: %w", name, err)
		return 0
	}
	defer v.Clear()
	return int(v.Val)
}

func (d *dispatcher) callDispatch(obj *ole.IDispatch, name string, args ...any) *ole.IDispatch {
	if d.err != nil || obj == nil {
		return nil
	}
	v, err := oleutil.CallMethod(obj, name, args...)
	if err != nil {
		d.err = fmt.Errorf("call %s: %w", name, err)
		return nil
	}
	return v.ToIDispatch()
}

func (d *dispatcher) getObject(company *ole.IDispatch, objType int) *ole.IDispatch {
	return d.callDispatch(company, "GetBusinessObject", objType)
}

func release(obj *ole.IDispatch) {
	if obj != nil {
		obj.Release()
	}
}
