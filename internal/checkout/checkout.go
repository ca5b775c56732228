// Package checkout turns a cart and delivery details into an order summary
// and a WhatsApp deep link.
package checkout

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"fieldbasket/internal/cart"
	"fieldbasket/internal/domain"
	"fieldbasket/internal/errs"
	"fieldbasket/internal/geo"
)

const (
	msgBothMissing    = "Please enter both your house number and delivery location."
	msgHouseMissing   = "Please enter your house or flat number."
	msgAddressMissing = "Please enter your delivery location."
)

// Policy holds the shop's delivery rules and contact details.
type Policy struct {
	Shop        geo.Point
	Eligibility geo.Eligibility
	Surcharge   geo.Surcharge
	Currency    string
	Phone       string
}

// Delivery is what the customer typed. Location is nil when the address
// could not be resolved to coordinates.
type Delivery struct {
	House    string     `json:"house"`
	Address  string     `json:"address"`
	Location *geo.Point `json:"location,omitempty"`
}

// FieldError reports a blank delivery field. Field is "house", "address" or
// "delivery" when both are blank.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string { return e.Message }
func (e *FieldError) Unwrap() error { return errs.ErrMissingDelivery }

// OutOfRangeError refuses a delivery beyond the cutoff.
type OutOfRangeError struct {
	DistanceKm float64
	CutoffKm   float64
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("Sorry, delivery is only available within %gkm of our shop.", e.CutoffKm)
}
func (e *OutOfRangeError) Unwrap() error { return errs.ErrOutOfRange }

type Line struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Unit      string          `json:"unit"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Total     decimal.Decimal `json:"total"`
}

type Order struct {
	Lines          []Line          `json:"lines"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	DeliveryCharge decimal.Decimal `json:"deliveryCharge"`
	GrandTotal     decimal.Decimal `json:"grandTotal"`
	Currency       string          `json:"currency"`
	House          string          `json:"house"`
	Address        string          `json:"address"`
	DistanceKm     *float64        `json:"distanceKm,omitempty"`
}

type Result struct {
	Order   Order  `json:"order"`
	Message string `json:"message"`
	Link    string `json:"link"`
}

// Quote is the eligibility and charge for one location.
type Quote struct {
	DistanceKm float64         `json:"distanceKm"`
	Allowed    bool            `json:"allowed"`
	Charge     decimal.Decimal `json:"charge"`
	CutoffKm   float64         `json:"cutoffKm"`
}

func (p Policy) Quote(loc geo.Point) Quote {
	d := p.Shop.DistanceTo(loc)
	return Quote{
		DistanceKm: d,
		Allowed:    p.Eligibility.Allowed(d),
		Charge:     p.Surcharge.Charge(d),
		CutoffKm:   p.Eligibility.CutoffKm,
	}
}

// ValidateDelivery checks the required text fields.
func ValidateDelivery(d Delivery) error {
	house := strings.TrimSpace(d.House) != ""
	addr := strings.TrimSpace(d.Address) != ""
	switch {
	case !house && !addr:
		return &FieldError{Field: "delivery", Message: msgBothMissing}
	case !house:
		return &FieldError{Field: "house", Message: msgHouseMissing}
	case !addr:
		return &FieldError{Field: "address", Message: msgAddressMissing}
	}
	return nil
}

// Compose validates the order and renders its summary. The surcharge only
// applies when the location is known.
func Compose(items []domain.CartItem, d Delivery, p Policy) (Result, error) {
	if len(items) == 0 {
		return Result{}, errs.ErrEmptyCart
	}
	if err := ValidateDelivery(d); err != nil {
		return Result{}, err
	}
	if d.Location != nil && !d.Location.Valid() {
		return Result{}, errs.ErrInvalidLocation
	}

	order := Order{
		Currency:       p.Currency,
		House:          strings.TrimSpace(d.House),
		Address:        strings.TrimSpace(d.Address),
		Subtotal:       cart.Subtotal(items),
		DeliveryCharge: decimal.Zero,
	}
	for _, it := range items {
		order.Lines = append(order.Lines, Line{
			ProductID: it.Product.ID,
			Name:      it.Product.Name,
			Unit:      it.Product.Unit,
			Quantity:  it.Quantity,
			UnitPrice: decimal.NewFromFloat(it.Product.Price),
			Total:     cart.LineTotal(it),
		})
	}

	if d.Location != nil {
		q := p.Quote(*d.Location)
		if !q.Allowed {
			return Result{}, &OutOfRangeError{DistanceKm: q.DistanceKm, CutoffKm: q.CutoffKm}
		}
		dist := q.DistanceKm
		order.DistanceKm = &dist
		order.DeliveryCharge = q.Charge
	}
	order.GrandTotal = order.Subtotal.Add(order.DeliveryCharge)

	msg := Summary(order)
	return Result{Order: order, Message: msg, Link: Link(p.Phone, msg)}, nil
}

// Summary renders the order as a WhatsApp message.
func Summary(o Order) string {
	pr := message.NewPrinter(language.English)
	cur := o.Currency
	var b strings.Builder
	b.WriteString("🛒 *New Order from Field Basket*\n\n")
	b.WriteString("*Order Details:*\n")
	for _, l := range o.Lines {
		fmt.Fprintf(&b, "- %s (%d%s) - %s %s\n", l.Name, l.Quantity, l.Unit, cur, amount(pr, l.Total))
	}
	b.WriteString("-----------------------------\n")
	fmt.Fprintf(&b, "*Total:* %s %s\n", cur, amount(pr, o.Subtotal))
	if o.DeliveryCharge.IsPositive() {
		fmt.Fprintf(&b, "*Delivery Charge:* %s %s\n", cur, amount(pr, o.DeliveryCharge))
	}
	fmt.Fprintf(&b, "*Grand Total:* %s %s\n", cur, amount(pr, o.GrandTotal))
	fmt.Fprintf(&b, "\n*House/Flat No.:* %s\n", o.House)
	addr := o.Address
	if addr == "" {
		addr = "-"
	}
	fmt.Fprintf(&b, "\n*Delivery Location:* %s\n", addr)
	if o.DistanceKm != nil {
		b.WriteString(pr.Sprintf("*Distance from shop:* %.1f km\n", *o.DistanceKm))
	}
	b.WriteString("\nThank you!")
	return b.String()
}

// Link builds the wa.me deep link. wa.me only accepts digits in the number.
func Link(phone, msg string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)
	return "https://wa.me/" + digits + "?text=" + strings.ReplaceAll(url.QueryEscape(msg), "+", "%20")
}

// amount prints whole values without decimals and the rest with two, grouped
// by the printer's locale.
func amount(pr *message.Printer, d decimal.Decimal) string {
	if d.IsInteger() {
		return pr.Sprintf("%d", d.IntPart())
	}
	return pr.Sprintf("%.2f", d.Round(2).InexactFloat64())
}

// IsFieldError reports whether err is a blank-field error and returns it.
func IsFieldError(err error) (*FieldError, bool) {
	var fe *FieldError
	ok := errors.As(err, &fe)
	return fe, ok
}
