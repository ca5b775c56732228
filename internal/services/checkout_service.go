package services

import (
	"context"
	"errors"

	"fieldbasket/internal/checkout"
	"fieldbasket/internal/errs"
	"fieldbasket/internal/geo"
)

// Geocoder resolves addresses to coordinates and back.
type Geocoder interface {
	Search(ctx context.Context, address string) (geo.Point, error)
	Reverse(ctx context.Context, p geo.Point) (string, error)
}

type CheckoutService struct {
	Carts  *CartService
	Geo    Geocoder
	Policy checkout.Policy
}

func NewCheckoutService(carts *CartService, g Geocoder, policy checkout.Policy) *CheckoutService {
	return &CheckoutService{Carts: carts, Geo: g, Policy: policy}
}

type CheckoutRequest struct {
	House    string     `json:"house"`
	Address  string     `json:"address"`
	Location *geo.Point `json:"location,omitempty"`
	// RequireLocation refuses the order when the address cannot be placed.
	RequireLocation bool `json:"requireLocation,omitempty"`
}

type CheckoutOutcome struct {
	checkout.Result
	// LocationWarning is set when the address could not be geocoded and the
	// order went ahead without a distance check.
	LocationWarning string `json:"locationWarning,omitempty"`
}

// Checkout composes the order summary for the session's cart. The cart is
// left untouched; the customer still has to send the message.
func (s *CheckoutService) Checkout(ctx context.Context, sessionID string, req CheckoutRequest) (CheckoutOutcome, error) {
	items, err := s.Carts.Items(sessionID)
	if err != nil {
		return CheckoutOutcome{}, err
	}
	if len(items) == 0 {
		return CheckoutOutcome{}, errs.ErrEmptyCart
	}
	d := checkout.Delivery{House: req.House, Address: req.Address, Location: req.Location}
	if err := checkout.ValidateDelivery(d); err != nil {
		return CheckoutOutcome{}, err
	}

	var out CheckoutOutcome
	if d.Location == nil {
		loc, err := s.locate(ctx, d.Address)
		switch {
		case err == nil:
			d.Location = &loc
		case req.RequireLocation || errors.Is(err, context.Canceled):
			return CheckoutOutcome{}, err
		default:
			out.LocationWarning = PublicMessage(err)
		}
	}

	res, err := checkout.Compose(items, d, s.Policy)
	if err != nil {
		return CheckoutOutcome{}, err
	}
	out.Result = res
	return out, nil
}

// Quote checks a location, geocoding address when no coordinates are given.
func (s *CheckoutService) Quote(ctx context.Context, loc *geo.Point, address string) (checkout.Quote, error) {
	if loc == nil {
		p, err := s.locate(ctx, address)
		if err != nil {
			return checkout.Quote{}, err
		}
		loc = &p
	}
	if !loc.Valid() {
		return checkout.Quote{}, errs.ErrInvalidLocation
	}
	return s.Policy.Quote(*loc), nil
}

// ReverseLocation turns device coordinates into an address plus a quote.
func (s *CheckoutService) ReverseLocation(ctx context.Context, p geo.Point) (string, checkout.Quote, error) {
	if !p.Valid() {
		return "", checkout.Quote{}, errs.ErrInvalidLocation
	}
	q := s.Policy.Quote(p)
	if s.Geo == nil {
		return "", q, errs.ErrGeocoderOffline
	}
	addr, err := s.Geo.Reverse(ctx, p)
	return addr, q, err
}

func (s *CheckoutService) locate(ctx context.Context, address string) (geo.Point, error) {
	if s.Geo == nil {
		return geo.Point{}, errs.ErrGeocoderOffline
	}
	if address == "" {
		return geo.Point{}, errs.ErrMissingDelivery
	}
	return s.Geo.Search(ctx, address)
}

// PublicMessage is the user-facing text for err: the message of a typed
// checkout error, else of the sentinel it wraps.
func PublicMessage(err error) string {
	var fe *checkout.FieldError
	var oe *checkout.OutOfRangeError
	switch {
	case errors.As(err, &fe):
		return fe.Message
	case errors.As(err, &oe):
		return oe.Error()
	}
	return errs.Message(err)
}
