package services

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"fieldbasket/internal/cart"
	"fieldbasket/internal/domain"
)

// CartService loads the session's cart record, applies one mutation and
// writes it back. Requests are serialized so concurrent edits of the same
// session never interleave.
type CartService struct {
	Carts cart.Persister
	Prods ProductStore

	mu sync.Mutex
}

func NewCartService(carts cart.Persister, prods ProductStore) *CartService {
	return &CartService{Carts: carts, Prods: prods}
}

type CartView struct {
	Items    []domain.CartItem `json:"items"`
	Subtotal decimal.Decimal   `json:"subtotal"`
	Count    int               `json:"count"`
}

func (s *CartService) View(sessionID string) (CartView, error) {
	return s.with(sessionID, func(*cart.Store) error { return nil })
}

// Items returns the session's cart in insertion order.
func (s *CartService) Items(sessionID string) ([]domain.CartItem, error) {
	v, err := s.View(sessionID)
	return v.Items, err
}

// Add puts one unit of productID in the cart, resolving the product snapshot
// through the catalog.
func (s *CartService) Add(ctx context.Context, sessionID, productID string) (CartView, error) {
	p, err := s.Prods.Get(ctx, productID)
	if err != nil {
		return CartView{}, err
	}
	return s.with(sessionID, func(st *cart.Store) error { return st.Add(p) })
}

// Update sets the quantity; zero or less removes the item.
func (s *CartService) Update(sessionID, productID string, qty int) (CartView, error) {
	return s.with(sessionID, func(st *cart.Store) error { return st.UpdateQuantity(productID, qty) })
}

func (s *CartService) Remove(sessionID, productID string) (CartView, error) {
	return s.with(sessionID, func(st *cart.Store) error { return st.Remove(productID) })
}

func (s *CartService) Clear(sessionID string) (CartView, error) {
	return s.with(sessionID, func(st *cart.Store) error { return st.Clear() })
}

func (s *CartService) with(sessionID string, fn func(*cart.Store) error) (CartView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := cart.Open(s.Carts, cart.SessionNamespace(sessionID))
	if err != nil {
		return CartView{}, err
	}
	if err := fn(st); err != nil {
		return CartView{}, err
	}
	items := st.Items()
	return CartView{Items: items, Subtotal: cart.Subtotal(items), Count: st.Count()}, nil
}
