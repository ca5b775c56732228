// Package cart holds the shopping cart state container.
package cart

import (
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"fieldbasket/internal/domain"
)

// Namespace is the storage namespace of the persisted cart record.
const Namespace = "cart-storage"

// MaxQuantity caps a single cart line.
const MaxQuantity = 50

// SessionNamespace scopes the cart record to one browser session.
func SessionNamespace(sid string) string {
	if sid == "" {
		return Namespace
	}
	return Namespace + ":" + sid
}

// Persister stores the ordered cart items under a namespace.
type Persister interface {
	Load(namespace string) ([]domain.CartItem, error)
	Save(namespace string, items []domain.CartItem) error
}

// Deleter is implemented by persisters that can drop a record. An emptied
// cart is deleted instead of saved as an empty list.
type Deleter interface {
	Delete(namespace string) error
}

// Store is an ordered list of cart items with at most one entry per product.
// Every mutation is persisted (when a Persister is set) and then published to
// subscribers.
type Store struct {
	mu      sync.Mutex
	ns      string
	items   []domain.CartItem
	persist Persister
	subs    map[int]func([]domain.CartItem)
	nextSub int
}

// New returns an empty, memory-only store.
func New() *Store {
	return &Store{ns: Namespace, subs: map[int]func([]domain.CartItem){}}
}

// Open rehydrates the store persisted under namespace.
func Open(p Persister, namespace string) (*Store, error) {
	s := New()
	s.ns = namespace
	s.persist = p
	if p == nil {
		return s, nil
	}
	items, err := p.Load(namespace)
	if err != nil {
		return nil, fmt.Errorf("load cart %s: %w", namespace, err)
	}
	for _, it := range items {
		if it.Quantity < 1 || it.Product.ID == "" || s.index(it.Product.ID) >= 0 {
			continue
		}
		it.Quantity = min(it.Quantity, MaxQuantity)
		s.items = append(s.items, it)
	}
	return s, nil
}

func (s *Store) Namespace() string { return s.ns }

// Add increments the quantity of product or appends it with quantity 1. A
// line already at MaxQuantity stays there.
func (s *Store) Add(p domain.Product) error {
	return s.mutate(func() {
		if i := s.index(p.ID); i >= 0 {
			if s.items[i].Quantity < MaxQuantity {
				s.items[i].Quantity++
			}
			return
		}
		s.items = append(s.items, domain.CartItem{Product: p, Quantity: 1})
	})
}

// Remove drops the entry for productID; absent ids are a no-op.
func (s *Store) Remove(productID string) error {
	return s.mutate(func() { s.removeLocked(productID) })
}

// UpdateQuantity sets the quantity of productID, capped at MaxQuantity. A
// quantity below 1 removes the entry so a non-positive quantity is never
// stored.
func (s *Store) UpdateQuantity(productID string, quantity int) error {
	return s.mutate(func() {
		i := s.index(productID)
		if i < 0 {
			return
		}
		if quantity < 1 {
			s.removeLocked(productID)
			return
		}
		s.items[i].Quantity = min(quantity, MaxQuantity)
	})
}

// Decrement lowers the quantity by one, removing the entry at zero.
func (s *Store) Decrement(productID string) error {
	return s.mutate(func() {
		i := s.index(productID)
		if i < 0 {
			return
		}
		if s.items[i].Quantity <= 1 {
			s.removeLocked(productID)
			return
		}
		s.items[i].Quantity--
	})
}

func (s *Store) Clear() error {
	return s.mutate(func() { s.items = nil })
}

// Items returns a copy of the entries in insertion order.
func (s *Store) Items() []domain.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Count is the total number of units in the cart.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, it := range s.items {
		n += it.Quantity
	}
	return n
}

func (s *Store) Subtotal() decimal.Decimal {
	return Subtotal(s.Items())
}

// Subscribe registers fn to receive the items after every mutation.
func (s *Store) Subscribe(fn func([]domain.CartItem)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Subtotal sums price*quantity over items.
func Subtotal(items []domain.CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(LineTotal(it))
	}
	return total
}

func LineTotal(it domain.CartItem) decimal.Decimal {
	return decimal.NewFromFloat(it.Product.Price).Mul(decimal.NewFromInt(int64(it.Quantity)))
}

func (s *Store) mutate(fn func()) error {
	s.mu.Lock()
	fn()
	items := s.snapshotLocked()
	subs := make([]func([]domain.CartItem), 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	var err error
	if s.persist != nil {
		err = s.saveLocked(items)
	}
	s.mu.Unlock()

	for _, sub := range subs {
		sub(items)
	}
	return err
}

func (s *Store) saveLocked(items []domain.CartItem) error {
	if d, ok := s.persist.(Deleter); ok && len(items) == 0 {
		if err := d.Delete(s.ns); err != nil {
			return fmt.Errorf("delete cart %s: %w", s.ns, err)
		}
		return nil
	}
	if err := s.persist.Save(s.ns, items); err != nil {
		return fmt.Errorf("save cart %s: %w", s.ns, err)
	}
	return nil
}

func (s *Store) index(productID string) int {
	for i, it := range s.items {
		if it.Product.ID == productID {
			return i
		}
	}
	return -1
}

func (s *Store) removeLocked(productID string) {
	out := s.items[:0]
	for _, it := range s.items {
		if it.Product.ID != productID {
			out = append(out, it)
		}
	}
	s.items = out
}

func (s *Store) snapshotLocked() []domain.CartItem {
	out := make([]domain.CartItem, len(s.items))
	copy(out, s.items)
	return out
}
