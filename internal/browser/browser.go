package browser

import (
	"context"
	"strings"
	"sync"
	"time"

	"fieldbasket/internal/domain"
)

type Status string

const (
	StatusIdle     Status = "idle"
	StatusFetching Status = "fetching"
	StatusReady    Status = "ready"
	StatusError    Status = "error"
)

const (
	DefaultLimit    = 12
	DefaultDebounce = 500 * time.Millisecond
)

// State is a render snapshot.
type State struct {
	Page        int
	Limit       int
	Search      string
	Category    string
	Products    []domain.Product
	Total       int
	TotalPages  int
	Status      Status
	Err         string
	PrevEnabled bool
	NextEnabled bool
}

type Options struct {
	Limit    int
	Debounce time.Duration
	// Cache defaults to a fresh cache owned by this browser.
	Cache *Cache
	// Initial is a server-rendered first page (page 1, no search, all types).
	Initial *Page
}

// Browser drives search, category and paging over a Fetcher. Every load gets
// a sequence number and cancels the one before it; a response whose number is
// no longer the latest is dropped.
type Browser struct {
	fetcher  Fetcher
	cache    *Cache
	limit    int
	debounce time.Duration

	mu       sync.Mutex
	page     int
	search   string
	category string
	products []domain.Product
	total    int
	status   Status
	err      string

	seq    uint64
	cancel context.CancelFunc
	timer  *time.Timer
	closed bool

	subs    map[int]func(State)
	nextSub int
	busy    sync.WaitGroup
}

func New(f Fetcher, opts Options) *Browser {
	b := &Browser{
		fetcher:  f,
		cache:    opts.Cache,
		limit:    opts.Limit,
		debounce: opts.Debounce,
		page:     1,
		category: domain.TypeAll,
		status:   StatusIdle,
		subs:     map[int]func(State){},
	}
	if b.cache == nil {
		b.cache = NewCache()
	}
	if b.limit <= 0 {
		b.limit = DefaultLimit
	}
	if b.debounce <= 0 {
		b.debounce = DefaultDebounce
	}
	if opts.Initial != nil {
		b.cache.Set(b.keyLocked(), *opts.Initial)
		b.products = opts.Initial.Products
		b.total = opts.Initial.Total
		b.status = StatusReady
	}
	return b
}

// Load shows the current key, from cache when possible. It is also the
// user-triggered retry after an error.
func (b *Browser) Load() {
	b.mu.Lock()
	b.showLocked()
}

// SetSearch records new search text. After the debounce delay, if the trimmed
// term changed, the whole cache is cleared and page 1 of the new term loads.
func (b *Browser) SetSearch(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	if b.timer != nil {
		b.timer.Stop()
	}
	b.timer = time.AfterFunc(b.debounce, func() { b.applySearch(text) })
}

func (b *Browser) applySearch(text string) {
	term := strings.TrimSpace(text)
	b.mu.Lock()
	if b.closed || term == b.search {
		b.mu.Unlock()
		return
	}
	b.search = term
	b.resetLocked()
}

// SetCategory switches the category filter. It applies at once when no search
// is active; during a search it is only remembered.
func (b *Browser) SetCategory(category string) {
	c := domain.NormalizeType(category)
	b.mu.Lock()
	if b.closed || c == b.category {
		b.mu.Unlock()
		return
	}
	b.category = c
	if b.search != "" {
		b.mu.Unlock()
		return
	}
	b.resetLocked()
}

// NextPage and PrevPage are ignored while fetching and at the boundaries.
func (b *Browser) NextPage() {
	b.mu.Lock()
	if !b.nextEnabledLocked() {
		b.mu.Unlock()
		return
	}
	b.page++
	b.showLocked()
}

func (b *Browser) PrevPage() {
	b.mu.Lock()
	if !b.prevEnabledLocked() {
		b.mu.Unlock()
		return
	}
	b.page--
	b.showLocked()
}

// GoTo jumps to page p, superseding any in-flight fetch.
func (b *Browser) GoTo(p int) {
	if p < 1 {
		p = 1
	}
	b.mu.Lock()
	b.page = p
	b.showLocked()
}

func (b *Browser) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stateLocked()
}

// Subscribe registers fn to receive a snapshot after every state change.
func (b *Browser) Subscribe(fn func(State)) (unsubscribe func()) {
	b.mu.Lock()
	id := b.nextSub
	b.nextSub++
	b.subs[id] = fn
	b.mu.Unlock()
	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

// Wait blocks until no fetch is in flight.
func (b *Browser) Wait() { b.busy.Wait() }

// Close stops the debounce timer and cancels any in-flight fetch.
func (b *Browser) Close() {
	b.mu.Lock()
	b.closed = true
	if b.timer != nil {
		b.timer.Stop()
	}
	if b.cancel != nil {
		b.cancel()
	}
	b.seq++
	b.mu.Unlock()
	b.busy.Wait()
}

// resetLocked clears the cache, goes back to page 1 and loads. Unlocks b.mu.
func (b *Browser) resetLocked() {
	b.cache.Clear()
	b.page = 1
	b.showLocked()
}

// showLocked renders the current key from cache or starts a fetch for it.
// It must be called with b.mu held and releases it.
func (b *Browser) showLocked() {
	if b.closed {
		b.mu.Unlock()
		return
	}
	key := b.keyLocked()

	// whatever was in flight is now stale
	b.seq++
	seq := b.seq
	if b.cancel != nil {
		b.cancel()
		b.cancel = nil
	}

	if p, ok := b.cache.Get(key); ok {
		b.products = p.Products
		b.total = p.Total
		b.status = StatusReady
		b.err = ""
		b.publishAndUnlock()
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	b.cancel = cancel
	b.status = StatusFetching
	b.err = ""
	b.busy.Add(1)
	go b.fetch(ctx, seq, key)
	b.publishAndUnlock()
}

func (b *Browser) fetch(ctx context.Context, seq uint64, key Key) {
	defer b.busy.Done()
	p, err := b.fetcher.FetchProducts(ctx, key)

	b.mu.Lock()
	if seq != b.seq {
		b.mu.Unlock()
		return
	}
	b.cancel = nil
	if err != nil {
		b.products = nil
		b.total = 0
		b.status = StatusError
		b.err = err.Error()
		if b.err == "" {
			b.err = "Failed to load products"
		}
		b.publishAndUnlock()
		return
	}
	if p.Products == nil {
		p.Products = []domain.Product{}
	}
	b.cache.Set(key, p)
	b.products = p.Products
	b.total = p.Total
	b.status = StatusReady
	b.publishAndUnlock()
}

func (b *Browser) publishAndUnlock() {
	st := b.stateLocked()
	subs := make([]func(State), 0, len(b.subs))
	for _, fn := range b.subs {
		subs = append(subs, fn)
	}
	b.mu.Unlock()
	for _, fn := range subs {
		fn(st)
	}
}

func (b *Browser) keyLocked() Key {
	return Key{Page: b.page, Limit: b.limit, Search: b.search, Category: b.category}.Normalize()
}

func (b *Browser) totalPagesLocked() int { return domain.TotalPages(b.total, b.limit) }

func (b *Browser) prevEnabledLocked() bool {
	return b.status != StatusFetching && b.page > 1
}

func (b *Browser) nextEnabledLocked() bool {
	return b.status != StatusFetching && b.page < b.totalPagesLocked()
}

func (b *Browser) stateLocked() State {
	products := make([]domain.Product, len(b.products))
	copy(products, b.products)
	return State{
		Page:        b.page,
		Limit:       b.limit,
		Search:      b.search,
		Category:    b.category,
		Products:    products,
		Total:       b.total,
		TotalPages:  b.totalPagesLocked(),
		Status:      b.status,
		Err:         b.err,
		PrevEnabled: b.prevEnabledLocked(),
		NextEnabled: b.nextEnabledLocked(),
	}
}
