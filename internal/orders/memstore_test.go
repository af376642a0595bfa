package orders

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/matheusmosca/storefront/internal/basket"
	"github.com/matheusmosca/storefront/internal/inventory"
	"github.com/matheusmosca/storefront/internal/storage"
)

// memStore is an in-memory database with row locks held until commit or
// rollback and writes staged per transaction. It plays every repository
// the checkout touches so the real Adjuster can run on top of it.
type memStore struct {
	mu         sync.Mutex
	products   map[int64]*memProduct
	rowLocks   map[int64]*sync.Mutex
	baskets    map[string]map[int64]int
	warehouses map[int64]bool
	orders     map[string]*Order
	contacts   map[string]ContactInfo
	items      []OrderItem
	movements  int
	nextItemID int64

	// commitConflicts makes the next N commits fail with a storage conflict.
	commitConflicts int
	failItemInsert  error
}

type memProduct struct {
	name     string
	price    decimal.Decimal
	quantity int
	deleted  bool
}

func newMemStore() *memStore {
	return &memStore{
		products:   make(map[int64]*memProduct),
		rowLocks:   make(map[int64]*sync.Mutex),
		baskets:    make(map[string]map[int64]int),
		warehouses: map[int64]bool{1: true},
		orders:     make(map[string]*Order),
		contacts:   make(map[string]ContactInfo),
	}
}

func (s *memStore) addProduct(id int64, name string, price string, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[id] = &memProduct{name: name, price: decimal.RequireFromString(price), quantity: quantity}
	s.rowLocks[id] = &sync.Mutex{}
}

func (s *memStore) putBasket(userID string, productID int64, count int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.baskets[userID] == nil {
		s.baskets[userID] = make(map[int64]int)
	}
	s.baskets[userID][productID] = count
}

func (s *memStore) quantity(productID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products[productID].quantity
}

func (s *memStore) basketSize(userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.baskets[userID])
}

func (s *memStore) orderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

func (s *memStore) itemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

type memTx struct {
	store     *memStore
	held      []int64
	stock     map[int64]int
	orders    []*Order
	contacts  map[string]ContactInfo
	items     []*OrderItem
	movements int
	cleared   []string
	done      bool
}

func (s *memStore) BeginTx(ctx context.Context) (storage.Tx, error) {
	return &memTx{
		store:    s,
		stock:    make(map[int64]int),
		contacts: make(map[string]ContactInfo),
	}, nil
}

func asMemTx(tx storage.Tx) *memTx {
	return tx.(*memTx)
}

func (tx *memTx) lock(productID int64) {
	for _, id := range tx.held {
		if id == productID {
			return
		}
	}

	tx.store.mu.Lock()
	rowLock, ok := tx.store.rowLocks[productID]
	tx.store.mu.Unlock()
	if !ok {
		return
	}

	rowLock.Lock()
	tx.held = append(tx.held, productID)
}

func (tx *memTx) release() {
	tx.store.mu.Lock()
	locks := make([]*sync.Mutex, 0, len(tx.held))
	for _, id := range tx.held {
		locks = append(locks, tx.store.rowLocks[id])
	}
	tx.store.mu.Unlock()

	for _, l := range locks {
		l.Unlock()
	}
	tx.held = nil
	tx.done = true
}

func (tx *memTx) Commit(ctx context.Context) error {
	if tx.done {
		return fmt.Errorf("transaction already closed")
	}
	defer tx.release()

	s := tx.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.commitConflicts > 0 {
		s.commitConflicts--
		return fmt.Errorf("%w: could not serialize access (40001)", storage.ErrStorageConflict)
	}

	for id, q := range tx.stock {
		s.products[id].quantity = q
	}
	for _, o := range tx.orders {
		s.orders[o.ID] = o
	}
	for id, c := range tx.contacts {
		s.contacts[id] = c
	}
	for _, item := range tx.items {
		s.nextItemID++
		item.ID = s.nextItemID
		s.items = append(s.items, *item)
	}
	s.movements += tx.movements
	for _, userID := range tx.cleared {
		delete(s.baskets, userID)
	}
	return nil
}

func (tx *memTx) Rollback(ctx context.Context) error {
	if tx.done {
		return nil
	}
	tx.release()
	return nil
}

// orders.Repository

func (s *memStore) CreateOrder(ctx context.Context, tx storage.Tx, order *Order) error {
	t := asMemTx(tx)
	copied := *order
	t.orders = append(t.orders, &copied)
	return nil
}

func (s *memStore) CreateContactInfo(ctx context.Context, tx storage.Tx, orderID string, contact ContactInfo) error {
	asMemTx(tx).contacts[orderID] = contact
	return nil
}

func (s *memStore) CreateOrderItem(ctx context.Context, tx storage.Tx, item *OrderItem) error {
	s.mu.Lock()
	failure := s.failItemInsert
	s.mu.Unlock()
	if failure != nil {
		return failure
	}

	t := asMemTx(tx)
	copied := *item
	t.items = append(t.items, &copied)
	return nil
}

func (s *memStore) WarehouseExists(ctx context.Context, tx storage.Tx, warehouseID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.warehouses[warehouseID], nil
}

func (s *memStore) GetOrder(ctx context.Context, orderID string) (*OrderDetails, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[orderID]
	if !ok {
		return nil, ErrOrderNotFound
	}

	details := &OrderDetails{Order: *order, Status: "Pending", Contact: s.contacts[orderID]}
	for _, item := range s.items {
		if item.OrderID == orderID {
			details.Items = append(details.Items, item)
		}
	}
	return details, nil
}

// BasketReader

func (s *memStore) ListForCheckout(ctx context.Context, tx storage.Tx, userID string) ([]basket.Line, error) {
	t := asMemTx(tx)

	s.mu.Lock()
	ids := make([]int64, 0, len(s.baskets[userID]))
	for id := range s.baskets[userID] {
		ids = append(ids, id)
	}
	s.mu.Unlock()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	lines := make([]basket.Line, 0, len(ids))
	for _, id := range ids {
		t.lock(id)

		s.mu.Lock()
		p := s.products[id]
		lines = append(lines, basket.Line{
			UserID:      userID,
			ProductID:   id,
			Count:       s.baskets[userID][id],
			ProductName: p.name,
			Price:       p.price,
		})
		s.mu.Unlock()
	}
	return lines, nil
}

func (s *memStore) Clear(ctx context.Context, tx storage.Tx, userID string) error {
	t := asMemTx(tx)
	t.cleared = append(t.cleared, userID)
	return nil
}

// inventory.Repository

func (s *memStore) currentQuantity(t *memTx, productID int64) (int, error) {
	if q, ok := t.stock[productID]; ok {
		return q, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[productID]
	if !ok || p.deleted {
		return 0, inventory.ErrProductNotFound
	}
	return p.quantity, nil
}

func (s *memStore) GetProductForUpdate(ctx context.Context, tx storage.Tx, productID int64) (*inventory.ProductStock, error) {
	t := asMemTx(tx)
	t.lock(productID)

	q, err := s.currentQuantity(t, productID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.products[productID]
	return &inventory.ProductStock{ProductID: productID, Name: p.name, Price: p.price, Quantity: q}, nil
}

func (s *memStore) DecreaseStock(ctx context.Context, tx storage.Tx, productID int64, orderID string, count int) (int, error) {
	t := asMemTx(tx)
	q, err := s.currentQuantity(t, productID)
	if err != nil {
		return 0, err
	}
	if q < count {
		return 0, inventory.ErrInsufficientStock
	}

	t.stock[productID] = q - count
	t.movements++
	return q - count, nil
}
