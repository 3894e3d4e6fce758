package usecase

import (
	"context"
	"sort"
	"sync"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/shopspring/decimal"
)

// =====================
// インメモリのTxManager + Repository
// WithinTxはmuを握りっぱなしにする（行ロックの代わりに全体を直列化）。
// fnがerrorを返したら開始時点の状態に戻す。
// =====================

type memStore struct {
	mu          sync.Mutex
	products    map[int64]model.Product
	categories  map[int64]model.Category
	cart        map[int64]model.CartItem
	orders      map[int64]model.Order
	details     []model.OrderDetail
	adjustments []model.InventoryAdjustment
	nextID      int64
	failOn      map[string]error
	txCalls     int
}

type memState struct {
	products    map[int64]model.Product
	categories  map[int64]model.Category
	cart        map[int64]model.CartItem
	orders      map[int64]model.Order
	details     []model.OrderDetail
	adjustments []model.InventoryAdjustment
	nextID      int64
}

func newMemStore() *memStore {
	return &memStore{
		products:   map[int64]model.Product{},
		categories: map[int64]model.Category{},
		cart:       map[int64]model.CartItem{},
		orders:     map[int64]model.Order{},
		failOn:     map[string]error{},
	}
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *memStore) snapshot() memState {
	return memState{
		products:    copyMap(s.products),
		categories:  copyMap(s.categories),
		cart:        copyMap(s.cart),
		orders:      copyMap(s.orders),
		details:     append([]model.OrderDetail(nil), s.details...),
		adjustments: append([]model.InventoryAdjustment(nil), s.adjustments...),
		nextID:      s.nextID,
	}
}

func (s *memStore) restore(st memState) {
	s.products = st.products
	s.categories = st.categories
	s.cart = st.cart
	s.orders = st.orders
	s.details = st.details
	s.adjustments = st.adjustments
	s.nextID = st.nextID
}

func (s *memStore) newID() int64 {
	s.nextID++
	return s.nextID
}

// Tx外から呼ばれたときだけロックする
func (s *memStore) enter(inTx bool) func() {
	if inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *memStore) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.txCalls++
	saved := s.snapshot()
	defer func() {
		if p := recover(); p != nil {
			s.restore(saved)
			panic(p)
		}
		if err != nil {
			s.restore(saved)
		}
	}()

	return fn(memTxRepos{s: s})
}

var _ repo.TransactionManager = (*memStore)(nil)

type memTxRepos struct{ s *memStore }

func (r memTxRepos) Orders() repo.OrderRepository             { return memOrders{r.s, true} }
func (r memTxRepos) OrderDetails() repo.OrderDetailRepository { return memOrderDetails{r.s, true} }
func (r memTxRepos) CartItems() repo.CartItemRepository       { return memCart{r.s, true} }
func (r memTxRepos) Inventory() repo.InventoryRepository      { return memInventory{r.s, true} }
func (r memTxRepos) Products() repo.ProductRepository         { return memProducts{r.s, true} }

// Tx外で使うrepo
func (s *memStore) cartRepo() repo.CartItemRepository           { return memCart{s, false} }
func (s *memStore) productRepo() repo.ProductRepository         { return memProducts{s, false} }
func (s *memStore) categoryRepo() repo.CategoryRepository       { return memCategories{s, false} }
func (s *memStore) orderRepo() repo.OrderRepository             { return memOrders{s, false} }
func (s *memStore) orderDetailRepo() repo.OrderDetailRepository { return memOrderDetails{s, false} }

// ---------- テストデータ ----------

func (s *memStore) addProduct(name string, price string, stock int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.newID()
	s.products[id] = model.Product{ID: id, Name: name, Price: decimal.RequireFromString(price), Stock: stock}
	return id
}

func (s *memStore) addCategory(name string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.newID()
	s.categories[id] = model.Category{ID: id, Name: name}
	return id
}

func (s *memStore) addCart(userID int64, productID int64, qty int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.newID()
	s.cart[id] = model.CartItem{ID: id, UserID: userID, ProductID: productID, Quantity: qty}
	return id
}

func (s *memStore) setStock(productID int64, stock int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.products[productID]
	p.Stock = stock
	s.products[productID] = p
}

func (s *memStore) stockOf(productID int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products[productID].Stock
}

func (s *memStore) cartOf(userID int64) []model.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cartLocked(userID)
}

func (s *memStore) cartLocked(userID int64) []model.CartItem {
	out := []model.CartItem{}
	for _, it := range s.cart {
		if it.UserID == userID {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *memStore) allOrders() []model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Order{}
	for _, o := range s.orders {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *memStore) detailsOf(orderID int64) []model.OrderDetail {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.OrderDetail{}
	for _, d := range s.details {
		if d.OrderID == orderID {
			out = append(out, d)
		}
	}
	return out
}

func (s *memStore) detailCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.details)
}

func (s *memStore) txCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.txCalls
}

// ---------- products ----------

type memProducts struct {
	s    *memStore
	inTx bool
}

func (r memProducts) ListAll(ctx context.Context) ([]model.Product, error) {
	defer r.s.enter(r.inTx)()
	out := []model.Product{}
	for _, p := range r.s.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r memProducts) ListByCategoryID(ctx context.Context, categoryID int64) ([]model.Product, error) {
	defer r.s.enter(r.inTx)()
	out := []model.Product{}
	for _, p := range r.s.products {
		if p.CategoryID != nil && *p.CategoryID == categoryID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r memProducts) FindByID(ctx context.Context, id int64) (model.Product, error) {
	defer r.s.enter(r.inTx)()
	p, ok := r.s.products[id]
	if !ok {
		return model.Product{}, repo.ErrNotFound
	}
	return p, nil
}

func (r memProducts) LockByIDs(ctx context.Context, ids []int64) (map[int64]model.Product, error) {
	defer r.s.enter(r.inTx)()
	if err := r.s.failOn["lock_products"]; err != nil {
		return nil, err
	}
	out := map[int64]model.Product{}
	for _, id := range ids {
		if p, ok := r.s.products[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (r memProducts) CreateIfAbsent(ctx context.Context, p model.Product) (model.Product, bool, error) {
	defer r.s.enter(r.inTx)()
	for _, existing := range r.s.products {
		if existing.Name == p.Name {
			return existing, false, nil
		}
	}
	p.ID = r.s.newID()
	r.s.products[p.ID] = p
	return p, true, nil
}

// ---------- categories ----------

type memCategories struct {
	s    *memStore
	inTx bool
}

func (r memCategories) List(ctx context.Context) ([]model.Category, error) {
	defer r.s.enter(r.inTx)()
	out := []model.Category{}
	for _, c := range r.s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r memCategories) FindByID(ctx context.Context, id int64) (model.Category, error) {
	defer r.s.enter(r.inTx)()
	c, ok := r.s.categories[id]
	if !ok {
		return model.Category{}, repo.ErrNotFound
	}
	return c, nil
}

func (r memCategories) EnsureByName(ctx context.Context, name string) (model.Category, error) {
	defer r.s.enter(r.inTx)()
	for _, c := range r.s.categories {
		if c.Name == name {
			return c, nil
		}
	}
	c := model.Category{ID: r.s.newID(), Name: name}
	r.s.categories[c.ID] = c
	return c, nil
}

// ---------- cart ----------

type memCart struct {
	s    *memStore
	inTx bool
}

func (r memCart) ListByUserID(ctx context.Context, userID int64) ([]model.CartItem, error) {
	defer r.s.enter(r.inTx)()
	if err := r.s.failOn["list_cart"]; err != nil {
		return nil, err
	}
	return r.s.cartLocked(userID), nil
}

func (r memCart) ListByUserIDForUpdate(ctx context.Context, userID int64) ([]model.CartItem, error) {
	defer r.s.enter(r.inTx)()
	return r.s.cartLocked(userID), nil
}

func (r memCart) FindByUserAndProduct(ctx context.Context, userID int64, productID int64) (model.CartItem, error) {
	defer r.s.enter(r.inTx)()
	for _, it := range r.s.cart {
		if it.UserID == userID && it.ProductID == productID {
			return it, nil
		}
	}
	return model.CartItem{}, repo.ErrNotFound
}

func (r memCart) AddQuantity(ctx context.Context, userID int64, productID int64, addQty int64) error {
	defer r.s.enter(r.inTx)()
	for id, it := range r.s.cart {
		if it.UserID == userID && it.ProductID == productID {
			it.Quantity += addQty
			r.s.cart[id] = it
			return nil
		}
	}
	id := r.s.newID()
	r.s.cart[id] = model.CartItem{ID: id, UserID: userID, ProductID: productID, Quantity: addQty}
	return nil
}

func (r memCart) DeleteByID(ctx context.Context, cartItemID int64) error {
	defer r.s.enter(r.inTx)()
	if err := r.s.failOn["delete_cart"]; err != nil {
		return err
	}
	if _, ok := r.s.cart[cartItemID]; !ok {
		return repo.ErrNotFound
	}
	delete(r.s.cart, cartItemID)
	return nil
}

// ---------- inventory ----------

type memInventory struct {
	s    *memStore
	inTx bool
}

func (r memInventory) DecreaseStockIfEnough(ctx context.Context, productID int64, qty int64) (bool, error) {
	defer r.s.enter(r.inTx)()
	if err := r.s.failOn["decrease_stock"]; err != nil {
		return false, err
	}
	p, ok := r.s.products[productID]
	if !ok || p.Stock < qty {
		return false, nil
	}
	p.Stock -= qty
	r.s.products[productID] = p
	return true, nil
}

func (r memInventory) SetStock(ctx context.Context, productID int64, newStock int64) error {
	defer r.s.enter(r.inTx)()
	p, ok := r.s.products[productID]
	if !ok {
		return repo.ErrNotFound
	}
	p.Stock = newStock
	r.s.products[productID] = p
	return nil
}

func (r memInventory) CreateAdjustment(ctx context.Context, adj model.InventoryAdjustment) error {
	defer r.s.enter(r.inTx)()
	adj.ID = r.s.newID()
	r.s.adjustments = append(r.s.adjustments, adj)
	return nil
}

// ---------- orders ----------

type memOrders struct {
	s    *memStore
	inTx bool
}

func (r memOrders) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	defer r.s.enter(r.inTx)()
	o, ok := r.s.orders[orderID]
	if !ok {
		return model.Order{}, repo.ErrNotFound
	}
	return o, nil
}

func (r memOrders) ListByUserID(ctx context.Context, userID int64) ([]model.Order, error) {
	defer r.s.enter(r.inTx)()
	out := []model.Order{}
	for _, o := range r.s.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r memOrders) Create(ctx context.Context, order model.Order) (int64, error) {
	defer r.s.enter(r.inTx)()
	if err := r.s.failOn["create_order"]; err != nil {
		return 0, err
	}
	order.ID = r.s.newID()
	r.s.orders[order.ID] = order
	return order.ID, nil
}

type memOrderDetails struct {
	s    *memStore
	inTx bool
}

func (r memOrderDetails) CreateBulk(ctx context.Context, orderID int64, details []model.OrderDetail) error {
	defer r.s.enter(r.inTx)()
	if err := r.s.failOn["create_details"]; err != nil {
		return err
	}
	for _, d := range details {
		d.ID = r.s.newID()
		d.OrderID = orderID
		r.s.details = append(r.s.details, d)
	}
	return nil
}

func (r memOrderDetails) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderDetail, error) {
	defer r.s.enter(r.inTx)()
	out := []model.OrderDetail{}
	for _, d := range r.s.details {
		if d.OrderID == orderID {
			out = append(out, d)
		}
	}
	return out, nil
}

// commit後の無効化呼び出しを数える
type countingInvalidator struct {
	mu    sync.Mutex
	calls int
}

func (c *countingInvalidator) InvalidateProducts(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return nil
}

func (c *countingInvalidator) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}
