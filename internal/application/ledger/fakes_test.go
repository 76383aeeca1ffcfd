package ledger_test

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/Ventas-api/internal/application/ledger"
	"github.com/jhoicas/Ventas-api/internal/domain"
	"github.com/jhoicas/Ventas-api/internal/domain/entity"
	"github.com/jhoicas/Ventas-api/internal/domain/repository"
	"github.com/jhoicas/Ventas-api/pkg/logger"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func stockKey(productID, branchID string) string {
	return productID + "|" + branchID
}

// ──────────────────────────────────────────────────────────────────────────────
// Estado en memoria con semántica transaccional: cada transacción trabaja sobre
// un clon del estado y solo lo publica si la función termina sin error. El mutex
// del runner serializa a los escritores, igual que el bloqueo de fila en la base.
// ──────────────────────────────────────────────────────────────────────────────

type memState struct {
	stocks    map[string]*entity.Stock
	movements []*entity.StockMovement
	sales     map[string]*entity.Sale
	items     map[string][]*entity.SaleItem
}

func newMemState() *memState {
	return &memState{
		stocks: make(map[string]*entity.Stock),
		sales:  make(map[string]*entity.Sale),
		items:  make(map[string][]*entity.SaleItem),
	}
}

func (s *memState) clone() *memState {
	c := newMemState()
	for k, v := range s.stocks {
		cv := *v
		c.stocks[k] = &cv
	}
	c.movements = append([]*entity.StockMovement(nil), s.movements...)
	for k, v := range s.sales {
		cv := *v
		c.sales[k] = &cv
	}
	for k, v := range s.items {
		c.items[k] = append([]*entity.SaleItem(nil), v...)
	}
	return c
}

type fakeTxRunner struct {
	mu    sync.Mutex
	state *memState

	// conflictos de concurrencia a simular antes de dejar pasar una transacción
	conflictsLeft int
}

func newFakeTxRunner() *fakeTxRunner {
	return &fakeTxRunner{state: newMemState()}
}

func (r *fakeTxRunner) Run(_ context.Context, fn func(
	movRepo repository.StockMovementRepository,
	stockRepo repository.StockRepository,
) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conflictsLeft > 0 {
		r.conflictsLeft--
		return domain.ErrConcurrencyConflict
	}
	work := r.state.clone()
	if err := fn(&memMovementRepo{work: work}, &memStockRepo{work: work}); err != nil {
		return err
	}
	r.state = work
	return nil
}

func (r *fakeTxRunner) RunSale(_ context.Context, fn func(
	movRepo repository.StockMovementRepository,
	stockRepo repository.StockRepository,
	saleRepo repository.SaleRepository,
) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conflictsLeft > 0 {
		r.conflictsLeft--
		return domain.ErrConcurrencyConflict
	}
	work := r.state.clone()
	err := fn(&memMovementRepo{work: work}, &memStockRepo{work: work}, &memSaleRepo{work: work})
	if err != nil {
		return err
	}
	r.state = work
	return nil
}

// hookedTxRunner intercala un callback justo antes de abrir la transacción de
// venta. Sirve para colar una operación competidora entre la lectura inicial
// de un caso de uso y su transacción (el callback corre antes de tomar el
// lock, así que puede ejecutar una transacción completa sin bloquearse).
type hookedTxRunner struct {
	*fakeTxRunner
	beforeRunSale func()
}

func (r *hookedTxRunner) RunSale(ctx context.Context, fn func(
	movRepo repository.StockMovementRepository,
	stockRepo repository.StockRepository,
	saleRepo repository.SaleRepository,
) error) error {
	if r.beforeRunSale != nil {
		hook := r.beforeRunSale
		r.beforeRunSale = nil
		hook()
	}
	return r.fakeTxRunner.RunSale(ctx, fn)
}

// ──────────────────────────────────────────────────────────────────────────────
// Repositorios en memoria. Con work != nil operan sobre el estado de la
// transacción en curso (el runner ya sostiene el lock); con work == nil leen el
// estado confirmado bajo el lock del runner.
// ──────────────────────────────────────────────────────────────────────────────

type memStockRepo struct {
	r    *fakeTxRunner
	work *memState
}

func (m *memStockRepo) state() (*memState, func()) {
	if m.work != nil {
		return m.work, func() {}
	}
	m.r.mu.Lock()
	return m.r.state, m.r.mu.Unlock
}

func (m *memStockRepo) Get(productID, branchID string) (*entity.Stock, error) {
	st, done := m.state()
	defer done()
	if s, ok := st.stocks[stockKey(productID, branchID)]; ok {
		cp := *s
		return &cp, nil
	}
	return &entity.Stock{ProductID: productID, BranchID: branchID}, nil
}

func (m *memStockRepo) ApplyDelta(productID, branchID string, delta decimal.Decimal) (*entity.Stock, error) {
	st, done := m.state()
	defer done()
	key := stockKey(productID, branchID)
	prev, ok := st.stocks[key]
	var next entity.Stock
	if ok {
		next = *prev
	} else {
		next = entity.Stock{
			ProductID:       productID,
			BranchID:        branchID,
			MaximumQuantity: dec("999999"),
		}
	}
	next.CurrentQuantity = next.CurrentQuantity.Add(delta)
	next.LastUpdated = time.Now()
	st.stocks[key] = &next
	cp := next
	return &cp, nil
}

func (m *memStockRepo) ListByBranch(branchID string) ([]*entity.Stock, error) {
	st, done := m.state()
	defer done()
	var out []*entity.Stock
	for _, s := range st.stocks {
		if s.BranchID == branchID {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

type memMovementRepo struct {
	r    *fakeTxRunner
	work *memState
}

func (m *memMovementRepo) state() (*memState, func()) {
	if m.work != nil {
		return m.work, func() {}
	}
	m.r.mu.Lock()
	return m.r.state, m.r.mu.Unlock
}

func (m *memMovementRepo) Create(movement *entity.StockMovement) error {
	st, done := m.state()
	defer done()
	cp := *movement
	if cp.ID == "" {
		cp.ID = uuid.New().String()
		movement.ID = cp.ID
	}
	st.movements = append(st.movements, &cp)
	return nil
}

func (m *memMovementRepo) ListByProduct(productID, branchID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	st, done := m.state()
	defer done()
	var out []*entity.StockMovement
	for i := len(st.movements) - 1; i >= 0; i-- {
		mv := st.movements[i]
		if mv.ProductID == productID && mv.BranchID == branchID && inRange(mv.CreatedAt, from, to) {
			out = append(out, mv)
		}
	}
	return page(out, limit, offset), nil
}

func (m *memMovementRepo) ListByBranch(branchID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	st, done := m.state()
	defer done()
	var out []*entity.StockMovement
	for i := len(st.movements) - 1; i >= 0; i-- {
		mv := st.movements[i]
		if mv.BranchID == branchID && inRange(mv.CreatedAt, from, to) {
			out = append(out, mv)
		}
	}
	return page(out, limit, offset), nil
}

func inRange(t time.Time, from, to *time.Time) bool {
	if from != nil && t.Before(*from) {
		return false
	}
	if to != nil && t.After(*to) {
		return false
	}
	return true
}

func page(in []*entity.StockMovement, limit, offset int) []*entity.StockMovement {
	if offset >= len(in) {
		return nil
	}
	in = in[offset:]
	if limit > 0 && limit < len(in) {
		in = in[:limit]
	}
	return in
}

type memSaleRepo struct {
	r    *fakeTxRunner
	work *memState
}

func (m *memSaleRepo) state() (*memState, func()) {
	if m.work != nil {
		return m.work, func() {}
	}
	m.r.mu.Lock()
	return m.r.state, m.r.mu.Unlock
}

func (m *memSaleRepo) Create(sale *entity.Sale) error {
	st, done := m.state()
	defer done()
	if sale.IdempotencyKey != "" {
		for _, s := range st.sales {
			if s.IdempotencyKey == sale.IdempotencyKey {
				return domain.ErrDuplicate
			}
		}
	}
	cp := *sale
	st.sales[cp.ID] = &cp
	return nil
}

func (m *memSaleRepo) CreateItem(item *entity.SaleItem) error {
	st, done := m.state()
	defer done()
	cp := *item
	st.items[cp.SaleID] = append(st.items[cp.SaleID], &cp)
	return nil
}

func (m *memSaleRepo) GetByID(id string) (*entity.Sale, error) {
	st, done := m.state()
	defer done()
	if s, ok := st.sales[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, nil
}

func (m *memSaleRepo) GetItemsBySaleID(saleID string) ([]*entity.SaleItem, error) {
	st, done := m.state()
	defer done()
	items := st.items[saleID]
	out := make([]*entity.SaleItem, 0, len(items))
	for _, it := range items {
		cp := *it
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memSaleRepo) GetByIdempotencyKey(key string) (*entity.Sale, error) {
	st, done := m.state()
	defer done()
	for _, s := range st.sales {
		if s.IdempotencyKey == key {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memSaleRepo) TransitionStatus(id, from, to string) error {
	st, done := m.state()
	defer done()
	s, ok := st.sales[id]
	if !ok || s.Status != from {
		return domain.ErrConflict
	}
	cp := *s
	cp.Status = to
	cp.UpdatedAt = time.Now()
	st.sales[id] = &cp
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Colaboradores de solo lectura y espías
// ──────────────────────────────────────────────────────────────────────────────

type fakeBranchRepo struct{ branches map[string]*entity.Branch }

func (f *fakeBranchRepo) GetByID(id string) (*entity.Branch, error) {
	return f.branches[id], nil
}

type fakeProductRepo struct{ products map[string]*entity.Product }

func (f *fakeProductRepo) GetByID(id string) (*entity.Product, error) {
	return f.products[id], nil
}

type fakeCustomerRepo struct{ customers map[string]*entity.Customer }

func (f *fakeCustomerRepo) GetByID(id string) (*entity.Customer, error) {
	return f.customers[id], nil
}

type spyNotifier struct {
	mu           sync.Mutex
	lowStock     []ledger.LowStockAlert
	salesCreated []string
	returns      []string
	exchanges    []string
}

func (s *spyNotifier) NotifyLowStock(_ context.Context, alert ledger.LowStockAlert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lowStock = append(s.lowStock, alert)
	return nil
}

func (s *spyNotifier) NotifySaleCreated(_ context.Context, sale *entity.Sale) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.salesCreated = append(s.salesCreated, sale.ID)
	return nil
}

func (s *spyNotifier) NotifyReturnProcessed(_ context.Context, sale *entity.Sale) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.returns = append(s.returns, sale.ID)
	return nil
}

func (s *spyNotifier) NotifyExchangeProcessed(_ context.Context, sale *entity.Sale) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exchanges = append(s.exchanges, sale.ID)
	return nil
}

type spyStockCache struct {
	mu           sync.Mutex
	invalidated  []string
	entries      map[string]*entity.Stock
	sets         int
	hits, misses int
}

func newSpyStockCache() *spyStockCache {
	return &spyStockCache{entries: make(map[string]*entity.Stock)}
}

func (c *spyStockCache) GetStock(_ context.Context, productID, branchID string) (*entity.Stock, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.entries[stockKey(productID, branchID)]; ok {
		c.hits++
		cp := *s
		return &cp, true, nil
	}
	c.misses++
	return nil, false, nil
}

func (c *spyStockCache) SetStock(_ context.Context, stock *entity.Stock, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := *stock
	c.entries[stockKey(stock.ProductID, stock.BranchID)] = &cp
	c.sets++
	return nil
}

func (c *spyStockCache) Invalidate(_ context.Context, productID, branchID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := stockKey(productID, branchID)
	delete(c.entries, key)
	c.invalidated = append(c.invalidated, key)
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Fixture
// ──────────────────────────────────────────────────────────────────────────────

type fixture struct {
	runner    *fakeTxRunner
	branches  *fakeBranchRepo
	products  *fakeProductRepo
	customers *fakeCustomerRepo
	notifier  *spyNotifier
	cache     *spyStockCache
	log       *logger.Logger
}

func newFixture() *fixture {
	return &fixture{
		runner:    newFakeTxRunner(),
		branches:  &fakeBranchRepo{branches: make(map[string]*entity.Branch)},
		products:  &fakeProductRepo{products: make(map[string]*entity.Product)},
		customers: &fakeCustomerRepo{customers: make(map[string]*entity.Customer)},
		notifier:  &spyNotifier{},
		cache:     newSpyStockCache(),
		log:       logger.New(logger.Config{Env: "production", Level: "error"}),
	}
}

func (f *fixture) addBranch(id, name string) {
	f.branches.branches[id] = &entity.Branch{ID: id, Name: name, Active: true}
}

func (f *fixture) addProduct(id, name, price string) {
	f.products.products[id] = &entity.Product{ID: id, Name: name, Price: dec(price), Active: true}
}

func (f *fixture) seedStock(productID, branchID, current, minimum string) {
	f.runner.state.stocks[stockKey(productID, branchID)] = &entity.Stock{
		ProductID:       productID,
		BranchID:        branchID,
		CurrentQuantity: dec(current),
		MinimumQuantity: dec(minimum),
		MaximumQuantity: dec("999999"),
		LastUpdated:     time.Now(),
	}
}

func (f *fixture) currentQty(productID, branchID string) decimal.Decimal {
	f.runner.mu.Lock()
	defer f.runner.mu.Unlock()
	if s, ok := f.runner.state.stocks[stockKey(productID, branchID)]; ok {
		return s.CurrentQuantity
	}
	return decimal.Zero
}

func (f *fixture) movements() []*entity.StockMovement {
	f.runner.mu.Lock()
	defer f.runner.mu.Unlock()
	return append([]*entity.StockMovement(nil), f.runner.state.movements...)
}

func (f *fixture) saleRepo() *memSaleRepo {
	return &memSaleRepo{r: f.runner}
}

func (f *fixture) stockRepo() *memStockRepo {
	return &memStockRepo{r: f.runner}
}

func (f *fixture) movementRepo() *memMovementRepo {
	return &memMovementRepo{r: f.runner}
}

func (f *fixture) createSaleUC() *ledger.CreateSaleUseCase {
	return ledger.NewCreateSaleUseCase(
		f.runner, f.branches, f.customers, f.products, f.saleRepo(),
		f.notifier, f.cache, f.log,
	)
}

func (f *fixture) returnExchangeUC() *ledger.ReturnExchangeUseCase {
	return ledger.NewReturnExchangeUseCase(
		f.runner, f.branches, f.products, f.saleRepo(),
		f.notifier, f.cache, f.log,
	)
}

func (f *fixture) transferUC() *ledger.TransferStockUseCase {
	return ledger.NewTransferStockUseCase(
		f.runner, f.branches, f.products,
		f.notifier, f.cache, f.log,
	)
}

func (f *fixture) registerMovementUC() *ledger.RegisterMovementUseCase {
	return ledger.NewRegisterMovementUseCase(
		f.runner, f.branches, f.products,
		f.notifier, f.cache, f.log,
	)
}

func (f *fixture) queryUC() *ledger.StockQueryUseCase {
	return ledger.NewStockQueryUseCase(f.stockRepo(), f.movementRepo(), f.cache, f.log)
}
