// Package apptest provee un almacén en memoria que implementa los puertos de repositorio,
// con transacciones serializadas y rollback por snapshot, para probar los casos de uso sin PostgreSQL.
package apptest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/storefront-api/internal/domain"
	"github.com/jhoicas/storefront-api/internal/domain/entity"
	"github.com/jhoicas/storefront-api/internal/domain/repository"
)

var (
	_ repository.TxRunner                    = (*Store)(nil)
	_ repository.ProductRepository           = ProductRepo{}
	_ repository.CustomerRepository          = CustomerRepo{}
	_ repository.OrderRepository             = OrderRepo{}
	_ repository.InventoryMovementRepository = MovementRepo{}
)

type state struct {
	products  map[int64]entity.Product
	customers map[int64]entity.Customer
	orders    map[int64]entity.Order
	items     map[int64][]entity.OrderItem
	movements []entity.InventoryMovement
	nextID    int64
}

func (s state) clone() state {
	c := state{
		products:  make(map[int64]entity.Product, len(s.products)),
		customers: make(map[int64]entity.Customer, len(s.customers)),
		orders:    make(map[int64]entity.Order, len(s.orders)),
		items:     make(map[int64][]entity.OrderItem, len(s.items)),
		movements: append([]entity.InventoryMovement(nil), s.movements...),
		nextID:    s.nextID,
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.customers {
		c.customers[k] = v
	}
	for k, v := range s.orders {
		c.orders[k] = v
	}
	for k, v := range s.items {
		c.items[k] = append([]entity.OrderItem(nil), v...)
	}
	return c
}

// Store almacén en memoria. Las transacciones se ejecutan de a una.
type Store struct {
	txMu sync.Mutex
	mu   sync.Mutex
	st   state
	now  func() time.Time

	// FailMovementCreate si no es nil, Create de movimientos falla con este error.
	FailMovementCreate error
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{
		st: state{
			products:  map[int64]entity.Product{},
			customers: map[int64]entity.Customer{},
			orders:    map[int64]entity.Order{},
			items:     map[int64][]entity.OrderItem{},
		},
		now: time.Now,
	}
}

func (s *Store) id() int64 {
	s.st.nextID++
	return s.st.nextID
}

// Run implementa repository.TxRunner: si fn falla se restaura el estado previo.
func (s *Store) Run(ctx context.Context, fn func(repos repository.Repositories) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.st.clone()
	s.mu.Unlock()

	if err := fn(s.Repos()); err != nil {
		s.mu.Lock()
		s.st = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

// Repos repositorios que operan directamente sobre el almacén (fuera de transacción).
func (s *Store) Repos() repository.Repositories {
	return repository.Repositories{
		Products:  ProductRepo{s},
		Customers: CustomerRepo{s},
		Orders:    OrderRepo{s},
		Movements: MovementRepo{s},
	}
}

// SeedProduct inserta un producto y devuelve su copia con ID.
func (s *Store) SeedProduct(p entity.Product) *entity.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.id()
	p.CreatedAt, p.UpdatedAt = s.now(), s.now()
	s.st.products[p.ID] = p
	return &p
}

// SeedCustomer inserta un cliente.
func (s *Store) SeedCustomer(c entity.Customer) *entity.Customer {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.id()
	c.CreatedAt, c.UpdatedAt = s.now(), s.now()
	s.st.customers[c.ID] = c
	return &c
}

// Stock stock actual de un producto (-1 si no existe).
func (s *Store) Stock(id int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.st.products[id]
	if !ok {
		return -1
	}
	return p.Stock
}

// Movements copia del libro completo en orden de inserción.
func (s *Store) Movements() []entity.InventoryMovement {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entity.InventoryMovement(nil), s.st.movements...)
}

// OrderCount cantidad de pedidos almacenados.
func (s *Store) OrderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.st.orders)
}

// ItemCount cantidad de líneas de pedido almacenadas.
func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, v := range s.st.items {
		n += len(v)
	}
	return n
}

// ── Productos ────────────────────────────────────────────────────────────────

// ProductRepo implementa repository.ProductRepository.
type ProductRepo struct{ s *Store }

func (r ProductRepo) Create(_ context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p.SKU != nil {
		for _, o := range r.s.st.products {
			if o.TenantID == p.TenantID && o.SKU != nil && *o.SKU == *p.SKU {
				return domain.Conflict(domain.ErrDuplicate, "ya existe un producto con ese SKU")
			}
		}
	}
	p.ID = r.s.id()
	p.CreatedAt, p.UpdatedAt = r.s.now(), r.s.now()
	r.s.st.products[p.ID] = *p
	return nil
}

func (r ProductRepo) get(tenantID string, id int64) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.st.products[id]
	if !ok || p.TenantID != tenantID {
		return nil, nil
	}
	return &p, nil
}

func (r ProductRepo) GetByID(_ context.Context, tenantID string, id int64) (*entity.Product, error) {
	return r.get(tenantID, id)
}

func (r ProductRepo) GetForUpdate(_ context.Context, tenantID string, id int64) (*entity.Product, error) {
	return r.get(tenantID, id)
}

func (r ProductRepo) Update(_ context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.st.products[p.ID]
	if !ok || cur.TenantID != p.TenantID {
		return domain.NotFound("producto no encontrado")
	}
	p.Stock, p.CreatedAt, p.UpdatedAt = cur.Stock, cur.CreatedAt, r.s.now()
	r.s.st.products[p.ID] = *p
	return nil
}

func (r ProductRepo) SetStock(_ context.Context, tenantID string, id int64, stock int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.st.products[id]
	if !ok || p.TenantID != tenantID {
		return domain.NotFound("producto no encontrado")
	}
	if stock < 0 {
		return domain.ErrNegativeStock
	}
	p.Stock = stock
	r.s.st.products[id] = p
	return nil
}

func (r ProductRepo) DecrementStock(_ context.Context, tenantID string, id int64, qty int) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.st.products[id]
	if !ok || p.TenantID != tenantID || p.Stock < qty {
		return 0, domain.ErrInsufficientStock
	}
	p.Stock -= qty
	r.s.st.products[id] = p
	return p.Stock, nil
}

func (r ProductRepo) IncrementStock(_ context.Context, tenantID string, id int64, qty int) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.st.products[id]
	if !ok || p.TenantID != tenantID {
		return 0, domain.NotFound("producto no encontrado")
	}
	p.Stock += qty
	r.s.st.products[id] = p
	return p.Stock, nil
}

func (r ProductRepo) List(_ context.Context, f repository.ProductFilter) ([]*entity.Product, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var all []*entity.Product
	search := strings.ToLower(f.Search)
	for _, p := range r.s.st.products {
		p := p
		if p.TenantID != f.TenantID || (f.Category != "" && p.Category != f.Category) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Title+" "+p.Description), search) {
			continue
		}
		all = append(all, &p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	return page(all, f.Limit, f.Offset), len(all), nil
}

func (r ProductRepo) ListLowStock(_ context.Context, tenantID string, threshold int) ([]*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Product
	for _, p := range r.s.st.products {
		p := p
		if p.TenantID == tenantID && p.Stock <= threshold {
			out = append(out, &p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Stock != out[j].Stock {
			return out[i].Stock < out[j].Stock
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r ProductRepo) ListCategories(_ context.Context, tenantID string) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	set := map[string]bool{}
	for _, p := range r.s.st.products {
		if p.TenantID == tenantID && p.Category != "" {
			set[p.Category] = true
		}
	}
	out := make([]string, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Strings(out)
	return out, nil
}

func (r ProductRepo) Delete(_ context.Context, tenantID string, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.st.products[id]
	if !ok || p.TenantID != tenantID {
		return domain.NotFound("producto no encontrado")
	}
	for _, items := range r.s.st.items {
		for _, it := range items {
			if it.ProductID == id {
				return domain.Conflict(domain.ErrProductInUse, "el producto tiene pedidos asociados y no puede eliminarse")
			}
		}
	}
	for _, m := range r.s.st.movements {
		if m.ProductID == id {
			return domain.Conflict(domain.ErrProductInUse, "el producto tiene movimientos de inventario y no puede eliminarse")
		}
	}
	delete(r.s.st.products, id)
	return nil
}

// ── Clientes ─────────────────────────────────────────────────────────────────

// CustomerRepo implementa repository.CustomerRepository.
type CustomerRepo struct{ s *Store }

func (r CustomerRepo) UpsertByPhone(_ context.Context, c *entity.Customer) (entity.UpsertOutcome, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, cur := range r.s.st.customers {
		if cur.Phone != c.Phone {
			continue
		}
		if cur.TenantID != c.TenantID {
			return entity.UpsertTenantCollision, nil
		}
		if c.Name != "" {
			cur.Name = c.Name
		}
		if c.Notes != "" {
			cur.Notes = c.Notes
		}
		cur.UpdatedAt = r.s.now()
		r.s.st.customers[id] = cur
		*c = cur
		return entity.UpsertUpdated, nil
	}
	c.ID = r.s.id()
	c.CreatedAt, c.UpdatedAt = r.s.now(), r.s.now()
	r.s.st.customers[c.ID] = *c
	return entity.UpsertCreated, nil
}

func (r CustomerRepo) GetByID(_ context.Context, tenantID string, id int64) (*entity.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.st.customers[id]
	if !ok || c.TenantID != tenantID {
		return nil, nil
	}
	return &c, nil
}

func (r CustomerRepo) List(_ context.Context, f repository.CustomerFilter) ([]*entity.Customer, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var all []*entity.Customer
	search := strings.ToLower(f.Search)
	for _, c := range r.s.st.customers {
		c := c
		if c.TenantID != f.TenantID {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(c.Name+" "+c.Phone), search) {
			continue
		}
		all = append(all, &c)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	return page(all, f.Limit, f.Offset), len(all), nil
}

func (r CustomerRepo) Update(_ context.Context, c *entity.Customer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.st.customers[c.ID]
	if !ok || cur.TenantID != c.TenantID {
		return domain.NotFound("cliente no encontrado")
	}
	for id, o := range r.s.st.customers {
		if id != c.ID && o.Phone == c.Phone {
			return domain.Conflict(domain.ErrDuplicate, "ya existe un cliente con ese teléfono")
		}
	}
	c.CreatedAt, c.UpdatedAt = cur.CreatedAt, r.s.now()
	r.s.st.customers[c.ID] = *c
	return nil
}

func (r CustomerRepo) Count(_ context.Context, tenantID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for _, c := range r.s.st.customers {
		if c.TenantID == tenantID {
			n++
		}
	}
	return n, nil
}

// ── Pedidos ──────────────────────────────────────────────────────────────────

// OrderRepo implementa repository.OrderRepository.
type OrderRepo struct{ s *Store }

func (r OrderRepo) Create(_ context.Context, o *entity.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o.ID = r.s.id()
	o.CreatedAt, o.UpdatedAt = r.s.now(), r.s.now()
	cp := *o
	cp.Customer, cp.Items = nil, nil
	r.s.st.orders[o.ID] = cp
	return nil
}

func (r OrderRepo) CreateItem(_ context.Context, it *entity.OrderItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.st.products[it.ProductID]; !ok {
		return domain.ErrProductNotFound
	}
	it.ID = r.s.id()
	cp := *it
	cp.Product = nil
	r.s.st.items[it.OrderID] = append(r.s.st.items[it.OrderID], cp)
	return nil
}

// hydrate arma el pedido con cliente y líneas; withProducts agrega el producto actual de cada línea.
func (r OrderRepo) hydrate(o entity.Order, withProducts bool) *entity.Order {
	if c, ok := r.s.st.customers[o.CustomerID]; ok && withProducts {
		o.Customer = &c
	}
	for _, it := range r.s.st.items[o.ID] {
		it := it
		if withProducts {
			if p, ok := r.s.st.products[it.ProductID]; ok {
				it.Product = &p
			}
		}
		o.Items = append(o.Items, &it)
	}
	return &o
}

func (r OrderRepo) GetByID(_ context.Context, tenantID string, id int64) (*entity.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.st.orders[id]
	if !ok || o.TenantID != tenantID {
		return nil, nil
	}
	return r.hydrate(o, true), nil
}

func (r OrderRepo) GetForUpdate(_ context.Context, tenantID string, id int64) (*entity.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.st.orders[id]
	if !ok || o.TenantID != tenantID {
		return nil, nil
	}
	return r.hydrate(o, false), nil
}

func (r OrderRepo) UpdateStatus(_ context.Context, tenantID string, id int64, status string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.st.orders[id]
	if !ok || o.TenantID != tenantID {
		return domain.NotFound("pedido no encontrado")
	}
	o.Status, o.UpdatedAt = status, r.s.now()
	r.s.st.orders[id] = o
	return nil
}

func (r OrderRepo) DeleteItems(_ context.Context, orderID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.st.items, orderID)
	return nil
}

func (r OrderRepo) Delete(_ context.Context, tenantID string, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.st.orders[id]
	if !ok || o.TenantID != tenantID {
		return domain.NotFound("pedido no encontrado")
	}
	if len(r.s.st.items[id]) > 0 {
		// Igual que la llave foránea de order_items.
		return domain.Internal(errFKOrderItems)
	}
	delete(r.s.st.orders, id)
	return nil
}

func (r OrderRepo) List(_ context.Context, f repository.OrderFilter) ([]*entity.Order, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var all []*entity.Order
	for _, o := range r.s.st.orders {
		if o.TenantID != f.TenantID || (f.Status != "" && o.Status != f.Status) || (f.CustomerID != 0 && o.CustomerID != f.CustomerID) {
			continue
		}
		all = append(all, r.hydrate(o, true))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	return page(all, f.Limit, f.Offset), len(all), nil
}

// ── Movimientos ──────────────────────────────────────────────────────────────

// MovementRepo implementa repository.InventoryMovementRepository.
type MovementRepo struct{ s *Store }

func (r MovementRepo) Create(_ context.Context, m *entity.InventoryMovement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailMovementCreate != nil {
		return r.s.FailMovementCreate
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	m.CreatedAt = r.s.now()
	r.s.st.movements = append(r.s.st.movements, *m)
	return nil
}

func (r MovementRepo) List(_ context.Context, f repository.MovementFilter) ([]*entity.InventoryMovement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.InventoryMovement
	for i := len(r.s.st.movements) - 1; i >= 0; i-- {
		m := r.s.st.movements[i]
		if m.TenantID == f.TenantID && (f.ProductID == 0 || m.ProductID == f.ProductID) {
			out = append(out, &m)
		}
	}
	return page(out, f.Limit, f.Offset), nil
}

func page[T any](all []T, limit, offset int) []T {
	if offset >= len(all) {
		return nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all
}
