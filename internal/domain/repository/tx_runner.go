package repository

import "context"

// Repositories repositorios atados a una misma transacción.
type Repositories struct {
	Products  ProductRepository
	Customers CustomerRepository
	Orders    OrderRepository
	Movements InventoryMovementRepository
}

// TxRunner ejecuta fn dentro de una transacción: Commit si fn devuelve nil, Rollback en cualquier otro caso.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos Repositories) error) error
}
