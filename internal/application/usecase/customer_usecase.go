package usecase

import (
	"context"
	"strings"

	"github.com/jhoicas/storefront-api/internal/application/dto"
	"github.com/jhoicas/storefront-api/internal/domain"
	"github.com/jhoicas/storefront-api/internal/domain/entity"
	"github.com/jhoicas/storefront-api/internal/domain/repository"
)

// RecentOrdersLimit pedidos que acompañan al detalle de un cliente.
const RecentOrdersLimit = 20

// CustomerUseCase consulta y edición de clientes. Los clientes se crean al colocar pedidos.
type CustomerUseCase struct {
	repo   repository.CustomerRepository
	orders repository.OrderRepository
}

// NewCustomerUseCase construye el caso de uso.
func NewCustomerUseCase(repo repository.CustomerRepository, orders repository.OrderRepository) *CustomerUseCase {
	return &CustomerUseCase{repo: repo, orders: orders}
}

// List lista clientes del tenant; Search filtra por nombre o teléfono.
func (uc *CustomerUseCase) List(ctx context.Context, tenantID string, q dto.CustomerListQuery) (*dto.CustomerListResponse, error) {
	q.DefaultPage()
	list, total, err := uc.repo.List(ctx, repository.CustomerFilter{
		TenantID: tenantID,
		Search:   strings.TrimSpace(q.Search),
		Limit:    q.Limit,
		Offset:   q.Offset(),
	})
	if err != nil {
		return nil, err
	}
	out := make([]dto.CustomerResponse, 0, len(list))
	for _, c := range list {
		out = append(out, *dto.NewCustomerResponse(c))
	}
	return &dto.CustomerListResponse{Customers: out, Pagination: dto.NewPagination(q.PageRequest, total)}, nil
}

// Get devuelve el cliente con sus pedidos más recientes.
func (uc *CustomerUseCase) Get(ctx context.Context, tenantID string, id int64) (*dto.CustomerDetailResponse, error) {
	c, err := uc.repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.NotFound("cliente no encontrado")
	}
	orders, _, err := uc.orders.List(ctx, repository.OrderFilter{TenantID: tenantID, CustomerID: id, Limit: RecentOrdersLimit})
	if err != nil {
		return nil, err
	}
	return &dto.CustomerDetailResponse{CustomerResponse: *dto.NewCustomerResponse(c), Orders: dto.NewOrderList(orders)}, nil
}

// Update edita los campos enviados. Un teléfono ya usado por otro cliente es un conflicto.
func (uc *CustomerUseCase) Update(ctx context.Context, tenantID string, id int64, in dto.UpdateCustomerRequest) (*dto.CustomerResponse, error) {
	c, err := uc.repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.NotFound("cliente no encontrado")
	}
	if in.Name != nil {
		c.Name = strings.TrimSpace(*in.Name)
	}
	if in.Phone != nil {
		phone := strings.TrimSpace(*in.Phone)
		if phone == "" {
			return nil, domain.Validation("cliente inválido", domain.FieldError{Field: "phone", Message: "requerido"})
		}
		c.Phone = phone
	}
	if in.Type != nil {
		if *in.Type != entity.CustomerTypePermanent && *in.Type != entity.CustomerTypeTemporary {
			return nil, domain.Validation("cliente inválido", domain.FieldError{Field: "type", Message: "PERMANENT | TEMPORARY"})
		}
		c.Type = *in.Type
	}
	if in.Notes != nil {
		c.Notes = *in.Notes
	}
	if err := uc.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return dto.NewCustomerResponse(c), nil
}
