package usecase

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/storefront-api/internal/application/dto"
	appinventory "github.com/jhoicas/storefront-api/internal/application/inventory"
	"github.com/jhoicas/storefront-api/internal/domain"
	"github.com/jhoicas/storefront-api/internal/domain/entity"
	"github.com/jhoicas/storefront-api/internal/domain/repository"
	"github.com/jhoicas/storefront-api/pkg/logger"
)

// ProductCreateReference referencia del movimiento que registra el stock inicial de un producto.
const ProductCreateReference = "product:create"

var maxTaxRate = decimal.NewFromInt(100)

// ProductUseCase casos de uso CRUD para productos. El stock solo cambia vía pedidos o ajustes.
type ProductUseCase struct {
	repo     repository.ProductRepository
	txRunner repository.TxRunner
	ledger   *appinventory.Ledger
	log      *logger.Logger
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository, txRunner repository.TxRunner, ledger *appinventory.Ledger, log *logger.Logger) *ProductUseCase {
	return &ProductUseCase{repo: repo, txRunner: txRunner, ledger: ledger, log: log.Component("product")}
}

func validatePricing(price, taxRate *decimal.Decimal) error {
	var fields []domain.FieldError
	if price != nil && !price.IsPositive() {
		fields = append(fields, domain.FieldError{Field: "price", Message: "debe ser mayor que cero"})
	}
	if taxRate != nil && (taxRate.IsNegative() || taxRate.GreaterThan(maxTaxRate)) {
		fields = append(fields, domain.FieldError{Field: "taxRate", Message: "debe estar entre 0 y 100"})
	}
	if len(fields) > 0 {
		return domain.Validation("producto inválido", fields...)
	}
	return nil
}

func normalizeSKU(sku *string) *string {
	if sku == nil {
		return nil
	}
	s := strings.TrimSpace(*sku)
	if s == "" {
		return nil
	}
	return &s
}

// Create crea un producto. Si trae stock inicial se registra un movimiento de ajuste en la misma transacción.
func (uc *ProductUseCase) Create(ctx context.Context, tenantID string, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if err := validatePricing(&in.Price, &in.TaxRate); err != nil {
		return nil, err
	}
	if in.Stock < 0 {
		return nil, domain.Validation("producto inválido", domain.FieldError{Field: "stock", Message: "no puede ser negativo"})
	}
	product := &entity.Product{
		TenantID:    tenantID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Category:    strings.TrimSpace(in.Category),
		Price:       in.Price,
		Stock:       in.Stock,
		SKU:         normalizeSKU(in.SKU),
		HSN:         in.HSN,
		TaxRate:     in.TaxRate,
		ImageURL:    in.ImageURL,
	}
	err := uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
		if err := repos.Products.Create(ctx, product); err != nil {
			return err
		}
		if product.Stock == 0 {
			return nil
		}
		return uc.ledger.RecordMovement(ctx, repos.Movements, appinventory.MovementInput{
			TenantID:  tenantID,
			ProductID: product.ID,
			Reason:    entity.MovementReasonAdjustment,
			Change:    product.Stock,
			Reference: ProductCreateReference,
		})
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("tenant_id", tenantID).Int64("product_id", product.ID).Int("stock", product.Stock).Msg("producto creado")
	return dto.NewProductResponse(product), nil
}

// GetByID obtiene un producto del tenant.
func (uc *ProductUseCase) GetByID(ctx context.Context, tenantID string, id int64) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.NotFound("producto no encontrado")
	}
	return dto.NewProductResponse(product), nil
}

// Update actualiza los campos enviados. No permite modificar el stock.
func (uc *ProductUseCase) Update(ctx context.Context, tenantID string, id int64, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	if err := validatePricing(in.Price, in.TaxRate); err != nil {
		return nil, err
	}
	product, err := uc.repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.NotFound("producto no encontrado")
	}
	if in.Title != nil {
		product.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.Category != nil {
		product.Category = strings.TrimSpace(*in.Category)
	}
	if in.Price != nil {
		product.Price = *in.Price
	}
	if in.SKU != nil {
		product.SKU = normalizeSKU(in.SKU)
	}
	if in.HSN != nil {
		product.HSN = *in.HSN
	}
	if in.TaxRate != nil {
		product.TaxRate = *in.TaxRate
	}
	if in.ImageURL != nil {
		product.ImageURL = *in.ImageURL
	}
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return dto.NewProductResponse(product), nil
}

// List lista productos del tenant con búsqueda, filtro por categoría y paginación.
func (uc *ProductUseCase) List(ctx context.Context, tenantID string, q dto.ProductListQuery) (*dto.ProductListResponse, error) {
	q.DefaultPage()
	list, total, err := uc.repo.List(ctx, repository.ProductFilter{
		TenantID: tenantID,
		Search:   strings.TrimSpace(q.Search),
		Category: strings.TrimSpace(q.Category),
		Limit:    q.Limit,
		Offset:   q.Offset(),
	})
	if err != nil {
		return nil, err
	}
	return &dto.ProductListResponse{
		Products:   dto.NewProductList(list),
		Pagination: dto.NewPagination(q.PageRequest, total),
	}, nil
}

// Categories categorías distintas del tenant, en orden alfabético.
func (uc *ProductUseCase) Categories(ctx context.Context, tenantID string) (*dto.CategoryListResponse, error) {
	cats, err := uc.repo.ListCategories(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if cats == nil {
		cats = []string{}
	}
	return &dto.CategoryListResponse{Categories: cats}, nil
}

// Delete elimina un producto sin líneas de pedido ni movimientos de inventario.
func (uc *ProductUseCase) Delete(ctx context.Context, tenantID string, id int64) error {
	if err := uc.repo.Delete(ctx, tenantID, id); err != nil {
		return err
	}
	uc.log.Info().Str("tenant_id", tenantID).Int64("product_id", id).Msg("producto eliminado")
	return nil
}
