package repository

import (
	"context"

	"github.com/oksasatya/go-ecommerce-backend/internal/domain/entity"
)

// ProductRepository defines the catalog store operations.
type ProductRepository interface {
	Create(ctx context.Context, p *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	List(ctx context.Context) ([]entity.Product, error)
	Update(ctx context.Context, p *entity.Product) error
	Delete(ctx context.Context, id string) error
}
