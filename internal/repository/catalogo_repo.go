package repository

import (
	"context"

	"caixapos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CatalogoRepository is the read-only boundary to the product catalog and the
// customer/vendor directory. This service never writes these tables.
type CatalogoRepository interface {
	FindProdutoByID(ctx context.Context, id uuid.UUID) (*model.Produto, error)
	FindClienteByID(ctx context.Context, id uuid.UUID) (*model.Cliente, error)
	FindVendedorByID(ctx context.Context, id uuid.UUID) (*model.Vendedor, error)
}

type catalogoRepo struct{ db *gorm.DB }

func NewCatalogoRepository(db *gorm.DB) CatalogoRepository { return &catalogoRepo{db: db} }

func (r *catalogoRepo) FindProdutoByID(ctx context.Context, id uuid.UUID) (*model.Produto, error) {
	var p model.Produto
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *catalogoRepo) FindClienteByID(ctx context.Context, id uuid.UUID) (*model.Cliente, error) {
	var c model.Cliente
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *catalogoRepo) FindVendedorByID(ctx context.Context, id uuid.UUID) (*model.Vendedor, error) {
	var v model.Vendedor
	if err := r.db.WithContext(ctx).First(&v, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &v, nil
}
