package repository

import (
	"context"

	"caixapos/internal/dto"
	"caixapos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PedidoRepository interface {
	CriarTx(tx *gorm.DB, p *model.Pedido) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Pedido, error)
	// FindByIDForUpdateTx locks the pedido row so payment commits are applied
	// as a serialized read-modify-write of the captured sum.
	FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Pedido, error)
	SomarPagamentosCapturadosTx(tx *gorm.DB, pedidoID uuid.UUID) (decimal.Decimal, error)
	CriarPagamentosTx(tx *gorm.DB, pagamentos []model.Pagamento) error
	AtualizarStatusTx(tx *gorm.DB, id uuid.UUID, status string) error
	AtualizarMetodoPagamentoTx(tx *gorm.DB, id uuid.UUID, metodo string) error
	AtualizarPedidoTx(tx *gorm.DB, p *model.Pedido) error
	FindPagamentoForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Pagamento, error)
	AtualizarPagamentoStatusTx(tx *gorm.DB, id uuid.UUID, status string) error
	ProximoNumeroTx(tx *gorm.DB) (int, error)
	List(ctx context.Context, filter dto.PedidoFilter) ([]model.Pedido, int64, error)
	DB() *gorm.DB
}

type pedidoRepo struct{ db *gorm.DB }

func NewPedidoRepository(db *gorm.DB) PedidoRepository { return &pedidoRepo{db: db} }

func (r *pedidoRepo) DB() *gorm.DB { return r.db }

func (r *pedidoRepo) CriarTx(tx *gorm.DB, p *model.Pedido) error {
	return tx.Create(p).Error
}

func (r *pedidoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Pedido, error) {
	var p model.Pedido
	err := r.db.WithContext(ctx).
		Preload("Itens.Produto").Preload("Pagamentos").
		First(&p, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *pedidoRepo) FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Pedido, error) {
	var p model.Pedido
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	// Associations are loaded separately: FOR UPDATE cannot be combined with
	// the LEFT JOINs Preload would emit.
	if err := tx.Where("pedido_id = ?", id).Find(&p.Pagamentos).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *pedidoRepo) SomarPagamentosCapturadosTx(tx *gorm.DB, pedidoID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := tx.Model(&model.Pagamento{}).
		Select("SUM(valor)").
		Where("pedido_id = ? AND status = ?", pedidoID, model.PagamentoCapturado).
		Scan(&total).Error
	if err != nil || !total.Valid {
		return decimal.Zero, err
	}
	return total.Decimal, nil
}

func (r *pedidoRepo) CriarPagamentosTx(tx *gorm.DB, pagamentos []model.Pagamento) error {
	return tx.Create(&pagamentos).Error
}

func (r *pedidoRepo) AtualizarStatusTx(tx *gorm.DB, id uuid.UUID, status string) error {
	return tx.Model(&model.Pedido{}).Where("id = ?", id).Update("status", status).Error
}

func (r *pedidoRepo) AtualizarMetodoPagamentoTx(tx *gorm.DB, id uuid.UUID, metodo string) error {
	return tx.Model(&model.Pedido{}).Where("id = ?", id).Update("metodo_pagamento", metodo).Error
}

func (r *pedidoRepo) AtualizarPedidoTx(tx *gorm.DB, p *model.Pedido) error {
	return tx.Model(&model.Pedido{}).Where("id = ?", p.ID).
		Updates(map[string]interface{}{"status": p.Status, "motivo_cancel": p.MotivoCancel}).Error
}

func (r *pedidoRepo) FindPagamentoForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Pagamento, error) {
	var pg model.Pagamento
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&pg, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &pg, nil
}

func (r *pedidoRepo) AtualizarPagamentoStatusTx(tx *gorm.DB, id uuid.UUID, status string) error {
	return tx.Model(&model.Pagamento{}).Where("id = ?", id).Update("status", status).Error
}

func (r *pedidoRepo) ProximoNumeroTx(tx *gorm.DB) (int, error) {
	// PostgreSQL sequence keeps numbering atomic under concurrent sales
	var num int
	err := tx.Raw("SELECT nextval('pedidos_numero_seq')").Scan(&num).Error
	return num, err
}

func (r *pedidoRepo) List(ctx context.Context, filter dto.PedidoFilter) ([]model.Pedido, int64, error) {
	var pedidos []model.Pedido
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Pedido{})
	if filter.Status != "" && filter.Status != "all" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Data != "" {
		q = q.Where("DATE(created_at) = ?", filter.Data)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Preload("Itens.Produto").Preload("Pagamentos").
		Order("created_at DESC").
		Offset((filter.Page - 1) * filter.Limit).Limit(filter.Limit).
		Find(&pedidos).Error
	return pedidos, total, err
}
