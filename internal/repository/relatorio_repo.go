package repository

import (
	"context"
	"time"

	"caixapos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LinhaSessoes aggregates session counts for a period.
type LinhaSessoes struct {
	Total    int64
	Abertas  int64
	Fechadas int64
}

// LinhaFluxo aggregates gross cash flow for a period.
type LinhaFluxo struct {
	Entradas decimal.NullDecimal
	Saidas   decimal.NullDecimal
}

// LinhaOperador is one per-operator aggregation row.
type LinhaOperador struct {
	OperadorID uuid.UUID
	Sessoes    int64
	Entradas   decimal.NullDecimal
	Saidas     decimal.NullDecimal
}

// LinhaMetodo is one per-payment-method aggregation row (entradas only).
type LinhaMetodo struct {
	Metodo   string
	Entradas decimal.NullDecimal
}

// RelatorioRepository runs the read-only aggregations behind the consolidated
// report. All queries are pure SELECTs over sessions and movements.
type RelatorioRepository interface {
	ContarSessoes(ctx context.Context, de, ate time.Time, operadorID *uuid.UUID) (LinhaSessoes, error)
	FluxoPeriodo(ctx context.Context, de, ate time.Time, operadorID *uuid.UUID) (LinhaFluxo, error)
	FluxoPorOperador(ctx context.Context, de, ate time.Time) ([]LinhaOperador, error)
	EntradasPorMetodo(ctx context.Context, de, ate time.Time, operadorID *uuid.UUID) ([]LinhaMetodo, error)
}

type relatorioRepo struct{ db *gorm.DB }

func NewRelatorioRepository(db *gorm.DB) RelatorioRepository { return &relatorioRepo{db: db} }

func (r *relatorioRepo) ContarSessoes(ctx context.Context, de, ate time.Time, operadorID *uuid.UUID) (LinhaSessoes, error) {
	var linha LinhaSessoes
	q := r.db.WithContext(ctx).Model(&model.SessaoCaixa{}).
		Select(
			"COUNT(*) AS total, "+
				"COUNT(*) FILTER (WHERE status = ?) AS abertas, "+
				"COUNT(*) FILTER (WHERE status = ?) AS fechadas",
			model.SessaoAberta, model.SessaoFechada).
		Where("opened_at >= ? AND opened_at < ?", de, ate)
	if operadorID != nil {
		q = q.Where("operador_id = ?", *operadorID)
	}
	err := q.Scan(&linha).Error
	return linha, err
}

func (r *relatorioRepo) FluxoPeriodo(ctx context.Context, de, ate time.Time, operadorID *uuid.UUID) (LinhaFluxo, error) {
	var linha LinhaFluxo
	q := r.db.WithContext(ctx).Model(&model.MovimentacaoCaixa{}).
		Select(
			"SUM(CASE WHEN movimentacoes_caixa.tipo = ? THEN valor ELSE 0 END) AS entradas, "+
				"SUM(CASE WHEN movimentacoes_caixa.tipo = ? THEN valor ELSE 0 END) AS saidas",
			model.MovimentacaoEntrada, model.MovimentacaoSaida).
		Where("movimentacoes_caixa.created_at >= ? AND movimentacoes_caixa.created_at < ?", de, ate)
	if operadorID != nil {
		q = q.Joins("JOIN sessoes_caixa ON sessoes_caixa.id = movimentacoes_caixa.sessao_caixa_id").
			Where("sessoes_caixa.operador_id = ?", *operadorID)
	}
	err := q.Scan(&linha).Error
	return linha, err
}

func (r *relatorioRepo) FluxoPorOperador(ctx context.Context, de, ate time.Time) ([]LinhaOperador, error) {
	var linhas []LinhaOperador
	err := r.db.WithContext(ctx).
		Raw(`SELECT s.operador_id,
		            COUNT(DISTINCT s.id) AS sessoes,
		            SUM(CASE WHEN m.tipo = ? THEN m.valor ELSE 0 END) AS entradas,
		            SUM(CASE WHEN m.tipo = ? THEN m.valor ELSE 0 END) AS saidas
		       FROM sessoes_caixa s
		       JOIN movimentacoes_caixa m ON m.sessao_caixa_id = s.id
		      WHERE m.created_at >= ? AND m.created_at < ?
		      GROUP BY s.operador_id
		      ORDER BY entradas DESC`,
			model.MovimentacaoEntrada, model.MovimentacaoSaida, de, ate).
		Scan(&linhas).Error
	return linhas, err
}

func (r *relatorioRepo) EntradasPorMetodo(ctx context.Context, de, ate time.Time, operadorID *uuid.UUID) ([]LinhaMetodo, error) {
	var linhas []LinhaMetodo
	q := r.db.WithContext(ctx).Model(&model.MovimentacaoCaixa{}).
		Select("metodo_pagamento AS metodo, SUM(valor) AS entradas").
		Where("movimentacoes_caixa.tipo = ?", model.MovimentacaoEntrada).
		Where("movimentacoes_caixa.created_at >= ? AND movimentacoes_caixa.created_at < ?", de, ate).
		Group("metodo_pagamento").
		Order("entradas DESC")
	if operadorID != nil {
		q = q.Joins("JOIN sessoes_caixa ON sessoes_caixa.id = movimentacoes_caixa.sessao_caixa_id").
			Where("sessoes_caixa.operador_id = ?", *operadorID)
	}
	err := q.Scan(&linhas).Error
	return linhas, err
}
