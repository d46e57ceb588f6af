package repository

import (
	"context"
	"errors"

	"caixapos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CaixaRepository interface {
	CriarSessao(ctx context.Context, s *model.SessaoCaixa) error
	FindSessaoAbertaPorOperador(ctx context.Context, operadorID uuid.UUID) (*model.SessaoCaixa, error)
	FindSessaoByID(ctx context.Context, id uuid.UUID) (*model.SessaoCaixa, error)
	// FindSessaoForUpdateTx takes a row lock so a close serializes against
	// concurrent movement inserts and other closes on the same session.
	FindSessaoForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.SessaoCaixa, error)
	// FindSessaoForShareTx takes a shared lock: movement inserts into the same
	// open session may proceed concurrently but block a concurrent close.
	FindSessaoForShareTx(tx *gorm.DB, id uuid.UUID) (*model.SessaoCaixa, error)
	AtualizarSessaoTx(tx *gorm.DB, s *model.SessaoCaixa) error
	CriarMovimentacaoTx(tx *gorm.DB, m *model.MovimentacaoCaixa) error
	// ListarMovimentacoes returns most-recent-first for display.
	ListarMovimentacoes(ctx context.Context, sessaoID uuid.UUID) ([]model.MovimentacaoCaixa, error)
	// ListarMovimentacoesTx returns insertion order, for balance computation
	// inside a close transaction.
	ListarMovimentacoesTx(tx *gorm.DB, sessaoID uuid.UUID) ([]model.MovimentacaoCaixa, error)
	ListarSessoesFechadas(ctx context.Context, page, limit int) ([]model.SessaoCaixa, int64, error)
	DB() *gorm.DB // exposes the DB for transaction creation in the service layer
}

type caixaRepo struct{ db *gorm.DB }

func NewCaixaRepository(db *gorm.DB) CaixaRepository { return &caixaRepo{db: db} }

func (r *caixaRepo) DB() *gorm.DB { return r.db }

func (r *caixaRepo) CriarSessao(ctx context.Context, s *model.SessaoCaixa) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *caixaRepo) FindSessaoAbertaPorOperador(ctx context.Context, operadorID uuid.UUID) (*model.SessaoCaixa, error) {
	var s model.SessaoCaixa
	err := r.db.WithContext(ctx).
		Where("operador_id = ? AND status = ?", operadorID, model.SessaoAberta).
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *caixaRepo) FindSessaoByID(ctx context.Context, id uuid.UUID) (*model.SessaoCaixa, error) {
	var s model.SessaoCaixa
	err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *caixaRepo) FindSessaoForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.SessaoCaixa, error) {
	var s model.SessaoCaixa
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&s, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *caixaRepo) FindSessaoForShareTx(tx *gorm.DB, id uuid.UUID) (*model.SessaoCaixa, error) {
	var s model.SessaoCaixa
	err := tx.Clauses(clause.Locking{Strength: "SHARE"}).First(&s, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *caixaRepo) AtualizarSessaoTx(tx *gorm.DB, s *model.SessaoCaixa) error {
	return tx.Save(s).Error
}

func (r *caixaRepo) CriarMovimentacaoTx(tx *gorm.DB, m *model.MovimentacaoCaixa) error {
	return tx.Create(m).Error
}

func (r *caixaRepo) ListarMovimentacoes(ctx context.Context, sessaoID uuid.UUID) ([]model.MovimentacaoCaixa, error) {
	var movs []model.MovimentacaoCaixa
	err := r.db.WithContext(ctx).
		Where("sessao_caixa_id = ?", sessaoID).
		Order("created_at DESC").
		Find(&movs).Error
	return movs, err
}

func (r *caixaRepo) ListarMovimentacoesTx(tx *gorm.DB, sessaoID uuid.UUID) ([]model.MovimentacaoCaixa, error) {
	var movs []model.MovimentacaoCaixa
	err := tx.Where("sessao_caixa_id = ?", sessaoID).Order("created_at ASC").Find(&movs).Error
	return movs, err
}

func (r *caixaRepo) ListarSessoesFechadas(ctx context.Context, page, limit int) ([]model.SessaoCaixa, int64, error) {
	var sessoes []model.SessaoCaixa
	var total int64

	q := r.db.WithContext(ctx).Model(&model.SessaoCaixa{}).Where("status = ?", model.SessaoFechada)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("closed_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&sessoes).Error
	return sessoes, total, err
}
