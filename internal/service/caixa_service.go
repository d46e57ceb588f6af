package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"caixapos/internal/dto"
	"caixapos/internal/model"
	"caixapos/internal/repository"
	"caixapos/internal/worker"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CaixaService interface {
	Abrir(ctx context.Context, operadorID uuid.UUID, req dto.AbrirCaixaRequest) (*dto.SessaoCaixaResponse, error)
	Fechar(ctx context.Context, req dto.FecharCaixaRequest) (*dto.FechamentoResponse, error)
	RegistrarMovimentacao(ctx context.Context, req dto.MovimentacaoRequest) (*dto.MovimentacaoResponse, error)
	// SessaoAtual returns the operator's open session, or nil when none exists.
	SessaoAtual(ctx context.Context, operadorID uuid.UUID) (*dto.SessaoCaixaResponse, error)
	ListarMovimentacoes(ctx context.Context, sessaoID uuid.UUID) ([]dto.MovimentacaoResponse, error)
	Historico(ctx context.Context, page, limit int) ([]dto.SessaoCaixaResponse, int64, error)
	// RegistrarEntradaVendaTx is called by PedidoService inside the sale
	// transaction to land captured payments in the operator's open session.
	RegistrarEntradaVendaTx(tx *gorm.DB, sessaoID uuid.UUID, m *model.MovimentacaoCaixa) error
}

type caixaService struct {
	repo       repository.CaixaRepository
	dispatcher *worker.Dispatcher
}

// NewCaixaService builds the session/ledger service. dispatcher may be nil
// (unit tests); closing-summary emails are then skipped.
func NewCaixaService(repo repository.CaixaRepository, dispatcher *worker.Dispatcher) CaixaService {
	return &caixaService{repo: repo, dispatcher: dispatcher}
}

// runTx executes fn inside a GORM transaction when db is available, or calls
// fn(nil) directly when db is nil (unit test mode with in-memory repos).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// CalcularSaldo is the pure balance computation over a session's ledger:
// saldo inicial + Σ entradas − Σ saidas. The sum is commutative, so the
// order of movements never affects the result.
func CalcularSaldo(saldoInicial decimal.Decimal, movs []model.MovimentacaoCaixa) decimal.Decimal {
	saldo := saldoInicial
	for _, m := range movs {
		switch m.Tipo {
		case model.MovimentacaoEntrada:
			saldo = saldo.Add(m.Valor)
		case model.MovimentacaoSaida:
			saldo = saldo.Sub(m.Valor)
		}
	}
	return saldo
}

// ── Abrir ─────────────────────────────────────────────────────────────────────

func (s *caixaService) Abrir(ctx context.Context, operadorID uuid.UUID, req dto.AbrirCaixaRequest) (*dto.SessaoCaixaResponse, error) {
	if req.SaldoInicial.IsNegative() {
		return nil, ErrSaldoNegativo
	}

	// Pre-check for a friendly error; the partial unique index on
	// (operador_id) WHERE status = 'aberta' is what actually guarantees the
	// invariant under concurrent opens.
	if existing, err := s.repo.FindSessaoAbertaPorOperador(ctx, operadorID); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, ErrSessaoJaAberta
	}

	sessao := &model.SessaoCaixa{
		OperadorID:         operadorID,
		SaldoInicial:       req.SaldoInicial,
		Status:             model.SessaoAberta,
		ObservacaoAbertura: req.Observacao,
		OpenedAt:           time.Now(),
	}
	if err := s.repo.CriarSessao(ctx, sessao); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrSessaoJaAberta
		}
		return nil, err
	}

	resp := sessaoToResponse(sessao)
	return &resp, nil
}

// ── Fechar ────────────────────────────────────────────────────────────────────
// The single most safety-critical operation: inside one transaction the
// session row is locked FOR UPDATE, the balance is computed over every
// movement committed so far, and the session is frozen. There is no re-open.

func (s *caixaService) Fechar(ctx context.Context, req dto.FecharCaixaRequest) (*dto.FechamentoResponse, error) {
	sessaoID, err := uuid.Parse(req.SessaoID)
	if err != nil {
		return nil, fmt.Errorf("sessao_id inválido: %w", err)
	}
	if req.SaldoDeclarado.IsNegative() {
		return nil, ErrSaldoNegativo
	}

	var resp dto.FechamentoResponse
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		sessao, err := s.repo.FindSessaoForUpdateTx(tx, sessaoID)
		if err != nil {
			return ErrSessaoNaoExiste
		}
		if sessao.Status != model.SessaoAberta {
			return ErrSessaoNaoAberta
		}

		movs, err := s.repo.ListarMovimentacoesTx(tx, sessaoID)
		if err != nil {
			return err
		}

		apurado := CalcularSaldo(sessao.SaldoInicial, movs)
		diferenca := req.SaldoDeclarado.Sub(apurado)

		classificacao := model.DiferencaNula
		switch {
		case diferenca.Abs().LessThan(centavo):
			// Sub-cent differences absorb rounding noise
			diferenca = decimal.Zero
		case diferenca.IsPositive():
			classificacao = model.DiferencaSobra
		default:
			classificacao = model.DiferencaFalta
		}

		now := time.Now()
		declarado := req.SaldoDeclarado
		sessao.SaldoApurado = &apurado
		sessao.SaldoDeclarado = &declarado
		sessao.Diferenca = &diferenca
		sessao.ClassificacaoDif = &classificacao
		sessao.Status = model.SessaoFechada
		sessao.ObservacaoFechamento = req.Observacao
		sessao.ClosedAt = &now

		if err := s.repo.AtualizarSessaoTx(tx, sessao); err != nil {
			return err
		}

		resp = dto.FechamentoResponse{
			Sessao:        sessaoToResponse(sessao),
			SaldoApurado:  apurado,
			Diferenca:     diferenca,
			Classificacao: classificacao,
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	// Best-effort closing summary for the supervisor — never blocks the close.
	if s.dispatcher != nil {
		_ = s.dispatcher.EnqueueFechamento(ctx, worker.FechamentoJobPayload{
			SessaoID:      resp.Sessao.ID,
			OperadorID:    resp.Sessao.OperadorID,
			SaldoApurado:  resp.SaldoApurado.StringFixed(2),
			Diferenca:     resp.Diferenca.StringFixed(2),
			Classificacao: resp.Classificacao,
		})
	}

	return &resp, nil
}

// ── RegistrarMovimentacao ─────────────────────────────────────────────────────
// Appends an immutable movement. NOT idempotent: duplicate calls create
// duplicate movements, so callers retrying must deduplicate themselves.

func (s *caixaService) RegistrarMovimentacao(ctx context.Context, req dto.MovimentacaoRequest) (*dto.MovimentacaoResponse, error) {
	sessaoID, err := uuid.Parse(req.SessaoID)
	if err != nil {
		return nil, fmt.Errorf("sessao_id inválido: %w", err)
	}
	if !req.Valor.IsPositive() {
		return nil, ErrValorInvalido
	}
	if req.Tipo != model.MovimentacaoEntrada && req.Tipo != model.MovimentacaoSaida {
		return nil, fmt.Errorf("tipo de movimentação inválido: %q", req.Tipo)
	}

	mov := &model.MovimentacaoCaixa{
		SessaoCaixaID:   sessaoID,
		Tipo:            req.Tipo,
		Valor:           req.Valor,
		MetodoPagamento: req.MetodoPagamento,
		Descricao:       req.Descricao,
		Origem:          req.Origem,
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		// Shared lock: concurrent inserts into the same open session proceed,
		// but a concurrent close waits until this insert commits.
		sessao, err := s.findSessaoSharedTx(ctx, tx, sessaoID)
		if err != nil {
			return ErrSessaoNaoExiste
		}
		if sessao.Status != model.SessaoAberta {
			return ErrSessaoNaoAberta
		}
		return s.repo.CriarMovimentacaoTx(tx, mov)
	})
	if txErr != nil {
		return nil, txErr
	}

	resp := movimentacaoToResponse(mov)
	return &resp, nil
}

func (s *caixaService) findSessaoSharedTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.SessaoCaixa, error) {
	if tx == nil {
		return s.repo.FindSessaoByID(ctx, id)
	}
	return s.repo.FindSessaoForShareTx(tx, id)
}

// RegistrarEntradaVendaTx validates the session inside the caller's
// transaction and appends the sale movement.
func (s *caixaService) RegistrarEntradaVendaTx(tx *gorm.DB, sessaoID uuid.UUID, m *model.MovimentacaoCaixa) error {
	sessao, err := s.findSessaoSharedTx(context.Background(), tx, sessaoID)
	if err != nil {
		return ErrSessaoNaoExiste
	}
	if sessao.Status != model.SessaoAberta {
		return ErrSessaoNaoAberta
	}
	m.SessaoCaixaID = sessaoID
	return s.repo.CriarMovimentacaoTx(tx, m)
}

// ── Queries ───────────────────────────────────────────────────────────────────

func (s *caixaService) SessaoAtual(ctx context.Context, operadorID uuid.UUID) (*dto.SessaoCaixaResponse, error) {
	sessao, err := s.repo.FindSessaoAbertaPorOperador(ctx, operadorID)
	if err != nil {
		return nil, err
	}
	if sessao == nil {
		return nil, nil
	}
	resp := sessaoToResponse(sessao)
	return &resp, nil
}

func (s *caixaService) ListarMovimentacoes(ctx context.Context, sessaoID uuid.UUID) ([]dto.MovimentacaoResponse, error) {
	if _, err := s.repo.FindSessaoByID(ctx, sessaoID); err != nil {
		return nil, ErrSessaoNaoExiste
	}
	movs, err := s.repo.ListarMovimentacoes(ctx, sessaoID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MovimentacaoResponse, 0, len(movs))
	for i := range movs {
		out = append(out, movimentacaoToResponse(&movs[i]))
	}
	return out, nil
}

func (s *caixaService) Historico(ctx context.Context, page, limit int) ([]dto.SessaoCaixaResponse, int64, error) {
	sessoes, total, err := s.repo.ListarSessoesFechadas(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}
	out := make([]dto.SessaoCaixaResponse, 0, len(sessoes))
	for i := range sessoes {
		out = append(out, sessaoToResponse(&sessoes[i]))
	}
	return out, total, nil
}

// ── Mapping ───────────────────────────────────────────────────────────────────

func sessaoToResponse(s *model.SessaoCaixa) dto.SessaoCaixaResponse {
	resp := dto.SessaoCaixaResponse{
		ID:                   s.ID.String(),
		OperadorID:           s.OperadorID.String(),
		SaldoInicial:         s.SaldoInicial,
		SaldoApurado:         s.SaldoApurado,
		SaldoDeclarado:       s.SaldoDeclarado,
		Diferenca:            s.Diferenca,
		Classificacao:        s.ClassificacaoDif,
		Status:               s.Status,
		ObservacaoAbertura:   s.ObservacaoAbertura,
		ObservacaoFechamento: s.ObservacaoFechamento,
		OpenedAt:             s.OpenedAt.UTC().Format(time.RFC3339),
	}
	if s.ClosedAt != nil {
		t := s.ClosedAt.UTC().Format(time.RFC3339)
		resp.ClosedAt = &t
	}
	return resp
}

func movimentacaoToResponse(m *model.MovimentacaoCaixa) dto.MovimentacaoResponse {
	resp := dto.MovimentacaoResponse{
		ID:              m.ID.String(),
		SessaoID:        m.SessaoCaixaID.String(),
		Tipo:            m.Tipo,
		Valor:           m.Valor,
		MetodoPagamento: m.MetodoPagamento,
		Descricao:       m.Descricao,
		Origem:          m.Origem,
		CreatedAt:       m.CreatedAt.UTC().Format(time.RFC3339),
	}
	if m.PedidoID != nil {
		id := m.PedidoID.String()
		resp.PedidoID = &id
	}
	return resp
}
