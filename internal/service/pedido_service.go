package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"caixapos/internal/dto"
	"caixapos/internal/model"
	"caixapos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PedidoService interface {
	Criar(ctx context.Context, operadorID uuid.UUID, req dto.CriarPedidoRequest) (*dto.PedidoResponse, error)
	RegistrarPagamento(ctx context.Context, operadorID uuid.UUID, pedidoID uuid.UUID, req dto.RegistrarPagamentoRequest) (*dto.PedidoResponse, error)
	ConfirmarPagamento(ctx context.Context, operadorID uuid.UUID, pagamentoID uuid.UUID) (*dto.PedidoResponse, error)
	Cancelar(ctx context.Context, operadorID uuid.UUID, pedidoID uuid.UUID, motivo string) error
	Obter(ctx context.Context, pedidoID uuid.UUID) (*dto.PedidoResponse, error)
	Listar(ctx context.Context, filter dto.PedidoFilter) (*dto.PedidoListResponse, error)
}

type pedidoService struct {
	repo      repository.PedidoRepository
	caixa     CaixaService
	caixaRepo repository.CaixaRepository
	catalogo  repository.CatalogoRepository
}

func NewPedidoService(
	repo repository.PedidoRepository,
	caixa CaixaService,
	caixaRepo repository.CaixaRepository,
	catalogo repository.CatalogoRepository,
) PedidoService {
	return &pedidoService{repo: repo, caixa: caixa, caixaRepo: caixaRepo, catalogo: catalogo}
}

// ── Criar ─────────────────────────────────────────────────────────────────────
// Sale finalization, one ACID transaction:
//  1. operator must have an open session
//  2. resolve cliente/vendedor/produtos from the read-only directory/catalog
//  3. total = Σ(quantidade × preço) − desconto, never negative
//  4. validate the payment split against the total (overshoot rejected)
//  5. derive initial status from the state machine
//  6. create pedido + itens + pagamentos, land captured amounts as ENTRADA
//     movements in the open session

func (s *pedidoService) Criar(ctx context.Context, operadorID uuid.UUID, req dto.CriarPedidoRequest) (*dto.PedidoResponse, error) {
	sessao, err := s.caixaRepo.FindSessaoAbertaPorOperador(ctx, operadorID)
	if err != nil {
		return nil, err
	}
	if sessao == nil {
		return nil, ErrSessaoNaoAberta
	}

	clienteID, err := uuid.Parse(req.ClienteID)
	if err != nil {
		return nil, fmt.Errorf("cliente_id inválido: %w", err)
	}
	vendedorID, err := uuid.Parse(req.VendedorID)
	if err != nil {
		return nil, fmt.Errorf("vendedor_id inválido: %w", err)
	}
	if _, err := s.catalogo.FindClienteByID(ctx, clienteID); err != nil {
		return nil, fmt.Errorf("cliente %s não encontrado", req.ClienteID)
	}
	if _, err := s.catalogo.FindVendedorByID(ctx, vendedorID); err != nil {
		return nil, fmt.Errorf("vendedor %s não encontrado", req.VendedorID)
	}

	// Resolve catalog prices outside the transaction (read-only collaborator)
	type itemResolvido struct {
		produtoID uuid.UUID
		nome      string
		preco     decimal.Decimal
		qtd       int
		subtotal  decimal.Decimal
	}
	var resolvidos []itemResolvido
	subtotal := decimal.Zero
	for _, item := range req.Itens {
		pid, err := uuid.Parse(item.ProdutoID)
		if err != nil {
			return nil, fmt.Errorf("produto_id inválido: %w", err)
		}
		p, err := s.catalogo.FindProdutoByID(ctx, pid)
		if err != nil {
			return nil, fmt.Errorf("produto %s não encontrado", item.ProdutoID)
		}
		if !p.Ativo {
			return nil, fmt.Errorf("produto %s está inativo e não pode ser vendido", p.Nome)
		}
		linha := p.PrecoVenda.Mul(decimal.NewFromInt(int64(item.Quantidade)))
		subtotal = subtotal.Add(linha)
		resolvidos = append(resolvidos, itemResolvido{
			produtoID: pid, nome: p.Nome, preco: p.PrecoVenda,
			qtd: item.Quantidade, subtotal: linha,
		})
	}

	if req.Desconto.IsNegative() || req.Desconto.GreaterThan(subtotal) {
		return nil, ErrDescontoInvalido
	}
	total := subtotal.Sub(req.Desconto)

	parcelas := parcelasFromRequest(req.Parcelas)
	divisao := ValidarDivisao(parcelas, total)
	if divisao.Excedido {
		return nil, ErrPagamentoExcedente
	}
	status, err := ProximoStatus(divisao.TotalPago, total, req.Pago, TemParcelaCondicional(parcelas))
	if err != nil {
		return nil, err
	}

	var pedido model.Pedido
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		numero, err := s.repo.ProximoNumeroTx(tx)
		if err != nil {
			return err
		}

		pedido = model.Pedido{
			Numero:          numero,
			ClienteID:       clienteID,
			VendedorID:      vendedorID,
			SessaoCaixaID:   sessao.ID,
			Subtotal:        subtotal,
			Desconto:        req.Desconto,
			Total:           total,
			MetodoPagamento: MetodoDoPedido(parcelas),
			Status:          status,
		}
		for _, r := range resolvidos {
			pedido.Itens = append(pedido.Itens, model.PedidoItem{
				ProdutoID:     r.produtoID,
				Quantidade:    r.qtd,
				PrecoUnitario: r.preco,
				Subtotal:      r.subtotal,
			})
		}

		statusPagamento := model.PagamentoPendente
		if req.Pago {
			statusPagamento = model.PagamentoCapturado
		}
		// Zero-amount parcelas (a conditional placeholder) are not persisted:
		// Pagamento rows always carry a strictly positive Valor.
		for _, p := range parcelas {
			if !p.Valor.IsPositive() {
				continue
			}
			pedido.Pagamentos = append(pedido.Pagamentos, model.Pagamento{
				Metodo: p.Metodo,
				Valor:  p.Valor,
				Status: statusPagamento,
			})
		}

		if err := s.repo.CriarTx(tx, &pedido); err != nil {
			return err
		}

		if req.Pago {
			for _, pg := range pedido.Pagamentos {
				pedidoRef := pedido.ID
				mov := &model.MovimentacaoCaixa{
					Tipo:            model.MovimentacaoEntrada,
					Valor:           pg.Valor,
					MetodoPagamento: pg.Metodo,
					Descricao:       fmt.Sprintf("Pedido #%d", numero),
					Origem:          "loja",
					PedidoID:        &pedidoRef,
				}
				if err := s.caixa.RegistrarEntradaVendaTx(tx, sessao.ID, mov); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	resp := pedidoToResponse(&pedido)
	for i, r := range resolvidos {
		resp.Itens[i].Produto = r.nome
	}
	return resp, nil
}

// ── RegistrarPagamento ────────────────────────────────────────────────────────
// Atomic read-modify-write of the captured sum: the pedido row is locked, the
// current captured total is read inside the same transaction, and only then
// are the new parcelas validated and applied. A plain read-then-write would
// let two concurrent commits push the captured sum past the total.

func (s *pedidoService) RegistrarPagamento(ctx context.Context, operadorID uuid.UUID, pedidoID uuid.UUID, req dto.RegistrarPagamentoRequest) (*dto.PedidoResponse, error) {
	parcelas := parcelasFromRequest(req.Parcelas)

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		pedido, err := s.repo.FindByIDForUpdateTx(tx, pedidoID)
		if err != nil {
			return ErrPedidoNaoExiste
		}
		if !podeReceberPagamento(pedido.Status) {
			return ErrPedidoFechado
		}

		capturado, err := s.repo.SomarPagamentosCapturadosTx(tx, pedidoID)
		if err != nil {
			return err
		}

		novoTotal := capturado
		for _, p := range parcelas {
			if p.Valor.IsNegative() {
				return ErrValorInvalido
			}
			novoTotal = novoTotal.Add(p.Valor)
		}
		if novoTotal.Sub(pedido.Total).GreaterThanOrEqual(centavo) {
			return ErrPagamentoExcedente
		}

		status, err := ProximoStatus(novoTotal, pedido.Total, req.Pago, TemParcelaCondicional(parcelas))
		if err != nil {
			return err
		}

		statusPagamento := model.PagamentoPendente
		if req.Pago {
			statusPagamento = model.PagamentoCapturado
		}
		var novos []model.Pagamento
		for _, p := range parcelas {
			if !p.Valor.IsPositive() {
				continue
			}
			novos = append(novos, model.Pagamento{
				PedidoID: pedidoID,
				Metodo:   p.Metodo,
				Valor:    p.Valor,
				Status:   statusPagamento,
			})
		}
		if len(novos) > 0 {
			if err := s.repo.CriarPagamentosTx(tx, novos); err != nil {
				return err
			}
			if len(pedido.Pagamentos)+len(novos) > 1 && pedido.MetodoPagamento != model.MetodoDividido {
				if err := s.repo.AtualizarMetodoPagamentoTx(tx, pedidoID, model.MetodoDividido); err != nil {
					return err
				}
			}
		}

		if req.Pago {
			if err := s.registrarEntradasTx(ctx, tx, operadorID, pedido, novos); err != nil {
				return err
			}
		}

		if avancaStatus(pedido.Status, status) {
			return s.repo.AtualizarStatusTx(tx, pedidoID, status)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	return s.Obter(ctx, pedidoID)
}

// ── ConfirmarPagamento ────────────────────────────────────────────────────────
// Capture of a previously pending payment (deferred/consignment settlement).
// pendente → capturado is one-way; the pedido status is then re-evaluated
// against the full captured history and only ever moves forward.

func (s *pedidoService) ConfirmarPagamento(ctx context.Context, operadorID uuid.UUID, pagamentoID uuid.UUID) (*dto.PedidoResponse, error) {
	var pedidoID uuid.UUID

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		pg, err := s.repo.FindPagamentoForUpdateTx(tx, pagamentoID)
		if err != nil || pg.Status != model.PagamentoPendente {
			return ErrPagamentoInvalid
		}
		pedidoID = pg.PedidoID

		pedido, err := s.repo.FindByIDForUpdateTx(tx, pg.PedidoID)
		if err != nil {
			return ErrPedidoNaoExiste
		}
		if pedido.Status == model.PedidoCancelado {
			return ErrPedidoFechado
		}

		capturado, err := s.repo.SomarPagamentosCapturadosTx(tx, pg.PedidoID)
		if err != nil {
			return err
		}
		novoCapturado := capturado.Add(pg.Valor)
		if novoCapturado.Sub(pedido.Total).GreaterThanOrEqual(centavo) {
			return ErrPagamentoExcedente
		}

		if err := s.repo.AtualizarPagamentoStatusTx(tx, pagamentoID, model.PagamentoCapturado); err != nil {
			return err
		}

		if err := s.registrarEntradasTx(ctx, tx, operadorID, pedido, []model.Pagamento{*pg}); err != nil {
			return err
		}

		// Capture settles declared funds: a fully covered total confirms the
		// pedido, a partial capture promotes to pagamento_parcial.
		novo := pedido.Status
		switch {
		case pedido.Total.Sub(novoCapturado).Abs().LessThan(centavo):
			novo = model.PedidoPagamentoConfirmado
		case novoCapturado.IsPositive() && novoCapturado.LessThan(pedido.Total):
			novo = model.PedidoPagamentoParcial
		}
		if avancaStatus(pedido.Status, novo) {
			return s.repo.AtualizarStatusTx(tx, pg.PedidoID, novo)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	return s.Obter(ctx, pedidoID)
}

// ── Cancelar ──────────────────────────────────────────────────────────────────
// Terminal. Reachable from any non-confirmed state; captured funds leave the
// drawer through reversing SAIDA movements (the ledger is append-only, so a
// cancellation never touches the original entries).

func (s *pedidoService) Cancelar(ctx context.Context, operadorID uuid.UUID, pedidoID uuid.UUID, motivo string) error {
	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		pedido, err := s.repo.FindByIDForUpdateTx(tx, pedidoID)
		if err != nil {
			return ErrPedidoNaoExiste
		}
		if pedido.Status == model.PedidoCancelado {
			return ErrPedidoJaCancel
		}
		if pedido.Status == model.PedidoPagamentoConfirmado {
			return ErrPedidoFechado
		}

		var capturados []model.Pagamento
		for _, pg := range pedido.Pagamentos {
			if pg.Status == model.PagamentoCapturado {
				capturados = append(capturados, pg)
			}
		}
		if len(capturados) > 0 {
			sessao, err := s.caixaRepo.FindSessaoAbertaPorOperador(ctx, operadorID)
			if err != nil {
				return err
			}
			if sessao == nil {
				return ErrSessaoNaoAberta
			}
			for _, pg := range capturados {
				pedidoRef := pedido.ID
				mov := &model.MovimentacaoCaixa{
					Tipo:            model.MovimentacaoSaida,
					Valor:           pg.Valor,
					MetodoPagamento: pg.Metodo,
					Descricao:       fmt.Sprintf("Cancelamento pedido #%d: %s", pedido.Numero, motivo),
					Origem:          "loja",
					PedidoID:        &pedidoRef,
				}
				if err := s.caixa.RegistrarEntradaVendaTx(tx, sessao.ID, mov); err != nil {
					return err
				}
			}
		}

		pedido.Status = model.PedidoCancelado
		pedido.MotivoCancel = &motivo
		return s.repo.AtualizarPedidoTx(tx, pedido)
	})
}

// ── Queries ───────────────────────────────────────────────────────────────────

func (s *pedidoService) Obter(ctx context.Context, pedidoID uuid.UUID) (*dto.PedidoResponse, error) {
	pedido, err := s.repo.FindByID(ctx, pedidoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPedidoNaoExiste
		}
		return nil, err
	}
	return pedidoToResponse(pedido), nil
}

func (s *pedidoService) Listar(ctx context.Context, filter dto.PedidoFilter) (*dto.PedidoListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	pedidos, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.PedidoResponse, 0, len(pedidos))
	for i := range pedidos {
		items = append(items, *pedidoToResponse(&pedidos[i]))
	}
	return &dto.PedidoListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// registrarEntradasTx lands captured payments in the operator's currently
// open session as ENTRADA movements.
func (s *pedidoService) registrarEntradasTx(ctx context.Context, tx *gorm.DB, operadorID uuid.UUID, pedido *model.Pedido, pagamentos []model.Pagamento) error {
	sessao, err := s.caixaRepo.FindSessaoAbertaPorOperador(ctx, operadorID)
	if err != nil {
		return err
	}
	if sessao == nil {
		return ErrSessaoNaoAberta
	}
	for _, pg := range pagamentos {
		pedidoRef := pedido.ID
		mov := &model.MovimentacaoCaixa{
			Tipo:            model.MovimentacaoEntrada,
			Valor:           pg.Valor,
			MetodoPagamento: pg.Metodo,
			Descricao:       fmt.Sprintf("Pedido #%d", pedido.Numero),
			Origem:          "loja",
			PedidoID:        &pedidoRef,
		}
		if err := s.caixa.RegistrarEntradaVendaTx(tx, sessao.ID, mov); err != nil {
			return err
		}
	}
	return nil
}

func parcelasFromRequest(reqs []dto.ParcelaRequest) []Parcela {
	parcelas := make([]Parcela, 0, len(reqs))
	for _, p := range reqs {
		parcelas = append(parcelas, Parcela{Metodo: p.Metodo, Valor: p.Valor})
	}
	return parcelas
}

func pedidoToResponse(p *model.Pedido) *dto.PedidoResponse {
	itens := make([]dto.ItemPedidoResponse, 0, len(p.Itens))
	for _, item := range p.Itens {
		nome := ""
		if item.Produto != nil {
			nome = item.Produto.Nome
		}
		itens = append(itens, dto.ItemPedidoResponse{
			Produto:       nome,
			ProdutoID:     item.ProdutoID.String(),
			Quantidade:    item.Quantidade,
			PrecoUnitario: item.PrecoUnitario,
			Subtotal:      item.Subtotal,
		})
	}

	pagamentos := make([]dto.PagamentoResponse, 0, len(p.Pagamentos))
	totalPago := decimal.Zero
	for _, pg := range p.Pagamentos {
		pagamentos = append(pagamentos, dto.PagamentoResponse{
			ID:     pg.ID.String(),
			Metodo: pg.Metodo,
			Valor:  pg.Valor,
			Status: pg.Status,
		})
		if pg.Status == model.PagamentoCapturado {
			totalPago = totalPago.Add(pg.Valor)
		}
	}
	restante := p.Total.Sub(totalPago)
	if restante.IsNegative() {
		restante = decimal.Zero
	}

	return &dto.PedidoResponse{
		ID:              p.ID.String(),
		Numero:          p.Numero,
		ClienteID:       p.ClienteID.String(),
		VendedorID:      p.VendedorID.String(),
		Itens:           itens,
		Subtotal:        p.Subtotal,
		Desconto:        p.Desconto,
		Total:           p.Total,
		MetodoPagamento: p.MetodoPagamento,
		Status:          p.Status,
		Pagamentos:      pagamentos,
		TotalPago:       totalPago,
		Restante:        restante,
		CreatedAt:       p.CreatedAt.UTC().Format(time.RFC3339),
	}
}
