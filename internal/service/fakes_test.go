package service_test

import (
	"context"
	"errors"
	"time"

	"caixapos/internal/dto"
	"caixapos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── In-memory CaixaRepository ────────────────────────────────────────────────

type fakeCaixaRepo struct {
	sessoes       map[uuid.UUID]*model.SessaoCaixa
	movimentacoes []model.MovimentacaoCaixa
}

func newFakeCaixaRepo() *fakeCaixaRepo {
	return &fakeCaixaRepo{sessoes: make(map[uuid.UUID]*model.SessaoCaixa)}
}

// DB returns nil so services run their transaction bodies directly.
func (r *fakeCaixaRepo) DB() *gorm.DB { return nil }

func (r *fakeCaixaRepo) CriarSessao(_ context.Context, s *model.SessaoCaixa) error {
	for _, existing := range r.sessoes {
		if existing.OperadorID == s.OperadorID && existing.Status == model.SessaoAberta {
			return gorm.ErrDuplicatedKey
		}
	}
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	r.sessoes[s.ID] = s
	return nil
}

func (r *fakeCaixaRepo) FindSessaoAbertaPorOperador(_ context.Context, operadorID uuid.UUID) (*model.SessaoCaixa, error) {
	for _, s := range r.sessoes {
		if s.OperadorID == operadorID && s.Status == model.SessaoAberta {
			return s, nil
		}
	}
	return nil, nil
}

func (r *fakeCaixaRepo) FindSessaoByID(_ context.Context, id uuid.UUID) (*model.SessaoCaixa, error) {
	s, ok := r.sessoes[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return s, nil
}

func (r *fakeCaixaRepo) FindSessaoForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.SessaoCaixa, error) {
	return r.FindSessaoByID(context.Background(), id)
}

func (r *fakeCaixaRepo) FindSessaoForShareTx(_ *gorm.DB, id uuid.UUID) (*model.SessaoCaixa, error) {
	return r.FindSessaoByID(context.Background(), id)
}

func (r *fakeCaixaRepo) AtualizarSessaoTx(_ *gorm.DB, s *model.SessaoCaixa) error {
	r.sessoes[s.ID] = s
	return nil
}

func (r *fakeCaixaRepo) CriarMovimentacaoTx(_ *gorm.DB, m *model.MovimentacaoCaixa) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	r.movimentacoes = append(r.movimentacoes, *m)
	return nil
}

func (r *fakeCaixaRepo) ListarMovimentacoes(_ context.Context, sessaoID uuid.UUID) ([]model.MovimentacaoCaixa, error) {
	return r.movimentacoesDe(sessaoID), nil
}

func (r *fakeCaixaRepo) ListarMovimentacoesTx(_ *gorm.DB, sessaoID uuid.UUID) ([]model.MovimentacaoCaixa, error) {
	return r.movimentacoesDe(sessaoID), nil
}

func (r *fakeCaixaRepo) movimentacoesDe(sessaoID uuid.UUID) []model.MovimentacaoCaixa {
	var out []model.MovimentacaoCaixa
	for _, m := range r.movimentacoes {
		if m.SessaoCaixaID == sessaoID {
			out = append(out, m)
		}
	}
	return out
}

func (r *fakeCaixaRepo) ListarSessoesFechadas(_ context.Context, page, limit int) ([]model.SessaoCaixa, int64, error) {
	var out []model.SessaoCaixa
	for _, s := range r.sessoes {
		if s.Status == model.SessaoFechada {
			out = append(out, *s)
		}
	}
	return out, int64(len(out)), nil
}

// ── In-memory PedidoRepository ───────────────────────────────────────────────

type fakePedidoRepo struct {
	pedidos    map[uuid.UUID]*model.Pedido
	pagamentos []model.Pagamento
	proxNumero int
}

func newFakePedidoRepo() *fakePedidoRepo {
	return &fakePedidoRepo{pedidos: make(map[uuid.UUID]*model.Pedido)}
}

func (r *fakePedidoRepo) DB() *gorm.DB { return nil }

func (r *fakePedidoRepo) CriarTx(_ *gorm.DB, p *model.Pedido) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = time.Now()
	for i := range p.Itens {
		if p.Itens[i].ID == uuid.Nil {
			p.Itens[i].ID = uuid.New()
		}
		p.Itens[i].PedidoID = p.ID
	}
	for i := range p.Pagamentos {
		if p.Pagamentos[i].ID == uuid.Nil {
			p.Pagamentos[i].ID = uuid.New()
		}
		p.Pagamentos[i].PedidoID = p.ID
		r.pagamentos = append(r.pagamentos, p.Pagamentos[i])
	}
	copia := *p
	copia.Pagamentos = nil
	r.pedidos[p.ID] = &copia
	return nil
}

func (r *fakePedidoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Pedido, error) {
	p, ok := r.pedidos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copia := *p
	copia.Pagamentos = r.pagamentosDe(id)
	return &copia, nil
}

func (r *fakePedidoRepo) FindByIDForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.Pedido, error) {
	return r.FindByID(context.Background(), id)
}

func (r *fakePedidoRepo) pagamentosDe(pedidoID uuid.UUID) []model.Pagamento {
	var out []model.Pagamento
	for _, pg := range r.pagamentos {
		if pg.PedidoID == pedidoID {
			out = append(out, pg)
		}
	}
	return out
}

func (r *fakePedidoRepo) SomarPagamentosCapturadosTx(_ *gorm.DB, pedidoID uuid.UUID) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, pg := range r.pagamentos {
		if pg.PedidoID == pedidoID && pg.Status == model.PagamentoCapturado {
			total = total.Add(pg.Valor)
		}
	}
	return total, nil
}

func (r *fakePedidoRepo) CriarPagamentosTx(_ *gorm.DB, pagamentos []model.Pagamento) error {
	for i := range pagamentos {
		if pagamentos[i].ID == uuid.Nil {
			pagamentos[i].ID = uuid.New()
		}
		r.pagamentos = append(r.pagamentos, pagamentos[i])
	}
	return nil
}

func (r *fakePedidoRepo) AtualizarStatusTx(_ *gorm.DB, id uuid.UUID, status string) error {
	p, ok := r.pedidos[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Status = status
	return nil
}

func (r *fakePedidoRepo) AtualizarMetodoPagamentoTx(_ *gorm.DB, id uuid.UUID, metodo string) error {
	p, ok := r.pedidos[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.MetodoPagamento = metodo
	return nil
}

func (r *fakePedidoRepo) AtualizarPedidoTx(_ *gorm.DB, p *model.Pedido) error {
	stored, ok := r.pedidos[p.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.Status = p.Status
	stored.MotivoCancel = p.MotivoCancel
	return nil
}

func (r *fakePedidoRepo) FindPagamentoForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.Pagamento, error) {
	for i := range r.pagamentos {
		if r.pagamentos[i].ID == id {
			copia := r.pagamentos[i]
			return &copia, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakePedidoRepo) AtualizarPagamentoStatusTx(_ *gorm.DB, id uuid.UUID, status string) error {
	for i := range r.pagamentos {
		if r.pagamentos[i].ID == id {
			r.pagamentos[i].Status = status
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakePedidoRepo) ProximoNumeroTx(_ *gorm.DB) (int, error) {
	r.proxNumero++
	return r.proxNumero, nil
}

func (r *fakePedidoRepo) List(_ context.Context, filter dto.PedidoFilter) ([]model.Pedido, int64, error) {
	var out []model.Pedido
	for id := range r.pedidos {
		p, _ := r.FindByID(context.Background(), id)
		if filter.Status != "" && filter.Status != "all" && p.Status != filter.Status {
			continue
		}
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

// ── In-memory CatalogoRepository ─────────────────────────────────────────────

type fakeCatalogoRepo struct {
	produtos   map[uuid.UUID]*model.Produto
	clientes   map[uuid.UUID]*model.Cliente
	vendedores map[uuid.UUID]*model.Vendedor
}

func newFakeCatalogoRepo() *fakeCatalogoRepo {
	return &fakeCatalogoRepo{
		produtos:   make(map[uuid.UUID]*model.Produto),
		clientes:   make(map[uuid.UUID]*model.Cliente),
		vendedores: make(map[uuid.UUID]*model.Vendedor),
	}
}

func (r *fakeCatalogoRepo) addProduto(nome string, preco decimal.Decimal) uuid.UUID {
	id := uuid.New()
	r.produtos[id] = &model.Produto{ID: id, Nome: nome, PrecoVenda: preco, Ativo: true}
	return id
}

func (r *fakeCatalogoRepo) addCliente() uuid.UUID {
	id := uuid.New()
	r.clientes[id] = &model.Cliente{ID: id, Nome: "Cliente Teste", Ativo: true}
	return id
}

func (r *fakeCatalogoRepo) addVendedor() uuid.UUID {
	id := uuid.New()
	r.vendedores[id] = &model.Vendedor{ID: id, Nome: "Vendedor Teste", Ativo: true}
	return id
}

func (r *fakeCatalogoRepo) FindProdutoByID(_ context.Context, id uuid.UUID) (*model.Produto, error) {
	p, ok := r.produtos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *fakeCatalogoRepo) FindClienteByID(_ context.Context, id uuid.UUID) (*model.Cliente, error) {
	c, ok := r.clientes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r *fakeCatalogoRepo) FindVendedorByID(_ context.Context, id uuid.UUID) (*model.Vendedor, error) {
	v, ok := r.vendedores[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return v, nil
}
