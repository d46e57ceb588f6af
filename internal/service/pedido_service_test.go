package service_test

import (
	"context"
	"testing"

	"caixapos/internal/dto"
	"caixapos/internal/model"
	"caixapos/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pedidoTestEnv struct {
	caixaRepo  *fakeCaixaRepo
	pedidoRepo *fakePedidoRepo
	caixaSvc   service.CaixaService
	pedidoSvc  service.PedidoService
	operadorID uuid.UUID
	sessaoID   uuid.UUID
	clienteID  uuid.UUID
	vendedorID uuid.UUID
	produtoID  uuid.UUID // preço de venda 100.00
}

func newPedidoTestEnv(t *testing.T) *pedidoTestEnv {
	t.Helper()
	caixaRepo := newFakeCaixaRepo()
	pedidoRepo := newFakePedidoRepo()
	catalogo := newFakeCatalogoRepo()

	caixaSvc := service.NewCaixaService(caixaRepo, nil)
	pedidoSvc := service.NewPedidoService(pedidoRepo, caixaSvc, caixaRepo, catalogo)

	operadorID := uuid.New()
	sessao := abrirSessao(t, caixaSvc, operadorID, "100.00")

	return &pedidoTestEnv{
		caixaRepo:  caixaRepo,
		pedidoRepo: pedidoRepo,
		caixaSvc:   caixaSvc,
		pedidoSvc:  pedidoSvc,
		operadorID: operadorID,
		sessaoID:   uuid.MustParse(sessao.ID),
		clienteID:  catalogo.addCliente(),
		vendedorID: catalogo.addVendedor(),
		produtoID:  catalogo.addProduto("Produto Teste", d("100.00")),
	}
}

func (e *pedidoTestEnv) criarPedido(t *testing.T, parcelas []dto.ParcelaRequest, pago bool) *dto.PedidoResponse {
	t.Helper()
	resp, err := e.pedidoSvc.Criar(context.Background(), e.operadorID, dto.CriarPedidoRequest{
		ClienteID:  e.clienteID.String(),
		VendedorID: e.vendedorID.String(),
		Itens:      []dto.ItemPedidoRequest{{ProdutoID: e.produtoID.String(), Quantidade: 1}},
		Desconto:   decimal.Zero,
		Parcelas:   parcelas,
		Pago:       pago,
	})
	require.NoError(t, err)
	return resp
}

func TestCriarPedidoPagoIntegral(t *testing.T) {
	env := newPedidoTestEnv(t)

	// total 100.00, dividido 60 dinheiro + 40 pix, marcado como pago
	resp := env.criarPedido(t, []dto.ParcelaRequest{
		{Metodo: model.MetodoDinheiro, Valor: d("60.00")},
		{Metodo: model.MetodoPix, Valor: d("40.00")},
	}, true)

	assert.Equal(t, model.PedidoPagamentoConfirmado, resp.Status)
	assert.Equal(t, model.MetodoDividido, resp.MetodoPagamento)
	assert.True(t, resp.TotalPago.Equal(d("100.00")))
	assert.True(t, resp.Restante.IsZero())
	require.Len(t, resp.Pagamentos, 2)
	for _, pg := range resp.Pagamentos {
		assert.Equal(t, model.PagamentoCapturado, pg.Status)
	}

	// Each captured parcela landed as one ENTRADA in the open session
	movs := env.caixaRepo.movimentacoesDe(env.sessaoID)
	require.Len(t, movs, 2)
	soma := decimal.Zero
	for _, m := range movs {
		assert.Equal(t, model.MovimentacaoEntrada, m.Tipo)
		require.NotNil(t, m.PedidoID)
		soma = soma.Add(m.Valor)
	}
	assert.True(t, soma.Equal(d("100.00")))
}

func TestCriarPedidoParcialNaoGeraMovimentacao(t *testing.T) {
	env := newPedidoTestEnv(t)

	resp := env.criarPedido(t, []dto.ParcelaRequest{
		{Metodo: model.MetodoDinheiro, Valor: d("40.00")},
	}, false)

	assert.Equal(t, model.PedidoPagamentoParcial, resp.Status)
	assert.Equal(t, model.MetodoDinheiro, resp.MetodoPagamento)
	assert.True(t, resp.Restante.Equal(d("60.00")))
	require.Len(t, resp.Pagamentos, 1)
	assert.Equal(t, model.PagamentoPendente, resp.Pagamentos[0].Status)

	// Nothing captured, nothing in the drawer
	assert.True(t, resp.TotalPago.IsZero())
	assert.Empty(t, env.caixaRepo.movimentacoesDe(env.sessaoID))
}

func TestCriarPedidoCondicional(t *testing.T) {
	env := newPedidoTestEnv(t)

	resp := env.criarPedido(t, []dto.ParcelaRequest{
		{Metodo: model.MetodoCondicional, Valor: decimal.Zero},
	}, false)

	assert.Equal(t, model.PedidoCondicional, resp.Status)
	// The zero-amount placeholder is never persisted as a payment row
	assert.Empty(t, resp.Pagamentos)
}

func TestCriarPedidoDivisaoExcedente(t *testing.T) {
	env := newPedidoTestEnv(t)

	_, err := env.pedidoSvc.Criar(context.Background(), env.operadorID, dto.CriarPedidoRequest{
		ClienteID:  env.clienteID.String(),
		VendedorID: env.vendedorID.String(),
		Itens:      []dto.ItemPedidoRequest{{ProdutoID: env.produtoID.String(), Quantidade: 1}},
		Parcelas: []dto.ParcelaRequest{
			{Metodo: model.MetodoDinheiro, Valor: d("70.00")},
			{Metodo: model.MetodoPix, Valor: d("40.00")},
		},
	})
	assert.ErrorIs(t, err, service.ErrPagamentoExcedente)
}

func TestCriarPedidoPagoDivergente(t *testing.T) {
	env := newPedidoTestEnv(t)

	_, err := env.pedidoSvc.Criar(context.Background(), env.operadorID, dto.CriarPedidoRequest{
		ClienteID:  env.clienteID.String(),
		VendedorID: env.vendedorID.String(),
		Itens:      []dto.ItemPedidoRequest{{ProdutoID: env.produtoID.String(), Quantidade: 1}},
		Parcelas:   []dto.ParcelaRequest{{Metodo: model.MetodoDinheiro, Valor: d("40.00")}},
		Pago:       true,
	})
	assert.ErrorIs(t, err, service.ErrPagamentoDivergente)
}

func TestCriarPedidoSemSessaoAberta(t *testing.T) {
	env := newPedidoTestEnv(t)
	outroOperador := uuid.New()

	_, err := env.pedidoSvc.Criar(context.Background(), outroOperador, dto.CriarPedidoRequest{
		ClienteID:  env.clienteID.String(),
		VendedorID: env.vendedorID.String(),
		Itens:      []dto.ItemPedidoRequest{{ProdutoID: env.produtoID.String(), Quantidade: 1}},
		Parcelas:   []dto.ParcelaRequest{{Metodo: model.MetodoDinheiro, Valor: d("100.00")}},
	})
	assert.ErrorIs(t, err, service.ErrSessaoNaoAberta)
}

func TestCriarPedidoDescontoInvalido(t *testing.T) {
	env := newPedidoTestEnv(t)

	_, err := env.pedidoSvc.Criar(context.Background(), env.operadorID, dto.CriarPedidoRequest{
		ClienteID:  env.clienteID.String(),
		VendedorID: env.vendedorID.String(),
		Itens:      []dto.ItemPedidoRequest{{ProdutoID: env.produtoID.String(), Quantidade: 1}},
		Desconto:   d("150.00"), // maior que o subtotal
		Parcelas:   []dto.ParcelaRequest{{Metodo: model.MetodoDinheiro, Valor: decimal.Zero}},
	})
	assert.ErrorIs(t, err, service.ErrDescontoInvalido)
}

func TestRegistrarPagamentoCompletaPedidoCondicional(t *testing.T) {
	env := newPedidoTestEnv(t)
	pedido := env.criarPedido(t, []dto.ParcelaRequest{
		{Metodo: model.MetodoCondicional, Valor: decimal.Zero},
	}, false)
	pedidoID := uuid.MustParse(pedido.ID)
	require.Equal(t, model.PedidoCondicional, pedido.Status)

	// O cliente volta e paga tudo de uma vez
	resp, err := env.pedidoSvc.RegistrarPagamento(context.Background(), env.operadorID, pedidoID, dto.RegistrarPagamentoRequest{
		Parcelas: []dto.ParcelaRequest{{Metodo: model.MetodoDinheiro, Valor: d("100.00")}},
		Pago:     true,
	})
	require.NoError(t, err)
	assert.Equal(t, model.PedidoPagamentoConfirmado, resp.Status)
	assert.True(t, resp.TotalPago.Equal(d("100.00")))

	movs := env.caixaRepo.movimentacoesDe(env.sessaoID)
	require.Len(t, movs, 1)
	assert.Equal(t, model.MovimentacaoEntrada, movs[0].Tipo)
}

func TestConfirmacoesAcumulamCapturados(t *testing.T) {
	env := newPedidoTestEnv(t)
	pedido := env.criarPedido(t, []dto.ParcelaRequest{
		{Metodo: model.MetodoTransferencia, Valor: d("40.00")},
		{Metodo: model.MetodoPix, Valor: d("60.00")},
	}, false)
	require.Len(t, pedido.Pagamentos, 2)

	primeira := uuid.MustParse(pedido.Pagamentos[0].ID)
	segunda := uuid.MustParse(pedido.Pagamentos[1].ID)

	resp, err := env.pedidoSvc.ConfirmarPagamento(context.Background(), env.operadorID, primeira)
	require.NoError(t, err)
	assert.Equal(t, model.PedidoPagamentoParcial, resp.Status)
	assert.True(t, resp.TotalPago.Equal(pedido.Pagamentos[0].Valor), "apenas o capturado conta como pago")

	resp, err = env.pedidoSvc.ConfirmarPagamento(context.Background(), env.operadorID, segunda)
	require.NoError(t, err)
	assert.Equal(t, model.PedidoPagamentoConfirmado, resp.Status)
	assert.True(t, resp.TotalPago.Equal(d("100.00")))
	assert.True(t, resp.Restante.IsZero())
}

func TestRegistrarPagamentoNaoUltrapassaTotal(t *testing.T) {
	env := newPedidoTestEnv(t)
	pedido := env.criarPedido(t, []dto.ParcelaRequest{
		{Metodo: model.MetodoDinheiro, Valor: d("40.00")},
	}, false)
	pedidoID := uuid.MustParse(pedido.ID)

	// Captura os 40 pendentes
	_, err := env.pedidoSvc.ConfirmarPagamento(context.Background(), env.operadorID, uuid.MustParse(pedido.Pagamentos[0].ID))
	require.NoError(t, err)

	// 40 capturados + 70 novos = 110 > 100 → rejeitado
	_, err = env.pedidoSvc.RegistrarPagamento(context.Background(), env.operadorID, pedidoID, dto.RegistrarPagamentoRequest{
		Parcelas: []dto.ParcelaRequest{{Metodo: model.MetodoPix, Valor: d("70.00")}},
	})
	assert.ErrorIs(t, err, service.ErrPagamentoExcedente)
}

func TestRegistrarPagamentoEmPedidoFechado(t *testing.T) {
	env := newPedidoTestEnv(t)
	pedido := env.criarPedido(t, []dto.ParcelaRequest{
		{Metodo: model.MetodoDinheiro, Valor: d("100.00")},
	}, true)
	pedidoID := uuid.MustParse(pedido.ID)
	require.Equal(t, model.PedidoPagamentoConfirmado, pedido.Status)

	_, err := env.pedidoSvc.RegistrarPagamento(context.Background(), env.operadorID, pedidoID, dto.RegistrarPagamentoRequest{
		Parcelas: []dto.ParcelaRequest{{Metodo: model.MetodoPix, Valor: d("10.00")}},
	})
	assert.ErrorIs(t, err, service.ErrPedidoFechado)
}

func TestConfirmarPagamentoPendente(t *testing.T) {
	env := newPedidoTestEnv(t)
	pedido := env.criarPedido(t, []dto.ParcelaRequest{
		{Metodo: model.MetodoTransferencia, Valor: d("100.00")},
	}, false)
	require.Equal(t, model.PedidoPendente, pedido.Status)
	require.Len(t, pedido.Pagamentos, 1)
	pagamentoID := uuid.MustParse(pedido.Pagamentos[0].ID)

	resp, err := env.pedidoSvc.ConfirmarPagamento(context.Background(), env.operadorID, pagamentoID)
	require.NoError(t, err)
	assert.Equal(t, model.PedidoPagamentoConfirmado, resp.Status)
	assert.Equal(t, model.PagamentoCapturado, resp.Pagamentos[0].Status)

	// A captura lança a ENTRADA correspondente
	movs := env.caixaRepo.movimentacoesDe(env.sessaoID)
	require.Len(t, movs, 1)
	assert.Equal(t, model.MovimentacaoEntrada, movs[0].Tipo)
	assert.True(t, movs[0].Valor.Equal(d("100.00")))

	// Confirmação é one-way: segunda tentativa falha
	_, err = env.pedidoSvc.ConfirmarPagamento(context.Background(), env.operadorID, pagamentoID)
	assert.ErrorIs(t, err, service.ErrPagamentoInvalid)
}

func TestCancelarPedidoEstornaCapturados(t *testing.T) {
	env := newPedidoTestEnv(t)
	pedido := env.criarPedido(t, []dto.ParcelaRequest{
		{Metodo: model.MetodoDinheiro, Valor: d("40.00")},
	}, false)
	pedidoID := uuid.MustParse(pedido.ID)

	_, err := env.pedidoSvc.ConfirmarPagamento(context.Background(), env.operadorID, uuid.MustParse(pedido.Pagamentos[0].ID))
	require.NoError(t, err)

	err = env.pedidoSvc.Cancelar(context.Background(), env.operadorID, pedidoID, "cliente desistiu")
	require.NoError(t, err)

	atualizado, err := env.pedidoSvc.Obter(context.Background(), pedidoID)
	require.NoError(t, err)
	assert.Equal(t, model.PedidoCancelado, atualizado.Status)

	// Uma ENTRADA da captura e uma SAIDA do estorno — o ledger nunca apaga
	movs := env.caixaRepo.movimentacoesDe(env.sessaoID)
	require.Len(t, movs, 2)
	assert.Equal(t, model.MovimentacaoEntrada, movs[0].Tipo)
	assert.Equal(t, model.MovimentacaoSaida, movs[1].Tipo)
	assert.True(t, movs[0].Valor.Equal(movs[1].Valor))

	// Cancelamento é absorvente
	err = env.pedidoSvc.Cancelar(context.Background(), env.operadorID, pedidoID, "de novo")
	assert.ErrorIs(t, err, service.ErrPedidoJaCancel)
}

func TestCancelarPedidoConfirmado(t *testing.T) {
	env := newPedidoTestEnv(t)
	pedido := env.criarPedido(t, []dto.ParcelaRequest{
		{Metodo: model.MetodoDinheiro, Valor: d("100.00")},
	}, true)

	err := env.pedidoSvc.Cancelar(context.Background(), env.operadorID, uuid.MustParse(pedido.ID), "tarde demais")
	assert.ErrorIs(t, err, service.ErrPedidoFechado)
}

func TestNumeracaoSequencialDePedidos(t *testing.T) {
	env := newPedidoTestEnv(t)

	primeiro := env.criarPedido(t, []dto.ParcelaRequest{
		{Metodo: model.MetodoDinheiro, Valor: d("100.00")},
	}, true)
	segundo := env.criarPedido(t, []dto.ParcelaRequest{
		{Metodo: model.MetodoPix, Valor: d("50.00")},
	}, false)

	assert.Equal(t, primeiro.Numero+1, segundo.Numero)
}
