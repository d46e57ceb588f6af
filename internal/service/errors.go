package service

import "errors"

// Sentinel errors for the reconciliation core. Handlers match these with
// errors.Is to pick the HTTP status; messages are what operators see.
//
// Three kinds:
//   - validation (ErrValorInvalido, ErrDescontoInvalido): fixable input, no
//     state was touched;
//   - state conflict (ErrSessaoJaAberta, ErrSessaoNaoAberta,
//     ErrPedidoFechado): caller must re-fetch current state and decide;
//   - reconciliation (ErrPagamentoDivergente, ErrPagamentoExcedente):
//     declared intent disagrees with the computed totals — always surfaced,
//     never coerced.
var (
	ErrValorInvalido    = errors.New("valor deve ser maior que zero")
	ErrSaldoNegativo    = errors.New("saldo não pode ser negativo")
	ErrDescontoInvalido = errors.New("desconto não pode exceder o total do pedido")

	ErrSessaoJaAberta   = errors.New("já existe uma sessão de caixa aberta para este operador")
	ErrSessaoNaoAberta  = errors.New("não há sessão de caixa aberta")
	ErrSessaoNaoExiste  = errors.New("sessão de caixa não encontrada")
	ErrPedidoNaoExiste  = errors.New("pedido não encontrado")
	ErrPedidoFechado    = errors.New("pedido não aceita mais pagamentos")
	ErrPedidoJaCancel   = errors.New("pedido já está cancelado")
	ErrPagamentoInvalid = errors.New("pagamento não encontrado ou já capturado")

	ErrPagamentoDivergente = errors.New("total pago diverge do total do pedido")
	ErrPagamentoExcedente  = errors.New("total pago excede o total do pedido")
)
