package service

import (
	"caixapos/internal/model"

	"github.com/shopspring/decimal"
)

// centavo is the rounding epsilon: differences smaller than one cent are
// treated as no difference everywhere money is compared.
var centavo = decimal.New(1, -2) // 0.01

// Parcela is a proposed (method, amount) pair supplied at checkout. It is a
// transient input — committing converts it into Pagamento rows.
type Parcela struct {
	Metodo string          `json:"metodo"`
	Valor  decimal.Decimal `json:"valor"`
}

// ResultadoDivisao is the outcome of validating a set of parcelas against an
// order total.
type ResultadoDivisao struct {
	TotalPago      decimal.Decimal
	Restante       decimal.Decimal
	TotalmentePago bool
	Excedido       bool
}

// ValidarDivisao aggregates a set of parcelas against the order total.
// Amounts are summed commutatively — no ordering or priority between methods.
// Restante never goes negative; Excedido flags sums beyond total + epsilon.
func ValidarDivisao(parcelas []Parcela, total decimal.Decimal) ResultadoDivisao {
	totalPago := decimal.Zero
	for _, p := range parcelas {
		totalPago = totalPago.Add(p.Valor)
	}

	restante := total.Sub(totalPago)
	if restante.IsNegative() {
		restante = decimal.Zero
	}

	return ResultadoDivisao{
		TotalPago:      totalPago,
		Restante:       restante,
		TotalmentePago: total.Sub(totalPago).Abs().LessThan(centavo),
		Excedido:       totalPago.Sub(total).GreaterThanOrEqual(centavo),
	}
}

// AjustarParcela sets parcela idx to valor during interactive editing,
// clamping it to the allowance left by the OTHER parcelas so the running sum
// never exceeds the order total. The clamp applies only to the parcela the
// caller designates — it is the "fill remaining" UI affordance, not commit
// validation (commits that overshoot are rejected, see PedidoService).
func AjustarParcela(parcelas []Parcela, idx int, valor, total decimal.Decimal) []Parcela {
	if idx < 0 || idx >= len(parcelas) {
		return parcelas
	}
	if valor.IsNegative() {
		valor = decimal.Zero
	}

	outros := decimal.Zero
	for i, p := range parcelas {
		if i != idx {
			outros = outros.Add(p.Valor)
		}
	}
	teto := total.Sub(outros)
	if teto.IsNegative() {
		teto = decimal.Zero
	}
	if valor.GreaterThan(teto) {
		valor = teto
	}

	parcelas[idx].Valor = valor
	return parcelas
}

// PreencherRestante fills parcela idx with whatever is still unpaid.
func PreencherRestante(parcelas []Parcela, idx int, total decimal.Decimal) []Parcela {
	if idx < 0 || idx >= len(parcelas) {
		return parcelas
	}
	parcelas[idx].Valor = decimal.Zero
	res := ValidarDivisao(parcelas, total)
	parcelas[idx].Valor = res.Restante
	return parcelas
}

// TemParcelaCondicional reports whether any parcela uses the conditional
// (consignment) method.
func TemParcelaCondicional(parcelas []Parcela) bool {
	for _, p := range parcelas {
		if p.Metodo == model.MetodoCondicional {
			return true
		}
	}
	return false
}

// MetodoDoPedido derives the method recorded on the pedido: the single
// parcela's own method, or the "dividido" marker for split payments.
func MetodoDoPedido(parcelas []Parcela) string {
	if len(parcelas) == 1 {
		return parcelas[0].Metodo
	}
	return model.MetodoDividido
}

// ProximoStatus derives a pedido's status from its paid total, the order
// total, the operator's explicit "paid" intent and the presence of a
// conditional parcela. Evaluation order matters:
//
//  1. intent + totals match (within epsilon)  → pagamento_confirmado
//  2. intent + totals diverge                 → ErrPagamentoDivergente (no transition)
//  3. 0 < pago < total                        → pagamento_parcial
//  4. conditional parcela present             → condicional
//  5. otherwise                               → pendente
func ProximoStatus(totalPago, total decimal.Decimal, pagoDeclarado, temCondicional bool) (string, error) {
	confere := total.Sub(totalPago).Abs().LessThan(centavo)

	switch {
	case pagoDeclarado && confere:
		return model.PedidoPagamentoConfirmado, nil
	case pagoDeclarado:
		return "", ErrPagamentoDivergente
	case totalPago.IsPositive() && totalPago.LessThan(total):
		return model.PedidoPagamentoParcial, nil
	case temCondicional:
		return model.PedidoCondicional, nil
	default:
		return model.PedidoPendente, nil
	}
}

// podeReceberPagamento guards the state machine: confirmed and cancelled
// pedidos are absorbing and reject any further payment commit.
func podeReceberPagamento(status string) bool {
	switch status {
	case model.PedidoPagamentoConfirmado, model.PedidoCancelado:
		return false
	}
	return true
}

// avancaStatus reports whether moving from atual to novo is a forward
// transition. A pedido never leaves pagamento_confirmado or cancelado, and a
// re-evaluation never demotes pagamento_parcial back to pendente/condicional.
func avancaStatus(atual, novo string) bool {
	rank := map[string]int{
		model.PedidoPendente:            0,
		model.PedidoCondicional:         0,
		model.PedidoPagamentoParcial:    1,
		model.PedidoPagamentoConfirmado: 2,
		model.PedidoCancelado:           2,
	}
	return rank[novo] > rank[atual]
}
