package dto

import "github.com/shopspring/decimal"

// ConsolidadoResponse is the period cash-flow view across sessions. Its
// SaldoLiquido is gross (entradas − saidas), deliberately not adjusted by any
// session's opening balance — that belongs to a single session's close.
type ConsolidadoResponse struct {
	De   string `json:"de"`
	Ate  string `json:"ate"`
	OperadorID *string `json:"operador_id,omitempty"`

	Totais      TotaisConsolidados  `json:"totais"`
	PorOperador []TotalPorOperador  `json:"por_operador"`
	PorMetodo   []TotalPorMetodo    `json:"por_metodo"`
}

type TotaisConsolidados struct {
	Sessoes         int64           `json:"sessoes"`
	SessoesAbertas  int64           `json:"sessoes_abertas"`
	SessoesFechadas int64           `json:"sessoes_fechadas"`
	TotalEntradas   decimal.Decimal `json:"total_entradas"`
	TotalSaidas     decimal.Decimal `json:"total_saidas"`
	SaldoLiquido    decimal.Decimal `json:"saldo_liquido"`
}

type TotalPorOperador struct {
	OperadorID   string          `json:"operador_id"`
	Sessoes      int64           `json:"sessoes"`
	Entradas     decimal.Decimal `json:"entradas"`
	Saidas       decimal.Decimal `json:"saidas"`
	SaldoLiquido decimal.Decimal `json:"saldo_liquido"`
}

type TotalPorMetodo struct {
	Metodo   string          `json:"metodo"`
	Entradas decimal.Decimal `json:"entradas"`
	// Percentual of total entradas in the period; 0 when there are none
	Percentual decimal.Decimal `json:"percentual"`
}
