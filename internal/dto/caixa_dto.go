package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type AbrirCaixaRequest struct {
	SaldoInicial decimal.Decimal `json:"saldo_inicial" validate:"min=0"`
	Observacao   *string         `json:"observacao"`
}

type FecharCaixaRequest struct {
	SessaoID       string          `json:"sessao_id"       validate:"required,uuid"`
	SaldoDeclarado decimal.Decimal `json:"saldo_declarado" validate:"min=0"`
	Observacao     *string         `json:"observacao"`
}

type MovimentacaoRequest struct {
	SessaoID        string          `json:"sessao_id"        validate:"required,uuid"`
	Tipo            string          `json:"tipo"             validate:"required,oneof=entrada saida"`
	Valor           decimal.Decimal `json:"valor"            validate:"required,gt=0"`
	MetodoPagamento string          `json:"metodo_pagamento" validate:"required,oneof=dinheiro cartao_credito cartao_debito pix transferencia condicional"`
	Descricao       string          `json:"descricao"        validate:"required,min=3"`
	Origem          string          `json:"origem"           validate:"required,oneof=loja ecommerce"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SessaoCaixaResponse struct {
	ID           string          `json:"id"`
	OperadorID   string          `json:"operador_id"`
	SaldoInicial decimal.Decimal `json:"saldo_inicial"`
	// SaldoApurado / SaldoDeclarado / Diferenca are only present once closed
	SaldoApurado         *decimal.Decimal `json:"saldo_apurado,omitempty"`
	SaldoDeclarado       *decimal.Decimal `json:"saldo_declarado,omitempty"`
	Diferenca            *decimal.Decimal `json:"diferenca,omitempty"`
	Classificacao        *string          `json:"classificacao,omitempty"`
	Status               string           `json:"status"`
	ObservacaoAbertura   *string          `json:"observacao_abertura,omitempty"`
	ObservacaoFechamento *string          `json:"observacao_fechamento,omitempty"`
	OpenedAt             string           `json:"opened_at"`
	ClosedAt             *string          `json:"closed_at,omitempty"`
}

type FechamentoResponse struct {
	Sessao        SessaoCaixaResponse `json:"sessao"`
	SaldoApurado  decimal.Decimal     `json:"saldo_apurado"`
	Diferenca     decimal.Decimal     `json:"diferenca"`
	Classificacao string              `json:"classificacao"` // sobra | falta | sem_diferenca
}

type MovimentacaoResponse struct {
	ID              string          `json:"id"`
	SessaoID        string          `json:"sessao_id"`
	Tipo            string          `json:"tipo"`
	Valor           decimal.Decimal `json:"valor"`
	MetodoPagamento string          `json:"metodo_pagamento"`
	Descricao       string          `json:"descricao"`
	Origem          string          `json:"origem"`
	PedidoID        *string         `json:"pedido_id,omitempty"`
	CreatedAt       string          `json:"created_at"`
}
