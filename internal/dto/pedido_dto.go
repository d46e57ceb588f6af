package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type ItemPedidoRequest struct {
	ProdutoID  string `json:"produto_id" validate:"required,uuid"`
	Quantidade int    `json:"quantidade" validate:"required,min=1"`
}

type ParcelaRequest struct {
	Metodo string          `json:"metodo" validate:"required,oneof=dinheiro cartao_credito cartao_debito pix transferencia condicional"`
	Valor  decimal.Decimal `json:"valor"  validate:"min=0"`
}

type CriarPedidoRequest struct {
	ClienteID  string              `json:"cliente_id"  validate:"required,uuid"`
	VendedorID string              `json:"vendedor_id" validate:"required,uuid"`
	Itens      []ItemPedidoRequest `json:"itens"       validate:"required,min=1,dive"`
	Desconto   decimal.Decimal     `json:"desconto"    validate:"min=0"`
	Parcelas   []ParcelaRequest    `json:"parcelas"    validate:"required,min=1,dive"`
	// Pago is the operator's explicit "marked as paid" intent — it is never
	// inferred from the parcelas themselves.
	Pago bool `json:"pago"`
}

type RegistrarPagamentoRequest struct {
	Parcelas []ParcelaRequest `json:"parcelas" validate:"required,min=1,dive"`
	Pago     bool             `json:"pago"`
}

type CancelarPedidoRequest struct {
	Motivo string `json:"motivo" validate:"required,min=3"`
}

type PedidoFilter struct {
	Data   string // YYYY-MM-DD, empty = all
	Status string
	Page   int
	Limit  int
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ItemPedidoResponse struct {
	Produto       string          `json:"produto"`
	ProdutoID     string          `json:"produto_id"`
	Quantidade    int             `json:"quantidade"`
	PrecoUnitario decimal.Decimal `json:"preco_unitario"`
	Subtotal      decimal.Decimal `json:"subtotal"`
}

type PagamentoResponse struct {
	ID     string          `json:"id"`
	Metodo string          `json:"metodo"`
	Valor  decimal.Decimal `json:"valor"`
	Status string          `json:"status"`
}

type PedidoResponse struct {
	ID              string               `json:"id"`
	Numero          int                  `json:"numero"`
	ClienteID       string               `json:"cliente_id"`
	VendedorID      string               `json:"vendedor_id"`
	Itens           []ItemPedidoResponse `json:"itens"`
	Subtotal        decimal.Decimal      `json:"subtotal"`
	Desconto        decimal.Decimal      `json:"desconto"`
	Total           decimal.Decimal      `json:"total"`
	MetodoPagamento string               `json:"metodo_pagamento"`
	Status          string               `json:"status"`
	Pagamentos      []PagamentoResponse  `json:"pagamentos"`
	TotalPago       decimal.Decimal      `json:"total_pago"`
	Restante        decimal.Decimal      `json:"restante"`
	CreatedAt       string               `json:"created_at"`
}

type PedidoListResponse struct {
	Data  []PedidoResponse `json:"data"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}
