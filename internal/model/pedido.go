package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Pedido status values form a closed state machine (see service.ProximoStatus).
// "pagamento_confirmado" and "cancelado" are absorbing.
const (
	PedidoPendente            = "pendente"
	PedidoPagamentoParcial    = "pagamento_parcial"
	PedidoPagamentoConfirmado = "pagamento_confirmado"
	PedidoCondicional         = "condicional"
	PedidoCancelado           = "cancelado"
)

// Payment capture status. Transitions one way: pendente → capturado.
const (
	PagamentoPendente  = "pendente"
	PagamentoCapturado = "capturado"
)

// Payment method codes. MetodoDividido is the distinguished marker recorded
// on a pedido paid through more than one method — the individual Pagamento
// rows keep their own methods.
const (
	MetodoDinheiro      = "dinheiro"
	MetodoCartaoCredito = "cartao_credito"
	MetodoCartaoDebito  = "cartao_debito"
	MetodoPix           = "pix"
	MetodoTransferencia = "transferencia"
	MetodoCondicional   = "condicional"
	MetodoDividido      = "dividido"
)

// Pedido is created once at sale finalization. Its Status is mutated only
// through the payment state machine; Total and Desconto are frozen at
// creation (Total is already net of Desconto).
type Pedido struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Numero     int       `gorm:"uniqueIndex;not null"`
	ClienteID  uuid.UUID `gorm:"type:uuid;not null;index"`
	VendedorID uuid.UUID `gorm:"type:uuid;not null"`
	// SessaoCaixaID is the session that received the sale's cash movements
	SessaoCaixaID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Subtotal        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Desconto        decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Total           decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	MetodoPagamento string          `gorm:"type:varchar(20);not null"`
	Status          string          `gorm:"type:varchar(30);not null;default:'pendente'"`
	MotivoCancel    *string
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Itens      []PedidoItem `gorm:"foreignKey:PedidoID"`
	Pagamentos []Pagamento  `gorm:"foreignKey:PedidoID"`
}

// PedidoItem is a sale line: product reference, quantity and the unit price
// captured from the catalog at sale time.
type PedidoItem struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PedidoID      uuid.UUID       `gorm:"type:uuid;index;not null"`
	ProdutoID     uuid.UUID       `gorm:"type:uuid;not null"`
	Quantidade    int             `gorm:"not null"`
	PrecoUnitario decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Produto *Produto `gorm:"foreignKey:ProdutoID"`
}

// Pagamento records one committed payment split. Rows are never deleted;
// Valor is strictly positive and Status only moves pendente → capturado.
type Pagamento struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PedidoID  uuid.UUID       `gorm:"type:uuid;index;not null"`
	Metodo    string          `gorm:"type:varchar(20);not null"`
	Valor     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Status    string          `gorm:"type:varchar(20);not null;default:'pendente'"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Pedido) TableName() string     { return "pedidos" }
func (PedidoItem) TableName() string { return "pedido_itens" }
func (Pagamento) TableName() string  { return "pagamentos" }
