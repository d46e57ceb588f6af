package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Session status values. A session is only ever "aberta" or "fechada";
// there is no re-open transition.
const (
	SessaoAberta  = "aberta"
	SessaoFechada = "fechada"
)

// Movement direction. Valor is ALWAYS positive — the direction of the cash
// flow is encoded exclusively by Tipo, never by the sign of the amount.
const (
	MovimentacaoEntrada = "entrada"
	MovimentacaoSaida   = "saida"
)

// Classification of the declared-vs-computed difference at close.
const (
	DiferencaSobra = "sobra"
	DiferencaFalta = "falta"
	DiferencaNula  = "sem_diferenca"
)

// SessaoCaixa represents the lifecycle of a cash register session owned by a
// single operator. At most one open session may exist per operator at any
// time (enforced by a partial unique index, see infra.applySchemaPatches).
//
// SaldoApurado, SaldoDeclarado and Diferenca are set exactly once, at close,
// and never recomputed afterwards — a closed session is an immutable audit
// record.
type SessaoCaixa struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OperadorID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	SaldoInicial decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// SaldoApurado = SaldoInicial + SUM(entradas) - SUM(saidas), frozen at close
	SaldoApurado   *decimal.Decimal `gorm:"type:decimal(12,2)"`
	SaldoDeclarado *decimal.Decimal `gorm:"type:decimal(12,2)"`
	// Diferenca = SaldoDeclarado - SaldoApurado (positive = sobra, negative = falta)
	Diferenca            *decimal.Decimal `gorm:"type:decimal(12,2)"`
	ClassificacaoDif     *string          `gorm:"type:varchar(20)"`
	Status               string           `gorm:"type:varchar(20);not null;default:'aberta'"`
	ObservacaoAbertura   *string
	ObservacaoFechamento *string
	OpenedAt             time.Time
	ClosedAt             *time.Time

	Movimentacoes []MovimentacaoCaixa `gorm:"foreignKey:SessaoCaixaID"`
}

// MovimentacaoCaixa is an immutable entry in the append-only cash ledger of a
// session. Movements are created against an OPEN session and are never
// updated or deleted — reversals create inverse entries.
type MovimentacaoCaixa struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessaoCaixaID   uuid.UUID       `gorm:"type:uuid;index;not null"`
	Tipo            string          `gorm:"type:varchar(10);not null"`
	Valor           decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	MetodoPagamento string          `gorm:"type:varchar(20);not null"`
	Descricao       string          `gorm:"not null"`
	// Origem tags where the cash came from / went to: "loja", "ecommerce", …
	Origem string `gorm:"type:varchar(20);not null;default:'loja'"`
	// PedidoID links to the originating Pedido for sale/cancellation entries
	PedidoID  *uuid.UUID `gorm:"type:uuid"`
	CreatedAt time.Time
}

func (SessaoCaixa) TableName() string       { return "sessoes_caixa" }
func (MovimentacaoCaixa) TableName() string { return "movimentacoes_caixa" }
