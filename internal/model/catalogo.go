package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// The catalog and directory entities below are external collaborators of the
// reconciliation core: this service only reads them (lookups by id to resolve
// prices and validate references). Their CRUD lives in another system.

// Produto is a read-only price catalog entry.
type Produto struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nome       string          `gorm:"not null"`
	PrecoVenda decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Ativo      bool            `gorm:"not null;default:true"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Cliente is a read-only customer directory entry.
type Cliente struct {
	ID    uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nome  string    `gorm:"not null"`
	Ativo bool      `gorm:"not null;default:true"`
}

// Vendedor is a read-only vendor directory entry.
type Vendedor struct {
	ID    uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nome  string    `gorm:"not null"`
	Ativo bool      `gorm:"not null;default:true"`
}

func (Produto) TableName() string  { return "produtos" }
func (Cliente) TableName() string  { return "clientes" }
func (Vendedor) TableName() string { return "vendedores" }
