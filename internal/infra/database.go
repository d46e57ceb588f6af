package infra

import (
	"fmt"

	"caixapos/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate
// to create / update all tables, then applies the idempotent SQL patches that
// GORM cannot express (partial unique indexes, sequences).
//
// TranslateError is on so unique-constraint violations surface as
// gorm.ErrDuplicatedKey — the service layer maps those to domain errors.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := db.AutoMigrate(
		&model.SessaoCaixa{},
		&model.MovimentacaoCaixa{},
		&model.Pedido{},
		&model.PedidoItem{},
		&model.Pagamento{},
		&model.Produto{},
		&model.Cliente{},
		&model.Vendedor{},
	); err != nil {
		return nil, fmt.Errorf("AutoMigrate: %w", err)
	}

	if err := applySchemaPatches(db); err != nil {
		return nil, fmt.Errorf("schema patches: %w", err)
	}

	return db, nil
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot produce.
// Each statement is guarded so re-running on an already-patched DB is a no-op.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		// At most one OPEN session per operator. The service pre-checks, but
		// this partial unique index is what holds under concurrent opens.
		{"partial unique index: one open session per operator", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'uq_sessoes_caixa_operador_aberta') THEN
    CREATE UNIQUE INDEX uq_sessoes_caixa_operador_aberta
        ON sessoes_caixa (operador_id)
        WHERE status = 'aberta';
  END IF;
END $$`},
		// Atomic pedido numbering under concurrent sales
		{"sequence for pedido numbers",
			`CREATE SEQUENCE IF NOT EXISTS pedidos_numero_seq START 1`},
		// Audit-order listing of a session's ledger
		{"index for ledger listing", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_movimentacoes_sessao_created') THEN
    CREATE INDEX idx_movimentacoes_sessao_created
        ON movimentacoes_caixa (sessao_caixa_id, created_at);
  END IF;
END $$`},
		// Ledger rows never carry zero or negative amounts
		{"check constraint: positive movement amounts", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'ck_movimentacoes_valor_positivo') THEN
    ALTER TABLE movimentacoes_caixa
      ADD CONSTRAINT ck_movimentacoes_valor_positivo CHECK (valor > 0);
  END IF;
END $$`},
	}

	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
