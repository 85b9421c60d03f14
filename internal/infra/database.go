package infra

import (
	"fmt"

	"gestorpdv/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate to
// create / update all tables, then applies the idempotent SQL patches that GORM
// cannot express (partial unique index, ticket sequence).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
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

	if err := RunMigrations(db); err != nil {
		return nil, err
	}

	return db, nil
}

// RunMigrations applies AutoMigrate plus the schema patches. Also used by the
// integration tests against a throwaway container.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Usuario{},
		&model.Produto{},
		&model.MetodoPagamento{},
		&model.SessaoCaixa{},
		&model.Venda{},
		&model.VendaItem{},
		&model.ContaReceber{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot express.
// Each statement is guarded so re-running on a patched DB is a no-op.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		// Storage-level backstop for the one-open-session-per-operator rule:
		// even if every application lock were bypassed, the second open fails
		// on this partial unique index.
		{"partial unique index on open sessions", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'uni_sessao_aberta_por_operador') THEN
    CREATE UNIQUE INDEX uni_sessao_aberta_por_operador
        ON sessoes_caixa (operador_id)
        WHERE status = 'aberta';
  END IF;
END $$`},
		// Gapless-enough ticket numbering shared by all instances.
		{"venda ticket sequence", `
CREATE SEQUENCE IF NOT EXISTS venda_ticket_seq START 1`},
		// The receivables listing filters by due date and status.
		{"contas_receber due-date index", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_contas_receber_vencimento') THEN
    CREATE INDEX idx_contas_receber_vencimento
        ON contas_receber (data_vencimento)
        WHERE status = 'pendente';
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
