package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/erp-documentos/internal/application/documents"
)

var _ documents.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunDocuments inicia una transacción READ COMMITTED, ejecuta fn con repos atados a la tx
// y hace Commit o Rollback. Los bloqueos de fila (FOR UPDATE, contador de secuencia) duran
// hasta el commit.
func (r *TxRunner) RunDocuments(ctx context.Context, fn func(repos documents.Repos) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	repos := documents.Repos{
		Documents:    NewDocumentRepository(tx),
		Sequences:    NewSequenceRepository(tx),
		Audit:        NewAuditRepository(tx),
		Parties:      NewPartyRepository(tx),
		PaymentTerms: NewPaymentTermRepository(tx),
		Series:       NewSeriesRepository(tx),
	}
	if err := fn(repos); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return mapWriteError("commit transaction", err)
	}
	return nil
}
