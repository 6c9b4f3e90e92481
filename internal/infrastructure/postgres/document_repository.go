package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/erp-documentos/internal/domain/entity"
	"github.com/jhoicas/erp-documentos/internal/domain/repository"
)

var _ repository.DocumentRepository = (*DocumentRepo)(nil)

// DocumentRepo implementación de DocumentRepository (usable con pool o tx).
type DocumentRepo struct {
	q Querier
}

// NewDocumentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDocumentRepository(q Querier) *DocumentRepo {
	return &DocumentRepo{q: q}
}

const documentColumns = `
	id, company_id, type, status, series, year, sequence, number, installment, date, due_date,
	party_id, payment_term_id, origin_document_id, surcharge_applies, withholding_rate,
	subtotal, tax_total, surcharge_total, grand_total, withholding_total, payable_total,
	created_at, updated_at`

// Create inserta cabecera, orígenes agrupados y líneas.
func (r *DocumentRepo) Create(ctx context.Context, doc *entity.Document) error {
	query := `
		INSERT INTO documents (` + documentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
		        $17, $18, $19, $20, $21, $22, $23, $24)`
	_, err := r.q.Exec(ctx, query,
		doc.ID, doc.CompanyID, doc.Type, doc.Status, doc.Series, doc.Year, doc.Sequence,
		nullIfEmpty(doc.Number), doc.Installment, doc.Date, doc.DueDate,
		doc.PartyID, nullIfEmpty(doc.PaymentTermID), nullIfEmpty(singleOrigin(doc)),
		doc.SurchargeApplies, doc.WithholdingRate,
		doc.Subtotal, doc.TaxTotal, doc.SurchargeTotal, doc.GrandTotal, doc.WithholdingTotal, doc.PayableTotal,
		doc.CreatedAt, doc.UpdatedAt,
	)
	if err != nil {
		return mapWriteError("insert document", err)
	}
	if doc.HasMultipleOrigins() {
		b := &pgx.Batch{}
		for i, o := range doc.OriginIDs {
			b.Queue(`INSERT INTO document_origins (document_id, origin_id, position) VALUES ($1, $2, $3)`, doc.ID, o, i)
		}
		if err := r.q.SendBatch(ctx, b).Close(); err != nil {
			return fmt.Errorf("insert document origins: %w", err)
		}
	}
	return r.insertLines(ctx, doc)
}

// Update reescribe la cabecera y reemplaza las líneas.
func (r *DocumentRepo) Update(ctx context.Context, doc *entity.Document) error {
	query := `
		UPDATE documents
		SET status = $2, series = $3, year = $4, sequence = $5, number = $6, installment = $7,
		    date = $8, due_date = $9, party_id = $10, payment_term_id = $11,
		    surcharge_applies = $12, withholding_rate = $13,
		    subtotal = $14, tax_total = $15, surcharge_total = $16, grand_total = $17,
		    withholding_total = $18, payable_total = $19, updated_at = $20
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		doc.ID, doc.Status, doc.Series, doc.Year, doc.Sequence, nullIfEmpty(doc.Number), doc.Installment,
		doc.Date, doc.DueDate, doc.PartyID, nullIfEmpty(doc.PaymentTermID),
		doc.SurchargeApplies, doc.WithholdingRate,
		doc.Subtotal, doc.TaxTotal, doc.SurchargeTotal, doc.GrandTotal,
		doc.WithholdingTotal, doc.PayableTotal, doc.UpdatedAt,
	)
	if err != nil {
		return mapWriteError("update document", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update document %s: no existe", doc.ID)
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM document_lines WHERE document_id = $1`, doc.ID); err != nil {
		return fmt.Errorf("delete document lines: %w", err)
	}
	return r.insertLines(ctx, doc)
}

func (r *DocumentRepo) insertLines(ctx context.Context, doc *entity.Document) error {
	if len(doc.Lines) == 0 {
		return nil
	}
	b := &pgx.Batch{}
	for _, l := range doc.Lines {
		b.Queue(`
			INSERT INTO document_lines (id, document_id, position, product_id, description, quantity, unit_price,
			                            discount_pct, tax_rate, surcharge_rate, subtotal, tax_amount, surcharge_amount, total)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
			l.ID, doc.ID, l.Position, l.ProductID, l.Description, l.Quantity, l.UnitPrice,
			l.DiscountPct, l.TaxRate, l.SurchargeRate, l.Subtotal, l.TaxAmount, l.SurchargeAmount, l.Total,
		)
	}
	if err := r.q.SendBatch(ctx, b).Close(); err != nil {
		return fmt.Errorf("insert document lines: %w", err)
	}
	return nil
}

// Delete borra el documento; líneas, orígenes y auditoría caen en cascada.
func (r *DocumentRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

// GetByID obtiene el documento completo; nil, nil si no existe.
func (r *DocumentRepo) GetByID(ctx context.Context, id string) (*entity.Document, error) {
	return r.get(ctx, id, "")
}

// GetForUpdate como GetByID con bloqueo de fila hasta el fin de la transacción.
func (r *DocumentRepo) GetForUpdate(ctx context.Context, id string) (*entity.Document, error) {
	return r.get(ctx, id, " FOR UPDATE")
}

func (r *DocumentRepo) get(ctx context.Context, id, lock string) (*entity.Document, error) {
	row := r.q.QueryRow(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = $1`+lock, id)
	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapWriteError("get document", err)
	}
	if err := r.loadOrigins(ctx, doc); err != nil {
		return nil, err
	}
	if err := r.loadLines(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (r *DocumentRepo) loadOrigins(ctx context.Context, doc *entity.Document) error {
	rows, err := r.q.Query(ctx, `SELECT origin_id FROM document_origins WHERE document_id = $1 ORDER BY position`, doc.ID)
	if err != nil {
		return fmt.Errorf("list document origins: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return fmt.Errorf("scan document origins: %w", err)
	}
	if len(ids) > 0 {
		doc.OriginIDs = ids
	}
	return nil
}

func (r *DocumentRepo) loadLines(ctx context.Context, doc *entity.Document) error {
	rows, err := r.q.Query(ctx, `
		SELECT id, document_id, position, product_id, description, quantity, unit_price, discount_pct,
		       tax_rate, surcharge_rate, subtotal, tax_amount, surcharge_amount, total
		FROM document_lines WHERE document_id = $1 ORDER BY position`, doc.ID)
	if err != nil {
		return fmt.Errorf("list document lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l entity.DocumentLine
		if err := rows.Scan(&l.ID, &l.DocumentID, &l.Position, &l.ProductID, &l.Description,
			&l.Quantity, &l.UnitPrice, &l.DiscountPct, &l.TaxRate, &l.SurchargeRate,
			&l.Subtotal, &l.TaxAmount, &l.SurchargeAmount, &l.Total); err != nil {
			return fmt.Errorf("scan document line: %w", err)
		}
		doc.Lines = append(doc.Lines, l)
	}
	return rows.Err()
}

// GetRefs devuelve las referencias en el orden pedido; los IDs inexistentes quedan con solo el ID.
func (r *DocumentRepo) GetRefs(ctx context.Context, ids []string) ([]entity.DocumentRef, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.q.Query(ctx, `SELECT id, type, status, COALESCE(number, '') FROM documents WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("get document refs: %w", err)
	}
	found, err := collectRefs(rows)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]entity.DocumentRef, len(found))
	for _, ref := range found {
		byID[ref.ID] = ref
	}
	out := make([]entity.DocumentRef, 0, len(ids))
	for _, id := range ids {
		ref, ok := byID[id]
		if !ok {
			ref = entity.DocumentRef{ID: id}
		}
		out = append(out, ref)
	}
	return out, nil
}

// ListDerived consulta los derivados por origen simple y por origen agrupado.
func (r *DocumentRepo) ListDerived(ctx context.Context, id string) ([]entity.DocumentRef, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, type, status, number FROM (
			SELECT d.id, d.type, d.status, COALESCE(d.number, '') AS number, d.created_at, d.installment
			FROM documents d WHERE d.origin_document_id = $1
			UNION
			SELECT d.id, d.type, d.status, COALESCE(d.number, '') AS number, d.created_at, d.installment
			FROM document_origins o JOIN documents d ON d.id = o.document_id
			WHERE o.origin_id = $1
		) derived
		ORDER BY created_at, installment, id`, id)
	if err != nil {
		return nil, fmt.Errorf("list derived documents: %w", err)
	}
	return collectRefs(rows)
}

// List listado paginado de la empresa, más recientes primero (sin líneas).
func (r *DocumentRepo) List(ctx context.Context, companyID string, f entity.DocumentFilter) ([]*entity.Document, error) {
	where := []string{"company_id = $1"}
	args := []any{companyID}
	if f.Type != "" {
		args = append(args, f.Type)
		where = append(where, "type = $"+strconv.Itoa(len(args)))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		where = append(where, "status = $"+strconv.Itoa(len(args)))
	}
	args = append(args, f.Limit, f.Offset)
	query := `SELECT ` + documentColumns + ` FROM documents WHERE ` + strings.Join(where, " AND ") +
		fmt.Sprintf(` ORDER BY date DESC, created_at DESC, id LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		list = append(list, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

func scanDocument(row pgx.Row) (*entity.Document, error) {
	var doc entity.Document
	var number, termID, originID *string
	err := row.Scan(
		&doc.ID, &doc.CompanyID, &doc.Type, &doc.Status, &doc.Series, &doc.Year, &doc.Sequence,
		&number, &doc.Installment, &doc.Date, &doc.DueDate,
		&doc.PartyID, &termID, &originID, &doc.SurchargeApplies, &doc.WithholdingRate,
		&doc.Subtotal, &doc.TaxTotal, &doc.SurchargeTotal, &doc.GrandTotal, &doc.WithholdingTotal, &doc.PayableTotal,
		&doc.CreatedAt, &doc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	doc.Number = derefStr(number)
	doc.PaymentTermID = derefStr(termID)
	doc.OriginID = derefStr(originID)
	return &doc, nil
}

func collectRefs(rows pgx.Rows) ([]entity.DocumentRef, error) {
	defer rows.Close()
	var out []entity.DocumentRef
	for rows.Next() {
		var ref entity.DocumentRef
		if err := rows.Scan(&ref.ID, &ref.Type, &ref.Status, &ref.Number); err != nil {
			return nil, fmt.Errorf("scan document ref: %w", err)
		}
		out = append(out, ref)
	}
	return out, rows.Err()
}

func singleOrigin(doc *entity.Document) string {
	if doc.HasMultipleOrigins() {
		return ""
	}
	return doc.OriginID
}
