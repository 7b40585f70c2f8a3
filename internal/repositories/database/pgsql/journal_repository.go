package pgsql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/realty_erp_accounting/internal/apperrors"
	"github.com/SscSPs/realty_erp_accounting/internal/core/domain"
	portsrepo "github.com/SscSPs/realty_erp_accounting/internal/core/ports/repositories"
	"github.com/SscSPs/realty_erp_accounting/internal/models"
	"github.com/SscSPs/realty_erp_accounting/internal/utils/mapping"
	"github.com/SscSPs/realty_erp_accounting/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const journalEntryColumns = `entry_id, entry_number, entry_date, narration, total_debit, total_credit, status,
	posted_at, posted_by, approved_at, approved_by, voided_at, voided_by, void_reason,
	created_at, created_by, last_updated_at, last_updated_by`

const journalLineColumns = `line_id, entry_id, account_id, sequence, debit, credit, cost_center, memo`

type PgxJournalRepository struct {
	BaseRepository
}

// newPgxJournalRepository creates a new repository for journal data.
func newPgxJournalRepository(pool *pgxpool.Pool) portsrepo.JournalRepositoryFacade {
	return &PgxJournalRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxJournalRepository implements portsrepo.JournalRepositoryFacade
var _ portsrepo.JournalRepositoryFacade = (*PgxJournalRepository)(nil)

func scanJournalEntry(row pgx.Row) (models.JournalEntry, error) {
	var m models.JournalEntry
	err := row.Scan(
		&m.EntryID,
		&m.EntryNumber,
		&m.EntryDate,
		&m.Narration,
		&m.TotalDebit,
		&m.TotalCredit,
		&m.Status,
		&m.PostedAt,
		&m.PostedBy,
		&m.ApprovedAt,
		&m.ApprovedBy,
		&m.VoidedAt,
		&m.VoidedBy,
		&m.VoidReason,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// SaveJournalEntry inserts the header and all lines atomically.
func (r *PgxJournalRepository) SaveJournalEntry(ctx context.Context, entry domain.JournalEntry) error {
	return r.withinTransaction(ctx, func(ctx context.Context) error {
		if err := r.insertHeader(ctx, entry); err != nil {
			return err
		}
		return r.insertLines(ctx, entry.EntryID, entry.Lines)
	})
}

func (r *PgxJournalRepository) insertHeader(ctx context.Context, entry domain.JournalEntry) error {
	m := mapping.ToModelJournalEntry(entry)
	query := `INSERT INTO journal_entries (` + journalEntryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18);`
	_, err := r.db(ctx).Exec(ctx, query,
		m.EntryID,
		m.EntryNumber,
		m.EntryDate,
		m.Narration,
		m.TotalDebit,
		m.TotalCredit,
		m.Status,
		m.PostedAt,
		m.PostedBy,
		m.ApprovedAt,
		m.ApprovedBy,
		m.VoidedAt,
		m.VoidedBy,
		m.VoidReason,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	return mapError(err, "failed to insert journal entry %s", m.EntryNumber)
}

func (r *PgxJournalRepository) insertLines(ctx context.Context, entryID string, lines []domain.JournalEntryLine) error {
	if len(lines) == 0 {
		return nil
	}
	query := `INSERT INTO journal_entry_lines (` + journalLineColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);`

	batch := &pgx.Batch{}
	for _, line := range lines {
		m := mapping.ToModelJournalEntryLine(line)
		m.EntryID = entryID
		batch.Queue(query, m.LineID, m.EntryID, m.AccountID, m.Sequence, m.Debit, m.Credit, m.CostCenter, m.Memo)
	}

	br := r.db(ctx).SendBatch(ctx, batch)
	defer br.Close()
	for i := range lines {
		if _, err := br.Exec(); err != nil {
			return mapError(err, "failed to insert line %d of journal entry %s", i+1, entryID)
		}
	}
	return nil
}

// FindJournalEntryByID retrieves an entry and its lines.
func (r *PgxJournalRepository) FindJournalEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	return r.findJournalEntry(ctx, entryID, false)
}

// FindJournalEntryByIDForUpdate retrieves an entry and locks its header row.
func (r *PgxJournalRepository) FindJournalEntryByIDForUpdate(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	if _, ok := ctx.Value(txCtxKey{}).(pgx.Tx); !ok {
		return nil, apperrors.NewStorageError("row locks require a transaction", nil)
	}
	return r.findJournalEntry(ctx, entryID, true)
}

func (r *PgxJournalRepository) findJournalEntry(ctx context.Context, entryID string, forUpdate bool) (*domain.JournalEntry, error) {
	query := `SELECT ` + journalEntryColumns + ` FROM journal_entries WHERE entry_id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	m, err := scanJournalEntry(r.db(ctx).QueryRow(ctx, query, entryID))
	if err != nil {
		return nil, mapError(err, "failed to find journal entry %s", entryID)
	}

	lines, err := r.findLines(ctx, entryID)
	if err != nil {
		return nil, err
	}
	entry := mapping.ToDomainJournalEntry(m, lines)
	return &entry, nil
}

func (r *PgxJournalRepository) findLines(ctx context.Context, entryID string) ([]models.JournalEntryLine, error) {
	query := `SELECT ` + journalLineColumns + ` FROM journal_entry_lines WHERE entry_id = $1 ORDER BY sequence;`
	rows, err := r.db(ctx).Query(ctx, query, entryID)
	if err != nil {
		return nil, mapError(err, "failed to query lines of journal entry %s", entryID)
	}
	defer rows.Close()

	lines := []models.JournalEntryLine{}
	for rows.Next() {
		var m models.JournalEntryLine
		if err := rows.Scan(&m.LineID, &m.EntryID, &m.AccountID, &m.Sequence, &m.Debit, &m.Credit, &m.CostCenter, &m.Memo); err != nil {
			return nil, mapError(err, "failed to scan journal entry line")
		}
		lines = append(lines, m)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "failed to read lines of journal entry %s", entryID)
	}
	return lines, nil
}

// EntryNumberExists reports whether entryNumber is taken.
func (r *PgxJournalRepository) EntryNumberExists(ctx context.Context, entryNumber string) (bool, error) {
	var exists bool
	err := r.db(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM journal_entries WHERE entry_number = $1);`, entryNumber).Scan(&exists)
	if err != nil {
		return false, mapError(err, "failed to check entry number %s", entryNumber)
	}
	return exists, nil
}

// ListJournalEntries pages entry headers newest first. The cursor is the
// (entry_date, entry_number) of the last row returned.
func (r *PgxJournalRepository) ListJournalEntries(ctx context.Context, params domain.ListJournalEntriesParams) ([]domain.JournalEntry, *string, error) {
	var conditions []string
	var args []any
	addArg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if params.Status != "" {
		conditions = append(conditions, "status = "+addArg(string(params.Status)))
	}
	if params.From != nil {
		conditions = append(conditions, "entry_date >= "+addArg(*params.From))
	}
	if params.To != nil {
		conditions = append(conditions, "entry_date <= "+addArg(*params.To))
	}
	if params.NextToken != nil && *params.NextToken != "" {
		cursorDate, cursorNumber, err := pagination.DecodeToken(*params.NextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		conditions = append(conditions,
			fmt.Sprintf("(entry_date, entry_number) < (%s, %s)", addArg(cursorDate), addArg(cursorNumber)))
	}

	query := `SELECT ` + journalEntryColumns + ` FROM journal_entries`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	// Fetch one extra row to learn whether another page exists.
	query += " ORDER BY entry_date DESC, entry_number DESC LIMIT " + addArg(params.Limit+1)

	rows, err := r.db(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, nil, mapError(err, "failed to list journal entries")
	}
	defer rows.Close()

	entries := []domain.JournalEntry{}
	for rows.Next() {
		m, err := scanJournalEntry(rows)
		if err != nil {
			return nil, nil, mapError(err, "failed to scan journal entry")
		}
		entries = append(entries, mapping.ToDomainJournalEntry(m, nil))
	}
	if err := rows.Err(); err != nil {
		return nil, nil, mapError(err, "failed to read journal entries")
	}

	var nextToken *string
	if len(entries) > params.Limit {
		entries = entries[:params.Limit]
		last := entries[len(entries)-1]
		token := pagination.EncodeToken(last.EntryDate, last.EntryNumber)
		nextToken = &token
	}
	return entries, nextToken, nil
}

// ListBalanceAffectingEntries retrieves POSTED and APPROVED headers dated within [from, to].
func (r *PgxJournalRepository) ListBalanceAffectingEntries(ctx context.Context, from, to time.Time) ([]domain.JournalEntry, error) {
	query := `SELECT ` + journalEntryColumns + ` FROM journal_entries
		WHERE status IN ($1, $2) AND entry_date BETWEEN $3 AND $4
		ORDER BY entry_date, entry_number;`
	rows, err := r.db(ctx).Query(ctx, query, string(domain.Posted), string(domain.Approved), from, to)
	if err != nil {
		return nil, mapError(err, "failed to list balance-affecting entries")
	}
	defer rows.Close()

	entries := []domain.JournalEntry{}
	for rows.Next() {
		m, err := scanJournalEntry(rows)
		if err != nil {
			return nil, mapError(err, "failed to scan journal entry")
		}
		entries = append(entries, mapping.ToDomainJournalEntry(m, nil))
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "failed to read journal entries")
	}
	return entries, nil
}

// ListBalanceAffectingLines retrieves an account's lines from POSTED and APPROVED entries.
func (r *PgxJournalRepository) ListBalanceAffectingLines(ctx context.Context, accountID string, from, to time.Time) ([]domain.LedgerLine, error) {
	query := `
		SELECT e.entry_id, e.entry_number, e.entry_date, e.narration, l.sequence, l.debit, l.credit
		FROM journal_entry_lines l
		JOIN journal_entries e ON e.entry_id = l.entry_id
		WHERE l.account_id = $1
		  AND e.status IN ($2, $3)
		  AND e.entry_date BETWEEN $4 AND $5
		ORDER BY e.entry_date, l.sequence, e.entry_number;`
	rows, err := r.db(ctx).Query(ctx, query, accountID, string(domain.Posted), string(domain.Approved), from, to)
	if err != nil {
		return nil, mapError(err, "failed to list ledger lines of account %s", accountID)
	}
	defer rows.Close()

	lines := []domain.LedgerLine{}
	for rows.Next() {
		var l domain.LedgerLine
		if err := rows.Scan(&l.EntryID, &l.EntryNumber, &l.EntryDate, &l.Narration, &l.Sequence, &l.Debit, &l.Credit); err != nil {
			return nil, mapError(err, "failed to scan ledger line")
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "failed to read ledger lines of account %s", accountID)
	}
	return lines, nil
}

// ReplaceDraftJournalEntry rewrites a DRAFT entry's header and lines.
func (r *PgxJournalRepository) ReplaceDraftJournalEntry(ctx context.Context, entry domain.JournalEntry) error {
	return r.withinTransaction(ctx, func(ctx context.Context) error {
		m := mapping.ToModelJournalEntry(entry)
		query := `
			UPDATE journal_entries
			SET entry_number = $1, entry_date = $2, narration = $3, total_debit = $4, total_credit = $5,
				last_updated_at = $6, last_updated_by = $7
			WHERE entry_id = $8 AND status = $9;`
		tag, err := r.db(ctx).Exec(ctx, query,
			m.EntryNumber, m.EntryDate, m.Narration, m.TotalDebit, m.TotalCredit,
			m.LastUpdatedAt, m.LastUpdatedBy, m.EntryID, string(domain.Draft))
		if err != nil {
			return mapError(err, "failed to update draft journal entry %s", m.EntryID)
		}
		if tag.RowsAffected() == 0 {
			return r.statusMismatchError(ctx, m.EntryID, domain.Draft)
		}

		if _, err := r.db(ctx).Exec(ctx, `DELETE FROM journal_entry_lines WHERE entry_id = $1;`, m.EntryID); err != nil {
			return mapError(err, "failed to delete lines of journal entry %s", m.EntryID)
		}
		return r.insertLines(ctx, m.EntryID, entry.Lines)
	})
}

// DeleteDraftJournalEntry removes a DRAFT entry; its lines cascade.
func (r *PgxJournalRepository) DeleteDraftJournalEntry(ctx context.Context, entryID string) error {
	tag, err := r.db(ctx).Exec(ctx,
		`DELETE FROM journal_entries WHERE entry_id = $1 AND status = $2;`, entryID, string(domain.Draft))
	if err != nil {
		return mapError(err, "failed to delete draft journal entry %s", entryID)
	}
	if tag.RowsAffected() == 0 {
		return r.statusMismatchError(ctx, entryID, domain.Draft)
	}
	return nil
}

// statusMismatchError distinguishes a missing entry from one whose status is not expected.
func (r *PgxJournalRepository) statusMismatchError(ctx context.Context, entryID string, expected domain.JournalStatus) error {
	var status string
	err := r.db(ctx).QueryRow(ctx, `SELECT status FROM journal_entries WHERE entry_id = $1;`, entryID).Scan(&status)
	if err != nil {
		return mapError(err, "failed to find journal entry %s", entryID)
	}
	return fmt.Errorf("%w: entry %s is %s, expected %s", apperrors.ErrInvalidStateTransition, entryID, status, expected)
}

// UpdateJournalEntryStatus writes the status columns only if the stored status is still from.
func (r *PgxJournalRepository) UpdateJournalEntryStatus(ctx context.Context, entry domain.JournalEntry, from domain.JournalStatus) error {
	m := mapping.ToModelJournalEntry(entry)
	query := `
		UPDATE journal_entries
		SET status = $1, posted_at = $2, posted_by = $3, approved_at = $4, approved_by = $5,
			voided_at = $6, voided_by = $7, void_reason = $8, last_updated_at = $9, last_updated_by = $10
		WHERE entry_id = $11 AND status = $12;`
	tag, err := r.db(ctx).Exec(ctx, query,
		m.Status, m.PostedAt, m.PostedBy, m.ApprovedAt, m.ApprovedBy,
		m.VoidedAt, m.VoidedBy, m.VoidReason, m.LastUpdatedAt, m.LastUpdatedBy,
		m.EntryID, string(from))
	if err != nil {
		return mapError(err, "failed to update status of journal entry %s", m.EntryID)
	}
	if tag.RowsAffected() == 0 {
		return r.statusMismatchError(ctx, m.EntryID, from)
	}
	return nil
}
