// Package storage persists ledgers in SQLite. The schema is managed by
// embedded golang-migrate migrations.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"flux/internal/core"
	"flux/internal/log"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db     *sql.DB
	logger *log.Logger
	now    func() time.Time
}

// NewSQLiteRepository opens (creating if needed) the database at dbPath and
// migrates it to the latest schema.
func NewSQLiteRepository(dbPath string, logger *log.Logger) (*SQLiteRepository, error) {
	if logger == nil {
		logger = log.Discard()
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	if err := RunMigrations(dbPath, Up); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &SQLiteRepository{
		db:     db,
		logger: logger.WithComponent(log.ComponentStorage),
		now:    time.Now,
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) stamp(t time.Time) time.Time {
	if t.IsZero() {
		return r.now().UTC()
	}
	return t.UTC()
}

func formatTime(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }

func parseTime(s string) (time.Time, error) { return time.Parse(time.RFC3339Nano, s) }

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

type scanner interface {
	Scan(dest ...any) error
}

// execOne runs a statement that must affect exactly one row.
func execOne(ctx context.Context, db *sql.DB, entity, id, query string, args ...any) error {
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", entity, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update %s: %w", entity, err)
	}
	if n == 0 {
		return &core.NotFoundError{Entity: entity, ID: id}
	}
	return nil
}

// Transactions

const transactionColumns = `id, user_id, created_at, type, amount_cents, date, description, payer,
	category, status, recurrence, payment_method, payment_details, card_id,
	installment_current, installment_total, parent_id`

func scanTransaction(s scanner) (core.Transaction, error) {
	var (
		t         core.Transaction
		createdAt string
		date      string
		cardID    sql.NullString
		current   sql.NullInt64
		total     sql.NullInt64
		parentID  sql.NullString
	)
	err := s.Scan(&t.ID, &t.UserID, &createdAt, &t.Type, &t.Amount.Cents, &date, &t.Description,
		&t.Payer, &t.Category, &t.Status, &t.Recurrence, &t.PaymentMethod, &t.PaymentDetails,
		&cardID, &current, &total, &parentID)
	if err != nil {
		return core.Transaction{}, err
	}
	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return core.Transaction{}, fmt.Errorf("parse created_at of %s: %w", t.ID, err)
	}
	if t.Date, err = core.ParseDate(date); err != nil {
		return core.Transaction{}, fmt.Errorf("parse date of %s: %w", t.ID, err)
	}
	t.CardID = cardID.String
	if parentID.Valid {
		t.Schedule = core.Installment{Current: int(current.Int64), Total: int(total.Int64), ParentID: parentID.String}
	} else {
		t.Schedule = core.Standalone{}
	}
	return t, nil
}

func transactionArgs(t core.Transaction) []any {
	var current, total sql.NullInt64
	var parentID sql.NullString
	if inst, ok := t.InstallmentGroup(); ok {
		current = sql.NullInt64{Int64: int64(inst.Current), Valid: true}
		total = sql.NullInt64{Int64: int64(inst.Total), Valid: true}
		parentID = nullString(inst.ParentID)
	}
	return []any{
		string(t.Type), t.Amount.Cents, t.Date.String(), t.Description, t.Payer, t.Category,
		string(t.Status), string(t.Recurrence), string(t.PaymentMethod), t.PaymentDetails,
		nullString(t.CardID), current, total, parentID,
	}
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context, userID string) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE user_id = ? ORDER BY rowid`, userID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Transaction returns one transaction, for the sync worker.
func (r *SQLiteRepository) Transaction(ctx context.Context, userID, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE user_id = ? AND id = ?`, userID, id)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, &core.NotFoundError{Entity: "transaction", ID: id}
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

const insertTransactionSQL = `INSERT INTO transactions (` + transactionColumns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (r *SQLiteRepository) insertTransaction(ctx context.Context, ex execer, t core.Transaction) (core.Transaction, error) {
	t.CreatedAt = r.stamp(t.CreatedAt)
	args := append([]any{t.ID, t.UserID, formatTime(t.CreatedAt)}, transactionArgs(t)...)
	if _, err := ex.ExecContext(ctx, insertTransactionSQL, args...); err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}
	return t, nil
}

func (r *SQLiteRepository) InsertTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	saved, err := r.insertTransaction(ctx, r.db, t)
	if err != nil {
		return core.Transaction{}, err
	}
	r.logger.DebugContext(ctx, "Transaction saved to SQLite",
		log.FieldTransactionID, saved.ID,
		log.FieldAmountCents, saved.Amount.Cents)
	return saved, nil
}

// InsertTransactions inserts the batch inside one database transaction.
func (r *SQLiteRepository) InsertTransactions(ctx context.Context, ts []core.Transaction) ([]core.Transaction, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin batch: %w", err)
	}
	defer tx.Rollback()

	out := make([]core.Transaction, 0, len(ts))
	for _, t := range ts {
		saved, err := r.insertTransaction(ctx, tx, t)
		if err != nil {
			return nil, err
		}
		out = append(out, saved)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit batch: %w", err)
	}
	r.logger.DebugContext(ctx, "Transaction batch saved to SQLite", log.FieldCount, len(out))
	return out, nil
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	args := append(transactionArgs(t), t.UserID, t.ID)
	err := execOne(ctx, r.db, "transaction", t.ID, `UPDATE transactions SET
		type = ?, amount_cents = ?, date = ?, description = ?, payer = ?, category = ?,
		status = ?, recurrence = ?, payment_method = ?, payment_details = ?, card_id = ?,
		installment_current = ?, installment_total = ?, parent_id = ?
		WHERE user_id = ? AND id = ?`, args...)
	if err != nil {
		return core.Transaction{}, err
	}
	return r.Transaction(ctx, t.UserID, t.ID)
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, userID, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE user_id = ? AND id = ?`, userID, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteTransactionsByParent(ctx context.Context, userID, parentID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE user_id = ? AND parent_id = ?`, userID, parentID)
	if err != nil {
		return fmt.Errorf("delete installment group: %w", err)
	}
	n, _ := res.RowsAffected()
	r.logger.DebugContext(ctx, "Installment group deleted", log.FieldParentID, parentID, log.FieldCount, n)
	return nil
}

// Credit cards

func scanCard(s scanner) (core.CreditCard, error) {
	var c core.CreditCard
	var createdAt string
	if err := s.Scan(&c.ID, &c.UserID, &createdAt, &c.BankName, &c.HolderName, &c.Limit.Cents, &c.ClosingDay, &c.DueDay); err != nil {
		return core.CreditCard{}, err
	}
	var err error
	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return core.CreditCard{}, fmt.Errorf("parse created_at of card %s: %w", c.ID, err)
	}
	return c, nil
}

func (r *SQLiteRepository) ListCards(ctx context.Context, userID string) ([]core.CreditCard, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, user_id, created_at, bank_name, holder_name, limit_cents,
		closing_day, due_day FROM credit_cards WHERE user_id = ? ORDER BY rowid`, userID)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	defer rows.Close()

	var out []core.CreditCard
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("scan card: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) InsertCard(ctx context.Context, c core.CreditCard) (core.CreditCard, error) {
	c.CreatedAt = r.stamp(c.CreatedAt)
	_, err := r.db.ExecContext(ctx, `INSERT INTO credit_cards
		(id, user_id, created_at, bank_name, holder_name, limit_cents, closing_day, due_day)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.UserID, formatTime(c.CreatedAt), c.BankName, c.HolderName, c.Limit.Cents, c.ClosingDay, c.DueDay)
	if err != nil {
		return core.CreditCard{}, fmt.Errorf("insert card: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) UpdateCard(ctx context.Context, c core.CreditCard) (core.CreditCard, error) {
	err := execOne(ctx, r.db, "card", c.ID, `UPDATE credit_cards SET bank_name = ?, holder_name = ?,
		limit_cents = ?, closing_day = ?, due_day = ? WHERE user_id = ? AND id = ?`,
		c.BankName, c.HolderName, c.Limit.Cents, c.ClosingDay, c.DueDay, c.UserID, c.ID)
	if err != nil {
		return core.CreditCard{}, err
	}
	row := r.db.QueryRowContext(ctx, `SELECT id, user_id, created_at, bank_name, holder_name, limit_cents,
		closing_day, due_day FROM credit_cards WHERE user_id = ? AND id = ?`, c.UserID, c.ID)
	saved, err := scanCard(row)
	if err != nil {
		return core.CreditCard{}, fmt.Errorf("reload card: %w", err)
	}
	return saved, nil
}

func (r *SQLiteRepository) DeleteCard(ctx context.Context, userID, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM credit_cards WHERE user_id = ? AND id = ?`, userID, id); err != nil {
		return fmt.Errorf("delete card: %w", err)
	}
	return nil
}

// Goals

const goalColumns = `id, user_id, created_at, name, target_cents, initial_cents, current_cents, start_date, end_date`

func scanGoal(s scanner) (core.Goal, error) {
	var (
		g                     core.Goal
		createdAt, start, end string
	)
	if err := s.Scan(&g.ID, &g.UserID, &createdAt, &g.Name, &g.TargetAmount.Cents, &g.InitialAmount.Cents,
		&g.CurrentAmount.Cents, &start, &end); err != nil {
		return core.Goal{}, err
	}
	var err error
	if g.CreatedAt, err = parseTime(createdAt); err != nil {
		return core.Goal{}, fmt.Errorf("parse created_at of goal %s: %w", g.ID, err)
	}
	if g.StartDate, err = core.ParseDate(start); err != nil {
		return core.Goal{}, err
	}
	if g.EndDate, err = core.ParseDate(end); err != nil {
		return core.Goal{}, err
	}
	return g, nil
}

func (r *SQLiteRepository) ListGoals(ctx context.Context, userID string) ([]core.Goal, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+goalColumns+` FROM goals WHERE user_id = ? ORDER BY rowid`, userID)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	var out []core.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) InsertGoal(ctx context.Context, g core.Goal) (core.Goal, error) {
	g.CreatedAt = r.stamp(g.CreatedAt)
	_, err := r.db.ExecContext(ctx, `INSERT INTO goals (`+goalColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.UserID, formatTime(g.CreatedAt), g.Name, g.TargetAmount.Cents, g.InitialAmount.Cents,
		g.CurrentAmount.Cents, g.StartDate.String(), g.EndDate.String())
	if err != nil {
		return core.Goal{}, fmt.Errorf("insert goal: %w", err)
	}
	return g, nil
}

func (r *SQLiteRepository) UpdateGoal(ctx context.Context, g core.Goal) (core.Goal, error) {
	err := execOne(ctx, r.db, "goal", g.ID, `UPDATE goals SET name = ?, target_cents = ?, initial_cents = ?,
		current_cents = ?, start_date = ?, end_date = ? WHERE user_id = ? AND id = ?`,
		g.Name, g.TargetAmount.Cents, g.InitialAmount.Cents, g.CurrentAmount.Cents,
		g.StartDate.String(), g.EndDate.String(), g.UserID, g.ID)
	if err != nil {
		return core.Goal{}, err
	}
	row := r.db.QueryRowContext(ctx, `SELECT `+goalColumns+` FROM goals WHERE user_id = ? AND id = ?`, g.UserID, g.ID)
	saved, err := scanGoal(row)
	if err != nil {
		return core.Goal{}, fmt.Errorf("reload goal: %w", err)
	}
	return saved, nil
}

func (r *SQLiteRepository) DeleteGoal(ctx context.Context, userID, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM goals WHERE user_id = ? AND id = ?`, userID, id); err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	return nil
}

// Categories

func scanCategory(s scanner) (core.Category, error) {
	var c core.Category
	var createdAt string
	if err := s.Scan(&c.ID, &c.UserID, &createdAt, &c.Name, &c.Type); err != nil {
		return core.Category{}, err
	}
	var err error
	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return core.Category{}, fmt.Errorf("parse created_at of category %s: %w", c.ID, err)
	}
	return c, nil
}

func (r *SQLiteRepository) ListCategories(ctx context.Context, userID string) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, created_at, name, type FROM categories WHERE user_id = ? ORDER BY rowid`, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) InsertCategory(ctx context.Context, c core.Category) (core.Category, error) {
	c.CreatedAt = r.stamp(c.CreatedAt)
	_, err := r.db.ExecContext(ctx, `INSERT INTO categories (id, user_id, created_at, name, type) VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.UserID, formatTime(c.CreatedAt), c.Name, string(c.Type))
	if err != nil {
		return core.Category{}, fmt.Errorf("insert category: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) UpdateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	err := execOne(ctx, r.db, "category", c.ID,
		`UPDATE categories SET name = ?, type = ? WHERE user_id = ? AND id = ?`,
		c.Name, string(c.Type), c.UserID, c.ID)
	if err != nil {
		return core.Category{}, err
	}
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, created_at, name, type FROM categories WHERE user_id = ? AND id = ?`, c.UserID, c.ID)
	saved, err := scanCategory(row)
	if err != nil {
		return core.Category{}, fmt.Errorf("reload category: %w", err)
	}
	return saved, nil
}

func (r *SQLiteRepository) DeleteCategory(ctx context.Context, userID, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE user_id = ? AND id = ?`, userID, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

// Profiles

func (r *SQLiteRepository) GetProfile(ctx context.Context, userID string) (core.Profile, error) {
	var p core.Profile
	var hasAccess int
	err := r.db.QueryRowContext(ctx, `SELECT user_id, user_name, partner_name, mode, theme, has_access, plan
		FROM profiles WHERE user_id = ?`, userID).
		Scan(&p.ID, &p.UserName, &p.PartnerName, &p.Mode, &p.Theme, &hasAccess, &p.Plan)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Profile{}, &core.NotFoundError{Entity: "profile", ID: userID}
	}
	if err != nil {
		return core.Profile{}, fmt.Errorf("get profile: %w", err)
	}
	p.HasAccess = hasAccess != 0
	return p, nil
}

func (r *SQLiteRepository) SaveProfile(ctx context.Context, p core.Profile) (core.Profile, error) {
	hasAccess := 0
	if p.HasAccess {
		hasAccess = 1
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO profiles
		(user_id, user_name, partner_name, mode, theme, has_access, plan, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			user_name = excluded.user_name,
			partner_name = excluded.partner_name,
			mode = excluded.mode,
			theme = excluded.theme,
			has_access = excluded.has_access,
			plan = excluded.plan,
			updated_at = excluded.updated_at`,
		p.ID, p.UserName, p.PartnerName, string(p.Mode), string(p.Theme), hasAccess, string(p.Plan),
		formatTime(r.now()))
	if err != nil {
		return core.Profile{}, fmt.Errorf("save profile: %w", err)
	}
	return p, nil
}
