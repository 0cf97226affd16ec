package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"tally/internal/core"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a lookup by ID matches nothing.
var ErrNotFound = errors.New("record not found")

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func encodeTags(tags []string) string {
	return strings.Join(tags, ",")
}

func decodeTags(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func encodeDate(d core.Date) sql.NullString {
	if d.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func decodeDate(s sql.NullString) (core.Date, error) {
	if !s.Valid || s.String == "" {
		return core.Date{}, nil
	}
	return core.ParseDate(s.String)
}

// AppendTransaction implements services.LedgerStore.
func (r *SQLiteRepository) AppendTransaction(ctx context.Context, tx core.Transaction) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (date, kind, category, amount_cents, description, notes, tags, recurring)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.Date.String(), string(tx.Kind), tx.Category, tx.Amount.Cents(),
		tx.Description, tx.Notes, encodeTags(tx.Tags), tx.Recurring)
	if err != nil {
		return 0, fmt.Errorf("insert transaction: %w", err)
	}
	return res.LastInsertId()
}

func scanTransaction(row interface{ Scan(...any) error }) (core.Transaction, error) {
	var (
		tx        core.Transaction
		date      string
		kind      string
		cents     int64
		tags      string
		recurring bool
	)
	if err := row.Scan(&tx.ID, &date, &kind, &tx.Category, &cents,
		&tx.Description, &tx.Notes, &tags, &recurring); err != nil {
		return core.Transaction{}, err
	}

	parsed, err := core.ParseDate(date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse stored date %q: %w", date, err)
	}
	tx.Date = parsed
	tx.Kind = core.Kind(kind)
	tx.Amount = core.MoneyFromCents(cents)
	tx.Tags = decodeTags(tags)
	tx.Recurring = recurring
	return tx, nil
}

const transactionColumns = "id, date, kind, category, amount_cents, description, notes, tags, recurring"

// GetTransaction implements services.LedgerStore.
func (r *SQLiteRepository) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE id = ?", id)
	tx, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction %d: %w", id, err)
	}
	return tx, nil
}

// DeleteTransaction implements services.LedgerStore.
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM transactions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListTransactions returns the whole ledger ordered by date then ID.
// Reporting slices and filters the snapshot in memory.
func (r *SQLiteRepository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+transactionColumns+" FROM transactions ORDER BY date, id")
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

const ruleColumns = "id, kind, category, amount_cents, description, tags, frequency, start_date, last_processed, active"

func scanRule(row interface{ Scan(...any) error }) (core.RecurringRule, error) {
	var (
		rule          core.RecurringRule
		kind          string
		cents         int64
		tags          string
		frequency     string
		startDate     string
		lastProcessed sql.NullString
	)
	if err := row.Scan(&rule.ID, &kind, &rule.Category, &cents, &rule.Description,
		&tags, &frequency, &startDate, &lastProcessed, &rule.Active); err != nil {
		return core.RecurringRule{}, err
	}

	start, err := core.ParseDate(startDate)
	if err != nil {
		return core.RecurringRule{}, fmt.Errorf("parse stored start date %q: %w", startDate, err)
	}
	last, err := decodeDate(lastProcessed)
	if err != nil {
		return core.RecurringRule{}, fmt.Errorf("parse stored last processed: %w", err)
	}

	rule.Kind = core.Kind(kind)
	rule.Amount = core.MoneyFromCents(cents)
	rule.Tags = decodeTags(tags)
	rule.Frequency = core.Frequency(frequency)
	rule.StartDate = start
	rule.LastProcessed = last
	return rule, nil
}

// CreateRecurringRule stores a new rule and returns its ID.
func (r *SQLiteRepository) CreateRecurringRule(ctx context.Context, rule core.RecurringRule) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO recurring_rules (kind, category, amount_cents, description, tags, frequency, start_date, last_processed, active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(rule.Kind), rule.Category, rule.Amount.Cents(), rule.Description,
		encodeTags(rule.Tags), string(rule.Frequency), rule.StartDate.String(),
		encodeDate(rule.LastProcessed), rule.Active)
	if err != nil {
		return 0, fmt.Errorf("insert recurring rule: %w", err)
	}
	return res.LastInsertId()
}

// GetRecurringRule loads one rule by ID.
func (r *SQLiteRepository) GetRecurringRule(ctx context.Context, id int64) (core.RecurringRule, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+ruleColumns+" FROM recurring_rules WHERE id = ?", id)
	rule, err := scanRule(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.RecurringRule{}, ErrNotFound
	}
	if err != nil {
		return core.RecurringRule{}, fmt.Errorf("get recurring rule %d: %w", id, err)
	}
	return rule, nil
}

// ListRecurringRules implements services.RuleStore.
func (r *SQLiteRepository) ListRecurringRules(ctx context.Context) ([]core.RecurringRule, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+ruleColumns+" FROM recurring_rules ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list recurring rules: %w", err)
	}
	defer rows.Close()

	var rules []core.RecurringRule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan recurring rule: %w", err)
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

// SetRecurringRuleActive flips a rule's active flag without touching its
// schedule cursor.
func (r *SQLiteRepository) SetRecurringRuleActive(ctx context.Context, id int64, active bool) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE recurring_rules SET active = ? WHERE id = ?", active, id)
	if err != nil {
		return fmt.Errorf("update recurring rule %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteRecurringRule removes a rule. Transactions it already
// materialized stay in the ledger.
func (r *SQLiteRepository) DeleteRecurringRule(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM recurring_rules WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete recurring rule %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ApplyScheduleResult implements services.RuleStore. Inserts and cursor
// updates commit in one transaction so a crash never leaves a
// materialized row without its advanced cursor.
func (r *SQLiteRepository) ApplyScheduleResult(ctx context.Context, materialized []core.Transaction, updated []core.RecurringRule) ([]core.Transaction, error) {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin schedule batch: %w", err)
	}
	defer dbTx.Rollback()

	created := make([]core.Transaction, 0, len(materialized))
	for _, tx := range materialized {
		res, err := dbTx.ExecContext(ctx, `
			INSERT INTO transactions (date, kind, category, amount_cents, description, notes, tags, recurring)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			tx.Date.String(), string(tx.Kind), tx.Category, tx.Amount.Cents(),
			tx.Description, tx.Notes, encodeTags(tx.Tags), tx.Recurring)
		if err != nil {
			return nil, fmt.Errorf("insert materialized transaction: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, err
		}
		tx.ID = id
		created = append(created, tx)
	}

	for _, rule := range updated {
		if _, err := dbTx.ExecContext(ctx,
			"UPDATE recurring_rules SET last_processed = ? WHERE id = ?",
			encodeDate(rule.LastProcessed), rule.ID); err != nil {
			return nil, fmt.Errorf("advance rule %d cursor: %w", rule.ID, err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return nil, fmt.Errorf("commit schedule batch: %w", err)
	}

	slog.InfoContext(ctx, "Schedule batch committed",
		"materialized", len(created),
		"rules_updated", len(updated))
	return created, nil
}

// SetBudget replaces the whole month's limits. Categories absent from
// the new map lose their limit.
func (r *SQLiteRepository) SetBudget(ctx context.Context, budget core.Budget) error {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin budget update: %w", err)
	}
	defer dbTx.Rollback()

	if _, err := dbTx.ExecContext(ctx,
		"DELETE FROM budgets WHERE month = ?", budget.Month); err != nil {
		return fmt.Errorf("clear budget month: %w", err)
	}
	for category, limit := range budget.Limits {
		if _, err := dbTx.ExecContext(ctx,
			"INSERT INTO budgets (month, category, limit_cents) VALUES (?, ?, ?)",
			budget.Month, category, limit.Cents()); err != nil {
			return fmt.Errorf("insert budget limit: %w", err)
		}
	}

	return dbTx.Commit()
}

// GetBudget loads one month's budget. A month with no limits returns a
// zero-value budget rather than an error.
func (r *SQLiteRepository) GetBudget(ctx context.Context, month string) (core.Budget, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT category, limit_cents FROM budgets WHERE month = ?", month)
	if err != nil {
		return core.Budget{}, fmt.Errorf("get budget %s: %w", month, err)
	}
	defer rows.Close()

	budget := core.Budget{Month: month, Limits: make(map[string]core.Money)}
	for rows.Next() {
		var (
			category string
			cents    int64
		)
		if err := rows.Scan(&category, &cents); err != nil {
			return core.Budget{}, fmt.Errorf("scan budget limit: %w", err)
		}
		budget.Limits[category] = core.MoneyFromCents(cents)
	}
	return budget, rows.Err()
}

// DeleteBudget drops every limit for a month.
func (r *SQLiteRepository) DeleteBudget(ctx context.Context, month string) error {
	if _, err := r.db.ExecContext(ctx,
		"DELETE FROM budgets WHERE month = ?", month); err != nil {
		return fmt.Errorf("delete budget %s: %w", month, err)
	}
	return nil
}

const goalColumns = "id, name, target_cents, current_cents, deadline, priority, notes, created_at"

func scanGoal(row interface{ Scan(...any) error }) (core.Goal, error) {
	var (
		g         core.Goal
		target    int64
		current   int64
		deadline  string
		priority  string
		createdAt sql.NullString
	)
	if err := row.Scan(&g.ID, &g.Name, &target, &current, &deadline,
		&priority, &g.Notes, &createdAt); err != nil {
		return core.Goal{}, err
	}

	parsedDeadline, err := core.ParseDate(deadline)
	if err != nil {
		return core.Goal{}, fmt.Errorf("parse stored deadline %q: %w", deadline, err)
	}
	parsedCreated, err := decodeDate(createdAt)
	if err != nil {
		return core.Goal{}, fmt.Errorf("parse stored created_at %q: %w", createdAt.String, err)
	}

	g.Target = core.MoneyFromCents(target)
	g.Current = core.MoneyFromCents(current)
	g.Deadline = parsedDeadline
	g.Priority = core.Priority(priority)
	g.CreatedAt = parsedCreated
	return g, nil
}

// CreateGoal stores a new goal and returns its ID.
func (r *SQLiteRepository) CreateGoal(ctx context.Context, g core.Goal) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO goals (name, target_cents, current_cents, deadline, priority, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		g.Name, g.Target.Cents(), g.Current.Cents(), g.Deadline.String(),
		string(g.Priority), g.Notes, encodeDate(g.CreatedAt))
	if err != nil {
		return 0, fmt.Errorf("insert goal: %w", err)
	}
	return res.LastInsertId()
}

// GetGoal loads one goal by ID.
func (r *SQLiteRepository) GetGoal(ctx context.Context, id int64) (core.Goal, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+goalColumns+" FROM goals WHERE id = ?", id)
	g, err := scanGoal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Goal{}, ErrNotFound
	}
	if err != nil {
		return core.Goal{}, fmt.Errorf("get goal %d: %w", id, err)
	}
	return g, nil
}

// ListGoals returns every goal ordered by ID.
func (r *SQLiteRepository) ListGoals(ctx context.Context) ([]core.Goal, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+goalColumns+" FROM goals ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	var goals []core.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

// ContributeToGoal adds an amount to a goal's saved total in place and
// returns the updated goal. The total may overshoot the target.
func (r *SQLiteRepository) ContributeToGoal(ctx context.Context, id int64, amount core.Money) (core.Goal, error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE goals SET current_cents = current_cents + ? WHERE id = ?",
		amount.Cents(), id)
	if err != nil {
		return core.Goal{}, fmt.Errorf("contribute to goal %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return core.Goal{}, err
	}
	if n == 0 {
		return core.Goal{}, ErrNotFound
	}
	return r.GetGoal(ctx, id)
}

// DeleteGoal removes a goal.
func (r *SQLiteRepository) DeleteGoal(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM goals WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete goal %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Categories implements services.LedgerStore.
func (r *SQLiteRepository) Categories(ctx context.Context) (core.CategorySet, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT name, kind FROM categories ORDER BY name")
	if err != nil {
		return core.CategorySet{}, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var set core.CategorySet
	for rows.Next() {
		var name, kind string
		if err := rows.Scan(&name, &kind); err != nil {
			return core.CategorySet{}, fmt.Errorf("scan category: %w", err)
		}
		if core.Kind(kind) == core.Income {
			set.Income = append(set.Income, name)
		} else {
			set.Expense = append(set.Expense, name)
		}
	}
	return set, rows.Err()
}

// AddCategory inserts a new label for a kind. Duplicates are rejected
// with core.ErrDuplicateCategory.
func (r *SQLiteRepository) AddCategory(ctx context.Context, kind core.Kind, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return core.ErrEmptyCategory
	}

	res, err := r.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO categories (name, kind) VALUES (?, ?)",
		name, string(kind))
	if err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return core.ErrDuplicateCategory
	}
	return nil
}

// RemoveCategory deletes a label. Transactions, rules and budgets that
// reference it keep their stored value.
func (r *SQLiteRepository) RemoveCategory(ctx context.Context, kind core.Kind, name string) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM categories WHERE name = ? AND kind = ?", name, string(kind))
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return core.ErrUnknownCategory
	}
	return nil
}

// ResetCategories restores one kind's list to the defaults.
func (r *SQLiteRepository) ResetCategories(ctx context.Context, kind core.Kind) error {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin category reset: %w", err)
	}
	defer dbTx.Rollback()

	if _, err := dbTx.ExecContext(ctx,
		"DELETE FROM categories WHERE kind = ?", string(kind)); err != nil {
		return fmt.Errorf("clear categories: %w", err)
	}
	for _, name := range core.DefaultCategorySet().For(kind) {
		if _, err := dbTx.ExecContext(ctx,
			"INSERT INTO categories (name, kind) VALUES (?, ?)",
			name, string(kind)); err != nil {
			return fmt.Errorf("restore category: %w", err)
		}
	}
	return dbTx.Commit()
}
