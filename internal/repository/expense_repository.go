package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/wealthpath/expense-analytics/internal/analytics"
	"github.com/wealthpath/expense-analytics/internal/model"
	"github.com/wealthpath/expense-analytics/pkg/datetime"
)

var ErrExpenseNotFound = errors.New("expense not found")

const expenseColumns = `id, owner_id, amount, description, notes, category_id, date, created_at, updated_at`

type ExpenseRepository struct {
	db *sqlx.DB
}

func NewExpenseRepository(db *sqlx.DB) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

func (r *ExpenseRepository) Create(ctx context.Context, expense *model.Expense) error {
	query := `
		INSERT INTO expenses (id, owner_id, amount, description, notes, category_id, date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING created_at, updated_at`

	expense.ID = uuid.New()
	return r.db.QueryRowxContext(ctx, query,
		expense.ID, expense.OwnerID, expense.Amount, expense.Description, expense.Notes,
		expense.CategoryID, expense.Date,
	).Scan(&expense.CreatedAt, &expense.UpdatedAt)
}

func (r *ExpenseRepository) GetByID(ctx context.Context, id uuid.UUID, ownerID string) (*model.ExpenseWithCategory, error) {
	var expense model.ExpenseWithCategory
	query := `
		SELECT e.*, c.name AS category_name, c.color AS category_color
		FROM expenses e
		LEFT JOIN categories c ON c.id = e.category_id
		WHERE e.id = $1 AND e.owner_id = $2`
	err := r.db.GetContext(ctx, &expense, query, id, ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrExpenseNotFound
	}
	if err != nil {
		return nil, err
	}
	return &expense, nil
}

// ExpenseFilters narrows List and Count. Nil fields do not filter.
type ExpenseFilters struct {
	CategoryID *uuid.UUID
	StartDate  *time.Time
	EndDate    *time.Time
	MinAmount  *decimal.Decimal
	MaxAmount  *decimal.Decimal
	Search     *string // case-insensitive match on description or notes
	SortBy     string  // date, amount, description or category
	SortOrder  string  // asc or desc
	Limit      int // 0 lists every match
	Offset     int
}

// limitArg maps a non-positive limit to NULL, which Postgres reads as LIMIT ALL.
func limitArg(limit int) any {
	if limit <= 0 {
		return nil
	}
	return limit
}

var expenseSortColumns = map[string]string{
	"date":        "e.date",
	"amount":      "e.amount",
	"description": "e.description",
	"category":    "e.category_id",
}

const expenseFilterClause = `
		WHERE e.owner_id = $1
		AND ($2::uuid IS NULL OR e.category_id = $2)
		AND ($3::timestamptz IS NULL OR e.date >= $3)
		AND ($4::timestamptz IS NULL OR e.date <= $4)
		AND ($5::numeric IS NULL OR e.amount >= $5)
		AND ($6::numeric IS NULL OR e.amount <= $6)
		AND ($7::text IS NULL OR e.description ILIKE '%' || $7 || '%' OR e.notes ILIKE '%' || $7 || '%')`

func (f ExpenseFilters) args(ownerID string) []any {
	var search *string
	if f.Search != nil {
		escaped := likeEscaper.Replace(*f.Search)
		search = &escaped
	}
	var end *time.Time
	if f.EndDate != nil {
		end = nullEnd(*f.EndDate)
	}
	return []any{ownerID, f.CategoryID, f.StartDate, end, f.MinAmount, f.MaxAmount, search}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (r *ExpenseRepository) List(ctx context.Context, ownerID string, filters ExpenseFilters) ([]model.ExpenseWithCategory, error) {
	column, ok := expenseSortColumns[filters.SortBy]
	if !ok {
		column = "e.date"
	}
	direction := "DESC"
	if strings.EqualFold(filters.SortOrder, "asc") {
		direction = "ASC"
	}

	query := fmt.Sprintf(`
		SELECT e.*, c.name AS category_name, c.color AS category_color
		FROM expenses e
		LEFT JOIN categories c ON c.id = e.category_id`+expenseFilterClause+`
		ORDER BY %s %s, e.created_at DESC
		LIMIT $8 OFFSET $9`, column, direction)

	args := append(filters.args(ownerID), limitArg(filters.Limit), filters.Offset)
	expenses := []model.ExpenseWithCategory{}
	err := r.db.SelectContext(ctx, &expenses, query, args...)
	return expenses, err
}

func (r *ExpenseRepository) Count(ctx context.Context, ownerID string, filters ExpenseFilters) (int, error) {
	query := `SELECT COUNT(*) FROM expenses e` + expenseFilterClause

	var count int
	err := r.db.GetContext(ctx, &count, query, filters.args(ownerID)...)
	return count, err
}

func (r *ExpenseRepository) Update(ctx context.Context, expense *model.Expense) error {
	query := `
		UPDATE expenses
		SET amount = $2, description = $3, notes = $4, category_id = $5, date = $6, updated_at = NOW()
		WHERE id = $1 AND owner_id = $7
		RETURNING updated_at`
	err := r.db.QueryRowxContext(ctx, query,
		expense.ID, expense.Amount, expense.Description, expense.Notes, expense.CategoryID, expense.Date, expense.OwnerID,
	).Scan(&expense.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrExpenseNotFound
	}
	return err
}

func (r *ExpenseRepository) Delete(ctx context.Context, id uuid.UUID, ownerID string) error {
	query := `DELETE FROM expenses WHERE id = $1 AND owner_id = $2`
	result, err := r.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrExpenseNotFound
	}
	return nil
}

// Recent returns the newest expenses matching q's owner, range and category filters.
func (r *ExpenseRepository) Recent(ctx context.Context, q analytics.Query, limit int) ([]model.ExpenseWithCategory, error) {
	where, args := aggregateWhere(q)
	query := `
		SELECT e.*, c.name AS category_name, c.color AS category_color
		FROM expenses e
		LEFT JOIN categories c ON c.id = e.category_id` + where + fmt.Sprintf(`
		ORDER BY e.date DESC, e.created_at DESC
		LIMIT $%d`, len(args)+1)

	expenses := []model.ExpenseWithCategory{}
	err := r.db.SelectContext(ctx, &expenses, query, append(args, limit)...)
	return expenses, err
}

// RecentPerCategory returns up to limit newest expenses for every category with
// expenses matching q, keyed by category id.
func (r *ExpenseRepository) RecentPerCategory(ctx context.Context, q analytics.Query, limit int) (map[uuid.UUID][]model.Expense, error) {
	where, args := aggregateWhere(q)
	query := `
		SELECT ` + expenseColumns + `
		FROM (
			SELECT e.*, ROW_NUMBER() OVER (PARTITION BY e.category_id ORDER BY e.date DESC, e.created_at DESC) AS rn
			FROM expenses e` + where + `
		) ranked` + fmt.Sprintf(`
		WHERE rn <= $%d
		ORDER BY category_id, date DESC, created_at DESC`, len(args)+1)

	var expenses []model.Expense
	if err := r.db.SelectContext(ctx, &expenses, query, append(args, limit)...); err != nil {
		return nil, err
	}

	byCategory := make(map[uuid.UUID][]model.Expense)
	for _, e := range expenses {
		byCategory[e.CategoryID] = append(byCategory[e.CategoryID], e)
	}
	return byCategory, nil
}

// Aggregate implements analytics.Store.
func (r *ExpenseRepository) Aggregate(ctx context.Context, q analytics.Query) ([]analytics.Bucket, error) {
	query, args, err := buildAggregateQuery(q, false)
	if err != nil {
		return nil, err
	}

	var rows []bucketRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}

	buckets := make([]analytics.Bucket, len(rows))
	for i, row := range rows {
		buckets[i] = row.bucket()
	}
	return buckets, nil
}

// AggregateByCategory implements analytics.Store. Expenses whose category no
// longer exists are dropped by the inner join.
func (r *ExpenseRepository) AggregateByCategory(ctx context.Context, q analytics.Query) ([]analytics.CategoryBucket, error) {
	query, args, err := buildAggregateQuery(q, true)
	if err != nil {
		return nil, err
	}

	var rows []bucketRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}

	buckets := make([]analytics.CategoryBucket, len(rows))
	for i, row := range rows {
		buckets[i] = analytics.CategoryBucket{
			Bucket: row.bucket(),
			Name:   row.Name.String,
			Color:  row.Color.String,
			Icon:   row.Icon.String,
		}
	}
	return buckets, nil
}

type bucketRow struct {
	Year       int             `db:"year"`
	Quarter    int             `db:"quarter"`
	Month      int             `db:"month"`
	Week       int             `db:"week"`
	Day        int             `db:"day"`
	CategoryID uuid.NullUUID   `db:"category_id"`
	Name       sql.NullString  `db:"name"`
	Color      sql.NullString  `db:"color"`
	Icon       sql.NullString  `db:"icon"`
	Total      decimal.Decimal `db:"total"`
	Count      int64           `db:"count"`
	Avg        decimal.Decimal `db:"avg"`
	Min        decimal.Decimal `db:"min"`
	Max        decimal.Decimal `db:"max"`
	FirstAt    time.Time       `db:"first_at"`
	LastAt     time.Time       `db:"last_at"`
}

func (row bucketRow) bucket() analytics.Bucket {
	return analytics.Bucket{
		Key: analytics.Key{
			Year:    row.Year,
			Quarter: row.Quarter,
			Month:   row.Month,
			Week:    row.Week,
			Day:     row.Day,
		},
		CategoryID: row.CategoryID.UUID,
		Total:      row.Total,
		Count:      row.Count,
		Avg:        row.Avg,
		Min:        row.Min,
		Max:        row.Max,
		FirstAt:    row.FirstAt.UTC(),
		LastAt:     row.LastAt.UTC(),
	}
}

const utcDate = `(e.date AT TIME ZONE 'UTC')`

// groupColumns returns the key expressions for a shape, each aliased to the
// bucketRow field it fills.
func groupColumns(s analytics.Shape) ([]string, error) {
	extract := func(field, alias string) string {
		return fmt.Sprintf("EXTRACT(%s FROM %s)::int AS %s", field, utcDate, alias)
	}
	switch s {
	case analytics.ShapeTotal:
		return nil, nil
	case analytics.ShapeDay:
		return []string{extract("DAY", "day")}, nil
	case analytics.ShapeWeek:
		return []string{extract("ISOYEAR", "year"), extract("WEEK", "week")}, nil
	case analytics.ShapeMonth:
		return []string{extract("MONTH", "month")}, nil
	case analytics.ShapeQuarter:
		return []string{extract("QUARTER", "quarter")}, nil
	case analytics.ShapeDate:
		return []string{extract("YEAR", "year"), extract("MONTH", "month"), extract("DAY", "day")}, nil
	case analytics.ShapeYearMonth:
		return []string{extract("YEAR", "year"), extract("MONTH", "month")}, nil
	default:
		return nil, fmt.Errorf("unsupported grouping shape %s", s)
	}
}

func aggregateWhere(q analytics.Query) (string, []any) {
	var categoryIDs pq.StringArray
	for _, id := range q.CategoryIDs {
		categoryIDs = append(categoryIDs, id.String())
	}

	where := `
		WHERE e.owner_id = $1
		AND ($2::timestamptz IS NULL OR e.date >= $2)
		AND ($3::timestamptz IS NULL OR e.date <= $3)
		AND ($4::uuid IS NULL OR e.category_id = $4)
		AND ($5::uuid[] IS NULL OR e.category_id = ANY($5))
		AND ($6::numeric IS NULL OR e.amount >= $6)
		AND ($7::numeric IS NULL OR e.amount <= $7)`
	args := []any{
		q.OwnerID,
		nullTime(q.Range.Start),
		nullEnd(q.Range.End),
		q.CategoryID,
		categoryIDs,
		q.MinAmount,
		q.MaxAmount,
	}
	return where, args
}

func buildAggregateQuery(q analytics.Query, byCategory bool) (string, []any, error) {
	keys, err := groupColumns(q.Shape)
	if err != nil {
		return "", nil, err
	}

	selects := append([]string{}, keys...)
	var groupBy []string
	for i := range keys {
		groupBy = append(groupBy, fmt.Sprint(i+1))
	}
	if byCategory {
		selects = append(selects, "e.category_id", "c.name", "c.color", "c.icon")
		groupBy = append(groupBy, "e.category_id", "c.name", "c.color", "c.icon")
	}
	selects = append(selects,
		"SUM(e.amount) AS total",
		"COUNT(*) AS count",
		"ROUND(AVG(e.amount), 2) AS avg",
		"MIN(e.amount) AS min",
		"MAX(e.amount) AS max",
		"MIN(e.date) AS first_at",
		"MAX(e.date) AS last_at",
	)

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(strings.Join(selects, ", "))
	b.WriteString("\n\t\tFROM expenses e")
	if byCategory {
		b.WriteString("\n\t\tJOIN categories c ON c.id = e.category_id AND c.owner_id = e.owner_id")
	}
	where, args := aggregateWhere(q)
	b.WriteString(where)
	if len(groupBy) > 0 {
		b.WriteString("\n\t\tGROUP BY ")
		b.WriteString(strings.Join(groupBy, ", "))
	} else {
		// Without GROUP BY an aggregate always yields one row; keep the result sparse.
		b.WriteString("\n\t\tHAVING COUNT(*) > 0")
	}
	return b.String(), args, nil
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// nullEnd sends an inclusive upper bound at microsecond resolution. Postgres
// rounds finer fractions, so 23:59:59.9999999 would match the next midnight.
func nullEnd(t time.Time) *time.Time {
	return nullTime(t.Truncate(datetime.Precision))
}
