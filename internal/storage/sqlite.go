package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite" // also registers the "sqlite" driver
	sqlite3 "modernc.org/sqlite/lib"

	"topic_bot/internal/model"
	"topic_bot/migrations"
)

const (
	timeLayout  = "2006-01-02T15:04:05Z"
	memoryDSN   = ":memory:"
	busyTimeout = 5000
)

// SQLite implements Storage backed by a SQLite database.
type SQLite struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewSQLite opens a SQLite database at dsn and runs pending migrations.
func NewSQLite(dsn string) (*SQLite, error) {
	db, err := sqlx.Open("sqlite", withBusyTimeout(dsn))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if dsn == memoryDSN {
		// Every pooled connection would otherwise get its own empty database.
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if err := migrations.Run(context.Background(), db.DB); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLite{db: db, now: time.Now}, nil
}

func withBusyTimeout(dsn string) string {
	if dsn == memoryDSN || strings.Contains(dsn, "_pragma=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%s_pragma=busy_timeout(%d)", dsn, sep, busyTimeout)
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

type topicRow struct {
	ID          int64  `db:"id"`
	Name        string `db:"name"`
	Explanation string `db:"explanation"`
	CreatedAt   string `db:"created_at"`
	UpdatedAt   string `db:"updated_at"`
}

func (r topicRow) toModel() model.Topic {
	t := model.Topic{ID: r.ID, Name: r.Name, Explanation: r.Explanation}
	t.CreatedAt, _ = time.Parse(timeLayout, r.CreatedAt)
	t.UpdatedAt, _ = time.Parse(timeLayout, r.UpdatedAt)
	return t
}

const topicColumns = `id, name, explanation, created_at, updated_at`

func (s *SQLite) timestamp() string {
	return s.now().UTC().Format(timeLayout)
}

// CreateTopic inserts a new topic and populates its ID and timestamps.
func (s *SQLite) CreateTopic(ctx context.Context, t *model.Topic) error {
	return insertTopic(ctx, s.db, t, s.timestamp())
}

func insertTopic(ctx context.Context, ex sqlx.ExecerContext, t *model.Topic, now string) error {
	res, err := ex.ExecContext(ctx,
		`INSERT INTO topics (name, explanation, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		t.Name, t.Explanation, now, now,
	)
	if err != nil {
		return mapError(err, "insert topic", t.Name)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	t.ID = id
	t.CreatedAt, _ = time.Parse(timeLayout, now)
	t.UpdatedAt = t.CreatedAt
	return nil
}

// GetTopic returns a single topic by its ID.
func (s *SQLite) GetTopic(ctx context.Context, id int64) (*model.Topic, error) {
	var row topicRow
	err := s.db.GetContext(ctx, &row, `SELECT `+topicColumns+` FROM topics WHERE id = ?`, id)
	if err != nil {
		return nil, mapError(err, "get topic", id)
	}
	t := row.toModel()
	return &t, nil
}

// GetTopicByName returns the topic whose name equals name exactly.
func (s *SQLite) GetTopicByName(ctx context.Context, name string) (*model.Topic, error) {
	var row topicRow
	err := s.db.GetContext(ctx, &row, `SELECT `+topicColumns+` FROM topics WHERE name = ?`, name)
	if err != nil {
		return nil, mapError(err, "get topic", name)
	}
	t := row.toModel()
	return &t, nil
}

// ListTopics returns all topics in storage order.
func (s *SQLite) ListTopics(ctx context.Context) ([]model.Topic, error) {
	var rows []topicRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT `+topicColumns+` FROM topics ORDER BY id`); err != nil {
		return nil, fmt.Errorf("query topics: %w", err)
	}
	topics := make([]model.Topic, 0, len(rows))
	for _, r := range rows {
		topics = append(topics, r.toModel())
	}
	return topics, nil
}

// UpdateTopic overwrites name and explanation and refreshes UpdatedAt.
func (s *SQLite) UpdateTopic(ctx context.Context, t *model.Topic) error {
	now := s.timestamp()
	res, err := s.db.ExecContext(ctx,
		`UPDATE topics SET name = ?, explanation = ?, updated_at = ? WHERE id = ?`,
		t.Name, t.Explanation, now, t.ID,
	)
	if err != nil {
		return mapError(err, "update topic", t.ID)
	}
	if err := requireAffected(res, "update topic", t.ID); err != nil {
		return err
	}
	t.UpdatedAt, _ = time.Parse(timeLayout, now)
	return nil
}

// DeleteTopic removes a topic. Queries that matched it are left untouched.
func (s *SQLite) DeleteTopic(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM topics WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete topic %d: %w", id, err)
	}
	return requireAffected(res, "delete topic", id)
}

// CountTopics returns the number of stored topics.
func (s *SQLite) CountTopics(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM topics`); err != nil {
		return 0, fmt.Errorf("count topics: %w", err)
	}
	return n, nil
}

// SeedTopics inserts topics in one transaction if the table is empty.
// It returns the number of inserted rows, zero when the table already had data.
func (s *SQLite) SeedTopics(ctx context.Context, topics []model.TopicInput) (int, error) {
	inserted := 0
	err := withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		var n int
		if err := tx.GetContext(ctx, &n, `SELECT COUNT(*) FROM topics`); err != nil {
			return fmt.Errorf("count topics: %w", err)
		}
		if n > 0 {
			return nil
		}
		now := s.timestamp()
		for _, in := range topics {
			t := model.Topic{Name: in.Name, Explanation: in.Explanation}
			if err := insertTopic(ctx, tx, &t, now); err != nil {
				return err
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

// RecordQuery appends a query to the log. Successful is derived from MatchedTopicID.
func (s *SQLite) RecordQuery(ctx context.Context, q *model.Query) error {
	now := s.timestamp()
	q.Successful = q.MatchedTopicID != nil
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO queries (user_name, chat_id, query_text, matched_topic_id, successful, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		q.UserName, q.ChatID, q.QueryText, q.MatchedTopicID, boolToInt(q.Successful), now,
	)
	if err != nil {
		return fmt.Errorf("insert query: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	q.ID = id
	q.Timestamp, _ = time.Parse(timeLayout, now)
	return nil
}

type queryRow struct {
	ID             int64          `db:"id"`
	UserName       string         `db:"user_name"`
	ChatID         string         `db:"chat_id"`
	QueryText      string         `db:"query_text"`
	MatchedTopicID sql.NullInt64  `db:"matched_topic_id"`
	Successful     int            `db:"successful"`
	Timestamp      string         `db:"timestamp"`
	TopicName      sql.NullString `db:"topic_name"`
}

// ListQueries returns the whole query log, most recent first.
func (s *SQLite) ListQueries(ctx context.Context) ([]model.QueryView, error) {
	var rows []queryRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT q.id, q.user_name, q.chat_id, q.query_text, q.matched_topic_id, q.successful,
		        q.timestamp, t.name AS topic_name
		 FROM queries q
		 LEFT JOIN topics t ON t.id = q.matched_topic_id
		 ORDER BY q.timestamp DESC, q.id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("query log: %w", err)
	}

	views := make([]model.QueryView, 0, len(rows))
	for _, r := range rows {
		v := model.QueryView{Query: model.Query{
			ID:         r.ID,
			UserName:   r.UserName,
			ChatID:     r.ChatID,
			QueryText:  r.QueryText,
			Successful: r.Successful == 1,
		}}
		if r.MatchedTopicID.Valid {
			id := r.MatchedTopicID.Int64
			v.MatchedTopicID = &id
		}
		if r.TopicName.Valid {
			name := r.TopicName.String
			v.TopicName = &name
		}
		v.Timestamp, _ = time.Parse(timeLayout, r.Timestamp)
		views = append(views, v)
	}
	return views, nil
}

func withTx(ctx context.Context, db *sqlx.DB, fn func(*sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// mapError converts driver errors to model errors.
func mapError(err error, op string, key any) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %v: %w", op, key, model.ErrNotFound)
	}
	var se *sqlite.Error
	if errors.As(err, &se) && se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
		return fmt.Errorf("%s %v: %w", op, key, model.ErrConflict)
	}
	return fmt.Errorf("%s %v: %w", op, key, err)
}

func requireAffected(res sql.Result, op string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", op, id, model.ErrNotFound)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
