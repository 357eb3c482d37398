package remote

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/treehole/internal/common"
	"github.com/dmitrijs2005/treehole/internal/dbx"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresBackend implements Backend directly over the messages and
// profiles tables. Privileged writes are only applied when the acting
// device's profile row is VIP.
type PostgresBackend struct {
	db *sql.DB
}

func NewPostgresBackend(db *sql.DB) *PostgresBackend {
	return &PostgresBackend{db: db}
}

// OpenPostgres connects with the pgx driver, checks the connection and
// applies the schema migrations.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresBackend, error) {
	if dsn == "" {
		return nil, fmt.Errorf("empty dsn: %w", common.ErrRemoteUnavailable)
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}
	return NewPostgresBackend(db), nil
}

// RunMigrations applies the embedded goose migrations for the remote schema.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, "migrations")
}

func (r *PostgresBackend) ListMessages(ctx context.Context) ([]MessageRow, error) {
	query := `SELECT id, "to", content, timestamp, is_pinned FROM messages
		ORDER BY is_pinned DESC, timestamp DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select messages: %w", err)
	}
	defer rows.Close()

	result := make([]MessageRow, 0)
	for rows.Next() {
		var (
			id, to, content sql.NullString
			ts              sql.NullInt64
			pinned          sql.NullBool
		)
		if err := rows.Scan(&id, &to, &content, &ts, &pinned); err != nil {
			return nil, fmt.Errorf("failed to scan message row: %w", err)
		}
		row := MessageRow{To: nullString(to), Content: nullString(content), Timestamp: nullInt64(ts), IsPinned: nullBool(pinned)}
		if id.Valid {
			rid := RowID(id.String)
			row.ID = &rid
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate message rows: %w", err)
	}
	return result, nil
}

// InsertMessages inserts all rows in a single transaction.
func (r *PostgresBackend) InsertMessages(ctx context.Context, rows []MessageRow) error {
	query := `INSERT INTO messages ("to", content, timestamp, is_pinned) VALUES ($1, $2, $3, $4)`
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for _, row := range rows {
			pinned := row.IsPinned != nil && *row.IsPinned
			if _, err := tx.ExecContext(ctx, query, row.To, row.Content, row.Timestamp, pinned); err != nil {
				return fmt.Errorf("failed to insert message: %w", err)
			}
		}
		return nil
	})
}

func (r *PostgresBackend) isVip(ctx context.Context, deviceID string) (bool, error) {
	var vip bool
	err := r.db.QueryRowContext(ctx, `SELECT is_vip FROM profiles WHERE id = $1`, deviceID).Scan(&vip)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check vip: %w", err)
	}
	return vip, nil
}

// DeleteMessage removes the row if the actor is VIP. Deleting an absent row
// succeeds.
func (r *PostgresBackend) DeleteMessage(ctx context.Context, actorID, id string) error {
	query := `DELETE FROM messages WHERE id = $1
		AND EXISTS (SELECT 1 FROM profiles WHERE id = $2 AND is_vip)`
	res, err := r.db.ExecContext(ctx, query, id, actorID)
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n > 0 {
		return nil
	}

	vip, err := r.isVip(ctx, actorID)
	if err != nil {
		return err
	}
	if !vip {
		return fmt.Errorf("delete message %s: %w", id, common.ErrUpgradeRequired)
	}
	return nil
}

func (r *PostgresBackend) SetPinned(ctx context.Context, actorID, id string, pinned bool) error {
	query := `UPDATE messages SET is_pinned = $1 WHERE id = $2
		AND EXISTS (SELECT 1 FROM profiles WHERE id = $3 AND is_vip)`
	res, err := r.db.ExecContext(ctx, query, pinned, id, actorID)
	if err != nil {
		return fmt.Errorf("failed to update message: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 1 {
		return nil
	}

	vip, err := r.isVip(ctx, actorID)
	if err != nil {
		return err
	}
	if !vip {
		return fmt.Errorf("pin message %s: %w", id, common.ErrUpgradeRequired)
	}
	return fmt.Errorf("message %s: %w", id, common.ErrNotFound)
}

func (r *PostgresBackend) GetProfile(ctx context.Context, deviceID string) (*ProfileRow, error) {
	query := `SELECT id, nickname, avatar, is_vip, vip_expiry FROM profiles WHERE id = $1`

	var (
		row              ProfileRow
		nickname, avatar sql.NullString
		vip              sql.NullBool
		expiry           sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx, query, deviceID).Scan(&row.ID, &nickname, &avatar, &vip, &expiry)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("profile %s: %w", deviceID, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select profile: %w", err)
	}

	row.Nickname = nullString(nickname)
	row.Avatar = nullString(avatar)
	row.IsVip = nullBool(vip)
	row.VipExpiry = nullInt64(expiry)
	return &row, nil
}

func (r *PostgresBackend) UpsertProfile(ctx context.Context, row ProfileRow) error {
	query := `
		INSERT INTO profiles (id, nickname, avatar, is_vip, vip_expiry)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id)
		DO UPDATE SET
			nickname = EXCLUDED.nickname,
			avatar = EXCLUDED.avatar,
			is_vip = EXCLUDED.is_vip,
			vip_expiry = EXCLUDED.vip_expiry`
	vip := row.IsVip != nil && *row.IsVip
	if _, err := r.db.ExecContext(ctx, query, row.ID, row.Nickname, row.Avatar, vip, row.VipExpiry); err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}
	return nil
}

func (r *PostgresBackend) Close() error {
	return r.db.Close()
}

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return &v.String
}

func nullInt64(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	return &v.Int64
}

func nullBool(v sql.NullBool) *bool {
	if !v.Valid {
		return nil
	}
	return &v.Bool
}
