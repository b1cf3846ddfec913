package records

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s PostgresStore) Add(ctx context.Context, r Record) error {
	_, err := s.db.Exec(
		ctx,
		`INSERT INTO game_record (
			session_id, width, height, mine_count, won, started_at, ended_at
		)
		VALUES (
			@session_id, @width, @height, @mine_count, @won, @started_at, @ended_at
		);`,
		pgx.NamedArgs{
			"session_id": r.SessionID,
			"width":      r.Width,
			"height":     r.Height,
			"mine_count": r.MineCount,
			"won":        r.Won,
			"started_at": r.StartedAt,
			"ended_at":   r.EndedAt,
		},
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgerrcode.IsIntegrityConstraintViolation(pgErr.Code) {
		return fmt.Errorf("%w: %s", ErrDuplicate, r.SessionID)
	}
	return err
}

func (f Filter) whereClause() (string, pgx.NamedArgs) {
	clauses := []string{"won = true"}
	args := pgx.NamedArgs{"limit": f.limit()}
	if f.GameParams != nil {
		clauses = append(
			clauses,
			"width = @width",
			"height = @height",
			"mine_count = @mine_count",
		)
		args["width"] = f.GameParams.Width
		args["height"] = f.GameParams.Height
		args["mine_count"] = f.GameParams.MineCount
	}
	return strings.Join(clauses, " AND "), args
}

func (s PostgresStore) Highscores(ctx context.Context, f Filter) ([]Highscore, error) {
	where, args := f.whereClause()
	rows, err := s.db.Query(
		ctx,
		`SELECT
			session_id,
			width,
			height,
			mine_count,
			(
				extract('epoch' from ended_at) -
				extract('epoch' from started_at)
			) * 1000 playtime_ms
		FROM game_record
		WHERE `+where+`
		ORDER BY playtime_ms
		LIMIT @limit;`,
		args,
	)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[Highscore])
}
