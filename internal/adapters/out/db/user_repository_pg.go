// internal/adapters/out/db/user_repository_pg.go
package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/lib/pq"

	"storefront/internal/adapters/out/db/common"
	userdom "storefront/internal/domain/user"
)

// UserRepositoryPG reads buyer profiles from PostgreSQL.
type UserRepositoryPG struct {
	DB *sql.DB
}

func NewUserRepositoryPG(db *sql.DB) *UserRepositoryPG {
	return &UserRepositoryPG{DB: db}
}

const profileSelect = `
SELECT id, COALESCE(firm_name, ''), COALESCE(city, ''), COALESCE(mobile, '')
FROM users
`

// GetByID returns (nil, nil) if not found (nil policy).
func (r *UserRepositoryPG) GetByID(ctx context.Context, id string) (*userdom.Profile, error) {
	if r == nil || r.DB == nil {
		return nil, errors.New("user_repository_pg: db is nil")
	}

	run := common.GetRunner(ctx, r.DB)
	row := run.QueryRowContext(ctx, profileSelect+`WHERE id = $1`, strings.TrimSpace(id))

	var p userdom.Profile
	if err := row.Scan(&p.ID, &p.FirmName, &p.City, &p.Mobile); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// ProfilesByIDs batch-loads profiles keyed by id. Unknown ids are absent from
// the result, never an error.
func (r *UserRepositoryPG) ProfilesByIDs(ctx context.Context, ids []string) (map[string]*userdom.Profile, error) {
	if r == nil || r.DB == nil {
		return nil, errors.New("user_repository_pg: db is nil")
	}

	out := map[string]*userdom.Profile{}
	if len(ids) == 0 {
		return out, nil
	}

	run := common.GetRunner(ctx, r.DB)
	rows, err := run.QueryContext(ctx, profileSelect+`WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var p userdom.Profile
		if err := rows.Scan(&p.ID, &p.FirmName, &p.City, &p.Mobile); err != nil {
			return nil, err
		}
		out[p.ID] = &p
	}
	return out, rows.Err()
}
