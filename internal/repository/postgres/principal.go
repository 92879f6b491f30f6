package postgres

import (
	"context"
	"database/sql"

	"github.com/vigilo-hq/vigilo/internal/domain/principal"
	"github.com/vigilo-hq/vigilo/internal/pkg/errors"
)

type DirectoryRepository struct {
	db     *sql.DB
	driver string
}

func NewDirectoryRepository(db *sql.DB) principal.Directory {
	return &DirectoryRepository{db: db, driver: driverOf(db)}
}

func (r *DirectoryRepository) UsersWithRole(ctx context.Context, role principal.Role) ([]principal.Principal, error) {
	query := `
		SELECT id, email, name, role FROM users WHERE role = ?
	`

	rows, err := r.db.QueryContext(ctx, rebind(r.driver, query), string(role))
	if err != nil {
		return nil, errors.Storage("Failed to query users by role", err)
	}
	defer rows.Close()

	var users []principal.Principal
	for rows.Next() {
		var p principal.Principal
		if err := rows.Scan(&p.ID, &p.Email, &p.Name, &p.Role); err != nil {
			return nil, errors.Storage("Failed to scan user", err)
		}
		users = append(users, p)
	}

	return users, rows.Err()
}

func (r *DirectoryRepository) ManagerOf(ctx context.Context, userID string) (*principal.Principal, error) {
	query := `
		SELECT m.id, m.email, m.name, m.role
		FROM users u
		JOIN users m ON m.id = u.manager_id
		WHERE u.id = ?
	`

	var p principal.Principal
	err := r.db.QueryRowContext(ctx, rebind(r.driver, query), userID).Scan(&p.ID, &p.Email, &p.Name, &p.Role)
	if err == sql.ErrNoRows {
		// No manager is a normal state, not an error
		return nil, nil
	}
	if err != nil {
		return nil, errors.Storage("Failed to look up manager", err)
	}

	return &p, nil
}

func (r *DirectoryRepository) ByID(ctx context.Context, userID string) (*principal.Principal, error) {
	query := `
		SELECT id, email, name, role FROM users WHERE id = ?
	`

	var p principal.Principal
	err := r.db.QueryRowContext(ctx, rebind(r.driver, query), userID).Scan(&p.ID, &p.Email, &p.Name, &p.Role)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("User")
	}
	if err != nil {
		return nil, errors.Storage("Failed to look up user", err)
	}

	return &p, nil
}
