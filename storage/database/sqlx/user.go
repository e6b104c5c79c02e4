package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/aulaviva/aulaviva/core/user"
)

const userColumns = `id, escola_id, name, username, email, is_active, roles, password_hash, created_at, updated_at, last_login`

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) *userRepository {
	return &userRepository{db: db}
}

type userRow struct {
	ID           string         `db:"id"`
	EscolaID     string         `db:"escola_id"`
	Name         null.String    `db:"name"`
	Username     null.String    `db:"username"`
	Email        string         `db:"email"`
	IsActive     bool           `db:"is_active"`
	Roles        pq.StringArray `db:"roles"`
	PasswordHash null.Bytes     `db:"password_hash"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
	LastLogin    null.Time      `db:"last_login"`
}

func (r userRow) unpack() user.User {
	return user.User{
		ID:           r.ID,
		EscolaID:     r.EscolaID,
		Name:         r.Name.String,
		Username:     r.Username.String,
		Email:        r.Email,
		IsActive:     r.IsActive,
		Roles:        r.Roles,
		PasswordHash: r.PasswordHash.Bytes,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
		LastLogin:    r.LastLogin.Time,
	}
}

// trapNoRowsErr maps psql "no rows" err to user.ErrNotFound
func (repo userRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return user.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo userRepository) CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers ...user.User) error {
	exclIDs := make([]string, 0, len(excludedUsers))
	for _, usr := range excludedUsers {
		exclIDs = append(exclIDs, usr.ID)
	}

	if username != "" {
		var exists bool
		q := `SELECT EXISTS (SELECT 1 FROM "user" WHERE username = $1 AND NOT (id = ANY($2)))`
		if err := repo.db.GetContext(ctx, &exists, q, username, pq.Array(exclIDs)); err != nil {
			return errors.Wrap(err, "checking username uniqueness")
		}
		if exists {
			return user.ErrUsernameExists
		}
	}

	var exists bool
	q := `SELECT EXISTS (SELECT 1 FROM "user" WHERE email = $1 AND NOT (id = ANY($2)))`
	if err := repo.db.GetContext(ctx, &exists, q, email, pq.Array(exclIDs)); err != nil {
		return errors.Wrap(err, "checking email uniqueness")
	}
	if exists {
		return user.ErrEmailExists
	}
	return nil
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	usr.ID = uuid.New().String()
	q := `INSERT INTO "user" (` + userColumns + `)
	      VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := repo.db.ExecContext(ctx, q,
		usr.ID, usr.EscolaID,
		null.NewString(usr.Name, usr.Name != ""),
		null.NewString(usr.Username, usr.Username != ""),
		usr.Email, usr.IsActive, pq.StringArray(usr.Roles),
		null.NewBytes(usr.PasswordHash, usr.PasswordHash != nil),
		usr.CreatedAt.UTC(), usr.UpdatedAt.UTC(),
		null.NewTime(usr.LastLogin, !usr.LastLogin.IsZero()),
	)
	if err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo userRepository) QueryAllUsers(ctx context.Context, escolaID string) ([]user.User, error) {
	var rows []userRow
	q := `SELECT ` + userColumns + ` FROM "user" WHERE escola_id = $1 ORDER BY created_at DESC`
	if err := repo.db.SelectContext(ctx, &rows, q, escolaID); err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	return unpackUsers(rows), nil
}

func (repo userRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	return repo.getUserBy(ctx, "id = $1", id)
}

func (repo userRepository) GetUserByUsername(ctx context.Context, username string) (user.User, error) {
	return repo.getUserBy(ctx, "username = $1", username)
}

func (repo userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	return repo.getUserBy(ctx, "email = $1", email)
}

func (repo userRepository) GetUserByUsernameOrEmail(ctx context.Context, username string) (user.User, error) {
	return repo.getUserBy(ctx, "(username = $1 OR email = $1)", username)
}

func (repo userRepository) getUserBy(ctx context.Context, where string, arg interface{}) (user.User, error) {
	var row userRow
	q := `SELECT ` + userColumns + ` FROM "user" WHERE ` + where
	if err := repo.db.GetContext(ctx, &row, q, arg); err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "getting user")
	}
	return row.unpack(), nil
}

func (repo userRepository) FilterUsers(ctx context.Context, escolaID string, filter *user.QueryFilter) ([]user.User, error) {
	q := `SELECT ` + userColumns + ` FROM "user" WHERE escola_id = $1`
	args := []interface{}{escolaID}

	if filter != nil {
		if filter.Search != "" {
			args = append(args, "%"+filter.Search+"%")
			n := len(args)
			q += fmt.Sprintf(" AND (name ILIKE $%d OR username ILIKE $%d OR email ILIKE $%d)", n, n, n)
		}
		if len(filter.Roles) > 0 {
			args = append(args, pq.StringArray(filter.Roles))
			q += fmt.Sprintf(" AND roles && $%d", len(args))
		}
		if filter.IsActive != nil {
			args = append(args, *filter.IsActive)
			q += fmt.Sprintf(" AND is_active = $%d", len(args))
		}
		if !filter.CreatedFrom.IsZero() {
			args = append(args, filter.CreatedFrom.UTC())
			q += fmt.Sprintf(" AND created_at >= $%d", len(args))
		}
		if !filter.CreatedTo.IsZero() {
			args = append(args, filter.CreatedTo.UTC())
			q += fmt.Sprintf(" AND created_at <= $%d", len(args))
		}
	}
	q += " ORDER BY created_at DESC"

	var rows []userRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "filtering users")
	}
	return unpackUsers(rows), nil
}

// UpdateUser applies a partial update: empty fields keep their stored value.
// isActive is separate because false is a meaningful value.
func (repo userRepository) UpdateUser(ctx context.Context, usr user.User, isActive *bool) (user.User, error) {
	sets := []string{
		"name = COALESCE(NULLIF($2, ''), name)",
		"username = COALESCE(NULLIF($3, ''), username)",
		"email = COALESCE(NULLIF($4, ''), email)",
		"updated_at = $5",
	}
	args := []interface{}{usr.ID, usr.Name, usr.Username, usr.Email, time.Now().UTC()}

	if usr.Roles != nil {
		args = append(args, pq.StringArray(usr.Roles))
		sets = append(sets, fmt.Sprintf("roles = $%d", len(args)))
	}
	if usr.PasswordHash != nil {
		args = append(args, usr.PasswordHash)
		sets = append(sets, fmt.Sprintf("password_hash = $%d", len(args)))
	}
	if !usr.LastLogin.IsZero() {
		args = append(args, usr.LastLogin.UTC())
		sets = append(sets, fmt.Sprintf("last_login = $%d", len(args)))
	}
	if isActive != nil {
		args = append(args, *isActive)
		sets = append(sets, fmt.Sprintf("is_active = $%d", len(args)))
	}

	var row userRow
	q := `UPDATE "user" SET ` + strings.Join(sets, ", ") + ` WHERE id = $1 RETURNING ` + userColumns
	if err := repo.db.GetContext(ctx, &row, q, args...); err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "updating user")
	}
	return row.unpack(), nil
}

func (repo userRepository) DeleteUsersByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := repo.db.ExecContext(ctx, `DELETE FROM "user" WHERE id = ANY($1)`, pq.Array(ids))
	return errors.Wrap(err, "deleting users")
}

func unpackUsers(rows []userRow) []user.User {
	users := make([]user.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, row.unpack())
	}
	return users
}
