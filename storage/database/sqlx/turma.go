package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/aulaviva/aulaviva/core"
	"github.com/aulaviva/aulaviva/core/turma"
)

const turmaColumns = "id, escola_id, professor_id, nome, serie, ano_letivo, created_at, updated_at"

type turmaRepository struct {
	db *sqlx.DB
}

var _ turma.Repository = (*turmaRepository)(nil) // interface compliance check

func NewTurmaRepository(db *sqlx.DB) *turmaRepository {
	return &turmaRepository{db: db}
}

// trapNoRowsErr maps psql "no rows" err to turma.ErrNotFound
func (repo turmaRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return turma.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo turmaRepository) CreateTurma(ctx context.Context, t turma.Turma) (turma.Turma, error) {
	t.ID = uuid.New().String()
	q := `INSERT INTO turma (` + turmaColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := repo.db.ExecContext(ctx, q,
		t.ID, t.EscolaID, t.ProfessorID, t.Nome, t.Serie, t.AnoLetivo,
		t.CreatedAt.UTC(), t.UpdatedAt.UTC(),
	)
	if err != nil {
		return turma.Turma{}, errors.Wrap(err, "inserting turma")
	}
	return t, nil
}

func (repo turmaRepository) GetTurma(ctx context.Context, id, escolaID string) (turma.Turma, error) {
	var t turma.Turma
	q := `SELECT ` + turmaColumns + ` FROM turma WHERE id = $1 AND escola_id = $2`
	if err := repo.db.GetContext(ctx, &t, q, id, escolaID); err != nil {
		return turma.Turma{}, repo.trapNoRowsErr(err, "getting turma")
	}
	return t, nil
}

func (repo turmaRepository) QueryTurmas(ctx context.Context, escolaID string, ordering []core.DBOrdering) ([]turma.Turma, error) {
	q := `SELECT ` + turmaColumns + ` FROM turma WHERE escola_id = $1`
	if len(ordering) > 0 {
		ords := make([]string, 0, len(ordering))
		for _, ord := range ordering {
			ords = append(ords, ord.String())
		}
		q += " ORDER BY " + strings.Join(ords, ", ")
	} else {
		q += " ORDER BY nome"
	}

	turmas := make([]turma.Turma, 0)
	if err := repo.db.SelectContext(ctx, &turmas, q, escolaID); err != nil {
		return nil, errors.Wrap(err, "querying turmas")
	}
	return turmas, nil
}

func (repo turmaRepository) UpdateTurma(ctx context.Context, t turma.Turma) (turma.Turma, error) {
	var updated turma.Turma
	q := `UPDATE turma SET professor_id = $1, nome = $2, serie = $3, ano_letivo = $4, updated_at = $5
	      WHERE id = $6 AND escola_id = $7
	      RETURNING ` + turmaColumns
	err := repo.db.GetContext(ctx, &updated, q,
		t.ProfessorID, t.Nome, t.Serie, t.AnoLetivo, t.UpdatedAt.UTC(),
		t.ID, t.EscolaID,
	)
	if err != nil {
		return turma.Turma{}, repo.trapNoRowsErr(err, "updating turma")
	}
	return updated, nil
}

func (repo turmaRepository) DeleteTurma(ctx context.Context, id, escolaID string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM turma WHERE id = $1 AND escola_id = $2`, id, escolaID)
	if err != nil {
		return errors.Wrap(err, "deleting turma")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return turma.ErrNotFound
	}
	return nil
}
