package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/aulaviva/aulaviva/core/escola"
)

const escolaColumns = "id, nome, cidade, uf, created_at, updated_at"

type escolaRepository struct {
	db *sqlx.DB
}

var _ escola.Repository = (*escolaRepository)(nil) // interface compliance check

func NewEscolaRepository(db *sqlx.DB) *escolaRepository {
	return &escolaRepository{db: db}
}

func (repo escolaRepository) CreateEscola(ctx context.Context, e escola.Escola) (escola.Escola, error) {
	e.ID = uuid.New().String()
	q := `INSERT INTO escola (` + escolaColumns + `) VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := repo.db.ExecContext(ctx, q, e.ID, e.Nome, e.Cidade, e.UF, e.CreatedAt.UTC(), e.UpdatedAt.UTC())
	if err != nil {
		return escola.Escola{}, errors.Wrap(err, "inserting escola")
	}
	return e, nil
}

func (repo escolaRepository) GetEscolaByID(ctx context.Context, id string) (escola.Escola, error) {
	var e escola.Escola
	q := `SELECT ` + escolaColumns + ` FROM escola WHERE id = $1`
	if err := repo.db.GetContext(ctx, &e, q, id); err != nil {
		if err == sql.ErrNoRows {
			return escola.Escola{}, escola.ErrNotFound
		}
		return escola.Escola{}, errors.Wrap(err, "getting escola")
	}
	return e, nil
}

func (repo escolaRepository) QueryAllEscolas(ctx context.Context) ([]escola.Escola, error) {
	escolas := make([]escola.Escola, 0)
	q := `SELECT ` + escolaColumns + ` FROM escola ORDER BY nome`
	if err := repo.db.SelectContext(ctx, &escolas, q); err != nil {
		return nil, errors.Wrap(err, "querying escolas")
	}
	return escolas, nil
}
