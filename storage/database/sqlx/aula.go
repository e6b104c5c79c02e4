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

	"github.com/aulaviva/aulaviva/core"
	"github.com/aulaviva/aulaviva/core/aula"
)

const aulaColumns = "id, escola_id, professor_id, turma_id, data, status, storage_url, size_bytes, created_at, updated_at"

type aulaRepository struct {
	db *sqlx.DB
}

var _ aula.Repository = (*aulaRepository)(nil) // interface compliance check

func NewAulaRepository(db *sqlx.DB) *aulaRepository {
	return &aulaRepository{db: db}
}

type aulaRow struct {
	ID          string      `db:"id"`
	EscolaID    string      `db:"escola_id"`
	ProfessorID string      `db:"professor_id"`
	TurmaID     string      `db:"turma_id"`
	Data        string      `db:"data"`
	Status      string      `db:"status"`
	StorageURL  null.String `db:"storage_url"`
	SizeBytes   int64       `db:"size_bytes"`
	CreatedAt   time.Time   `db:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at"`
}

func (r aulaRow) unpack() aula.Aula {
	return aula.Aula{
		ID:          r.ID,
		EscolaID:    r.EscolaID,
		ProfessorID: r.ProfessorID,
		TurmaID:     r.TurmaID,
		Data:        r.Data,
		Status:      aula.Status(r.Status),
		StorageURL:  r.StorageURL.String,
		SizeBytes:   r.SizeBytes,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// trapNoRowsErr maps psql "no rows" err to aula.ErrNotFound
func (repo aulaRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return aula.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo aulaRepository) CreateAula(ctx context.Context, a aula.Aula) (aula.Aula, error) {
	a.ID = uuid.New().String()
	q := `INSERT INTO aula (` + aulaColumns + `)
	      VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := repo.db.ExecContext(ctx, q,
		a.ID, a.EscolaID, a.ProfessorID, a.TurmaID, a.Data, string(a.Status),
		null.NewString(a.StorageURL, a.StorageURL != ""), a.SizeBytes,
		a.CreatedAt.UTC(), a.UpdatedAt.UTC(),
	)
	if err != nil {
		return aula.Aula{}, errors.Wrap(err, "inserting aula")
	}
	return a, nil
}

func (repo aulaRepository) GetAula(ctx context.Context, id, escolaID string) (aula.Aula, error) {
	var row aulaRow
	q := `SELECT ` + aulaColumns + ` FROM aula WHERE id = $1 AND escola_id = $2`
	if err := repo.db.GetContext(ctx, &row, q, id, escolaID); err != nil {
		return aula.Aula{}, repo.trapNoRowsErr(err, "getting aula")
	}
	return row.unpack(), nil
}

func (repo aulaRepository) GetOwnedAula(ctx context.Context, id, escolaID, professorID string) (aula.Aula, error) {
	var row aulaRow
	q := `SELECT ` + aulaColumns + ` FROM aula WHERE id = $1 AND escola_id = $2 AND professor_id = $3`
	if err := repo.db.GetContext(ctx, &row, q, id, escolaID, professorID); err != nil {
		return aula.Aula{}, repo.trapNoRowsErr(err, "getting owned aula")
	}
	return row.unpack(), nil
}

func (repo aulaRepository) QueryAulas(ctx context.Context, escolaID string, filter *aula.QueryFilter, ordering []core.DBOrdering) ([]aula.Aula, error) {
	q := `SELECT ` + aulaColumns + ` FROM aula WHERE escola_id = $1`
	args := []interface{}{escolaID}

	if filter != nil {
		if filter.TurmaID != "" {
			args = append(args, filter.TurmaID)
			q += fmt.Sprintf(" AND turma_id = $%d", len(args))
		}
		if filter.ProfessorID != "" {
			args = append(args, filter.ProfessorID)
			q += fmt.Sprintf(" AND professor_id = $%d", len(args))
		}
		if filter.Status != "" {
			args = append(args, filter.Status)
			q += fmt.Sprintf(" AND status = $%d", len(args))
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

	if len(ordering) > 0 {
		ords := make([]string, 0, len(ordering))
		for _, ord := range ordering {
			ords = append(ords, ord.String())
		}
		q += " ORDER BY " + strings.Join(ords, ", ")
	} else {
		q += " ORDER BY created_at DESC"
	}

	var rows []aulaRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying aulas")
	}
	aulas := make([]aula.Aula, 0, len(rows))
	for _, row := range rows {
		aulas = append(aulas, row.unpack())
	}
	return aulas, nil
}

// BeginUpload is the CREATED -> UPLOAD_IN_PROGRESS transition. The status
// precondition lives in the WHERE clause so concurrent session creations
// serialize on the row; ownership + tenancy are part of the same compound
// filter, making cross-tenant writes structurally impossible.
func (repo aulaRepository) BeginUpload(ctx context.Context, id, escolaID, professorID string) (aula.Aula, error) {
	var row aulaRow
	q := `UPDATE aula SET status = $1, updated_at = $2
	      WHERE id = $3 AND escola_id = $4 AND professor_id = $5 AND status = ANY($6)
	      RETURNING ` + aulaColumns
	err := repo.db.GetContext(ctx, &row, q,
		string(aula.StatusUploadInProgress), time.Now().UTC(),
		id, escolaID, professorID,
		pq.Array([]string{string(aula.StatusCreated), string(aula.StatusUploadInProgress)}),
	)
	if err == nil {
		return row.unpack(), nil
	}
	if err != sql.ErrNoRows {
		return aula.Aula{}, errors.Wrap(err, "beginning upload")
	}

	// no row matched: missing/foreign aula vs. bad status
	if _, err := repo.GetOwnedAula(ctx, id, escolaID, professorID); err != nil {
		return aula.Aula{}, err
	}
	return aula.Aula{}, aula.ErrNotResumable
}

func (repo aulaRepository) FinishUpload(ctx context.Context, id, escolaID, storageURL string, sizeBytes int64) (aula.Aula, error) {
	var row aulaRow
	q := `UPDATE aula SET status = $1, storage_url = $2, size_bytes = $3, updated_at = $4
	      WHERE id = $5 AND escola_id = $6
	      RETURNING ` + aulaColumns
	err := repo.db.GetContext(ctx, &row, q,
		string(aula.StatusAwaitingTranscription), storageURL, sizeBytes, time.Now().UTC(),
		id, escolaID,
	)
	if err != nil {
		return aula.Aula{}, repo.trapNoRowsErr(err, "finishing upload")
	}
	return row.unpack(), nil
}

func (repo aulaRepository) DeleteAula(ctx context.Context, id, escolaID string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM aula WHERE id = $1 AND escola_id = $2`, id, escolaID)
	if err != nil {
		return errors.Wrap(err, "deleting aula")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return aula.ErrNotFound
	}
	return nil
}
