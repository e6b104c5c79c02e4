package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/aulaviva/aulaviva/core"
	"github.com/aulaviva/aulaviva/core/turma"
)

type turmaRepository struct {
	db *turmaTable
}

var _ turma.Repository = (*turmaRepository)(nil) // interface compliance check

func NewTurmaRepository(db *DB) turma.Repository {
	return &turmaRepository{db: db.turma}
}

func (repo *turmaRepository) CreateTurma(ctx context.Context, t turma.Turma) (turma.Turma, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	t.ID = uuid.New().String()
	repo.db.table[t.ID] = &t
	return t, nil
}

func (repo *turmaRepository) GetTurma(ctx context.Context, id, escolaID string) (turma.Turma, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if t, ok := repo.db.table[id]; ok && t.EscolaID == escolaID {
		return *t, nil
	}
	return turma.Turma{}, turma.ErrNotFound
}

func (repo *turmaRepository) QueryTurmas(ctx context.Context, escolaID string, ordering []core.DBOrdering) ([]turma.Turma, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	turmas := make([]turma.Turma, 0)
	for _, t := range repo.db.table {
		if t.EscolaID == escolaID {
			turmas = append(turmas, *t)
		}
	}
	sort.Slice(turmas, func(i, j int) bool { return turmas[i].Nome < turmas[j].Nome })
	return turmas, nil
}

func (repo *turmaRepository) UpdateTurma(ctx context.Context, t turma.Turma) (turma.Turma, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.table[t.ID]
	if !ok || orig.EscolaID != t.EscolaID {
		return turma.Turma{}, turma.ErrNotFound
	}
	orig.ProfessorID = t.ProfessorID
	orig.Nome = t.Nome
	orig.Serie = t.Serie
	orig.AnoLetivo = t.AnoLetivo
	orig.UpdatedAt = t.UpdatedAt

	repo.db.table[t.ID] = orig
	return *orig, nil
}

func (repo *turmaRepository) DeleteTurma(ctx context.Context, id, escolaID string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if t, ok := repo.db.table[id]; !ok || t.EscolaID != escolaID {
		return turma.ErrNotFound
	}
	delete(repo.db.table, id)
	return nil
}
