package dummydb

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/aulaviva/aulaviva/core"
	"github.com/aulaviva/aulaviva/core/aula"
)

type aulaRepository struct {
	db *aulaTable
}

var _ aula.Repository = (*aulaRepository)(nil) // interface compliance check

func NewAulaRepository(db *DB) aula.Repository {
	return &aulaRepository{db: db.aula}
}

func (repo *aulaRepository) CreateAula(ctx context.Context, a aula.Aula) (aula.Aula, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	a.ID = uuid.New().String()
	repo.db.table[a.ID] = &a
	return a, nil
}

func (repo *aulaRepository) GetAula(ctx context.Context, id, escolaID string) (aula.Aula, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if a, ok := repo.db.table[id]; ok && a.EscolaID == escolaID {
		return *a, nil
	}
	return aula.Aula{}, aula.ErrNotFound
}

func (repo *aulaRepository) GetOwnedAula(ctx context.Context, id, escolaID, professorID string) (aula.Aula, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if a, ok := repo.db.table[id]; ok && a.EscolaID == escolaID && a.ProfessorID == professorID {
		return *a, nil
	}
	return aula.Aula{}, aula.ErrNotFound
}

func (repo *aulaRepository) QueryAulas(ctx context.Context, escolaID string, filter *aula.QueryFilter, ordering []core.DBOrdering) ([]aula.Aula, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	aulas := make([]aula.Aula, 0)
	for _, a := range repo.db.table {
		if a.EscolaID != escolaID {
			continue
		}
		if filter != nil {
			if filter.TurmaID != "" && a.TurmaID != filter.TurmaID {
				continue
			}
			if filter.ProfessorID != "" && a.ProfessorID != filter.ProfessorID {
				continue
			}
			if filter.Status != "" && string(a.Status) != filter.Status {
				continue
			}
			if !filter.CreatedFrom.IsZero() && a.CreatedAt.Before(filter.CreatedFrom.UTC()) {
				continue
			}
			if !filter.CreatedTo.IsZero() && a.CreatedAt.After(filter.CreatedTo.UTC()) {
				continue
			}
		}
		aulas = append(aulas, *a)
	}
	sort.Slice(aulas, func(i, j int) bool { return aulas[i].CreatedAt.After(aulas[j].CreatedAt) })
	return aulas, nil
}

func (repo *aulaRepository) BeginUpload(ctx context.Context, id, escolaID, professorID string) (aula.Aula, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	a, ok := repo.db.table[id]
	if !ok || a.EscolaID != escolaID || a.ProfessorID != professorID {
		return aula.Aula{}, aula.ErrNotFound
	}
	if a.Status != aula.StatusCreated && a.Status != aula.StatusUploadInProgress {
		return aula.Aula{}, aula.ErrNotResumable
	}
	a.Status = aula.StatusUploadInProgress
	a.UpdatedAt = time.Now().UTC()

	repo.db.table[id] = a
	return *a, nil
}

func (repo *aulaRepository) FinishUpload(ctx context.Context, id, escolaID, storageURL string, sizeBytes int64) (aula.Aula, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	a, ok := repo.db.table[id]
	if !ok || a.EscolaID != escolaID {
		return aula.Aula{}, aula.ErrNotFound
	}
	a.Status = aula.StatusAwaitingTranscription
	a.StorageURL = storageURL
	a.SizeBytes = sizeBytes
	a.UpdatedAt = time.Now().UTC()

	repo.db.table[id] = a
	return *a, nil
}

func (repo *aulaRepository) DeleteAula(ctx context.Context, id, escolaID string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if a, ok := repo.db.table[id]; !ok || a.EscolaID != escolaID {
		return aula.ErrNotFound
	}
	delete(repo.db.table, id)
	return nil
}
