package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/aulaviva/aulaviva/core/escola"
)

type escolaRepository struct {
	db *escolaTable
}

var _ escola.Repository = (*escolaRepository)(nil) // interface compliance check

func NewEscolaRepository(db *DB) escola.Repository {
	return &escolaRepository{db: db.escola}
}

func (repo *escolaRepository) CreateEscola(ctx context.Context, e escola.Escola) (escola.Escola, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	e.ID = uuid.New().String()
	repo.db.table[e.ID] = &e
	return e, nil
}

func (repo *escolaRepository) GetEscolaByID(ctx context.Context, id string) (escola.Escola, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if e, ok := repo.db.table[id]; ok {
		return *e, nil
	}
	return escola.Escola{}, escola.ErrNotFound
}

func (repo *escolaRepository) QueryAllEscolas(ctx context.Context) ([]escola.Escola, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	escolas := make([]escola.Escola, 0, len(repo.db.table))
	for _, e := range repo.db.table {
		escolas = append(escolas, *e)
	}
	sort.Slice(escolas, func(i, j int) bool { return escolas[i].Nome < escolas[j].Nome })
	return escolas, nil
}
