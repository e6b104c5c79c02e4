package turma

import (
	"context"
	"errors"
	"time"

	"github.com/aulaviva/aulaviva/core"
)

var ErrNotFound = errors.New("turma not found")

type (
	Repository interface {
		CreateTurma(ctx context.Context, t Turma) (Turma, error)
		GetTurma(ctx context.Context, id, escolaID string) (Turma, error)
		QueryTurmas(ctx context.Context, escolaID string, ordering []core.DBOrdering) ([]Turma, error)
		UpdateTurma(ctx context.Context, t Turma) (Turma, error)
		DeleteTurma(ctx context.Context, id, escolaID string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, escolaID string, nt NewTurma) (Turma, error) {
	now := time.Now().UTC()
	return svc.repo.CreateTurma(ctx, Turma{
		EscolaID:    escolaID,
		ProfessorID: nt.ProfessorID,
		Nome:        nt.Nome,
		Serie:       nt.Serie,
		AnoLetivo:   nt.AnoLetivo,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

func (svc *Service) GetByID(ctx context.Context, id, escolaID string) (Turma, error) {
	return svc.repo.GetTurma(ctx, id, escolaID)
}

func (svc *Service) Query(ctx context.Context, escolaID string, ordering []core.DBOrdering) ([]Turma, error) {
	return svc.repo.QueryTurmas(ctx, escolaID, ordering)
}

func (svc *Service) Update(ctx context.Context, id, escolaID string, ut UpdateTurma) (Turma, error) {
	return svc.repo.UpdateTurma(ctx, Turma{
		ID:          id,
		EscolaID:    escolaID,
		ProfessorID: ut.ProfessorID,
		Nome:        ut.Nome,
		Serie:       ut.Serie,
		AnoLetivo:   ut.AnoLetivo,
		UpdatedAt:   time.Now().UTC(),
	})
}

func (svc *Service) Delete(ctx context.Context, id, escolaID string) error {
	return svc.repo.DeleteTurma(ctx, id, escolaID)
}
