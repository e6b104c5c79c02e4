package escola

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("escola not found")

type (
	Repository interface {
		CreateEscola(ctx context.Context, e Escola) (Escola, error)
		GetEscolaByID(ctx context.Context, id string) (Escola, error)
		QueryAllEscolas(ctx context.Context) ([]Escola, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, ne NewEscola) (Escola, error) {
	now := time.Now().UTC()
	return svc.repo.CreateEscola(ctx, Escola{
		Nome:      ne.Nome,
		Cidade:    ne.Cidade,
		UF:        ne.UF,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (svc *Service) GetByID(ctx context.Context, id string) (Escola, error) {
	return svc.repo.GetEscolaByID(ctx, id)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Escola, error) {
	return svc.repo.QueryAllEscolas(ctx)
}
