package turma

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/aulaviva/aulaviva/core"
)

// Turma is a class group within an escola, taught by one professor.
type Turma struct {
	ID          string    `json:"id" db:"id"`
	EscolaID    string    `json:"escola_id" db:"escola_id"`
	ProfessorID string    `json:"professor_id" db:"professor_id"`
	Nome        string    `json:"nome" db:"nome"`
	Serie       string    `json:"serie" db:"serie"`
	AnoLetivo   int       `json:"ano_letivo" db:"ano_letivo"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"` // UTC
}

type NewTurma struct {
	ProfessorID string `json:"professor_id" validate:"required"`
	Nome        string `json:"nome" validate:"required"`
	Serie       string `json:"serie" validate:"required"`
	AnoLetivo   int    `json:"ano_letivo" validate:"required,min=2000,max=2100"`
}

func (nt *NewTurma) Validate(validate *validator.Validate) error {
	nt.ProfessorID = core.CleanString(nt.ProfessorID)
	nt.Nome = core.CleanString(nt.Nome)
	nt.Serie = core.CleanString(nt.Serie)
	return validate.Struct(nt)
}

// UpdateTurma defines what may be modified on an existing Turma.
type UpdateTurma struct {
	ProfessorID string `json:"professor_id"`
	Nome        string `json:"nome"`
	Serie       string `json:"serie"`
	AnoLetivo   int    `json:"ano_letivo" validate:"omitempty,min=2000,max=2100"`
}

func (ut *UpdateTurma) Validate(validate *validator.Validate, orig Turma) error {
	if v := core.CleanString(ut.ProfessorID); v != "" {
		ut.ProfessorID = v
	} else {
		ut.ProfessorID = orig.ProfessorID
	}
	if v := core.CleanString(ut.Nome); v != "" {
		ut.Nome = v
	} else {
		ut.Nome = orig.Nome
	}
	if v := core.CleanString(ut.Serie); v != "" {
		ut.Serie = v
	} else {
		ut.Serie = orig.Serie
	}
	if ut.AnoLetivo == 0 {
		ut.AnoLetivo = orig.AnoLetivo
	}
	return validate.Struct(ut)
}
