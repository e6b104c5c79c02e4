package escola

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/aulaviva/aulaviva/core"
)

// Escola is a tenant: an isolated school whose users, turmas and aulas never
// mix with another escola's.
type Escola struct {
	ID        string    `json:"id" db:"id"`
	Nome      string    `json:"nome" db:"nome"`
	Cidade    string    `json:"cidade" db:"cidade"`
	UF        string    `json:"uf" db:"uf"`
	CreatedAt time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"` // UTC
}

type NewEscola struct {
	Nome   string `json:"nome" validate:"required"`
	Cidade string `json:"cidade" validate:"required"`
	UF     string `json:"uf" validate:"required,len=2,alpha"`
}

func (ne *NewEscola) Validate(validate *validator.Validate) error {
	ne.Nome = core.CleanString(ne.Nome)
	ne.Cidade = core.CleanString(ne.Cidade)
	ne.UF = strings.ToUpper(core.CleanString(ne.UF))
	return validate.Struct(ne)
}
