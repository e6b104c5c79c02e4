// Package dummydb provides in-memory repositories for tests and local hacking.
package dummydb

import (
	"sync"

	"github.com/aulaviva/aulaviva/core/aula"
	"github.com/aulaviva/aulaviva/core/escola"
	"github.com/aulaviva/aulaviva/core/turma"
	"github.com/aulaviva/aulaviva/core/user"
)

type (
	DB struct {
		escola *escolaTable
		user   *userTable
		turma  *turmaTable
		aula   *aulaTable
	}

	escolaTable struct {
		sync.RWMutex
		table map[string]*escola.Escola
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	turmaTable struct {
		sync.RWMutex
		table map[string]*turma.Turma
	}

	aulaTable struct {
		sync.RWMutex
		table map[string]*aula.Aula
	}
)

func Open() (*DB, error) {
	db := &DB{
		escola: &escolaTable{table: make(map[string]*escola.Escola)},
		user:   &userTable{table: make(map[string]*user.User)},
		turma:  &turmaTable{table: make(map[string]*turma.Turma)},
		aula:   &aulaTable{table: make(map[string]*aula.Aula)},
	}
	return db, nil
}
