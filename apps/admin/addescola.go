package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aulaviva/aulaviva/core"
	"github.com/aulaviva/aulaviva/core/escola"
)

func (cli *commandLine) addEscola(nome, cidade, uf string) error {
	now := time.Now().UTC()
	e, err := cli.escolaRepo.CreateEscola(context.Background(), escola.Escola{
		Nome:      core.CleanString(nome),
		Cidade:    core.CleanString(cidade),
		UF:        strings.ToUpper(core.CleanString(uf)),
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return err
	}
	fmt.Printf("escola %q created: %s\n", e.Nome, e.ID)
	return nil
}
