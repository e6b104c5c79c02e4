package main

import (
	"errors"
	"flag"
	"fmt"
	"syscall"

	"github.com/jmoiron/sqlx"
	"golang.org/x/term"

	"github.com/aulaviva/aulaviva/core/escola"
	"github.com/aulaviva/aulaviva/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db         *sqlx.DB
	usrRepo    user.Repository
	escolaRepo escola.Repository
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate - apply database migrations")
	fmt.Println("  addescola -nome NOME -cidade CIDADE -uf UF - register an escola")
	fmt.Println("  adduser -escola ESCOLA_ID -email EMAIL [-username USERNAME] [-name NAME] [-admin] - add a user; password prompted")
	fmt.Println("  resetpassword -username USERNAME|EMAIL - reset user's password")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addEscolaCmd := flag.NewFlagSet("addescola", flag.ExitOnError)
	addEscolaNome := addEscolaCmd.String("nome", "", "The escola's name.")
	addEscolaCidade := addEscolaCmd.String("cidade", "", "The escola's city.")
	addEscolaUF := addEscolaCmd.String("uf", "", "The escola's two-letter state code.")

	addUserCmd := flag.NewFlagSet("adduser", flag.ExitOnError)
	addUserEscola := addUserCmd.String("escola", "", "The escola the user belongs to.")
	addUserEmail := addUserCmd.String("email", "", "The user's email.")
	addUserUname := addUserCmd.String("username", "", "The user's username.")
	addUserName := addUserCmd.String("name", "", "The user's full name.")
	addUserAdmin := addUserCmd.Bool("admin", false, "Grant all roles.")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ExitOnError)
	resetPasswordUname := resetPasswordCmd.String("username", "", "The user's username or email. The password will be prompted next.")

	switch args[1] {
	case "migrate":
		return cli.migrate()
	case "addescola":
		if err := addEscolaCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addEscolaNome == "" || *addEscolaCidade == "" || *addEscolaUF == "" {
			addEscolaCmd.Usage()
			return errHelp
		}
		return cli.addEscola(*addEscolaNome, *addEscolaCidade, *addEscolaUF)
	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addUserEscola == "" || *addUserEmail == "" {
			addUserCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		return cli.addUser(*addUserEscola, *addUserName, *addUserUname, *addUserEmail, pwd, *addUserAdmin)
	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetPasswordUname == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		return cli.resetPassword(*resetPasswordUname, pwd)
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) promptPassword() (string, error) {
	fmt.Print("Enter password:")
	pwd, err := readPasswordFunc(syscall.Stdin)
	fmt.Println()
	if err != nil {
		return "", err
	}
	if len(pwd) == 0 {
		return "", errHelp
	}
	return string(pwd), nil
}
