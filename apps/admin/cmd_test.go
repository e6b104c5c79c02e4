package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/aulaviva/aulaviva/core/user"
	"github.com/aulaviva/aulaviva/storage/database/dummy"
)

func setup(t *testing.T) *commandLine {
	t.Helper()
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open(): %v", err)
	}
	return &commandLine{
		usrRepo:    dummydb.NewUserRepository(db),
		escolaRepo: dummydb.NewEscolaRepository(db),
	}
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	var migrated bool
	migrateFunc = func(db *sqlx.DB) error {
		migrated = true
		return nil
	}

	if err := cli.run([]string{"admin", "migrate"}); err != nil {
		t.Fatalf("cli.run() unexpected error = %v", err)
	}
	if !migrated {
		t.Error("migrate was not called")
	}
}

func Test_commandLine_addEscola(t *testing.T) {
	cli := setup(t)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"addescola"}, wantErr: errHelp},
		{name: "missing uf", args: []string{"addescola", "-nome", "Colégio Teste", "-cidade", "São Paulo"}, wantErr: errHelp},
		{name: "ok", args: []string{"addescola", "-nome", "Colégio Teste", "-cidade", "São Paulo", "-uf", "sp"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	escolas, err := cli.escolaRepo.QueryAllEscolas(context.Background())
	if err != nil {
		t.Fatalf("QueryAllEscolas(): %v", err)
	}
	if len(escolas) != 1 {
		t.Fatalf("escolas = %d, want 1", len(escolas))
	}
	// the state code is normalized
	if escolas[0].UF != "SP" {
		t.Errorf("UF = %q, want %q", escolas[0].UF, "SP")
	}
}

func Test_commandLine_addUser(t *testing.T) {
	cli := setup(t)

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no args", args: []string{"adduser"}, wantErr: errHelp},
		{name: "missing email", args: []string{"adduser", "-escola", "escola-1"}, wantErr: errHelp},
		{name: "empty password", args: []string{"adduser", "-escola", "escola-1", "-email", "ana@test.test"}, wantErr: errHelp},
		{name: "ok", args: []string{"adduser", "-escola", "escola-1", "-email", "ana@test.test", "-username", "ana.prof"}, extra: extra{pwd: "LePassword"}},
		{
			name: "duplicate email", args: []string{"adduser", "-escola", "escola-1", "-email", "ana@test.test"},
			extra: extra{pwd: "LePassword"}, wantErr: user.ErrEmailExists,
		},
		{name: "admin", args: []string{"adduser", "-escola", "escola-1", "-email", "boss@test.test", "-admin"}, extra: extra{pwd: "LePassword"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	usr, err := cli.usrRepo.GetUserByEmail(context.Background(), "ana@test.test")
	if err != nil {
		t.Fatalf("GetUserByEmail(): %v", err)
	}
	if !usr.IsActive {
		t.Error("created user must be active")
	}
	if err := usr.CheckPassword("LePassword"); err != nil {
		t.Error("password was not set")
	}
	if usr.IsAdmin() {
		t.Error("user must not be admin without -admin")
	}

	boss, err := cli.usrRepo.GetUserByEmail(context.Background(), "boss@test.test")
	if err != nil {
		t.Fatalf("GetUserByEmail(): %v", err)
	}
	if !boss.IsAdmin() {
		t.Error("-admin user must be admin")
	}
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli := setup(t)

	now := time.Now().UTC()
	usr := user.User{
		EscolaID:  "escola-1",
		Name:      "Ana Prof",
		Username:  "ana.prof",
		Email:     "ana@test.test",
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword("LePassword"); err != nil {
		t.Fatalf("usr.SetPassword(): %v", err)
	}
	usr, err := cli.usrRepo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser(): %v", err)
	}

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "username but no password", args: []string{"resetpassword", "-username", "lol"}, wantErr: errHelp},
		{name: "user not found", args: []string{"resetpassword", "-username", "lol"}, extra: extra{pwd: "lol"}, wantErr: user.ErrNotFound},
		{name: "reset with username", args: []string{"resetpassword", "-username", usr.Username}, extra: extra{pwd: "lol"}},
		{name: "reset with email", args: []string{"resetpassword", "-username", usr.Email}, extra: extra{pwd: "lmao"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if err == nil {
				refreshedUsr, err := cli.usrRepo.GetUserByID(context.Background(), usr.ID)
				if err != nil {
					t.Fatalf("GetUserByID() failed, %v", err)
				}
				if bytes.Equal(refreshedUsr.PasswordHash, usr.PasswordHash) {
					t.Error("failed to update new password")
				}
			} else if err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
