package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/aulaviva/aulaviva/core/aula"
	"github.com/aulaviva/aulaviva/core/user"
)

func Test_aulaApi_create(t *testing.T) {
	app := setup(t)

	prof := createUser(t, "Ana Prof", "ana.prof", "ana@test.test", "escola-1", user.ProfessorRoles, true)
	aluno := createUser(t, "Zé Aluno", "ze.aluno", "ze@test.test", "escola-1", user.AlunoRoles, true)
	tm := createTurma(t, "escola-1", prof.ID, "Turma A")

	payload := marchallObj(t, aula.NewAula{TurmaID: tm.ID, Data: "2026-03-10"})

	tests := []httpTest{
		{name: "auth required", body: payload, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "professor required", body: payload, token: getToken(t, aluno), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "empty payload", body: []byte(`{}`), token: getToken(t, prof), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"turma_id": "this field is required",
				"data":     "this field is required",
			}),
		},
		{
			name: "bad date", body: marchallObj(t, aula.NewAula{TurmaID: tm.ID, Data: "10/03/2026"}),
			token: getToken(t, prof), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"data": "data does not match the 2006-01-02 format"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/aulas", tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("ok", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/aulas", getToken(t, prof), payload)
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; wantCode %v; body %q", rec.Code, http.StatusCreated, rec.Body.String())
		}
		var a aula.Aula
		if err := json.Unmarshal(rec.Body.Bytes(), &a); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		if a.Status != aula.StatusCreated {
			t.Errorf("status = %v, want %v", a.Status, aula.StatusCreated)
		}
		// owner and tenant come from the token, never from the payload
		if a.ProfessorID != prof.ID {
			t.Errorf("professor = %q, want %q", a.ProfessorID, prof.ID)
		}
		if a.EscolaID != prof.EscolaID {
			t.Errorf("escola = %q, want %q", a.EscolaID, prof.EscolaID)
		}
	})
}

func Test_aulaApi_query(t *testing.T) {
	app := setup(t)

	admin := createUser(t, "Admin", "le.admin", "admin@test.test", "escola-1", []string{user.RoleAdmin}, true)
	prof := createUser(t, "Ana Prof", "ana.prof", "ana@test.test", "escola-1", user.ProfessorRoles, true)
	colleague := createUser(t, "Bia Prof", "bia.prof", "bia@test.test", "escola-1", user.ProfessorRoles, true)
	outsider := createUser(t, "Caio Prof", "caio.prof", "caio@test.test", "escola-2", user.ProfessorRoles, true)

	tm := createTurma(t, "escola-1", prof.ID, "Turma A")
	mine := createAula(t, "escola-1", prof.ID, tm.ID)
	theirs := createAula(t, "escola-1", colleague.ID, tm.ID)

	empty := marchallList(t, []interface{}{}...)

	tests := []httpTest{
		{name: "auth required", path: "/v1/aulas", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		// professors only ever see their own aulas
		{name: "professor", path: "/v1/aulas", token: getToken(t, prof), wantCode: http.StatusOK, wantData: marchallList(t, mine)},
		{name: "admin sees the whole escola", path: "/v1/aulas", token: getToken(t, admin), wantCode: http.StatusOK, wantData: marchallList(t, mine, theirs)},
		{name: "another escola sees nothing", path: "/v1/aulas", token: getToken(t, outsider), wantCode: http.StatusOK, wantData: empty},
		{
			name: "admin filter by professor", path: "/v1/aulas?professor_id=" + colleague.ID, token: getToken(t, admin),
			wantCode: http.StatusOK, wantData: marchallList(t, theirs),
		},
		{
			name: "filter by status (empty)", path: "/v1/aulas?status=completed", token: getToken(t, prof),
			wantCode: http.StatusOK, wantData: empty,
		},
		{
			name: "filter by status (found)", path: "/v1/aulas?status=created", token: getToken(t, prof),
			wantCode: http.StatusOK, wantData: marchallList(t, mine),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_aulaApi_retrieve(t *testing.T) {
	app := setup(t)

	admin := createUser(t, "Admin", "le.admin", "admin@test.test", "escola-1", []string{user.RoleAdmin}, true)
	prof := createUser(t, "Ana Prof", "ana.prof", "ana@test.test", "escola-1", user.ProfessorRoles, true)
	colleague := createUser(t, "Bia Prof", "bia.prof", "bia@test.test", "escola-1", user.ProfessorRoles, true)
	outsiderAdmin := createUser(t, "Out Admin", "out.admin", "out@test.test", "escola-2", []string{user.RoleAdmin}, true)

	tm := createTurma(t, "escola-1", prof.ID, "Turma A")
	a := createAula(t, "escola-1", prof.ID, tm.ID)

	notFound := marchallObj(t, httpErr{Error: "not found"})

	tests := []httpTest{
		{name: "auth required", path: "/v1/aulas/" + a.ID, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "owner", path: "/v1/aulas/" + a.ID, token: getToken(t, prof), wantCode: http.StatusOK, wantData: marchallObj(t, a)},
		{name: "admin", path: "/v1/aulas/" + a.ID, token: getToken(t, admin), wantCode: http.StatusOK, wantData: marchallObj(t, a)},
		// a foreign aula is indistinguishable from a missing one
		{name: "colleague", path: "/v1/aulas/" + a.ID, token: getToken(t, colleague), wantCode: http.StatusNotFound, wantData: notFound},
		{name: "admin of another escola", path: "/v1/aulas/" + a.ID, token: getToken(t, outsiderAdmin), wantCode: http.StatusNotFound, wantData: notFound},
		{name: "unknown aula", path: "/v1/aulas/nope", token: getToken(t, prof), wantCode: http.StatusNotFound, wantData: notFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_aulaApi_destroy(t *testing.T) {
	app := setup(t)

	admin := createUser(t, "Admin", "le.admin", "admin@test.test", "escola-1", []string{user.RoleAdmin}, true)
	prof := createUser(t, "Ana Prof", "ana.prof", "ana@test.test", "escola-1", user.ProfessorRoles, true)

	tm := createTurma(t, "escola-1", prof.ID, "Turma A")
	a := createAula(t, "escola-1", prof.ID, tm.ID)

	t.Run("admin required", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/aulas/"+a.ID, getToken(t, prof))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Errorf("failed! code = %v; wantCode %v", rec.Code, http.StatusForbidden)
		}
	})

	t.Run("ok", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/aulas/"+a.ID, getToken(t, admin))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("failed! code = %v; wantCode %v; body %q", rec.Code, http.StatusNoContent, rec.Body.String())
		}

		req, rec = newAuthRequest(http.MethodGet, "/v1/aulas/"+a.ID, getToken(t, admin))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Errorf("failed! code = %v; wantCode %v", rec.Code, http.StatusNotFound)
		}
	})
}
