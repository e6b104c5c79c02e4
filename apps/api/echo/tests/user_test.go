package tests

import (
	"encoding/json"
	"net/http"
	"regexp"
	"testing"

	. "github.com/aulaviva/aulaviva/apps/api/echo"
	"github.com/aulaviva/aulaviva/core/user"
)

func Test_userApi_login(t *testing.T) {
	app := setup(t)

	usr := createUser(t, "Ana Prof", "ana.prof", "ana@test.test", "escola-1", user.ProfessorRoles, true)
	naughty := createUser(t, "N Dog", "ndog", "ndog@test.test", "escola-1", user.AlunoRoles, false)

	tests := []httpTest{
		{
			name: "empty payload", body: []byte(`{}`), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"username": "this field is required",
				"password": "this field is required",
			}),
		},
		// an unknown user must look exactly like a wrong password
		{
			name: "unknown user", body: marchallObj(t, LoginRequest{Username: "who.dis", Password: "LePassword"}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "wrong password", body: marchallObj(t, LoginRequest{Username: usr.Username, Password: "nope"}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "deactivated account", body: marchallObj(t, LoginRequest{Username: naughty.Username, Password: "LePassword"}),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/users/login", tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("ok with username", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/users/login", marchallObj(t, LoginRequest{Username: usr.Username, Password: "LePassword"}))
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; wantCode %v; body %q", rec.Code, http.StatusOK, rec.Body.String())
		}
		var resp LoginResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		if resp.Token == "" {
			t.Error("token is empty")
		}
	})

	t.Run("ok with email", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/users/login", marchallObj(t, LoginRequest{Username: usr.Email, Password: "LePassword"}))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; wantCode %v; body %q", rec.Code, http.StatusOK, rec.Body.String())
		}
	})
}

func Test_userApi_invite(t *testing.T) {
	app := setup(t)

	admin := createUser(t, "Admin", "le.admin", "admin@test.test", "escola-1", []string{user.RoleAdmin}, true)
	prof := createUser(t, "Ana Prof", "ana.prof", "ana@test.test", "escola-1", user.ProfessorRoles, true)
	adminToken := getToken(t, admin)

	payload := marchallObj(t, user.Invitation{
		Name:  "Nova Prof",
		Email: "nova@test.test",
		Roles: user.ProfessorRoles,
	})

	tests := []httpTest{
		{name: "auth required", body: payload, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "admin required", body: payload, token: getToken(t, prof), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "roles above inviter's", token: adminToken, wantCode: http.StatusBadRequest,
			body:     marchallObj(t, user.Invitation{Name: "D", Email: "d@test.test", Roles: []string{user.RoleAdminDiretor}}),
			wantData: marchallObj(t, map[string]string{"roles": "not enough rights to set these roles"}),
		},
		{
			name: "email taken", token: adminToken, wantCode: http.StatusBadRequest,
			body:     marchallObj(t, user.Invitation{Name: "A", Email: prof.Email, Roles: user.ProfessorRoles}),
			wantData: marchallObj(t, map[string]string{"email": "a user with this email already exists"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/users/convite", tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("ok", func(t *testing.T) {
		mailSvc.Reset()

		req, rec := newAuthRequest(http.MethodPost, "/v1/users/convite", adminToken, payload)
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; wantCode %v; body %q", rec.Code, http.StatusCreated, rec.Body.String())
		}
		var invited user.User
		if err := json.Unmarshal(rec.Body.Bytes(), &invited); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		if invited.EscolaID != admin.EscolaID {
			t.Errorf("invited user escola = %q, want %q", invited.EscolaID, admin.EscolaID)
		}
		if invited.IsActive {
			t.Error("invited user must start deactivated")
		}

		// the invitation email carries an activation link
		if len(mailSvc.SentMessages) != 1 {
			t.Fatalf("sent messages = %d, want 1", len(mailSvc.SentMessages))
		}
		linkRe := regexp.MustCompile(`/convite\?uid=[^&\s]+&token=[^&\s]+`)
		if body := mailSvc.SentMessages[0].BodyStr; !linkRe.MatchString(body) {
			t.Errorf("no activation link in email body %q", body)
		}
	})
}

func Test_userApi_passwordReset(t *testing.T) {
	app := setup(t)
	usr := createUser(t, "Ana Prof", "ana.prof", "ana@test.test", "escola-1", user.ProfessorRoles, true)

	mailSvc.Reset()

	req, rec := newRequest(http.MethodPost, "/v1/users/password-reset", marchallObj(t, PasswordResetRequest{Email: usr.Email}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("failed! code = %v; wantCode %v; body %q", rec.Code, http.StatusOK, rec.Body.String())
	}
	if len(mailSvc.SentMessages) != 1 {
		t.Fatalf("sent messages = %d, want 1", len(mailSvc.SentMessages))
	}

	// fish the uid & token out of the emailed link
	linkRe := regexp.MustCompile(`/password-reset\?uid=([^&\s]+)&token=([^&\s]+)`)
	match := linkRe.FindStringSubmatch(mailSvc.SentMessages[0].BodyStr)
	if match == nil {
		t.Fatalf("no reset link in email body %q", mailSvc.SentMessages[0].BodyStr)
	}
	uid, token := match[1], match[2]

	body := marchallObj(t, user.ResetUserPassword{
		UID:             uid,
		Token:           token,
		Password:        "NewLePassword",
		PasswordConfirm: "NewLePassword",
	})
	req, rec = newRequest(http.MethodPost, "/v1/users/password-reset-confirm", body)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("failed! code = %v; wantCode %v; body %q", rec.Code, http.StatusOK, rec.Body.String())
	}

	// old password no longer works, the new one does
	req, rec = newRequest(http.MethodPost, "/v1/users/login", marchallObj(t, LoginRequest{Username: usr.Username, Password: "LePassword"}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("old password: code = %v; wantCode %v", rec.Code, http.StatusBadRequest)
	}
	req, rec = newRequest(http.MethodPost, "/v1/users/login", marchallObj(t, LoginRequest{Username: usr.Username, Password: "NewLePassword"}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("new password: code = %v; wantCode %v; body %q", rec.Code, http.StatusOK, rec.Body.String())
	}
}

func Test_userApi_retrieve(t *testing.T) {
	app := setup(t)

	admin := createUser(t, "Admin", "le.admin", "admin@test.test", "escola-1", user.AdminRoles, true)
	prof := createUser(t, "Ana Prof", "ana.prof", "ana@test.test", "escola-1", user.ProfessorRoles, true)
	colleague := createUser(t, "Bia Prof", "bia.prof", "bia@test.test", "escola-1", user.ProfessorRoles, true)
	outsiderAdmin := createUser(t, "Out Admin", "out.admin", "out@test.test", "escola-2", user.AdminRoles, true)

	tests := []httpTest{
		{name: "auth required", path: "/v1/users/" + prof.ID, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "own profile", path: "/v1/users/" + prof.ID, token: getToken(t, prof), wantCode: http.StatusOK, wantData: marchallObj(t, prof)},
		{name: "admin sees any user of their escola", path: "/v1/users/" + prof.ID, token: getToken(t, admin), wantCode: http.StatusOK, wantData: marchallObj(t, prof)},
		{
			name: "non-admin cannot see others", path: "/v1/users/" + colleague.ID, token: getToken(t, prof),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		// tenants never see each other's users
		{
			name: "admin of another escola", path: "/v1/users/" + prof.ID, token: getToken(t, outsiderAdmin),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
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
