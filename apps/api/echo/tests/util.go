package tests

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	. "github.com/aulaviva/aulaviva/apps/api/echo"
	"github.com/aulaviva/aulaviva/core"
	"github.com/aulaviva/aulaviva/core/aula"
	"github.com/aulaviva/aulaviva/core/escola"
	"github.com/aulaviva/aulaviva/core/turma"
	"github.com/aulaviva/aulaviva/core/user"
	"github.com/aulaviva/aulaviva/services/email/dummy"
	"github.com/aulaviva/aulaviva/storage/database/dummy"
)

var (
	usrRepo    user.Repository
	escolaRepo escola.Repository
	turmaRepo  turma.Repository
	aulaRepo   aula.Repository
	mailSvc    *dummymail.Service

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
)

func setup(t *testing.T) *Server {
	t.Helper()

	conf := &core.Config{
		Env:       "TEST",
		AppName:   "AulaViva",
		TestMode:  true,
		SecretKey: []byte("secret"),

		FrontendBaseURL:           "http://localhost:3000",
		DefaultFromEmailAddr:      "noreply@localhost",
		PasswordResetTimeoutDelta: 3 * 24 * time.Hour,
		InvitationTimeoutDelta:    7 * 24 * time.Hour,

		Server: core.ServerConfig{
			JWTExpirationDelta:        7 * 24 * time.Hour,
			JWTRefreshExpirationDelta: 4 * time.Hour,
		},
		Storage: core.StorageConfig{
			Backend:  "file",
			Scheme:   "s3",
			Bucket:   "aulaviva-test",
			LocalDir: t.TempDir(),
		},
	}

	// set up DB & repos
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open(): %v", err)
	}
	usrRepo = dummydb.NewUserRepository(db)
	escolaRepo = dummydb.NewEscolaRepository(db)
	turmaRepo = dummydb.NewTurmaRepository(db)
	aulaRepo = dummydb.NewAulaRepository(db)

	// set up services
	logger := core.NopLogger{}
	mailSvc = dummymail.NewService(conf)
	usrSvc := user.NewService(conf, usrRepo, mailSvc, logger)
	escolaSvc := escola.NewService(escolaRepo)
	turmaSvc := turma.NewService(turmaRepo)
	aulaSvc := aula.NewService(conf, aulaRepo, logger)

	validate, translator := core.NewValidator()

	// set up server
	app, err := NewServer(ServerDeps{
		Conf:           conf,
		Logger:         logger,
		UserSvc:        usrSvc,
		EscolaSvc:      escolaSvc,
		TurmaSvc:       turmaSvc,
		AulaSvc:        aulaSvc,
		Validate:       validate,
		Translator:     translator,
		DisableReqLogs: true,
	})
	if err != nil {
		t.Fatalf("NewServer(): %v", err)
	}
	return app
}

func createUser(t *testing.T, name, uname, email, escolaID string, roles []string, isActive bool) user.User {
	t.Helper()
	now := time.Now().UTC()
	usr := user.User{
		EscolaID:  escolaID,
		Name:      name,
		Username:  uname,
		Email:     email,
		IsActive:  isActive,
		Roles:     roles,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword("LePassword"); err != nil {
		t.Fatalf("usr.SetPassword(): %v", err)
	}
	usr, err := usrRepo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("usrRepo.CreateUser(): %v", err)
	}
	return usr
}

func createTurma(t *testing.T, escolaID, professorID, nome string) turma.Turma {
	t.Helper()
	now := time.Now().UTC()
	tm, err := turmaRepo.CreateTurma(context.Background(), turma.Turma{
		EscolaID:    escolaID,
		ProfessorID: professorID,
		Nome:        nome,
		Serie:       "9º ano",
		AnoLetivo:   2026,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		t.Fatalf("turmaRepo.CreateTurma(): %v", err)
	}
	return tm
}

func createAula(t *testing.T, escolaID, professorID, turmaID string) aula.Aula {
	t.Helper()
	now := time.Now().UTC()
	a, err := aulaRepo.CreateAula(context.Background(), aula.Aula{
		EscolaID:    escolaID,
		ProfessorID: professorID,
		TurmaID:     turmaID,
		Data:        "2026-03-10",
		Status:      aula.StatusCreated,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		t.Fatalf("aulaRepo.CreateAula(): %v", err)
	}
	return a
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, usr user.User) string {
	claims := GetUserClaims(usr)
	token, err := GenerateToken(claims)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

// tus protocol helpers

func tusMetadata(md map[string]string) string {
	pairs := make([]string, 0, len(md))
	for key, val := range md {
		pairs = append(pairs, key+" "+base64.StdEncoding.EncodeToString([]byte(val)))
	}
	return strings.Join(pairs, ",")
}

// newTusCreateRequest builds an upload session creation request. An optional
// body makes it a creation-with-upload request.
func newTusCreateRequest(token string, size int64, md map[string]string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(http.MethodPost, "/v1/aulas/uploads", &body)
	req.Header.Set("Tus-Resumable", "1.0.0")
	req.Header.Set("Upload-Length", strconv.FormatInt(size, 10))
	if md != nil {
		req.Header.Set("Upload-Metadata", tusMetadata(md))
	}
	if len(data) > 0 {
		req.Header.Set("Content-Type", "application/offset+octet-stream")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newTusSessionRequest(method, sessionID, token string, offset int64, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, "/v1/aulas/uploads/"+sessionID, &body)
	req.Header.Set("Tus-Resumable", "1.0.0")
	if method == http.MethodPatch {
		req.Header.Set("Upload-Offset", strconv.FormatInt(offset, 10))
		req.Header.Set("Content-Type", "application/offset+octet-stream")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

// sessionIDFromLocation extracts the upload session id from a creation
// response's Location header.
func sessionIDFromLocation(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	loc := rec.Header().Get("Location")
	if loc == "" {
		t.Fatal("sessionIDFromLocation(): no Location header")
	}
	i := strings.Index(loc, "/v1/aulas/uploads/")
	if i < 0 {
		t.Fatalf("sessionIDFromLocation(): unexpected Location %q", loc)
	}
	return loc[i+len("/v1/aulas/uploads/"):]
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallList() failed: %v", err)
	}
	return data
}

// nolint
func marchallList(t *testing.T, objs ...interface{}) []byte {
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
