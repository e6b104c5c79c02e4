package tests

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"testing"

	"github.com/aulaviva/aulaviva/core/aula"
	"github.com/aulaviva/aulaviva/core/upload"
	"github.com/aulaviva/aulaviva/core/user"
)

func uploadMeta(escolaID, professorID, turmaID, aulaID string) map[string]string {
	return map[string]string{
		upload.MetaKeyEscolaID:    escolaID,
		upload.MetaKeyProfessorID: professorID,
		upload.MetaKeyTurmaID:     turmaID,
		upload.MetaKeyAulaID:      aulaID,
		upload.MetaKeyData:        "2026-03-10",
		upload.MetaKeyFiletype:    "audio/mpeg",
	}
}

func TestCreateUploadSession(t *testing.T) {
	app := setup(t)
	ctx := context.Background()

	prof := createUser(t, "Ana Prof", "ana.prof", "ana@test.test", "escola-1", user.ProfessorRoles, true)
	colleague := createUser(t, "Bia Prof", "bia.prof", "bia@test.test", "escola-1", user.ProfessorRoles, true)
	profToken := getToken(t, prof)

	tm := createTurma(t, "escola-1", prof.ID, "Turma A")
	a := createAula(t, "escola-1", prof.ID, tm.ID)
	colleagueAula := createAula(t, "escola-1", colleague.ID, tm.ID)

	// an aula whose recording already landed
	done := createAula(t, "escola-1", prof.ID, tm.ID)
	if _, err := aulaRepo.FinishUpload(ctx, done.ID, "escola-1", "s3://aulaviva-test/done.mp3", 10); err != nil {
		t.Fatalf("aulaRepo.FinishUpload(): %v", err)
	}

	meta := uploadMeta("escola-1", prof.ID, tm.ID, a.ID)
	withKey := func(key, val string) map[string]string {
		md := uploadMeta("escola-1", prof.ID, tm.ID, a.ID)
		md[key] = val
		return md
	}
	without := func(key string) map[string]string {
		md := uploadMeta("escola-1", prof.ID, tm.ID, a.ID)
		delete(md, key)
		return md
	}

	tests := []struct {
		name     string
		token    string
		size     int64
		md       map[string]string
		wantCode int
	}{
		{name: "missing token", size: 1024, md: meta, wantCode: http.StatusUnauthorized},
		{name: "no metadata", token: profToken, size: 1024, wantCode: http.StatusBadRequest},
		{name: "missing aula id", token: profToken, size: 1024, md: without(upload.MetaKeyAulaID), wantCode: http.StatusBadRequest},
		{name: "missing data", token: profToken, size: 1024, md: without(upload.MetaKeyData), wantCode: http.StatusBadRequest},
		{name: "unsupported format", token: profToken, size: 1024, md: withKey(upload.MetaKeyFiletype, "audio/ogg"), wantCode: http.StatusUnsupportedMediaType},
		{name: "empty file", token: profToken, size: 0, md: meta, wantCode: http.StatusBadRequest},
		{name: "file too large", token: profToken, size: upload.MaxUploadBytes + 1, md: meta, wantCode: http.StatusRequestEntityTooLarge},
		{name: "impersonated professor", token: profToken, size: 1024, md: withKey(upload.MetaKeyProfessorID, colleague.ID), wantCode: http.StatusForbidden},
		{name: "foreign escola", token: profToken, size: 1024, md: withKey(upload.MetaKeyEscolaID, "escola-2"), wantCode: http.StatusForbidden},
		{name: "unknown aula", token: profToken, size: 1024, md: withKey(upload.MetaKeyAulaID, "nope"), wantCode: http.StatusNotFound},
		{name: "aula owned by a colleague", token: profToken, size: 1024, md: withKey(upload.MetaKeyAulaID, colleagueAula.ID), wantCode: http.StatusNotFound},
		{name: "aula already uploaded", token: profToken, size: 1024, md: withKey(upload.MetaKeyAulaID, done.ID), wantCode: http.StatusConflict},
		{name: "ok", token: profToken, size: 1024, md: meta, wantCode: http.StatusCreated},
		// retried session creations succeed
		{name: "ok again", token: profToken, size: 1024, md: meta, wantCode: http.StatusCreated},
		{name: "ok at size limit", token: profToken, size: upload.MaxUploadBytes, md: meta, wantCode: http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newTusCreateRequest(tt.token, tt.size, tt.md)
			app.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("failed! code = %v; wantCode %v; body %q", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantCode == http.StatusCreated {
				id := sessionIDFromLocation(t, rec)
				if prefix := "escola-1/" + prof.ID + "/"; !strings.HasPrefix(id, prefix) {
					t.Errorf("session id = %q, want prefix %q", id, prefix)
				}
			}
		})
	}

	// the only touched aula is now mid-upload; the others are untouched
	got, err := aulaRepo.GetAula(ctx, a.ID, "escola-1")
	if err != nil {
		t.Fatalf("aulaRepo.GetAula(): %v", err)
	}
	if got.Status != aula.StatusUploadInProgress {
		t.Errorf("aula status = %v, want %v", got.Status, aula.StatusUploadInProgress)
	}
	if got, _ := aulaRepo.GetAula(ctx, colleagueAula.ID, "escola-1"); got.Status != aula.StatusCreated {
		t.Errorf("colleague's aula status = %v, want %v", got.Status, aula.StatusCreated)
	}
}

func TestUploadInOneRequest(t *testing.T) {
	app := setup(t)
	ctx := context.Background()

	prof := createUser(t, "Ana Prof", "ana.prof", "ana@test.test", "escola-1", user.ProfessorRoles, true)
	profToken := getToken(t, prof)
	tm := createTurma(t, "escola-1", prof.ID, "Turma A")
	a := createAula(t, "escola-1", prof.ID, tm.ID)

	audio := []byte("fake mp3 bytes, honest")
	meta := uploadMeta("escola-1", prof.ID, tm.ID, a.ID)

	req, rec := newTusCreateRequest(profToken, int64(len(audio)), meta, audio)
	app.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("failed! code = %v; wantCode %v; body %q", rec.Code, http.StatusCreated, rec.Body.String())
	}
	if got, want := rec.Header().Get("Upload-Offset"), strconv.Itoa(len(audio)); got != want {
		t.Errorf("Upload-Offset = %q, want %q", got, want)
	}
	sessionID := sessionIDFromLocation(t, rec)

	got, err := aulaRepo.GetAula(ctx, a.ID, "escola-1")
	if err != nil {
		t.Fatalf("aulaRepo.GetAula(): %v", err)
	}
	if got.Status != aula.StatusAwaitingTranscription {
		t.Errorf("aula status = %v, want %v", got.Status, aula.StatusAwaitingTranscription)
	}
	if want := "s3://aulaviva-test/" + sessionID; got.StorageURL != want {
		t.Errorf("aula storage URL = %q, want %q", got.StorageURL, want)
	}
	if got.SizeBytes != int64(len(audio)) {
		t.Errorf("aula size = %d, want %d", got.SizeBytes, len(audio))
	}

	// no new session may start once the recording landed
	req, rec = newTusCreateRequest(profToken, int64(len(audio)), meta)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusConflict {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, http.StatusConflict)
	}
}

func TestUploadInChunks(t *testing.T) {
	app := setup(t)
	ctx := context.Background()

	prof := createUser(t, "Ana Prof", "ana.prof", "ana@test.test", "escola-1", user.ProfessorRoles, true)
	profToken := getToken(t, prof)
	tm := createTurma(t, "escola-1", prof.ID, "Turma A")
	a := createAula(t, "escola-1", prof.ID, tm.ID)

	audio := []byte("fake mp3 bytes, chunked edition")
	chunk1, chunk2 := audio[:12], audio[12:]

	req, rec := newTusCreateRequest(profToken, int64(len(audio)), uploadMeta("escola-1", prof.ID, tm.ID, a.ID))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("failed! code = %v; wantCode %v; body %q", rec.Code, http.StatusCreated, rec.Body.String())
	}
	sessionID := sessionIDFromLocation(t, rec)

	req, rec = newTusSessionRequest(http.MethodPatch, sessionID, profToken, 0, chunk1)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("failed! code = %v; wantCode %v; body %q", rec.Code, http.StatusNoContent, rec.Body.String())
	}
	if got, want := rec.Header().Get("Upload-Offset"), strconv.Itoa(len(chunk1)); got != want {
		t.Errorf("Upload-Offset = %q, want %q", got, want)
	}

	// upload is incomplete; the aula must not move yet
	if got, _ := aulaRepo.GetAula(ctx, a.ID, "escola-1"); got.Status != aula.StatusUploadInProgress {
		t.Fatalf("aula status = %v, want %v", got.Status, aula.StatusUploadInProgress)
	}

	req, rec = newTusSessionRequest(http.MethodPatch, sessionID, profToken, int64(len(chunk1)), chunk2)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("failed! code = %v; wantCode %v; body %q", rec.Code, http.StatusNoContent, rec.Body.String())
	}

	got, err := aulaRepo.GetAula(ctx, a.ID, "escola-1")
	if err != nil {
		t.Fatalf("aulaRepo.GetAula(): %v", err)
	}
	if got.Status != aula.StatusAwaitingTranscription {
		t.Errorf("aula status = %v, want %v", got.Status, aula.StatusAwaitingTranscription)
	}
	if got.SizeBytes != int64(len(audio)) {
		t.Errorf("aula size = %d, want %d", got.SizeBytes, len(audio))
	}
}

func TestUploadSessionAccess(t *testing.T) {
	app := setup(t)

	prof := createUser(t, "Ana Prof", "ana.prof", "ana@test.test", "escola-1", user.ProfessorRoles, true)
	colleague := createUser(t, "Bia Prof", "bia.prof", "bia@test.test", "escola-1", user.ProfessorRoles, true)
	outsider := createUser(t, "Caio Prof", "caio.prof", "caio@test.test", "escola-2", user.ProfessorRoles, true)
	profToken := getToken(t, prof)

	tm := createTurma(t, "escola-1", prof.ID, "Turma A")
	a := createAula(t, "escola-1", prof.ID, tm.ID)

	req, rec := newTusCreateRequest(profToken, 1024, uploadMeta("escola-1", prof.ID, tm.ID, a.ID))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("failed! code = %v; wantCode %v; body %q", rec.Code, http.StatusCreated, rec.Body.String())
	}
	sessionID := sessionIDFromLocation(t, rec)

	tests := []struct {
		name     string
		method   string
		session  string
		token    string
		wantCode int
	}{
		{name: "owner heads their session", method: http.MethodHead, session: sessionID, token: profToken, wantCode: http.StatusOK},
		{name: "missing token", method: http.MethodHead, session: sessionID, wantCode: http.StatusUnauthorized},
		{name: "colleague is not the owner", method: http.MethodHead, session: sessionID, token: getToken(t, colleague), wantCode: http.StatusForbidden},
		{name: "another escola is not the owner", method: http.MethodHead, session: sessionID, token: getToken(t, outsider), wantCode: http.StatusForbidden},
		{name: "unknown session", method: http.MethodHead, session: "escola-1/" + prof.ID + "/nope.mp3", token: profToken, wantCode: http.StatusNotFound},
		{name: "colleague cannot write", method: http.MethodPatch, session: sessionID, token: getToken(t, colleague), wantCode: http.StatusForbidden},
		{name: "colleague cannot delete", method: http.MethodDelete, session: sessionID, token: getToken(t, colleague), wantCode: http.StatusForbidden},
		{name: "owner deletes their session", method: http.MethodDelete, session: sessionID, token: profToken, wantCode: http.StatusNoContent},
		{name: "deleted session is gone", method: http.MethodHead, session: sessionID, token: profToken, wantCode: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newTusSessionRequest(tt.method, tt.session, tt.token, 0)
			app.ServeHTTP(rec, req)
			if rec.Code != tt.wantCode {
				t.Errorf("failed! code = %v; wantCode %v; body %q", rec.Code, tt.wantCode, rec.Body.String())
			}
		})
	}
}
