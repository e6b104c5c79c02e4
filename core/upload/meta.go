package upload

import "strings"

// MaxUploadBytes is the largest accepted declared upload size (2 GiB).
const MaxUploadBytes int64 = 2 * 1024 * 1024 * 1024

// Metadata keys declared by the client when it creates an upload session.
const (
	MetaKeyEscolaID    = "escola_id"
	MetaKeyProfessorID = "professor_id"
	MetaKeyTurmaID     = "turma_id"
	MetaKeyAulaID      = "aula_id"
	MetaKeyData        = "data"
	MetaKeyFiletype    = "filetype"
)

// AllowedFiletypes maps the accepted audio MIME types to the file extension
// used in derived object keys.
var AllowedFiletypes = map[string]string{
	"audio/mpeg":  "mp3",
	"audio/wav":   "wav",
	"audio/x-m4a": "m4a",
	"audio/webm":  "webm",
}

// SessionMeta is the validated, typed form of the metadata bag a client
// attaches to an upload session. It is produced exactly once, at
// session-creation time; every later call site works off this record instead
// of re-parsing loose key/value pairs.
type SessionMeta struct {
	EscolaID    string
	ProfessorID string
	TurmaID     string
	AulaID      string
	Data        string // declared class date; passed through unvalidated
	Filetype    string
}

// ParseMeta validates the untyped metadata bag declared at session creation.
// Field presence is checked before the format so each failure mode stays
// distinct.
func ParseMeta(md map[string]string) (SessionMeta, error) {
	meta := SessionMeta{
		EscolaID:    strings.TrimSpace(md[MetaKeyEscolaID]),
		ProfessorID: strings.TrimSpace(md[MetaKeyProfessorID]),
		TurmaID:     strings.TrimSpace(md[MetaKeyTurmaID]),
		AulaID:      strings.TrimSpace(md[MetaKeyAulaID]),
		Data:        strings.TrimSpace(md[MetaKeyData]),
		Filetype:    strings.TrimSpace(md[MetaKeyFiletype]),
	}
	if meta.EscolaID == "" || meta.ProfessorID == "" || meta.TurmaID == "" ||
		meta.AulaID == "" || meta.Data == "" || meta.Filetype == "" {
		return SessionMeta{}, ErrMissingMetadata
	}
	if _, ok := AllowedFiletypes[meta.Filetype]; !ok {
		return SessionMeta{}, ErrUnsupportedFormat
	}
	return meta, nil
}

// ValidateSize checks the declared total size. Exactly MaxUploadBytes is
// accepted; one byte more is not.
func ValidateSize(size int64) error {
	if size <= 0 {
		return ErrEmptyFile
	}
	if size > MaxUploadBytes {
		return ErrFileTooLarge
	}
	return nil
}

// Map echoes the accepted metadata back in the protocol server's key/value
// form so it can be attached to the session.
func (m SessionMeta) Map() map[string]string {
	return map[string]string{
		MetaKeyEscolaID:    m.EscolaID,
		MetaKeyProfessorID: m.ProfessorID,
		MetaKeyTurmaID:     m.TurmaID,
		MetaKeyAulaID:      m.AulaID,
		MetaKeyData:        m.Data,
		MetaKeyFiletype:    m.Filetype,
	}
}
