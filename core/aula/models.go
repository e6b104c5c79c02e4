package aula

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/aulaviva/aulaviva/core"
)

// Status is the processing state of an aula's recording.
type Status string

const (
	StatusCreated               Status = "CREATED"
	StatusUploadInProgress      Status = "UPLOAD_IN_PROGRESS"
	StatusAwaitingTranscription Status = "AWAITING_TRANSCRIPTION"
	StatusTranscribing          Status = "TRANSCRIBING"
	StatusAnalyzing             Status = "ANALYZING"
	StatusCompleted             Status = "COMPLETED"
	StatusFailed                Status = "FAILED"
)

// transitions is the lifecycle: there is no way back to CREATED, and a failed
// validation leaves the status untouched (the session simply never starts).
// UPLOAD_IN_PROGRESS -> UPLOAD_IN_PROGRESS keeps retried session creations
// idempotent.
var transitions = map[Status][]Status{
	StatusCreated:               {StatusUploadInProgress},
	StatusUploadInProgress:      {StatusUploadInProgress, StatusAwaitingTranscription, StatusFailed},
	StatusAwaitingTranscription: {StatusTranscribing, StatusFailed},
	StatusTranscribing:          {StatusAnalyzing, StatusFailed},
	StatusAnalyzing:             {StatusCompleted, StatusFailed},
}

func (s Status) IsValid() bool {
	switch s {
	case StatusCreated, StatusUploadInProgress, StatusAwaitingTranscription,
		StatusTranscribing, StatusAnalyzing, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// CanTransitionTo reports whether s -> next is a legal lifecycle move.
func (s Status) CanTransitionTo(next Status) bool {
	for _, t := range transitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// Aula is a recorded class session. EscolaID and ProfessorID are immutable
// after creation and must match every upload session's declared metadata.
type Aula struct {
	ID          string    `json:"id" db:"id"`
	EscolaID    string    `json:"escola_id" db:"escola_id"`
	ProfessorID string    `json:"professor_id" db:"professor_id"`
	TurmaID     string    `json:"turma_id" db:"turma_id"`
	Data        string    `json:"data" db:"data"` // class date as declared by the client
	Status      Status    `json:"status" db:"status"`
	StorageURL  string    `json:"storage_url,omitempty" db:"storage_url"`
	SizeBytes   int64     `json:"size_bytes,omitempty" db:"size_bytes"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"` // UTC
}

// NewAula contains information needed to register an aula before its audio
// is uploaded.
type NewAula struct {
	TurmaID string `json:"turma_id" validate:"required"`
	Data    string `json:"data" validate:"required,datetime=2006-01-02"`
}

func (na *NewAula) Validate(validate *validator.Validate) error {
	na.TurmaID = core.CleanString(na.TurmaID)
	na.Data = core.CleanString(na.Data)
	return validate.Struct(na)
}

type QueryFilter struct {
	TurmaID     string    `query:"turma_id"`
	ProfessorID string    `query:"professor_id"`
	Status      string    `query:"status"`
	CreatedFrom time.Time `query:"created_from"`
	CreatedTo   time.Time `query:"created_to"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.TurmaID == "" && qf.ProfessorID == "" && qf.Status == "" &&
		qf.CreatedFrom.IsZero() && qf.CreatedTo.IsZero()
}

func (qf *QueryFilter) Clean() {
	qf.TurmaID = core.CleanString(qf.TurmaID)
	qf.ProfessorID = core.CleanString(qf.ProfessorID)
	qf.Status = strings.ToUpper(core.CleanString(qf.Status))
}
