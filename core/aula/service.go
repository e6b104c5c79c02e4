package aula

import (
	"context"
	"errors"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/aulaviva/aulaviva/core"
	"github.com/aulaviva/aulaviva/core/upload"
)

var (
	// errors
	ErrNotFound = errors.New("aula not found")
	// ErrNotResumable is returned when an upload session is created for an
	// aula whose recording already moved past the upload phase.
	ErrNotResumable = errors.New("aula is not awaiting an upload")
)

type (
	Repository interface {
		CreateAula(ctx context.Context, a Aula) (Aula, error)
		GetAula(ctx context.Context, id, escolaID string) (Aula, error)
		// GetOwnedAula fetches the aula only when id, escola AND professor all
		// match; ownership and tenancy are one compound lookup.
		GetOwnedAula(ctx context.Context, id, escolaID, professorID string) (Aula, error)
		QueryAulas(ctx context.Context, escolaID string, filter *QueryFilter, ordering []core.DBOrdering) ([]Aula, error)
		// BeginUpload moves the aula to UPLOAD_IN_PROGRESS in a single
		// conditional update scoped by id + escola + professor with a status
		// precondition (CREATED or UPLOAD_IN_PROGRESS), so concurrent or
		// retried session creations cannot resurrect an aula that already
		// moved past the upload phase. Returns ErrNotFound when no aula
		// matches the compound filter and ErrNotResumable when the status
		// precondition fails.
		BeginUpload(ctx context.Context, id, escolaID, professorID string) (Aula, error)
		// FinishUpload records the final storage locator and byte size and
		// moves the aula to AWAITING_TRANSCRIPTION in one absolute update
		// scoped by id + escola. Repeating it yields the same end state.
		FinishUpload(ctx context.Context, id, escolaID, storageURL string, sizeBytes int64) (Aula, error)
		DeleteAula(ctx context.Context, id, escolaID string) error
	}

	Service struct {
		repo    Repository
		storage core.StorageConfig
		logger  core.Logger
	}
)

func NewService(conf *core.Config, repo Repository, logger core.Logger) *Service {
	return &Service{
		repo:    repo,
		storage: conf.Storage,
		logger:  logger,
	}
}

func (svc *Service) Create(ctx context.Context, escolaID, professorID string, na NewAula) (Aula, error) {
	now := time.Now().UTC()
	a := Aula{
		EscolaID:    escolaID,
		ProfessorID: professorID,
		TurmaID:     na.TurmaID,
		Data:        na.Data,
		Status:      StatusCreated,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateAula(ctx, a)
}

func (svc *Service) GetByID(ctx context.Context, id, escolaID string) (Aula, error) {
	return svc.repo.GetAula(ctx, id, escolaID)
}

func (svc *Service) Query(ctx context.Context, escolaID string, filter *QueryFilter, ordering []core.DBOrdering) ([]Aula, error) {
	return svc.repo.QueryAulas(ctx, escolaID, filter, ordering)
}

func (svc *Service) Delete(ctx context.Context, id, escolaID string) error {
	return svc.repo.DeleteAula(ctx, id, escolaID)
}

// StartUpload runs the session-creation business checks for an already parsed
// metadata record: declared size bounds, then the compound aula lookup, then
// the CREATED -> UPLOAD_IN_PROGRESS transition. A failed check leaves the
// aula untouched.
func (svc *Service) StartUpload(ctx context.Context, meta upload.SessionMeta, size int64) (Aula, error) {
	if err := upload.ValidateSize(size); err != nil {
		return Aula{}, err
	}
	a, err := svc.repo.BeginUpload(ctx, meta.AulaID, meta.EscolaID, meta.ProfessorID)
	if err != nil {
		if pkgerrors.Cause(err) == ErrNotFound {
			return Aula{}, upload.ErrAulaNotFound
		}
		return Aula{}, pkgerrors.Wrap(err, "beginning upload")
	}
	return a, nil
}

// FinishUpload records the completed session on the aula: storage locator
// derived from the configured bucket and the session id, the byte count as
// counted by the protocol layer (trusted, not re-derived from the store), and
// the AWAITING_TRANSCRIPTION status.
//
// Enqueueing the transcription job belongs to a future worker; nothing is
// enqueued here yet.
func (svc *Service) FinishUpload(ctx context.Context, meta upload.SessionMeta, sessionID string, sizeBytes int64) (Aula, error) {
	url := upload.StorageURL(svc.storage, sessionID)
	a, err := svc.repo.FinishUpload(ctx, meta.AulaID, meta.EscolaID, url, sizeBytes)
	if err != nil {
		if pkgerrors.Cause(err) == ErrNotFound {
			return Aula{}, upload.ErrAulaNotFound
		}
		return Aula{}, pkgerrors.Wrap(err, "finishing upload")
	}
	return a, nil
}
