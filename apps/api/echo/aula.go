package echoapi

import (
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/aulaviva/aulaviva/core"
	"github.com/aulaviva/aulaviva/core/aula"
	"github.com/aulaviva/aulaviva/storage/object"
)

type aulaApi struct {
	svc      *aula.Service
	store    *object.Store // nil when the storage backend has no presigner
	storage  core.StorageConfig
	validate *validator.Validate
}

func registerAulaAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc *aula.Service,
	store *object.Store,
	storage core.StorageConfig,
	validate *validator.Validate,
) {
	api := aulaApi{svc: svc, store: store, storage: storage, validate: validate}

	ag := g.Group("/aulas", jwt)
	ag.POST("", api.create, professorMiddleware())
	ag.GET("", api.query)
	ag.GET("/:id", api.retrieve)
	ag.DELETE("/:id", api.destroy, adminMiddleware())
}

// create registers an aula in CREATED state; its audio arrives later through
// the resumable upload endpoints.
func (api *aulaApi) create(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data aula.NewAula
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAula")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	a, err := api.svc.Create(ctx.Request().Context(), claims.EscolaID, claims.Subject, data)
	if err != nil {
		return errors.Wrap(err, "creating aula")
	}
	return ctx.JSON(http.StatusCreated, a)
}

func (api *aulaApi) query(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	filter := new(aula.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []aula.Aula{})
	}
	filter.Clean()
	// non-admins only ever see their own aulas
	if !claims.IsAdmin {
		filter.ProfessorID = claims.Subject
	}

	ordering := new(Ordering)
	ordering.Bind(ctx)

	aulas, err := api.svc.Query(ctx.Request().Context(), claims.EscolaID, filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying aulas")
	}
	if aulas == nil {
		aulas = []aula.Aula{}
	}
	return ctx.JSON(http.StatusOK, aulas)
}

func (api *aulaApi) retrieve(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	rctx := ctx.Request().Context()
	a, err := api.svc.GetByID(rctx, ctx.Param("id"), claims.EscolaID)
	if err != nil {
		if errors.Cause(err) == aula.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "getting aula")
	}
	if !claims.IsAdmin && a.ProfessorID != claims.Subject {
		return errHttpNotFound
	}

	resp := AulaResponse{Aula: a}
	if api.store != nil && a.StorageURL != "" {
		if key, ok := api.objectKey(a.StorageURL); ok {
			url, err := api.store.DownloadURL(rctx, key, object.DownloadURLTTL)
			if err != nil {
				return errors.Wrap(err, "presigning playback URL")
			}
			resp.PlaybackURL = url
		}
	}
	return ctx.JSON(http.StatusOK, resp)
}

func (api *aulaApi) destroy(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	rctx := ctx.Request().Context()
	a, err := api.svc.GetByID(rctx, ctx.Param("id"), claims.EscolaID)
	if err != nil {
		if errors.Cause(err) == aula.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "getting aula")
	}

	if err := api.svc.Delete(rctx, a.ID, claims.EscolaID); err != nil {
		return errors.Wrap(err, "deleting aula")
	}
	// best effort: the audio object goes with the record
	if api.store != nil && a.StorageURL != "" {
		if key, ok := api.objectKey(a.StorageURL); ok {
			if err := api.store.DeleteObject(rctx, key); err != nil {
				ctx.Logger().Errorf("%+v", errors.Wrap(err, "deleting audio object"))
			}
		}
	}
	return ctx.NoContent(http.StatusNoContent)
}

// objectKey extracts the object key from a {scheme}://{bucket}/{key} locator.
func (api *aulaApi) objectKey(storageURL string) (string, bool) {
	prefix := api.storage.Scheme + "://" + api.storage.Bucket + "/"
	if !strings.HasPrefix(storageURL, prefix) {
		return "", false
	}
	return strings.TrimPrefix(storageURL, prefix), true
}

type AulaResponse struct {
	aula.Aula
	PlaybackURL string `json:"playback_url,omitempty"`
}
