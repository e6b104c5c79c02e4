package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/aulaviva/aulaviva/core/turma"
)

type turmaApi struct {
	svc      *turma.Service
	validate *validator.Validate
}

func registerTurmaAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *turma.Service, validate *validator.Validate) {
	api := turmaApi{svc: svc, validate: validate}

	tg := g.Group("/turmas", jwt)
	tg.POST("", api.create, adminMiddleware())
	tg.GET("", api.query)
	tg.GET("/:id", api.retrieve)
	tg.PUT("/:id", api.update, adminMiddleware())
	tg.DELETE("/:id", api.destroy, adminMiddleware())
}

func (api *turmaApi) create(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data turma.NewTurma
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTurma")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	t, err := api.svc.Create(ctx.Request().Context(), claims.EscolaID, data)
	if err != nil {
		return errors.Wrap(err, "creating turma")
	}
	return ctx.JSON(http.StatusCreated, t)
}

func (api *turmaApi) query(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	ordering := new(Ordering)
	ordering.Bind(ctx)

	turmas, err := api.svc.Query(ctx.Request().Context(), claims.EscolaID, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying turmas")
	}
	if turmas == nil {
		turmas = []turma.Turma{}
	}
	return ctx.JSON(http.StatusOK, turmas)
}

func (api *turmaApi) retrieve(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	t, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"), claims.EscolaID)
	if err != nil {
		if errors.Cause(err) == turma.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "getting turma")
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *turmaApi) update(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	rctx := ctx.Request().Context()
	orig, err := api.svc.GetByID(rctx, ctx.Param("id"), claims.EscolaID)
	if err != nil {
		if errors.Cause(err) == turma.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "getting turma")
	}

	var data turma.UpdateTurma
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateTurma")
	}
	if err := data.Validate(api.validate, orig); err != nil {
		return err
	}

	t, err := api.svc.Update(rctx, orig.ID, claims.EscolaID, data)
	if err != nil {
		return errors.Wrap(err, "updating turma")
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *turmaApi) destroy(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id"), claims.EscolaID); err != nil {
		if errors.Cause(err) == turma.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting turma")
	}
	return ctx.NoContent(http.StatusNoContent)
}
