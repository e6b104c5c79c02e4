package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/aulaviva/aulaviva/core/escola"
)

type escolaApi struct {
	svc *escola.Service
}

// Escola creation is an operator concern and lives in the admin CLI; the API
// only exposes the caller's own escola.
func registerEscolaAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *escola.Service) {
	api := escolaApi{svc: svc}

	eg := g.Group("/escolas", jwt)
	eg.GET("/current", api.retrieveCurrent)
}

func (api *escolaApi) retrieveCurrent(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	e, err := api.svc.GetByID(ctx.Request().Context(), claims.EscolaID)
	if err != nil {
		if errors.Cause(err) == escola.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "getting escola")
	}
	return ctx.JSON(http.StatusOK, e)
}
