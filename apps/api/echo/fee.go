package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/okfines/core/fee"
)

type feeApi struct {
	deps *Deps
}

func registerFeeAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *Deps) {
	api := feeApi{deps: deps}

	fg := g.Group("/fees", jwt, staffMiddleware())
	fg.GET("", api.query)
	fg.POST("", api.create, adminMiddleware())
	fg.GET("/:id", api.retrieve)
	fg.PUT("/:id", api.update, adminMiddleware())
	fg.DELETE("/:id", api.destroy, adminMiddleware())
	fg.POST("/:id/materialize", api.materialize, adminMiddleware())
}

func (api *feeApi) create(ctx echo.Context) error {
	var data fee.NewFee
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewFee")
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	f, err := api.deps.FeeSvc.Create(ctx.Request().Context(), claims.Actor(), data)
	if err != nil {
		return errors.Wrap(err, "creating fee")
	}
	return ctx.JSON(http.StatusCreated, f)
}

func (api *feeApi) query(ctx echo.Context) error {
	filter := new(fee.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []fee.Fee{})
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	fees, err := api.deps.FeeSvc.Filter(ctx.Request().Context(), claims.Actor(), *filter)
	if err != nil {
		return errors.Wrap(err, "querying fees")
	}
	if fees == nil {
		fees = []fee.Fee{}
	}
	return ctx.JSON(http.StatusOK, fees)
}

func (api *feeApi) retrieve(ctx echo.Context) error {
	f, err := api.deps.FeeSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == fee.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding fee by ID")
	}
	return ctx.JSON(http.StatusOK, f)
}

func (api *feeApi) update(ctx echo.Context) error {
	var data fee.UpdateFee
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateFee")
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	f, err := api.deps.FeeSvc.Update(ctx.Request().Context(), claims.Actor(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating fee")
	}
	return ctx.JSON(http.StatusOK, f)
}

func (api *feeApi) destroy(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	if err := api.deps.FeeSvc.Delete(ctx.Request().Context(), claims.Actor(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting fee")
	}
	return ctx.NoContent(http.StatusNoContent)
}

type (
	MaterializeRequest struct {
		StudentIDs []string `json:"student_ids"`
	}

	MaterializeResponse struct {
		Created int `json:"created"`
	}
)

func (api *feeApi) materialize(ctx echo.Context) error {
	var data MaterializeRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to MaterializeRequest")
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	created, err := api.deps.PaymentSvc.MaterializeFee(ctx.Request().Context(), claims.Actor(), ctx.Param("id"), data.StudentIDs)
	if err != nil {
		return errors.Wrap(err, "materializing fee")
	}
	return ctx.JSON(http.StatusOK, MaterializeResponse{Created: created})
}
