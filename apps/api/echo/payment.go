package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/okfines/core/payment"
	"github.com/trezcool/okfines/core/student"
)

type paymentApi struct {
	deps *Deps
}

func registerPaymentAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *Deps) {
	api := paymentApi{deps: deps}

	pg := g.Group("/payments", jwt, staffMiddleware())
	pg.GET("", api.query)
	pg.PUT("/:studentID/:feeID", api.setStatus)

	rg := g.Group("/reports", jwt, staffMiddleware())
	rg.GET("/outstanding", api.outstandingReport)
}

// registerPortalAPI exposes the read-only student portal lookup. It is
// un-authed: knowing a valid student ID is the only key, as on the notice
// board postings it replaces.
func registerPortalAPI(g *echo.Group, deps *Deps) {
	api := paymentApi{deps: deps}
	g.GET("/portal/:studentID", api.studentSummary)
}

func (api *paymentApi) query(ctx echo.Context) error {
	filter := new(payment.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []payment.Payment{})
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	payments, err := api.deps.PaymentSvc.Filter(ctx.Request().Context(), claims.Actor(), *filter)
	if err != nil {
		return errors.Wrap(err, "querying payments")
	}
	if payments == nil {
		payments = []payment.Payment{}
	}
	return ctx.JSON(http.StatusOK, payments)
}

func (api *paymentApi) setStatus(ctx echo.Context) error {
	var data payment.SetStatusRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SetStatusRequest")
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	p, err := api.deps.PaymentSvc.SetStatus(
		ctx.Request().Context(), claims.Actor(), ctx.Param("studentID"), ctx.Param("feeID"), data)
	if err != nil {
		return errors.Wrap(err, "setting payment status")
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *paymentApi) outstandingReport(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	report, err := api.deps.PaymentSvc.OutstandingReport(ctx.Request().Context(), claims.Actor())
	if err != nil {
		return errors.Wrap(err, "building outstanding report")
	}
	if report == nil {
		report = []payment.CohortOutstanding{}
	}
	return ctx.JSON(http.StatusOK, report)
}

func (api *paymentApi) studentSummary(ctx echo.Context) error {
	summary, err := api.deps.PaymentSvc.StudentSummary(ctx.Request().Context(), ctx.Param("studentID"))
	if err != nil {
		if cause := errors.Cause(err); cause == student.ErrNotFound || cause == student.ErrInvalidID {
			return errHttpNotFound
		}
		return errors.Wrap(err, "building student summary")
	}
	return ctx.JSON(http.StatusOK, summary)
}
