// Package handler exposes the dashboard's HTTP endpoints. Handlers bound
// storage work with a request-scoped timeout and translate domain errors
// into status codes with echo.Map{"error": ...} bodies.
package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/invoice-dashboard/internal/repository"
	"github.com/iliyamo/invoice-dashboard/internal/service"
)

const requestTimeout = 5 * time.Second

func dbCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

// pathID parses the :id route parameter as a uuid.
func pathID(c echo.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	return id, err == nil
}

// queryPage reads ?page=, defaulting to 1. Out of range numbers are
// clamped, including ones too large for an int.
func queryPage(c echo.Context) int {
	n, err := strconv.Atoi(strings.TrimSpace(c.QueryParam("page")))
	if err != nil {
		var ne *strconv.NumError
		if errors.As(err, &ne) && errors.Is(ne.Err, strconv.ErrRange) && !strings.HasPrefix(ne.Num, "-") {
			return repository.MaxPage
		}
		return 1
	}
	return repository.NormalizePage(n)
}

// fetchFailed logs err and answers 500 with the failed fetch's description.
func fetchFailed(c echo.Context, err error) error {
	log.Printf("handler: %s %s: %v", c.Request().Method, c.Path(), err)
	msg := "database error"
	var fe *repository.FetchError
	if errors.As(err, &fe) {
		msg = fe.Op
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": msg})
}

// actionResponse maps a mutation outcome onto HTTP: success redirects,
// failures return the result with a status per kind.
func actionResponse(c echo.Context, res service.ActionResult) error {
	switch res.Kind {
	case service.KindNone:
		return c.Redirect(http.StatusSeeOther, res.Redirect)
	case service.KindValidation:
		return c.JSON(http.StatusUnprocessableEntity, res)
	case service.KindNotFound:
		return c.JSON(http.StatusNotFound, res)
	default:
		return c.JSON(http.StatusInternalServerError, res)
	}
}
