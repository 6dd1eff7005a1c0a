package sourcing

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"sourcing.GO/core/errs"
	"sourcing.GO/core/session"
	sourcingService "sourcing.GO/service/sourcing"
)

// RegisterSourcingRoutes exposes the editing-session operations over the
// /api group. Each mutator returns the updated in-memory record; the UI
// renders whatever state comes back.
func RegisterSourcingRoutes(apiGroup *echo.Group) {
	g := apiGroup.Group("/sourcing")

	// GET /api/sourcing/:key – open (or resume) the editing session
	g.GET("/:key", func(c echo.Context) error {
		s, err := session.GetInstance().Open(c.Request().Context(), c.Param("key"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(http.StatusOK, s.Record())
	})

	g.POST("/:key/vendors", func(c echo.Context) error {
		s, err := openSession(c)
		if err != nil {
			return fail(c, err)
		}
		rec, err := s.AddVendor()
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(http.StatusOK, rec)
	})

	g.DELETE("/:key/vendors/:id", func(c echo.Context) error {
		s, err := openSession(c)
		if err != nil {
			return fail(c, err)
		}
		rec, err := s.RemoveVendor(intParam(c, "id"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(http.StatusOK, rec)
	})

	g.POST("/:key/vendors/:id/primary", func(c echo.Context) error {
		s, err := openSession(c)
		if err != nil {
			return fail(c, err)
		}
		rec, err := s.SetPrimary(intParam(c, "id"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(http.StatusOK, rec)
	})

	g.POST("/:key/vendors/:from/copy/:to", func(c echo.Context) error {
		s, err := openSession(c)
		if err != nil {
			return fail(c, err)
		}
		rec, err := s.CopyVendorData(intParam(c, "from"), intParam(c, "to"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(http.StatusOK, rec)
	})

	g.PATCH("/:key/vendors/:id/field", func(c echo.Context) error {
		var body struct {
			Section string `json:"section"`
			Field   string `json:"field"`
			Value   string `json:"value"`
		}
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		s, err := openSession(c)
		if err != nil {
			return fail(c, err)
		}
		rec, err := s.UpdateField(intParam(c, "id"), body.Section, body.Field, body.Value)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(http.StatusOK, rec)
	})

	g.POST("/:key/vendors/:id/items", func(c echo.Context) error {
		s, err := openSession(c)
		if err != nil {
			return fail(c, err)
		}
		rec, err := s.AddLineItem(intParam(c, "id"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(http.StatusOK, rec)
	})

	g.PATCH("/:key/vendors/:id/items/:item", func(c echo.Context) error {
		var body struct {
			Field string `json:"field"`
			Value string `json:"value"`
		}
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		s, err := openSession(c)
		if err != nil {
			return fail(c, err)
		}
		rec, err := s.UpdateLineItem(intParam(c, "id"), intParam(c, "item"), body.Field, body.Value)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(http.StatusOK, rec)
	})

	g.DELETE("/:key/vendors/:id/items/:item", func(c echo.Context) error {
		s, err := openSession(c)
		if err != nil {
			return fail(c, err)
		}
		rec, err := s.RemoveLineItem(intParam(c, "id"), intParam(c, "item"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(http.StatusOK, rec)
	})

	// POST /api/sourcing/:key/save – explicit interactive save
	g.POST("/:key/save", func(c echo.Context) error {
		s, err := openSession(c)
		if err != nil {
			return fail(c, err)
		}
		if err := s.Save(c.Request().Context(), false); err != nil {
			return fail(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"saved": true})
	})

	// POST /api/sourcing/:key/complete – save and hand off downstream
	g.POST("/:key/complete", func(c echo.Context) error {
		s, err := openSession(c)
		if err != nil {
			return fail(c, err)
		}
		if err := s.Complete(c.Request().Context()); err != nil {
			return fail(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"completed": true})
	})
}

func openSession(c echo.Context) (*sourcingService.Session, error) {
	return session.GetInstance().Open(c.Request().Context(), c.Param("key"))
}

func intParam(c echo.Context, name string) int {
	n := 0
	echo.PathParamsBinder(c).Int(name, &n)
	return n
}

func fail(c echo.Context, err error) error {
	return c.JSON(statusFor(err), echo.Map{"error": err.Error()})
}

func statusFor(err error) int {
	var ve *errs.ValidationError
	switch {
	case errors.Is(err, errs.ErrMinCardinality):
		return http.StatusConflict
	case errors.Is(err, errs.ErrNotFound),
		errors.Is(err, errs.ErrVendorNotFound),
		errors.Is(err, errs.ErrLineItemNotFound):
		return http.StatusNotFound
	case errors.As(err, &ve), errors.Is(err, errs.ErrMalformedRecord):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
