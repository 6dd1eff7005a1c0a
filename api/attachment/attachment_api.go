package attachment

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"sourcing.GO/core/errs"
	"sourcing.GO/core/session"
	attachmentService "sourcing.GO/service/attachment"
)

// RegisterAttachmentRoutes exposes attachment upload/view/download/remove
// on the /api group. Uploads accept multiple files; each file succeeds or
// fails on its own and the response reports every outcome.
func RegisterAttachmentRoutes(apiGroup *echo.Group, store *attachmentService.Store) {
	g := apiGroup.Group("/attachments")

	// POST /api/attachments/:key/vendors/:id – multi-file upload
	g.POST("/:key/vendors/:id", func(c echo.Context) error {
		key := c.Param("key")
		vendorID := intParam(c, "id")

		form, err := c.MultipartForm()
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		files := form.File["files"]
		if len(files) == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "no files provided"})
		}

		var inputs []attachmentService.UploadInput
		for _, fh := range files {
			f, err := fh.Open()
			if err != nil {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": fmt.Sprintf("open %s: %v", fh.Filename, err)})
			}
			data, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": fmt.Sprintf("read %s: %v", fh.Filename, err)})
			}
			inputs = append(inputs, attachmentService.UploadInput{
				Name:      fh.Filename,
				MediaType: fh.Header.Get("Content-Type"),
				CreatedBy: currentUser(c),
				Data:      data,
			})
		}

		outcomes := store.SaveAll(c.Request().Context(), key, vendorID, inputs)

		s, err := session.GetInstance().Open(c.Request().Context(), key)
		if err != nil {
			return fail(c, err)
		}
		type outcomeJSON struct {
			Name  string `json:"name"`
			ID    string `json:"id,omitempty"`
			Error string `json:"error,omitempty"`
		}
		resp := make([]outcomeJSON, 0, len(outcomes))
		failed := 0
		for _, o := range outcomes {
			oj := outcomeJSON{Name: o.Name, ID: o.ID}
			if o.Err != nil {
				oj.Error = o.Err.Error()
				failed++
			} else {
				if _, err := s.LinkAttachment(vendorID, o.ID); err != nil {
					oj.Error = err.Error()
					failed++
				}
			}
			resp = append(resp, oj)
		}
		status := http.StatusOK
		if failed == len(outcomes) {
			status = http.StatusUnprocessableEntity
		}
		return c.JSON(status, echo.Map{"outcomes": resp, "record": s.Record()})
	})

	// GET /api/attachments/:key/vendors/:id – list by owner
	g.GET("/:key/vendors/:id", func(c echo.Context) error {
		atts, err := store.ListByOwner(c.Request().Context(), intParam(c, "id"), c.Param("key"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(http.StatusOK, atts)
	})

	g.GET("/:id/view", func(c echo.Context) error {
		return serve(c, store, "inline")
	})

	g.GET("/:id/download", func(c echo.Context) error {
		return serve(c, store, "attachment")
	})

	// DELETE /api/attachments/:id – explicit blob deletion, idempotent.
	// With ?key= and ?vendor= the reference is unlinked from the record
	// too; the blob delete alone never touches vendor data.
	g.DELETE("/:id", func(c echo.Context) error {
		id := c.Param("id")
		deleted, err := store.Delete(c.Request().Context(), id)
		if err != nil {
			return fail(c, err)
		}
		if key := c.QueryParam("key"); key != "" {
			vendorID := 0
			echo.QueryParamsBinder(c).Int("vendor", &vendorID)
			s, err := session.GetInstance().Open(c.Request().Context(), key)
			if err != nil {
				return fail(c, err)
			}
			if _, err := s.UnlinkAttachment(vendorID, id); err != nil {
				return fail(c, err)
			}
		}
		return c.JSON(http.StatusOK, echo.Map{"deleted": deleted})
	})
}

func serve(c echo.Context, store *attachmentService.Store, disposition string) error {
	a, err := store.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`%s; filename=%q`, disposition, a.Name))
	return c.Blob(http.StatusOK, a.MediaType, a.Payload)
}

func currentUser(c echo.Context) string {
	if u := c.Request().Header.Get("X-User"); u != "" {
		return u
	}
	if u, _, ok := c.Request().BasicAuth(); ok {
		return u
	}
	return "unknown"
}

func intParam(c echo.Context, name string) int {
	n := 0
	echo.PathParamsBinder(c).Int(name, &n)
	return n
}

func fail(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	var ve *errs.ValidationError
	switch {
	case errors.Is(err, errs.ErrNotFound), errors.Is(err, errs.ErrVendorNotFound):
		status = http.StatusNotFound
	case errors.As(err, &ve):
		status = http.StatusBadRequest
	}
	return c.JSON(status, echo.Map{"error": err.Error()})
}
