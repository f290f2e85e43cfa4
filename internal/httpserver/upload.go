package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type UploadHTTP struct {
	Svc *service.UploadService
}

func (h *UploadHTTP) Upload(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "upload.image")

	fh, err := c.FormFile("file")
	if err != nil {
		return badRequest(l, "upload_error", "file is required", err)
	}
	if fh.Size > service.MaxUploadSize {
		return badRequest(l, "upload_error", "file is larger than 5MB", nil)
	}

	f, err := fh.Open()
	if err != nil {
		return fail(l, "upload_error", err)
	}
	defer f.Close()

	res, err := h.Svc.EncodeImage(f, fh.Filename)
	if err != nil {
		return fail(l, "upload_error", err)
	}

	l.Info("upload_success", "filename", res.Filename, "size", res.Size)
	return c.JSON(http.StatusOK, res)
}
