package upload

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path"
	"time"

	"github.com/google/uuid"
	echo "github.com/labstack/echo/v4"
	"github.com/omarelshorbagy/Project-Software-Engineering/internal/identity"
	"github.com/omarelshorbagy/Project-Software-Engineering/internal/storage"
	globalprotocol "github.com/omarelshorbagy/Project-Software-Engineering/pkg/protocol"
	"github.com/omarelshorbagy/Project-Software-Engineering/pkg/variables"
	"go.uber.org/fx"
)

type uploadController struct {
	queries      *storage.Queries
	identityWall identity.MiddlewareFactory
	logger       *slog.Logger
	uploadDir    string
}

// UploadControllerUpload accepts a single multipart PDF, stores it under a
// uuid-suffixed name and records the metadata row.
func (ctrl *uploadController) UploadControllerUpload(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "file is required"})
	}

	// The declared content type is the gate, a .pdf filename on a
	// non-PDF part is still rejected.
	if fileHeader.Header.Get(echo.HeaderContentType) != "application/pdf" {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Only PDF files are allowed"})
	}

	src, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	if err := os.MkdirAll(ctrl.uploadDir, 0o755); err != nil {
		return err
	}

	filename := fmt.Sprintf("%s%s", uuid.NewString(), path.Ext(fileHeader.Filename))
	dst, err := os.Create(path.Join(ctrl.uploadDir, filename))
	if err != nil {
		return err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return err
	}

	record, err := ctrl.queries.NewUpload(c.Request().Context(), storage.NewUploadParams{
		Filename:   filename,
		Filepath:   path.Join("/uploads", filename),
		Comment:    c.FormValue("comment"),
		UploadDate: time.Now(),
	})
	if err != nil {
		return err
	}

	ctrl.logger.Info("file uploaded",
		slog.String("filename", filename),
		slog.String("user", identity.WithUsername(c)))
	return c.JSON(http.StatusOK, record)
}

func (ctrl *uploadController) UploadControllerUploadList(c echo.Context) error {
	uploads, err := ctrl.queries.ListUploads(c.Request().Context())
	if err != nil {
		return err
	}
	if uploads == nil {
		uploads = []storage.Upload{}
	}
	return c.JSON(http.StatusOK, uploads)
}

func (ctrl *uploadController) Resolve(c *echo.Echo) error {
	c.POST("/api/upload", ctrl.UploadControllerUpload, echo.MiddlewareFunc(ctrl.identityWall))
	c.GET("/api/upload", ctrl.UploadControllerUploadList, echo.MiddlewareFunc(ctrl.identityWall))
	c.Static("/uploads", ctrl.uploadDir)
	return nil
}

var _ globalprotocol.HttpResolvable = (*uploadController)(nil)

type newUploadController_Params struct {
	fx.In

	Queries         *storage.Queries
	IdentityService *identity.IdentityService
	Logger          *slog.Logger
}

func NewUploadController(params newUploadController_Params) *uploadController {
	return &uploadController{
		queries:      params.Queries,
		identityWall: identity.IdentityWallFactoryMiddleware(params.IdentityService),
		logger:       params.Logger,
		uploadDir:    variables.Env(variables.UPLOAD_DIR_NAME, variables.UPLOAD_DIR_DEFAULT),
	}
}
