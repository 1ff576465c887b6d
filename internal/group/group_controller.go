package group

import (
	"net/http"

	echo "github.com/labstack/echo/v4"
	"github.com/omarelshorbagy/Project-Software-Engineering/internal/storage"
	globalprotocol "github.com/omarelshorbagy/Project-Software-Engineering/pkg/protocol"
	"go.uber.org/fx"
)

type groupController struct {
	queries *storage.Queries
}

type createGroupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (ctrl *groupController) GroupControllerGroupCreate(c echo.Context) error {
	req := new(createGroupRequest)
	if err := c.Bind(req); err != nil {
		return c.String(http.StatusBadRequest, "bad request")
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Group name is required"})
	}

	if _, err := ctrl.queries.NewGroup(c.Request().Context(), storage.NewGroupParams{
		Name:        req.Name,
		Description: req.Description,
	}); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Group creation failed"})
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Group created successfully"})
}

func (ctrl *groupController) GroupControllerGroupList(c echo.Context) error {
	groups, err := ctrl.queries.ListGroups(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Could not retrieve groups"})
	}
	if groups == nil {
		groups = []storage.Group{}
	}
	return c.JSON(http.StatusOK, groups)
}

func (ctrl *groupController) Resolve(c *echo.Echo) error {
	c.POST("/api/groups/create", ctrl.GroupControllerGroupCreate)
	c.GET("/api/groups", ctrl.GroupControllerGroupList)
	return nil
}

var _ globalprotocol.HttpResolvable = (*groupController)(nil)

type newGroupController_Params struct {
	fx.In

	Queries *storage.Queries
}

func NewGroupController(params newGroupController_Params) *groupController {
	return &groupController{
		queries: params.Queries,
	}
}
