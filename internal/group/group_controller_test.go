package group

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	echo "github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupRoutePaths(t *testing.T) {
	ctrl := &groupController{}
	router := echo.New()
	require.NoError(t, ctrl.Resolve(router))

	routes := make(map[string]bool)
	for _, route := range router.Routes() {
		routes[route.Method+" "+route.Path] = true
	}
	assert.True(t, routes["POST /api/groups/create"], "group creation is posted to /api/groups/create")
	assert.True(t, routes["GET /api/groups"])
}

func TestGroupCreateRequiresName(t *testing.T) {
	ctrl := &groupController{}
	router := echo.New()

	req := httptest.NewRequest(http.MethodPost, "/api/groups/create", strings.NewReader(`{"description":"no name"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	require.NoError(t, ctrl.GroupControllerGroupCreate(router.NewContext(req, rec)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Group name is required")
}
