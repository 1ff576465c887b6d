package identity

import (
	"errors"
	"net/http"

	echo "github.com/labstack/echo/v4"
	globalprotocol "github.com/omarelshorbagy/Project-Software-Engineering/pkg/protocol"
	"go.uber.org/fx"
)

type errResponse struct {
	Error string `json:"error"`
}

type identityController struct {
	identityService *IdentityService
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (i *identityController) IdentityRegister(c echo.Context) error {
	req := new(registerRequest)
	if err := c.Bind(req); err != nil {
		return c.String(http.StatusBadRequest, "bad request")
	}

	if err := i.identityService.Register(c.Request().Context(), req.Username, req.Email, req.Password); err != nil {
		switch {
		case errors.Is(err, ErrUserAlreadyExist):
			return c.JSON(http.StatusBadRequest, &errResponse{Error: "Email or username is already in use."})
		case errors.Is(err, ErrEmptyField):
			return c.JSON(http.StatusBadRequest, &errResponse{Error: "Username, email and password are required"})
		default:
			return err
		}
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "User registered successfully"})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (i *identityController) IdentityLogin(c echo.Context) error {
	req := new(loginRequest)
	if err := c.Bind(req); err != nil {
		return c.String(http.StatusBadRequest, "bad request")
	}

	result, err := i.identityService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyField):
			return c.JSON(http.StatusBadRequest, &errResponse{Error: "Email and password are required"})
		case errors.Is(err, ErrInvalidCredentials):
			return c.JSON(http.StatusBadRequest, &errResponse{Error: "Invalid credentials"})
		default:
			return err
		}
	}

	return c.JSON(http.StatusOK, result)
}

func (i *identityController) Resolve(c *echo.Echo) error {
	c.POST("/api/auth/register", i.IdentityRegister)
	c.POST("/api/auth/login", i.IdentityLogin)
	return nil
}

var _ globalprotocol.HttpResolvable = (*identityController)(nil)

type newIdentityController_Params struct {
	fx.In

	IdentityService *IdentityService
}

func NewIdentityController(params newIdentityController_Params) *identityController {
	return &identityController{
		identityService: params.IdentityService,
	}
}
