package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/KhaledKanawati/LibrarySystem/model"
	authsvc "github.com/KhaledKanawati/LibrarySystem/service/auth"
)

type Controller struct {
	Svc authsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// Register a new user
// @Summary      Register user
// @Description  Register a new library member; username is letters/digits/underscores
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        payload  body  model.RegisterReq  true  "Register payload"
// @Success      201  {object}  map[string]any
// @Failure      400  {object}  map[string]any
// @Failure      409  {object}  map[string]any "username already taken"
// @Router       /v1/users/register [post]
func (ct *Controller) Register(c echo.Context) error {
	var req model.RegisterReq
	if err := c.Bind(&req); err != nil {
		ct.Log.Warn("bind failed", "path", c.Path(), "err", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := ct.V.Struct(req); err != nil {
		ct.Log.Warn("validation failed", "path", c.Path(), "err", err)
		return echo.NewHTTPError(http.StatusBadRequest, "validation error")
	}

	u, token, err := ct.Svc.Register(c.Request().Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, authsvc.ErrInvalidUsername):
			return echo.NewHTTPError(http.StatusBadRequest, "use only letters, numbers, and underscores")
		case errors.Is(err, authsvc.ErrDuplicateUsername):
			return echo.NewHTTPError(http.StatusConflict, "username already taken")
		default:
			ct.Log.Error("register failed", "err", err,
				"req_id", c.Response().Header().Get(echo.HeaderXRequestID))
			return echo.NewHTTPError(http.StatusInternalServerError, "register failed")
		}
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "registered",
		"user":    u,
		"token":   token,
	})
}

// Login
// @Summary      Login
// @Description  Login with username + password, returns JWT
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        payload  body  model.LoginReq  true  "Login payload"
// @Success      200  {object}  map[string]any
// @Failure      401  {object}  map[string]any
// @Router       /v1/users/login [post]
func (ct *Controller) Login(c echo.Context) error {
	var req model.LoginReq
	if err := c.Bind(&req); err != nil {
		ct.Log.Warn("bind failed", "path", c.Path(), "err", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := ct.V.Struct(req); err != nil {
		ct.Log.Warn("validation failed", "path", c.Path(), "err", err)
		return echo.NewHTTPError(http.StatusBadRequest, "validation error")
	}

	u, token, err := ct.Svc.Login(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, authsvc.ErrInvalidCreds) {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid username or password")
		}
		ct.Log.Error("login failed", "err", err,
			"req_id", c.Response().Header().Get(echo.HeaderXRequestID))
		return echo.NewHTTPError(http.StatusInternalServerError, "login failed")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "login success",
		"user":    u,
		"token":   token,
	})
}

// DeleteAccount removes the caller's account after confirming the
// password. This ends the session by design.
// @Summary      Delete account
// @Tags         users
// @Security     BearerAuth
// @Router       /v1/users/me [delete]
func (ct *Controller) DeleteAccount(c echo.Context) error {
	var req model.DeleteAccountReq
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := ct.V.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "validation error")
	}
	uid, _ := c.Get("user_id").(int64)

	if err := ct.Svc.Delete(c.Request().Context(), uid, req.Password); err != nil {
		switch {
		case errors.Is(err, authsvc.ErrInvalidCreds):
			return echo.NewHTTPError(http.StatusForbidden, "wrong password")
		case errors.Is(err, authsvc.ErrUserNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		default:
			ct.Log.Error("delete account failed", "err", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "delete failed")
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "account deleted"})
}
