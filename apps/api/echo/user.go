package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/cpel/core/user"
)

const loginSuccessful = "login successful"

type userApi struct {
	svc      user.Service
	sortable map[string]string
}

func registerUserAPI(g *echo.Group, svc user.Service) {
	api := userApi{svc: svc, sortable: sortableFields[user.User]()}

	g.POST("/user", api.signUp)
	g.GET("/login", api.login) // credentials are read from the body on both verbs
	g.POST("/login", api.login)

	g.GET("/users", api.query)
	g.GET("/users/:id", api.retrieve)
	g.PUT("/user/:id", api.updatePassword)
	g.DELETE("/user/:id", api.destroy)
}

// Handlers

func (api *userApi) signUp(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}

	usr, err := api.svc.SignUp(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return created(ctx, "/users/"+usr.ID.Hex(), usr.ID.Hex())
}

func (api *userApi) login(ctx echo.Context) error {
	var creds user.Credentials
	if err := ctx.Bind(&creds); err != nil {
		return errors.Wrap(err, "binding to Credentials")
	}

	if _, err := api.svc.Login(ctx.Request().Context(), creds); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"success": loginSuccessful})
}

func (api *userApi) query(ctx echo.Context) error {
	var ord Ordering
	if err := ord.Bind(ctx, api.sortable); err != nil {
		return err
	}

	users, err := api.svc.QueryAll(ctx.Request().Context(), ord.Orderings...)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, users)
}

func (api *userApi) retrieve(ctx echo.Context) error {
	usr, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) updatePassword(ctx echo.Context) error {
	var data user.UpdatePassword
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdatePassword")
	}

	usr, err := api.svc.UpdatePassword(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}
