package echoServer

import (
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	authctrl "github.com/KhaledKanawati/LibrarySystem/app/echoServer/controller/auth"
	bookctrl "github.com/KhaledKanawati/LibrarySystem/app/echoServer/controller/book"
	lendingctrl "github.com/KhaledKanawati/LibrarySystem/app/echoServer/controller/lending"
	"github.com/KhaledKanawati/LibrarySystem/app/echoServer/jwtx"
)

type C struct {
	Auth    *authctrl.Controller
	Book    *bookctrl.Controller
	Lending *lendingctrl.Controller

	JWTSecret string
}

func Register(e *echo.Echo, c C) {
	// Public
	pub := e.Group("/v1")
	pub.POST("/users/register", c.Auth.Register)
	pub.POST("/users/login", c.Auth.Login)

	// Auth
	auth := e.Group("/v1")
	auth.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(c.JWTSecret),

		NewClaimsFunc: func(c echo.Context) jwt.Claims { return jwt.MapClaims{} },
		TokenLookup:   "header:Authorization",
	}))
	auth.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			uid, err := jwtx.UserIDFromContext(ctx)
			if err != nil {
				return ctx.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
			}
			ctx.Set("user_id", uid)
			return next(ctx)
		}
	})

	// Books
	auth.GET("/books", c.Book.List)
	auth.GET("/books/search", c.Book.Search)
	auth.GET("/books/:isbn", c.Book.Detail)
	auth.POST("/books/donations", c.Book.Donate)
	auth.POST("/books/loans", c.Book.Lend)
	auth.POST("/books/expired/process", c.Book.ProcessExpired)

	// Lending
	auth.POST("/books/:isbn/adopt", c.Lending.Adopt)
	auth.POST("/books/:isbn/rentals", c.Lending.Rent)
	auth.POST("/books/:isbn/return", c.Lending.Return)
	auth.GET("/users/me/books", c.Lending.MyBooks)
	auth.GET("/users/me/rentals", c.Lending.History)

	// Account
	auth.DELETE("/users/me", c.Auth.DeleteAccount)
}
