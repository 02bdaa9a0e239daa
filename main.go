// Package main library catalog API.
//
// @title           Library Catalog API
// @version         1.0
// @description     library catalog manager (books, donations, rentals, adoptions).
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description  Use:  Bearer <JWT>
package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/KhaledKanawati/LibrarySystem/app/echoServer"
	authctrl "github.com/KhaledKanawati/LibrarySystem/app/echoServer/controller/auth"
	bookctrl "github.com/KhaledKanawati/LibrarySystem/app/echoServer/controller/book"
	lendingctrl "github.com/KhaledKanawati/LibrarySystem/app/echoServer/controller/lending"
	"github.com/KhaledKanawati/LibrarySystem/app/echoServer/validation"
	"github.com/KhaledKanawati/LibrarySystem/config"
	"github.com/KhaledKanawati/LibrarySystem/model"
	"github.com/KhaledKanawati/LibrarySystem/repository/bookstore"
	"github.com/KhaledKanawati/LibrarySystem/repository/userstore"
	authsvc "github.com/KhaledKanawati/LibrarySystem/service/auth"
	"github.com/KhaledKanawati/LibrarySystem/service/catalog"
	"github.com/KhaledKanawati/LibrarySystem/service/ledger"
	lendingsvc "github.com/KhaledKanawati/LibrarySystem/service/lending"
)

func main() {

	cfg := config.Load()
	ctx := context.Background()

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// stores
	bs := bookstore.New(filepath.Join(cfg.DataDir, "books.json"))
	us := userstore.New(filepath.Join(cfg.DataDir, "users.json"))

	// a load failure degrades to an empty in-memory state, it never
	// stops the session
	books, err := bs.Load(ctx)
	if err != nil {
		log.Warn("book load failed, starting with fresh catalog", "err", err)
	} else {
		log.Info("loaded existing books", "count", len(books))
	}
	creds, err := us.Load(ctx)
	if err != nil {
		log.Warn("user load failed, starting with fresh directory", "err", err)
	} else {
		log.Info("loaded existing users", "count", len(creds))
	}

	cat := catalog.FromSnapshot(books)
	if cfg.SeedBooks && cat.Len() == 0 {
		seedCatalog(cat)
		log.Info("seeded default books", "count", cat.Len())
	}
	led := ledger.New()

	// services
	as := authsvc.New(creds, us, cfg.JWTSecret, log)
	ls := lendingsvc.New(cat, led, authDirectory{as}, bs, log)

	// controllers
	v := validator.New()
	authC := &authctrl.Controller{Svc: as, V: v, Log: log}
	bookC := &bookctrl.Controller{Svc: ls, V: v, Log: log}
	lendingC := &lendingctrl.Controller{Svc: ls, V: v, Log: log}

	// echo
	e := echo.New()
	echoServer.RegisterMiddlewares(e)
	e.Validator = validation.New()

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]any{
			"status":  "ok",
			"message": "Service is healthy",
		})
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	echoServer.Register(e, echoServer.C{
		Auth:    authC,
		Book:    bookC,
		Lending: lendingC,

		JWTSecret: cfg.JWTSecret,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}

	slog.Info("starting server", "port", port)

	e.Logger.Fatal(e.Start(":" + port))
}

// authDirectory adapts the auth service to the lending workflow's
// user-lookup port.
type authDirectory struct{ svc authsvc.Service }

func (d authDirectory) ByID(ctx context.Context, userID int64) (*model.User, error) {
	return d.svc.ByID(ctx, userID)
}

// seedCatalog loads the default shelf for a first run.
func seedCatalog(cat *catalog.Catalog) {
	_ = cat.Add(model.NewBook("1", "Harry Potter and the Sorcerer's Stone", "J.K. Rowling", 2.5))
	_ = cat.Add(model.NewBook("2", "Harry Potter and the Chamber of Secrets", "J.K. Rowling", 3.0))
	_ = cat.Add(model.NewBook("3", "Harry Potter and the Prisoner of Azkaban", "J.K. Rowling", 4.0))
	_ = cat.Add(model.NewBook("4", "1984", "George Orwell", 0.0))
}
