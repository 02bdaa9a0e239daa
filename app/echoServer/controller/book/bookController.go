package book

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	lendingsvc "github.com/KhaledKanawati/LibrarySystem/service/lending"
)

type Controller struct {
	Svc lendingsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// GET /v1/books
// @Summary      List books
// @Description  Available and borrowed books, expired loans swept first
// @Tags         books
// @Security     BearerAuth
// @Router       /v1/books [get]
func (h *Controller) List(c echo.Context) error {
	listing, err := h.Svc.ListBooks(c.Request().Context())
	if err != nil {
		h.Log.Error("list books", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	now := time.Now()
	return c.JSON(http.StatusOK, echo.Map{
		"available": toViews(listing.Available, now),
		"borrowed":  toViews(listing.Borrowed, now),
	})
}

// GET /v1/books/search?title=...
func (h *Controller) Search(c echo.Context) error {
	q := c.QueryParam("title")
	if q == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "title query is required"})
	}
	books, err := h.Svc.Search(c.Request().Context(), q)
	if err != nil {
		h.Log.Error("search books", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": toViews(books, time.Now())})
}

// GET /v1/books/:isbn
func (h *Controller) Detail(c echo.Context) error {
	b, err := h.Svc.FindBook(c.Request().Context(), c.Param("isbn"))
	if err != nil {
		if lendingsvc.Code(err) == lendingsvc.ErrBookNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
		}
		h.Log.Error("book detail", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": toView(b, time.Now())})
}

// POST /v1/books/donations
// @Summary      Donate a book permanently
// @Tags         books
// @Security     BearerAuth
// @Router       /v1/books/donations [post]
func (h *Controller) Donate(c echo.Context) error {
	var req DonateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  err.Error(),
		})
	}
	uid, _ := c.Get("user_id").(int64)

	rcp, err := h.Svc.AcceptPermanentDonation(c.Request().Context(), uid, req.ISBN, req.Title, req.Author, req.PricePerDay)
	if err != nil {
		h.Log.Error("donate", "err", err)
		switch lendingsvc.Code(err) {
		case lendingsvc.ErrDuplicateISBN:
			return c.JSON(http.StatusConflict, echo.Map{"message": "isbn already exists"})
		case lendingsvc.ErrUserNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "user not found"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}

	resp := echo.Map{
		"message": "thank you for donating",
		"book":    toView(rcp.Book, time.Now()),
	}
	if !rcp.Persisted {
		resp["warning"] = "changes not saved to disk"
	}
	return c.JSON(http.StatusCreated, resp)
}

// POST /v1/books/loans
// @Summary      Lend a book to the library temporarily
// @Tags         books
// @Security     BearerAuth
// @Router       /v1/books/loans [post]
func (h *Controller) Lend(c echo.Context) error {
	var req LendReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  err.Error(),
		})
	}
	uid, _ := c.Get("user_id").(int64)

	rcp, err := h.Svc.AcceptTemporaryLoan(c.Request().Context(), uid, req.ISBN, req.Title, req.Author, req.PricePerDay, req.Months)
	if err != nil {
		h.Log.Error("lend", "err", err)
		switch lendingsvc.Code(err) {
		case lendingsvc.ErrInvalidDuration:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "minimum loan period is 1 month"})
		case lendingsvc.ErrDuplicateISBN:
			return c.JSON(http.StatusConflict, echo.Map{"message": "isbn already exists"})
		case lendingsvc.ErrUserNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "user not found"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}

	resp := echo.Map{
		"message":    "thank you for lending",
		"book":       toView(rcp.Book, time.Now()),
		"lend_until": rcp.LendUntil.Format("2006-01-02"),
	}
	if !rcp.Persisted {
		resp["warning"] = "changes not saved to disk"
	}
	return c.JSON(http.StatusCreated, resp)
}

// POST /v1/books/expired/process
func (h *Controller) ProcessExpired(c echo.Context) error {
	notices, err := h.Svc.ProcessExpiredLoans(c.Request().Context())
	if err != nil {
		h.Log.Error("process expired", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"expired": notices})
}
