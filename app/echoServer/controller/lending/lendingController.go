package lending

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	lendingsvc "github.com/KhaledKanawati/LibrarySystem/service/lending"
)

type Controller struct {
	Svc lendingsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// POST /v1/books/:isbn/adopt
// @Summary      Adopt a free book
// @Description  Permanently takes a free book out of the catalog
// @Tags         lending
// @Security     BearerAuth
// @Router       /v1/books/{isbn}/adopt [post]
func (h *Controller) Adopt(c echo.Context) error {
	uid, _ := c.Get("user_id").(int64)

	rcp, err := h.Svc.Adopt(c.Request().Context(), c.Param("isbn"), uid)
	if err != nil {
		h.Log.Error("adopt", "err", err)
		switch lendingsvc.Code(err) {
		case lendingsvc.ErrBookNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
		case lendingsvc.ErrUserNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "user not found"})
		case lendingsvc.ErrNotAdoptable:
			return c.JSON(http.StatusConflict, echo.Map{"message": "only free books can be adopted"})
		case lendingsvc.ErrNotAvailable:
			return c.JSON(http.StatusConflict, echo.Map{"message": "book is not available"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}

	resp := echo.Map{
		"message": "book adopted, donate it back to return it to the library",
		"title":   rcp.Book.Title,
	}
	if !rcp.Persisted {
		resp["warning"] = "changes not saved to disk"
	}
	return c.JSON(http.StatusOK, resp)
}

// POST /v1/books/:isbn/rentals
// @Summary      Rent a book
// @Tags         lending
// @Security     BearerAuth
// @Router       /v1/books/{isbn}/rentals [post]
func (h *Controller) Rent(c echo.Context) error {
	var req RentReq
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

	rcp, err := h.Svc.Rent(c.Request().Context(), c.Param("isbn"), uid, req.Days)
	if err != nil {
		h.Log.Error("rent", "err", err)
		switch lendingsvc.Code(err) {
		case lendingsvc.ErrBookNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
		case lendingsvc.ErrUserNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "user not found"})
		case lendingsvc.ErrNotAvailable:
			return c.JSON(http.StatusConflict, echo.Map{"message": "book is not available for renting"})
		case lendingsvc.ErrInvalidDuration:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "days must be positive"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}

	resp := echo.Map{
		"message":    "book rented",
		"total_cost": fmt.Sprintf("%.2f", rcp.Transaction.TotalCost),
		"due_date":   rcp.DueDate.Format("2006-01-02"),
		"note":       "late fee is 50% of the rental rate per day after the due date",
	}
	if !rcp.Persisted {
		resp["warning"] = "changes not saved to disk"
	}
	return c.JSON(http.StatusCreated, resp)
}

// POST /v1/books/:isbn/return
// @Summary      Return a held book
// @Tags         lending
// @Security     BearerAuth
// @Router       /v1/books/{isbn}/return [post]
func (h *Controller) Return(c echo.Context) error {
	uid, _ := c.Get("user_id").(int64)

	rcp, err := h.Svc.Return(c.Request().Context(), c.Param("isbn"), uid)
	if err != nil {
		h.Log.Error("return", "err", err)
		switch lendingsvc.Code(err) {
		case lendingsvc.ErrBookNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
		case lendingsvc.ErrUserNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "user not found"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}

	// the two soft outcomes are 200s with guidance, not errors
	switch rcp.Outcome {
	case lendingsvc.OutcomeNoBooksHeld:
		return c.JSON(http.StatusOK, echo.Map{"message": "you have no borrowed books to return"})
	case lendingsvc.OutcomeNotHeldByUser:
		return c.JSON(http.StatusOK, echo.Map{"message": "you haven't borrowed this book"})
	}

	resp := echo.Map{
		"message":  "book returned",
		"late_fee": fmt.Sprintf("%.2f", rcp.LateFee),
	}
	if rcp.DaysLate > 0 {
		resp["days_late"] = rcp.DaysLate
	}
	if !rcp.Persisted {
		resp["warning"] = "changes not saved to disk"
	}
	return c.JSON(http.StatusOK, resp)
}

// GET /v1/users/me/books
func (h *Controller) MyBooks(c echo.Context) error {
	uid, _ := c.Get("user_id").(int64)

	books, err := h.Svc.MyBooks(c.Request().Context(), uid)
	if err != nil {
		if lendingsvc.Code(err) == lendingsvc.ErrUserNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "user not found"})
		}
		h.Log.Error("my books", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": books})
}

// GET /v1/users/me/rentals
func (h *Controller) History(c echo.Context) error {
	uid, _ := c.Get("user_id").(int64)

	rows, err := h.Svc.History(c.Request().Context(), uid)
	if err != nil {
		h.Log.Error("history", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}
