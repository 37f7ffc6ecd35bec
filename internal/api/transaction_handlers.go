package api

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/insightdelivered/finance-tracker/internal/auth"
	"github.com/insightdelivered/finance-tracker/internal/models"
	"github.com/insightdelivered/finance-tracker/internal/parser"
	"github.com/insightdelivered/finance-tracker/internal/report"
	"github.com/insightdelivered/finance-tracker/internal/store"
)

const dateLayout = "2006-01-02"

type createTransactionRequest struct {
	Amount   float64 `json:"amount"`
	Type     string  `json:"type"`
	Category string  `json:"category"`
	Date     string  `json:"date"`
	Note     string  `json:"note"`
}

// HandleCreateTransaction stores a manual entry. A missing category is
// inferred from the note and a missing date means today.
func (s *Server) HandleCreateTransaction(c *fiber.Ctx) error {
	var body createTransactionRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	if body.Amount <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "amount must be greater than 0")
	}
	typ, ok := models.ParseTxType(body.Type)
	if !ok {
		return fiber.NewError(fiber.StatusBadRequest, "type must be income or expense")
	}

	note := strings.TrimSpace(body.Note)
	category := models.Category(strings.TrimSpace(body.Category))
	if category == "" {
		category = parser.Classify(note)
	} else if !parser.IsCategory(string(category)) {
		return fiber.NewError(fiber.StatusBadRequest, "unknown category")
	}

	date := strings.TrimSpace(body.Date)
	if date == "" {
		date = s.now().Format(dateLayout)
	} else if !validDate(date) {
		return fiber.NewError(fiber.StatusBadRequest, "date must be YYYY-MM-DD")
	}

	t, err := s.store.CreateTransaction(userContext(c), models.Transaction{
		UserID:   auth.UserID(c),
		Amount:   body.Amount,
		Type:     typ,
		Category: category,
		Date:     date,
		Note:     note,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(t)
}

// HandleListTransactions returns one filtered page.
func (s *Server) HandleListTransactions(c *fiber.Ctx) error {
	start, end, err := dateRange(c)
	if err != nil {
		return err
	}

	var typ models.TxType
	if raw := c.Query("type"); raw != "" {
		parsed, ok := models.ParseTxType(raw)
		if !ok {
			return fiber.NewError(fiber.StatusBadRequest, "type must be income or expense")
		}
		typ = parsed
	}

	page, err := s.store.ListTransactions(userContext(c), auth.UserID(c), models.TransactionFilter{
		Type:  typ,
		Start: start,
		End:   end,
		Page:  c.QueryInt("page", 1),
		Limit: c.QueryInt("limit", store.DefaultPageLimit),
	})
	if err != nil {
		return err
	}
	return c.JSON(page)
}

// HandleAllTransactions returns every transaction of the caller.
func (s *Server) HandleAllTransactions(c *fiber.Ctx) error {
	txs, err := s.store.AllTransactions(userContext(c), auth.UserID(c), "", "")
	if err != nil {
		return err
	}
	return c.JSON(txs)
}

// HandleSummary returns income, expense and per-category totals.
func (s *Server) HandleSummary(c *fiber.Ctx) error {
	start, end, err := dateRange(c)
	if err != nil {
		return err
	}
	txs, err := s.store.AllTransactions(userContext(c), auth.UserID(c), start, end)
	if err != nil {
		return err
	}
	return c.JSON(report.Summarize(txs))
}

// HandleDeleteTransaction removes one of the caller's transactions.
func (s *Server) HandleDeleteTransaction(c *fiber.Ctx) error {
	err := s.store.DeleteTransaction(userContext(c), auth.UserID(c), c.Params("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Transaction not found")
		}
		return err
	}
	return c.JSON(fiber.Map{"message": "Transaction deleted"})
}

func dateRange(c *fiber.Ctx) (string, string, error) {
	start, end := c.Query("start"), c.Query("end")
	if start != "" && !validDate(start) {
		return "", "", fiber.NewError(fiber.StatusBadRequest, "start must be YYYY-MM-DD")
	}
	if end != "" && !validDate(end) {
		return "", "", fiber.NewError(fiber.StatusBadRequest, "end must be YYYY-MM-DD")
	}
	return start, end, nil
}

func validDate(s string) bool {
	_, err := time.Parse(dateLayout, s)
	return err == nil
}
