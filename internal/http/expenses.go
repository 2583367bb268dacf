package http

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"finance-ledger-go/internal/ledger"
)

type expenseRequest struct {
	BankAccountID *uint            `json:"bank_account_id"`
	Amount        *decimal.Decimal `json:"amount"`
	Category      *string          `json:"category"`
	Date          *string          `json:"date"`
	Hour          *string          `json:"hour"`
	Description   *string          `json:"description"`
}

// POST /api/v1/expenses
func (s *Server) createExpense(c *gin.Context) {
	var in expenseRequest
	if !s.bind(c, schemaExpenseCreate, &in) {
		return
	}
	expense, err := s.transactions.CreateExpense(c.Request.Context(), ledger.ExpenseInput{
		BankAccountID: deref(in.BankAccountID),
		Amount:        deref(in.Amount),
		Category:      deref(in.Category),
		Date:          deref(in.Date),
		Hour:          deref(in.Hour),
		Description:   deref(in.Description),
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(201, expense)
}

// GET /api/v1/expenses?page=1&per_page=10
func (s *Server) listExpenses(c *gin.Context) {
	page, err := queryInt(c, "page")
	if err != nil {
		s.fail(c, err)
		return
	}
	perPage, err := queryInt(c, "per_page")
	if err != nil {
		s.fail(c, err)
		return
	}
	res, err := s.transactions.ListExpenses(c.Request.Context(), page, perPage)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, res)
}

func (s *Server) getExpense(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		s.fail(c, err)
		return
	}
	expense, err := s.transactions.GetExpense(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, expense)
}

func (s *Server) listExpensesByUser(c *gin.Context) {
	userID, err := parseID(c, "user_id")
	if err != nil {
		s.fail(c, err)
		return
	}
	expenses, err := s.transactions.ListExpensesByUser(c.Request.Context(), userID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, expenses)
}

func (s *Server) updateExpense(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		s.fail(c, err)
		return
	}
	var in expenseRequest
	if !s.bind(c, schemaExpensePatch, &in) {
		return
	}
	expense, err := s.transactions.UpdateExpense(c.Request.Context(), id, ledger.ExpensePatch{
		BankAccountID: in.BankAccountID,
		Amount:        in.Amount,
		Category:      in.Category,
		Date:          in.Date,
		Hour:          in.Hour,
		Description:   in.Description,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, expense)
}

func (s *Server) deleteExpense(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		s.fail(c, err)
		return
	}
	if err := s.transactions.DeleteExpense(c.Request.Context(), id); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, gin.H{"message": "expense deleted"})
}
