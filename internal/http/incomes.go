package http

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"finance-ledger-go/internal/ledger"
)

type incomeRequest struct {
	BankAccountID *uint            `json:"bank_account_id"`
	Amount        *decimal.Decimal `json:"amount"`
	Source        *string          `json:"source"`
	Date          *string          `json:"date"`
	Notes         *string          `json:"notes"`
}

// POST /api/v1/incomes
func (s *Server) createIncome(c *gin.Context) {
	var in incomeRequest
	if !s.bind(c, schemaIncomeCreate, &in) {
		return
	}
	income, err := s.transactions.CreateIncome(c.Request.Context(), ledger.IncomeInput{
		BankAccountID: deref(in.BankAccountID),
		Amount:        deref(in.Amount),
		Source:        deref(in.Source),
		Date:          deref(in.Date),
		Notes:         deref(in.Notes),
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(201, income)
}

func (s *Server) getIncome(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		s.fail(c, err)
		return
	}
	income, err := s.transactions.GetIncome(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, income)
}

func (s *Server) listIncomesByAccount(c *gin.Context) {
	accountID, err := parseID(c, "bank_account_id")
	if err != nil {
		s.fail(c, err)
		return
	}
	incomes, err := s.transactions.ListIncomesByAccount(c.Request.Context(), accountID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, incomes)
}

// PUT /api/v1/incomes/:id
// Only the fields present in the body change.
func (s *Server) updateIncome(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		s.fail(c, err)
		return
	}
	var in incomeRequest
	if !s.bind(c, schemaIncomePatch, &in) {
		return
	}
	income, err := s.transactions.UpdateIncome(c.Request.Context(), id, ledger.IncomePatch{
		BankAccountID: in.BankAccountID,
		Amount:        in.Amount,
		Source:        in.Source,
		Date:          in.Date,
		Notes:         in.Notes,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, income)
}

func (s *Server) deleteIncome(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		s.fail(c, err)
		return
	}
	if err := s.transactions.DeleteIncome(c.Request.Context(), id); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, gin.H{"message": "income deleted"})
}
