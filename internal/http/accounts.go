package http

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"finance-ledger-go/internal/apperr"
	"finance-ledger-go/internal/service"
)

type accountRequest struct {
	UserID        uint    `json:"user_id"`
	BankName      *string `json:"bank_name"`
	AccountNumber *string `json:"account_number"`
	RoutingNumber *string `json:"routing_number"`
	AccountType   *string `json:"account_type"`
	Alias         *string `json:"alias"`
}

// POST /api/v1/bank-accounts
// The body cannot carry a balance; every account opens at zero.
func (s *Server) createAccount(c *gin.Context) {
	var in accountRequest
	if !s.bind(c, schemaAccountCreate, &in) {
		return
	}
	a, err := s.accounts.Create(c.Request.Context(), service.NewAccount{
		UserID:        in.UserID,
		BankName:      deref(in.BankName),
		AccountNumber: deref(in.AccountNumber),
		RoutingNumber: deref(in.RoutingNumber),
		AccountType:   deref(in.AccountType),
		Alias:         in.Alias,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(201, a)
}

func (s *Server) listAccountsByUser(c *gin.Context) {
	userID, err := parseID(c, "user_id")
	if err != nil {
		s.fail(c, err)
		return
	}
	accounts, err := s.accounts.ListByUser(c.Request.Context(), userID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, accounts)
}

func (s *Server) listIncomesByUser(c *gin.Context) {
	userID, err := parseID(c, "user_id")
	if err != nil {
		s.fail(c, err)
		return
	}
	incomes, err := s.accounts.ListIncomesByUser(c.Request.Context(), userID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, incomes)
}

func (s *Server) getAccount(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		s.fail(c, err)
		return
	}
	a, err := s.accounts.Get(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, a)
}

func (s *Server) updateAccount(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		s.fail(c, err)
		return
	}
	var in accountRequest
	if !s.bind(c, schemaAccountPatch, &in) {
		return
	}
	a, err := s.accounts.Update(c.Request.Context(), id, service.AccountPatch{
		BankName:      in.BankName,
		AccountNumber: in.AccountNumber,
		RoutingNumber: in.RoutingNumber,
		AccountType:   in.AccountType,
		Alias:         in.Alias,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, a)
}

func (s *Server) deleteAccount(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		s.fail(c, err)
		return
	}
	if err := s.accounts.Delete(c.Request.Context(), id); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, gin.H{"message": "bank account deleted"})
}

// POST /api/v1/bank-accounts/:id/reconcile?repair=true
func (s *Server) reconcileAccount(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		s.fail(c, err)
		return
	}
	repair := false
	if v := c.Query("repair"); v != "" {
		if repair, err = strconv.ParseBool(v); err != nil {
			s.fail(c, apperr.Validation("repair", "repair must be true or false"))
			return
		}
	}
	d, err := s.accounts.Reconcile(c.Request.Context(), id, repair)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, gin.H{
		"bank_account_id": d.BankAccountID,
		"cached":          d.Cached,
		"computed":        d.Computed,
		"consistent":      d.Consistent(),
		"repaired":        d.Repaired,
	})
}
