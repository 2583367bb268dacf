package http

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xeipuuv/gojsonschema"

	"finance-ledger-go/internal/apperr"
	"finance-ledger-go/internal/auth"
	"finance-ledger-go/internal/config"
	"finance-ledger-go/internal/service"
)

// Deps are the collaborators the handlers call into.
type Deps struct {
	Users        *service.UserService
	Accounts     *service.AccountService
	Transactions *service.TransactionService
	Insights     *service.InsightsService
	Tokens       *auth.Manager
	Logger       *slog.Logger
}

type Server struct {
	cfg     *config.Config
	schemas map[string]*gojsonschema.Schema
	log     *slog.Logger

	users        *service.UserService
	accounts     *service.AccountService
	transactions *service.TransactionService
	insights     *service.InsightsService
	tokens       *auth.Manager
}

func NewServer(cfg *config.Config, d Deps) *gin.Engine {
	schemas, err := loadSchemas()
	if err != nil {
		panic(err)
	}
	s := &Server{
		cfg:          cfg,
		schemas:      schemas,
		log:          d.Logger,
		users:        d.Users,
		accounts:     d.Accounts,
		transactions: d.Transactions,
		insights:     d.Insights,
		tokens:       d.Tokens,
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestIDMiddleware())
	r.Use(cors(cfg))
	r.Use(logging(s.log))
	r.Use(timeout(time.Duration(cfg.ReqTimeoutSec) * time.Second))

	v1 := r.Group("/api/v1")

	// Public
	v1.POST("/auth/login", s.authLogin)
	v1.POST("/auth/refresh", s.authRefresh)
	v1.POST("/auth/logout", s.authLogout)
	v1.POST("/users", s.createUser)

	// Protected Routes (access token)
	authorized := v1.Group("")
	authorized.Use(AuthMiddleware(s.tokens))
	{
		authorized.GET("/users", s.listUsers)
		authorized.GET("/users/:id", s.getUser)
		authorized.PUT("/users/:id", s.updateUser)
		authorized.DELETE("/users/:id", s.deleteUser)
		authorized.GET("/users/:id/insights", s.getInsights)

		authorized.POST("/bank-accounts", s.createAccount)
		authorized.GET("/bank-accounts/user/:user_id", s.listAccountsByUser)
		authorized.GET("/bank-accounts/user/:user_id/incomes", s.listIncomesByUser)
		authorized.GET("/bank-accounts/:id", s.getAccount)
		authorized.PUT("/bank-accounts/:id", s.updateAccount)
		authorized.DELETE("/bank-accounts/:id", s.deleteAccount)
		authorized.POST("/bank-accounts/:id/reconcile", s.reconcileAccount)

		authorized.POST("/incomes", s.createIncome)
		authorized.GET("/incomes/bank-account/:bank_account_id", s.listIncomesByAccount)
		authorized.GET("/incomes/:id", s.getIncome)
		authorized.PUT("/incomes/:id", s.updateIncome)
		authorized.DELETE("/incomes/:id", s.deleteIncome)

		authorized.POST("/expenses", s.createExpense)
		authorized.GET("/expenses", s.listExpenses)
		authorized.GET("/expenses/user/:user_id", s.listExpensesByUser)
		authorized.GET("/expenses/:id", s.getExpense)
		authorized.PUT("/expenses/:id", s.updateExpense)
		authorized.DELETE("/expenses/:id", s.deleteExpense)
	}

	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })
	return r
}

func parseID(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		return 0, apperr.Validation(name, "invalid %s", name)
	}
	return uint(id), nil
}

// queryInt reads an optional non-negative integer query parameter; absent
// means zero.
func queryInt(c *gin.Context, name string) (int, error) {
	v := c.Query(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, apperr.Validation(name, "%s must be a non-negative integer", name)
	}
	return n, nil
}
