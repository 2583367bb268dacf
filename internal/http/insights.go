package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GET /api/v1/users/:id/insights?month=2024-04
func (s *Server) getInsights(c *gin.Context) {
	userID, err := parseID(c, "id")
	if err != nil {
		s.fail(c, err)
		return
	}
	res, err := s.insights.MonthlySummary(c.Request.Context(), userID, c.Query("month"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
