package http

import (
	"github.com/gin-gonic/gin"

	"finance-ledger-go/internal/service"
)

type userRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Age      *int    `json:"age"`
	Password *string `json:"password"`
}

// POST /api/v1/users
func (s *Server) createUser(c *gin.Context) {
	var in userRequest
	if !s.bind(c, schemaUserCreate, &in) {
		return
	}
	u, err := s.users.Create(c.Request.Context(), service.NewUser{
		Name:     deref(in.Name),
		Email:    deref(in.Email),
		Age:      deref(in.Age),
		Password: deref(in.Password),
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(201, u)
}

func (s *Server) listUsers(c *gin.Context) {
	users, err := s.users.List(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, users)
}

func (s *Server) getUser(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		s.fail(c, err)
		return
	}
	u, err := s.users.Get(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, u)
}

func (s *Server) updateUser(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		s.fail(c, err)
		return
	}
	var in userRequest
	if !s.bind(c, schemaUserPatch, &in) {
		return
	}
	u, err := s.users.Update(c.Request.Context(), id, service.UserPatch{
		Name:     in.Name,
		Email:    in.Email,
		Age:      in.Age,
		Password: in.Password,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, u)
}

func (s *Server) deleteUser(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		s.fail(c, err)
		return
	}
	if err := s.users.Delete(c.Request.Context(), id); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, gin.H{"message": "user deleted"})
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
