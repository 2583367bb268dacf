package http

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/gin-gonic/gin"
	"github.com/xeipuuv/gojsonschema"

	"finance-ledger-go/internal/apperr"
)

//go:embed schemas/*.schema.json
var schemaFS embed.FS

const (
	schemaUserCreate    = "user_create"
	schemaUserPatch     = "user_patch"
	schemaLogin         = "login"
	schemaAccountCreate = "account_create"
	schemaAccountPatch  = "account_patch"
	schemaIncomeCreate  = "income_create"
	schemaIncomePatch   = "income_patch"
	schemaExpenseCreate = "expense_create"
	schemaExpensePatch  = "expense_patch"
)

func loadSchemas() (map[string]*gojsonschema.Schema, error) {
	names := []string{
		schemaUserCreate, schemaUserPatch, schemaLogin,
		schemaAccountCreate, schemaAccountPatch,
		schemaIncomeCreate, schemaIncomePatch,
		schemaExpenseCreate, schemaExpensePatch,
	}
	out := make(map[string]*gojsonschema.Schema, len(names))
	for _, name := range names {
		raw, err := schemaFS.ReadFile("schemas/" + name + ".schema.json")
		if err != nil {
			return nil, err
		}
		schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
		if err != nil {
			return nil, fmt.Errorf("schema %s: %w", name, err)
		}
		out[name] = schema
	}
	return out, nil
}

// bind validates the body against the named schema and decodes it into dst.
// On failure the error response is already written.
func (s *Server) bind(c *gin.Context, schema string, dst any) bool {
	body, err := c.GetRawData()
	if err != nil || len(bytes.TrimSpace(body)) == 0 {
		s.fail(c, apperr.Validation("", "request body is required"))
		return false
	}

	res, err := s.schemas[schema].Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		s.fail(c, apperr.Validation("", "request body is not valid JSON"))
		return false
	}
	if !res.Valid() {
		s.fail(c, schemaError(res.Errors()))
		return false
	}

	if err := json.Unmarshal(body, dst); err != nil {
		s.fail(c, apperr.Validation("", "request body could not be decoded"))
		return false
	}
	return true
}

// schemaError reports the first violation by field name.
func schemaError(errs []gojsonschema.ResultError) error {
	type violation struct{ field, msg string }
	vs := make([]violation, 0, len(errs))
	for _, e := range errs {
		field := e.Field()
		msg := e.Description()
		switch e.Type() {
		case "required":
			field = fmt.Sprint(e.Details()["property"])
			msg = field + " is required"
		case "additional_property_not_allowed":
			field = fmt.Sprint(e.Details()["property"])
			msg = "unknown field " + field
		default:
			msg = field + ": " + msg
		}
		if field == "(root)" {
			field = ""
		}
		vs = append(vs, violation{field, msg})
	}
	sort.Slice(vs, func(i, j int) bool { return vs[i].field < vs[j].field })
	return apperr.Validation(vs[0].field, "%s", vs[0].msg)
}
