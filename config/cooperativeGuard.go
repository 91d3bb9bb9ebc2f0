package config

import (
	"context"
	"strings"

	"github.com/kopnusantara/koperasi_backend/appctx"
	"github.com/kopnusantara/koperasi_backend/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CooperativeGuardPlugin enforces cooperative isolation by automatically
// scoping queries/updates/deletes to the request's cooperative_id when the
// model has a cooperative_id column.
//
// NOTE:
//   - This does NOT apply to Raw SQL queries. Those must include
//     cooperative_id manually.
//   - Admin/internal bypass is explicit via context flags.
type CooperativeGuardPlugin struct{}

func NewCooperativeGuardPlugin() *CooperativeGuardPlugin { return &CooperativeGuardPlugin{} }

func (p *CooperativeGuardPlugin) Name() string { return "cooperative_guard" }

func (p *CooperativeGuardPlugin) Initialize(db *gorm.DB) error {
	if err := db.Callback().Query().Before("gorm:query").Register("cooperative_guard:query", cooperativeGuardCallback); err != nil {
		return err
	}
	if err := db.Callback().Row().Before("gorm:row").Register("cooperative_guard:row", cooperativeGuardCallback); err != nil {
		return err
	}
	if err := db.Callback().Update().Before("gorm:update").Register("cooperative_guard:update", cooperativeGuardCallback); err != nil {
		return err
	}
	if err := db.Callback().Delete().Before("gorm:delete").Register("cooperative_guard:delete", cooperativeGuardCallback); err != nil {
		return err
	}
	return nil
}

func cooperativeGuardCallback(db *gorm.DB) {
	if db == nil || db.Statement == nil {
		return
	}
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	if shouldBypassCooperativeScope(ctx) {
		return
	}
	cooperativeId, ok := utils.GetCooperativeIdFromContext(ctx)
	if !ok || cooperativeId == 0 {
		return
	}

	// Only apply if the current model/table includes a cooperative_id column.
	if db.Statement.Schema == nil {
		return
	}
	hasColumn := false
	for _, f := range db.Statement.Schema.Fields {
		if strings.EqualFold(f.DBName, "cooperative_id") {
			hasColumn = true
			break
		}
	}
	if !hasColumn {
		return
	}

	// Don't duplicate an explicit cooperative filter.
	if whereHasCooperativeId(db.Statement.Clauses["WHERE"]) {
		return
	}

	db.Statement.AddClause(clause.Where{
		Exprs: []clause.Expression{
			clause.Eq{
				Column: clause.Column{Table: db.Statement.Table, Name: "cooperative_id"},
				Value:  cooperativeId,
			},
		},
	})
}

func shouldBypassCooperativeScope(ctx context.Context) bool {
	if v, ok := ctx.Value(appctx.ContextKeySkipCooperativeScope).(bool); ok && v {
		return true
	}
	if v, ok := ctx.Value(appctx.ContextKeyIsAdmin).(bool); ok && v {
		return true
	}
	return false
}

func whereHasCooperativeId(c clause.Clause) bool {
	if c.Expression == nil {
		return false
	}
	w, ok := c.Expression.(clause.Where)
	if !ok {
		return false
	}
	for _, e := range w.Exprs {
		if exprHasCooperativeId(e) {
			return true
		}
	}
	return false
}

func exprHasCooperativeId(e clause.Expression) bool {
	switch v := e.(type) {
	case clause.Eq:
		return colIsCooperativeId(v.Column)
	case clause.Neq:
		return colIsCooperativeId(v.Column)
	case clause.IN:
		return colIsCooperativeId(v.Column)
	case clause.AndConditions:
		for _, x := range v.Exprs {
			if exprHasCooperativeId(x) {
				return true
			}
		}
		return false
	case clause.OrConditions:
		for _, x := range v.Exprs {
			if exprHasCooperativeId(x) {
				return true
			}
		}
		return false
	case clause.Expr:
		// Best-effort for raw expressions.
		return strings.Contains(strings.ToLower(v.SQL), "cooperative_id")
	default:
		return false
	}
}

func colIsCooperativeId(col any) bool {
	switch c := col.(type) {
	case string:
		return strings.EqualFold(c, "cooperative_id")
	case clause.Column:
		return strings.EqualFold(c.Name, "cooperative_id")
	default:
		return false
	}
}
