package exports

import (
	"context"
	"time"

	"github.com/kopnusantara/koperasi_backend/utils"
)

// ExportContext carries the acting identity and the clock through every
// export call, so filenames, header cells and audit events are deterministic
// under test instead of reaching for time.Now() and ambient user state.
type ExportContext struct {
	ActorId   int
	ActorName string
	Clock     func() time.Time
}

func (e ExportContext) Now() time.Time {
	if e.Clock == nil {
		return time.Now()
	}
	return e.Clock()
}

// SystemExportContext is the identity used by scheduled/queued exports.
func SystemExportContext() ExportContext {
	return ExportContext{ActorId: 0, ActorName: "System"}
}

// RequestExportContext builds the export identity from the caller's request
// context. Missing identity values fall back to the system identity.
func RequestExportContext(ctx context.Context) ExportContext {
	ectx := SystemExportContext()
	if id, ok := utils.GetUserIdFromContext(ctx); ok {
		ectx.ActorId = id
	}
	if name, ok := utils.GetUserNameFromContext(ctx); ok && name != "" {
		ectx.ActorName = name
	}
	return ectx
}
