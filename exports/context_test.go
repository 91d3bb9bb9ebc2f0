package exports

import (
	"context"
	"testing"

	"github.com/kopnusantara/koperasi_backend/utils"
)

func TestRequestExportContextCarriesActor(t *testing.T) {
	ctx := utils.SetUserIdInContext(context.Background(), 42)
	ctx = utils.SetUserNameInContext(ctx, "Budi Hartono")

	ectx := RequestExportContext(ctx)
	if ectx.ActorId != 42 || ectx.ActorName != "Budi Hartono" {
		t.Fatalf("actor: got id %d name %q", ectx.ActorId, ectx.ActorName)
	}
}

func TestRequestExportContextFallsBackToSystem(t *testing.T) {
	ectx := RequestExportContext(context.Background())
	if ectx.ActorId != 0 || ectx.ActorName != "System" {
		t.Fatalf("fallback identity: got id %d name %q", ectx.ActorId, ectx.ActorName)
	}
}
