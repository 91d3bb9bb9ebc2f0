package exports

import (
	"errors"

	"github.com/kopnusantara/koperasi_backend/models/reports"
)

var (
	// ErrNotFound: no reports match a filter. Fatal to the calling operation.
	ErrNotFound = errors.New("no matching reports found")

	// ErrRenderFailure: template/engine error for a single item. Recorded in
	// the item's outcome, never fatal to a batch.
	ErrRenderFailure = errors.New("render failure")

	// ErrStorageFailure: read/write error against the artifact store. Fatal
	// only when it prevents loading the initial report set.
	ErrStorageFailure = errors.New("storage failure")

	// ErrZipFailure: the archive container could not be opened or written.
	// Fatal to the bundling step only.
	ErrZipFailure = errors.New("zip failure")

	// ErrUnsupportedReportType: no aggregation strategy is registered for the
	// report's type. Recorded as a render failure for that item.
	ErrUnsupportedReportType = reports.ErrUnsupportedReportType
)
