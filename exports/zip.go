package exports

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"

	"github.com/kopnusantara/koperasi_backend/utils"
)

// bundleArtifacts reads each successful artifact back from storage and packs
// it into a single zip object under exports/zip/{yyyy}/{mm}/. An artifact
// that cannot be read back is skipped, not fatal: the zip contains whatever
// could be bundled.
func bundleArtifacts(ctx context.Context, storage utils.ArtifactStorage, artifacts []*ExportArtifact, zipName string, ectx ExportContext) (*ExportArtifact, error) {
	if len(artifacts) == 0 {
		return nil, fmt.Errorf("%w: no artifacts to bundle", ErrZipFailure)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	added := 0
	for _, artifact := range artifacts {
		data, err := storage.Get(ctx, artifact.Path)
		if err != nil {
			continue
		}
		entry, err := zw.Create(artifact.Filename)
		if err != nil {
			zw.Close()
			return nil, fmt.Errorf("%w: %v", ErrZipFailure, err)
		}
		if _, err := entry.Write(data); err != nil {
			zw.Close()
			return nil, fmt.Errorf("%w: %v", ErrZipFailure, err)
		}
		added++
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrZipFailure, err)
	}
	if added == 0 {
		return nil, fmt.Errorf("%w: no artifacts could be read back", ErrZipFailure)
	}

	now := ectx.Now()
	if zipName == "" {
		zipName = defaultZipName(now)
	}
	key := zipPath(now, zipName)
	if err := storage.Put(ctx, key, buf.Bytes(), "application/zip"); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return &ExportArtifact{
		Filename:    zipName,
		Path:        key,
		Size:        int64(buf.Len()),
		DownloadURL: storage.URL(key),
		CreatedAt:   now,
	}, nil
}
