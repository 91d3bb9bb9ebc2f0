package utils

import (
	"net/url"
	"os"
	"strings"
)

// BuildObjectAccessURL returns the public access URL for an object key.
//
// Resolution order:
//  1. STORAGE_ACCESS_BASE_URL (supports an {objectKey} placeholder or a
//     trailing "?key=" style query)
//  2. GCS_URL + GCS_BUCKET ("https://{GCS_URL}/{bucket}/{key}")
//  3. the raw object key (last resort; keeps download fields non-empty)
func BuildObjectAccessURL(objectKey string) string {
	base := strings.TrimSpace(os.Getenv("STORAGE_ACCESS_BASE_URL"))
	if base != "" {
		if strings.Contains(base, "{objectKey}") {
			escaped := objectKey
			if strings.Contains(base, "?") {
				escaped = url.QueryEscape(objectKey)
			}
			return strings.ReplaceAll(base, "{objectKey}", escaped)
		}
		if strings.Contains(base, "?") {
			return base + url.QueryEscape(objectKey)
		}
		return strings.TrimRight(base, "/") + "/" + objectKey
	}

	gcsURL := strings.TrimSpace(os.Getenv("GCS_URL"))
	gcsBucket := strings.TrimSpace(os.Getenv("GCS_BUCKET"))
	if gcsURL != "" && gcsBucket != "" {
		return "https://" + gcsURL + "/" + gcsBucket + "/" + objectKey
	}

	return objectKey
}
