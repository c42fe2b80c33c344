package inventory

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
)

// handleExportSnapshot uploads a zstd-compressed JSON snapshot of the
// collection to object storage and returns a presigned download URL.
func (a *API) handleExportSnapshot(w http.ResponseWriter, r *http.Request) {
	if a.deps.S3 == nil {
		respondError(w, http.StatusFailedDependency, errors.New("s3 client not configured"))
		return
	}
	if a.config.SnapshotBucket == "" {
		respondError(w, http.StatusFailedDependency, errors.New("snapshot bucket not configured"))
		return
	}

	machines := a.deps.Store.List()
	payload, err := json.Marshal(map[string]any{
		"exported_at": time.Now().UTC(),
		"machines":    machines,
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	var buf bytes.Buffer
	enc, err := zstd.NewWriter(&buf)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	if _, err := enc.Write(payload); err != nil {
		_ = enc.Close()
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	if err := enc.Close(); err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	key := fmt.Sprintf("snapshots/%s/%s.json.zst",
		time.Now().UTC().Format("2006-01-02"), uuid.New())

	if err := a.deps.S3.PutObject(r.Context(), a.config.SnapshotBucket, key,
		bytes.NewReader(buf.Bytes()), int64(buf.Len()), "application/zstd"); err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Errorf("upload snapshot: %w", err))
		return
	}

	downloadURL, err := a.deps.S3.PresignGet(r.Context(), a.config.SnapshotBucket, key, snapshotURLExpiry)
	if err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Errorf("presign get: %w", err))
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"key":          key,
		"machines":     len(machines),
		"download_url": downloadURL,
	})
}
