package web

import (
	"log/slog"
	"net/http"
)

const uploadMemoryLimit = 10 << 20

// HandleUploadAsset accepts a multipart form with a single "file" field.
// When no object storage is configured the assets service is nil and the
// endpoint reports unavailability instead of failing obscurely.
func (h *Handler) HandleUploadAsset() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.assetsSvc == nil {
			writeErrorBody(w, http.StatusServiceUnavailable, "unavailable", "object storage is not configured")

			return
		}

		err := r.ParseMultipartForm(uploadMemoryLimit)
		if err != nil {
			writeErrorBody(w, http.StatusBadRequest, "bad_request", "invalid multipart form")

			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			writeErrorBody(w, http.StatusBadRequest, "bad_request", "missing file field")

			return
		}

		defer func() {
			err := file.Close()
			if err != nil {
				slog.ErrorContext(r.Context(), "failed to close uploaded file", "error", err)
			}
		}()

		asset, err := h.assetsSvc.Upload(
			r.Context(),
			header.Filename,
			header.Header.Get("Content-Type"),
			header.Size,
			file,
		)
		if err != nil {
			writeError(w, r, err)

			return
		}

		writeJSON(w, r, http.StatusCreated, asset)
	})
}

func (h *Handler) HandleListAssets() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.assetsSvc == nil {
			writeErrorBody(w, http.StatusServiceUnavailable, "unavailable", "object storage is not configured")

			return
		}

		list, err := h.assetsSvc.ListAssets(r.Context())
		if err != nil {
			writeError(w, r, err)

			return
		}

		writeJSON(w, r, http.StatusOK, map[string]any{"data": list})
	})
}

func (h *Handler) HandleDeleteAsset() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.assetsSvc == nil {
			writeErrorBody(w, http.StatusServiceUnavailable, "unavailable", "object storage is not configured")

			return
		}

		err := h.assetsSvc.DeleteAsset(r.Context(), r.PathValue("assetId"))
		if err != nil {
			writeError(w, r, err)

			return
		}

		writeJSON(w, r, http.StatusOK, map[string]any{"ok": true})
	})
}
