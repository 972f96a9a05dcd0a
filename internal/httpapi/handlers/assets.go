package handlers

import (
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nabeel-w/ButterCut-Assignment/internal/httpkit"
	"github.com/nabeel-w/ButterCut-Assignment/internal/models"
)

var assetTypeByExt = map[string]models.OverlayType{
	".jpg":  models.OverlayImage,
	".jpeg": models.OverlayImage,
	".png":  models.OverlayImage,
	".gif":  models.OverlayImage,
	".bmp":  models.OverlayImage,
	".webp": models.OverlayImage,

	".mp4":  models.OverlayVideo,
	".mov":  models.OverlayVideo,
	".avi":  models.OverlayVideo,
	".mkv":  models.OverlayVideo,
	".webm": models.OverlayVideo,
}

// PostAsset stores an uploaded image or video in the asset directory and
// records it in the catalog. The response's filename is what an overlay's
// content field should reference.
func (h *Handler) PostAsset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		httpkit.WriteErr(w, 400, "VALIDATION_ERROR", "invalid multipart body", nil)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httpkit.WriteErr(w, 400, "VALIDATION_ERROR", "file is required", map[string]any{"field": "file"})
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	assetType, ok := assetTypeByExt[ext]
	if !ok {
		httpkit.WriteErr(w, 400, "VALIDATION_ERROR", "unsupported asset type",
			map[string]any{"extension": ext})
		return
	}

	id := uuid.NewString()
	filename := id + ext
	path := filepath.Join(h.assetsDir, filename)
	if err := saveUpload(file, path); err != nil {
		h.log.Error("failed to persist asset", "error", err.Error())
		httpkit.WriteErr(w, 500, "INTERNAL_ERROR", "failed to persist asset", nil)
		return
	}

	asset := models.OverlayAsset{
		ID:           id,
		Filename:     filename,
		OriginalName: filepath.Base(header.Filename),
		Type:         assetType,
		Path:         path,
		CreatedAt:    time.Now().UTC(),
	}
	if err := h.store.CreateOverlayAsset(ctx, asset); err != nil {
		if httpkit.IsUniqueViolation(err) {
			httpkit.WriteErr(w, 409, "CONFLICT", "asset filename already exists",
				map[string]any{"filename": filename})
			return
		}
		h.log.Error("failed to record asset", "error", err.Error())
		httpkit.WriteError(w, err)
		return
	}

	httpkit.WriteJSON(w, 201, map[string]any{"asset": asset})
}

// ListAssets returns the overlay-asset catalog, newest first.
func (h *Handler) ListAssets(w http.ResponseWriter, r *http.Request) {
	assets, err := h.store.ListOverlayAssets(r.Context())
	if err != nil {
		h.log.Error("failed to list assets", "error", err.Error())
		httpkit.WriteError(w, err)
		return
	}
	httpkit.WriteJSON(w, 200, map[string]any{"assets": assets})
}
