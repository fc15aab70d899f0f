package http

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/immor75/MeetingsDecisions/internal/wopi/domain"
	"github.com/immor75/MeetingsDecisions/internal/wopi/store"
	"github.com/immor75/MeetingsDecisions/pkg/httpx"
	"github.com/immor75/MeetingsDecisions/pkg/slogx"
	"github.com/immor75/MeetingsDecisions/pkg/wopisdk"
)

// ArtifactsHandler lets the document generation pipeline hand off results.
type ArtifactsHandler struct {
	Artifacts   store.Artifacts
	MaxFileSize int64
}

// HandlePut handles PUT /v1/artifacts/{documentId}
//
//	@Summary		Store an artifact
//	@Description	Inserts or replaces a generated document. The body is the raw file.
//	@Tags			Artifacts
//	@Accept			application/octet-stream
//	@Produce		json
//	@Security		BearerAuth
//	@Param			documentId	path		string	true	"Document id"
//	@Param			fileName	query		string	false	"File name shown in the editor"
//	@Param			ownerId		query		string	false	"Owner user id"
//	@Success		200			{object}	wopisdk.ArtifactResponse
//	@Failure		400			{object}	wopisdk.APIError	"error, error_description"
//	@Failure		401			{object}	wopisdk.APIError	"error, error_description"
//	@Failure		413			{object}	wopisdk.APIError	"Body exceeds the maximum file size"
//	@Router			/v1/artifacts/{documentId} [put].
func (h *ArtifactsHandler) HandlePut(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id := r.PathValue("documentId")
	if err := domain.ValidateArtifactID(id); err != nil {
		wopisdk.ErrInvalidRequest.WithDescription("invalid document id").WriteError(w)
		return
	}

	if r.ContentLength > h.MaxFileSize {
		wopisdk.ErrTooLarge.WriteError(w)
		return
	}
	content, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.MaxFileSize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			wopisdk.ErrTooLarge.WriteError(w)
			return
		}
		wopisdk.ErrInvalidRequest.WithDescription("failed to read body").WriteError(w)
		return
	}
	if len(content) == 0 {
		wopisdk.ErrInvalidRequest.WithDescription("empty document").WriteError(w)
		return
	}

	fileName := strings.TrimSpace(r.URL.Query().Get("fileName"))

	a, err := h.Artifacts.PutArtifact(ctx, domain.Artifact{
		ID:       id,
		FileName: fileName,
		OwnerID:  r.URL.Query().Get("ownerId"),
	}, content)
	if err != nil {
		writeArtifactError(w, r, err)
		return
	}

	slogx.FromContext(ctx).Info("artifact stored", "artifact_id", a.ID, "size", a.Size)
	httpx.WriteJSON(w, http.StatusOK, toArtifactResponse(a))
}

// HandleList handles GET /v1/artifacts
//
//	@Summary		List artifacts
//	@Tags			Artifacts
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	wopisdk.ArtifactListResponse
//	@Failure		401	{object}	wopisdk.APIError	"error, error_description"
//	@Router			/v1/artifacts [get].
func (h *ArtifactsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.Artifacts.ListArtifacts(r.Context())
	if err != nil {
		writeArtifactError(w, r, err)
		return
	}

	response := wopisdk.ArtifactListResponse{
		Artifacts: make([]wopisdk.ArtifactResponse, len(list)),
	}
	for i, a := range list {
		response.Artifacts[i] = toArtifactResponse(a)
	}

	httpx.WriteJSON(w, http.StatusOK, response)
}

// HandleDelete handles DELETE /v1/artifacts/{documentId}
//
//	@Summary		Delete an artifact
//	@Description	Open sessions keep their own copy.
//	@Tags			Artifacts
//	@Security		BearerAuth
//	@Param			documentId	path	string	true	"Document id"
//	@Success		204
//	@Failure		401	{object}	wopisdk.APIError	"error, error_description"
//	@Failure		404	{object}	wopisdk.APIError	"Unknown artifact"
//	@Router			/v1/artifacts/{documentId} [delete].
func (h *ArtifactsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.Artifacts.DeleteArtifact(r.Context(), r.PathValue("documentId")); err != nil {
		writeArtifactError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func toArtifactResponse(a domain.Artifact) wopisdk.ArtifactResponse {
	return wopisdk.ArtifactResponse{
		ID:        a.ID,
		FileName:  a.FileName,
		OwnerID:   a.OwnerID,
		Size:      a.Size,
		SHA256:    a.SHA256,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func writeArtifactError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrInvalidID), errors.Is(err, domain.ErrInvalidArtifactID):
		wopisdk.ErrInvalidRequest.WithDescription("invalid document id").WriteError(w)
	case errors.Is(err, store.ErrNotFound):
		wopisdk.ErrNotFound.WriteError(w)
	default:
		slogx.FromContext(r.Context()).Error("artifact operation failed", "error", err)
		wopisdk.ErrServerError.WriteError(w)
	}
}
