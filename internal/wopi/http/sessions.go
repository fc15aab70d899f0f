package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/immor75/MeetingsDecisions/internal/wopi/domain"
	"github.com/immor75/MeetingsDecisions/internal/wopi/service"
	"github.com/immor75/MeetingsDecisions/internal/wopi/store"
	"github.com/immor75/MeetingsDecisions/pkg/httpx"
	"github.com/immor75/MeetingsDecisions/pkg/slogx"
	"github.com/immor75/MeetingsDecisions/pkg/wopisdk"
)

const maxJSONBody = 1 << 20

// SessionsHandler handles the editing session management endpoints.
type SessionsHandler struct {
	Factory  *service.SessionFactory
	Sessions store.Sessions
	Locks    *service.LockManager
}

// HandleCreate handles POST /v1/sessions
//
//	@Summary		Open an editing session
//	@Description	Copies an artifact into a new WOPI session and returns the editor launch URL with an access token for the requesting user.
//	@Tags			Sessions
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		wopisdk.CreateSessionRequest	true	"Session request"
//	@Success		201		{object}	wopisdk.SessionResponse
//	@Failure		400		{object}	wopisdk.APIError	"error, error_description"
//	@Failure		401		{object}	wopisdk.APIError	"error, error_description"
//	@Failure		404		{object}	wopisdk.APIError	"Unknown artifact"
//	@Failure		503		{object}	wopisdk.APIError	"Too many open sessions"
//	@Router			/v1/sessions [post].
func (h *SessionsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req wopisdk.CreateSessionRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody)).Decode(&req); err != nil {
		wopisdk.ErrInvalidRequest.WithDescription("Invalid JSON in request body").WriteError(w)
		return
	}

	role, err := domain.ParseRole(req.Role)
	if err != nil {
		wopisdk.ErrInvalidRequest.WithDescription("role must be editor or viewer").WriteError(w)
		return
	}

	sess, err := h.Factory.Create(ctx, service.CreateSessionInput{
		ArtifactID:  req.ArtifactID,
		FileName:    req.FileName,
		OwnerID:     req.OwnerID,
		UserID:      req.UserID,
		DisplayName: req.DisplayName,
		Role:        role,
	})
	if err != nil {
		writeSessionError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toSessionResponse(sess))
}

// HandleJoin handles POST /v1/sessions/{fileId}/tokens
//
//	@Summary		Join an editing session
//	@Description	Issues an access token and editor URL for another user on an open session.
//	@Tags			Sessions
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			fileId	path		string						true	"File id"
//	@Param			request	body		wopisdk.JoinSessionRequest	true	"Join request"
//	@Success		200		{object}	wopisdk.SessionResponse
//	@Failure		400		{object}	wopisdk.APIError	"error, error_description"
//	@Failure		401		{object}	wopisdk.APIError	"error, error_description"
//	@Failure		404		{object}	wopisdk.APIError	"Unknown session"
//	@Router			/v1/sessions/{fileId}/tokens [post].
func (h *SessionsHandler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req wopisdk.JoinSessionRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody)).Decode(&req); err != nil {
		wopisdk.ErrInvalidRequest.WithDescription("Invalid JSON in request body").WriteError(w)
		return
	}

	role, err := domain.ParseRole(req.Role)
	if err != nil {
		wopisdk.ErrInvalidRequest.WithDescription("role must be editor or viewer").WriteError(w)
		return
	}

	sess, err := h.Factory.Join(ctx, r.PathValue("fileId"), req.UserID, req.DisplayName, role)
	if err != nil {
		writeSessionError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toSessionResponse(sess))
}

// HandleList handles GET /v1/sessions
//
//	@Summary		List open sessions
//	@Tags			Sessions
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	wopisdk.SessionListResponse
//	@Failure		401	{object}	wopisdk.APIError	"error, error_description"
//	@Router			/v1/sessions [get].
func (h *SessionsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sessions, err := h.Sessions.List(ctx)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to list sessions", "error", err)
		wopisdk.ErrServerError.WithDescription("Failed to list sessions").WriteError(w)
		return
	}

	response := wopisdk.SessionListResponse{
		Sessions: make([]wopisdk.SessionInfo, len(sessions)),
	}
	for i, s := range sessions {
		response.Sessions[i] = wopisdk.SessionInfo{
			FileID:           s.FileID,
			SourceArtifactID: s.SourceArtifactID,
			FileName:         s.FileName,
			OwnerID:          s.OwnerID,
			Size:             s.Size,
			Version:          s.Version,
			LockID:           h.Locks.GetLock(s.FileID),
			LastModified:     s.LastModified,
			LastAccessed:     s.LastAccessed,
		}
	}

	httpx.WriteJSON(w, http.StatusOK, response)
}

// HandleDelete handles DELETE /v1/sessions/{fileId}
//
//	@Summary		Close a session
//	@Description	Drops the working copy and any lock on it.
//	@Tags			Sessions
//	@Security		BearerAuth
//	@Param			fileId	path	string	true	"File id"
//	@Success		204
//	@Failure		401	{object}	wopisdk.APIError	"error, error_description"
//	@Failure		404	{object}	wopisdk.APIError	"Unknown session"
//	@Router			/v1/sessions/{fileId} [delete].
func (h *SessionsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.Factory.Close(r.Context(), r.PathValue("fileId")); err != nil {
		writeSessionError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func toSessionResponse(s service.EditingSession) wopisdk.SessionResponse {
	return wopisdk.SessionResponse{
		FileID:         s.Session.FileID,
		FileName:       s.Session.FileName,
		WopiSrc:        s.WopiSrc,
		AccessToken:    s.AccessToken,
		AccessTokenTTL: s.AccessTokenTTL,
		ExpiresAt:      s.ExpiresAt,
		EditorURL:      s.EditorURL,
	}
}

func writeSessionError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrMissingArtifactID):
		wopisdk.ErrInvalidRequest.WithDescription("artifactId is required").WriteError(w)
	case errors.Is(err, service.ErrMissingUserID):
		wopisdk.ErrInvalidRequest.WithDescription("userId is required").WriteError(w)
	case errors.Is(err, store.ErrInvalidID), errors.Is(err, domain.ErrInvalidArtifactID):
		wopisdk.ErrInvalidRequest.WithDescription("invalid artifact id").WriteError(w)
	case errors.Is(err, store.ErrNotFound):
		wopisdk.ErrNotFound.WriteError(w)
	case errors.Is(err, store.ErrCapacity):
		wopisdk.ErrCapacity.WriteError(w)
	default:
		slogx.FromContext(r.Context()).Error("session operation failed", "error", err)
		wopisdk.ErrServerError.WriteError(w)
	}
}
