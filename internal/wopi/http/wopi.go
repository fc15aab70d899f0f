package http

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/immor75/MeetingsDecisions/internal/wopi/domain"
	"github.com/immor75/MeetingsDecisions/internal/wopi/service"
	"github.com/immor75/MeetingsDecisions/pkg/httpx"
	"github.com/immor75/MeetingsDecisions/pkg/slogx"
	"github.com/immor75/MeetingsDecisions/pkg/wopisdk"
)

// WopiHandler serves the /wopi/files surface. It only translates between
// HTTP and service.Request/Result; all protocol decisions are made by the
// Dispatcher.
type WopiHandler struct {
	Dispatcher  *service.Dispatcher
	MaxFileSize int64
}

// HandleCheckFileInfo handles GET /wopi/files/{fileId}
//
//	@Summary		CheckFileInfo
//	@Description	Returns the file descriptor and the caller's permissions.
//	@Tags			WOPI
//	@Produce		json
//	@Security		AccessToken
//	@Param			fileId			path		string	true	"File id"
//	@Param			access_token	query		string	true	"WOPI access token"
//	@Success		200				{object}	wopisdk.FileInfo
//	@Failure		401				"Invalid or expired access token"
//	@Failure		404				"Unknown file"
//	@Router			/wopi/files/{fileId} [get].
func (h *WopiHandler) HandleCheckFileInfo(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.authorize(w, r)
	if !ok {
		return
	}
	h.dispatch(w, r, claims, service.Request{Op: service.OpCheckFileInfo})
}

// HandleGetFile handles GET /wopi/files/{fileId}/contents
//
//	@Summary		GetFile
//	@Description	Returns the current file content.
//	@Tags			WOPI
//	@Produce		application/octet-stream
//	@Security		AccessToken
//	@Param			fileId			path	string	true	"File id"
//	@Param			access_token	query	string	true	"WOPI access token"
//	@Success		200				"File bytes, X-WOPI-ItemVersion header"
//	@Failure		401				"Invalid or expired access token"
//	@Failure		404				"Unknown file"
//	@Router			/wopi/files/{fileId}/contents [get].
func (h *WopiHandler) HandleGetFile(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.authorize(w, r)
	if !ok {
		return
	}
	h.dispatch(w, r, claims, service.Request{Op: service.OpGetFile})
}

// HandlePutFile handles POST /wopi/files/{fileId}/contents
//
//	@Summary		PutFile
//	@Description	Replaces the file content. The X-WOPI-Lock header must match the current lock.
//	@Tags			WOPI
//	@Accept			application/octet-stream
//	@Security		AccessToken
//	@Param			fileId			path	string	true	"File id"
//	@Param			access_token	query	string	true	"WOPI access token"
//	@Param			X-WOPI-Override	header	string	false	"PUT"
//	@Param			X-WOPI-Lock		header	string	false	"Current lock id"
//	@Success		200				"X-WOPI-ItemVersion header"
//	@Failure		401				"Invalid or expired access token"
//	@Failure		404				"Unknown file"
//	@Failure		409				"Lock mismatch, X-WOPI-Lock carries the held lock"
//	@Failure		413				"Body exceeds the maximum file size"
//	@Router			/wopi/files/{fileId}/contents [post].
func (h *WopiHandler) HandlePutFile(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.authorize(w, r)
	if !ok {
		return
	}

	if ov := strings.TrimSpace(r.Header.Get(wopisdk.HeaderOverride)); ov != "" && !strings.EqualFold(ov, "PUT") {
		writeStatus(w, http.StatusBadRequest)
		return
	}

	if r.ContentLength > h.MaxFileSize {
		writeStatus(w, http.StatusRequestEntityTooLarge)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.MaxFileSize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeStatus(w, http.StatusRequestEntityTooLarge)
			return
		}
		slogx.FromContext(r.Context()).Warn("failed to read put body", "error", err)
		writeStatus(w, http.StatusBadRequest)
		return
	}

	h.dispatch(w, r, claims, service.Request{
		Op:     service.OpPutFile,
		LockID: r.Header.Get(wopisdk.HeaderLock),
		Body:   body,
	})
}

// HandleFileOverride handles POST /wopi/files/{fileId}
//
//	@Summary		Lock operations
//	@Description	LOCK, UNLOCK, REFRESH_LOCK and GET_LOCK selected by X-WOPI-Override. LOCK with X-WOPI-OldLock is UnlockAndRelock.
//	@Tags			WOPI
//	@Security		AccessToken
//	@Param			fileId			path	string	true	"File id"
//	@Param			access_token	query	string	true	"WOPI access token"
//	@Param			X-WOPI-Override	header	string	true	"LOCK | UNLOCK | REFRESH_LOCK | GET_LOCK"
//	@Param			X-WOPI-Lock		header	string	false	"Lock id"
//	@Param			X-WOPI-OldLock	header	string	false	"Previous lock id"
//	@Success		200				"GET_LOCK returns the lock in X-WOPI-Lock"
//	@Failure		400				"Missing or unknown override"
//	@Failure		401				"Invalid or expired access token"
//	@Failure		404				"Unknown file"
//	@Failure		409				"Lock mismatch, X-WOPI-Lock carries the held lock"
//	@Failure		501				"Override recognised but not supported"
//	@Router			/wopi/files/{fileId} [post].
func (h *WopiHandler) HandleFileOverride(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.authorize(w, r)
	if !ok {
		return
	}

	oldLock := r.Header.Get(wopisdk.HeaderOldLock)

	op, err := service.ParseFileOverride(r.Header.Get(wopisdk.HeaderOverride), oldLock)
	if err != nil {
		slogx.FromContext(r.Context()).Debug("rejected wopi override", "error", err)
		if errors.Is(err, service.ErrOverrideNotImplemented) {
			writeStatus(w, http.StatusNotImplemented)
			return
		}
		writeStatus(w, http.StatusBadRequest)
		return
	}

	h.dispatch(w, r, claims, service.Request{
		Op:        op,
		LockID:    r.Header.Get(wopisdk.HeaderLock),
		OldLockID: oldLock,
	})
}

// authorize validates the access token before anything else in the request
// is read. On failure it has already answered 401.
func (h *WopiHandler) authorize(w http.ResponseWriter, r *http.Request) (domain.AccessClaims, bool) {
	claims, err := h.Dispatcher.Authorize(r.Context(), accessToken(r), r.PathValue("fileId"))
	if err != nil {
		writeStatus(w, http.StatusUnauthorized)
		return domain.AccessClaims{}, false
	}
	return claims, true
}

func (h *WopiHandler) dispatch(w http.ResponseWriter, r *http.Request, claims domain.AccessClaims, req service.Request) {
	req.FileID = r.PathValue("fileId")
	req.AccessToken = accessToken(r)

	res := h.Dispatcher.DispatchAuthorized(r.Context(), claims, req)
	writeResult(w, req.Op, res)
}

// accessToken reads the token from the query, falling back to a bearer
// Authorization header.
func accessToken(r *http.Request) string {
	if tok := r.URL.Query().Get("access_token"); tok != "" {
		return tok
	}
	if authz := r.Header.Get("Authorization"); strings.HasPrefix(authz, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authz, "Bearer "))
	}
	return ""
}

func writeResult(w http.ResponseWriter, op service.Operation, res service.Result) {
	if res.ItemVersion != "" {
		w.Header().Set(wopisdk.HeaderItemVersion, res.ItemVersion)
	}

	switch res.Status {
	case service.StatusOK:
	case service.StatusConflict:
		w.Header().Set(wopisdk.HeaderLock, res.LockID)
		if res.Reason != "" {
			w.Header().Set(wopisdk.HeaderLockFailureReason, res.Reason)
		}
		writeStatus(w, http.StatusConflict)
		return
	default:
		writeStatus(w, statusCode(res.Status))
		return
	}

	switch {
	case res.FileInfo != nil:
		httpx.WriteJSON(w, http.StatusOK, res.FileInfo)
	case op == service.OpGetFile:
		httpx.WriteBytes(w, http.StatusOK, "application/octet-stream", res.Content)
	case op == service.OpGetLock:
		w.Header().Set(wopisdk.HeaderLock, res.LockID)
		writeStatus(w, http.StatusOK)
	default:
		writeStatus(w, http.StatusOK)
	}
}

func statusCode(s service.Status) int {
	switch s {
	case service.StatusOK:
		return http.StatusOK
	case service.StatusUnauthorized:
		return http.StatusUnauthorized
	case service.StatusNotFound:
		return http.StatusNotFound
	case service.StatusConflict:
		return http.StatusConflict
	case service.StatusInvalid:
		return http.StatusBadRequest
	case service.StatusNotImplemented:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// writeStatus answers with an empty body. WOPI clients only look at the
// status code and headers.
func writeStatus(w http.ResponseWriter, code int) {
	httpx.NoCache(w)
	w.Header().Set("Content-Length", "0")
	w.WriteHeader(code)
}
