package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/immor75/MeetingsDecisions/internal/wopi/domain"
	"github.com/immor75/MeetingsDecisions/internal/wopi/store"
	"github.com/immor75/MeetingsDecisions/pkg/slogx"
)

// Status is the outcome class of a dispatched WOPI request.
type Status int

const (
	StatusOK Status = iota
	StatusUnauthorized
	StatusNotFound
	StatusConflict
	StatusInvalid
	StatusNotImplemented
	StatusInternal
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusUnauthorized:
		return "unauthorized"
	case StatusNotFound:
		return "not_found"
	case StatusConflict:
		return "conflict"
	case StatusInvalid:
		return "invalid"
	case StatusNotImplemented:
		return "not_implemented"
	default:
		return "internal"
	}
}

// UnlockedWritePolicy decides whether PutFile may proceed on an unlocked file.
type UnlockedWritePolicy string

const (
	// UnlockedWritesFirstSave allows an unlocked PutFile only until the
	// session has been written once.
	UnlockedWritesFirstSave UnlockedWritePolicy = "first-save"
	UnlockedWritesAlways    UnlockedWritePolicy = "always"
	UnlockedWritesNever     UnlockedWritePolicy = "never"
)

var ErrUnknownPolicy = errors.New("unknown unlocked write policy")

func ParseUnlockedWritePolicy(s string) (UnlockedWritePolicy, error) {
	switch p := UnlockedWritePolicy(s); p {
	case "":
		return UnlockedWritesFirstSave, nil
	case UnlockedWritesFirstSave, UnlockedWritesAlways, UnlockedWritesNever:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
	}
}

// Request is one WOPI call, already parsed off the wire.
type Request struct {
	FileID      string
	AccessToken string
	Op          Operation
	LockID      string
	OldLockID   string
	Body        []byte
}

// Result is the protocol outcome of a Request. LockID is the lock to echo
// in X-WOPI-Lock: the held lock on Conflict, the current lock on GetLock.
type Result struct {
	Status      Status
	LockID      string
	FileInfo    *domain.FileInfo
	Content     []byte
	ItemVersion string
	Reason      string
}

// Dispatcher is the WOPI protocol state machine. It owns no state: tokens
// are validated by Tokens, content lives in Sessions and locks in Locks.
type Dispatcher struct {
	Tokens            TokenValidator
	Sessions          store.Sessions
	Locks             *LockManager
	UnlockedWrites    UnlockedWritePolicy
	PostMessageOrigin string
}

// Authorize validates token for fileID. Transports call it before they
// look at any other part of a request, so an unauthenticated caller never
// sees anything but StatusUnauthorized.
func (d *Dispatcher) Authorize(ctx context.Context, token, fileID string) (domain.AccessClaims, error) {
	claims, err := d.Tokens.Validate(token, fileID)
	if err != nil {
		slogx.FromContext(ctx).Debug("wopi token rejected", "file_id", fileID, "err", err)
		return domain.AccessClaims{}, err
	}
	return claims, nil
}

// Unauthorized is the Result for a request whose token failed Authorize.
func Unauthorized() Result {
	return Result{Status: StatusUnauthorized, Reason: "invalid access token"}
}

// Dispatch validates the token, resolves the session and routes the
// operation. It never panics on bad input; every failure is a Result.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) Result {
	claims, err := d.Authorize(ctx, req.AccessToken, req.FileID)
	if err != nil {
		return Unauthorized()
	}
	return d.DispatchAuthorized(ctx, claims, req)
}

// DispatchAuthorized routes a request whose token has already passed
// Authorize. claims must have been issued for req.FileID.
func (d *Dispatcher) DispatchAuthorized(ctx context.Context, claims domain.AccessClaims, req Request) Result {
	if claims.FileID != req.FileID {
		return Unauthorized()
	}
	ctx = slogx.WithFileID(ctx, req.FileID)

	meta, err := d.Sessions.GetMetadata(ctx, req.FileID)
	if err != nil {
		return d.storeFailure(ctx, req, err)
	}

	switch req.Op {
	case OpCheckFileInfo:
		return d.checkFileInfo(meta, claims)
	case OpGetFile:
		return d.getFile(ctx, req)
	case OpPutFile:
		return d.putFile(ctx, req, claims)
	case OpLock, OpRefreshLock:
		return d.lockResult(req.FileID, d.Locks.Lock(req.FileID, req.LockID))
	case OpUnlock:
		return d.lockResult(req.FileID, d.Locks.Unlock(req.FileID, req.LockID))
	case OpUnlockAndRelock:
		return d.lockResult(req.FileID, d.Locks.UnlockAndRelock(req.FileID, req.OldLockID, req.LockID))
	case OpGetLock:
		return Result{Status: StatusOK, LockID: d.Locks.GetLock(req.FileID)}
	default:
		return Result{Status: StatusInvalid, Reason: fmt.Sprintf("unsupported operation %q", req.Op)}
	}
}

func (d *Dispatcher) checkFileInfo(meta domain.Session, claims domain.AccessClaims) Result {
	canWrite := claims.Role.CanWrite()
	info := &domain.FileInfo{
		BaseFileName:     meta.FileName,
		OwnerId:          meta.OwnerID,
		Size:             meta.Size,
		UserId:           claims.UserID,
		UserFriendlyName: claims.DisplayName,
		Version:          meta.Version,
		SHA256:           meta.SHA256,
		LastModifiedTime: meta.LastModified.UTC().Format(time.RFC3339),

		UserCanWrite:            canWrite,
		ReadOnly:                !canWrite,
		UserCanNotWriteRelative: true,

		SupportsUpdate:             true,
		SupportsLocks:              true,
		SupportsGetLock:            true,
		SupportsExtendedLockLength: true,

		PostMessageOrigin: d.PostMessageOrigin,
	}
	return Result{Status: StatusOK, FileInfo: info, ItemVersion: meta.Version}
}

func (d *Dispatcher) getFile(ctx context.Context, req Request) Result {
	content, meta, err := d.Sessions.Read(ctx, req.FileID)
	if err != nil {
		return d.storeFailure(ctx, req, err)
	}
	return Result{Status: StatusOK, Content: content, ItemVersion: meta.Version}
}

func (d *Dispatcher) putFile(ctx context.Context, req Request, claims domain.AccessClaims) Result {
	if !claims.Role.CanWrite() {
		return Result{Status: StatusConflict, LockID: d.Locks.GetLock(req.FileID), Reason: "user cannot write"}
	}

	var written domain.Session
	err := d.Locks.Guard(req.FileID, func(held string) error {
		if err := d.checkWrite(ctx, req, held); err != nil {
			return err
		}
		var err error
		written, err = d.Sessions.Write(ctx, req.FileID, req.Body)
		return err
	})

	var lc *LockConflictError
	switch {
	case err == nil:
		return Result{Status: StatusOK, ItemVersion: written.Version}
	case errors.As(err, &lc):
		return Result{Status: StatusConflict, LockID: lc.Held, Reason: "lock mismatch"}
	default:
		return d.storeFailure(ctx, req, err)
	}
}

// checkWrite runs under the file's lock mutex.
func (d *Dispatcher) checkWrite(ctx context.Context, req Request, held string) error {
	if held != "" {
		if req.LockID != held {
			return conflict(req.FileID, held)
		}
		return nil
	}

	// Unlocked file. Presenting a lock that does not exist is a mismatch.
	if req.LockID != "" {
		return conflict(req.FileID, "")
	}

	switch d.UnlockedWrites {
	case UnlockedWritesAlways:
		return nil
	case UnlockedWritesNever:
		return conflict(req.FileID, "")
	default:
		meta, err := d.Sessions.GetMetadata(ctx, req.FileID)
		if err != nil {
			return err
		}
		if meta.Written {
			return conflict(req.FileID, "")
		}
		return nil
	}
}

func (d *Dispatcher) lockResult(fileID string, err error) Result {
	var lc *LockConflictError
	switch {
	case err == nil:
		return Result{Status: StatusOK}
	case errors.As(err, &lc):
		return Result{Status: StatusConflict, LockID: lc.Held, Reason: "lock mismatch"}
	case errors.Is(err, ErrLockIDRequired):
		return Result{Status: StatusInvalid, Reason: "missing X-WOPI-Lock"}
	default:
		return Result{Status: StatusInternal, Reason: err.Error()}
	}
}

func (d *Dispatcher) storeFailure(ctx context.Context, req Request, err error) Result {
	if errors.Is(err, store.ErrNotFound) {
		return Result{Status: StatusNotFound, Reason: "file not found"}
	}
	slogx.FromContext(ctx).Error("wopi operation failed", "op", req.Op, "error", err)
	return Result{Status: StatusInternal, Reason: "internal error"}
}
