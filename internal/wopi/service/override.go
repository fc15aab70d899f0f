package service

import (
	"errors"
	"strings"
)

// Operation is a WOPI file operation.
type Operation string

const (
	OpCheckFileInfo   Operation = "CHECK_FILE_INFO"
	OpGetFile         Operation = "GET_FILE"
	OpPutFile         Operation = "PUT"
	OpLock            Operation = "LOCK"
	OpUnlock          Operation = "UNLOCK"
	OpRefreshLock     Operation = "REFRESH_LOCK"
	OpGetLock         Operation = "GET_LOCK"
	OpUnlockAndRelock Operation = "UNLOCK_AND_RELOCK"
)

var (
	ErrOverrideMissing        = errors.New("missing X-WOPI-Override")
	ErrOverrideUnknown        = errors.New("unknown X-WOPI-Override")
	ErrOverrideNotImplemented = errors.New("X-WOPI-Override not implemented")
)

// notImplemented are overrides a WOPI client may send that this host
// recognises but does not support.
var notImplemented = map[string]struct{}{
	"PUT_RELATIVE":   {},
	"RENAME_FILE":    {},
	"DELETE":         {},
	"PUT_USER_INFO":  {},
	"GET_SHARE_URL":  {},
	"ADD_ACTIVITIES": {},
}

// ParseFileOverride maps the X-WOPI-Override header of a POST to
// /wopi/files/{id} onto an operation. A LOCK carrying X-WOPI-OldLock is an
// UnlockAndRelock.
func ParseFileOverride(override, oldLock string) (Operation, error) {
	v := strings.ToUpper(strings.TrimSpace(override))
	switch v {
	case "":
		return "", ErrOverrideMissing
	case "LOCK":
		if oldLock != "" {
			return OpUnlockAndRelock, nil
		}
		return OpLock, nil
	case "UNLOCK":
		return OpUnlock, nil
	case "REFRESH_LOCK":
		return OpRefreshLock, nil
	case "GET_LOCK":
		return OpGetLock, nil
	}
	if _, ok := notImplemented[v]; ok {
		return "", ErrOverrideNotImplemented
	}
	return "", ErrOverrideUnknown
}
