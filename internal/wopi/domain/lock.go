package domain

import "time"

// Lock is an exclusive-edit claim on one file. LockID is opaque and is only
// ever compared for equality.
type Lock struct {
	FileID    string
	LockID    string
	ExpiresAt time.Time
}

// Active reports whether the lock still holds at now.
func (l Lock) Active(now time.Time) bool {
	return l.LockID != "" && now.Before(l.ExpiresAt)
}
