package domain

// FileInfo is the CheckFileInfo response body. Field names are fixed by the
// WOPI protocol.
type FileInfo struct {
	BaseFileName     string `json:"BaseFileName"`
	OwnerId          string `json:"OwnerId"`
	Size             int64  `json:"Size"`
	UserId           string `json:"UserId"`
	UserFriendlyName string `json:"UserFriendlyName,omitempty"`
	Version          string `json:"Version"`
	SHA256           string `json:"SHA256,omitempty"`
	LastModifiedTime string `json:"LastModifiedTime,omitempty"`

	UserCanWrite            bool `json:"UserCanWrite"`
	ReadOnly                bool `json:"ReadOnly"`
	UserCanNotWriteRelative bool `json:"UserCanNotWriteRelative"`
	UserCanRename           bool `json:"UserCanRename"`

	SupportsUpdate             bool `json:"SupportsUpdate"`
	SupportsLocks              bool `json:"SupportsLocks"`
	SupportsGetLock            bool `json:"SupportsGetLock"`
	SupportsExtendedLockLength bool `json:"SupportsExtendedLockLength"`
	SupportsRename             bool `json:"SupportsRename"`
	SupportsDeleteFile         bool `json:"SupportsDeleteFile"`

	PostMessageOrigin string `json:"PostMessageOrigin,omitempty"`
}
