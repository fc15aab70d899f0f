// Package wopisdk is a Go client for the WOPI host.
//
// It covers both surfaces the host exposes:
//
//   - The management API under /v1, used by the decisions application to
//     register generated documents (artifacts) and open editing sessions.
//     Calls authenticate with the integration API key.
//   - The WOPI file endpoints under /wopi/files, normally called by the
//     editor (Collabora Online). The File type speaks that protocol and is
//     mostly useful for tests and tooling.
//
// Typical use:
//
//	c := wopisdk.NewClient("http://wopihost:8080", apiKey)
//	_, err := c.PutArtifact(ctx, "doc123", "Report.docx", "u1", content)
//	sess, err := c.CreateSession(ctx, wopisdk.CreateSessionRequest{
//		ArtifactID: "doc123",
//		UserID:     "u1",
//		Role:       "editor",
//	})
//	// send the browser to sess.EditorURL
//
// Errors returned by the management API are *APIError. WOPI lock conflicts
// are *LockConflictError carrying the lock currently held.
package wopisdk
