package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/immor75/MeetingsDecisions/internal/wopi/domain"
	"github.com/immor75/MeetingsDecisions/internal/wopi/store"
	"github.com/immor75/MeetingsDecisions/pkg/slogx"
)

// fallbackEditorPath is the Collabora Online launch page used when the
// discovery document cannot be read.
const fallbackEditorPath = "/browser/dist/cool.html?"

var ErrMissingArtifactID = errors.New("missing_artifact_id")

// TokenIssuer is what the SessionFactory needs from the token service.
type TokenIssuer interface {
	Issue(userID, displayName, fileID string, role domain.Role) (domain.IssuedToken, error)
}

// CreateSessionInput describes who opens which artifact.
type CreateSessionInput struct {
	ArtifactID  string
	FileName    string
	OwnerID     string
	UserID      string
	DisplayName string
	Role        domain.Role
}

// EditingSession is everything a browser needs to open the editor.
type EditingSession struct {
	Session        domain.Session
	WopiSrc        string
	AccessToken    string
	AccessTokenTTL int64
	ExpiresAt      time.Time
	EditorURL      string
}

// SessionFactory creates WOPI working copies from generated artifacts and
// hands out editor launch URLs for them.
type SessionFactory struct {
	Sessions  store.Sessions
	Locks     *LockManager
	Tokens    TokenIssuer
	Discovery EditorURLResolver

	// WopiHostURL is the public base URL of this host as seen by the editor.
	WopiHostURL string
	// CollaboraURL is the editor's base URL, used when discovery fails.
	CollaboraURL string
}

// Create copies the artifact into a new session and issues a token for the
// requesting user.
func (f *SessionFactory) Create(ctx context.Context, in CreateSessionInput) (EditingSession, error) {
	if strings.TrimSpace(in.ArtifactID) == "" {
		return EditingSession{}, ErrMissingArtifactID
	}
	if in.UserID == "" {
		return EditingSession{}, ErrMissingUserID
	}
	if in.OwnerID == "" {
		in.OwnerID = in.UserID
	}

	sess, err := f.Sessions.Create(ctx, in.ArtifactID, in.FileName, in.OwnerID)
	if err != nil {
		return EditingSession{}, err
	}

	out, err := f.launch(ctx, sess, in.UserID, in.DisplayName, in.Role)
	if err != nil {
		// Do not leave an unreachable working copy behind.
		_ = f.Sessions.Delete(ctx, sess.FileID)
		return EditingSession{}, err
	}

	slogx.FromContext(ctx).Info("wopi session created",
		"file_id", sess.FileID,
		"artifact_id", in.ArtifactID,
		"user_id", in.UserID,
		"role", in.Role,
	)
	return out, nil
}

// Join issues a token for another user (or a fresh token for the same
// user) on an existing session.
func (f *SessionFactory) Join(
	ctx context.Context,
	fileID, userID, displayName string,
	role domain.Role,
) (EditingSession, error) {
	if userID == "" {
		return EditingSession{}, ErrMissingUserID
	}
	sess, err := f.Sessions.GetMetadata(ctx, fileID)
	if err != nil {
		return EditingSession{}, err
	}
	return f.launch(ctx, sess, userID, displayName, role)
}

// Close removes a session and any lock on it.
func (f *SessionFactory) Close(ctx context.Context, fileID string) error {
	if err := f.Sessions.Delete(ctx, fileID); err != nil {
		return err
	}
	f.Locks.Release(fileID)
	slogx.FromContext(ctx).Info("wopi session closed", "file_id", fileID)
	return nil
}

func (f *SessionFactory) launch(
	ctx context.Context,
	sess domain.Session,
	userID, displayName string,
	role domain.Role,
) (EditingSession, error) {
	tok, err := f.Tokens.Issue(userID, displayName, sess.FileID, role)
	if err != nil {
		return EditingSession{}, fmt.Errorf("issue access token: %w", err)
	}

	wopiSrc := strings.TrimRight(f.WopiHostURL, "/") + "/wopi/files/" + url.PathEscape(sess.FileID)

	return EditingSession{
		Session:        sess,
		WopiSrc:        wopiSrc,
		AccessToken:    tok.Token,
		AccessTokenTTL: tok.TTLMillis(),
		ExpiresAt:      tok.ExpiresAt,
		EditorURL:      BuildEditorURL(f.editorBase(ctx, sess, role), wopiSrc, tok.Token, tok.TTLMillis(), role.Permission()),
	}, nil
}

func (f *SessionFactory) editorBase(ctx context.Context, sess domain.Session, role domain.Role) string {
	if f.Discovery != nil {
		ext := sess.Extension()
		actions := []string{"edit"}
		if !role.CanWrite() {
			actions = []string{"view", "edit"}
		}
		for _, action := range actions {
			src, err := f.Discovery.EditorURL(ctx, ext, action)
			if err == nil {
				return src
			}
			if !errors.Is(err, ErrNoDiscoveryAction) {
				slogx.FromContext(ctx).Warn("editor discovery unavailable, using fallback", "error", err)
				break
			}
		}
	}
	return strings.TrimRight(f.CollaboraURL, "/") + fallbackEditorPath
}
