package httpx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/immor75/MeetingsDecisions/pkg/slogx"
)

type ctxKey string

const (
	// CtxKeyPrincipal holds the name of the authenticated API caller.
	CtxKeyPrincipal ctxKey = "principal"
)

// PrincipalFromContext returns the authenticated API caller, if any.
func PrincipalFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyPrincipal).(string); ok {
		return v
	}
	return ""
}

func loggerFor(r *http.Request) *slog.Logger {
	return slogx.FromContext(r.Context())
}
