// Package requesttrace carries who triggered an operation, for logs and admin audit trails.
package requesttrace

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/concoro/concoro-platform/platform/go/auth"
)

type ctxKey struct{}

// ActorKind represents who initiated a request.
type ActorKind string

const (
	ActorKindUser      ActorKind = "user"
	ActorKindAnonymous ActorKind = "anonymous"
	ActorKindSystem    ActorKind = "system"
)

// AuditInfo is request-scoped trace metadata. UserID is set only for ActorKindUser.
type AuditInfo struct {
	ActorKind ActorKind
	UserID    string
	Admin     bool
	RequestID string
}

// IntoContext stores audit on ctx.
func IntoContext(ctx context.Context, audit AuditInfo) context.Context {
	return context.WithValue(ctx, ctxKey{}, audit)
}

// FromContext extracts the AuditInfo, reporting whether one was present.
func FromContext(ctx context.Context) (AuditInfo, bool) {
	if ctx == nil {
		return AuditInfo{}, false
	}
	audit, ok := ctx.Value(ctxKey{}).(AuditInfo)
	return audit, ok
}

// FromContextOrAnonymous never fails; missing info reads as anonymous.
func FromContextOrAnonymous(ctx context.Context) AuditInfo {
	if audit, ok := FromContext(ctx); ok {
		return audit
	}
	return Anonymous("")
}

// FromPrincipal builds an AuditInfo for an authenticated caller.
func FromPrincipal(p *auth.Principal, requestID string) (AuditInfo, error) {
	if p == nil {
		return AuditInfo{}, errors.New("principal is required to build audit info")
	}
	if p.UID == "" {
		return AuditInfo{}, errors.New("user id is required to build audit info")
	}
	return AuditInfo{ActorKind: ActorKindUser, UserID: p.UID, Admin: p.Admin, RequestID: requestID}, nil
}

// Anonymous is used for public reads.
func Anonymous(requestID string) AuditInfo {
	return AuditInfo{ActorKind: ActorKindAnonymous, RequestID: requestID}
}

// System is used by the CLI and background jobs.
func System(requestID string) AuditInfo {
	return AuditInfo{ActorKind: ActorKindSystem, RequestID: requestID}
}

// Fields returns the audit info as zap fields.
func (a AuditInfo) Fields() []zap.Field {
	fields := []zap.Field{zap.String("actor_kind", string(a.ActorKind))}
	if a.UserID != "" {
		fields = append(fields, zap.String("user_id", a.UserID))
	}
	return fields
}
