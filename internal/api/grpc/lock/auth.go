package lock

import (
	"context"
	"crypto/subtle"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	domain "github.com/oshokin/lockable/internal/domain/lock"
	pb "github.com/oshokin/lockable/internal/pb/v1"
)

// Metadata keys carrying API keys.
const (
	AuthorizationHeader = "authorization"
	APIKeyHeader        = "x-api-key"
	bearerPrefix        = "Bearer "
)

// actorContextKey stores the authenticated caller in a request context.
type actorContextKey struct{}

// Authenticator resolves caller identities from API keys.
type Authenticator struct {
	keys []apiKey
}

type apiKey struct {
	token []byte
	actor domain.Actor
}

// NewAuthenticator builds an Authenticator from a token -> identity table.
func NewAuthenticator(identities map[string]domain.Actor) *Authenticator {
	keys := make([]apiKey, 0, len(identities))
	for token, actor := range identities {
		keys = append(keys, apiKey{
			token: []byte(token),
			actor: actor,
		})
	}

	return &Authenticator{keys: keys}
}

// UnaryInterceptor authenticates Lock and Unlock calls. Reads stay open.
func (a *Authenticator) UnaryInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if !isMutation(info.FullMethod) {
			return handler(ctx, req)
		}

		token := extractToken(ctx)
		if token == "" {
			return nil, status.Error(codes.Unauthenticated, "authentication required")
		}

		actor, ok := a.authenticate(token)
		if !ok {
			return nil, status.Error(codes.Unauthenticated, "invalid API key")
		}

		return handler(context.WithValue(ctx, actorContextKey{}, actor), req)
	}
}

func (a *Authenticator) authenticate(token string) (*domain.Actor, bool) {
	for _, k := range a.keys {
		if subtle.ConstantTimeCompare(k.token, []byte(token)) == 1 {
			return k.actor.Clone(), true
		}
	}

	return nil, false
}

func isMutation(fullMethod string) bool {
	return fullMethod == pb.LockServiceLockFullMethodName || fullMethod == pb.LockServiceUnlockFullMethodName
}

func extractToken(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}

	// Check "authorization: Bearer <token>".
	for _, value := range md.Get(AuthorizationHeader) {
		if token, found := strings.CutPrefix(value, bearerPrefix); found {
			return token
		}
	}

	if values := md.Get(APIKeyHeader); len(values) > 0 {
		return values[0]
	}

	return ""
}

// authenticatedActor returns the caller the interceptor resolved, if any.
func authenticatedActor(ctx context.Context) (*domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(*domain.Actor)

	return actor, ok && actor != nil
}
