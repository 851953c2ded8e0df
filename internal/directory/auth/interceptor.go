// Package auth guards the directory's operator actions (catalog reload)
// with HMAC-signed JWT bearer tokens, for both gRPC and HTTP.
package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// ReloadMethod is the full gRPC method name of the catalog reload.
const ReloadMethod = "/directory.v1.DirectoryService/Reload"

type contextKey string

const claimsKey contextKey = "claims"

// Interceptor authenticates calls to a set of protected gRPC methods.
// Unprotected methods pass through untouched.
type Interceptor struct {
	secret  string
	methods map[string]bool
}

// NewAuthInterceptor creates an Interceptor protecting ReloadMethod.
func NewAuthInterceptor(jwtSecret string) *Interceptor {
	return (&Interceptor{secret: jwtSecret, methods: map[string]bool{}}).Protect(ReloadMethod)
}

// Protect adds full method names to the protected set.
func (i *Interceptor) Protect(methods ...string) *Interceptor {
	for _, m := range methods {
		i.methods[m] = true
	}
	return i
}

// Unary returns a gRPC unary interceptor for token validation on protected methods.
func (i *Interceptor) Unary() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		if !i.methods[info.FullMethod] {
			return handler(ctx, req)
		}
		ctx, err := i.authenticate(ctx)
		if err != nil {
			return nil, err
		}
		return handler(ctx, req)
	}
}

// authenticate validates the bearer token in ctx's metadata and attaches
// its claims.
func (i *Interceptor) authenticate(ctx context.Context) (context.Context, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "metadata missing")
	}
	tokenString, err := extractTokenFromMetadata(md)
	if err != nil {
		return nil, err
	}
	claims, err := validateToken(tokenString, i.secret)
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, err.Error())
	}
	return withClaims(ctx, claims), nil
}

func withClaims(ctx context.Context, claims jwt.MapClaims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// Subject returns the authenticated caller's "sub" claim, if any.
func Subject(ctx context.Context) string {
	claims, ok := ctx.Value(claimsKey).(jwt.MapClaims)
	if !ok {
		return ""
	}
	sub, _ := claims.GetSubject()
	return sub
}

// extractTokenFromMetadata retrieves a Bearer token from gRPC metadata.
func extractTokenFromMetadata(md metadata.MD) (string, error) {
	values := md.Get("authorization")
	if len(values) == 0 {
		return "", status.Error(codes.Unauthenticated, "authorization header missing")
	}
	tokenString, err := bearer(values[0])
	if err != nil {
		return "", status.Error(codes.Unauthenticated, err.Error())
	}
	return tokenString, nil
}

// bearer extracts the token from an "Authorization: Bearer <token>" value.
func bearer(value string) (string, error) {
	rest, ok := strings.CutPrefix(value, "Bearer ")
	if !ok {
		return "", fmt.Errorf("invalid authorization format: missing Bearer prefix")
	}
	if rest = strings.TrimSpace(rest); rest == "" {
		return "", fmt.Errorf("invalid authorization format: empty token")
	}
	return rest, nil
}
