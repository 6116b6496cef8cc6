// Package context provides request-scoped values extraction.
package context

import (
	"context"
	"time"
)

// ServiceContext contains the identity of the authenticated caller, resolved
// by the Token Verifier. There is no end-user concept in this system —
// every authenticated caller is a service presenting a bearer token minted
// for its own service_name.
type ServiceContext struct {
	ServiceName string
	Role        string
	IssuedAt    time.Time
	ExpiresAt   time.Time
}

type serviceContextKey struct{}

// WithService adds ServiceContext to context.
func WithService(ctx context.Context, svc *ServiceContext) context.Context {
	return context.WithValue(ctx, serviceContextKey{}, svc)
}

// GetService returns ServiceContext from context.
func GetService(ctx context.Context) *ServiceContext {
	if v, ok := ctx.Value(serviceContextKey{}).(*ServiceContext); ok {
		return v
	}
	return nil
}

// GetServiceName returns the caller's service name from context or empty string.
func GetServiceName(ctx context.Context) string {
	if s := GetService(ctx); s != nil {
		return s.ServiceName
	}
	return ""
}

