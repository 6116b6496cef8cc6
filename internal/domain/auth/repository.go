package auth

import "context"

// ServiceCredentials is a provisioned-out-of-band service identity (spec §3).
// Rows are never mutated by the running system.
type ServiceCredentials struct {
	ServiceName   string
	ServiceSecret string
	Role          string
}

// CredentialsRepository looks up ServiceCredentials.
type CredentialsRepository interface {
	// FindByNameAndSecret returns the credentials row for an exact
	// (service_name, service_secret) match, or (nil, nil) if absent.
	FindByNameAndSecret(ctx context.Context, serviceName, serviceSecret string) (*ServiceCredentials, error)

	// FindByName returns the credentials row for service_name, or (nil, nil) if absent.
	FindByName(ctx context.Context, serviceName string) (*ServiceCredentials, error)
}
