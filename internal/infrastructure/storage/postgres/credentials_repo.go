package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"invsync/internal/domain/auth"
)

// CredentialsRepo implements auth.CredentialsRepository against the
// sys_service_credentials table. Provisioned out-of-band; the running
// system only ever reads it.
type CredentialsRepo struct {
	txManager *TxManager
}

// NewCredentialsRepo creates a new credentials repository.
func NewCredentialsRepo(txManager *TxManager) *CredentialsRepo {
	return &CredentialsRepo{txManager: txManager}
}

// FindByNameAndSecret implements auth.CredentialsRepository.
func (r *CredentialsRepo) FindByNameAndSecret(ctx context.Context, serviceName, serviceSecret string) (*auth.ServiceCredentials, error) {
	var creds auth.ServiceCredentials
	err := r.txManager.GetQuerier(ctx).QueryRow(ctx, `
		SELECT service_name, service_secret, role
		FROM sys_service_credentials
		WHERE service_name = $1 AND service_secret = $2
	`, serviceName, serviceSecret).Scan(&creds.ServiceName, &creds.ServiceSecret, &creds.Role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("lookup service credentials by name+secret: %w", err)
	}
	return &creds, nil
}

// FindByName implements auth.CredentialsRepository.
func (r *CredentialsRepo) FindByName(ctx context.Context, serviceName string) (*auth.ServiceCredentials, error) {
	var creds auth.ServiceCredentials
	err := r.txManager.GetQuerier(ctx).QueryRow(ctx, `
		SELECT service_name, service_secret, role
		FROM sys_service_credentials
		WHERE service_name = $1
	`, serviceName).Scan(&creds.ServiceName, &creds.ServiceSecret, &creds.Role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("lookup service credentials by name: %w", err)
	}
	return &creds, nil
}

var _ auth.CredentialsRepository = (*CredentialsRepo)(nil)
