package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"catalog-api/internal/database"
	"catalog-api/internal/domain"
)

var (
	ErrClientNotFound = errors.New("client not found")
)

// ClientRepository defines the interface for OAuth client data access
type ClientRepository interface {
	Create(ctx context.Context, client *domain.Client) error
	FindByClientID(ctx context.Context, clientID string) (*domain.Client, error)
}

type clientRepository struct {
	q database.Querier
}

// NewClientRepository creates a new instance of ClientRepository
func NewClientRepository(q database.Querier) ClientRepository {
	return &clientRepository{q: q}
}

// Create inserts a new OAuth client and fills in its generated ID
func (r *clientRepository) Create(ctx context.Context, client *domain.Client) error {
	query := `
		INSERT INTO oauth_clients (client_id, secret_hash, redirect_uri, grant_type, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	err := r.q.QueryRowContext(
		ctx,
		query,
		client.ClientID,
		client.SecretHash,
		client.RedirectURI,
		client.GrantType,
		client.CreatedAt,
	).Scan(&client.ID)

	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	return nil
}

// FindByClientID retrieves a client by its public identifier
func (r *clientRepository) FindByClientID(ctx context.Context, clientID string) (*domain.Client, error) {
	query := `
		SELECT id, client_id, secret_hash, redirect_uri, grant_type, created_at
		FROM oauth_clients
		WHERE client_id = $1
	`

	client := &domain.Client{}
	err := r.q.QueryRowContext(ctx, query, clientID).Scan(
		&client.ID,
		&client.ClientID,
		&client.SecretHash,
		&client.RedirectURI,
		&client.GrantType,
		&client.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to find client by client ID: %w", err)
	}

	return client, nil
}
