package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"catalog-api/internal/domain"
	"catalog-api/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	// BcryptCost is the cost factor for hashing client secrets at rest
	BcryptCost = 10

	// clientSecretBytes is the entropy of a generated client secret
	clientSecretBytes = 32
)

// ClientService issues OAuth client credentials
type ClientService interface {
	// CreateClient stores a new client and returns it together with the
	// plaintext secret. The secret is only ever returned here; the stored
	// record keeps a bcrypt hash.
	CreateClient(ctx context.Context, redirectURI, grantType string) (*domain.Client, string, error)
}

type clientService struct {
	clients repository.ClientRepository
}

// NewClientService creates a new instance of ClientService
func NewClientService(clients repository.ClientRepository) ClientService {
	return &clientService{clients: clients}
}

// CreateClient generates client credentials and persists them
func (s *clientService) CreateClient(ctx context.Context, redirectURI, grantType string) (*domain.Client, string, error) {
	secret, err := generateSecret()
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate client secret: %w", err)
	}

	secretHash, err := bcrypt.GenerateFromPassword([]byte(secret), BcryptCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash client secret: %w", err)
	}

	client := &domain.Client{
		ClientID:    uuid.New().String(),
		SecretHash:  string(secretHash),
		RedirectURI: redirectURI,
		GrantType:   grantType,
		CreatedAt:   time.Now(),
	}

	if err := s.clients.Create(ctx, client); err != nil {
		return nil, "", fmt.Errorf("failed to create client: %w", err)
	}

	return client, secret, nil
}

// generateSecret returns a hex-encoded random secret
func generateSecret() (string, error) {
	buf := make([]byte, clientSecretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
