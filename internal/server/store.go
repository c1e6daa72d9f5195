package server

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/jask/legalhub/internal/database/repository"
)

// Store persists client records for the development API.
type Store interface {
	List(ctx context.Context) ([]repository.Client, error)
	Insert(ctx context.Context, c repository.Client) error
}

var _ Store = (*repository.ClientRepo)(nil)

// MemoryStore is the mock-mode Store: nothing survives a restart.
type MemoryStore struct {
	mu      sync.Mutex
	clients []repository.Client
}

func NewMemoryStore(seed ...repository.Client) *MemoryStore {
	return &MemoryStore{clients: slices.Clone(seed)}
}

func (s *MemoryStore) List(ctx context.Context) ([]repository.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.clients), nil
}

func (s *MemoryStore) Insert(ctx context.Context, c repository.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.clients {
		if strings.EqualFold(existing.Email, c.Email) {
			return repository.ErrDuplicateEmail
		}
	}
	s.clients = append(s.clients, c)
	return nil
}
