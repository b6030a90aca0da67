package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/gradebook/gradebook/internal/shared"
)

// RepositoryPort defines data access methods for catalog entries.
type RepositoryPort interface {
	List(ctx context.Context) ([]Entry, error)
	Get(ctx context.Context, id int64) (Entry, error)
	Create(ctx context.Context, name string) (Entry, error)
	Rename(ctx context.Context, id int64, name string) (Entry, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

// Service handles catalog business logic for one Kind.
type Service struct {
	repo RepositoryPort
	kind Kind
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, kind Kind) *Service {
	return &Service{repo: repo, kind: kind}
}

// List returns all entries.
func (s *Service) List(ctx context.Context) ([]Entry, error) {
	return s.repo.List(ctx)
}

// Get returns one entry.
func (s *Service) Get(ctx context.Context, id int64) (Entry, error) {
	e, err := s.repo.Get(ctx, id)
	if errors.Is(err, shared.ErrNotFound) {
		return Entry{}, s.notFound(id)
	}
	return e, err
}

// Create adds an entry with a unique name.
func (s *Service) Create(ctx context.Context, in Input) (Entry, error) {
	name, err := cleanName(in.Name)
	if err != nil {
		return Entry{}, err
	}
	return s.repo.Create(ctx, name)
}

// Rename replaces the name of an entry.
func (s *Service) Rename(ctx context.Context, id int64, in Input) (Entry, error) {
	name, err := cleanName(in.Name)
	if err != nil {
		return Entry{}, err
	}
	e, err := s.repo.Rename(ctx, id, name)
	if errors.Is(err, shared.ErrNotFound) {
		return Entry{}, s.notFound(id)
	}
	return e, err
}

// Delete removes an entry.
func (s *Service) Delete(ctx context.Context, id int64) error {
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return s.notFound(id)
	}
	return nil
}

func (s *Service) notFound(id int64) error {
	return shared.NotFoundf("%s with id=%d not found", s.kind.Label, id)
}

func cleanName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", shared.BadRequestf("Validation error: name cannot be empty; ")
	}
	return name, nil
}
