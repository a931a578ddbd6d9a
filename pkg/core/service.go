package core

import (
	"context"
	"errors"
	"sync"
)

// Service orchestrates conversions between formats and the optional question bank.
type Service struct {
	mu       sync.RWMutex
	bank     Bank
	imports  int
	exports  int
	warnings int
}

// NewService creates a new Service. bank may be nil.
func NewService(bank Bank) *Service {
	return &Service{bank: bank}
}

// Import parses doc with the given importer.
func (s *Service) Import(in Importer, doc string) ([]Question, []Warning, error) {
	qs, warnings, err := in.Parse(doc)
	s.mu.Lock()
	s.imports++
	s.warnings += len(warnings)
	s.mu.Unlock()
	return qs, warnings, err
}

// Export serializes questions with the given exporter.
func (s *Service) Export(out Exporter, qs []Question) (string, map[string][]byte, error) {
	if len(qs) == 0 {
		return "", nil, errors.New("nothing to export")
	}
	s.mu.Lock()
	s.exports++
	s.mu.Unlock()
	return out.Serialize(qs)
}

// Convert imports doc and exports the result in one step.
func (s *Service) Convert(in Importer, doc string, out Exporter) (string, map[string][]byte, []Warning, error) {
	qs, warnings, err := s.Import(in, doc)
	if err != nil {
		return "", nil, warnings, err
	}
	text, payloads, err := s.Export(out, qs)
	return text, payloads, warnings, err
}

// Store saves questions into the named bank.
func (s *Service) Store(ctx context.Context, bank string, qs []Question) error {
	if s.bank == nil {
		return ErrNoBank
	}
	if bank == "" {
		return errors.New("bank name cannot be empty")
	}
	return s.bank.Save(ctx, bank, qs)
}

// Load reads the questions of the named bank.
func (s *Service) Load(ctx context.Context, bank string) ([]Question, error) {
	if s.bank == nil {
		return nil, ErrNoBank
	}
	if bank == "" {
		return nil, errors.New("bank name cannot be empty")
	}
	return s.bank.List(ctx, bank)
}

// Banks lists stored bank names.
func (s *Service) Banks(ctx context.Context) ([]string, error) {
	if s.bank == nil {
		return nil, ErrNoBank
	}
	return s.bank.Banks(ctx)
}

// Delete removes the named bank.
func (s *Service) Delete(ctx context.Context, bank string) error {
	if s.bank == nil {
		return ErrNoBank
	}
	return s.bank.Delete(ctx, bank)
}
