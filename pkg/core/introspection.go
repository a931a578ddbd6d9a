package core

import (
	"github.com/aretw0/introspection"
)

// ServiceState exposes internal state for observability.
type ServiceState struct {
	Imports  int    `json:"imports"`
	Exports  int    `json:"exports"`
	Warnings int    `json:"warnings"`
	BankType string `json:"bank_type"`
}

// State implements introspection.Introspectable.
func (s *Service) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bankType := "none"
	if s.bank != nil {
		bankType = "bank"
		if comp, ok := s.bank.(introspection.Component); ok {
			bankType = comp.ComponentType()
		}
	}

	return ServiceState{
		Imports:  s.imports,
		Exports:  s.exports,
		Warnings: s.warnings,
		BankType: bankType,
	}
}

// ComponentType implements introspection.Component.
func (s *Service) ComponentType() string {
	return "service"
}

var _ introspection.Introspectable = (*Service)(nil)
var _ introspection.Component = (*Service)(nil)
