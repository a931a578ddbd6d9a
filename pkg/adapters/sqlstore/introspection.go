package sqlstore

import (
	"github.com/aretw0/introspection"
)

// StoreState exposes internal state for observability.
type StoreState struct {
	Driver    string `json:"driver"`
	Saves     int    `json:"saves"`
	Loads     int    `json:"loads"`
	OpenConns int    `json:"open_connections"`
}

// State implements introspection.Introspectable.
func (s *Store) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return StoreState{
		Driver:    string(s.driver),
		Saves:     s.saves,
		Loads:     s.loads,
		OpenConns: s.db.Stats().OpenConnections,
	}
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string {
	return "sqlstore"
}

var _ introspection.Introspectable = (*Store)(nil)
var _ introspection.Component = (*Store)(nil)
