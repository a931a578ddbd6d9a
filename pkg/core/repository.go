package core

import "context"

// Image is a binary payload found by an ImageResolver.
// Name is the provided file name, Type its extension without the dot.
type Image struct {
	Name string
	Type string
	Data []byte
}

// ImageResolver looks up image payloads by the name used in the markup.
type ImageResolver interface {
	Resolve(name string) (Image, bool)
}

// Grader resolves true/false markers of a choice question to fractions.
type Grader interface {
	Name() string
	Grade(q *Choice) error
	// DefaultMark is the maximum score a question bank should assign.
	DefaultMark(q *Choice) float64
}

// Importer turns a document into question records.
type Importer interface {
	Parse(doc string) ([]Question, []Warning, error)
}

// Exporter turns question records into a document plus named payloads.
type Exporter interface {
	Serialize(qs []Question) (string, map[string][]byte, error)
}

// Bank defines the contract for persisting imported questions.
// Adhering to this interface keeps the core independent of the
// storage mechanism (SQLite, Postgres, memory).
type Bank interface {
	// Save replaces the content of the named bank.
	Save(ctx context.Context, bank string, qs []Question) error

	// List returns the questions of a bank in import order.
	List(ctx context.Context, bank string) ([]Question, error)

	// Banks returns the names of all stored banks.
	Banks(ctx context.Context) ([]string, error)

	// Delete removes a bank and its questions.
	Delete(ctx context.Context, bank string) error

	// Initialize ensures the underlying storage is ready (schema migration).
	Initialize(ctx context.Context) error
}
