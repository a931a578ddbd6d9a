package core_test

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"

	"github.com/aretw0/qtex/pkg/core"
)

// MockBank implements core.Bank in memory.
type MockBank struct {
	banks map[string][]core.Question
}

func NewMockBank() *MockBank {
	return &MockBank{
		banks: make(map[string][]core.Question),
	}
}

func (m *MockBank) Save(ctx context.Context, bank string, qs []core.Question) error {
	m.banks[bank] = qs
	return nil
}

func (m *MockBank) List(ctx context.Context, bank string) ([]core.Question, error) {
	qs, ok := m.banks[bank]
	if !ok {
		return nil, errors.New("not found")
	}
	return qs, nil
}

func (m *MockBank) Banks(ctx context.Context) ([]string, error) {
	var names []string
	for name := range m.banks {
		names = append(names, name)
	}
	// Sort for deterministic tests
	sort.Strings(names)
	return names, nil
}

func (m *MockBank) Delete(ctx context.Context, bank string) error {
	if _, ok := m.banks[bank]; !ok {
		return errors.New("not found")
	}
	delete(m.banks, bank)
	return nil
}

func (m *MockBank) Initialize(ctx context.Context) error { return nil }

// lineImporter turns every line into a description.
type lineImporter struct{}

func (lineImporter) Parse(doc string) ([]core.Question, []core.Warning, error) {
	var qs []core.Question
	for _, line := range strings.Split(doc, "\n") {
		if line == "" {
			continue
		}
		qs = append(qs, &core.Description{Name: line, Body: line})
	}
	warnings := []core.Warning{{Code: core.WarnNoAnswers, Detail: "demo"}}
	return qs, warnings, nil
}

type nameExporter struct{}

func (nameExporter) Serialize(qs []core.Question) (string, map[string][]byte, error) {
	var names []string
	for _, q := range qs {
		names = append(names, core.NameOf(q))
	}
	return strings.Join(names, ","), nil, nil
}

func TestService_StoreAndLoad(t *testing.T) {
	bank := NewMockBank()
	service := core.NewService(bank)
	ctx := context.TODO()

	// 1. Import
	qs, warnings, err := service.Import(lineImporter{}, "a\nb\n")
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if len(qs) != 2 || len(warnings) != 1 {
		t.Fatalf("expected 2 questions and 1 warning, got %d and %d", len(qs), len(warnings))
	}

	// 2. Store
	if err := service.Store(ctx, "quiz", qs); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	// 3. Load
	loaded, err := service.Load(ctx, "quiz")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded) != 2 {
		t.Errorf("expected 2 questions, got %d", len(loaded))
	}

	// 4. Banks
	names, err := service.Banks(ctx)
	if err != nil {
		t.Fatalf("Banks failed: %v", err)
	}
	if len(names) != 1 || names[0] != "quiz" {
		t.Errorf("unexpected banks: %v", names)
	}

	state := service.State().(core.ServiceState)
	if state.Imports != 1 || state.Warnings != 1 || state.BankType != "bank" {
		t.Errorf("unexpected state: %+v", state)
	}
}

func TestService_Convert(t *testing.T) {
	service := core.NewService(nil)

	text, _, _, err := service.Convert(lineImporter{}, "x\ny", nameExporter{})
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if text != "x,y" {
		t.Errorf("expected 'x,y', got '%s'", text)
	}

	_, _, _, err = service.Convert(lineImporter{}, "", nameExporter{})
	if err == nil {
		t.Error("expected error for empty export, got nil")
	}
}

func TestService_NoBank(t *testing.T) {
	service := core.NewService(nil)
	ctx := context.TODO()

	if err := service.Store(ctx, "quiz", nil); !errors.Is(err, core.ErrNoBank) {
		t.Errorf("expected ErrNoBank, got %v", err)
	}
	if _, err := service.Load(ctx, "quiz"); !errors.Is(err, core.ErrNoBank) {
		t.Errorf("expected ErrNoBank, got %v", err)
	}
}
