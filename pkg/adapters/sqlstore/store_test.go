package sqlstore_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/qtex/pkg/adapters/sqlstore"
	"github.com/aretw0/qtex/pkg/core"
)

func openTemp(t *testing.T) *sqlstore.Store {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "bank.db") + "?_pragma=busy_timeout(5000)"
	store, err := sqlstore.Open(context.Background(), sqlstore.DriverSQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleQuestions() []core.Question {
	return []core.Question{
		&core.Category{Name: "Algebra"},
		&core.Description{Name: "Intro", Body: "Read <i>carefully</i>."},
		&core.Choice{
			Name:            "001 Roots",
			Body:            "Solve $x^2=4$",
			GeneralFeedback: "Both signs.",
			Shuffle:         true,
			Answers: []core.Answer{
				{Text: "2", Feedback: "yes", Weight: core.Fraction(0.5)},
				{Text: "-2", Weight: core.Fraction(0.5)},
				{Text: "0", Weight: core.Fraction(-1)},
			},
			Files: []core.File{{Name: "plot.png", Type: "png", Data: []byte{0x89, 'P', 'N', 'G'}}},
		},
	}
}

func TestStore_SaveAndList(t *testing.T) {
	store := openTemp(t)
	ctx := context.Background()

	qs := sampleQuestions()
	require.NoError(t, store.Save(ctx, "algebra", qs))

	loaded, err := store.List(ctx, "algebra")
	require.NoError(t, err)
	assert.Equal(t, qs, loaded)

	t.Run("Save replaces content", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, "algebra", qs[:1]))
		loaded, err := store.List(ctx, "algebra")
		require.NoError(t, err)
		assert.Equal(t, qs[:1], loaded)
	})

	t.Run("Empty bank", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, "empty", nil))
		loaded, err := store.List(ctx, "empty")
		require.NoError(t, err)
		assert.Empty(t, loaded)
	})

	t.Run("Missing bank", func(t *testing.T) {
		_, err := store.List(ctx, "nope")
		require.ErrorIs(t, err, core.ErrBankNotFound)
	})
}

func TestStore_BanksAndDelete(t *testing.T) {
	store := openTemp(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "zeta", sampleQuestions()))
	require.NoError(t, store.Save(ctx, "alpha", sampleQuestions()))

	names, err := store.Banks(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "zeta"}, names)

	require.NoError(t, store.Delete(ctx, "zeta"))
	names, err = store.Banks(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha"}, names)

	_, err = store.List(ctx, "zeta")
	require.ErrorIs(t, err, core.ErrBankNotFound)
	require.ErrorIs(t, store.Delete(ctx, "zeta"), core.ErrBankNotFound)
}

func TestStore_ServiceIntegration(t *testing.T) {
	store := openTemp(t)
	service := core.NewService(store)
	ctx := context.Background()

	require.NoError(t, service.Store(ctx, "quiz", sampleQuestions()))
	_, err := service.Load(ctx, "quiz")
	require.NoError(t, err)

	state := service.State().(core.ServiceState)
	assert.Equal(t, "sqlstore", state.BankType)

	storeState := store.State().(sqlstore.StoreState)
	assert.Equal(t, "sqlite", storeState.Driver)
	assert.Equal(t, 1, storeState.Saves)
	assert.Equal(t, 1, storeState.Loads)
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := sqlstore.Open(context.Background(), sqlstore.Driver("oracle"), "")
	assert.Error(t, err)
}
