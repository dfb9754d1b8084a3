package pg_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/placebook/internal/store/core"
)

func TestUpsertByIdentity_FirstLoginCreatesAccount(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	acc, err := store.UpsertByIdentity(ctx, core.IdentityProfile{
		Provider:       "google",
		ProviderUserID: "sub-1",
		Email:          strptr("ana@example.com"),
		Name:           strptr("Ana"),
	})
	require.NoError(t, err)
	require.NotEmpty(t, acc.ID)
	require.Equal(t, "ana@example.com", *acc.Email)
	require.Equal(t, "Ana", *acc.Name)
	require.Nil(t, acc.AvatarURL)

	require.Equal(t, 1, countRows(t, store, "account"))
	require.Equal(t, 1, countRows(t, store, "identity"))
}

func TestUpsertByIdentity_Idempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	p := core.IdentityProfile{
		Provider:       "google",
		ProviderUserID: "sub-1",
		Email:          strptr("ana@example.com"),
	}
	first, err := store.UpsertByIdentity(ctx, p)
	require.NoError(t, err)
	second, err := store.UpsertByIdentity(ctx, p)
	require.NoError(t, err)

	require.Equal(t, first.ID, second.ID)
	require.Equal(t, 1, countRows(t, store, "account"))
	require.Equal(t, 1, countRows(t, store, "identity"))
}

// Merge COALESCE: campos nil del perfil entrante no pisan lo guardado,
// campos presentes sí.
func TestUpsertByIdentity_CoalesceMerge(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.UpsertByIdentity(ctx, core.IdentityProfile{
		Provider:       "google",
		ProviderUserID: "sub-1",
		Email:          strptr("ana@example.com"),
		Name:           strptr("Ana"),
		AvatarURL:      strptr("https://img/a.png"),
	})
	require.NoError(t, err)

	acc, err := store.UpsertByIdentity(ctx, core.IdentityProfile{
		Provider:       "google",
		ProviderUserID: "sub-1",
		Name:           strptr("Ana María"),
		// Email y AvatarURL nil: deben conservarse
	})
	require.NoError(t, err)
	require.Equal(t, "ana@example.com", *acc.Email)
	require.Equal(t, "Ana María", *acc.Name)
	require.Equal(t, "https://img/a.png", *acc.AvatarURL)
}

func TestUpsertByIdentity_EmptyIdentityInvalid(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.UpsertByIdentity(ctx, core.IdentityProfile{Provider: "google"})
	require.ErrorIs(t, err, core.ErrInvalid)
	_, err = store.UpsertByIdentity(ctx, core.IdentityProfile{ProviderUserID: "sub-1"})
	require.ErrorIs(t, err, core.ErrInvalid)
}

func TestUpsertByIdentity_DistinctProvidersDistinctAccounts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	a, err := store.UpsertByIdentity(ctx, core.IdentityProfile{Provider: "google", ProviderUserID: "sub-1"})
	require.NoError(t, err)
	b, err := store.UpsertByIdentity(ctx, core.IdentityProfile{Provider: "google-ios", ProviderUserID: "sub-1"})
	require.NoError(t, err)

	require.NotEqual(t, a.ID, b.ID)
	require.Equal(t, 2, countRows(t, store, "account"))
}

// N logins concurrentes con una identidad nunca vista convergen a UNA
// cuenta: el perdedor de la carrera borra su fila especulativa y adopta
// la del ganador.
func TestUpsertByIdentity_ConcurrentConverges(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	const workers = 8
	ids := make([]string, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			acc, err := store.UpsertByIdentity(ctx, core.IdentityProfile{
				Provider:       "google",
				ProviderUserID: "sub-race",
				Email:          strptr("race@example.com"),
			})
			if err != nil {
				errs[i] = err
				return
			}
			ids[i] = acc.ID
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		require.Equal(t, ids[0], ids[i])
	}
	require.Equal(t, 1, countRows(t, store, "account"))
	require.Equal(t, 1, countRows(t, store, "identity"))
}

func TestFindByIdentity(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.UpsertByIdentity(ctx, core.IdentityProfile{Provider: "google", ProviderUserID: "sub-1"})
	require.NoError(t, err)

	found, err := store.FindByIdentity(ctx, "google", "sub-1")
	require.NoError(t, err)
	require.Equal(t, created.ID, found.ID)

	_, err = store.FindByIdentity(ctx, "google", "nope")
	require.ErrorIs(t, err, core.ErrNotFound)
}

func TestFindByID_BadUUIDIsNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.FindByID(context.Background(), "not-a-uuid")
	require.ErrorIs(t, err, core.ErrNotFound)
}

func TestDeleteCascade_RemovesEverythingAndReturnsRefs(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	acc, err := store.UpsertByIdentity(ctx, core.IdentityProfile{Provider: "google", ProviderUserID: "sub-1"})
	require.NoError(t, err)

	placeID := uuid.New().String()
	_, err = store.CreateWithImages(ctx, core.NewPlace{
		ID: placeID, AccountID: acc.ID, Name: "Café Uno", Category: "cafe", Location: "CABA",
	}, []core.NewPlaceImage{
		{ID: uuid.New().String(), PlaceID: placeID, FileName: "a.jpg"},
		{ID: uuid.New().String(), PlaceID: placeID, FileName: "b.jpg"},
	})
	require.NoError(t, err)

	deleted, err := store.DeleteCascade(ctx, acc.ID)
	require.NoError(t, err)
	require.Equal(t, acc.ID, deleted.AccountID)
	require.Equal(t, []string{placeID}, deleted.PlaceIDs)
	require.Len(t, deleted.Images, 2)
	for _, ref := range deleted.Images {
		require.Equal(t, placeID, ref.PlaceID)
		require.NotEmpty(t, ref.FileName)
	}

	require.Equal(t, 0, countRows(t, store, "account"))
	require.Equal(t, 0, countRows(t, store, "identity"))
	require.Equal(t, 0, countRows(t, store, "place"))
	require.Equal(t, 0, countRows(t, store, "place_image"))
}

func TestDeleteCascade_NotFoundNoSideEffects(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	acc, err := store.UpsertByIdentity(ctx, core.IdentityProfile{Provider: "google", ProviderUserID: "sub-1"})
	require.NoError(t, err)

	_, err = store.DeleteCascade(ctx, uuid.New().String())
	require.ErrorIs(t, err, core.ErrNotFound)

	// La otra cuenta sigue intacta
	_, err = store.FindByID(ctx, acc.ID)
	require.NoError(t, err)
}

func TestDeleteCascade_Twice(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	acc, err := store.UpsertByIdentity(ctx, core.IdentityProfile{Provider: "google", ProviderUserID: "sub-1"})
	require.NoError(t, err)

	_, err = store.DeleteCascade(ctx, acc.ID)
	require.NoError(t, err)
	_, err = store.DeleteCascade(ctx, acc.ID)
	require.ErrorIs(t, err, core.ErrNotFound)
}

// Carrera delete-cuenta vs crear-place: el resultado es determinista.
// O el place entró antes del borrado (y el cascade lo barre), o el FK
// rechaza el insert y el caller ve not found. Nunca quedan places
// huérfanos apuntando a una cuenta borrada.
func TestDeleteCascade_ConcurrentPlaceCreateNoOrphans(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for round := 0; round < 10; round++ {
		acc, err := store.UpsertByIdentity(ctx, core.IdentityProfile{
			Provider:       "google",
			ProviderUserID: uuid.New().String(),
		})
		require.NoError(t, err)

		var wg sync.WaitGroup
		var createErr, deleteErr error
		wg.Add(2)
		go func() {
			defer wg.Done()
			placeID := uuid.New().String()
			_, createErr = store.CreateWithImages(ctx, core.NewPlace{
				ID: placeID, AccountID: acc.ID, Name: "Bar", Category: "bar", Location: "CABA",
			}, nil)
		}()
		go func() {
			defer wg.Done()
			_, deleteErr = store.DeleteCascade(ctx, acc.ID)
		}()
		wg.Wait()

		require.NoError(t, deleteErr)
		if createErr != nil {
			require.True(t, errors.Is(createErr, core.ErrNotFound), "create err inesperado: %v", createErr)
		}

		// Invariante: sin cuenta no hay places.
		require.Equal(t, 0, countRows(t, store, "place"))
	}
}
