package core

import "context"

// AccountStore resuelve identidades a cuentas y maneja el borrado en cascada.
type AccountStore interface {
	// UpsertByIdentity resuelve (provider, provider_user_id) a una cuenta,
	// creándola en el primer login. Idempotente y safe bajo concurrencia:
	// llamadas paralelas con la misma identidad convergen a la misma cuenta.
	UpsertByIdentity(ctx context.Context, p IdentityProfile) (*Account, error)

	FindByID(ctx context.Context, id string) (*Account, error)
	FindByIdentity(ctx context.Context, provider, providerUserID string) (*Account, error)

	// DeleteCascade borra la cuenta, sus identidades, places e imágenes en
	// una transacción y devuelve las referencias externas a limpiar.
	DeleteCascade(ctx context.Context, accountID string) (*DeletedAccount, error)
}

// PlaceStore maneja los places de una cuenta y sus imágenes.
// Todas las operaciones con accountID scopean por dueño.
type PlaceStore interface {
	CreateWithImages(ctx context.Context, np NewPlace, imgs []NewPlaceImage) (*Place, error)
	ListForAccount(ctx context.Context, accountID string) ([]Place, error)
	FindForAccount(ctx context.Context, accountID, placeID string) (*Place, error)
	UpdateWithImages(ctx context.Context, accountID, placeID string, up UpdatePlace, add []NewPlaceImage, removeIDs []string) (*Place, []ImageRef, error)
	ListImagesForPlace(ctx context.Context, placeID string) ([]PlaceImage, error)
	FindImageForAccount(ctx context.Context, accountID, placeID, imageID string) (*PlaceImage, error)
	DeleteForAccount(ctx context.Context, accountID, placeID string) ([]ImageRef, error)
}
