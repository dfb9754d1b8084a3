package core

import "time"

// Account es el registro interno de un usuario autenticado.
// Su ciclo de vida lo controla exclusivamente el AccountStore.
type Account struct {
	ID        string
	Email     *string
	Name      *string
	AvatarURL *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Identity vincula (provider, provider_user_id) con exactamente una cuenta.
// El par es único a nivel de schema; una cuenta puede tener varias identidades.
type Identity struct {
	ID             string
	AccountID      string
	Provider       string // "google", "google-ios", ...
	ProviderUserID string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IdentityProfile es lo que entrega el provider tras un login exitoso.
// Los campos opcionales en nil nunca pisan valores ya guardados (merge COALESCE).
type IdentityProfile struct {
	Provider       string
	ProviderUserID string
	Email          *string
	Name           *string
	AvatarURL      *string
}

// Place is a journal entry owned by an account.
type Place struct {
	ID        string
	AccountID string
	Name      string
	Category  string
	Location  string
	Note      *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PlaceImage is image metadata attached to a place. The bytes live on disk
// under the files store; FileName resolves the path.
type PlaceImage struct {
	ID        string
	PlaceID   string
	FileName  string
	Caption   *string
	CreatedAt time.Time
}

// NewPlace is the input for creating a place.
type NewPlace struct {
	ID        string
	AccountID string
	Name      string
	Category  string
	Location  string
	Note      *string
}

// NewPlaceImage is the input for attaching an image row to a place.
type NewPlaceImage struct {
	ID       string
	PlaceID  string
	FileName string
	Caption  *string
}

// UpdatePlace: campos en nil se conservan (COALESCE).
type UpdatePlace struct {
	Name     *string
	Category *string
	Location *string
	Note     *string
}

// ImageRef identifica un archivo externo a limpiar después del commit.
type ImageRef struct {
	ID       string
	PlaceID  string
	FileName string
}

// DeletedAccount enumera todo lo que poseía la cuenta borrada.
// El caller usa estas referencias para la fase best-effort (archivos en disco);
// las filas ya no existen cuando este valor se devuelve.
type DeletedAccount struct {
	AccountID string
	PlaceIDs  []string
	Images    []ImageRef
}
