package pg

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/dropDatabas3/placebook/internal/store/core"
)

const accountCols = `id, email, name, avatar_url, created_at, updated_at`

// UpsertByIdentity resuelve una aserción de identidad entrante a una cuenta,
// creando cuenta + link en el primer login. N llamadas concurrentes con el
// mismo (provider, provider_user_id) nunca visto convergen a UNA cuenta:
// el unique constraint del link arbitra y el perdedor adopta la del ganador.
// No hay locks in-process; todo se apoya en la transacción.
func (s *Store) UpsertByIdentity(ctx context.Context, p core.IdentityProfile) (*core.Account, error) {
	if p.Provider == "" || p.ProviderUserID == "" {
		return nil, core.ErrInvalid
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, core.Storagef("begin", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// 1. Identidad ya vinculada → merge COALESCE del perfil y listo.
	acc, err := mergeLinkedAccount(ctx, tx, p)
	if err == nil {
		if err := tx.Commit(ctx); err != nil {
			return nil, core.Storagef("commit", err)
		}
		return acc, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, core.Storagef("lookup identity", err)
	}

	// 2. Primer login (eso cree este tx): cuenta especulativa + link.
	acc = &core.Account{}
	err = tx.QueryRow(ctx, `
		INSERT INTO account (email, name, avatar_url)
		VALUES ($1, $2, $3)
		RETURNING `+accountCols,
		p.Email, p.Name, p.AvatarURL,
	).Scan(&acc.ID, &acc.Email, &acc.Name, &acc.AvatarURL, &acc.CreatedAt, &acc.UpdatedAt)
	if err != nil {
		return nil, core.Storagef("insert account", err)
	}

	// 3. Link de identidad. Si otro tx ganó la carrera, el ON CONFLICT
	// no devuelve fila: borramos la cuenta especulativa (nunca estuvo
	// linkeada a nada, es seguro) y adoptamos la cuenta del ganador.
	var linkedAccountID string
	err = tx.QueryRow(ctx, `
		INSERT INTO identity (account_id, provider, provider_user_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (provider, provider_user_id) DO NOTHING
		RETURNING account_id`,
		acc.ID, p.Provider, p.ProviderUserID,
	).Scan(&linkedAccountID)

	switch {
	case err == nil:
		// Ganamos (o no hubo carrera).
	case errors.Is(err, pgx.ErrNoRows):
		if _, err := tx.Exec(ctx, `DELETE FROM account WHERE id = $1`, acc.ID); err != nil {
			return nil, core.Storagef("delete speculative account", err)
		}
		acc, err = mergeLinkedAccount(ctx, tx, p)
		if err != nil {
			return nil, core.Storagef("adopt winning account", err)
		}
	default:
		return nil, core.Storagef("insert identity", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, core.Storagef("commit", err)
	}
	return acc, nil
}

// mergeLinkedAccount busca la cuenta linkeada a (provider, provider_user_id)
// y aplica el merge COALESCE en un solo statement: campos entrantes no-nulos
// pisan, nulos conservan lo guardado. pgx.ErrNoRows si la identidad no existe.
func mergeLinkedAccount(ctx context.Context, tx pgx.Tx, p core.IdentityProfile) (*core.Account, error) {
	var a core.Account
	err := tx.QueryRow(ctx, `
		UPDATE account a
		SET email      = COALESCE($3, a.email),
		    name       = COALESCE($4, a.name),
		    avatar_url = COALESCE($5, a.avatar_url),
		    updated_at = now()
		FROM identity i
		WHERE i.provider = $1 AND i.provider_user_id = $2 AND a.id = i.account_id
		RETURNING a.id, a.email, a.name, a.avatar_url, a.created_at, a.updated_at`,
		p.Provider, p.ProviderUserID, p.Email, p.Name, p.AvatarURL,
	).Scan(&a.ID, &a.Email, &a.Name, &a.AvatarURL, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Store) FindByID(ctx context.Context, id string) (*core.Account, error) {
	var a core.Account
	err := s.pool.QueryRow(ctx,
		`SELECT `+accountCols+` FROM account WHERE id = $1`, id,
	).Scan(&a.ID, &a.Email, &a.Name, &a.AvatarURL, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) || isBadUUID(err) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, core.Storagef("find account by id", err)
	}
	return &a, nil
}

func (s *Store) FindByIdentity(ctx context.Context, provider, providerUserID string) (*core.Account, error) {
	var a core.Account
	err := s.pool.QueryRow(ctx, `
		SELECT a.id, a.email, a.name, a.avatar_url, a.created_at, a.updated_at
		FROM identity i
		JOIN account a ON a.id = i.account_id
		WHERE i.provider = $1 AND i.provider_user_id = $2`,
		provider, providerUserID,
	).Scan(&a.ID, &a.Email, &a.Name, &a.AvatarURL, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) || isBadUUID(err) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, core.Storagef("find account by identity", err)
	}
	return &a, nil
}

// DeleteCascade borra la cuenta y todo lo que posee en una transacción y
// devuelve las referencias (places, archivos de imágenes) para la fase
// best-effort fuera del tx. core.ErrNotFound si la cuenta no existe, sin
// efectos secundarios.
//
// El SELECT ... FOR UPDATE inicial serializa contra inserciones concurrentes
// de places: el chequeo de FK de un INSERT toma KEY SHARE sobre la fila de
// account y queda bloqueado hasta nuestro commit, donde falla con 23503.
// Resultado determinista: o el place entró antes y lo barre el cascade, o
// su creación falla porque la cuenta ya no está.
func (s *Store) DeleteCascade(ctx context.Context, accountID string) (*core.DeletedAccount, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, core.Storagef("begin", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var id string
	err = tx.QueryRow(ctx, `SELECT id FROM account WHERE id = $1 FOR UPDATE`, accountID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) || isBadUUID(err) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, core.Storagef("lock account", err)
	}

	deleted := &core.DeletedAccount{AccountID: accountID}

	rows, err := tx.Query(ctx, `
		SELECT pi.id, pi.place_id, pi.file_name
		FROM place_image pi
		JOIN place p ON p.id = pi.place_id
		WHERE p.account_id = $1`, accountID)
	if err != nil {
		return nil, core.Storagef("enumerate images", err)
	}
	for rows.Next() {
		var ref core.ImageRef
		if err := rows.Scan(&ref.ID, &ref.PlaceID, &ref.FileName); err != nil {
			rows.Close()
			return nil, core.Storagef("scan image ref", err)
		}
		deleted.Images = append(deleted.Images, ref)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, core.Storagef("enumerate images", err)
	}

	rows, err = tx.Query(ctx, `SELECT id FROM place WHERE account_id = $1`, accountID)
	if err != nil {
		return nil, core.Storagef("enumerate places", err)
	}
	for rows.Next() {
		var placeID string
		if err := rows.Scan(&placeID); err != nil {
			rows.Close()
			return nil, core.Storagef("scan place id", err)
		}
		deleted.PlaceIDs = append(deleted.PlaceIDs, placeID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, core.Storagef("enumerate places", err)
	}

	// identities, places y place_images caen por ON DELETE CASCADE.
	if _, err := tx.Exec(ctx, `DELETE FROM account WHERE id = $1`, accountID); err != nil {
		return nil, core.Storagef("delete account", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, core.Storagef("commit", err)
	}
	return deleted, nil
}
