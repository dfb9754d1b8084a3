package pg

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dropDatabas3/placebook/internal/store/core"
)

const placeCols = `id, account_id, name, category, location, note, created_at, updated_at`

func scanPlace(row pgx.Row) (*core.Place, error) {
	var p core.Place
	err := row.Scan(&p.ID, &p.AccountID, &p.Name, &p.Category, &p.Location, &p.Note, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// isFKViolation: 23503 foreign_key_violation.
func isFKViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

// isBadUUID: 22P02, un id de path que no parsea como uuid.
// Para el caller es lo mismo que un id que no existe.
func isBadUUID(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "22P02"
}

// CreateWithImages inserta el place y sus filas de imagen en una transacción.
// Si la cuenta dueña fue borrada en paralelo, el FK falla y devolvemos
// core.ErrNotFound: para el caller la cuenta ya no existe.
func (s *Store) CreateWithImages(ctx context.Context, np core.NewPlace, imgs []core.NewPlaceImage) (*core.Place, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, core.Storagef("begin", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	place, err := scanPlace(tx.QueryRow(ctx, `
		INSERT INTO place (id, account_id, name, category, location, note)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+placeCols,
		np.ID, np.AccountID, np.Name, np.Category, np.Location, np.Note))
	if err != nil {
		if isFKViolation(err) {
			return nil, core.ErrNotFound
		}
		return nil, core.Storagef("insert place", err)
	}

	for _, img := range imgs {
		if _, err := tx.Exec(ctx, `
			INSERT INTO place_image (id, place_id, file_name, caption)
			VALUES ($1, $2, $3, $4)`,
			img.ID, img.PlaceID, img.FileName, img.Caption); err != nil {
			return nil, core.Storagef("insert place image", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		if isFKViolation(err) {
			return nil, core.ErrNotFound
		}
		return nil, core.Storagef("commit", err)
	}
	return place, nil
}

func (s *Store) ListForAccount(ctx context.Context, accountID string) ([]core.Place, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+placeCols+` FROM place WHERE account_id = $1 ORDER BY created_at DESC`, accountID)
	if err != nil {
		return nil, core.Storagef("list places", err)
	}
	defer rows.Close()

	places := []core.Place{}
	for rows.Next() {
		var p core.Place
		if err := rows.Scan(&p.ID, &p.AccountID, &p.Name, &p.Category, &p.Location, &p.Note, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, core.Storagef("scan place", err)
		}
		places = append(places, p)
	}
	if err := rows.Err(); err != nil {
		return nil, core.Storagef("list places", err)
	}
	return places, nil
}

// PlaceExists chequea existencia sin scope de dueño (tooling admin).
func (s *Store) PlaceExists(ctx context.Context, placeID string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM place WHERE id = $1)`, placeID).Scan(&exists)
	if err != nil {
		return false, core.Storagef("place exists", err)
	}
	return exists, nil
}

// FindForAccount scope-ea por dueño: un place de otra cuenta es ErrNotFound,
// nunca un leak de existencia.
func (s *Store) FindForAccount(ctx context.Context, accountID, placeID string) (*core.Place, error) {
	place, err := scanPlace(s.pool.QueryRow(ctx,
		`SELECT `+placeCols+` FROM place WHERE id = $1 AND account_id = $2`, placeID, accountID))
	if errors.Is(err, pgx.ErrNoRows) || isBadUUID(err) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, core.Storagef("find place", err)
	}
	return place, nil
}

// UpdateWithImages aplica un patch COALESCE sobre el place (campos nil se
// conservan), agrega filas nuevas de imagen y borra las indicadas, todo en
// una transacción. Devuelve los refs de las imágenes borradas para que el
// caller limpie los archivos después del commit.
func (s *Store) UpdateWithImages(ctx context.Context, accountID, placeID string, up core.UpdatePlace, add []core.NewPlaceImage, removeIDs []string) (*core.Place, []core.ImageRef, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, nil, core.Storagef("begin", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	place, err := scanPlace(tx.QueryRow(ctx, `
		UPDATE place
		SET name       = COALESCE($3, name),
		    category   = COALESCE($4, category),
		    location   = COALESCE($5, location),
		    note       = COALESCE($6, note),
		    updated_at = now()
		WHERE id = $1 AND account_id = $2
		RETURNING `+placeCols,
		placeID, accountID, up.Name, up.Category, up.Location, up.Note))
	if errors.Is(err, pgx.ErrNoRows) || isBadUUID(err) {
		return nil, nil, core.ErrNotFound
	}
	if err != nil {
		return nil, nil, core.Storagef("update place", err)
	}

	for _, img := range add {
		if _, err := tx.Exec(ctx, `
			INSERT INTO place_image (id, place_id, file_name, caption)
			VALUES ($1, $2, $3, $4)`,
			img.ID, img.PlaceID, img.FileName, img.Caption); err != nil {
			return nil, nil, core.Storagef("insert place image", err)
		}
	}

	var removed []core.ImageRef
	for _, imgID := range removeIDs {
		var ref core.ImageRef
		err := tx.QueryRow(ctx, `
			DELETE FROM place_image
			WHERE id = $1 AND place_id = $2
			RETURNING id, place_id, file_name`,
			imgID, placeID).Scan(&ref.ID, &ref.PlaceID, &ref.FileName)
		if errors.Is(err, pgx.ErrNoRows) {
			continue // ya no está; borrar dos veces no es error
		}
		if err != nil {
			return nil, nil, core.Storagef("delete place image", err)
		}
		removed = append(removed, ref)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, core.Storagef("commit", err)
	}
	return place, removed, nil
}

func (s *Store) ListImagesForPlace(ctx context.Context, placeID string) ([]core.PlaceImage, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, place_id, file_name, caption, created_at
		FROM place_image WHERE place_id = $1 ORDER BY created_at`, placeID)
	if err != nil {
		return nil, core.Storagef("list images", err)
	}
	defer rows.Close()

	imgs := []core.PlaceImage{}
	for rows.Next() {
		var img core.PlaceImage
		if err := rows.Scan(&img.ID, &img.PlaceID, &img.FileName, &img.Caption, &img.CreatedAt); err != nil {
			return nil, core.Storagef("scan image", err)
		}
		imgs = append(imgs, img)
	}
	if err := rows.Err(); err != nil {
		return nil, core.Storagef("list images", err)
	}
	return imgs, nil
}

// FindImageForAccount resuelve una imagen verificando el dueño vía el place.
func (s *Store) FindImageForAccount(ctx context.Context, accountID, placeID, imageID string) (*core.PlaceImage, error) {
	var img core.PlaceImage
	err := s.pool.QueryRow(ctx, `
		SELECT pi.id, pi.place_id, pi.file_name, pi.caption, pi.created_at
		FROM place_image pi
		JOIN place p ON p.id = pi.place_id
		WHERE pi.id = $1 AND pi.place_id = $2 AND p.account_id = $3`,
		imageID, placeID, accountID,
	).Scan(&img.ID, &img.PlaceID, &img.FileName, &img.Caption, &img.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) || isBadUUID(err) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, core.Storagef("find image", err)
	}
	return &img, nil
}

// DeleteForAccount borra el place (las imágenes caen por cascade) y devuelve
// los refs de archivo para la limpieza best-effort posterior al commit.
func (s *Store) DeleteForAccount(ctx context.Context, accountID, placeID string) ([]core.ImageRef, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, core.Storagef("begin", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var id string
	err = tx.QueryRow(ctx,
		`SELECT id FROM place WHERE id = $1 AND account_id = $2 FOR UPDATE`, placeID, accountID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) || isBadUUID(err) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, core.Storagef("lock place", err)
	}

	rows, err := tx.Query(ctx,
		`SELECT id, place_id, file_name FROM place_image WHERE place_id = $1`, placeID)
	if err != nil {
		return nil, core.Storagef("enumerate images", err)
	}
	var refs []core.ImageRef
	for rows.Next() {
		var ref core.ImageRef
		if err := rows.Scan(&ref.ID, &ref.PlaceID, &ref.FileName); err != nil {
			rows.Close()
			return nil, core.Storagef("scan image ref", err)
		}
		refs = append(refs, ref)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, core.Storagef("enumerate images", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM place WHERE id = $1`, placeID); err != nil {
		return nil, core.Storagef("delete place", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, core.Storagef("commit", err)
	}
	return refs, nil
}
