package app

import (
	"context"
	"io"
	"log"

	"github.com/google/uuid"

	"github.com/dropDatabas3/placebook/internal/store/core"
)

// Upload es una imagen entrante del multipart.
type Upload struct {
	FileName string
	Caption  *string
	Body     io.Reader
}

// PlaceInput son los campos del place que llegan del cliente.
type PlaceInput struct {
	Name     string
	Category string
	Location string
	Note     *string
}

// CreatePlace genera los IDs, persiste los archivos y luego las filas.
// Si la transacción falla, los archivos recién escritos se borran: el
// estado externo nunca queda por delante de la base.
func (c *Container) CreatePlace(ctx context.Context, accountID string, in PlaceInput, uploads []Upload) (*core.Place, error) {
	placeID := uuid.New().String()

	imgs := make([]core.NewPlaceImage, 0, len(uploads))
	for _, up := range uploads {
		img := core.NewPlaceImage{
			ID:       uuid.New().String(),
			PlaceID:  placeID,
			FileName: up.FileName,
			Caption:  up.Caption,
		}
		if err := c.Files.Save(placeID, up.FileName, up.Body); err != nil {
			_ = c.Files.RemovePlaceDir(placeID)
			return nil, err
		}
		imgs = append(imgs, img)
	}

	place, err := c.Places.CreateWithImages(ctx, core.NewPlace{
		ID:        placeID,
		AccountID: accountID,
		Name:      in.Name,
		Category:  in.Category,
		Location:  in.Location,
		Note:      in.Note,
	}, imgs)
	if err != nil {
		_ = c.Files.RemovePlaceDir(placeID)
		return nil, err
	}
	return place, nil
}

// UpdatePlace aplica el patch, suma las imágenes nuevas y borra las pedidas.
// Los archivos de imágenes removidas se limpian best-effort tras el commit.
func (c *Container) UpdatePlace(ctx context.Context, accountID, placeID string, up core.UpdatePlace, uploads []Upload, removeImageIDs []string) (*core.Place, error) {
	add := make([]core.NewPlaceImage, 0, len(uploads))
	var written []string
	for _, u := range uploads {
		img := core.NewPlaceImage{
			ID:       uuid.New().String(),
			PlaceID:  placeID,
			FileName: u.FileName,
			Caption:  u.Caption,
		}
		if err := c.Files.Save(placeID, u.FileName, u.Body); err != nil {
			for _, fn := range written {
				_ = c.Files.Remove(placeID, fn)
			}
			return nil, err
		}
		written = append(written, u.FileName)
		add = append(add, img)
	}

	place, removed, err := c.Places.UpdateWithImages(ctx, accountID, placeID, up, add, removeImageIDs)
	if err != nil {
		for _, fn := range written {
			_ = c.Files.Remove(placeID, fn)
		}
		return nil, err
	}

	for _, ref := range removed {
		if err := c.Files.Remove(ref.PlaceID, ref.FileName); err != nil {
			log.Printf(`{"level":"warn","msg":"image_file_remove_failed","place_id":"%s","file":"%s","err":"%v"}`,
				ref.PlaceID, ref.FileName, err)
		}
	}
	return place, nil
}

// DeletePlace borra las filas y después el directorio de archivos.
func (c *Container) DeletePlace(ctx context.Context, accountID, placeID string) error {
	if _, err := c.Places.DeleteForAccount(ctx, accountID, placeID); err != nil {
		return err
	}
	if err := c.Files.RemovePlaceDir(placeID); err != nil {
		log.Printf(`{"level":"warn","msg":"place_dir_remove_failed","place_id":"%s","err":"%v"}`, placeID, err)
	}
	return nil
}
