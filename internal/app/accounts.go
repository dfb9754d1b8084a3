package app

import (
	"context"
	"encoding/json"
	"log"

	"github.com/dropDatabas3/placebook/internal/cache"
	"github.com/dropDatabas3/placebook/internal/store/core"
)

func profileKey(accountID string) string { return "usr:" + accountID }

// Profile devuelve la cuenta, con cache read-through.
// Errores de cache se loggean y se sigue contra el store.
func (c *Container) Profile(ctx context.Context, accountID string) (*core.Account, error) {
	key := profileKey(accountID)
	if raw, err := c.Cache.Get(ctx, key); err == nil {
		var acc core.Account
		if json.Unmarshal([]byte(raw), &acc) == nil {
			return &acc, nil
		}
	} else if !cache.IsNotFound(err) {
		log.Printf(`{"level":"warn","msg":"profile_cache_get_failed","err":"%v"}`, err)
	}

	acc, err := c.Accounts.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(acc); err == nil {
		if err := c.Cache.Set(ctx, key, string(b), c.Cfg.ProfileTTLDuration()); err != nil {
			log.Printf(`{"level":"warn","msg":"profile_cache_set_failed","err":"%v"}`, err)
		}
	}
	return acc, nil
}

func (c *Container) invalidateProfile(ctx context.Context, accountID string) {
	if err := c.Cache.Delete(ctx, profileKey(accountID)); err != nil {
		log.Printf(`{"level":"warn","msg":"profile_cache_delete_failed","err":"%v"}`, err)
	}
}

// DeleteAccount borra la cuenta en dos fases: primero la transacción que
// tumba cuenta + identidades + places + filas de imágenes (todo o nada),
// después la limpieza best-effort de archivos fuera del tx. Si el proceso
// muere entre las dos fases quedan archivos huérfanos en disco, nunca
// filas huérfanas en la base.
func (c *Container) DeleteAccount(ctx context.Context, accountID string) error {
	deleted, err := c.Accounts.DeleteCascade(ctx, accountID)
	if err != nil {
		return err
	}

	c.invalidateProfile(ctx, accountID)
	log.Printf(`{"level":"info","msg":"account_deleted","account_id":"%s","places":%d,"images":%d}`,
		deleted.AccountID, len(deleted.PlaceIDs), len(deleted.Images))

	// Fase 2: archivos. No bloquea la respuesta ni puede fallar el borrado.
	go c.Files.CleanupPlaces(deleted.PlaceIDs)
	return nil
}
