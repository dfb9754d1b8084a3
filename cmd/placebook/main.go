// placebook es la CLI de administración: opera directo contra la base
// y el directorio de uploads, sin pasar por la API.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/placebook/internal/config"
	"github.com/dropDatabas3/placebook/internal/files"
	pgdriver "github.com/dropDatabas3/placebook/internal/store/pg"
)

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	var configPath = envOr("PLACEBOOK_CONFIG", "configs/config.example.yaml")

	open := func() (*config.Config, *pgdriver.Store, error) {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, nil, fmt.Errorf("config: %w", err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		store, err := pgdriver.New(ctx, cfg.Storage.DSN, pgdriver.Config{
			MaxOpenConns: 2,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("store: %w", err)
		}
		return cfg, store, nil
	}

	root := &cobra.Command{
		Use:   "placebook",
		Short: "CLI admin de placebook (opera directo contra la base)",
	}
	root.PersistentFlags().StringVar(&configPath, "config", configPath, "ruta a config.yaml (env PLACEBOOK_CONFIG)")

	pingCmd := &cobra.Command{
		Use:   "ping",
		Short: "Verifica conectividad con la base",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, store, err := open()
			if err != nil {
				return err
			}
			defer store.Close()
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := store.Ping(ctx); err != nil {
				return fmt.Errorf("ping: %w", err)
			}
			fmt.Println("ok")
			return nil
		},
	}

	accountsCmd := &cobra.Command{
		Use:   "accounts",
		Short: "Operaciones sobre cuentas",
	}

	accountsShowCmd := &cobra.Command{
		Use:   "show <account-id>",
		Short: "Muestra una cuenta",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, store, err := open()
			if err != nil {
				return err
			}
			defer store.Close()
			acc, err := store.FindByID(context.Background(), args[0])
			if err != nil {
				return err
			}
			email, name := "-", "-"
			if acc.Email != nil {
				email = *acc.Email
			}
			if acc.Name != nil {
				name = *acc.Name
			}
			fmt.Printf("id=%s email=%s name=%s created=%s\n", acc.ID, email, name, acc.CreatedAt.Format(time.RFC3339))
			return nil
		},
	}

	accountsDeleteCmd := &cobra.Command{
		Use:   "delete <account-id>",
		Short: "Borra una cuenta, sus places y archivos",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, store, err := open()
			if err != nil {
				return err
			}
			defer store.Close()

			deleted, err := store.DeleteCascade(context.Background(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("deleted account=%s places=%d images=%d\n",
				deleted.AccountID, len(deleted.PlaceIDs), len(deleted.Images))

			fileStore, err := files.New(cfg.Uploads.Dir)
			if err != nil {
				return err
			}
			// Sincrónico acá: la CLI puede esperar la limpieza.
			fileStore.CleanupPlaces(deleted.PlaceIDs)
			return nil
		},
	}

	filesCmd := &cobra.Command{
		Use:   "files",
		Short: "Mantenimiento del árbol de uploads",
	}

	// gc barre directorios de places que ya no existen en la base
	// (archivos que la fase best-effort dejó atrás).
	filesGCCmd := &cobra.Command{
		Use:   "gc",
		Short: "Borra directorios de uploads sin place en la base",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, store, err := open()
			if err != nil {
				return err
			}
			defer store.Close()

			fileStore, err := files.New(cfg.Uploads.Dir)
			if err != nil {
				return err
			}

			entries, err := os.ReadDir(fileStore.Root())
			if err != nil {
				return err
			}
			ctx := context.Background()
			removed := 0
			for _, e := range entries {
				if !e.IsDir() {
					continue
				}
				exists, err := store.PlaceExists(ctx, e.Name())
				if err != nil {
					return err
				}
				if exists {
					continue
				}
				if err := fileStore.RemovePlaceDir(e.Name()); err != nil {
					log.Printf("gc %s: %v", e.Name(), err)
					continue
				}
				removed++
			}
			fmt.Printf("gc: removed %d orphan dir(s)\n", removed)
			return nil
		},
	}

	accountsCmd.AddCommand(accountsShowCmd, accountsDeleteCmd)
	filesCmd.AddCommand(filesGCCmd)
	root.AddCommand(pingCmd, accountsCmd, filesCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
