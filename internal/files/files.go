// Package files guarda los bytes de imágenes en disco, un directorio por
// place. Las filas en place_image son la fuente de verdad; los archivos
// son estado externo y su limpieza es siempre best-effort.
package files

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/dropDatabas3/placebook/internal/util/atomicwrite"
)

// Store maneja el árbol de uploads: {root}/{place_id}/{file_name}.
type Store struct {
	root string
}

func New(root string) (*Store, error) {
	if root == "" {
		root = "./uploads"
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("files: mkdir root: %w", err)
	}
	return &Store{root: root}, nil
}

func (s *Store) Root() string { return s.root }

// path valida los componentes contra traversal antes de armar la ruta.
func (s *Store) path(placeID, fileName string) (string, error) {
	if placeID == "" || fileName == "" {
		return "", errors.New("files: empty path component")
	}
	for _, part := range []string{placeID, fileName} {
		if strings.ContainsAny(part, `/\`) || part == "." || part == ".." {
			return "", fmt.Errorf("files: bad path component %q", part)
		}
	}
	return filepath.Join(s.root, placeID, fileName), nil
}

// Save escribe los bytes de una imagen de forma atómica.
func (s *Store) Save(placeID, fileName string, r io.Reader) error {
	p, err := s.path(placeID, fileName)
	if err != nil {
		return err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("files: read upload: %w", err)
	}
	return atomicwrite.AtomicWriteFile(p, data, 0644)
}

// Open abre una imagen para servirla. os.ErrNotExist si no está.
func (s *Store) Open(placeID, fileName string) (*os.File, error) {
	p, err := s.path(placeID, fileName)
	if err != nil {
		return nil, err
	}
	return os.Open(p)
}

// Remove borra un archivo. Que ya no exista cuenta como éxito:
// el objetivo es "el archivo no está", no "nosotros lo borramos".
func (s *Store) Remove(placeID, fileName string) error {
	p, err := s.path(placeID, fileName)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// RemovePlaceDir borra el directorio completo de un place.
// Idempotente: directorio ausente es éxito.
func (s *Store) RemovePlaceDir(placeID string) error {
	if placeID == "" || strings.ContainsAny(placeID, `/\`) || placeID == "." || placeID == ".." {
		return fmt.Errorf("files: bad place id %q", placeID)
	}
	return os.RemoveAll(filepath.Join(s.root, placeID))
}

// CleanupPlaces borra los directorios de una lista de places, siguiendo
// adelante ante errores. Cada falla se loggea y se pierde: las filas ya
// no existen, así que no hay transacción que revertir.
func (s *Store) CleanupPlaces(placeIDs []string) {
	for _, id := range placeIDs {
		if err := s.RemovePlaceDir(id); err != nil {
			log.Printf(`{"level":"warn","msg":"file_cleanup_failed","place_id":"%s","err":"%v"}`, id, err)
		}
	}
}
