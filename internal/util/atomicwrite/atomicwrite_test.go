package atomicwrite_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dropDatabas3/placebook/internal/util/atomicwrite"
)

func TestAtomicWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "dir", "archivo.bin")

	if err := atomicwrite.AtomicWriteFile(path, []byte("contenido"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "contenido" {
		t.Fatalf("data = %q", data)
	}
}

func TestAtomicWriteFileOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archivo.bin")

	if err := atomicwrite.AtomicWriteFile(path, []byte("v1"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := atomicwrite.AtomicWriteFile(path, []byte("v2"), 0644); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "v2" {
		t.Fatalf("data = %q", data)
	}
}

func TestAtomicWriteFileNoTempLeftovers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "archivo.bin")

	if err := atomicwrite.AtomicWriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("quedaron archivos temporales: %d entradas", len(entries))
	}
}
