package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/dropDatabas3/placebook/internal/cache"
)

func newMemory(t *testing.T) cache.Client {
	t.Helper()
	c, err := cache.New(cache.Config{Driver: "memory", Prefix: "test"})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestMemorySetGet(t *testing.T) {
	c := newMemory(t)
	ctx := context.Background()

	if err := c.Set(ctx, "k1", "v1", 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := c.Get(ctx, "k1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != "v1" {
		t.Fatalf("got = %q", got)
	}
}

func TestMemoryGetMissing(t *testing.T) {
	c := newMemory(t)

	_, err := c.Get(context.Background(), "nada")
	if !cache.IsNotFound(err) {
		t.Fatalf("err = %v, esperaba not found", err)
	}
}

func TestMemoryTTLExpires(t *testing.T) {
	c := newMemory(t)
	ctx := context.Background()

	if err := c.Set(ctx, "k1", "v1", 30*time.Millisecond); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Get(ctx, "k1"); err != nil {
		t.Fatalf("antes del ttl: %v", err)
	}
	time.Sleep(60 * time.Millisecond)
	if _, err := c.Get(ctx, "k1"); !cache.IsNotFound(err) {
		t.Fatalf("después del ttl: %v", err)
	}
}

func TestMemoryDelete(t *testing.T) {
	c := newMemory(t)
	ctx := context.Background()

	if err := c.Set(ctx, "k1", "v1", 0); err != nil {
		t.Fatal(err)
	}
	if err := c.Delete(ctx, "k1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := c.Get(ctx, "k1"); !cache.IsNotFound(err) {
		t.Fatalf("err = %v", err)
	}
	// Borrar lo que no está no es error.
	if err := c.Delete(ctx, "k1"); err != nil {
		t.Fatalf("segundo delete: %v", err)
	}
}

func TestMemoryExists(t *testing.T) {
	c := newMemory(t)
	ctx := context.Background()

	ok, err := c.Exists(ctx, "k1")
	if err != nil || ok {
		t.Fatalf("exists antes de set = (%v, %v)", ok, err)
	}
	if err := c.Set(ctx, "k1", "v1", 0); err != nil {
		t.Fatal(err)
	}
	ok, err = c.Exists(ctx, "k1")
	if err != nil || !ok {
		t.Fatalf("exists después de set = (%v, %v)", ok, err)
	}
}

func TestMemoryPrefixIsolation(t *testing.T) {
	a, err := cache.New(cache.Config{Driver: "memory", Prefix: "a"})
	if err != nil {
		t.Fatal(err)
	}
	b, err := cache.New(cache.Config{Driver: "memory", Prefix: "b"})
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if err := a.Set(ctx, "k", "va", 0); err != nil {
		t.Fatal(err)
	}
	// Instancias distintas no comparten nada, con o sin prefijo.
	if _, err := b.Get(ctx, "k"); !cache.IsNotFound(err) {
		t.Fatalf("err = %v", err)
	}
}

func TestMemoryStats(t *testing.T) {
	c := newMemory(t)
	ctx := context.Background()

	if err := c.Set(ctx, "k1", "v1", 0); err != nil {
		t.Fatal(err)
	}
	st, err := c.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.Driver != "memory" {
		t.Fatalf("driver = %q", st.Driver)
	}
	if st.Keys != 1 {
		t.Fatalf("keys = %d", st.Keys)
	}
}

func TestNewDefaultsToMemory(t *testing.T) {
	c, err := cache.New(cache.Config{})
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
}
