package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestLabelFor(t *testing.T) {
	cat := Default()

	if got := cat.LabelFor("links:create"); got != "Create links" {
		t.Fatalf("labeled key: got %q", got)
	}
	// Unlabeled keys following the convention get a humanized fallback.
	if got := cat.LabelFor("links:archive"); got != "Archive links" {
		t.Fatalf("humanized fallback: got %q", got)
	}
	if got := cat.LabelFor("reports:schedule_exports"); got != "Schedule Exports reports" {
		t.Fatalf("underscore fallback: got %q", got)
	}
	// Keys without the convention come back unchanged, never empty.
	if got := cat.LabelFor("weird-key"); got != "weird-key" {
		t.Fatalf("raw fallback: got %q", got)
	}
}

func TestGroupsInOrderIsStable(t *testing.T) {
	cat := Default()
	first := cat.GroupsInOrder()
	second := cat.GroupsInOrder()
	if len(first) == 0 {
		t.Fatal("default catalog has no groups")
	}
	for i := range first {
		if first[i].Key != second[i].Key {
			t.Fatalf("group order changed between calls at %d: %s vs %s", i, first[i].Key, second[i].Key)
		}
	}
	if first[0].Key != "links" {
		t.Fatalf("expected links first, got %s", first[0].Key)
	}
}

func TestCatalogIsImmutable(t *testing.T) {
	source := []Group{{Key: "g", DisplayName: "G", Permissions: []string{"a:view"}}}
	cat := New(source, nil)

	// Mutating the input after construction must not leak into the catalog.
	source[0].Permissions[0] = "mutated"
	if got := cat.GroupsInOrder()[0].Permissions[0]; got != "a:view" {
		t.Fatalf("catalog shares input storage: %s", got)
	}

	// Mutating a returned group must not leak back in.
	out := cat.GroupsInOrder()
	out[0].Permissions[0] = "mutated"
	if got := cat.GroupsInOrder()[0].Permissions[0]; got != "a:view" {
		t.Fatalf("catalog shares output storage: %s", got)
	}
}

func TestContains(t *testing.T) {
	cat := Default()
	if !cat.Contains("qr:delete") {
		t.Fatal("expected qr:delete in catalog")
	}
	if cat.Contains("qr:fabricate") {
		t.Fatal("did not expect qr:fabricate in catalog")
	}
}

func TestStoreCachesInRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	ctx := context.Background()

	calls := 0
	source := func() *Catalog {
		calls++
		return Default()
	}

	store := NewStore(client, nil, source, time.Hour)
	cat := store.Get(ctx)
	if cat == nil || calls != 1 {
		t.Fatalf("expected one source build, got %d", calls)
	}
	// Second Get serves the in-process copy.
	if store.Get(ctx) != cat {
		t.Fatal("expected the same catalog instance")
	}

	// A fresh store hits the Redis cache, not the source.
	second := NewStore(client, nil, source, time.Hour)
	warmed := second.Get(ctx)
	if calls != 1 {
		t.Fatalf("expected cache hit, source built %d times", calls)
	}
	if got := warmed.LabelFor("links:create"); got != "Create links" {
		t.Fatalf("cached catalog lost labels: %q", got)
	}
	if len(warmed.GroupsInOrder()) != len(cat.GroupsInOrder()) {
		t.Fatal("cached catalog lost groups")
	}
}

func TestStoreFallsBackWhenRedisDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	mr.Close()

	store := NewStore(client, nil, Default, time.Hour)
	cat := store.Get(context.Background())
	if cat == nil || len(cat.GroupsInOrder()) == 0 {
		t.Fatal("catalog must be served even without the cache")
	}
}
