package engine

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/hyperengineering/lexicon/internal/store"
	"github.com/hyperengineering/lexicon/internal/types"
)

func syncedFixture(t *testing.T, lookups ...types.LookupEvent) *fixture {
	t.Helper()
	f := newFixture(t)
	f.seed(t, lookups...)
	if _, err := f.engine.Sync(context.Background(), f.settings); err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	return f
}

func TestApplyEdit_Toggles(t *testing.T) {
	f := syncedFixture(t, ephemeral)
	ctx := context.Background()

	for _, learned := range []bool{true, false} {
		if err := f.engine.ApplyEdit(ctx, f.settings, "ephemeral", learned); err != nil {
			t.Fatal(err)
		}
		if got := f.record(t, "ephemeral").Learned; got != learned {
			t.Errorf("Learned = %v, want %v", got, learned)
		}
	}
}

func TestApplyEdit_UnknownWord(t *testing.T) {
	f := syncedFixture(t, ephemeral)
	before := f.read(t, f.settings.StorePath())

	err := f.engine.ApplyEdit(context.Background(), f.settings, "ghost", true)
	if !errors.Is(err, store.ErrUnknownWord) {
		t.Fatalf("ApplyEdit() error = %v, want ErrUnknownWord", err)
	}
	if !bytes.Equal(before, f.read(t, f.settings.StorePath())) {
		t.Error("store image modified by rejected edit")
	}
}

func TestApplyEdit_MissingStore(t *testing.T) {
	f := newFixture(t)

	err := f.engine.ApplyEdit(context.Background(), f.settings, "ephemeral", true)
	if !errors.Is(err, ErrMissingSource) {
		t.Fatalf("ApplyEdit() error = %v, want ErrMissingSource", err)
	}
}

func TestApplyEdit_DoesNotRerender(t *testing.T) {
	f := syncedFixture(t, ephemeral)
	before := f.read(t, f.settings.DocumentPath())

	if err := f.engine.ApplyEdit(context.Background(), f.settings, "ephemeral", true); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(before, f.read(t, f.settings.DocumentPath())) {
		t.Error("ApplyEdit must not rewrite the document")
	}
}

func TestApplyDocument(t *testing.T) {
	f := syncedFixture(t, ephemeral, types.LookupEvent{Word: "cat", Context: "c", SourceTitle: "B"})
	ctx := context.Background()

	doc, err := f.engine.ReadDocument(f.settings)
	if err != nil {
		t.Fatal(err)
	}
	edited := strings.Replace(doc, `data-word="cat" />`, `data-word="cat" checked />`, 1)
	edited += "\n- **Learned**: <input type=\"checkbox\" data-word=\"ghost\" checked />\n"

	changed, err := f.engine.ApplyDocument(ctx, f.settings, edited)
	if err != nil {
		t.Fatalf("ApplyDocument() error = %v", err)
	}
	if changed != 1 {
		t.Errorf("changed = %d, want 1", changed)
	}
	if !f.record(t, "cat").Learned {
		t.Error("cat not marked learned")
	}
	if f.record(t, "ephemeral").Learned {
		t.Error("ephemeral must stay unlearned")
	}

	changed, err = f.engine.ApplyDocument(ctx, f.settings, edited)
	if err != nil {
		t.Fatal(err)
	}
	if changed != 0 {
		t.Errorf("second apply changed = %d, want 0", changed)
	}
}

func TestApplyDocument_Unchecks(t *testing.T) {
	f := syncedFixture(t, ephemeral)
	ctx := context.Background()

	if err := f.engine.ApplyEdit(ctx, f.settings, "ephemeral", true); err != nil {
		t.Fatal(err)
	}
	doc, err := f.engine.RenderDocument(ctx, f.settings)
	if err != nil {
		t.Fatal(err)
	}

	edited := strings.Replace(doc, " checked />", " />", 1)
	changed, err := f.engine.ApplyDocument(ctx, f.settings, edited)
	if err != nil {
		t.Fatal(err)
	}
	if changed != 1 || f.record(t, "ephemeral").Learned {
		t.Errorf("changed = %d, learned = %v", changed, f.record(t, "ephemeral").Learned)
	}
}

func TestReadDocument_Missing(t *testing.T) {
	f := newFixture(t)

	_, err := f.engine.ReadDocument(f.settings)
	if !errors.Is(err, ErrMissingSource) {
		t.Fatalf("ReadDocument() error = %v, want ErrMissingSource", err)
	}
}
