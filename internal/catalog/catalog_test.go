package catalog

import (
	"errors"
	"strings"
	"testing"

	"github.com/ohfixit/helperd/internal/testutil/testlog"
)

func TestNewAndGet(t *testing.T) {
	testlog.Start(t)
	c, err := New([]ActionDefinition{
		NewAction("flush-dns-macos", "Flush DNS Cache", "macos", []string{"dscacheutil -flushcache"}),
	})
	if err != nil {
		t.Fatalf("new catalog: %v", err)
	}

	def, err := c.Get("flush-dns-macos")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if def.Title != "Flush DNS Cache" || !def.Reversible {
		t.Fatalf("unexpected definition: %+v", def)
	}
}

func TestGetUnknownAction(t *testing.T) {
	testlog.Start(t)
	c, err := New(nil)
	if err != nil {
		t.Fatalf("new catalog: %v", err)
	}
	if _, err := c.Get("nonexistent-action"); !errors.Is(err, ErrActionNotFound) {
		t.Fatalf("expected ErrActionNotFound, got %v", err)
	}
}

func TestNewRejectsDuplicates(t *testing.T) {
	testlog.Start(t)
	def := NewAction("dup", "Dup", "macos", []string{"true"})
	if _, err := New([]ActionDefinition{def, def}); !errors.Is(err, ErrActionExists) {
		t.Fatalf("expected ErrActionExists, got %v", err)
	}
}

func TestNewValidatesDefinitions(t *testing.T) {
	testlog.Start(t)
	cases := []ActionDefinition{
		{ID: "", Title: "T", OS: "macos", Commands: []string{"true"}},
		{ID: "Bad-ID", Title: "T", OS: "macos", Commands: []string{"true"}},
		{ID: "-leading", Title: "T", OS: "macos", Commands: []string{"true"}},
		{ID: "double--sep", Title: "T", OS: "macos", Commands: []string{"true"}},
		{ID: "no-title", Title: "", OS: "macos", Commands: []string{"true"}},
		{ID: "no-os", Title: "T", OS: "", Commands: []string{"true"}},
		{ID: "no-commands", Title: "T", OS: "macos"},
		{ID: "backup-no-rollback", Title: "T", OS: "macos", Commands: []string{"true"},
			Reversible: true, CreatesBackup: true},
	}
	for _, def := range cases {
		if _, err := New([]ActionDefinition{def}); !errors.Is(err, ErrInvalidAction) {
			t.Fatalf("expected ErrInvalidAction for %+v, got %v", def, err)
		}
	}
}

func TestListSortedByID(t *testing.T) {
	testlog.Start(t)
	c, err := New([]ActionDefinition{
		NewAction("zeta", "Z", "macos", []string{"true"}),
		NewAction("alpha", "A", "macos", []string{"true"}),
		NewAction("mid", "M", "macos", []string{"true"}),
	})
	if err != nil {
		t.Fatalf("new catalog: %v", err)
	}
	list := c.List()
	want := []string{"alpha", "mid", "zeta"}
	for i, id := range want {
		if list[i].ID != id {
			t.Fatalf("list not sorted: got[%d]=%q want %q", i, list[i].ID, id)
		}
	}
}

func TestWithRollbackAndCanRollback(t *testing.T) {
	testlog.Start(t)
	plain := NewAction("plain", "Plain", "macos", []string{"true"})
	if plain.CanRollback() {
		t.Fatalf("action without rollback commands must not roll back")
	}

	rb := plain.WithRollback([]string{"false"})
	if !rb.CanRollback() || !rb.CreatesBackup {
		t.Fatalf("rollback not attached: %+v", rb)
	}

	irreversible := rb
	irreversible.Reversible = false
	if irreversible.CanRollback() {
		t.Fatalf("irreversible action must not roll back")
	}
}

func TestDefinitionsAreIndependentCopies(t *testing.T) {
	testlog.Start(t)
	commands := []string{"true"}
	def := NewAction("copy-check", "Copy", "macos", commands)
	commands[0] = "mutated"
	if def.Commands[0] != "true" {
		t.Fatalf("command list aliased caller slice: %v", def.Commands)
	}
}

func TestBuiltinCatalog(t *testing.T) {
	testlog.Start(t)
	c := Builtin()
	if c.Len() == 0 {
		t.Fatalf("builtin catalog is empty")
	}

	def, err := c.Get("flush-dns-macos")
	if err != nil {
		t.Fatalf("builtin flush-dns-macos missing: %v", err)
	}
	if def.OS != "macos" {
		t.Fatalf("unexpected os tag %q", def.OS)
	}

	wifi, err := c.Get("toggle-wifi-macos")
	if err != nil {
		t.Fatalf("builtin toggle-wifi-macos missing: %v", err)
	}
	if !wifi.CanRollback() {
		t.Fatalf("toggle-wifi-macos should support rollback: %+v", wifi)
	}

	// Command strings must survive whitespace-only splitting: no shell
	// metacharacters can appear in the builtin catalog.
	for _, def := range c.List() {
		for _, cmd := range append(append([]string{}, def.Commands...), def.RollbackCommands...) {
			for _, ch := range []string{"|", "&&", ";", "$", "`", ">", "<"} {
				if strings.Contains(cmd, ch) {
					t.Fatalf("action %s command %q contains shell metacharacter %q", def.ID, cmd, ch)
				}
			}
		}
	}
}
