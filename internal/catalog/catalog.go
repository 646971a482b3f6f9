// Package catalog holds the closed set of remediation actions the
// helper is allowed to run. The catalog is the primary safety boundary:
// no code path accepts caller-supplied command text, so the helper can
// only ever execute one of these pre-audited sequences.
package catalog

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrActionNotFound = errors.New("catalog: action not allowlisted")
	ErrInvalidAction  = errors.New("catalog: invalid action definition")
	ErrActionExists   = errors.New("catalog: action already defined")
)

// Catalog is an immutable ActionDefinition lookup keyed by action id.
type Catalog struct {
	items map[string]ActionDefinition
}

// New validates and indexes the given definitions. Malformed entries
// are fatal here, at startup, never later.
func New(defs []ActionDefinition) (*Catalog, error) {
	items := make(map[string]ActionDefinition, len(defs))
	for _, def := range defs {
		if err := validate(def); err != nil {
			return nil, err
		}
		if _, ok := items[def.ID]; ok {
			return nil, fmt.Errorf("%w: %s", ErrActionExists, def.ID)
		}
		items[def.ID] = def
	}
	return &Catalog{items: items}, nil
}

// Get returns the definition for id.
func (c *Catalog) Get(id string) (ActionDefinition, error) {
	def, ok := c.items[id]
	if !ok {
		return ActionDefinition{}, fmt.Errorf("%w: %s", ErrActionNotFound, id)
	}
	return def, nil
}

// Len returns the number of allowlisted actions.
func (c *Catalog) Len() int {
	return len(c.items)
}

// List returns definitions in deterministic id order.
func (c *Catalog) List() []ActionDefinition {
	list := make([]ActionDefinition, 0, len(c.items))
	for _, def := range c.items {
		list = append(list, def)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].ID < list[j].ID
	})
	return list
}

func validate(def ActionDefinition) error {
	if !isValidID(def.ID) {
		return fmt.Errorf("%w: invalid id format %q", ErrInvalidAction, def.ID)
	}
	if def.Title == "" {
		return fmt.Errorf("%w: %s missing title", ErrInvalidAction, def.ID)
	}
	if def.OS == "" {
		return fmt.Errorf("%w: %s missing os tag", ErrInvalidAction, def.ID)
	}
	if len(def.Commands) == 0 {
		return fmt.Errorf("%w: %s has no commands", ErrInvalidAction, def.ID)
	}
	// A reversible action that claims to capture backups must be able
	// to restore them.
	if def.CreatesBackup && def.Reversible && len(def.RollbackCommands) == 0 {
		return fmt.Errorf("%w: %s creates backups but has no rollback commands", ErrInvalidAction, def.ID)
	}
	return nil
}

func isValidID(id string) bool {
	if id == "" {
		return false
	}
	lastSep := false
	for i := 0; i < len(id); i++ {
		c := id[i]
		isLower := c >= 'a' && c <= 'z'
		isDigit := c >= '0' && c <= '9'
		isSep := c == '.' || c == '-' || c == '_'
		if !(isLower || isDigit || isSep) {
			return false
		}
		if i == 0 || i == len(id)-1 {
			if isSep {
				return false
			}
		}
		if isSep && lastSep {
			return false
		}
		lastSep = isSep
	}
	return true
}
