package catalog

// ActionDefinition is one allowlisted remediation: a fixed forward
// command list and, when reversible, a fixed rollback command list.
// Definitions are values; they are never mutated after catalog build.
type ActionDefinition struct {
	ID               string
	Title            string
	OS               string
	Commands         []string
	RollbackCommands []string
	Reversible       bool
	EstimatedTime    string
	Requirements     []string
	CreatesBackup    bool
}

// NewAction builds a reversible-by-default definition with no rollback
// commands and standard requirements.
func NewAction(id, title, os string, commands []string) ActionDefinition {
	return ActionDefinition{
		ID:            id,
		Title:         title,
		OS:            os,
		Commands:      cloneStrings(commands),
		Reversible:    true,
		EstimatedTime: "10 seconds",
		Requirements:  []string{"Administrator privileges"},
	}
}

// WithRollback attaches rollback commands and marks the action as one
// that captures backup state during its forward run.
func (d ActionDefinition) WithRollback(commands []string) ActionDefinition {
	d.RollbackCommands = cloneStrings(commands)
	d.CreatesBackup = true
	return d
}

// CanRollback reports whether the definition supports rollback at all.
func (d ActionDefinition) CanRollback() bool {
	return d.Reversible && len(d.RollbackCommands) > 0
}

func cloneStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
