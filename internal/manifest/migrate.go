package manifest

import (
	"fmt"
)

// Logger receives migration events. Satisfied by gallery.Logger.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

// MigrationContext carries collaborators for a single migration run.
type MigrationContext struct {
	Logger Logger
}

// Step transforms a document at its source version into the document at To.
// Apply may edit doc in place; the migrator only hands it private copies.
type Step struct {
	To    Version
	Name  string
	Apply func(doc *Document, mctx MigrationContext) error
}

// StepError wraps a failure returned by a migration step.
type StepError struct {
	From Version
	To   Version
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("migrating manifest %s -> %s: %v", e.From, e.To, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Result describes what a migration run did.
type Result struct {
	Document *Document
	From     Version
	// Steps lists the versions passed through, in order, including the final one.
	Steps []Version
	// Reset is true when the input could not be migrated and was replaced by
	// an empty manifest.
	Reset bool
}

// Migrated reports whether the document changed version.
func (r *Result) Migrated() bool {
	return r.Reset || len(r.Steps) > 0
}

// Migrator walks a registry of version-to-version steps.
type Migrator struct {
	steps map[Version]Step
}

// NewMigrator returns a Migrator with the default steps registered.
func NewMigrator() *Migrator {
	m := &Migrator{steps: make(map[Version]Step)}
	for from, step := range defaultSteps() {
		if err := m.Register(from, step); err != nil {
			panic(err)
		}
	}
	return m
}

// Register adds or replaces the step for documents at version from.
// Steps must move to a strictly newer known version.
func (m *Migrator) Register(from Version, step Step) error {
	if !from.Valid() {
		return fmt.Errorf("unknown source version %q", string(from))
	}
	if !step.To.Valid() {
		return fmt.Errorf("unknown target version %q", string(step.To))
	}
	if !from.Before(step.To) {
		return fmt.Errorf("step %s -> %s does not move forward", from, step.To)
	}
	if step.Apply == nil {
		return fmt.Errorf("step %s -> %s has no apply func", from, step.To)
	}
	m.steps[from] = step
	return nil
}

// Migrate brings doc to CurrentVersion. See Run.
func (m *Migrator) Migrate(doc *Document, mctx MigrationContext) (*Document, error) {
	res, err := m.Run(doc, mctx)
	if err != nil {
		return nil, err
	}
	return res.Document, nil
}

// Run brings doc to CurrentVersion by applying registered steps one after the
// other. A nil document, a missing or unknown version, or a version with no
// path to the current one yields an empty current manifest; the condition is
// logged and is not an error. A failing step returns a *StepError and no
// document. doc itself is never modified.
func (m *Migrator) Run(doc *Document, mctx MigrationContext) (*Result, error) {
	if doc == nil {
		m.reset(mctx, "", "manifest missing")
		return &Result{Document: Empty(), Reset: true}, nil
	}

	res := &Result{From: doc.Version}
	if !doc.Version.Valid() {
		m.reset(mctx, doc.Version, "unrecognized manifest version")
		res.Document, res.Reset = Empty(), true
		return res, nil
	}

	cur := doc.Clone()
	for i := 0; i < len(knownVersions) && cur.Version != CurrentVersion; i++ {
		step, ok := m.steps[cur.Version]
		if !ok {
			break
		}

		from := cur.Version
		if err := step.Apply(cur, mctx); err != nil {
			return nil, &StepError{From: from, To: step.To, Err: err}
		}
		cur.Version = step.To
		res.Steps = append(res.Steps, step.To)

		if mctx.Logger != nil {
			mctx.Logger.Info("manifest migrated", "from", from.String(), "to", step.To.String(), "step", step.Name)
		}
	}

	if cur.Version != CurrentVersion {
		m.reset(mctx, cur.Version, "no migration path to current version")
		res.Document, res.Reset = Empty(), true
		return res, nil
	}

	res.Document = cur
	return res, nil
}

func (m *Migrator) reset(mctx MigrationContext, v Version, reason string) {
	if mctx.Logger == nil {
		return
	}
	mctx.Logger.Warn("discarding manifest, it will be rebuilt from storage",
		"reason", reason,
		"version", v.String(),
		"target", CurrentVersion.String())
}
