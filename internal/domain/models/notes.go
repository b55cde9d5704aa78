package models

// SchemaVersion es la versión del contrato de salida estructurada del LLM.
const SchemaVersion = "v1"

type (
	// NoteItem es un cambio individual dentro de una sección de release notes.
	NoteItem struct {
		Type       string   `json:"type"`
		Title      string   `json:"title"`
		Details    string   `json:"details,omitempty"`
		Scope      string   `json:"scope,omitempty"`
		Breaking   bool     `json:"breaking"`
		Confidence *float64 `json:"confidence,omitempty"`
		IssueRefs  []string `json:"issue_refs,omitempty"`
		Components []string `json:"components,omitempty"`
		Files      []string `json:"files,omitempty"`
		CommitSHAs []string `json:"commit_shas,omitempty"`
	}

	// DeprecationItem es una nota de deprecación con versión efectiva opcional.
	DeprecationItem struct {
		Title            string `json:"title"`
		Details          string `json:"details,omitempty"`
		EffectiveVersion string `json:"effective_version,omitempty"`
	}

	// NotesDraft es el borrador estructurado de release notes que produce el
	// LLM y que se cachea y renderiza.
	NotesDraft struct {
		SchemaVersion      string            `json:"schema_version"`
		VersionIncrement   string            `json:"version_increment"`
		Highlights         []NoteItem        `json:"highlights"`
		Fixes              []NoteItem        `json:"fixes"`
		Docs               []NoteItem        `json:"docs"`
		BreakingChanges    []NoteItem        `json:"breaking_changes"`
		Deprecations       []DeprecationItem `json:"deprecations"`
		UpgradeNotes       []string          `json:"upgrade_notes"`
		TechnicalDebtNotes string            `json:"technical_debt_notes,omitempty"`
		KnownIssues        []string          `json:"known_issues,omitempty"`
		ConfidenceOverall  *float64          `json:"confidence_overall,omitempty"`

		// Identidad del request para trazabilidad y clave de idempotencia.
		Repo     string `json:"repo,omitempty"`
		PRNumber int    `json:"pr_number,omitempty"`
		HeadSHA  string `json:"head_sha,omitempty"`
	}
)

// Tipos de cambio y de scope permitidos en el borrador.
var (
	NoteChangeTypes = []string{
		"feature", "fix", "docs", "perf", "refactor", "test",
		"chore", "build", "ci", "style", "revert", "security",
	}

	NoteScopes = []string{
		"api", "ui", "core", "infra", "build", "data",
		"docs", "tests", "config", "deps", "release",
	}

	VersionIncrements = []string{"major", "minor", "patch", "none"}
)

// IsEmpty reporta si el borrador no tiene ninguna sección con contenido.
func (d *NotesDraft) IsEmpty() bool {
	return len(d.Highlights) == 0 &&
		len(d.Fixes) == 0 &&
		len(d.Docs) == 0 &&
		len(d.BreakingChanges) == 0 &&
		len(d.Deprecations) == 0 &&
		len(d.UpgradeNotes) == 0 &&
		len(d.KnownIssues) == 0
}
