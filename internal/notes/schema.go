// Package notes contiene el contrato de salida estructurada del modelo y el
// pipeline de post-procesamiento: sanitizar el texto crudo, validar el draft,
// normalizarlo y renderizarlo a markdown.
package notes

import (
	"fmt"
	"strings"

	"github.com/maticastro/notaprensa/internal/domain/errors"
	"github.com/maticastro/notaprensa/internal/domain/models"
)

// draftJSONSchema se inyecta en el prompt para que el modelo devuelva
// exactamente la forma de NotesDraft. additionalProperties en false: campos
// extra son error de estructura, no se toleran.
const draftJSONSchema = `{"type":"object","additionalProperties":false,"required":["schema_version","version_increment","highlights","fixes","docs","breaking_changes","deprecations","upgrade_notes"],"properties":{"schema_version":{"type":"string","minLength":1,"maxLength":20},"version_increment":{"type":"string","enum":["major","minor","patch","none"]},"highlights":{"type":"array","items":{"$ref":"#/definitions/note_item"}},"fixes":{"type":"array","items":{"$ref":"#/definitions/note_item"}},"docs":{"type":"array","items":{"$ref":"#/definitions/note_item"}},"breaking_changes":{"type":"array","items":{"$ref":"#/definitions/note_item"}},"deprecations":{"type":"array","items":{"$ref":"#/definitions/deprecation_item"}},"upgrade_notes":{"type":"array","items":{"type":"string","maxLength":2000}},"technical_debt_notes":{"type":"string","maxLength":2000},"known_issues":{"type":"array","items":{"type":"string","maxLength":500}},"confidence_overall":{"type":"number","minimum":0,"maximum":1},"repo":{"type":"string"},"pr_number":{"type":"integer"},"head_sha":{"type":"string","minLength":7,"maxLength":40}},"definitions":{"note_item":{"type":"object","additionalProperties":false,"required":["type","title"],"properties":{"type":{"type":"string","enum":["feature","fix","docs","perf","refactor","test","chore","build","ci","style","revert","security"]},"title":{"type":"string","minLength":3,"maxLength":200},"details":{"type":"string","maxLength":2000},"scope":{"type":"string","enum":["api","ui","core","infra","build","data","docs","tests","config","deps","release"]},"breaking":{"type":"boolean"},"confidence":{"type":"number","minimum":0,"maximum":1},"issue_refs":{"type":"array","items":{"type":"string","minLength":1,"maxLength":50}},"components":{"type":"array","items":{"type":"string","minLength":1,"maxLength":50}},"files":{"type":"array","items":{"type":"string"}},"commit_shas":{"type":"array","items":{"type":"string","minLength":7,"maxLength":40}}}},"deprecation_item":{"type":"object","additionalProperties":false,"required":["title"],"properties":{"title":{"type":"string","minLength":3,"maxLength":200},"details":{"type":"string","maxLength":2000},"effective_version":{"type":"string","minLength":1,"maxLength":50}}}}}`

// DraftJSONSchema devuelve el schema JSON compacto del borrador.
func DraftJSONSchema() string {
	return draftJSONSchema
}

// ValidateDraft aplica las reglas del contrato sobre un draft ya decodificado.
// Toda violación se reporta como error VALIDATION con el campo que falló.
func ValidateDraft(d *models.NotesDraft) error {
	if d.SchemaVersion == "" || len(d.SchemaVersion) > 20 {
		return validationErr("schema_version", d.SchemaVersion)
	}
	if !contains(models.VersionIncrements, d.VersionIncrement) {
		return validationErr("version_increment", d.VersionIncrement)
	}

	for section, items := range map[string][]models.NoteItem{
		"highlights":       d.Highlights,
		"fixes":            d.Fixes,
		"docs":             d.Docs,
		"breaking_changes": d.BreakingChanges,
	} {
		for i := range items {
			if err := validateItem(section, i, &items[i]); err != nil {
				return err
			}
		}
	}

	for i, dep := range d.Deprecations {
		if len(dep.Title) < 3 || len(dep.Title) > 200 {
			return validationErr(fmt.Sprintf("deprecations[%d].title", i), dep.Title)
		}
		if len(dep.Details) > 2000 {
			return validationErr(fmt.Sprintf("deprecations[%d].details", i), "demasiado largo")
		}
	}

	for i, n := range d.UpgradeNotes {
		if len(n) > 2000 {
			return validationErr(fmt.Sprintf("upgrade_notes[%d]", i), "demasiado largo")
		}
	}
	for i, n := range d.KnownIssues {
		if len(n) > 500 {
			return validationErr(fmt.Sprintf("known_issues[%d]", i), "demasiado largo")
		}
	}

	if d.ConfidenceOverall != nil && (*d.ConfidenceOverall < 0 || *d.ConfidenceOverall > 1) {
		return validationErr("confidence_overall", fmt.Sprintf("%v", *d.ConfidenceOverall))
	}
	if d.HeadSHA != "" && (len(d.HeadSHA) < 7 || len(d.HeadSHA) > 40) {
		return validationErr("head_sha", d.HeadSHA)
	}
	return nil
}

func validateItem(section string, idx int, it *models.NoteItem) error {
	field := func(name string) string {
		return fmt.Sprintf("%s[%d].%s", section, idx, name)
	}

	if !contains(models.NoteChangeTypes, it.Type) {
		return validationErr(field("type"), it.Type)
	}
	if l := len(it.Title); l < 3 || l > 200 {
		return validationErr(field("title"), it.Title)
	}
	if len(it.Details) > 2000 {
		return validationErr(field("details"), "demasiado largo")
	}
	if it.Scope != "" && !contains(models.NoteScopes, it.Scope) {
		return validationErr(field("scope"), it.Scope)
	}
	if it.Confidence != nil && (*it.Confidence < 0 || *it.Confidence > 1) {
		return validationErr(field("confidence"), fmt.Sprintf("%v", *it.Confidence))
	}
	for j, ref := range it.IssueRefs {
		if ref == "" || len(ref) > 50 {
			return validationErr(field(fmt.Sprintf("issue_refs[%d]", j)), ref)
		}
	}
	for j, c := range it.Components {
		if c == "" || len(c) > 50 {
			return validationErr(field(fmt.Sprintf("components[%d]", j)), c)
		}
	}
	for j, sha := range it.CommitSHAs {
		if len(sha) < 7 || len(sha) > 40 {
			return validationErr(field(fmt.Sprintf("commit_shas[%d]", j)), sha)
		}
	}
	return nil
}

func validationErr(field, value string) error {
	if len(value) > 60 {
		value = value[:60] + "..."
	}
	return errors.New(errors.CodeValidation, fmt.Sprintf("campo inválido %s: %q", field, value))
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if strings.EqualFold(s, v) {
			return true
		}
	}
	return false
}
