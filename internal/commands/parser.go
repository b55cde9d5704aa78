// Package commands interpreta los comandos que los usuarios escriben en
// comentarios del PR y decide si el autor está autorizado a ejecutarlos.
package commands

import (
	"fmt"
	"sort"
	"strings"
)

// Command es un comando reconocido en un comentario.
type Command struct {
	Name string
}

// CommandPublish publica las release notes del preview como release.
const CommandPublish = "publish"

const commandTarget = "/release-notes publish"

// ParseReleaseNotesCommand busca un comando /release-notes en el cuerpo de un
// comentario. El parser es conservador: ignora bloques de código cercados,
// citas y spans de código inline; solo matchea la línea exacta.
func ParseReleaseNotesCommand(body string) (*Command, bool) {
	if body == "" {
		return nil, false
	}

	inFence := false
	for _, raw := range strings.Split(body, "\n") {
		stripped := strings.TrimSpace(strings.TrimRight(raw, "\r"))

		if strings.HasPrefix(stripped, "```") {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		if strings.HasPrefix(stripped, ">") {
			continue
		}

		cleaned := stripInlineCodeSpans(stripped)
		if strings.EqualFold(cleaned, commandTarget) {
			return &Command{Name: CommandPublish}, true
		}
	}
	return nil, false
}

// stripInlineCodeSpans borra los tramos entre backticks de una línea para no
// matchear comandos citados como código.
func stripInlineCodeSpans(line string) string {
	if !strings.ContainsRune(line, '`') {
		return line
	}
	var out strings.Builder
	inCode := false
	for _, ch := range line {
		if ch == '`' {
			inCode = !inCode
			continue
		}
		if !inCode {
			out.WriteRune(ch)
		}
	}
	return out.String()
}

// Authorizer decide si una author association de GitHub puede publicar.
type Authorizer struct {
	allowed map[string]bool
}

// NewAuthorizer crea un Authorizer con los roles permitidos. Una lista vacía
// cae al default OWNER, MEMBER, COLLABORATOR.
func NewAuthorizer(allowedRoles []string) *Authorizer {
	if len(allowedRoles) == 0 {
		allowedRoles = []string{"OWNER", "MEMBER", "COLLABORATOR"}
	}
	allowed := make(map[string]bool, len(allowedRoles))
	for _, r := range allowedRoles {
		r = strings.ToUpper(strings.TrimSpace(r))
		if r != "" {
			allowed[r] = true
		}
	}
	return &Authorizer{allowed: allowed}
}

// IsAuthorized reporta si la asociación está permitida, sin distinguir caso.
func (a *Authorizer) IsAuthorized(association string) bool {
	if association == "" {
		return false
	}
	return a.allowed[strings.ToUpper(strings.TrimSpace(association))]
}

// DecisionReason arma el motivo legible que va al log de auditoría y al
// feedback en el PR.
func (a *Authorizer) DecisionReason(association string) string {
	if association == "" {
		return "No association provided"
	}
	up := strings.ToUpper(strings.TrimSpace(association))
	if a.allowed[up] {
		return "Authorized: " + up
	}

	roles := make([]string, 0, len(a.allowed))
	for r := range a.allowed {
		roles = append(roles, r)
	}
	sort.Strings(roles)
	return fmt.Sprintf("Not authorized: %s. Allowed roles: %s.", up, strings.Join(roles, ", "))
}
