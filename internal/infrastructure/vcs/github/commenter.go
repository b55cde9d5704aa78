package github

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/go-github/v80/github"

	"github.com/maticastro/notaprensa/internal/domain/errors"
	"github.com/maticastro/notaprensa/internal/domain/ports"
)

// Commenter publica el comentario de preview con markers HTML invisibles.
// Mantiene un único comentario por PR: primero prueba el ID persistido,
// después busca por marker, y recién ahí crea uno nuevo.
type Commenter struct {
	client          *Client
	markerPreview   string
	markerKey       string
	maxCommentChars int

	// ids hace persistente el comentario de preview entre corridas.
	ids CommentIDStore
}

// CommentIDStore es lo mínimo que el Commenter necesita del store de IDs.
type CommentIDStore interface {
	Load(repo string, prNumber int) int64
	Save(repo string, prNumber int, commentID int64) error
	Delete(repo string, prNumber int)
}

var _ ports.PRCommenter = (*Commenter)(nil)

// NewCommenter arma el Commenter sobre un Client ya autenticado.
func NewCommenter(client *Client, ids CommentIDStore, markerPreview, markerKey string, maxCommentChars int) *Commenter {
	return &Commenter{
		client:          client,
		ids:             ids,
		markerPreview:   markerPreview,
		markerKey:       markerKey,
		maxCommentChars: maxCommentChars,
	}
}

func (cm *Commenter) marker(m string) string {
	return "<!-- " + m + " -->"
}

func (cm *Commenter) withMarkers(body string) string {
	return cm.marker(cm.markerPreview) + "\n" + cm.marker(cm.markerKey) + "\n\n" + body
}

// applyTruncation recorta el body al límite de GitHub dejando un footer que
// lo hace explícito.
func (cm *Commenter) applyTruncation(body string) string {
	if len(body) <= cm.maxCommentChars {
		return body
	}
	footer := "\n\n---\n_Comment truncated to fit GitHub limits. View full notes in the local cache._"
	cut := cm.maxCommentChars - len(footer)
	if cut < 0 {
		cut = 0
	}
	return body[:cut] + footer
}

// UpsertComment crea o edita el comentario de preview. Un 404 al editar
// significa que el comentario desapareció: se olvida el ID y se crea uno
// nuevo en la misma llamada.
func (cm *Commenter) UpsertComment(ctx context.Context, owner, repo string, prNumber int, marker, body string) (ports.CommentResult, error) {
	fullRepo := owner + "/" + repo
	content := cm.withMarkers(cm.applyTruncation(body))

	existingID := cm.findExisting(ctx, owner, repo, prNumber)
	if existingID != 0 {
		updated, resp, err := cm.client.issuesService.EditComment(ctx, owner, repo, existingID, &github.IssueComment{Body: github.Ptr(content)})
		if err == nil {
			_ = cm.ids.Save(fullRepo, prNumber, updated.GetID())
			return ports.CommentResult{ID: updated.GetID(), URL: updated.GetHTMLURL(), Created: false}, nil
		}
		if statusOf(resp, err) == 404 {
			cm.ids.Delete(fullRepo, prNumber)
		} else {
			return ports.CommentResult{}, classify(fmt.Sprintf("error al editar el comentario %d", existingID), resp, err)
		}
	}

	created, resp, err := cm.client.issuesService.CreateComment(ctx, owner, repo, prNumber, &github.IssueComment{Body: github.Ptr(content)})
	if err != nil {
		return ports.CommentResult{}, classify(fmt.Sprintf("error al crear el comentario en el PR %d", prNumber), resp, err)
	}

	_ = cm.ids.Save(fullRepo, prNumber, created.GetID())
	return ports.CommentResult{ID: created.GetID(), URL: created.GetHTMLURL(), Created: true}, nil
}

// findExisting devuelve el ID del comentario de preview previo, o 0. El ID
// persistido se valida contra el listado; si no aparece se busca por marker.
func (cm *Commenter) findExisting(ctx context.Context, owner, repo string, prNumber int) int64 {
	fullRepo := owner + "/" + repo
	persisted := cm.ids.Load(fullRepo, prNumber)

	comments, _, err := cm.client.issuesService.ListComments(ctx, owner, repo, prNumber, &github.IssueListCommentsOptions{
		ListOptions: github.ListOptions{PerPage: listPageSize},
	})
	if err != nil {
		// sin listado no se puede validar; se confía en el ID persistido
		return persisted
	}

	for _, c := range comments {
		if persisted != 0 && c.GetID() == persisted && cm.hasAnyMarker(c.GetBody()) {
			return persisted
		}
	}
	for _, c := range comments {
		if cm.hasAnyMarker(c.GetBody()) {
			return c.GetID()
		}
	}
	return 0
}

func (cm *Commenter) hasAnyMarker(body string) bool {
	if body == "" {
		return false
	}
	return strings.Contains(body, cm.markerPreview) || strings.Contains(body, cm.markerKey)
}

// CreateComment publica un comentario nuevo sin markers, por ejemplo el
// feedback de un comando denegado.
func (cm *Commenter) CreateComment(ctx context.Context, owner, repo string, prNumber int, body string) (ports.CommentResult, error) {
	created, resp, err := cm.client.issuesService.CreateComment(ctx, owner, repo, prNumber, &github.IssueComment{
		Body: github.Ptr(cm.applyTruncation(body)),
	})
	if err != nil {
		return ports.CommentResult{}, classify(fmt.Sprintf("error al crear el comentario en el PR %d", prNumber), resp, err)
	}
	return ports.CommentResult{ID: created.GetID(), URL: created.GetHTMLURL(), Created: true}, nil
}

// GetComment obtiene un comentario por ID.
func (cm *Commenter) GetComment(ctx context.Context, owner, repo string, commentID int64) (ports.IssueComment, error) {
	comment, resp, err := cm.client.issuesService.GetComment(ctx, owner, repo, commentID)
	if err != nil {
		return ports.IssueComment{}, classify(fmt.Sprintf("error al obtener el comentario %d", commentID), resp, err)
	}
	if comment == nil {
		return ports.IssueComment{}, errors.New(errors.CodeNotFound, fmt.Sprintf("comentario %d no encontrado", commentID))
	}
	return ports.IssueComment{
		ID:                comment.GetID(),
		Body:              comment.GetBody(),
		AuthorLogin:       comment.GetUser().GetLogin(),
		AuthorAssociation: comment.GetAuthorAssociation(),
	}, nil
}
