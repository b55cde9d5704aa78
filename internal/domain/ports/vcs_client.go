package ports

import "context"

type (
	// CommentResult identifica un comentario creado o actualizado en el PR.
	CommentResult struct {
		ID      int64
		URL     string
		Created bool // false si se editó uno existente
	}

	// IssueComment es un comentario de PR ya publicado.
	IssueComment struct {
		ID                int64
		Body              string
		AuthorLogin       string
		AuthorAssociation string
	}

	// ReleaseInfo identifica un release publicado en el VCS.
	ReleaseInfo struct {
		ID      int64
		TagName string
		Name    string
		Body    string
		HTMLURL string
	}
)

// PRCommenter publica y actualiza comentarios de preview/final en el PR.
type PRCommenter interface {
	// UpsertComment busca un comentario previo por marker y lo edita, o crea
	// uno nuevo si no existe.
	UpsertComment(ctx context.Context, owner, repo string, prNumber int, marker, body string) (CommentResult, error)

	// CreateComment publica siempre un comentario nuevo.
	CreateComment(ctx context.Context, owner, repo string, prNumber int, body string) (CommentResult, error)

	// GetComment obtiene un issue comment por ID.
	GetComment(ctx context.Context, owner, repo string, commentID int64) (IssueComment, error)
}

// ReleasePublisher administra el body de un GitHub Release.
type ReleasePublisher interface {
	// GetReleaseByTag devuelve el release para un tag, o nil si no existe.
	GetReleaseByTag(ctx context.Context, owner, repo, tag string) (*ReleaseInfo, error)

	// CreateRelease crea un release nuevo con el body dado.
	CreateRelease(ctx context.Context, owner, repo, tag, name, body, commitish string) (ReleaseInfo, error)

	// UpdateRelease reemplaza el body de un release existente.
	UpdateRelease(ctx context.Context, owner, repo string, id int64, name, body string) (ReleaseInfo, error)
}
