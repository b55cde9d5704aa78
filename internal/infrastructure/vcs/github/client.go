// Package github implementa la fuente de datos de PRs, el commenter y el
// publicador de releases sobre la API REST de GitHub.
package github

import (
	"context"
	stderrors "errors"
	"net/http"

	"github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"

	"github.com/maticastro/notaprensa/internal/domain/errors"
)

// Interfaces angostas sobre go-github para poder mockear en tests.
type PullRequestsService interface {
	Get(ctx context.Context, owner, repo string, number int) (*github.PullRequest, *github.Response, error)
	ListCommits(ctx context.Context, owner, repo string, number int, opts *github.ListOptions) ([]*github.RepositoryCommit, *github.Response, error)
	ListFiles(ctx context.Context, owner, repo string, number int, opts *github.ListOptions) ([]*github.CommitFile, *github.Response, error)
	GetRaw(ctx context.Context, owner, repo string, number int, opts github.RawOptions) (string, *github.Response, error)
}

type IssuesService interface {
	CreateComment(ctx context.Context, owner, repo string, number int, comment *github.IssueComment) (*github.IssueComment, *github.Response, error)
	EditComment(ctx context.Context, owner, repo string, commentID int64, comment *github.IssueComment) (*github.IssueComment, *github.Response, error)
	GetComment(ctx context.Context, owner, repo string, commentID int64) (*github.IssueComment, *github.Response, error)
	ListComments(ctx context.Context, owner, repo string, number int, opts *github.IssueListCommentsOptions) ([]*github.IssueComment, *github.Response, error)
}

type RepositoriesService interface {
	CompareCommitsRaw(ctx context.Context, owner, repo, base, head string, opts github.RawOptions) (string, *github.Response, error)
	GetReleaseByTag(ctx context.Context, owner, repo, tag string) (*github.RepositoryRelease, *github.Response, error)
	CreateRelease(ctx context.Context, owner, repo string, release *github.RepositoryRelease) (*github.RepositoryRelease, *github.Response, error)
	EditRelease(ctx context.Context, owner, repo string, id int64, release *github.RepositoryRelease) (*github.RepositoryRelease, *github.Response, error)
}

// Client agrupa los servicios de GitHub que usa el pipeline.
type Client struct {
	prService     PullRequestsService
	issuesService IssuesService
	repoService   RepositoriesService
}

// NewClient crea un Client autenticado con el token dado. Sin token se usa el
// cliente anónimo, suficiente para repos públicos con límites bajos.
func NewClient(token string) *Client {
	var httpClient *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(context.Background(), ts)
	}

	client := github.NewClient(httpClient)
	return &Client{
		prService:     client.PullRequests,
		issuesService: client.Issues,
		repoService:   client.Repositories,
	}
}

// NewClientWithServices inyecta los servicios directamente, para tests.
func NewClientWithServices(pr PullRequestsService, issues IssuesService, repos RepositoriesService) *Client {
	return &Client{
		prService:     pr,
		issuesService: issues,
		repoService:   repos,
	}
}

// classify traduce un error de go-github a la taxonomía del pipeline usando
// el status HTTP cuando está disponible.
func classify(message string, resp *github.Response, err error) error {
	if err == nil {
		return nil
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.Wrap(errors.CodeTimeout, message, err)
	}
	if status := statusOf(resp, err); status != 0 {
		return errors.Wrap(errors.FromStatus(status), message, err)
	}
	if rateErr := (*github.RateLimitError)(nil); stderrors.As(err, &rateErr) {
		return errors.Wrap(errors.CodeRateLimit, message, err)
	}
	return errors.Wrap(errors.CodeNetwork, message, err)
}

func statusOf(resp *github.Response, err error) int {
	if resp != nil && resp.Response != nil {
		return resp.StatusCode
	}
	if errResp, ok := err.(*github.ErrorResponse); ok && errResp.Response != nil {
		return errResp.Response.StatusCode
	}
	return 0
}
