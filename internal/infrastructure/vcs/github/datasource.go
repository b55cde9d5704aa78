package github

import (
	"context"
	"fmt"

	"github.com/google/go-github/v80/github"

	"github.com/maticastro/notaprensa/internal/domain/models"
	"github.com/maticastro/notaprensa/internal/domain/ports"
)

var _ ports.PRDataSource = (*Client)(nil)

const listPageSize = 100

// GetPullRequest mapea el PR de GitHub a la metadata del dominio.
func (c *Client) GetPullRequest(ctx context.Context, owner, repo string, number int) (models.PRMetadata, error) {
	pr, resp, err := c.prService.Get(ctx, owner, repo, number)
	if err != nil {
		return models.PRMetadata{}, classify(fmt.Sprintf("error al obtener el PR %d", number), resp, err)
	}

	labels := make([]string, 0, len(pr.Labels))
	for _, l := range pr.Labels {
		labels = append(labels, l.GetName())
	}

	return models.PRMetadata{
		Number:            pr.GetNumber(),
		Title:             pr.GetTitle(),
		Body:              pr.GetBody(),
		Author:            pr.GetUser().GetLogin(),
		Labels:            labels,
		State:             pr.GetState(),
		AuthorAssociation: pr.GetAuthorAssociation(),
		IsDraft:           pr.GetDraft(),
		BaseRef:           pr.GetBase().GetRef(),
		HeadRef:           pr.GetHead().GetRef(),
		BaseSHA:           pr.GetBase().GetSHA(),
		HeadSHA:           pr.GetHead().GetSHA(),
		HTMLURL:           pr.GetHTMLURL(),
	}, nil
}

// ListCommits pagina todos los commits del PR.
func (c *Client) ListCommits(ctx context.Context, owner, repo string, number int) ([]models.CommitInfo, error) {
	opts := &github.ListOptions{PerPage: listPageSize}
	var out []models.CommitInfo

	for {
		commits, resp, err := c.prService.ListCommits(ctx, owner, repo, number, opts)
		if err != nil {
			return nil, classify(fmt.Sprintf("error al listar los commits del PR %d", number), resp, err)
		}
		for _, rc := range commits {
			raw := rc.GetCommit().GetMessage()
			out = append(out, models.CommitInfo{
				SHA:         rc.GetSHA(),
				AuthorLogin: rc.GetAuthor().GetLogin(),
				Message:     models.FirstLine(raw),
				RawMessage:  raw,
			})
		}
		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return out, nil
}

// ListPullRequestFiles pagina los archivos cambiados del PR como registros
// crudos; el fetcher decide qué hacer con los patches omitidos.
func (c *Client) ListPullRequestFiles(ctx context.Context, owner, repo string, number int) ([]models.RawFileChange, error) {
	opts := &github.ListOptions{PerPage: listPageSize}
	var out []models.RawFileChange

	for {
		files, resp, err := c.prService.ListFiles(ctx, owner, repo, number, opts)
		if err != nil {
			return nil, classify(fmt.Sprintf("error al listar los archivos del PR %d", number), resp, err)
		}
		for _, f := range files {
			out = append(out, models.RawFileChange{
				Filename:         f.GetFilename(),
				Status:           f.GetStatus(),
				Additions:        f.GetAdditions(),
				Deletions:        f.GetDeletions(),
				Changes:          f.GetChanges(),
				PreviousFilename: f.GetPreviousFilename(),
				Patch:            f.Patch,
			})
		}
		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return out, nil
}

// GetUnifiedDiff pide el diff del PR en formato raw; si el endpoint responde
// 404 cae al compare base...head.
func (c *Client) GetUnifiedDiff(ctx context.Context, owner, repo string, number int, baseSHA, headSHA string) (string, error) {
	diff, resp, err := c.prService.GetRaw(ctx, owner, repo, number, github.RawOptions{Type: github.Diff})
	if err == nil {
		return diff, nil
	}
	if statusOf(resp, err) != 404 {
		return "", classify(fmt.Sprintf("error al obtener el diff del PR %d", number), resp, err)
	}

	diff, resp, err = c.repoService.CompareCommitsRaw(ctx, owner, repo, baseSHA, headSHA, github.RawOptions{Type: github.Diff})
	if err != nil {
		return "", classify(fmt.Sprintf("error en el compare %s...%s", baseSHA, headSHA), resp, err)
	}
	return diff, nil
}
