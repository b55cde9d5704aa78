package github

import (
	"context"
	"fmt"

	"github.com/google/go-github/v80/github"

	"github.com/maticastro/notaprensa/internal/domain/ports"
)

var _ ports.ReleasePublisher = (*Client)(nil)

// GetReleaseByTag devuelve el release del tag o nil si no existe. El 404 acá
// es un resultado válido, no un error.
func (c *Client) GetReleaseByTag(ctx context.Context, owner, repo, tag string) (*ports.ReleaseInfo, error) {
	rel, resp, err := c.repoService.GetReleaseByTag(ctx, owner, repo, tag)
	if err != nil {
		if statusOf(resp, err) == 404 {
			return nil, nil
		}
		return nil, classify(fmt.Sprintf("error al buscar el release del tag %s", tag), resp, err)
	}
	info := toReleaseInfo(rel)
	return &info, nil
}

// CreateRelease crea un release nuevo apuntando al commitish dado.
func (c *Client) CreateRelease(ctx context.Context, owner, repo, tag, name, body, commitish string) (ports.ReleaseInfo, error) {
	release := &github.RepositoryRelease{
		TagName: github.Ptr(tag),
		Name:    github.Ptr(name),
		Body:    github.Ptr(body),
	}
	if commitish != "" {
		release.TargetCommitish = github.Ptr(commitish)
	}

	created, resp, err := c.repoService.CreateRelease(ctx, owner, repo, release)
	if err != nil {
		return ports.ReleaseInfo{}, classify(fmt.Sprintf("error al crear el release %s", tag), resp, err)
	}
	return toReleaseInfo(created), nil
}

// UpdateRelease reemplaza nombre y body de un release existente.
func (c *Client) UpdateRelease(ctx context.Context, owner, repo string, id int64, name, body string) (ports.ReleaseInfo, error) {
	updated, resp, err := c.repoService.EditRelease(ctx, owner, repo, id, &github.RepositoryRelease{
		Name: github.Ptr(name),
		Body: github.Ptr(body),
	})
	if err != nil {
		return ports.ReleaseInfo{}, classify(fmt.Sprintf("error al actualizar el release %d", id), resp, err)
	}
	return toReleaseInfo(updated), nil
}

func toReleaseInfo(rel *github.RepositoryRelease) ports.ReleaseInfo {
	return ports.ReleaseInfo{
		ID:      rel.GetID(),
		TagName: rel.GetTagName(),
		Name:    rel.GetName(),
		Body:    rel.GetBody(),
		HTMLURL: rel.GetHTMLURL(),
	}
}
