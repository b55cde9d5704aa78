package github

import (
	"context"

	"github.com/google/go-github/v80/github"
	"github.com/stretchr/testify/mock"
)

type MockPRService struct {
	mock.Mock
}

func (m *MockPRService) Get(ctx context.Context, owner, repo string, number int) (*github.PullRequest, *github.Response, error) {
	args := m.Called(ctx, owner, repo, number)
	if args.Get(0) == nil {
		return nil, response(args.Get(1)), args.Error(2)
	}
	return args.Get(0).(*github.PullRequest), response(args.Get(1)), args.Error(2)
}

func (m *MockPRService) ListCommits(ctx context.Context, owner, repo string, number int, opts *github.ListOptions) ([]*github.RepositoryCommit, *github.Response, error) {
	args := m.Called(ctx, owner, repo, number, opts)
	if args.Get(0) == nil {
		return nil, response(args.Get(1)), args.Error(2)
	}
	return args.Get(0).([]*github.RepositoryCommit), response(args.Get(1)), args.Error(2)
}

func (m *MockPRService) ListFiles(ctx context.Context, owner, repo string, number int, opts *github.ListOptions) ([]*github.CommitFile, *github.Response, error) {
	args := m.Called(ctx, owner, repo, number, opts)
	if args.Get(0) == nil {
		return nil, response(args.Get(1)), args.Error(2)
	}
	return args.Get(0).([]*github.CommitFile), response(args.Get(1)), args.Error(2)
}

func (m *MockPRService) GetRaw(ctx context.Context, owner, repo string, number int, opts github.RawOptions) (string, *github.Response, error) {
	args := m.Called(ctx, owner, repo, number, opts)
	return args.String(0), response(args.Get(1)), args.Error(2)
}

type MockIssuesService struct {
	mock.Mock
}

func (m *MockIssuesService) CreateComment(ctx context.Context, owner, repo string, number int, comment *github.IssueComment) (*github.IssueComment, *github.Response, error) {
	args := m.Called(ctx, owner, repo, number, comment)
	if args.Get(0) == nil {
		return nil, response(args.Get(1)), args.Error(2)
	}
	return args.Get(0).(*github.IssueComment), response(args.Get(1)), args.Error(2)
}

func (m *MockIssuesService) EditComment(ctx context.Context, owner, repo string, commentID int64, comment *github.IssueComment) (*github.IssueComment, *github.Response, error) {
	args := m.Called(ctx, owner, repo, commentID, comment)
	if args.Get(0) == nil {
		return nil, response(args.Get(1)), args.Error(2)
	}
	return args.Get(0).(*github.IssueComment), response(args.Get(1)), args.Error(2)
}

func (m *MockIssuesService) GetComment(ctx context.Context, owner, repo string, commentID int64) (*github.IssueComment, *github.Response, error) {
	args := m.Called(ctx, owner, repo, commentID)
	if args.Get(0) == nil {
		return nil, response(args.Get(1)), args.Error(2)
	}
	return args.Get(0).(*github.IssueComment), response(args.Get(1)), args.Error(2)
}

func (m *MockIssuesService) ListComments(ctx context.Context, owner, repo string, number int, opts *github.IssueListCommentsOptions) ([]*github.IssueComment, *github.Response, error) {
	args := m.Called(ctx, owner, repo, number, opts)
	if args.Get(0) == nil {
		return nil, response(args.Get(1)), args.Error(2)
	}
	return args.Get(0).([]*github.IssueComment), response(args.Get(1)), args.Error(2)
}

type MockRepoService struct {
	mock.Mock
}

func (m *MockRepoService) CompareCommitsRaw(ctx context.Context, owner, repo, base, head string, opts github.RawOptions) (string, *github.Response, error) {
	args := m.Called(ctx, owner, repo, base, head, opts)
	return args.String(0), response(args.Get(1)), args.Error(2)
}

func (m *MockRepoService) GetReleaseByTag(ctx context.Context, owner, repo, tag string) (*github.RepositoryRelease, *github.Response, error) {
	args := m.Called(ctx, owner, repo, tag)
	if args.Get(0) == nil {
		return nil, response(args.Get(1)), args.Error(2)
	}
	return args.Get(0).(*github.RepositoryRelease), response(args.Get(1)), args.Error(2)
}

func (m *MockRepoService) CreateRelease(ctx context.Context, owner, repo string, release *github.RepositoryRelease) (*github.RepositoryRelease, *github.Response, error) {
	args := m.Called(ctx, owner, repo, release)
	if args.Get(0) == nil {
		return nil, response(args.Get(1)), args.Error(2)
	}
	return args.Get(0).(*github.RepositoryRelease), response(args.Get(1)), args.Error(2)
}

func (m *MockRepoService) EditRelease(ctx context.Context, owner, repo string, id int64, release *github.RepositoryRelease) (*github.RepositoryRelease, *github.Response, error) {
	args := m.Called(ctx, owner, repo, id, release)
	if args.Get(0) == nil {
		return nil, response(args.Get(1)), args.Error(2)
	}
	return args.Get(0).(*github.RepositoryRelease), response(args.Get(1)), args.Error(2)
}

func response(v any) *github.Response {
	if v == nil {
		return nil
	}
	return v.(*github.Response)
}
