package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/maticastro/notaprensa/internal/domain/models"
	"github.com/maticastro/notaprensa/internal/domain/ports"
)

// MockPRDataSource implementa ports.PRDataSource para los tests del servicio.
type MockPRDataSource struct {
	mock.Mock
}

func (m *MockPRDataSource) GetPullRequest(ctx context.Context, owner, repo string, number int) (models.PRMetadata, error) {
	args := m.Called(ctx, owner, repo, number)
	return args.Get(0).(models.PRMetadata), args.Error(1)
}

func (m *MockPRDataSource) ListCommits(ctx context.Context, owner, repo string, number int) ([]models.CommitInfo, error) {
	args := m.Called(ctx, owner, repo, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CommitInfo), args.Error(1)
}

func (m *MockPRDataSource) ListPullRequestFiles(ctx context.Context, owner, repo string, number int) ([]models.RawFileChange, error) {
	args := m.Called(ctx, owner, repo, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.RawFileChange), args.Error(1)
}

func (m *MockPRDataSource) GetUnifiedDiff(ctx context.Context, owner, repo string, number int, baseSHA, headSHA string) (string, error) {
	args := m.Called(ctx, owner, repo, number, baseSHA, headSHA)
	return args.String(0), args.Error(1)
}

// MockNotesGenerator implementa ports.NotesGenerator.
type MockNotesGenerator struct {
	mock.Mock
}

func (m *MockNotesGenerator) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

// MockPRCommenter implementa ports.PRCommenter.
type MockPRCommenter struct {
	mock.Mock
}

func (m *MockPRCommenter) UpsertComment(ctx context.Context, owner, repo string, prNumber int, marker, body string) (ports.CommentResult, error) {
	args := m.Called(ctx, owner, repo, prNumber, marker, body)
	return args.Get(0).(ports.CommentResult), args.Error(1)
}

func (m *MockPRCommenter) CreateComment(ctx context.Context, owner, repo string, prNumber int, body string) (ports.CommentResult, error) {
	args := m.Called(ctx, owner, repo, prNumber, body)
	return args.Get(0).(ports.CommentResult), args.Error(1)
}

func (m *MockPRCommenter) GetComment(ctx context.Context, owner, repo string, commentID int64) (ports.IssueComment, error) {
	args := m.Called(ctx, owner, repo, commentID)
	return args.Get(0).(ports.IssueComment), args.Error(1)
}

// MockReleasePublisher implementa ports.ReleasePublisher.
type MockReleasePublisher struct {
	mock.Mock
}

func (m *MockReleasePublisher) GetReleaseByTag(ctx context.Context, owner, repo, tag string) (*ports.ReleaseInfo, error) {
	args := m.Called(ctx, owner, repo, tag)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.ReleaseInfo), args.Error(1)
}

func (m *MockReleasePublisher) CreateRelease(ctx context.Context, owner, repo, tag, name, body, commitish string) (ports.ReleaseInfo, error) {
	args := m.Called(ctx, owner, repo, tag, name, body, commitish)
	return args.Get(0).(ports.ReleaseInfo), args.Error(1)
}

func (m *MockReleasePublisher) UpdateRelease(ctx context.Context, owner, repo string, id int64, name, body string) (ports.ReleaseInfo, error) {
	args := m.Called(ctx, owner, repo, id, name, body)
	return args.Get(0).(ports.ReleaseInfo), args.Error(1)
}
