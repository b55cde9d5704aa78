package ports

import (
	"context"

	"github.com/maticastro/notaprensa/internal/domain/models"
)

// PRDataSource define la fuente de datos de pull requests. Toda falla se
// reporta como *errors.PipelineError con uno de los códigos de la taxonomía.
type PRDataSource interface {
	// GetPullRequest obtiene la metadata normalizada del PR.
	GetPullRequest(ctx context.Context, owner, repo string, number int) (models.PRMetadata, error)

	// ListCommits devuelve los commits del PR en orden.
	ListCommits(ctx context.Context, owner, repo string, number int) ([]models.CommitInfo, error)

	// ListPullRequestFiles devuelve los registros crudos de cambio por archivo.
	ListPullRequestFiles(ctx context.Context, owner, repo string, number int) ([]models.RawFileChange, error)

	// GetUnifiedDiff devuelve el diff unificado completo del PR, intentando el
	// endpoint de diff del PR y cayendo al compare base...head.
	GetUnifiedDiff(ctx context.Context, owner, repo string, number int, baseSHA, headSHA string) (string, error)
}
