package models

type (
	// DegradationLevel indica cuánto contenido del diff se incluye en el
	// prompt: parches completos, solo resúmenes por archivo, o solo commits.
	DegradationLevel string

	// ProcessedFile deriva de un DiffFile con el parche recortado a contexto
	// acotado y una estimación de tokens del contenido que lo representa.
	ProcessedFile struct {
		Path         string
		Status       FileStatus
		PreviousPath string
		ChangeType   ChangeType
		IsBinary     bool
		Additions    int
		Deletions    int
		HunkCount    int
		Summary      string
		PatchTrimmed string
		TokensEst    int
	}

	// ProcessedChunk agrupa archivos ordenados bajo un presupuesto blando de
	// tokens. Idx es 0-based y contiguo.
	ProcessedChunk struct {
		Idx         int
		Files       []ProcessedFile
		FilesCount  int
		TokensEst   int
		Diagnostics []string
	}

	// ProcessedDiff es la salida del procesador. Se calcula una vez por
	// snapshot del PR y no se muta después de retornar.
	ProcessedDiff struct {
		Chunks            []ProcessedChunk
		TotalFiles        int
		TotalTokensEst    int
		Truncated         bool
		Degradation       DegradationLevel
		Diagnostics       []string
		DegradationReason string
		CommitsSummary    []CommitSummary
	}

	// CommitSummary es la vista mínima de un commit usada en commits_only.
	CommitSummary struct {
		ShaShort         string
		AuthorLogin      string
		MessageFirstLine string
	}
)

const (
	DegradationFull        DegradationLevel = "full"
	DegradationFilesOnly   DegradationLevel = "files_only"
	DegradationCommitsOnly DegradationLevel = "commits_only"
)

const (
	DegradationReasonBudget         = "budget"
	DegradationReasonChunks         = "chunks"
	DegradationReasonInputTruncated = "input_truncated"
)
