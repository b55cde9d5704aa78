package models

type (
	// FileStatus es el estado de un archivo dentro del diff del PR.
	FileStatus string

	// ChangeType clasifica un archivo según su rol en el repositorio.
	ChangeType string

	// DiffFile representa un archivo cambiado dentro de un PR.
	// Invariante: si IsBinary es true, Patch queda vacío.
	DiffFile struct {
		Path         string
		Status       FileStatus
		Additions    int
		Deletions    int
		Changes      int
		PreviousPath string // solo para renombres
		IsBinary     bool
		ChangeType   ChangeType
		Patch        string
		HunkCount    int
		Summary      string
	}

	// DiffBundle es el resultado de un fetch de diff. Se crea una vez por
	// llamada y no se muta después; el caller es el dueño.
	DiffBundle struct {
		PRNumber       int
		BaseSHA        string
		HeadSHA        string
		TotalFiles     int
		TotalAdditions int
		TotalDeletions int
		TotalChanges   int
		Truncated      bool
		Files          []DiffFile
		Diagnostics    []string
	}

	// RawFileChange es el registro crudo de cambio por archivo que entrega la
	// fuente de datos. Patch es nil cuando el proveedor lo omite (archivo
	// binario o demasiado grande).
	RawFileChange struct {
		Filename         string
		Status           string
		Additions        int
		Deletions        int
		Changes          int
		PreviousFilename string
		Patch            *string
	}
)

const (
	StatusAdded     FileStatus = "added"
	StatusModified  FileStatus = "modified"
	StatusRemoved   FileStatus = "removed"
	StatusRenamed   FileStatus = "renamed"
	StatusCopied    FileStatus = "copied"
	StatusChanged   FileStatus = "changed"
	StatusUnchanged FileStatus = "unchanged"
	StatusOther     FileStatus = "other"
)

const (
	ChangeTypeCode   ChangeType = "code"
	ChangeTypeDocs   ChangeType = "docs"
	ChangeTypeTests  ChangeType = "tests"
	ChangeTypeConfig ChangeType = "config"
	ChangeTypeData   ChangeType = "data"
	ChangeTypeOther  ChangeType = "other"
)
