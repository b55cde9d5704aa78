package diff

import (
	"context"
	"strings"
	"testing"

	"github.com/maticastro/notaprensa/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fileWithPatch(path string, patch string) models.DiffFile {
	return models.DiffFile{
		Path:       path,
		Status:     models.StatusModified,
		ChangeType: inferChangeType(path),
		Patch:      patch,
		HunkCount:  countHunks(patch),
		Additions:  1,
		Deletions:  1,
	}
}

func TestProcessorProcess(t *testing.T) {
	t.Run("should be deterministic for the same bundle", func(t *testing.T) {
		bundle := &models.DiffBundle{Files: []models.DiffFile{
			fileWithPatch("zz/last.go", "@@ -1 +1 @@\n-a\n+b"),
			fileWithPatch("aa/first.go", "@@ -1 +1 @@\n-c\n+d"),
			fileWithPatch("docs/guide.md", "@@ -1 +1 @@\n-e\n+f"),
		}}

		p := NewProcessor(testDiffConfig())
		first := p.Process(context.Background(), bundle, nil)
		second := p.Process(context.Background(), bundle, nil)

		assert.Equal(t, first, second)
	})

	t.Run("should order binaries first then by type and path", func(t *testing.T) {
		bundle := &models.DiffBundle{Files: []models.DiffFile{
			fileWithPatch("docs/guide.md", "@@ -1 +1 @@\n-e\n+f"),
			fileWithPatch("internal/b.go", "@@ -1 +1 @@\n-a\n+b"),
			{Path: "assets/blob.dat", Status: models.StatusAdded, ChangeType: models.ChangeTypeCode, IsBinary: true},
			fileWithPatch("internal/a.go", "@@ -1 +1 @@\n-c\n+d"),
		}}

		p := NewProcessor(testDiffConfig())
		result := p.Process(context.Background(), bundle, nil)

		require.Len(t, result.Chunks, 1)
		paths := make([]string, 0, 4)
		for _, f := range result.Chunks[0].Files {
			paths = append(paths, f.Path)
		}
		assert.Equal(t, []string{"assets/blob.dat", "internal/a.go", "internal/b.go", "docs/guide.md"}, paths)
	})

	t.Run("should split twenty files into chunks by file cap", func(t *testing.T) {
		files := make([]models.DiffFile, 0, 20)
		// ~200 caracteres por patch ≈ 50 tokens estimados por archivo
		patch := "@@ -1,3 +1,3 @@\n" + strings.Repeat("+"+strings.Repeat("x", 45)+"\n", 4)
		for i := 0; i < 20; i++ {
			files = append(files, fileWithPatch("pkg/file_"+string(rune('a'+i))+".go", patch))
		}
		bundle := &models.DiffBundle{Files: files}

		p := NewProcessor(testDiffConfig())
		result := p.Process(context.Background(), bundle, nil)

		require.Len(t, result.Chunks, 2)
		assert.Equal(t, 15, result.Chunks[0].FilesCount)
		assert.Equal(t, 5, result.Chunks[1].FilesCount)
		assert.Equal(t, 0, result.Chunks[0].Idx)
		assert.Equal(t, 1, result.Chunks[1].Idx)
		assert.Equal(t, models.DegradationFull, result.Degradation)
	})

	t.Run("should respect the soft budget per chunk", func(t *testing.T) {
		cfg := testDiffConfig()
		big := "@@ -1 +1 @@\n+" + strings.Repeat("y", 8000)
		bundle := &models.DiffBundle{Files: []models.DiffFile{
			fileWithPatch("a.go", big),
			fileWithPatch("b.go", big),
		}}

		p := NewProcessor(cfg)
		result := p.Process(context.Background(), bundle, nil)

		// cada patch estima ~2000 tokens, dos juntos superan el presupuesto blando
		require.Len(t, result.Chunks, 2)
		soft := int(float64(cfg.HardTokenBudget) * cfg.SoftBudgetRatio)
		for _, c := range result.Chunks {
			assert.LessOrEqual(t, c.TokensEst, soft)
		}
	})

	t.Run("should degrade to files only when chunks exceed the limit", func(t *testing.T) {
		cfg := testDiffConfig()
		cfg.MaxChunks = 1
		cfg.MaxFilesPerChunk = 2

		files := make([]models.DiffFile, 0, 6)
		patch := "@@ -1 +1 @@\n+" + strings.Repeat("z", 400)
		for i := 0; i < 6; i++ {
			files = append(files, fileWithPatch("pkg/f"+string(rune('a'+i))+".go", patch))
		}
		bundle := &models.DiffBundle{Files: files}

		p := NewProcessor(cfg)
		result := p.Process(context.Background(), bundle, nil)

		// con 6 archivos y tope de 2 por chunk ni files_only entra en 1 chunk
		assert.Equal(t, models.DegradationCommitsOnly, result.Degradation)
		assert.Equal(t, models.DegradationReasonChunks, result.DegradationReason)
		require.Len(t, result.Chunks, 1)
		assert.Empty(t, result.Chunks[0].Files)
	})

	t.Run("should never go back up once degraded", func(t *testing.T) {
		cfg := testDiffConfig()
		cfg.HardTokenBudget = 120
		cfg.SoftBudgetRatio = 0.6

		patch := "@@ -1 +1 @@\n+" + strings.Repeat("w", 2000)
		bundle := &models.DiffBundle{Files: []models.DiffFile{fileWithPatch("a.go", patch)}}

		p := NewProcessor(cfg)
		result := p.Process(context.Background(), bundle, nil)

		// el patch solo ya revienta el hard budget, el resumen entra
		assert.Equal(t, models.DegradationFilesOnly, result.Degradation)
		assert.Equal(t, models.DegradationReasonBudget, result.DegradationReason)
		for _, c := range result.Chunks {
			for _, f := range c.Files {
				assert.Empty(t, f.PatchTrimmed)
			}
		}
	})

	t.Run("should include commit summaries only in commits only mode", func(t *testing.T) {
		cfg := testDiffConfig()
		cfg.MaxChunks = 1
		cfg.MaxFilesPerChunk = 1

		commits := make([]models.CommitInfo, 0, 25)
		for i := 0; i < 25; i++ {
			commits = append(commits, models.CommitInfo{
				SHA:         strings.Repeat("a", 40),
				AuthorLogin: "dev",
				Message:     "feat: algo",
				RawMessage:  "feat: algo\n\ncuerpo",
			})
		}

		patch := "@@ -1 +1 @@\n+x"
		bundle := &models.DiffBundle{Files: []models.DiffFile{
			fileWithPatch("a.go", patch),
			fileWithPatch("b.go", patch),
		}}

		p := NewProcessor(cfg)
		result := p.Process(context.Background(), bundle, commits)

		require.Equal(t, models.DegradationCommitsOnly, result.Degradation)
		require.Len(t, result.CommitsSummary, 20)
		assert.Equal(t, "aaaaaaaa", result.CommitsSummary[0].ShaShort)
		assert.Equal(t, "feat: algo", result.CommitsSummary[0].MessageFirstLine)
	})

	t.Run("should flag truncated input", func(t *testing.T) {
		bundle := &models.DiffBundle{
			Truncated: true,
			Files:     []models.DiffFile{fileWithPatch("a.go", "@@ -1 +1 @@\n-a\n+b")},
		}

		p := NewProcessor(testDiffConfig())
		result := p.Process(context.Background(), bundle, nil)

		assert.True(t, result.Truncated)
		assert.Equal(t, models.DegradationReasonInputTruncated, result.DegradationReason)
		assert.Contains(t, result.Diagnostics, "input bundle truncated at fetch stage")
	})
}

func TestTrimPatch(t *testing.T) {
	p := NewProcessor(testDiffConfig())

	t.Run("should keep every change line", func(t *testing.T) {
		var sb strings.Builder
		sb.WriteString("@@ -1,20 +1,20 @@\n")
		for i := 0; i < 8; i++ {
			sb.WriteString(" contexto\n")
		}
		sb.WriteString("-removida\n+agregada\n")
		for i := 0; i < 8; i++ {
			sb.WriteString(" contexto\n")
		}

		trimmed := p.trimPatch(sb.String())

		assert.Contains(t, trimmed, "-removida")
		assert.Contains(t, trimmed, "+agregada")
		// 3 líneas de contexto por lado, no las 8 originales
		assert.Equal(t, 3+2+3, strings.Count(trimmed, "\n"))
	})

	t.Run("should normalize hunk headers", func(t *testing.T) {
		trimmed := p.trimPatch("@@ -10,4 +10,5 @@ func main() {\n-a\n+b")
		assert.True(t, strings.HasPrefix(trimmed, "@@\n"))
		assert.NotContains(t, trimmed, "-10,4")
	})

	t.Run("should not confuse file headers with deletions", func(t *testing.T) {
		patch := "@@ -1 +1 @@\n--- a/file\n+++ b/file\n-real\n+real2"
		trimmed := p.trimPatch(patch)
		assert.Contains(t, trimmed, "-real")
		assert.Contains(t, trimmed, "+real2")
	})

	t.Run("should handle a hunk without changes", func(t *testing.T) {
		patch := "@@ -1,6 +1,6 @@\n uno\n dos\n tres\n cuatro\n cinco"
		trimmed := p.trimPatch(patch)
		lines := strings.Split(trimmed, "\n")
		require.Equal(t, "@@", lines[0])
		assert.Len(t, lines[1:], 3)
	})
}

func TestEstimateTokens(t *testing.T) {
	p := NewProcessor(testDiffConfig())

	assert.Equal(t, 0, p.estimateTokens(""))
	assert.Equal(t, 1, p.estimateTokens("abc"))
	assert.Equal(t, 1, p.estimateTokens("abcd"))
	assert.Equal(t, 2, p.estimateTokens("abcde"))
}

func TestTruncateRunes(t *testing.T) {
	t.Run("should leave short strings untouched", func(t *testing.T) {
		assert.Equal(t, "hola", truncateRunes("hola", 400))
	})

	t.Run("should cut on a rune boundary", func(t *testing.T) {
		long := strings.Repeat("ñ", 300)

		got := truncateRunes(long, 250)

		assert.Equal(t, 250, len([]rune(got)))
		assert.Equal(t, strings.Repeat("ñ", 250), got)
	})

	t.Run("should never split a multibyte sequence", func(t *testing.T) {
		// 399 bytes ASCII seguidos de una runa de 3 bytes: el corte por
		// bytes en 400 la partiría.
		s := strings.Repeat("a", 399) + "日日日"

		got := truncateRunes(s, 400)

		assert.Equal(t, strings.Repeat("a", 399)+"日", got)
	})
}
