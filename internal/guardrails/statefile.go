package guardrails

import (
	"os"
	"path/filepath"
	"strings"
)

// safeKey reemplaza separadores de path para que una clave sea un nombre de
// archivo válido en cualquier plataforma.
func safeKey(s string) string {
	replaced := strings.ReplaceAll(s, "/", "#")
	return strings.ReplaceAll(replaced, string(os.PathSeparator), "#")
}

// writeFileAtomic escribe data en path vía archivo temporal, fsync y rename
// atómico. La coordinación entre procesos depende de esta semántica: un lector
// nunca observa un estado a medio escribir.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".tmp_*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}

	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}
