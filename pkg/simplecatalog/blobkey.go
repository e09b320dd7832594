package simplecatalog

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// NewBlobKey generates a storage key of the form
// {random-uuid}-{sanitized original filename}. The random component keeps
// keys from colliding with any live blob, so a replacement never overwrites
// the blob it replaces.
func NewBlobKey(fileName string) string {
	name := sanitizeFileName(fileName)
	if name == "" {
		return uuid.New().String()
	}
	return fmt.Sprintf("%s-%s", uuid.New(), name)
}

func sanitizeFileName(fileName string) string {
	// Strip any client-supplied directory components first.
	if idx := strings.LastIndexAny(fileName, `/\`); idx >= 0 {
		fileName = fileName[idx+1:]
	}
	replacer := strings.NewReplacer(
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
		" ", "_",
	)
	return replacer.Replace(fileName)
}
