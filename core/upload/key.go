package upload

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/aulaviva/aulaviva/core"
)

// ObjectKey derives the storage key {escola}/{professor}/{randomID}.{ext} for
// an upload session. The extension is guessed from the declared MIME type;
// unknown subtypes fall back to "bin". No collision handling: the random
// identifier space is assumed collision-free at practical scale.
func ObjectKey(meta SessionMeta, randomID string) string {
	ext, ok := AllowedFiletypes[meta.Filetype]
	if !ok {
		ext = "bin"
	}
	return fmt.Sprintf("%s/%s/%s.%s", meta.EscolaID, meta.ProfessorID, randomID, ext)
}

// NewObjectKey derives a storage key with a freshly generated random identifier.
func NewObjectKey(meta SessionMeta) string {
	return ObjectKey(meta, uuid.New().String())
}

// StorageURL builds the final storage locator {scheme}://{bucket}/{sessionID}
// recorded on the aula once the session completes.
func StorageURL(conf core.StorageConfig, sessionID string) string {
	return fmt.Sprintf("%s://%s/%s", conf.Scheme, conf.Bucket, sessionID)
}
