package media

import (
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	pkgerrors "github.com/angelmondragon/storefronts/pkg/errors"
)

var allowedImageTypes = []string{"image/jpeg", "image/png", "image/webp", "image/gif"}

// sniffImageType detects the content type from the bytes themselves and
// rejects anything that is not an accepted image format.
func sniffImageType(data []byte) (string, error) {
	if len(data) == 0 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "image is empty")
	}
	detected := mimetype.Detect(data)
	for _, allowed := range allowedImageTypes {
		if detected.Is(allowed) {
			return allowed, nil
		}
	}
	return "", pkgerrors.New(pkgerrors.CodeValidation,
		fmt.Sprintf("unsupported image type %s; allowed: %s", detected.String(), strings.Join(allowedImageTypes, ", ")))
}
