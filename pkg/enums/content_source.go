package enums

// ContentSource records where synthesized marketing copy came from.
type ContentSource string

const (
	// ContentSourceAI means every list passed its acceptance threshold.
	ContentSourceAI ContentSource = "ai"
	// ContentSourceFallback means the generator failed or was disabled.
	ContentSourceFallback ContentSource = "fallback"
	// ContentSourceMixed means the generator answered but at least one field
	// or list was replaced by its template fallback.
	ContentSourceMixed ContentSource = "mixed"
)

func (c ContentSource) String() string {
	return string(c)
}
