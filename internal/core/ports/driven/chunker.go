package driven

// Chunk is a processed piece of transcript text ready for embedding.
// Offsets are byte offsets into the original transcript.
type Chunk struct {
	Content     string
	Position    int
	StartOffset int
	EndOffset   int
}

// PostProcessor transforms chunks in the processing pipeline
type PostProcessor interface {
	// Process transforms the chunks
	Process(chunks []Chunk) []Chunk

	// Name returns the processor name
	Name() string

	// Order determines processing order (lower = earlier)
	Order() int
}

// PostProcessorPipeline chains post-processors, starting with a chunker.
type PostProcessorPipeline interface {
	// Process runs the full pipeline over raw transcript text
	Process(content string) []Chunk

	// List returns processor names in order
	List() []string
}
