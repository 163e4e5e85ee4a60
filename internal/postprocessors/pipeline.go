package postprocessors

import (
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/cobalt-labs/tubechat-core/internal/core/domain"
	"github.com/cobalt-labs/tubechat-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.PostProcessorPipeline = (*Pipeline)(nil)

// Pipeline implements PostProcessorPipeline.
// It chains multiple post-processors in order, starting with a chunker.
type Pipeline struct {
	mu         sync.RWMutex
	processors []driven.PostProcessor
	sorted     bool
}

// NewPipeline creates a new post-processor pipeline.
func NewPipeline() *Pipeline {
	return &Pipeline{
		processors: make([]driven.PostProcessor, 0),
	}
}

// Add adds a processor to the pipeline.
// Processors are sorted by Order() before processing.
func (p *Pipeline) Add(processor driven.PostProcessor) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.processors = append(p.processors, processor)
	p.sorted = false
}

// Process applies all processors in order.
// Input is the raw transcript text.
// Output is the processed chunks ready for embedding/indexing.
func (p *Pipeline) Process(content string) []driven.Chunk {
	p.mu.Lock()
	if !p.sorted {
		sort.Slice(p.processors, func(i, j int) bool {
			return p.processors[i].Order() < p.processors[j].Order()
		})
		p.sorted = true
	}
	p.mu.Unlock()

	p.mu.RLock()
	processors := make([]driven.PostProcessor, len(p.processors))
	copy(processors, p.processors)
	p.mu.RUnlock()

	// Start with a single chunk containing the whole transcript
	chunks := []driven.Chunk{
		{
			Content:     content,
			Position:    0,
			StartOffset: 0,
			EndOffset:   len(content),
		},
	}

	for _, proc := range processors {
		chunks = proc.Process(chunks)
	}

	return chunks
}

// List returns processor names in order.
func (p *Pipeline) List() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	names := make([]string, len(p.processors))
	for i, proc := range p.processors {
		names[i] = proc.Name()
	}
	return names
}

// DefaultPipeline creates a pipeline with the default processors.
func DefaultPipeline(settings domain.ChunkSettings) *Pipeline {
	p := NewPipeline()
	p.Add(NewWordChunker(settings))
	p.Add(NewWhitespaceNormalizer())
	return p
}

// WordChunker splits transcript text into overlapping word windows.
// Size and overlap are counted in whitespace-delimited words. Consecutive
// chunks share exactly the configured overlap; byte offsets always point
// into the original text.
// This is the first processor in the pipeline (Order = 0).
type WordChunker struct {
	settings domain.ChunkSettings
}

// Verify interface compliance
var _ driven.PostProcessor = (*WordChunker)(nil)

// NewWordChunker creates a new word chunker with the given settings.
// Invalid settings fall back to the defaults.
func NewWordChunker(settings domain.ChunkSettings) *WordChunker {
	if !settings.Valid() {
		settings = domain.DefaultChunkSettings()
	}
	return &WordChunker{settings: settings}
}

// Process splits each incoming chunk into word windows.
func (c *WordChunker) Process(chunks []driven.Chunk) []driven.Chunk {
	var result []driven.Chunk
	position := 0

	for _, chunk := range chunks {
		result = append(result, c.split(chunk.Content, chunk.StartOffset, &position)...)
	}

	return result
}

// Name returns the processor name.
func (c *WordChunker) Name() string {
	return "word-chunker"
}

// Order returns 0 - chunker runs first.
func (c *WordChunker) Order() int {
	return 0
}

type wordSpan struct {
	start int
	end   int
}

// split produces word windows over content. Each window covers
// settings.Size words and the next window starts settings.Size -
// settings.Overlap words later, so the final window always ends at
// the last word.
func (c *WordChunker) split(content string, baseOffset int, position *int) []driven.Chunk {
	words := wordSpans(content)
	if len(words) == 0 {
		return nil
	}

	size := c.settings.Size
	step := size - c.settings.Overlap

	var chunks []driven.Chunk
	for start := 0; start < len(words); start += step {
		end := start + size
		if end > len(words) {
			end = len(words)
		}

		first := words[start]
		last := words[end-1]

		chunks = append(chunks, driven.Chunk{
			Content:     content[first.start:last.end],
			Position:    *position,
			StartOffset: baseOffset + first.start,
			EndOffset:   baseOffset + last.end,
		})
		*position++

		if end == len(words) {
			break
		}
	}

	return chunks
}

// wordSpans returns the byte offsets of each whitespace-delimited word.
func wordSpans(s string) []wordSpan {
	var spans []wordSpan
	inWord := false
	start := 0

	for i, r := range s {
		if unicode.IsSpace(r) {
			if inWord {
				spans = append(spans, wordSpan{start: start, end: i})
				inWord = false
			}
		} else if !inWord {
			start = i
			inWord = true
		}
	}
	if inWord {
		spans = append(spans, wordSpan{start: start, end: len(s)})
	}

	return spans
}

// WhitespaceNormalizer normalizes whitespace inside chunks.
// Chunks that normalize to empty text are dropped.
type WhitespaceNormalizer struct{}

// Verify interface compliance
var _ driven.PostProcessor = (*WhitespaceNormalizer)(nil)

// NewWhitespaceNormalizer creates a new whitespace normalizer.
func NewWhitespaceNormalizer() *WhitespaceNormalizer {
	return &WhitespaceNormalizer{}
}

// Process normalizes whitespace in chunks.
func (w *WhitespaceNormalizer) Process(chunks []driven.Chunk) []driven.Chunk {
	result := make([]driven.Chunk, 0, len(chunks))

	for _, chunk := range chunks {
		content := chunk.Content

		content = strings.ReplaceAll(content, "\r\n", "\n")
		content = strings.ReplaceAll(content, "\r", "\n")

		// Collapse runs of spaces and tabs, keep newlines
		lines := strings.Split(content, "\n")
		for i, line := range lines {
			lines[i] = strings.Join(strings.Fields(line), " ")
		}
		content = strings.Join(lines, "\n")

		for strings.Contains(content, "\n\n\n") {
			content = strings.ReplaceAll(content, "\n\n\n", "\n\n")
		}

		content = strings.TrimSpace(content)

		if len(content) > 0 {
			newChunk := chunk
			newChunk.Content = content
			result = append(result, newChunk)
		}
	}

	return result
}

// Name returns the processor name.
func (w *WhitespaceNormalizer) Name() string {
	return "whitespace-normalizer"
}

// Order returns 5 - runs after the chunker.
func (w *WhitespaceNormalizer) Order() int {
	return 5
}
