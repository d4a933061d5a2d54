// Package chunker provides a token-budget text chunking processor.
package chunker

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"unicode"

	"github.com/pkoukk/tiktoken-go"

	"github.com/custodia-labs/mailrag-cli/internal/core/domain"
)

// DefaultMaxTokens is the default token budget per chunk, sized so a
// chunk fits comfortably inside the embedding model's context window.
const DefaultMaxTokens = 400

// encodingName selects the BPE used to measure chunk sizes.
const encodingName = "cl100k_base"

var (
	tk     *tiktoken.Tiktoken
	tkOnce sync.Once
)

// Processor splits document content into token-bounded chunks. Sentences
// are packed greedily: a sentence that would overflow the budget starts
// a new chunk, and a single sentence larger than the budget is sliced at
// token boundaries. Chunk IDs are "<messageID>:<position>" so that
// re-ingesting a message overwrites its previous chunks.
type Processor struct {
	maxTokens int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithMaxTokens sets the token budget per chunk.
func WithMaxTokens(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.maxTokens = n
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		maxTokens: DefaultMaxTokens,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Process splits the document content into chunks.
// Input chunks are ignored; this processor creates new chunks from document content.
func (p *Processor) Process(_ context.Context, doc *domain.Document, _ []domain.Chunk) ([]domain.Chunk, error) {
	content := strings.TrimSpace(doc.Content)
	if content == "" {
		return nil, nil
	}

	var chunks []domain.Chunk
	var current strings.Builder
	currentTokens := 0

	flush := func() {
		if current.Len() == 0 {
			return
		}
		chunks = append(chunks, p.newChunk(doc, len(chunks), strings.TrimSpace(current.String()), currentTokens))
		current.Reset()
		currentTokens = 0
	}

	for _, sentence := range splitSentences(content) {
		sentenceTokens := countTokens(sentence)

		if sentenceTokens > p.maxTokens {
			flush()
			for _, slice := range sliceByTokens(sentence, p.maxTokens) {
				chunks = append(chunks, p.newChunk(doc, len(chunks), strings.TrimSpace(slice.text), slice.tokens))
			}
			continue
		}

		if currentTokens+sentenceTokens > p.maxTokens {
			flush()
		}

		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(sentence)
		currentTokens += sentenceTokens
	}
	flush()

	return chunks, nil
}

func (p *Processor) newChunk(doc *domain.Document, position int, content string, tokens int) domain.Chunk {
	return domain.Chunk{
		ID:         fmt.Sprintf("%s:%d", doc.MessageID, position),
		MessageID:  doc.MessageID,
		Content:    content,
		Position:   position,
		TokenCount: tokens,
	}
}

type tokenSlice struct {
	text   string
	tokens int
}

// sliceByTokens splits an oversized sentence at token boundaries.
func sliceByTokens(text string, maxTokens int) []tokenSlice {
	enc := tokenizer()
	tokens := enc.Encode(text, nil, nil)

	var slices []tokenSlice
	for start := 0; start < len(tokens); start += maxTokens {
		end := start + maxTokens
		if end > len(tokens) {
			end = len(tokens)
		}
		slices = append(slices, tokenSlice{
			text:   enc.Decode(tokens[start:end]),
			tokens: end - start,
		})
	}
	return slices
}

// splitSentences breaks text into sentences, paragraph by paragraph.
// Single newlines inside a paragraph are treated as soft wraps.
func splitSentences(text string) []string {
	var sentences []string

	for _, para := range splitParagraphs(text) {
		var current strings.Builder
		runes := []rune(para)

		for i, r := range runes {
			current.WriteRune(r)

			if r == '.' || r == '!' || r == '?' {
				if i+1 >= len(runes) || unicode.IsSpace(runes[i+1]) {
					if s := strings.TrimSpace(current.String()); s != "" {
						sentences = append(sentences, s)
					}
					current.Reset()
				}
			}
		}

		if s := strings.TrimSpace(current.String()); s != "" {
			sentences = append(sentences, s)
		}
	}

	if len(sentences) == 0 && text != "" {
		return []string{text}
	}
	return sentences
}

func splitParagraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var result []string
	for _, p := range strings.Split(text, "\n\n") {
		p = strings.TrimSpace(strings.ReplaceAll(p, "\n", " "))
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

func tokenizer() *tiktoken.Tiktoken {
	tkOnce.Do(func() {
		var err error
		tk, err = tiktoken.GetEncoding(encodingName)
		if err != nil {
			panic("failed to load tokenizer: " + err.Error())
		}
	})
	return tk
}

func countTokens(text string) int {
	if text == "" {
		return 0
	}
	return len(tokenizer().Encode(text, nil, nil))
}
