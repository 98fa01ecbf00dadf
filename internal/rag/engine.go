package rag

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_engine.go -package=mocks github.com/dylondark/cob-zippy-ai/internal/rag Engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dylondark/cob-zippy-ai/internal/contextutil"
	"github.com/dylondark/cob-zippy-ai/internal/hours"
	"github.com/dylondark/cob-zippy-ai/internal/llm"
	"github.com/dylondark/cob-zippy-ai/internal/service"
	"github.com/dylondark/cob-zippy-ai/internal/storage"
	"github.com/dylondark/cob-zippy-ai/internal/vectorstore"
)

const (
	// topK is how many chunks back each answer.
	topK = 4
	// hoursTextLimit caps the text handed to the hours parser, in runes.
	hoursTextLimit = 8000
)

// hoursKeywords route a question to the deterministic open/closed path.
var hoursKeywords = []string{"open", "closed", "today", "now", "hours today"}

// Engine answers kiosk questions with retrieval-augmented generation and a
// deterministic fast path for open/closed questions.
type Engine interface {
	// Ask retrieves relevant page chunks and answers the question.
	Ask(ctx context.Context, req AskRequest) (AskResponse, error)
}

// ragEngine implements the Engine interface.
type ragEngine struct {
	embedder    *llm.EmbeddingsClient
	vectorStore vectorstore.VectorStore
	collection  string
	chunkRepo   storage.ChunkStore
	llmClient   *llm.Client
	clock       func() time.Time
}

// NewEngine creates a new answer engine.
func NewEngine(
	embedder *llm.EmbeddingsClient,
	vectorStore vectorstore.VectorStore,
	collection string,
	chunkRepo storage.ChunkStore,
	llmClient *llm.Client,
) Engine {
	return &ragEngine{
		embedder:    embedder,
		vectorStore: vectorStore,
		collection:  collection,
		chunkRepo:   chunkRepo,
		llmClient:   llmClient,
		clock:       time.Now,
	}
}

// retrieved is one chunk of page context with its citation metadata.
type retrieved struct {
	text      string
	title     string
	source    string
	updatedAt string
}

// Ask answers a question. Open/closed questions whose context contains a
// parseable weekly schedule are answered without touching the model.
func (e *ragEngine) Ask(ctx context.Context, req AskRequest) (AskResponse, error) {
	logger := contextutil.LoggerFromContext(ctx)

	question := strings.TrimSpace(req.Question)
	if question == "" {
		return AskResponse{}, &service.ValidationError{Field: "query", Message: "must not be empty"}
	}

	logger.InfoContext(ctx, "question received", "question", question)

	chunks, err := e.retrieve(ctx, question)
	if err != nil {
		return AskResponse{}, err
	}

	qlow := strings.ToLower(question)
	if len(chunks) > 0 && containsAny(qlow, hoursKeywords) {
		if resp, ok := e.answerHours(ctx, chunks); ok {
			logger.InfoContext(ctx, "answered via hours fast path", "answer", resp.Answer)
			return resp, nil
		}
	}

	return e.answerGenerated(ctx, question, chunks)
}

// retrieve embeds the question, searches the vector store and loads the
// matching chunk texts, deduplicated by page so one page cannot dominate the
// context. Result order follows retrieval rank.
func (e *ragEngine) retrieve(ctx context.Context, question string) ([]retrieved, error) {
	logger := contextutil.LoggerFromContext(ctx)

	vector, err := e.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("failed to embed question: %w", err)
	}

	// Asking for more neighbors than stored points is an error in some
	// vector stores, so clamp k to the collection size.
	count, err := e.vectorStore.Count(ctx, e.collection)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to count collection points: %v", service.ErrStorage, err)
	}
	k := topK
	if count < k {
		k = count
	}
	if k == 0 {
		return nil, nil
	}

	results, err := e.vectorStore.Search(ctx, e.collection, vector, k)
	if err != nil {
		return nil, fmt.Errorf("%w: vector search failed: %v", service.ErrStorage, err)
	}

	seen := make(map[string]bool)
	var chunks []retrieved
	for _, result := range results {
		title, _ := result.Meta["title"].(string)
		source, _ := result.Meta["source"].(string)
		updatedAt, _ := result.Meta["updated_at"].(string)

		key := title + "\x00" + source
		if seen[key] {
			continue
		}

		chunk, err := e.chunkRepo.GetByID(ctx, result.PointID)
		if err != nil {
			// Leave the page unseen so a lower-ranked chunk of the same
			// page can still represent it.
			logger.WarnContext(ctx, "failed to load chunk text", "chunk_id", result.PointID, "error", err)
			continue
		}
		seen[key] = true

		chunks = append(chunks, retrieved{
			text:      chunk.Text,
			title:     title,
			source:    source,
			updatedAt: updatedAt,
		})
	}

	logger.DebugContext(ctx, "retrieval completed", "results", len(results), "chunks", len(chunks))
	return chunks, nil
}

// answerHours tries the deterministic open/closed answer. It reports false
// when the context holds no parseable schedule, in which case the caller
// falls back to generation.
func (e *ragEngine) answerHours(_ context.Context, chunks []retrieved) (AskResponse, bool) {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.text
	}
	hoursText := truncateRunes(strings.Join(texts, "\n\n"), hoursTextLimit)

	r, ok := hours.ParseRange(hoursText)
	if !ok {
		return AskResponse{}, false
	}

	status := r.Evaluate(e.clock())

	verdict := "No"
	if status.Open {
		verdict = "Yes"
	}
	answer := fmt.Sprintf("%s. %s", verdict, status.Message)
	if status.HumanRange != "" {
		answer += fmt.Sprintf(" Regular hours are %s.", status.HumanRange)
	}

	top := chunks[0]
	return AskResponse{
		Answer:   answer,
		Sources:  []Citation{{Title: top.title, Source: top.source, UpdatedAt: top.updatedAt}},
		Fastpath: "hours",
	}, true
}

// answerGenerated builds the grounded prompt and asks the model.
func (e *ragEngine) answerGenerated(ctx context.Context, question string, chunks []retrieved) (AskResponse, error) {
	logger := contextutil.LoggerFromContext(ctx)

	prompt := e.buildPrompt(question, chunks)

	text, err := e.llmClient.Generate(ctx, prompt)
	if err != nil {
		return AskResponse{}, fmt.Errorf("failed to generate answer: %w", err)
	}

	sources := make([]Citation, len(chunks))
	for i, c := range chunks {
		sources[i] = Citation{Title: c.title, Source: c.source, UpdatedAt: c.updatedAt}
	}

	logger.InfoContext(ctx, "answer generated", "sources", len(sources), "answer_length", len(text))
	return AskResponse{Answer: text, Sources: sources}, nil
}

// buildPrompt assembles the kiosk persona prompt with numbered context
// snippets.
func (e *ragEngine) buildPrompt(question string, chunks []retrieved) string {
	contextText := "(no context found)"
	if len(chunks) > 0 {
		lines := make([]string, len(chunks))
		for i, c := range chunks {
			title := c.title
			if title == "" {
				title = "Source"
			}
			lines[i] = fmt.Sprintf("Source %d (%s, updated %s, source %s):\n%s",
				i+1, title, c.updatedAt, c.source, c.text)
		}
		contextText = strings.Join(lines, "\n\n")
	}

	today := e.clock().Weekday().String()

	return "You are Zippy AI, the College of Business kiosk. " +
		"Answer ONLY using the provided context snippets. " +
		"If information is missing or confidence is low, say you don't know and refer to the front desk. " +
		"Prefer short, clear answers.\n\n" +
		fmt.Sprintf("Today is %s.\n", today) +
		fmt.Sprintf("CONTEXT:\n%s\n\n", contextText) +
		fmt.Sprintf("QUESTION:\n%s\n\n", question) +
		"Answer concisely using ONLY the context above. If missing, say you don't know."
}

// containsAny reports whether s contains at least one of the substrings.
func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// truncateRunes caps s at limit runes.
func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
