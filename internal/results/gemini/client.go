package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/EmpoweredVote/election-results/internal/results/payload"
	"google.golang.org/genai"
)

// Response is the part of a GenerateContent answer the provider reads.
type Response struct {
	Text          string
	Chunks        []payload.RawChunk
	SearchQueries []string
}

// Transport issues one grounded query. *Client is the production
// implementation; tests substitute their own.
type Transport interface {
	Query(ctx context.Context, prompt string) (Response, error)
	Ping(ctx context.Context) error
}

// Client is a thin wrapper over the genai SDK bound to one model.
type Client struct {
	client *genai.Client
	model  string
}

// NewClient creates a Gemini API client.
func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &Client{client: client, model: model}, nil
}

// Model returns the model name queries are sent to.
func (c *Client) Model() string { return c.model }

// Query asks the model to search the web itself and answer with JSON that
// follows ResponseSchema.
func (c *Client) Query(ctx context.Context, prompt string) (Response, error) {
	resp, err := c.client.Models.GenerateContent(ctx,
		c.model,
		genai.Text(prompt),
		&genai.GenerateContentConfig{
			Tools:            []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
			ResponseMIMEType: "application/json",
			ResponseSchema:   ResponseSchema(),
		},
	)
	if err != nil {
		return Response{}, fmt.Errorf("GenAI generate failed: %w", err)
	}
	return responseFrom(resp), nil
}

// Ping verifies the key by looking up the configured model.
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.client.Models.Get(ctx, c.model, nil); err != nil {
		return fmt.Errorf("GenAI model lookup failed: %w", err)
	}
	return nil
}

// responseFrom reads the text of the first candidate (thought parts
// excluded) and its grounding chunks.
func responseFrom(resp *genai.GenerateContentResponse) Response {
	var out Response
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return out
	}
	cand := resp.Candidates[0]

	if cand.Content != nil {
		var sb strings.Builder
		for _, part := range cand.Content.Parts {
			if part == nil || part.Thought {
				continue
			}
			sb.WriteString(part.Text)
		}
		out.Text = sb.String()
	}

	if gm := cand.GroundingMetadata; gm != nil {
		out.SearchQueries = gm.WebSearchQueries
		for _, chunk := range gm.GroundingChunks {
			if chunk == nil || chunk.Web == nil {
				out.Chunks = append(out.Chunks, payload.RawChunk{})
				continue
			}
			out.Chunks = append(out.Chunks, payload.RawChunk{
				URI:   chunk.Web.URI,
				Title: chunk.Web.Title,
			})
		}
	}
	return out
}
