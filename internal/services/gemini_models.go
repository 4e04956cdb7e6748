package services

import "commuterhythm/internal/models"

// Gemini generateContent request structures
type GenerateContentRequest struct {
	Contents         []GeminiContent         `json:"contents"`
	Tools            []GeminiTool            `json:"tools,omitempty"`
	GenerationConfig *GeminiGenerationConfig `json:"generationConfig,omitempty"`
}

type GeminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []GeminiPart `json:"parts"`
}

type GeminiPart struct {
	Text    string `json:"text,omitempty"`
	Thought bool   `json:"thought,omitempty"`
}

type GeminiTool struct {
	GoogleSearch *struct{} `json:"googleSearch,omitempty"`
}

type GeminiGenerationConfig struct {
	ResponseMimeType string        `json:"responseMimeType,omitempty"`
	ResponseSchema   *GeminiSchema `json:"responseSchema,omitempty"`
	Temperature      *float64      `json:"temperature,omitempty"`
}

// GeminiSchema is the OpenAPI subset accepted as a structured output schema
type GeminiSchema struct {
	Type             string                   `json:"type"`
	Description      string                   `json:"description,omitempty"`
	Enum             []string                 `json:"enum,omitempty"`
	Properties       map[string]*GeminiSchema `json:"properties,omitempty"`
	PropertyOrdering []string                 `json:"propertyOrdering,omitempty"`
	Required         []string                 `json:"required,omitempty"`
	Items            *GeminiSchema            `json:"items,omitempty"`
	MinItems         string                   `json:"minItems,omitempty"`
	MaxItems         string                   `json:"maxItems,omitempty"`
}

// Gemini generateContent response structures
type GenerateContentResponse struct {
	Candidates     []GeminiCandidate     `json:"candidates"`
	PromptFeedback *GeminiPromptFeedback `json:"promptFeedback,omitempty"`
}

type GeminiCandidate struct {
	Content           GeminiContent            `json:"content"`
	FinishReason      string                   `json:"finishReason,omitempty"`
	GroundingMetadata *GeminiGroundingMetadata `json:"groundingMetadata,omitempty"`
}

type GeminiPromptFeedback struct {
	BlockReason string `json:"blockReason,omitempty"`
}

type GeminiGroundingMetadata struct {
	GroundingChunks  []GeminiGroundingChunk `json:"groundingChunks,omitempty"`
	WebSearchQueries []string               `json:"webSearchQueries,omitempty"`
}

type GeminiGroundingChunk struct {
	Web *GeminiWebChunk `json:"web,omitempty"`
}

type GeminiWebChunk struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// GeminiErrorResponse is the body Google APIs return on non-2xx statuses
type GeminiErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// recommendationPayload is the document the model is instructed to emit.
// A pointer distinguishes a missing field from an empty list.
type recommendationPayload struct {
	Recommendations *[]models.Song `json:"recommendations"`
}
