package docs

import (
	"github.com/go-swagno/swagno"
	"github.com/go-swagno/swagno/components/endpoint"
	"github.com/go-swagno/swagno/components/http/response"
	"github.com/go-swagno/swagno/components/mime"
	"github.com/go-swagno/swagno/components/parameter"
)

// SearchRequestBody represents the request body for the search endpoint
type SearchRequestBody struct {
	SessionID           string `json:"session_id,omitempty" example:"550e8400-e29b-41d4-a716-446655440000"`
	UserName            string `json:"user_name" example:"Ada"`
	CapturedImage       string `json:"captured_image" example:"data:image/jpeg;base64,/9j/4AAQ..."`
	PrivacyPolicyAgreed bool   `json:"privacy_policy_agreed" example:"true"`
	Timestamp           string `json:"timestamp" example:"2024-01-01T00:00:00Z"`
}

// MatchedImageData represents one fully processed match in a search response
type MatchedImageData struct {
	ImageID             string             `json:"image_id" example:"img-042"`
	ImageURL            string             `json:"image_url" example:"https://cdn.example.com/gallery/img-042.jpg"`
	Emotion             string             `json:"emotion" example:"happy"`
	EmotionDistribution map[string]float64 `json:"emotion_distribution"`
	EmotionConfidence   float64            `json:"emotion_confidence" example:"0.91"`
	SimilarityScore     float64            `json:"similarity_score" example:"0.87"`
}

// AggregatedStateData represents the per-session aggregate
type AggregatedStateData struct {
	SessionID         string             `json:"session_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	DominantEmotion   string             `json:"dominant_emotion" example:"happy"`
	EmotionConfidence float64            `json:"emotion_confidence" example:"0.66"`
	Distribution      map[string]float64 `json:"distribution"`
	Statement         string             `json:"statement" example:"The dominant emotion across the matched faces is HAPPY (confidence: 66.7%)"`
	CreatedAt         string             `json:"created_at" example:"2024-01-01T00:00:00Z"`
}

// SearchResponseBody represents the response for a successful search
type SearchResponseBody struct {
	SessionID       string              `json:"session_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	MatchedCount    int                 `json:"matched_count" example:"7"`
	MatchedImages   []MatchedImageData  `json:"matched_images"`
	AggregatedState AggregatedStateData `json:"aggregated_state"`
	Statement       string              `json:"statement" example:"The dominant emotion across the matched faces is HAPPY (confidence: 66.7%)"`
}

// SessionData represents a stored session
type SessionData struct {
	ID        string `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	UserName  string `json:"user_name" example:"Ada"`
	Consent   bool   `json:"consent" example:"true"`
	Status    string `json:"status" example:"active"`
	ExpiresAt string `json:"expires_at" example:"2024-01-02T00:00:00Z"`
	CreatedAt string `json:"created_at" example:"2024-01-01T00:00:00Z"`
}

// EmotionRecordData represents one stored classification outcome
type EmotionRecordData struct {
	ID           string             `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	ImageID      string             `json:"image_id" example:"img-042"`
	Label        string             `json:"label" example:"happy"`
	Confidence   float64            `json:"confidence" example:"0.91"`
	Distribution map[string]float64 `json:"distribution"`
	CreatedAt    string             `json:"created_at" example:"2024-01-01T00:00:00Z"`
}

// SessionDetailResponse represents the session read endpoint response
type SessionDetailResponse struct {
	Session         SessionData          `json:"session"`
	EmotionRecords  []EmotionRecordData  `json:"emotion_records"`
	AggregatedState *AggregatedStateData `json:"aggregated_state,omitempty"`
}

// HealthResponseBody represents the health check response
type HealthResponseBody struct {
	Status  string `json:"status" example:"healthy"`
	Message string `json:"message" example:"Emotion search API is running"`
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Detail string `json:"detail" example:"No face detected in the captured image"`
}

// NewSwagger creates and configures the Swagger documentation
func NewSwagger() *swagno.Swagger {
	sw := swagno.New(swagno.Config{
		Title:       "MoodMirror Emotion Search API",
		Version:     "v1.0.0",
		Description: "Consent-gated face similarity search with per-match emotion classification and majority-vote aggregation",
		Host:        "localhost:8000",
		Path:        "/api",
	})

	endpoints := []*endpoint.EndPoint{
		// POST /api/v1/search - Emotion Search
		endpoint.New(
			endpoint.POST,
			"/v1/search",
			endpoint.WithTags("Search"),
			endpoint.WithSummary("Run an emotion search"),
			endpoint.WithDescription("Creates a session, finds gallery faces similar to the captured image, classifies each match's emotion and aggregates a dominant emotion by majority vote."),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithBody(SearchRequestBody{}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(SearchResponseBody{}, "200", "Search completed successfully"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Detail: "Privacy policy must be agreed before a search can run"}, "400", "Bad Request"),
				response.New(ErrorResponse{Detail: "No similar faces found above the similarity threshold"}, "404", "Not Found"),
				response.New(ErrorResponse{Detail: "An aggregated result already exists for this session"}, "409", "Conflict"),
				response.New(ErrorResponse{Detail: "Rate limit exceeded, please try again later"}, "429", "Too Many Requests"),
				response.New(ErrorResponse{Detail: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
		),

		// GET /api/v1/sessions/:id - Get Session
		endpoint.New(
			endpoint.GET,
			"/v1/sessions/{id}",
			endpoint.WithTags("Search"),
			endpoint.WithSummary("Get a session"),
			endpoint.WithDescription("Returns the session with its emotion records and aggregated result. Sessions past their retention window report not found."),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("id", parameter.Path, parameter.WithDescription("Session UUID")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(SessionDetailResponse{}, "200", "Session retrieved successfully"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Detail: "Request validation failed"}, "400", "Bad Request"),
				response.New(ErrorResponse{Detail: "Session not found"}, "404", "Not Found"),
				response.New(ErrorResponse{Detail: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
		),

		// GET /api/health - Health Check
		endpoint.New(
			endpoint.GET,
			"/health",
			endpoint.WithTags("Health"),
			endpoint.WithSummary("Health check"),
			endpoint.WithDescription("Returns healthy whenever the process is up; used by clients to gate UI availability."),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(HealthResponseBody{}, "200", "Service is healthy"),
			}),
		),
	}

	sw.AddEndpoints(endpoints)

	return sw
}
