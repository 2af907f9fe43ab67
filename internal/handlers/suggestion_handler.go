package handlers

import (
	"bufio"
	"log"
	"strings"

	"whisperbox/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

// SuggestionHandler handles HTTP requests for AI-suggested message prompts.
type SuggestionHandler struct {
	suggestionService *services.SuggestionService
}

// NewSuggestionHandler creates a new SuggestionHandler.
func NewSuggestionHandler(suggestionService *services.SuggestionService) *SuggestionHandler {
	return &SuggestionHandler{
		suggestionService: suggestionService,
	}
}

// RegisterRoutes registers the suggestion routes with the Fiber app.
func (h *SuggestionHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/suggest-messages", h.HandleSuggestMessages)
}

// SuggestMessagesRequest carries an optional theme for the suggestions.
type SuggestMessagesRequest struct {
	Seed string `json:"seed"`
}

// HandleSuggestMessages streams '||'-delimited candidate messages as plain
// text, one candidate per flush. Provider failures degrade to the static
// default set rather than surfacing an error to the visitor.
func (h *SuggestionHandler) HandleSuggestMessages(c *fiber.Ctx) error {
	var req SuggestMessagesRequest
	// The body is optional; ignore parse errors and fall back to no seed.
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			log.Printf("Error parsing suggest-messages request body: %v", err)
		}
	}

	completion, err := h.suggestionService.Suggest(c.UserContext(), req.Seed)
	if err != nil {
		log.Printf("Suggestion provider failed, serving defaults: %v", err)
		completion = services.DefaultSuggestions
	}

	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		for i, candidate := range strings.Split(completion, services.SuggestionSeparator) {
			if i > 0 {
				if _, err := w.WriteString(services.SuggestionSeparator); err != nil {
					return
				}
			}
			if _, err := w.WriteString(candidate); err != nil {
				return
			}
			if err := w.Flush(); err != nil {
				return
			}
		}
	}))
	return nil
}
