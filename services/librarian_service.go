package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/google/uuid"
	"google.golang.org/genai"

	"github.com/alexdjulin/ai-librarian/models"
	"github.com/alexdjulin/ai-librarian/vectordb"
)

// LibrarianService is the conversational layer: Gemini chat sessions with a
// function-calling loop over the librarian toolset.
type LibrarianService interface {
	Chat(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error)
}

type librarianServiceImpl struct {
	geminiClient *genai.Client
	chatModel    string
	engine       *vectordb.Engine
	wikipedia    *WikipediaService
	youtube      *YouTubeService

	chatSessions map[string]*genai.Chat
	mu           sync.Mutex
}

// NewLibrarianService creates the chat service.
func NewLibrarianService(geminiClient *genai.Client, chatModel string, engine *vectordb.Engine, wikipedia *WikipediaService, youtube *YouTubeService) LibrarianService {
	return &librarianServiceImpl{
		geminiClient: geminiClient,
		chatModel:    chatModel,
		engine:       engine,
		wikipedia:    wikipedia,
		youtube:      youtube,
		chatSessions: make(map[string]*genai.Chat),
	}
}

// Chat runs one conversation turn. Sessions are kept in memory keyed by a
// generated id; an unknown or empty session id starts a fresh session.
func (s *librarianServiceImpl) Chat(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error) {
	log.Printf("SERVICE: Chat turn: '%s' (SessionID: '%s')", req.Message, req.SessionID)

	s.mu.Lock()
	defer s.mu.Unlock()

	var session *genai.Chat
	sessionID := req.SessionID

	if sessionID != "" {
		session = s.chatSessions[sessionID]
	}

	if session == nil {
		log.Println("SERVICE: No active session found. Creating a new one.")
		var err error
		session, err = s.geminiClient.Chats.Create(ctx, s.chatModel, &genai.GenerateContentConfig{
			Tools:             GetAllTools(),
			SystemInstruction: GetSystemPrompt(),
		}, nil)
		if err != nil {
			return nil, fmt.Errorf("could not start new chat session: %w", err)
		}
		sessionID = uuid.New().String()
		s.chatSessions[sessionID] = session
	}

	answer, sourceDocs, err := s.runToolLoop(ctx, session, req.Message)
	if err != nil {
		return nil, fmt.Errorf("could not generate response: %w", err)
	}

	return &models.ChatResponse{
		Answer:     answer,
		SourceDocs: sourceDocs,
		SessionID:  sessionID,
	}, nil
}

// runToolLoop sends the prompt and keeps answering function calls until the
// model produces a final text response.
func (s *librarianServiceImpl) runToolLoop(ctx context.Context, session *genai.Chat, prompt string) (string, []models.SourceDocument, error) {
	currentPart := genai.Part{Text: prompt}
	var allSourceDocs []models.SourceDocument

	for {
		result, err := session.SendMessage(ctx, currentPart)
		if err != nil {
			return "", nil, fmt.Errorf("gemini api call failed: %w", err)
		}

		if len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
			return "I'm sorry, I couldn't generate a response.", nil, nil
		}

		part := result.Candidates[0].Content.Parts[0]

		if part.FunctionCall != nil {
			call := part.FunctionCall
			log.Printf("AGENT: Wants to call function: %s with args: %v", call.Name, call.Args)

			toolResult, sourceDocs := s.dispatchTool(ctx, call.Name, call.Args)
			allSourceDocs = append(allSourceDocs, sourceDocs...)

			currentPart = genai.Part{FunctionResponse: &genai.FunctionResponse{
				Name:     call.Name,
				Response: map[string]interface{}{"result": toolResult},
			}}
			continue
		}

		var responseText strings.Builder
		for _, p := range result.Candidates[0].Content.Parts {
			if p.Text != "" {
				responseText.WriteString(p.Text)
			}
		}
		return responseText.String(), allSourceDocs, nil
	}
}

// dispatchTool executes one tool call and returns its result as a string.
// Tool errors become error strings for the model to react to; only the
// conversation layer above decides what the user sees.
func (s *librarianServiceImpl) dispatchTool(ctx context.Context, name string, args map[string]interface{}) (string, []models.SourceDocument) {
	stringArg := func(key string) (string, bool) {
		v, ok := args[key].(string)
		return v, ok
	}

	switch name {
	case "searchBookInformation", "searchBookReviews":
		query, ok := stringArg("query")
		if !ok {
			return "Error: 'query' argument must be a string.", nil
		}
		collection := vectordb.CollectionBookInfo
		if name == "searchBookReviews" {
			collection = vectordb.CollectionBookReviews
		}
		results, err := s.engine.SearchCollection(ctx, query, collection, vectordb.DefaultNResults)
		if err != nil {
			return fmt.Sprintf("Error searching the database: %v", err), nil
		}
		sourceDocs := make([]models.SourceDocument, 0, len(results.Documents))
		for i, doc := range results.Documents {
			sourceDocs = append(sourceDocs, models.SourceDocument{Text: doc, Metadata: results.Metadatas[i]})
		}
		jsonBytes, err := json.Marshal(results)
		if err != nil {
			return "Error: Could not format the retrieved documents.", nil
		}
		return string(jsonBytes), sourceDocs

	case "searchWikipedia":
		query, ok := stringArg("query")
		if !ok {
			return "Error: 'query' argument must be a string.", nil
		}
		summary, err := s.wikipedia.Search(ctx, query)
		if err != nil {
			return fmt.Sprintf("Error searching wikipedia: %v", err), nil
		}
		return summary, nil

	case "searchYoutube":
		query, ok := stringArg("query")
		if !ok {
			return "Error: 'query' argument must be a string.", nil
		}
		videos, err := s.youtube.SearchVideos(ctx, query)
		if err != nil {
			return fmt.Sprintf("Error searching youtube: %v", err), nil
		}
		jsonBytes, err := json.Marshal(videos)
		if err != nil {
			return "Error: Could not format the video results.", nil
		}
		return string(jsonBytes), nil

	case "retrieveYoutubeTranscript":
		youtubeURL, ok := stringArg("youtube_url")
		if !ok {
			return "Error: 'youtube_url' argument must be a string.", nil
		}
		transcript, err := s.youtube.TranscriptFromURL(ctx, youtubeURL)
		if err != nil {
			return fmt.Sprintf("Error retrieving transcript: %v", err), nil
		}
		return transcript, nil

	case "getInformationAboutYourself":
		jsonBytes, err := json.Marshal(PersonaFacts())
		if err != nil {
			return "Error: Could not format the persona information.", nil
		}
		return string(jsonBytes), nil

	default:
		return fmt.Sprintf("Error: Unknown function '%s' requested.", name), nil
	}
}
