package services

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"log"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/alexdjulin/ai-librarian/models"
	"github.com/alexdjulin/ai-librarian/vectordb"
)

// MaxTranscriptLength is the raw transcript length above which the
// read-through cache kicks in: look up a stored summary by video id,
// summarize and store on miss. Shorter transcripts are used verbatim.
const MaxTranscriptLength = 500

var videoIDPattern = regexp.MustCompile(`v=([^&]+)`)

// YouTubeService searches videos and fetches transcripts. Summaries of long
// transcripts are cached in book_reviews keyed by video id, so each video is
// fetched and summarized once.
type YouTubeService struct {
	httpClient    *http.Client
	apiURL        string
	transcriptURL string
	apiKey        string
	maxResults    int
	summarizer    *Summarizer
	engine        *vectordb.Engine
}

// NewYouTubeService creates the YouTube tools. apiKey is the Google API
// developer key.
func NewYouTubeService(apiURL, transcriptURL, apiKey string, maxResults int, timeout time.Duration, summarizer *Summarizer, engine *vectordb.Engine) *YouTubeService {
	if maxResults <= 0 {
		maxResults = 3
	}
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &YouTubeService{
		httpClient:    &http.Client{Timeout: timeout},
		apiURL:        apiURL,
		transcriptURL: transcriptURL,
		apiKey:        apiKey,
		maxResults:    maxResults,
		summarizer:    summarizer,
		engine:        engine,
	}
}

// VideoIDFromURL extracts the video id from a YouTube URL. A bare video id
// passes through unchanged.
func VideoIDFromURL(rawURL string) string {
	last := rawURL
	if i := strings.LastIndex(rawURL, "/"); i >= 0 {
		last = rawURL[i+1:]
	}
	if strings.HasPrefix(last, "watch?v=") {
		if match := videoIDPattern.FindStringSubmatch(last); match != nil {
			return match[1]
		}
	}
	return last
}

// searchResponse is the subset of the YouTube Data API search response we
// read.
type searchResponse struct {
	Items []searchItem `json:"items"`
}

type searchItem struct {
	ID struct {
		VideoID string `json:"videoId"`
	} `json:"id"`
	Snippet struct {
		Title        string `json:"title"`
		Description  string `json:"description"`
		ChannelTitle string `json:"channelTitle"`
	} `json:"snippet"`
}

// SearchVideos searches YouTube and returns filtered video metadata with a
// transcript summary per video. Long transcripts go through the read-through
// cache; failures to fetch a transcript degrade to a placeholder summary
// instead of failing the whole search.
func (s *YouTubeService) SearchVideos(ctx context.Context, query string) ([]models.VideoResult, error) {
	log.Printf("SERVICE: Tool call: search_youtube (query: '%s')", query)

	items, err := s.search(ctx, query, s.maxResults)
	if err != nil {
		return nil, err
	}

	videos := make([]models.VideoResult, 0, len(items))
	for _, item := range items {
		video := filterMetadata(item)
		summary, err := s.summaryForVideo(ctx, video, query)
		if err != nil {
			log.Printf("SERVICE: Error getting transcript for video %s: %v", video.VideoID, err)
			summary = "Transcript not available"
		}
		video.Summary = summary
		videos = append(videos, video)
	}
	return videos, nil
}

// TranscriptFromURL retrieves the full transcript of a video. The video is
// first graded for literature relevance; a summary is generated and cached
// if none exists yet.
func (s *YouTubeService) TranscriptFromURL(ctx context.Context, youtubeURL string) (string, error) {
	log.Printf("SERVICE: Tool call: retrieve_youtube_transcript_from_url (url: '%s')", youtubeURL)

	videoID := VideoIDFromURL(youtubeURL)
	items, err := s.search(ctx, videoID, 1)
	if err != nil || len(items) == 0 {
		return "I can't access the video title and/or description to grade its relevance.", nil
	}
	video := filterMetadata(items[0])

	relevant, err := s.summarizer.GradeVideoRelevance(ctx, video.Title, video.Description)
	if err != nil {
		return "", err
	}
	if !relevant {
		log.Printf("SERVICE: Video %s is not relevant to literature, skipping transcript processing.", video.VideoID)
		return "This video is not relevant to literature.", nil
	}

	transcript, err := s.fetchTranscript(ctx, video.VideoID)
	if err != nil {
		log.Printf("SERVICE: Error retrieving transcript: %v", err)
		return "The transcript is not available for this youtube video.", nil
	}

	summary, found, err := s.engine.SummaryByKey(ctx, vectordb.CollectionBookReviews, "video_id", video.VideoID)
	if err != nil {
		return "", err
	}
	if !found {
		log.Printf("SERVICE: Summary not found, generating a new one and storing it in the database.")
		summary, err = s.summarizer.Summarize(ctx, transcript, "")
		if err != nil {
			return "", err
		}
		metadata := metadataForVideo(video, "")
		metadata.Summary = summary
		if err := s.engine.AddToCollection(ctx, summary, vectordb.CollectionBookReviews, metadata); err != nil {
			return "", err
		}
	} else {
		log.Printf("SERVICE: Summary fetched from the database.")
	}

	return transcript, nil
}

// summaryForVideo implements the read-through cache for one search result.
func (s *YouTubeService) summaryForVideo(ctx context.Context, video models.VideoResult, query string) (string, error) {
	transcript, err := s.fetchTranscript(ctx, video.VideoID)
	if err != nil {
		return "", err
	}

	if len(transcript) <= MaxTranscriptLength {
		return transcript, nil
	}

	summary, found, err := s.engine.SummaryByKey(ctx, vectordb.CollectionBookReviews, "video_id", video.VideoID)
	if err != nil {
		return "", err
	}
	if found {
		log.Printf("SERVICE: Summary fetched from the database.")
		return summary, nil
	}

	log.Printf("SERVICE: Summary not found, generating a new one and storing it in the database.")
	summary, err = s.summarizer.Summarize(ctx, transcript, query)
	if err != nil {
		return "", err
	}
	metadata := metadataForVideo(video, query)
	metadata.Summary = summary
	if err := s.engine.AddToCollection(ctx, summary, vectordb.CollectionBookReviews, metadata); err != nil {
		return "", err
	}
	return summary, nil
}

func (s *YouTubeService) search(ctx context.Context, query string, maxResults int) ([]searchItem, error) {
	params := url.Values{}
	params.Set("part", "id,snippet")
	params.Set("q", query)
	params.Set("order", "relevance")
	params.Set("type", "video")
	params.Set("maxResults", strconv.Itoa(maxResults))
	params.Set("key", s.apiKey)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, s.apiURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create youtube search request: %w", err)
	}

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to call youtube search api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("youtube api returned non-200 status: %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	var searchResp searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("failed to decode youtube response: %w", err)
	}
	return searchResp.Items, nil
}

// timedText is the XML document returned by the transcript endpoint.
type timedText struct {
	Texts []struct {
		Value string `xml:",chardata"`
	} `xml:"text"`
}

// fetchTranscript downloads the English caption track of a video and joins
// it into a single line of text.
func (s *YouTubeService) fetchTranscript(ctx context.Context, videoID string) (string, error) {
	params := url.Values{}
	params.Set("v", videoID)
	params.Set("lang", "en")

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, s.transcriptURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create transcript request: %w", err)
	}

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to call transcript api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("transcript api returned non-200 status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read transcript response: %w", err)
	}
	if len(body) == 0 {
		return "", fmt.Errorf("no transcript available for video %s", videoID)
	}

	var doc timedText
	if err := xml.Unmarshal(body, &doc); err != nil {
		return "", fmt.Errorf("failed to parse transcript: %w", err)
	}

	var sb strings.Builder
	for _, t := range doc.Texts {
		sb.WriteString(t.Value)
		sb.WriteString(" ")
	}
	transcript := html.UnescapeString(sb.String())
	transcript = strings.Join(strings.Fields(transcript), " ")
	if transcript == "" {
		return "", fmt.Errorf("no transcript available for video %s", videoID)
	}
	return transcript, nil
}

func filterMetadata(item searchItem) models.VideoResult {
	return models.VideoResult{
		VideoID:     item.ID.VideoID,
		Title:       item.Snippet.Title,
		Description: item.Snippet.Description,
		Channel:     item.Snippet.ChannelTitle,
		VideoLink:   "https://www.youtube.com/watch?v=" + item.ID.VideoID,
	}
}

func metadataForVideo(video models.VideoResult, query string) models.Metadata {
	return models.Metadata{
		Query:       query,
		Title:       video.Title,
		VideoID:     video.VideoID,
		Description: video.Description,
		Channel:     video.Channel,
		VideoLink:   video.VideoLink,
		Source:      "youtube",
	}
}
