package services

import "google.golang.org/genai"

// GetAllTools defines the list of functions available to the librarian agent.
func GetAllTools() []*genai.Tool {
	return []*genai.Tool{
		{
			FunctionDeclarations: []*genai.FunctionDeclaration{
				{
					Name:        "searchBookInformation",
					Description: "Search the local database for book information (title, author, plot, release year, anecdotes, etc.).",
					Parameters: &genai.Schema{
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"query": {
								Type:        genai.TypeString,
								Description: "The book-related question to search for in the database. Should be a concise search query.",
							},
						},
						Required: []string{"query"},
					},
				},
				{
					Name:        "searchBookReviews",
					Description: "Search the local database for book reviews (youtuber reviews, blog posts, etc.).",
					Parameters: &genai.Schema{
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"query": {
								Type:        genai.TypeString,
								Description: "The review-related question to search for in the database. Should be a concise search query.",
							},
						},
						Required: []string{"query"},
					},
				},
				{
					Name:        "searchWikipedia",
					Description: "Retrieve information from Wikipedia based on a search query. The response is already a summary of the page with relevant information. Query syntax: book name, support and the information wanted, e.g. \"Journey To The Center Of The Earth, Book, Plot\".",
					Parameters: &genai.Schema{
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"query": {
								Type:        genai.TypeString,
								Description: "The search query to look for on Wikipedia. One concept per call.",
							},
						},
						Required: []string{"query"},
					},
				},
				{
					Name:        "searchYoutube",
					Description: "Search YouTube for book review videos. Returns title, description, channel, video link and a transcript summary per result.",
					Parameters: &genai.Schema{
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"query": {
								Type:        genai.TypeString,
								Description: "The search term to look for on YouTube.",
							},
						},
						Required: []string{"query"},
					},
				},
				{
					Name:        "retrieveYoutubeTranscript",
					Description: "Retrieve the full transcript of a YouTube video given its URL. Also generates and stores a summary if none exists yet.",
					Parameters: &genai.Schema{
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"youtube_url": {
								Type:        genai.TypeString,
								Description: "The URL of the YouTube video.",
							},
						},
						Required: []string{"youtube_url"},
					},
				},
				{
					Name:        "getInformationAboutYourself",
					Description: "Get a list of information about yourself (Alice the kind and helpful librarian).",
					Parameters: &genai.Schema{
						Type:       genai.TypeObject,
						Properties: map[string]*genai.Schema{},
					},
				},
			},
		},
	}
}
