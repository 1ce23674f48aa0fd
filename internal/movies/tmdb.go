package movies

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const tmdbImageBase = "https://image.tmdb.org/t/p/w500"

// UpstreamError carries the TMDB status so the route layer can pass it
// through. The client never retries.
type UpstreamError struct {
	Status int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("tmdb status %d", e.Status)
}

type TMDBClient struct {
	token   string
	baseURL string
	http    *http.Client
}

func NewTMDBClient(token, baseURL string) *TMDBClient {
	return &TMDBClient{
		token:   token,
		baseURL: baseURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type Movie struct {
	ID           int     `json:"id"`
	Title        string  `json:"title"`
	Overview     string  `json:"overview"`
	ReleaseDate  string  `json:"release_date"`
	PosterPath   *string `json:"poster_path"`
	BackdropPath *string `json:"backdrop_path"`
	VoteAverage  float64 `json:"vote_average"`
	VoteCount    int     `json:"vote_count"`
}

type MovieDetail struct {
	Movie
	Runtime int     `json:"runtime"`
	Genres  []Genre `json:"genres"`
}

type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type SearchPage struct {
	Page         int     `json:"page"`
	TotalPages   int     `json:"total_pages"`
	TotalResults int     `json:"total_results"`
	Results      []Movie `json:"results"`
}

type tmdbMovie struct {
	ID           int     `json:"id"`
	Title        string  `json:"title"`
	Overview     string  `json:"overview"`
	ReleaseDate  string  `json:"release_date"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	VoteAverage  float64 `json:"vote_average"`
	VoteCount    int     `json:"vote_count"`
	Runtime      int     `json:"runtime"`
	Genres       []Genre `json:"genres"`
}

func (c *TMDBClient) Search(ctx context.Context, query string, page int) (SearchPage, error) {
	val := url.Values{}
	val.Set("query", query)
	val.Set("page", strconv.Itoa(page))
	val.Set("include_adult", "false")
	val.Set("language", "en-US")

	var body struct {
		Page         int         `json:"page"`
		TotalPages   int         `json:"total_pages"`
		TotalResults int         `json:"total_results"`
		Results      []tmdbMovie `json:"results"`
	}
	if err := c.getJSON(ctx, c.baseURL+"/search/movie?"+val.Encode(), &body); err != nil {
		return SearchPage{}, err
	}

	results := make([]Movie, 0, len(body.Results))
	for _, m := range body.Results {
		results = append(results, mapMovie(m))
	}
	return SearchPage{
		Page:         body.Page,
		TotalPages:   body.TotalPages,
		TotalResults: body.TotalResults,
		Results:      results,
	}, nil
}

func (c *TMDBClient) GetMovie(ctx context.Context, id int) (MovieDetail, error) {
	var m tmdbMovie
	if err := c.getJSON(ctx, fmt.Sprintf("%s/movie/%d?language=en-US", c.baseURL, id), &m); err != nil {
		return MovieDetail{}, err
	}
	return MovieDetail{
		Movie:   mapMovie(m),
		Runtime: m.Runtime,
		Genres:  m.Genres,
	}, nil
}

func (c *TMDBClient) getJSON(ctx context.Context, reqURL string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &UpstreamError{Status: resp.StatusCode}
	}

	return json.NewDecoder(resp.Body).Decode(dest)
}

func mapMovie(m tmdbMovie) Movie {
	out := Movie{
		ID:          m.ID,
		Title:       m.Title,
		Overview:    m.Overview,
		ReleaseDate: m.ReleaseDate,
		VoteAverage: m.VoteAverage,
		VoteCount:   m.VoteCount,
	}
	if m.PosterPath != "" {
		p := tmdbImageBase + m.PosterPath
		out.PosterPath = &p
	}
	if m.BackdropPath != "" {
		b := tmdbImageBase + m.BackdropPath
		out.BackdropPath = &b
	}
	return out
}
