package anime

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

type UpstreamError struct {
	Status int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("anime api status %d", e.Status)
}

// Client talks to a Consumet-style anime catalog.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type Result struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Poster      string  `json:"poster,omitempty"`
	Image       string  `json:"image,omitempty"`
	URL         string  `json:"url"`
	Description *string `json:"description,omitempty"`
	EpisodeNum  int     `json:"episodeNum,omitempty"`
}

type Page struct {
	CurrentPage int      `json:"currentPage"`
	HasNextPage bool     `json:"hasNextPage"`
	Results     []Result `json:"results"`
}

type rawPage struct {
	CurrentPage int  `json:"currentPage"`
	HasNextPage bool `json:"hasNextPage"`
	Results     []struct {
		ID          string  `json:"id"`
		Title       string  `json:"title"`
		Image       string  `json:"image"`
		URL         string  `json:"url"`
		Description *string `json:"description"`
		EpisodeNum  int     `json:"episodeNum"`
	} `json:"results"`
}

func (c *Client) Search(ctx context.Context, query string, page int) (Page, error) {
	val := url.Values{}
	val.Set("query", query)
	val.Set("page", strconv.Itoa(page))

	raw, err := c.getPage(ctx, c.baseURL+"?"+val.Encode())
	if err != nil {
		return Page{}, err
	}

	out := Page{CurrentPage: raw.CurrentPage, HasNextPage: raw.HasNextPage, Results: []Result{}}
	if out.CurrentPage == 0 {
		out.CurrentPage = page
	}
	for _, a := range raw.Results {
		out.Results = append(out.Results, Result{
			ID:          a.ID,
			Title:       a.Title,
			Poster:      a.Image,
			URL:         a.URL,
			Description: a.Description,
		})
	}
	return out, nil
}

func (c *Client) Trending(ctx context.Context, page int) (Page, error) {
	raw, err := c.getPage(ctx, fmt.Sprintf("%s/recent-episodes?page=%d", c.baseURL, page))
	if err != nil {
		return Page{}, err
	}

	out := Page{CurrentPage: raw.CurrentPage, HasNextPage: raw.HasNextPage, Results: []Result{}}
	if out.CurrentPage == 0 {
		out.CurrentPage = page
	}
	for _, a := range raw.Results {
		out.Results = append(out.Results, Result{
			ID:         a.ID,
			Title:      a.Title,
			Image:      a.Image,
			URL:        a.URL,
			EpisodeNum: a.EpisodeNum,
		})
	}
	return out, nil
}

func (c *Client) getPage(ctx context.Context, reqURL string) (rawPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return rawPage{}, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return rawPage{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return rawPage{}, &UpstreamError{Status: resp.StatusCode}
	}

	var raw rawPage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return rawPage{}, err
	}
	return raw, nil
}
