package metadata

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// TMDBProvider implements Provider against The Movie Database API.
type TMDBProvider struct {
	apiKey   string
	baseURL  string
	imageURL string
	client   *http.Client
}

// tmdbSearchResponse is the payload of the search endpoint.
type tmdbSearchResponse struct {
	Results []tmdbSearchHit `json:"results"`
}

type tmdbSearchHit struct {
	ID            int    `json:"id"`
	Title         string `json:"title"`
	OriginalTitle string `json:"original_title"`
	ReleaseDate   string `json:"release_date"`
}

// tmdbMovie is the payload of the movie details endpoint.
type tmdbMovie struct {
	ID                  int           `json:"id"`
	Title               string        `json:"title"`
	OriginalTitle       string        `json:"original_title"`
	Overview            string        `json:"overview"`
	ReleaseDate         string        `json:"release_date"`
	PosterPath          string        `json:"poster_path"`
	VoteAverage         float64       `json:"vote_average"`
	Genres              []tmdbGenre   `json:"genres"`
	ProductionCountries []tmdbCountry `json:"production_countries"`
	Credits             tmdbCredits   `json:"credits"`
}

type tmdbGenre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type tmdbCountry struct {
	Name string `json:"name"`
}

type tmdbCredits struct {
	Cast []tmdbCastMember `json:"cast"`
	Crew []tmdbCrewMember `json:"crew"`
}

type tmdbCastMember struct {
	Name      string `json:"name"`
	Character string `json:"character"`
}

type tmdbCrewMember struct {
	Job  string `json:"job"`
	Name string `json:"name"`
}

// NewTMDBProvider creates a TMDB provider instance.
func NewTMDBProvider(apiKey string) *TMDBProvider {
	return &TMDBProvider{
		apiKey:   apiKey,
		baseURL:  "https://api.themoviedb.org/3",
		imageURL: "https://image.tmdb.org/t/p/w500",
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Name implements Provider.
func (t *TMDBProvider) Name() string { return "TMDB" }

// Icon implements Provider.
func (t *TMDBProvider) Icon() string { return "tmdb" }

// SearchURL implements Provider.
func (t *TMDBProvider) SearchURL() string {
	return "https://www.themoviedb.org/search/movie?query=%s"
}

// Search queries the TMDB search endpoint.
func (t *TMDBProvider) Search(text string) ([]Result, error) {
	endpoint := fmt.Sprintf("%s/search/movie?api_key=%s&query=%s",
		t.baseURL, t.apiKey, url.QueryEscape(text))

	var payload tmdbSearchResponse
	if err := t.fetch(endpoint, &payload); err != nil {
		return nil, err
	}

	results := make([]Result, len(payload.Results))
	for i, hit := range payload.Results {
		results[i] = &tmdbResult{provider: t, hit: hit}
	}
	return results, nil
}

func (t *TMDBProvider) fetch(endpoint string, payload any) error {
	resp, err := t.client.Get(endpoint)
	if err != nil {
		return fmt.Errorf("failed to fetch from TMDB: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("TMDB API returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(payload); err != nil {
		return fmt.Errorf("failed to decode TMDB response: %w", err)
	}
	return nil
}

// tmdbResult adapts one search hit to the Result contract.
type tmdbResult struct {
	provider *TMDBProvider
	hit      tmdbSearchHit
}

// Title implements Result.
func (r *tmdbResult) Title() string { return r.hit.Title }

// OriginalTitle implements Result.
func (r *tmdbResult) OriginalTitle() string { return r.hit.OriginalTitle }

// Year implements Result.
func (r *tmdbResult) Year() *int { return parseReleaseYear(r.hit.ReleaseDate) }

// URL implements Result.
func (r *tmdbResult) URL() string {
	return fmt.Sprintf("https://www.themoviedb.org/movie/%d", r.hit.ID)
}

// LoadDetails fetches the movie details and credits for this hit.
func (r *tmdbResult) LoadDetails() (*MovieDetails, error) {
	endpoint := fmt.Sprintf("%s/movie/%d?api_key=%s&append_to_response=credits",
		r.provider.baseURL, r.hit.ID, r.provider.apiKey)

	var movie tmdbMovie
	if err := r.provider.fetch(endpoint, &movie); err != nil {
		return nil, err
	}
	return r.provider.convertToDetails(movie), nil
}

func (t *TMDBProvider) convertToDetails(movie tmdbMovie) *MovieDetails {
	rating := movie.VoteAverage
	details := &MovieDetails{
		Title:         movie.Title,
		OriginalTitle: movie.OriginalTitle,
		Year:          parseReleaseYear(movie.ReleaseDate),
		Plot:          movie.Overview,
		Rating:        &rating,
		Cast:          make(map[string]string),
	}

	if movie.PosterPath != "" {
		details.ImageURL = t.imageURL + movie.PosterPath
	}

	if len(movie.ProductionCountries) > 0 {
		details.Country = movie.ProductionCountries[0].Name
	}

	for _, genre := range movie.Genres {
		details.Genres = append(details.Genres, genre.Name)
	}

	for _, crew := range movie.Credits.Crew {
		if crew.Job == "Director" {
			details.Director = crew.Name
			break
		}
	}

	for _, cast := range movie.Credits.Cast {
		details.Cast[cast.Name] = cast.Character
	}

	return details
}

func parseReleaseYear(releaseDate string) *int {
	if len(releaseDate) < 4 {
		return nil
	}
	var year int
	if _, err := fmt.Sscanf(releaseDate[:4], "%d", &year); err != nil {
		return nil
	}
	return &year
}
