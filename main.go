// Package main provides the host entry point for the movie catalogue: a
// small JSON API over the catalogue façade, standing in for a desktop shell.
package main

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"github.com/chrfin/MovieCollection-sub001/catalog"
	"github.com/chrfin/MovieCollection-sub001/datastore"
	"github.com/chrfin/MovieCollection-sub001/metadata"
)

// App holds the application's dependencies.
type App struct {
	ds *catalog.DataSource
}

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	// Register the built-in storage backend; the catalogue never discovers
	// backends itself.
	datastore.Register(datastore.SQLiteFactory{})

	backendName := os.Getenv("MOVIES_BACKEND")
	if backendName == "" {
		backendName = "SQLite"
	}
	factory, err := datastore.Lookup(backendName)
	if err != nil {
		log.Fatal("Unknown storage backend:", err)
	}

	dbPath := os.Getenv("MOVIES_DB")
	if dbPath == "" {
		dbPath = "movies" + factory.FileExtension()
	}
	store, err := factory.OpenFile(dbPath)
	if err != nil {
		log.Fatal("Failed to open catalogue store:", err)
	}

	ds, err := catalog.Open(store)
	if err != nil {
		log.Fatal("Failed to load catalogue:", err)
	}
	defer func() {
		if err := ds.Close(); err != nil {
			log.Printf("Failed to close catalogue: %v", err)
		}
	}()

	// Register metadata providers
	tmdbAPIKey := os.Getenv("TMDB_API_KEY")
	if tmdbAPIKey != "" {
		metadata.Register(metadata.NewTMDBProvider(tmdbAPIKey))
		log.Println("TMDB metadata provider enabled")
	} else {
		log.Println("Warning: TMDB_API_KEY not set - metadata import will be disabled")
	}

	app := &App{ds: ds}

	r := mux.NewRouter()

	// Health check endpoint
	r.HandleFunc("/health", healthHandler).Methods("GET")

	// API routes
	api := r.PathPrefix("/api/v1").Subrouter()

	// Movie endpoints
	api.HandleFunc("/movies", app.getMoviesHandler).Methods("GET")
	api.HandleFunc("/movies", app.createMovieHandler).Methods("POST")
	api.HandleFunc("/movies/import", app.importMovieHandler).Methods("POST")
	api.HandleFunc("/movies/{id}", app.getMovieByIDHandler).Methods("GET")
	api.HandleFunc("/movies/{id}", app.updateMovieHandler).Methods("PATCH")
	api.HandleFunc("/movies/{id}", app.deleteMovieHandler).Methods("DELETE")

	// User endpoints
	api.HandleFunc("/users", app.getUsersHandler).Methods("GET")
	api.HandleFunc("/users", app.createUserHandler).Methods("POST")
	api.HandleFunc("/users/{id}/settings", app.createUserSettingsHandler).Methods("POST")

	log.Println("Server starting on :8080")
	server := &http.Server{
		Addr:         ":8080",
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Fatal(server.ListenAndServe())
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		log.Printf("Failed to write response: %v", err)
	}
}

// movieResponse is the JSON projection of a movie wrapper.
type movieResponse struct {
	ID            int64    `json:"id"`
	Title         string   `json:"title"`
	OriginalTitle string   `json:"original_title,omitempty"`
	Year          *int     `json:"year,omitempty"`
	URL           string   `json:"url,omitempty"`
	Country       string   `json:"country,omitempty"`
	Plot          string   `json:"plot,omitempty"`
	Rating        *float64 `json:"rating,omitempty"`
	Cover         string   `json:"cover,omitempty"`
	Directors     []string `json:"directors,omitempty"`
	Cast          []string `json:"cast,omitempty"`
	Genres        []string `json:"genres,omitempty"`
	Files         []string `json:"files,omitempty"`
}

func toMovieResponse(m *catalog.Movie) movieResponse {
	resp := movieResponse{
		ID:            m.ID(),
		Title:         m.Title(),
		OriginalTitle: m.OriginalTitle(),
		Year:          m.Year(),
		URL:           m.URL(),
		Country:       m.Country(),
		Plot:          m.Plot(),
		Rating:        m.Rating(),
		Cover:         m.Cover(),
	}
	for _, p := range m.Directors().Items() {
		resp.Directors = append(resp.Directors, p.Name())
	}
	for _, p := range m.Cast().Items() {
		resp.Cast = append(resp.Cast, p.Name())
	}
	for _, g := range m.Genres().Items() {
		resp.Genres = append(resp.Genres, g.Title())
	}
	for _, f := range m.Files().Items() {
		resp.Files = append(resp.Files, f.Path())
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func (app *App) getMoviesHandler(w http.ResponseWriter, _ *http.Request) {
	movies := app.ds.Movies().Items()
	resp := make([]movieResponse, len(movies))
	for i, m := range movies {
		resp[i] = toMovieResponse(m)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (app *App) movieFromRequest(w http.ResponseWriter, r *http.Request) (*catalog.Movie, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid movie ID", http.StatusBadRequest)
		return nil, false
	}
	movie, ok := app.ds.MovieByID(id)
	if !ok {
		http.Error(w, "Movie not found", http.StatusNotFound)
		return nil, false
	}
	return movie, true
}

func (app *App) getMovieByIDHandler(w http.ResponseWriter, r *http.Request) {
	movie, ok := app.movieFromRequest(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toMovieResponse(movie))
}

func (app *App) createMovieHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(body.Title) == "" {
		http.Error(w, "Title is required", http.StatusBadRequest)
		return
	}

	movie, err := app.ds.CreateMovie(body.Title)
	if err != nil {
		log.Printf("Error creating movie: %v", err)
		http.Error(w, "Failed to create movie", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, toMovieResponse(movie))
}

// movieUpdate carries optional field updates; absent keys leave the field
// untouched.
type movieUpdate struct {
	Title         *string  `json:"title"`
	OriginalTitle *string  `json:"original_title"`
	Year          *int     `json:"year"`
	URL           *string  `json:"url"`
	Country       *string  `json:"country"`
	Plot          *string  `json:"plot"`
	Rating        *float64 `json:"rating"`
	Cover         *string  `json:"cover"`
}

func (app *App) updateMovieHandler(w http.ResponseWriter, r *http.Request) {
	movie, ok := app.movieFromRequest(w, r)
	if !ok {
		return
	}

	var body movieUpdate
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	err := applyMovieUpdate(movie, body)
	if err != nil {
		log.Printf("Error updating movie: %v", err)
		http.Error(w, "Failed to update movie", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, toMovieResponse(movie))
}

func applyMovieUpdate(movie *catalog.Movie, body movieUpdate) error {
	if body.Title != nil {
		if err := movie.SetTitle(*body.Title); err != nil {
			return err
		}
	}
	if body.OriginalTitle != nil {
		if err := movie.SetOriginalTitle(*body.OriginalTitle); err != nil {
			return err
		}
	}
	if body.Year != nil {
		if err := movie.SetYear(body.Year); err != nil {
			return err
		}
	}
	if body.URL != nil {
		if err := movie.SetURL(*body.URL); err != nil {
			return err
		}
	}
	if body.Country != nil {
		if err := movie.SetCountry(*body.Country); err != nil {
			return err
		}
	}
	if body.Plot != nil {
		if err := movie.SetPlot(*body.Plot); err != nil {
			return err
		}
	}
	if body.Rating != nil {
		if err := movie.SetRating(body.Rating); err != nil {
			return err
		}
	}
	if body.Cover != nil {
		if err := movie.SetCover(*body.Cover); err != nil {
			return err
		}
	}
	return nil
}

func (app *App) deleteMovieHandler(w http.ResponseWriter, r *http.Request) {
	movie, ok := app.movieFromRequest(w, r)
	if !ok {
		return
	}
	if err := app.ds.DeleteMovie(movie); err != nil {
		log.Printf("Error deleting movie: %v", err)
		http.Error(w, "Failed to delete movie", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (app *App) importMovieHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Provider string `json:"provider"`
		Query    string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if body.Provider == "" {
		body.Provider = "TMDB"
	}
	if strings.TrimSpace(body.Query) == "" {
		http.Error(w, "Query is required", http.StatusBadRequest)
		return
	}

	provider, err := metadata.Lookup(body.Provider)
	if err != nil {
		http.Error(w, "Unknown metadata provider", http.StatusBadRequest)
		return
	}

	results, err := provider.Search(body.Query)
	if err != nil {
		log.Printf("Error searching %s: %v", provider.Name(), err)
		http.Error(w, "Metadata search failed", http.StatusBadGateway)
		return
	}
	if len(results) == 0 {
		http.Error(w, "No results", http.StatusNotFound)
		return
	}

	details, err := results[0].LoadDetails()
	if err != nil {
		log.Printf("Error loading details from %s: %v", provider.Name(), err)
		http.Error(w, "Failed to load details", http.StatusBadGateway)
		return
	}

	movie, err := app.ds.ImportMovie(details)
	if err != nil {
		log.Printf("Error importing movie: %v", err)
		http.Error(w, "Failed to import movie", http.StatusInternalServerError)
		return
	}
	if err := movie.SetURL(results[0].URL()); err != nil {
		log.Printf("Error setting movie URL: %v", err)
	}
	writeJSON(w, http.StatusCreated, toMovieResponse(movie))
}

// userResponse is the JSON projection of a user profile wrapper.
type userResponse struct {
	ID       int64              `json:"id"`
	Name     string             `json:"name"`
	Settings []settingsResponse `json:"settings,omitempty"`
}

type settingsResponse struct {
	ID      int64    `json:"id"`
	MovieID int64    `json:"movie_id"`
	Seen    *bool    `json:"seen,omitempty"`
	Rating  *float64 `json:"rating,omitempty"`
	Comment string   `json:"comment,omitempty"`
}

func toUserResponse(u *catalog.UserProfile) userResponse {
	resp := userResponse{ID: u.ID(), Name: u.Name()}
	for _, s := range u.MovieSettings().Items() {
		resp.Settings = append(resp.Settings, settingsResponse{
			ID:      s.ID(),
			MovieID: s.Movie().ID(),
			Seen:    s.Seen(),
			Rating:  s.Rating(),
			Comment: s.Comment(),
		})
	}
	return resp
}

func (app *App) getUsersHandler(w http.ResponseWriter, _ *http.Request) {
	users := app.ds.Users().Items()
	resp := make([]userResponse, len(users))
	for i, u := range users {
		resp[i] = toUserResponse(u)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (app *App) createUserHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(body.Name) == "" {
		http.Error(w, "Name is required", http.StatusBadRequest)
		return
	}

	user, err := app.ds.CreateUser(body.Name)
	if err != nil {
		log.Printf("Error creating user: %v", err)
		http.Error(w, "Failed to create user", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, toUserResponse(user))
}

func (app *App) createUserSettingsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}
	user, ok := app.ds.UserByID(id)
	if !ok {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	var body struct {
		MovieID int64 `json:"movie_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	movie, ok := app.ds.MovieByID(body.MovieID)
	if !ok {
		http.Error(w, "Movie not found", http.StatusNotFound)
		return
	}

	settings, err := app.ds.CreateMovieSettings(movie)
	if err != nil {
		log.Printf("Error creating movie settings: %v", err)
		http.Error(w, "Failed to create settings", http.StatusInternalServerError)
		return
	}
	if err := user.AddMovieSettings(settings); err != nil {
		if errors.Is(err, datastore.ErrClosed) {
			http.Error(w, "Data source closed", http.StatusServiceUnavailable)
			return
		}
		log.Printf("Error attaching movie settings: %v", err)
		http.Error(w, "Failed to attach settings", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, toUserResponse(user))
}
