// Package metadata defines the contract web metadata providers must satisfy
// when handing data to the catalogue, plus a TMDB-backed implementation.
// Providers are read-only producers: they return transient value records the
// catalogue copies field-by-field into freshly created entities.
package metadata

import (
	"fmt"
	"sort"
)

// MovieDetails is the value record a provider produces for one movie. The
// catalogue imposes no requirement on how the provider obtains it.
type MovieDetails struct {
	Title         string
	OriginalTitle string
	Country       string
	Year          *int
	Genres        []string
	ImageURL      string
	Director      string
	Cast          map[string]string // person name -> role
	Plot          string
	Rating        *float64
}

// Result is one hit of a provider search.
type Result interface {
	Title() string
	OriginalTitle() string
	Year() *int
	URL() string

	// LoadDetails fetches the full details record for this hit.
	LoadDetails() (*MovieDetails, error)
}

// Provider is the web metadata plugin boundary.
type Provider interface {
	// Name is the provider's display name.
	Name() string
	// Icon names the provider's display icon.
	Icon() string
	// SearchURL is the provider's human-facing search URL template.
	SearchURL() string
	// Search queries the provider for movies matching text.
	Search(text string) ([]Result, error)
}

var providers = make(map[string]Provider)

// Register adds a provider under its display name. The host populates the
// registry at startup; the catalogue never performs discovery itself.
func Register(p Provider) {
	providers[p.Name()] = p
}

// Lookup returns the provider registered under name.
func Lookup(name string) (Provider, error) {
	p, ok := providers[name]
	if !ok {
		return nil, fmt.Errorf("metadata provider %q not registered", name)
	}
	return p, nil
}

// Providers lists the registered providers in name order.
func Providers() []Provider {
	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)

	list := make([]Provider, len(names))
	for i, name := range names {
		list[i] = providers[name]
	}
	return list
}
