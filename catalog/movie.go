package catalog

import "github.com/chrfin/MovieCollection-sub001/datastore"

// Movie wraps one row of the movies table. It owns the ordered collections
// of directors, cast members, genres and media files, and may point at one
// of its files as the primary playback file.
type Movie struct {
	entity

	title         string
	originalTitle string
	year          *int
	url           string
	country       string
	plot          string
	rating        *float64
	cover         string
	primaryFile   *MediaFile

	directors *linkList[*Person]
	cast      *linkList[*Person]
	genres    *linkList[*Genre]
	files     List[*MediaFile]
}

func newMovie(ds *DataSource, id int64) (*Movie, error) {
	row, err := ds.store.GetRow(movieTable, id)
	if err != nil {
		return nil, err
	}

	m := &Movie{entity: entity{id: id, table: movieTable, ds: ds}}
	m.owner = m
	m.title = decodeString(row["title"])
	m.originalTitle = decodeString(row["original_title"])
	m.year = datastore.AsInt(row["year"])
	m.url = decodeString(row["url"])
	m.country = decodeString(row["country"])
	m.plot = decodeString(row["plot"])
	m.rating = datastore.AsFloat64(row["rating"])
	m.cover = decodeString(row["cover"])

	if fileID := datastore.AsInt64(row["media_file"]); fileID != nil {
		file, ok := ds.filesByID[*fileID]
		if !ok {
			return nil, &ReferenceError{Table: mediaFileTable, ID: *fileID}
		}
		m.primaryFile = file
	}

	m.directors = newLinkList[*Person](ds, directorLinkTable, "movie_id", "person_id", id)
	m.cast = newLinkList[*Person](ds, castLinkTable, "movie_id", "person_id", id)
	m.genres = newLinkList[*Genre](ds, genreLinkTable, "movie_id", "genre_id", id)
	return m, nil
}

// Title returns the cached title.
func (m *Movie) Title() string { return m.title }

// SetTitle writes the title through to the store, then updates the cache and
// notifies observers.
func (m *Movie) SetTitle(v string) error {
	return m.setColumn("Title", "title", encodeString(v), func() { m.title = v })
}

// OriginalTitle returns the cached original title.
func (m *Movie) OriginalTitle() string { return m.originalTitle }

// SetOriginalTitle writes the original title through to the store.
func (m *Movie) SetOriginalTitle(v string) error {
	return m.setColumn("OriginalTitle", "original_title", encodeString(v), func() { m.originalTitle = v })
}

// Year returns the cached release year, or nil when unset.
func (m *Movie) Year() *int { return intPtr(m.year) }

// SetYear writes the release year through to the store; nil clears it.
func (m *Movie) SetYear(v *int) error {
	c := intPtr(v)
	return m.setColumn("Year", "year", encodeIntPtr(c), func() { m.year = c })
}

// URL returns the cached metadata page URL.
func (m *Movie) URL() string { return m.url }

// SetURL writes the metadata page URL through to the store.
func (m *Movie) SetURL(v string) error {
	return m.setColumn("URL", "url", encodeString(v), func() { m.url = v })
}

// Country returns the cached production country.
func (m *Movie) Country() string { return m.country }

// SetCountry writes the production country through to the store.
func (m *Movie) SetCountry(v string) error {
	return m.setColumn("Country", "country", encodeString(v), func() { m.country = v })
}

// Plot returns the cached plot summary.
func (m *Movie) Plot() string { return m.plot }

// SetPlot writes the plot summary through to the store.
func (m *Movie) SetPlot(v string) error {
	return m.setColumn("Plot", "plot", encodeString(v), func() { m.plot = v })
}

// Rating returns the cached rating, or nil when unset.
func (m *Movie) Rating() *float64 { return float64Ptr(m.rating) }

// SetRating rounds the rating to one decimal place, writes it through to the
// store and caches the rounded value, so store and cache always agree.
func (m *Movie) SetRating(v *float64) error {
	r := roundRating(v)
	return m.setColumn("Rating", "rating", encodeFloat64Ptr(r), func() { m.rating = r })
}

// Cover returns the cached cover image reference.
func (m *Movie) Cover() string { return m.cover }

// SetCover writes the cover image reference through to the store.
func (m *Movie) SetCover(v string) error {
	return m.setColumn("Cover", "cover", encodeString(v), func() { m.cover = v })
}

// PrimaryFile returns the primary media file, or nil.
func (m *Movie) PrimaryFile() *MediaFile { return m.primaryFile }

// SetPrimaryFile points the movie at one of its media files; nil clears the
// reference.
func (m *Movie) SetPrimaryFile(f *MediaFile) error {
	var value any
	if f != nil {
		value = f.id
	}
	return m.setColumn("PrimaryFile", "media_file", value, func() { m.primaryFile = f })
}

// Directors is the ordered collection of directing persons.
func (m *Movie) Directors() *List[*Person] { return &m.directors.List }

// AddDirector appends a person to the directors collection, persisting the
// membership before observers are notified.
func (m *Movie) AddDirector(p *Person) error { return m.directors.addLink(p, p.id) }

// RemoveDirector removes a person from the directors collection.
func (m *Movie) RemoveDirector(p *Person) error { return m.directors.removeLink(p) }

// Cast is the ordered collection of cast persons.
func (m *Movie) Cast() *List[*Person] { return &m.cast.List }

// AddCastMember appends a person to the cast collection.
func (m *Movie) AddCastMember(p *Person) error { return m.cast.addLink(p, p.id) }

// RemoveCastMember removes a person from the cast collection.
func (m *Movie) RemoveCastMember(p *Person) error { return m.cast.removeLink(p) }

// Genres is the ordered collection of genres.
func (m *Movie) Genres() *List[*Genre] { return &m.genres.List }

// AddGenre appends a genre to the movie.
func (m *Movie) AddGenre(g *Genre) error { return m.genres.addLink(g, g.id) }

// RemoveGenre removes a genre from the movie.
func (m *Movie) RemoveGenre(g *Genre) error { return m.genres.removeLink(g) }

// Files is the ordered collection of media files owned by the movie.
func (m *Movie) Files() *List[*MediaFile] { return &m.files }
