package catalog

import "github.com/chrfin/MovieCollection-sub001/datastore"

// UserMovieSettings wraps one row of the user_movie_settings table: one
// user's seen flag, rating and comment for one movie. The movie reference is
// resolved eagerly at construction from the already-loaded movie index, so
// all movies must be materialized before any settings row is constructed.
type UserMovieSettings struct {
	entity

	movie   *Movie
	seen    *bool
	rating  *float64
	comment string

	user *UserProfile
}

func newUserMovieSettings(ds *DataSource, id int64) (*UserMovieSettings, error) {
	row, err := ds.store.GetRow(settingsTable, id)
	if err != nil {
		return nil, err
	}

	movieID := datastore.AsInt64(row["movie_id"])
	if movieID == nil {
		return nil, &ReferenceError{Table: movieTable, ID: 0}
	}
	movie, ok := ds.moviesByID[*movieID]
	if !ok {
		return nil, &ReferenceError{Table: movieTable, ID: *movieID}
	}

	s := &UserMovieSettings{entity: entity{id: id, table: settingsTable, ds: ds}}
	s.owner = s
	s.movie = movie
	s.seen = datastore.AsBool(row["seen"])
	s.rating = datastore.AsFloat64(row["rating"])
	s.comment = decodeString(row["comment"])
	return s, nil
}

// Movie returns the referenced movie. The reference is immutable.
func (s *UserMovieSettings) Movie() *Movie { return s.movie }

// User returns the owning profile, or nil while unowned.
func (s *UserMovieSettings) User() *UserProfile { return s.user }

// Seen returns the cached seen flag, or nil when never set.
func (s *UserMovieSettings) Seen() *bool { return boolPtr(s.seen) }

// SetSeen writes the seen flag through to the store; nil clears it.
func (s *UserMovieSettings) SetSeen(v *bool) error {
	c := boolPtr(v)
	return s.setColumn("Seen", "seen", encodeBoolPtr(c), func() { s.seen = c })
}

// Rating returns the cached rating, or nil when unset.
func (s *UserMovieSettings) Rating() *float64 { return float64Ptr(s.rating) }

// SetRating rounds the rating to one decimal place before the store write,
// mirroring the movie rating behavior.
func (s *UserMovieSettings) SetRating(v *float64) error {
	r := roundRating(v)
	return s.setColumn("Rating", "rating", encodeFloat64Ptr(r), func() { s.rating = r })
}

// Comment returns the cached comment.
func (s *UserMovieSettings) Comment() string { return s.comment }

// SetComment writes the comment through to the store.
func (s *UserMovieSettings) SetComment(v string) error {
	return s.setColumn("Comment", "comment", encodeString(v), func() { s.comment = v })
}
