package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chrfin/MovieCollection-sub001/datastore"
	"github.com/chrfin/MovieCollection-sub001/metadata"
)

func TestOpen_EmptyStore(t *testing.T) {
	ds, cleanup := setupTestSource(t)
	defer cleanup()

	assert.Equal(t, 0, ds.Movies().Len())
	assert.Equal(t, 0, ds.Users().Len())
}

func TestScenario_CreateAndObserve(t *testing.T) {
	ds, cleanup := setupTestSource(t)
	defer cleanup()

	movie, err := ds.CreateMovie("Alpha")
	assert.NoError(t, err)
	assert.Equal(t, int64(1), movie.ID())
	assert.Equal(t, 1, ds.Movies().Len())
	assert.Same(t, movie, ds.Movies().At(0))

	user, err := ds.CreateUser("Bob")
	assert.NoError(t, err)
	assert.Equal(t, int64(1), user.ID())

	settings, err := ds.CreateMovieSettings(movie)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), settings.ID())
	assert.Nil(t, settings.Seen())
	assert.Nil(t, settings.Rating())
	assert.Same(t, movie, settings.Movie())

	assert.NoError(t, user.AddMovieSettings(settings))
	assert.Equal(t, 1, user.MovieSettings().Len())
	assert.Same(t, user, settings.User())

	var notifiedField string
	settings.OnPropertyChanged(func(_ any, field string) { notifiedField = field })

	assert.NoError(t, settings.SetSeen(boolp(true)))
	assert.Equal(t, "Seen", notifiedField)

	reread, err := newUserMovieSettings(ds, settings.ID())
	assert.NoError(t, err)
	assert.True(t, *reread.Seen())
}

func TestLoadOrder_InvalidReference(t *testing.T) {
	ds, cleanup := setupTestSource(t)
	defer cleanup()

	// A settings row pointing at a movie id that is not loaded must abort
	// construction, never yield a nil reference.
	id, err := ds.store.InsertRow(settingsTable, datastore.Row{"movie_id": int64(999)})
	assert.NoError(t, err)

	_, err = newUserMovieSettings(ds, id)
	assert.Error(t, err)
	var refErr *ReferenceError
	assert.ErrorAs(t, err, &refErr)
	assert.Equal(t, movieTable, refErr.Table)
	assert.Equal(t, int64(999), refErr.ID)

	// Materializing the whole store fails the same way
	_, err = Open(ds.store)
	assert.ErrorAs(t, err, &refErr)

	// Once the movie exists and is loaded, construction succeeds and the
	// reference is identical (by id) to the loaded movie.
	assert.NoError(t, ds.store.DeleteRow(settingsTable, id))
	movie, err := ds.CreateMovie("Alpha")
	assert.NoError(t, err)
	settings, err := ds.CreateMovieSettings(movie)
	assert.NoError(t, err)
	assert.Equal(t, movie.ID(), settings.Movie().ID())
	assert.Same(t, movie, settings.Movie())
}

func TestReload_Persistence(t *testing.T) {
	ds, cleanup := setupTestSource(t)
	defer cleanup()

	movie, err := ds.CreateMovie("Alpha")
	assert.NoError(t, err)
	assert.NoError(t, movie.SetYear(intp(1999)))

	lang, err := ds.CreatePerson("Fritz Lang")
	assert.NoError(t, err)
	wiene, err := ds.CreatePerson("Robert Wiene")
	assert.NoError(t, err)
	assert.NoError(t, movie.AddDirector(lang))
	assert.NoError(t, movie.AddDirector(wiene))
	assert.NoError(t, movie.AddCastMember(wiene))

	drama, err := ds.CreateGenre("Drama")
	assert.NoError(t, err)
	assert.NoError(t, movie.AddGenre(drama))

	file, err := ds.CreateMediaFile("/movies/alpha.mkv", movie)
	assert.NoError(t, err)
	assert.NoError(t, movie.SetPrimaryFile(file))

	video, err := ds.CreateVideoProperties(intp(7260))
	assert.NoError(t, err)
	assert.NoError(t, file.SetVideo(video))

	audio, err := ds.CreateAudioProperties(intp(6))
	assert.NoError(t, err)
	assert.NoError(t, file.AddAudio(audio))

	user, err := ds.CreateUser("Bob")
	assert.NoError(t, err)
	settings, err := ds.CreateMovieSettings(movie)
	assert.NoError(t, err)
	assert.NoError(t, user.AddMovieSettings(settings))
	assert.NoError(t, settings.SetComment("great"))

	// Materialize a second façade over the same store
	reloaded, err := Open(ds.store)
	assert.NoError(t, err)

	assert.Equal(t, 1, reloaded.Movies().Len())
	m := reloaded.Movies().At(0)
	assert.Equal(t, "Alpha", m.Title())
	assert.Equal(t, 1999, *m.Year())

	assert.Equal(t, 2, m.Directors().Len())
	assert.Equal(t, "Fritz Lang", m.Directors().At(0).Name())
	assert.Equal(t, "Robert Wiene", m.Directors().At(1).Name())
	assert.Equal(t, 1, m.Cast().Len())
	assert.Equal(t, "Robert Wiene", m.Cast().At(0).Name())

	// Shared person: the director and cast entries resolve to the same
	// wrapper
	assert.Same(t, m.Directors().At(1), m.Cast().At(0))

	assert.Equal(t, 1, m.Genres().Len())
	assert.Equal(t, "Drama", m.Genres().At(0).Title())

	assert.Equal(t, 1, m.Files().Len())
	f := m.Files().At(0)
	assert.Equal(t, "/movies/alpha.mkv", f.Path())
	assert.Same(t, f, m.PrimaryFile())
	assert.Same(t, m, f.Movie())
	assert.NotNil(t, f.Video())
	assert.Equal(t, 7260, *f.Video().Duration())
	assert.Equal(t, 1, f.Audio().Len())
	assert.Equal(t, 6, *f.Audio().At(0).Channels())

	assert.Equal(t, 1, reloaded.Users().Len())
	u := reloaded.Users().At(0)
	assert.Equal(t, "Bob", u.Name())
	assert.Equal(t, 1, u.MovieSettings().Len())
	s := u.MovieSettings().At(0)
	assert.Same(t, m, s.Movie())
	assert.Same(t, u, s.User())
	assert.Equal(t, "great", s.Comment())
}

func TestCollectionNotifications(t *testing.T) {
	ds, cleanup := setupTestSource(t)
	defer cleanup()

	movie, err := ds.CreateMovie("Alpha")
	assert.NoError(t, err)
	person, err := ds.CreatePerson("Fritz Lang")
	assert.NoError(t, err)

	var added, removed []*Person
	movie.Directors().OnChanged(func(a, r []*Person) {
		added = append(added, a...)
		removed = append(removed, r...)
	})

	assert.NoError(t, movie.AddDirector(person))
	assert.Equal(t, []*Person{person}, added)

	assert.NoError(t, movie.RemoveDirector(person))
	assert.Equal(t, []*Person{person}, removed)
	assert.Equal(t, 0, movie.Directors().Len())

	// Removing again fails: the membership row is gone
	err = movie.RemoveDirector(person)
	assert.ErrorIs(t, err, datastore.ErrNotFound)
}

func TestRootCollectionNotifications(t *testing.T) {
	ds, cleanup := setupTestSource(t)
	defer cleanup()

	var added []*Movie
	ds.Movies().OnChanged(func(a, _ []*Movie) { added = append(added, a...) })

	movie, err := ds.CreateMovie("Alpha")
	assert.NoError(t, err)
	assert.Equal(t, []*Movie{movie}, added)
}

func TestDeleteMovie_Eviction(t *testing.T) {
	ds, cleanup := setupTestSource(t)
	defer cleanup()

	movie, err := ds.CreateMovie("Alpha")
	assert.NoError(t, err)
	person, err := ds.CreatePerson("Fritz Lang")
	assert.NoError(t, err)
	assert.NoError(t, movie.AddDirector(person))

	file, err := ds.CreateMediaFile("/movies/alpha.mkv", movie)
	assert.NoError(t, err)
	assert.NoError(t, movie.SetPrimaryFile(file))
	audio, err := ds.CreateAudioProperties(intp(2))
	assert.NoError(t, err)
	assert.NoError(t, file.AddAudio(audio))

	user, err := ds.CreateUser("Bob")
	assert.NoError(t, err)
	settings, err := ds.CreateMovieSettings(movie)
	assert.NoError(t, err)
	assert.NoError(t, user.AddMovieSettings(settings))

	var removed []*Movie
	ds.Movies().OnChanged(func(_, r []*Movie) { removed = append(removed, r...) })

	assert.NoError(t, ds.DeleteMovie(movie))

	assert.Equal(t, 0, ds.Movies().Len())
	assert.Equal(t, []*Movie{movie}, removed)
	assert.Equal(t, 0, user.MovieSettings().Len())

	_, ok := ds.MovieByID(movie.ID())
	assert.False(t, ok)

	for _, check := range []struct {
		table string
		id    int64
	}{
		{movieTable, movie.ID()},
		{mediaFileTable, file.ID()},
		{audioTable, audio.ID()},
		{settingsTable, settings.ID()},
	} {
		_, err := ds.store.GetRow(check.table, check.id)
		assert.ErrorIs(t, err, datastore.ErrNotFound, check.table)
	}

	linkIDs, err := ds.store.ListIDs(directorLinkTable)
	assert.NoError(t, err)
	assert.Empty(t, linkIDs)
}

func TestDeleteUser(t *testing.T) {
	ds, cleanup := setupTestSource(t)
	defer cleanup()

	movie, err := ds.CreateMovie("Alpha")
	assert.NoError(t, err)
	user, err := ds.CreateUser("Bob")
	assert.NoError(t, err)
	settings, err := ds.CreateMovieSettings(movie)
	assert.NoError(t, err)
	assert.NoError(t, user.AddMovieSettings(settings))

	assert.NoError(t, ds.DeleteUser(user))
	assert.Equal(t, 0, ds.Users().Len())

	_, err = ds.store.GetRow(settingsTable, settings.ID())
	assert.ErrorIs(t, err, datastore.ErrNotFound)
	_, err = ds.store.GetRow(userTable, user.ID())
	assert.ErrorIs(t, err, datastore.ErrNotFound)
}

func TestClosedSource(t *testing.T) {
	ds, _ := setupTestSource(t)

	movie, err := ds.CreateMovie("Alpha")
	assert.NoError(t, err)

	assert.NoError(t, ds.Close())

	_, err = ds.CreateMovie("Beta")
	assert.ErrorIs(t, err, datastore.ErrClosed)
	_, err = ds.CreateUser("Bob")
	assert.ErrorIs(t, err, datastore.ErrClosed)
	err = ds.DeleteMovie(movie)
	assert.ErrorIs(t, err, datastore.ErrClosed)

	// Wrappers hold a non-owning reference; use after close is a
	// detectable error, and the cache stays untouched
	err = movie.SetTitle("Beta")
	assert.ErrorIs(t, err, datastore.ErrClosed)
	assert.Equal(t, "Alpha", movie.Title())

	assert.ErrorIs(t, ds.Close(), datastore.ErrClosed)
}

func TestImportMovie(t *testing.T) {
	ds, cleanup := setupTestSource(t)
	defer cleanup()

	// Reused entities are resolved by name/title, not duplicated
	existing, err := ds.CreateGenre("Drama")
	assert.NoError(t, err)

	details := &metadata.MovieDetails{
		Title:         "Metropolis",
		OriginalTitle: "Metropolis",
		Country:       "Germany",
		Year:          intp(1927),
		Genres:        []string{"Drama", "Science Fiction"},
		ImageURL:      "https://example.com/metropolis.jpg",
		Director:      "Fritz Lang",
		Cast: map[string]string{
			"Brigitte Helm": "Maria",
			"Alfred Abel":   "Joh Fredersen",
		},
		Plot:   "In a futuristic city...",
		Rating: float64p(8.263),
	}

	movie, err := ds.ImportMovie(details)
	assert.NoError(t, err)

	assert.Equal(t, "Metropolis", movie.Title())
	assert.Equal(t, "Germany", movie.Country())
	assert.Equal(t, 1927, *movie.Year())
	assert.Equal(t, "https://example.com/metropolis.jpg", movie.Cover())
	assert.Equal(t, 8.3, *movie.Rating())

	assert.Equal(t, 2, movie.Genres().Len())
	assert.Same(t, existing, movie.Genres().At(0))
	assert.Equal(t, "Science Fiction", movie.Genres().At(1).Title())

	assert.Equal(t, 1, movie.Directors().Len())
	assert.Equal(t, "Fritz Lang", movie.Directors().At(0).Name())

	// Cast is imported in name order with roles applied
	assert.Equal(t, 2, movie.Cast().Len())
	assert.Equal(t, "Alfred Abel", movie.Cast().At(0).Name())
	assert.Equal(t, "Joh Fredersen", movie.Cast().At(0).Role())
	assert.Equal(t, "Brigitte Helm", movie.Cast().At(1).Name())
	assert.Equal(t, "Maria", movie.Cast().At(1).Role())
}

func TestOpen_LoadFailurePropagates(t *testing.T) {
	ds, cleanup := setupTestSource(t)
	defer cleanup()

	// A link row pointing at a missing person makes materialization fail
	movie, err := ds.CreateMovie("Alpha")
	assert.NoError(t, err)
	_, err = ds.store.InsertRow(directorLinkTable, datastore.Row{
		"movie_id":  movie.ID(),
		"person_id": int64(42),
		"position":  int64(0),
	})
	assert.NoError(t, err)

	_, err = Open(ds.store)
	assert.Error(t, err)
	var refErr *ReferenceError
	assert.ErrorAs(t, err, &refErr)
	assert.Equal(t, personTable, refErr.Table)
}
