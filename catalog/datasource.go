// Package catalog implements the entity synchronization layer of the movie
// catalogue: typed, change-notifying wrappers over rows of a generic column
// store, ordered observable collections kept consistent with the store, and
// the DataSource façade the host talks to. Every mutation is written through
// to the store before the in-memory cache changes and before observers are
// notified, so an observer reacting to a notification always sees storage
// consistent with the notified value.
//
// The layer assumes a single logical owner: no internal locking is provided,
// and concurrent mutation from two goroutines must be prevented by the
// caller.
package catalog

import (
	"fmt"
	"sort"

	"github.com/chrfin/MovieCollection-sub001/datastore"
	"github.com/chrfin/MovieCollection-sub001/metadata"
)

// Table names of the catalogue schema.
const (
	movieTable        = "movies"
	personTable       = "persons"
	genreTable        = "genres"
	mediaFileTable    = "media_files"
	videoTable        = "video_properties"
	audioTable        = "audio_properties"
	userTable         = "users"
	settingsTable     = "user_movie_settings"
	directorLinkTable = "movie_directors"
	castLinkTable     = "movie_cast"
	genreLinkTable    = "movie_genres"
)

// DataSource is the single entry point for the host: it owns the column
// store handle between Open and Close, holds the root observable collections
// and exposes the entity factories. Entity wrappers hold a non-owning
// reference back to it and must not outlive it; operations after Close fail
// with datastore.ErrClosed.
type DataSource struct {
	store  datastore.ColumnStore
	closed bool

	movies List[*Movie]
	users  List[*UserProfile]

	moviesByID   map[int64]*Movie
	personsByID  map[int64]*Person
	genresByID   map[int64]*Genre
	filesByID    map[int64]*MediaFile
	videoByID    map[int64]*VideoProperties
	audioByID    map[int64]*AudioProperties
	usersByID    map[int64]*UserProfile
	settingsByID map[int64]*UserMovieSettings
}

// Open materializes the catalogue from the store. Loading is a staged
// protocol: every parent kind is fully loaded before any kind referencing it
// is constructed, so reference resolution can never race the load order. A
// reference to a row that is not loaded aborts with ReferenceError.
func Open(store datastore.ColumnStore) (*DataSource, error) {
	ds := &DataSource{
		store:        store,
		moviesByID:   make(map[int64]*Movie),
		personsByID:  make(map[int64]*Person),
		genresByID:   make(map[int64]*Genre),
		filesByID:    make(map[int64]*MediaFile),
		videoByID:    make(map[int64]*VideoProperties),
		audioByID:    make(map[int64]*AudioProperties),
		usersByID:    make(map[int64]*UserProfile),
		settingsByID: make(map[int64]*UserMovieSettings),
	}

	if err := ds.load(); err != nil {
		return nil, fmt.Errorf("failed to load catalogue: %w", err)
	}
	return ds, nil
}

// Movies is the root observable collection of movies.
func (ds *DataSource) Movies() *List[*Movie] { return &ds.movies }

// Users is the root observable collection of user profiles.
func (ds *DataSource) Users() *List[*UserProfile] { return &ds.users }

// MovieByID looks a loaded movie up by its id.
func (ds *DataSource) MovieByID(id int64) (*Movie, bool) {
	m, ok := ds.moviesByID[id]
	return m, ok
}

// UserByID looks a loaded user profile up by its id.
func (ds *DataSource) UserByID(id int64) (*UserProfile, bool) {
	u, ok := ds.usersByID[id]
	return u, ok
}

// Close releases the store handle. No further calls are valid afterwards;
// they fail with datastore.ErrClosed.
func (ds *DataSource) Close() error {
	if ds.closed {
		return datastore.ErrClosed
	}
	ds.closed = true
	return ds.store.Close()
}

// ordered pairs a loaded item with its persisted position for sorting child
// collections back into insertion order.
type ordered[T any] struct {
	position int64
	rowID    int64
	item     T
}

func sortByPosition[T any](items []ordered[T]) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].position < items[j].position
	})
}

func (ds *DataSource) load() error {
	if err := ds.loadGenres(); err != nil {
		return err
	}
	if err := ds.loadPersons(); err != nil {
		return err
	}
	if err := ds.loadMediaFiles(); err != nil {
		return err
	}
	if err := ds.loadVideoProperties(); err != nil {
		return err
	}
	if err := ds.loadAudioProperties(); err != nil {
		return err
	}
	if err := ds.loadMovies(); err != nil {
		return err
	}
	if err := ds.loadLinks(directorLinkTable, func(m *Movie, p *Person, rowID int64) {
		m.directors.attachLink(p, rowID)
	}); err != nil {
		return err
	}
	if err := ds.loadLinks(castLinkTable, func(m *Movie, p *Person, rowID int64) {
		m.cast.attachLink(p, rowID)
	}); err != nil {
		return err
	}
	if err := ds.loadGenreLinks(); err != nil {
		return err
	}
	if err := ds.loadUsers(); err != nil {
		return err
	}
	return ds.loadSettings()
}

func (ds *DataSource) loadGenres() error {
	ids, err := ds.store.ListIDs(genreTable)
	if err != nil {
		return err
	}
	for _, id := range ids {
		genre, err := newGenre(ds, id)
		if err != nil {
			return err
		}
		ds.genresByID[id] = genre
	}
	return nil
}

func (ds *DataSource) loadPersons() error {
	ids, err := ds.store.ListIDs(personTable)
	if err != nil {
		return err
	}
	for _, id := range ids {
		person, err := newPerson(ds, id)
		if err != nil {
			return err
		}
		ds.personsByID[id] = person
	}
	return nil
}

func (ds *DataSource) loadMediaFiles() error {
	ids, err := ds.store.ListIDs(mediaFileTable)
	if err != nil {
		return err
	}
	for _, id := range ids {
		file, err := newMediaFile(ds, id)
		if err != nil {
			return err
		}
		ds.filesByID[id] = file
	}
	return nil
}

func (ds *DataSource) loadVideoProperties() error {
	ids, err := ds.store.ListIDs(videoTable)
	if err != nil {
		return err
	}
	for _, id := range ids {
		video, err := newVideoProperties(ds, id)
		if err != nil {
			return err
		}
		ds.videoByID[id] = video

		row, err := ds.store.GetRow(videoTable, id)
		if err != nil {
			return err
		}
		fileID := datastore.AsInt64(row["file_id"])
		if fileID == nil {
			continue
		}
		file, ok := ds.filesByID[*fileID]
		if !ok {
			return &ReferenceError{Table: mediaFileTable, ID: *fileID}
		}
		video.file = file
		file.video = video
	}
	return nil
}

func (ds *DataSource) loadAudioProperties() error {
	ids, err := ds.store.ListIDs(audioTable)
	if err != nil {
		return err
	}

	perFile := make(map[*MediaFile][]ordered[*AudioProperties])
	for _, id := range ids {
		audio, err := newAudioProperties(ds, id)
		if err != nil {
			return err
		}
		ds.audioByID[id] = audio

		row, err := ds.store.GetRow(audioTable, id)
		if err != nil {
			return err
		}
		fileID := datastore.AsInt64(row["file_id"])
		if fileID == nil {
			continue
		}
		file, ok := ds.filesByID[*fileID]
		if !ok {
			return &ReferenceError{Table: mediaFileTable, ID: *fileID}
		}
		position := int64(0)
		if p := datastore.AsInt64(row["position"]); p != nil {
			position = *p
		}
		perFile[file] = append(perFile[file], ordered[*AudioProperties]{position: position, item: audio})
	}

	for file, tracks := range perFile {
		sortByPosition(tracks)
		for _, track := range tracks {
			track.item.file = file
			file.audio.attach(track.item)
		}
	}
	return nil
}

func (ds *DataSource) loadMovies() error {
	ids, err := ds.store.ListIDs(movieTable)
	if err != nil {
		return err
	}
	for _, id := range ids {
		movie, err := newMovie(ds, id)
		if err != nil {
			return err
		}
		ds.moviesByID[id] = movie
		ds.movies.attach(movie)
	}
	return ds.attachMediaFiles()
}

// attachMediaFiles wires loaded files into their owning movie's collection,
// sorted by persisted position.
func (ds *DataSource) attachMediaFiles() error {
	ids, err := ds.store.ListIDs(mediaFileTable)
	if err != nil {
		return err
	}

	perMovie := make(map[*Movie][]ordered[*MediaFile])
	for _, id := range ids {
		row, err := ds.store.GetRow(mediaFileTable, id)
		if err != nil {
			return err
		}
		movieID := datastore.AsInt64(row["movie_id"])
		if movieID == nil {
			continue
		}
		movie, ok := ds.moviesByID[*movieID]
		if !ok {
			return &ReferenceError{Table: movieTable, ID: *movieID}
		}
		position := int64(0)
		if p := datastore.AsInt64(row["position"]); p != nil {
			position = *p
		}
		perMovie[movie] = append(perMovie[movie], ordered[*MediaFile]{position: position, item: ds.filesByID[id]})
	}

	for movie, files := range perMovie {
		sortByPosition(files)
		for _, file := range files {
			file.item.movie = movie
			movie.files.attach(file.item)
		}
	}
	return nil
}

func (ds *DataSource) loadLinks(table string, attach func(*Movie, *Person, int64)) error {
	ids, err := ds.store.ListIDs(table)
	if err != nil {
		return err
	}

	perMovie := make(map[*Movie][]ordered[*Person])
	for _, id := range ids {
		row, err := ds.store.GetRow(table, id)
		if err != nil {
			return err
		}
		movie, person, position, err := ds.resolveLink(row)
		if err != nil {
			return err
		}
		perMovie[movie] = append(perMovie[movie], ordered[*Person]{position: position, rowID: id, item: person})
	}

	for movie, links := range perMovie {
		sortByPosition(links)
		for _, link := range links {
			attach(movie, link.item, link.rowID)
		}
	}
	return nil
}

func (ds *DataSource) resolveLink(row datastore.Row) (*Movie, *Person, int64, error) {
	movieID := datastore.AsInt64(row["movie_id"])
	personID := datastore.AsInt64(row["person_id"])
	if movieID == nil {
		return nil, nil, 0, &ReferenceError{Table: movieTable, ID: 0}
	}
	if personID == nil {
		return nil, nil, 0, &ReferenceError{Table: personTable, ID: 0}
	}
	movie, ok := ds.moviesByID[*movieID]
	if !ok {
		return nil, nil, 0, &ReferenceError{Table: movieTable, ID: *movieID}
	}
	person, ok := ds.personsByID[*personID]
	if !ok {
		return nil, nil, 0, &ReferenceError{Table: personTable, ID: *personID}
	}
	position := int64(0)
	if p := datastore.AsInt64(row["position"]); p != nil {
		position = *p
	}
	return movie, person, position, nil
}

func (ds *DataSource) loadGenreLinks() error {
	ids, err := ds.store.ListIDs(genreLinkTable)
	if err != nil {
		return err
	}

	perMovie := make(map[*Movie][]ordered[*Genre])
	for _, id := range ids {
		row, err := ds.store.GetRow(genreLinkTable, id)
		if err != nil {
			return err
		}
		movieID := datastore.AsInt64(row["movie_id"])
		genreID := datastore.AsInt64(row["genre_id"])
		if movieID == nil || genreID == nil {
			return &ReferenceError{Table: genreLinkTable, ID: id}
		}
		movie, ok := ds.moviesByID[*movieID]
		if !ok {
			return &ReferenceError{Table: movieTable, ID: *movieID}
		}
		genre, ok := ds.genresByID[*genreID]
		if !ok {
			return &ReferenceError{Table: genreTable, ID: *genreID}
		}
		position := int64(0)
		if p := datastore.AsInt64(row["position"]); p != nil {
			position = *p
		}
		perMovie[movie] = append(perMovie[movie], ordered[*Genre]{position: position, rowID: id, item: genre})
	}

	for movie, links := range perMovie {
		sortByPosition(links)
		for _, link := range links {
			movie.genres.attachLink(link.item, link.rowID)
		}
	}
	return nil
}

func (ds *DataSource) loadUsers() error {
	ids, err := ds.store.ListIDs(userTable)
	if err != nil {
		return err
	}
	for _, id := range ids {
		user, err := newUserProfile(ds, id)
		if err != nil {
			return err
		}
		ds.usersByID[id] = user
		ds.users.attach(user)
	}
	return nil
}

func (ds *DataSource) loadSettings() error {
	ids, err := ds.store.ListIDs(settingsTable)
	if err != nil {
		return err
	}

	perUser := make(map[*UserProfile][]ordered[*UserMovieSettings])
	for _, id := range ids {
		settings, err := newUserMovieSettings(ds, id)
		if err != nil {
			return err
		}
		ds.settingsByID[id] = settings

		row, err := ds.store.GetRow(settingsTable, id)
		if err != nil {
			return err
		}
		userID := datastore.AsInt64(row["user_id"])
		if userID == nil {
			continue
		}
		user, ok := ds.usersByID[*userID]
		if !ok {
			return &ReferenceError{Table: userTable, ID: *userID}
		}
		position := int64(0)
		if p := datastore.AsInt64(row["position"]); p != nil {
			position = *p
		}
		perUser[user] = append(perUser[user], ordered[*UserMovieSettings]{position: position, item: settings})
	}

	for user, settings := range perUser {
		sortByPosition(settings)
		for _, s := range settings {
			s.item.user = user
			user.movieSettings.attach(s.item)
		}
	}
	return nil
}

// CreateMovie inserts a new movie row with the given title, leaving every
// other field absent, and returns a fully-wired wrapper already present in
// Movies.
func (ds *DataSource) CreateMovie(title string) (*Movie, error) {
	if ds.closed {
		return nil, datastore.ErrClosed
	}
	id, err := ds.store.InsertRow(movieTable, datastore.Row{"title": title})
	if err != nil {
		return nil, err
	}
	movie, err := newMovie(ds, id)
	if err != nil {
		return nil, err
	}
	ds.moviesByID[id] = movie
	ds.movies.add(movie)
	return movie, nil
}

// CreatePerson inserts a new person row with the given name.
func (ds *DataSource) CreatePerson(name string) (*Person, error) {
	if ds.closed {
		return nil, datastore.ErrClosed
	}
	id, err := ds.store.InsertRow(personTable, datastore.Row{"name": name})
	if err != nil {
		return nil, err
	}
	person, err := newPerson(ds, id)
	if err != nil {
		return nil, err
	}
	ds.personsByID[id] = person
	return person, nil
}

// CreateGenre inserts a new genre row with the given title.
func (ds *DataSource) CreateGenre(title string) (*Genre, error) {
	if ds.closed {
		return nil, datastore.ErrClosed
	}
	id, err := ds.store.InsertRow(genreTable, datastore.Row{"title": title})
	if err != nil {
		return nil, err
	}
	genre, err := newGenre(ds, id)
	if err != nil {
		return nil, err
	}
	ds.genresByID[id] = genre
	return genre, nil
}

// CreateMediaFile inserts a new media file row owned by movie, appending it
// to the movie's Files collection.
func (ds *DataSource) CreateMediaFile(path string, movie *Movie) (*MediaFile, error) {
	if ds.closed {
		return nil, datastore.ErrClosed
	}
	id, err := ds.store.InsertRow(mediaFileTable, datastore.Row{
		"path":     path,
		"movie_id": movie.id,
		"position": int64(movie.files.Len()),
	})
	if err != nil {
		return nil, err
	}
	file, err := newMediaFile(ds, id)
	if err != nil {
		return nil, err
	}
	file.movie = movie
	ds.filesByID[id] = file
	movie.files.add(file)
	return file, nil
}

// CreateVideoProperties inserts a new, unattached video properties row with
// the given duration; attach it to a file with MediaFile.SetVideo.
func (ds *DataSource) CreateVideoProperties(duration *int) (*VideoProperties, error) {
	if ds.closed {
		return nil, datastore.ErrClosed
	}
	id, err := ds.store.InsertRow(videoTable, datastore.Row{"duration": encodeIntPtr(duration)})
	if err != nil {
		return nil, err
	}
	video, err := newVideoProperties(ds, id)
	if err != nil {
		return nil, err
	}
	ds.videoByID[id] = video
	return video, nil
}

// CreateAudioProperties inserts a new, unattached audio properties row with
// the given channel count; attach it to a file with MediaFile.AddAudio.
func (ds *DataSource) CreateAudioProperties(channels *int) (*AudioProperties, error) {
	if ds.closed {
		return nil, datastore.ErrClosed
	}
	id, err := ds.store.InsertRow(audioTable, datastore.Row{"channels": encodeIntPtr(channels)})
	if err != nil {
		return nil, err
	}
	audio, err := newAudioProperties(ds, id)
	if err != nil {
		return nil, err
	}
	ds.audioByID[id] = audio
	return audio, nil
}

// CreateUser inserts a new user profile row with the given name, appending
// it to Users.
func (ds *DataSource) CreateUser(name string) (*UserProfile, error) {
	if ds.closed {
		return nil, datastore.ErrClosed
	}
	id, err := ds.store.InsertRow(userTable, datastore.Row{"name": name})
	if err != nil {
		return nil, err
	}
	user, err := newUserProfile(ds, id)
	if err != nil {
		return nil, err
	}
	ds.usersByID[id] = user
	ds.users.add(user)
	return user, nil
}

// CreateMovieSettings inserts a new settings row referencing movie. The row
// is unowned until a user claims it with UserProfile.AddMovieSettings.
func (ds *DataSource) CreateMovieSettings(movie *Movie) (*UserMovieSettings, error) {
	if ds.closed {
		return nil, datastore.ErrClosed
	}
	id, err := ds.store.InsertRow(settingsTable, datastore.Row{"movie_id": movie.id})
	if err != nil {
		return nil, err
	}
	settings, err := newUserMovieSettings(ds, id)
	if err != nil {
		return nil, err
	}
	ds.settingsByID[id] = settings
	return settings, nil
}

// DeleteMovieSettings removes a settings row and evicts the wrapper from its
// owning user's collection.
func (ds *DataSource) DeleteMovieSettings(s *UserMovieSettings) error {
	if ds.closed {
		return datastore.ErrClosed
	}
	if err := ds.store.DeleteRow(settingsTable, s.id); err != nil {
		return err
	}
	delete(ds.settingsByID, s.id)
	if s.user != nil {
		if i := s.user.movieSettings.Index(s); i >= 0 {
			s.user.movieSettings.removeAt(i)
		}
		s.user = nil
	}
	return nil
}

// DeleteUser removes a user profile and all of its settings rows, evicting
// the wrapper from Users.
func (ds *DataSource) DeleteUser(u *UserProfile) error {
	if ds.closed {
		return datastore.ErrClosed
	}
	for i := u.movieSettings.Len() - 1; i >= 0; i-- {
		if err := ds.DeleteMovieSettings(u.movieSettings.At(i)); err != nil {
			return err
		}
	}
	if err := ds.store.DeleteRow(userTable, u.id); err != nil {
		return err
	}
	delete(ds.usersByID, u.id)
	if i := ds.users.Index(u); i >= 0 {
		ds.users.removeAt(i)
	}
	return nil
}

// DeleteMediaFile removes a media file with its video and audio property
// rows, clearing the owning movie's primary file reference if it pointed at
// the file.
func (ds *DataSource) DeleteMediaFile(f *MediaFile) error {
	if ds.closed {
		return datastore.ErrClosed
	}
	if f.movie != nil && f.movie.primaryFile == f {
		if err := f.movie.SetPrimaryFile(nil); err != nil {
			return err
		}
	}
	for i := f.audio.Len() - 1; i >= 0; i-- {
		if err := f.RemoveAudio(f.audio.At(i)); err != nil {
			return err
		}
	}
	if f.video != nil {
		if err := ds.store.DeleteRow(videoTable, f.video.id); err != nil {
			return err
		}
		delete(ds.videoByID, f.video.id)
		f.video.file = nil
		f.video = nil
	}
	if err := ds.store.DeleteRow(mediaFileTable, f.id); err != nil {
		return err
	}
	delete(ds.filesByID, f.id)
	if f.movie != nil {
		if i := f.movie.files.Index(f); i >= 0 {
			f.movie.files.removeAt(i)
		}
		f.movie = nil
	}
	return nil
}

// DeleteMovie removes a movie with its memberships, media files and every
// settings row referencing it, evicting the wrapper from Movies.
func (ds *DataSource) DeleteMovie(m *Movie) error {
	if ds.closed {
		return datastore.ErrClosed
	}

	var referencing []*UserMovieSettings
	for _, s := range ds.settingsByID {
		if s.movie == m {
			referencing = append(referencing, s)
		}
	}
	for _, s := range referencing {
		if err := ds.DeleteMovieSettings(s); err != nil {
			return err
		}
	}

	for i := m.files.Len() - 1; i >= 0; i-- {
		if err := ds.DeleteMediaFile(m.files.At(i)); err != nil {
			return err
		}
	}
	if err := m.directors.deleteAll(); err != nil {
		return err
	}
	if err := m.cast.deleteAll(); err != nil {
		return err
	}
	if err := m.genres.deleteAll(); err != nil {
		return err
	}

	if err := ds.store.DeleteRow(movieTable, m.id); err != nil {
		return err
	}
	delete(ds.moviesByID, m.id)
	if i := ds.movies.Index(m); i >= 0 {
		ds.movies.removeAt(i)
	}
	return nil
}

// ImportMovie copies a metadata provider's details record field-by-field
// into freshly created entities, reusing already-loaded persons and genres
// by name.
func (ds *DataSource) ImportMovie(details *metadata.MovieDetails) (*Movie, error) {
	movie, err := ds.CreateMovie(details.Title)
	if err != nil {
		return nil, err
	}
	if details.OriginalTitle != "" {
		if err := movie.SetOriginalTitle(details.OriginalTitle); err != nil {
			return nil, err
		}
	}
	if details.Country != "" {
		if err := movie.SetCountry(details.Country); err != nil {
			return nil, err
		}
	}
	if details.Year != nil {
		if err := movie.SetYear(details.Year); err != nil {
			return nil, err
		}
	}
	if details.Plot != "" {
		if err := movie.SetPlot(details.Plot); err != nil {
			return nil, err
		}
	}
	if details.Rating != nil {
		if err := movie.SetRating(details.Rating); err != nil {
			return nil, err
		}
	}
	if details.ImageURL != "" {
		if err := movie.SetCover(details.ImageURL); err != nil {
			return nil, err
		}
	}

	for _, title := range details.Genres {
		genre, err := ds.findOrCreateGenre(title)
		if err != nil {
			return nil, err
		}
		if err := movie.AddGenre(genre); err != nil {
			return nil, err
		}
	}

	if details.Director != "" {
		director, err := ds.findOrCreatePerson(details.Director)
		if err != nil {
			return nil, err
		}
		if err := movie.AddDirector(director); err != nil {
			return nil, err
		}
	}

	names := make([]string, 0, len(details.Cast))
	for name := range details.Cast {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		person, err := ds.findOrCreatePerson(name)
		if err != nil {
			return nil, err
		}
		if role := details.Cast[name]; role != "" && person.role == "" {
			if err := person.SetRole(role); err != nil {
				return nil, err
			}
		}
		if err := movie.AddCastMember(person); err != nil {
			return nil, err
		}
	}

	return movie, nil
}

func (ds *DataSource) findOrCreatePerson(name string) (*Person, error) {
	for _, person := range ds.personsByID {
		if person.name == name {
			return person, nil
		}
	}
	return ds.CreatePerson(name)
}

func (ds *DataSource) findOrCreateGenre(title string) (*Genre, error) {
	for _, genre := range ds.genresByID {
		if genre.title == title {
			return genre, nil
		}
	}
	return ds.CreateGenre(title)
}
