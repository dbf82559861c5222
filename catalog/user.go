package catalog

// UserProfile wraps one row of the users table and owns that user's ordered
// collection of per-movie settings.
type UserProfile struct {
	entity

	name string

	movieSettings List[*UserMovieSettings]
}

func newUserProfile(ds *DataSource, id int64) (*UserProfile, error) {
	row, err := ds.store.GetRow(userTable, id)
	if err != nil {
		return nil, err
	}

	u := &UserProfile{entity: entity{id: id, table: userTable, ds: ds}}
	u.owner = u
	u.name = decodeString(row["name"])
	return u, nil
}

// Name returns the cached profile name.
func (u *UserProfile) Name() string { return u.name }

// SetName writes the profile name through to the store.
func (u *UserProfile) SetName(v string) error {
	return u.setColumn("Name", "name", encodeString(v), func() { u.name = v })
}

// MovieSettings is the ordered collection of the user's per-movie settings.
func (u *UserProfile) MovieSettings() *List[*UserMovieSettings] { return &u.movieSettings }

// AddMovieSettings claims a settings row for this user, persisting the
// ownership before the collection is mutated and observers notified. A row
// owned by another user is moved: the previous owner's collection evicts it
// with a removal notification. The position is written before the claiming
// column, so a partial failure never leaves a claimed row outside the
// collection.
func (u *UserProfile) AddMovieSettings(s *UserMovieSettings) error {
	if s.user == u {
		return nil
	}
	if err := u.ds.store.UpdateColumn(settingsTable, s.id, "position", int64(u.movieSettings.Len())); err != nil {
		return err
	}
	if err := u.ds.store.UpdateColumn(settingsTable, s.id, "user_id", u.id); err != nil {
		return err
	}
	if prev := s.user; prev != nil {
		if i := prev.movieSettings.Index(s); i >= 0 {
			prev.movieSettings.removeAt(i)
		}
	}
	s.user = u
	u.movieSettings.add(s)
	return nil
}
