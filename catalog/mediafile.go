package catalog

import "github.com/chrfin/MovieCollection-sub001/datastore"

// MediaFile wraps one row of the media_files table. A file belongs to one
// movie and owns one VideoProperties plus an ordered collection of audio
// tracks.
type MediaFile struct {
	entity

	path  string
	size  *int64
	movie *Movie

	video *VideoProperties
	audio List[*AudioProperties]
}

func newMediaFile(ds *DataSource, id int64) (*MediaFile, error) {
	row, err := ds.store.GetRow(mediaFileTable, id)
	if err != nil {
		return nil, err
	}

	f := &MediaFile{entity: entity{id: id, table: mediaFileTable, ds: ds}}
	f.owner = f
	f.path = decodeString(row["path"])
	f.size = datastore.AsInt64(row["size"])
	return f, nil
}

// Path returns the cached file path.
func (f *MediaFile) Path() string { return f.path }

// SetPath writes the file path through to the store.
func (f *MediaFile) SetPath(v string) error {
	return f.setColumn("Path", "path", encodeString(v), func() { f.path = v })
}

// Size returns the cached file size in bytes, or nil when unknown.
func (f *MediaFile) Size() *int64 { return int64Ptr(f.size) }

// SetSize writes the file size through to the store; nil clears it.
func (f *MediaFile) SetSize(v *int64) error {
	c := int64Ptr(v)
	return f.setColumn("Size", "size", encodeInt64Ptr(c), func() { f.size = c })
}

// Movie returns the owning movie.
func (f *MediaFile) Movie() *Movie { return f.movie }

// Video returns the file's video properties, or nil.
func (f *MediaFile) Video() *VideoProperties { return f.video }

// SetVideo attaches video properties to the file, detaching any previously
// attached properties; nil detaches without a replacement. The new row is
// claimed in the store before the old one is released, and cached state only
// changes after every write succeeded.
func (f *MediaFile) SetVideo(v *VideoProperties) error {
	if f.video == v {
		return nil
	}
	if v != nil {
		if err := f.ds.store.UpdateColumn(videoTable, v.id, "file_id", f.id); err != nil {
			return err
		}
	}
	if f.video != nil {
		if err := f.ds.store.UpdateColumn(videoTable, f.video.id, "file_id", nil); err != nil {
			return err
		}
	}
	if f.video != nil {
		f.video.file = nil
	}
	if v != nil {
		if v.file != nil && v.file != f {
			v.file.video = nil
		}
		v.file = f
	}
	f.video = v
	f.raise(f, "Video")
	return nil
}

// Audio is the ordered collection of the file's audio tracks.
func (f *MediaFile) Audio() *List[*AudioProperties] { return &f.audio }

// AddAudio attaches an audio track to the file, appending it to the Audio
// collection in insertion order. A track owned by another file is moved: the
// claiming write re-points its row, and the previous owner's collection
// evicts it with a removal notification. The position is written before the
// claiming column, so a partial failure never leaves a claimed row outside
// the collection.
func (f *MediaFile) AddAudio(a *AudioProperties) error {
	if a.file == f {
		return nil
	}
	if err := f.ds.store.UpdateColumn(audioTable, a.id, "position", int64(f.audio.Len())); err != nil {
		return err
	}
	if err := f.ds.store.UpdateColumn(audioTable, a.id, "file_id", f.id); err != nil {
		return err
	}
	if prev := a.file; prev != nil {
		if i := prev.audio.Index(a); i >= 0 {
			prev.audio.removeAt(i)
		}
	}
	a.file = f
	f.audio.add(a)
	return nil
}

// RemoveAudio detaches an audio track, deleting its row and evicting it from
// the Audio collection in one notified step.
func (f *MediaFile) RemoveAudio(a *AudioProperties) error {
	i := f.audio.Index(a)
	if i < 0 {
		return &ReferenceError{Table: audioTable, ID: a.id}
	}
	if err := f.ds.store.DeleteRow(audioTable, a.id); err != nil {
		return err
	}
	delete(f.ds.audioByID, a.id)
	a.file = nil
	f.audio.removeAt(i)
	return nil
}
