package catalog

import "github.com/chrfin/MovieCollection-sub001/datastore"

// VideoProperties wraps one row of the video_properties table, describing
// the video stream of a media file. Format and encoding use "" for "unset"
// by display convention; the numeric fields are nil when unknown.
type VideoProperties struct {
	entity

	duration *int
	width    *int
	height   *int
	format   string
	encoding string
	bitRate  *int

	file *MediaFile
}

func newVideoProperties(ds *DataSource, id int64) (*VideoProperties, error) {
	row, err := ds.store.GetRow(videoTable, id)
	if err != nil {
		return nil, err
	}

	v := &VideoProperties{entity: entity{id: id, table: videoTable, ds: ds}}
	v.owner = v
	v.duration = datastore.AsInt(row["duration"])
	v.width = datastore.AsInt(row["width"])
	v.height = datastore.AsInt(row["height"])
	v.format = decodeString(row["format"])
	v.encoding = decodeString(row["encoding"])
	v.bitRate = datastore.AsInt(row["bitrate"])
	return v, nil
}

// File returns the owning media file, or nil while unattached.
func (v *VideoProperties) File() *MediaFile { return v.file }

// Duration returns the cached duration in seconds, or nil.
func (v *VideoProperties) Duration() *int { return intPtr(v.duration) }

// SetDuration writes the duration through to the store; nil clears it.
func (v *VideoProperties) SetDuration(d *int) error {
	c := intPtr(d)
	return v.setColumn("Duration", "duration", encodeIntPtr(c), func() { v.duration = c })
}

// Width returns the cached frame width, or nil.
func (v *VideoProperties) Width() *int { return intPtr(v.width) }

// SetWidth writes the frame width through to the store; nil clears it.
func (v *VideoProperties) SetWidth(w *int) error {
	c := intPtr(w)
	return v.setColumn("Width", "width", encodeIntPtr(c), func() { v.width = c })
}

// Height returns the cached frame height, or nil.
func (v *VideoProperties) Height() *int { return intPtr(v.height) }

// SetHeight writes the frame height through to the store; nil clears it.
func (v *VideoProperties) SetHeight(h *int) error {
	c := intPtr(h)
	return v.setColumn("Height", "height", encodeIntPtr(c), func() { v.height = c })
}

// Format returns the cached container format.
func (v *VideoProperties) Format() string { return v.format }

// SetFormat writes the container format through to the store.
func (v *VideoProperties) SetFormat(f string) error {
	return v.setColumn("Format", "format", encodeString(f), func() { v.format = f })
}

// Encoding returns the cached codec name.
func (v *VideoProperties) Encoding() string { return v.encoding }

// SetEncoding writes the codec name through to the store.
func (v *VideoProperties) SetEncoding(e string) error {
	return v.setColumn("Encoding", "encoding", encodeString(e), func() { v.encoding = e })
}

// BitRate returns the cached bit rate in kbit/s, or nil.
func (v *VideoProperties) BitRate() *int { return intPtr(v.bitRate) }

// SetBitRate writes the bit rate through to the store; nil clears it.
func (v *VideoProperties) SetBitRate(b *int) error {
	c := intPtr(b)
	return v.setColumn("BitRate", "bitrate", encodeIntPtr(c), func() { v.bitRate = c })
}
