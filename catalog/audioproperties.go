package catalog

import (
	"golang.org/x/text/language"

	"github.com/chrfin/MovieCollection-sub001/datastore"
)

// AudioProperties wraps one row of the audio_properties table, describing
// one audio track of a media file. The language is persisted as a two-letter
// code; the invariant code decodes to absent, not to a language.
type AudioProperties struct {
	entity

	format   string
	bitRate  *int
	channels *int
	encoding string
	lang     *language.Tag

	file *MediaFile
}

func newAudioProperties(ds *DataSource, id int64) (*AudioProperties, error) {
	row, err := ds.store.GetRow(audioTable, id)
	if err != nil {
		return nil, err
	}

	a := &AudioProperties{entity: entity{id: id, table: audioTable, ds: ds}}
	a.owner = a
	a.format = decodeString(row["format"])
	a.bitRate = datastore.AsInt(row["bitrate"])
	a.channels = datastore.AsInt(row["channels"])
	a.encoding = decodeString(row["encoding"])
	a.lang = decodeLanguage(row["language"])
	return a, nil
}

// File returns the owning media file, or nil while unattached.
func (a *AudioProperties) File() *MediaFile { return a.file }

// Format returns the cached track format.
func (a *AudioProperties) Format() string { return a.format }

// SetFormat writes the track format through to the store.
func (a *AudioProperties) SetFormat(f string) error {
	return a.setColumn("Format", "format", encodeString(f), func() { a.format = f })
}

// BitRate returns the cached bit rate in kbit/s, or nil.
func (a *AudioProperties) BitRate() *int { return intPtr(a.bitRate) }

// SetBitRate writes the bit rate through to the store; nil clears it.
func (a *AudioProperties) SetBitRate(b *int) error {
	c := intPtr(b)
	return a.setColumn("BitRate", "bitrate", encodeIntPtr(c), func() { a.bitRate = c })
}

// Channels returns the cached channel count, or nil.
func (a *AudioProperties) Channels() *int { return intPtr(a.channels) }

// SetChannels writes the channel count through to the store; nil clears it.
func (a *AudioProperties) SetChannels(n *int) error {
	c := intPtr(n)
	return a.setColumn("Channels", "channels", encodeIntPtr(c), func() { a.channels = c })
}

// Encoding returns the cached codec name.
func (a *AudioProperties) Encoding() string { return a.encoding }

// SetEncoding writes the codec name through to the store.
func (a *AudioProperties) SetEncoding(e string) error {
	return a.setColumn("Encoding", "encoding", encodeString(e), func() { a.encoding = e })
}

// Language returns the cached track language, or nil when unknown.
func (a *AudioProperties) Language() *language.Tag { return a.lang }

// SetLanguage writes the language through to the store as a two-letter code;
// nil clears it. The cache holds the decoded form of what was written.
func (a *AudioProperties) SetLanguage(t *language.Tag) error {
	encoded := encodeLanguage(t)
	cached := decodeLanguage(encoded)
	return a.setColumn("Language", "language", encoded, func() { a.lang = cached })
}
