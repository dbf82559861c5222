package catalog

// Genre wraps one row of the genres table.
type Genre struct {
	entity

	title string
}

func newGenre(ds *DataSource, id int64) (*Genre, error) {
	row, err := ds.store.GetRow(genreTable, id)
	if err != nil {
		return nil, err
	}

	g := &Genre{entity: entity{id: id, table: genreTable, ds: ds}}
	g.owner = g
	g.title = decodeString(row["title"])
	return g, nil
}

// Title returns the cached title.
func (g *Genre) Title() string { return g.title }

// SetTitle writes the title through to the store.
func (g *Genre) SetTitle(v string) error {
	return g.setColumn("Title", "title", encodeString(v), func() { g.title = v })
}
