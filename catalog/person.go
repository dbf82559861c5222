package catalog

// Person wraps one row of the persons table. Persons are shared between
// movies through the director and cast collections.
type Person struct {
	entity

	name    string
	role    string
	picture string
}

func newPerson(ds *DataSource, id int64) (*Person, error) {
	row, err := ds.store.GetRow(personTable, id)
	if err != nil {
		return nil, err
	}

	p := &Person{entity: entity{id: id, table: personTable, ds: ds}}
	p.owner = p
	p.name = decodeString(row["name"])
	p.role = decodeString(row["role"])
	p.picture = decodeString(row["picture"])
	return p, nil
}

// Name returns the cached name.
func (p *Person) Name() string { return p.name }

// SetName writes the name through to the store.
func (p *Person) SetName(v string) error {
	return p.setColumn("Name", "name", encodeString(v), func() { p.name = v })
}

// Role returns the cached role.
func (p *Person) Role() string { return p.role }

// SetRole writes the role through to the store.
func (p *Person) SetRole(v string) error {
	return p.setColumn("Role", "role", encodeString(v), func() { p.role = v })
}

// Picture returns the cached picture reference.
func (p *Person) Picture() string { return p.picture }

// SetPicture writes the picture reference through to the store.
func (p *Person) SetPicture(v string) error {
	return p.setColumn("Picture", "picture", encodeString(v), func() { p.picture = v })
}
