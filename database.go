package squire

// Database describes where a database lives without opening it. The
// descriptor is inert and reusable; every call to Open or
// ConnectionBuilder.Open on the same Database yields an independent
// Connection.
type Database struct {
	location string
	memory   bool
	uri      bool
}

// Memory describes a private in-memory database. Every Connection
// opened from it sees its own empty database.
func Memory() Database {
	return Database{location: ":memory:", memory: true}
}

// NamedMemory describes a shared in-memory database. Connections opened
// from descriptors with the same name, within the same process, see the
// same data.
func NamedMemory(name string) Database {
	return Database{
		location: "file:" + name + "?mode=memory&cache=shared",
		memory:   true,
		uri:      true,
	}
}

// File describes an on-disk database at path. The path is passed to the
// engine as-is; it does not have to exist yet unless the connection is
// opened read-only or without create.
func File(path string) Database {
	return Database{location: path}
}

// URI describes a database by an engine URI filename such as
// "file:data.db?mode=ro". URI descriptors always have URI filename
// interpretation enabled regardless of the builder setting.
//
// https://www.sqlite.org/uri.html
func URI(uri string) Database {
	return Database{location: uri, uri: true}
}

// Location returns the string handed to the engine when opening.
func (d Database) Location() string { return d.location }

// InMemory reports whether the descriptor names an in-memory database.
func (d Database) InMemory() bool { return d.memory }
