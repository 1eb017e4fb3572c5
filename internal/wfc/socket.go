package wfc

import "fmt"

// SocketID identifies a socket in a SocketDirectory.
type SocketID int

// SocketDirectory is the ordered catalog of sockets plus the compatibility
// relation between them. It is read-only once built and may be shared by
// solves running on different graphs.
type SocketDirectory struct {
	names  []string
	index  map[string]SocketID
	compat [][]bool
}

// NewSocketDirectory builds a directory from socket names and a square
// compatibility matrix. compat[a][b] is read exactly as authored: the
// relation is not assumed to be symmetric.
func NewSocketDirectory(names []string, compat [][]bool) (*SocketDirectory, error) {
	if len(names) == 0 {
		return nil, ErrEmptyDirectory
	}
	if len(compat) != len(names) {
		return nil, fmt.Errorf("%w: %d rows for %d sockets", ErrMatrixShape, len(compat), len(names))
	}
	for i, row := range compat {
		if len(row) != len(names) {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrMatrixShape, i, len(row), len(names))
		}
	}

	d := &SocketDirectory{
		names:  make([]string, len(names)),
		index:  make(map[string]SocketID, len(names)),
		compat: make([][]bool, len(names)),
	}
	copy(d.names, names)
	for i, name := range names {
		if _, dup := d.index[name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateSocket, name)
		}
		d.index[name] = SocketID(i)
		d.compat[i] = make([]bool, len(names))
		copy(d.compat[i], compat[i])
	}
	return d, nil
}

// Len returns the number of sockets.
func (d *SocketDirectory) Len() int {
	return len(d.names)
}

// Valid reports whether id belongs to the directory.
func (d *SocketDirectory) Valid(id SocketID) bool {
	return id >= 0 && int(id) < len(d.names)
}

// Name returns the display name of a socket.
func (d *SocketDirectory) Name(id SocketID) string {
	if !d.Valid(id) {
		return fmt.Sprintf("socket(%d)", int(id))
	}
	return d.names[id]
}

// Lookup returns the id for a socket name.
func (d *SocketDirectory) Lookup(name string) (SocketID, bool) {
	id, ok := d.index[name]
	return id, ok
}

// Compatible reports compat[a][b]. Unknown ids are never compatible.
func (d *SocketDirectory) Compatible(a, b SocketID) bool {
	if !d.Valid(a) || !d.Valid(b) {
		return false
	}
	return d.compat[a][b]
}

// SocketDirectoryBuilder assembles a directory one socket and pair at a time.
type SocketDirectoryBuilder struct {
	names []string
	index map[string]SocketID
	pairs [][2]SocketID
}

// NewSocketDirectoryBuilder returns an empty builder.
func NewSocketDirectoryBuilder() *SocketDirectoryBuilder {
	return &SocketDirectoryBuilder{index: make(map[string]SocketID)}
}

// Socket registers a socket name (idempotent) and returns its id.
func (b *SocketDirectoryBuilder) Socket(name string) SocketID {
	if id, ok := b.index[name]; ok {
		return id
	}
	id := SocketID(len(b.names))
	b.names = append(b.names, name)
	b.index[name] = id
	return id
}

// Allow marks compat[a][b] as true.
func (b *SocketDirectoryBuilder) Allow(a, c string) *SocketDirectoryBuilder {
	b.pairs = append(b.pairs, [2]SocketID{b.Socket(a), b.Socket(c)})
	return b
}

// AllowBoth marks compat[a][b] and compat[b][a] as true.
func (b *SocketDirectoryBuilder) AllowBoth(a, c string) *SocketDirectoryBuilder {
	return b.Allow(a, c).Allow(c, a)
}

// Build produces the directory.
func (b *SocketDirectoryBuilder) Build() (*SocketDirectory, error) {
	compat := make([][]bool, len(b.names))
	for i := range compat {
		compat[i] = make([]bool, len(b.names))
	}
	for _, p := range b.pairs {
		compat[p[0]][p[1]] = true
	}
	return NewSocketDirectory(b.names, compat)
}
