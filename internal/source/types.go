package source

type (
	// FileID uniquely identifies a Flint source file within a FileSet.
	FileID uint32
)

// NoFile marks spans of synthesized nodes that have no place in a source file.
const NoFile FileID = ^FileID(0)

// Pos is a human-readable position in a Flint source file.
type Pos struct {
	Line uint32 // 1-based
	Col  uint32 // 1-based
}

// Less reports whether p comes strictly before other.
func (p Pos) Less(other Pos) bool {
	if p.Line != other.Line {
		return p.Line < other.Line
	}
	return p.Col < other.Col
}

// IsZero reports whether the position was never set.
func (p Pos) IsZero() bool {
	return p.Line == 0 && p.Col == 0
}
