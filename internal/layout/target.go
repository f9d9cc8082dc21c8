package layout

// Target describes the word size of a backend. Sizes and offsets are always
// counted in words; WordBytes only matters when a backend needs bytes.
type Target struct {
	Name      string
	WordBytes int
}

// EVM is the word-storage target: 32-byte words, storage slots.
func EVM() Target {
	return Target{Name: "evm", WordBytes: 32}
}

// Move is the resource-ownership target: u64 words.
func Move() Target {
	return Target{Name: "move", WordBytes: 8}
}

// Targets lists every supported target in a stable order.
func Targets() []Target {
	return []Target{EVM(), Move()}
}

// TargetByName returns the target with the given name.
func TargetByName(name string) (Target, bool) {
	for _, t := range Targets() {
		if t.Name == name {
			return t, true
		}
	}
	return Target{}, false
}
