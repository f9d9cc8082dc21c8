package driver

import (
	"flintc/internal/project"
)

// IRKey derives the cache key of one lowering: H(input || target || mode).
// Any change to the input bytes, the target or the verification mode gives
// a different key.
func IRKey(input []byte, target, verification string) project.Digest {
	return project.Combine(project.Sum(input), project.Sum([]byte(target)), project.Sum([]byte(verification)))
}
