package fixtures

import (
	"strings"

	"github.com/google/uuid"
)

// uniqueSuffixLength keeps generated point names well below the Data Archive limit
const uniqueSuffixLength = 16

// UniqueName returns prefix followed by a random suffix, so entities created by concurrent
// runs against the same server never collide.
func UniqueName(prefix string) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:uniqueSuffixLength]
	if prefix == "" {
		return suffix
	}
	return prefix + "_" + suffix
}
