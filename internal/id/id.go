package id

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// New produces a collision-resistant local identifier of the form
// <prefix>_<unixmilli base36>_<8 random chars>. The time component
// keeps ids roughly sortable; the random tail (drawn from a v4 UUID)
// makes collisions negligible for interactive use.
func New(prefix string) string {
	ts := strconv.FormatInt(time.Now().UnixMilli(), 36)
	r := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	return prefix + "_" + ts + "_" + r
}
