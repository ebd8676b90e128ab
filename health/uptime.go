package health

import (
	"strconv"
	"strings"
	"time"
)

var uptimeUnits = []struct {
	suffix string
	size   time.Duration
}{
	{"d", 24 * time.Hour},
	{"h", time.Hour},
	{"m", time.Minute},
}

// FormatUptime renders d as "2d 1h 2m 30s", dropping leading zero units.
func FormatUptime(d time.Duration) string {
	var b strings.Builder
	for _, u := range uptimeUnits {
		n := d / u.size
		d -= n * u.size
		if n == 0 && b.Len() == 0 {
			continue
		}
		b.WriteString(strconv.FormatInt(int64(n), 10))
		b.WriteString(u.suffix)
		b.WriteByte(' ')
	}
	b.WriteString(strconv.FormatInt(int64(d/time.Second), 10))
	b.WriteByte('s')
	return b.String()
}
