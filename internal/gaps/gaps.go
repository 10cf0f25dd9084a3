// internal/gaps/gaps.go
package gaps

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"time"
)

// ErrNoTimestamps is returned when the input holds no parsable timestamp.
var ErrNoTimestamps = errors.New("gaps: no valid timestamps found")

var timestampField = regexp.MustCompile(`"timestamp":"(.*?)"`)

// Accepted forms, tried in order. Zoneless values are taken as UTC.
var layouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
}

const maxLine = 1 << 20

// ScanMessage selects the scanrelay log line written for each recorded scan.
const ScanMessage = `"msg":"scan recorded"`

// Report is the second-resolution coverage of a log.
// Start and End keep the offset they were logged with; Missing uses Start's.
type Report struct {
	Start   time.Time
	End     time.Time
	Seen    int         // distinct seconds present
	Missing []time.Time // ascending
}

// Analyze scans r line by line, takes the first "timestamp" field of each
// line containing match (every line when match is empty), truncates it to
// the second and lists every second in [Start, End] that never appeared.
// Unparsable values are skipped.
func Analyze(r io.Reader, match string) (Report, error) {
	seen := make(map[int64]time.Time)
	needle := []byte(match)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLine)

	for sc.Scan() {
		line := sc.Bytes()
		if len(needle) > 0 && !bytes.Contains(line, needle) {
			continue
		}
		m := timestampField.FindSubmatch(line)
		if m == nil {
			continue
		}
		t, ok := parse(string(m[1]))
		if !ok {
			continue
		}
		if _, dup := seen[t.Unix()]; !dup {
			seen[t.Unix()] = t
		}
	}
	if err := sc.Err(); err != nil {
		return Report{}, fmt.Errorf("gaps: read: %w", err)
	}
	if len(seen) == 0 {
		return Report{}, ErrNoTimestamps
	}

	secs := make([]int64, 0, len(seen))
	for s := range seen {
		secs = append(secs, s)
	}
	sort.Slice(secs, func(i, j int) bool { return secs[i] < secs[j] })

	rep := Report{
		Start: seen[secs[0]],
		End:   seen[secs[len(secs)-1]],
		Seen:  len(secs),
	}
	loc := rep.Start.Location()
	for i := 1; i < len(secs); i++ {
		for s := secs[i-1] + 1; s < secs[i]; s++ {
			rep.Missing = append(rep.Missing, time.Unix(s, 0).In(loc))
		}
	}
	return rep, nil
}

func parse(v string) (time.Time, bool) {
	for _, l := range layouts {
		if t, err := time.Parse(l, v); err == nil {
			return t.Truncate(time.Second), true
		}
	}
	return time.Time{}, false
}
