package lines

import "regexp"

// defaultTimestampPatterns match a timestamp at the start of a line. More
// specific patterns come first.
var defaultTimestampPatterns = []string{
	// Apache error log: Wed Oct 15 19:41:46.123456 2019
	`^[A-Z][a-z]{2} [A-Z][a-z]{2}\s{1,2}\d{1,2} \d{2}:\d{2}:\d{2}(\.\d{1,6})? \d{4}`,

	// ISO 8601 variants (Log4j2, Logback, Python, PostgreSQL, Docker):
	//   2024-01-15T10:30:45.123456789Z
	//   2024-01-15 10:30:45,123 UTC
	// Zone names are limited to UTC/GMT so level words like INFO stay.
	`^\[?\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}:\d{2}([.,]\d{1,9})?(Z|[+-]\d{2}:?\d{2})?(\s+(UTC|GMT))?\]?`,

	// Go log, nginx error: 2024/01/15 10:30:45.000000
	`^\d{4}/\d{2}/\d{2} \d{2}:\d{2}:\d{2}(\.\d{1,6})?`,

	// Common log format: [15/Oct/2024:10:30:45 +0200]
	`^\[?\d{2}/[A-Z][a-z]{2}/\d{4}:\d{2}:\d{2}:\d{2}\s*[+-]\d{4}\]?`,

	// Log4j DATE: 14 Nov 2017 20:30:20,434
	`^\d{1,2} [A-Z][a-z]{2} \d{4} \d{2}:\d{2}:\d{2}([.,]\d{1,3})?`,

	// Syslog: Jan  5 10:30:45
	`^[A-Z][a-z]{2}\s{1,2}\d{1,2} \d{2}:\d{2}:\d{2}`,
}

var trailingSep = regexp.MustCompile(`^[\s:|\-]*`)

func compileTimestampPatterns(patterns []string) ([]*regexp.Regexp, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		r, err := regexp.Compile(p)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, r)
	}
	return compiled, nil
}

// StripTimestamp removes a leading timestamp and the separator after it.
// The line is returned unchanged when no pattern matches or nothing would
// remain.
func StripTimestamp(line []byte, patterns []*regexp.Regexp) []byte {
	for _, re := range patterns {
		loc := re.FindIndex(line)
		if loc == nil {
			continue
		}
		rest := line[loc[1]:]
		if sep := trailingSep.FindIndex(rest); sep != nil {
			rest = rest[sep[1]:]
		}
		if len(rest) == 0 {
			return line
		}
		return rest
	}
	return line
}
