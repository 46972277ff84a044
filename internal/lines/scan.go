package lines

import "bufio"

// ScanLines is bufio.ScanLines with a length cap: a line longer than max is
// returned in max sized pieces instead of failing with bufio.ErrTooLong.
// Use it with a Scanner buffer of at least max bytes.
func ScanLines(max int) bufio.SplitFunc {
	return func(data []byte, atEOF bool) (int, []byte, error) {
		advance, token, err := bufio.ScanLines(data, atEOF)
		if advance == 0 && token == nil && err == nil && len(data) >= max {
			return max, data[:max], nil
		}
		return advance, token, err
	}
}
