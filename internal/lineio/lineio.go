// Package lineio splits a byte stream into newline-terminated lines for the
// runner's capture tasks (tap stdout → record counter, target stdout → state
// writer, both stderr streams → log sinks).
//
// The carry-over-partial-line shape is grounded on livelog.Writer's
// split/splitLast buffering (livelog/livelog.go), simplified down to a plain
// forward scan since this package never ships partial lines upstream — it
// only needs to know where one Singer message ends and the next begins.
package lineio

import (
	"bufio"
	"io"
)

// defaultMaxLine is generous: Singer SCHEMA/RECORD messages can carry large
// nested payloads and must never be truncated silently.
const defaultMaxLine = 64 * 1024 * 1024

// ForEach calls fn once per newline-terminated line read from r, stripping
// the trailing "\n" (and a preceding "\r", if present). It returns when r is
// exhausted or fn returns an error.
func ForEach(r io.Reader, fn func(line []byte) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), defaultMaxLine)

	for scanner.Scan() {
		if err := fn(scanner.Bytes()); err != nil {
			return err
		}
	}
	return scanner.Err()
}
