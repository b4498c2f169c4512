package recordcounter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriteLineCountsRecordsPerStream(t *testing.T) {
	c := New()
	c.WriteLine([]byte(`{"type":"RECORD","stream":"animals","record":{"id":1}}`))
	c.WriteLine([]byte(`{"type":"RECORD","stream":"animals","record":{"id":2}}`))
	c.WriteLine([]byte(`{"type":"RECORD","stream":"plants","record":{"id":1}}`))

	assert.Equal(t, map[string]int{"animals": 2, "plants": 1}, c.Counts())
}

func TestWriteLineIgnoresNonRecordMessages(t *testing.T) {
	c := New()
	c.WriteLine([]byte(`{"type":"SCHEMA","stream":"animals"}`))
	c.WriteLine([]byte(`{"type":"STATE","value":{}}`))

	assert.Empty(t, c.Counts())
}

func TestWriteLineSwallowsParseFailures(t *testing.T) {
	c := New()
	c.WriteLine([]byte(`not json`))
	c.WriteLine([]byte(``))

	assert.Empty(t, c.Counts())
}

func TestWriteLineIgnoresRecordWithoutStream(t *testing.T) {
	c := New()
	c.WriteLine([]byte(`{"type":"RECORD"}`))

	assert.Empty(t, c.Counts())
}

func TestReset(t *testing.T) {
	c := New()
	c.WriteLine([]byte(`{"type":"RECORD","stream":"animals"}`))
	c.Reset()

	assert.Empty(t, c.Counts())
}
