package flowreport

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/cashflowrisk/report"
)

var errDiskFull = errors.New("disk full")

type closer struct {
	bytes.Buffer
	closed   bool
	closeErr error
}

func (c *closer) Close() error {
	c.closed = true
	return c.closeErr
}

func TestWriteAndClose(t *testing.T) {
	t.Parallel()

	rows := []report.Row{{Leg: "aud-fixed", Kind: "COUPON", Currency: "AUD"}}

	ok := &closer{}
	require.NoError(t, writeAndClose(ok, report.FormatCSV, rows))
	assert.True(t, ok.closed)
	assert.Contains(t, ok.String(), "aud-fixed")

	failing := &closer{closeErr: errDiskFull}
	err := writeAndClose(failing, report.FormatParquet, rows)
	assert.ErrorIs(t, err, errDiskFull)

	bad := &closer{}
	err = writeAndClose(bad, "xlsx", rows)
	assert.ErrorIs(t, err, report.ErrUnsupportedFormat)
	assert.True(t, bad.closed)
}
