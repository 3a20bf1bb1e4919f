package frame

import "hash/crc32"

// frameChecksum accumulates bytes written to it (io.Writer) and reports
// their CRC32-C (Castagnoli) checksum, matching the broker's checksum
// field.
type frameChecksum struct {
	crc uint32
	set bool
}

var castagnoliTable = crc32.MakeTable(crc32.Castagnoli)

func (c *frameChecksum) Write(p []byte) (int, error) {
	if !c.set {
		c.crc = crc32.Checksum(p, castagnoliTable)
		c.set = true
	} else {
		c.crc = crc32.Update(c.crc, castagnoliTable, p)
	}
	return len(p), nil
}

func (c *frameChecksum) compute() []byte {
	b := make([]byte, 4)
	b[0] = byte(c.crc >> 24)
	b[1] = byte(c.crc >> 16)
	b[2] = byte(c.crc >> 8)
	b[3] = byte(c.crc)
	return b
}
