package snapshot

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
)

// Digest is the SHA-256 fingerprint of a normalized record sequence.
type Digest [sha256.Size]byte

// String returns the lowercase hex form.
func (d Digest) String() string { return hex.EncodeToString(d[:]) }

// Fingerprint hashes records in sequence order. Each record is written as
// one line with its fields in a fixed order, so equal sequences always
// produce equal digests.
func Fingerprint(records []Measurement) Digest {
	h := sha256.New()
	var line []byte
	for _, r := range records {
		line = appendCanonical(line[:0], r)
		h.Write(line)
	}
	var d Digest
	copy(d[:], h.Sum(nil))
	return d
}

func appendCanonical(b []byte, r Measurement) []byte {
	b = append(b, "from_node_id="...)
	b = strconv.AppendInt(b, r.FromNodeID, 10)
	b = append(b, ";id="...)
	b = strconv.AppendInt(b, r.SegmentID, 10)
	b = append(b, ";olr_code="...)
	b = strconv.AppendQuote(b, r.LocationCode)
	b = append(b, ";probe_count="...)
	if r.ProbeCount == nil {
		b = append(b, "null"...)
	} else {
		b = strconv.AppendUint(b, uint64(*r.ProbeCount), 10)
	}
	b = append(b, ";speed_kmh="...)
	b = strconv.AppendFloat(b, r.SpeedKMH, 'g', -1, 64)
	return append(b, '\n')
}
