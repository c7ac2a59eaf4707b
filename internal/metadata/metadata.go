// internal/metadata/metadata.go
package metadata

import (
	"bytes"
	"encoding/binary"
)

// RawGPSTagSet is the as-parsed GPS information group for one file. The
// latitude/longitude triples are degrees, minutes, seconds; references are
// the raw ASCII bytes from the container ('N'/'S', 'E'/'W'). Altitude is
// optional; AltitudeRef 1 means below sea level.
type RawGPSTagSet struct {
	Latitude     [3]Rational
	LatitudeRef  byte
	Longitude    [3]Rational
	LongitudeRef byte
	Altitude     *Rational
	AltitudeRef  byte
}

// TIFF field types and their encoded sizes in bytes.
const (
	typeByte     = 1
	typeASCII    = 2
	typeShort    = 3
	typeLong     = 4
	typeRational = 5
)

var typeSizes = map[uint16]int{
	1: 1, 2: 1, 3: 2, 4: 4, 5: 8, 6: 1, 7: 1, 8: 2, 9: 4, 10: 8, 11: 4, 12: 8,
}

// Tags of interest.
const (
	tagGPSIFDPointer = 0x8825

	gpsTagLatitudeRef  = 0x0001
	gpsTagLatitude     = 0x0002
	gpsTagLongitudeRef = 0x0003
	gpsTagLongitude    = 0x0004
	gpsTagAltitudeRef  = 0x0005
	gpsTagAltitude     = 0x0006
)

var jpegSOI = []byte{0xFF, 0xD8, 0xFF}

// DecodeGPS parses the metadata container embedded in an image byte stream
// and extracts its GPS information group. File extension plays no part:
// recognition is by binary signature (JPEG with an Exif APP1 segment, or a
// raw TIFF stream). Returns ErrNoContainer when no container is recognized,
// ErrNoGPSGroup when the container carries no usable GPS group, and a
// CorruptedError when the container is structurally broken. Never reads past
// the end of data.
func DecodeGPS(data []byte) (*RawGPSTagSet, error) {
	tiff, err := findContainer(data)
	if err != nil {
		return nil, err
	}
	return decodeTIFF(tiff)
}

// findContainer locates the TIFF-structured metadata block. For JPEG that is
// the payload of the Exif APP1 segment; a raw TIFF stream is the block
// itself.
func findContainer(data []byte) ([]byte, error) {
	if isTIFF(data) {
		return data, nil
	}
	if !bytes.HasPrefix(data, jpegSOI) {
		return nil, ErrNoContainer
	}

	// Walk the JPEG segment chain looking for APP1/Exif. The chain ends at
	// the start-of-scan marker; entropy-coded data follows and holds no
	// metadata segments.
	off := 2
	for off+2 <= len(data) {
		if data[off] != 0xFF {
			return nil, newCorrupted("invalid JPEG marker byte 0x%02X at offset %d", data[off], off)
		}
		marker := data[off+1]
		switch {
		case marker == 0xFF:
			// Fill byte before a marker.
			off++
			continue
		case marker == 0x01 || (marker >= 0xD0 && marker <= 0xD7):
			// Standalone markers carry no length.
			off += 2
			continue
		case marker == 0xD9 || marker == 0xDA:
			return nil, ErrNoContainer
		}
		if off+4 > len(data) {
			return nil, newCorrupted("truncated JPEG segment header at offset %d", off)
		}
		segLen := int(binary.BigEndian.Uint16(data[off+2 : off+4]))
		if segLen < 2 || off+2+segLen > len(data) {
			return nil, newCorrupted("truncated JPEG segment at offset %d", off)
		}
		if marker == 0xE1 {
			payload := data[off+4 : off+2+segLen]
			if bytes.HasPrefix(payload, []byte("Exif\x00\x00")) {
				return payload[6:], nil
			}
		}
		off += 2 + segLen
	}
	return nil, ErrNoContainer
}

func isTIFF(data []byte) bool {
	if len(data) < 4 {
		return false
	}
	if data[0] == 'I' && data[1] == 'I' && data[2] == 0x2A && data[3] == 0x00 {
		return true
	}
	if data[0] == 'M' && data[1] == 'M' && data[2] == 0x00 && data[3] == 0x2A {
		return true
	}
	return false
}

// ifdEntry is one row of an IFD offset table.
type ifdEntry struct {
	tag   uint16
	typ   uint16
	count uint32
	raw   [4]byte // inline value or offset to the value
}

// decoder holds the TIFF block and its declared byte order. The byte-order
// marker at the start of the block governs every subsequent multi-byte
// integer read.
type decoder struct {
	tiff []byte
	bo   binary.ByteOrder
}

func decodeTIFF(tiff []byte) (*RawGPSTagSet, error) {
	if len(tiff) < 8 {
		return nil, newCorrupted("truncated TIFF header: %d bytes", len(tiff))
	}

	d := &decoder{tiff: tiff}
	switch {
	case tiff[0] == 'I' && tiff[1] == 'I':
		d.bo = binary.LittleEndian
	case tiff[0] == 'M' && tiff[1] == 'M':
		d.bo = binary.BigEndian
	default:
		return nil, newCorrupted("invalid byte-order marker %q", string(tiff[:2]))
	}
	if d.bo.Uint16(tiff[2:4]) != 42 {
		return nil, newCorrupted("bad TIFF magic number")
	}

	ifd0, err := d.readIFD(d.bo.Uint32(tiff[4:8]))
	if err != nil {
		return nil, err
	}

	gpsOffset, found, err := d.gpsPointer(ifd0)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNoGPSGroup
	}

	gps, err := d.readIFD(gpsOffset)
	if err != nil {
		return nil, err
	}
	return d.gpsTagSet(gps)
}

// readIFD reads the entry table at the given offset. A table that extends
// past the end of the block is corrupted as a whole.
func (d *decoder) readIFD(offset uint32) ([]ifdEntry, error) {
	off := int(offset)
	if off < 0 || off+2 > len(d.tiff) {
		return nil, newCorrupted("IFD offset %d out of range", offset)
	}
	count := int(d.bo.Uint16(d.tiff[off : off+2]))
	base := off + 2
	if base+count*12 > len(d.tiff) {
		return nil, newCorrupted("IFD at offset %d declares %d entries past end of buffer", offset, count)
	}

	entries := make([]ifdEntry, 0, count)
	for i := 0; i < count; i++ {
		p := base + i*12
		e := ifdEntry{
			tag:   d.bo.Uint16(d.tiff[p : p+2]),
			typ:   d.bo.Uint16(d.tiff[p+2 : p+4]),
			count: d.bo.Uint32(d.tiff[p+4 : p+8]),
		}
		copy(e.raw[:], d.tiff[p+8:p+12])
		entries = append(entries, e)
	}
	return entries, nil
}

// valueBytes resolves an entry's value, inline or pointed-to. Declared types
// or counts that would read beyond the buffer corrupt that entry only.
func (d *decoder) valueBytes(e ifdEntry) ([]byte, error) {
	size, ok := typeSizes[e.typ]
	if !ok {
		return nil, newCorrupted("unknown field type %d for tag 0x%04X", e.typ, e.tag)
	}
	// Multiply in uint64: size*count can overflow int on 32-bit platforms
	// and slip past the bounds check.
	total64 := uint64(size) * uint64(e.count)
	if total64 > uint64(len(d.tiff)) {
		return nil, newCorrupted("tag 0x%04X declares %d bytes of values", e.tag, total64)
	}
	total := int(total64)
	if total <= 4 {
		return e.raw[:total], nil
	}
	off := int(d.bo.Uint32(e.raw[:]))
	if off < 0 || off+total > len(d.tiff) {
		return nil, newCorrupted("tag 0x%04X value offset %d out of range", e.tag, off)
	}
	return d.tiff[off : off+total], nil
}

// gpsPointer returns the offset of the GPS sub-IFD from IFD0, if declared.
// A pointer entry that cannot be resolved is corruption, not absence.
func (d *decoder) gpsPointer(ifd0 []ifdEntry) (uint32, bool, error) {
	for _, e := range ifd0 {
		if e.tag != tagGPSIFDPointer {
			continue
		}
		if (e.typ != typeLong && e.typ != typeShort) || e.count != 1 {
			return 0, false, newCorrupted("malformed GPS IFD pointer (type %d, count %d)", e.typ, e.count)
		}
		v, err := d.valueBytes(e)
		if err != nil {
			return 0, false, err
		}
		if e.typ == typeShort {
			return uint32(d.bo.Uint16(v)), true, nil
		}
		return d.bo.Uint32(v), true, nil
	}
	return 0, false, nil
}

// gpsTagSet assembles the tag set from a parsed GPS IFD. Corruption in one
// entry does not stop the others from decoding, but a group whose required
// tags (both triples and both references) cannot all be recovered is
// reported corrupted; a group with no positional tags at all is absent.
func (d *decoder) gpsTagSet(entries []ifdEntry) (*RawGPSTagSet, error) {
	var (
		ts                                       RawGPSTagSet
		haveLat, haveLon, haveLatRef, haveLonRef bool
		positional                               bool
		firstErr                                 error
	)
	keep := func(err error) {
		if firstErr == nil {
			firstErr = err
		}
	}

	for _, e := range entries {
		switch e.tag {
		case gpsTagLatitudeRef, gpsTagLongitudeRef:
			positional = true
			ref, err := d.asciiByte(e)
			if err != nil {
				keep(err)
				continue
			}
			if e.tag == gpsTagLatitudeRef {
				ts.LatitudeRef = ref
				haveLatRef = true
			} else {
				ts.LongitudeRef = ref
				haveLonRef = true
			}
		case gpsTagLatitude, gpsTagLongitude:
			positional = true
			triple, err := d.rationalTriple(e)
			if err != nil {
				keep(err)
				continue
			}
			if e.tag == gpsTagLatitude {
				ts.Latitude = triple
				haveLat = true
			} else {
				ts.Longitude = triple
				haveLon = true
			}
		case gpsTagAltitudeRef:
			if v, err := d.valueBytes(e); err == nil && e.typ == typeByte && len(v) >= 1 {
				ts.AltitudeRef = v[0]
			}
		case gpsTagAltitude:
			r, err := d.rationals(e, 1)
			if err != nil {
				// Altitude is optional; a broken value drops it.
				continue
			}
			ts.Altitude = &r[0]
		}
	}

	if !positional {
		return nil, ErrNoGPSGroup
	}
	if !haveLat || !haveLon || !haveLatRef || !haveLonRef {
		if firstErr != nil {
			return nil, firstErr
		}
		return nil, newCorrupted("incomplete GPS tag set")
	}
	return &ts, nil
}

func (d *decoder) asciiByte(e ifdEntry) (byte, error) {
	if e.typ != typeASCII || e.count < 1 {
		return 0, newCorrupted("tag 0x%04X: expected ASCII reference (type %d, count %d)", e.tag, e.typ, e.count)
	}
	v, err := d.valueBytes(e)
	if err != nil {
		return 0, err
	}
	return v[0], nil
}

func (d *decoder) rationalTriple(e ifdEntry) ([3]Rational, error) {
	var triple [3]Rational
	rs, err := d.rationals(e, 3)
	if err != nil {
		return triple, err
	}
	copy(triple[:], rs)
	return triple, nil
}

func (d *decoder) rationals(e ifdEntry, want int) ([]Rational, error) {
	if e.typ != typeRational || int(e.count) < want {
		return nil, newCorrupted("tag 0x%04X: expected %d rationals (type %d, count %d)", e.tag, want, e.typ, e.count)
	}
	v, err := d.valueBytes(e)
	if err != nil {
		return nil, err
	}
	rs := make([]Rational, want)
	for i := range rs {
		rs[i] = Rational{
			Num: d.bo.Uint32(v[i*8 : i*8+4]),
			Den: d.bo.Uint32(v[i*8+4 : i*8+8]),
		}
		if rs[i].Den == 0 {
			return nil, newCorrupted("tag 0x%04X: zero denominator", e.tag)
		}
	}
	return rs, nil
}
