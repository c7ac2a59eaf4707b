package scanner

import (
	"bytes"
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/klanec/pic2pin/internal/locate"
	"github.com/klanec/pic2pin/internal/progress"
	"github.com/klanec/pic2pin/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// geotaggedJPEG builds a minimal JPEG whose Exif segment encodes
// 52.139277 N, 10.274595 W.
func geotaggedJPEG() []byte {
	return exifJPEG(true)
}

// plainJPEG builds a JPEG whose Exif segment has no GPS group.
func plainJPEG() []byte {
	return exifJPEG(false)
}

func exifJPEG(withGPS bool) []byte {
	bo := binary.LittleEndian
	var tiff bytes.Buffer
	tiff.WriteString("II")
	binary.Write(&tiff, bo, uint16(42))
	binary.Write(&tiff, bo, uint32(8))

	writeEntry := func(w *bytes.Buffer, tag, typ uint16, count uint32, raw []byte) {
		binary.Write(w, bo, tag)
		binary.Write(w, bo, typ)
		binary.Write(w, bo, count)
		padded := make([]byte, 4)
		copy(padded, raw)
		w.Write(padded)
	}
	rational := func(pairs ...uint32) []byte {
		var b bytes.Buffer
		for _, v := range pairs {
			binary.Write(&b, bo, v)
		}
		return b.Bytes()
	}

	if !withGPS {
		// IFD0 with a lone ImageDescription tag.
		binary.Write(&tiff, bo, uint16(1))
		writeEntry(&tiff, 0x010E, 2, 4, []byte("pic\x00"))
		binary.Write(&tiff, bo, uint32(0))
	} else {
		// IFD0 pointing at a GPS IFD at offset 26.
		binary.Write(&tiff, bo, uint16(1))
		ptr := make([]byte, 4)
		bo.PutUint32(ptr, 26)
		writeEntry(&tiff, 0x8825, 4, 1, ptr)
		binary.Write(&tiff, bo, uint32(0))

		// GPS IFD: 4 entries (2+48+4=54 bytes), values from offset 80.
		binary.Write(&tiff, bo, uint16(4))
		writeEntry(&tiff, 0x0001, 2, 2, []byte("N\x00"))
		off := make([]byte, 4)
		bo.PutUint32(off, 80)
		writeEntry(&tiff, 0x0002, 5, 3, off)
		writeEntry(&tiff, 0x0003, 2, 2, []byte("W\x00"))
		bo.PutUint32(off, 104)
		writeEntry(&tiff, 0x0004, 5, 3, off)
		binary.Write(&tiff, bo, uint32(0))

		tiff.Write(rational(52, 1, 8, 1, 213972, 10000))
		tiff.Write(rational(10, 1, 16, 1, 285420, 10000))
	}

	var jpeg bytes.Buffer
	jpeg.Write([]byte{0xFF, 0xD8})
	payload := append([]byte("Exif\x00\x00"), tiff.Bytes()...)
	jpeg.Write([]byte{0xFF, 0xE1})
	binary.Write(&jpeg, binary.BigEndian, uint16(len(payload)+2))
	jpeg.Write(payload)
	jpeg.Write([]byte{0xFF, 0xD9})
	return jpeg.Bytes()
}

func scanDir(t *testing.T, concurrency int, roots []string, recursive bool) []models.Outcome {
	t.Helper()
	ctx := context.Background()
	entries, err := locate.Files(ctx, roots, recursive)
	require.NoError(t, err)
	return New(ctx, concurrency, progress.New(false)).Scan(entries)
}

func TestScanMixedDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a-tagged.jpg"), geotaggedJPEG(), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b-plain.jpg"), plainJPEG(), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "c-notes.txt"), []byte("not a photo\n"), 0644))

	outcomes := scanDir(t, 2, []string{dir}, false)
	require.Len(t, outcomes, 3)

	tagged := outcomes[0]
	require.NotNil(t, tagged.Record, "detail: %s", tagged.Detail)
	assert.InDelta(t, 52.139277, tagged.Record.Coordinate.Latitude, 1e-6)
	assert.InDelta(t, -10.274595, tagged.Record.Coordinate.Longitude, 1e-6)
	assert.NotEmpty(t, tagged.Fingerprint)
	assert.Equal(t, tagged.Fingerprint, tagged.Record.Fingerprint)

	plain := outcomes[1]
	assert.True(t, plain.Skipped())
	assert.Equal(t, models.SkipNoGPSGroup, plain.Skip)
	// The fingerprint identifies the file even without a coordinate.
	assert.NotEmpty(t, plain.Fingerprint)

	text := outcomes[2]
	assert.True(t, text.Skipped())
	assert.Equal(t, models.SkipNoMetadataContainer, text.Skip)
}

func TestScanOrderIndependentOfConcurrency(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		var data []byte
		if name < "e" {
			data = geotaggedJPEG()
		} else {
			data = []byte("text " + name)
		}
		require.NoError(t, os.WriteFile(filepath.Join(dir, name+".jpg"), data, 0644))
	}

	sequential := scanDir(t, 1, []string{dir}, false)
	parallel := scanDir(t, 8, []string{dir}, false)

	require.Len(t, parallel, len(sequential))
	for i := range sequential {
		assert.Equal(t, sequential[i].Path, parallel[i].Path)
		assert.Equal(t, sequential[i].Skip, parallel[i].Skip)
		assert.Equal(t, sequential[i].Fingerprint, parallel[i].Fingerprint)
	}
}

func TestScanMissingPath(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.jpg"), geotaggedJPEG(), 0644))
	missing := filepath.Join(dir, "gone.jpg")

	outcomes := scanDir(t, 2, []string{missing, filepath.Join(dir, "a.jpg")}, false)
	require.Len(t, outcomes, 2)

	assert.Equal(t, models.SkipPathNotFound, outcomes[0].Skip)
	assert.Empty(t, outcomes[0].Fingerprint)
	require.NotNil(t, outcomes[1].Record)
}

func TestScanOneCorruptFileDoesNotAbort(t *testing.T) {
	dir := t.TempDir()

	// A JPEG whose Exif payload declares an invalid byte order.
	corrupt := exifJPEG(true)
	exifStart := bytes.Index(corrupt, []byte("Exif\x00\x00")) + 6
	corrupt[exifStart], corrupt[exifStart+1] = 'Z', 'Z'

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a-bad.jpg"), corrupt, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b-good.jpg"), geotaggedJPEG(), 0644))

	outcomes := scanDir(t, 2, []string{dir}, false)
	require.Len(t, outcomes, 2)
	assert.Equal(t, models.SkipCorruptedMetadata, outcomes[0].Skip)
	require.NotNil(t, outcomes[1].Record)
}
