// ABOUTME: Generates tagged MP3, AIFF and FLAC fixture files for tests
// ABOUTME: Writes real ID3v2 tags and Vorbis comments so readers are exercised end to end

// Package testaudio writes small tagged audio files into test directories.
package testaudio

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/bogem/id3v2"
)

// Fields describes the tags of a fixture file
type Fields struct {
	Title    string
	Artist   string
	Comments []string
}

// fake MPEG frame header followed by silence
var mpegPayload = append([]byte{0xFF, 0xFB, 0x90, 0x64}, make([]byte, 412)...)

// ID3 returns the encoded ID3v2 tag for f
func ID3(t testing.TB, f Fields) []byte {
	t.Helper()

	tag := id3v2.NewEmptyTag()
	tag.SetDefaultEncoding(id3v2.EncodingUTF8)

	if f.Title != "" {
		tag.SetTitle(f.Title)
	}

	if f.Artist != "" {
		tag.SetArtist(f.Artist)
	}

	// Comment frames are unique per description, so number them
	for i, text := range f.Comments {
		tag.AddCommentFrame(id3v2.CommentFrame{
			Encoding:    id3v2.EncodingUTF8,
			Language:    "eng",
			Description: "c" + strconv.Itoa(i),
			Text:        text,
		})
	}

	var buf bytes.Buffer
	if _, err := tag.WriteTo(&buf); err != nil {
		t.Fatalf("failed to encode ID3 tag: %v", err)
	}

	return buf.Bytes()
}

// MP3 writes an MP3 file with the given tags at dir/name and returns its path
func MP3(t testing.TB, dir, name string, f Fields) string {
	t.Helper()

	data := append(ID3(t, f), mpegPayload...)

	return write(t, dir, name, data)
}

// AIFF writes an AIFF file carrying the tags in an "ID3 " chunk
func AIFF(t testing.TB, dir, name string, f Fields) string {
	t.Helper()

	var body bytes.Buffer
	body.WriteString("AIFF")

	// COMM chunk: 1 channel, 0 frames, 16 bit, 44.1kHz as 80-bit float
	comm := []byte{0, 1, 0, 0, 0, 0, 0, 16, 0x40, 0x0E, 0xAC, 0x44, 0, 0, 0, 0, 0, 0}
	writeChunk(&body, "COMM", comm)
	writeChunk(&body, "ID3 ", ID3(t, f))

	var file bytes.Buffer
	file.WriteString("FORM")
	_ = binary.Write(&file, binary.BigEndian, uint32(body.Len()))
	file.Write(body.Bytes())

	return write(t, dir, name, file.Bytes())
}

// FLACTags returns a FLAC stream header: a zeroed STREAMINFO block followed by
// a VORBIS_COMMENT block holding entries, each "KEY=value"
func FLACTags(entries ...string) []byte {
	var comments bytes.Buffer

	vendor := "testaudio"
	_ = binary.Write(&comments, binary.LittleEndian, uint32(len(vendor)))
	comments.WriteString(vendor)
	_ = binary.Write(&comments, binary.LittleEndian, uint32(len(entries)))

	for _, entry := range entries {
		_ = binary.Write(&comments, binary.LittleEndian, uint32(len(entry)))
		comments.WriteString(entry)
	}

	var buf bytes.Buffer

	buf.WriteString("fLaC")
	writeFLACBlock(&buf, 0, false, make([]byte, 34))
	writeFLACBlock(&buf, 4, true, comments.Bytes())

	return buf.Bytes()
}

// FLAC writes a FLAC file carrying the Vorbis comment entries
func FLAC(t testing.TB, dir, name string, entries ...string) string {
	t.Helper()

	return write(t, dir, name, FLACTags(entries...))
}

// writeFLACBlock writes a metadata block header (last flag, type, 24-bit length) and data
func writeFLACBlock(buf *bytes.Buffer, blockType byte, last bool, data []byte) {
	if last {
		blockType |= 0x80
	}

	n := len(data)
	buf.Write([]byte{blockType, byte(n >> 16), byte(n >> 8), byte(n)})
	buf.Write(data)
}

// Raw writes arbitrary bytes, for corrupted or untagged fixtures
func Raw(t testing.TB, dir, name string, data []byte) string {
	t.Helper()

	return write(t, dir, name, data)
}

func writeChunk(buf *bytes.Buffer, id string, data []byte) {
	buf.WriteString(id)
	_ = binary.Write(buf, binary.BigEndian, uint32(len(data)))
	buf.Write(data)

	if len(data)%2 == 1 {
		buf.WriteByte(0)
	}
}

func write(t testing.TB, dir, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create fixture directory: %v", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	return path
}
