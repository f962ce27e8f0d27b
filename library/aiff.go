// ABOUTME: Locates the ID3 chunk inside an AIFF/AIFC container
// ABOUTME: Hands the chunk payload to the ID3 parser used for MP3 files

package library

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/bogem/id3v2"
)

const iffHeaderSize = 12 // "FORM" + size + form type

// aiffReader reads the ID3 chunk of an AIFF file
type aiffReader struct{}

func (aiffReader) ReadTags(path string) (Tags, error) {
	file, err := os.Open(path)
	if err != nil {
		return Tags{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	chunk, err := findID3Chunk(bufio.NewReader(file))
	if err != nil {
		return Tags{}, err
	}

	// No ID3 chunk means no tags at all
	if chunk == nil {
		return Tags{}, nil
	}

	t, err := id3v2.ParseReader(chunk, id3v2.Options{Parse: true})
	if err != nil {
		return Tags{}, fmt.Errorf("%w: %w", ErrUnrecognizedContainer, err)
	}

	return tagsFromID3(t), nil
}

// findID3Chunk walks the top-level chunks of an IFF FORM and returns a reader
// limited to the ID3 chunk payload, or nil if the file has none
func findID3Chunk(r io.Reader) (io.Reader, error) {
	header := make([]byte, iffHeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("%w: short header: %w", ErrUnrecognizedContainer, err)
	}

	form := string(header[8:12])
	if string(header[0:4]) != "FORM" || (form != "AIFF" && form != "AIFC") {
		return nil, fmt.Errorf("%w: not an AIFF file", ErrUnrecognizedContainer)
	}

	chunkHeader := make([]byte, 8)

	for {
		if _, err := io.ReadFull(r, chunkHeader); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, nil
			}

			return nil, fmt.Errorf("%w: truncated chunk header: %w", ErrUnrecognizedContainer, err)
		}

		id := string(chunkHeader[0:4])
		size := int64(binary.BigEndian.Uint32(chunkHeader[4:8]))

		if id == "ID3 " || id == "id3 " {
			return io.LimitReader(r, size), nil
		}

		// Chunks are padded to an even length
		skip := size + size%2
		if _, err := io.CopyN(io.Discard, r, skip); err != nil {
			return nil, fmt.Errorf("%w: truncated %q chunk: %w", ErrUnrecognizedContainer, id, err)
		}
	}
}
