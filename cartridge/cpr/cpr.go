// This file is part of cpr2bin.
//
// cpr2bin is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// cpr2bin is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with cpr2bin.  If not, see <https://www.gnu.org/licenses/>.

// Package cpr decodes and encodes the CPR cartridge container. CPR is a RIFF
// style format with the form type "AMS!":
//
//	offset 0:  "RIFF"      (4 bytes, ASCII)
//	offset 4:  total size  (uint32, little-endian) = total bytes after this field
//	offset 8:  "AMS!"      (4 bytes, ASCII, form type)
//	offset 12: chunks      repeated until total size is reached
//
// Each chunk is a 4 byte ASCII tag, a little-endian uint32 size and then
// size bytes of payload. Cartridge banks are stored in chunks tagged "cb"
// followed by the bank index as two decimal digits ("cb00" to "cb99"). Other
// chunk types are skipped without being interpreted.
//
// Unlike generic RIFF, chunks are never padded to even byte boundaries. The
// codec must not add or expect padding or it will break compatibility with
// existing CPR files.
package cpr

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/jetsetilly/cpr2bin/cartridge"
	"github.com/jetsetilly/cpr2bin/curated"
	"github.com/jetsetilly/cpr2bin/logger"
)

// container and form type magic values.
const (
	riffTag = "RIFF"
	formTag = "AMS!"
)

// cartridge bank chunks are tagged with this prefix and a two digit index.
const bankTagPrefix = "cb"

// sentinel errors returned by the Decode() function.
const (
	NotARIFFFile      = "cpr: not a RIFF file"
	NotACPRFile       = "cpr: not a CPR file: missing AMS! identifier"
	MalformedBlockTag = "cpr: malformed cartridge block tag: %v"
	UnexpectedEOF     = "cpr: unexpected end of file: %v"
)

// Decode reads a CPR container and returns the collection of cartridge banks
// found inside it.
//
// A chunk declaring more than cartridge.BankSize bytes contributes only the
// first BankSize bytes to the bank. The remainder of the chunk is skipped. A
// repeated bank index replaces the earlier data. A container with no bank
// chunks at all decodes to an empty collection, which is not an error.
//
// On success the reader is left positioned at the end of the container as
// declared by the total size field. Trailing bytes beyond that are not read.
func Decode(r io.Reader) (cartridge.Banks, error) {
	hdr := make([]byte, 12)
	if _, err := io.ReadFull(r, hdr); err != nil {
		return nil, curated.Errorf(UnexpectedEOF, err)
	}

	if string(hdr[:4]) != riffTag {
		return nil, curated.Errorf(NotARIFFFile)
	}

	// the total size field counts every byte after itself. in other words,
	// the container ends at total size plus the 8 bytes of RIFF tag and size
	// field
	totalSize := binary.LittleEndian.Uint32(hdr[4:8])
	end := int(totalSize) + 8

	if string(hdr[8:12]) != formTag {
		return nil, curated.Errorf(NotACPRFile)
	}

	banks := make(cartridge.Banks)

	pos := len(hdr)
	chunkHdr := make([]byte, 8)

	for pos < end {
		if _, err := io.ReadFull(r, chunkHdr); err != nil {
			return nil, curated.Errorf(UnexpectedEOF, err)
		}
		pos += len(chunkHdr)

		tag := string(chunkHdr[:4])
		chunkSize := int(binary.LittleEndian.Uint32(chunkHdr[4:8]))

		// chunks other than cartridge banks are skipped, not interpreted
		if tag[:2] != bankTagPrefix {
			logger.Logf("cpr", "skipping %#v chunk (%d bytes)", tag, chunkSize)
			if err := skip(r, chunkSize); err != nil {
				return nil, curated.Errorf(UnexpectedEOF, err)
			}
			pos += chunkSize
			continue
		}

		idx, err := bankIndex(tag)
		if err != nil {
			return nil, err
		}

		n := chunkSize
		if n > cartridge.BankSize {
			n = cartridge.BankSize
		}

		data := make([]byte, n)
		if _, err := io.ReadFull(r, data); err != nil {
			return nil, curated.Errorf(UnexpectedEOF, err)
		}
		pos += n

		logger.Logf("cpr", "bank %02d: %d bytes", idx, n)

		// a repeated bank index replaces the previous data
		if _, ok := banks[idx]; ok {
			logger.Logf("cpr", "bank %02d appears more than once. using latest data", idx)
		}
		banks[idx] = data

		// anything beyond the bank size is skipped without being interpreted
		if chunkSize > cartridge.BankSize {
			logger.Logf("cpr", "bank %02d: chunk declares %d bytes. skipping the excess", idx, chunkSize)
			if err := skip(r, chunkSize-cartridge.BankSize); err != nil {
				return nil, curated.Errorf(UnexpectedEOF, err)
			}
			pos += chunkSize - cartridge.BankSize
		}
	}

	return banks, nil
}

// bankIndex extracts the bank index from a chunk tag. The index is stored as
// two decimal digits immediately after the tag prefix.
func bankIndex(tag string) (int, error) {
	if tag[2] < '0' || tag[2] > '9' || tag[3] < '0' || tag[3] > '9' {
		return 0, curated.Errorf(MalformedBlockTag, tag)
	}
	return int(tag[2]-'0')*10 + int(tag[3]-'0'), nil
}

// skip exactly n bytes of the reader.
func skip(r io.Reader, n int) error {
	_, err := io.CopyN(io.Discard, r, int64(n))
	return err
}

// Encode writes the collection of cartridge banks to a new CPR container.
//
// Banks are written in ascending index order and the data of each bank is
// written exactly as it is found in the collection. In particular, a short
// bank is not padded to the full bank size. The bank index must be no more
// than cartridge.MaxIndex for the two digit tag encoding to be unambiguous.
// Collections produced by cartridge.Split() cannot exceed that.
//
// Decode() of an Encode()d collection returns the original collection.
func Encode(banks cartridge.Banks) []byte {
	// the form type tag plus an 8 byte header for every chunk
	totalSize := len(formTag)
	for _, i := range banks.Indices() {
		totalSize += 8 + len(banks[i])
	}

	b := bytes.NewBuffer(make([]byte, 0, totalSize+8))
	size := make([]byte, 4)

	b.WriteString(riffTag)
	binary.LittleEndian.PutUint32(size, uint32(totalSize))
	b.Write(size)
	b.WriteString(formTag)

	for _, i := range banks.Indices() {
		fmt.Fprintf(b, "%s%02d", bankTagPrefix, i)
		binary.LittleEndian.PutUint32(size, uint32(len(banks[i])))
		b.Write(size)
		b.Write(banks[i])
	}

	return b.Bytes()
}
