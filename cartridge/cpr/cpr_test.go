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

package cpr_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/jetsetilly/cpr2bin/cartridge"
	"github.com/jetsetilly/cpr2bin/cartridge/cpr"
	"github.com/jetsetilly/cpr2bin/curated"
	"github.com/jetsetilly/cpr2bin/test"
)

// chunk builds a single chunk with the declared size field. the declared
// size and the actual payload length can differ, which is useful for
// building truncated containers.
func chunk(tag string, declaredSize int, payload []byte) []byte {
	b := &bytes.Buffer{}
	b.WriteString(tag)
	var size [4]byte
	binary.LittleEndian.PutUint32(size[:], uint32(declaredSize))
	b.Write(size[:])
	b.Write(payload)
	return b.Bytes()
}

// container wraps chunks in a RIFF/AMS! envelope with a correct total size
// field.
func container(chunks ...[]byte) []byte {
	totalSize := 4
	for _, c := range chunks {
		totalSize += len(c)
	}

	b := &bytes.Buffer{}
	b.WriteString("RIFF")
	var size [4]byte
	binary.LittleEndian.PutUint32(size[:], uint32(totalSize))
	b.Write(size[:])
	b.WriteString("AMS!")
	for _, c := range chunks {
		b.Write(c)
	}
	return b.Bytes()
}

func fill(n int, v byte) []byte {
	d := make([]byte, n)
	for i := range d {
		d[i] = v
	}
	return d
}

func expectBanks(t *testing.T, banks cartridge.Banks, expected cartridge.Banks) {
	t.Helper()
	test.DemandEquality(t, len(banks), len(expected))
	for i, d := range expected {
		test.ExpectEqualityBytes(t, banks[i], d)
	}
}

func TestDecodeNotARIFFFile(t *testing.T) {
	b := container()
	copy(b, "RIFG")

	_, err := cpr.Decode(bytes.NewReader(b))
	test.ExpectFailure(t, err)
	test.ExpectSuccess(t, curated.Is(err, cpr.NotARIFFFile))
}

func TestDecodeNotACPRFile(t *testing.T) {
	b := container()
	copy(b[8:], "WAVE")

	_, err := cpr.Decode(bytes.NewReader(b))
	test.ExpectFailure(t, err)
	test.ExpectSuccess(t, curated.Is(err, cpr.NotACPRFile))
}

func TestDecodeTruncated(t *testing.T) {
	// not even a complete envelope header
	_, err := cpr.Decode(bytes.NewReader([]byte("RIFF\x04\x00")))
	test.ExpectSuccess(t, curated.Is(err, cpr.UnexpectedEOF))

	// chunk declares more payload than the stream holds
	b := container(chunk("cb00", 100, fill(50, 0xaa)))
	_, err = cpr.Decode(bytes.NewReader(b))
	test.ExpectSuccess(t, curated.Is(err, cpr.UnexpectedEOF))
}

func TestDecodeEmptyContainer(t *testing.T) {
	banks, err := cpr.Decode(bytes.NewReader(container()))
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, len(banks), 0)

	// a container with only unrecognised chunks is also empty
	banks, err = cpr.Decode(bytes.NewReader(container(chunk("LIST", 5, fill(5, 0x01)))))
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, len(banks), 0)
}

func TestDecodeSkipsOtherChunks(t *testing.T) {
	bank0 := fill(16384, 0x11)
	bank1 := fill(16384, 0x22)

	with := container(
		chunk("cb00", len(bank0), bank0),
		chunk("LIST", 5, fill(5, 0x99)),
		chunk("cb01", len(bank1), bank1),
	)
	without := container(
		chunk("cb00", len(bank0), bank0),
		chunk("cb01", len(bank1), bank1),
	)

	banksWith, err := cpr.Decode(bytes.NewReader(with))
	test.DemandSuccess(t, err)
	banksWithout, err := cpr.Decode(bytes.NewReader(without))
	test.DemandSuccess(t, err)

	expectBanks(t, banksWith, banksWithout)
	expectBanks(t, banksWith, cartridge.Banks{0: bank0, 1: bank1})
}

func TestDecodeNoChunkPadding(t *testing.T) {
	// unlike generic RIFF there is no padding of odd-length chunks. the
	// second chunk header starts immediately after the 3 byte payload of the
	// first
	b := container(
		chunk("cb00", 3, fill(3, 0xab)),
		chunk("cb01", 4, fill(4, 0xcd)),
	)

	banks, err := cpr.Decode(bytes.NewReader(b))
	test.DemandSuccess(t, err)
	expectBanks(t, banks, cartridge.Banks{0: fill(3, 0xab), 1: fill(4, 0xcd)})
}

func TestDecodeOversizedChunk(t *testing.T) {
	// a chunk declaring 20000 bytes yields a bank of exactly 16384 bytes.
	// the excess 3616 bytes are skipped and the following chunk decodes
	// normally
	payload := append(fill(16384, 0xaa), fill(20000-16384, 0xbb)...)
	b := container(
		chunk("cb00", 20000, payload),
		chunk("cb01", 4, fill(4, 0xcd)),
	)

	r := bytes.NewReader(b)
	banks, err := cpr.Decode(r)
	test.DemandSuccess(t, err)

	expectBanks(t, banks, cartridge.Banks{0: fill(16384, 0xaa), 1: fill(4, 0xcd)})

	// the decoder should have consumed the container exactly
	test.ExpectEquality(t, r.Len(), 0)
}

func TestDecodeTrailingBytes(t *testing.T) {
	// bytes beyond the declared total size are not read
	b := container(chunk("cb00", 4, fill(4, 0x55)))
	b = append(b, fill(10, 0xff)...)

	r := bytes.NewReader(b)
	banks, err := cpr.Decode(r)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, len(banks), 1)
	test.ExpectEquality(t, r.Len(), 10)
}

func TestDecodeDuplicateIndex(t *testing.T) {
	// the last chunk for an index wins
	b := container(
		chunk("cb07", 4, fill(4, 0x01)),
		chunk("cb07", 4, fill(4, 0x02)),
	)

	banks, err := cpr.Decode(bytes.NewReader(b))
	test.DemandSuccess(t, err)
	expectBanks(t, banks, cartridge.Banks{7: fill(4, 0x02)})
}

func TestDecodeMalformedBlockTag(t *testing.T) {
	b := container(chunk("cbx1", 4, fill(4, 0x01)))

	_, err := cpr.Decode(bytes.NewReader(b))
	test.ExpectFailure(t, err)
	test.ExpectSuccess(t, curated.Is(err, cpr.MalformedBlockTag))
}

func TestEncode(t *testing.T) {
	banks := cartridge.Banks{
		0: fill(16384, 0x00),
		1: fill(100, 0xff),
	}

	b := cpr.Encode(banks)

	// envelope header plus an 8 byte header for each chunk
	test.DemandEquality(t, len(b), 12+(8+16384)+(8+100))

	// total size counts everything after the size field itself
	test.ExpectEquality(t, binary.LittleEndian.Uint32(b[4:8]), uint32(4+(8+16384)+(8+100)))

	test.ExpectEquality(t, string(b[:4]), "RIFF")
	test.ExpectEquality(t, string(b[8:12]), "AMS!")

	// first chunk: tag, size (16384 little-endian), data
	test.ExpectEquality(t, string(b[12:16]), "cb00")
	test.ExpectEqualityBytes(t, b[16:20], []byte{0x00, 0x40, 0x00, 0x00})

	// second chunk follows immediately
	test.ExpectEquality(t, string(b[16404:16408]), "cb01")
	test.ExpectEquality(t, binary.LittleEndian.Uint32(b[16408:16412]), uint32(100))

	// final 100 bytes are the second bank's data
	test.ExpectEqualityBytes(t, b[len(b)-100:], fill(100, 0xff))
}

func TestRoundTrip(t *testing.T) {
	banks := cartridge.Banks{
		0:  fill(16384, 0x3c),
		3:  fill(1000, 0x5a),
		31: fill(16384, 0xa5),
		99: fill(1, 0x01),
	}

	decoded, err := cpr.Decode(bytes.NewReader(cpr.Encode(banks)))
	test.DemandSuccess(t, err)
	expectBanks(t, decoded, banks)
}

func TestImageRoundTrip(t *testing.T) {
	// flat image -> banks -> container -> banks -> flat image. the result is
	// the original image zero padded to a whole number of banks
	image := make([]byte, 40000)
	for i := range image {
		image[i] = byte(i)
	}

	split, err := cartridge.Split(image)
	test.DemandSuccess(t, err)

	banks, err := cpr.Decode(bytes.NewReader(cpr.Encode(split)))
	test.DemandSuccess(t, err)

	expected := make([]byte, 3*cartridge.BankSize)
	copy(expected, image)
	test.ExpectEqualityBytes(t, banks.Assemble(), expected)
}
