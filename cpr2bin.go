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

// cpr2bin converts Amstrad CPC cartridge files between the CPR container
// format and flat binary ROM images.
package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jetsetilly/cpr2bin/cartridge"
	"github.com/jetsetilly/cpr2bin/cartridge/cpr"
	"github.com/jetsetilly/cpr2bin/cartridgeloader"
	"github.com/jetsetilly/cpr2bin/logger"
	"github.com/jetsetilly/cpr2bin/modalflag"
	"github.com/jetsetilly/cpr2bin/version"
)

func main() {
	md := &modalflag.Modes{Output: os.Stdout}
	md.NewArgs(os.Args[1:])
	md.AddSubModes("CPR2BIN", "BIN2CPR", "INFO", "VERSION")

	p, err := md.Parse()
	switch p {
	case modalflag.ParseHelp:
		os.Exit(0)

	case modalflag.ParseError:
		fmt.Printf("* error: %v\n", err)
		os.Exit(10)
	}

	switch md.Mode() {
	case "CPR2BIN":
		err = cprToBin(md)

	case "BIN2CPR":
		err = binToCpr(md)

	case "INFO":
		err = info(md)

	case "VERSION":
		err = showVersion(md)
	}

	if err != nil {
		fmt.Printf("* error in %s mode: %v\n", md.String(), err)
		os.Exit(20)
	}
}

// parseConversionMode handles the flags and arguments common to the
// conversion and inspection modes. returns the loaded input file.
func parseConversionMode(md *modalflag.Modes, numArgs int, argsHelp string) (cartridgeloader.Loader, bool, error) {
	log := md.AddBool("log", false, "echo debugging log to stdout")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return cartridgeloader.Loader{}, false, err
	}

	if *log {
		logger.SetEcho(os.Stdout)
	} else {
		logger.SetEcho(nil)
	}

	if len(md.RemainingArgs()) != numArgs {
		return cartridgeloader.Loader{}, false, fmt.Errorf("%s required for %s mode", argsHelp, md)
	}

	ld, err := cartridgeloader.Load(md.GetArg(0))
	if err != nil {
		return cartridgeloader.Loader{}, false, err
	}

	return ld, true, nil
}

func cprToBin(md *modalflag.Modes) error {
	md.NewMode()

	ld, ok, err := parseConversionMode(md, 2, "input and output files")
	if !ok {
		return err
	}

	banks, err := cpr.Decode(bytes.NewReader(ld.Data))
	if err != nil {
		return err
	}

	err = writeFile(md.GetArg(1), banks.Assemble())
	if err != nil {
		return err
	}

	fmt.Printf("Successfully converted %s to %s\n", md.GetArg(0), md.GetArg(1))
	fmt.Printf("Processed %d blocks of 16KB each\n", len(banks))

	return nil
}

func binToCpr(md *modalflag.Modes) error {
	md.NewMode()

	ld, ok, err := parseConversionMode(md, 2, "input and output files")
	if !ok {
		return err
	}

	banks, err := cartridge.Split(ld.Data)
	if err != nil {
		return err
	}

	err = writeFile(md.GetArg(1), cpr.Encode(banks))
	if err != nil {
		return err
	}

	fmt.Printf("Successfully converted %s to %s\n", md.GetArg(0), md.GetArg(1))
	fmt.Printf("Processed %d blocks of 16KB each\n", len(banks))

	return nil
}

func info(md *modalflag.Modes) error {
	md.NewMode()

	ld, ok, err := parseConversionMode(md, 1, "input file")
	if !ok {
		return err
	}

	banks, err := cpr.Decode(bytes.NewReader(ld.Data))
	if err != nil {
		return err
	}

	fmt.Printf("%s\n", ld.Filename)
	fmt.Printf("  SHA1: %s\n", ld.Hash)
	fmt.Printf("  %d banks\n", len(banks))
	for _, i := range banks.Indices() {
		fmt.Printf("  bank %02d: %d bytes\n", i, len(banks[i]))
	}

	return nil
}

func showVersion(md *modalflag.Modes) error {
	md.NewMode()

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	ver, rev, _ := version.Version()
	fmt.Printf("%s %s (%s)\n", version.ApplicationName, ver, rev)

	return nil
}

// writeFile writes data to a temporary file and renames it into place once
// the write has fully succeeded. A failed conversion never leaves a
// half-written file behind.
func writeFile(filename string, data []byte) error {
	// the temporary file must be in the same directory as the final file for
	// the rename to be atomic
	f, err := os.CreateTemp(filepath.Dir(filename), fmt.Sprintf(".%s.*", filepath.Base(filename)))
	if err != nil {
		return err
	}

	_, err = f.Write(data)
	if err != nil {
		f.Close()
		os.Remove(f.Name())
		return err
	}

	err = f.Close()
	if err != nil {
		os.Remove(f.Name())
		return err
	}

	err = os.Rename(f.Name(), filename)
	if err != nil {
		os.Remove(f.Name())
		return err
	}

	return nil
}
