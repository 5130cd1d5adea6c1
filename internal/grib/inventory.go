// Package grib implements partial retrieval of single records from remote
// GRIB2 resources: index (".idx") inventory parsing, record selection by
// variable and vertical level, and ranged byte fetching.
package grib

import (
	"bufio"
	"sort"
	"strconv"
	"strings"
)

// IndexRecord is one entry from a wgrib-style "short" index: one named,
// leveled record inside the remote binary resource, addressable by a byte
// range. ByteEnd is nil for the final record in an inventory, meaning
// "to end of resource".
type IndexRecord struct {
	Sequence  int    `json:"sequence"`
	ByteStart int64  `json:"byte_start"`
	ByteEnd   *int64 `json:"byte_end,omitempty"`
	Variable  string `json:"variable"`
	Level     string `json:"level"`
	Forecast  string `json:"forecast"`
	RawLine   string `json:"-"`
}

// Inventory is an ordered sequence of index records in file order. File
// order is load-bearing: byte ranges are derived from the following
// record's offset, and selection is first-match-wins.
type Inventory []IndexRecord

// Minimum number of colon-delimited fields a usable index line carries:
// sequence, byte offset, date, variable, level, forecast and one trailing
// column.
const minIndexFields = 7

// ParseInventory parses the raw text of an index resource. Lines with
// fewer than the minimum column count, or with non-numeric sequence or
// offset fields, are skipped rather than treated as fatal: real-world
// index files contain the occasional malformed line and a single bad
// record must not make the whole resource unreachable.
func ParseInventory(text string) Inventory {
	var inventory Inventory

	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		fields := strings.Split(line, ":")
		if len(fields) < minIndexFields {
			continue
		}

		seq, err := strconv.Atoi(fields[0])
		if err != nil {
			continue
		}
		offset, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			continue
		}

		rec := IndexRecord{
			Sequence:  seq,
			ByteStart: offset,
			Variable:  fields[3],
			Level:     fields[4],
			Forecast:  fields[5],
			RawLine:   line,
		}

		// The previous record extends up to the byte before this one.
		if n := len(inventory); n > 0 {
			end := rec.ByteStart - 1
			inventory[n-1].ByteEnd = &end
		}

		inventory = append(inventory, rec)
	}

	return inventory
}

// Variables returns the sorted distinct variable codes in the inventory.
func (inv Inventory) Variables() []string {
	seen := make(map[string]bool)
	var codes []string
	for _, rec := range inv {
		if !seen[rec.Variable] {
			seen[rec.Variable] = true
			codes = append(codes, rec.Variable)
		}
	}
	sort.Strings(codes)
	return codes
}

// LevelsFor returns the level descriptors recorded for a variable code,
// in file order. Used as diagnostic context when selection fails.
func (inv Inventory) LevelsFor(code string) []string {
	var levels []string
	for _, rec := range inv {
		if rec.Variable == code {
			levels = append(levels, rec.Level)
		}
	}
	return levels
}
