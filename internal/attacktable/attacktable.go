// Package attacktable provides the garbage-attack lookup used by
// placement rules: how many attack lines a placement sends, keyed by
// lines cleared, whether the placement was a spin, and whether the piece
// was a T.
//
// This is modeled on bgengine's internal/met package, which loads a
// match-equity table from an XML file and falls back to a built-in
// default — here the "equity table" is the spin/clear -> garbage chart
// from spec.md section 4.1, made data-driven so the T-mini-spin policy
// (see DESIGN.md) can be swapped without recompiling.
package attacktable

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"

	"github.com/yourusername/tetribot/internal/geometry"
)

// MaxCleared is the maximum number of lines a single placement can clear.
const MaxCleared = 4

// Table holds the garbage-per-clear chart for the three placement
// categories: an ordinary (non-spin) clear, a spin clear by a piece other
// than T, and a spin clear by a T piece.
type Table struct {
	Name string

	// NonSpin[n] is the garbage sent by an n-line clear with no spin.
	NonSpin [MaxCleared + 1]int32
	// NonTSpin[n] is the garbage sent by an n-line spin clear by a
	// non-T piece.
	NonTSpin [MaxCleared + 1]int32
	// TSpin[n] is the garbage sent by an n-line spin clear by a T piece.
	TSpin [MaxCleared + 1]int32

	// TSpinSingleIsMini selects the documented under-specification: a
	// one-line T-spin clear is always scored as a mini (0 garbage)
	// regardless of TSpin[1]. Default tables set this true.
	TSpinSingleIsMini bool
}

// Default returns the canonical attack table from spec.md section 4.1.
func Default() *Table {
	return &Table{
		Name:              "default",
		NonSpin:           [MaxCleared + 1]int32{0, 0, 1, 2, 4},
		NonTSpin:          [MaxCleared + 1]int32{0, 0, 1, 2, 0},
		TSpin:             [MaxCleared + 1]int32{0, 0, 4, 6, 0},
		TSpinSingleIsMini: true,
	}
}

// Garbage returns the attack lines sent by a placement that cleared
// `cleared` lines, was or was not a spin, and was or was not a T piece.
// Panics on combinations spec.md section 4.1 and section 7 declare
// impossible: cleared outside [0, MaxCleared], or a spin clearing all
// four lines at once (a tetris clear is never a spin in this ruleset).
func (t *Table) Garbage(cleared int, spin bool, piece geometry.Piece) int32 {
	if cleared < 0 || cleared > MaxCleared {
		panic(fmt.Sprintf("attacktable: impossible lines_cleared=%d", cleared))
	}
	if cleared == MaxCleared && spin {
		panic("attacktable: a spin cannot clear all four lines")
	}
	if !spin {
		return t.NonSpin[cleared]
	}
	if piece != geometry.T {
		return t.NonTSpin[cleared]
	}
	if cleared == 1 && t.TSpinSingleIsMini {
		return 0
	}
	return t.TSpin[cleared]
}

type xmlTable struct {
	XMLName           xml.Name `xml:"attack-table"`
	Name              string   `xml:"name"`
	NonSpin           []int32  `xml:"non-spin>value"`
	NonTSpin          []int32  `xml:"non-t-spin>value"`
	TSpin             []int32  `xml:"t-spin>value"`
	TSpinSingleIsMini bool     `xml:"t-spin-single-is-mini"`
}

// LoadXML reads a Table from an XML file, for callers that want to tune
// the garbage chart (e.g. to disable the T-mini-spin simplification)
// without a rebuild.
func LoadXML(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("attacktable: open %s: %w", path, err)
	}
	defer f.Close()
	return DecodeXML(f)
}

// DecodeXML reads a Table from XML on r.
func DecodeXML(r io.Reader) (*Table, error) {
	var x xmlTable
	if err := xml.NewDecoder(r).Decode(&x); err != nil {
		return nil, fmt.Errorf("attacktable: decode: %w", err)
	}
	t := &Table{Name: x.Name, TSpinSingleIsMini: x.TSpinSingleIsMini}
	if err := fillRow(&t.NonSpin, x.NonSpin); err != nil {
		return nil, err
	}
	if err := fillRow(&t.NonTSpin, x.NonTSpin); err != nil {
		return nil, err
	}
	if err := fillRow(&t.TSpin, x.TSpin); err != nil {
		return nil, err
	}
	return t, nil
}

func fillRow(dst *[MaxCleared + 1]int32, src []int32) error {
	if len(src) != MaxCleared+1 {
		return fmt.Errorf("attacktable: expected %d values, got %d", MaxCleared+1, len(src))
	}
	copy(dst[:], src)
	return nil
}
