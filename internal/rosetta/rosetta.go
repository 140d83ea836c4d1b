// Package rosetta renders an integer in every radix the calculator reads.
package rosetta

import (
	"strconv"

	"github.com/goccy/go-json"
)

// Rosetta holds a result. Negative values render as their 64-bit two's
// complement pattern in the non-decimal radices.
type Rosetta struct {
	Num int64
}

func New(num int64) Rosetta {
	return Rosetta{Num: num}
}

func (r Rosetta) Decimal() string {
	return strconv.FormatInt(r.Num, 10)
}

func (r Rosetta) Hexadecimal() string {
	return "0x" + strconv.FormatUint(uint64(r.Num), 16)
}

func (r Rosetta) Octal() string {
	return "0o" + strconv.FormatUint(uint64(r.Num), 8)
}

func (r Rosetta) Binary() string {
	return "0b" + strconv.FormatUint(uint64(r.Num), 2)
}

type Representation struct {
	Value int64  `json:"value"`
	Dec   string `json:"dec"`
	Hex   string `json:"hex"`
	Oct   string `json:"oct"`
	Bin   string `json:"bin"`
}

func (r Rosetta) Representation() Representation {
	return Representation{
		Value: r.Num,
		Dec:   r.Decimal(),
		Hex:   r.Hexadecimal(),
		Oct:   r.Octal(),
		Bin:   r.Binary(),
	}
}

func (r Rosetta) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Representation())
}
