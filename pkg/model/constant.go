package model

import (
	"strings"

	"github.com/cockroachdb/errors"
)

type Protein string

const (
	ProteinMpro  Protein = "mpro"
	ProteinPLpro Protein = "plpro"
	ProteinRBD   Protein = "rbd"
)

type Source string

const (
	SourceGISAID  Source = "gisaid"
	SourceGenBank Source = "genbank"
)

var (
	ErrUnknownProtein = errors.New("unknown protein")
	ErrUnknownSource  = errors.New("unknown data source")
)

var (
	// Order here is the order of the protein selector.
	ALL_PROTEINS = []Protein{ProteinMpro, ProteinPLpro, ProteinRBD}

	// Results are always reported in this order.
	ALL_SOURCES = []Source{SourceGISAID, SourceGenBank}

	MAP_PROTEIN_NAME = map[Protein]string{
		ProteinMpro:  "Mpro (Main Protease)",
		ProteinPLpro: "PLpro (Papain-Like Protease)",
		ProteinRBD:   "RBD (Receptor Binding Domain)",
	}

	MAP_SOURCE_NAME = map[Source]string{
		SourceGISAID:  "GISAID",
		SourceGenBank: "GenBank",
	}
)

func ParseProtein(raw string) (Protein, error) {
	p := Protein(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := MAP_PROTEIN_NAME[p]; !ok {
		return "", errors.Wrapf(ErrUnknownProtein, "%q", raw)
	}
	return p, nil
}

func ParseSource(raw string) (Source, error) {
	s := Source(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := MAP_SOURCE_NAME[s]; !ok {
		return "", errors.Wrapf(ErrUnknownSource, "%q", raw)
	}
	return s, nil
}

func (p Protein) DisplayName() string {
	if name, ok := MAP_PROTEIN_NAME[p]; ok {
		return name
	}
	return string(p)
}

func (s Source) DisplayName() string {
	if name, ok := MAP_SOURCE_NAME[s]; ok {
		return name
	}
	return string(s)
}
