// Package importer converts a spreadsheet export of schemes into the JSON dataset
// served by the json storage driver.
package importer

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/kailas-cloud/schemefinder/internal/domain"
	"github.com/kailas-cloud/schemefinder/internal/domain/scheme"
)

// Required lists the columns every row must fill.
var Required = []string{"name", "summary", "category", "states", "applyLink"}

// RowError points at the offending spreadsheet row (1-based, header is row 1).
type RowError struct {
	Row int
	Err error
}

func (e *RowError) Error() string { return fmt.Sprintf("row %d: %v", e.Row, e.Err) }

func (e *RowError) Unwrap() error { return e.Err }

// Read parses CSV rows into validated schemes. Blank rows are skipped.
func Read(r io.Reader) ([]scheme.Scheme, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("input is empty")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if h != "" {
			cols[h] = i
		}
	}
	for _, req := range Required {
		if _, ok := cols[req]; !ok {
			return nil, fmt.Errorf("missing required column %q", req)
		}
	}

	var out []scheme.Scheme
	seen := make(map[string]int)
	for rowNum := 2; ; rowNum++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &RowError{Row: rowNum, Err: err}
		}
		if blank(rec) {
			continue
		}

		row := func(name string) string {
			i, ok := cols[name]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}

		s, err := convert(row)
		if err != nil {
			return nil, &RowError{Row: rowNum, Err: err}
		}
		if prev, dup := seen[s.ID]; dup {
			return nil, &RowError{Row: rowNum, Err: fmt.Errorf("duplicate id %q (first seen on row %d)", s.ID, prev)}
		}
		seen[s.ID] = rowNum
		out = append(out, s)
	}
	return out, nil
}

// Write encodes schemes as the indented JSON dataset.
func Write(w io.Writer, schemes []scheme.Scheme) error {
	if schemes == nil {
		schemes = []scheme.Scheme{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(schemes); err != nil {
		return fmt.Errorf("encode dataset: %w", err)
	}
	return nil
}

// MaxMinAge bounds the minimum-age column.
const MaxMinAge = 150

func convert(row func(string) string) (scheme.Scheme, error) {
	for _, req := range Required {
		if row(req) == "" {
			return scheme.Scheme{}, domain.NewValidationError(req, "is required")
		}
	}

	name := row("name")
	slug := scheme.Slugify(row("slug"))
	if slug == "" {
		slug = scheme.Slugify(name)
	}
	id := scheme.Slugify(row("id"))
	if id == "" {
		id = slug
	}

	minAge := 0
	if v := row("minAge"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return scheme.Scheme{}, domain.NewValidationError("minAge", "must be a number")
		}
		if math.IsNaN(f) || f < 0 || f > MaxMinAge {
			return scheme.Scheme{}, domain.NewValidationError("minAge", fmt.Sprintf("must be between 0 and %d", MaxMinAge))
		}
		minAge = int(f)
	}

	income := scheme.Unlimited()
	if v := row("incomeMax"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return scheme.Scheme{}, domain.NewValidationError("incomeMax", "must be a finite number")
		}
		income = scheme.Capped(math.Trunc(f))
	}

	gender := scheme.Gender(strings.ToLower(row("gender")))
	if !gender.IsValid() {
		gender = scheme.GenderAny
	}

	s := scheme.Scheme{
		ID:        id,
		Slug:      slug,
		Name:      name,
		Summary:   row("summary"),
		Category:  scheme.Category(scheme.Slugify(row("category"))),
		States:    parseStates(row("states")),
		Tags:      splitComma(row("tags")),
		Benefits:  SplitList(row("benefits")),
		Documents: SplitList(row("documents")),
		ApplyLink: row("applyLink"),
		Rules: scheme.Rules{
			MinAge:    minAge,
			IncomeMax: income,
			Gender:    gender,
		},
	}
	s.Normalize()
	if err := s.Validate(); err != nil {
		return scheme.Scheme{}, err
	}
	return s, nil
}

func parseStates(raw string) scheme.StateScope {
	if strings.EqualFold(raw, scheme.AllStatesSentinel) {
		return scheme.AllStates()
	}
	var ids []string
	for _, p := range strings.Split(raw, ",") {
		if id := scheme.Slugify(p); id != "" {
			ids = append(ids, id)
		}
	}
	return scheme.SpecificStates(ids...)
}

// SplitList splits a multi-value cell on newlines and '|'. Empty parts are dropped.
func SplitList(v string) []string {
	out := []string{}
	v = strings.ReplaceAll(v, "\r", "\n")
	for _, line := range strings.Split(v, "\n") {
		for _, p := range strings.Split(line, "|") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

func splitComma(v string) []string {
	out := []string{}
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
