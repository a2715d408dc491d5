// Package normalize turns raw CSV text into ordered, storage-ready records.
//
// Every cell is coerced in a fixed order: integer, then exact decimal, then
// string. Bracketed JSON arrays become lists whose elements follow the same
// rules. Rows holding a missing or infinite cell are dropped whole.
package normalize

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
)

const bom = "\uFEFF"

// Record maps a column name to its coerced value.
type Record map[string]Value

// Equal reports whether both records carry the same columns and values.
func (r Record) Equal(o Record) bool {
	if len(r) != len(o) {
		return false
	}
	for k, v := range r {
		ov, ok := o[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

// Result is the outcome of normalizing one document.
type Result struct {
	// Columns lists the header names in source order, after de-duplication.
	Columns []string
	Records []Record
	// Rows counts data rows read, kept or not.
	Rows int
	// Dropped holds the input line of every row discarded for an undefined cell.
	Dropped []int
}

// Normalizer holds per-table coercion options. The zero value is ready to use.
type Normalizer struct {
	// NumericColumns must hold integers or decimals; any other cell in them
	// fails the table with a CoercionError.
	NumericColumns []string
}

// Normalize parses raw with a zero Normalizer.
func Normalize(raw string) (Result, error) {
	return Normalizer{}.Normalize(raw)
}

// Normalize parses raw as header-first, comma-delimited CSV and returns one
// Record per fully defined row, in source order. A header with no data rows
// returns the header and ErrEmptyInput. No partial result accompanies any
// other error.
func (n Normalizer) Normalize(raw string) (Result, error) {
	if !utf8.ValidString(raw) {
		return Result{}, &ParseError{Err: errors.New("input is not valid UTF-8")}
	}
	raw = strings.TrimPrefix(raw, bom)
	if line, open := unterminatedQuote(raw); open {
		return Result{}, &ParseError{Line: line, Err: fmt.Errorf("unterminated quoted field: %w", csv.ErrQuote)}
	}

	// Quotes inside unquoted cells are plain text: fo"o reads as fo"o.
	cr := csv.NewReader(strings.NewReader(raw))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return Result{}, &ParseError{Err: errors.New("no columns to parse")}
	}
	if err != nil {
		return Result{}, csvError(err)
	}
	columns := dedupeHeader(header)
	numeric := make(map[string]bool, len(n.NumericColumns))
	for _, c := range n.NumericColumns {
		numeric[c] = true
	}

	res := Result{Columns: columns}
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Result{}, csvError(err)
		}
		line, _ := cr.FieldPos(0)
		res.Rows++
		if len(row) > len(columns) {
			return Result{}, &ParseError{
				Line: line,
				Err:  fmt.Errorf("expected %d fields, saw %d", len(columns), len(row)),
			}
		}
		// Short rows are padded with missing cells and so always dropped.
		if len(row) < len(columns) || hasUndefined(row) {
			res.Dropped = append(res.Dropped, line)
			continue
		}
		rec := make(Record, len(columns))
		for i, col := range columns {
			v, err := coerce(row[i], numeric[col])
			if err != nil {
				return Result{}, &CoercionError{Line: line, Column: col, Text: row[i], Err: err}
			}
			rec[col] = v
		}
		res.Records = append(res.Records, rec)
	}
	if res.Rows == 0 {
		return Result{Columns: columns}, ErrEmptyInput
	}
	return res, nil
}

func csvError(err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &ParseError{Line: pe.Line, Err: pe.Err}
	}
	return &ParseError{Err: err}
}

// unterminatedQuote returns the line of a quoted field still open at the end
// of raw. A quoted field closes at a quote followed by a comma, a line end or
// the end of input; "" is an escaped quote and any other quote is content.
func unterminatedQuote(raw string) (int, bool) {
	line, start := 1, 0
	quoted, fieldStart := false, true
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if quoted {
			switch c {
			case '\n':
				line++
			case '"':
				rest := raw[i+1:]
				switch {
				case strings.HasPrefix(rest, `"`):
					i++
				case rest == "", rest[0] == ',', rest[0] == '\n', strings.HasPrefix(rest, "\r\n"):
					quoted = false
				}
			}
			continue
		}
		switch c {
		case '"':
			if fieldStart {
				quoted, start = true, line
			}
		case '\n':
			line++
		}
		fieldStart = c == ',' || c == '\n'
	}
	return start, quoted
}

// dedupeHeader renames repeated columns to name.1, name.2, ... and blank
// ones to "Unnamed: <index>", so every record has one key per column.
func dedupeHeader(header []string) []string {
	out := make([]string, len(header))
	used := make(map[string]bool, len(header))
	for i, h := range header {
		if strings.TrimSpace(h) == "" {
			h = "Unnamed: " + strconv.Itoa(i)
		}
		name := h
		for n := 1; used[name]; n++ {
			name = h + "." + strconv.Itoa(n)
		}
		used[name] = true
		out[i] = name
	}
	return out
}

// missing is the set of cell spellings read as "no value".
var missing = map[string]bool{
	"": true, "NA": true, "N/A": true, "n/a": true, "NaN": true, "nan": true,
	"-NaN": true, "-nan": true, "NULL": true, "null": true, "None": true,
	"<NA>": true, "#N/A": true, "#N/A N/A": true, "#NA": true,
	"-1.#IND": true, "-1.#QNAN": true, "1.#IND": true, "1.#QNAN": true,
}

func hasUndefined(row []string) bool {
	for _, c := range row {
		if isUndefined(c) {
			return true
		}
	}
	return false
}

// isUndefined reports a missing cell or one holding +/-infinity (or NaN in
// any spelling strconv accepts).
func isUndefined(cell string) bool {
	t := strings.TrimSpace(cell)
	if missing[t] {
		return true
	}
	f, err := strconv.ParseFloat(t, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return false
	}
	return math.IsInf(f, 0) || math.IsNaN(f)
}

func coerce(cell string, numericOnly bool) (Value, error) {
	t := strings.TrimSpace(cell)
	if n, err := strconv.ParseInt(t, 10, 64); err == nil {
		return IntValue(n), nil
	}
	if f, err := strconv.ParseFloat(t, 64); err == nil {
		return floatValue(t, f)
	}
	if strings.HasPrefix(t, "[") && strings.HasSuffix(t, "]") && gjson.Valid(t) {
		if numericOnly {
			return Value{}, fmt.Errorf("%w: list in numeric column", ErrCoercion)
		}
		return fromJSON(gjson.Parse(t), true)
	}
	if numericOnly {
		return Value{}, fmt.Errorf("%w: not a number", ErrCoercion)
	}
	return StringValue(cell), nil
}

// floatValue builds a decimal from the cell's own digits. Spellings decimal
// cannot read, such as hex floats, fall back to the shortest text that
// round-trips the parsed float. A value too small for a float64 reads as 0.
func floatValue(text string, f float64) (Value, error) {
	if d, err := decimal.NewFromString(text); err == nil {
		if f == 0 && !d.IsZero() {
			return DecimalValue(decimal.Zero), nil
		}
		return DecimalValue(d), nil
	}
	canon := strconv.FormatFloat(f, 'g', -1, 64)
	d, err := decimal.NewFromString(canon)
	if err != nil {
		return Value{}, fmt.Errorf("%w: %v", ErrCoercion, err)
	}
	return DecimalValue(d), nil
}
