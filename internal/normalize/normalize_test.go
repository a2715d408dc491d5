package normalize

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(t *testing.T, s string) Value {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return DecimalValue(d)
}

func TestNormalizeDropsUndefinedRows(t *testing.T) {
	res, err := Normalize("id,score\n1,2.5\n2,\n3,inf\n")
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.True(t, res.Records[0].Equal(Record{"id": IntValue(1), "score": dec(t, "2.5")}))
	assert.Equal(t, []string{"id", "score"}, res.Columns)
	assert.Equal(t, 3, res.Rows)
	assert.Equal(t, []int{3, 4}, res.Dropped)
}

func TestNormalizeKeepsStrings(t *testing.T) {
	res, err := Normalize("a,b\nfoo,bar\n")
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	a, ok := res.Records[0]["a"].Str()
	assert.True(t, ok)
	assert.Equal(t, "foo", a)
	b, ok := res.Records[0]["b"].Str()
	assert.True(t, ok)
	assert.Equal(t, "bar", b)
}

func TestNormalizeColumnCountMismatch(t *testing.T) {
	_, err := Normalize("a,b\n1,2,3\n")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrParse)
	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 2, pe.Line)
}

func TestNormalizeHeaderOnly(t *testing.T) {
	res, err := Normalize("a,b\n")
	assert.ErrorIs(t, err, ErrEmptyInput)
	assert.NotErrorIs(t, err, ErrParse)
	assert.Empty(t, res.Records)
	assert.Equal(t, []string{"a", "b"}, res.Columns)
}

func TestNormalizeParseFailures(t *testing.T) {
	cases := map[string]string{
		"empty":        "",
		"bad quote":    "a,b\n\"x,1\n",
		"invalid utf8": "a,b\n\xff,1\n",
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			res, err := Normalize(in)
			assert.ErrorIs(t, err, ErrParse)
			assert.Empty(t, res.Records)
		})
	}
}

func TestNormalizeBareQuotesAreText(t *testing.T) {
	res, err := Normalize("a,b\nfo\"o,bar\n5'11\",x\n")
	require.NoError(t, err)
	require.Len(t, res.Records, 2)
	assert.True(t, res.Records[0]["a"].Equal(StringValue(`fo"o`)))
	assert.True(t, res.Records[0]["b"].Equal(StringValue("bar")))
	assert.True(t, res.Records[1]["a"].Equal(StringValue(`5'11"`)))
}

func TestNormalizeQuotedFields(t *testing.T) {
	res, err := Normalize("a,b\n\"x, \"\"y\"\"\",\"two\nlines\"\r\n\"\",1\n")
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.True(t, res.Records[0]["a"].Equal(StringValue(`x, "y"`)))
	assert.True(t, res.Records[0]["b"].Equal(StringValue("two\nlines")))
	assert.Equal(t, []int{4}, res.Dropped)
}

func TestNormalizeUnterminatedQuote(t *testing.T) {
	_, err := Normalize("a,b\n1,2\n\"x,1\n3,4\n")
	require.ErrorIs(t, err, ErrParse)
	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 3, pe.Line)
}

func TestNormalizeUnderflowReadsAsZero(t *testing.T) {
	res, err := Normalize("x\n1e-400\n1e-5\n")
	require.NoError(t, err)
	require.Len(t, res.Records, 2)
	assert.Equal(t, "0", res.Records[0]["x"].String())
	assert.True(t, res.Records[1]["x"].Equal(dec(t, "0.00001")))
}

func TestNormalizeDecimalRoundTrip(t *testing.T) {
	res, err := Normalize("x\n3.14\n0.1\n2.50\n1e3\n")
	require.NoError(t, err)
	var got []string
	for _, r := range res.Records {
		assert.Equal(t, KindDecimal, r["x"].Kind())
		got = append(got, r["x"].String())
	}
	assert.Equal(t, []string{"3.14", "0.1", "2.5", "1000"}, got)
}

func TestNormalizeCountProperty(t *testing.T) {
	in := "a,b,c\n" +
		"1,2,3\n" +
		"x,,z\n" +
		"4,5.5,six\n" +
		"NaN,1,2\n" +
		"7,-Infinity,9\n" +
		"8,9\n" +
		"10,NULL,12\n" +
		"13,14,15\n"
	res, err := Normalize(in)
	require.NoError(t, err)
	assert.Equal(t, 8, res.Rows)
	assert.Len(t, res.Dropped, 5)
	require.Len(t, res.Records, res.Rows-len(res.Dropped))
	for _, r := range res.Records {
		assert.Len(t, r, 3)
	}
	first, _ := res.Records[0]["a"].Int()
	last, _ := res.Records[2]["a"].Int()
	assert.Equal(t, int64(1), first)
	assert.Equal(t, int64(13), last)
}

func TestNormalizeIdempotent(t *testing.T) {
	in := "k,v,l\n1,2.25,\"[1, 2.5, \"\"x\"\"]\"\n2,abc,\"[]\"\n"
	a, err := Normalize(in)
	require.NoError(t, err)
	b, err := Normalize(in)
	require.NoError(t, err)
	require.Len(t, b.Records, len(a.Records))
	for i := range a.Records {
		assert.True(t, a.Records[i].Equal(b.Records[i]))
	}
}

func TestNormalizeListCells(t *testing.T) {
	res, err := Normalize("k,l\n1,\"[1, 2.5, \"\"x\"\", true]\"\n")
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	l := res.Records[0]["l"]
	require.Equal(t, KindList, l.Kind())
	elems := l.List()
	require.Len(t, elems, 4)
	assert.Equal(t, KindInt, elems[0].Kind())
	assert.True(t, elems[1].Equal(dec(t, "2.5")))
	assert.True(t, elems[2].Equal(StringValue("x")))
	assert.True(t, elems[3].Equal(StringValue("true")))
	assert.Equal(t, `[1,2.5,"x","true"]`, l.String())
}

func TestNormalizeNestedListIsCoercionError(t *testing.T) {
	_, err := Normalize("k,l\n1,\"[[1], 2]\"\n")
	assert.ErrorIs(t, err, ErrCoercion)
	var ce *CoercionError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "l", ce.Column)
	assert.Equal(t, 2, ce.Line)
}

func TestNormalizeBracketTextStaysString(t *testing.T) {
	res, err := Normalize("k,l\n1,[not json]\n")
	require.NoError(t, err)
	s, ok := res.Records[0]["l"].Str()
	assert.True(t, ok)
	assert.Equal(t, "[not json]", s)
}

func TestNormalizeNumericColumns(t *testing.T) {
	n := Normalizer{NumericColumns: []string{"score"}}
	_, err := n.Normalize("id,score\n1,2.5\n2,high\n")
	assert.ErrorIs(t, err, ErrCoercion)
	assert.NotErrorIs(t, err, ErrParse)

	res, err := n.Normalize("id,score\n1,2.5\n2,3\n")
	require.NoError(t, err)
	assert.Len(t, res.Records, 2)
}

func TestNormalizeHeaderNames(t *testing.T) {
	res, err := Normalize("\uFEFFa,a,,a.1\n1,2,3,4\n")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "a.1", "Unnamed: 2", "a.1.1"}, res.Columns)
	require.Len(t, res.Records, 1)
	assert.Len(t, res.Records[0], 4)
}

func TestNormalizeLargeIntegerStaysExact(t *testing.T) {
	res, err := Normalize("n\n123456789012345678901234567890\n")
	require.NoError(t, err)
	v := res.Records[0]["n"]
	assert.Equal(t, KindDecimal, v.Kind())
	assert.Equal(t, "123456789012345678901234567890", v.String())
}

func TestNormalizeAllRowsDropped(t *testing.T) {
	res, err := Normalize("a,b\n1,\n,2\n")
	require.NoError(t, err)
	assert.Empty(t, res.Records)
	assert.Equal(t, 2, res.Rows)
}
