package datasource

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-quant/internal/types"
	"github.com/rxtech-lab/argo-quant/pkg/errors"
)

// formatLetters maps a format letter to its canonical column.
var formatLetters = map[rune]string{
	'd': ColumnTime,
	'o': ColumnOpen,
	'h': ColumnHigh,
	'l': ColumnLow,
	'c': ColumnClose,
	'v': ColumnVolume,
	'i': ColumnSentiment,
	'x': ColumnCustom,
	'y': ColumnDividend,
}

// headerAliases maps lower-case header names to format letters.
var headerAliases = map[string]rune{
	"dt":              'd',
	"date":            'd',
	"datetime":        'd',
	"time":            'd',
	"timestamp":       'd',
	"open":            'o',
	"high":            'h',
	"low":             'l',
	"close":           'c',
	"volume":          'v',
	"sentiment":       'i',
	"sentiment_score": 'i',
	"custom":          'x',
	"dividend":        'y',
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.DateOnly,
	"01/02/2006",
}

// Format maps bar fields to column positions. In a format string such as
// "dohlcv" the n-th letter is the n-th column. When d is absent the datetime is
// assumed to be the first column.
type Format struct {
	letters string
	index   map[rune]int
}

// ParseFormat parses a format string. Unknown or repeated letters and a missing
// close column are configuration errors.
func ParseFormat(spec string) (Format, error) {
	spec = strings.ToLower(strings.TrimSpace(spec))
	if spec == "" {
		return Format{}, errors.New(errors.ErrCodeUnsupportedDataFormat, "data format is empty")
	}

	offset := 1
	if strings.ContainsRune(spec, 'd') {
		offset = 0
	}

	index := make(map[rune]int, len(spec)+1)
	if offset == 1 {
		index['d'] = 0
	}

	for i, letter := range spec {
		if _, ok := formatLetters[letter]; !ok {
			return Format{}, errors.Newf(errors.ErrCodeUnsupportedDataFormat, "unknown data format letter %q in %q", letter, spec)
		}

		if _, dup := index[letter]; dup {
			return Format{}, errors.Newf(errors.ErrCodeUnsupportedDataFormat, "repeated data format letter %q in %q", letter, spec)
		}

		index[letter] = i + offset
	}

	if _, ok := index['c']; !ok {
		return Format{}, errors.Newf(errors.ErrCodeUnsupportedDataFormat, "data format %q has no close column", spec)
	}

	return Format{letters: spec, index: index}, nil
}

// InferFormat detects the format from header names.
func InferFormat(headers []string) (Format, error) {
	index := map[rune]int{}

	for i, header := range headers {
		letter, ok := headerAliases[strings.ToLower(strings.TrimSpace(header))]
		if !ok {
			continue
		}

		if _, dup := index[letter]; !dup {
			index[letter] = i
		}
	}

	if _, ok := index['c']; !ok {
		return Format{}, errors.Newf(errors.ErrCodeUnsupportedDataFormat, "no close column among headers %v", headers)
	}

	if _, ok := index['d']; !ok {
		return Format{}, errors.Newf(errors.ErrCodeUnsupportedDataFormat, "no datetime column among headers %v", headers)
	}

	letters := make([]rune, 0, len(index))
	for letter := range index {
		letters = append(letters, letter)
	}

	sort.Slice(letters, func(a, b int) bool { return index[letters[a]] < index[letters[b]] })

	return Format{letters: string(letters), index: index}, nil
}

// String returns the format letters.
func (f Format) String() string {
	return f.letters
}

// Has reports whether the format carries the column of letter.
func (f Format) Has(letter rune) bool {
	_, ok := f.index[letter]

	return ok
}

// Index returns the column position of letter.
func (f Format) Index(letter rune) (int, bool) {
	i, ok := f.index[letter]

	return i, ok
}

// Columns returns the canonical column names present, ordered by position.
func (f Format) Columns() []string {
	letters := make([]rune, 0, len(f.index))
	for letter := range f.index {
		letters = append(letters, letter)
	}

	sort.Slice(letters, func(a, b int) bool { return f.index[letters[a]] < f.index[letters[b]] })

	columns := make([]string, len(letters))
	for i, letter := range letters {
		columns[i] = formatLetters[letter]
	}

	return columns
}

// parseRecord builds a bar from one CSV record.
func (f Format) parseRecord(record []string, symbol string) (types.Bar, error) {
	bar := types.Bar{Symbol: symbol}

	raw, err := f.field(record, 'd')
	if err != nil {
		return bar, err
	}

	bar.Time, err = ParseTime(raw)
	if err != nil {
		return bar, err
	}

	closeRaw, err := f.field(record, 'c')
	if err != nil {
		return bar, err
	}

	bar.Close, err = strconv.ParseFloat(strings.TrimSpace(closeRaw), 64)
	if err != nil {
		return bar, errors.Wrapf(errors.ErrCodeDataUnavailable, err, "invalid close value %q", closeRaw)
	}

	optionals := []struct {
		letter rune
		target *optional.Option[float64]
	}{
		{'o', &bar.Open},
		{'h', &bar.High},
		{'l', &bar.Low},
		{'v', &bar.Volume},
		{'i', &bar.Sentiment},
		{'x', &bar.Custom},
		{'y', &bar.Dividend},
	}

	for _, o := range optionals {
		value, err := f.optionalField(record, o.letter)
		if err != nil {
			return bar, err
		}

		*o.target = value
	}

	return bar, nil
}

func (f Format) field(record []string, letter rune) (string, error) {
	i, ok := f.index[letter]
	if !ok || i >= len(record) {
		return "", errors.Newf(errors.ErrCodeDataUnavailable, "record has no %s column", formatLetters[letter])
	}

	return record[i], nil
}

func (f Format) optionalField(record []string, letter rune) (optional.Option[float64], error) {
	i, ok := f.index[letter]
	if !ok || i >= len(record) {
		return optional.None[float64](), nil
	}

	raw := strings.TrimSpace(record[i])
	if raw == "" || strings.EqualFold(raw, "nan") {
		return optional.None[float64](), nil
	}

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return optional.None[float64](), errors.Wrapf(errors.ErrCodeDataUnavailable, err, "invalid %s value %q", formatLetters[letter], raw)
	}

	return optional.Some(value), nil
}

// ParseTime parses the datetime layouts accepted in bar files.
func ParseTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)

	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}

	return time.Time{}, errors.Newf(errors.ErrCodeMalformedDate, "unsupported datetime %q", raw)
}
