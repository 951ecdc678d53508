package vision

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ParseStatLine recovers (field name, value) pairs from one raw stat line,
// tolerating the usual recognition damage: lost numbers, garbage tokens
// where a number should be, and the tripled first row produced by the
// amplification transform.
//
// The only assumption is that the first field name itself was read
// correctly. Values are taken only from genuine digit runs; a field whose
// number was lost or misread comes back with a nil value, never zero.
//
// # Token cases
//
// The line is reduced to alphanumeric tokens (everything else becomes a
// space), upper-cased, and dispatched on token count:
//
//   - 1 token: name only, value absent.
//   - 2 tokens: name+number, name+name (both values lost), or
//     name+garbage (value absent, garbage dropped).
//   - 3 tokens: name+number+name, name+name+number, name+name+garbage,
//     or name+garbage+name; missing numbers stay absent. Anything else
//     is malformed.
//   - 4 tokens: name+number+name+number is the clean read; degraded
//     forms lose one or both values to garbage. Two adjacent names with
//     no number between them leave nothing to anchor either value to and
//     are malformed.
//   - 6 tokens repeating the same name at positions 0, 2, and 4 are the
//     tiled first row; only the first name/value pair is real.
//
// Five or more tokens (after the tiling collapse) cannot be normalized
// and return ErrMalformedLine. A first token outside the stat vocabulary
// returns ErrUnrecognizedFieldName.
func ParseStatLine(line string) ([]FieldValue, error) {
	var filtered strings.Builder
	for _, r := range line {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			filtered.WriteRune(r)
		} else {
			filtered.WriteRune(' ')
		}
	}

	tokens := coerceStatTokens(strings.Fields(strings.ToUpper(filtered.String())))
	if len(tokens) == 0 {
		return nil, fmt.Errorf("%w: no tokens in %q", ErrMalformedLine, line)
	}
	if !IsStatName(tokens[0]) {
		return nil, fmt.Errorf("%w: %q", ErrUnrecognizedFieldName, tokens[0])
	}

	if len(tokens) == 6 && tokens[0] == tokens[2] && tokens[0] == tokens[4] {
		tokens = tokens[:2]
	}

	switch len(tokens) {
	case 1:
		return []FieldValue{{Name: tokens[0]}}, nil

	case 2:
		if isDecimalToken(tokens[1]) {
			return []FieldValue{{Name: tokens[0], Value: intValue(tokens[1])}}, nil
		}
		if IsStatName(tokens[1]) {
			// Both values lost, e.g. "ATK - AGI -".
			return []FieldValue{{Name: tokens[0]}, {Name: tokens[1]}}, nil
		}
		return []FieldValue{{Name: tokens[0]}}, nil

	case 3:
		switch {
		case isDecimalToken(tokens[1]) && IsStatName(tokens[2]):
			return []FieldValue{{Name: tokens[0], Value: intValue(tokens[1])}, {Name: tokens[2]}}, nil
		case IsStatName(tokens[1]) && isDecimalToken(tokens[2]):
			return []FieldValue{{Name: tokens[0]}, {Name: tokens[1], Value: intValue(tokens[2])}}, nil
		case IsStatName(tokens[1]):
			return []FieldValue{{Name: tokens[0]}, {Name: tokens[1]}}, nil
		case IsStatName(tokens[2]):
			return []FieldValue{{Name: tokens[0]}, {Name: tokens[2]}}, nil
		}

	case 4:
		switch {
		case isDecimalToken(tokens[1]) && IsStatName(tokens[2]) && isDecimalToken(tokens[3]):
			return []FieldValue{
				{Name: tokens[0], Value: intValue(tokens[1])},
				{Name: tokens[2], Value: intValue(tokens[3])},
			}, nil
		case isDecimalToken(tokens[1]) && IsStatName(tokens[2]):
			return []FieldValue{{Name: tokens[0], Value: intValue(tokens[1])}, {Name: tokens[2]}}, nil
		case IsStatName(tokens[1]):
			// Two adjacent names with extra tokens after the second one.
			return nil, fmt.Errorf("%w: %q", ErrMalformedLine, line)
		case IsStatName(tokens[2]) && isDecimalToken(tokens[3]):
			return []FieldValue{{Name: tokens[0]}, {Name: tokens[2], Value: intValue(tokens[3])}}, nil
		case IsStatName(tokens[2]):
			return []FieldValue{{Name: tokens[0]}, {Name: tokens[2]}}, nil
		}
	}

	return nil, fmt.Errorf("%w: %q", ErrMalformedLine, line)
}

// isDecimalToken reports whether s is a plain run of base-10 digits.
func isDecimalToken(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// intValue parses a digit run into a stat value. Tokens too large to
// represent come back nil, the same as an unreadable number.
func intValue(s string) *int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}
