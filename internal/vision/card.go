package vision

import (
	"fmt"
	"strings"
)

// statNames is the fixed vocabulary of numeric stats a vision card can
// grant. The two free-text sections (party ability, bestowed effects) are
// handled by the classifier and never bound through this set.
var statNames = map[string]struct{}{
	"COST": {}, "HP": {}, "DEF": {}, "TP": {}, "SPR": {},
	"AP": {}, "DEX": {}, "ATK": {}, "AGI": {}, "MAG": {}, "LUCK": {},
}

// IsStatName reports whether text names one of the numeric stats printed
// on a vision card, ignoring case.
func IsStatName(text string) bool {
	_, ok := statNames[strings.ToUpper(text)]
	return ok
}

// Card holds the structured attributes extracted from one vision card
// screenshot.
//
// Every numeric stat is a pointer: nil records that recognition produced
// no readable value for the field, which is a different statement than a
// value of zero. Cards never print zero stats, so a nil slot means either
// the card does not grant the stat or the recognizer lost the number.
type Card struct {
	// Name is the card name from the info band above the stats panel.
	Name string `json:"name"`

	Cost *int `json:"cost,omitempty"`
	HP   *int `json:"hp,omitempty"`
	DEF  *int `json:"def,omitempty"`
	TP   *int `json:"tp,omitempty"`
	SPR  *int `json:"spr,omitempty"`
	AP   *int `json:"ap,omitempty"`
	DEX  *int `json:"dex,omitempty"`
	ATK  *int `json:"atk,omitempty"`
	AGI  *int `json:"agi,omitempty"`
	MAG  *int `json:"mag,omitempty"`
	Luck *int `json:"luck,omitempty"`

	// PartyAbility is the single line of party ability text, or nil when
	// none was recognized.
	PartyAbility *string `json:"party_ability,omitempty"`

	// BestowedEffects lists the bestowed effect lines in display order.
	// May be empty.
	BestowedEffects []string `json:"bestowed_effects,omitempty"`
}

// ExtractionResult is what one extraction call returns. The embedded Card
// may be partially populated even when Success is false; whatever was
// recovered before the failing stage is kept for diagnosis.
//
// Invariant: Success is true exactly when Errors is empty.
type ExtractionResult struct {
	Card

	// Success reports whether extraction completed without a fatal error.
	Success bool `json:"success"`

	// Errors holds human-readable messages for every fatal error hit
	// during extraction, in the order they occurred.
	Errors []string `json:"errors,omitempty"`

	// Diagnostics carries intermediate artifacts when they were requested,
	// nil otherwise. Never serialized.
	Diagnostics *Diagnostics `json:"-"`
}

// FieldValue is one recovered (field name, value) pair from a stat line.
// A nil Value records that the recognizer produced no usable number for
// the field.
type FieldValue struct {
	Name  string
	Value *int
}

// bindFieldValue writes one recovered pair into its card slot. The parser
// validates names before binding, so an unknown name here means the
// vocabulary tables have drifted apart and is reported as an error rather
// than guessed around.
func bindFieldValue(card *Card, fv FieldValue) error {
	switch strings.ToUpper(fv.Name) {
	case "COST":
		card.Cost = fv.Value
	case "HP":
		card.HP = fv.Value
	case "DEF":
		card.DEF = fv.Value
	case "TP":
		card.TP = fv.Value
	case "SPR":
		card.SPR = fv.Value
	case "AP":
		card.AP = fv.Value
	case "DEX":
		card.DEX = fv.Value
	case "ATK":
		card.ATK = fv.Value
	case "AGI":
		card.AGI = fv.Value
	case "MAG":
		card.MAG = fv.Value
	case "LUCK":
		card.Luck = fv.Value
	default:
		return fmt.Errorf("cannot bind unknown stat name %q", fv.Name)
	}
	return nil
}

// CoerceCardName normalizes optical near-misses in a recognized card name.
// The right single quotation mark (U+2019) renders identically to an
// apostrophe in the card font and is folded to one. The function is pure
// and idempotent.
func CoerceCardName(raw string) string {
	return strings.ReplaceAll(raw, "’", "'")
}

// coerceStatTokens fixes known optical confusions in upper-cased stat
// tokens. AGL is a frequent misread of AGI.
func coerceStatTokens(tokens []string) []string {
	for i, tok := range tokens {
		if tok == "AGL" {
			tokens[i] = "AGI"
		}
	}
	return tokens
}
