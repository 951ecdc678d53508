package vision

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Lines shorter than this in the free-text sections are OCR garbage,
// usually the boost-type icon bleeding into the text row.
const minEffectLineLength = 4

// safeEffectsPattern admits the characters that genuinely occur in
// ability text. Anything else on a free-text line is boundary noise from
// the surrounding UI chrome.
var safeEffectsPattern = regexp.MustCompile(`^[a-zA-Z0-9 +\-%&]+$`)

// statLinePrefixes are the upper-cased starts of the stat rows as they
// appear in the panel. Only the left column names begin a row, so the
// right column names (DEF, SPR, DEX, AGI, LUCK) never trigger here.
var statLinePrefixes = []string{"COST", "HP", "TP", "AP", "ATK", "MAG"}

type classifierState int

const (
	collectingStats classifierState = iota
	inPartyAbility
	inBestowedEffects
	classifyDone
)

func hasStatPrefix(upper string) bool {
	for _, prefix := range statLinePrefixes {
		if strings.HasPrefix(upper, prefix) {
			return true
		}
	}
	return false
}

// classifyStatsText walks the raw stats-region text and routes each line
// to the stat parser, the party ability, or the bestowed effects list.
//
// The dump has a fixed shape: stat rows first, then a "Party Ability"
// header, one line of ability text, a "Bestowed Effects" header, effect
// lines, and finally the "Awakening Bonus" buttons that end the card.
// Blank lines are skipped without consuming a transition.
//
// A stat parser error is recorded and terminates classification for the
// whole card, not just the line: a misparsed stat row almost always
// means the region boundaries themselves were wrong, so pressing on
// would bind garbage.
func classifyStatsText(lines []string, result *ExtractionResult) {
	state := collectingStats

	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		upper := strings.ToUpper(line)

		switch state {
		case collectingStats:
			switch {
			case hasStatPrefix(upper):
				pairs, err := ParseStatLine(line)
				if err != nil {
					result.fail(err.Error())
					return
				}
				for _, fv := range pairs {
					if err := bindFieldValue(&result.Card, fv); err != nil {
						result.fail(err.Error())
						return
					}
				}
			case strings.HasPrefix(upper, "PARTY"):
				state = inPartyAbility
			}

		case inPartyAbility:
			switch {
			case strings.HasPrefix(upper, "BESTOWED EFFECTS"):
				state = inBestowedEffects
			case utf8.RuneCountInString(line) < minEffectLineLength,
				!safeEffectsPattern.MatchString(line):
				// Noise like a stray icon glyph on its own line.
			case result.PartyAbility == nil:
				ability := line
				result.PartyAbility = &ability
			default:
				// The ability is a single line of text on every card.
				result.fail("found multiple party ability lines in vision card")
				return
			}

		case inBestowedEffects:
			switch {
			case strings.HasPrefix(upper, "AWAKENING BONUS"):
				state = classifyDone
			case utf8.RuneCountInString(line) < minEffectLineLength,
				!safeEffectsPattern.MatchString(line):
			default:
				result.BestowedEffects = append(result.BestowedEffects, line)
			}

		case classifyDone:
			return
		}
	}
}
