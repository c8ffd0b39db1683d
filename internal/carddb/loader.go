// Package carddb loads the raw card database and deck lists, turning scraped
// JSON rows with inconsistent field names into shared card masters.
package carddb

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"github.com/gx5gyqe2-art/opcg-sim-backend-sub000/internal/game/card"
	"github.com/gx5gyqe2-art/opcg-sim-backend-sub000/internal/game/cardtext"
)

// Database is a lazily-materialized card master store backed by the raw JSON
// rows. Masters are built on first lookup and cached; parsing a card's effect
// text is the expensive part.
type Database struct {
	raw    []map[string]interface{}
	cache  map[string]*card.Master
	logger *zap.Logger
}

// Load reads a card database JSON file: an array of objects whose keys may be
// Japanese, English, or mixed-width variants.
func Load(path string, logger *zap.Logger) (*Database, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read card database: %w", err)
	}
	db, err := Parse(data, logger)
	if err != nil {
		return nil, fmt.Errorf("parse card database %s: %w", path, err)
	}
	logger.Info("card database loaded",
		zap.String("path", path),
		zap.Int("entries", len(db.raw)))
	return db, nil
}

// Parse builds a database from raw JSON bytes.
func Parse(data []byte, logger *zap.Logger) (*Database, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var rows []map[string]interface{}
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, err
	}
	return &Database{
		raw:    rows,
		cache:  make(map[string]*card.Master),
		logger: logger,
	}, nil
}

// Size returns the number of raw database rows.
func (db *Database) Size() int { return len(db.raw) }

// Numbers returns the cleaned card number of every raw row that has one.
func (db *Database) Numbers() []string {
	var out []string
	for _, row := range db.raw {
		normalized := make(map[string]interface{}, len(row))
		for k, v := range row {
			normalized[cleanText(k)] = v
		}
		if id := cleanText(stringField(normalized, "number", "Number", "品番", "型番", "id")); id != "" {
			out = append(out, id)
		}
	}
	return out
}

// Get returns the master for a card number, building and caching it on first
// use.
func (db *Database) Get(cardID string) (*card.Master, error) {
	cardID = cleanText(cardID)
	if m, ok := db.cache[cardID]; ok {
		return m, nil
	}
	for _, row := range db.raw {
		normalized := make(map[string]interface{}, len(row))
		for k, v := range row {
			normalized[cleanText(k)] = v
		}
		if cleanText(stringField(normalized, "number", "Number", "品番", "型番", "id")) != cardID {
			continue
		}
		m := db.buildMaster(cardID, normalized)
		if m == nil {
			return nil, fmt.Errorf("card %s has no usable data", cardID)
		}
		db.cache[cardID] = m
		return m, nil
	}
	return nil, fmt.Errorf("card %s not found in database", cardID)
}

func (db *Database) buildMaster(cardID string, row map[string]interface{}) *card.Master {
	if strings.Contains(strings.ToLower(cardID), "dummy") {
		return nil
	}
	effectText := textOrEmpty(stringField(row, "効果(テキスト)", "テキスト", "Text", "text"))
	triggerText := textOrEmpty(stringField(row, "効果(トリガー)", "トリガー", "Trigger", "trigger"))

	m := &card.Master{
		ID:          cardID,
		Name:        cleanText(stringField(row, "name", "Name", "名前", "カード名")),
		Type:        mapType(stringField(row, "種類", "Type", "type")),
		Color:       mapColor(stringField(row, "色", "Color", "color")),
		Cost:        intField(row, "コスト", "Cost", "cost"),
		Power:       intField(row, "パワー", "Power", "power"),
		Counter:     intField(row, "カウンター", "Counter", "counter"),
		Life:        intField(row, "ライフ", "Life", "life"),
		Attribute:   mapAttribute(stringField(row, "属性", "Attribute", "attribute")),
		Traits:      parseTraits(stringField(row, "特徴", "Traits", "traits")),
		EffectText:  effectText,
		TriggerText: triggerText,
		Keywords:    detectKeywords(effectText),
	}

	m.Abilities = cardtext.Parse(effectText)
	for _, ab := range cardtext.Parse(triggerText) {
		// Everything in the trigger box fires as a life trigger regardless of
		// how the text reads.
		ab.Trigger = card.TriggerLifeTrigger
		m.Abilities = append(m.Abilities, ab)
	}

	db.logger.Debug("card master built",
		zap.String("card_id", m.ID),
		zap.String("name", m.Name),
		zap.Int("abilities", len(m.Abilities)))
	return m
}

var nonValues = map[string]bool{
	"":     true,
	"nan":  true,
	"-":    true,
	"null": true,
	"none": true,
	"なし":   true,
	"n/a":  true,
}

var numberPattern = regexp.MustCompile(`-?\d+`)

// textOrEmpty clears placeholder values ("なし", "None") that mean no text.
func textOrEmpty(s string) string {
	s = cleanText(s)
	if nonValues[strings.ToLower(s)] {
		return ""
	}
	return s
}

// cleanText folds width variants and trims, so 「ＯＰ０１」 and "OP01" compare
// equal.
func cleanText(s string) string {
	return strings.TrimSpace(norm.NFKC.String(s))
}

func stringField(row map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		if v, ok := row[cleanText(k)]; ok && v != nil {
			switch val := v.(type) {
			case string:
				return val
			case float64:
				return fmt.Sprintf("%v", val)
			default:
				return fmt.Sprintf("%v", val)
			}
		}
	}
	return ""
}

func intField(row map[string]interface{}, keys ...string) int {
	for _, k := range keys {
		v, ok := row[cleanText(k)]
		if !ok || v == nil {
			continue
		}
		if f, ok := v.(float64); ok {
			return int(f)
		}
		s := cleanText(fmt.Sprintf("%v", v))
		if nonValues[strings.ToLower(s)] {
			return 0
		}
		if num := numberPattern.FindString(s); num != "" {
			n := 0
			fmt.Sscanf(num, "%d", &n)
			return n
		}
	}
	return 0
}

func parseTraits(s string) []string {
	s = cleanText(s)
	if nonValues[strings.ToLower(s)] {
		return nil
	}
	var traits []string
	for _, t := range strings.Split(s, "/") {
		if t = strings.TrimSpace(t); t != "" {
			traits = append(traits, t)
		}
	}
	return traits
}

func mapColor(s string) card.Color {
	s = cleanText(s)
	upper := strings.ToUpper(s)
	for _, c := range []card.Color{
		card.ColorRed, card.ColorGreen, card.ColorBlue,
		card.ColorPurple, card.ColorBlack, card.ColorYellow, card.ColorMulti,
	} {
		if strings.Contains(s, c.Glyph()) || strings.Contains(upper, string(c)) {
			return c
		}
	}
	return card.ColorUnknown
}

func mapType(s string) card.Type {
	s = cleanText(s)
	upper := strings.ToUpper(s)
	for _, t := range []card.Type{
		card.TypeLeader, card.TypeCharacter, card.TypeEvent, card.TypeStage,
	} {
		if strings.Contains(s, t.Glyph()) || strings.Contains(upper, string(t)) {
			return t
		}
	}
	return card.TypeUnknown
}

func mapAttribute(s string) card.Attribute {
	s = cleanText(s)
	upper := strings.ToUpper(s)
	for _, a := range []card.Attribute{
		card.AttributeSlash, card.AttributeStrike, card.AttributeShoot,
		card.AttributeSpecial, card.AttributeWisdom,
	} {
		if strings.Contains(s, a.Glyph()) || strings.Contains(upper, string(a)) {
			return a
		}
	}
	return card.AttributeNone
}

// detectKeywords finds bracketed keyword markers in the printed text. The
// effect parser drops bare keyword segments (they carry no actions), so the
// innate keyword set comes from here.
func detectKeywords(effectText string) map[string]bool {
	keywords := make(map[string]bool)
	normalized := cardtext.Normalize(effectText)
	for _, kw := range []string{
		card.KeywordBlocker, card.KeywordRush,
		card.KeywordDoubleAttack, card.KeywordBanish,
	} {
		if strings.Contains(normalized, "『"+kw+"』") {
			keywords[kw] = true
		}
	}
	return keywords
}
