package catalog

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"gorm.io/datatypes"
)

type valueKind int

const (
	textValue valueKind = iota
	intValue
	numberValue
	boolValue
	dateValue
	timestampValue
	optionalIntValue
)

func (k valueKind) describe() string {
	switch k {
	case intValue, optionalIntValue:
		return "an integer"
	case numberValue:
		return "a number"
	case boolValue:
		return "a boolean"
	case dateValue:
		return "a date (YYYY-MM-DD)"
	case timestampValue:
		return "an RFC 3339 timestamp"
	default:
		return "a string"
	}
}

type field struct {
	column   string
	kind     valueKind
	required bool
}

// fieldSet maps public camelCase keys to storage columns.
type fieldSet map[string]field

var (
	gameFields = fieldSet{
		"title":              {column: "title", kind: textValue, required: true},
		"plotSummary":        {column: "plot_summary", kind: textValue},
		"releaseDate":        {column: "release_date", kind: dateValue, required: true},
		"gameCoverURL":       {column: "game_cover_url", kind: textValue},
		"gameLogoURL":        {column: "game_logo_url", kind: textValue},
		"multiplayerSupport": {column: "multiplayer_support", kind: boolValue},
	}
	characterFields = fieldSet{
		"characterName": {column: "character_name", kind: textValue, required: true},
		"backstory":     {column: "backstory", kind: textValue},
		"description":   {column: "description", kind: textValue},
		"englishVA":     {column: "english_va", kind: textValue},
		"japaneseVA":    {column: "japanese_va", kind: textValue},
		"motionCapture": {column: "motion_capture", kind: textValue},
		"spriteURL":     {column: "sprite_url", kind: textValue},
	}
	mapFields = fieldSet{
		"mapName":     {column: "map_name", kind: textValue, required: true},
		"floorName":   {column: "floor_name", kind: textValue},
		"description": {column: "description", kind: textValue},
		"mapURL":      {column: "map_url", kind: textValue},
		"gameID":      {column: "game_id", kind: intValue, required: true},
	}
	mobFields = fieldSet{
		"mobName":      {column: "mob_name", kind: textValue, required: true},
		"mobType":      {column: "mob_type", kind: textValue},
		"description":  {column: "description", kind: textValue},
		"weakness":     {column: "weakness", kind: textValue},
		"mobSpriteURL": {column: "mob_sprite_url", kind: textValue},
		"spawnNotes":   {column: "spawn_notes", kind: textValue},
		"gameID":       {column: "game_id", kind: intValue, required: true},
	}
	storyArcFields = fieldSet{
		"arcTitle":    {column: "arc_title", kind: textValue, required: true},
		"arcOrder":    {column: "arc_order", kind: numberValue},
		"summary":     {column: "summary", kind: textValue},
		"description": {column: "description", kind: textValue},
		"isMainArc":   {column: "is_main_arc", kind: boolValue},
		"parentArcID": {column: "parent_arc_id", kind: optionalIntValue},
		"gameID":      {column: "game_id", kind: intValue, required: true},
	}
	// The author and the rated game are fixed once a rating exists.
	ratingFields = fieldSet{
		"rating":          {column: "rating", kind: numberValue, required: true},
		"review":          {column: "review", kind: textValue},
		"reviewTimestamp": {column: "review_timestamp", kind: timestampValue},
		"personalBest":    {column: "personal_best", kind: textValue},
	}
	clipFields = fieldSet{
		"clipTitle": {column: "clip_title", kind: textValue, required: true},
		"clipURL":   {column: "clip_url", kind: textValue},
		"mediaType": {column: "media_type", kind: textValue},
		"gameID":    {column: "game_id", kind: optionalIntValue},
	}
	contributorFields = fieldSet{
		"contributorName": {column: "contributor_name", kind: textValue, required: true},
		"specialization":  {column: "specialization", kind: textValue},
	}
)

// translate converts a camelCase patch into a column map ready for the
// store. Keys are checked in sorted order so errors are deterministic.
func (fs fieldSet) translate(patch map[string]any) (map[string]any, error) {
	if len(patch) == 0 {
		return nil, newError(EmptyUpdate, "No fields to update")
	}
	keys := make([]string, 0, len(patch))
	for key := range patch {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	columns := make(map[string]any, len(patch))
	for _, key := range keys {
		f, ok := fs[key]
		if !ok {
			return nil, newError(MissingRequiredField, fmt.Sprintf("Unknown field %q", key))
		}
		value, err := convertValue(key, f, patch[key])
		if err != nil {
			return nil, err
		}
		columns[f.column] = value
	}
	return columns, nil
}

func convertValue(key string, f field, raw any) (any, error) {
	wrongType := newError(MissingRequiredField, fmt.Sprintf("Field %q must be %s", key, f.kind.describe()))
	if raw == nil {
		if f.kind == optionalIntValue {
			return nil, nil
		}
		if f.required {
			return nil, newError(MissingRequiredField, key+" is required")
		}
		return nil, wrongType
	}

	switch f.kind {
	case textValue:
		s, ok := raw.(string)
		if !ok {
			return nil, wrongType
		}
		s = strings.TrimSpace(s)
		if f.required && s == "" {
			return nil, newError(MissingRequiredField, key+" is required")
		}
		return s, nil
	case intValue, optionalIntValue:
		n, ok := asInt(raw)
		if !ok {
			return nil, wrongType
		}
		return n, nil
	case numberValue:
		n, ok := asFloat(raw)
		if !ok {
			return nil, wrongType
		}
		return n, nil
	case boolValue:
		b, ok := raw.(bool)
		if !ok {
			return nil, wrongType
		}
		return b, nil
	case dateValue:
		s, ok := raw.(string)
		if !ok {
			return nil, wrongType
		}
		s = strings.TrimSpace(s)
		if s == "" && f.required {
			return nil, newError(MissingRequiredField, key+" is required")
		}
		d, err := parseDate(s)
		if err != nil {
			return nil, wrongType
		}
		return d, nil
	case timestampValue:
		s, ok := raw.(string)
		if !ok {
			return nil, wrongType
		}
		ts, err := time.Parse(time.RFC3339, strings.TrimSpace(s))
		if err != nil {
			return nil, wrongType
		}
		return ts.UTC(), nil
	}
	return nil, wrongType
}

func asFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, !math.IsNaN(v) && !math.IsInf(v, 0)
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	}
	return 0, false
}

func asInt(raw any) (int64, bool) {
	switch v := raw.(type) {
	case int:
		return int64(v), true
	case int64:
		return v, true
	case json.Number:
		n, err := v.Int64()
		return n, err == nil
	}
	f, ok := asFloat(raw)
	if !ok || f != math.Trunc(f) || math.Abs(f) > 1<<53 {
		return 0, false
	}
	return int64(f), true
}

// parseDate accepts a plain date or a full RFC 3339 timestamp.
func parseDate(s string) (datatypes.Date, error) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return datatypes.Date(t), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return datatypes.Date{}, err
	}
	return datatypes.Date(time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)), nil
}
