package ledger

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// payloadVersion is the version written by encode. Version 1 is the bare
// JSON array written by earlier clients; it has no envelope.
const payloadVersion = 2

var (
	errEmptyPayload       = errors.New("empty payload")
	errUnsupportedVersion = errors.New("unsupported payload version")
)

type payload struct {
	Version int           `json:"version"`
	Records []UsageRecord `json:"records"`
}

func encode(records []UsageRecord) ([]byte, error) {
	if records == nil {
		records = []UsageRecord{}
	}
	return json.Marshal(payload{Version: payloadVersion, Records: records})
}

// decode parses a stored payload of any known version and returns the
// records with invariants restored, plus the version that was read.
func decode(data []byte) ([]UsageRecord, int, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, 0, errEmptyPayload
	}

	switch data[0] {
	case '[':
		var entries []legacyEntry
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, 0, fmt.Errorf("decode v1 payload: %w", err)
		}
		return normalize(replayLegacy(entries)), 1, nil
	case '{':
		var p payload
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, 0, fmt.Errorf("decode payload: %w", err)
		}
		if p.Version != payloadVersion {
			return nil, p.Version, fmt.Errorf("%w: %d", errUnsupportedVersion, p.Version)
		}
		return normalize(p.Records), p.Version, nil
	default:
		return nil, 0, fmt.Errorf("decode payload: unexpected leading byte %q", data[0])
	}
}

// legacyEntry covers both v1 shapes: an aggregated record, or a flat
// event-log entry that carries an action and a timestamp instead of counts.
type legacyEntry struct {
	RecipeID   string     `json:"recipeId"`
	Title      string     `json:"title"`
	LastViewed legacyTime `json:"lastViewed"`
	ViewCount  int        `json:"viewCount"`
	Favorite   bool       `json:"favorite"`
	Cooked     bool       `json:"cooked"`
	CookCount  int        `json:"cookCount"`
	Action     string     `json:"action"`
	Timestamp  legacyTime `json:"timestamp"`
}

// legacyTime accepts an ISO-8601 string or epoch milliseconds.
type legacyTime struct {
	time.Time
}

func (t *legacyTime) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		parsed, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return fmt.Errorf("parse timestamp %q: %w", s, err)
		}
		t.Time = parsed
		return nil
	}
	var ms float64
	if err := json.Unmarshal(b, &ms); err != nil {
		return fmt.Errorf("parse timestamp %s: %w", b, err)
	}
	t.Time = time.UnixMilli(int64(ms)).UTC()
	return nil
}

// replayLegacy turns v1 entries into aggregated records. Event-log entries
// are applied in order with the same rules the ledger uses at runtime.
func replayLegacy(entries []legacyEntry) []UsageRecord {
	var records []UsageRecord
	index := make(map[string]int)

	for _, e := range entries {
		if e.Action == "" {
			records = append(records, UsageRecord{
				RecipeID:   e.RecipeID,
				Title:      e.Title,
				LastViewed: e.LastViewed.Time,
				ViewCount:  e.ViewCount,
				Favorite:   e.Favorite,
				Cooked:     e.Cooked,
				CookCount:  e.CookCount,
			})
			continue
		}

		id := strings.TrimSpace(e.RecipeID)
		if id == "" {
			continue
		}
		// A first event creates the record already viewed once, as upsert does.
		i, seen := index[id]
		if !seen {
			records = append(records, UsageRecord{
				RecipeID:   id,
				Title:      strings.TrimSpace(e.Title),
				LastViewed: e.Timestamp.Time,
				ViewCount:  1,
			})
			i = len(records) - 1
			index[id] = i
		}
		rec := &records[i]

		switch e.Action {
		case ActionView:
			touch(rec, e.Title, e.Timestamp.Time)
			if seen {
				rec.ViewCount++
			}
		case ActionCook:
			touch(rec, e.Title, e.Timestamp.Time)
			rec.CookCount++
		case ActionFavorite:
			rec.Favorite = !rec.Favorite
		case ActionUnfavorite:
			rec.Favorite = false
		}
	}

	return records
}

// normalize restores the record invariants on data read from storage:
// non-empty unique ids, ViewCount >= 1, CookCount >= 0 and
// Cooked == (CookCount > 0). Duplicate ids are merged into the first
// occurrence.
func normalize(in []UsageRecord) []UsageRecord {
	out := make([]UsageRecord, 0, len(in))
	index := make(map[string]int, len(in))

	for _, r := range in {
		r.RecipeID = strings.TrimSpace(r.RecipeID)
		if r.RecipeID == "" {
			continue
		}
		if r.Cooked && r.CookCount <= 0 {
			r.CookCount = 1
		}
		r.ViewCount = max(r.ViewCount, 0)
		r.CookCount = max(r.CookCount, 0)

		if i, ok := index[r.RecipeID]; ok {
			dst := &out[i]
			dst.ViewCount += r.ViewCount
			dst.CookCount += r.CookCount
			dst.Favorite = dst.Favorite || r.Favorite
			if r.LastViewed.After(dst.LastViewed) {
				touch(dst, r.Title, r.LastViewed)
			}
			continue
		}
		index[r.RecipeID] = len(out)
		out = append(out, r)
	}

	for i := range out {
		out[i].ViewCount = max(out[i].ViewCount, 1)
		out[i].Cooked = out[i].CookCount > 0
	}

	return out
}
