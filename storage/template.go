// Package storage provides the relational identity stores (PostgreSQL,
// SQLite) and the SQL template interpolation they share.
package storage

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/botmint/chatstore"
)

// reuseStatsUnknown is reported by ReusedTimes on the relational stores:
// database/sql does not expose connection-reuse counts.
const reuseStatsUnknown = "Unknown"

// nullValue is the explicit NULL sentinel for template field maps.
type nullValue struct{}

// Null renders as the literal NULL when placed in a field map.
var Null nullValue

var placeholderPattern = regexp.MustCompile(`\{(\w+)\}`)

// interpolate substitutes {name} placeholders in a SQL template with values
// from the field map. Booleans render as true/false; a missing field, a nil
// value, or the Null sentinel render as NULL; everything else renders as its
// string form with no additional escaping. Values that did not originate
// from a trusted literal must be pre-escaped before entering the field map.
func interpolate(tmpl string, fields map[string]any) string {
	return placeholderPattern.ReplaceAllStringFunc(tmpl, func(m string) string {
		v, ok := fields[m[1:len(m)-1]]
		if !ok || v == nil {
			return "NULL"
		}
		switch t := v.(type) {
		case nullValue:
			return "NULL"
		case bool:
			if t {
				return "true"
			}
			return "false"
		default:
			return fmt.Sprint(v)
		}
	})
}

// userFields builds the escaped field map and ordered column list for a user
// upsert: id, is_bot and first_name always, plus whichever optional fields
// are present. escape pre-escapes string literals for the target engine.
func userFields(user *chatstore.User, escape func(string) string) (map[string]any, []string) {
	fields := map[string]any{
		"id":         user.ID,
		"is_bot":     user.IsBot,
		"first_name": escape(user.FirstName),
	}
	cols := []string{"id", "is_bot", "first_name"}
	for _, opt := range []struct{ col, val string }{
		{"last_name", user.LastName},
		{"username", user.Username},
		{"language_code", user.LanguageCode},
	} {
		if opt.val != "" {
			fields[opt.col] = escape(opt.val)
			cols = append(cols, opt.col)
		}
	}
	return fields, cols
}

// userUpsertSQL renders the INSERT ... ON CONFLICT(id) template for the given
// column list. The conflict clause updates first_name and the optional
// columns present in this write; is_bot is immutable after creation and is
// never part of the update set.
func userUpsertSQL(cols []string) string {
	placeholders := make([]string, len(cols))
	for i, col := range cols {
		placeholders[i] = "{" + col + "}"
	}
	updates := make([]string, 0, len(cols)-2)
	for _, col := range cols {
		if col == "id" || col == "is_bot" {
			continue
		}
		updates = append(updates, col+" = EXCLUDED."+col)
	}
	return fmt.Sprintf(
		"INSERT INTO users (%s) VALUES (%s) ON CONFLICT (id) DO UPDATE SET %s",
		strings.Join(cols, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(updates, ", "),
	)
}
