package suggest

import "context"

// SourceID identifies the suggestion source that produced a suggestion.
// It is opaque to the shortcut engine; two sources never share an identity
// even when their shortcut ids collide.
type SourceID string

// NeverMakeShortcut is the sentinel shortcut id a source assigns to a
// suggestion that must never be remembered. Clicks on such suggestions are
// observed but not persisted.
const NeverMakeShortcut = "_-1"

// Suggestion is the payload a source supplies at click time. The shortcut
// engine stores and replays every field verbatim, except Icon2 which is
// swapped for the configured refreshing indicator when SpinnerWhileRefreshing
// is set.
type Suggestion struct {
	Source     SourceID `json:"source" db:"source"`
	ShortcutID string   `json:"shortcut_id" db:"shortcut_id"`

	Format   string `json:"format" db:"format"`
	Text1    string `json:"text1" db:"text1"`
	Text2    string `json:"text2" db:"text2"`
	Text2URL string `json:"text2_url" db:"text2_url"`
	Icon1    string `json:"icon1" db:"icon1"`
	Icon2    string `json:"icon2" db:"icon2"`

	IntentAction string `json:"intent_action" db:"intent_action"`
	IntentData   string `json:"intent_data" db:"intent_data"`
	IntentExtra  string `json:"intent_extra" db:"intent_extra"`

	// SuggestQuery is the query the suggestion wants re-issued when picked,
	// as opposed to the query the user actually typed.
	SuggestQuery string `json:"suggest_query" db:"suggest_query"`
	LogType      string `json:"log_type" db:"log_type"`

	SpinnerWhileRefreshing bool `json:"spinner_while_refreshing" db:"spinner"`
}

// Key returns the shortcut identity of the suggestion within its source.
// Suggestions without an explicit shortcut id are still shortcuttable; the
// intent stands in as identity so repeated clicks on the same action merge.
func (s Suggestion) Key() string {
	if s.ShortcutID != "" {
		return s.ShortcutID
	}
	return "intent:" + s.IntentAction + "#" + s.IntentData
}

// Shortcuttable reports whether a click on the suggestion may be persisted.
func (s Suggestion) Shortcuttable() bool {
	return s.ShortcutID != NeverMakeShortcut
}

// Source is a suggestion-source provider. The shortcut engine depends only on
// the ID value; Suggest is for callers that compose live suggestions with
// remembered shortcuts.
type Source interface {
	ID() SourceID
	Suggest(ctx context.Context, query string, limit int) ([]Suggestion, error)
}
