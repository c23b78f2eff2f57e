package source

import (
	"context"
	"strings"

	"github.com/suggestbox/suggestbox/pkg/suggest"
)

// SourceStatic is the identity of the fixed-list suggestion source.
const SourceStatic = suggest.SourceID("static")

// Entry is one configured suggestion: a title and the URL it opens.
type Entry struct {
	Title string
	URL   string
}

// Static serves a fixed, configured list of suggestions, bookmark style.
type Static struct {
	entries []Entry
}

// NewStatic creates a fixed-list suggestion source.
func NewStatic(entries []Entry) *Static {
	return &Static{entries: entries}
}

func (s *Static) ID() suggest.SourceID { return SourceStatic }

func (s *Static) Suggest(ctx context.Context, query string, limit int) ([]suggest.Suggestion, error) {
	needle := strings.ToLower(query)

	var suggestions []suggest.Suggestion
	for _, e := range s.entries {
		if needle != "" && !strings.Contains(strings.ToLower(e.Title), needle) {
			continue
		}
		suggestions = append(suggestions, suggest.Suggestion{
			Source:       SourceStatic,
			ShortcutID:   e.URL,
			Text1:        e.Title,
			IntentAction: "open",
			IntentData:   e.URL,
			LogType:      "static",
		})
		if limit > 0 && len(suggestions) >= limit {
			break
		}
	}

	return suggestions, nil
}
