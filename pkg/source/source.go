package source

import (
	"github.com/suggestbox/suggestbox/internal/config"
	"github.com/suggestbox/suggestbox/pkg/suggest"
)

// Build assembles the enabled suggestion sources from configuration.
func Build(cfg *config.Config) []suggest.Source {
	var sources []suggest.Source

	if cfg.Sources.RSS.Enabled {
		feeds := make([]Feed, len(cfg.Sources.RSS.Feeds))
		for i, f := range cfg.Sources.RSS.Feeds {
			feeds[i] = Feed{Name: f.Name, URL: f.URL}
		}
		sources = append(sources, NewRSS(feeds))
	}
	if cfg.Sources.Static.Enabled {
		entries := make([]Entry, len(cfg.Sources.Static.Entries))
		for i, e := range cfg.Sources.Static.Entries {
			entries[i] = Entry{Title: e.Title, URL: e.URL}
		}
		sources = append(sources, NewStatic(entries))
	}

	return sources
}
