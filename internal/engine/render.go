package engine

import (
	"fmt"
	"strings"

	"github.com/FranksOps/scout/internal/classify"
	"github.com/FranksOps/scout/internal/model"
)

// FormatContext renders a response as plain text suitable for downstream
// prompt assembly: instant answer and knowledge panel first, then one block
// per ranked result. The output is truncated to at most budget characters
// (0 means unbounded).
func FormatContext(resp model.SearchResponse, budget int) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Web search results for: %s\n\n", resp.Query))

	if ia := resp.InstantAnswer; ia != nil {
		sb.WriteString("Instant answer")
		if ia.Source != "" {
			sb.WriteString(" (" + ia.Source + ")")
		}
		sb.WriteString(":\n")
		sb.WriteString(ia.Answer)
		sb.WriteString("\n\n")
	}

	if kp := resp.KnowledgePanel; kp != nil {
		sb.WriteString(fmt.Sprintf("About %s:\n%s\n\n", kp.Title, kp.Abstract))
	}

	for i, r := range resp.Results {
		sb.WriteString(fmt.Sprintf("[%d] %s\n", i+1, r.Title))
		sb.WriteString(fmt.Sprintf("    %s | %s | reliability %.2f\n", r.Domain, r.SourceType, r.Reliability))
		body := r.FullContent
		if body == "" {
			body = r.Snippet
		}
		if body != "" {
			sb.WriteString(body)
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	out := sb.String()
	if budget > 0 && len(out) > budget {
		out = out[:budget]
	}
	return out
}

// Sources projects the ranked results into the UI-oriented source list.
func Sources(resp model.SearchResponse) []model.Source {
	sources := make([]model.Source, 0, len(resp.Results))
	for i, r := range resp.Results {
		s := model.Source{
			Index:       i + 1,
			Title:       r.Title,
			URL:         r.URL,
			Domain:      r.Domain,
			Snippet:     r.Snippet,
			Type:        r.SourceType,
			TypeIcon:    classify.TypeIcon(r.SourceType),
			Reliability: r.Reliability,
			Quality:     r.Quality,
			WordCount:   r.WordCount,
		}
		if r.Content != nil {
			s.PublishDate = r.Content.PublishDate
			s.Author = r.Content.Author
		}
		sources = append(sources, s)
	}
	return sources
}
