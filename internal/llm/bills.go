package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/talgya/civic-sim/internal/entropy"
	"github.com/talgya/civic-sim/internal/legislation"
	"github.com/talgya/civic-sim/internal/politics"
	"github.com/talgya/civic-sim/internal/world"
)

// maxTitleLen caps generated titles; longer replies are discarded.
const maxTitleLen = 80

// BillAuthor drafts bills with another Author and asks the LLM for a title
// specific to the city. The policy changes are never touched.
type BillAuthor struct {
	Client  *Client
	Base    legislation.Author // defaults to legislation.TemplateAuthor
	Timeout time.Duration      // per call, default 10s
}

// DraftBill implements legislation.Author.
func (a BillAuthor) DraftBill(src *entropy.Source, member *politics.Politician, city *world.City, existing []*legislation.Bill, now time.Time) (*legislation.Bill, bool) {
	base := a.Base
	if base == nil {
		base = legislation.TemplateAuthor{}
	}
	b, ok := base.DraftBill(src, member, city, existing, now)
	if !ok || !a.Client.Enabled() || city == nil {
		return b, ok
	}

	timeout := a.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	title, err := a.Client.Complete(ctx,
		"You name municipal legislation. Reply with the bill title only, no quotes.",
		fmt.Sprintf("City: %s. Sponsor: %s (%s). Bill: %s. Summary: %s\nGive it a short local title.",
			city.Name, member.Name, member.PartyName, b.Title, b.Summary),
		40)
	if err != nil {
		slog.Debug("bill title generation failed", "bill", b.ID, "error", err)
		return b, true
	}
	if t := cleanTitle(title); t != "" {
		b.Title = t
	}
	return b, true
}

func cleanTitle(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	s = strings.Trim(s, "\"'* ")
	if s == "" || len(s) > maxTitleLen {
		return ""
	}
	return s
}
