package drafts

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/oakmund/stanza/internal/cards"
	"github.com/oakmund/stanza/internal/models"
	"github.com/oakmund/stanza/internal/social"
)

// Session is one interactive publishing run: list the staging
// directory, let the operator pick a draft and a publish date, confirm,
// and publish with best-effort side effects afterwards.
type Session struct {
	Workflow *Workflow
	Category string
	Cards    *cards.Generator // nil disables card generation
	Social   *social.Client   // nil disables social posting
	In       io.Reader
	Out      io.Writer
	Now      func() time.Time
}

// Run drives the session until a draft is published or the operator
// cancels. Card and social failures are reported but never undo the
// publish.
func (s *Session) Run(ctx context.Context) error {
	if s.Now == nil {
		s.Now = time.Now
	}
	in := bufio.NewScanner(s.In)

	list, err := s.Workflow.List()
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(s.Out, "No drafts in staging.")
		return nil
	}

	fmt.Fprintln(s.Out, "Drafts:")
	for i, d := range list {
		title := d.Title
		if title == "" {
			title = "(untitled)"
		}
		fmt.Fprintf(s.Out, "  %d) %s — %s\n", i+1, d.Slug, title)
	}

	draft, ok := s.pickDraft(in, list)
	if !ok {
		fmt.Fprintln(s.Out, "Cancelled.")
		return nil
	}

	date, ok := s.pickDate(in)
	if !ok {
		fmt.Fprintln(s.Out, "Cancelled.")
		return nil
	}

	fmt.Fprintf(s.Out, "Publish %q into %s/ dated %s? [y/N] ", draft.Slug, s.Category, date.Format("2006-01-02"))
	if !confirm(in) {
		fmt.Fprintln(s.Out, "Cancelled.")
		return nil
	}

	dest, err := s.Workflow.Publish(draft, s.Category, date)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.Out, "Published: %s\n", dest)

	if s.Cards != nil {
		if out, err := s.Cards.Generate(ctx, draft.Slug, draft.Title, date, draft.CardTheme); err != nil {
			fmt.Fprintf(s.Out, "Card generation failed (publish unaffected): %v\n", err)
		} else {
			fmt.Fprintf(s.Out, "Card written: %s\n", out)
		}
	}

	if s.Social != nil {
		fmt.Fprint(s.Out, "Create a social draft for this post? [y/N] ")
		if confirm(in) {
			text := draft.Title
			if draft.Description != "" {
				text += "\n\n" + draft.Description
			}
			if id, err := s.Social.CreateDraft(ctx, text, nil); err != nil {
				fmt.Fprintf(s.Out, "Social draft failed (publish unaffected): %v\n", err)
			} else {
				fmt.Fprintf(s.Out, "Social draft created: %s\n", id)
			}
		}
	}

	return nil
}

// pickDraft prompts for a draft number; "q" or EOF cancels.
func (s *Session) pickDraft(in *bufio.Scanner, list []models.Draft) (models.Draft, bool) {
	for {
		fmt.Fprintf(s.Out, "Pick a draft [1-%d, q to quit]: ", len(list))
		if !in.Scan() {
			return models.Draft{}, false
		}
		answer := strings.TrimSpace(in.Text())
		if strings.EqualFold(answer, "q") {
			return models.Draft{}, false
		}
		n, err := strconv.Atoi(answer)
		if err != nil || n < 1 || n > len(list) {
			fmt.Fprintln(s.Out, "Not a valid selection.")
			continue
		}
		return list[n-1], true
	}
}

// pickDate prompts for a publish date; empty input means today, "q" or
// EOF cancels.
func (s *Session) pickDate(in *bufio.Scanner) (time.Time, bool) {
	for {
		fmt.Fprintf(s.Out, "Publish date [YYYY-MM-DD, empty for today, q to quit]: ")
		if !in.Scan() {
			return time.Time{}, false
		}
		answer := strings.TrimSpace(in.Text())
		if strings.EqualFold(answer, "q") {
			return time.Time{}, false
		}
		if answer == "" {
			return s.Now(), true
		}
		date, err := time.Parse("2006-01-02", answer)
		if err != nil {
			fmt.Fprintln(s.Out, "Not a valid date.")
			continue
		}
		return date, true
	}
}

func confirm(in *bufio.Scanner) bool {
	if !in.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(in.Text()))
	return answer == "y" || answer == "yes"
}
