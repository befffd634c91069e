package host

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/dshills/veco/internal/highlight"
)

// pickItems adapts quick pick items to fuzzy.Source, matching on labels.
type pickItems []highlight.QuickPickItem

func (p pickItems) String(i int) string { return p[i].Label }
func (p pickItems) Len() int            { return len(p) }

// MatchItem resolves a typed answer to one of items: a 1-based number, a
// label (case-insensitive), or the best fuzzy match on the labels.
func MatchItem(query string, items []highlight.QuickPickItem) (highlight.QuickPickItem, bool) {
	query = strings.TrimSpace(query)
	if query == "" || len(items) == 0 {
		return highlight.QuickPickItem{}, false
	}

	if n, err := strconv.Atoi(query); err == nil {
		if n >= 1 && n <= len(items) {
			return items[n-1], true
		}
		return highlight.QuickPickItem{}, false
	}

	for _, it := range items {
		if strings.EqualFold(it.Label, query) {
			return it, true
		}
	}

	matches := fuzzy.FindFrom(query, pickItems(items))
	if len(matches) == 0 {
		return highlight.QuickPickItem{}, false
	}
	return items[matches[0].Index], true
}

// prompter asks for a pick on a line-oriented terminal.
type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func (p *prompter) pick(ctx context.Context, items []highlight.QuickPickItem) (highlight.QuickPickItem, bool, error) {
	for i, it := range items {
		if it.Detail != "" {
			fmt.Fprintf(p.out, "%3d) %s  %s\n", i+1, it.Label, it.Detail)
		} else {
			fmt.Fprintf(p.out, "%3d) %s\n", i+1, it.Label)
		}
	}
	fmt.Fprint(p.out, "keyword> ")

	if err := ctx.Err(); err != nil {
		return highlight.QuickPickItem{}, false, err
	}
	line, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return highlight.QuickPickItem{}, false, fmt.Errorf("read pick: %w", err)
	}
	if strings.TrimSpace(line) == "" {
		return highlight.QuickPickItem{}, false, nil
	}

	it, ok := MatchItem(line, items)
	if !ok {
		fmt.Fprintf(p.out, "no keyword matches %q\n", strings.TrimSpace(line))
	}
	return it, ok, nil
}
