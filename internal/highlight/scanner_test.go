package highlight

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/veco/internal/config"
	"github.com/dshills/veco/internal/diagnostic"
	"github.com/dshills/veco/internal/document"
)

type scanFixture struct {
	*fixture
	state   *DecorationState
	scanner *Scanner

	mu       sync.Mutex
	assembly *Assembly
}

func newScanFixture(t *testing.T, text string, mod func(*config.Highlight), opts ...ScannerOption) *scanFixture {
	t.Helper()
	f := &scanFixture{fixture: newFixture(text)}
	if mod != nil {
		f.config.set(mod)
	}
	f.reassemble(t)
	f.scanner = NewScanner(f.window, f.diags, f.state, f.source, opts...)
	t.Cleanup(f.scanner.Stop)
	return f
}

func (f *scanFixture) reassemble(t *testing.T) {
	t.Helper()
	a, err := Assemble(f.config.Highlight())
	require.NoError(t, err)
	if f.state == nil {
		f.state = NewDecorationState(f.window, nil)
	}
	f.state.Sync(a)
	f.mu.Lock()
	f.assembly = a
	f.mu.Unlock()
}

func (f *scanFixture) source() (config.Highlight, *Assembly) {
	cfg := f.config.Highlight()
	f.mu.Lock()
	defer f.mu.Unlock()
	return cfg, f.assembly
}

func (f *scanFixture) rangesFor(t *testing.T, key string) []document.Range {
	t.Helper()
	h, ok := f.state.Handle(key)
	require.True(t, ok, "no handle for %q", key)
	r, set := f.editor.ranges(h)
	require.True(t, set, "decorations for %q never pushed", key)
	return r
}

func span(line, start, end int) document.Range {
	return document.Range{
		Start: document.Position{Line: line, Character: start},
		End:   document.Position{Line: line, Character: end},
	}
}

func TestScanner_PushesRangesPerKey(t *testing.T) {
	f := newScanFixture(t, "// TODO: a\n// NOTE: b TODO: c", nil)

	res, err := f.scanner.ScanNow(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Skipped)
	assert.Equal(t, 3, res.Matches)

	assert.Equal(t, []document.Range{span(0, 3, 8), span(1, 11, 16)}, f.rangesFor(t, "TODO:"))
	assert.Equal(t, []document.Range{span(1, 3, 8)}, f.rangesFor(t, "NOTE:"))
	assert.Empty(t, f.rangesFor(t, "FIXME:"), "keys without matches are cleared explicitly")
	assert.Contains(t, res.Ranges, "FIXME:")

	assert.Equal(t, 1, f.diags.setCount(), "diagnostics always replaced")
	assert.Empty(t, f.diags.Get("file:///ws/a.js"), "diagnostics off by default")
}

func TestScanner_CaseInsensitiveScenario(t *testing.T) {
	f := newScanFixture(t, "todo: fix\nTODO: fix", func(c *config.Highlight) {
		c.IsCaseSensitive = false
		c.Keywords = []config.Keyword{config.Structured{Text: "TODO:"}}
	})

	res, err := f.scanner.ScanNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Matches)
	assert.Equal(t, []document.Range{span(0, 0, 5), span(1, 0, 5)}, f.rangesFor(t, "TODO:"))
}

func TestScanner_DisabledClearsEverything(t *testing.T) {
	f := newScanFixture(t, "// TODO: a\n// FIXME: b", func(c *config.Highlight) {
		c.EnableDiagnostics = true
	})
	_, err := f.scanner.ScanNow(context.Background())
	require.NoError(t, err)
	require.Len(t, f.rangesFor(t, "TODO:"), 1)
	require.Len(t, f.diags.Get("file:///ws/a.js"), 2)

	f.config.set(func(c *config.Highlight) { c.Enabled = false })
	res, err := f.scanner.ScanNow(context.Background())
	require.NoError(t, err)

	for _, key := range f.state.Keys() {
		assert.Empty(t, f.rangesFor(t, key), key)
	}
	assert.Len(t, res.Ranges, 3)
	assert.Empty(t, f.diags.Get("file:///ws/a.js"))
}

func TestScanner_Diagnostics(t *testing.T) {
	long := "FIXME:" + strings.Repeat("word ", 50)
	text := "x // FIXME: broken thing\n// NOTE: fyi\n// HACK: none\n" + long
	f := newScanFixture(t, text, func(c *config.Highlight) {
		c.EnableDiagnostics = true
		c.Keywords = append(c.Keywords, config.Literal("HACK"))
	})

	res, err := f.scanner.ScanNow(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Diagnostics, 3, "HACK has no severity")

	first := res.Diagnostics[0]
	assert.Equal(t, diagnostic.SeverityError, first.Severity)
	assert.Equal(t, "FIXME: broken thing", first.Message)
	assert.Equal(t, span(0, 5, 11), first.Range)
	assert.Equal(t, DiagnosticSource, first.Source)

	assert.Equal(t, diagnostic.SeverityInformation, res.Diagnostics[1].Severity)

	msg := res.Diagnostics[2].Message
	assert.True(t, strings.HasSuffix(msg, "word..."), msg)
	assert.Equal(t, 163, document.RuneLen(msg), "160 runes trimmed, then the ellipsis")

	stored := f.diags.Get("file:///ws/a.js")
	assert.Len(t, stored, 3)
}

func TestScanner_OutOfScope(t *testing.T) {
	f := newScanFixture(t, "// TODO: a", nil)
	f.window.setActive(newEditor("file:///ws/main.go", "/ws/main.go", "// TODO: a"))

	res, err := f.scanner.ScanNow(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Skipped)
	assert.Equal(t, "out of scope", res.Reason)
	assert.Equal(t, 0, f.diags.setCount())
}

func TestScanner_NoEditorOrAssembly(t *testing.T) {
	f := newScanFixture(t, "", nil)
	f.window.setActive(nil)
	res, err := f.scanner.ScanNow(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Skipped)

	f.window.setActive(f.editor)
	f.mu.Lock()
	f.assembly = nil
	f.mu.Unlock()
	_, err = f.scanner.ScanNow(context.Background())
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestScanner_EditorSwitchedDuringScan(t *testing.T) {
	f := newScanFixture(t, "// TODO: a", nil)
	other := newEditor("file:///ws/b.js", "/ws/b.js", "// TODO: b")

	var once sync.Once
	f.config.mu.Lock()
	f.config.onRead = func() { once.Do(func() { f.window.setActive(other) }) }
	f.config.mu.Unlock()

	res, err := f.scanner.ScanNow(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Skipped)
	assert.Equal(t, "editor changed", res.Reason)
	assert.Zero(t, f.editor.calls)
	assert.Zero(t, other.calls)
	assert.Equal(t, 0, f.diags.setCount())
}

func TestScanner_RegexModeCreatesHandlesLazily(t *testing.T) {
	f := newScanFixture(t, "fixme hack\nFIXME", func(c *config.Highlight) {
		c.KeywordsPattern = "FIXME|HACK"
		c.IsCaseSensitive = false
	})
	assert.Equal(t, 0, f.state.Len())

	_, err := f.scanner.ScanNow(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"FIXME", "HACK"}, f.state.Keys())
	assert.Equal(t, []document.Range{span(0, 0, 5), span(1, 0, 5)}, f.rangesFor(t, "FIXME"))
	assert.Equal(t, []document.Range{span(0, 6, 10)}, f.rangesFor(t, "HACK"))

	_, err = f.scanner.ScanNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, f.window.createdCount(), "one handle per distinct value")
}

func TestScanner_DebounceRunsOnce(t *testing.T) {
	f := newScanFixture(t, "// TODO: a", nil, WithDebounce(30*time.Millisecond))

	for i := 0; i < 5; i++ {
		f.scanner.Trigger()
	}
	assert.True(t, f.scanner.Pending())

	require.Eventually(t, func() bool { return f.diags.setCount() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, 1, f.diags.setCount(), "only the last trigger in the window scans")
	assert.False(t, f.scanner.Pending())
}

func TestScanner_FlushAndStop(t *testing.T) {
	f := newScanFixture(t, "// TODO: a", nil, WithDebounce(time.Hour))

	f.scanner.Trigger()
	f.scanner.Flush()
	assert.Equal(t, 1, f.diags.setCount())

	f.scanner.Stop()
	f.scanner.Trigger()
	f.scanner.Flush()
	assert.Equal(t, 1, f.diags.setCount(), "stopped scanner does not scan")
}
