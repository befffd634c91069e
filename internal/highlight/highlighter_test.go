package highlight

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/veco/internal/config"
	"github.com/dshills/veco/internal/config/notify"
	"github.com/dshills/veco/internal/diagnostic"
)

func newHighlighter(t *testing.T, f *fixture, opts ...Option) *Highlighter {
	t.Helper()
	opts = append([]Option{WithScanDebounce(time.Hour), WithPlatform("linux")}, opts...)
	h := New(f.deps(), opts...)
	t.Cleanup(h.Dispose)
	return h
}

func settingsChange() notify.Change {
	return notify.Change{Path: config.FullKey(config.KeyKeywords), Type: notify.ChangeSet, Source: "test"}
}

func TestHighlighter_InitialStatus(t *testing.T) {
	f := newFixture("")
	newHighlighter(t, f)
	assert.Equal(t, StatusInitial, f.status.text())
	assert.Equal(t, StatusInitialTooltip, f.status.tooltip)
}

func TestHighlighter_InitAndScan(t *testing.T) {
	f := newFixture("// TODO: a\n// FIXME: b")
	h := newHighlighter(t, f)

	_, err := h.Scan(context.Background())
	assert.ErrorIs(t, err, ErrNotInitialized)

	require.NoError(t, h.Init())
	assert.Equal(t, []string{"NOTE:", "TODO:", "FIXME:"}, h.Assembly().Keys)
	assert.Equal(t, 3, h.Decorations().Len())

	res, err := h.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Matches)
}

func TestHighlighter_InitBadPattern(t *testing.T) {
	f := newFixture("")
	f.config.set(func(c *config.Highlight) { c.KeywordsPattern = "(unclosed" })
	h := newHighlighter(t, f)

	err := h.Init()
	require.Error(t, err)
	assert.True(t, IsPatternError(err))
	require.Len(t, f.window.errors, 1)
	assert.Contains(t, f.window.errors[0], "(unclosed")
	assert.Nil(t, h.Assembly())
}

func TestHighlighter_ConfigChangeReassembles(t *testing.T) {
	f := newFixture("// HACK: x")
	h := newHighlighter(t, f)
	require.NoError(t, h.Init())
	created := f.window.createdCount()

	h.HandleConfigChange(settingsChange())
	assert.Equal(t, created, f.window.createdCount(), "unchanged keys keep their handles")

	f.config.set(func(c *config.Highlight) { c.Keywords = append(c.Keywords, config.Literal("HACK")) })
	h.HandleConfigChange(settingsChange())
	assert.Contains(t, h.Assembly().Keys, "HACK")
	assert.Equal(t, created+1, f.window.createdCount())

	h.Flush()
	hack, ok := h.Decorations().Handle("HACK")
	require.True(t, ok)
	r, _ := f.editor.ranges(hack)
	assert.Len(t, r, 1, "change triggered a scan")
}

func TestHighlighter_ConfigChangeIgnored(t *testing.T) {
	f := newFixture("")
	h := newHighlighter(t, f)
	require.NoError(t, h.Init())
	before := h.Assembly()

	f.config.set(func(c *config.Highlight) { c.Keywords = append(c.Keywords, config.Literal("HACK")) })
	h.HandleConfigChange(notify.Change{Path: "editor.fontSize", Type: notify.ChangeSet})
	assert.Same(t, before, h.Assembly(), "other sections are ignored")

	f.config.set(func(c *config.Highlight) { c.Enabled = false })
	h.HandleConfigChange(settingsChange())
	assert.Same(t, before, h.Assembly(), "disabled settings are not reassembled")
}

func TestHighlighter_ModeSwitch(t *testing.T) {
	f := newFixture("fixme HACK")
	h := newHighlighter(t, f)
	require.NoError(t, h.Init())
	keywordHandles := append([]*fakeHandle(nil), f.window.created...)

	f.config.set(func(c *config.Highlight) { c.KeywordsPattern = "FIXME|HACK" })
	h.HandleConfigChange(settingsChange())
	for _, hd := range keywordHandles {
		assert.True(t, hd.isDisposed())
	}
	assert.Equal(t, ModeRegex, h.Assembly().Mode)

	_, err := h.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"HACK"}, h.Decorations().Keys(), "case-sensitive pattern misses fixme")
}

func TestHighlighter_DisableClearsDecorations(t *testing.T) {
	f := newFixture("// TODO: a\n// NOTE: b")
	h := newHighlighter(t, f)
	require.NoError(t, h.Init())
	_, err := h.Scan(context.Background())
	require.NoError(t, err)

	require.NoError(t, h.ToggleEnabled(context.Background()))
	assert.False(t, f.config.Highlight().Enabled)
	assert.True(t, h.scanner.Pending(), "toggle schedules a rescan")
	h.Flush()

	for _, hd := range h.Decorations().Handles() {
		r, ok := f.editor.ranges(hd)
		require.True(t, ok)
		assert.Empty(t, r)
	}
}

func TestHighlighter_ToggleWritesGlobal(t *testing.T) {
	f := newFixture("")
	h := newHighlighter(t, f)

	require.NoError(t, h.ToggleEnabled(context.Background()))
	require.Len(t, f.config.updates, 1)
	assert.Equal(t, update{key: config.KeyEnabled, value: false, global: true}, f.config.updates[0])
}

func TestHighlighter_ToggleErrors(t *testing.T) {
	f := newFixture("")
	h := newHighlighter(t, f)
	f.config.updateErr = errors.New("read-only")

	require.Error(t, h.ToggleEnabled(context.Background()))
	f.config.set(func(c *config.Highlight) { c.Enabled = false })
	require.Error(t, h.ToggleEnabled(context.Background()))

	assert.Equal(t, []string{"Error disabling highlight", "Error enabling highlight"}, f.window.errors)
	assert.False(t, h.scanner.Pending())
}

func TestHighlighter_DocumentClose(t *testing.T) {
	f := newFixture("")
	h := newHighlighter(t, f)
	f.diags.Set("file:///ws/a.js", []diagnostic.Diagnostic{{Message: "x"}})

	h.HandleDocumentClose("file:///ws/a.js")
	assert.False(t, f.diags.Has("file:///ws/a.js"))
}

func listFixture(t *testing.T) *fixture {
	t.Helper()
	f := newFixture("")
	f.ws = &fakeWorkspace{
		files: []string{"/ws/a.js", "/ws/b.js"},
		docs: map[string]string{
			"/ws/a.js": "// TODO: one\n// TODO(bob): two",
			"/ws/b.js": "// NOTE: three",
		},
	}
	f.config.set(func(c *config.Highlight) {
		c.Keywords = []config.Keyword{config.Structured{Text: "TODO:", Regex: &config.Regex{Pattern: `TODO(\(\w+\))?:`}}}
	})
	return f
}

func TestHighlighter_ListAnnotationsAll(t *testing.T) {
	f := listFixture(t)
	f.window.pick = pickLabel(SearchAll)
	h := newHighlighter(t, f)
	require.NoError(t, h.Init())

	res, err := h.ListAnnotations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SearchDone, res.State)
	assert.Len(t, h.Annotations(), 3)

	require.NotEmpty(t, f.window.items)
	assert.Equal(t, QuickPickItem{Label: SearchAll, Detail: "Search all supported annotations"}, f.window.items[0])
	var labels []string
	for _, it := range f.window.items[1:] {
		labels = append(labels, it.Label)
	}
	assert.Equal(t, h.Assembly().Keys, labels)

	assert.Equal(t, 1, f.log.shown, "results shown after the search")
	assert.Equal(t, []string{
		"#1\tfile:///ws/a.js:1:4",
		"\tTODO: one\n",
		"#2\tfile:///ws/a.js:2:4",
		"\tTODO(bob): two\n",
		"#3\tfile:///ws/b.js:1:4",
		"\tNOTE: three\n",
	}, f.log.lines)
}

func TestHighlighter_ListAnnotationsSingleKeyIsLiteral(t *testing.T) {
	f := listFixture(t)
	f.window.pick = pickLabel("TODO:")
	h := newHighlighter(t, f)
	require.NoError(t, h.Init())

	_, err := h.ListAnnotations(context.Background())
	require.NoError(t, err)
	records := h.Annotations()
	require.Len(t, records, 1)
	assert.Equal(t, "TODO: one", records[0].Label)
}

func TestHighlighter_ListAnnotationsCanceled(t *testing.T) {
	f := listFixture(t)
	h := newHighlighter(t, f)
	require.NoError(t, h.Init())

	res, err := h.ListAnnotations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SearchCanceled, res.State)
	assert.Equal(t, StatusInitial, f.status.text(), "no search ran")
	assert.Zero(t, f.log.shown)
}

func TestHighlighter_ListAnnotationsRegexModeSkipsPrompt(t *testing.T) {
	f := listFixture(t)
	f.config.set(func(c *config.Highlight) { c.KeywordsPattern = "NOTE" })
	h := newHighlighter(t, f)
	require.NoError(t, h.Init())

	res, err := h.ListAnnotations(context.Background())
	require.NoError(t, err)
	assert.Nil(t, f.window.items)
	assert.Equal(t, SearchDone, res.State)
	assert.Len(t, h.Annotations(), 1)
}

func TestHighlighter_ListAnnotationsReplacesRecords(t *testing.T) {
	f := listFixture(t)
	f.window.pick = pickLabel(SearchAll)
	h := newHighlighter(t, f)
	require.NoError(t, h.Init())

	_, err := h.ListAnnotations(context.Background())
	require.NoError(t, err)
	require.Len(t, h.Annotations(), 3)

	f.window.pick = pickLabel("NOTE:")
	_, err = h.ListAnnotations(context.Background())
	require.NoError(t, err)
	assert.Len(t, h.Annotations(), 1)

	f.config.set(func(c *config.Highlight) { c.MaxFilesForSearch = 0 })
	res, err := h.ListAnnotations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SearchNoFiles, res.State)
	assert.Empty(t, h.Annotations())
}

func TestHighlighter_ListAnnotationsBeforeInit(t *testing.T) {
	h := newHighlighter(t, listFixture(t))
	_, err := h.ListAnnotations(context.Background())
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestHighlighter_ShowAnnotations(t *testing.T) {
	f := newFixture("")
	h := newHighlighter(t, f, WithPlatform("windows"))

	h.ShowAnnotations()
	assert.Equal(t, []string{MsgNoResults}, f.window.infos)

	h.setRecords([]AnnotationRecord{{URI: "file:///ws/a.js", Line: 4, StartCol: 2, Label: "TODO: x"}})
	h.ShowAnnotations()
	assert.Equal(t, []string{"#1\tfile:///ws/a.js#5", "\tTODO: x\n"}, f.log.lines)
	assert.Equal(t, 1, f.log.clears)

	f.config.set(func(c *config.Highlight) { c.ToggleURI = true })
	h.ShowAnnotations()
	assert.Equal(t, []string{"#1\tfile:///ws/a.js:5:3", "\tTODO: x\n"}, f.log.lines, "log cleared before each render")

	f.config.set(func(c *config.Highlight) { c.Enabled = false })
	h.ShowAnnotations()
	assert.Equal(t, []string{MsgEnableFirst}, f.window.warnings)
}

func TestHighlighter_Dispose(t *testing.T) {
	f := newFixture("")
	h := New(f.deps(), WithScanDebounce(time.Hour))
	require.NoError(t, h.Init())

	h.Dispose()
	h.Dispose()
	assert.True(t, f.log.disposed)
	assert.True(t, f.status.disposed)
	for _, hd := range f.window.created {
		assert.True(t, hd.isDisposed())
	}
	assert.ErrorIs(t, h.Init(), ErrDisposed)
}

func TestRenderAnnotations(t *testing.T) {
	records := []AnnotationRecord{
		{URI: "file:///a.js", Line: 0, StartCol: 0, Label: "NOTE: a"},
		{URI: "file:///b.js", Line: 9, StartCol: 4, Label: "TODO: b"},
	}

	tests := []struct {
		name  string
		opts  RenderOptions
		first string
	}{
		{"linux", RenderOptions{Platform: "linux"}, "#1\tfile:///a.js:1:1"},
		{"darwin", RenderOptions{Platform: "darwin"}, "#1\tfile:///a.js:1:1"},
		{"windows", RenderOptions{Platform: "windows"}, "#1\tfile:///a.js#1"},
		{"linux toggled", RenderOptions{Platform: "linux", ToggleURI: true}, "#1\tfile:///a.js#1"},
		{"windows toggled", RenderOptions{Platform: "windows", ToggleURI: true}, "#1\tfile:///a.js:1:1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := RenderAnnotations(records, tt.opts)
			require.Len(t, lines, 4)
			assert.Equal(t, tt.first, lines[0])
			assert.Equal(t, "\tNOTE: a\n", lines[1])
		})
	}

	assert.Equal(t, "#2\tfile:///b.js:10:5", RenderAnnotations(records, RenderOptions{Platform: "linux"})[2])
	assert.Empty(t, RenderAnnotations(nil, RenderOptions{}))
}
