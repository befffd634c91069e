package tracing

// Span names.
const (
	SpanSearch     = "highlight.search"
	SpanSearchFile = "highlight.search.file"
	SpanScan       = "highlight.scan"
	SpanAssemble   = "highlight.assemble"
)

// Span attribute keys.
const (
	AttrKeyword     = "highlight.keyword"
	AttrMode        = "highlight.mode"
	AttrKeys        = "highlight.keys"
	AttrFiles       = "highlight.files"
	AttrFailed      = "highlight.files.failed"
	AttrAnnotations = "highlight.annotations"
	AttrMatches     = "highlight.matches"
	AttrDocument    = "document.uri"
	AttrPath        = "file.path"
	AttrState       = "highlight.search.state"
)
