package highlight

import (
	"fmt"
	"runtime"
)

// RenderOptions selects the locator format of rendered annotations.
type RenderOptions struct {
	// Platform is a GOOS value; empty means the running platform.
	Platform string
	// ToggleURI inverts the platform default.
	ToggleURI bool
}

// UsesLineColumn reports whether locators end in ":line:col" rather than
// "#line". Only one of the two forms is clickable per platform.
func (o RenderOptions) UsesLineColumn() bool {
	platform := o.Platform
	if platform == "" {
		platform = runtime.GOOS
	}
	lineCol := platform == "linux" || platform == "darwin"
	if o.ToggleURI {
		lineCol = !lineCol
	}
	return lineCol
}

// RenderAnnotations returns the log lines for records: a numbered locator
// line followed by the indented label of each record.
func RenderAnnotations(records []AnnotationRecord, opts RenderOptions) []string {
	lineCol := opts.UsesLineColumn()
	out := make([]string, 0, 2*len(records))
	for i, r := range records {
		if lineCol {
			out = append(out, fmt.Sprintf("#%d\t%s:%d:%d", i+1, r.URI, r.Line+1, r.StartCol+1))
		} else {
			out = append(out, fmt.Sprintf("#%d\t%s#%d", i+1, r.URI, r.Line+1))
		}
		out = append(out, "\t"+r.Label+"\n")
	}
	return out
}
