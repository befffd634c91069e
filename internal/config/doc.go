// Package config provides the settings of the highlight feature.
//
// Settings are read from up to two files with higher layers overriding lower:
//
//	┌─────────────────────────────┐
//	│  3. Workspace settings      │  ← <workspace>/.veco/settings.yaml
//	├─────────────────────────────┤
//	│  2. User settings           │  ← ~/.config/veco/settings.yaml
//	├─────────────────────────────┤
//	│  1. Built-in defaults       │  ← Lowest priority
//	└─────────────────────────────┘
//
// Every file nests the options under the "veco.highlight" section:
//
//	veco:
//	  highlight:
//	    isCaseSensitive: false
//	    keywords:
//	      - "HACK:"
//	      - text: "TODO:"
//	        diagnosticSeverity: warning
//	        backgroundColor: "#ffc53d"
//
// JSON and TOML files with the same shape are accepted as well.
//
// # Sub-packages
//
//   - notify: change subscriptions ("affects configuration" checks)
//   - watcher: fsnotify-based reload of the settings files
package config
