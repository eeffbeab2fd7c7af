// Package cli implements the orgchart command-line interface.
//
// The CLI opens a chart session over a configurable storage backend and
// exposes it through subcommands:
//
//   - edit: interactive terminal editor (bubbletea)
//   - show: print the saved chart as a table
//   - render: export the chart as Graphviz DOT or SVG
//   - seed: print the built-in or a YAML seed as chart JSON
//   - reset: delete the saved chart
//   - path: print where the chart is stored
//
// Configuration is read from $XDG_CONFIG_HOME/orgchart/config.toml and
// can be overridden with persistent flags. Loggers are passed through
// context.Context; --verbose switches to debug level.
package cli
