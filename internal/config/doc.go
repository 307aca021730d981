// Package config loads codecore settings from TOML or YAML files and the
// environment, validates them and turns them into engine options.
//
// Files are picked by extension: .toml for TOML, .yaml or .yml for YAML.
// Keys are snake_case and grouped into editor, lexer and log sections:
//
//	[editor]
//	tab_width = 4
//	word_wrap = true
//	row_width = 100
//	merge_window = "750ms"
//
//	[lexer]
//	language = "lua"
//
//	[log]
//	level = "debug"
//
// Environment variables prefixed CODECORE_ override file values; see
// ApplyEnv. Watch reloads a file whenever it changes on disk.
package config
