// Package internal contains the packages behind the pathtemplate CLI.
//
// These packages are not importable by other modules. The rendering engine
// itself lives in pkg/pathtemplate and has no dependency on anything here.
//
// # Package Organization
//
//   - bindings: binding files, name=value assignments and layered merging
//   - config: viper-backed configuration with validation and defaults
//   - errors: AppError, error collection, exit codes and suggestions
//   - logging: slog-based structured logging
//   - registry: named, cached compiled templates with change events
//   - version: build information
//   - watcher: fsnotify monitoring with debouncing and glob filters
//
// # Data Flow
//
//	config.Load ──> registry.Register ──> pathtemplate.Compile
//	                                            │
//	bindings.LoadAll ──> bindings.Merge ──> Template.RenderOptional
//	                                            │
//	watcher events ──> re-read config and bindings, render again
//
// Errors from pkg/pathtemplate are converted with errors.FromRenderError so
// the CLI can pick an exit code and print hints.
package internal
