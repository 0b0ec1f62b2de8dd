// Package file provides file-based configuration adapters.
//
// Adapters:
//   - ConfigStore: TOML configuration at ~/.dossier/config.toml
//   - PromptStore: prompt overrides at ~/.dossier/prompts/<name>.txt, hot-reloaded with fsnotify
package file
