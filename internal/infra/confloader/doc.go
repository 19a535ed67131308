// Package confloader loads layered configuration with koanf.
//
// Priority (highest to lowest):
//
//  1. Command-line flags (LoadMap)
//  2. Environment variables (RESPKV_ prefix)
//  3. The YAML configuration file
//  4. Default values (WithDefaults)
//
// Watcher reports changes to the configuration file so selected
// settings can be applied without a restart.
package confloader
