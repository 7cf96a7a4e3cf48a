// Package config builds the connection settings every backend command needs.
//
// Settings are layered, later sources winning:
//
//  1. built-in defaults (space "default", 30s timeout)
//  2. the .env file in the repository root, when present
//  3. the process environment
//  4. the selected customer's kibana_url and elastic_space
//
// The result is an explicit Settings value handed to each command; nothing
// in this package is global.
package config
