// Package config defines the settings used for manifest generation and
// provides YAML-backed load, save and validation helpers.
package config
