// Package config loads the localstor YAML configuration file. Command line
// flags override the values read here.
package config
