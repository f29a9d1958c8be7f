// Package config provides configuration structures and utilities for
// dirharvest. It defines the crawl tunables, the output options and the
// optional YAML configuration file that can override extraction contracts.
package config
