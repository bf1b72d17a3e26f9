// Package config loads the tabgen.yaml CLI configuration: where sheets are
// read from, which writers run, and the default directives applied to every
// sheet.
package config
