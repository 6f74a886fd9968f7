// Package prompt provides small interactive terminal prompts.
//
// Prompts render to stderr so stdout stays clean for piping, e.g.
// cd "$(wtm path feature/x)".
package prompt
