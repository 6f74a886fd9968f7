// Package ui adapts wtm's terminal components to the decisions the core
// asks for. [Confirmer] answers safety prompts: --yes accepts everything,
// a non-interactive session declines, and otherwise the user is asked
// with a bubbletea prompt.
//
// Subpackages hold the components themselves: prompt (yes/no prompt),
// progress (spinner), static (tables) and styles (palette and markers).
package ui
