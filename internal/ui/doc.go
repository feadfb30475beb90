// Package ui implements the interactive terminal interface for list migration.
//
// The TUI walks through the same pipeline as `skylist migrate run`:
// a form collects the source list URI and the new list's metadata, the
// source roster is fetched and shown for review, and after confirmation the
// migration runs with live per-member progress fed by the engine's progress
// channel.
//
// Built with bubbletea (Elm-style model/update/view), bubbles for the text
// inputs and member list, and lipgloss for styling.
package ui
