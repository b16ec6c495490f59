// Package tasks implements the import pipeline.
//
// The engine flow:
//  1. Normalize each local title (parenthetical segments stripped)
//  2. Resolve the song against the catalog, search cache first
//  3. Emit a CSV row per song: hit rows carry the matched title, artist, and
//     Levenshtein distance; miss rows leave the match columns empty
//  4. When importing (not a dry run), POST matched URIs to the target
//     playlist in chunks of 100
//
// Processing is strictly sequential; a mid-run request failure aborts the
// whole run with the underlying error.
package tasks
