// Package match provides name normalization and Levenshtein distance for
// "did you mean" hints on enum symbols and command-line flags.
//
// Key functions:
//   - NormalizeIdent: normalizes identifiers for fuzzy matching
//   - Levenshtein: computes edit distance between strings
//   - Suggest: picks the closest known name to a mistyped one
//   - KebabCase: derives flag names from Go identifiers
package match
