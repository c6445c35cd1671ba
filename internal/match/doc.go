// Package match scores uploaded source columns against canonical target
// fields and resolves a one-to-one assignment.
//
// Scoring combines exact token equality, containment and normalized
// Levenshtein similarity over normalized header tokens. Resolution is a
// deterministic greedy bipartite assignment.
package match
