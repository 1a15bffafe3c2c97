package app

import "strings"

// Decision is the outcome of classifying a user reply at an approval gate.
type Decision struct {
	Approved bool
	Feedback string
}

// approvals holds replies that count as approval. Matching is
// case-insensitive and ignores surrounding whitespace and trailing
// punctuation. Anything not in this set is treated as revision feedback.
var approvals = map[string]struct{}{
	"yes":        {},
	"y":          {},
	"yep":        {},
	"yeah":       {},
	"ok":         {},
	"okay":       {},
	"sure":       {},
	"approve":    {},
	"approved":   {},
	"lgtm":       {},
	"looks good": {},
}

// classifyReply decides whether a reply approves the pending artifact.
// Ambiguous replies are never approvals: the raw text becomes revision
// feedback instead, so the worst case is an extra revision cycle rather
// than an unwanted production run.
func classifyReply(reply string) Decision {
	trimmed := strings.TrimSpace(reply)
	normalized := strings.ToLower(strings.TrimRight(trimmed, ".!?"))
	normalized = strings.Join(strings.Fields(normalized), " ")
	if _, ok := approvals[normalized]; ok {
		return Decision{Approved: true}
	}
	return Decision{Feedback: trimmed}
}
