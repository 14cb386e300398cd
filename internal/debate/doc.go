// Package debate runs the Moderator→Expert→Critic workflow. The moderator
// triages the question and may answer trivial ones directly; otherwise the
// expert answers, the critic scores, and the moderator decides whether
// another round is worth it. Every role emits structured JSON that the
// parser validates, repairs, or replaces with a safe fallback.
package debate
