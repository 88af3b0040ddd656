package app

import "studyhub-service/internal/domain"

// CanViewNote decides whether a principal may view a note. The precedence
// chain is fixed and first-match-wins: admin role, blanket notes grant,
// public flag, then the per-note grant set. Coarse signals short-circuit
// before any per-user state is consulted; public notes never depend on it.
// Pure and side-effect-free — call it on every content-serving path and do
// not cache the result across requests, grants can change mid-session.
func CanViewNote(principal domain.User, note domain.Note) bool {
	if principal.Role == domain.RoleAdmin {
		return true
	}
	if principal.HasFullNotesAccess {
		return true
	}
	if note.IsPublic {
		return true
	}
	return principal.CanAccessNote(note.ID)
}
