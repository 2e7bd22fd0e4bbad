// Package credits resolves the people credited on subjects (presenters,
// producers and so on) for a batch of subjects in one query.
package credits
