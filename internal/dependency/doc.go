// Package dependency holds the token-keyed registry that composed types
// resolve their declared dependencies from.
//
// Resolution is eager: a rule is turned into its value when it is
// registered, not when it is looked up. Factory rules resolve their own
// dependency tokens at that moment too, so a factory that names a token
// nobody has registered yet fails at registration time. Lookups never fall
// back to a default; an unknown token is always a *NotFoundError.
package dependency
