package ports

import "github.com/aretw0/scenery/pkg/domain"

// TextMatcher decides whether a user reply satisfies a rule pattern.
// The resolver treats it as an opaque boolean oracle.
type TextMatcher = domain.Matcher
