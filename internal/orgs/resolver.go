package orgs

import "strings"

// Resolver decides whether two canonical keys refer to the same
// organization. It is a separate strategy so the matching policy can be
// swapped for a stricter one without touching any caller.
type Resolver interface {
	SameOrg(keyA, keyB string) bool
}

// minContainmentLen guards the substring rule against trivially short
// keys: "fc" would otherwise match half the league.
const minContainmentLen = 4

// LenientResolver matches identical keys and non-trivial substring
// containment. Containment absorbs historical naming drift ("bayern
// münchen" vs "bayern münchen ii" stripped upstream). False-positive
// merges of genuinely distinct clubs with nested names are an accepted
// trade-off of this policy.
type LenientResolver struct{}

// SameOrg implements Resolver.
func (LenientResolver) SameOrg(keyA, keyB string) bool {
	if keyA == "" || keyB == "" {
		return false
	}
	if keyA == keyB {
		return true
	}
	if len(keyA) >= minContainmentLen && len(keyB) >= minContainmentLen {
		return strings.Contains(keyA, keyB) || strings.Contains(keyB, keyA)
	}
	return false
}

// StrictResolver matches only identical keys. Not used by default;
// available for callers that cannot tolerate containment merges.
type StrictResolver struct{}

// SameOrg implements Resolver.
func (StrictResolver) SameOrg(keyA, keyB string) bool {
	return keyA != "" && keyA == keyB
}
