// Package selector turns class and method selections into engine discovery
// filters and post-filters discovered cases by method identity.
package selector

import (
	"github.com/billrob/xunit/engine"
	"github.com/billrob/xunit/types"
)

// Resolver resolves a descriptor's structured key back to live method
// metadata. A miss means the class or method cannot be loaded; such cases
// are filtered out silently since partially-loaded assemblies are expected.
type Resolver interface {
	Resolve(key types.TestKey) (types.Method, bool)
}

// DiscoveryFilter builds the discovery settings for a class selection.
// A nil class selects the whole assembly; otherwise discovery is restricted
// to the exact fully-qualified class name, not a prefix.
func DiscoveryFilter(class *types.Class) engine.DiscoverySettings {
	if class == nil {
		return engine.DiscoverySettings{}
	}
	return engine.DiscoverySettings{ClassName: class.Name}
}

// MatchMethodCases returns the subset of cases whose resolved method matches
// target, preserving input order. A case matches on exact method identity,
// or, when the discovered method is generic, on its generic definition — so
// one open generic definition selects all of its discovered instantiations.
func MatchMethodCases(cases []types.TestCase, target types.Method, r Resolver) []types.TestCase {
	var matched []types.TestCase
	for _, tc := range cases {
		resolved, ok := r.Resolve(tc.Key)
		if !ok {
			continue
		}
		if resolved.Equal(target) {
			matched = append(matched, tc)
			continue
		}
		if resolved.GenericArity > 0 && resolved.Definition().Equal(target) {
			matched = append(matched, tc)
		}
	}
	return matched
}

var _ Resolver = KeyResolver{}

// KeyResolver resolves keys by trusting the descriptor's own denormalized
// identity. It is the right resolver when no richer metadata source exists;
// a host with real reflection metadata injects its own Resolver instead.
type KeyResolver struct{}

// Resolve implements the Resolver interface.
func (KeyResolver) Resolve(key types.TestKey) (types.Method, bool) {
	if key.ClassName == "" || key.MethodName == "" {
		return types.Method{}, false
	}
	return key.Method(), true
}
