// Package boxselect implements the version/provider/architecture candidate
// selection policy applied to a parsed box metadata document.
package boxselect

import (
	"sort"

	"github.com/cperrin88/boxkeep/pkg/boxerrors"
	"github.com/cperrin88/boxkeep/pkg/boxmeta"
	"github.com/cperrin88/boxkeep/pkg/boxplatform"
	"github.com/cperrin88/boxkeep/pkg/boxui"
	"github.com/hashicorp/go-version"
)

// Request describes the filters a caller applies against a metadata
// document. An empty VersionConstraint means "any version, newest wins".
// Providers, if non-empty, is checked in order; the first version whose
// providers include any of them wins the tie. Architecture is either empty
// (host-arch-or-default policy), boxplatform.AUTO, or an explicit value.
type Request struct {
	VersionConstraint string
	Providers         []string
	Architecture      string
}

// Candidate is the outcome of a successful selection.
type Candidate struct {
	Version      string
	Provider     boxmeta.Provider
	Architecture string
}

// Select applies the version, provider and architecture filters of the
// box-add candidate selection policy against doc, prompting ui when a
// single version has multiple matching providers and none was requested.
func Select(doc *boxmeta.Document, req Request, ui boxui.UI) (*Candidate, error) {
	versions, err := filterAndSortVersions(doc.Versions, req.VersionConstraint)
	if err != nil {
		return nil, err
	}
	if len(versions) == 0 {
		return nil, boxerrors.New(boxerrors.KindBoxAddNoMatchingVersion, "no version satisfies the requested constraint")
	}

	hostArch := boxplatform.HostArchitecture()

	for _, v := range versions {
		matches := matchingProviders(v.Providers, req, hostArch)
		if len(matches) == 0 {
			continue
		}

		chosen, arch, err := disambiguate(matches, req.Providers, ui)
		if err != nil {
			return nil, err
		}

		return &Candidate{Version: v.Version, Provider: chosen, Architecture: arch}, nil
	}

	return nil, boxerrors.New(boxerrors.KindBoxAddNoMatchingProvider, "no provider matched the requested filters in any candidate version")
}

// providerMatch pairs a provider entry with the architecture value that
// should be recorded for it (may differ from Provider.Architecture in the
// AUTO-unknown-arch case, where it is recorded as empty).
type providerMatch struct {
	provider boxmeta.Provider
	arch     string
}

func matchingProviders(providers []boxmeta.Provider, req Request, hostArch string) []providerMatch {
	wantProviders := map[string]struct{}{}
	for _, p := range req.Providers {
		wantProviders[p] = struct{}{}
	}

	var out []providerMatch
	switch {
	case req.Architecture != "" && req.Architecture != boxplatform.AUTO:
		want := boxplatform.NormalizeArch(req.Architecture)
		for _, p := range providers {
			if !providerNameMatches(p.Name, wantProviders) {
				continue
			}
			if boxplatform.NormalizeArch(p.Architecture) == want {
				out = append(out, providerMatch{provider: p, arch: p.Architecture})
			}
		}

	case req.Architecture == boxplatform.AUTO:
		for _, p := range providers {
			if !providerNameMatches(p.Name, wantProviders) {
				continue
			}
			if boxplatform.NormalizeArch(p.Architecture) == hostArch {
				out = append(out, providerMatch{provider: p, arch: p.Architecture})
			}
		}
		if len(out) == 0 {
			if single, ok := soleUnknownDefault(providers, wantProviders); ok {
				out = append(out, providerMatch{provider: single, arch: ""})
			}
		}

	default: // absent
		for _, p := range providers {
			if !providerNameMatches(p.Name, wantProviders) {
				continue
			}
			if boxplatform.NormalizeArch(p.Architecture) == hostArch {
				out = append(out, providerMatch{provider: p, arch: p.Architecture})
			}
		}
		if len(out) == 0 {
			for _, p := range providers {
				if !providerNameMatches(p.Name, wantProviders) {
					continue
				}
				if p.DefaultArchitecture {
					out = append(out, providerMatch{provider: p, arch: p.Architecture})
				}
			}
		}
	}

	return out
}

func providerNameMatches(name string, want map[string]struct{}) bool {
	if len(want) == 0 {
		return true
	}
	_, ok := want[name]
	return ok
}

// soleUnknownDefault implements the AUTO fallback: a version matches only
// when it has exactly one provider (among those honoring the requested
// provider filter) marked default_architecture with an architecture value
// boxplatform doesn't recognize.
func soleUnknownDefault(providers []boxmeta.Provider, want map[string]struct{}) (boxmeta.Provider, bool) {
	var candidate boxmeta.Provider
	count := 0
	for _, p := range providers {
		if !providerNameMatches(p.Name, want) {
			continue
		}
		if p.DefaultArchitecture && boxplatform.IsUnknownArch(p.Architecture) {
			candidate = p
			count++
		}
	}
	return candidate, count == 1
}

// disambiguate resolves a multi-match provider list to a single choice,
// preferring the requested provider order, then prompting the UI.
func disambiguate(matches []providerMatch, requestedOrder []string, ui boxui.UI) (boxmeta.Provider, string, error) {
	if len(matches) == 1 {
		return matches[0].provider, matches[0].arch, nil
	}

	if len(requestedOrder) > 0 {
		for _, name := range requestedOrder {
			for _, m := range matches {
				if m.provider.Name == name {
					return m.provider, m.arch, nil
				}
			}
		}
	}

	options := make([]string, len(matches))
	for i, m := range matches {
		options[i] = m.provider.Name
	}
	idx, err := ui.Ask("multiple providers matched; choose one", options)
	if err != nil {
		return boxmeta.Provider{}, "", err
	}
	return matches[idx].provider, matches[idx].arch, nil
}

// filterAndSortVersions retains versions that parse and satisfy constraint,
// sorted newest first.
func filterAndSortVersions(versions []boxmeta.Version, constraintStr string) ([]boxmeta.Version, error) {
	var constraint version.Constraints
	if constraintStr != "" {
		c, err := version.NewConstraint(constraintStr)
		if err != nil {
			return nil, boxerrors.Wrap(boxerrors.KindBoxAddNoMatchingVersion, "invalid version constraint "+constraintStr, err)
		}
		constraint = c
	}

	type parsed struct {
		v   *version.Version
		src boxmeta.Version
	}

	var kept []parsed
	for _, v := range versions {
		pv, err := version.NewVersion(v.Version)
		if err != nil {
			continue
		}
		if constraint != nil && !constraint.Check(pv) {
			continue
		}
		kept = append(kept, parsed{v: pv, src: v})
	}

	sort.Slice(kept, func(i, j int) bool {
		return kept[i].v.GreaterThan(kept[j].v)
	})

	out := make([]boxmeta.Version, len(kept))
	for i, k := range kept {
		out[i] = k.src
	}
	return out, nil
}
