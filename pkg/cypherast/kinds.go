package cypherast

import (
	"slices"
	"strings"

	"github.com/Sumatoshi-tech/cypherast/pkg/cypher"
	"github.com/Sumatoshi-tech/cypherast/pkg/levenshtein"
)

const (
	kindNamePrefix = "CYPHER_AST_"

	// maxSuggestDistance bounds how far a misspelled kind may be from a hint.
	maxSuggestDistance = 3
)

// PropertyInfo describes one property a kind exposes.
type PropertyInfo struct {
	Name   string `json:"name"   yaml:"name"`
	Family string `json:"family" yaml:"family"`
	Role   string `json:"role,omitempty" yaml:"role,omitempty"`
}

// KindInfo describes a registered kind for listings.
type KindInfo struct {
	Name       string         `json:"name"                 yaml:"name"`
	Label      string         `json:"label"                yaml:"label"`
	Parent     string         `json:"parent,omitempty"     yaml:"parent,omitempty"`
	InstanceOf []string       `json:"instanceof"           yaml:"instanceof"`
	Properties []PropertyInfo `json:"properties,omitempty" yaml:"properties,omitempty"`
}

// KindInfos describes every registered kind in registry order.
func (e *Engine) KindInfos() []KindInfo {
	kinds := e.types.Kinds()
	out := make([]KindInfo, 0, len(kinds))

	for _, kind := range kinds {
		out = append(out, e.KindInfo(kind))
	}

	return out
}

// KindInfo describes kind.
func (e *Engine) KindInfo(kind cypher.Kind) KindInfo {
	info := KindInfo{Name: kind.Name(), Label: kind.String()}

	if parent, ok := kind.Parent(); ok {
		info.Parent = parent.Name()
	}

	for _, candidate := range e.types.kinds {
		if cypher.InstanceOf(kind, candidate) {
			info.InstanceOf = append(info.InstanceOf, candidate.Name())
		}
	}

	for _, entry := range e.tables.Applicable(kind) {
		idx := slices.IndexFunc(info.Properties, func(p PropertyInfo) bool { return p.Name == entry.Name })
		prop := PropertyInfo{Name: entry.Name, Family: entry.Family.String(), Role: entry.Role}

		if idx >= 0 {
			info.Properties[idx] = prop

			continue
		}

		info.Properties = append(info.Properties, prop)
	}

	return info
}

// SuggestKind returns the registered kind name closest to name. Short names
// such as "comparsion" are compared with the CYPHER_AST_ prefix added.
func (e *Engine) SuggestKind(name string) (string, bool) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	if upper == "" {
		return "", false
	}

	if !strings.HasPrefix(upper, kindNamePrefix) {
		upper = kindNamePrefix + upper
	}

	kinds := e.types.Kinds()
	names := make([]string, 0, len(kinds))

	for _, kind := range kinds {
		names = append(names, kind.Name())
	}

	var lev levenshtein.Context

	return lev.Closest(upper, names, maxSuggestDistance)
}
