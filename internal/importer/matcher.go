package importer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/partbridge/partbridge/internal/entities"
	"github.com/partbridge/partbridge/internal/inventree"
)

// MatchResult is the outcome of one category-matching attempt.
type MatchResult struct {
	// Match is the deepest successfully matched destination path, nil when
	// nothing matched.
	Match *entities.CategoryMatch

	// CategoryID is the destination id of the deepest matched category.
	CategoryID int

	// Considered counts the candidate destination categories whose names
	// matched a hint segment during the walk.
	Considered int

	Warnings []string
}

// MatchCategory walks the supplier's category hint from the most general to
// the most specific segment, matching names case-insensitively against the
// destination tree. The walk stops at the first segment with no candidate
// and returns the deepest matched path. Ties prefer the candidate whose
// parent matched the previous segment; remaining ambiguity is broken by the
// lowest destination id so repeated calls against an unchanged tree return
// the same path, and a warning is emitted.
//
// Matching never fails hard: an empty hint or a hint with no counterpart in
// the destination degrades to "no suggestion".
func MatchCategory(hint []string, categories []inventree.Category) MatchResult {
	var result MatchResult

	if len(hint) == 0 {
		result.Warnings = append(result.Warnings, "supplier reported no category information")
		return result
	}

	byName := make(map[string][]inventree.Category)
	byID := make(map[int]inventree.Category, len(categories))
	for _, category := range categories {
		key := strings.ToLower(category.Name)
		byName[key] = append(byName[key], category)
		byID[category.ID] = category
	}
	for key := range byName {
		sort.Slice(byName[key], func(i, j int) bool {
			return byName[key][i].ID < byName[key][j].ID
		})
	}

	var current *inventree.Category
	for _, segment := range hint {
		candidates := byName[strings.ToLower(strings.TrimSpace(segment))]
		if len(candidates) == 0 {
			break
		}
		result.Considered += len(candidates)

		pool := preferChildren(candidates, current)
		if len(pool) > 1 {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("multiple destination categories named %q, using the first", segment))
		}
		chosen := pool[0]
		current = &chosen
	}

	if current == nil {
		result.Warnings = append(result.Warnings, "no destination category matches the supplier category hint")
		return result
	}

	result.CategoryID = current.ID
	result.Match = &entities.CategoryMatch{Path: pathOf(*current, byID)}
	return result
}

// preferChildren narrows candidates to the ones descending from the
// previously matched category: children of the previous match, or top-level
// categories when nothing has matched yet. Falls back to all candidates when
// the preference eliminates everything.
func preferChildren(candidates []inventree.Category, previous *inventree.Category) []inventree.Category {
	var preferred []inventree.Category
	for _, candidate := range candidates {
		switch {
		case previous == nil && candidate.Parent == nil:
			preferred = append(preferred, candidate)
		case previous != nil && candidate.Parent != nil && *candidate.Parent == previous.ID:
			preferred = append(preferred, candidate)
		}
	}
	if len(preferred) > 0 {
		return preferred
	}
	return candidates
}

// pathOf rebuilds the root-to-node name path by following parent links.
func pathOf(category inventree.Category, byID map[int]inventree.Category) []string {
	path := []string{category.Name}
	seen := map[int]bool{category.ID: true}

	node := category
	for node.Parent != nil {
		parent, ok := byID[*node.Parent]
		if !ok || seen[parent.ID] {
			break
		}
		seen[parent.ID] = true
		path = append([]string{parent.Name}, path...)
		node = parent
	}
	return path
}
