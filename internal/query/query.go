// Package query derives the filtered, sorted task list and the category
// list for presentation. Everything here is a pure function over tasks
// already loaded from the repository.
package query

import (
	"fmt"
	"sort"
	"strings"

	"tasklist/internal/model"
)

// CategoryAll is the sentinel category matching every task.
const CategoryAll = "All"

// SortOption selects the list ordering.
type SortOption string

const (
	SortDateAsc   SortOption = "DATE_ASC"
	SortDateDesc  SortOption = "DATE_DESC"
	SortTitleAsc  SortOption = "TITLE_ASC"
	SortTitleDesc SortOption = "TITLE_DESC"
)

// ParseSortOption validates a raw sort option value, e.g. from settings.
func ParseSortOption(raw string) (SortOption, error) {
	switch opt := SortOption(raw); opt {
	case SortDateAsc, SortDateDesc, SortTitleAsc, SortTitleDesc:
		return opt, nil
	default:
		return "", fmt.Errorf("unknown sort option %q", raw)
	}
}

// Filters holds the list-screen filter state.
type Filters struct {
	HideCompleted bool
	Category      string // CategoryAll matches everything
	Search        string // case-insensitive, matches title or description
	Sort          SortOption
}

// Apply filters and sorts tasks for display. The input slice is not
// modified. Sorting is stable so equal keys keep their relative order.
func Apply(tasks []model.Task, f Filters) []model.Task {
	needle := strings.ToLower(strings.TrimSpace(f.Search))

	out := make([]model.Task, 0, len(tasks))
	for _, task := range tasks {
		if f.HideCompleted && task.IsCompleted {
			continue
		}
		if f.Category != "" && f.Category != CategoryAll && task.Category != f.Category {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(task.Title), needle) &&
			!strings.Contains(strings.ToLower(task.Description), needle) {
			continue
		}
		out = append(out, task)
	}

	sort.SliceStable(out, func(i, j int) bool {
		switch f.Sort {
		case SortDateDesc:
			return out[i].DueTime.After(out[j].DueTime)
		case SortTitleAsc:
			return strings.ToLower(out[i].Title) < strings.ToLower(out[j].Title)
		case SortTitleDesc:
			return strings.ToLower(out[i].Title) > strings.ToLower(out[j].Title)
		default: // SortDateAsc
			return out[i].DueTime.Before(out[j].DueTime)
		}
	})
	return out
}

// Categories returns the distinct non-empty categories in encounter order,
// prefixed with the CategoryAll sentinel. It is recomputed from the current
// task set on every call, never cached.
func Categories(tasks []model.Task) []string {
	out := []string{CategoryAll}
	seen := make(map[string]struct{})
	for _, task := range tasks {
		name := task.Category
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
