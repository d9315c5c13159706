// Package query implements the filter/sort/paginate pipeline applied to the
// farmer collection for display. Apply is a pure function of its inputs and
// is recomputed from scratch by callers whenever an input changes; list
// sizes are hundreds of records, so there is no incremental update.
package query

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/agrunetcore/farmhub/types"
)

// DefaultPageSize matches the fixed page size of the dashboard views.
const DefaultPageSize = 8

// AllTypes is the sentinel category that disables the farm-type filter.
const AllTypes = "All"

// MaxSuggestions caps the search-suggestion list.
const MaxSuggestions = 6

// Sort keys.
const (
	SortByName      = "name"
	SortByFarmSize  = "farmSize"
	SortByCreatedAt = "createdAt"
)

// Sort directions.
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// State is the ephemeral per-view query state.
type State struct {
	Search   string
	FarmType string
	SortBy   string
	SortDir  string
	Page     int
	PageSize int
}

// Result is one ordered page of the processed collection.
type Result struct {
	Items      []types.Farmer `json:"items"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"pageSize"`
	TotalPages int            `json:"totalPages"`
}

// Apply runs the full pipeline: free-text filter, category filter, sort,
// then pagination with the page clamped to [1, totalPages]. Ties keep
// their relative input order.
func Apply(farmers []types.Farmer, state State) Result {
	if state.PageSize <= 0 {
		state.PageSize = DefaultPageSize
	}
	if state.SortBy == "" {
		state.SortBy = SortByCreatedAt
	}
	if state.SortDir == "" {
		state.SortDir = SortDesc
	}

	list := filterText(farmers, state.Search)
	if state.FarmType != "" && state.FarmType != AllTypes {
		filtered := make([]types.Farmer, 0, len(list))
		for _, f := range list {
			if f.FarmType == state.FarmType {
				filtered = append(filtered, f)
			}
		}
		list = filtered
	}

	sortFarmers(list, state.SortBy, state.SortDir)

	total := len(list)
	totalPages := (total + state.PageSize - 1) / state.PageSize
	if totalPages < 1 {
		totalPages = 1
	}
	page := state.Page
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * state.PageSize
	end := start + state.PageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return Result{
		Items:      list[start:end],
		Total:      total,
		Page:       page,
		PageSize:   state.PageSize,
		TotalPages: totalPages,
	}
}

// Suggest returns up to MaxSuggestions farmers whose name or farm name
// contains the raw search text. It runs against the raw, non-debounced
// input and is independent of the main filtered list.
func Suggest(farmers []types.Farmer, raw string) []types.Farmer {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	needle := strings.ToLower(raw)

	var matches []types.Farmer
	for _, f := range farmers {
		if strings.Contains(strings.ToLower(f.Name), needle) ||
			strings.Contains(strings.ToLower(f.FarmName), needle) {
			matches = append(matches, f)
			if len(matches) == MaxSuggestions {
				break
			}
		}
	}
	return matches
}

// FarmTypes returns the category filter options: "All" followed by the
// distinct farm types in first-seen order. Empty types read as "Unknown".
func FarmTypes(farmers []types.Farmer) []string {
	options := []string{AllTypes}
	seen := make(map[string]bool)
	for _, f := range farmers {
		farmType := f.FarmType
		if farmType == "" {
			farmType = "Unknown"
		}
		if !seen[farmType] {
			seen[farmType] = true
			options = append(options, farmType)
		}
	}
	return options
}

// Stats summarizes the whole collection for the dashboard cards.
type Stats struct {
	TotalFarmers  int            `json:"totalFarmers"`
	TotalFarmSize float64        `json:"totalFarmSize"`
	FarmsByType   map[string]int `json:"farmsByType"`
}

// Summarize computes dashboard statistics over the unfiltered collection.
func Summarize(farmers []types.Farmer) Stats {
	stats := Stats{FarmsByType: make(map[string]int)}
	stats.TotalFarmers = len(farmers)
	for _, f := range farmers {
		stats.TotalFarmSize += farmSize(f)
		stats.FarmsByType[f.FarmType]++
	}
	return stats
}

func filterText(farmers []types.Farmer, search string) []types.Farmer {
	needle := strings.ToLower(strings.TrimSpace(search))
	list := make([]types.Farmer, 0, len(farmers))
	if needle == "" {
		return append(list, farmers...)
	}
	for _, f := range farmers {
		haystack := strings.ToLower(f.Name + " " + f.FarmName + " " + f.Subcity + " " + f.Email)
		if strings.Contains(haystack, needle) {
			list = append(list, f)
		}
	}
	return list
}

func sortFarmers(list []types.Farmer, sortBy, sortDir string) {
	sort.SliceStable(list, func(i, j int) bool {
		var less bool
		switch sortBy {
		case SortByName:
			less = list[i].Name < list[j].Name
		case SortByFarmSize:
			less = farmSize(list[i]) < farmSize(list[j])
		default:
			less = createdAt(list[i]).Before(createdAt(list[j]))
		}
		if sortDir == SortAsc {
			return less
		}
		return !less && !equalKey(list[i], list[j], sortBy)
	})
}

// equalKey keeps the descending comparator irreflexive so ties retain
// their input order under SliceStable.
func equalKey(a, b types.Farmer, sortBy string) bool {
	switch sortBy {
	case SortByName:
		return a.Name == b.Name
	case SortByFarmSize:
		return farmSize(a) == farmSize(b)
	default:
		return createdAt(a).Equal(createdAt(b))
	}
}

// farmSize parses the stored text value; anything non-numeric counts as 0.
func farmSize(f types.Farmer) float64 {
	size, err := strconv.ParseFloat(strings.TrimSpace(f.FarmSize), 64)
	if err != nil {
		return 0
	}
	return size
}

func createdAt(f types.Farmer) time.Time {
	t, err := time.Parse(time.RFC3339, f.CreatedAt)
	if err != nil {
		return time.Time{}
	}
	return t
}
