package engine

import (
	"sort"
	"strings"
)

// OverallLevelInfo aggregates every category into one level.
// Each category is normalised to its cumulative XP and the totals are summed, so the
// result does not depend on map iteration order.
func OverallLevelInfo(categories map[Category]CategoryProgress) LevelInfo {
	total := 0
	for _, cp := range categories {
		total += cp.TotalXP()
	}
	return LevelInfoForXP(total)
}

// CategoryLevelProgress reports progress toward the next level for a single category.
func CategoryLevelProgress(xp int, level int) float64 {
	return ratio(float64(xp), float64(XPForNextLevel(level)))
}

// CategorySummary is a display row for one category.
type CategorySummary struct {
	Category Category
	Level    int
	XP       int
	ToNext   int
	Progress float64
}

// CategorySummaries returns one row per known category in display order, followed by any
// unknown categories present in the map (sorted by name).
func CategorySummaries(categories map[Category]CategoryProgress) []CategorySummary {
	out := make([]CategorySummary, 0, len(Categories))
	for _, c := range Categories {
		out = append(out, summarize(c, categories[c]))
	}

	var extra []Category
	for c := range categories {
		if !c.IsValid() {
			extra = append(extra, c)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	for _, c := range extra {
		out = append(out, summarize(c, categories[c]))
	}
	return out
}

func summarize(c Category, cp CategoryProgress) CategorySummary {
	cp = normalizeProgress(cp)
	toNext := XPForNextLevel(cp.Level) - cp.XP
	if toNext < 0 {
		toNext = 0
	}
	return CategorySummary{
		Category: c,
		Level:    cp.Level,
		XP:       cp.XP,
		ToNext:   toNext,
		Progress: CategoryLevelProgress(cp.XP, cp.Level),
	}
}

// ParseCategory parses user input to a Category.
// If input is empty or unrecognized, returns DefaultCategory and false.
func ParseCategory(input string) (Category, bool) {
	s := strings.TrimSpace(strings.ToLower(input))
	switch s {
	case "physical", "body", "fitness", "health":
		return CategoryPhysical, true
	case "mental", "mind":
		return CategoryMental, true
	case "intellectual", "intellect", "learning", "study":
		return CategoryIntellectual, true
	case "spiritual", "spirit", "faith":
		return CategorySpiritual, true
	case "financial", "finance", "money":
		return CategoryFinancial, true
	case "career", "work", "job":
		return CategoryCareer, true
	case "relationships", "relationship", "social", "family":
		return CategoryRelationships, true
	default:
		return DefaultCategory, false
	}
}
