package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasklist/internal/model"
)

func day(d int) time.Time {
	return time.Date(2026, 6, d, 12, 0, 0, 0, time.UTC)
}

func titles(tasks []model.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.Title)
	}
	return out
}

func TestHideCompletedNeverReturnsCompleted(t *testing.T) {
	tasks := []model.Task{
		{Title: "open", DueTime: day(1)},
		{Title: "done", DueTime: day(2), IsCompleted: true},
	}

	got := Apply(tasks, Filters{HideCompleted: true, Category: CategoryAll, Sort: SortDateAsc})
	assert.Equal(t, []string{"open"}, titles(got))

	got = Apply(tasks, Filters{HideCompleted: false, Category: CategoryAll, Sort: SortDateAsc})
	assert.Len(t, got, 2)
}

func TestCategoryFilter(t *testing.T) {
	tasks := []model.Task{
		{Title: "a", Category: "Work", DueTime: day(1)},
		{Title: "b", Category: "Home", DueTime: day(2)},
		{Title: "c", Category: "", DueTime: day(3)},
	}

	got := Apply(tasks, Filters{Category: "Work", Sort: SortDateAsc})
	assert.Equal(t, []string{"a"}, titles(got))

	got = Apply(tasks, Filters{Category: CategoryAll, Sort: SortDateAsc})
	assert.Len(t, got, 3)
}

func TestSearchMatchesTitleOrDescriptionCaseInsensitive(t *testing.T) {
	tasks := []model.Task{
		{Title: "Buy MILK", DueTime: day(1)},
		{Title: "other", Description: "pick up milk too", DueTime: day(2)},
		{Title: "unrelated", DueTime: day(3)},
	}

	got := Apply(tasks, Filters{Category: CategoryAll, Search: "milk", Sort: SortDateAsc})
	assert.Equal(t, []string{"Buy MILK", "other"}, titles(got))

	got = Apply(tasks, Filters{Category: CategoryAll, Search: "  ", Sort: SortDateAsc})
	assert.Len(t, got, 3, "blank query matches everything")
}

func TestSortByDueTime(t *testing.T) {
	tasks := []model.Task{
		{Title: "late", DueTime: day(20)},
		{Title: "early", DueTime: day(1)},
		{Title: "mid", DueTime: day(10)},
	}

	asc := Apply(tasks, Filters{Category: CategoryAll, Sort: SortDateAsc})
	assert.Equal(t, []string{"early", "mid", "late"}, titles(asc))

	desc := Apply(tasks, Filters{Category: CategoryAll, Sort: SortDateDesc})
	assert.Equal(t, []string{"late", "mid", "early"}, titles(desc))
}

func TestSortByTitleIsCaseInsensitiveAndStable(t *testing.T) {
	tasks := []model.Task{
		{ID: 1, Title: "banana", DueTime: day(1)},
		{ID: 2, Title: "Apple", DueTime: day(2)},
		{ID: 3, Title: "apple", DueTime: day(3)},
	}

	asc := Apply(tasks, Filters{Category: CategoryAll, Sort: SortTitleAsc})
	assert.Equal(t, []string{"Apple", "apple", "banana"}, titles(asc))
	// Equal keys keep input order.
	assert.Equal(t, uint(2), asc[0].ID)
	assert.Equal(t, uint(3), asc[1].ID)

	desc := Apply(tasks, Filters{Category: CategoryAll, Sort: SortTitleDesc})
	assert.Equal(t, "banana", desc[0].Title)
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	tasks := []model.Task{
		{Title: "b", DueTime: day(2)},
		{Title: "a", DueTime: day(1)},
	}

	_ = Apply(tasks, Filters{Category: CategoryAll, Sort: SortDateAsc})
	assert.Equal(t, "b", tasks[0].Title)
}

func TestCategoriesDistinctNonEmptyWithSentinel(t *testing.T) {
	tasks := []model.Task{
		{Category: "Work"},
		{Category: ""},
		{Category: "Work"},
	}
	assert.Equal(t, []string{CategoryAll, "Work"}, Categories(tasks))

	assert.Equal(t, []string{CategoryAll}, Categories(nil))
}

func TestParseSortOption(t *testing.T) {
	for _, raw := range []string{"DATE_ASC", "DATE_DESC", "TITLE_ASC", "TITLE_DESC"} {
		opt, err := ParseSortOption(raw)
		require.NoError(t, err)
		assert.Equal(t, SortOption(raw), opt)
	}

	_, err := ParseSortOption("NEWEST")
	assert.Error(t, err)
}
