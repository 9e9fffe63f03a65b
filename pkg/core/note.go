package core

// Storage keys used by the Store. They match the keys of the browser widget
// so that an exported localStorage dump loads unchanged.
const (
	NotesKey      = "notes"
	CategoriesKey = "noteCategories"
)

// DefaultCategories is the seed set used when no categories were persisted.
func DefaultCategories() []string {
	return []string{"General", "Work", "Personal", "Study"}
}

// DefaultTimeLayout renders timestamps the way an en-US locale string does.
const DefaultTimeLayout = "1/2/2006, 3:04:05 PM"

// Note is the central entity of the domain.
// Category is a loose reference to a category name: removing the category
// never touches the notes filed under it.
type Note struct {
	ID        int64  `json:"id"`
	Content   string `json:"content"`
	Category  string `json:"category"`
	CreatedAt string `json:"timestamp"`
	UpdatedAt string `json:"lastUpdated"`
}

// filterByCategory keeps the relative order of notes.
func filterByCategory(notes []Note, match func(category string) bool) []Note {
	out := make([]Note, 0)
	for _, n := range notes {
		if match(n.Category) {
			out = append(out, n)
		}
	}
	return out
}

func indexOfNote(notes []Note, id int64) int {
	for i, n := range notes {
		if n.ID == id {
			return i
		}
	}
	return -1
}

func containsCategory(categories []string, name string) bool {
	for _, c := range categories {
		if c == name {
			return true
		}
	}
	return false
}
