package order

import "fmt"

// FormatNumber derives the human-readable order number from its id,
// zero-padded to five digits.
func FormatNumber(prefix string, id int64) string {
	return fmt.Sprintf("%s-%05d", prefix, id)
}
