package verdict

import (
	"bytes"
	"encoding/json"
)

// Selection is the set of line numbers a user submitted for one verdict
// check. The zero value means nothing was submitted, which is different from
// an empty selection.
type Selection struct {
	lines   []int
	present bool
}

// Select builds a present selection from the given lines. Calling it with no
// arguments yields an empty, but present, selection.
func Select(lines ...int) Selection {
	return Selection{lines: append([]int{}, lines...), present: true}
}

// Present reports whether the user submitted a selection at all.
func (s Selection) Present() bool { return s.present }

// Lines returns the submitted lines in submission order, or nil for an
// absent selection.
func (s Selection) Lines() []int {
	if !s.present {
		return nil
	}
	out := make([]int, len(s.lines))
	copy(out, s.lines)
	return out
}

// UnmarshalJSON decodes a JSON array of line numbers. A JSON null leaves the
// selection absent.
func (s *Selection) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*s = Selection{}
		return nil
	}
	var lines []int
	if err := json.Unmarshal(data, &lines); err != nil {
		return err
	}
	*s = Select(lines...)
	return nil
}

// MarshalJSON encodes an absent selection as null.
func (s Selection) MarshalJSON() ([]byte, error) {
	if !s.present {
		return []byte("null"), nil
	}
	return json.Marshal(s.Lines())
}
