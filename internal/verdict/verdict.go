// Package verdict decides whether a set of selected code lines identifies a
// vulnerability and which hint to show after a wrong answer.
package verdict

import (
	"fmt"
	"strconv"
	"strings"
)

// Evaluate compares the learner's selection against the known lines of a
// code snippet. Returns true if the selection names every vulnerable line and
// nothing outside the vulnerable and neutral lines.
//
// All three inputs are treated as sets: order and duplicates never change the
// outcome. An absent selection always fails.
func Evaluate(vulnLines, neutralLines []int, selected Selection) bool {
	if !selected.Present() {
		return false
	}

	vuln := toSet(vulnLines)
	chosen := toSet(selected.lines)
	if len(vuln) > len(chosen) {
		return false
	}

	for line := range vuln {
		if _, ok := chosen[line]; !ok {
			return false
		}
	}

	allowed := toSet(neutralLines)
	for line := range vuln {
		allowed[line] = struct{}{}
	}
	for line := range chosen {
		if _, ok := allowed[line]; !ok {
			return false
		}
	}
	return true
}

// SelectHint picks the hint for the given attempt. attemptNumber is 1-based;
// values below 1 count as the first attempt.
//
// Once the attempts outrun the hint list the learner is told the exact
// vulnerable lines. Returns false when there is nothing to show: no hints at
// all, or an empty entry at the chosen position.
func SelectHint(hints []string, attemptNumber int, vulnLines []int) (string, bool) {
	if len(hints) == 0 {
		return "", false
	}
	if attemptNumber < 1 {
		attemptNumber = 1
	}

	if attemptNumber > len(hints) {
		return revealLines(vulnLines), true
	}

	hint := hints[attemptNumber-1]
	if hint == "" {
		return "", false
	}
	return hint, true
}

// revealLines phrases the give-away hint naming the vulnerable lines.
func revealLines(vulnLines []int) string {
	if len(vulnLines) == 1 {
		return fmt.Sprintf("Line %d is responsible for this vulnerability or security flaw. Select it and submit to proceed.", vulnLines[0])
	}
	return fmt.Sprintf("Lines %s are responsible for this vulnerability or security flaw. Select them and submit to proceed.", JoinLines(vulnLines))
}

// JoinLines renders line numbers as a comma-separated list, e.g. "3,5,9".
func JoinLines(lines []int) string {
	parts := make([]string, len(lines))
	for i, l := range lines {
		parts[i] = strconv.Itoa(l)
	}
	return strings.Join(parts, ",")
}

// ParseLines parses a comma-separated list of line numbers. Blank input
// yields an empty list.
func ParseLines(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return []int{}, nil
	}
	fields := strings.Split(s, ",")
	lines := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return nil, fmt.Errorf("invalid line number %q: %w", f, err)
		}
		lines = append(lines, n)
	}
	return lines, nil
}

func toSet(lines []int) map[int]struct{} {
	set := make(map[int]struct{}, len(lines))
	for _, l := range lines {
		set[l] = struct{}{}
	}
	return set
}
