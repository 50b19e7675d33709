package textutil

// Ratio returns 2*LCS(a, b) / (len(a)+len(b)) over folded runes. Two empty
// strings are identical and score 1.
func Ratio(a, b string) float64 {
	target := FoldRunes(b)
	m := NewLCSMatcher(target)
	for _, r := range FoldRunes(a) {
		m.extendFolded(r)
	}
	return m.Ratio()
}

// LCSMatcher scores a growing candidate string against a fixed target. Each
// Extend call costs O(len(target)) and keeps a single DP row, so scanning all
// prefixes of an n-rune candidate costs O(n*m) instead of O(n^2*m).
type LCSMatcher struct {
	target []rune
	row    []int
	next   []int
	length int
}

// NewLCSMatcher prepares a matcher for target, which must already be folded.
func NewLCSMatcher(target []rune) *LCSMatcher {
	return &LCSMatcher{
		target: target,
		row:    make([]int, len(target)+1),
		next:   make([]int, len(target)+1),
	}
}

// Extend appends s to the candidate after folding it.
func (m *LCSMatcher) Extend(s string) {
	for _, r := range FoldRunes(s) {
		m.extendFolded(r)
	}
}

func (m *LCSMatcher) extendFolded(r rune) {
	m.next[0] = 0
	for j := 1; j <= len(m.target); j++ {
		switch {
		case m.target[j-1] == r:
			m.next[j] = m.row[j-1] + 1
		case m.row[j] >= m.next[j-1]:
			m.next[j] = m.row[j]
		default:
			m.next[j] = m.next[j-1]
		}
	}
	m.row, m.next = m.next, m.row
	m.length++
}

// LCS returns the longest common subsequence length of the candidate so far.
func (m *LCSMatcher) LCS() int {
	return m.row[len(m.target)]
}

// Ratio returns 2*LCS / (candidate length + target length).
func (m *LCSMatcher) Ratio() float64 {
	total := m.length + len(m.target)
	if total == 0 {
		return 1
	}
	return 2 * float64(m.LCS()) / float64(total)
}

// Reset clears the candidate while keeping the target.
func (m *LCSMatcher) Reset() {
	for i := range m.row {
		m.row[i] = 0
	}
	m.length = 0
}
