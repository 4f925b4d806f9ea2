// Package moderation holds the banned-word filter applied to user text before
// it is persisted.
package moderation

import (
	"sort"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"
)

// Filter matches whole words or phrases case-insensitively. A pattern only
// matches when it is not glued to other letters or digits, so "class" does
// not trip on "ass".
type Filter struct {
	mu    sync.RWMutex
	words []string
}

func NewFilter(words []string) *Filter {
	f := &Filter{}
	f.Replace(words)
	return f
}

// Replace swaps the whole word list.
func (f *Filter) Replace(words []string) {
	norm := normalizeList(words)
	f.mu.Lock()
	f.words = norm
	f.mu.Unlock()
}

func (f *Filter) Add(word string) {
	w := Normalize(word)
	if w == "" {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := sort.SearchStrings(f.words, w)
	if i < len(f.words) && f.words[i] == w {
		return
	}
	f.words = append(f.words, "")
	copy(f.words[i+1:], f.words[i:])
	f.words[i] = w
}

func (f *Filter) Remove(word string) {
	w := Normalize(word)
	f.mu.Lock()
	defer f.mu.Unlock()
	i := sort.SearchStrings(f.words, w)
	if i < len(f.words) && f.words[i] == w {
		f.words = append(f.words[:i], f.words[i+1:]...)
	}
}

// Words returns a sorted copy of the current list.
func (f *Filter) Words() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]string(nil), f.words...)
}

// Check returns the first banned word found in any of texts.
func (f *Filter) Check(texts ...string) (string, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if len(f.words) == 0 {
		return "", false
	}
	for _, t := range texts {
		lower := strings.ToLower(t)
		for _, w := range f.words {
			if containsWord(lower, w) {
				return w, true
			}
		}
	}
	return "", false
}

// Normalize lowercases and trims a word the way the filter stores it.
func Normalize(word string) string {
	return strings.ToLower(strings.TrimSpace(word))
}

func normalizeList(words []string) []string {
	seen := make(map[string]struct{}, len(words))
	out := make([]string, 0, len(words))
	for _, w := range words {
		w = Normalize(w)
		if w == "" {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

func containsWord(text, word string) bool {
	for start := 0; start <= len(text)-len(word); {
		idx := strings.Index(text[start:], word)
		if idx < 0 {
			return false
		}
		i := start + idx
		end := i + len(word)
		if boundaryBefore(text, i) && boundaryAfter(text, end) {
			return true
		}
		start = i + 1
	}
	return false
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func boundaryBefore(text string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return !isWordRune(r)
}

func boundaryAfter(text string, end int) bool {
	if end >= len(text) {
		return true
	}
	for _, r := range text[end:] {
		return !isWordRune(r)
	}
	return true
}
