// Package router maps free text to a command with first-match keyword
// rules.
package router

import (
	"regexp"
	"strings"
	"sync"
)

type Result struct {
	Command string
	Args    []string
	// Refused is set when the text matched a privileged rule but the caller
	// is not privileged.
	Refused bool
}

type Router struct {
	rules      []Rule
	wake       *regexp.Regexp
	registered func(name string) bool

	mu       sync.Mutex
	patterns map[string]*regexp.Regexp
}

type Option func(*Router)

// WithRegistry limits routing to commands the predicate accepts. Without it
// every rule is considered registered.
func WithRegistry(registered func(name string) bool) Option {
	return func(r *Router) {
		r.registered = registered
	}
}

func WithRules(rules []Rule) Option {
	return func(r *Router) {
		r.rules = rules
	}
}

func New(wakeWords []string, opts ...Option) *Router {
	r := &Router{
		rules:      DefaultRules(),
		wake:       WakePattern(wakeWords),
		registered: func(string) bool { return true },
		patterns:   make(map[string]*regexp.Regexp),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// WakePattern matches any wake word at the start of a message, followed by
// optional whitespace. It returns nil for an empty list.
func WakePattern(wakeWords []string) *regexp.Regexp {
	quoted := make([]string, 0, len(wakeWords))
	for _, w := range wakeWords {
		if w = strings.TrimSpace(w); w != "" {
			quoted = append(quoted, regexp.QuoteMeta(w))
		}
	}
	if len(quoted) == 0 {
		return nil
	}
	return regexp.MustCompile(`(?i)^(?:` + strings.Join(quoted, "|") + `)\s*`)
}

// StripWake removes a leading wake word. ok is false when none is present.
func (r *Router) StripWake(text string) (rest string, ok bool) {
	if r.wake == nil {
		return strings.TrimSpace(text), false
	}
	loc := r.wake.FindStringIndex(text)
	if loc == nil {
		return text, false
	}
	return strings.TrimSpace(text[loc[1]:]), true
}

func (r *Router) Rules() []Rule {
	return r.rules
}

// Route picks the first rule whose keywords occur in text and whose command
// is registered. A leading wake word is ignored.
func (r *Router) Route(text string, privileged bool) (Result, bool) {
	body, _ := r.StripWake(text)
	lower := strings.ToLower(body)

	for _, rule := range r.rules {
		if !containsAny(lower, rule.Keywords) || containsAny(lower, rule.Exclude) {
			continue
		}
		if !r.registered(rule.Command) {
			continue
		}

		args, ok := r.args(rule, body)
		if !ok {
			continue
		}

		if rule.Privileged && !privileged {
			return Result{Command: rule.Command, Refused: true}, true
		}
		return Result{Command: rule.Command, Args: args}, true
	}
	return Result{}, false
}

func (r *Router) args(rule Rule, body string) ([]string, bool) {
	switch rule.Query {
	case RequiredQuery:
		q := r.ExtractQuery(body, rule.Keywords)
		if len(q) <= 2 {
			return nil, false
		}
		return strings.Fields(q), true
	case OptionalQuery:
		if q := r.ExtractQuery(body, rule.Keywords); q != "" {
			return strings.Fields(q), true
		}
		return append([]string{}, rule.DefaultArgs...), true
	default:
		return []string{}, true
	}
}

// ExtractQuery strips the wake word and every keyword, collapses
// whitespace and drops stop words. When only stop words remain the
// collapsed text is returned instead.
func (r *Router) ExtractQuery(message string, keywords []string) string {
	query, _ := r.StripWake(message)
	for _, kw := range keywords {
		query = r.keywordPattern(kw).ReplaceAllString(query, "")
	}
	query = strings.Join(strings.Fields(query), " ")

	var kept []string
	for _, w := range strings.Fields(query) {
		if _, stop := stopWords[strings.ToLower(w)]; !stop {
			kept = append(kept, w)
		}
	}
	if len(kept) == 0 {
		return query
	}
	return strings.Join(kept, " ")
}

func (r *Router) keywordPattern(kw string) *regexp.Regexp {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.patterns[kw]; ok {
		return p
	}
	p := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(kw) + `\b`)
	r.patterns[kw] = p
	return p
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
