package router

// QueryMode tells the router what arguments a rule takes.
type QueryMode int

const (
	// NoArgs routes with an empty argument list.
	NoArgs QueryMode = iota
	// RequiredQuery needs an extracted query longer than two characters;
	// otherwise the rule does not match and evaluation moves on.
	RequiredQuery
	// OptionalQuery passes the query when present, DefaultArgs otherwise.
	OptionalQuery
)

type Rule struct {
	Command     string
	Keywords    []string
	Exclude     []string
	Privileged  bool
	Query       QueryMode
	DefaultArgs []string
}

var (
	videoKeywords = []string{"video", "watch", "dekho", "dikhao", "clip"}
	musicKeywords = []string{"song", "gana", "music", "audio", "sunao", "play", "bajao", "lagao"}
)

// DefaultRules is evaluated top to bottom; the first registered match wins.
// Video precedes music and music also excludes any video keyword, so a
// message naming both goes to video.
func DefaultRules() []Rule {
	return []Rule{
		{Command: "video", Keywords: videoKeywords, Query: RequiredQuery},
		{Command: "music", Keywords: musicKeywords, Exclude: videoKeywords, Query: RequiredQuery},
		{Command: "pair", Keywords: []string{"pair", "jodi", "match", "couple"}},
		{Command: "kiss", Keywords: []string{"kiss", "chumma", "pappi"}},
		{Command: "flirt", Keywords: []string{"flirt", "patao", "line maaro"}},
		{Command: "gif", Keywords: []string{"gif", "animation"}, Query: OptionalQuery, DefaultArgs: []string{"love"}},
		{Command: "balance", Keywords: []string{"balance", "paisa", "coins", "money", "wallet"}},
		{Command: "daily", Keywords: []string{"daily", "bonus", "claim"}},
		{Command: "work", Keywords: []string{"work", "kaam", "earn", "kamao"}},
		{Command: "help", Keywords: []string{"help", "commands", "menu"}},
		{Command: "kick", Keywords: []string{"kick", "remove", "nikalo", "hatao"}, Privileged: true},
		{Command: "ban", Keywords: []string{"ban", "block"}, Privileged: true},
		{Command: "restart", Keywords: []string{"restart", "reboot"}, Privileged: true},
		{Command: "broadcast", Keywords: []string{"broadcast", "announce"}, Privileged: true, Query: OptionalQuery},
	}
}

var stopWords = map[string]struct{}{
	"mujhe": {}, "meri": {}, "sunao": {}, "dikhao": {}, "lagao": {}, "bajao": {}, "play": {},
	"ka": {}, "ki": {}, "ke": {}, "se": {}, "ko": {}, "hai": {}, "please": {}, "plz": {}, "pls": {},
	"yaar": {}, "bro": {}, "ek": {}, "dost": {}, "de": {}, "do": {}, "karo": {}, "krdo": {}, "kardo": {},
}
