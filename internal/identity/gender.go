package identity

import (
	"slices"
	"strings"
	"unicode"
)

type Gender string

const (
	Girl    Gender = "girl"
	Boy     Gender = "boy"
	Unknown Gender = "unknown"
)

var girlNames = []string{
	"fatima", "ayesha", "aisha", "zainab", "maryam", "khadija", "hira", "sana", "sara", "laiba",
	"eman", "iman", "noor", "maira", "amna", "huma", "bushra", "rabia", "samina", "nasreen",
	"shabana", "farzana", "rubina", "saima", "naila", "shaista", "shazia", "tahira", "uzma",
	"asma", "sofia", "sobia", "anum", "sidra", "nimra", "kinza", "arooj", "fiza", "iqra",
	"hafsa", "javeria", "aliza", "mahira", "zara", "esha", "anaya", "hoorain", "mehnaz",
	"sundas", "mehak", "rida", "minahil", "komal", "neha", "priya", "pooja", "ria", "simran",
	"suman", "anjali", "deepika", "kajal", "mano", "sneha", "divya", "shreya", "tanvi",
	"anam", "aleena", "areesha", "areeba", "faiza", "farwa", "hania", "hareem", "jannat",
	"laraib", "maham", "maha", "momina", "nabiha", "nawal", "rameen", "rimsha", "ruqaiya",
	"sabeen", "saher", "saman", "samra", "sawera", "sehar", "tania", "tooba", "yumna", "zahra",
}

var boyNames = []string{
	"ali", "ahmed", "ahmad", "muhammad", "usman", "bilal", "hamza", "hassan", "hussain", "fahad",
	"faisal", "imran", "irfan", "kamran", "kashif", "khalid", "omar", "umar", "saad", "salman",
	"shahid", "tariq", "wasim", "zubair", "asad", "danish", "farhan", "haider", "junaid", "nadeem",
	"nasir", "naveed", "qaiser", "rafiq", "rashid", "rizwan", "sajid", "shakeel", "shehzad",
	"shoaib", "tahir", "waqar", "yasir", "zahid", "zeeshan", "adeel", "arslan", "atif", "awais",
	"babar", "atta", "fawad", "haris", "iqbal", "javed", "kareem", "majid", "mubashir",
	"noman", "owais", "qasim", "rehan", "saeed", "sohail", "taimoor", "umair", "uzair", "wahab",
	"waqas", "yousaf", "zohaib", "arham", "ayaan", "rayyan", "ayan", "azaan", "rohan", "aryan",
	"raza", "kael", "attaullah", "osama", "waleed", "sultan", "murtaza", "mustafa", "abrar", "adnan",
}

var (
	girlEndings = []string{"a", "i", "een", "ah"}
	boyEndings  = []string{"an", "ar", "id", "ad", "ir", "er"}
)

// InferGender classifies a display name by its first token. An exact list
// hit wins first, then substring matches in either direction with the girl
// list checked before the boy list; suffix rules apply only when no list
// matches.
func InferGender(displayName string) Gender {
	token := normalize(displayName)
	if token == "" {
		return Unknown
	}

	if slices.Contains(girlNames, token) {
		return Girl
	}
	if slices.Contains(boyNames, token) {
		return Boy
	}
	if matchesAny(token, girlNames) {
		return Girl
	}
	if matchesAny(token, boyNames) {
		return Boy
	}

	for _, ending := range girlEndings {
		if strings.HasSuffix(token, ending) {
			return Girl
		}
	}
	for _, ending := range boyEndings {
		if strings.HasSuffix(token, ending) {
			return Boy
		}
	}
	return Unknown
}

func normalize(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	return strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII || !unicode.IsLetter(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, fields[0])
}

func matchesAny(token string, names []string) bool {
	for _, n := range names {
		if strings.Contains(token, n) || strings.Contains(n, token) {
			return true
		}
	}
	return false
}
