// Package persona builds the system prompts and canned replies of the Mano
// chat persona.
package persona

import (
	"fmt"
	"math/rand/v2"
	"regexp"

	"github.com/muratoffalex/manobot/internal/identity"
)

type Selector struct {
	ownerName  string
	ownerAlias string
	pick       func(n int) int
}

func NewSelector(ownerName, ownerAlias string) *Selector {
	if ownerAlias == "" {
		ownerAlias = ownerName
	}
	return &Selector{
		ownerName:  ownerName,
		ownerAlias: ownerAlias,
		pick:       rand.IntN,
	}
}

// WithPicker replaces the random index source. Tests use it to make filler
// selection deterministic.
func (s *Selector) WithPicker(pick func(n int) int) *Selector {
	c := *s
	c.pick = pick
	return &c
}

// SystemPrompt returns the leading instruction turn for a completion.
func (s *Selector) SystemPrompt(id identity.Identity) string {
	if id.Owner {
		return s.ownerPrompt()
	}
	return s.standardPrompt(id.Name, id.Gender)
}

// UserPrompt frames the raw message the way the model expects it.
func (s *Selector) UserPrompt(id identity.Identity, message string) string {
	if id.Owner {
		return fmt.Sprintf("Tera OWNER aur CREATOR %s ne kaha: \"%s\" - Tu uski har baat maanegi aur usse darti hai.", s.ownerName, message)
	}
	return fmt.Sprintf("%s ne kaha: \"%s\"", id.Name, message)
}

// HistoryEntry is the user turn stored in the conversation history.
func HistoryEntry(id identity.Identity, message string) string {
	return id.Name + ": " + message
}

var yaarWord = regexp.MustCompile(`(?i)\byaar\b`)

// Filler is the reply to a bare wake word.
func (s *Selector) Filler(id identity.Identity) string {
	if id.Owner {
		return ownerFillers[s.pick(len(ownerFillers))]
	}
	line := standardFillers[s.pick(len(standardFillers))]
	return yaarWord.ReplaceAllLiteralString(line, id.Name)
}

func genderContext(name string, gender identity.Gender) string {
	switch gender {
	case identity.Girl:
		return fmt.Sprintf(`%s ek larki hai, usse "dear", "jani", "babes" ya "cutie" bol sakti hai. Girl talk kar.`, name)
	case identity.Boy:
		return fmt.Sprintf(`%s ek larka hai, usse "yaar", "dost", "janu" ya cute names bol sakti hai. Thodi flirty bhi ho sakti hai.`, name)
	default:
		return fmt.Sprintf(`%s se normal friendly baat kar, "dost" ya "yaar" use kar.`, name)
	}
}
