package moderation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRedactor_Masks_A_Censored_Word(t *testing.T) {
	req := require.New(t)
	redactor, err := NewRedactor([]string{"poney"}, '*')
	req.NoError(err)

	cleaned, matched := redactor.Sanitize("I saw a poney yesterday")

	req.Equal("I saw a ***** yesterday", cleaned)
	req.Equal([]string{"poney"}, matched)
}

func TestRedactor_Is_Case_Insensitive(t *testing.T) {
	req := require.New(t)
	redactor, err := NewRedactor([]string{"poney"}, '*')
	req.NoError(err)

	cleaned, matched := redactor.Sanitize("PoNeY rides again")

	req.Equal("***** rides again", cleaned)
	req.Len(matched, 1)
}

func TestRedactor_Catches_Leet_Speak(t *testing.T) {
	req := require.New(t)
	redactor, err := NewRedactor([]string{"poney"}, '*')
	req.NoError(err)

	cleaned, matched := redactor.Sanitize("a p0n3y walks in")

	req.Equal("a ***** walks in", cleaned)
	req.Len(matched, 1)
}

func TestRedactor_Ignores_Punctuation_Obfuscation(t *testing.T) {
	req := require.New(t)
	redactor, err := NewRedactor([]string{"poney"}, '*')
	req.NoError(err)

	cleaned, matched := redactor.Sanitize("a p.o.n.e.y walks in")

	req.Len(matched, 1)
	req.NotContains(cleaned, "p.o.n.e.y")
}

func TestRedactor_Masks_Multiple_Words(t *testing.T) {
	req := require.New(t)
	redactor, err := NewRedactor([]string{"poney", "unicorn"}, '#')
	req.NoError(err)

	cleaned, matched := redactor.Sanitize("the poney met a unicorn")

	req.Equal("the ##### met a #######", cleaned)
	req.Len(matched, 2)
}

func TestRedactor_Without_Patterns_Passes_Text_Through(t *testing.T) {
	req := require.New(t)
	redactor, err := NewRedactor(nil, '*')
	req.NoError(err)

	cleaned, matched := redactor.Sanitize("anything goes here")

	req.Equal("anything goes here", cleaned)
	req.Empty(matched)
}

func TestRedactor_Leaves_Clean_Text_Untouched(t *testing.T) {
	req := require.New(t)
	redactor, err := NewRedactor([]string{"poney"}, '*')
	req.NoError(err)

	cleaned, matched := redactor.Sanitize("nothing to hide")

	req.Equal("nothing to hide", cleaned)
	req.Empty(matched)
}
