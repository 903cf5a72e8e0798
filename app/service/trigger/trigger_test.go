package trigger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFull(t *testing.T) {
	tr := Parse("met Sarah at conference, she does AI research")

	assert.True(t, tr.IsValid)
	assert.Equal(t, "Sarah", tr.Name)
	assert.Equal(t, "conference", tr.Event)
	assert.Equal(t, "she does AI research", tr.Context)
}

func TestParseWithoutContext(t *testing.T) {
	tr := Parse("met John Smith at the tech meetup")

	assert.True(t, tr.IsValid)
	assert.Equal(t, "John Smith", tr.Name)
	assert.Equal(t, "the tech meetup", tr.Event)
	assert.Empty(t, tr.Context)
}

func TestParseCaseInsensitive(t *testing.T) {
	tr := Parse("Met Anna AT dinner party")

	assert.True(t, tr.IsValid)
	assert.Equal(t, "Anna", tr.Name)
	assert.Equal(t, "dinner party", tr.Event)
}

func TestParseInvalid(t *testing.T) {
	for _, text := range []string{
		"hello",
		"met Sarah",
		"at conference",
		"summary",
		"",
	} {
		assert.False(t, Parse(text).IsValid, text)
	}
}
