package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "senior go developer", Normalize("  Senior GO-Developer!! "))
	assert.Equal(t, "c++ c#", Normalize("C++, C#"))
	assert.Equal(t, "", Normalize(" -- "))
}

func TestContainsPhrase(t *testing.T) {
	assert.True(t, ContainsPhrase("build rest api services", "rest api"))
	assert.False(t, ContainsPhrase("build rest apis", "rest api"))
	assert.False(t, ContainsPhrase("anything", ""))
}

func TestMatchesAny(t *testing.T) {
	assert.True(t, MatchesAny("", "Acme"))
	assert.True(t, MatchesAny("acme", "ACME Corp", "Backend"))
	assert.True(t, MatchesAny("backend engineer", "Acme", "Senior Backend Engineer"))
	assert.False(t, MatchesAny("frontend", "Acme", "Backend"))
}

func TestSameSkill(t *testing.T) {
	assert.True(t, SameSkill("Go", "golang"))
	assert.True(t, SameSkill("PostgreSQL", "postgres"))
	assert.True(t, SameSkill("Kubernetes", "K8S"))
	assert.True(t, SameSkill("golang developer", "go developer"))
	assert.False(t, SameSkill("Go", "Rust"))
	assert.False(t, SameSkill("Go", ""))
}
