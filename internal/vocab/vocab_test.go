package vocab

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestDefaultReturnsFreshSlices(t *testing.T) {
	a := Default()
	a.Skills[0] = "cobol"
	a.ReputationTiers[0].Keywords[0] = "nobody"

	b := Default()
	assert.Equal(t, "python", b.Skills[0])
	assert.Equal(t, "iit", b.ReputationTiers[0].Keywords[0])
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	v, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), v)
}

func TestLoadOverlaysOnlyGivenTables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vocab.yaml")
	yml := `
skills: [go, sql]
reputation_tiers:
  - score: 90
    keywords: [acme]
default_reputation: 40
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o600))

	v, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "sql"}, v.Skills)
	require.Len(t, v.ReputationTiers, 1)
	assert.Equal(t, 90.0, v.ReputationTiers[0].Score)
	assert.Equal(t, 40.0, v.DefaultReputation)
	assert.Equal(t, Default().Domains, v.Domains)
	assert.Equal(t, Weights{Skill: 50, Domain: 30, Experience: 20}, v.Weights)
}

func TestLoadRejectsBadTables(t *testing.T) {
	tests := []struct {
		name string
		yml  string
	}{
		{"weights not summing to 100", "weights: {skill: 50, domain: 30, experience: 30}\n"},
		{"tiers not descending", "reputation_tiers:\n  - {score: 70, keywords: [a]}\n  - {score: 80, keywords: [b]}\n"},
		{"empty keyword", "skills: [go, '']\n"},
		{"broken yaml", "skills: [go\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "vocab.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yml), 0o600))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
