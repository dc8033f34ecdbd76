package controllers

import (
	"testing"

	"nagarseva-be/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainsTable(t *testing.T) {
	domains := Domains()
	require.Len(t, domains, 2)

	seenCollections := make(map[string]bool)
	for _, d := range domains {
		assert.NotEmpty(t, d.Collection)
		assert.False(t, seenCollections[d.Collection], "collection %s registered twice", d.Collection)
		seenCollections[d.Collection] = true
		assert.NotEmpty(t, d.TypeField)
		assert.NotEmpty(t, d.TypeValues)
	}

	assert.Equal(t, models.DomainWaste, domains[0].Name)
	assert.Equal(t, "wasteType", domains[0].TypeField)
	assert.True(t, domains[0].TypeValues["E-Waste"])

	assert.Equal(t, models.DomainWater, domains[1].Name)
	assert.Equal(t, "issueType", domains[1].TypeField)
	assert.True(t, domains[1].TypeValues["Leakage"])
}
