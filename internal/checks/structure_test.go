package checks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstitutionStructure_Empty(t *testing.T) {
	reports := runCheck(t, NewInstitutionStructure(), `institution: empty: {}`)
	assert.Equal(t, []string{
		"Institution has no events",
		"Institution has no fluents",
		"Institution has no initial facts",
		"Institution has no rules",
		"Institution has no types",
	}, messages(reports))
}

func TestInstitutionStructure_Partial(t *testing.T) {
	reports := runCheck(t, NewInstitutionStructure(), `
institution: i: {
	types: ["T"]
	events: exogenous: ["e"]
	fluents: inertial: ["f"]
	initiates: [{event: "e", fluents: ["f"]}]
}
`)
	require.Len(t, reports, 1)
	assert.Equal(t, "Institution has no initial facts", reports[0].Message)
	assert.Equal(t, "i", reports[0].Data["institution"])
}

func TestInstitutionStructure_IgnoresBridges(t *testing.T) {
	reports := runCheck(t, NewInstitutionStructure(), `bridge: b: {source: "x", sink: "y"}`)
	assert.Empty(t, reports)
}

func TestQuery(t *testing.T) {
	reports := runCheck(t, NewQuery(), `
institution: i: {
	events: {exogenous: ["borrow(Person, Book)"], inst: ["lend(Person, Book)"]}
}
query: [
	"borrow(alice, dune)",
	{event: "lend(alice, dune)", step: 3},
	"borrow(alice)",
]
`)
	require.Len(t, reports, 2)
	assert.Equal(t, "Undeclared Event used in Query", reports[0].Message)
	assert.Equal(t, "lend/2", reports[0].Data["signature"])
	assert.Equal(t, 3, reports[0].Data["step"])
	assert.Equal(t, "borrow/1", reports[1].Data["signature"])
	assert.NotContains(t, reports[1].Data, "step")
}
