package structure_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqlgrain/internal/testutil"
	_ "github.com/leapstack-labs/sqlgrain/pkg/lint/rules/structure" // register rules
)

func TestFixtures(t *testing.T) {
	for _, code := range []string{"ST01", "ST04"} {
		t.Run(code, func(t *testing.T) {
			testutil.RunRuleFixtures(t, "testdata/"+code+".yml")
		})
	}
}

func TestST01_Description(t *testing.T) {
	vs := testutil.LintRule(t, "ST01", "", nil, "SELECT CASE WHEN a THEN 1 ELSE NULL END FROM t")
	require.Len(t, vs, 1)
	assert.Equal(t, "Unnecessary ELSE NULL statement.", vs[0].Description)
	assert.Equal(t, 27, vs[0].Pos)
	assert.True(t, vs[0].Fixable)
}

func TestST04_NotFixable(t *testing.T) {
	vs := testutil.LintRule(t, "ST04", "", nil, "SELECT CASE WHEN a THEN 1 ELSE CASE WHEN b THEN 2 END END FROM t")
	require.Len(t, vs, 1)
	assert.Equal(t, "Nested CASE statement in ELSE clause could be flattened.", vs[0].Description)
	assert.False(t, vs[0].Fixable)
}
