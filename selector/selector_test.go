package selector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drover-run/drover/types"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []Term
	}{
		{
			name: "bare value defaults to name",
			raw:  "checkout",
			want: []Term{{Kind: KindName, Value: "checkout"}},
		},
		{
			name: "typed terms",
			raw:  "tag:smoke",
			want: []Term{{Kind: KindTag, Value: "smoke"}},
		},
		{
			name: "value is lowercased",
			raw:  "name:Login",
			want: []Term{{Kind: KindName, Value: "login"}},
		},
		{
			name: "negation",
			raw:  "!tag:flaky",
			want: []Term{{Kind: KindTag, Value: "flaky", Negated: true}},
		},
		{
			name: "double negation cancels",
			raw:  "!!staging",
			want: []Term{{Kind: KindName, Value: "staging"}},
		},
		{
			name: "triple negation negates",
			raw:  "!!!staging",
			want: []Term{{Kind: KindName, Value: "staging", Negated: true}},
		},
		{
			name: "comma separates AND terms",
			raw:  "tag:smoke,!tag:flaky",
			want: []Term{
				{Kind: KindTag, Value: "smoke"},
				{Kind: KindTag, Value: "flaky", Negated: true},
			},
		},
		{
			name: "whitespace around terms is trimmed",
			raw:  " tag:smoke , name:pay ",
			want: []Term{
				{Kind: KindTag, Value: "smoke"},
				{Kind: KindName, Value: "pay"},
			},
		},
		{
			name: "value may contain a colon",
			raw:  "name:suite:checkout",
			want: []Term{{Kind: KindName, Value: "suite:checkout"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel, err := Parse(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, sel.Terms())
			assert.Equal(t, tt.raw, sel.String())
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "empty string", raw: ""},
		{name: "empty value after type", raw: "tag:"},
		{name: "bare negation", raw: "!"},
		{name: "empty AND term", raw: "tag:smoke,"},
		{name: "unknown type", raw: "suite:checkout:foo"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.raw)
			require.Error(t, err)
		})
	}
}

func TestParseUnknownTypeNamesTheType(t *testing.T) {
	_, err := Parse("gate:holocene")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"gate"`)
}

func TestMatches(t *testing.T) {
	def := &types.ScenarioDef{
		Name:     "Checkout Flow",
		Tags:     []string{"Smoke", "payments"},
		Location: types.Location{File: "scenarios/payments_flow.go", Line: 42},
	}

	tests := []struct {
		raw  string
		want bool
	}{
		{raw: "checkout", want: true},
		{raw: "OUT", want: true},
		{raw: "refund", want: false},
		{raw: "tag:smoke", want: true},
		{raw: "tag:pay", want: true},
		{raw: "tag:flaky", want: false},
		{raw: "!tag:flaky", want: true},
		{raw: "!tag:smoke", want: false},
		{raw: "file:payments_flow", want: true},
		{raw: "file:inventory", want: false},
		{raw: "tag:smoke,name:checkout", want: true},
		{raw: "tag:smoke,name:refund", want: false},
		{raw: "!!checkout", want: true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			sel, err := Parse(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, sel.Matches(def))
		})
	}
}

func TestMatchesAnyIsOr(t *testing.T) {
	def := &types.ScenarioDef{Name: "inventory-sync", Tags: []string{"nightly"}}

	sels, err := ParseAll([]string{"tag:smoke", "name:inventory"})
	require.NoError(t, err)
	assert.True(t, MatchesAny(def, sels), "second selector matches")

	sels, err = ParseAll([]string{"tag:smoke", "name:checkout"})
	require.NoError(t, err)
	assert.False(t, MatchesAny(def, sels))

	assert.True(t, MatchesAny(def, nil), "no selectors matches everything")
}

func TestFilterPreservesOrder(t *testing.T) {
	defs := []*types.ScenarioDef{
		{Name: "alpha", Tags: []string{"smoke"}},
		{Name: "bravo"},
		{Name: "charlie", Tags: []string{"smoke"}},
	}

	sels, err := ParseAll([]string{"tag:smoke", "name:bravo"})
	require.NoError(t, err)

	got := Filter(defs, sels)
	require.Len(t, got, 3)
	assert.Equal(t, "alpha", got[0].Name)
	assert.Equal(t, "bravo", got[1].Name)
	assert.Equal(t, "charlie", got[2].Name)

	sels, err = ParseAll([]string{"tag:smoke"})
	require.NoError(t, err)
	got = Filter(defs, sels)
	require.Len(t, got, 2)
	assert.Equal(t, "alpha", got[0].Name)
	assert.Equal(t, "charlie", got[1].Name)
}

func TestFilterNoSelectorsReturnsInput(t *testing.T) {
	defs := []*types.ScenarioDef{{Name: "only"}}
	assert.Equal(t, defs, Filter(defs, nil))
}
