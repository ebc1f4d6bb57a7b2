package pds

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeIdempotent(t *testing.T) {
	norm := newNormalizer(nil)

	names := []string{
		"Kinematic Viscosity @ 40°C",
		"Flash Point, COC °C",
		"Pour Point",
		"Density @ 15°C, kg/m³",
		"Some Unknown Property (xyz)",
	}
	for _, name := range names {
		once := norm.Normalize(name)
		assert.Equal(t, once, norm.Normalize(once), "normalizing %q twice changed the key", name)
	}
}

func TestNormalizeSynonymEquivalence(t *testing.T) {
	norm := newNormalizer(nil)

	tests := []struct {
		a, b string
	}{
		{"Flash point, COC °C", "Flash Point (COC), °C"},
		{"Kinematic Viscosity @ 40°C", "Viscosity at 40 °C"},
		{"Viscosity @100°C", "KV100"},
		{"Total Base Number", "TBN"},
		{"Colour", "ASTM Color"},
		{"Density at 15°C", "Relative Density"},
		{"Pourpoint", "Pour Point"},
	}
	for _, tt := range tests {
		assert.Equal(t, norm.Normalize(tt.a), norm.Normalize(tt.b),
			"%q and %q should map to the same canonical key", tt.a, tt.b)
	}
}

func TestNormalizeCanonicalKeys(t *testing.T) {
	norm := newNormalizer(nil)

	tests := []struct {
		in   string
		want string
	}{
		{"Kinematic Viscosity @ 40°C", "viscosity @ 40"},
		{"Viscosity index", "viscosity index"},
		{"Flash Point (COC), °C", "flash point coc"},
		{"Noack, % ", "noack volatility"},
		{"Sulfated Ash", "sulphated ash"},
		// unknown names pass through base normalization unchanged
		{"Copper Corrosion, 3h", "copper corrosion 3h"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, norm.Normalize(tt.in), "input %q", tt.in)
	}
}

func TestNormalizeExtraSynonyms(t *testing.T) {
	norm := newNormalizer(map[string][]string{
		"shear stability": {"viscosity after shear", "KRL shear"},
	})

	assert.Equal(t, "shear stability", norm.Normalize("Viscosity After Shear"))
	assert.Equal(t, "shear stability", norm.Normalize("KRL Shear"))
	// built-in table still present
	assert.Equal(t, "tbn", norm.Normalize("Total Base Number"))
}

func TestSplitInlineUnit(t *testing.T) {
	tests := []struct {
		in        string
		wantValue string
		wantUnit  string
	}{
		{"12.1 mm²/s", "12.1", "mm²/s"},
		{"32mm2/s", "32", "mm2/s"},
		{"<-39 °C", "<-39", "°C"},
		{"0.850 kg/l", "0.850", "kg/l"},
		{"205", "205", ""},
		{"L-class", "L-class", ""},
	}
	for _, tt := range tests {
		value, unit := splitInlineUnit(tt.in)
		assert.Equal(t, tt.wantValue, value, "value for %q", tt.in)
		assert.Equal(t, tt.wantUnit, unit, "unit for %q", tt.in)
	}
}

func TestUnifySymbols(t *testing.T) {
	assert.Equal(t, "40°C - mm2/s", unifySymbols("40ºC – mm²/s"))
	assert.Equal(t, "a - b", unifySymbols("a — b"))
}
