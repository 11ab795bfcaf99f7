package scheduling

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScope_Accessors(t *testing.T) {
	v := VehicleScope(12)
	id, ok := v.VehicleID()
	assert.True(t, ok)
	assert.Equal(t, uint(12), id)
	_, ok = v.Tariff()
	assert.False(t, ok)
	assert.Equal(t, ScopeVehicle, v.Kind())

	tr := TariffScope("comfort")
	name, ok := tr.Tariff()
	assert.True(t, ok)
	assert.Equal(t, "comfort", name)
	_, ok = tr.VehicleID()
	assert.False(t, ok)
	assert.Equal(t, "tariff", tr.Kind().String())

	assert.True(t, Scope{}.IsZero())
	assert.Empty(t, Scope{}.Key())
}

func TestParseScopeKey(t *testing.T) {
	tests := []struct {
		key     string
		want    Scope
		wantErr bool
	}{
		{key: "vehicle:12", want: VehicleScope(12)},
		{key: "tariff:standard", want: TariffScope("standard")},
		{key: "vehicle:0", wantErr: true},
		{key: "vehicle:abc", wantErr: true},
		{key: "tariff:", wantErr: true},
		{key: "fleet:1", wantErr: true},
		{key: "standard", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, err := ParseScopeKey(tt.key)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidScopeKey)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.key, got.Key())
		})
	}
}

func TestScope_JSON(t *testing.T) {
	type envelope struct {
		Scope Scope `json:"scope"`
	}
	bs, err := json.Marshal(envelope{Scope: VehicleScope(7)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"scope":"vehicle:7"}`, string(bs))

	var out envelope
	require.NoError(t, json.Unmarshal([]byte(`{"scope":"tariff:premium"}`), &out))
	assert.Equal(t, TariffScope("premium"), out.Scope)

	assert.Error(t, json.Unmarshal([]byte(`{"scope":"nope"}`), &out))
}
