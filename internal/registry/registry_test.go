package registry_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/taxcheck/internal/model"
	"github.com/rezonia/taxcheck/internal/registry"
)

func TestLookup_IBAN(t *testing.T) {
	rule, err := registry.Lookup(model.ClassIBAN, "DE")
	require.NoError(t, err)

	assert.Equal(t, 22, rule.TotalLength)
	assert.Equal(t, registry.AlgoMod97, rule.Algorithm)
	assert.True(t, rule.BankCode.Defined())
	assert.Equal(t, 4, rule.BankCode.Start)
	assert.Equal(t, 12, rule.BankCode.End)
	assert.Equal(t, 12, rule.Account.Start)
	assert.Equal(t, 22, rule.Account.End)
	assert.True(t, rule.Body.MatchString("370400440532013000"))
	assert.False(t, rule.Body.MatchString("3704004405320130"))
}

func TestLookup_NotFound(t *testing.T) {
	_, err := registry.Lookup(model.ClassIBAN, "ZZ")
	require.Error(t, err)

	var nf *model.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "ZZ", nf.Country)
	assert.Equal(t, model.ClassIBAN, nf.Class)
}

func TestLookup_VATID(t *testing.T) {
	tests := []struct {
		country string
		body    string
		match   bool
	}{
		{"DE", "123456789", true},
		{"DE", "12345678", false},
		{"AT", "U12345678", true},
		{"AT", "12345678", false},
		{"NL", "123456789B01", true},
		{"BE", "0123456789", true},
		{"BE", "2123456789", false},
		{"EL", "123456789", true},
		{"IE", "1234567FA", true},
		{"IE", "8X12345W", true},
	}
	for _, tt := range tests {
		rule, err := registry.Lookup(model.ClassVATID, tt.country)
		require.NoError(t, err, tt.country)
		assert.Equal(t, tt.match, rule.Body.MatchString(tt.body), "%s%s", tt.country, tt.body)
	}
}

func TestLookup_EORI(t *testing.T) {
	rule, err := registry.Lookup(model.ClassEORI, "DE")
	require.NoError(t, err)
	assert.Equal(t, registry.AlgoWeightedMod11, rule.Algorithm)
	assert.Equal(t, "Generalzolldirektion", rule.Authority)

	rule, err = registry.Lookup(model.ClassEORI, "FR")
	require.NoError(t, err)
	assert.Equal(t, registry.AlgoNone, rule.Algorithm)
}

func TestCountries(t *testing.T) {
	vat := registry.Countries(model.ClassVATID)
	assert.Contains(t, vat, "DE")
	assert.Contains(t, vat, "XI")
	assert.GreaterOrEqual(t, len(vat), 27)

	iban := registry.Countries(model.ClassIBAN)
	assert.Contains(t, iban, "DE")
	assert.Contains(t, iban, "CH")
}

func TestLookup_ConcurrentReads(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, c := range []string{"DE", "AT", "FR", "ZZ"} {
				registry.Lookup(model.ClassIBAN, c)
				registry.Lookup(model.ClassVATID, c)
			}
		}()
	}
	wg.Wait()
}
