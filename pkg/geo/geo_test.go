package geo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCountries(t *testing.T) {
	t.Parallel()

	de := Countries("de", "en")
	if de[0] != (Country{Code: "DE", Name: "Deutschland"}) {
		t.Fatalf("first German entry = %+v", de[0])
	}
	fr := Countries("fr", "de")
	if fr[1].Name != "Österreich" {
		t.Fatalf("expected fallback language, got %+v", fr[1])
	}
	if got := Countries("fr", "xx")[0].Name; got != "Germany" {
		t.Fatalf("expected English default, got %q", got)
	}
	for _, lang := range Languages() {
		if len(countryNames[lang]) != len(countryCodes) {
			t.Fatalf("language %s has %d names for %d codes", lang, len(countryNames[lang]), len(countryCodes))
		}
	}
}

func TestFindCountryAliases(t *testing.T) {
	t.Parallel()

	c, ok := FindCountry("en", "gb")
	if !ok || c.Code != "UK" || c.Name != "United Kingdom" {
		t.Fatalf("FindCountry(gb) = %+v, %v", c, ok)
	}
	if _, ok := FindCountry("en", "ZZ"); ok {
		t.Fatalf("expected unknown code to be missing")
	}
}

func TestRegions(t *testing.T) {
	t.Parallel()

	if got := len(Regions("DE")); got != 16 {
		t.Fatalf("DE regions = %d, want 16", got)
	}
	if diff := cmp.Diff([]string{"England", "Schottland", "Wales", "Nordirland"}, Regions("GB")); diff != "" {
		t.Fatalf("GB regions mismatch (-want +got):\n%s", diff)
	}
	if Regions("CH") != nil || HasRegions("CH") {
		t.Fatalf("expected no regions for CH")
	}

	regions := Regions("AT")
	regions[0] = "mutated"
	if Regions("AT")[0] != "Burgenland" {
		t.Fatalf("Regions must return a copy")
	}
}

func TestIPLocator(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("empty") != "" {
			w.Write([]byte(`{"error":true}`))
			return
		}
		w.Write([]byte(`{"ip":"192.0.2.1","country":"GB"}`))
	}))
	t.Cleanup(server.Close)

	locator := NewIPLocator(WithEndpoint(server.URL), WithHTTPClient(server.Client()))
	code, err := locator.CountryCode(context.Background())
	if err != nil {
		t.Fatalf("CountryCode returned error: %v", err)
	}
	if code != "UK" {
		t.Fatalf("CountryCode = %q, want UK", code)
	}

	empty := NewIPLocator(WithEndpoint(server.URL + "?empty=1"))
	code, err = empty.CountryCode(context.Background())
	if err != nil || code != "" {
		t.Fatalf("CountryCode = %q, %v; want blank", code, err)
	}

	var fixed Locator = LocatorFunc(func(context.Context) (string, error) { return "AT", nil })
	if code, _ := fixed.CountryCode(context.Background()); code != "AT" {
		t.Fatalf("LocatorFunc = %q", code)
	}
}
