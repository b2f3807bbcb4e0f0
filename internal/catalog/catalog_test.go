package catalog

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"  Hola  ", "hola"},
		{"Menú", "menu"},
		{"MOSCATEL DE ALEJANDRÍA", "moscatel de alejandria"},
		{"vino   tinto\t scala", "vino tinto scala"},
		{"", ""},
	}
	for _, c := range cases {
		if got := Normalize(c.in); got != c.want {
			t.Errorf("Normalize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestResolveAliasRoundTrip(t *testing.T) {
	c := Default()
	for _, entry := range defaultEntries {
		for _, alias := range entry.Aliases {
			key, ok := c.Resolve(alias)
			if !ok {
				t.Errorf("alias %q did not resolve", alias)
				continue
			}
			if key != entry.Key {
				t.Errorf("alias %q resolved to %q, want %q", alias, key, entry.Key)
			}
		}
	}
}

func TestResolveCanonicalKey(t *testing.T) {
	c := Default()
	key, ok := c.Resolve("Vino Tinto Scala Tempranillo")
	if !ok || key != "vino tinto scala tempranillo" {
		t.Errorf("Resolve(canonical) = %q, %v", key, ok)
	}
}

func TestResolveAccentedAlias(t *testing.T) {
	c := Default()
	key, ok := c.Resolve("Moscatel de Alejandría")
	if !ok || key != "vino espumoso scala moscatel" {
		t.Errorf("Resolve(accented alias) = %q, %v", key, ok)
	}
}

func TestResolveUnknown(t *testing.T) {
	c := Default()
	if key, ok := c.Resolve("tequila"); ok {
		t.Errorf("Resolve(tequila) unexpectedly resolved to %q", key)
	}
}

func TestPrice(t *testing.T) {
	c := Default()
	price, ok := c.Price("vino tinto scala tempranillo")
	if !ok || price != 290 {
		t.Errorf("Price = %v, %v, want 290, true", price, ok)
	}
	if _, ok := c.Price("mezcal"); ok {
		t.Error("Price(mezcal) should not exist")
	}
}

func TestTitle(t *testing.T) {
	c := Default()
	if got := c.Title("vino tinto scala tempranillo"); got != "Vino Tinto Scala – Tempranillo" {
		t.Errorf("Title = %q", got)
	}
	// Unknown keys fall back to title casing
	if got := c.Title("vino misterioso"); got != "Vino Misterioso" {
		t.Errorf("Title fallback = %q", got)
	}
}

func TestParseQuantity(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"quiero 3", 3},
		{"quiero 3 botellas", 3},
		{"12 botellas", 12},
		{"una", 1},
		{"", 1},
		{"0", 1},
		{"dame 25", 25},
	}
	for _, c := range cases {
		if got := ParseQuantity(c.in); got != c.want {
			t.Errorf("ParseQuantity(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}
