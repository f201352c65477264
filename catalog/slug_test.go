package catalog

import "testing"

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Croissant", "croissant"},
		{"Éclair au Café", "eclair-au-cafe"},
		{"Tarte    Tatin", "tarte-tatin"},
		{"  Pain au Chocolat  ", "pain-au-chocolat"},
		{"Mille-Feuille", "mille-feuille"},
		{"Gâteau -- Basque", "gateau-basque"},
		{"Crème Brûlée!!", "creme-brulee"},
		{"100% Beurre", "100-beurre"},
		{"---", ""},
		{"", ""},
	}

	for _, c := range cases {
		if got := Slugify(c.in); got != c.want {
			t.Errorf("Slugify(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestSlugifyDeterministic(t *testing.T) {
	if Slugify("Éclair au Café") != Slugify("eclair AU cafe") {
		t.Error("names differing only in case and accents should slug identically")
	}
}
