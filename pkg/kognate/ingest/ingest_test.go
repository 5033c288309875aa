package ingest

import (
	"errors"
	"strings"
	"testing"

	"github.com/cognicore/kognate/pkg/kognate/internalerr"
)

func TestCleanWord(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"watr", "watr"},
		{"wa-tr", "watr"},
		{"wa tr%", "watr"},
		{"*watr?", "watr"},
		{"CaKa", "caka"},
		{"[w]a~tr", "watr"},
		{"---", ""},
		{"", ""},
	}
	for _, c := range cases {
		if got := CleanWord(c.in); got != c.want {
			t.Errorf("CleanWord(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestSymbols(t *testing.T) {
	got := Symbols("wat3")
	want := []string{"w", "a", "t", "3"}
	if len(got) != len(want) {
		t.Fatalf("Symbols = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("symbol %d = %q, want %q", i, got[i], want[i])
		}
	}
}

const ielexSample = `language	iso	concept	glottocode	word	asjp	cogid
ENGLISH	eng	water	stan1293	water	watr,vatn	B-1
GERMAN	deu	water	stan1295	Wasser	vasr	B-1
ENGLISH	eng	dog	stan1293	dog	dag	-A2?
FRENCH	fra	water	stan1290	eau	---	C3
`

func TestReadIELex(t *testing.T) {
	ds, err := ReadIELex(strings.NewReader(ielexSample))
	if err != nil {
		t.Fatalf("ReadIELex: %v", err)
	}

	// The French row cleans to an empty form and is dropped.
	if got := ds.Words(); got != 3 {
		t.Fatalf("words = %d, want 3", got)
	}
	water := ds.ByConcept["water"]
	if len(water) != 2 {
		t.Fatalf("water entries = %d, want 2", len(water))
	}
	// Only the first comma-separated variant is kept.
	if water[0].String() != "watr" {
		t.Errorf("english water = %q, want watr", water[0])
	}
	if water[0].Language != "ENGLISH" || water[1].Language != "GERMAN" {
		t.Errorf("languages = %s, %s", water[0].Language, water[1].Language)
	}

	wantLangs := []string{"ENGLISH", "FRENCH", "GERMAN"}
	if len(ds.Languages) != 3 {
		t.Fatalf("languages = %v, want %v", ds.Languages, wantLangs)
	}
	for i, l := range wantLangs {
		if ds.Languages[i] != l {
			t.Errorf("language %d = %q, want %q", i, ds.Languages[i], l)
		}
	}

	for _, sym := range []string{"w", "a", "t", "r", "v", "s", "d", "g"} {
		found := false
		for _, s := range ds.Alphabet {
			if s == sym {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("alphabet missing %q: %v", sym, ds.Alphabet)
		}
	}
}

func TestReadIELexGoldScoping(t *testing.T) {
	ds, err := ReadIELex(strings.NewReader(ielexSample))
	if err != nil {
		t.Fatalf("ReadIELex: %v", err)
	}

	water := ds.ByConcept["water"]
	dog := ds.ByConcept["dog"]

	en := ds.Gold[Ref{Language: "ENGLISH", Line: water[0].Line}]
	de := ds.Gold[Ref{Language: "GERMAN", Line: water[1].Line}]
	if en == "" || en != de {
		t.Errorf("water gold ids = %q vs %q, want identical", en, de)
	}

	// The - and ? marks are stripped from cognate identifiers, and ids
	// are scoped per concept.
	dg := ds.Gold[Ref{Language: "ENGLISH", Line: dog[0].Line}]
	if dg == "" || !strings.HasPrefix(dg, "A2") {
		t.Errorf("dog gold id = %q, want A2 scoped to its concept", dg)
	}
	if dg == en {
		t.Errorf("gold ids collide across concepts: %q", dg)
	}
}

func TestReadIELexEmptyCognateColumn(t *testing.T) {
	// The last column may be empty, leaving the row with a trailing
	// tab; the entry still parses, just without a gold id.
	in := "language	iso	concept	glottocode	word	asjp	cogid\n" +
		"ENGLISH\teng\twater\tstan1293\twater\twatr\t\n"

	ds, err := ReadIELex(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadIELex: %v", err)
	}
	if ds.Words() != 1 {
		t.Fatalf("words = %d, want 1", ds.Words())
	}
	if len(ds.Gold) != 0 {
		t.Errorf("gold entries = %d, want 0 for empty cognate column", len(ds.Gold))
	}
}

func TestReadIELexRejectsShortRows(t *testing.T) {
	in := "h1\th2\th3\th4\th5\th6\th7\nENGLISH\teng\twater\n"
	_, err := ReadIELex(strings.NewReader(in))
	if err == nil {
		t.Fatal("short row accepted")
	}
	if !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Errorf("error = %v, want ErrInvalidInput", err)
	}
}

func TestReadCLDF(t *testing.T) {
	in := "Language ID,Feature ID,ASJP,Cognate Class\n" +
		"eng,water,watr,1\n" +
		"deu,water,vasr,1\n" +
		"eng,dog,dag,7\n"

	ds, err := ReadCLDF(strings.NewReader(in), Options{Separator: ','})
	if err != nil {
		t.Fatalf("ReadCLDF: %v", err)
	}
	if got := ds.Words(); got != 3 {
		t.Fatalf("words = %d, want 3", got)
	}
	if len(ds.ByConcept["water"]) != 2 || len(ds.ByConcept["dog"]) != 1 {
		t.Errorf("concepts = %v", ds.ByConcept)
	}
}

func TestReadCLDFCrossSemanticGold(t *testing.T) {
	in := "Language ID,Feature ID,ASJP,Cognate Class\n" +
		"eng,water,watr,9\n" +
		"deu,dog,hunt,9\n"

	ds, err := ReadCLDF(strings.NewReader(in), Options{
		Separator:           ',',
		CrossSemanticCogIDs: true,
	})
	if err != nil {
		t.Fatalf("ReadCLDF: %v", err)
	}

	ids := make(map[string]bool)
	for _, id := range ds.Gold {
		ids[id] = true
	}
	if len(ids) != 1 {
		t.Errorf("cross-semantic ids = %v, want a single shared id", ids)
	}
}

func TestReadCLDFMissingColumns(t *testing.T) {
	in := "Language ID,ASJP\neng,watr\n"
	_, err := ReadCLDF(strings.NewReader(in), Options{Separator: ','})
	if err == nil {
		t.Fatal("missing concept column accepted")
	}
	if !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Errorf("error = %v, want ErrInvalidInput", err)
	}
}

func TestReadLingpy(t *testing.T) {
	in := "DOCULECT\tCONCEPT\tASJP\tCOGID\n" +
		"English\twater\twatr\t12\n" +
		"German\twater\tvasr\t12\n"

	ds, err := ReadLingpy(strings.NewReader(in), Options{})
	if err != nil {
		t.Fatalf("ReadLingpy: %v", err)
	}
	if got := ds.Words(); got != 2 {
		t.Fatalf("words = %d, want 2", got)
	}
	if len(ds.Gold) != 2 {
		t.Errorf("gold entries = %d, want 2", len(ds.Gold))
	}
}

func TestReadLingpyDoculectIDPreferred(t *testing.T) {
	in := "DOCULECT_ID\tDOCULECT\tCONCEPT\tASJP\tCOGID\n" +
		"eng1	English	water	watr	12\n"

	ds, err := ReadLingpy(strings.NewReader(in), Options{})
	if err != nil {
		t.Fatalf("ReadLingpy: %v", err)
	}
	if len(ds.Languages) != 1 || ds.Languages[0] != "eng1" {
		t.Errorf("languages = %v, want [eng1]", ds.Languages)
	}
}

func TestReadLingpyEmptyCogID(t *testing.T) {
	in := "DOCULECT\tCONCEPT\tASJP\tCOGID\n" +
		"English\twater\twatr\t\n"

	ds, err := ReadLingpy(strings.NewReader(in), Options{})
	if err != nil {
		t.Fatalf("ReadLingpy: %v", err)
	}
	if ds.Words() != 1 {
		t.Fatalf("words = %d, want 1", ds.Words())
	}
	if len(ds.Gold) != 0 {
		t.Errorf("gold entries = %d, want 0 for empty cogid", len(ds.Gold))
	}
}
