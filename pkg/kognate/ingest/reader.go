// Package ingest reads multilingual wordlists in the IELex, CLDF and
// Lingpy tabular formats into the in-memory shapes the pipeline
// consumes. Entries whose form is empty after cleaning never reach
// the core.
package ingest

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/cognicore/kognate/pkg/kognate/internalerr"
	"github.com/cognicore/kognate/pkg/kognate/word"
)

// Ref identifies one wordlist entry by its (language, line) identity.
type Ref struct {
	Language string
	Line     int
}

// Dataset is a fully materialized wordlist.
type Dataset struct {
	// ByConcept maps each concept to its words.
	ByConcept map[string][]word.Word

	// Gold maps entries to their expert cognate-class identifier.
	// Used only for evaluation, never for training.
	Gold map[Ref]string

	// Languages are the distinct language identifiers, sorted.
	Languages []string

	// Alphabet are the distinct symbols across all words, sorted.
	Alphabet []string
}

// Words returns the total number of entries.
func (d *Dataset) Words() int {
	n := 0
	for _, ws := range d.ByConcept {
		n += len(ws)
	}
	return n
}

// Options configures the readers.
type Options struct {
	// Separator for the CLDF and Lingpy readers; 0 means tab.
	Separator rune

	// CrossSemanticCogIDs treats gold cognate identifiers as unique
	// across concepts. When false, identifiers are scoped per concept.
	CrossSemanticCogIDs bool
}

type builder struct {
	byConcept map[string][]word.Word
	gold      map[Ref]string
	languages map[string]bool
	alphabet  map[string]bool
	line      int
}

func newBuilder() *builder {
	return &builder{
		byConcept: make(map[string][]word.Word),
		gold:      make(map[Ref]string),
		languages: make(map[string]bool),
		alphabet:  make(map[string]bool),
	}
}

// add cleans one raw entry and records it; empty forms are skipped.
func (b *builder) add(lang, concept, raw, cogid string, cross bool) {
	form := CleanWord(raw)
	if form == "" {
		return
	}
	syms := Symbols(form)
	w := word.Word{
		Concept:  concept,
		Language: lang,
		Line:     b.line,
		Symbols:  syms,
	}
	b.byConcept[concept] = append(b.byConcept[concept], w)
	if cogid != "" {
		id := cogid
		if !cross {
			id = cogid + "\x00" + concept
		}
		b.gold[Ref{Language: lang, Line: b.line}] = id
	}
	b.languages[lang] = true
	for _, s := range syms {
		b.alphabet[s] = true
	}
	b.line++
}

func (b *builder) dataset() *Dataset {
	return &Dataset{
		ByConcept: b.byConcept,
		Gold:      b.gold,
		Languages: sortedKeys(b.languages),
		Alphabet:  sortedKeys(b.alphabet),
	}
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// ReadIELex reads an IELex-style TSV file: language in column 0,
// concept in column 2, ASJP form in column 5 (first comma-separated
// variant), cognate class in column 6. The header line is ignored.
// Gold identifiers are scoped per concept.
func ReadIELex(r io.Reader) (*Dataset, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 1024*1024), 1024*1024)

	b := newBuilder()
	first := true
	for sc.Scan() {
		// Trailing tabs are significant: the last column may be empty.
		line := strings.TrimRight(sc.Text(), "\r\n")
		if first {
			first = false
			continue
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 7 {
			return nil, fmt.Errorf("ingest: ielex row with %d columns: %w",
				len(fields), internalerr.ErrInvalidInput)
		}
		cogid := strings.NewReplacer("-", "", "?", "").Replace(fields[6])
		raw := strings.SplitN(fields[5], ",", 2)[0]
		b.add(fields[0], fields[2], raw, cogid, false)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("ingest: read ielex: %w", err)
	}
	return b.dataset(), nil
}

// ReadCLDF reads a CLDF wordlist with "Language ID", "Feature ID",
// "ASJP" and "Cognate Class" columns.
func ReadCLDF(r io.Reader, opts Options) (*Dataset, error) {
	return readHeadered(r, opts, headerSpec{
		language: []string{"Language ID"},
		concept:  []string{"Feature ID"},
		form:     []string{"ASJP"},
		cogid:    []string{"Cognate Class"},
	})
}

// ReadLingpy reads a Lingpy wordlist with "DOCULECT_ID" (falling
// back to "DOCULECT"), "CONCEPT", "ASJP" and "COGID" columns.
func ReadLingpy(r io.Reader, opts Options) (*Dataset, error) {
	return readHeadered(r, opts, headerSpec{
		language: []string{"DOCULECT_ID", "DOCULECT"},
		concept:  []string{"CONCEPT"},
		form:     []string{"ASJP"},
		cogid:    []string{"COGID"},
	})
}

type headerSpec struct {
	language []string
	concept  []string
	form     []string
	cogid    []string
}

func readHeadered(r io.Reader, opts Options, spec headerSpec) (*Dataset, error) {
	sep := opts.Separator
	if sep == 0 {
		sep = '\t'
	}
	cr := csv.NewReader(r)
	cr.Comma = sep
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("ingest: read header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	col := func(names []string) int {
		for _, n := range names {
			if i, ok := index[n]; ok {
				return i
			}
		}
		return -1
	}

	langCol := col(spec.language)
	conceptCol := col(spec.concept)
	formCol := col(spec.form)
	cogidCol := col(spec.cogid)
	if langCol < 0 || conceptCol < 0 || formCol < 0 {
		return nil, fmt.Errorf("ingest: missing required columns %v/%v/%v: %w",
			spec.language, spec.concept, spec.form, internalerr.ErrInvalidInput)
	}

	b := newBuilder()
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ingest: read row: %w", err)
		}
		if langCol >= len(rec) || conceptCol >= len(rec) || formCol >= len(rec) {
			continue
		}
		cogid := ""
		if cogidCol >= 0 && cogidCol < len(rec) {
			cogid = rec[cogidCol]
		}
		b.add(rec[langCol], rec[conceptCol], rec[formCol], cogid,
			opts.CrossSemanticCogIDs)
	}
	return b.dataset(), nil
}
