// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pubmed

import (
	"strings"
	"testing"
)

const sampleMedline = `
PMID- 23193287
OWN - NLM
DP  - 2013 Jan
TI  - Database resources of the National Center for Biotechnology
      Information.
AB  - In addition to maintaining the GenBank nucleic acid sequence database, the
      National Center for Biotechnology Information (NCBI) provides analysis and
      retrieval resources.
JT  - Nucleic acids research
AU  - Sayers EW
AU  - Barrett T
LID - gks1189 [pii]
LID - 10.1093/nar/gks1189 [doi]
MH  - *Databases, Nucleic Acid
MH  - Internet
OT  - bioinformatics
OT  - databases
`

func TestParseMedline(t *testing.T) {
	fields, err := parseMedline(strings.NewReader(sampleMedline))
	if err != nil {
		t.Fatalf("parseMedline: %v", err)
	}

	if got := first(fields, "PMID"); got != "23193287" {
		t.Errorf("PMID = %q, want %q", got, "23193287")
	}
	wantTitle := "Database resources of the National Center for Biotechnology Information."
	if got := first(fields, "TI"); got != wantTitle {
		t.Errorf("TI = %q, want %q", got, wantTitle)
	}
	if got := len(fields["AU"]); got != 2 {
		t.Errorf("len(AU) = %d, want 2", got)
	}
	if got := len(fields["MH"]); got != 2 {
		t.Errorf("len(MH) = %d, want 2", got)
	}
}

func TestParseMedline_Empty(t *testing.T) {
	fields, err := parseMedline(strings.NewReader("\n\n"))
	if err != nil {
		t.Fatalf("parseMedline: %v", err)
	}
	if len(fields) != 0 {
		t.Errorf("expected no fields, got %v", fields)
	}
}

func TestArticleFromMedline(t *testing.T) {
	fields, err := parseMedline(strings.NewReader(sampleMedline))
	if err != nil {
		t.Fatalf("parseMedline: %v", err)
	}

	a := articleFromMedline(fields, "23193287")

	if a.ID != "23193287" {
		t.Errorf("ID = %q", a.ID)
	}
	if a.DOI != "10.1093/nar/gks1189" {
		t.Errorf("DOI = %q, want %q", a.DOI, "10.1093/nar/gks1189")
	}
	if a.Journal != "Nucleic acids research" {
		t.Errorf("Journal = %q", a.Journal)
	}
	if a.PublicationDate != "2013 Jan" {
		t.Errorf("PublicationDate = %q", a.PublicationDate)
	}
	if len(a.Keywords) != 2 || a.Keywords[0] != "bioinformatics" {
		t.Errorf("Keywords = %v", a.Keywords)
	}
	if len(a.MeshTerms) != 2 {
		t.Errorf("MeshTerms = %v", a.MeshTerms)
	}
	if a.URL != "http://www.ncbi.nlm.nih.gov/pubmed/23193287" {
		t.Errorf("URL = %q", a.URL)
	}
	if !strings.Contains(a.Abstract, "GenBank") {
		t.Errorf("Abstract = %q", a.Abstract)
	}
}

func TestArticleFromMedline_MissingFields(t *testing.T) {
	fields := map[string][]string{"PMID": {"42"}}
	a := articleFromMedline(fields, "42")

	if a.Title != "" || a.Abstract != "" || a.DOI != "" {
		t.Errorf("expected zero values for absent fields, got %+v", a)
	}
	if a.Authors != nil || a.Keywords != nil || a.MeshTerms != nil {
		t.Errorf("expected nil slices for absent fields, got %+v", a)
	}
}

func TestArticleFromMedline_FallbackID(t *testing.T) {
	a := articleFromMedline(map[string][]string{"TI": {"x"}}, "99")
	if a.ID != "99" {
		t.Errorf("ID = %q, want fallback %q", a.ID, "99")
	}
}
