// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pubmed

import (
	"bufio"
	"io"
	"strings"

	"github.com/pdiddy/pubmed-harvest/pkg/types"
)

// Medline flat-file format: each line is a 4-character tag, "- ", and a
// value. Continuation lines are indented with six spaces and belong to
// the preceding tag.
//
// Tags used here: PMID, TI (title), AB (abstract), DP (publication
// date), JT (journal title), AU (author), LID (location ID, carries the
// DOI with an " [doi]" suffix), OT (keywords), MH (MeSH headings).

// parseMedline reads one Medline record into tag → values order-preserving
// lists. It tolerates arbitrary leading noise and stops at EOF.
func parseMedline(r io.Reader) (map[string][]string, error) {
	fields := make(map[string][]string)
	var tag string

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "      ") && tag != "":
			// Continuation of the previous field.
			vals := fields[tag]
			vals[len(vals)-1] += " " + strings.TrimSpace(line)
		case len(line) >= 6 && line[4:6] == "- ":
			tag = strings.TrimSpace(line[:4])
			fields[tag] = append(fields[tag], strings.TrimSpace(line[6:]))
		default:
			tag = ""
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return fields, nil
}

func first(fields map[string][]string, tag string) string {
	if vals := fields[tag]; len(vals) > 0 {
		return vals[0]
	}
	return ""
}

// articleFromMedline maps a parsed record onto the normalized Article.
// Absent tags map to zero values, never errors.
func articleFromMedline(fields map[string][]string, pmid string) *types.Article {
	id := first(fields, "PMID")
	if id == "" {
		id = pmid
	}

	var doi string
	for _, lid := range fields["LID"] {
		if strings.HasSuffix(lid, " [doi]") {
			doi = strings.TrimSuffix(lid, " [doi]")
			break
		}
	}

	return &types.Article{
		ID:              id,
		Title:           first(fields, "TI"),
		Abstract:        first(fields, "AB"),
		PublicationDate: first(fields, "DP"),
		Journal:         first(fields, "JT"),
		Authors:         fields["AU"],
		DOI:             doi,
		Keywords:        fields["OT"],
		MeshTerms:       fields["MH"],
		URL:             CanonicalURL(id),
	}
}

// CanonicalURL returns the PubMed URL for a PMID, matching the reference
// form used by the question corpus.
func CanonicalURL(pmid string) string {
	return "http://www.ncbi.nlm.nih.gov/pubmed/" + pmid
}
