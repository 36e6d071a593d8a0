// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Article holds the normalized metadata for one fetched PubMed record.
// Exactly one file per article is written under <data-dir>/abstracts/,
// keyed by PMID, so repeated runs overwrite safely.
type Article struct {
	// ID is the PubMed identifier (PMID) of the record.
	ID string `json:"id" yaml:"id"`

	// Title is the article title.
	Title string `json:"title" yaml:"title"`

	// Abstract is the abstract text.
	Abstract string `json:"abstract" yaml:"abstract"`

	// PublicationDate is the publication date as reported by PubMed
	// (free-form, e.g. "2023 Jan 15" or "2024").
	PublicationDate string `json:"publication_date" yaml:"publication_date"`

	// Journal is the full journal title.
	Journal string `json:"journal" yaml:"journal"`

	// Authors lists the article authors in citation order.
	Authors []string `json:"authors" yaml:"authors"`

	// DOI is the Digital Object Identifier, empty when PubMed has none.
	DOI string `json:"doi,omitempty" yaml:"doi,omitempty"`

	// Keywords are the author-supplied keywords (Medline OT field).
	Keywords []string `json:"keywords" yaml:"keywords"`

	// MeshTerms are the MeSH subject headings (Medline MH field).
	MeshTerms []string `json:"mesh_terms" yaml:"mesh_terms"`

	// URL is the canonical PubMed URL for the record.
	URL string `json:"url" yaml:"url"`
}
