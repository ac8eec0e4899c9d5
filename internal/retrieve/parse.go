// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package retrieve

import (
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pdiddy/evidence-engine/pkg/types"
)

// PubMed efetch XML shapes. Only the fields the pipeline consumes are
// mapped; everything else is ignored by the decoder.
type pubmedArticleSet struct {
	Articles []pubmedArticle `xml:"PubmedArticle"`
}

type pubmedArticle struct {
	MedlineCitation struct {
		PMID    string `xml:"PMID"`
		Article struct {
			Title    string `xml:"ArticleTitle"`
			Abstract struct {
				Texts []abstractText `xml:"AbstractText"`
			} `xml:"Abstract"`
			Journal struct {
				Title        string `xml:"Title"`
				JournalIssue struct {
					PubDate struct {
						Year        string `xml:"Year"`
						MedlineDate string `xml:"MedlineDate"`
					} `xml:"PubDate"`
				} `xml:"JournalIssue"`
			} `xml:"Journal"`
			Authors []struct {
				CollectiveName string `xml:"CollectiveName"`
				ForeName       string `xml:"ForeName"`
				LastName       string `xml:"LastName"`
			} `xml:"AuthorList>Author"`
			PubTypes []string `xml:"PublicationTypeList>PublicationType"`
		} `xml:"Article"`
	} `xml:"MedlineCitation"`
	PubmedData struct {
		ArticleIDs []struct {
			IDType string `xml:"IdType,attr"`
			Value  string `xml:",chardata"`
		} `xml:"ArticleIdList>ArticleId"`
	} `xml:"PubmedData"`
}

// abstractText captures one abstract part. Structured abstracts carry a
// Label attribute ("METHODS", "RESULTS", ...) that is kept as a prefix.
type abstractText struct {
	Label string `xml:"Label,attr"`
	Text  string `xml:",chardata"`
}

// ParseArticles decodes efetch XML into Article records. Empty input
// yields no articles; a decode failure is an error since it usually means
// the endpoint returned an HTML error page.
func ParseArticles(xmlText []byte) ([]types.Article, error) {
	if len(strings.TrimSpace(string(xmlText))) == 0 {
		return nil, nil
	}

	var set pubmedArticleSet
	if err := xml.Unmarshal(xmlText, &set); err != nil {
		return nil, fmt.Errorf("decoding article set: %w", err)
	}

	var articles []types.Article
	for _, pa := range set.Articles {
		med := pa.MedlineCitation
		art := med.Article

		var parts []string
		for _, at := range art.Abstract.Texts {
			txt := strings.TrimSpace(at.Text)
			if txt == "" {
				continue
			}
			if at.Label != "" {
				txt = at.Label + ": " + txt
			}
			parts = append(parts, txt)
		}

		year := strings.TrimSpace(art.Journal.JournalIssue.PubDate.Year)
		if year == "" {
			year = strings.TrimSpace(art.Journal.JournalIssue.PubDate.MedlineDate)
		}

		var authors []string
		for _, a := range art.Authors {
			if len(authors) >= authorCap {
				break
			}
			if a.CollectiveName != "" {
				authors = append(authors, a.CollectiveName)
				continue
			}
			full := strings.TrimSpace(a.ForeName + " " + a.LastName)
			if full != "" {
				authors = append(authors, full)
			}
		}

		doi := ""
		for _, id := range pa.PubmedData.ArticleIDs {
			if id.IDType == "doi" {
				doi = strings.TrimSpace(id.Value)
				break
			}
		}

		pubTypes := art.PubTypes
		if len(pubTypes) > pubTypeCap {
			pubTypes = pubTypes[:pubTypeCap]
		}

		articles = append(articles, types.Article{
			PMID:     strings.TrimSpace(med.PMID),
			Title:    strings.TrimSpace(art.Title),
			Abstract: strings.Join(parts, "\n"),
			Journal:  strings.TrimSpace(art.Journal.Title),
			Year:     year,
			Authors:  authors,
			DOI:      doi,
			PubTypes: pubTypes,
		})
	}

	return articles, nil
}

// readAll drains a response body with a sanity cap so a misbehaving
// endpoint cannot exhaust memory.
func readAll(resp *http.Response) ([]byte, error) {
	const maxBody = 32 << 20
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	return data, nil
}
