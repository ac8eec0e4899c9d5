// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package retrieve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleEfetchXML = `<?xml version="1.0"?>
<PubmedArticleSet>
  <PubmedArticle>
    <MedlineCitation>
      <PMID>12345678</PMID>
      <Article>
        <Journal>
          <JournalIssue>
            <PubDate><Year>2021</Year></PubDate>
          </JournalIssue>
          <Title>Journal of Testing</Title>
        </Journal>
        <ArticleTitle>Metformin in glioblastoma models</ArticleTitle>
        <Abstract>
          <AbstractText Label="BACKGROUND">Background part.</AbstractText>
          <AbstractText Label="RESULTS">Results part.</AbstractText>
        </Abstract>
        <AuthorList>
          <Author><LastName>Smith</LastName><ForeName>Jane</ForeName></Author>
          <Author><CollectiveName>The Study Group</CollectiveName></Author>
        </AuthorList>
        <PublicationTypeList>
          <PublicationType>Journal Article</PublicationType>
          <PublicationType>Review</PublicationType>
        </PublicationTypeList>
      </Article>
    </MedlineCitation>
    <PubmedData>
      <ArticleIdList>
        <ArticleId IdType="pubmed">12345678</ArticleId>
        <ArticleId IdType="doi">10.1000/test.2021</ArticleId>
      </ArticleIdList>
    </PubmedData>
  </PubmedArticle>
  <PubmedArticle>
    <MedlineCitation>
      <PMID>87654321</PMID>
      <Article>
        <Journal>
          <JournalIssue>
            <PubDate><MedlineDate>2019 Jan-Feb</MedlineDate></PubDate>
          </JournalIssue>
          <Title>Another Journal</Title>
        </Journal>
        <ArticleTitle>Second article</ArticleTitle>
        <Abstract>
          <AbstractText>Plain abstract.</AbstractText>
        </Abstract>
      </Article>
    </MedlineCitation>
  </PubmedArticle>
</PubmedArticleSet>`

func TestParseArticles(t *testing.T) {
	articles, err := ParseArticles([]byte(sampleEfetchXML))
	require.NoError(t, err)
	require.Len(t, articles, 2)

	a := articles[0]
	assert.Equal(t, "12345678", a.PMID)
	assert.Equal(t, "Metformin in glioblastoma models", a.Title)
	assert.Equal(t, "BACKGROUND: Background part.\nRESULTS: Results part.", a.Abstract)
	assert.Equal(t, "Journal of Testing", a.Journal)
	assert.Equal(t, "2021", a.Year)
	assert.Equal(t, []string{"Jane Smith", "The Study Group"}, a.Authors)
	assert.Equal(t, "10.1000/test.2021", a.DOI)
	assert.Equal(t, []string{"Journal Article", "Review"}, a.PubTypes)

	b := articles[1]
	assert.Equal(t, "87654321", b.PMID)
	assert.Equal(t, "Plain abstract.", b.Abstract)
	assert.Equal(t, "2019 Jan-Feb", b.Year, "MedlineDate is the year fallback")
	assert.Empty(t, b.Authors)
	assert.Empty(t, b.DOI)
}

func TestParseArticlesEmptyInput(t *testing.T) {
	articles, err := ParseArticles(nil)
	require.NoError(t, err)
	assert.Empty(t, articles)

	articles, err = ParseArticles([]byte("   \n"))
	require.NoError(t, err)
	assert.Empty(t, articles)
}

func TestParseArticlesMalformedInput(t *testing.T) {
	_, err := ParseArticles([]byte("<html>rate limited</html"))
	assert.Error(t, err)
}
