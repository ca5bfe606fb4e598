package service

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const resultsPage = `<!DOCTYPE html>
<html><body>
<table class="table table-search">
  <thead>
    <tr><th>臨床研究実施計画番号</th><th>研究の名称</th><th>対象疾患名</th><th>研究の進捗状況</th><th>公表日</th><th>詳細</th></tr>
  </thead>
  <tbody>
    <tr>
      <td>jRCT2031230001</td>
      <td>EGFR 遺伝子変異陽性
          非小細胞肺癌を対象とした試験</td>
      <td>非小細胞肺癌</td>
      <td>募集中</td>
      <td>2023年4月1日</td>
      <td><a href="/latest-detail/jRCT2031230001">詳細</a></td>
    </tr>
    <tr>
      <td>jRCTs031220002</td>
      <td>乳がん術後療法の研究</td>
      <td>乳がん</td>
      <td>募集中</td>
      <td>2022年10月5日</td>
      <td><a href="https://jrct.mhlw.go.jp/latest-detail/jRCTs031220002">詳細</a></td>
    </tr>
    <tr><td colspan="6">該当する研究はありません</td></tr>
  </tbody>
</table>
</body></html>`

func TestParseResultsTable(t *testing.T) {
	base, err := url.Parse("https://jrct.mhlw.go.jp/search")
	require.NoError(t, err)

	trials, err := ParseResultsTable(strings.NewReader(resultsPage), base)
	require.NoError(t, err)
	require.Len(t, trials, 2)

	assert.Equal(t, "jRCT2031230001", trials[0].ID)
	assert.Equal(t, "EGFR 遺伝子変異陽性 非小細胞肺癌を対象とした試験", trials[0].Title)
	assert.Equal(t, "非小細胞肺癌", trials[0].Condition)
	assert.Equal(t, "募集中", trials[0].Status)
	assert.Equal(t, "2023年4月1日", trials[0].PublishedDate)
	assert.Equal(t, "https://jrct.mhlw.go.jp/latest-detail/jRCT2031230001", trials[0].DetailURL)

	assert.Equal(t, "https://jrct.mhlw.go.jp/latest-detail/jRCTs031220002", trials[1].DetailURL)
}

func TestParseResultsTableEmpty(t *testing.T) {
	trials, err := ParseResultsTable(strings.NewReader(`<html><body><p>該当なし</p></body></html>`), nil)
	require.NoError(t, err)
	assert.NotNil(t, trials)
	assert.Empty(t, trials)

	trials, err = ParseResultsTable(strings.NewReader(`<table class="table-search"><tbody></tbody></table>`), nil)
	require.NoError(t, err)
	assert.Empty(t, trials)
}
