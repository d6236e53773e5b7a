package text

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeRuby(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Simple Ruby",
			input:    "<ruby>愛<rt>애</rt></ruby>",
			expected: "<ruby>愛</ruby>",
		},
		{
			name:     "Ruby with RP",
			input:    "<ruby>思量<rp>(</rp><rt>사량</rt><rp>)</rp></ruby>",
			expected: "<ruby>思量</ruby>",
		},
		{
			name:     "Multiple Ruby",
			input:    "<ruby>愛<rt>애</rt></ruby>와 <ruby>情<rt>정</rt></ruby>",
			expected: "<ruby>愛</ruby>와 <ruby>情</ruby>",
		},
		{
			name:     "Attributes and case",
			input:    "<ruby class='h'>心<RT class='reading'>심</RT></ruby>",
			expected: "<ruby class='h'>心</ruby>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(SanitizeRuby([]byte(tt.input))))
		})
	}
}

const chapter = `<!DOCTYPE html>
<html><head><title>봄날의 산책길에서 만난 사람들</title></head>
<body>
<nav><a href="toc.xhtml">목차</a></nav>
<article>
<h1>봄날의 산책길에서 만난 사람들</h1>
<p>어느 봄날 아침, 나는 오래된 공원을 천천히 걸었다. 벚꽃이 바람에 날리고 아이들은 웃으며 뛰어다녔다.
그 풍경 속에서 나는 <ruby>愛<rt>애</rt></ruby>라는 글자를 떠올렸다. 사랑은 언제나 조용히 찾아온다고 할머니께서 말씀하셨다.</p>
<p>공원 한가운데에는 작은 호수가 있었고, 오리들이 물 위를 천천히 떠다녔다. 벤치에 앉은 노인은 신문을 읽으며
가끔 하늘을 올려다보았다. 나는 그 옆에 앉아 따뜻한 커피를 마시며 지나가는 사람들을 바라보았다.</p>
<p>해가 높이 떠오르자 공원은 점점 더 붐비기 시작했다. 자전거를 타는 학생들, 강아지와 산책하는 가족들,
그리고 사진을 찍는 여행자들이 모두 같은 봄을 즐기고 있었다. 나는 그날의 기억을 오래도록 간직하고 싶었다.</p>
</article>
</body></html>`

func TestExtract(t *testing.T) {
	a, err := Extract(strings.NewReader(chapter), "http://localhost/chapter1.xhtml")
	require.NoError(t, err)

	assert.Contains(t, a.Title, "봄날의 산책길")
	assert.Contains(t, a.Text, "사랑은 언제나")
	assert.Contains(t, a.Text, "愛")
	assert.NotContains(t, a.Text, "愛애")
}

func TestExtractBadURL(t *testing.T) {
	_, err := Extract(strings.NewReader(chapter), "://bad")
	assert.Error(t, err)
}

func TestSentences(t *testing.T) {
	got := Sentences("나는 학생이다. 너는 누구니?\n\n정말!  끝")
	assert.Equal(t, []string{"나는 학생이다.", "너는 누구니?", "정말!", "끝"}, got)
	assert.Empty(t, Sentences("  \n "))
}

func TestWords(t *testing.T) {
	got := Words("나는 사랑을 믿어요. Hello, 世界! 사랑을 123")
	assert.Equal(t, []string{"나는", "사랑을", "믿어요"}, got)
	assert.Empty(t, Words(""))
	assert.Empty(t, Words("English only."))
}
