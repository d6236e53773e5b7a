package stem

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKoreanResolve(t *testing.T) {
	k := NewKorean()
	tests := []struct {
		word     string
		first    string
		contains []string
	}{
		{"사랑", "사랑", nil},
		{"사랑을", "사랑을", []string{"사랑"}},
		{"“사랑은”", "사랑은", []string{"사랑"}},
		{"사랑했다", "사랑했다", []string{"사랑하다", "사랑"}},
		{"공부합니다", "공부합니다", []string{"공부하다", "공부"}},
		{"먹었어요", "먹었어요", []string{"먹다"}},
		{"갑니다", "갑니다", []string{"가다"}},
		{"간", "간", []string{"가다"}},
		{"학교에서는", "학교에서는", []string{"학교"}},
		{"가다", "가다", nil},
	}
	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			stems, err := k.Resolve(context.Background(), tt.word)
			require.NoError(t, err)
			require.NotEmpty(t, stems)
			assert.Equal(t, tt.first, stems[0])
			for _, c := range tt.contains {
				assert.Contains(t, stems, c)
			}
		})
	}
}

func TestKoreanDictionaryFormIsNotReinflected(t *testing.T) {
	stems, err := NewKorean().Resolve(context.Background(), "가다")
	require.NoError(t, err)
	assert.Equal(t, []string{"가다"}, stems)
}

func TestKoreanIsDeterministic(t *testing.T) {
	k := NewKorean()
	a, err := k.Resolve(context.Background(), "사랑했다")
	require.NoError(t, err)
	b, err := k.Resolve(context.Background(), "사랑했다")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestKoreanEmpty(t *testing.T) {
	stems, err := NewKorean().Resolve(context.Background(), "  …  ")
	require.NoError(t, err)
	assert.NotNil(t, stems)
	assert.Empty(t, stems)
}

func TestJong(t *testing.T) {
	assert.Equal(t, jongBieup, jong('갑'))
	assert.Equal(t, jongNieun, jong('간'))
	assert.Equal(t, 0, jong('가'))
	assert.Equal(t, -1, jong('a'))
	assert.Equal(t, '가', dropJong('갈'))
	assert.Equal(t, 'a', dropJong('a'))
}

func TestChain(t *testing.T) {
	a := ResolverFunc(func(context.Context, string) ([]string, error) { return []string{"x", "y"}, nil })
	b := ResolverFunc(func(context.Context, string) ([]string, error) { return []string{"y", "z"}, nil })
	broken := ResolverFunc(func(context.Context, string) ([]string, error) { return nil, errors.New("down") })

	stems, err := Chain{a, broken, b}.Resolve(context.Background(), "w")
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y", "z"}, stems)

	_, err = Chain{broken, broken}.Resolve(context.Background(), "w")
	assert.Error(t, err)

	stems, err = Chain{}.Resolve(context.Background(), "w")
	require.NoError(t, err)
	assert.Empty(t, stems)
}

func TestClean(t *testing.T) {
	assert.Equal(t, "사랑", Clean(" (사랑). "))
	assert.Equal(t, "", Clean("!?"))
}
