package stem

import (
	"context"
	"sort"
	"strings"
	"unicode/utf8"
)

// Korean is a rule-based resolver for Korean surface forms. It strips
// common particles and verb endings and restores the dictionary "-다"
// form. The surface word itself is always the first candidate.
type Korean struct {
	particles []string
	endings   []ending
}

type ending struct {
	suffix, replace string
}

var defaultParticles = []string{
	"은", "는", "이", "가", "을", "를", "의", "에", "도", "만", "와", "과", "로", "나",
	"에서", "에게", "으로", "까지", "부터", "한테", "께서", "이나", "이랑", "처럼", "보다",
	"에서는", "에게서", "으로는", "까지는", "부터는", "에서도", "이라도", "라도",
}

var defaultEndings = []ending{
	// 하다 verbs.
	{"했습니다", "하다"}, {"했어요", "하다"}, {"했던", "하다"}, {"했다", "하다"},
	{"합니다", "하다"}, {"해요", "하다"}, {"해서", "하다"}, {"하고", "하다"},
	{"하면", "하다"}, {"하는", "하다"}, {"하지", "하다"}, {"한다", "하다"},
	{"해", "하다"}, {"한", "하다"}, {"할", "하다"},
	// Past tense and polite endings.
	{"았습니다", "다"}, {"었습니다", "다"}, {"였습니다", "다"},
	{"았어요", "다"}, {"었어요", "다"}, {"였어요", "다"},
	{"았다", "다"}, {"었다", "다"}, {"였다", "다"},
	{"습니다", "다"}, {"아요", "다"}, {"어요", "다"},
	{"아서", "다"}, {"어서", "다"}, {"으면", "다"}, {"는다", "다"},
	{"지만", "다"}, {"고", "다"}, {"면", "다"}, {"지", "다"},
	{"는", "다"}, {"던", "다"}, {"게", "다"}, {"기", "다"},
}

// NewKorean returns a resolver with the built-in particle and ending tables.
func NewKorean() *Korean {
	k := &Korean{
		particles: append([]string(nil), defaultParticles...),
		endings:   append([]ending(nil), defaultEndings...),
	}
	// Longest suffix wins.
	sort.SliceStable(k.particles, func(i, j int) bool {
		return utf8.RuneCountInString(k.particles[i]) > utf8.RuneCountInString(k.particles[j])
	})
	sort.SliceStable(k.endings, func(i, j int) bool {
		return utf8.RuneCountInString(k.endings[i].suffix) > utf8.RuneCountInString(k.endings[j].suffix)
	})
	return k
}

func (k *Korean) Resolve(_ context.Context, word string) ([]string, error) {
	w := Clean(word)
	if w == "" {
		return []string{}, nil
	}

	out := []string{w}
	noun := k.nounForm(w)

	if verb := k.verbForm(w, noun == ""); verb != "" {
		out = appendUnique(out, verb)
		if root, ok := strings.CutSuffix(verb, "하다"); ok && utf8.RuneCountInString(root) >= 2 {
			out = appendUnique(out, root)
		}
	}
	if noun != "" {
		out = appendUnique(out, noun)
	}
	return out, nil
}

func (k *Korean) nounForm(w string) string {
	for _, p := range k.particles {
		if rest, ok := strings.CutSuffix(w, p); ok && rest != "" {
			return rest
		}
	}
	return ""
}

// inflectedDa lists endings that end in 다 but are not dictionary forms.
var inflectedDa = []string{"니다", "었다", "았다", "였다", "했다", "는다", "한다"}

func isInflectedDa(w string) bool {
	for _, s := range inflectedDa {
		if strings.HasSuffix(w, s) {
			return true
		}
	}
	return false
}

// verbForm returns the -다 form of an inflected verb or adjective, or "".
// The adnominal ㄴ/ㄹ rule only runs when allowAdnominal is set, since it
// also fires on nouns followed by 을/를.
func (k *Korean) verbForm(w string, allowAdnominal bool) string {
	if strings.HasSuffix(w, "다") && !isInflectedDa(w) {
		return ""
	}

	// 갑니다 -> 가다: the ㅂ of -ㅂ니다 sits in the previous syllable.
	if rest, ok := strings.CutSuffix(w, "니다"); ok && rest != "" {
		last, size := utf8.DecodeLastRuneInString(rest)
		if jong(last) == jongBieup {
			return rest[:len(rest)-size] + string(dropJong(last)) + "다"
		}
	}

	for _, e := range k.endings {
		if rest, ok := strings.CutSuffix(w, e.suffix); ok && rest != "" {
			return rest + e.replace
		}
	}

	if !allowAdnominal || utf8.RuneCountInString(w) > 3 {
		return ""
	}
	// 간 -> 가다, 갈 -> 가다.
	last, size := utf8.DecodeLastRuneInString(w)
	if j := jong(last); j == jongNieun || j == jongRieul {
		return w[:len(w)-size] + string(dropJong(last)) + "다"
	}
	return ""
}

const (
	hangulBase  = 0xAC00
	hangulLast  = 0xD7A3
	jongCount   = 28
	jongNieun   = 4
	jongRieul   = 8
	jongBieup   = 17
	noJongIndex = 0
)

// jong returns the final consonant index of a precomposed syllable, or -1.
func jong(r rune) int {
	if r < hangulBase || r > hangulLast {
		return -1
	}
	return int(r-hangulBase) % jongCount
}

func dropJong(r rune) rune {
	j := jong(r)
	if j <= noJongIndex {
		return r
	}
	return r - rune(j)
}
