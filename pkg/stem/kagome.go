package stem

import (
	"context"
	"fmt"
	"strings"

	"github.com/ikawaha/kagome-dict/dict"
	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"
)

// Kagome resolves stems with a morphological analyzer. It works with any
// kagome system dictionary; the feature layout differs per dictionary, so
// the base-form column and skipped parts of speech are configurable.
type Kagome struct {
	t *tokenizer.Tokenizer
	// BaseFormIndex is the feature column holding the dictionary form.
	BaseFormIndex int
	// SkipPOS lists primary parts of speech that never yield a stem
	// (particles, auxiliaries, symbols).
	SkipPOS map[string]bool
}

// NewKagome creates a resolver over d. A nil d uses the IPA dictionary.
func NewKagome(d *dict.Dict) (*Kagome, error) {
	if d == nil {
		d = ipa.Dict()
	}
	t, err := tokenizer.New(d, tokenizer.OmitBosEos())
	if err != nil {
		return nil, err
	}
	// IPA features:
	// 0: Part of Speech ... 6: Base Form (Lemma), 7: Reading
	return &Kagome{
		t:             t,
		BaseFormIndex: 6,
		SkipPOS: map[string]bool{
			"記号": true, "補助記号": true, "助詞": true, "助動詞": true,
		},
	}, nil
}

// NewKagomeFromFile loads a kagome system dictionary (zip) from path.
func NewKagomeFromFile(path string) (*Kagome, error) {
	d, err := dict.LoadDictFile(path)
	if err != nil {
		return nil, fmt.Errorf("load kagome dictionary %s: %w", path, err)
	}
	return NewKagome(d)
}

// Resolve returns the base forms of the content tokens of word, in order.
// When every token is skipped the cleaned surface word is returned.
func (k *Kagome) Resolve(ctx context.Context, word string) ([]string, error) {
	w := Clean(word)
	if w == "" {
		return []string{}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []string
	for _, token := range k.t.Tokenize(w) {
		if token.Class == tokenizer.DUMMY || strings.TrimSpace(token.Surface) == "" {
			continue
		}
		features := token.Features()
		if len(features) > 0 && k.SkipPOS[features[0]] {
			continue
		}
		base := token.Surface
		if len(features) > k.BaseFormIndex && features[k.BaseFormIndex] != "*" {
			base = features[k.BaseFormIndex]
		}
		out = appendUnique(out, base)
	}
	if len(out) == 0 {
		out = []string{w}
	}
	return out, nil
}
