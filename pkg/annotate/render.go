package annotate

import (
	"github.com/japaniel/hanreader/pkg/dictionary"
	"github.com/japaniel/hanreader/pkg/hanja"
	"github.com/japaniel/hanreader/pkg/wordid"
)

// EntryView is a dictionary entry ready for display.
type EntryView struct {
	dictionary.Entry
	Identity wordid.Identity
	Saved    bool
	// Hanja holds the selectable characters of Origin.
	Hanja    []string
}

// StemView is the display state of one stem of a highlighted word.
type StemView struct {
	Stem       string
	// Loading is set while the dictionary has not answered for this stem.
	Loading    bool
	Primary    *EntryView
	Extra      []EntryView
	Expandable bool
	Expanded   bool
}

// ToggleLabel is the text of the expand control: "more", "less" or "".
func (v StemView) ToggleLabel() string {
	switch {
	case !v.Expandable:
		return ""
	case v.Expanded:
		return "less"
	default:
		return "more"
	}
}

// RenderModel is everything the presentation layer needs for one word.
type RenderModel struct {
	Word     string
	// Loading is set while the stems of Word are not known.
	Loading  bool
	Expanded bool
	// Stems lists pending and resolved stems in order; stems whose lookup
	// came back empty are left out.
	Stems    []StemView

	HanjaSelection    string
	HasHanjaSelection bool
}

// Primary returns the first entry of the first stem with entries, or nil
// if no stem has any.
func (m RenderModel) Primary() *EntryView {
	for _, s := range m.Stems {
		if s.Primary != nil {
			return s.Primary
		}
	}
	return nil
}

// IsExpandable reports whether any stem has more than one entry.
func (m RenderModel) IsExpandable() bool {
	for _, s := range m.Stems {
		if s.Expandable {
			return true
		}
	}
	return false
}

// ExtraEntries returns the visible entries beyond the first of every stem.
func (m RenderModel) ExtraEntries() []EntryView {
	var out []EntryView
	for _, s := range m.Stems {
		out = append(out, s.Extra...)
	}
	return out
}

// SavedFlags maps every visible entry to its saved state.
func (m RenderModel) SavedFlags() map[wordid.Identity]bool {
	out := make(map[wordid.Identity]bool)
	for _, s := range m.Stems {
		if s.Primary != nil {
			out[s.Primary.Identity] = s.Primary.Saved
		}
		for _, x := range s.Extra {
			out[x.Identity] = x.Saved
		}
	}
	return out
}

// RenderModel projects the current state of word for display. It does not
// trigger any lookup.
func (e *Engine) RenderModel(word string) RenderModel {
	e.mu.Lock()
	defer e.mu.Unlock()

	m := RenderModel{
		Word:              word,
		Loading:           true,
		Expanded:          e.expanded[word],
		HanjaSelection:    e.hanja,
		HasHanjaSelection: e.hasHanja,
	}
	slot, ok := e.words[word]
	if !ok || slot.defs.Loading {
		return m
	}
	m.Loading = false

	defs := slot.defs
	for i, s := range defs.Stems {
		var res dictionary.Result
		if i < len(defs.Results) {
			res = defs.Results[i]
		}
		switch res.State {
		case dictionary.Pending:
			m.Stems = append(m.Stems, StemView{Stem: s, Loading: true})
		case dictionary.Resolved:
			m.Stems = append(m.Stems, e.stemViewLocked(s, res.Entries, m.Expanded))
		}
	}
	return m
}

func (e *Engine) stemViewLocked(s string, entries []dictionary.Entry, expanded bool) StemView {
	// The first entry is saved under the stem, the others under their
	// own headword.
	first := e.entryViewLocked(s, entries[0])
	v := StemView{
		Stem:       s,
		Primary:    &first,
		Expandable: len(entries) > 1,
		Expanded:   expanded,
	}
	if expanded && len(entries) > 1 {
		v.Extra = make([]EntryView, 0, len(entries)-1)
		for _, en := range entries[1:] {
			v.Extra = append(v.Extra, e.entryViewLocked(en.Word, en))
		}
	}
	return v
}

func (e *Engine) entryViewLocked(word string, en dictionary.Entry) EntryView {
	id := wordid.Of(word, en.Origin, en.Definition)
	return EntryView{
		Entry:    en,
		Identity: id,
		Saved:    e.saved[id],
		Hanja:    hanja.Split(en.Origin),
	}
}
