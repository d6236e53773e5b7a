package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/japaniel/hanreader/pkg/annotate"
	"github.com/japaniel/hanreader/pkg/hanja"
	"github.com/japaniel/hanreader/pkg/review"
	"github.com/japaniel/hanreader/pkg/text"
	"github.com/japaniel/hanreader/pkg/wordid"
)

func (a *app) lookup(ctx context.Context, args []string, w io.Writer) error {
	fs := flag.NewFlagSet("lookup", flag.ContinueOnError)
	expand := fs.Bool("expand", false, "Show every entry, not just the first")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("lookup needs at least one word: %w", errUsage)
	}

	words := fs.Args()
	if err := a.engine.Prefetch(ctx, words...); err != nil {
		return err
	}
	for _, word := range words {
		if *expand && !a.engine.IsExpanded(word) {
			a.engine.ToggleExpanded(word)
		}
		printModel(w, a.engine.RenderModel(word))
	}
	return nil
}

// toggle implements save and unsave. The entry index counts the visible
// entries of the fully expanded word, primary entries first per stem.
// With -key the entry is given by its key as printed by list -keys.
func (a *app) toggle(ctx context.Context, name string, args []string, w io.Writer) error {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	index := fs.Int("entry", 0, "Index of the entry as listed by lookup -expand (0 is the first)")
	key := fs.String("key", "", "Entry key as listed by list -keys, instead of a word")
	if err := fs.Parse(args); err != nil {
		return err
	}
	want := name == "save"

	if *key != "" {
		if fs.NArg() != 0 {
			return fmt.Errorf("%s -key takes no word: %w", name, errUsage)
		}
		id, err := wordid.Parse(*key)
		if err != nil {
			return err
		}
		return a.toggleEntry(ctx, name, id, a.engine.IsSaved(id) == want, w)
	}

	if fs.NArg() != 1 {
		return fmt.Errorf("%s needs exactly one word: %w", name, errUsage)
	}
	word := fs.Arg(0)

	a.engine.LoadDefinitions(ctx, word)
	if !a.engine.IsExpanded(word) {
		a.engine.ToggleExpanded(word)
	}
	entries := visibleEntries(a.engine.RenderModel(word))
	if len(entries) == 0 {
		return fmt.Errorf("no dictionary entry for %q", word)
	}
	if *index < 0 || *index >= len(entries) {
		return fmt.Errorf("%q has no entry %d (%d available)", word, *index, len(entries))
	}

	e := entries[*index]
	return a.toggleEntry(ctx, name, e.Identity, e.Saved == want, w)
}

func (a *app) toggleEntry(ctx context.Context, name string, id wordid.Identity, done bool, w io.Writer) error {
	if done {
		fmt.Fprintf(w, "Already %sd: %s\n", name, id)
		return nil
	}
	saved, err := a.engine.ToggleSave(ctx, id)
	if err != nil {
		return fmt.Errorf("%s %s: %w", name, id, err)
	}
	if saved {
		fmt.Fprintf(w, "Saved: %s\n", id)
	} else {
		fmt.Fprintf(w, "Removed: %s\n", id)
	}
	return nil
}

func (a *app) list(ctx context.Context, args []string, w io.Writer) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	category := fs.String("category", "", "Only print this category")
	keys := fs.Bool("keys", false, "Print the key of every entry, for save/unsave -key")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var deck *review.Deck
	if *category != "" {
		records, err := a.store.ListCategory(ctx, *category)
		if err != nil {
			return fmt.Errorf("load vocabulary: %w", err)
		}
		deck = review.NewDeck(records)
	} else {
		var err error
		if deck, err = review.Load(ctx, a.store); err != nil {
			return err
		}
	}
	if deck.Len() == 0 {
		fmt.Fprintln(w, "No saved vocabulary.")
		return nil
	}

	for _, c := range deck.Categories() {
		cards := deck.Cards(c)
		fmt.Fprintf(w, "== %s (%d) ==\n", c, len(cards))
		for _, card := range cards {
			if *keys {
				fmt.Fprintf(w, "Key: %s\n", card.Identity().Key())
			}
			fmt.Fprintln(w, card.String())
			fmt.Fprintln(w)
		}
	}
	return nil
}

func (a *app) words(ctx context.Context, args []string, w io.Writer) error {
	fs := flag.NewFlagSet("words", flag.ContinueOnError)
	withLookup := fs.Bool("lookup", false, "Look every word up and print its first entry")
	sentences := fs.Bool("sentences", false, "Print the sentences instead of the words")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("words needs one file: %w", errUsage)
	}

	var r io.Reader = os.Stdin
	if path := fs.Arg(0); path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}

	article, err := text.Extract(r, "")
	if err != nil {
		return err
	}
	if article.Title != "" {
		fmt.Fprintf(w, "Title: %s\n", article.Title)
	}
	if *sentences {
		for i, s := range text.Sentences(article.Text) {
			fmt.Fprintf(w, "%d\t%s\n", i+1, s)
		}
		return nil
	}

	words := text.Words(article.Text)
	fmt.Fprintf(w, "%d words\n", len(words))

	if !*withLookup {
		for _, word := range words {
			fmt.Fprintln(w, word)
		}
		return nil
	}

	if err := a.engine.Prefetch(ctx, words...); err != nil {
		return err
	}
	for _, word := range words {
		m := a.engine.RenderModel(word)
		if p := m.Primary(); p != nil {
			fmt.Fprintf(w, "%s\t%s\n", word, p.Definition)
		} else {
			fmt.Fprintf(w, "%s\t-\n", word)
		}
	}
	return nil
}

func visibleEntries(m annotate.RenderModel) []annotate.EntryView {
	var out []annotate.EntryView
	for _, s := range m.Stems {
		if s.Primary == nil {
			continue
		}
		out = append(out, *s.Primary)
		out = append(out, s.Extra...)
	}
	return out
}

func printModel(w io.Writer, m annotate.RenderModel) {
	fmt.Fprintln(w, m.Word)
	if m.Loading {
		fmt.Fprintln(w, "  (loading)")
		return
	}
	if len(m.Stems) == 0 {
		fmt.Fprintln(w, "  no entries")
		return
	}
	n := 0
	for _, s := range m.Stems {
		if s.Loading {
			fmt.Fprintf(w, "  %s: (loading)\n", s.Stem)
			continue
		}
		printEntry(w, n, *s.Primary)
		n++
		for _, e := range s.Extra {
			printEntry(w, n, e)
			n++
		}
		if label := s.ToggleLabel(); label != "" && !s.Expanded {
			fmt.Fprintf(w, "      (%s)\n", label)
		}
	}
}

func printEntry(w io.Writer, n int, e annotate.EntryView) {
	mark := " "
	if e.Saved {
		mark = "*"
	}
	fmt.Fprintf(w, "  %s%d %s", mark, n, e.Identity.Word)
	if len(e.Hanja) > 0 {
		fmt.Fprintf(w, " %s", formatHanja(e.Hanja))
	}
	fmt.Fprintf(w, ": %s\n", e.Definition)
}

// formatHanja brackets the selectable characters of an origin.
func formatHanja(units []string) string {
	var b strings.Builder
	for _, u := range units {
		if hanja.IsHanja(u) {
			b.WriteString("[" + u + "]")
		} else {
			b.WriteString(u)
		}
	}
	return b.String()
}
