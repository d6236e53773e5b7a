// Package wordid derives the identity of a saved vocabulary item.
package wordid

import (
	"fmt"
	"strconv"
	"strings"
)

// Identity is the (word, origin, definition) triple that identifies a
// vocabulary item. It is comparable and can be used directly as a map key.
type Identity struct {
	Word       string
	Origin     string
	Definition string
}

// Of returns the identity for the given triple. An empty origin is valid.
func Of(word, origin, definition string) Identity {
	return Identity{Word: word, Origin: origin, Definition: definition}
}

// Key encodes the identity as a string that is unique per triple.
// Each field is written as "<byte length>:<bytes>", so field boundaries
// can never shift between two different triples.
func (id Identity) Key() string {
	var b strings.Builder
	b.Grow(len(id.Word) + len(id.Origin) + len(id.Definition) + 12)
	for _, f := range [...]string{id.Word, id.Origin, id.Definition} {
		b.WriteString(strconv.Itoa(len(f)))
		b.WriteByte(':')
		b.WriteString(f)
	}
	return b.String()
}

func (id Identity) String() string {
	if id.Origin == "" {
		return fmt.Sprintf("%s: %s", id.Word, id.Definition)
	}
	return fmt.Sprintf("%s (%s): %s", id.Word, id.Origin, id.Definition)
}

// Parse decodes a string produced by Key.
func Parse(key string) (Identity, error) {
	var fields [3]string
	rest := key
	for i := range fields {
		sep := strings.IndexByte(rest, ':')
		if sep <= 0 {
			return Identity{}, fmt.Errorf("wordid: malformed key %q", key)
		}
		n, err := strconv.Atoi(rest[:sep])
		if err != nil || n < 0 || sep+1+n > len(rest) {
			return Identity{}, fmt.Errorf("wordid: malformed key %q", key)
		}
		fields[i] = rest[sep+1 : sep+1+n]
		rest = rest[sep+1+n:]
	}
	if rest != "" {
		return Identity{}, fmt.Errorf("wordid: trailing data in key %q", key)
	}
	return Of(fields[0], fields[1], fields[2]), nil
}
