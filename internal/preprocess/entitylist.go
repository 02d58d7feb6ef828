package preprocess

import (
	"fmt"
	"strings"
	"unicode"
)

// Entity is one element of a serialized entity list: a named thing with an
// optional role. The movies dataset serializes these lists as Python literal
// notation (single-quoted) in some dumps and JSON (double-quoted) in others;
// the scanner below accepts both.
type Entity struct {
	Name string
	Job  string
}

// ParseEntityList parses a serialized list of entity objects into typed
// entities. Objects without a usable name are dropped silently; structural
// errors reach the caller so malformed rows can be counted and skipped.
func ParseEntityList(s string) ([]Entity, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "nan") || strings.EqualFold(s, "none") || s == "[]" {
		return nil, nil
	}

	sc := &scanner{input: []rune(s)}
	sc.skipSpace()
	if !sc.consume('[') {
		return nil, fmt.Errorf("entity list must start with '[', got %q", sc.peek())
	}

	var entities []Entity
	for {
		sc.skipSpace()
		if sc.consume(']') {
			break
		}
		entity, err := sc.parseObject()
		if err != nil {
			return nil, err
		}
		if entity.Name != "" {
			entities = append(entities, entity)
		}
		sc.skipSpace()
		if sc.consume(',') {
			continue
		}
		if sc.consume(']') {
			break
		}
		return nil, fmt.Errorf("expected ',' or ']' at offset %d", sc.pos)
	}
	return entities, nil
}

// ParseEntity parses a single serialized object, as used by the
// belongs_to_collection field. ok is false when the field is empty.
func ParseEntity(s string) (Entity, bool, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "nan") || strings.EqualFold(s, "none") {
		return Entity{}, false, nil
	}
	sc := &scanner{input: []rune(s)}
	sc.skipSpace()
	entity, err := sc.parseObject()
	if err != nil {
		return Entity{}, false, err
	}
	return entity, entity.Name != "", nil
}

// scanner is a minimal tokenizer for Python-literal / JSON object lists.
type scanner struct {
	input []rune
	pos   int
}

func (sc *scanner) peek() rune {
	if sc.pos >= len(sc.input) {
		return 0
	}
	return sc.input[sc.pos]
}

func (sc *scanner) consume(r rune) bool {
	if sc.peek() == r {
		sc.pos++
		return true
	}
	return false
}

func (sc *scanner) skipSpace() {
	for sc.pos < len(sc.input) && unicode.IsSpace(sc.input[sc.pos]) {
		sc.pos++
	}
}

// parseObject reads one {...} object and keeps its name/job fields.
func (sc *scanner) parseObject() (Entity, error) {
	if !sc.consume('{') {
		return Entity{}, fmt.Errorf("expected '{' at offset %d", sc.pos)
	}

	var entity Entity
	for {
		sc.skipSpace()
		if sc.consume('}') {
			return entity, nil
		}

		key, err := sc.parseString()
		if err != nil {
			return Entity{}, fmt.Errorf("object key: %w", err)
		}
		sc.skipSpace()
		if !sc.consume(':') {
			return Entity{}, fmt.Errorf("expected ':' after key %q at offset %d", key, sc.pos)
		}
		sc.skipSpace()

		value, err := sc.parseValue()
		if err != nil {
			return Entity{}, fmt.Errorf("value for key %q: %w", key, err)
		}

		switch key {
		case "name":
			entity.Name = strings.TrimSpace(value)
		case "job":
			entity.Job = strings.TrimSpace(value)
		}

		sc.skipSpace()
		if sc.consume(',') {
			continue
		}
		if sc.consume('}') {
			return entity, nil
		}
		return Entity{}, fmt.Errorf("expected ',' or '}' at offset %d", sc.pos)
	}
}

// parseValue reads a scalar value and returns its string form. Nested
// containers are not part of this dataset's entity fields and are rejected.
func (sc *scanner) parseValue() (string, error) {
	switch r := sc.peek(); {
	case r == '\'' || r == '"':
		return sc.parseString()
	case r == '{' || r == '[':
		return "", fmt.Errorf("unexpected nested container at offset %d", sc.pos)
	default:
		return sc.parseBare()
	}
}

// parseString reads a quoted string honoring the opening quote style and
// backslash escapes.
func (sc *scanner) parseString() (string, error) {
	quote := sc.peek()
	if quote != '\'' && quote != '"' {
		return "", fmt.Errorf("expected quote at offset %d", sc.pos)
	}
	sc.pos++

	var b strings.Builder
	for sc.pos < len(sc.input) {
		r := sc.input[sc.pos]
		sc.pos++
		switch r {
		case '\\':
			if sc.pos >= len(sc.input) {
				return "", fmt.Errorf("dangling escape at end of input")
			}
			esc := sc.input[sc.pos]
			sc.pos++
			switch esc {
			case 'n':
				b.WriteRune('\n')
			case 't':
				b.WriteRune('\t')
			default:
				b.WriteRune(esc)
			}
		case quote:
			return b.String(), nil
		default:
			b.WriteRune(r)
		}
	}
	return "", fmt.Errorf("unterminated string")
}

// parseBare reads an unquoted token: a number, None, True, or False.
func (sc *scanner) parseBare() (string, error) {
	start := sc.pos
	for sc.pos < len(sc.input) {
		r := sc.input[sc.pos]
		if r == ',' || r == '}' || r == ']' || unicode.IsSpace(r) {
			break
		}
		sc.pos++
	}
	if sc.pos == start {
		return "", fmt.Errorf("empty value at offset %d", sc.pos)
	}
	return string(sc.input[start:sc.pos]), nil
}
