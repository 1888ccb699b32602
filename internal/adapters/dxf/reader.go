package dxf

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	errEmpty      = errors.New("empty document")
	errBinary     = errors.New("binary DXF is not supported")
	errNoSections = errors.New("no SECTION found")
	errNotFinite  = errors.New("coordinate is not finite")
)

// pair is one DXF group: an integer code line followed by a value line.
type pair struct {
	code  int
	value string
	line  int
}

// entity is a run of groups starting at a code 0 entity-type group.
type entity struct {
	kind   string
	handle string
	groups []pair
}

func (e *entity) lookup(code int) (string, bool) {
	for _, g := range e.groups {
		if g.code == code {
			return g.value, true
		}
	}
	return "", false
}

// coord reads a coordinate group. Absent groups default to 0, as in a
// 2D drawing without Z values.
func (e *entity) coord(code int) (float64, error) {
	for _, g := range e.groups {
		if g.code != code {
			continue
		}
		v, err := strconv.ParseFloat(g.value, 64)
		if err != nil {
			return 0, fmt.Errorf("line %d: %s handle %s: group %d: %w", g.line, e.kind, e.handle, code, err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("line %d: %s handle %s: group %d %q: %w", g.line, e.kind, e.handle, code, g.value, errNotFinite)
		}
		return v, nil
	}
	return 0, nil
}

func (e *entity) inPaperSpace() bool {
	v, ok := e.lookup(67)
	return ok && v == "1"
}

// document holds the sections of an ASCII DXF file that extraction needs.
type document struct {
	sections []string
	entities []*entity
}

// modelSpace returns ENTITIES members not flagged for paper space.
func (d *document) modelSpace() []*entity {
	out := make([]*entity, 0, len(d.entities))
	for _, e := range d.entities {
		if !e.inPaperSpace() {
			out = append(out, e)
		}
	}
	return out
}

// readDocument parses an ASCII DXF byte buffer.
func readDocument(data []byte) (*document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errEmpty
	}
	if bytes.HasPrefix(data, []byte("AutoCAD Binary DXF")) {
		return nil, errBinary
	}

	pairs, err := readPairs(data)
	if err != nil {
		return nil, err
	}

	doc := &document{}
	for i := 0; i < len(pairs); {
		p := pairs[i]
		switch {
		case p.code == 999:
			i++
		case p.code == 0 && p.value == "EOF":
			i = len(pairs)
		case p.code == 0 && p.value == "SECTION":
			if i+1 >= len(pairs) || pairs[i+1].code != 2 {
				return nil, fmt.Errorf("line %d: SECTION without name", p.line)
			}
			name := pairs[i+1].value
			end := i + 2
			for end < len(pairs) && !(pairs[end].code == 0 && pairs[end].value == "ENDSEC") {
				end++
			}
			if end == len(pairs) {
				return nil, fmt.Errorf("line %d: section %s not terminated by ENDSEC", p.line, name)
			}
			doc.sections = append(doc.sections, name)
			if name == "ENTITIES" {
				doc.entities = append(doc.entities, splitEntities(pairs[i+2:end])...)
			}
			i = end + 1
		default:
			return nil, fmt.Errorf("line %d: unexpected group %d %q outside a section", p.line, p.code, p.value)
		}
	}

	if len(doc.sections) == 0 {
		return nil, errNoSections
	}
	assignMissingHandles(doc.entities)
	return doc, nil
}

// readPairs splits the buffer into code/value groups.
func readPairs(data []byte) ([]pair, error) {
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	lines := strings.Split(text, "\n")
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines)%2 != 0 {
		return nil, fmt.Errorf("line %d: group code without value", len(lines))
	}

	pairs := make([]pair, 0, len(lines)/2)
	for i := 0; i < len(lines); i += 2 {
		code, err := strconv.Atoi(strings.TrimSpace(lines[i]))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid group code %q", i+1, lines[i])
		}
		pairs = append(pairs, pair{code: code, value: strings.TrimSpace(lines[i+1]), line: i + 1})
	}
	return pairs, nil
}

func splitEntities(body []pair) []*entity {
	var out []*entity
	var cur *entity
	for _, p := range body {
		if p.code == 0 {
			cur = &entity{kind: p.value}
			out = append(out, cur)
			continue
		}
		if cur == nil {
			continue
		}
		if p.code == 5 && cur.handle == "" {
			cur.handle = p.value
		}
		cur.groups = append(cur.groups, p)
	}
	return out
}

// assignMissingHandles gives handle-less entities (R12 files written without
// handles) sequential hex handles above the highest one in use.
func assignMissingHandles(entities []*entity) {
	var highest uint64
	missing := false
	for _, e := range entities {
		if e.handle == "" {
			missing = true
			continue
		}
		if h, err := strconv.ParseUint(e.handle, 16, 64); err == nil && h > highest {
			highest = h
		}
	}
	if !missing {
		return
	}
	next := highest + 1
	for _, e := range entities {
		if e.handle == "" {
			e.handle = strings.ToUpper(strconv.FormatUint(next, 16))
			next++
		}
	}
}
