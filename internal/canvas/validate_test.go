package canvas

import (
	"errors"
	"strings"
	"testing"
)

func parseErrs(t *testing.T, data string) Errors {
	t.Helper()
	_, err := Parse([]byte(data))
	if err == nil {
		t.Fatalf("Parse accepted invalid document: %s", data)
	}
	var errs Errors
	if !errors.As(err, &errs) {
		t.Fatalf("error is not canvas.Errors: %v", err)
	}
	return errs
}

func hasViolation(errs Errors, path string) bool {
	for _, e := range errs {
		if e.Path == path {
			return true
		}
	}
	return false
}

func TestParseValidDocuments(t *testing.T) {
	cases := []string{
		`{}`,
		`{"nodes":[],"edges":[]}`,
		`{"nodes":[{"id":"n1","type":"text","x":0,"y":0,"width":100,"height":50,"text":"# Hi"}]}`,
		`{"nodes":[{"id":"n1","type":"file","x":-10,"y":20,"width":200,"height":100,"file":"notes/daily.md","subpath":"#heading"}]}`,
		`{"nodes":[{"id":"n1","type":"link","x":0,"y":0,"width":100,"height":50,"url":"https://example.com","color":"#ff00AA"}]}`,
		`{"nodes":[{"id":"g1","type":"group","x":0,"y":0,"width":500,"height":400,"label":"Cluster","backgroundStyle":"cover"}]}`,
		`{"edges":[{"id":"e1","fromNode":"a","toNode":"b"}]}`,
		`{"edges":[{"id":"e1","fromNode":"a","toNode":"b","fromSide":"top","toSide":"left","fromEnd":"none","toEnd":"arrow","color":"3","label":"flows"}]}`,
		// Integral floats count as integers.
		`{"nodes":[{"id":"n1","type":"text","x":1.0,"y":2.0,"width":10,"height":10,"text":""}]}`,
	}
	for _, c := range cases {
		if doc, err := Parse([]byte(c)); err != nil {
			t.Errorf("Parse(%s): %v", c, err)
		} else if doc == nil {
			t.Errorf("Parse(%s): nil document", c)
		}
		if !Valid([]byte(c)) {
			t.Errorf("Valid(%s) = false", c)
		}
	}
}

func TestParseRejectsNonObject(t *testing.T) {
	// null decodes into a nil map without error, so it needs its own
	// rejection path.
	for _, c := range []string{`[]`, `"x"`, `42`, `null`, `not json`} {
		if _, err := Parse([]byte(c)); err == nil {
			t.Errorf("Parse(%s) accepted", c)
		}
		if Valid([]byte(c)) {
			t.Errorf("Valid(%s) = true", c)
		}
	}
}

func TestUnknownTopLevelKey(t *testing.T) {
	errs := parseErrs(t, `{"nodes":[],"version":"1"}`)
	if !hasViolation(errs, "version") {
		t.Errorf("missing violation for top-level key, got %v", errs)
	}
}

func TestUnknownNodeKey(t *testing.T) {
	errs := parseErrs(t, `{"nodes":[
		{"id":"a","type":"text","x":0,"y":0,"width":10,"height":10,"text":"ok"},
		{"id":"b","type":"text","x":0,"y":0,"width":10,"height":10,"text":"ok","colour":"1"}
	]}`)
	if !hasViolation(errs, "nodes[1].colour") {
		t.Errorf("missing violation for nodes[1].colour, got %v", errs)
	}
}

func TestUnknownEdgeKey(t *testing.T) {
	errs := parseErrs(t, `{"edges":[{"id":"e","fromNode":"a","toNode":"b","to":"b"}]}`)
	if !hasViolation(errs, "edges[0].to") {
		t.Errorf("missing violation for edges[0].to, got %v", errs)
	}
}

func TestVariantFieldNotAllowedOnOtherVariant(t *testing.T) {
	// "url" belongs to link nodes; on a text node it is an unknown key.
	errs := parseErrs(t, `{"nodes":[{"id":"a","type":"text","x":0,"y":0,"width":10,"height":10,"text":"t","url":"https://x.com"}]}`)
	if !hasViolation(errs, "nodes[0].url") {
		t.Errorf("missing violation, got %v", errs)
	}
}

func TestMissingDiscriminantField(t *testing.T) {
	cases := map[string]string{
		`{"nodes":[{"id":"a","type":"text","x":0,"y":0,"width":10,"height":10}]}`:                  "nodes[0].text",
		`{"nodes":[{"id":"a","type":"file","x":0,"y":0,"width":10,"height":10}]}`:                  "nodes[0].file",
		`{"nodes":[{"id":"a","type":"link","x":0,"y":0,"width":10,"height":10}]}`:                  "nodes[0].url",
		`{"edges":[{"id":"e","toNode":"b"}]}`:                                                      "edges[0].fromNode",
		`{"nodes":[{"id":"a","type":"text","y":0,"width":10,"height":10,"text":"t"}]}`:             "nodes[0].x",
		`{"nodes":[{"type":"text","x":0,"y":0,"width":10,"height":10,"text":"t"}]}`:                "nodes[0].id",
		`{"nodes":[{"id":"a","x":0,"y":0,"width":10,"height":10}]}`:                                "nodes[0].type",
		`{"nodes":[{"id":"a","type":"sticker","x":0,"y":0,"width":10,"height":10}]}`:               "nodes[0].type",
		`{"nodes":[{"id":"a","type":"file","x":0,"y":0,"width":10,"height":10,"file":""}]}`:        "nodes[0].file",
		`{"nodes":[{"id":"a","type":"file","x":0,"y":0,"width":10,"height":10,"file":"f","subpath":"h"}]}`: "nodes[0].subpath",
	}
	for doc, path := range cases {
		errs := parseErrs(t, doc)
		if !hasViolation(errs, path) {
			t.Errorf("doc %s: missing violation at %s, got %v", doc, path, errs)
		}
	}
}

func TestNumericConstraints(t *testing.T) {
	cases := map[string]string{
		`{"nodes":[{"id":"a","type":"text","x":1.5,"y":0,"width":10,"height":10,"text":"t"}]}`:  "nodes[0].x",
		`{"nodes":[{"id":"a","type":"text","x":"0","y":0,"width":10,"height":10,"text":"t"}]}`:  "nodes[0].x",
		`{"nodes":[{"id":"a","type":"text","x":0,"y":0,"width":0,"height":10,"text":"t"}]}`:     "nodes[0].width",
		`{"nodes":[{"id":"a","type":"text","x":0,"y":0,"width":10,"height":-5,"text":"t"}]}`:    "nodes[0].height",
	}
	for doc, path := range cases {
		errs := parseErrs(t, doc)
		if !hasViolation(errs, path) {
			t.Errorf("doc %s: missing violation at %s, got %v", doc, path, errs)
		}
	}
}

func TestColorRules(t *testing.T) {
	for _, ok := range []string{`"1"`, `"6"`, `"#aabbcc"`, `"#AABB00"`} {
		doc := `{"nodes":[{"id":"a","type":"text","x":0,"y":0,"width":10,"height":10,"text":"t","color":` + ok + `}]}`
		if !Valid([]byte(doc)) {
			t.Errorf("color %s rejected", ok)
		}
	}
	for _, bad := range []string{`"0"`, `"7"`, `"#abc"`, `"aabbcc"`, `"#aabbcg"`, `12`} {
		doc := `{"nodes":[{"id":"a","type":"text","x":0,"y":0,"width":10,"height":10,"text":"t","color":` + bad + `}]}`
		errs := parseErrs(t, doc)
		if !hasViolation(errs, "nodes[0].color") {
			t.Errorf("color %s: got %v", bad, errs)
		}
	}
}

func TestEdgeEnums(t *testing.T) {
	for _, bad := range []string{
		`{"edges":[{"id":"e","fromNode":"a","toNode":"b","fromSide":"up"}]}`,
		`{"edges":[{"id":"e","fromNode":"a","toNode":"b","toEnd":"diamond"}]}`,
	} {
		if Valid([]byte(bad)) {
			t.Errorf("accepted %s", bad)
		}
	}
}

func TestLinkURLValidation(t *testing.T) {
	bad := `{"nodes":[{"id":"a","type":"link","x":0,"y":0,"width":10,"height":10,"url":"not a url"}]}`
	errs := parseErrs(t, bad)
	if !hasViolation(errs, "nodes[0].url") {
		t.Errorf("got %v", errs)
	}
}

func TestErrorsMessageIncludesPaths(t *testing.T) {
	_, err := Parse([]byte(`{"bogus":1}`))
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "bogus") {
		t.Errorf("message %q does not name the offending key", err.Error())
	}
}

func TestValidAgreesWithParse(t *testing.T) {
	docs := []string{
		`{}`,
		`{"nodes":[]}`,
		`{"bogus":1}`,
		`{"nodes":[{"id":"a","type":"text","x":0,"y":0,"width":10,"height":10,"text":"t"}]}`,
		`not json`,
	}
	for _, d := range docs {
		_, err := Parse([]byte(d))
		if Valid([]byte(d)) != (err == nil) {
			t.Errorf("Valid and Parse disagree on %s", d)
		}
	}
}
