package canvas

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// FieldError is one schema violation, annotated with the JSON path of
// the offending field ("nodes[2].width", "edges[0].to").
type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Errors is the full list of violations found in one document.
type Errors []FieldError

func (e Errors) Error() string {
	parts := make([]string, len(e))
	for i, fe := range e {
		if fe.Path == "" {
			parts[i] = fe.Message
			continue
		}
		parts[i] = fe.Path + ": " + fe.Message
	}
	return "invalid canvas: " + strings.Join(parts, "; ")
}

var (
	hexColorRe = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

	presetColorRule     = validation.In("1", "2", "3", "4", "5", "6")
	sideRule            = validation.In("top", "right", "bottom", "left")
	endRule             = validation.In("none", "arrow")
	backgroundStyleRule = validation.In("cover", "ratio", "repeat")
)

var nodeVariantKeys = map[string]struct{ required, optional []string }{
	NodeText:  {required: []string{"text"}},
	NodeFile:  {required: []string{"file"}, optional: []string{"subpath"}},
	NodeLink:  {required: []string{"url"}},
	NodeGroup: {optional: []string{"label", "background", "backgroundStyle"}},
}

var edgeKeys = map[string]bool{
	"id": true, "fromNode": true, "toNode": true,
	"fromSide": true, "toSide": true,
	"fromEnd": true, "toEnd": true,
	"color": true, "label": true,
}

// Valid is the cheap boolean check used for up-front input rejection.
// It is defined in terms of Parse so the two can never disagree.
func Valid(data []byte) bool {
	_, err := Parse(data)
	return err == nil
}

// Parse validates data against the canvas schema and returns the typed
// document. On failure the error is an Errors value listing every
// violation with its field path.
func Parse(data []byte) (*Document, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, Errors{{Path: "", Message: "must be a JSON object"}}
	}
	// Unmarshal accepts a JSON null and leaves the map nil.
	if top == nil {
		return nil, Errors{{Path: "", Message: "must be a JSON object"}}
	}

	var errs Errors
	for _, key := range sortedKeys(top) {
		if key != "nodes" && key != "edges" {
			errs = append(errs, FieldError{Path: key, Message: "unknown key"})
		}
	}

	doc := &Document{}
	if raw, ok := top["nodes"]; ok {
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			errs = append(errs, FieldError{Path: "nodes", Message: "must be an array"})
		} else {
			for i, item := range items {
				node, nodeErrs := parseNode(fmt.Sprintf("nodes[%d]", i), item)
				errs = append(errs, nodeErrs...)
				doc.Nodes = append(doc.Nodes, node)
			}
		}
	}
	if raw, ok := top["edges"]; ok {
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			errs = append(errs, FieldError{Path: "edges", Message: "must be an array"})
		} else {
			for i, item := range items {
				edge, edgeErrs := parseEdge(fmt.Sprintf("edges[%d]", i), item)
				errs = append(errs, edgeErrs...)
				doc.Edges = append(doc.Edges, edge)
			}
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return doc, nil
}

func parseNode(path string, raw json.RawMessage) (Node, Errors) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Node{}, Errors{{Path: path, Message: "must be an object"}}
	}

	var errs Errors
	node := Node{}

	node.Type, _ = asString(fields["type"])
	variant, known := nodeVariantKeys[node.Type]
	if !known {
		errs = append(errs, FieldError{Path: path + ".type", Message: `must be one of "text", "file", "link", "group"`})
	}

	allowed := map[string]bool{
		"id": true, "type": true, "x": true, "y": true,
		"width": true, "height": true, "color": true,
	}
	for _, k := range variant.required {
		allowed[k] = true
	}
	for _, k := range variant.optional {
		allowed[k] = true
	}
	for _, key := range sortedKeys(fields) {
		if !allowed[key] {
			errs = append(errs, FieldError{Path: path + "." + key, Message: "unknown key"})
		}
	}

	errs = append(errs, checkString(path+".id", fields, "id", true, &node.ID)...)
	errs = append(errs, checkInt(path+".x", fields, "x", false, &node.X)...)
	errs = append(errs, checkInt(path+".y", fields, "y", false, &node.Y)...)
	errs = append(errs, checkInt(path+".width", fields, "width", true, &node.Width)...)
	errs = append(errs, checkInt(path+".height", fields, "height", true, &node.Height)...)
	errs = append(errs, checkColor(path+".color", fields, &node.Color)...)

	switch node.Type {
	case NodeText:
		if _, present := fields["text"]; !present {
			errs = append(errs, FieldError{Path: path + ".text", Message: "required for text nodes"})
		} else {
			errs = append(errs, checkString(path+".text", fields, "text", false, &node.Text)...)
		}
	case NodeFile:
		if _, present := fields["file"]; !present {
			errs = append(errs, FieldError{Path: path + ".file", Message: "required for file nodes"})
		} else {
			errs = append(errs, checkString(path+".file", fields, "file", true, &node.File)...)
		}
		if raw, present := fields["subpath"]; present {
			sub, ok := asString(raw)
			if !ok || !strings.HasPrefix(sub, "#") {
				errs = append(errs, FieldError{Path: path + ".subpath", Message: `must be a string starting with "#"`})
			}
			node.Subpath = sub
		}
	case NodeLink:
		if _, present := fields["url"]; !present {
			errs = append(errs, FieldError{Path: path + ".url", Message: "required for link nodes"})
		} else if url, ok := asString(fields["url"]); !ok {
			errs = append(errs, FieldError{Path: path + ".url", Message: "must be a string"})
		} else {
			node.URL = url
			if err := validation.Validate(url, validation.Required, is.URL); err != nil {
				errs = append(errs, FieldError{Path: path + ".url", Message: "must be a valid URL"})
			}
		}
	case NodeGroup:
		errs = append(errs, checkOptString(path, fields, "label", &node.Label)...)
		errs = append(errs, checkOptString(path, fields, "background", &node.Background)...)
		if raw, present := fields["backgroundStyle"]; present {
			style, ok := asString(raw)
			node.BackgroundStyle = style
			if !ok || validation.Validate(style, backgroundStyleRule) != nil {
				errs = append(errs, FieldError{Path: path + ".backgroundStyle", Message: `must be one of "cover", "ratio", "repeat"`})
			}
		}
	}

	return node, errs
}

func parseEdge(path string, raw json.RawMessage) (Edge, Errors) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Edge{}, Errors{{Path: path, Message: "must be an object"}}
	}

	var errs Errors
	edge := Edge{}

	for _, key := range sortedKeys(fields) {
		if !edgeKeys[key] {
			errs = append(errs, FieldError{Path: path + "." + key, Message: "unknown key"})
		}
	}

	errs = append(errs, checkString(path+".id", fields, "id", true, &edge.ID)...)
	errs = append(errs, checkString(path+".fromNode", fields, "fromNode", true, &edge.FromNode)...)
	errs = append(errs, checkString(path+".toNode", fields, "toNode", true, &edge.ToNode)...)
	errs = append(errs, checkEnum(path+".fromSide", fields, "fromSide", sideRule, `must be one of "top", "right", "bottom", "left"`, &edge.FromSide)...)
	errs = append(errs, checkEnum(path+".toSide", fields, "toSide", sideRule, `must be one of "top", "right", "bottom", "left"`, &edge.ToSide)...)
	errs = append(errs, checkEnum(path+".fromEnd", fields, "fromEnd", endRule, `must be one of "none", "arrow"`, &edge.FromEnd)...)
	errs = append(errs, checkEnum(path+".toEnd", fields, "toEnd", endRule, `must be one of "none", "arrow"`, &edge.ToEnd)...)
	errs = append(errs, checkColor(path+".color", fields, &edge.Color)...)
	errs = append(errs, checkOptString(path, fields, "label", &edge.Label)...)

	return edge, errs
}

// checkString validates a required string field. nonEmpty additionally
// rejects "".
func checkString(path string, fields map[string]json.RawMessage, key string, nonEmpty bool, dst *string) Errors {
	raw, present := fields[key]
	if !present {
		return Errors{{Path: path, Message: "required"}}
	}
	s, ok := asString(raw)
	if !ok {
		return Errors{{Path: path, Message: "must be a string"}}
	}
	*dst = s
	if nonEmpty && s == "" {
		return Errors{{Path: path, Message: "must not be empty"}}
	}
	return nil
}

func checkOptString(nodePath string, fields map[string]json.RawMessage, key string, dst *string) Errors {
	raw, present := fields[key]
	if !present {
		return nil
	}
	s, ok := asString(raw)
	if !ok {
		return Errors{{Path: nodePath + "." + key, Message: "must be a string"}}
	}
	*dst = s
	return nil
}

func checkEnum(path string, fields map[string]json.RawMessage, key string, rule validation.Rule, msg string, dst *string) Errors {
	raw, present := fields[key]
	if !present {
		return nil
	}
	s, ok := asString(raw)
	if !ok {
		return Errors{{Path: path, Message: msg}}
	}
	*dst = s
	if err := validation.Validate(s, validation.Required, rule); err != nil {
		return Errors{{Path: path, Message: msg}}
	}
	return nil
}

// checkInt validates a required integer field; positive additionally
// requires a value greater than zero. Integral floats ("2.0") pass,
// fractional values do not.
func checkInt(path string, fields map[string]json.RawMessage, key string, positive bool, dst *int64) Errors {
	raw, present := fields[key]
	if !present {
		return Errors{{Path: path, Message: "required"}}
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return Errors{{Path: path, Message: "must be an integer"}}
	}
	i, err := n.Int64()
	if err != nil {
		f, ferr := n.Float64()
		if ferr != nil || f != float64(int64(f)) {
			return Errors{{Path: path, Message: "must be an integer"}}
		}
		i = int64(f)
	}
	*dst = i
	if positive && i <= 0 {
		return Errors{{Path: path, Message: "must be positive"}}
	}
	return nil
}

// checkColor validates the optional color field: a preset token "1".."6"
// or a hex color like "#aabbcc".
func checkColor(path string, fields map[string]json.RawMessage, dst *string) Errors {
	raw, present := fields["color"]
	if !present {
		return nil
	}
	s, ok := asString(raw)
	if !ok {
		return Errors{{Path: path, Message: "must be a string"}}
	}
	*dst = s
	if hexColorRe.MatchString(s) {
		return nil
	}
	if err := validation.Validate(s, validation.Required, presetColorRule); err != nil {
		return Errors{{Path: path, Message: `must be a preset "1".."6" or a hex color like "#aabbcc"`}}
	}
	return nil
}

func asString(raw json.RawMessage) (string, bool) {
	if raw == nil {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

func sortedKeys(m map[string]json.RawMessage) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
