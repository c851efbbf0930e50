// Package canvas implements the JSON Canvas document schema: typed node
// and edge variants with strict closed-key validation. Documents are
// validated as a whole before any write and persisted verbatim, so the
// original text is never reformatted.
package canvas

// Node type discriminants.
const (
	NodeText  = "text"
	NodeFile  = "file"
	NodeLink  = "link"
	NodeGroup = "group"
)

// Node is one canvas node. Variant-specific fields are populated
// according to Type; the rest stay zero.
type Node struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	X      int64  `json:"x"`
	Y      int64  `json:"y"`
	Width  int64  `json:"width"`
	Height int64  `json:"height"`
	Color  string `json:"color,omitempty"`

	// text
	Text string `json:"text,omitempty"`
	// file
	File    string `json:"file,omitempty"`
	Subpath string `json:"subpath,omitempty"`
	// link
	URL string `json:"url,omitempty"`
	// group
	Label           string `json:"label,omitempty"`
	Background      string `json:"background,omitempty"`
	BackgroundStyle string `json:"backgroundStyle,omitempty"`
}

// Edge connects two nodes by id. Endpoint existence is not validated.
type Edge struct {
	ID       string `json:"id"`
	FromNode string `json:"fromNode"`
	ToNode   string `json:"toNode"`
	FromSide string `json:"fromSide,omitempty"`
	ToSide   string `json:"toSide,omitempty"`
	FromEnd  string `json:"fromEnd,omitempty"`
	ToEnd    string `json:"toEnd,omitempty"`
	Color    string `json:"color,omitempty"`
	Label    string `json:"label,omitempty"`
}

// Document is a parsed canvas. Both sequences are optional in the wire
// format and preserve their original order.
type Document struct {
	Nodes []Node `json:"nodes,omitempty"`
	Edges []Edge `json:"edges,omitempty"`
}
