package mcpserver

// CanvasFormatContract describes the JSON Canvas document format accepted
// by the canvas tools. Served as both a tool response and the
// obsidian://canvas-format resource so assistants can fetch it before
// writing canvas content.
const CanvasFormatContract = `# Canvas Format

A canvas is a single JSON object with exactly two optional keys:

` + "```json" + `
{
  "nodes": [],
  "edges": []
}
` + "```" + `

Unknown keys are rejected at every level, on the document, on nodes,
and on edges.

## Nodes

Every node requires:

- ` + "`id`" + ` (string, non-empty)
- ` + "`type`" + ` (string): one of ` + "`text`" + `, ` + "`file`" + `, ` + "`link`" + `, ` + "`group`" + `
- ` + "`x`" + `, ` + "`y`" + ` (integer): canvas position
- ` + "`width`" + `, ` + "`height`" + ` (integer, positive)

Optional on every node:

- ` + "`color`" + ` (string): preset ` + "`\"1\"`" + ` through ` + "`\"6\"`" + ` or hex ` + "`\"#rrggbb\"`" + `

Per-type fields:

| type  | required | optional |
|-------|----------|----------|
| text  | ` + "`text`" + ` (Markdown string) | |
| file  | ` + "`file`" + ` (vault-relative path) | ` + "`subpath`" + ` (starts with ` + "`#`" + `) |
| link  | ` + "`url`" + ` (valid URL) | |
| group | | ` + "`label`" + `, ` + "`background`" + `, ` + "`backgroundStyle`" + ` (` + "`cover`" + `/` + "`ratio`" + `/` + "`repeat`" + `) |

## Edges

Every edge requires:

- ` + "`id`" + ` (string, non-empty)
- ` + "`fromNode`" + `, ` + "`toNode`" + ` (string): node ids

Optional:

- ` + "`fromSide`" + `, ` + "`toSide`" + `: one of ` + "`top`" + `, ` + "`right`" + `, ` + "`bottom`" + `, ` + "`left`" + `
- ` + "`fromEnd`" + `, ` + "`toEnd`" + `: one of ` + "`none`" + `, ` + "`arrow`" + `
- ` + "`color`" + `: same rules as node color
- ` + "`label`" + ` (string)

## Example

` + "```json" + `
{
  "nodes": [
    {"id": "a", "type": "text", "x": 0, "y": 0, "width": 250, "height": 60, "text": "# Plan"},
    {"id": "b", "type": "file", "x": 300, "y": 0, "width": 250, "height": 60, "file": "notes/todo.md"}
  ],
  "edges": [
    {"id": "e1", "fromNode": "a", "toNode": "b", "toEnd": "arrow"}
  ]
}
` + "```" + `

Documents are stored exactly as submitted; reading a canvas returns the
original bytes unchanged.
`
