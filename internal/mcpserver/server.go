// Package mcpserver exposes the vault tools over the Model Context
// Protocol via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/AshwinHegde/obsidian-mcp/internal/vaultops"
)

// Server wraps the MCP server with the vault tools.
type Server struct {
	mcp *server.MCPServer
	svc *vaultops.Service
}

// New creates a new MCP server with all vault tools registered.
func New(svc *vaultops.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"obsidian-mcp",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("create-note",
		mcp.WithDescription("Create a new Markdown note. Fails if the note already exists."),
		mcp.WithString("vault", mcp.Required(), mcp.Description("Name of the vault (see list-available-vaults)")),
		mcp.WithString("filename", mcp.Required(), mcp.Description("Note filename without path separators (.md appended if missing)")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Markdown content of the note")),
		mcp.WithString("folder", mcp.Description("Optional vault-relative folder, created if missing")),
	), s.createNote)

	s.mcp.AddTool(mcp.NewTool("read-note",
		mcp.WithDescription("Read the full content of a Markdown note."),
		mcp.WithString("vault", mcp.Required(), mcp.Description("Name of the vault")),
		mcp.WithString("filename", mcp.Required(), mcp.Description("Note filename")),
		mcp.WithString("folder", mcp.Description("Optional vault-relative folder")),
	), s.readNote)

	s.mcp.AddTool(mcp.NewTool("edit-note",
		mcp.WithDescription("Edit an existing note: append, prepend, replace, or delete. "+
			"Edits are protected by a backup that is restored if the write fails."),
		mcp.WithString("vault", mcp.Required(), mcp.Description("Name of the vault")),
		mcp.WithString("filename", mcp.Required(), mcp.Description("Note filename")),
		mcp.WithString("operation", mcp.Required(), mcp.Description("One of: append, prepend, replace, delete")),
		mcp.WithString("content", mcp.Description("New content (required unless operation is delete)")),
		mcp.WithString("folder", mcp.Description("Optional vault-relative folder")),
	), s.editNote)

	s.mcp.AddTool(mcp.NewTool("delete-note",
		mcp.WithDescription("Delete a note. By default it is moved to the vault trash with a "+
			"metadata record; set permanent to remove it without a trace."),
		mcp.WithString("vault", mcp.Required(), mcp.Description("Name of the vault")),
		mcp.WithString("filename", mcp.Required(), mcp.Description("Note filename")),
		mcp.WithString("folder", mcp.Description("Optional vault-relative folder")),
		mcp.WithString("reason", mcp.Description("Optional reason recorded in the trash metadata")),
		mcp.WithBoolean("permanent", mcp.Description("Permanently delete instead of trashing")),
	), s.deleteNote)

	s.mcp.AddTool(mcp.NewTool("move-note",
		mcp.WithDescription("Move or rename a note and update wikilinks pointing at it. "+
			"Source and destination are vault-relative paths."),
		mcp.WithString("vault", mcp.Required(), mcp.Description("Name of the vault")),
		mcp.WithString("filename", mcp.Required(), mcp.Description("Current vault-relative path of the note")),
		mcp.WithString("destination", mcp.Required(), mcp.Description("New vault-relative path")),
	), s.moveNote)

	s.mcp.AddTool(mcp.NewTool("create-directory",
		mcp.WithDescription("Create a directory (with parents) inside a vault."),
		mcp.WithString("vault", mcp.Required(), mcp.Description("Name of the vault")),
		mcp.WithString("path", mcp.Required(), mcp.Description("Vault-relative directory path")),
	), s.createDirectory)

	s.mcp.AddTool(mcp.NewTool("list-notes",
		mcp.WithDescription("List all notes, or notes in a specific folder."),
		mcp.WithString("vault", mcp.Required(), mcp.Description("Name of the vault")),
		mcp.WithString("folder", mcp.Description("Optional folder to list (empty for all)")),
	), s.listNotes)

	s.mcp.AddTool(mcp.NewTool("create-canvas",
		mcp.WithDescription("Create a new JSON Canvas file. Content MUST be valid canvas JSON; "+
			"read the contract first via the get-canvas-contract tool or the "+
			"obsidian://canvas-format resource. The original text is stored verbatim."),
		mcp.WithString("vault", mcp.Required(), mcp.Description("Name of the vault")),
		mcp.WithString("filename", mcp.Required(), mcp.Description("Canvas filename (.canvas appended if missing)")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Canvas document as a JSON string")),
		mcp.WithString("folder", mcp.Description("Optional vault-relative folder")),
	), s.createCanvas)

	s.mcp.AddTool(mcp.NewTool("read-canvas",
		mcp.WithDescription("Read a JSON Canvas file."),
		mcp.WithString("vault", mcp.Required(), mcp.Description("Name of the vault")),
		mcp.WithString("filename", mcp.Required(), mcp.Description("Canvas filename")),
		mcp.WithString("folder", mcp.Description("Optional vault-relative folder")),
	), s.readCanvas)

	s.mcp.AddTool(mcp.NewTool("edit-canvas",
		mcp.WithDescription("Replace the content of an existing canvas with schema-valid JSON. "+
			"Replace is the only supported operation."),
		mcp.WithString("vault", mcp.Required(), mcp.Description("Name of the vault")),
		mcp.WithString("filename", mcp.Required(), mcp.Description("Canvas filename")),
		mcp.WithString("operation", mcp.Required(), mcp.Description(`Must be "replace"`)),
		mcp.WithString("content", mcp.Required(), mcp.Description("Replacement canvas document as a JSON string")),
		mcp.WithString("folder", mcp.Description("Optional vault-relative folder")),
	), s.editCanvas)

	s.mcp.AddTool(mcp.NewTool("delete-canvas",
		mcp.WithDescription("Delete a canvas. By default it is moved to the vault trash with a "+
			"metadata record; set permanent to remove it without a trace."),
		mcp.WithString("vault", mcp.Required(), mcp.Description("Name of the vault")),
		mcp.WithString("filename", mcp.Required(), mcp.Description("Canvas filename")),
		mcp.WithString("folder", mcp.Description("Optional vault-relative folder")),
		mcp.WithString("reason", mcp.Description("Optional reason recorded in the trash metadata")),
		mcp.WithBoolean("permanent", mcp.Description("Permanently delete instead of trashing")),
	), s.deleteCanvas)

	s.mcp.AddTool(mcp.NewTool("list-backlinks",
		mcp.WithDescription("Find all notes that link to the specified note via [[wikilinks]]."),
		mcp.WithString("vault", mcp.Required(), mcp.Description("Name of the vault")),
		mcp.WithString("filename", mcp.Required(), mcp.Description("Vault-relative path of the note to find backlinks for")),
	), s.listBacklinks)

	s.mcp.AddTool(mcp.NewTool("list-tags",
		mcp.WithDescription("List all tags (frontmatter and inline #tags) used in a vault, with note counts."),
		mcp.WithString("vault", mcp.Required(), mcp.Description("Name of the vault")),
		mcp.WithString("folder", mcp.Description("Optional folder to scan (empty for all)")),
	), s.listTags)

	s.mcp.AddTool(mcp.NewTool("search-vault",
		mcp.WithDescription("Substring search across a vault's notes and canvases."),
		mcp.WithString("vault", mcp.Required(), mcp.Description("Name of the vault")),
		mcp.WithString("query", mcp.Required(), mcp.Description("Text to search for")),
		mcp.WithString("path", mcp.Description("Optional vault subfolder to search in")),
		mcp.WithBoolean("caseSensitive", mcp.Description("Match case exactly (default false)")),
		mcp.WithString("searchType", mcp.Description("One of: content, filename, both (default content)")),
	), s.searchVault)

	s.mcp.AddTool(mcp.NewTool("list-available-vaults",
		mcp.WithDescription("List the names of all configured vaults."),
	), s.listVaults)

	s.mcp.AddTool(mcp.NewTool("get-canvas-contract",
		mcp.WithDescription("Returns the JSON Canvas format contract. "+
			"Call this before creating or editing canvases to ensure valid structure."),
	), s.getCanvasContract)

	// Resource: canvas format contract.
	s.mcp.AddResource(
		mcp.NewResource("obsidian://canvas-format", "Canvas Format Contract",
			mcp.WithResourceDescription("The JSON Canvas document format accepted by the canvas tools."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readCanvasFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) createNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	vault, err := req.RequireString("vault")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	filename, err := req.RequireString("filename")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.svc.CreateNote(ctx, vault, req.GetString("folder", ""), filename, content)
	return toolResult(res, err)
}

func (s *Server) readNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	vault, err := req.RequireString("vault")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	filename, err := req.RequireString("filename")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := s.svc.ReadNote(ctx, vault, req.GetString("folder", ""), filename)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(content), nil
}

func (s *Server) editNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	vault, err := req.RequireString("vault")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	filename, err := req.RequireString("filename")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	operation, err := req.RequireString("operation")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content := req.GetString("content", "")
	if operation != vaultops.OpDelete {
		if content, err = req.RequireString("content"); err != nil {
			return mcp.NewToolResultError("content is required unless operation is delete"), nil
		}
	}
	res, err := s.svc.EditNote(ctx, vault, req.GetString("folder", ""), filename, operation, content)
	return toolResult(res, err)
}

func (s *Server) deleteNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	vault, err := req.RequireString("vault")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	filename, err := req.RequireString("filename")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.svc.DeleteNote(ctx, vault,
		req.GetString("folder", ""), filename,
		req.GetString("reason", ""), req.GetBool("permanent", false))
	return toolResult(res, err)
}

func (s *Server) moveNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	vault, err := req.RequireString("vault")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	filename, err := req.RequireString("filename")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	destination, err := req.RequireString("destination")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.svc.MoveNote(ctx, vault, filename, destination)
	return toolResult(res, err)
}

func (s *Server) createDirectory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	vault, err := req.RequireString("vault")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.svc.CreateDirectory(ctx, vault, path)
	return toolResult(res, err)
}

func (s *Server) listNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	vault, err := req.RequireString("vault")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	paths, err := s.svc.ListNotes(ctx, vault, req.GetString("folder", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(paths) == 0 {
		return mcp.NewToolResultText("no notes found"), nil
	}
	return mcp.NewToolResultText(strings.Join(paths, "\n")), nil
}

func (s *Server) createCanvas(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	vault, err := req.RequireString("vault")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	filename, err := req.RequireString("filename")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.svc.CreateCanvas(ctx, vault, req.GetString("folder", ""), filename, content)
	return toolResult(res, err)
}

func (s *Server) readCanvas(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	vault, err := req.RequireString("vault")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	filename, err := req.RequireString("filename")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := s.svc.ReadCanvas(ctx, vault, req.GetString("folder", ""), filename)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(content), nil
}

func (s *Server) editCanvas(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	vault, err := req.RequireString("vault")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	filename, err := req.RequireString("filename")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	operation, err := req.RequireString("operation")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.svc.EditCanvas(ctx, vault, req.GetString("folder", ""), filename, operation, content)
	return toolResult(res, err)
}

func (s *Server) deleteCanvas(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	vault, err := req.RequireString("vault")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	filename, err := req.RequireString("filename")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.svc.DeleteCanvas(ctx, vault,
		req.GetString("folder", ""), filename,
		req.GetString("reason", ""), req.GetBool("permanent", false))
	return toolResult(res, err)
}

func (s *Server) listBacklinks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	vault, err := req.RequireString("vault")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	filename, err := req.RequireString("filename")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	paths, err := s.svc.Backlinks(ctx, vault, filename)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(paths) == 0 {
		return mcp.NewToolResultText("no backlinks found"), nil
	}
	return mcp.NewToolResultText(strings.Join(paths, "\n")), nil
}

func (s *Server) listTags(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	vault, err := req.RequireString("vault")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	tags, err := s.svc.ListTags(ctx, vault, req.GetString("folder", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(tags) == 0 {
		return mcp.NewToolResultText("no tags found"), nil
	}
	out, _ := json.MarshalIndent(tags, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) searchVault(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	vault, err := req.RequireString("vault")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, vault, query, vaultops.SearchOptions{
		Path:          req.GetString("path", ""),
		CaseSensitive: req.GetBool("caseSensitive", false),
		Type:          req.GetString("searchType", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(results) == 0 {
		return mcp.NewToolResultText("no matches found"), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listVaults(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(strings.Join(s.svc.VaultNames(), "\n")), nil
}

func (s *Server) getCanvasContract(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(CanvasFormatContract), nil
}

func (s *Server) readCanvasFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "obsidian://canvas-format",
			MIMEType: "text/markdown",
			Text:     CanvasFormatContract,
		},
	}, nil
}

// toolResult renders a vaultops result or error as a tool response.
// Operation errors are reported through the result payload, not as
// protocol errors.
func toolResult(res *vaultops.Result, err error) (*mcp.CallToolResult, error) {
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(res, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}
