package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"sidenotes/internal/codec"
	"sidenotes/internal/domain"
	"sidenotes/internal/id"
	"sidenotes/internal/reducer"
)

func (s *Server) registerNotepadTools() {
	s.mcp.AddTool(mcp.NewTool("list_notepads",
		mcp.WithDescription("List all notepads with their titles and last-update times, newest first"),
	), s.handleListNotepads)

	s.mcp.AddTool(mcp.NewTool("get_notepad",
		mcp.WithDescription("Get one notepad with all of its notes"),
		mcp.WithString("notepadId", mcp.Description("Notepad ID"), mcp.Required()),
	), s.handleGetNotepad)

	s.mcp.AddTool(mcp.NewTool("create_notepad",
		mcp.WithDescription("Create a new notepad and make it active"),
		mcp.WithString("title", mcp.Description("Notepad title")),
	), s.handleCreateNotepad)

	s.mcp.AddTool(mcp.NewTool("add_note",
		mcp.WithDescription("Append a note to a notepad"),
		mcp.WithString("notepadId", mcp.Description("Notepad ID"), mcp.Required()),
		mcp.WithString("title", mcp.Description("Note title")),
		mcp.WithString("content", mcp.Description("Note content")),
	), s.handleAddNote)

	s.mcp.AddTool(mcp.NewTool("update_note",
		mcp.WithDescription("Replace the title and content of an existing note"),
		mcp.WithString("notepadId", mcp.Description("Notepad ID"), mcp.Required()),
		mcp.WithString("noteId", mcp.Description("Note ID"), mcp.Required()),
		mcp.WithString("title", mcp.Description("New note title")),
		mcp.WithString("content", mcp.Description("New note content")),
	), s.handleUpdateNote)

	s.mcp.AddTool(mcp.NewTool("delete_notepad",
		mcp.WithDescription("Delete a notepad and all of its notes. Requires user confirmation."),
		mcp.WithString("notepadId", mcp.Description("Notepad ID"), mcp.Required()),
	), s.handleDeleteNotepad)

	s.mcp.AddTool(mcp.NewTool("export_notepad",
		mcp.WithDescription("Serialize one notepad to its shareable file format"),
		mcp.WithString("notepadId", mcp.Description("Notepad ID"), mcp.Required()),
	), s.handleExportNotepad)
}

func (s *Server) handleListNotepads(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	type entry struct {
		ID         string `json:"id"`
		Title      string `json:"title"`
		LastUpdate int64  `json:"lastUpdate"`
		Notes      int    `json:"notes"`
	}
	var out []entry
	for _, np := range s.notepads.Library() {
		out = append(out, entry{ID: np.ID, Title: np.Title, LastUpdate: np.LastUpdate, Notes: len(np.Notes)})
	}
	return jsonResult(out)
}

func (s *Server) handleGetNotepad(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	np, err := s.findNotepad(req.GetArguments())
	if err != nil {
		return nil, err
	}
	return jsonResult(codec.ToPayload(np))
}

func (s *Server) handleCreateNotepad(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, _ := req.GetArguments()["title"].(string)
	np, err := s.notepads.Create(ctx, title)
	if err != nil {
		return nil, fmt.Errorf("create notepad: %w", err)
	}
	return jsonResult(codec.ToPayload(np))
}

func (s *Server) handleAddNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	title, _ := args["title"].(string)
	content, _ := args["content"].(string)

	note := domain.Note{ID: id.New("note"), Title: title, Content: content}
	np, err := s.dispatchOn(ctx, args, reducer.AddNote{Note: note})
	if err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Note %s added to notepad %s", note.ID, np.ID)), nil
}

func (s *Server) handleUpdateNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	noteID, _ := args["noteId"].(string)
	if noteID == "" {
		return nil, fmt.Errorf("noteId is required")
	}

	np, err := s.findNotepad(args)
	if err != nil {
		return nil, err
	}
	current := np.FindNote(noteID)
	if current == nil {
		return nil, fmt.Errorf("note not found: %s", noteID)
	}
	next := current.Clone()
	if title, ok := args["title"].(string); ok {
		next.Title = title
	}
	if content, ok := args["content"].(string); ok {
		next.Content = content
	}

	if _, err := s.dispatchOn(ctx, args, reducer.UpdateNote{Note: next}); err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Note %s updated", noteID)), nil
}

func (s *Server) handleDeleteNotepad(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	np, err := s.findNotepad(req.GetArguments())
	if err != nil {
		return nil, err
	}

	choice, err := s.prompt.Confirm(ctx,
		fmt.Sprintf("An agent wants to delete notepad %q (%d notes). Allow?", np.Title, len(np.Notes)),
		[]string{"Delete", "Cancel"})
	if err != nil {
		return nil, fmt.Errorf("confirm delete: %w", err)
	}
	if choice != 0 {
		return textResult("Deletion declined by user"), nil
	}

	if _, err := s.notepads.Delete(ctx, np.ID); err != nil {
		return nil, fmt.Errorf("delete notepad: %w", err)
	}
	return textResult(fmt.Sprintf("Notepad %s deleted", np.ID)), nil
}

func (s *Server) handleExportNotepad(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	np, err := s.findNotepad(req.GetArguments())
	if err != nil {
		return nil, err
	}
	payload, err := codec.Serialize(np)
	if err != nil {
		return nil, fmt.Errorf("serialize notepad: %w", err)
	}
	return textResult(string(payload)), nil
}

// findNotepad resolves the notepadId argument against the library.
func (s *Server) findNotepad(args map[string]any) (*domain.Notepad, error) {
	padID, ok := args["notepadId"].(string)
	if !ok || padID == "" {
		return nil, fmt.Errorf("notepadId is required")
	}
	for _, np := range s.notepads.Library() {
		if np.ID == padID {
			return np, nil
		}
	}
	return nil, fmt.Errorf("notepad not found: %s", padID)
}

// dispatchOn selects the target notepad when it is not already active,
// then applies the command to it.
func (s *Server) dispatchOn(ctx context.Context, args map[string]any, cmd reducer.Command) (*domain.Notepad, error) {
	np, err := s.findNotepad(args)
	if err != nil {
		return nil, err
	}
	if active := s.notepads.Active(); active == nil || active.ID != np.ID {
		if _, err := s.notepads.Select(ctx, np.ID); err != nil {
			return nil, err
		}
	}
	next, err := s.notepads.Dispatch(ctx, cmd)
	if err != nil {
		return nil, fmt.Errorf("apply command: %w", err)
	}
	return next, nil
}
