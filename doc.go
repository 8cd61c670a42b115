// Package quire is the Composition Root of a local-first block editor
// engine.
//
// It wires the document service (workspaces, pages, nested blocks,
// comments, templates and snapshot-based undo/redo) to a durable local
// store (SQLite with a flat-file fallback cache) and to a sync coordinator
// that queues edits while offline and replays them once connectivity
// returns.
//
// Usage:
//
//	app, err := quire.New(ctx, "./.quire",
//		quire.WithLogger(logger),
//		quire.WithRemoteURL("ws://localhost:8765/sync"),
//	)
//	if err != nil {
//		return err
//	}
//	defer app.Close(ctx)
//
//	ws := app.Documents.CurrentWorkspace()
//	pageID := app.Documents.CreatePage(ws, document.PageDraft{Title: "Ideas"})
//	app.Documents.CreateBlock(pageID, document.BlockDraft{Content: "first"})
//	app.Documents.Undo()
package quire
