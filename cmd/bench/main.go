package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/aretw0/quire"
	"github.com/aretw0/quire/pkg/codec"
	"github.com/aretw0/quire/pkg/core"
	"github.com/aretw0/quire/pkg/document"
)

func main() {
	pages := flag.Int("pages", 200, "Number of pages to generate")
	blocks := flag.Int("blocks", 20, "Blocks per page")
	edits := flag.Int("edits", 100, "Edits to time (each one captures a snapshot)")
	keep := flag.Bool("keep", false, "Keep the benchmark data dir after running")
	flag.Parse()

	benchDir, err := os.MkdirTemp("", "quire_bench_")
	if err != nil {
		panic(err)
	}
	defer func() {
		if !*keep {
			os.RemoveAll(benchDir)
		} else {
			fmt.Printf("Keeping bench dir: %s\n", benchDir)
		}
	}()

	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))

	app, err := quire.New(ctx, benchDir, quire.WithLogger(logger))
	if err != nil {
		panic(err)
	}
	docs := app.Documents

	// 1. Generate
	fmt.Printf("Generating %d pages x %d blocks in %s...\n", *pages, *blocks, benchDir)
	startGen := time.Now()
	ws := docs.CurrentWorkspace()
	var lastPage string
	for i := 0; i < *pages; i++ {
		draft := document.PageDraft{Title: fmt.Sprintf("Page %d", i)}
		for j := 0; j < *blocks; j++ {
			draft.Blocks = append(draft.Blocks, docBlock(i, j))
		}
		lastPage = docs.CreatePage(ws, draft)
	}
	if err := docs.Wait(ctx); err != nil {
		panic(err)
	}
	fmt.Printf("Generation took: %v\n", time.Since(startGen))

	// 2. Snapshot size
	raw, err := codec.Serialize(docs.Snapshot())
	if err != nil {
		panic(err)
	}
	fmt.Printf("Snapshot size: %d KiB\n", len(raw)/1024)

	// 3. Capture cost: every edit serializes the whole tree
	startEdit := time.Now()
	for i := 0; i < *edits; i++ {
		title := fmt.Sprintf("Edited %d", i)
		docs.UpdatePage(lastPage, document.PagePatch{Title: &title})
	}
	editDur := time.Since(startEdit)
	fmt.Printf("Edits: %v total, %v/edit\n", editDur, editDur/time.Duration(max(*edits, 1)))

	// 4. Undo cost: deserialize and replace the tree
	startUndo := time.Now()
	undone := 0
	for docs.CanUndo() {
		if err := docs.Undo(); err != nil {
			panic(err)
		}
		undone++
	}
	undoDur := time.Since(startUndo)
	fmt.Printf("Undo: %d steps in %v\n", undone, undoDur)

	if err := app.Close(ctx); err != nil {
		panic(err)
	}

	// 5. Cold load from SQLite
	startLoad := time.Now()
	reopened, err := quire.New(ctx, benchDir, quire.WithLogger(logger))
	if err != nil {
		panic(err)
	}
	loadDur := time.Since(startLoad)
	ws0, _ := reopened.Documents.Workspace(reopened.Documents.CurrentWorkspace())
	fmt.Printf("Cold load: %v (Pages: %d)\n", loadDur, len(ws0.Pages))
	if err := reopened.Close(ctx); err != nil {
		panic(err)
	}
}

func docBlock(page, n int) core.Block {
	return core.Block{
		Type:    core.BlockText,
		Content: fmt.Sprintf("Block %d of page %d. Lorem ipsum dolor sit amet.", n, page),
	}
}
