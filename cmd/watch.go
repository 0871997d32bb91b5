package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/eykd/blockmark/internal/block"
	"github.com/eykd/blockmark/internal/document"
)

// watchDebounce coalesces the burst of events editors emit on save.
const watchDebounce = 300 * time.Millisecond

// WatchIO handles I/O for the watch command.
type WatchIO interface {
	ReadIO
	// Watch calls onChange after path is written, until ctx is done.
	Watch(ctx context.Context, path string, onChange func()) error
}

// NewWatchCmd creates the watch subcommand.
func NewWatchCmd(wio WatchIO) *cobra.Command {
	return &cobra.Command{
		Use:          "watch <file>",
		Short:        "Re-parse a document whenever it changes",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			report := func() {
				data, err := wio.ReadFile(ctx, path)
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "error: reading %s: %v\n", sanitizeText(path), err)
					return
				}
				doc, err := document.Read(data)
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "error: parsing %s: %v\n", sanitizeText(path), err)
					return
				}
				summarize(cmd.OutOrStdout(), doc.Blocks)
				printDiagnostics(cmd, block.Validate(doc.Blocks))
			}

			report()
			return wio.Watch(ctx, path, report)
		},
	}
}

// summarize prints one line per block followed by a separator.
func summarize(w io.Writer, blocks []block.Block) {
	for _, b := range blocks {
		fmt.Fprintf(w, "%-10s %-16s %s\n", truncate(b.ID, 10), blockLabel(b), sanitizeText(truncate(blockText(b), 60)))
	}
	fmt.Fprintf(w, "-- %d blocks\n", len(blocks))
}

func blockLabel(b block.Block) string {
	switch b.Type {
	case block.TypeHeading:
		return "heading(" + strconv.Itoa(b.Level) + ")"
	case block.TypeList:
		return "list(" + string(b.ListType) + ")"
	}
	return string(b.Type)
}

func blockText(b block.Block) string {
	if b.Type == block.TypeList {
		return strconv.Itoa(len(b.Children)) + " items"
	}
	return b.Content
}

// fileWatchIO implements WatchIO with fsnotify.
type fileWatchIO struct {
	fileIO
	debounce time.Duration
}

func newDefaultWatchIO() *fileWatchIO {
	return &fileWatchIO{debounce: watchDebounce}
}

// Watch watches the directory of path, so editors that save by rename keep
// being observed, and calls onChange once per debounced burst of writes.
func (f *fileWatchIO) Watch(ctx context.Context, path string, onChange func()) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(absPath), err)
	}
	log.Printf("watch: watching %s", absPath)

	changed := make(chan struct{}, 1)
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			log.Printf("watch: stopped")
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if name, _ := filepath.Abs(event.Name); name != absPath {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(f.debounce, func() {
				select {
				case changed <- struct{}{}:
				default:
				}
			})
		case <-changed:
			log.Printf("watch: %s changed", absPath)
			onChange()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("watch: error: %v", err)
		}
	}
}
