package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/eykd/blockmark/internal/block"
	"github.com/eykd/blockmark/internal/document"
	"github.com/eykd/blockmark/internal/markdown"
	"github.com/eykd/blockmark/internal/store"
)

// DocumentStore is the persistence surface the store commands use.
type DocumentStore interface {
	Save(ctx context.Context, name string, blocks []block.Block) (int64, error)
	Load(ctx context.Context, name string) ([]block.Block, error)
	List(ctx context.Context) ([]store.DocumentInfo, error)
	Delete(ctx context.Context, name string) error
	Close() error
}

// StoreIO handles I/O for the store commands.
type StoreIO interface {
	ReadIO
	OpenStore(ctx context.Context, path string) (DocumentStore, error)
}

// NewStoreCmd creates the store command group.
func NewStoreCmd(io StoreIO) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Keep documents in a SQLite database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	cmd.PersistentFlags().String("db", "bmk.db", "SQLite database file")

	cmd.AddCommand(newStoreSaveCmd(io))
	cmd.AddCommand(newStoreLoadCmd(io))
	cmd.AddCommand(newStoreListCmd(io))
	cmd.AddCommand(newStoreRmCmd(io))
	return cmd
}

// withStore opens the database named by --db, runs fn and closes it.
func withStore(cmd *cobra.Command, io StoreIO, fn func(DocumentStore) error) error {
	dbPath, _ := cmd.Flags().GetString("db")
	s, err := io.OpenStore(cmd.Context(), dbPath)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	fnErr := fn(s)
	if err := s.Close(); err != nil && fnErr == nil {
		return fmt.Errorf("closing store: %w", err)
	}
	return fnErr
}

func newStoreSaveCmd(io StoreIO) *cobra.Command {
	return &cobra.Command{
		Use:          "save <name> <file>",
		Short:        "Parse a document and save its blocks under name",
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			name, path := args[0], args[1]
			data, err := io.ReadFile(cmd.Context(), path)
			if err != nil {
				return fmt.Errorf("reading document: %w", err)
			}
			doc, err := document.Read(data, markdown.WithIDs(block.NewUUIDGenerator()))
			if err != nil {
				return fmt.Errorf("parsing %s: %w", sanitizeText(path), err)
			}
			return withStore(cmd, io, func(s DocumentStore) error {
				rev, err := s.Save(cmd.Context(), name, doc.Blocks)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%d blocks, revision %d)\n",
					sanitizeText(name), len(doc.Blocks), rev)
				return err
			})
		},
	}
}

func newStoreLoadCmd(io StoreIO) *cobra.Command {
	return &cobra.Command{
		Use:          "load <name>",
		Short:        "Print a stored document as Markdown",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, io, func(s DocumentStore) error {
				blocks, err := s.Load(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				out, err := (&document.Document{Blocks: blocks}).Bytes()
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(out)
				return err
			})
		},
	}
}

func newStoreListCmd(io StoreIO) *cobra.Command {
	var jsonMode bool
	cmd := &cobra.Command{
		Use:          "list",
		Short:        "List stored documents",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(cmd, io, func(s DocumentStore) error {
				infos, err := s.List(cmd.Context())
				if err != nil {
					return err
				}
				if jsonMode {
					if infos == nil {
						infos = []store.DocumentInfo{}
					}
					return json.NewEncoder(cmd.OutOrStdout()).Encode(infos)
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "NAME\tREVISION\tBLOCKS\tUPDATED")
				for _, info := range infos {
					fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n", sanitizeText(info.Name), info.Revision, info.Blocks,
						info.UpdatedAt.UTC().Format(time.RFC3339))
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().BoolVar(&jsonMode, "json", false, "Output result as JSON")
	return cmd
}

func newStoreRmCmd(io StoreIO) *cobra.Command {
	return &cobra.Command{
		Use:          "rm <name>",
		Short:        "Delete a stored document",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, io, func(s DocumentStore) error {
				if err := s.Delete(cmd.Context(), args[0]); err != nil {
					return err
				}
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "Deleted "+sanitizeText(args[0]))
				return err
			})
		},
	}
}

// sqliteStore pairs a DocumentStore with the database it must close.
type sqliteStore struct {
	*store.DocumentStore
	db *store.DB
}

func (s sqliteStore) Close() error {
	return s.db.Close()
}

// fileStoreIO implements StoreIO with OS files and a SQLite database.
type fileStoreIO struct {
	fileIO
}

func newDefaultStoreIO() *fileStoreIO {
	return &fileStoreIO{}
}

// OpenStore opens the SQLite database at path.
func (f *fileStoreIO) OpenStore(ctx context.Context, path string) (DocumentStore, error) {
	db, err := store.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	return sqliteStore{DocumentStore: store.NewDocumentStore(db), db: db}, nil
}
