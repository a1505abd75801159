package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/marmos91/afile/pkg/afile"
	"github.com/marmos91/afile/pkg/config"
	"github.com/marmos91/afile/pkg/priority"
	"github.com/spf13/cobra"
)

func catCmd(a *app) *cobra.Command {
	var chunk int

	cmd := &cobra.Command{
		Use:   "cat PATH",
		Short: "Write a file to stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			f, err := afile.Open(ctx, args[0], a.priority)
			if err != nil {
				return err
			}
			defer func() { _ = f.Close() }()

			return copyChunks(ctx, cmd.OutOrStdout(), f, chunk, -1, a.priority)
		},
	}

	cmd.Flags().IntVar(&chunk, "chunk", afile.ReadAllChunkSize, "bytes requested per read")
	return cmd
}

func headCmd(a *app) *cobra.Command {
	var (
		offset uint64
		limit  int64
	)

	cmd := &cobra.Command{
		Use:   "head PATH",
		Short: "Write a byte range of a file to stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 0 {
				return fmt.Errorf("--bytes must not be negative")
			}
			ctx := cmd.Context()

			f, err := afile.Open(ctx, args[0], a.priority)
			if err != nil {
				return err
			}
			defer func() { _ = f.Close() }()

			if offset > 0 {
				if _, err := f.Seek(ctx, afile.Start(offset), a.priority); err != nil {
					return err
				}
			}
			return copyChunks(ctx, cmd.OutOrStdout(), f, afile.ReadAllChunkSize, limit, a.priority)
		},
	}

	cmd.Flags().Uint64Var(&offset, "offset", 0, "start offset in bytes")
	cmd.Flags().Int64VarP(&limit, "bytes", "n", 1024, "number of bytes to print")
	return cmd
}

// statOutput is the JSON form printed by stat --json.
type statOutput struct {
	Path        string    `json:"path"`
	Size        uint64    `json:"size"`
	ModTime     time.Time `json:"mod_time,omitzero"`
	Mode        string    `json:"mode,omitempty"`
	ContentType string    `json:"content_type,omitempty"`
	ETag        string    `json:"etag,omitempty"`
}

func statCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stat PATH",
		Short: "Print file metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			f, err := afile.Open(ctx, args[0], a.priority)
			if err != nil {
				return err
			}
			defer func() { _ = f.Close() }()

			md, err := f.Metadata(ctx, a.priority)
			if err != nil {
				return err
			}

			out := statOutput{
				Path:        args[0],
				Size:        md.Len(),
				ModTime:     md.ModTime,
				ContentType: md.ContentType,
				ETag:        md.ETag,
			}
			if md.Mode != 0 {
				out.Mode = md.Mode.String()
			}

			w := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}

			fmt.Fprintf(w, "path:     %s\n", out.Path)
			fmt.Fprintf(w, "size:     %d\n", out.Size)
			if !out.ModTime.IsZero() {
				fmt.Fprintf(w, "modified: %s\n", out.ModTime.Format(time.RFC3339))
			}
			if out.Mode != "" {
				fmt.Fprintf(w, "mode:     %s\n", out.Mode)
			}
			if out.ContentType != "" {
				fmt.Fprintf(w, "type:     %s\n", out.ContentType)
			}
			if out.ETag != "" {
				fmt.Fprintf(w, "etag:     %s\n", out.ETag)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print metadata as JSON")
	return cmd
}

func existsCmd(a *app) *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "exists PATH",
		Short: "Report whether a path exists (exit status 1 when absent)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ok := afile.Exists(cmd.Context(), args[0], a.priority)
			if !quiet {
				fmt.Fprintln(cmd.OutOrStdout(), ok)
			}
			if !ok {
				return errAbsent
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "only set the exit status")
	return cmd
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
		// Overrides the root hook: no backend is needed here.
		PersistentPreRunE:  func(cmd *cobra.Command, args []string) error { return nil },
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error { return nil },
	}

	var (
		force bool
		path  string
	)
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if path == "" {
				written, err := config.InitConfig(force)
				if err != nil {
					return err
				}
				path = written
			} else if err := config.InitConfigToPath(path, force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration written to %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")
	initCmd.Flags().StringVar(&path, "path", "", "write to this path instead of the default location")

	cmd.AddCommand(initCmd)
	return cmd
}

// copyChunks writes the file from its cursor to w, one Read at a time,
// stopping at end of file or after limit bytes (limit < 0 means no limit).
func copyChunks(ctx context.Context, w io.Writer, f *afile.File, chunk int, limit int64, p priority.Priority) error {
	if chunk <= 0 {
		chunk = afile.ReadAllChunkSize
	}
	for limit != 0 {
		n := chunk
		if limit > 0 && int64(n) > limit {
			n = int(limit)
		}

		data, err := f.Read(ctx, n, p)
		if err != nil {
			return err
		}
		if data.Len() == 0 {
			return nil
		}
		if _, err := data.WriteTo(w); err != nil {
			return err
		}
		if limit > 0 {
			limit -= int64(data.Len())
		}
	}
	return nil
}
