package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/immor75/MeetingsDecisions/internal/wopi/app"
	"github.com/immor75/MeetingsDecisions/internal/wopi/domain"
	"github.com/immor75/MeetingsDecisions/pkg/slogx"
)

type rootOptions struct {
	jsonOutput bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "wopihost",
		Short: "WOPI host for generated meeting decision documents",
		Long: `wopihost serves generated decision documents to Collabora Online over the
WOPI protocol. Configuration is read from WOPI_CONFIG_FILE (YAML) and
environment variables.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       app.BuildVersion,
	}
	root.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "output in JSON format")

	root.AddCommand(
		newServeCmd(),
		newTokenCmd(opts),
		newArtifactCmd(opts),
	)
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadConfig()
			if err != nil {
				return err
			}

			application, err := app.New(cfg, nil)
			if err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}
			return application.Run()
		},
	}
}

func newTokenCmd(opts *rootOptions) *cobra.Command {
	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "Manage WOPI access tokens",
	}

	var fileID, userID, name, role string
	mintCmd := &cobra.Command{
		Use:   "mint",
		Short: "Mint an access token for a file id",
		Long: `Mint signs an access token offline with WOPI_TOKEN_SECRET. It is meant for
debugging an editor against a running host that shares the same secret.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadConfig()
			if err != nil {
				return err
			}
			r, err := domain.ParseRole(role)
			if err != nil {
				return fmt.Errorf("role %q: %w", role, err)
			}

			tokens, err := app.NewTokenService(cfg, slogx.Discard(), true)
			if err != nil {
				return err
			}
			tok, err := tokens.Issue(userID, name, fileID, r)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.jsonOutput {
				return writeJSON(out, map[string]any{
					"fileId":         fileID,
					"accessToken":    tok.Token,
					"accessTokenTtl": tok.TTLMillis(),
					"expiresAt":      tok.ExpiresAt,
				})
			}
			fmt.Fprintln(out, tok.Token)
			return nil
		},
	}
	mintCmd.Flags().StringVar(&fileID, "file", "", "file id the token is valid for")
	mintCmd.Flags().StringVar(&userID, "user", "", "user id")
	mintCmd.Flags().StringVar(&name, "name", "", "display name")
	mintCmd.Flags().StringVar(&role, "role", "editor", "editor or viewer")
	_ = mintCmd.MarkFlagRequired("file")
	_ = mintCmd.MarkFlagRequired("user")

	tokenCmd.AddCommand(mintCmd)
	return tokenCmd
}

func newArtifactCmd(opts *rootOptions) *cobra.Command {
	artifactCmd := &cobra.Command{
		Use:   "artifact",
		Short: "Manage the artifact catalogue",
	}

	var fileName, ownerID string
	importCmd := &cobra.Command{
		Use:   "import <path> [id]",
		Short: "Import a generated document into the catalogue",
		Long: `Import copies a file into the configured artifact source. The id defaults
to the file name without its extension.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadConfig()
			if err != nil {
				return err
			}

			path := args[0]
			id := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			if len(args) == 2 {
				id = args[1]
			}
			if err := domain.ValidateArtifactID(id); err != nil {
				return fmt.Errorf("artifact id %q: %w", id, err)
			}
			if fileName == "" {
				fileName = filepath.Base(path)
			}

			content, err := os.ReadFile(path)
			if err != nil {
				return err
			}

			artifacts, err := app.OpenArtifacts(cfg, slogx.Discard())
			if err != nil {
				return err
			}
			defer artifacts.Close()

			a, err := artifacts.PutArtifact(cmd.Context(), domain.Artifact{
				ID:       id,
				FileName: fileName,
				OwnerID:  ownerID,
			}, content)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.jsonOutput {
				return writeJSON(out, a)
			}
			fmt.Fprintf(out, "Imported %s (%d bytes) as %s\n", a.FileName, a.Size, a.ID)
			return nil
		},
	}
	importCmd.Flags().StringVar(&fileName, "name", "", "file name shown in the editor")
	importCmd.Flags().StringVar(&ownerID, "owner", "", "owner user id")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List catalogued artifacts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadConfig()
			if err != nil {
				return err
			}

			artifacts, err := app.OpenArtifacts(cfg, slogx.Discard())
			if err != nil {
				return err
			}
			defer artifacts.Close()

			list, err := artifacts.ListArtifacts(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.jsonOutput {
				return writeJSON(out, list)
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tSIZE\tUPDATED")
			for _, a := range list {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", a.ID, a.FileName, a.Size, a.UpdatedAt.Format(time.RFC3339))
			}
			return tw.Flush()
		},
	}

	artifactCmd.AddCommand(importCmd, listCmd)
	return artifactCmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
