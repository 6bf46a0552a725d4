package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	content "github.com/goliatone/go-content"
)

func newContentCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "content",
		Short: "Read and write section content",
	}
	cmd.AddCommand(
		newContentGetCmd(a),
		newContentSetCmd(a),
		newContentExportCmd(a),
		newContentImportCmd(a),
	)
	return cmd
}

func newContentGetCmd(a *app) *cobra.Command {
	var trace bool
	cmd := &cobra.Command{
		Use:   "get <section>",
		Short: "Print the effective document for a section",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			section, err := content.ParseSection(args[0])
			if err != nil {
				return err
			}
			svc, err := a.services()
			if err != nil {
				return err
			}
			defer svc.close()

			doc, tr, err := svc.resolver.ReadWithTrace(cmd.Context(), section)
			if err != nil {
				return err
			}
			var out any = doc
			if trace {
				out = map[string]any{"data": doc, "trace": tr}
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
	cmd.Flags().BoolVar(&trace, "trace", false, "include the per-tier lookup trace")
	return cmd
}

func newContentSetCmd(a *app) *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "set <section>",
		Short: "Validate and write a section from a JSON document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			section, err := content.ParseSection(args[0])
			if err != nil {
				return err
			}
			raw, err := readInput(cmd, path)
			if err != nil {
				return err
			}
			svc, err := a.services()
			if err != nil {
				return err
			}
			defer svc.close()

			ctx := content.WithActor(cmd.Context(), "cli")
			result, err := svc.resolver.WriteRaw(ctx, section, raw,
				content.WithSource(sourceLabel(path)),
				content.WithPayloadHook(content.AssignItemIDs),
			)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s updated (store=%t file=%t)\n", section, result.Store, result.File)
			return nil
		},
	}
	cmd.Flags().StringVarP(&path, "file", "f", "-", "JSON document to write (- for stdin)")
	return cmd
}

func newContentExportCmd(a *app) *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every effective section to a YAML bundle",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.services()
			if err != nil {
				return err
			}
			defer svc.close()

			site, err := svc.resolver.ReadAll(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if path != "" && path != "-" {
				f, err := os.Create(path)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}
			enc := yaml.NewEncoder(out)
			enc.SetIndent(2)
			if err := enc.Encode(site); err != nil {
				return err
			}
			return enc.Close()
		},
	}
	cmd.Flags().StringVarP(&path, "out", "o", "-", "bundle path (- for stdout)")
	return cmd
}

func newContentImportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <bundle.yaml>",
		Short: "Write the sections present in a YAML bundle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			bundle, err := parseBundle(raw)
			if err != nil {
				return err
			}
			svc, err := a.services()
			if err != nil {
				return err
			}
			defer svc.close()

			ctx := content.WithActor(cmd.Context(), "cli")
			for _, section := range content.Sections() {
				payload, ok := bundle[section]
				if !ok {
					continue
				}
				if _, err := svc.resolver.WriteRaw(ctx, section, payload,
					content.WithSource(args[0]),
					content.WithPayloadHook(content.AssignItemIDs),
				); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s imported\n", section)
			}
			return nil
		},
	}
	return cmd
}

// parseBundle splits a YAML bundle into per-section JSON payloads. Unknown
// top-level keys are rejected.
func parseBundle(raw []byte) (map[content.Section][]byte, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("bundle: %w", err)
	}
	keys := make([]string, 0, len(doc))
	for key := range doc {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	out := make(map[content.Section][]byte, len(doc))
	for _, key := range keys {
		section, err := content.ParseSection(key)
		if err != nil {
			return nil, fmt.Errorf("bundle: %w", err)
		}
		payload, err := json.Marshal(doc[key])
		if err != nil {
			return nil, fmt.Errorf("bundle: %s: %w", key, err)
		}
		out[section] = payload
	}
	return out, nil
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}

func sourceLabel(path string) string {
	if path == "" || path == "-" {
		return "stdin"
	}
	return path
}
