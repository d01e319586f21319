package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/eternalApril/respkit/internal/yamlvalue"
	"github.com/eternalApril/respkit/resp"
)

func newEncodeCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Encode YAML documents as RESP values",
		Long: `Reads a stream of YAML documents and writes one RESP value per document to stdout.

Plain strings become simple strings, strings holding CR or LF become bulk strings.
Use !bulk, !err, !nullbulk and !nullarray for the remaining RESP shapes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			values, err := readYAML(cmd)
			if err != nil {
				return err
			}

			enc := resp.NewEncoder(cmd.OutOrStdout())
			for _, v := range values {
				if err := enc.Write(v); err != nil {
					return fmt.Errorf("encode: %w", err)
				}
			}

			a.logger.Debug("encoded values", zap.Int("count", len(values)))
			return enc.Flush()
		},
	}
	cmd.Flags().StringP("file", "f", "", "YAML input file (default stdin)")
	return cmd
}

func newDecodeCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode",
		Short: "Decode a RESP buffer and render its values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := input(cmd)
			if err != nil {
				return err
			}
			defer r.Close() //nolint:errcheck

			data, err := io.ReadAll(r)
			if err != nil {
				return err
			}

			var values []resp.Value
			dec := resp.NewDecoder(data)
			for dec.More() {
				v, err := dec.Read()
				if err != nil {
					// what was decoded so far is still worth printing
					if rerr := a.render(cmd.OutOrStdout(), values); rerr != nil {
						return rerr
					}
					return fmt.Errorf("decode: %w", err)
				}
				values = append(values, v)
			}

			a.logger.Debug("decoded values", zap.Int("count", len(values)), zap.Int("bytes", dec.Offset()))
			return a.render(cmd.OutOrStdout(), values)
		},
	}
	cmd.Flags().StringP("file", "f", "", "RESP input file (default stdin)")
	return cmd
}

func readYAML(cmd *cobra.Command) ([]resp.Value, error) {
	r, err := input(cmd)
	if err != nil {
		return nil, err
	}
	defer r.Close() //nolint:errcheck

	values, err := yamlvalue.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	return values, nil
}

// render prints values in the configured output format
func (a *app) render(w io.Writer, values []resp.Value) error {
	switch a.cfg.Output.Format {
	case "yaml":
		return yamlvalue.Write(w, values)
	case "text", "":
		for _, v := range values {
			if _, err := fmt.Fprintln(w, v.Format()); err != nil {
				return err
			}
		}
		return nil
	default:
		return errors.New("unknown output format " + a.cfg.Output.Format)
	}
}
