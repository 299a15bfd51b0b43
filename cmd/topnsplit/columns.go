package main

import (
	"errors"

	"github.com/spf13/cobra"

	"topnsplit/internal/report"
	"topnsplit/internal/shapefile"
)

func newColumnsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "columns [input.shp]",
		Short: "List the attribute columns of a shapefile",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.job.Input
			if len(args) == 1 {
				path = args[0]
			}
			if path == "" {
				return errors.New("columns: no input shapefile given")
			}
			hdr, err := shapefile.Columns(cmd.Context(), path, shapefile.Options{
				Encoding: a.job.Encoding,
				Logger:   a.log,
			})
			if err != nil {
				return err
			}
			layer := report.Layer{
				Source:    path,
				ShapeType: shapefile.ShapeTypeName(hdr.ShapeType),
				Features:  hdr.Features,
				Encoding:  hdr.Encoding,
			}
			for _, c := range hdr.Columns {
				layer.Columns = append(layer.Columns, report.Column{
					Name:      c.Name,
					Type:      c.Type.String(),
					Size:      int(c.Size),
					Precision: int(c.Precision),
					Numeric:   c.Type.IsNumber(),
				})
			}
			return report.Columns(cmd.OutOrStdout(), a.job.Output, layer)
		},
	}
	cmd.Flags().StringP("input", "i", "", "source shapefile (.shp)")
	cmd.Flags().String("encoding", "", "code page of the source .dbf")
	return cmd
}
