package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cartomap/internal/config"
)

const scaffold = `version: 1
output: carto_layer_geo_query.html
open_browser: true
map_style: road
view_state:
  latitude: 0
  longitude: 0
  zoom: 1
auth:
  method: oauth
  # client_id may also come from CARTOMAP_AUTH_CLIENT_ID
  client_id: ""
layers:
  - id: airports
    type: query
    connection: carto_dw
    data: SELECT geom, name FROM carto-demo-data.demo_tables.airports
    fill_color: [238, 77, 90]
    point_radius_min_pixels: 2.5
    pickable: true
`

func initCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold a cartomap.yaml with the airports example",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := runInit(path); err != nil {
				return err
			}
			cmd.Printf("wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "path", config.DefaultPath, "Where to write the config")
	return cmd
}

func runInit(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	if err := os.WriteFile(path, []byte(scaffold), 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
