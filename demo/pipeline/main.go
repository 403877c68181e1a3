package main

import (
	"log"
	"os"

	pointpipe "github.com/pointpipe/pointpipe"
)

func main() {
	// Synthetic reader: a ramp of 10k points across a lon/lat box over
	// central Europe, Time counting up from 0.
	bounds := pointpipe.NewBounds(5.0, 45.0, 100.0, 15.0, 55.0, 500.0)
	reader := pointpipe.NewFauxReader(bounds, 10000, pointpipe.ModeRamp)

	// Reproject WGS84 -> Web Mercator with both ends given explicitly.
	reproject, err := pointpipe.NewReprojectionFilter(reader, pointpipe.Options{
		"in_srs":  "EPSG:4326",
		"out_srs": "EPSG:3857",
	})
	if err != nil {
		log.Fatalf("Failed to configure reprojection: %v", err)
	}
	defer reproject.Close()

	// Keep only points within a projected clip box, then thin to every
	// 10th point.
	clip := pointpipe.NewBounds(600000, 5700000, 0, 1400000, 7300000, 1000)
	crop := pointpipe.NewCropFilter(reproject, clip)
	decimate := pointpipe.NewDecimationFilter(crop, 10)

	// Initialize upstream-to-downstream.
	for _, st := range []pointpipe.Stage{reader, reproject, crop, decimate} {
		if err := st.Initialize(); err != nil {
			log.Fatalf("Failed to initialize %s: %v", st.Name(), err)
		}
	}

	// Read loop: pull the terminal stage into a fixed-capacity buffer.
	schema, err := decimate.Schema()
	if err != nil {
		log.Fatalf("Failed to fetch schema: %v", err)
	}
	layout := pointpipe.NewLayout(schema)
	buf := pointpipe.NewBuffer(layout, 256)

	iter, err := decimate.SequentialIterator()
	if err != nil {
		log.Fatalf("Failed to create iterator: %v", err)
	}

	total := 0
	for {
		n, err := iter.Read(buf)
		if err != nil {
			log.Fatalf("Read failed: %v", err)
		}
		if n == 0 {
			break
		}
		total += n
		if n < buf.Capacity() {
			break
		}
	}
	log.Printf("Pulled %d points through %s", total, decimate.Name())

	// Export the full reprojected stream (fresh iterators; the pulls above
	// do not disturb new ones) as a FlatGeobuf layer.
	f, err := os.Create("points.fgb")
	if err != nil {
		log.Fatalf("Failed to create output file: %v", err)
	}
	defer f.Close()

	written, err := pointpipe.ExportFlatGeobuf(f, reproject, &pointpipe.ExportOptions{
		Name:         "faux_ramp",
		Description:  "Reprojected synthetic ramp",
		IncludeIndex: true,
	})
	if err != nil {
		log.Fatalf("Export failed: %v", err)
	}
	log.Printf("Wrote %d features to points.fgb", written)
}
