// Command atlasdemo drives the image atlas cache through a number of frames
// on a headless device and reports what it placed and evicted.
package main

import (
	"flag"
	"fmt"
	"image/color"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/imageatlas"
	"github.com/gogpu/imageatlas/atlas"
	"github.com/gogpu/imageatlas/raster"
	"github.com/gogpu/imageatlas/vector"
)

const demoSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 32 32">
<circle cx="16" cy="16" r="14" fill="#3060c0"/>
</svg>`

func main() {
	var (
		frames    = flag.Int("frames", 4, "number of frames to run")
		layerSize = flag.Uint("layer-size", 1024, "atlas layer edge length")
		maxLayers = flag.Int("max-layers", 8, "maximum atlas layers")
		images    = flag.String("images", "", "comma-separated image files (default: generated)")
		svg       = flag.String("svg", "", "SVG file (default: built-in icon)")
		debug     = flag.Bool("debug", false, "enable debug logging")
	)
	flag.Parse()

	if *debug {
		imageatlas.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	device, queue, cleanup, err := openDevice()
	if err != nil {
		log.Fatalf("Failed to open device: %v", err)
	}
	defer cleanup()

	layout, err := device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "atlasdemo_layout",
		Entries: []gputypes.BindGroupLayoutEntry{{
			Binding:    0,
			Visibility: gputypes.ShaderStageFragment,
			Texture: &gputypes.TextureBindingLayout{
				SampleType:    gputypes.TextureSampleTypeFloat,
				ViewDimension: gputypes.TextureViewDimension2DArray,
			},
		}},
	})
	if err != nil {
		log.Fatalf("Failed to create layout: %v", err)
	}
	defer device.DestroyBindGroupLayout(layout)

	cache, err := imageatlas.New(device, layout,
		imageatlas.WithAtlasConfig(atlas.Config{LayerSize: uint32(*layerSize), MaxLayers: *maxLayers}),
		imageatlas.WithDecodePool(16),
	)
	if err != nil {
		log.Fatalf("Failed to create cache: %v", err)
	}
	defer cache.Close()

	rasters := rasterHandles(*images, uint32(*layerSize))
	icon := vector.FromBytes([]byte(demoSVG))
	if *svg != "" {
		icon = vector.FromPath(*svg)
	}

	cmd, err := device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "atlasdemo"})
	if err != nil {
		log.Fatalf("Failed to create command encoder: %v", err)
	}
	defer cmd.Destroy()
	enc := atlas.NewFrameEncoder(device, queue, cmd)

	for frame := 0; frame < *frames; frame++ {
		if err := cmd.BeginEncoding(fmt.Sprintf("frame_%d", frame)); err != nil {
			log.Fatalf("Failed to begin frame %d: %v", frame, err)
		}

		// Every other frame drops the first image so the trim evicts it.
		for i, h := range rasters {
			if i == 0 && frame%2 == 1 {
				continue
			}
			size := cache.MeasureImage(h)
			region, ok := cache.EnsureRasterRegion(enc, h)
			if !ok {
				log.Printf("frame %d: image %d (%s) has no region", frame, i, size)
				continue
			}
			log.Printf("frame %d: image %d %s -> layer %d uv %v..%v", frame, i, size, region.Layer, region.UVMin, region.UVMax)
		}

		scale := float32(1 + frame%2)
		tint := &color.NRGBA{R: 0xe0, G: 0x40, B: 0x40, A: 0xff}
		if region, ok := cache.EnsureVectorRegion(enc, icon, tint, [2]float32{32, 32}, scale); ok {
			log.Printf("frame %d: icon x%.0f -> layer %d uv %v..%v", frame, scale, region.Layer, region.UVMin, region.UVMax)
		}

		buf, err := cmd.EndEncoding()
		if err != nil {
			log.Fatalf("Failed to end frame %d: %v", frame, err)
		}
		if _, err := queue.Submit([]hal.CommandBuffer{buf}); err != nil {
			log.Fatalf("Failed to submit frame %d: %v", frame, err)
		}
		enc.Release()
		cmd.ResetAll([]hal.CommandBuffer{buf})

		cache.Trim()
		s := cache.Stats()
		log.Printf("frame %d: layers=%d raster=%d/%d vector=%d/%d utilization=%.2f",
			frame, s.Layers, s.RasterPlaced, s.RasterImages, s.VectorPlaced, s.VectorSources, s.Utilization)
	}
}

// openDevice opens the headless noop HAL device.
func openDevice() (hal.Device, hal.Queue, func(), error) {
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("create instance: %w", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, nil, nil, fmt.Errorf("no adapters")
	}
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, nil, nil, fmt.Errorf("open adapter: %w", err)
	}
	cleanup := func() {
		openDev.Device.Destroy()
		instance.Destroy()
	}
	return openDev.Device, openDev.Queue, cleanup, nil
}

// rasterHandles returns handles for the listed files, or generated images
// including one larger than a layer.
func rasterHandles(list string, layerSize uint32) []raster.Handle {
	if list != "" {
		var hs []raster.Handle
		for _, p := range strings.Split(list, ",") {
			if p = strings.TrimSpace(p); p != "" {
				hs = append(hs, raster.FromPath(p))
			}
		}
		return hs
	}
	return []raster.Handle{
		checker(64, 64),
		checker(200, 120),
		checker(layerSize+layerSize/2, 100),
	}
}

// checker generates a black and white checkerboard.
func checker(w, h uint32) raster.Handle {
	pix := make([]byte, int(w)*int(h)*4)
	for y := uint32(0); y < h; y++ {
		for x := uint32(0); x < w; x++ {
			i := (int(y)*int(w) + int(x)) * 4
			v := byte(0)
			if (x/8+y/8)%2 == 0 {
				v = 0xff
			}
			pix[i], pix[i+1], pix[i+2], pix[i+3] = v, v, v, 0xff
		}
	}
	return raster.FromRGBA(w, h, pix)
}
