package atlas

import (
	"errors"
	"testing"

	"github.com/gogpu/imageatlas/internal/atlastest"
)

func newTestAtlas(t *testing.T, layerSize uint32, maxLayers int) *Atlas {
	t.Helper()
	device, _ := atlastest.Device(t)
	layout := atlastest.Layout(t, device)
	a, err := New(device, layout, Config{LayerSize: layerSize, MaxLayers: maxLayers, Label: "test_atlas"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(a.Close)
	return a
}

func pixels(w, h uint32) []byte {
	data := make([]byte, int(w)*int(h)*4)
	for i := range data {
		data[i] = byte(i)
	}
	return data
}

func TestNewErrors(t *testing.T) {
	device, _ := atlastest.Device(t)
	layout := atlastest.Layout(t, device)

	if _, err := New(nil, layout, DefaultConfig()); !errors.Is(err, ErrNilDevice) {
		t.Errorf("expected ErrNilDevice, got %v", err)
	}
	if _, err := New(device, nil, DefaultConfig()); !errors.Is(err, ErrNilLayout) {
		t.Errorf("expected ErrNilLayout, got %v", err)
	}
	var cfgErr *ConfigError
	if _, err := New(device, layout, Config{LayerSize: 100, MaxLayers: 1}); !errors.As(err, &cfgErr) {
		t.Errorf("expected *ConfigError, got %v", err)
	}
}

func TestNewStartsWithOneLayer(t *testing.T) {
	a := newTestAtlas(t, 256, 4)
	if a.LayerCount() != 1 {
		t.Errorf("expected 1 layer, got %d", a.LayerCount())
	}
	if a.LayerSize() != 256 {
		t.Errorf("expected layer size 256, got %d", a.LayerSize())
	}
	if a.BindGroup() == nil {
		t.Error("expected bind group")
	}
	if a.BindGroupLayout() == nil {
		t.Error("expected bind group layout")
	}
}

func TestAllocateContiguous(t *testing.T) {
	a := newTestAtlas(t, 256, 4)

	entry, ok := a.Allocate(32, 16)
	if !ok {
		t.Fatal("expected allocation")
	}
	if entry.Kind() != EntryContiguous {
		t.Fatalf("expected contiguous entry, got %s", entry.Kind())
	}
	alloc, _ := entry.Allocation()
	if alloc.Size() != (Size{32, 16}) {
		t.Errorf("expected size 32x16, got %s", alloc.Size())
	}
	if alloc.Layer() != 0 {
		t.Errorf("expected layer 0, got %d", alloc.Layer())
	}
}

func TestAllocateRejectsEmpty(t *testing.T) {
	a := newTestAtlas(t, 256, 4)
	if _, ok := a.Allocate(0, 10); ok {
		t.Error("expected zero width to be rejected")
	}
	if _, ok := a.Allocate(10, 0); ok {
		t.Error("expected zero height to be rejected")
	}
}

func TestAllocateFullLayer(t *testing.T) {
	a := newTestAtlas(t, 256, 4)

	// A small image makes layer 0 busy; the full-size image takes a new layer.
	if _, ok := a.Allocate(10, 10); !ok {
		t.Fatal("expected small allocation")
	}
	entry, ok := a.Allocate(256, 256)
	if !ok {
		t.Fatal("expected full-layer allocation")
	}
	alloc, _ := entry.Allocation()
	if alloc.Layer() != 1 {
		t.Errorf("expected layer 1, got %d", alloc.Layer())
	}

	// Nothing else fits in a full layer.
	next, _ := a.Allocate(10, 10)
	if al, _ := next.Allocation(); al.Layer() == 1 {
		t.Error("expected full layer to be skipped")
	}

	a.Remove(entry)
	if len(a.layers) != 1 {
		t.Errorf("expected empty reserved layer to be dropped, got %d layers", len(a.layers))
	}
}

func TestRemoveKeepsTextureLayers(t *testing.T) {
	a := newTestAtlas(t, 256, 4)
	enc := &atlastest.Recorder{}

	entry, ok := a.Upload(enc, 256, 256, pixels(256, 256))
	if !ok {
		t.Fatal("expected upload")
	}
	a.Remove(entry)
	if len(a.layers) != 1 || !a.layers[0].isEmpty() {
		t.Errorf("expected one empty layer, got %d", len(a.layers))
	}

	// Layers held by the texture survive removal.
	a.Upload(enc, 10, 10, pixels(10, 10))
	second, _ := a.Upload(enc, 256, 256, pixels(256, 256))
	a.Remove(second)
	if len(a.layers) != a.LayerCount() {
		t.Errorf("expected %d layers, got %d", a.LayerCount(), len(a.layers))
	}
}

func TestAllocateRejectsBeyondCapacity(t *testing.T) {
	a := newTestAtlas(t, 256, 2)

	if _, ok := a.Allocate(1<<23, 1<<23); ok {
		t.Fatal("expected oversized image to be rejected")
	}
	// 3 layers of area never fit in 2 layers.
	if _, ok := a.Allocate(256*3, 256); ok {
		t.Fatal("expected image larger than all layers to be rejected")
	}
	if len(a.layers) != 1 || !a.layers[0].isEmpty() {
		t.Errorf("expected untouched atlas, got %d layers", len(a.layers))
	}
}

func TestWrite(t *testing.T) {
	a := newTestAtlas(t, 256, 4)
	enc := &atlastest.Recorder{}

	entry, ok := a.Allocate(256, 256)
	if !ok {
		t.Fatal("expected allocation")
	}
	entry2, ok := a.Allocate(256, 256)
	if !ok {
		t.Fatal("expected second allocation")
	}
	if a.LayerCount() != 1 {
		t.Fatalf("expected Allocate to leave the texture alone, got %d layers", a.LayerCount())
	}

	if err := a.Write(enc, entry2, make([]byte, 4)); !errors.Is(err, ErrShortPixels) {
		t.Errorf("expected ErrShortPixels, got %v", err)
	}
	if err := a.Write(nil, entry2, pixels(256, 256)); !errors.Is(err, ErrNilEncoder) {
		t.Errorf("expected ErrNilEncoder, got %v", err)
	}
	if err := a.Write(enc, entry2, pixels(256, 256)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if a.LayerCount() != 2 {
		t.Errorf("expected Write to grow the texture to 2 layers, got %d", a.LayerCount())
	}
	if len(enc.Writes) != 1 || enc.Writes[0].Dst.Origin.Z != 1 {
		t.Errorf("expected one write into layer 1, got %+v", enc.Writes)
	}

	a.Close()
	if err := a.Write(enc, entry, pixels(256, 256)); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}

func TestAllocateFragmented(t *testing.T) {
	a := newTestAtlas(t, 256, 8)

	entry, ok := a.Allocate(300, 520)
	if !ok {
		t.Fatal("expected fragmented allocation")
	}
	if entry.Kind() != EntryFragmented {
		t.Fatalf("expected fragmented entry, got %s", entry.Kind())
	}
	if entry.Size() != (Size{300, 520}) {
		t.Errorf("expected logical size 300x520, got %s", entry.Size())
	}

	frags := entry.Fragments()
	want := []struct {
		x, y uint32
		size Size
	}{
		{0, 0, Size{256, 256}},
		{256, 0, Size{44, 256}},
		{0, 256, Size{256, 256}},
		{256, 256, Size{44, 256}},
		{0, 512, Size{256, 8}},
		{256, 512, Size{44, 8}},
	}
	if len(frags) != len(want) {
		t.Fatalf("expected %d fragments, got %d", len(want), len(frags))
	}
	for i, w := range want {
		f := frags[i]
		if f.Position != [2]uint32{w.x, w.y} {
			t.Errorf("fragment %d: expected position (%d,%d), got %v", i, w.x, w.y, f.Position)
		}
		if f.Allocation.Size() != w.size {
			t.Errorf("fragment %d: expected size %s, got %s", i, w.size, f.Allocation.Size())
		}
	}
}

func TestAllocateExhausted(t *testing.T) {
	a := newTestAtlas(t, 256, 2)

	if _, ok := a.Allocate(256, 256); !ok {
		t.Fatal("expected first layer")
	}
	if _, ok := a.Allocate(256, 256); !ok {
		t.Fatal("expected second layer")
	}
	if _, ok := a.Allocate(256, 256); ok {
		t.Error("expected atlas to be exhausted")
	}
	if _, ok := a.Allocate(1, 1); ok {
		t.Error("expected no room for a 1x1 image")
	}
}

func TestAllocateFragmentedPartialFailureFrees(t *testing.T) {
	a := newTestAtlas(t, 256, 2)

	// Needs 4 tiles but only 2 layers exist.
	if _, ok := a.Allocate(512, 512); ok {
		t.Fatal("expected allocation to fail")
	}
	for i, l := range a.layers {
		if !l.isEmpty() {
			t.Errorf("layer %d not empty after failed allocation", i)
		}
	}
	if len(a.layers) != 1 {
		t.Errorf("expected reserved layers released, got %d", len(a.layers))
	}
}

func TestUploadGrowsTexture(t *testing.T) {
	device := atlastest.NewCountingDevice(t)
	layout := atlastest.Layout(t, device)
	a, err := New(device, layout, Config{LayerSize: 256, MaxLayers: 4, Label: "test_atlas"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	enc := &atlastest.Recorder{}

	first, ok := a.Upload(enc, 256, 256, pixels(256, 256))
	if !ok {
		t.Fatal("expected upload")
	}
	oldGroup := atlastest.BindGroupID(a.BindGroup())
	if oldGroup != 1 {
		t.Fatalf("expected first bind group, got %d", oldGroup)
	}

	second, ok := a.Upload(enc, 256, 256, pixels(256, 256))
	if !ok {
		t.Fatal("expected second upload")
	}
	if a.LayerCount() != 2 {
		t.Fatalf("expected 2 layers, got %d", a.LayerCount())
	}
	if got := atlastest.BindGroupID(a.BindGroup()); got == oldGroup {
		t.Error("expected bind group to be rebuilt on growth")
	}
	if device.BindGroupsCreated != 2 || device.TexturesCreated != 2 {
		t.Errorf("expected 2 textures and bind groups, got %d and %d",
			device.TexturesCreated, device.BindGroupsCreated)
	}
	if len(enc.Copies) != 1 {
		t.Errorf("expected 1 layer copy, got %d", len(enc.Copies))
	}

	// The old resources stay alive until the encoder runs its deferred work.
	if device.BindGroupsDestroyed != 0 || device.TexturesDestroyed != 0 {
		t.Error("expected old resources to outlive the frame")
	}
	if enc.Pending() != 1 {
		t.Errorf("expected old texture release to be deferred, got %d", enc.Pending())
	}
	enc.Flush()
	if device.BindGroupsDestroyed != 1 || device.TexturesDestroyed != 1 {
		t.Errorf("expected old texture and bind group destroyed, got %d and %d",
			device.TexturesDestroyed, device.BindGroupsDestroyed)
	}

	for _, e := range []Entry{first, second} {
		for _, l := range e.Layers() {
			if l >= a.LayerCount() {
				t.Errorf("entry layer %d outside %d layers", l, a.LayerCount())
			}
		}
	}

	a.Close()
	if device.BindGroupsDestroyed != device.BindGroupsCreated {
		t.Errorf("expected every bind group destroyed, %d of %d",
			device.BindGroupsDestroyed, device.BindGroupsCreated)
	}
}

func TestUploadWritesFragments(t *testing.T) {
	a := newTestAtlas(t, 256, 8)
	enc := &atlastest.Recorder{}

	src := pixels(300, 10)
	entry, ok := a.Upload(enc, 300, 10, src)
	if !ok {
		t.Fatal("expected upload")
	}
	if len(enc.Writes) != len(entry.Fragments()) {
		t.Fatalf("expected %d writes, got %d", len(entry.Fragments()), len(enc.Writes))
	}

	// Second fragment starts at column 256 of the source.
	w := enc.Writes[1]
	if w.Width != 44 || w.Height != 10 {
		t.Fatalf("expected 44x10 write, got %dx%d", w.Width, w.Height)
	}
	wantFirst := src[256*4]
	if w.Data[0] != wantFirst {
		t.Errorf("expected first byte %d, got %d", wantFirst, w.Data[0])
	}
	wantRow1 := src[(300+256)*4]
	if w.Data[44*4] != wantRow1 {
		t.Errorf("expected row 1 byte %d, got %d", wantRow1, w.Data[44*4])
	}
}

func TestUploadWriteOrigin(t *testing.T) {
	a := newTestAtlas(t, 256, 4)
	enc := &atlastest.Recorder{}

	a.Upload(enc, 100, 20, pixels(100, 20))
	entry, ok := a.Upload(enc, 50, 20, pixels(50, 20))
	if !ok {
		t.Fatal("expected upload")
	}
	alloc, _ := entry.Allocation()
	x, y := alloc.Position()
	w := enc.Writes[len(enc.Writes)-1]
	if w.Dst.Origin.X != x || w.Dst.Origin.Y != y || w.Dst.Origin.Z != uint32(alloc.Layer()) {
		t.Errorf("write origin %+v does not match allocation %s", w.Dst.Origin, alloc)
	}
}

func TestUploadRejectsShortPixels(t *testing.T) {
	a := newTestAtlas(t, 256, 4)
	enc := &atlastest.Recorder{}
	if _, ok := a.Upload(enc, 10, 10, make([]byte, 10)); ok {
		t.Error("expected short pixel data to be rejected")
	}
	if len(enc.Writes) != 0 {
		t.Errorf("expected no writes, got %d", len(enc.Writes))
	}
}

func TestUploadWriteErrorFreesSpace(t *testing.T) {
	a := newTestAtlas(t, 256, 4)
	enc := &atlastest.Recorder{Err: errors.New("device lost")}

	if _, ok := a.Upload(enc, 10, 10, pixels(10, 10)); ok {
		t.Fatal("expected upload to fail")
	}
	if !a.layers[0].isEmpty() {
		t.Error("expected space to be freed after failed write")
	}
}

func TestRemoveFreesSpace(t *testing.T) {
	a := newTestAtlas(t, 256, 1)

	var entries []Entry
	for {
		e, ok := a.Allocate(128, 128)
		if !ok {
			break
		}
		entries = append(entries, e)
	}
	if len(entries) != 4 {
		t.Fatalf("expected 4 allocations, got %d", len(entries))
	}
	a.Remove(entries[2])
	if _, ok := a.Allocate(128, 128); !ok {
		t.Error("expected freed space to be reusable")
	}
}

func TestStats(t *testing.T) {
	a := newTestAtlas(t, 256, 4)
	a.Allocate(256, 256)
	a.Allocate(128, 256)

	s := a.Stats()
	if s.Layers != 2 {
		t.Errorf("expected 2 layers, got %d", s.Layers)
	}
	if s.FullLayers != 1 {
		t.Errorf("expected 1 full layer, got %d", s.FullLayers)
	}
	if s.Utilization != 0.75 {
		t.Errorf("expected utilization 0.75, got %f", s.Utilization)
	}
}

func TestCloseIdempotent(t *testing.T) {
	a := newTestAtlas(t, 256, 4)
	a.Close()
	a.Close()

	if _, ok := a.Allocate(10, 10); ok {
		t.Error("expected closed atlas to refuse allocations")
	}
	if err := a.Sync(&atlastest.Recorder{}); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
	if a.LayerCount() != 0 {
		t.Errorf("expected 0 layers after close, got %d", a.LayerCount())
	}
}
