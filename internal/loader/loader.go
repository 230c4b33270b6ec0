// Package loader handles ROM image file loading operations.
package loader

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/retroenv/romdump/internal/bus"
)

var errEmptyImage = errors.New("image is empty")

// Image is a ROM image as stored on disk, in device byte order.
type Image struct {
	Name string
	Data []byte
}

// Partial returns whether the image is smaller than the device, the missing part
// reads as erased.
func (i *Image) Partial() bool {
	return len(i.Data) < bus.ImageSize
}

// Loader handles loading ROM images from disk.
type Loader struct{}

// New creates a new ROM image loader.
func New() *Loader {
	return &Loader{}
}

// Load loads a ROM image file. Images larger than the device are rejected.
func (l *Loader) Load(path string) (*Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	// read one byte more than fits to detect oversized images
	data, err := io.ReadAll(io.LimitReader(file, bus.ImageSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}

	switch {
	case len(data) == 0:
		return nil, fmt.Errorf("loading %s: %w", path, errEmptyImage)
	case len(data) > bus.ImageSize:
		return nil, fmt.Errorf("loading %s: image exceeds device size of %d bytes", path, bus.ImageSize)
	}

	return &Image{
		Name: path,
		Data: data,
	}, nil
}

// Device creates a simulated device that contains the image.
func (i *Image) Device(options ...bus.DeviceOption) (*bus.Device, error) {
	dev, err := bus.NewDevice(i.Data, options...)
	if err != nil {
		return nil, fmt.Errorf("creating device for %s: %w", i.Name, err)
	}
	return dev, nil
}
