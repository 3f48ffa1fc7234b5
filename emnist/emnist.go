// Package emnist exports the EMNIST dataset loading API.
//
// This package wraps the internal implementation and exposes a clean
// public surface for locating, downloading, and parsing the EMNIST
// byclass archive into typed image and label arrays.
//
// Example usage:
//
//	import "github.com/emnist-ml/servebench/emnist"
//
//	ds, err := emnist.Load("emnist_data", true)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("train: %d samples\n", ds.Train.Len())
//
//	mapping := emnist.ClassMapping()
//	fmt.Printf("class 10 is %c\n", mapping[10])
package emnist

import (
	"io"

	"github.com/emnist-ml/servebench/internal/emnist"
)

// Dataset dimensions and the expected matrix filename.
const (
	ImageSize   = emnist.ImageSize
	PixelCount  = emnist.PixelCount
	NumClasses  = emnist.NumClasses
	MatFilename = emnist.MatFilename
	ArchiveURL  = emnist.ArchiveURL
)

// ErrNotFound reports a missing dataset file with downloading disabled.
var ErrNotFound = emnist.ErrNotFound

// Image is one 28x28 grayscale sample, indexed [row][column].
type Image = emnist.Image

// Split is one dataset partition of position-aligned images and labels.
type Split = emnist.Split

// Dataset holds the train and test partitions plus the archive's raw
// class-mapping table.
type Dataset = emnist.Dataset

// Load reads the dataset from dir, downloading the archive first when
// it is absent and download is true.
func Load(dir string, download bool) (*Dataset, error) {
	return emnist.Load(dir, download)
}

// Download fetches and extracts the EMNIST archive into dir.
func Download(dir string) error {
	return emnist.Download(dir)
}

// ClassMapping returns the mapping from class index 0..61 to character:
// '0'-'9', 'A'-'Z', 'a'-'z' in that order.
func ClassMapping() map[int]rune {
	return emnist.ClassMapping()
}

// Render writes a terminal rendering of the image to w.
func Render(w io.Writer, img *Image) {
	emnist.Render(w, img)
}
