// Package emnist loads the EMNIST byclass handwritten-character dataset
// from its matlab-format archive.
//
// The byclass split covers 62 classes (digits, uppercase and lowercase
// letters) of 28x28 grayscale images. The archive stores each split as
// an N x 784 matrix inside a `dataset` struct; see Load for the field
// schema and the reshape contract.
//
// Dataset reference: https://www.nist.gov/itl/iad/image-group/emnist-dataset
package emnist

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/emnist-ml/servebench/internal/matfile"
)

const (
	// ImageSize is the side length of one square sample image.
	ImageSize = 28
	// PixelCount is the flattened length of one sample image.
	PixelCount = ImageSize * ImageSize
	// NumClasses is the number of character classes in the byclass split.
	NumClasses = 62

	// MatFilename is the matrix file expected inside the data folder.
	MatFilename = "emnist-byclass.mat"
)

// ErrNotFound reports a missing dataset file with downloading disabled.
var ErrNotFound = errors.New("emnist dataset not found")

// Image is one grayscale sample, indexed [row][column], pixel
// magnitudes 0-255.
type Image [ImageSize][ImageSize]float32

// Flatten returns the image as a row-major 784-length vector.
func (im *Image) Flatten() []float32 {
	flat := make([]float32, PixelCount)
	for r := 0; r < ImageSize; r++ {
		copy(flat[r*ImageSize:], im[r][:])
	}
	return flat
}

// Split is one partition of the dataset. Images and Labels are aligned
// by position and always have equal length.
type Split struct {
	Images []Image
	Labels []int
}

// Len returns the number of samples in the split.
func (s *Split) Len() int { return len(s.Images) }

// Dataset holds both partitions plus the archive's raw class-mapping
// table of (class index, ASCII code) pairs.
type Dataset struct {
	Train   Split
	Test    Split
	Mapping [][2]int
}

// Split returns the named partition ("train" or "test").
func (d *Dataset) Split(name string) (*Split, error) {
	switch name {
	case "train":
		return &d.Train, nil
	case "test":
		return &d.Test, nil
	default:
		return nil, fmt.Errorf("unknown split %q (want train or test)", name)
	}
}

// Load reads the EMNIST dataset from dir, downloading and extracting
// the archive first when the matrix file is absent and download is
// enabled. With download disabled a missing file fails with an error
// wrapping ErrNotFound that names the expected path.
func Load(dir string, download bool) (*Dataset, error) {
	path := filepath.Join(dir, MatFilename)

	if _, err := os.Stat(path); err != nil {
		if !download {
			return nil, fmt.Errorf("file %s does not exist and download is deactivated: %w", path, ErrNotFound)
		}
		if err := Download(dir); err != nil {
			return nil, fmt.Errorf("download dataset: %w", err)
		}
	}

	slog.Info("loading train and test data", "path", path)

	file, err := matfile.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	root, err := file.Array("dataset")
	if err != nil {
		return nil, err
	}

	ds := &Dataset{}
	if ds.Train, err = loadSplit(root, "train"); err != nil {
		return nil, err
	}
	if ds.Test, err = loadSplit(root, "test"); err != nil {
		return nil, err
	}
	if ds.Mapping, err = loadMapping(root); err != nil {
		return nil, err
	}

	return ds, nil
}

// loadSplit reads one `dataset.<name>` bundle: an N x 784 images matrix
// and an N x 1 labels vector.
func loadSplit(root *matfile.Array, name string) (Split, error) {
	bundle, err := root.Field(name)
	if err != nil {
		return Split{}, err
	}
	images, err := bundle.Field("images")
	if err != nil {
		return Split{}, err
	}
	labels, err := bundle.Field("labels")
	if err != nil {
		return Split{}, err
	}

	if images.Cols() != PixelCount {
		return Split{}, fmt.Errorf("split %s: images have %d columns, want %d", name, images.Cols(), PixelCount)
	}
	if images.Rows() != labels.Rows() {
		return Split{}, fmt.Errorf("split %s: %d images but %d labels", name, images.Rows(), labels.Rows())
	}

	s := Split{
		Images: reshapeImages(images),
		Labels: make([]int, labels.Rows()),
	}
	for i := range s.Labels {
		label := labels.IntAt(i, 0)
		if label < 0 || label >= NumClasses {
			return Split{}, fmt.Errorf("split %s: label %d at sample %d out of range [0, %d]", name, label, i, NumClasses-1)
		}
		s.Labels[i] = label
	}
	return s, nil
}

// reshapeImages converts the flat N x 784 matrix into per-sample images.
//
// Reshape contract: the matrix is stored column-major, and pixel (r, c)
// of sample n is element c*28+r of the sample's flat 784-vector. A naive
// row-major reshape (r*28+c) silently transposes every image.
func reshapeImages(m *matfile.Array) []Image {
	n := m.Rows()
	out := make([]Image, n)

	if m.Type == matfile.MiUint8 {
		// Fast path for the archive's native uint8 storage: element
		// (sample, j) of the column-major matrix lives at j*n+sample.
		raw := m.Bytes()
		for i := 0; i < n; i++ {
			for c := 0; c < ImageSize; c++ {
				col := (c * ImageSize) * n
				for r := 0; r < ImageSize; r++ {
					out[i][r][c] = float32(raw[col+r*n+i])
				}
			}
		}
		return out
	}

	for i := 0; i < n; i++ {
		for r := 0; r < ImageSize; r++ {
			for c := 0; c < ImageSize; c++ {
				out[i][r][c] = float32(m.FloatAt(i, c*ImageSize+r))
			}
		}
	}
	return out
}

// loadMapping reads the 62x2 `dataset.mapping` table.
func loadMapping(root *matfile.Array) ([][2]int, error) {
	m, err := root.Field("mapping")
	if err != nil {
		return nil, err
	}
	if m.Rows() != NumClasses || m.Cols() < 2 {
		return nil, fmt.Errorf("mapping table is %dx%d, want %dx2", m.Rows(), m.Cols(), NumClasses)
	}

	table := make([][2]int, m.Rows())
	for i := range table {
		table[i] = [2]int{m.IntAt(i, 0), m.IntAt(i, 1)}
	}
	return table, nil
}
